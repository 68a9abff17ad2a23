package mypublisher

import (
	"context"
	"fmt"

	"github.com/MarcGrol/storefront/lib/mycontext"
	"github.com/MarcGrol/storefront/lib/mylog"
	"github.com/MarcGrol/storefront/lib/mytime"
)

type loggingPublisher struct {
	logger    mylog.Logger
	enveloper enveloper
}

func newLoggingPublisher(logger mylog.Logger, nower mytime.Nower) *loggingPublisher {
	return &loggingPublisher{
		logger:    logger,
		enveloper: newEnveloper(nower),
	}
}

func (p *loggingPublisher) Publish(c context.Context, topicName string, event Event) error {
	envelope, err := p.enveloper.do(topicName, event)
	if err != nil {
		return fmt.Errorf("error creating envelope: %s", err)
	}

	p.logger.Log(c, mycontext.SessionUIDFromContext(c), mylog.SeverityInfo, "Published event %s (%s): %s", envelope, envelope.UID, envelope.EventPayload)

	return nil
}
