package mypublisher

import (
	"context"
	"encoding/json"
	"fmt"

	"cloud.google.com/go/pubsub"

	"github.com/MarcGrol/storefront/lib/mytime"
)

type gcloudPublisher struct {
	client    *pubsub.Client
	enveloper enveloper
}

func newGcloudPublisher(c context.Context, projectID string, nower mytime.Nower) (Publisher, func(), error) {
	client, err := pubsub.NewClient(c, projectID)
	if err != nil {
		return nil, nil, fmt.Errorf("error creating pubsub-client: %s", err)
	}

	return &gcloudPublisher{
			client:    client,
			enveloper: newEnveloper(nower),
		}, func() {
			client.Close()
		}, nil
}

func (p *gcloudPublisher) Publish(c context.Context, topicName string, event Event) error {
	envelope, err := p.enveloper.do(topicName, event)
	if err != nil {
		return fmt.Errorf("error creating envelope: %s", err)
	}

	data, err := json.Marshal(envelope)
	if err != nil {
		return fmt.Errorf("error serializing envelope %s: %s", envelope, err)
	}

	_, err = p.client.Topic(topicName).Publish(c, &pubsub.Message{
		Data: data,
		Attributes: map[string]string{
			"eventType": envelope.EventTypeName,
		},
	}).Get(c)
	if err != nil {
		return fmt.Errorf("error publishing event %s: %s", envelope, err)
	}

	return nil
}
