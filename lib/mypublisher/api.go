package mypublisher

import (
	"context"
	"time"

	"github.com/MarcGrol/storefront/lib/mylog"
	"github.com/MarcGrol/storefront/lib/mytime"
)

type EventEnvelope struct {
	UID           string
	CreatedAt     time.Time
	Topic         string
	AggregateUID  string
	EventTypeName string
	EventPayload  string
}

func (e EventEnvelope) String() string {
	return e.Topic + "." + e.EventTypeName + "." + e.AggregateUID
}

type Event interface {
	GetEventTypeName() string
	GetAggregateName() string
}

//go:generate mockgen -source=api.go -package mypublisher -destination publisher_mock.go Publisher
type Publisher interface {
	Publish(c context.Context, topic string, event Event) error
}

// New picks the transport: Google Cloud Pub/Sub when running in a Google
// Cloud project, Kafka when brokers are given and the log otherwise.
func New(c context.Context, projectID string, kafkaBrokers []string, nower mytime.Nower) (Publisher, func(), error) {
	if projectID != "" {
		return newGcloudPublisher(c, projectID, nower)
	}

	if len(kafkaBrokers) > 0 {
		return newKafkaPublisher(kafkaBrokers, nower)
	}

	return newLoggingPublisher(mylog.New("publisher"), nower), func() {}, nil
}
