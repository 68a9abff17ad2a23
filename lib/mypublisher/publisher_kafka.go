package mypublisher

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/segmentio/kafka-go"

	"github.com/MarcGrol/storefront/lib/mytime"
)

type kafkaPublisher struct {
	writer    *kafka.Writer
	enveloper enveloper
}

func newKafkaPublisher(brokers []string, nower mytime.Nower) (Publisher, func(), error) {
	// Topic is set per message, so the writer itself has none.
	writer := &kafka.Writer{
		Addr:                   kafka.TCP(brokers...),
		Balancer:               &kafka.Hash{},
		RequiredAcks:           kafka.RequireAll,
		AllowAutoTopicCreation: true,
	}

	return &kafkaPublisher{
			writer:    writer,
			enveloper: newEnveloper(nower),
		}, func() {
			writer.Close()
		}, nil
}

func (p *kafkaPublisher) Publish(c context.Context, topicName string, event Event) error {
	envelope, err := p.enveloper.do(topicName, event)
	if err != nil {
		return fmt.Errorf("error creating envelope: %s", err)
	}

	msg, err := toKafkaMessage(envelope)
	if err != nil {
		return err
	}

	err = p.writer.WriteMessages(c, msg)
	if err != nil {
		return fmt.Errorf("error publishing event %s: %s", envelope, err)
	}

	return nil
}

func toKafkaMessage(envelope EventEnvelope) (kafka.Message, error) {
	data, err := json.Marshal(envelope)
	if err != nil {
		return kafka.Message{}, fmt.Errorf("error serializing envelope %s: %s", envelope, err)
	}

	return kafka.Message{
		Topic: envelope.Topic,
		Key:   []byte(envelope.AggregateUID),
		Value: data,
		Time:  envelope.CreatedAt,
		Headers: []kafka.Header{
			{Key: "eventType", Value: []byte(envelope.EventTypeName)},
		},
	}, nil
}
