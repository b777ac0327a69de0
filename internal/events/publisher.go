package events

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	gcppubsub "cloud.google.com/go/pubsub/v2"
)

const defaultPublishTimeout = 15 * time.Second

// Publisher serializes event payloads onto the orders topic and waits for the
// server-assigned message id.
type Publisher struct {
	topic topicPublisher
}

type topicPublisher interface {
	Publish(ctx context.Context, msg *gcppubsub.Message) publishResult
}

type publishResult interface {
	Get(ctx context.Context) (string, error)
}

// NewPublisher wraps a Pub/Sub topic publisher.
func NewPublisher(topic *gcppubsub.Publisher) (*Publisher, error) {
	if topic == nil {
		return nil, errors.New("orders topic publisher is required")
	}
	return &Publisher{topic: gcpPublisher{topic}}, nil
}

// Publish marshals the payload as JSON and blocks until the publish settles
// or the timeout elapses.
func (p *Publisher) Publish(ctx context.Context, payload any) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return err
	}

	publishCtx, cancel := context.WithTimeout(ctx, defaultPublishTimeout)
	defer cancel()

	result := p.topic.Publish(publishCtx, &gcppubsub.Message{Data: data})
	_, err = result.Get(publishCtx)
	return err
}

type gcpPublisher struct {
	topic *gcppubsub.Publisher
}

func (g gcpPublisher) Publish(ctx context.Context, msg *gcppubsub.Message) publishResult {
	return g.topic.Publish(ctx, msg)
}
