package broker

import (
	"context"

	"github.com/casualjim/brainstorm/events"
)

type Broker interface {
	Topic(context.Context, string) Topic
}

// Topic is a named event stream. Every topic is also an events.Publisher.
type Topic interface {
	events.Publisher
	Subscribe(context.Context, events.Hook) (Subscription, error)
}

type Subscription interface {
	ID() string
	Unsubscribe()
}
