package streaming

import (
	"context"
	"sync/atomic"

	"go-deribit-gateway/internal/infrastructure/logger"
)

// ForwardFunc receives every inbound frame for a topic, verbatim. The hub's
// Broadcast satisfies it.
type ForwardFunc func(topic, payload string)

// Pump drives one client through the connect, subscribe, receive sequence on
// a dedicated goroutine. Each received frame is handed to the forward
// function. The pump performs no automatic reconnect: a receive failure ends
// the run and is returned to the caller.
type Pump struct {
	client  *Client
	topic   string
	forward ForwardFunc
	logger  logger.Logger

	stopped atomic.Bool
	done    chan struct{}
}

// NewPump wires a client to a topic and a forward function. Run must be
// called exactly once.
func NewPump(client *Client, topic string, forward ForwardFunc, log logger.Logger) *Pump {
	return &Pump{
		client:  client,
		topic:   topic,
		forward: forward,
		logger:  log.WithField("component", "stream-pump"),
		done:    make(chan struct{}),
	}
}

// Run connects, subscribes and then receives frames until Stop is called or
// the context is cancelled. The stop flag is checked between successive
// Receive calls only; an in-flight Receive completes, errors or times out on
// its own. Run always disconnects the client before returning.
func (p *Pump) Run(ctx context.Context) error {
	defer close(p.done)

	if err := p.client.Connect(ctx); err != nil {
		return err
	}

	sub, err := NewSubscribeRequest(p.topic)
	if err != nil {
		p.client.Disconnect()
		return err
	}
	if err := p.client.Send(sub); err != nil {
		p.client.Disconnect()
		return err
	}
	p.logger.Infof("subscribed to %s", p.topic)

	for !p.stopped.Load() && ctx.Err() == nil {
		err := p.client.Receive(func(payload string) {
			p.forward(p.topic, payload)
		})
		if err != nil {
			if p.stopped.Load() || ctx.Err() != nil {
				break
			}
			p.client.Disconnect()
			return err
		}
	}

	p.client.Disconnect()
	p.logger.Info("pump stopped")
	return nil
}

// Stop requests a cooperative shutdown. It returns immediately; callers wait
// on Done or on the goroutine running Run.
func (p *Pump) Stop() {
	p.stopped.Store(true)
}

// Done is closed once Run has returned.
func (p *Pump) Done() <-chan struct{} {
	return p.done
}
