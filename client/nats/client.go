// Copyright 2023 Northern.tech AS
//
//    Licensed under the Apache License, Version 2.0 (the "License");
//    you may not use this file except in compliance with the License.
//    You may obtain a copy of the License at
//
//        http://www.apache.org/licenses/LICENSE-2.0
//
//    Unless required by applicable law or agreed to in writing, software
//    distributed under the License is distributed on an "AS IS" BASIS,
//    WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
//    See the License for the specific language governing permissions and
//    limitations under the License.

package nats

import (
	"context"
	"time"

	natsio "github.com/nats-io/nats.go"
	"github.com/pkg/errors"

	"github.com/mendersoftware/go-lib-micro/log"
)

const (
	// Set reconnect buffer size in bytes (10 MB)
	reconnectBufSize = 10 * 1024 * 1024
	// Set reconnect interval to 1 second
	reconnectWaitTime = 1 * time.Second
)

// upper bound on the time Publish waits for the subscriber's reply
var ackWait = 30 * time.Second

var (
	ErrTimeout      = errors.New("nats: timeout waiting for acknowledgement")
	ErrNoResponders = errors.New("nats: no subscriber for subject")
)

// ReplyError is returned by Publish when the subscriber replies with a
// non-empty message, which carries the reason it could not handle the
// published message.
type ReplyError struct {
	Reason string
}

func (err *ReplyError) Error() string {
	return "nats: message rejected: " + err.Reason
}

// Client is the nats client
//
//go:generate ../../utils/mockgen.sh
type Client interface {
	// Publish sends data on subj and waits for a single subscriber to
	// acknowledge it with an empty reply.
	Publish(ctx context.Context, subj string, data []byte) error
	PublishNoAck(subj string, data []byte) error
	ChanSubscribe(subj string, ch chan *natsio.Msg) (*natsio.Subscription, error)
	IsConnected() bool
	Close()
}

// NewClient returns a new nats client
func NewClient(url string, opts ...natsio.Option) (Client, error) {
	natsClient, err := natsio.Connect(url, opts...)
	if err != nil {
		return nil, err
	}
	return &client{
		nats: natsClient,
	}, nil
}

// NewClientWithDefaults returns a new nats client with default options
func NewClientWithDefaults(url string) (Client, error) {
	ctx := context.Background()
	l := log.FromContext(ctx)

	natsClient, err := NewClient(url,
		func(o *natsio.Options) error {
			o.AllowReconnect = true
			o.MaxReconnect = -1
			o.ReconnectBufSize = reconnectBufSize
			o.ReconnectWait = reconnectWaitTime
			o.RetryOnFailedConnect = true
			o.ClosedCB = func(_ *natsio.Conn) {
				l.Info("nats client closed the connection")
			}
			o.DisconnectedErrCB = func(_ *natsio.Conn, e error) {
				if e != nil {
					l.Warnf("nats client disconnected, err: %v", e)
				}
			}
			o.ReconnectedCB = func(_ *natsio.Conn) {
				l.Warn("nats client reconnected")
			}
			return nil
		},
	)
	if err != nil {
		return nil, err
	}
	return natsClient, nil
}

type client struct {
	nats *natsio.Conn
}

func (c *client) Publish(ctx context.Context, subj string, data []byte) error {
	reqCtx, cancel := context.WithTimeout(ctx, ackWait)
	defer cancel()

	msg, err := c.nats.RequestWithContext(reqCtx, subj, data)
	switch {
	case err == nil:

	case errors.Is(err, natsio.ErrNoResponders):
		return ErrNoResponders

	case ctx.Err() != nil:
		return ctx.Err()

	case errors.Is(err, context.DeadlineExceeded),
		errors.Is(err, natsio.ErrTimeout):
		return ErrTimeout

	default:
		return errors.Wrap(err, "nats: failed to publish message")
	}
	if len(msg.Data) > 0 {
		return &ReplyError{Reason: string(msg.Data)}
	}
	return nil
}

func (c *client) PublishNoAck(subj string, data []byte) error {
	return c.nats.Publish(subj, data)
}

func (c *client) ChanSubscribe(subj string,
	channel chan *natsio.Msg) (*natsio.Subscription, error) {
	return c.nats.ChanSubscribe(subj, channel)
}

func (c *client) IsConnected() bool {
	return c.nats.IsConnected()
}

func (c *client) Close() {
	c.nats.Close()
}
