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

// Package gateway carries outbound messages to the node holding a device
// connection. Every connection subscribes to its own NATS subject; a push
// is a request on that subject which the connection handler answers once
// the message is written to the socket.
package gateway

import (
	"context"

	"github.com/mendersoftware/go-lib-micro/ws"
	"github.com/pkg/errors"
	"github.com/vmihailenco/msgpack/v5"

	"github.com/mendersoftware/devicehub/client/nats"
	"github.com/mendersoftware/devicehub/model"
)

var ErrConnectionGone = errors.New("gateway: connection is not served by any node")

// Transport pushes messages to a single device connection
//
//go:generate ../utils/mockgen.sh
type Transport interface {
	PushCommand(ctx context.Context, connectionID string, push model.CommandPush) error
	PushNotification(ctx context.Context, connectionID string, n model.Notification) error
}

// NATSTransport implements Transport on top of NATS request/reply
type NATSTransport struct {
	nats nats.Client
}

// NewTransport returns a transport publishing through client
func NewTransport(client nats.Client) *NATSTransport {
	return &NATSTransport{
		nats: client,
	}
}

func (t *NATSTransport) push(ctx context.Context, connectionID string, msg *ws.ProtoMsg) error {
	data, err := msgpack.Marshal(msg)
	if err != nil {
		return errors.Wrap(err, "gateway: failed to serialize message")
	}
	err = t.nats.Publish(ctx, model.GetConnectionSubject(connectionID), data)
	if errors.Is(err, nats.ErrNoResponders) {
		return ErrConnectionGone
	}
	return errors.Wrapf(err, "gateway: push to connection %s failed", connectionID)
}

// PushCommand delivers a command to the connection
func (t *NATSTransport) PushCommand(
	ctx context.Context,
	connectionID string,
	push model.CommandPush,
) error {
	return t.push(ctx, connectionID, push.ProtoMsg())
}

// PushNotification delivers a notification to the connection
func (t *NATSTransport) PushNotification(
	ctx context.Context,
	connectionID string,
	n model.Notification,
) error {
	return t.push(ctx, connectionID, n.ProtoMsg())
}

// Reply answers a push once the connection handler has dealt with it: an
// empty reply acknowledges the delivery, otherwise the reply carries the
// reason it failed.
func Reply(respond func([]byte) error, err error) error {
	if err == nil {
		return respond(nil)
	}
	reason := err.Error()
	if reason == "" {
		reason = "unknown error"
	}
	return respond([]byte(reason))
}
