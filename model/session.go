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

package model

import (
	"strings"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
)

const subjectPrefix = "devicehub"

// GetConnectionSubject returns the NATS subject the node holding the
// connection listens on for outbound pushes.
func GetConnectionSubject(connectionID string) string {
	return strings.Join([]string{
		subjectPrefix,
		"connection",
		connectionID,
	}, ".")
}

// DeviceSession represents one connection lifetime of a device
type DeviceSession struct {
	ID              string     `json:"id" bson:"_id"`
	DeviceID        string     `json:"device_id" bson:"device_id"`
	ConnectionID    string     `json:"connection_id" bson:"connection_id"`
	IP              string     `json:"ip,omitempty" bson:"ip,omitempty"`
	UserAgent       string     `json:"user_agent,omitempty" bson:"user_agent,omitempty"`
	ConnectedTs     time.Time  `json:"connected_ts" bson:"connected_ts"`
	DisconnectedTs  *time.Time `json:"disconnected_ts" bson:"disconnected_ts"`
	LastHeartbeatTs time.Time  `json:"last_heartbeat_ts" bson:"last_heartbeat_ts"`
}

// Subject returns the NATS subject of the session's connection
func (sess DeviceSession) Subject() string {
	return GetConnectionSubject(sess.ConnectionID)
}

// IsLive returns true while the session has not been closed
func (sess DeviceSession) IsLive() bool {
	return sess.DisconnectedTs == nil
}

func (sess DeviceSession) Validate() error {
	return validation.ValidateStruct(&sess,
		validation.Field(&sess.ID, validation.Required),
		validation.Field(&sess.DeviceID, validation.Required),
		validation.Field(&sess.ConnectionID, validation.Required),
		validation.Field(&sess.ConnectedTs, validation.Required),
	)
}
