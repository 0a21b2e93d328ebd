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
	"encoding/json"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/google/uuid"
	"github.com/mendersoftware/go-lib-micro/ws"
	"github.com/pkg/errors"
)

// ProtoTypeHub is the protocol number of the device hub messages
const ProtoTypeHub ws.ProtoType = 0x0100

// Message types exchanged on the device connection
const (
	// server -> device
	MessageTypeReceiveCommand      = "receive_command"
	MessageTypeReceiveNotification = "receive_notification"

	// device -> server
	MessageTypeHeartbeat          = "heartbeat"
	MessageTypeAcknowledgeCommand = "acknowledge_command"
)

// Message header properties
const (
	PropertyCorrelationID = "correlation_id"
	PropertyCommandType   = "command_type"
	PropertySeverity      = "severity"
	PropertySuccess       = "success"
	PropertyError         = "error"
	PropertyStage         = "stage"
)

// AckStageReceived marks an acknowledgement of receipt; the device will
// report the outcome with a second acknowledgement.
const AckStageReceived = "received"

var (
	ErrUnexpectedProto    = errors.New("unexpected protocol")
	ErrMissingCorrelation = errors.New("missing or malformed correlation id")
)

// Severity of a notification
type Severity string

const (
	SeverityInfo     Severity = "info"
	SeverityWarning  Severity = "warning"
	SeverityError    Severity = "error"
	SeverityCritical Severity = "critical"
)

func (s Severity) Validate() error {
	return validation.Validate(string(s), validation.In(
		string(SeverityInfo),
		string(SeverityWarning),
		string(SeverityError),
		string(SeverityCritical),
	))
}

// CommandPush is the command as delivered to the device
type CommandPush struct {
	CorrelationID uuid.UUID
	Type          CommandType
	Payload       json.RawMessage
}

// ProtoMsg returns the wire message for the push
func (p CommandPush) ProtoMsg() *ws.ProtoMsg {
	return &ws.ProtoMsg{
		Header: ws.ProtoHdr{
			Proto:   ProtoTypeHub,
			MsgType: MessageTypeReceiveCommand,
			Properties: map[string]interface{}{
				PropertyCorrelationID: p.CorrelationID.String(),
				PropertyCommandType:   string(p.Type),
			},
		},
		Body: p.Payload,
	}
}

// Notification is a message shown on the device, outside the command
// lifecycle.
type Notification struct {
	Message  string   `json:"message"`
	Severity Severity `json:"severity"`
}

func (n Notification) Validate() error {
	return validation.ValidateStruct(&n,
		validation.Field(&n.Message, validation.Required, validation.Length(1, 4096)),
		validation.Field(&n.Severity),
	)
}

// ProtoMsg returns the wire message for the notification
func (n Notification) ProtoMsg() *ws.ProtoMsg {
	severity := n.Severity
	if severity == "" {
		severity = SeverityInfo
	}
	return &ws.ProtoMsg{
		Header: ws.ProtoHdr{
			Proto:   ProtoTypeHub,
			MsgType: MessageTypeReceiveNotification,
			Properties: map[string]interface{}{
				PropertySeverity: string(severity),
			},
		},
		Body: []byte(n.Message),
	}
}

// Acknowledgement is the device report on a command
type Acknowledgement struct {
	CorrelationID uuid.UUID
	Success       bool
	Error         string
	// Received is set when the device only confirms the receipt.
	Received bool
}

// ParseAcknowledgement extracts the acknowledgement from a device message
func ParseAcknowledgement(msg *ws.ProtoMsg) (*Acknowledgement, error) {
	if msg.Header.Proto != ProtoTypeHub {
		return nil, ErrUnexpectedProto
	}
	props := msg.Header.Properties
	rawID, _ := props[PropertyCorrelationID].(string)
	correlationID, err := uuid.Parse(rawID)
	if err != nil || correlationID == uuid.Nil {
		return nil, ErrMissingCorrelation
	}
	ack := &Acknowledgement{
		CorrelationID: correlationID,
	}
	ack.Success, _ = props[PropertySuccess].(bool)
	ack.Error, _ = props[PropertyError].(string)
	if stage, _ := props[PropertyStage].(string); stage == AckStageReceived {
		ack.Received = true
	}
	return ack, nil
}
