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
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/google/uuid"
)

// CommandType enumerates the commands a device understands
type CommandType string

const (
	CommandTypeLogout         CommandType = "Logout"
	CommandTypeBlockDevice    CommandType = "BlockDevice"
	CommandTypeNotify         CommandType = "Notify"
	CommandTypeForceUpdate    CommandType = "ForceUpdate"
	CommandTypeRefreshLicense CommandType = "RefreshLicense"
	CommandTypeCustom         CommandType = "Custom"
)

var commandTypes = []interface{}{
	string(CommandTypeLogout),
	string(CommandTypeBlockDevice),
	string(CommandTypeNotify),
	string(CommandTypeForceUpdate),
	string(CommandTypeRefreshLicense),
	string(CommandTypeCustom),
}

// Validate checks the underlying string: validating t itself would call
// back into this method.
func (t CommandType) Validate() error {
	return validation.Validate(string(t), validation.Required, validation.In(commandTypes...))
}

// CommandStatus is the delivery status of a command
type CommandStatus string

const (
	CommandStatusPending      CommandStatus = "pending"
	CommandStatusSent         CommandStatus = "sent"
	CommandStatusAcknowledged CommandStatus = "acknowledged"
	CommandStatusCompleted    CommandStatus = "completed"
	CommandStatusFailed       CommandStatus = "failed"
	CommandStatusTimedOut     CommandStatus = "timed_out"
)

// commandTransitions maps a target status to the statuses it can be
// reached from. Pending is a source of the acknowledgement outcomes since
// the device ack may be persisted before the sender records the push.
var commandTransitions = map[CommandStatus][]CommandStatus{
	CommandStatusSent: {
		CommandStatusPending,
	},
	CommandStatusAcknowledged: {
		CommandStatusPending,
		CommandStatusSent,
	},
	CommandStatusCompleted: {
		CommandStatusPending,
		CommandStatusSent,
		CommandStatusAcknowledged,
	},
	CommandStatusFailed: {
		CommandStatusPending,
		CommandStatusSent,
		CommandStatusAcknowledged,
	},
	CommandStatusTimedOut: {
		CommandStatusPending,
		CommandStatusSent,
	},
}

func (s CommandStatus) Validate() error {
	return validation.Validate(string(s), validation.In(
		string(CommandStatusPending),
		string(CommandStatusSent),
		string(CommandStatusAcknowledged),
		string(CommandStatusCompleted),
		string(CommandStatusFailed),
		string(CommandStatusTimedOut),
	))
}

// IsTerminal returns true for statuses no regular event can leave
func (s CommandStatus) IsTerminal() bool {
	switch s {
	case CommandStatusCompleted, CommandStatusFailed, CommandStatusTimedOut:
		return true
	}
	return false
}

// CanTransitionTo reports whether a regular (non-acknowledgement) event
// may move a command from s to the status to.
func (s CommandStatus) CanTransitionTo(to CommandStatus) bool {
	for _, from := range commandTransitions[to] {
		if from == s {
			return true
		}
	}
	return false
}

// TransitionSources returns the statuses a command must be in to move to
// status to. When lateAck is set the transition is caused by a device
// acknowledgement, which may also correct a timed out command.
func TransitionSources(to CommandStatus, lateAck bool) []CommandStatus {
	sources := commandTransitions[to]
	ret := make([]CommandStatus, len(sources), len(sources)+1)
	copy(ret, sources)
	if lateAck {
		switch to {
		case CommandStatusAcknowledged,
			CommandStatusCompleted,
			CommandStatusFailed:
			ret = append(ret, CommandStatusTimedOut)
		}
	}
	return ret
}

// Command is a unit of work pushed to a device
type Command struct {
	ID       string          `json:"id" bson:"_id"`
	DeviceID string          `json:"device_id" bson:"device_id"`
	Type     CommandType     `json:"type" bson:"type"`
	Payload  json.RawMessage `json:"payload,omitempty" bson:"payload,omitempty"`
	Status   CommandStatus   `json:"status" bson:"status"`
	// CorrelationID is exposed to the device and never changes, so an
	// acknowledgement always matches the same command across retries.
	CorrelationID  uuid.UUID  `json:"correlation_id" bson:"correlation_id"`
	ScheduledTs    time.Time  `json:"scheduled_ts" bson:"scheduled_ts"`
	CreatedTs      time.Time  `json:"created_ts" bson:"created_ts"`
	UpdatedTs      time.Time  `json:"updated_ts" bson:"updated_ts"`
	SentTs         *time.Time `json:"sent_ts,omitempty" bson:"sent_ts,omitempty"`
	AcknowledgedTs *time.Time `json:"acknowledged_ts,omitempty" bson:"acknowledged_ts,omitempty"`
	CompletedTs    *time.Time `json:"completed_ts,omitempty" bson:"completed_ts,omitempty"`
	Attempts       int        `json:"attempts" bson:"attempts"`
	Error          string     `json:"error,omitempty" bson:"error,omitempty"`
}

func (cmd Command) Validate() error {
	return validation.ValidateStruct(&cmd,
		validation.Field(&cmd.ID, validation.Required),
		validation.Field(&cmd.DeviceID, validation.Required),
		validation.Field(&cmd.Type),
		validation.Field(&cmd.CorrelationID, validation.By(func(v interface{}) error {
			if v.(uuid.UUID) == uuid.Nil {
				return validation.ErrRequired
			}
			return nil
		})),
		validation.Field(&cmd.Payload, validation.By(func(v interface{}) error {
			payload := v.(json.RawMessage)
			if len(payload) > 0 && !json.Valid(payload) {
				return validation.NewError("validation_is_json", "must be valid JSON")
			}
			return nil
		})),
	)
}

// Push returns the message delivered to the device for this command
func (cmd Command) Push() CommandPush {
	return CommandPush{
		CorrelationID: cmd.CorrelationID,
		Type:          cmd.Type,
		Payload:       cmd.Payload,
	}
}

// CommandUpdate is a status change of one command guarded by the
// statuses the command is expected to be in.
type CommandUpdate struct {
	ID    string
	From  []CommandStatus
	To    CommandStatus
	At    time.Time
	Error string
	// Attempt counts a delivery attempt on the command.
	Attempt bool
}

// NewCommandUpdate returns the guarded update moving the command to the
// status to. Acknowledgement driven updates pass lateAck to also accept
// timed out commands as a source.
func NewCommandUpdate(id string, to CommandStatus, at time.Time, reason string, lateAck bool) CommandUpdate {
	return CommandUpdate{
		ID:      id,
		From:    TransitionSources(to, lateAck),
		To:      to,
		At:      at,
		Error:   reason,
		Attempt: to == CommandStatusSent,
	}
}
