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

package app

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/mendersoftware/go-lib-micro/log"
	"github.com/pkg/errors"

	"github.com/mendersoftware/devicehub/client/workflows"
	"github.com/mendersoftware/devicehub/model"
	"github.com/mendersoftware/devicehub/store"
)

const reasonDeviceFailure = "device reported a failure"

// CreateCommand stores a new pending command for the device
func (a *app) CreateCommand(
	ctx context.Context,
	deviceID string,
	cmdType model.CommandType,
	payload json.RawMessage,
	scheduledAt *time.Time,
) (*model.Command, error) {
	if err := cmdType.Validate(); err != nil {
		return nil, errors.Wrap(err, "invalid command type")
	}
	_, err := a.store.GetDevice(ctx, deviceID)
	if err == store.ErrDeviceNotFound {
		return nil, ErrDeviceNotFound
	} else if err != nil {
		return nil, err
	}

	now := a.now()
	cmd := &model.Command{
		ID:            uuid.NewString(),
		DeviceID:      deviceID,
		Type:          cmdType,
		Payload:       payload,
		Status:        model.CommandStatusPending,
		CorrelationID: uuid.New(),
		ScheduledTs:   now,
		CreatedTs:     now,
		UpdatedTs:     now,
	}
	if scheduledAt != nil && !scheduledAt.IsZero() {
		cmd.ScheduledTs = *scheduledAt
	}
	if err := cmd.Validate(); err != nil {
		return nil, errors.Wrap(err, "invalid command")
	}
	if err := a.store.InsertCommand(ctx, cmd); err != nil {
		return nil, errors.Wrap(err, "failed to store command")
	}
	commandsCreated.WithLabelValues(string(cmdType)).Inc()
	log.FromContext(ctx).F(log.Ctx{
		"device_id":      deviceID,
		"command_id":     cmd.ID,
		"correlation_id": cmd.CorrelationID.String(),
	}).Infof("created %s command", cmdType)
	return cmd, nil
}

// IssueCommand creates a command and tries to deliver it right away. The
// returned flag tells whether any connection of the device accepted the
// push; undelivered commands stay pending for the reconciler.
func (a *app) IssueCommand(
	ctx context.Context,
	deviceID string,
	cmdType model.CommandType,
	payload json.RawMessage,
) (*model.Command, bool, error) {
	cmd, err := a.CreateCommand(ctx, deviceID, cmdType, payload, nil)
	if err != nil {
		return nil, false, err
	}
	a.submitAuditLog(ctx, workflows.ActionIssueCommand, workflows.Object{
		ID:   cmd.ID,
		Type: workflows.ObjectCommand,
		Command: &workflows.Command{
			DeviceID: deviceID,
			Type:     string(cmdType),
		},
	}, "")

	delivered := a.Dispatch(ctx, cmd)
	if !delivered {
		return cmd, false, nil
	}
	ok, err := a.MarkSent(ctx, cmd.ID)
	if err != nil {
		return cmd, true, err
	} else if ok {
		now := a.now()
		cmd.Status = model.CommandStatusSent
		cmd.SentTs = &now
		cmd.Attempts++
		return cmd, true, nil
	}
	// the acknowledgement overtook us
	latest, err := a.store.GetCommand(ctx, cmd.ID)
	if err != nil {
		return cmd, true, err
	}
	return latest, true, nil
}

// GetCommand returns a command by id
func (a *app) GetCommand(ctx context.Context, commandID string) (*model.Command, error) {
	cmd, err := a.store.GetCommand(ctx, commandID)
	if err == store.ErrCommandNotFound {
		return nil, ErrCommandNotFound
	}
	return cmd, err
}

// ListDeviceCommands returns the most recent commands of the device
func (a *app) ListDeviceCommands(
	ctx context.Context,
	deviceID string,
	status model.CommandStatus,
	limit int64,
) ([]model.Command, error) {
	if _, err := a.GetDevice(ctx, deviceID); err != nil {
		return nil, err
	}
	return a.store.ListDeviceCommands(ctx, deviceID, status, limit)
}

// FindByCorrelationID returns the command with the correlation id, or nil
// if there is none.
func (a *app) FindByCorrelationID(ctx context.Context, correlationID uuid.UUID) (*model.Command, error) {
	cmd, err := a.store.FindCommandByCorrelationID(ctx, correlationID)
	if err == store.ErrCommandNotFound {
		return nil, nil
	}
	return cmd, err
}

func (a *app) MarkSent(ctx context.Context, commandID string) (bool, error) {
	return a.transition(ctx, commandID, model.CommandStatusSent, "", false)
}

func (a *app) MarkAcknowledged(ctx context.Context, commandID string) (bool, error) {
	return a.transition(ctx, commandID, model.CommandStatusAcknowledged, "", false)
}

func (a *app) MarkCompleted(ctx context.Context, commandID string) (bool, error) {
	return a.transition(ctx, commandID, model.CommandStatusCompleted, "", false)
}

func (a *app) MarkFailed(ctx context.Context, commandID, reason string) (bool, error) {
	return a.transition(ctx, commandID, model.CommandStatusFailed, reason, false)
}

func (a *app) MarkTimedOut(ctx context.Context, commandID string) (bool, error) {
	return a.transition(ctx, commandID, model.CommandStatusTimedOut, "", false)
}

// transition moves the command to status to if the state machine allows
// it from the command's current status. A rejected transition is not an
// error: concurrent writers race benignly.
func (a *app) transition(
	ctx context.Context,
	commandID string,
	to model.CommandStatus,
	reason string,
	lateAck bool,
) (bool, error) {
	update := model.NewCommandUpdate(commandID, to, a.now(), reason, lateAck)
	ok, err := a.store.UpdateCommand(ctx, update)
	if err != nil {
		return false, err
	}
	l := log.FromContext(ctx).F(log.Ctx{"command_id": commandID})
	if !ok {
		l.Warnf("ignoring transition to %s: command is not in any of %v", to, update.From)
		return false, nil
	}
	commandTransitions.WithLabelValues(string(to)).Inc()
	l.Debugf("command is now %s", to)
	return true, nil
}

// AcknowledgeCommand applies a device acknowledgement. Acknowledgements of
// unknown commands are dropped.
func (a *app) AcknowledgeCommand(ctx context.Context, ack *model.Acknowledgement) error {
	l := log.FromContext(ctx).F(log.Ctx{
		"correlation_id": ack.CorrelationID.String(),
	})
	cmd, err := a.FindByCorrelationID(ctx, ack.CorrelationID)
	if err != nil {
		return errors.Wrap(err, "failed to look up command")
	} else if cmd == nil {
		acknowledgements.WithLabelValues(ackUnknown).Inc()
		l.Warn("dropping acknowledgement of unknown command")
		return nil
	}

	var (
		to     model.CommandStatus
		reason string
	)
	switch {
	case ack.Received:
		to = model.CommandStatusAcknowledged
	case ack.Success:
		to = model.CommandStatusCompleted
	default:
		to = model.CommandStatusFailed
		reason = ack.Error
		if reason == "" {
			reason = reasonDeviceFailure
		}
	}
	ok, err := a.transition(ctx, cmd.ID, to, reason, a.AcceptLateAcks)
	if err != nil {
		return errors.Wrap(err, "failed to update command")
	} else if ok {
		acknowledgements.WithLabelValues(ackApplied).Inc()
	} else {
		acknowledgements.WithLabelValues(ackIgnored).Inc()
	}
	return nil
}
