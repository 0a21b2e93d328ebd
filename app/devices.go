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

	"github.com/mendersoftware/go-lib-micro/log"
	"github.com/pkg/errors"

	"github.com/mendersoftware/devicehub/client/workflows"
	"github.com/mendersoftware/devicehub/model"
	"github.com/mendersoftware/devicehub/store"
)

// GetDevice returns a device
func (a *app) GetDevice(ctx context.Context, deviceID string) (*model.Device, error) {
	device, err := a.store.GetDevice(ctx, deviceID)
	if err == store.ErrDeviceNotFound {
		return nil, ErrDeviceNotFound
	} else if err != nil {
		return nil, errors.Wrap(err, "failed to get device")
	}
	return device, nil
}

// BlockDevice blocks the device and tells its live connections to shut
// down. Further connects are rejected until the device is unblocked.
func (a *app) BlockDevice(ctx context.Context, deviceID string) error {
	device, err := a.GetDevice(ctx, deviceID)
	if err != nil {
		return err
	} else if device.IsBlocked() {
		return nil
	}
	err = a.store.SetDeviceStatus(ctx, deviceID, model.DeviceStatusBlocked, a.now())
	if err == store.ErrDeviceNotFound {
		return ErrDeviceNotFound
	} else if err != nil {
		return errors.Wrap(err, "failed to block device")
	}
	a.submitAuditLog(ctx, workflows.ActionBlockDevice, workflows.Object{
		ID:   deviceID,
		Type: workflows.ObjectDevice,
	}, "")

	_, _, err = a.IssueCommand(ctx, deviceID, model.CommandTypeBlockDevice, nil)
	if err != nil {
		log.FromContext(ctx).F(log.Ctx{"device_id": deviceID}).
			Errorf("failed to issue block command: %s", err.Error())
	}
	return nil
}

// UnblockDevice lifts the block; the device is online again if it still
// holds a live connection.
func (a *app) UnblockDevice(ctx context.Context, deviceID string) error {
	device, err := a.GetDevice(ctx, deviceID)
	if err != nil {
		return err
	} else if !device.IsBlocked() {
		return nil
	}
	live, err := a.store.CountLiveSessions(ctx, deviceID)
	if err != nil {
		return errors.Wrap(err, "failed to count live sessions")
	}
	status := model.DeviceStatusOffline
	if live > 0 {
		status = model.DeviceStatusOnline
	}
	err = a.store.SetDeviceStatus(ctx, deviceID, status, a.now())
	if err == store.ErrDeviceNotFound {
		return ErrDeviceNotFound
	} else if err != nil {
		return errors.Wrap(err, "failed to unblock device")
	}
	a.submitAuditLog(ctx, workflows.ActionUnblockDevice, workflows.Object{
		ID:   deviceID,
		Type: workflows.ObjectDevice,
	}, "")
	return nil
}

// ListDeviceSessions returns the most recent sessions of the device
func (a *app) ListDeviceSessions(
	ctx context.Context,
	deviceID string,
	limit int64,
) ([]model.DeviceSession, error) {
	if _, err := a.GetDevice(ctx, deviceID); err != nil {
		return nil, err
	}
	sessions, err := a.store.ListDeviceSessions(ctx, deviceID, limit)
	if err != nil {
		return nil, errors.Wrap(err, "failed to list sessions")
	}
	return sessions, nil
}
