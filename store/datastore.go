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

package store

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/mendersoftware/devicehub/model"
)

// DataStore interface for DataStore services
//
//nolint:lll - skip line length check for interface declaration.
//go:generate ../utils/mockgen.sh
type DataStore interface {
	Ping(ctx context.Context) error
	Close() error

	// devices
	InsertDevice(ctx context.Context, device *model.Device) error
	GetDevice(ctx context.Context, deviceID string) (*model.Device, error)
	FindDeviceByFingerprint(ctx context.Context, licenseID string, fp model.Fingerprint) (*model.Device, error)
	SetDeviceConnected(ctx context.Context, deviceID, ip string, at time.Time) (int64, error)
	SetDeviceOffline(ctx context.Context, deviceID string, version int64, at time.Time) error
	SetDeviceStatus(ctx context.Context, deviceID string, status model.DeviceStatus, at time.Time) error
	TouchDevice(ctx context.Context, deviceID string, at time.Time) error

	// licenses
	InsertLicense(ctx context.Context, license *model.License) error
	GetLicenseByKey(ctx context.Context, key string) (*model.License, error)
	ReserveLicenseSlot(ctx context.Context, licenseID string) (*model.License, error)
	ReleaseLicenseSlot(ctx context.Context, licenseID string) error

	// device sessions
	InsertSession(ctx context.Context, sess *model.DeviceSession) error
	CloseSession(ctx context.Context, connectionID string, at time.Time) (*model.DeviceSession, error)
	UpdateHeartbeat(ctx context.Context, connectionID string, at time.Time) (*model.DeviceSession, error)
	CountLiveSessions(ctx context.Context, deviceID string) (int64, error)
	GetLiveConnections(ctx context.Context, deviceID string) ([]string, error)
	FindStaleSessions(ctx context.Context, before time.Time) ([]model.DeviceSession, error)
	ListDeviceSessions(ctx context.Context, deviceID string, limit int64) ([]model.DeviceSession, error)

	// commands
	InsertCommand(ctx context.Context, cmd *model.Command) error
	GetCommand(ctx context.Context, commandID string) (*model.Command, error)
	FindCommandByCorrelationID(ctx context.Context, correlationID uuid.UUID) (*model.Command, error)
	FindPendingDue(ctx context.Context, before time.Time) ([]model.Command, error)
	FindSentBefore(ctx context.Context, before time.Time) ([]model.Command, error)
	ListDeviceCommands(ctx context.Context, deviceID string, status model.CommandStatus, limit int64) ([]model.Command, error)
	UpdateCommand(ctx context.Context, update model.CommandUpdate) (bool, error)
	ApplyCommandUpdates(ctx context.Context, updates []model.CommandUpdate) (int64, error)
}

var (
	ErrDeviceNotFound   = errors.New("store: device not found")
	ErrDeviceExists     = errors.New("store: device already exists")
	ErrLicenseNotFound  = errors.New("store: license not found")
	ErrLicenseExists    = errors.New("store: license key already exists")
	ErrLicenseExhausted = errors.New("store: license device limit reached")
	ErrSessionNotFound  = errors.New("store: session not found")
	ErrSessionExists    = errors.New("store: connection already registered")
	ErrCommandNotFound  = errors.New("store: command not found")
	ErrCommandExists    = errors.New("store: command already exists")
)
