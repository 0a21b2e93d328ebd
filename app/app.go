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
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	mapset "github.com/deckarep/golang-set/v2"
	"github.com/google/uuid"
	"github.com/pkg/errors"

	"github.com/mendersoftware/devicehub/client/workflows"
	"github.com/mendersoftware/devicehub/gateway"
	"github.com/mendersoftware/devicehub/model"
	"github.com/mendersoftware/devicehub/store"
	"github.com/mendersoftware/devicehub/utils"
)

// App errors
var (
	ErrDeviceNotFound     = errors.New("device not found")
	ErrDeviceBlocked      = errors.New("device is blocked")
	ErrCommandNotFound    = errors.New("command not found")
	ErrLicenseInvalid     = errors.New("license is not valid")
	ErrLicenseExists      = errors.New("license key already exists")
	ErrDeviceLimitReached = errors.New("license device limit reached")
)

// DeviceLimitError is returned when a new device would exceed the device
// cap of its license.
type DeviceLimitError struct {
	RegisteredDevices int
	MaxDevices        int
}

func (err *DeviceLimitError) Error() string {
	return fmt.Sprintf("%s: %d/%d devices registered",
		ErrDeviceLimitReached.Error(), err.RegisteredDevices, err.MaxDevices)
}

func (err *DeviceLimitError) Is(target error) bool {
	return target == ErrDeviceLimitReached
}

// App interface describes app objects
//
//nolint:lll
//go:generate ../utils/mockgen.sh
type App interface {
	HealthCheck(ctx context.Context) error

	CreateLicense(ctx context.Context, license *model.License) error
	ValidateLicense(ctx context.Context, req *model.LicenseValidationRequest) (*model.LicenseValidation, error)

	GetDevice(ctx context.Context, deviceID string) (*model.Device, error)
	BlockDevice(ctx context.Context, deviceID string) error
	UnblockDevice(ctx context.Context, deviceID string) error
	ListDeviceSessions(ctx context.Context, deviceID string, limit int64) ([]model.DeviceSession, error)

	RecordConnect(ctx context.Context, deviceID, connectionID, ip, userAgent string) (*model.DeviceSession, error)
	RecordDisconnect(ctx context.Context, connectionID string) error
	RecordHeartbeat(ctx context.Context, connectionID string) error
	LiveConnectionsFor(ctx context.Context, deviceID string) (mapset.Set[string], error)
	EvictStaleSessions(ctx context.Context, olderThan time.Time) (int, error)

	CreateCommand(ctx context.Context, deviceID string, cmdType model.CommandType, payload json.RawMessage, scheduledAt *time.Time) (*model.Command, error)
	IssueCommand(ctx context.Context, deviceID string, cmdType model.CommandType, payload json.RawMessage) (*model.Command, bool, error)
	GetCommand(ctx context.Context, commandID string) (*model.Command, error)
	ListDeviceCommands(ctx context.Context, deviceID string, status model.CommandStatus, limit int64) ([]model.Command, error)
	FindByCorrelationID(ctx context.Context, correlationID uuid.UUID) (*model.Command, error)
	MarkSent(ctx context.Context, commandID string) (bool, error)
	MarkAcknowledged(ctx context.Context, commandID string) (bool, error)
	MarkCompleted(ctx context.Context, commandID string) (bool, error)
	MarkFailed(ctx context.Context, commandID, reason string) (bool, error)
	MarkTimedOut(ctx context.Context, commandID string) (bool, error)
	AcknowledgeCommand(ctx context.Context, ack *model.Acknowledgement) error

	Dispatch(ctx context.Context, cmd *model.Command) bool
	Notify(ctx context.Context, deviceID string, notification model.Notification) bool

	SweepOnce(ctx context.Context) (*SweepResult, error)
	RunReconciler(ctx context.Context) error

	Shutdown(timeout time.Duration)
	ShutdownDone()
	RegisterShutdownCancel(context.CancelFunc) uint32
	UnregisterShutdownCancel(uint32)
}

// Config holds the timing policy of the registry, dispatcher and
// reconciler. Zero durations are replaced by the defaults.
type Config struct {
	HaveAuditLogs bool
	// AcceptLateAcks lets a device acknowledgement correct a command
	// that already timed out.
	AcceptLateAcks bool

	DispatchTimeout   time.Duration
	AckTimeout        time.Duration
	PushTimeout       time.Duration
	HeartbeatTimeout  time.Duration
	ReconcileInterval time.Duration

	Clock utils.Clock
}

const (
	DefaultDispatchTimeout   = 5 * time.Minute
	DefaultAckTimeout        = 2 * time.Minute
	DefaultPushTimeout       = 5 * time.Second
	DefaultHeartbeatTimeout  = 3 * time.Minute
	DefaultReconcileInterval = 5 * time.Second
)

func (conf *Config) setDefaults() {
	if conf.DispatchTimeout <= 0 {
		conf.DispatchTimeout = DefaultDispatchTimeout
	}
	if conf.AckTimeout <= 0 {
		conf.AckTimeout = DefaultAckTimeout
	}
	if conf.PushTimeout <= 0 {
		conf.PushTimeout = DefaultPushTimeout
	}
	if conf.HeartbeatTimeout <= 0 {
		conf.HeartbeatTimeout = DefaultHeartbeatTimeout
	}
	if conf.ReconcileInterval <= 0 {
		conf.ReconcileInterval = DefaultReconcileInterval
	}
	if conf.Clock == nil {
		conf.Clock = utils.RealClock{}
	}
}

// app is an app object
type app struct {
	store            store.DataStore
	transport        gateway.Transport
	workflows        workflows.Client
	shutdownCancels  map[uint32]context.CancelFunc
	shutdownCancelsM *sync.Mutex
	shutdownDone     chan struct{}
	Config
}

// New initializes a new devicehub App
func New(
	ds store.DataStore,
	transport gateway.Transport,
	wf workflows.Client,
	config ...Config,
) App {
	conf := Config{}
	for _, cfgIn := range config {
		conf = cfgIn
	}
	conf.setDefaults()
	if wf == nil {
		conf.HaveAuditLogs = false
	}
	return &app{
		store:            ds,
		transport:        transport,
		workflows:        wf,
		Config:           conf,
		shutdownCancels:  make(map[uint32]context.CancelFunc),
		shutdownCancelsM: &sync.Mutex{},
		shutdownDone:     make(chan struct{}),
	}
}

func (a *app) now() time.Time {
	return a.Clock.Now()
}

// HealthCheck performs a health check and returns an error if it fails
func (a *app) HealthCheck(ctx context.Context) error {
	err := a.store.Ping(ctx)
	if err != nil {
		return errors.Wrap(err, "error reaching MongoDB")
	}
	if a.HaveAuditLogs {
		err = a.workflows.CheckHealth(ctx)
		if err != nil {
			return errors.Wrap(err, "Workflows service unhealthy")
		}
	}
	return nil
}

func (a *app) Shutdown(timeout time.Duration) {
	a.shutdownCancelsM.Lock()
	defer a.shutdownCancelsM.Unlock()
	ticker := time.NewTicker(timeout / time.Duration(len(a.shutdownCancels)+1))
	defer ticker.Stop()
	for _, cancel := range a.shutdownCancels {
		cancel()
		<-ticker.C
	}
	<-ticker.C
	close(a.shutdownDone)
}

func (a *app) ShutdownDone() {
	<-a.shutdownDone
}

var shutdownID uint32

func (a *app) RegisterShutdownCancel(cancel context.CancelFunc) uint32 {
	a.shutdownCancelsM.Lock()
	defer a.shutdownCancelsM.Unlock()
	id := atomic.AddUint32(&shutdownID, 1)
	a.shutdownCancels[id] = cancel
	return id
}

func (a *app) UnregisterShutdownCancel(id uint32) {
	a.shutdownCancelsM.Lock()
	defer a.shutdownCancelsM.Unlock()
	delete(a.shutdownCancels, id)
}
