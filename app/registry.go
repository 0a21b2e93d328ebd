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
	"time"

	mapset "github.com/deckarep/golang-set/v2"
	"github.com/google/uuid"
	"github.com/mendersoftware/go-lib-micro/log"
	"github.com/pkg/errors"

	"github.com/mendersoftware/devicehub/model"
	"github.com/mendersoftware/devicehub/store"
)

// causes of a session closing
const (
	closeDisconnect = "disconnect"
	closeEvicted    = "evicted"
)

// RecordConnect registers a new connection of the device. Unknown and
// blocked devices are rejected before anything is written.
func (a *app) RecordConnect(
	ctx context.Context,
	deviceID, connectionID, ip, userAgent string,
) (*model.DeviceSession, error) {
	l := log.FromContext(ctx).F(log.Ctx{
		"device_id":     deviceID,
		"connection_id": connectionID,
	})
	device, err := a.store.GetDevice(ctx, deviceID)
	if err == store.ErrDeviceNotFound {
		connectsRejected.WithLabelValues("not_found").Inc()
		return nil, ErrDeviceNotFound
	} else if err != nil {
		return nil, err
	} else if device.IsBlocked() {
		connectsRejected.WithLabelValues("blocked").Inc()
		return nil, ErrDeviceBlocked
	}

	now := a.now()
	sess := &model.DeviceSession{
		ID:              uuid.NewString(),
		DeviceID:        deviceID,
		ConnectionID:    connectionID,
		IP:              ip,
		UserAgent:       userAgent,
		ConnectedTs:     now,
		LastHeartbeatTs: now,
	}
	// The session must be visible before the device version changes:
	// a concurrent disconnect either counts this session or observes a
	// stale version, and in both cases leaves the device online.
	if err := a.store.InsertSession(ctx, sess); err != nil {
		return nil, errors.Wrap(err, "failed to register session")
	}
	_, err = a.store.SetDeviceConnected(ctx, deviceID, ip, now)
	if err == store.ErrDeviceNotFound {
		// blocked after the check above
		if _, e := a.store.CloseSession(ctx, connectionID, now); e != nil {
			l.Errorf("failed to close session of blocked device: %s", e.Error())
		}
		connectsRejected.WithLabelValues("blocked").Inc()
		return nil, ErrDeviceBlocked
	} else if err != nil {
		if _, e := a.store.CloseSession(ctx, connectionID, now); e != nil {
			l.Errorf("failed to close session: %s", e.Error())
		}
		return nil, errors.Wrap(err, "failed to update device status")
	}
	sessionsConnected.Inc()
	l.Info("device connected")
	return sess, nil
}

// RecordDisconnect closes the live session of the connection. Closing a
// session that is not live is a no-op.
func (a *app) RecordDisconnect(ctx context.Context, connectionID string) error {
	_, err := a.closeSession(ctx, connectionID, closeDisconnect)
	return err
}

func (a *app) closeSession(ctx context.Context, connectionID, cause string) (bool, error) {
	l := log.FromContext(ctx).F(log.Ctx{"connection_id": connectionID})
	now := a.now()
	sess, err := a.store.CloseSession(ctx, connectionID, now)
	if err == store.ErrSessionNotFound {
		l.Debug("session already closed")
		return false, nil
	} else if err != nil {
		return false, errors.Wrap(err, "failed to close session")
	}
	sessionsClosed.WithLabelValues(cause).Inc()
	l = l.F(log.Ctx{"device_id": sess.DeviceID})
	l.Infof("device session closed (%s)", cause)

	device, err := a.store.GetDevice(ctx, sess.DeviceID)
	if err == store.ErrDeviceNotFound {
		return true, nil
	} else if err != nil {
		return true, errors.Wrap(err, "failed to get device")
	} else if !device.Status.IsConnected() {
		return true, nil
	}
	live, err := a.store.CountLiveSessions(ctx, sess.DeviceID)
	if err != nil {
		return true, errors.Wrap(err, "failed to count live sessions")
	} else if live > 0 {
		l.Debugf("device has %d other live sessions", live)
		return true, nil
	}
	err = a.store.SetDeviceOffline(ctx, sess.DeviceID, device.Version, now)
	if err != nil {
		return true, errors.Wrap(err, "failed to update device status")
	}
	return true, nil
}

// RecordHeartbeat refreshes the live session of the connection
func (a *app) RecordHeartbeat(ctx context.Context, connectionID string) error {
	now := a.now()
	sess, err := a.store.UpdateHeartbeat(ctx, connectionID, now)
	if err == store.ErrSessionNotFound {
		return nil
	} else if err != nil {
		return errors.Wrap(err, "failed to record heartbeat")
	}
	err = a.store.TouchDevice(ctx, sess.DeviceID, now)
	return errors.Wrap(err, "failed to update device")
}

// LiveConnectionsFor returns the connection ids of the live sessions of
// the device; the set is empty for offline and unknown devices.
func (a *app) LiveConnectionsFor(ctx context.Context, deviceID string) (mapset.Set[string], error) {
	connections, err := a.store.GetLiveConnections(ctx, deviceID)
	if err != nil {
		return nil, errors.Wrap(err, "failed to get live connections")
	}
	return mapset.NewSet(connections...), nil
}

// EvictStaleSessions closes the live sessions without heartbeat since
// olderThan and returns the number of sessions closed.
func (a *app) EvictStaleSessions(ctx context.Context, olderThan time.Time) (int, error) {
	stale, err := a.store.FindStaleSessions(ctx, olderThan)
	if err != nil {
		return 0, errors.Wrap(err, "failed to find stale sessions")
	}
	var (
		evicted  int
		firstErr error
	)
	for _, sess := range stale {
		closed, err := a.closeSession(ctx, sess.ConnectionID, closeEvicted)
		if err != nil && firstErr == nil {
			firstErr = err
		}
		if closed {
			evicted++
		}
	}
	return evicted, firstErr
}
