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
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	gateway_mocks "github.com/mendersoftware/devicehub/gateway/mocks"
	"github.com/mendersoftware/devicehub/model"
	"github.com/mendersoftware/devicehub/store"
	store_mocks "github.com/mendersoftware/devicehub/store/mocks"
	"github.com/mendersoftware/devicehub/utils"
)

func TestRecordConnect(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	env := newTestEnv(t)
	env.store.addDevice("dev", model.DeviceStatusOffline)

	sess, err := env.app.RecordConnect(ctx, "dev", "conn-1", "10.0.0.1", "agent/1.0")
	require.NoError(t, err)
	assert.Equal(t, "dev", sess.DeviceID)
	assert.Equal(t, "conn-1", sess.ConnectionID)
	assert.Equal(t, testEpoch, sess.ConnectedTs)
	assert.Equal(t, testEpoch, sess.LastHeartbeatTs)
	assert.True(t, sess.IsLive())

	device, _ := env.store.GetDevice(ctx, "dev")
	assert.Equal(t, model.DeviceStatusOnline, device.Status)
	assert.Equal(t, "10.0.0.1", device.LastIP)
	require.NotNil(t, device.LastSeenTs)
	assert.Equal(t, testEpoch, *device.LastSeenTs)
	assert.Equal(t, int64(1), device.Version)

	// connection ids are unique
	_, err = env.app.RecordConnect(ctx, "dev", "conn-1", "10.0.0.1", "agent/1.0")
	assert.Error(t, err)
}

func TestRecordConnectRejected(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	env := newTestEnv(t)
	env.store.addDevice("blocked", model.DeviceStatusBlocked)

	_, err := env.app.RecordConnect(ctx, "unknown", "conn-1", "", "")
	assert.ErrorIs(t, err, ErrDeviceNotFound)

	_, err = env.app.RecordConnect(ctx, "blocked", "conn-2", "", "")
	assert.ErrorIs(t, err, ErrDeviceBlocked)

	// no session row, status untouched
	sessions, _ := env.store.ListDeviceSessions(ctx, "blocked", 0)
	assert.Empty(t, sessions)
	device, _ := env.store.GetDevice(ctx, "blocked")
	assert.Equal(t, model.DeviceStatusBlocked, device.Status)
	assert.Zero(t, device.Version)
}

func TestRecordConnectStoreError(t *testing.T) {
	t.Parallel()
	env := newTestEnv(t)
	env.store.addDevice("dev", model.DeviceStatusOffline)
	env.store.failWith("InsertSession", errors.New("write conflict"))

	_, err := env.app.RecordConnect(context.Background(), "dev", "conn", "", "")
	assert.EqualError(t, err, "failed to register session: write conflict")
	device, _ := env.store.GetDevice(context.Background(), "dev")
	assert.Equal(t, model.DeviceStatusOffline, device.Status)
}

func TestRecordDisconnect(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	env := newTestEnv(t)
	env.store.addDevice("dev", model.DeviceStatusOffline)

	_, err := env.app.RecordConnect(ctx, "dev", "conn-1", "", "")
	require.NoError(t, err)
	env.clock.Advance(time.Minute)

	require.NoError(t, env.app.RecordDisconnect(ctx, "conn-1"))
	device, _ := env.store.GetDevice(ctx, "dev")
	assert.Equal(t, model.DeviceStatusOffline, device.Status)
	sessions, _ := env.store.ListDeviceSessions(ctx, "dev", 0)
	require.Len(t, sessions, 1)
	require.NotNil(t, sessions[0].DisconnectedTs)
	assert.Equal(t, testEpoch.Add(time.Minute), *sessions[0].DisconnectedTs)

	// closing again is a no-op
	env.clock.Advance(time.Minute)
	require.NoError(t, env.app.RecordDisconnect(ctx, "conn-1"))
	sessions, _ = env.store.ListDeviceSessions(ctx, "dev", 0)
	assert.Equal(t, testEpoch.Add(time.Minute), *sessions[0].DisconnectedTs)

	// so is closing an unknown connection
	assert.NoError(t, env.app.RecordDisconnect(ctx, "conn-unknown"))
}

func TestRecordDisconnectOverlappingSessions(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	env := newTestEnv(t)
	env.store.addDevice("dev", model.DeviceStatusOffline)

	_, err := env.app.RecordConnect(ctx, "dev", "old", "", "")
	require.NoError(t, err)
	_, err = env.app.RecordConnect(ctx, "dev", "new", "", "")
	require.NoError(t, err)

	live, err := env.app.LiveConnectionsFor(ctx, "dev")
	require.NoError(t, err)
	assert.True(t, live.Contains("old", "new"))
	assert.Equal(t, 2, live.Cardinality())

	// the old connection going away leaves the device online
	require.NoError(t, env.app.RecordDisconnect(ctx, "old"))
	device, _ := env.store.GetDevice(ctx, "dev")
	assert.Equal(t, model.DeviceStatusOnline, device.Status)

	require.NoError(t, env.app.RecordDisconnect(ctx, "new"))
	device, _ = env.store.GetDevice(ctx, "dev")
	assert.Equal(t, model.DeviceStatusOffline, device.Status)
}

func TestRecordDisconnectKeepsBlocked(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	env := newTestEnv(t)
	env.store.addDevice("dev", model.DeviceStatusOffline)

	_, err := env.app.RecordConnect(ctx, "dev", "conn", "", "")
	require.NoError(t, err)
	require.NoError(t, env.store.SetDeviceStatus(ctx, "dev", model.DeviceStatusBlocked, testEpoch))

	require.NoError(t, env.app.RecordDisconnect(ctx, "conn"))
	device, _ := env.store.GetDevice(ctx, "dev")
	assert.Equal(t, model.DeviceStatusBlocked, device.Status)
}

func TestRecordDisconnectWarningDevice(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	env := newTestEnv(t)
	env.store.addDevice("dev", model.DeviceStatusOffline)

	_, err := env.app.RecordConnect(ctx, "dev", "conn", "", "")
	require.NoError(t, err)
	require.NoError(t, env.store.SetDeviceStatus(ctx, "dev", model.DeviceStatusWarning, testEpoch))

	require.NoError(t, env.app.RecordDisconnect(ctx, "conn"))
	device, _ := env.store.GetDevice(ctx, "dev")
	assert.Equal(t, model.DeviceStatusOffline, device.Status)
}

func TestRecordHeartbeat(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	env := newTestEnv(t)
	env.store.addDevice("dev", model.DeviceStatusOffline)

	_, err := env.app.RecordConnect(ctx, "dev", "conn", "", "")
	require.NoError(t, err)
	env.clock.Advance(30 * time.Second)
	require.NoError(t, env.app.RecordHeartbeat(ctx, "conn"))

	sessions, _ := env.store.ListDeviceSessions(ctx, "dev", 0)
	assert.Equal(t, testEpoch.Add(30*time.Second), sessions[0].LastHeartbeatTs)
	device, _ := env.store.GetDevice(ctx, "dev")
	assert.Equal(t, testEpoch.Add(30*time.Second), *device.LastSeenTs)

	// heartbeats on closed sessions are ignored
	require.NoError(t, env.app.RecordDisconnect(ctx, "conn"))
	env.clock.Advance(30 * time.Second)
	assert.NoError(t, env.app.RecordHeartbeat(ctx, "conn"))
	sessions, _ = env.store.ListDeviceSessions(ctx, "dev", 0)
	assert.Equal(t, testEpoch.Add(30*time.Second), sessions[0].LastHeartbeatTs)
}

func TestLiveConnectionsForOfflineDevice(t *testing.T) {
	t.Parallel()
	env := newTestEnv(t)
	env.store.addDevice("dev", model.DeviceStatusOffline)

	live, err := env.app.LiveConnectionsFor(context.Background(), "dev")
	assert.NoError(t, err)
	assert.Zero(t, live.Cardinality())

	live, err = env.app.LiveConnectionsFor(context.Background(), "unknown")
	assert.NoError(t, err)
	assert.Zero(t, live.Cardinality())
}

func TestEvictStaleSessions(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	env := newTestEnv(t)
	env.store.addDevice("quiet", model.DeviceStatusOffline)
	env.store.addDevice("chatty", model.DeviceStatusOffline)

	_, err := env.app.RecordConnect(ctx, "quiet", "conn-quiet", "", "")
	require.NoError(t, err)
	_, err = env.app.RecordConnect(ctx, "chatty", "conn-chatty", "", "")
	require.NoError(t, err)

	env.clock.Advance(2 * time.Minute)
	require.NoError(t, env.app.RecordHeartbeat(ctx, "conn-chatty"))
	env.clock.Advance(2 * time.Minute)

	n, err := env.app.EvictStaleSessions(ctx, env.clock.Now().Add(-3*time.Minute))
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	quiet, _ := env.store.GetDevice(ctx, "quiet")
	assert.Equal(t, model.DeviceStatusOffline, quiet.Status)
	chatty, _ := env.store.GetDevice(ctx, "chatty")
	assert.Equal(t, model.DeviceStatusOnline, chatty.Status)
}

func TestRecordHeartbeatStore(t *testing.T) {
	t.Parallel()
	testCases := []struct {
		Name string

		Session      *model.DeviceSession
		HeartbeatErr error
		TouchErr     error

		Error string
	}{{
		Name:    "ok",
		Session: &model.DeviceSession{ID: "sess", DeviceID: "dev", ConnectionID: "conn"},
	}, {
		Name:         "ok, session already closed",
		HeartbeatErr: store.ErrSessionNotFound,
	}, {
		Name:         "error, heartbeat",
		HeartbeatErr: errors.New("connection reset"),
		Error:        "failed to record heartbeat: connection reset",
	}, {
		Name:     "error, touch device",
		Session:  &model.DeviceSession{ID: "sess", DeviceID: "dev", ConnectionID: "conn"},
		TouchErr: errors.New("not primary"),
		Error:    "failed to update device: not primary",
	}}
	for i := range testCases {
		tc := testCases[i]
		t.Run(tc.Name, func(t *testing.T) {
			t.Parallel()
			ctx := context.Background()
			ds := store_mocks.NewDataStore(t)
			conf := testTimeouts
			conf.Clock = utils.NewManualClock(testEpoch)
			a := New(ds, gateway_mocks.NewTransport(t), nil, conf)

			ds.On("UpdateHeartbeat", ctx, "conn", testEpoch).
				Return(tc.Session, tc.HeartbeatErr)
			if tc.Session != nil {
				ds.On("TouchDevice", ctx, "dev", testEpoch).
					Return(tc.TouchErr)
			}

			err := a.RecordHeartbeat(ctx, "conn")
			if tc.Error != "" {
				assert.EqualError(t, err, tc.Error)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}
