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

package mongo

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mendersoftware/devicehub/model"
	"github.com/mendersoftware/devicehub/store"
)

func newDeviceWithHardware(id, licenseID, hardwareID string, at time.Time) *model.Device {
	return &model.Device{
		ID:        id,
		LicenseID: licenseID,
		Fingerprint: model.Fingerprint{
			HardwareID:     hardwareID,
			InstallationID: "inst-" + hardwareID,
		},
		Name:      "device " + id,
		Status:    model.DeviceStatusOffline,
		CreatedTs: at,
		UpdatedTs: at,
	}
}

func TestDevices(t *testing.T) {
	ds := newTestDataStore(t)
	ctx := context.Background()
	now := time.Now().UTC().Truncate(time.Millisecond)

	require.NoError(t, ds.InsertDevice(ctx, newDeviceWithHardware("dev-1", "lic-1", "hw-1", now)))
	require.NoError(t, ds.InsertDevice(ctx, newDeviceWithHardware("dev-2", "lic-1", "hw-2", now)))

	// same fingerprint under the same license
	err := ds.InsertDevice(ctx, newDeviceWithHardware("dev-3", "lic-1", "hw-1", now))
	assert.Equal(t, store.ErrDeviceExists, err)
	// invalid device
	err = ds.InsertDevice(ctx, &model.Device{ID: "dev-4"})
	assert.Error(t, err)

	device, err := ds.FindDeviceByFingerprint(ctx, "lic-1", model.Fingerprint{
		HardwareID:     "hw-2",
		InstallationID: "inst-hw-2",
	})
	require.NoError(t, err)
	assert.Equal(t, "dev-2", device.ID)

	_, err = ds.FindDeviceByFingerprint(ctx, "lic-2", model.Fingerprint{
		HardwareID:     "hw-2",
		InstallationID: "inst-hw-2",
	})
	assert.Equal(t, store.ErrDeviceNotFound, err)

	_, err = ds.GetDevice(ctx, "dev-9")
	assert.Equal(t, store.ErrDeviceNotFound, err)

	// connect twice, then a disconnect observing the first version
	later := now.Add(time.Minute)
	v1, err := ds.SetDeviceConnected(ctx, "dev-1", "10.0.0.1", later)
	require.NoError(t, err)
	v2, err := ds.SetDeviceConnected(ctx, "dev-1", "10.0.0.2", later)
	require.NoError(t, err)
	assert.Equal(t, v1+1, v2)

	require.NoError(t, ds.SetDeviceOffline(ctx, "dev-1", v1, later))
	device, err = ds.GetDevice(ctx, "dev-1")
	require.NoError(t, err)
	assert.Equal(t, model.DeviceStatusOnline, device.Status)
	assert.Equal(t, "10.0.0.2", device.LastIP)

	require.NoError(t, ds.SetDeviceOffline(ctx, "dev-1", v2, later))
	device, err = ds.GetDevice(ctx, "dev-1")
	require.NoError(t, err)
	assert.Equal(t, model.DeviceStatusOffline, device.Status)

	// a device flagged with a warning goes offline too
	v3, err := ds.SetDeviceConnected(ctx, "dev-1", "10.0.0.2", later)
	require.NoError(t, err)
	require.NoError(t, ds.SetDeviceStatus(ctx, "dev-1", model.DeviceStatusWarning, later))
	require.NoError(t, ds.SetDeviceOffline(ctx, "dev-1", v3, later))
	device, err = ds.GetDevice(ctx, "dev-1")
	require.NoError(t, err)
	assert.Equal(t, model.DeviceStatusOffline, device.Status)

	// blocked devices cannot connect
	require.NoError(t, ds.SetDeviceStatus(ctx, "dev-2", model.DeviceStatusBlocked, later))
	_, err = ds.SetDeviceConnected(ctx, "dev-2", "10.0.0.3", later)
	assert.Equal(t, store.ErrDeviceNotFound, err)
	device, err = ds.GetDevice(ctx, "dev-2")
	require.NoError(t, err)
	assert.Equal(t, model.DeviceStatusBlocked, device.Status)

	err = ds.SetDeviceStatus(ctx, "dev-9", model.DeviceStatusOffline, later)
	assert.Equal(t, store.ErrDeviceNotFound, err)

	seen := later.Add(time.Minute)
	require.NoError(t, ds.TouchDevice(ctx, "dev-1", seen))
	device, err = ds.GetDevice(ctx, "dev-1")
	require.NoError(t, err)
	require.NotNil(t, device.LastSeenTs)
	assert.True(t, seen.Equal(*device.LastSeenTs))
}
