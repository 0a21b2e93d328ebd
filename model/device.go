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
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
)

// DeviceStatus is the lifecycle status of a device
type DeviceStatus string

// Values for the device status attribute
const (
	DeviceStatusOnline  DeviceStatus = "online"
	DeviceStatusOffline DeviceStatus = "offline"
	DeviceStatusBlocked DeviceStatus = "blocked"
	DeviceStatusWarning DeviceStatus = "warning"
)

// IsConnected returns true for the statuses of a device holding a live
// connection.
func (s DeviceStatus) IsConnected() bool {
	return s == DeviceStatusOnline || s == DeviceStatusWarning
}

// Fingerprint identifies one installation under a license
type Fingerprint struct {
	HardwareID     string `json:"hardware_id" bson:"hardware_id"`
	InstallationID string `json:"installation_id" bson:"installation_id"`
}

func (f Fingerprint) Validate() error {
	return validation.ValidateStruct(&f,
		validation.Field(&f.HardwareID, validation.Required, validation.Length(1, 256)),
		validation.Field(&f.InstallationID, validation.Required, validation.Length(1, 256)),
	)
}

// Device represents a device and its attributes
type Device struct {
	ID          string       `json:"id" bson:"_id"`
	LicenseID   string       `json:"license_id" bson:"license_id"`
	Fingerprint Fingerprint  `json:"fingerprint" bson:"fingerprint"`
	Name        string       `json:"name" bson:"name"`
	Status      DeviceStatus `json:"status" bson:"status"`
	// Version is incremented on every connect; a disconnect only moves
	// the device offline when the version it observed is still current.
	Version    int64      `json:"-" bson:"version"`
	LastSeenTs *time.Time `json:"last_seen_ts,omitempty" bson:"last_seen_ts,omitempty"`
	LastIP     string     `json:"last_ip,omitempty" bson:"last_ip,omitempty"`
	CreatedTs  time.Time  `json:"created_ts" bson:"created_ts"`
	UpdatedTs  time.Time  `json:"updated_ts" bson:"updated_ts"`
}

func (d Device) Validate() error {
	return validation.ValidateStruct(&d,
		validation.Field(&d.ID, validation.Required),
		validation.Field(&d.LicenseID, validation.Required),
		validation.Field(&d.Fingerprint),
		validation.Field(&d.Status, validation.Required, validation.In(
			DeviceStatusOnline,
			DeviceStatusOffline,
			DeviceStatusBlocked,
			DeviceStatusWarning,
		)),
	)
}

// IsBlocked returns true if the device must not be allowed to connect
func (d Device) IsBlocked() bool {
	return d.Status == DeviceStatusBlocked
}
