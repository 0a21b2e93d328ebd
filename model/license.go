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

// LicenseStatus is the administrative status of a license
type LicenseStatus string

const (
	LicenseStatusActive  LicenseStatus = "active"
	LicenseStatusRevoked LicenseStatus = "revoked"
)

// License grants an application user a bounded number of devices
type License struct {
	ID                string        `json:"id" bson:"_id"`
	Key               string        `json:"key" bson:"key"`
	ApplicationID     string        `json:"application_id" bson:"application_id"`
	UserID            string        `json:"user_id,omitempty" bson:"user_id,omitempty"`
	MaxDevices        int           `json:"max_devices" bson:"max_devices"`
	RegisteredDevices int           `json:"registered_devices" bson:"registered_devices"`
	Status            LicenseStatus `json:"status" bson:"status"`
	ExpiresTs         *time.Time    `json:"expires_ts,omitempty" bson:"expires_ts,omitempty"`
	CreatedTs         time.Time     `json:"created_ts" bson:"created_ts"`
}

func (l License) Validate() error {
	return validation.ValidateStruct(&l,
		validation.Field(&l.Key, validation.Required, validation.Length(8, 128)),
		validation.Field(&l.ApplicationID, validation.Required),
		validation.Field(&l.MaxDevices, validation.Required, validation.Min(1)),
		validation.Field(&l.Status, validation.In(
			LicenseStatusActive,
			LicenseStatusRevoked,
		)),
	)
}

// IsValid returns true if the license is active and not expired at now
func (l License) IsValid(now time.Time) bool {
	if l.Status != LicenseStatusActive {
		return false
	}
	return l.ExpiresTs == nil || now.Before(*l.ExpiresTs)
}

// LicenseValidationRequest is sent by a device installation to validate
// its license and, on first use, register itself.
type LicenseValidationRequest struct {
	LicenseKey     string `json:"license_key"`
	HardwareID     string `json:"hardware_id"`
	InstallationID string `json:"installation_id"`
	Name           string `json:"name"`
}

func (req LicenseValidationRequest) Validate() error {
	return validation.ValidateStruct(&req,
		validation.Field(&req.LicenseKey, validation.Required),
		validation.Field(&req.HardwareID, validation.Required, validation.Length(1, 256)),
		validation.Field(&req.InstallationID, validation.Required, validation.Length(1, 256)),
		validation.Field(&req.Name, validation.Length(0, 256)),
	)
}

// Fingerprint returns the device fingerprint carried by the request
func (req LicenseValidationRequest) Fingerprint() Fingerprint {
	return Fingerprint{
		HardwareID:     req.HardwareID,
		InstallationID: req.InstallationID,
	}
}

// LicenseValidation is the outcome of a license validation request
type LicenseValidation struct {
	Valid             bool   `json:"valid"`
	DeviceID          string `json:"device_id,omitempty"`
	Created           bool   `json:"created"`
	RegisteredDevices int    `json:"registered_devices"`
	MaxDevices        int    `json:"max_devices"`
	Reason            string `json:"reason,omitempty"`
}
