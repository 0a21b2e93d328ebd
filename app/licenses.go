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

	"github.com/google/uuid"
	"github.com/mendersoftware/go-lib-micro/log"
	"github.com/pkg/errors"

	"github.com/mendersoftware/devicehub/client/workflows"
	"github.com/mendersoftware/devicehub/model"
	"github.com/mendersoftware/devicehub/store"
)

// CreateLicense provisions a new license
func (a *app) CreateLicense(ctx context.Context, license *model.License) error {
	if license.ID == "" {
		license.ID = uuid.NewString()
	}
	if license.Status == "" {
		license.Status = model.LicenseStatusActive
	}
	license.RegisteredDevices = 0
	license.CreatedTs = a.now()
	if err := license.Validate(); err != nil {
		return errors.Wrap(err, "invalid license")
	}
	err := a.store.InsertLicense(ctx, license)
	if err == store.ErrLicenseExists {
		return ErrLicenseExists
	} else if err != nil {
		return errors.Wrap(err, "failed to store license")
	}
	a.submitAuditLog(ctx, workflows.ActionCreateLicense, workflows.Object{
		ID:   license.ID,
		Type: workflows.ObjectLicense,
	}, "")
	return nil
}

// ValidateLicense checks the license key of a device installation and
// registers the installation on first use. A new installation takes one
// slot of the license; installations already registered are always
// accepted while the license is valid.
func (a *app) ValidateLicense(
	ctx context.Context,
	req *model.LicenseValidationRequest,
) (*model.LicenseValidation, error) {
	if err := req.Validate(); err != nil {
		return nil, errors.Wrap(err, "invalid request")
	}
	license, err := a.store.GetLicenseByKey(ctx, req.LicenseKey)
	if err == store.ErrLicenseNotFound {
		return nil, ErrLicenseInvalid
	} else if err != nil {
		return nil, errors.Wrap(err, "failed to get license")
	} else if !license.IsValid(a.now()) {
		return nil, ErrLicenseInvalid
	}
	l := log.FromContext(ctx).F(log.Ctx{"license_id": license.ID})

	device, err := a.store.FindDeviceByFingerprint(ctx, license.ID, req.Fingerprint())
	if err == nil {
		return validation(license, device, false), nil
	} else if err != store.ErrDeviceNotFound {
		return nil, errors.Wrap(err, "failed to look up device")
	}

	license, err = a.store.ReserveLicenseSlot(ctx, license.ID)
	if err == store.ErrLicenseExhausted {
		// the installation may have registered concurrently
		device, e := a.store.FindDeviceByFingerprint(ctx, license.ID, req.Fingerprint())
		if e == nil {
			return validation(license, device, false), nil
		}
		l.Warnf("rejecting new device: %d/%d devices registered",
			license.RegisteredDevices, license.MaxDevices)
		return nil, &DeviceLimitError{
			RegisteredDevices: license.RegisteredDevices,
			MaxDevices:        license.MaxDevices,
		}
	} else if err == store.ErrLicenseNotFound {
		return nil, ErrLicenseInvalid
	} else if err != nil {
		return nil, errors.Wrap(err, "failed to reserve license slot")
	}

	now := a.now()
	device = &model.Device{
		ID:          uuid.NewString(),
		LicenseID:   license.ID,
		Fingerprint: req.Fingerprint(),
		Name:        req.Name,
		Status:      model.DeviceStatusOffline,
		CreatedTs:   now,
		UpdatedTs:   now,
	}
	err = a.store.InsertDevice(ctx, device)
	if err == nil {
		l.F(log.Ctx{"device_id": device.ID}).Info("registered new device")
		return validation(license, device, true), nil
	}
	if e := a.store.ReleaseLicenseSlot(ctx, license.ID); e != nil {
		l.Errorf("failed to release license slot: %s", e.Error())
	} else {
		license.RegisteredDevices--
	}
	if err != store.ErrDeviceExists {
		return nil, errors.Wrap(err, "failed to register device")
	}
	// the same installation registered concurrently
	device, err = a.store.FindDeviceByFingerprint(ctx, license.ID, req.Fingerprint())
	if err != nil {
		return nil, errors.Wrap(err, "failed to look up device")
	}
	return validation(license, device, false), nil
}

func validation(
	license *model.License,
	device *model.Device,
	created bool,
) *model.LicenseValidation {
	return &model.LicenseValidation{
		Valid:             true,
		DeviceID:          device.ID,
		Created:           created,
		RegisteredDevices: license.RegisteredDevices,
		MaxDevices:        license.MaxDevices,
	}
}
