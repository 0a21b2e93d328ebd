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
	"time"

	"github.com/pkg/errors"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	mopts "go.mongodb.org/mongo-driver/mongo/options"

	"github.com/mendersoftware/devicehub/model"
	"github.com/mendersoftware/devicehub/store"
)

// InsertDevice stores a new device
func (db *DataStoreMongo) InsertDevice(ctx context.Context, device *model.Device) error {
	if err := device.Validate(); err != nil {
		return err
	}
	coll := db.collection(DevicesCollectionName)
	_, err := coll.InsertOne(ctx, device)
	if mongo.IsDuplicateKeyError(err) {
		return store.ErrDeviceExists
	}
	return errors.Wrap(err, "mongo: failed to insert device")
}

// GetDevice returns a device
func (db *DataStoreMongo) GetDevice(ctx context.Context, deviceID string) (*model.Device, error) {
	coll := db.collection(DevicesCollectionName)

	device := &model.Device{}
	err := coll.FindOne(ctx, bson.D{{Key: dbFieldID, Value: deviceID}}).
		Decode(device)
	if err == mongo.ErrNoDocuments {
		return nil, store.ErrDeviceNotFound
	} else if err != nil {
		return nil, errors.Wrap(err, "mongo: failed to get device")
	}

	return device, nil
}

// FindDeviceByFingerprint returns the device registered under the license
// with the given fingerprint
func (db *DataStoreMongo) FindDeviceByFingerprint(
	ctx context.Context,
	licenseID string,
	fp model.Fingerprint,
) (*model.Device, error) {
	coll := db.collection(DevicesCollectionName)

	device := &model.Device{}
	err := coll.FindOne(ctx, bson.D{
		{Key: dbFieldLicenseID, Value: licenseID},
		{Key: dbFieldHardwareID, Value: fp.HardwareID},
		{Key: dbFieldInstallationID, Value: fp.InstallationID},
	}).Decode(device)
	if err == mongo.ErrNoDocuments {
		return nil, store.ErrDeviceNotFound
	} else if err != nil {
		return nil, errors.Wrap(err, "mongo: failed to get device")
	}

	return device, nil
}

// SetDeviceConnected marks a device online and returns the new version of
// the device document. Blocked devices are left untouched and reported as
// not found.
func (db *DataStoreMongo) SetDeviceConnected(
	ctx context.Context,
	deviceID, ip string,
	at time.Time,
) (int64, error) {
	coll := db.collection(DevicesCollectionName)

	opts := mopts.FindOneAndUpdate().
		SetReturnDocument(mopts.After).
		SetProjection(bson.D{{Key: dbFieldVersion, Value: 1}})
	var device struct {
		Version int64 `bson:"version"`
	}
	err := coll.FindOneAndUpdate(ctx,
		bson.D{
			{Key: dbFieldID, Value: deviceID},
			{Key: dbFieldStatus, Value: bson.D{
				{Key: "$ne", Value: model.DeviceStatusBlocked},
			}},
		},
		bson.D{
			{Key: "$set", Value: bson.D{
				{Key: dbFieldStatus, Value: model.DeviceStatusOnline},
				{Key: dbFieldLastSeenTs, Value: at},
				{Key: dbFieldLastIP, Value: ip},
				{Key: dbFieldUpdatedTs, Value: at},
			}},
			{Key: "$inc", Value: bson.D{
				{Key: dbFieldVersion, Value: int64(1)},
			}},
		},
		opts,
	).Decode(&device)
	if err == mongo.ErrNoDocuments {
		return 0, store.ErrDeviceNotFound
	} else if err != nil {
		return 0, errors.Wrap(err, "mongo: failed to update device")
	}
	return device.Version, nil
}

// SetDeviceOffline marks a device offline if it is online and its version
// still matches version
func (db *DataStoreMongo) SetDeviceOffline(
	ctx context.Context,
	deviceID string,
	version int64,
	at time.Time,
) error {
	coll := db.collection(DevicesCollectionName)

	_, err := coll.UpdateOne(ctx,
		bson.D{
			{Key: dbFieldID, Value: deviceID},
			{Key: dbFieldVersion, Value: version},
			{Key: dbFieldStatus, Value: bson.D{{Key: "$in", Value: []model.DeviceStatus{
				model.DeviceStatusOnline,
				model.DeviceStatusWarning,
			}}}},
		},
		bson.D{{Key: "$set", Value: bson.D{
			{Key: dbFieldStatus, Value: model.DeviceStatusOffline},
			{Key: dbFieldUpdatedTs, Value: at},
		}}},
	)
	return errors.Wrap(err, "mongo: failed to update device")
}

// SetDeviceStatus sets the device status unconditionally
func (db *DataStoreMongo) SetDeviceStatus(
	ctx context.Context,
	deviceID string,
	status model.DeviceStatus,
	at time.Time,
) error {
	coll := db.collection(DevicesCollectionName)

	res, err := coll.UpdateOne(ctx,
		bson.D{{Key: dbFieldID, Value: deviceID}},
		bson.D{{Key: "$set", Value: bson.D{
			{Key: dbFieldStatus, Value: status},
			{Key: dbFieldUpdatedTs, Value: at},
		}}},
	)
	if err != nil {
		return errors.Wrap(err, "mongo: failed to update device")
	} else if res.MatchedCount == 0 {
		return store.ErrDeviceNotFound
	}
	return nil
}

// TouchDevice updates the last seen timestamp of the device
func (db *DataStoreMongo) TouchDevice(ctx context.Context, deviceID string, at time.Time) error {
	coll := db.collection(DevicesCollectionName)

	_, err := coll.UpdateOne(ctx,
		bson.D{{Key: dbFieldID, Value: deviceID}},
		bson.D{{Key: "$set", Value: bson.D{
			{Key: dbFieldLastSeenTs, Value: at},
		}}},
	)
	return errors.Wrap(err, "mongo: failed to update device")
}
