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

	"github.com/pkg/errors"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	mopts "go.mongodb.org/mongo-driver/mongo/options"

	"github.com/mendersoftware/devicehub/model"
	"github.com/mendersoftware/devicehub/store"
)

// InsertLicense stores a new license
func (db *DataStoreMongo) InsertLicense(ctx context.Context, license *model.License) error {
	if err := license.Validate(); err != nil {
		return err
	}
	coll := db.collection(LicensesCollectionName)
	_, err := coll.InsertOne(ctx, license)
	if mongo.IsDuplicateKeyError(err) {
		return store.ErrLicenseExists
	}
	return errors.Wrap(err, "mongo: failed to insert license")
}

// GetLicenseByKey returns the license with the given key
func (db *DataStoreMongo) GetLicenseByKey(ctx context.Context, key string) (*model.License, error) {
	coll := db.collection(LicensesCollectionName)

	license := &model.License{}
	err := coll.FindOne(ctx, bson.D{{Key: dbFieldKey, Value: key}}).
		Decode(license)
	if err == mongo.ErrNoDocuments {
		return nil, store.ErrLicenseNotFound
	} else if err != nil {
		return nil, errors.Wrap(err, "mongo: failed to get license")
	}
	return license, nil
}

// ReserveLicenseSlot atomically increments the number of devices
// registered under the license, unless the license is already at its cap.
// The returned license reflects the counter after the reservation or, on
// ErrLicenseExhausted, the current counter.
func (db *DataStoreMongo) ReserveLicenseSlot(
	ctx context.Context,
	licenseID string,
) (*model.License, error) {
	coll := db.collection(LicensesCollectionName)

	license := &model.License{}
	err := coll.FindOneAndUpdate(ctx,
		bson.D{
			{Key: dbFieldID, Value: licenseID},
			{Key: "$expr", Value: bson.D{
				{Key: "$lt", Value: bson.A{
					"$" + dbFieldRegistered,
					"$" + dbFieldMaxDevices,
				}},
			}},
		},
		bson.D{{Key: "$inc", Value: bson.D{
			{Key: dbFieldRegistered, Value: 1},
		}}},
		mopts.FindOneAndUpdate().SetReturnDocument(mopts.After),
	).Decode(license)
	if err == nil {
		return license, nil
	} else if err != mongo.ErrNoDocuments {
		return nil, errors.Wrap(err, "mongo: failed to reserve license slot")
	}

	err = coll.FindOne(ctx, bson.D{{Key: dbFieldID, Value: licenseID}}).
		Decode(license)
	if err == mongo.ErrNoDocuments {
		return nil, store.ErrLicenseNotFound
	} else if err != nil {
		return nil, errors.Wrap(err, "mongo: failed to get license")
	}
	return license, store.ErrLicenseExhausted
}

// ReleaseLicenseSlot gives back a slot reserved with ReserveLicenseSlot
func (db *DataStoreMongo) ReleaseLicenseSlot(ctx context.Context, licenseID string) error {
	coll := db.collection(LicensesCollectionName)

	_, err := coll.UpdateOne(ctx,
		bson.D{
			{Key: dbFieldID, Value: licenseID},
			{Key: dbFieldRegistered, Value: bson.D{{Key: "$gt", Value: 0}}},
		},
		bson.D{{Key: "$inc", Value: bson.D{
			{Key: dbFieldRegistered, Value: -1},
		}}},
	)
	return errors.Wrap(err, "mongo: failed to release license slot")
}
