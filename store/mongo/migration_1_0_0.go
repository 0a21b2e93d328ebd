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

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	mopts "go.mongodb.org/mongo-driver/mongo/options"

	"github.com/mendersoftware/go-lib-micro/mongo/migrate"
)

const (
	IndexNameFingerprint    = "license_id_fingerprint"
	IndexNameConnectionID   = "connection_id"
	IndexNameLiveSessions   = "device_id_disconnected_ts"
	IndexNameHeartbeats     = "disconnected_ts_last_heartbeat_ts"
	IndexNameCorrelationID  = "correlation_id"
	IndexNameStatusSchedule = "status_scheduled_ts"
	IndexNameStatusSent     = "status_sent_ts"
	IndexNameDeviceCommands = "device_id_created_ts"
	IndexNameLicenseKey     = "key"
)

type migration_1_0_0 struct {
	client *mongo.Client
	db     string
}

// Up creates the collections' indexes; the unique ones enforce one device
// per fingerprint and license, one session per connection id and globally
// unique command correlation ids.
func (m *migration_1_0_0) Up(from migrate.Version) error {
	ctx := context.Background()
	database := m.client.Database(m.db)

	collections := map[string][]mongo.IndexModel{
		DevicesCollectionName: {
			{
				Keys: bson.D{
					{Key: dbFieldLicenseID, Value: 1},
					{Key: dbFieldHardwareID, Value: 1},
					{Key: dbFieldInstallationID, Value: 1},
				},
				Options: mopts.Index().
					SetName(IndexNameFingerprint).
					SetUnique(true),
			},
		},
		SessionsCollectionName: {
			{
				Keys: bson.D{{Key: dbFieldConnectionID, Value: 1}},
				Options: mopts.Index().
					SetName(IndexNameConnectionID).
					SetUnique(true),
			},
			{
				Keys: bson.D{
					{Key: dbFieldDeviceID, Value: 1},
					{Key: dbFieldDisconnectedTs, Value: 1},
				},
				Options: mopts.Index().
					SetName(IndexNameLiveSessions),
			},
			{
				Keys: bson.D{
					{Key: dbFieldDisconnectedTs, Value: 1},
					{Key: dbFieldHeartbeatTs, Value: 1},
				},
				Options: mopts.Index().
					SetName(IndexNameHeartbeats),
			},
		},
		CommandsCollectionName: {
			{
				Keys: bson.D{{Key: dbFieldCorrelationID, Value: 1}},
				Options: mopts.Index().
					SetName(IndexNameCorrelationID).
					SetUnique(true),
			},
			{
				Keys: bson.D{
					{Key: dbFieldStatus, Value: 1},
					{Key: dbFieldScheduledTs, Value: 1},
				},
				Options: mopts.Index().
					SetName(IndexNameStatusSchedule),
			},
			{
				Keys: bson.D{
					{Key: dbFieldStatus, Value: 1},
					{Key: dbFieldSentTs, Value: 1},
				},
				Options: mopts.Index().
					SetName(IndexNameStatusSent),
			},
			{
				Keys: bson.D{
					{Key: dbFieldDeviceID, Value: 1},
					{Key: dbFieldCreatedTs, Value: -1},
				},
				Options: mopts.Index().
					SetName(IndexNameDeviceCommands),
			},
		},
		LicensesCollectionName: {
			{
				Keys: bson.D{{Key: dbFieldKey, Value: 1}},
				Options: mopts.Index().
					SetName(IndexNameLicenseKey).
					SetUnique(true),
			},
		},
	}

	for collection, indexes := range collections {
		idx := database.Collection(collection).Indexes()
		if _, err := idx.CreateMany(ctx, indexes); err != nil {
			return err
		}
	}

	return nil
}

func (m *migration_1_0_0) Version() migrate.Version {
	return migrate.MakeVersion(1, 0, 0)
}
