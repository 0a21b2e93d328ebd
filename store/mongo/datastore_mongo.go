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
	"crypto/tls"
	"strings"
	"time"

	"github.com/mendersoftware/go-lib-micro/config"
	"github.com/pkg/errors"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	mopts "go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/writeconcern"

	dconfig "github.com/mendersoftware/devicehub/config"
	"github.com/mendersoftware/devicehub/store"
)

const (
	// DevicesCollectionName refers to the name of the collection of stored devices
	DevicesCollectionName = "devices"

	// SessionsCollectionName refers to the name of the collection of device sessions
	SessionsCollectionName = "device_sessions"

	// CommandsCollectionName refers to the name of the collection of commands
	CommandsCollectionName = "commands"

	// LicensesCollectionName refers to the name of the collection of licenses
	LicensesCollectionName = "licenses"
)

const (
	dbFieldID             = "_id"
	dbFieldDeviceID       = "device_id"
	dbFieldLicenseID      = "license_id"
	dbFieldStatus         = "status"
	dbFieldVersion        = "version"
	dbFieldUpdatedTs      = "updated_ts"
	dbFieldLastSeenTs     = "last_seen_ts"
	dbFieldLastIP         = "last_ip"
	dbFieldConnectionID   = "connection_id"
	dbFieldConnectedTs    = "connected_ts"
	dbFieldDisconnectedTs = "disconnected_ts"
	dbFieldHeartbeatTs    = "last_heartbeat_ts"
	dbFieldCorrelationID  = "correlation_id"
	dbFieldScheduledTs    = "scheduled_ts"
	dbFieldCreatedTs      = "created_ts"
	dbFieldSentTs         = "sent_ts"
	dbFieldAckTs          = "acknowledged_ts"
	dbFieldCompletedTs    = "completed_ts"
	dbFieldAttempts       = "attempts"
	dbFieldError          = "error"
	dbFieldKey            = "key"
	dbFieldMaxDevices     = "max_devices"
	dbFieldRegistered     = "registered_devices"

	dbFieldHardwareID     = "fingerprint.hardware_id"
	dbFieldInstallationID = "fingerprint.installation_id"
)

// SetupDataStore returns the mongo data store and optionally runs migrations
func SetupDataStore(automigrate bool) (*DataStoreMongo, error) {
	ctx := context.Background()
	dbClient, err := NewClient(ctx, config.Config)
	if err != nil {
		return nil, errors.Wrap(err, "failed to connect to db")
	}
	dataStore := NewDataStoreWithClient(dbClient, config.Config)
	err = dataStore.Migrate(ctx, DbVersion, automigrate)
	if err != nil {
		_ = dataStore.Close()
		return nil, errors.Wrap(err, "failed to run migrations")
	}
	return dataStore, nil
}

func disconnectClient(parentCtx context.Context, client *mongo.Client) error {
	ctx, cancel := context.WithTimeout(parentCtx, 1*time.Second)
	defer cancel()
	return client.Disconnect(ctx)
}

// NewClient returns a mongo client
func NewClient(ctx context.Context, c config.Reader) (*mongo.Client, error) {

	clientOptions := mopts.Client()
	mongoURL := c.GetString(dconfig.SettingMongo)
	if !strings.Contains(mongoURL, "://") {
		return nil, errors.Errorf("Invalid mongoURL %q: missing schema.",
			mongoURL)
	}
	clientOptions.ApplyURI(mongoURL)
	clientOptions.SetRegistry(newRegistry())

	username := c.GetString(dconfig.SettingDbUsername)
	if username != "" {
		credentials := mopts.Credential{
			Username: c.GetString(dconfig.SettingDbUsername),
		}
		password := c.GetString(dconfig.SettingDbPassword)
		if password != "" {
			credentials.Password = password
			credentials.PasswordSet = true
		}
		clientOptions.SetAuth(credentials)
	}

	if c.GetBool(dconfig.SettingDbSSL) {
		tlsConfig := &tls.Config{}
		tlsConfig.InsecureSkipVerify = c.GetBool(dconfig.SettingDbSSLSkipVerify)
		clientOptions.SetTLSConfig(tlsConfig)
	}

	// Acknowledge writes once they are committed to the journal: status
	// changes must be visible to every node right after they return.
	clientOptions.SetWriteConcern(writeconcern.New(
		writeconcern.W(1),
		writeconcern.J(true),
	))

	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	client, err := mongo.Connect(ctx, clientOptions)
	if err != nil {
		return nil, errors.Wrap(err, "Failed to connect to mongo server")
	}

	// Validate connection
	if err = client.Ping(ctx, nil); err != nil {
		_ = disconnectClient(context.Background(), client)
		return nil, errors.Wrap(err, "Error reaching mongo server")
	}

	return client, nil
}

// DataStoreMongo is the data storage service
type DataStoreMongo struct {
	// client holds the reference to the client used to communicate with the
	// mongodb server.
	client *mongo.Client
	// dbName contains the name of the devicehub database.
	dbName string
}

var _ store.DataStore = &DataStoreMongo{}

// NewDataStoreWithClient initializes a DataStore object
func NewDataStoreWithClient(client *mongo.Client, c config.Reader) *DataStoreMongo {
	dbName := c.GetString(dconfig.SettingDbName)
	if dbName == "" {
		dbName = DbName
	}

	return &DataStoreMongo{
		client: client,
		dbName: dbName,
	}
}

func (db *DataStoreMongo) database() *mongo.Database {
	return db.client.Database(db.dbName)
}

func (db *DataStoreMongo) collection(name string) *mongo.Collection {
	return db.database().Collection(name)
}

// Ping verifies the connection to the database
func (db *DataStoreMongo) Ping(ctx context.Context) error {
	res := db.database().RunCommand(ctx, bson.M{"ping": 1})
	return res.Err()
}

// Close disconnects the client
func (db *DataStoreMongo) Close() error {
	return disconnectClient(context.Background(), db.client)
}

//nolint:unused
func (db *DataStoreMongo) dropDatabase() error {
	ctx := context.Background()
	err := db.database().Drop(ctx)
	return err
}
