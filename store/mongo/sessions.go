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

// live sessions have an explicit null disconnected_ts
var liveSession = bson.E{Key: dbFieldDisconnectedTs, Value: nil}

// InsertSession stores a new device session
func (db *DataStoreMongo) InsertSession(ctx context.Context, sess *model.DeviceSession) error {
	if err := sess.Validate(); err != nil {
		return err
	}
	coll := db.collection(SessionsCollectionName)
	_, err := coll.InsertOne(ctx, sess)
	if mongo.IsDuplicateKeyError(err) {
		return store.ErrSessionExists
	}
	return errors.Wrap(err, "mongo: failed to insert session")
}

// CloseSession sets the disconnection timestamp of the live session bound
// to connectionID and returns the closed session. If no live session
// matches, it returns ErrSessionNotFound.
func (db *DataStoreMongo) CloseSession(
	ctx context.Context,
	connectionID string,
	at time.Time,
) (*model.DeviceSession, error) {
	coll := db.collection(SessionsCollectionName)

	sess := &model.DeviceSession{}
	err := coll.FindOneAndUpdate(ctx,
		bson.D{
			{Key: dbFieldConnectionID, Value: connectionID},
			liveSession,
		},
		bson.D{{Key: "$set", Value: bson.D{
			{Key: dbFieldDisconnectedTs, Value: at},
		}}},
		mopts.FindOneAndUpdate().SetReturnDocument(mopts.After),
	).Decode(sess)
	if err == mongo.ErrNoDocuments {
		return nil, store.ErrSessionNotFound
	} else if err != nil {
		return nil, errors.Wrap(err, "mongo: failed to close session")
	}
	return sess, nil
}

// UpdateHeartbeat records a heartbeat on the live session bound to
// connectionID. If no live session matches, it returns ErrSessionNotFound.
func (db *DataStoreMongo) UpdateHeartbeat(
	ctx context.Context,
	connectionID string,
	at time.Time,
) (*model.DeviceSession, error) {
	coll := db.collection(SessionsCollectionName)

	sess := &model.DeviceSession{}
	err := coll.FindOneAndUpdate(ctx,
		bson.D{
			{Key: dbFieldConnectionID, Value: connectionID},
			liveSession,
		},
		bson.D{{Key: "$set", Value: bson.D{
			{Key: dbFieldHeartbeatTs, Value: at},
		}}},
		mopts.FindOneAndUpdate().SetReturnDocument(mopts.After),
	).Decode(sess)
	if err == mongo.ErrNoDocuments {
		return nil, store.ErrSessionNotFound
	} else if err != nil {
		return nil, errors.Wrap(err, "mongo: failed to update session")
	}
	return sess, nil
}

// CountLiveSessions returns the number of live sessions of the device
func (db *DataStoreMongo) CountLiveSessions(ctx context.Context, deviceID string) (int64, error) {
	coll := db.collection(SessionsCollectionName)

	count, err := coll.CountDocuments(ctx, bson.D{
		{Key: dbFieldDeviceID, Value: deviceID},
		liveSession,
	})
	return count, errors.Wrap(err, "mongo: failed to count sessions")
}

// GetLiveConnections returns the connection ids of the live sessions of
// the device
func (db *DataStoreMongo) GetLiveConnections(ctx context.Context, deviceID string) ([]string, error) {
	coll := db.collection(SessionsCollectionName)

	cur, err := coll.Find(ctx,
		bson.D{
			{Key: dbFieldDeviceID, Value: deviceID},
			liveSession,
		},
		mopts.Find().SetProjection(bson.D{
			{Key: dbFieldConnectionID, Value: 1},
		}),
	)
	if err != nil {
		return nil, errors.Wrap(err, "mongo: failed to find sessions")
	}
	var sessions []model.DeviceSession
	if err := cur.All(ctx, &sessions); err != nil {
		return nil, errors.Wrap(err, "mongo: failed to decode sessions")
	}
	connections := make([]string, len(sessions))
	for i, sess := range sessions {
		connections[i] = sess.ConnectionID
	}
	return connections, nil
}

// FindStaleSessions returns the live sessions without heartbeat since before
func (db *DataStoreMongo) FindStaleSessions(
	ctx context.Context,
	before time.Time,
) ([]model.DeviceSession, error) {
	coll := db.collection(SessionsCollectionName)

	cur, err := coll.Find(ctx, bson.D{
		liveSession,
		{Key: dbFieldHeartbeatTs, Value: bson.D{{Key: "$lt", Value: before}}},
	})
	if err != nil {
		return nil, errors.Wrap(err, "mongo: failed to find sessions")
	}
	sessions := []model.DeviceSession{}
	if err := cur.All(ctx, &sessions); err != nil {
		return nil, errors.Wrap(err, "mongo: failed to decode sessions")
	}
	return sessions, nil
}

// ListDeviceSessions returns the most recent sessions of the device
func (db *DataStoreMongo) ListDeviceSessions(
	ctx context.Context,
	deviceID string,
	limit int64,
) ([]model.DeviceSession, error) {
	coll := db.collection(SessionsCollectionName)

	opts := mopts.Find().
		SetSort(bson.D{{Key: dbFieldConnectedTs, Value: -1}})
	if limit > 0 {
		opts.SetLimit(limit)
	}
	cur, err := coll.Find(ctx,
		bson.D{{Key: dbFieldDeviceID, Value: deviceID}},
		opts,
	)
	if err != nil {
		return nil, errors.Wrap(err, "mongo: failed to find sessions")
	}
	sessions := []model.DeviceSession{}
	if err := cur.All(ctx, &sessions); err != nil {
		return nil, errors.Wrap(err, "mongo: failed to decode sessions")
	}
	return sessions, nil
}
