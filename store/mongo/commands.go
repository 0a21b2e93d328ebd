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

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	mopts "go.mongodb.org/mongo-driver/mongo/options"

	"github.com/mendersoftware/devicehub/model"
	"github.com/mendersoftware/devicehub/store"
)

// InsertCommand stores a new command
func (db *DataStoreMongo) InsertCommand(ctx context.Context, cmd *model.Command) error {
	if err := cmd.Validate(); err != nil {
		return err
	}
	coll := db.collection(CommandsCollectionName)
	_, err := coll.InsertOne(ctx, cmd)
	if mongo.IsDuplicateKeyError(err) {
		return store.ErrCommandExists
	}
	return errors.Wrap(err, "mongo: failed to insert command")
}

func (db *DataStoreMongo) findOneCommand(ctx context.Context, filter bson.D) (*model.Command, error) {
	coll := db.collection(CommandsCollectionName)

	cmd := &model.Command{}
	err := coll.FindOne(ctx, filter).Decode(cmd)
	if err == mongo.ErrNoDocuments {
		return nil, store.ErrCommandNotFound
	} else if err != nil {
		return nil, errors.Wrap(err, "mongo: failed to get command")
	}
	return cmd, nil
}

func (db *DataStoreMongo) findCommands(
	ctx context.Context,
	filter bson.D,
	opts ...*mopts.FindOptions,
) ([]model.Command, error) {
	coll := db.collection(CommandsCollectionName)

	cur, err := coll.Find(ctx, filter, opts...)
	if err != nil {
		return nil, errors.Wrap(err, "mongo: failed to find commands")
	}
	commands := []model.Command{}
	if err := cur.All(ctx, &commands); err != nil {
		return nil, errors.Wrap(err, "mongo: failed to decode commands")
	}
	return commands, nil
}

// GetCommand returns a command by id
func (db *DataStoreMongo) GetCommand(ctx context.Context, commandID string) (*model.Command, error) {
	return db.findOneCommand(ctx, bson.D{{Key: dbFieldID, Value: commandID}})
}

// FindCommandByCorrelationID returns the command with the correlation id
func (db *DataStoreMongo) FindCommandByCorrelationID(
	ctx context.Context,
	correlationID uuid.UUID,
) (*model.Command, error) {
	return db.findOneCommand(ctx, bson.D{
		{Key: dbFieldCorrelationID, Value: correlationID},
	})
}

// FindPendingDue returns the pending commands scheduled at or before before,
// oldest first
func (db *DataStoreMongo) FindPendingDue(ctx context.Context, before time.Time) ([]model.Command, error) {
	return db.findCommands(ctx,
		bson.D{
			{Key: dbFieldStatus, Value: model.CommandStatusPending},
			{Key: dbFieldScheduledTs, Value: bson.D{{Key: "$lte", Value: before}}},
		},
		mopts.Find().SetSort(bson.D{{Key: dbFieldScheduledTs, Value: 1}}),
	)
}

// FindSentBefore returns the commands sent before before and not yet
// acknowledged
func (db *DataStoreMongo) FindSentBefore(ctx context.Context, before time.Time) ([]model.Command, error) {
	return db.findCommands(ctx,
		bson.D{
			{Key: dbFieldStatus, Value: model.CommandStatusSent},
			{Key: dbFieldSentTs, Value: bson.D{{Key: "$lt", Value: before}}},
		},
		mopts.Find().SetSort(bson.D{{Key: dbFieldSentTs, Value: 1}}),
	)
}

// ListDeviceCommands returns the most recent commands of the device,
// optionally filtered by status
func (db *DataStoreMongo) ListDeviceCommands(
	ctx context.Context,
	deviceID string,
	status model.CommandStatus,
	limit int64,
) ([]model.Command, error) {
	filter := bson.D{{Key: dbFieldDeviceID, Value: deviceID}}
	if status != "" {
		filter = append(filter, bson.E{Key: dbFieldStatus, Value: status})
	}
	opts := mopts.Find().
		SetSort(bson.D{{Key: dbFieldCreatedTs, Value: -1}})
	if limit > 0 {
		opts.SetLimit(limit)
	}
	return db.findCommands(ctx, filter, opts)
}

// commandUpdateModel translates a guarded status change into a filter
// matching the command only in one of the source statuses, and the update
// document applying the change.
func commandUpdateModel(update model.CommandUpdate) (filter, doc bson.D) {
	filter = bson.D{
		{Key: dbFieldID, Value: update.ID},
		{Key: dbFieldStatus, Value: bson.D{{Key: "$in", Value: update.From}}},
	}

	set := bson.D{
		{Key: dbFieldStatus, Value: update.To},
		{Key: dbFieldUpdatedTs, Value: update.At},
	}
	switch update.To {
	case model.CommandStatusSent:
		set = append(set, bson.E{Key: dbFieldSentTs, Value: update.At})
	case model.CommandStatusCompleted,
		model.CommandStatusFailed,
		model.CommandStatusTimedOut:
		set = append(set, bson.E{Key: dbFieldCompletedTs, Value: update.At})
	}
	// error and completed_ts describe the latest transition only; a late
	// acknowledgement clears what the timeout left behind.
	var unset bson.D
	if update.Error != "" {
		set = append(set, bson.E{Key: dbFieldError, Value: update.Error})
	} else {
		unset = append(unset, bson.E{Key: dbFieldError, Value: ""})
	}
	if update.To == model.CommandStatusAcknowledged {
		unset = append(unset, bson.E{Key: dbFieldCompletedTs, Value: ""})
	}
	doc = bson.D{{Key: "$set", Value: set}}
	if len(unset) > 0 {
		doc = append(doc, bson.E{Key: "$unset", Value: unset})
	}

	switch update.To {
	case model.CommandStatusAcknowledged, model.CommandStatusCompleted:
		doc = append(doc, bson.E{Key: "$min", Value: bson.D{
			{Key: dbFieldAckTs, Value: update.At},
		}})
	}
	if update.Attempt {
		doc = append(doc, bson.E{Key: "$inc", Value: bson.D{
			{Key: dbFieldAttempts, Value: 1},
		}})
	}
	return filter, doc
}

// UpdateCommand applies a guarded status change and reports whether the
// command was in one of the expected source statuses.
func (db *DataStoreMongo) UpdateCommand(ctx context.Context, update model.CommandUpdate) (bool, error) {
	coll := db.collection(CommandsCollectionName)

	filter, doc := commandUpdateModel(update)
	res, err := coll.UpdateOne(ctx, filter, doc)
	if err != nil {
		return false, errors.Wrap(err, "mongo: failed to update command")
	}
	return res.MatchedCount > 0, nil
}

// ApplyCommandUpdates applies the guarded changes in a single unordered
// bulk write and returns the number of commands changed. Updates whose
// guard does not match are skipped.
func (db *DataStoreMongo) ApplyCommandUpdates(
	ctx context.Context,
	updates []model.CommandUpdate,
) (int64, error) {
	if len(updates) == 0 {
		return 0, nil
	}
	coll := db.collection(CommandsCollectionName)

	writes := make([]mongo.WriteModel, len(updates))
	for i, update := range updates {
		filter, doc := commandUpdateModel(update)
		writes[i] = mongo.NewUpdateOneModel().
			SetFilter(filter).
			SetUpdate(doc)
	}
	res, err := coll.BulkWrite(ctx, writes, mopts.BulkWrite().SetOrdered(false))
	var matched int64
	if res != nil {
		matched = res.MatchedCount
	}
	if err != nil {
		return matched, errors.Wrap(err, "mongo: failed to update commands")
	}
	return matched, nil
}
