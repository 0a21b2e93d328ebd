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
	"sync/atomic"
	"time"

	mapset "github.com/deckarep/golang-set/v2"
	"github.com/mendersoftware/go-lib-micro/log"
	"github.com/pkg/errors"
	"golang.org/x/sync/errgroup"

	"github.com/mendersoftware/devicehub/client/workflows"
	"github.com/mendersoftware/devicehub/model"
)

type pushFunc func(ctx context.Context, connectionID string) error

// Dispatch pushes the command to every live connection of its device and
// reports whether at least one push succeeded. It never changes the
// command status.
func (a *app) Dispatch(ctx context.Context, cmd *model.Command) bool {
	l := log.FromContext(ctx).F(log.Ctx{
		"device_id":      cmd.DeviceID,
		"command_id":     cmd.ID,
		"correlation_id": cmd.CorrelationID.String(),
	})
	connections, err := a.LiveConnectionsFor(ctx, cmd.DeviceID)
	if err != nil {
		l.Errorf("dispatch failed: %s", err.Error())
		dispatches.WithLabelValues(dispatchFailed).Inc()
		return false
	} else if connections.Cardinality() == 0 {
		l.Debug("device is not connected")
		dispatches.WithLabelValues(dispatchNoConnection).Inc()
		return false
	}

	push := cmd.Push()
	delivered := a.fanOut(ctx, connections, "command",
		func(ctx context.Context, connectionID string) error {
			return a.transport.PushCommand(ctx, connectionID, push)
		})
	if delivered == 0 {
		dispatches.WithLabelValues(dispatchFailed).Inc()
		return false
	}
	l.Infof("command delivered to %d/%d connections",
		delivered, connections.Cardinality())
	dispatches.WithLabelValues(dispatchDelivered).Inc()
	return true
}

// Notify pushes a notification to every live connection of the device
func (a *app) Notify(ctx context.Context, deviceID string, notification model.Notification) bool {
	if notification.Severity == "" {
		notification.Severity = model.SeverityInfo
	}
	l := log.FromContext(ctx).F(log.Ctx{"device_id": deviceID})
	connections, err := a.LiveConnectionsFor(ctx, deviceID)
	if err != nil {
		l.Errorf("notification failed: %s", err.Error())
		return false
	} else if connections.Cardinality() == 0 {
		return false
	}
	delivered := a.fanOut(ctx, connections, "notification",
		func(ctx context.Context, connectionID string) error {
			return a.transport.PushNotification(ctx, connectionID, notification)
		})
	if delivered > 0 {
		a.submitAuditLog(ctx, workflows.ActionNotify, workflows.Object{
			ID:   deviceID,
			Type: workflows.ObjectDevice,
		}, notification.Message)
	}
	return delivered > 0
}

// fanOut runs push concurrently for every connection, each bounded by the
// push timeout, and returns the number of successful pushes.
func (a *app) fanOut(
	ctx context.Context,
	connections mapset.Set[string],
	kind string,
	push pushFunc,
) int {
	l := log.FromContext(ctx)
	var (
		delivered int32
		group     errgroup.Group
	)
	for _, connectionID := range connections.ToSlice() {
		connectionID := connectionID
		group.Go(func() (err error) {
			start := time.Now()
			defer func() {
				if r := recover(); r != nil {
					err = errors.Errorf("panic: %v", r)
				}
				pushDuration.WithLabelValues(kind, resultLabel(err)).
					Observe(time.Since(start).Seconds())
				if err != nil {
					l.F(log.Ctx{"connection_id": connectionID}).
						Warnf("failed to push %s: %s", kind, err.Error())
				} else {
					atomic.AddInt32(&delivered, 1)
				}
				// failures are counted, not propagated
				err = nil
			}()
			pushCtx, cancel := context.WithTimeout(ctx, a.PushTimeout)
			defer cancel()
			return push(pushCtx, connectionID)
		})
	}
	_ = group.Wait()
	return int(atomic.LoadInt32(&delivered))
}
