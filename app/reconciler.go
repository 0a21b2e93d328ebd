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
	"time"

	"github.com/mendersoftware/go-lib-micro/log"
	"github.com/pkg/errors"

	"github.com/mendersoftware/devicehub/model"
)

const (
	reasonNotConnected = "not connected within timeout"
	reasonNoAck        = "no acknowledgement within timeout"

	persistTimeout = 10 * time.Second
)

// SweepResult summarizes one reconciler sweep
type SweepResult struct {
	// Dispatched counts pending commands delivered in this sweep.
	Dispatched int
	// Waiting counts pending commands left for the next sweep.
	Waiting int
	// Failed counts pending commands given up on.
	Failed int
	// TimedOut counts sent commands without acknowledgement.
	TimedOut int
	// Updated is the number of commands changed by the batch writes.
	Updated int64
	// Evicted counts sessions closed for missing heartbeats.
	Evicted int
}

// SweepOnce retries the pending commands that are due, expires the
// commands that were never delivered or never acknowledged and evicts
// the sessions with missed heartbeats. Status changes are written in
// batches at the end of the sweep.
func (a *app) SweepOnce(ctx context.Context) (*SweepResult, error) {
	start := time.Now()
	defer func() {
		sweeps.Inc()
		sweepDuration.Observe(time.Since(start).Seconds())
	}()
	l := log.FromContext(ctx)
	now := a.now()
	result := &SweepResult{}

	pending, err := a.store.FindPendingDue(ctx, now)
	if err != nil {
		return nil, errors.Wrap(err, "reconciler: failed to load pending commands")
	}
	updates := make([]model.CommandUpdate, 0, len(pending))
	for i := range pending {
		if ctx.Err() != nil {
			break
		}
		cmd := &pending[i]
		update, ok, err := a.reconcilePending(ctx, cmd, now)
		if err != nil {
			l.F(log.Ctx{"command_id": cmd.ID}).
				Errorf("reconciler: failed to process command: %s", err.Error())
			update = model.NewCommandUpdate(
				cmd.ID, model.CommandStatusFailed, now, err.Error(), false,
			)
			ok = true
		}
		if !ok {
			result.Waiting++
			continue
		}
		switch update.To {
		case model.CommandStatusSent:
			result.Dispatched++
		case model.CommandStatusFailed:
			result.Failed++
		}
		updates = append(updates, update)
	}

	unacknowledged, err := a.store.FindSentBefore(ctx, now.Add(-a.AckTimeout))
	if err != nil {
		return nil, errors.Wrap(err, "reconciler: failed to load sent commands")
	}
	for _, cmd := range unacknowledged {
		updates = append(updates, model.NewCommandUpdate(
			cmd.ID, model.CommandStatusTimedOut, now, reasonNoAck, false,
		))
		result.TimedOut++
	}

	// pushes that already happened are recorded even if the sweep was
	// cancelled
	writeCtx, cancel := context.WithTimeout(
		log.WithContext(context.Background(), l), persistTimeout,
	)
	defer cancel()
	result.Updated, err = a.applyUpdates(writeCtx, updates)
	if err != nil {
		return result, errors.Wrap(err, "reconciler: failed to persist status changes")
	}

	result.Evicted, err = a.EvictStaleSessions(ctx, now.Add(-a.HeartbeatTimeout))
	if err != nil {
		return result, errors.Wrap(err, "reconciler: failed to evict stale sessions")
	}
	if result.Dispatched+result.Failed+result.TimedOut+result.Evicted > 0 {
		l.F(log.Ctx{
			"dispatched": result.Dispatched,
			"waiting":    result.Waiting,
			"failed":     result.Failed,
			"timed_out":  result.TimedOut,
			"updated":    result.Updated,
			"evicted":    result.Evicted,
		}).Info("reconciler sweep done")
	}
	return result, nil
}

// applyUpdates writes the status changes with one batch per target status
// and counts the transitions the store actually applied.
func (a *app) applyUpdates(ctx context.Context, updates []model.CommandUpdate) (int64, error) {
	var (
		targets []model.CommandStatus
		batches = make(map[model.CommandStatus][]model.CommandUpdate)
	)
	for _, update := range updates {
		if _, ok := batches[update.To]; !ok {
			targets = append(targets, update.To)
		}
		batches[update.To] = append(batches[update.To], update)
	}
	var applied int64
	for _, to := range targets {
		n, err := a.store.ApplyCommandUpdates(ctx, batches[to])
		applied += n
		commandTransitions.WithLabelValues(string(to)).Add(float64(n))
		if err != nil {
			return applied, err
		}
	}
	return applied, nil
}

// reconcilePending dispatches one pending command and returns the status
// change to apply, if any. Panics are returned as errors so that one
// command cannot stop the sweep.
func (a *app) reconcilePending(
	ctx context.Context,
	cmd *model.Command,
	now time.Time,
) (update model.CommandUpdate, ok bool, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = errors.Errorf("panic: %v", r)
		}
	}()
	if err := cmd.Validate(); err != nil {
		return update, false, err
	}
	if a.Dispatch(ctx, cmd) {
		return model.NewCommandUpdate(
			cmd.ID, model.CommandStatusSent, now, "", false,
		), true, nil
	}
	if now.Sub(cmd.CreatedTs) > a.DispatchTimeout {
		return model.NewCommandUpdate(
			cmd.ID, model.CommandStatusFailed, now, reasonNotConnected, false,
		), true, nil
	}
	return update, false, nil
}

// RunReconciler sweeps on a fixed interval until ctx is cancelled
func (a *app) RunReconciler(ctx context.Context) error {
	l := log.FromContext(ctx)
	l.Infof("reconciler started, sweeping every %s", a.ReconcileInterval)
	ticker := time.NewTicker(a.ReconcileInterval)
	defer ticker.Stop()
	for {
		if _, err := a.SweepOnce(ctx); err != nil && ctx.Err() == nil {
			l.Error(err.Error())
		}
		select {
		case <-ctx.Done():
			l.Info("reconciler stopped")
			return nil
		case <-ticker.C:
		}
	}
}
