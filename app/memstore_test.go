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
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/mendersoftware/devicehub/model"
	"github.com/mendersoftware/devicehub/store"
)

// memStore is an in-memory DataStore following the semantics of the
// mongo implementation.
type memStore struct {
	mu       sync.Mutex
	devices  map[string]model.Device
	licenses map[string]model.License
	sessions map[string]model.DeviceSession
	commands map[string]model.Command
	// errs makes the named method fail
	errs map[string]error
}

var _ store.DataStore = &memStore{}

func newMemStore() *memStore {
	return &memStore{
		devices:  map[string]model.Device{},
		licenses: map[string]model.License{},
		sessions: map[string]model.DeviceSession{},
		commands: map[string]model.Command{},
		errs:     map[string]error{},
	}
}

func (s *memStore) failWith(method string, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.errs[method] = err
}

func (s *memStore) Ping(context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.errs["Ping"]
}

func (s *memStore) Close() error { return nil }

func (s *memStore) addDevice(id string, status model.DeviceStatus) model.Device {
	s.mu.Lock()
	defer s.mu.Unlock()
	device := model.Device{
		ID:        id,
		LicenseID: "license",
		Fingerprint: model.Fingerprint{
			HardwareID:     "hw-" + id,
			InstallationID: "inst-" + id,
		},
		Status: status,
	}
	s.devices[id] = device
	return device
}

func (s *memStore) InsertDevice(_ context.Context, device *model.Device) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.errs["InsertDevice"]; err != nil {
		return err
	}
	for _, d := range s.devices {
		if d.ID == device.ID || (d.LicenseID == device.LicenseID &&
			d.Fingerprint == device.Fingerprint) {
			return store.ErrDeviceExists
		}
	}
	s.devices[device.ID] = *device
	return nil
}

func (s *memStore) GetDevice(_ context.Context, deviceID string) (*model.Device, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.errs["GetDevice"]; err != nil {
		return nil, err
	}
	device, ok := s.devices[deviceID]
	if !ok {
		return nil, store.ErrDeviceNotFound
	}
	return &device, nil
}

func (s *memStore) FindDeviceByFingerprint(
	_ context.Context,
	licenseID string,
	fp model.Fingerprint,
) (*model.Device, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, d := range s.devices {
		if d.LicenseID == licenseID && d.Fingerprint == fp {
			device := d
			return &device, nil
		}
	}
	return nil, store.ErrDeviceNotFound
}

func (s *memStore) SetDeviceConnected(
	_ context.Context,
	deviceID, ip string,
	at time.Time,
) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	device, ok := s.devices[deviceID]
	if !ok || device.IsBlocked() {
		return 0, store.ErrDeviceNotFound
	}
	device.Status = model.DeviceStatusOnline
	device.LastSeenTs = &at
	device.LastIP = ip
	device.UpdatedTs = at
	device.Version++
	s.devices[deviceID] = device
	return device.Version, nil
}

func (s *memStore) SetDeviceOffline(
	_ context.Context,
	deviceID string,
	version int64,
	at time.Time,
) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	device, ok := s.devices[deviceID]
	if ok && device.Version == version && device.Status.IsConnected() {
		device.Status = model.DeviceStatusOffline
		device.UpdatedTs = at
		s.devices[deviceID] = device
	}
	return nil
}

func (s *memStore) SetDeviceStatus(
	_ context.Context,
	deviceID string,
	status model.DeviceStatus,
	at time.Time,
) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	device, ok := s.devices[deviceID]
	if !ok {
		return store.ErrDeviceNotFound
	}
	device.Status = status
	device.UpdatedTs = at
	s.devices[deviceID] = device
	return nil
}

func (s *memStore) TouchDevice(_ context.Context, deviceID string, at time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if device, ok := s.devices[deviceID]; ok {
		device.LastSeenTs = &at
		s.devices[deviceID] = device
	}
	return nil
}

func (s *memStore) InsertLicense(_ context.Context, license *model.License) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, l := range s.licenses {
		if l.Key == license.Key {
			return store.ErrLicenseExists
		}
	}
	s.licenses[license.ID] = *license
	return nil
}

func (s *memStore) GetLicenseByKey(_ context.Context, key string) (*model.License, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, l := range s.licenses {
		if l.Key == key {
			license := l
			return &license, nil
		}
	}
	return nil, store.ErrLicenseNotFound
}

func (s *memStore) ReserveLicenseSlot(_ context.Context, licenseID string) (*model.License, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	license, ok := s.licenses[licenseID]
	if !ok {
		return nil, store.ErrLicenseNotFound
	} else if license.RegisteredDevices >= license.MaxDevices {
		return &license, store.ErrLicenseExhausted
	}
	license.RegisteredDevices++
	s.licenses[licenseID] = license
	return &license, nil
}

func (s *memStore) ReleaseLicenseSlot(_ context.Context, licenseID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	license, ok := s.licenses[licenseID]
	if ok && license.RegisteredDevices > 0 {
		license.RegisteredDevices--
		s.licenses[licenseID] = license
	}
	return nil
}

func (s *memStore) InsertSession(_ context.Context, sess *model.DeviceSession) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.errs["InsertSession"]; err != nil {
		return err
	}
	for _, other := range s.sessions {
		if other.ConnectionID == sess.ConnectionID {
			return store.ErrSessionExists
		}
	}
	s.sessions[sess.ID] = *sess
	return nil
}

func (s *memStore) liveSession(connectionID string) (model.DeviceSession, bool) {
	for _, sess := range s.sessions {
		if sess.ConnectionID == connectionID && sess.IsLive() {
			return sess, true
		}
	}
	return model.DeviceSession{}, false
}

func (s *memStore) CloseSession(
	_ context.Context,
	connectionID string,
	at time.Time,
) (*model.DeviceSession, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sess, ok := s.liveSession(connectionID)
	if !ok {
		return nil, store.ErrSessionNotFound
	}
	sess.DisconnectedTs = &at
	s.sessions[sess.ID] = sess
	return &sess, nil
}

func (s *memStore) UpdateHeartbeat(
	_ context.Context,
	connectionID string,
	at time.Time,
) (*model.DeviceSession, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sess, ok := s.liveSession(connectionID)
	if !ok {
		return nil, store.ErrSessionNotFound
	}
	sess.LastHeartbeatTs = at
	s.sessions[sess.ID] = sess
	return &sess, nil
}

func (s *memStore) CountLiveSessions(_ context.Context, deviceID string) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var count int64
	for _, sess := range s.sessions {
		if sess.DeviceID == deviceID && sess.IsLive() {
			count++
		}
	}
	return count, nil
}

func (s *memStore) GetLiveConnections(_ context.Context, deviceID string) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.errs["GetLiveConnections"]; err != nil {
		return nil, err
	}
	connections := []string{}
	for _, sess := range s.sessions {
		if sess.DeviceID == deviceID && sess.IsLive() {
			connections = append(connections, sess.ConnectionID)
		}
	}
	return connections, nil
}

func (s *memStore) FindStaleSessions(
	_ context.Context,
	before time.Time,
) ([]model.DeviceSession, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sessions := []model.DeviceSession{}
	for _, sess := range s.sessions {
		if sess.IsLive() && sess.LastHeartbeatTs.Before(before) {
			sessions = append(sessions, sess)
		}
	}
	return sessions, nil
}

func (s *memStore) ListDeviceSessions(
	_ context.Context,
	deviceID string,
	limit int64,
) ([]model.DeviceSession, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sessions := []model.DeviceSession{}
	for _, sess := range s.sessions {
		if sess.DeviceID == deviceID {
			sessions = append(sessions, sess)
		}
	}
	sort.Slice(sessions, func(i, j int) bool {
		return sessions[i].ConnectedTs.After(sessions[j].ConnectedTs)
	})
	if limit > 0 && int64(len(sessions)) > limit {
		sessions = sessions[:limit]
	}
	return sessions, nil
}

func (s *memStore) InsertCommand(_ context.Context, cmd *model.Command) error {
	if err := cmd.Validate(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.errs["InsertCommand"]; err != nil {
		return err
	}
	if _, ok := s.commands[cmd.ID]; ok {
		return store.ErrCommandExists
	}
	s.commands[cmd.ID] = *cmd
	return nil
}

// putCommand stores cmd as is, bypassing validation
func (s *memStore) putCommand(cmd model.Command) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.commands[cmd.ID] = cmd
}

func (s *memStore) command(id string) model.Command {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.commands[id]
}

func (s *memStore) GetCommand(_ context.Context, commandID string) (*model.Command, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	cmd, ok := s.commands[commandID]
	if !ok {
		return nil, store.ErrCommandNotFound
	}
	return &cmd, nil
}

func (s *memStore) FindCommandByCorrelationID(
	_ context.Context,
	correlationID uuid.UUID,
) (*model.Command, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, c := range s.commands {
		if c.CorrelationID == correlationID {
			cmd := c
			return &cmd, nil
		}
	}
	return nil, store.ErrCommandNotFound
}

func (s *memStore) findCommands(match func(model.Command) bool, less func(a, b model.Command) bool) []model.Command {
	commands := []model.Command{}
	for _, cmd := range s.commands {
		if match(cmd) {
			commands = append(commands, cmd)
		}
	}
	sort.Slice(commands, func(i, j int) bool {
		return less(commands[i], commands[j])
	})
	return commands
}

func (s *memStore) FindPendingDue(_ context.Context, before time.Time) ([]model.Command, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.errs["FindPendingDue"]; err != nil {
		return nil, err
	}
	return s.findCommands(func(cmd model.Command) bool {
		return cmd.Status == model.CommandStatusPending && !cmd.ScheduledTs.After(before)
	}, func(a, b model.Command) bool {
		return a.ScheduledTs.Before(b.ScheduledTs)
	}), nil
}

func (s *memStore) FindSentBefore(_ context.Context, before time.Time) ([]model.Command, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.findCommands(func(cmd model.Command) bool {
		return cmd.Status == model.CommandStatusSent &&
			cmd.SentTs != nil && cmd.SentTs.Before(before)
	}, func(a, b model.Command) bool {
		return a.SentTs.Before(*b.SentTs)
	}), nil
}

func (s *memStore) ListDeviceCommands(
	_ context.Context,
	deviceID string,
	status model.CommandStatus,
	limit int64,
) ([]model.Command, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	commands := s.findCommands(func(cmd model.Command) bool {
		return cmd.DeviceID == deviceID && (status == "" || cmd.Status == status)
	}, func(a, b model.Command) bool {
		return a.CreatedTs.After(b.CreatedTs)
	})
	if limit > 0 && int64(len(commands)) > limit {
		commands = commands[:limit]
	}
	return commands, nil
}

func (s *memStore) applyUpdate(update model.CommandUpdate) bool {
	cmd, ok := s.commands[update.ID]
	if !ok {
		return false
	}
	matched := false
	for _, from := range update.From {
		if cmd.Status == from {
			matched = true
		}
	}
	if !matched {
		return false
	}
	at := update.At
	cmd.Status = update.To
	cmd.UpdatedTs = at
	switch update.To {
	case model.CommandStatusSent:
		cmd.SentTs = &at
	case model.CommandStatusCompleted,
		model.CommandStatusFailed,
		model.CommandStatusTimedOut:
		cmd.CompletedTs = &at
	}
	cmd.Error = update.Error
	if update.To == model.CommandStatusAcknowledged {
		cmd.CompletedTs = nil
	}
	switch update.To {
	case model.CommandStatusAcknowledged, model.CommandStatusCompleted:
		if cmd.AcknowledgedTs == nil || at.Before(*cmd.AcknowledgedTs) {
			cmd.AcknowledgedTs = &at
		}
	}
	if update.Attempt {
		cmd.Attempts++
	}
	s.commands[update.ID] = cmd
	return true
}

func (s *memStore) UpdateCommand(_ context.Context, update model.CommandUpdate) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.errs["UpdateCommand"]; err != nil {
		return false, err
	}
	return s.applyUpdate(update), nil
}

func (s *memStore) ApplyCommandUpdates(
	_ context.Context,
	updates []model.CommandUpdate,
) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.errs["ApplyCommandUpdates"]; err != nil {
		return 0, err
	}
	var n int64
	for _, update := range updates {
		if s.applyUpdate(update) {
			n++
		}
	}
	return n, nil
}
