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

package config

import (
	"github.com/mendersoftware/go-lib-micro/config"
)

const (
	// SettingListen is the config key for the listen address
	SettingListen = "listen"
	// SettingListenDefault is the default value for the listen address
	SettingListenDefault = ":8080"

	// SettingNatsURI is the config key for the nats uri
	SettingNatsURI = "nats_uri"
	// SettingNatsURIDefault is the default value for the nats uri
	SettingNatsURIDefault = "nats://localhost:4222"

	// SettingMongo is the config key for the mongo URL
	SettingMongo = "mongo_url"
	// SettingMongoDefault is the default value for the mongo URL
	SettingMongoDefault = "mongodb://mender-mongo:27017"

	// SettingDbName is the config key for the mongo database name
	SettingDbName = "mongo_dbname"
	// SettingDbNameDefault is the default value for the mongo database name
	SettingDbNameDefault = "devicehub"

	// SettingDbSSL is the config key for the mongo SSL setting
	SettingDbSSL = "mongo_ssl"
	// SettingDbSSLDefault is the default value for the mongo SSL setting
	SettingDbSSLDefault = false

	// SettingDbSSLSkipVerify is the config key for the mongo SSL skip verify setting
	SettingDbSSLSkipVerify = "mongo_ssl_skipverify"
	// SettingDbSSLSkipVerifyDefault is the default value for the mongo SSL skip verify setting
	SettingDbSSLSkipVerifyDefault = false

	// SettingDbUsername is the config key for the mongo username
	SettingDbUsername = "mongo_username"

	// SettingDbPassword is the config key for the mongo password
	SettingDbPassword = "mongo_password"

	// SettingDebugLog is the config key for the turning on the debug log
	SettingDebugLog = "debug_log"
	// SettingDebugLogDefault is the default value for the debug log enabling
	SettingDebugLogDefault = false

	// SettingReconcileInterval is the config key for the period, in seconds,
	// between two reconciler sweeps
	SettingReconcileInterval = "reconcile_interval_seconds"
	// SettingReconcileIntervalDefault is the default reconciler period
	SettingReconcileIntervalDefault = 5

	// SettingCommandDispatchTimeout is the config key for the number of
	// seconds a pending command is retried before it is marked as failed
	SettingCommandDispatchTimeout = "command_dispatch_timeout_seconds"
	// SettingCommandDispatchTimeoutDefault is the default dispatch window
	SettingCommandDispatchTimeoutDefault = 300

	// SettingCommandAckTimeout is the config key for the number of seconds
	// a sent command waits for the device acknowledgement
	SettingCommandAckTimeout = "command_ack_timeout_seconds"
	// SettingCommandAckTimeoutDefault is the default acknowledgement window
	SettingCommandAckTimeoutDefault = 120

	// SettingPushTimeout is the config key for the timeout, in seconds,
	// of a single push to a device connection
	SettingPushTimeout = "push_timeout_seconds"
	// SettingPushTimeoutDefault is the default push timeout
	SettingPushTimeoutDefault = 5

	// SettingHeartbeatTimeout is the config key for the number of seconds
	// without heartbeat after which a session is evicted
	SettingHeartbeatTimeout = "heartbeat_timeout_seconds"
	// SettingHeartbeatTimeoutDefault is the default heartbeat timeout
	SettingHeartbeatTimeoutDefault = 180

	// SettingAcceptLateAcks is the config key that lets a device
	// acknowledgement correct a command that already timed out
	SettingAcceptLateAcks = "accept_late_acks"
	// SettingAcceptLateAcksDefault is the default for accepting late acks
	SettingAcceptLateAcksDefault = true

	// SettingInboundRateLimit is the config key for the number of messages
	// per second a device connection may send
	SettingInboundRateLimit = "inbound_rate_limit"
	// SettingInboundRateLimitDefault is the default inbound rate limit
	SettingInboundRateLimitDefault = 10

	// SettingInboundRateBurst is the config key for the inbound burst size
	SettingInboundRateBurst = "inbound_rate_burst"
	// SettingInboundRateBurstDefault is the default inbound burst size
	SettingInboundRateBurstDefault = 20

	// SettingEnableAudit is the config key for enabling audit logs
	SettingEnableAudit = "enable_audit"
	// SettingEnableAuditDefault is the default for audit logs
	SettingEnableAuditDefault = false

	// SettingWorkflowsURL is the config key for the workflows url
	SettingWorkflowsURL = "workflows_url"
	// SettingWorkflowsURLDefault is the default value for the workflows url
	SettingWorkflowsURLDefault = "http://mender-workflows-server:8080"

	// SettingAllowedOrigins is the config key for the list of origins
	// accepted on the device websocket
	SettingAllowedOrigins = "allowed_origins"
)

var (
	// Defaults are the default configuration settings
	Defaults = []config.Default{
		{Key: SettingListen, Value: SettingListenDefault},
		{Key: SettingNatsURI, Value: SettingNatsURIDefault},
		{Key: SettingMongo, Value: SettingMongoDefault},
		{Key: SettingDbName, Value: SettingDbNameDefault},
		{Key: SettingDbSSL, Value: SettingDbSSLDefault},
		{Key: SettingDbSSLSkipVerify, Value: SettingDbSSLSkipVerifyDefault},
		{Key: SettingDebugLog, Value: SettingDebugLogDefault},
		{Key: SettingReconcileInterval, Value: SettingReconcileIntervalDefault},
		{Key: SettingCommandDispatchTimeout, Value: SettingCommandDispatchTimeoutDefault},
		{Key: SettingCommandAckTimeout, Value: SettingCommandAckTimeoutDefault},
		{Key: SettingPushTimeout, Value: SettingPushTimeoutDefault},
		{Key: SettingHeartbeatTimeout, Value: SettingHeartbeatTimeoutDefault},
		{Key: SettingAcceptLateAcks, Value: SettingAcceptLateAcksDefault},
		{Key: SettingInboundRateLimit, Value: SettingInboundRateLimitDefault},
		{Key: SettingInboundRateBurst, Value: SettingInboundRateBurstDefault},
		{Key: SettingEnableAudit, Value: SettingEnableAuditDefault},
		{Key: SettingWorkflowsURL, Value: SettingWorkflowsURLDefault},
		{Key: SettingAllowedOrigins, Value: []string{}},
	}
)
