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

package http

import (
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/time/rate"

	"github.com/mendersoftware/go-lib-micro/accesslog"
	"github.com/mendersoftware/go-lib-micro/identity"
	"github.com/mendersoftware/go-lib-micro/requestid"

	"github.com/mendersoftware/devicehub/app"
	"github.com/mendersoftware/devicehub/client/nats"
	"github.com/mendersoftware/devicehub/model"
)

// API URL used by the HTTP router
const (
	APIURLDevices    = "/api/devices/v1/devicehub"
	APIURLInternal   = "/api/internal/v1/devicehub"
	APIURLManagement = "/api/management/v1/devicehub"

	APIURLDevicesConnect          = APIURLDevices + "/connect"
	APIURLDevicesLicensesValidate = APIURLDevices + "/licenses/validate"

	APIURLInternalAlive    = APIURLInternal + "/alive"
	APIURLInternalHealth   = APIURLInternal + "/health"
	APIURLInternalMetrics  = APIURLInternal + "/metrics"
	APIURLInternalLicenses = APIURLInternal + "/licenses"

	APIURLManagementDevice         = APIURLManagement + "/devices/:deviceId"
	APIURLManagementDeviceSessions = APIURLManagement + "/devices/:deviceId/sessions"
	APIURLManagementDeviceCommands = APIURLManagement + "/devices/:deviceId/commands"
	APIURLManagementDeviceNotify   = APIURLManagement + "/devices/:deviceId/notify"
	APIURLManagementDeviceBlock    = APIURLManagement + "/devices/:deviceId/block"
	APIURLManagementDeviceUnblock  = APIURLManagement + "/devices/:deviceId/unblock"
	APIURLManagementCommand        = APIURLManagement + "/commands/:commandId"
)

const (
	defaultInboundRateLimit = 10
	defaultInboundRateBurst = 20
)

// Config holds the settings of the HTTP handlers
type Config struct {
	// InboundRateLimit is the number of messages per second a device
	// connection may send; the excess is dropped.
	InboundRateLimit float64
	InboundRateBurst int
}

func (conf *Config) limit() rate.Limit {
	if conf == nil || conf.InboundRateLimit <= 0 {
		return rate.Limit(defaultInboundRateLimit)
	}
	return rate.Limit(conf.InboundRateLimit)
}

func (conf *Config) burst() int {
	if conf == nil || conf.InboundRateBurst <= 0 {
		return defaultInboundRateBurst
	}
	return conf.InboundRateBurst
}

// NewRouter returns the gin router
func NewRouter(
	app app.App,
	natsClient nats.Client,
	conf *Config,
) (*gin.Engine, error) {
	gin.SetMode(gin.ReleaseMode)
	gin.DisableConsoleColor()

	router := gin.New()
	router.Use(accesslog.Middleware())
	router.Use(gin.Recovery())
	router.Use(identity.Middleware(
		identity.NewMiddlewareOptions().
			SetPathRegex(`^/api/management/v[0-9]/`),
	))
	router.Use(requestid.Middleware())
	router.Use(corsMiddleware())

	status := NewStatusController(app, natsClient)
	router.GET(APIURLInternalAlive, status.Alive)
	router.GET(APIURLInternalHealth, status.Health)
	router.GET(APIURLInternalMetrics, gin.WrapH(promhttp.Handler()))

	internal := NewInternalController(app)
	router.POST(APIURLInternalLicenses, internal.CreateLicense)

	device := NewDeviceController(app, natsClient, conf)
	router.GET(APIURLDevicesConnect, DeviceIdentityMiddleware, device.Connect)
	router.POST(APIURLDevicesLicensesValidate, device.ValidateLicense)

	management := NewManagementController(app)
	read := RequirePermission(model.PermissionDevicesRead)
	manage := RequirePermission(model.PermissionDevicesManage)
	issue := RequirePermission(model.PermissionCommandsIssue)
	router.GET(APIURLManagementDevice, read, management.GetDevice)
	router.GET(APIURLManagementDeviceSessions, read, management.ListSessions)
	router.GET(APIURLManagementDeviceCommands, read, management.ListCommands)
	router.GET(APIURLManagementCommand, read, management.GetCommand)
	router.POST(APIURLManagementDeviceCommands, issue, management.IssueCommand)
	router.POST(APIURLManagementDeviceNotify, issue, management.Notify)
	router.POST(APIURLManagementDeviceBlock, manage, management.Block)
	router.POST(APIURLManagementDeviceUnblock, manage, management.Unblock)

	return router, nil
}
