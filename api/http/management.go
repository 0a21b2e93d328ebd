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
	"encoding/json"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/google/uuid"
	"github.com/mendersoftware/go-lib-micro/log"
	"github.com/mendersoftware/go-lib-micro/rest.utils"
	"github.com/pkg/errors"

	"github.com/mendersoftware/devicehub/app"
	"github.com/mendersoftware/devicehub/model"
)

const (
	defaultPerPage = 20
	maxPerPage     = 500

	QueryLimit  = "limit"
	QueryStatus = "status"
)

// HTTP errors
var (
	ErrPermissionDenied = errors.New("access denied: missing permission")
	ErrInvalidLimit     = errors.New("limit must be a positive integer")
)

// RequirePermission rejects the requests not made by a user, and those
// presenting a permission set lacking perm. Users without the header are
// let through: the gateway did not scope them.
func RequirePermission(perm model.Permission) gin.HandlerFunc {
	return func(c *gin.Context) {
		if userIdentity(c) == nil {
			rest.RenderError(c, http.StatusForbidden, ErrUserIdentityNeeded)
			c.Abort()
			return
		}
		values := c.Request.Header.Values(model.HeaderPermissions)
		if len(values) == 0 {
			return
		}
		perms := model.ParsePermissions(strings.Join(values, ","))
		if !perms.Has(perm) {
			rest.RenderError(c, http.StatusForbidden,
				errors.Wrap(ErrPermissionDenied, string(perm)))
			c.Abort()
		}
	}
}

// ManagementController container for end-points
type ManagementController struct {
	app app.App
}

// NewManagementController returns a new ManagementController
func NewManagementController(app app.App) *ManagementController {
	return &ManagementController{app: app}
}

func isValidationError(err error) bool {
	switch errors.Cause(err).(type) {
	case validation.Errors, validation.Error:
		return true
	}
	return false
}

func parseLimit(c *gin.Context) (int64, error) {
	raw := c.Query(QueryLimit)
	if raw == "" {
		return defaultPerPage, nil
	}
	limit, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || limit < 1 {
		return 0, ErrInvalidLimit
	} else if limit > maxPerPage {
		limit = maxPerPage
	}
	return limit, nil
}

func renderAppError(c *gin.Context, err error) {
	switch {
	case err == app.ErrDeviceNotFound, err == app.ErrCommandNotFound:
		rest.RenderError(c, http.StatusNotFound, err)
	case isValidationError(err):
		rest.RenderError(c, http.StatusBadRequest, err)
	default:
		log.FromContext(c.Request.Context()).Error(err)
		rest.RenderError(c, http.StatusInternalServerError,
			errors.New("internal error"))
	}
}

// GetDevice returns a device
func (h ManagementController) GetDevice(c *gin.Context) {
	device, err := h.app.GetDevice(c.Request.Context(), c.Param("deviceId"))
	if err != nil {
		renderAppError(c, err)
		return
	}
	c.JSON(http.StatusOK, device)
}

// ListSessions returns the most recent sessions of a device
func (h ManagementController) ListSessions(c *gin.Context) {
	limit, err := parseLimit(c)
	if err != nil {
		rest.RenderError(c, http.StatusBadRequest, err)
		return
	}
	sessions, err := h.app.ListDeviceSessions(c.Request.Context(),
		c.Param("deviceId"), limit)
	if err != nil {
		renderAppError(c, err)
		return
	}
	c.JSON(http.StatusOK, sessions)
}

type commandRequest struct {
	Type        model.CommandType `json:"type"`
	Payload     json.RawMessage   `json:"payload,omitempty"`
	ScheduledTs *time.Time        `json:"scheduled_ts,omitempty"`
}

type commandResponse struct {
	ID            string              `json:"id"`
	CorrelationID uuid.UUID           `json:"correlation_id"`
	Status        model.CommandStatus `json:"status"`
	Dispatched    bool                `json:"dispatched"`
}

// IssueCommand creates a command for the device and dispatches it unless
// it is scheduled in the future.
func (h ManagementController) IssueCommand(c *gin.Context) {
	ctx := c.Request.Context()
	deviceID := c.Param("deviceId")

	req := commandRequest{}
	if err := c.ShouldBindJSON(&req); err != nil {
		rest.RenderError(c, http.StatusBadRequest,
			errors.Wrap(err, "malformed request body"))
		return
	}

	var (
		cmd        *model.Command
		dispatched bool
		err        error
	)
	if req.ScheduledTs != nil && req.ScheduledTs.After(time.Now()) {
		cmd, err = h.app.CreateCommand(ctx, deviceID, req.Type, req.Payload, req.ScheduledTs)
	} else {
		cmd, dispatched, err = h.app.IssueCommand(ctx, deviceID, req.Type, req.Payload)
	}
	if err != nil && cmd == nil {
		renderAppError(c, err)
		return
	} else if err != nil {
		// the command exists; the reconciler takes it from here
		log.FromContext(ctx).Warnf("command %s: %s", cmd.ID, err.Error())
	}

	c.JSON(http.StatusAccepted, commandResponse{
		ID:            cmd.ID,
		CorrelationID: cmd.CorrelationID,
		Status:        cmd.Status,
		Dispatched:    dispatched,
	})
}

// ListCommands returns the most recent commands of a device
func (h ManagementController) ListCommands(c *gin.Context) {
	limit, err := parseLimit(c)
	if err != nil {
		rest.RenderError(c, http.StatusBadRequest, err)
		return
	}
	status := model.CommandStatus(c.Query(QueryStatus))
	if err := status.Validate(); err != nil {
		rest.RenderError(c, http.StatusBadRequest,
			errors.Wrap(err, "invalid status"))
		return
	}
	commands, err := h.app.ListDeviceCommands(c.Request.Context(),
		c.Param("deviceId"), status, limit)
	if err != nil {
		renderAppError(c, err)
		return
	}
	c.JSON(http.StatusOK, commands)
}

// GetCommand returns a command
func (h ManagementController) GetCommand(c *gin.Context) {
	cmd, err := h.app.GetCommand(c.Request.Context(), c.Param("commandId"))
	if err != nil {
		renderAppError(c, err)
		return
	}
	c.JSON(http.StatusOK, cmd)
}

// Notify pushes a notification to the live connections of the device
func (h ManagementController) Notify(c *gin.Context) {
	ctx := c.Request.Context()
	deviceID := c.Param("deviceId")

	notification := model.Notification{}
	if err := c.ShouldBindJSON(&notification); err != nil {
		rest.RenderError(c, http.StatusBadRequest,
			errors.Wrap(err, "malformed request body"))
		return
	} else if err := notification.Validate(); err != nil {
		rest.RenderError(c, http.StatusBadRequest, err)
		return
	}
	if _, err := h.app.GetDevice(ctx, deviceID); err != nil {
		renderAppError(c, err)
		return
	}

	delivered := h.app.Notify(ctx, deviceID, notification)
	c.JSON(http.StatusAccepted, gin.H{"delivered": delivered})
}

// Block blocks a device
func (h ManagementController) Block(c *gin.Context) {
	if err := h.app.BlockDevice(c.Request.Context(), c.Param("deviceId")); err != nil {
		renderAppError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// Unblock lifts the block of a device
func (h ManagementController) Unblock(c *gin.Context) {
	if err := h.app.UnblockDevice(c.Request.Context(), c.Param("deviceId")); err != nil {
		renderAppError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
