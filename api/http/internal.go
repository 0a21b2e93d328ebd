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
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/mendersoftware/go-lib-micro/log"
	"github.com/mendersoftware/go-lib-micro/rest.utils"
	"github.com/pkg/errors"

	"github.com/mendersoftware/devicehub/app"
	"github.com/mendersoftware/devicehub/model"
)

// InternalController contains the end-points reserved to other services
type InternalController struct {
	app app.App
}

// NewInternalController returns a new InternalController
func NewInternalController(app app.App) *InternalController {
	return &InternalController{app: app}
}

type licenseRequest struct {
	Key           string     `json:"key"`
	ApplicationID string     `json:"application_id"`
	UserID        string     `json:"user_id"`
	MaxDevices    int        `json:"max_devices"`
	ExpiresTs     *time.Time `json:"expires_ts"`
}

// CreateLicense responds to POST /licenses
func (h InternalController) CreateLicense(c *gin.Context) {
	ctx := c.Request.Context()

	var req licenseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		rest.RenderError(c, http.StatusBadRequest,
			errors.Wrap(err, "malformed request body"))
		return
	}

	license := &model.License{
		Key:           req.Key,
		ApplicationID: req.ApplicationID,
		UserID:        req.UserID,
		MaxDevices:    req.MaxDevices,
		ExpiresTs:     req.ExpiresTs,
	}
	err := h.app.CreateLicense(ctx, license)
	if err == app.ErrLicenseExists {
		rest.RenderError(c, http.StatusConflict, err)
		return
	} else if _, ok := errors.Cause(err).(validation.Errors); ok {
		rest.RenderError(c, http.StatusBadRequest, err)
		return
	} else if err != nil {
		log.FromContext(ctx).Error(err)
		rest.RenderError(c, http.StatusInternalServerError,
			errors.New("internal error"))
		return
	}

	c.JSON(http.StatusCreated, license)
}
