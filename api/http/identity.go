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
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/pkg/errors"

	"github.com/mendersoftware/go-lib-micro/identity"
	"github.com/mendersoftware/go-lib-micro/log"
	"github.com/mendersoftware/go-lib-micro/rest.utils"
)

const headerAuthorization = "Authorization"

var (
	ErrNotADevice         = errors.New("the token does not identify a device")
	ErrUserIdentityNeeded = errors.New("the request must be made by a user")
)

// DeviceIdentityMiddleware resolves the device calling the device
// end-points. A device JWT takes precedence; devices authenticated
// upstream identify themselves with the device_id query parameter instead.
// Requests presenting a token that cannot be decoded or that belongs to a
// user are rejected.
func DeviceIdentityMiddleware(c *gin.Context) {
	ctx := c.Request.Context()
	var idata identity.Identity

	if jwt := extractTokenFromRequest(c.Request); jwt != "" {
		var err error
		idata, err = identity.ExtractIdentity(jwt)
		if err != nil {
			rest.RenderError(c, http.StatusUnauthorized, err)
			c.Abort()
			return
		} else if !idata.IsDevice {
			rest.RenderError(c, http.StatusForbidden, ErrNotADevice)
			c.Abort()
			return
		}
	} else if deviceID := c.Query(QueryDeviceID); deviceID != "" {
		idata = identity.Identity{
			Subject:  deviceID,
			IsDevice: true,
		}
	} else {
		return
	}

	l := log.FromContext(ctx).F(log.Ctx{"device_id": idata.Subject})
	ctx = log.WithContext(identity.WithContext(ctx, &idata), l)
	c.Request = c.Request.WithContext(ctx)
}

// userIdentity returns the identity of the user calling a management
// end-point, or nil if the caller is not a user.
func userIdentity(c *gin.Context) *identity.Identity {
	idata := identity.FromContext(c.Request.Context())
	if idata == nil || idata.IsDevice || idata.Subject == "" {
		return nil
	}
	return idata
}

func extractTokenFromRequest(req *http.Request) string {
	jwt := req.URL.Query().Get("jwt")
	if jwt == "" {
		auth := strings.Split(req.Header.Get(headerAuthorization), " ")
		if len(auth) == 2 && auth[0] == "Bearer" {
			jwt = auth[1]
		}
	}
	return jwt
}
