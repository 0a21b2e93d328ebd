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
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"

	app_mocks "github.com/mendersoftware/devicehub/app/mocks"
	"github.com/mendersoftware/devicehub/model"
)

func TestCORSAllowedOrigins(t *testing.T) {
	// SetAcceptedOrigins changes package state: not parallel.
	defer SetAcceptedOrigins(nil)
	testCases := []struct {
		Name string

		Origins  []string
		Input    string
		// Missing the Origin header instead of an empty one
		NoHeader bool

		Result bool
	}{{
		Name: "ok, single domain",

		Origins: []string{"https://hub.example.com"},
		Input:   "https://hub.example.com",

		Result: true,
	}, {
		Name: "ok, list of domains",

		Origins: []string{"https://localhost", "wss://localhost", "localhost"},
		Input:   "wss://localhost",

		Result: true,
	}, {
		Name: "ok, no header",

		Origins:  []string{"https://localhost"},
		NoHeader: true,

		Result: true,
	}, {
		Name: "ok, allow all",

		Input:  "https://anywhere.example.com",
		Result: true,
	}, {
		Name: "ok, empty entries are ignored",

		Origins: []string{""},
		Input:   "https://anywhere.example.com",
		Result:  true,
	}, {
		Name: "origin mismatch",

		Origins: []string{"https://localhost", "wss://localhost", "localhost"},
		Input:   "https://remotehost",

		Result: false,
	}, {
		Name: "empty origin header",

		Origins: []string{"https://localhost"},

		Result: false,
	}}
	for i := range testCases {
		tc := testCases[i]
		t.Run(tc.Name, func(t *testing.T) {
			SetAcceptedOrigins(tc.Origins)

			req, _ := http.NewRequest(http.MethodGet, "http://localhost", nil)
			if !tc.NoHeader {
				req.Header[HdrKeyOrigin] = []string{tc.Input}
			}
			assert.Equal(t, tc.Result, wsUpgrader.CheckOrigin(req))
		})
	}
}

func TestCORSPreflight(t *testing.T) {
	// SetAcceptedOrigins changes package state: not parallel.
	defer SetAcceptedOrigins(nil)
	testCases := []struct {
		Name string

		Origins []string
		Origin  string

		HTTPStatus  int
		AllowOrigin string
	}{{
		Name: "ok, any origin",

		Origin: "https://console.example.com",

		HTTPStatus:  http.StatusNoContent,
		AllowOrigin: "*",
	}, {
		Name: "ok, accepted origin",

		Origins: []string{"https://console.example.com"},
		Origin:  "https://console.example.com",

		HTTPStatus:  http.StatusNoContent,
		AllowOrigin: "https://console.example.com",
	}, {
		Name: "error, origin not accepted",

		Origins: []string{"https://console.example.com"},
		Origin:  "https://evil.example.com",

		HTTPStatus: http.StatusForbidden,
	}}
	for i := range testCases {
		tc := testCases[i]
		t.Run(tc.Name, func(t *testing.T) {
			SetAcceptedOrigins(tc.Origins)
			router, _ := NewRouter(&app_mocks.App{}, nil, nil)

			req, _ := http.NewRequest(http.MethodOptions,
				"http://localhost"+APIURLManagementDeviceCommands, nil)
			req.Header.Set(HdrKeyOrigin, tc.Origin)
			req.Header.Set("Access-Control-Request-Method", http.MethodPost)
			req.Header.Set("Access-Control-Request-Headers", model.HeaderPermissions)

			w := httptest.NewRecorder()
			router.ServeHTTP(w, req)
			assert.Equal(t, tc.HTTPStatus, w.Code)
			assert.Equal(t, tc.AllowOrigin, w.Header().Get("Access-Control-Allow-Origin"))
			if tc.HTTPStatus == http.StatusNoContent {
				assert.Contains(t,
					w.Header().Get("Access-Control-Allow-Headers"),
					http.CanonicalHeaderKey(model.HeaderPermissions))
			}
		})
	}
}
