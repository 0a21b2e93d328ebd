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
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	pkgerrors "github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/mendersoftware/devicehub/app"
	app_mocks "github.com/mendersoftware/devicehub/app/mocks"
	"github.com/mendersoftware/devicehub/model"
)

var contextMatcher = mock.MatchedBy(func(_ context.Context) bool { return true })

func mustJSON(v interface{}) []byte {
	b, err := json.Marshal(v)
	if err != nil {
		panic(err)
	}
	return b
}

func TestCreateLicense(t *testing.T) {
	testCases := []struct {
		Name string

		Body   []byte
		AppErr error

		HTTPStatus int
		Contains   string
	}{{
		Name: "ok",

		Body: mustJSON(map[string]interface{}{
			"key":            "abcdefgh-1234",
			"application_id": "app-1",
			"max_devices":    3,
		}),

		HTTPStatus: http.StatusCreated,
		Contains:   `"id":"lic-1"`,
	}, {
		Name: "error, malformed body",

		Body: []byte("{"),

		HTTPStatus: http.StatusBadRequest,
		Contains:   "malformed request body",
	}, {
		Name: "error, invalid license",

		Body: mustJSON(map[string]interface{}{
			"key":            "abcdefgh-1234",
			"application_id": "app-1",
		}),
		AppErr: pkgerrors.Wrap(validation.Errors{
			"max_devices": errors.New("cannot be blank"),
		}, "invalid license"),

		HTTPStatus: http.StatusBadRequest,
		Contains:   "max_devices",
	}, {
		Name: "error, duplicate key",

		Body: mustJSON(map[string]interface{}{
			"key":            "abcdefgh-1234",
			"application_id": "app-1",
			"max_devices":    3,
		}),
		AppErr: app.ErrLicenseExists,

		HTTPStatus: http.StatusConflict,
		Contains:   app.ErrLicenseExists.Error(),
	}, {
		Name: "error, internal",

		Body: mustJSON(map[string]interface{}{
			"key":            "abcdefgh-1234",
			"application_id": "app-1",
			"max_devices":    3,
		}),
		AppErr: errors.New("connection refused"),

		HTTPStatus: http.StatusInternalServerError,
		Contains:   "internal error",
	}}

	for i := range testCases {
		tc := testCases[i]
		t.Run(tc.Name, func(t *testing.T) {
			hubApp := &app_mocks.App{}
			defer hubApp.AssertExpectations(t)
			if tc.HTTPStatus != http.StatusBadRequest || tc.AppErr != nil {
				hubApp.On("CreateLicense", contextMatcher,
					mock.MatchedBy(func(l *model.License) bool {
						return l.Key == "abcdefgh-1234" &&
							l.ApplicationID == "app-1"
					})).
					Run(func(args mock.Arguments) {
						l := args.Get(1).(*model.License)
						l.ID = "lic-1"
						l.Status = model.LicenseStatusActive
					}).
					Return(tc.AppErr)
			}

			router, _ := NewRouter(hubApp, nil, nil)
			req, _ := http.NewRequest(http.MethodPost,
				APIURLInternalLicenses, bytes.NewReader(tc.Body))
			req.Header.Set("Content-Type", "application/json")

			w := httptest.NewRecorder()
			router.ServeHTTP(w, req)
			assert.Equal(t, tc.HTTPStatus, w.Code)
			assert.Contains(t, w.Body.String(), tc.Contains)
		})
	}
}
