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

	mapset "github.com/deckarep/golang-set/v2"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/mendersoftware/devicehub/model"
)

// originPolicy lists the browser origins allowed to call the API and to
// open device sockets. An empty policy allows every origin.
type originPolicy struct {
	origins mapset.Set[string]
}

var acceptedOrigins = newOriginPolicy(nil)

func newOriginPolicy(origins []string) *originPolicy {
	set := mapset.NewSet[string]()
	for _, origin := range origins {
		if origin != "" {
			set.Add(origin)
		}
	}
	return &originPolicy{origins: set}
}

func (p *originPolicy) allowsAll() bool {
	return p.origins.Cardinality() == 0
}

func (p *originPolicy) allows(origin string) bool {
	return p.allowsAll() || p.origins.Contains(origin)
}

// checkOrigin is the websocket upgrader hook. Requests without an Origin
// header do not come from a browser.
func (p *originPolicy) checkOrigin(r *http.Request) bool {
	actual, ok := r.Header[HdrKeyOrigin]
	if !ok {
		return true
	}
	return len(actual) > 0 && p.allows(actual[0])
}

func allowAllOrigins(r *http.Request) bool { return true }

// SetAcceptedOrigins restricts the origins of the browser clients; it must
// be called before NewRouter.
func SetAcceptedOrigins(origins []string) {
	acceptedOrigins = newOriginPolicy(origins)
	if acceptedOrigins.allowsAll() {
		wsUpgrader.CheckOrigin = allowAllOrigins
	} else {
		wsUpgrader.CheckOrigin = acceptedOrigins.checkOrigin
	}
}

func corsMiddleware() gin.HandlerFunc {
	policy := acceptedOrigins
	conf := cors.Config{
		AllowCredentials: true,
		AllowHeaders: []string{
			"Accept",
			"Allow",
			"Content-Type",
			"Origin",
			"Authorization",
			"Accept-Encoding",
			"Access-Control-Request-Headers",
			"Header-Access-Control-Request",
			model.HeaderPermissions,
		},
		AllowMethods: []string{
			http.MethodGet,
			http.MethodPost,
			http.MethodPut,
			http.MethodDelete,
			http.MethodOptions,
		},
		AllowWebSockets: true,
		ExposeHeaders: []string{
			"Location",
			"Link",
		},
		MaxAge: time.Hour * 12,
	}
	if policy.allowsAll() {
		conf.AllowAllOrigins = true
	} else {
		conf.AllowOriginFunc = policy.allows
	}
	return cors.New(conf)
}
