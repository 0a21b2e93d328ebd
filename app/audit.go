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

	"github.com/mendersoftware/go-lib-micro/identity"
	"github.com/mendersoftware/go-lib-micro/log"

	"github.com/mendersoftware/devicehub/client/workflows"
)

// submitAuditLog records an administrative action performed by the
// identity in the context. Failures are logged and do not abort the
// action, which has already been persisted.
func (a *app) submitAuditLog(
	ctx context.Context,
	action workflows.Action,
	object workflows.Object,
	change string,
) {
	if !a.HaveAuditLogs {
		return
	}
	l := log.FromContext(ctx)
	id := identity.FromContext(ctx)
	if id == nil || id.Subject == "" {
		l.Debugf("skipping audit log %q: no identity in context", action)
		return
	}
	actor := workflows.Actor{
		ID:   id.Subject,
		Type: workflows.ActorUser,
	}
	if id.IsDevice {
		actor.Type = workflows.ActorDevice
	}
	err := a.workflows.SubmitAuditLog(ctx, workflows.AuditLog{
		Action:  action,
		Actor:   actor,
		Object:  object,
		Change:  change,
		EventTS: a.now(),
	})
	if err != nil {
		l.Warnf("failed to submit audit log %q: %s", action, err.Error())
	}
}
