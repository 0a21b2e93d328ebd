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

package workflows

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/mendersoftware/go-lib-micro/identity"
	"github.com/mendersoftware/go-lib-micro/requestid"
	rest "github.com/mendersoftware/go-lib-micro/rest.utils"
	"github.com/pkg/errors"
)

const (
	HealthCheckURI = "/api/v1/health"
	WorkflowURI    = "/api/v1/workflow/"

	// WorkflowAuditlog is the workflow receiving hub audit log entries.
	WorkflowAuditlog = "emit_auditlog"
)

const (
	defaultTimeout = time.Duration(5) * time.Second
)

var ErrWorkflowNotDefined = errors.New("workflow not defined")

// Client is the workflows client
//
//go:generate ../../utils/mockgen.sh
type Client interface {
	CheckHealth(ctx context.Context) error
	SubmitAuditLog(ctx context.Context, log AuditLog) error
}

type ClientOptions struct {
	Client  *http.Client
	// Timeout bounds requests whose context carries no deadline.
	Timeout time.Duration
}

// NewClient returns a new workflows client
func NewClient(url string, opts ...ClientOptions) Client {
	var clientOpts = ClientOptions{
		Client:  &http.Client{},
		Timeout: defaultTimeout,
	}
	for _, opt := range opts {
		if opt.Client != nil {
			clientOpts.Client = opt.Client
		}
		if opt.Timeout > 0 {
			clientOpts.Timeout = opt.Timeout
		}
	}

	return &client{
		url:     strings.TrimSuffix(url, "/"),
		client:  clientOpts.Client,
		timeout: clientOpts.Timeout,
	}
}

type client struct {
	url     string
	client  *http.Client
	timeout time.Duration
}

func (c *client) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if ctx == nil {
		ctx = context.Background()
	}
	if _, ok := ctx.Deadline(); ok {
		return ctx, func() {}
	}
	return context.WithTimeout(ctx, c.timeout)
}

func (c *client) CheckHealth(ctx context.Context) error {
	var apiErr rest.Error

	ctx, cancel := c.withTimeout(ctx)
	defer cancel()
	req, _ := http.NewRequestWithContext(
		ctx, http.MethodGet, c.url+HealthCheckURI, nil,
	)

	rsp, err := c.client.Do(req)
	if err != nil {
		return err
	}
	defer rsp.Body.Close()
	if rsp.StatusCode >= http.StatusOK && rsp.StatusCode < 300 {
		return nil
	}
	err = json.NewDecoder(rsp.Body).Decode(&apiErr)
	if err != nil {
		return errors.Errorf("health check HTTP error: %s", rsp.Status)
	}
	return &apiErr
}

// SubmitAuditLog validates the entry and hands it to the audit log
// workflow. The tenant of the identity in ctx, if any, scopes the entry.
func (c *client) SubmitAuditLog(ctx context.Context, log AuditLog) error {
	ctx, cancel := c.withTimeout(ctx)
	defer cancel()
	if log.EventTS.IsZero() {
		log.EventTS = time.Now()
	}
	if err := log.Validate(); err != nil {
		return errors.Wrap(err, "workflows: invalid AuditLog entry")
	}
	wflow := AuditWorkflow{
		RequestID: requestid.FromContext(ctx),
		AuditLog:  log,
	}
	if id := identity.FromContext(ctx); id != nil {
		wflow.TenantID = id.Tenant
	}
	return c.startWorkflow(ctx, WorkflowAuditlog, wflow)
}

func (c *client) startWorkflow(
	ctx context.Context,
	name string,
	input interface{},
) error {
	payload, err := json.Marshal(input)
	if err != nil {
		return errors.Wrap(err, "workflows: failed to serialize workflow input")
	}
	req, err := http.NewRequestWithContext(ctx,
		http.MethodPost,
		c.url+WorkflowURI+name,
		bytes.NewReader(payload),
	)
	if err != nil {
		return errors.Wrap(err, "workflows: error preparing HTTP request")
	}
	req.Header.Set("Content-Type", "application/json")
	if reqID := requestid.FromContext(ctx); reqID != "" {
		req.Header.Set(requestid.RequestIdHeader, reqID)
	}

	rsp, err := c.client.Do(req)
	if err != nil {
		return errors.Wrapf(err, "workflows: failed to start %s", name)
	}
	defer rsp.Body.Close()

	switch {
	case rsp.StatusCode < 300:
		return nil
	case rsp.StatusCode == http.StatusNotFound:
		return errors.Wrapf(ErrWorkflowNotDefined, "workflows: %s", name)
	default:
		return errors.Errorf(
			"workflows: unexpected HTTP status from workflows service: %s",
			rsp.Status,
		)
	}
}
