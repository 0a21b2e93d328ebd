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

package server

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"time"

	"github.com/pkg/errors"
	"golang.org/x/sys/unix"

	api "github.com/mendersoftware/devicehub/api/http"
	"github.com/mendersoftware/devicehub/app"
	"github.com/mendersoftware/devicehub/client/nats"
	"github.com/mendersoftware/devicehub/client/workflows"
	dconfig "github.com/mendersoftware/devicehub/config"
	"github.com/mendersoftware/devicehub/gateway"
	"github.com/mendersoftware/devicehub/store"
	"github.com/mendersoftware/go-lib-micro/config"
	"github.com/mendersoftware/go-lib-micro/log"
)

const shutdownTimeout = 5 * time.Second

func seconds(conf config.Reader, key string) time.Duration {
	return time.Duration(conf.GetInt(key)) * time.Second
}

// NewAppConfig reads the app settings from conf
func NewAppConfig(conf config.Reader) app.Config {
	return app.Config{
		HaveAuditLogs:     conf.GetBool(dconfig.SettingEnableAudit),
		AcceptLateAcks:    conf.GetBool(dconfig.SettingAcceptLateAcks),
		DispatchTimeout:   seconds(conf, dconfig.SettingCommandDispatchTimeout),
		AckTimeout:        seconds(conf, dconfig.SettingCommandAckTimeout),
		PushTimeout:       seconds(conf, dconfig.SettingPushTimeout),
		HeartbeatTimeout:  seconds(conf, dconfig.SettingHeartbeatTimeout),
		ReconcileInterval: seconds(conf, dconfig.SettingReconcileInterval),
	}
}

// NewAPIConfig reads the HTTP handler settings from conf
func NewAPIConfig(conf config.Reader) *api.Config {
	return &api.Config{
		InboundRateLimit: float64(conf.GetInt(dconfig.SettingInboundRateLimit)),
		InboundRateBurst: conf.GetInt(dconfig.SettingInboundRateBurst),
	}
}

// NewApp wires the app on top of the data store and the NATS client
func NewApp(conf config.Reader, dataStore store.DataStore, natsClient nats.Client) app.App {
	var wf workflows.Client
	if conf.GetBool(dconfig.SettingEnableAudit) {
		wf = workflows.NewClient(conf.GetString(dconfig.SettingWorkflowsURL))
	}
	return app.New(
		dataStore,
		gateway.NewTransport(natsClient),
		wf,
		NewAppConfig(conf),
	)
}

// InitAndRun initializes the server and runs it
func InitAndRun(conf config.Reader, dataStore store.DataStore) error {
	ctx := context.Background()

	log.Setup(conf.GetBool(dconfig.SettingDebugLog))
	l := log.FromContext(ctx)

	natsClient, err := nats.NewClientWithDefaults(
		conf.GetString(dconfig.SettingNatsURI),
	)
	if err != nil {
		return errors.Wrap(err, "failed to connect to nats")
	}
	defer natsClient.Close()

	hubApp := NewApp(conf, dataStore, natsClient)

	api.SetAcceptedOrigins(conf.GetStringSlice(dconfig.SettingAllowedOrigins))
	router, err := api.NewRouter(hubApp, natsClient, NewAPIConfig(conf))
	if err != nil {
		l.Fatal(err)
	}

	var listen = conf.GetString(dconfig.SettingListen)
	srv := &http.Server{
		Addr:    listen,
		Handler: router,
	}

	reconcilerCtx, stopReconciler := context.WithCancel(ctx)
	defer stopReconciler()
	reconcilerDone := make(chan struct{})
	go func() {
		defer close(reconcilerDone)
		if err := hubApp.RunReconciler(reconcilerCtx); err != nil {
			l.Errorf("reconciler stopped: %s", err.Error())
		}
	}()

	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			l.Fatalf("listen: %s\n", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, unix.SIGINT, unix.SIGTERM)
	<-quit

	l.Info("Shutdown Server ...")

	stopReconciler()
	<-reconcilerDone

	ctxWithTimeout, cancel := context.WithTimeout(ctx, shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(ctxWithTimeout); err != nil {
		l.Error("Server Shutdown: ", err)
	}
	// hijacked device connections are not tracked by the http server
	hubApp.Shutdown(shutdownTimeout)

	return nil
}

// Reconcile runs a single reconciler sweep
func Reconcile(conf config.Reader, dataStore store.DataStore) error {
	ctx := context.Background()

	log.Setup(conf.GetBool(dconfig.SettingDebugLog))
	l := log.FromContext(ctx)

	natsClient, err := nats.NewClientWithDefaults(
		conf.GetString(dconfig.SettingNatsURI),
	)
	if err != nil {
		return errors.Wrap(err, "failed to connect to nats")
	}
	defer natsClient.Close()

	res, err := NewApp(conf, dataStore, natsClient).SweepOnce(ctx)
	if err != nil {
		return err
	}
	l.Infof("sweep done: %d dispatched, %d waiting, %d failed, %d timed out, "+
		"%d sessions evicted", res.Dispatched, res.Waiting, res.Failed,
		res.TimedOut, res.Evicted)
	return nil
}
