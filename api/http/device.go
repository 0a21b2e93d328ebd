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
	"context"
	"encoding/binary"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/mendersoftware/go-lib-micro/identity"
	"github.com/mendersoftware/go-lib-micro/log"
	"github.com/mendersoftware/go-lib-micro/rest.utils"
	"github.com/mendersoftware/go-lib-micro/ws"
	natsio "github.com/nats-io/nats.go"
	"github.com/pkg/errors"
	"github.com/vmihailenco/msgpack/v5"
	"golang.org/x/time/rate"

	"github.com/mendersoftware/devicehub/app"
	"github.com/mendersoftware/devicehub/client/nats"
	"github.com/mendersoftware/devicehub/gateway"
	"github.com/mendersoftware/devicehub/model"
)

const (
	// Time allowed to write a message to the peer.
	writeWait = 10 * time.Second

	// Time allowed to read the next pong message from the peer.
	pongWait = 60 * time.Second

	// Send pings to peer with this period. Must be less than pongWait.
	pingPeriod = (pongWait * 9) / 10

	// Upper bound on the time spent persisting the disconnect.
	disconnectTimeout = 10 * time.Second
)

const channelSize = 25

const (
	WebsocketReadBufferSize  = 1024
	WebsocketWriteBufferSize = 1024

	HdrKeyOrigin = "Origin"

	// QueryDeviceID carries the device id when the device does not
	// present an identity token.
	QueryDeviceID = "device_id"
)

var wsUpgrader = websocket.Upgrader{
	ReadBufferSize:  WebsocketReadBufferSize,
	WriteBufferSize: WebsocketWriteBufferSize,
	Subprotocols:    []string{"protomsg/msgpack"},
	CheckOrigin:     allowAllOrigins,
}

// HTTP errors
var (
	ErrMissingDeviceIdentity = errors.New("missing device identity")
)

// DeviceController container for end-points
type DeviceController struct {
	app   app.App
	nats  nats.Client
	limit rate.Limit
	burst int
}

// NewDeviceController returns a new DeviceController
func NewDeviceController(app app.App, nc nats.Client, conf *Config) *DeviceController {
	return &DeviceController{
		app:   app,
		nats:  nc,
		limit: conf.limit(),
		burst: conf.burst(),
	}
}

// ValidateLicense responds to POST /licenses/validate
func (h DeviceController) ValidateLicense(c *gin.Context) {
	ctx := c.Request.Context()

	req := &model.LicenseValidationRequest{}
	if err := c.ShouldBindJSON(req); err != nil {
		rest.RenderError(c, http.StatusBadRequest,
			errors.Wrap(err, "malformed request body"))
		return
	}

	res, err := h.app.ValidateLicense(ctx, req)
	if err != nil {
		var limitErr *app.DeviceLimitError
		switch {
		case err == app.ErrLicenseInvalid:
			rest.RenderError(c, http.StatusForbidden, err)
		case errors.As(err, &limitErr):
			c.JSON(http.StatusConflict, gin.H{
				"error":              limitErr.Error(),
				"registered_devices": limitErr.RegisteredDevices,
				"max_devices":        limitErr.MaxDevices,
			})
		default:
			if _, ok := errors.Cause(err).(validation.Errors); ok {
				rest.RenderError(c, http.StatusBadRequest, err)
				return
			}
			log.FromContext(ctx).Error(err)
			rest.RenderError(c, http.StatusInternalServerError,
				errors.New("internal error"))
		}
		return
	}

	c.JSON(http.StatusOK, res)
}

func deviceIDFromRequest(c *gin.Context) string {
	idata := identity.FromContext(c.Request.Context())
	if idata == nil || !idata.IsDevice {
		return ""
	}
	return idata.Subject
}

// Connect starts a websocket connection with the device
func (h DeviceController) Connect(c *gin.Context) {
	deviceID := deviceIDFromRequest(c)
	if deviceID == "" {
		rest.RenderError(c, http.StatusBadRequest, ErrMissingDeviceIdentity)
		return
	}

	connectionID := uuid.NewString()
	l := log.FromContext(c.Request.Context()).F(log.Ctx{
		"device_id":     deviceID,
		"connection_id": connectionID,
	})
	ctx := log.WithContext(c.Request.Context(), l)

	// subscribe before the session is visible to the dispatcher
	msgChan := make(chan *natsio.Msg, channelSize)
	sub, err := h.nats.ChanSubscribe(model.GetConnectionSubject(connectionID), msgChan)
	if err != nil {
		l.Error(err)
		rest.RenderError(c, http.StatusInternalServerError,
			errors.New("failed to establish internal device session"))
		return
	}

	_, err = h.app.RecordConnect(ctx,
		deviceID, connectionID, c.ClientIP(), c.Request.UserAgent())
	if err != nil {
		//nolint:errcheck
		sub.Unsubscribe()
	}
	switch err {
	case nil:
	case app.ErrDeviceNotFound:
		rest.RenderError(c, http.StatusNotFound, err)
		return
	case app.ErrDeviceBlocked:
		rest.RenderError(c, http.StatusForbidden, err)
		return
	default:
		l.Error(err)
		rest.RenderError(c, http.StatusInternalServerError,
			errors.New("internal error"))
		return
	}

	ctx, cancel := context.WithCancel(ctx)
	cancelID := h.app.RegisterShutdownCancel(cancel)
	defer func() {
		cancel()
		// stop taking pushes before the session is closed
		//nolint:errcheck
		sub.Unsubscribe()
		ctx, cancel := context.WithTimeout(
			log.WithContext(context.Background(), l),
			disconnectTimeout,
		)
		defer cancel()
		if err := h.app.RecordDisconnect(ctx, connectionID); err != nil {
			l.Errorf("failed to record disconnect: %s", err.Error())
		}
		h.app.UnregisterShutdownCancel(cancelID)
	}()

	upgrader := wsUpgrader
	upgrader.Error = func(
		w http.ResponseWriter, r *http.Request, s int, e error) {
		rest.RenderError(c, s, e)
	}
	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		l.Error(errors.Wrap(err,
			"unable to upgrade the request to websocket protocol"))
		return
	}

	err = h.ConnectServeWS(ctx, conn, connectionID, msgChan)
	if err != nil {
		l.Warnf("device connection closed: %s", err.Error())
	}
}

// ConnectServeWS serves an accepted device connection until the device
// goes away or ctx is cancelled.
func (h DeviceController) ConnectServeWS(
	ctx context.Context,
	conn *websocket.Conn,
	connectionID string,
	msgChan <-chan *natsio.Msg,
) error {
	l := log.FromContext(ctx)

	// handle the ping-pong connection health check
	err := conn.SetReadDeadline(time.Now().Add(pongWait))
	if err != nil {
		conn.Close()
		return err
	}
	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()
	conn.SetPongHandler(func(string) error {
		ticker.Reset(pingPeriod)
		if err := h.app.RecordHeartbeat(ctx, connectionID); err != nil {
			l.Warnf("failed to record heartbeat: %s", err.Error())
		}
		return conn.SetReadDeadline(time.Now().Add(pongWait))
	})
	conn.SetPingHandler(func(msg string) error {
		ticker.Reset(pingPeriod)
		err := conn.SetReadDeadline(time.Now().Add(pongWait))
		if err != nil {
			return err
		}
		return conn.WriteControl(
			websocket.PongMessage,
			[]byte(msg),
			time.Now().Add(writeWait),
		)
	})

	// websocketWriter is responsible for closing the websocket
	//nolint:errcheck
	go websocketWriter(ctx, conn, ticker, msgChan)

	limiter := rate.NewLimiter(h.limit, h.burst)
	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			if _, ok := err.(*websocket.CloseError); ok {
				return nil
			} else if ctx.Err() != nil {
				return nil
			}
			return err
		}
		if !limiter.Allow() {
			inboundDropped.Inc()
			l.Warn("inbound rate limit exceeded: dropping message")
			continue
		}
		m := &ws.ProtoMsg{}
		if err = msgpack.Unmarshal(data, m); err != nil {
			l.Warnf("dropping malformed message: %s", err.Error())
			continue
		}
		h.handleMessage(ctx, connectionID, m)
	}
}

func (h DeviceController) handleMessage(
	ctx context.Context,
	connectionID string,
	m *ws.ProtoMsg,
) {
	l := log.FromContext(ctx)
	if m.Header.Proto != model.ProtoTypeHub {
		l.Warnf("dropping message with unexpected protocol: %d", m.Header.Proto)
		return
	}
	var err error
	switch m.Header.MsgType {
	case model.MessageTypeHeartbeat:
		err = h.app.RecordHeartbeat(ctx, connectionID)

	case model.MessageTypeAcknowledgeCommand:
		var ack *model.Acknowledgement
		ack, err = model.ParseAcknowledgement(m)
		if err == nil {
			err = h.app.AcknowledgeCommand(ctx, ack)
		}

	default:
		l.Warnf("dropping message of unknown type %q", m.Header.MsgType)
	}
	if err != nil {
		l.Errorf("failed to handle %s message: %s",
			m.Header.MsgType, err.Error())
	}
}

func websocketPing(conn *websocket.Conn) bool {
	pongWaitString := strconv.Itoa(int(pongWait.Seconds()))
	if err := conn.WriteControl(
		websocket.PingMessage,
		[]byte(pongWaitString),
		time.Now().Add(writeWait),
	); err != nil {
		return false
	}
	return true
}

func writerFinalizer(conn *websocket.Conn, e *error, l *log.Logger) {
	err := *e
	if err != nil {
		if !websocket.IsUnexpectedCloseError(errors.Cause(err)) {
			errMsg := err.Error()
			errBody := make([]byte, len(errMsg)+2)
			binary.BigEndian.PutUint16(errBody,
				websocket.CloseInternalServerErr)
			copy(errBody[2:], errMsg)
			errClose := conn.WriteControl(
				websocket.CloseMessage,
				errBody,
				time.Now().Add(writeWait),
			)
			if errClose != nil {
				err = errors.Wrapf(err,
					"error sending websocket close frame: %s",
					errClose.Error(),
				)
			}
		}
		l.Errorf("websocket closed with error: %s", err.Error())
	}
	conn.Close()
}

// websocketWriter is the go-routine responsible for the writing end of the
// websocket. The routine forwards the pushes posted on the NATS connection
// subject, replies to each of them and periodically pings the device. If
// the connection times out or ctx is cancelled, the routine closes the
// connection.
func websocketWriter(
	ctx context.Context,
	conn *websocket.Conn,
	ticker *time.Ticker,
	msgChan <-chan *natsio.Msg,
) (err error) {
	l := log.FromContext(ctx)
	defer writerFinalizer(conn, &err, l)

Loop:
	for {
		select {
		case msg := <-msgChan:
			err = conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err == nil {
				err = conn.WriteMessage(websocket.BinaryMessage, msg.Data)
			}
			if errReply := gateway.Reply(msg.Respond, err); errReply != nil {
				l.Warnf("failed to reply to push: %s", errReply.Error())
			}
			if err != nil {
				break Loop
			}
		case <-ctx.Done():
			break Loop
		case <-ticker.C:
			if !websocketPing(conn) {
				err = errors.New("connection timeout")
				break Loop
			}
		}
	}
	return err
}
