package handlers

import (
	"errors"
	"net/http"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rohits-web03/formstore/internal/formstore"
	"github.com/rohits-web03/formstore/internal/utils"
	"go.uber.org/zap"
)

const (
	watchBuffer = 16
	writeWait   = 10 * time.Second
	pongWait    = 60 * time.Second
	pingPeriod  = pongWait * 9 / 10
)

// ChangeMessage is pushed to watchers whenever the watched address changes.
type ChangeMessage struct {
	Action string `json:"action"`
	URI    string `json:"uri"`
	At     int64  `json:"at"`
}

type WatchHandler struct {
	store    *formstore.Store
	upgrader websocket.Upgrader
	buffer   int
	log      *zap.Logger
}

func NewWatchHandler(store *formstore.Store, buffer int, log *zap.Logger) *WatchHandler {
	if buffer < 1 {
		buffer = watchBuffer
	}
	return &WatchHandler{
		store: store,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			// Origins are enforced by the CORS layer for browsers; devices send none.
			CheckOrigin: func(r *http.Request) bool { return true },
		},
		buffer: buffer,
		log:    log,
	}
}

// GET /api/v1/watch
// Watch godoc
// @Summary Stream change signals for an address
// @Description Upgrades to a websocket and sends {"action":"changed"} whenever rows behind the address change. Clients re-query on each message.
// @Tags Forms
// @Security BearerAuth
// @Param uri query string true "Address to watch, e.g. /forms or /forms/3"
// @Failure 404 {object} utils.Payload
// @Router /api/v1/watch [get]
func (h *WatchHandler) Watch(w http.ResponseWriter, r *http.Request) {
	sub, err := h.store.Subscribe(r.URL.Query().Get("uri"), h.buffer)
	if err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, formstore.ErrUnrecognizedAddress) {
			status = http.StatusNotFound
		}
		utils.ErrorResponse(w, status, err.Error())
		return
	}
	defer sub.Unsubscribe()

	ws, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.log.Warn("websocket upgrade failed", zap.Error(err))
		return
	}
	defer ws.Close()

	log := h.log.With(zap.Stringer("subscription", sub.ID), zap.Stringer("route", sub.Route))
	log.Info("watcher connected")

	if err := h.send(ws, map[string]any{
		"action":       "subscribed",
		"subscription": sub.ID.String(),
		"uri":          sub.Route.URI(),
	}); err != nil {
		return
	}

	// The read side only exists to observe pongs and the peer closing.
	closed := make(chan struct{})
	go func() {
		defer close(closed)
		_ = ws.SetReadDeadline(time.Now().Add(pongWait))
		ws.SetPongHandler(func(string) error {
			return ws.SetReadDeadline(time.Now().Add(pongWait))
		})
		for {
			if _, _, err := ws.ReadMessage(); err != nil {
				return
			}
		}
	}()

	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()

	for {
		select {
		case change, ok := <-sub.C:
			if !ok {
				_ = ws.WriteControl(websocket.CloseMessage,
					websocket.FormatCloseMessage(websocket.CloseGoingAway, "store closed"),
					time.Now().Add(writeWait))
				return
			}
			msg := ChangeMessage{Action: "changed", URI: change.Route.URI(), At: change.At.UnixMilli()}
			if err := h.send(ws, msg); err != nil {
				return
			}
		case <-ticker.C:
			if err := ws.WriteControl(websocket.PingMessage, nil, time.Now().Add(writeWait)); err != nil {
				return
			}
		case <-closed:
			log.Info("watcher disconnected")
			return
		case <-r.Context().Done():
			return
		}
	}
}

func (h *WatchHandler) send(ws *websocket.Conn, v any) error {
	_ = ws.SetWriteDeadline(time.Now().Add(writeWait))
	if err := ws.WriteJSON(v); err != nil {
		h.log.Warn("failed to write websocket message", zap.Error(err))
		return err
	}
	return nil
}
