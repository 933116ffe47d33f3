package http

import (
	"net/http"
	"time"

	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"
	"skolapp-quizsync/internal/remote"
)

// StateSource is the observable side of the remote loader.
type StateSource interface {
	State() remote.State
	Subscribe() (<-chan remote.State, func())
}

// StateHandler exposes loader state as a JSON snapshot and as a websocket stream.
type StateHandler struct {
	source   StateSource
	log      logrus.FieldLogger
	upgrader websocket.Upgrader
}

func NewStateHandler(source StateSource, log logrus.FieldLogger) *StateHandler {
	return &StateHandler{
		source: source,
		log:    log,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(r *http.Request) bool { return true },
		},
	}
}

type outboundMessage struct {
	Type    string       `json:"type"`
	Payload remote.State `json:"payload"`
}

// ServeState writes the current state.
func (h *StateHandler) ServeState(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.source.State())
}

// ServeWS upgrades the request and pushes a "state" message on every change
// until the client disconnects. Inbound messages are ignored.
func (h *StateHandler) ServeWS(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.log.WithError(err).Warn("ws upgrade failed")
		return
	}
	defer conn.Close()

	updates, cancel := h.source.Subscribe()
	defer cancel()

	readerDone := make(chan struct{})
	go func() {
		defer close(readerDone)
		for {
			if _, _, err := conn.NextReader(); err != nil {
				return
			}
		}
	}()

	for {
		select {
		case state, ok := <-updates:
			if !ok {
				return
			}
			_ = conn.SetWriteDeadline(time.Now().Add(10 * time.Second))
			if err := conn.WriteJSON(outboundMessage{Type: "state", Payload: state}); err != nil {
				h.log.WithError(err).Debug("ws write failed")
				return
			}
		case <-readerDone:
			return
		}
	}
}
