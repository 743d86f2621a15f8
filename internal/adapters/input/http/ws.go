package http

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/gorilla/websocket"

	"github.com/mrverrall/philips-heater-coap/internal/domain/service"
)

const wsWriteWait = 10 * time.Second

var upgrader = websocket.Upgrader{} // use default options

// Hub streams state updates to websocket clients. Each client gets the
// current state on connect and every subsequent change.
type Hub struct {
	log    *slog.Logger
	heater *service.HeaterService
}

func NewHub(log *slog.Logger, heater *service.HeaterService) *Hub {
	return &Hub{log: log, heater: heater}
}

func (h *Hub) Serve(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.log.Warn("websocket upgrade failed", "err", err)
		return
	}
	defer conn.Close()

	// coalesce bursts: one pending notification is enough
	updates := make(chan struct{}, 1)
	remove := h.heater.AddListener(func() {
		select {
		case updates <- struct{}{}:
		default:
		}
	})
	defer remove()

	// reader goroutine notices the peer going away
	closed := make(chan struct{})
	go func() {
		defer close(closed)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	if err := h.writeState(conn); err != nil {
		return
	}

	for {
		select {
		case <-closed:
			return
		case <-r.Context().Done():
			return
		case <-updates:
			if err := h.writeState(conn); err != nil {
				return
			}
		}
	}
}

func (h *Hub) writeState(conn *websocket.Conn) error {
	if err := conn.SetWriteDeadline(time.Now().Add(wsWriteWait)); err != nil {
		return err
	}
	return conn.WriteJSON(h.heater.State())
}
