// Package notify pushes job events to the websocket connections of the users
// they concern.
package notify

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"slices"
	"time"

	"hirehub/models"
	"hirehub/utils"

	"github.com/gorilla/websocket"
	"github.com/julienschmidt/httprouter"
)

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = (pongWait * 9) / 10
	sendBuffer = 32
)

type Client struct {
	Conn   *websocket.Conn
	Send   chan []byte
	UserID string
}

type broadcastMsg struct {
	Room string
	Data []byte
}

// Hub keeps one room per user id. Only Run touches rooms.
type Hub struct {
	rooms      map[string]map[*Client]bool
	register   chan *Client
	unregister chan *Client
	broadcast  chan broadcastMsg
	done       chan struct{}
}

func NewHub() *Hub {
	return &Hub{
		rooms:      make(map[string]map[*Client]bool),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		broadcast:  make(chan broadcastMsg, 64),
		done:       make(chan struct{}),
	}
}

func (h *Hub) remove(c *Client) {
	conns := h.rooms[c.UserID]
	if !conns[c] {
		return
	}
	delete(conns, c)
	close(c.Send)
	if len(conns) == 0 {
		delete(h.rooms, c.UserID)
	}
}

// Run serves register, unregister and broadcast until ctx is done.
func (h *Hub) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			close(h.done)
			for _, conns := range h.rooms {
				for c := range conns {
					h.remove(c)
				}
			}
			return

		case c := <-h.register:
			if h.rooms[c.UserID] == nil {
				h.rooms[c.UserID] = make(map[*Client]bool)
			}
			h.rooms[c.UserID][c] = true

		case c := <-h.unregister:
			h.remove(c)

		case m := <-h.broadcast:
			for c := range h.rooms[m.Room] {
				select {
				case c.Send <- m.Data:
				default:
					// slow consumer
					h.remove(c)
				}
			}
		}
	}
}

// Dispatch queues evt for its recipient. Events without one are dropped.
func (h *Hub) Dispatch(evt models.Event) {
	if evt.RecipientID == "" {
		return
	}
	data, err := json.Marshal(evt)
	if err != nil {
		log.Printf("marshal notification: %v", err)
		return
	}
	select {
	case h.broadcast <- broadcastMsg{Room: evt.RecipientID, Data: data}:
	default:
		log.Printf("notification queue full, dropping %s for %s", evt.Type, evt.RecipientID)
	}
}

// Emit lets the hub stand in for the redis emitter when redis is disabled.
func (h *Hub) Emit(_ context.Context, evt models.Event) {
	h.Dispatch(evt)
}

// Handler upgrades GET /api/notifications/ws for the authenticated user.
// Browsers must come from one of origins.
func (h *Hub) Handler(origins []string) httprouter.Handle {
	upgrader := websocket.Upgrader{
		CheckOrigin: func(r *http.Request) bool {
			origin := r.Header.Get("Origin")
			return origin == "" || slices.Contains(origins, origin)
		},
	}
	return func(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
		user := utils.GetUserFromRequest(r)
		if user == nil {
			utils.RespondWithError(w, models.NewUnauthorizedError("Not authorized, please log in"))
			return
		}
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			log.Println("upgrade:", err)
			return
		}
		client := &Client{
			Conn:   conn,
			Send:   make(chan []byte, sendBuffer),
			UserID: user.ID.Hex(),
		}
		select {
		case h.register <- client:
		case <-h.done:
			conn.Close()
			return
		}
		go writePump(client)
		go readPump(client, h)
	}
}

func writePump(c *Client) {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.Conn.Close()
	}()
	for {
		select {
		case msg, ok := <-c.Send:
			c.Conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				c.Conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.Conn.WriteMessage(websocket.TextMessage, msg); err != nil {
				return
			}
		case <-ticker.C:
			c.Conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.Conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// readPump only keeps the connection alive; clients never send commands.
func readPump(c *Client, h *Hub) {
	defer func() {
		select {
		case h.unregister <- c:
		case <-h.done:
		}
		c.Conn.Close()
	}()
	c.Conn.SetReadLimit(512)
	c.Conn.SetReadDeadline(time.Now().Add(pongWait))
	c.Conn.SetPongHandler(func(string) error {
		return c.Conn.SetReadDeadline(time.Now().Add(pongWait))
	})
	for {
		if _, _, err := c.Conn.ReadMessage(); err != nil {
			return
		}
	}
}
