package web

import (
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/V2473/pokedex/internal/catalog"
	"github.com/V2473/pokedex/internal/favorites"
	"github.com/V2473/pokedex/internal/ops"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 4 * 1024
	sendBuffer     = 32
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
}

// Event is one websocket message.
type Event struct {
	Type      string        `json:"type"` // "catalog" or "favorites"
	Catalog   *CatalogEvent `json:"catalog,omitempty"`
	Favorites []int         `json:"favorites,omitempty"`
}

// CatalogEvent summarizes a catalog transition.
type CatalogEvent struct {
	Status  catalog.Status `json:"status"`
	Error   string         `json:"error,omitempty"`
	Count   int            `json:"count"`
	Limit   int            `json:"limit"`
	Offset  int            `json:"offset"`
	HasData bool           `json:"has_data"`
	IDs     []int          `json:"ids"`
}

func catalogEvent(snap catalog.Snapshot) Event {
	ev := &CatalogEvent{
		Status:  snap.Status,
		Error:   snap.Error,
		Count:   snap.Count,
		Limit:   snap.Window.Limit,
		Offset:  snap.Window.Offset,
		HasData: snap.HasData,
		IDs:     make([]int, 0, len(snap.Views)),
	}
	for _, v := range snap.Views {
		ev.IDs = append(ev.IDs, v.ID)
	}
	return Event{Type: "catalog", Catalog: ev}
}

// Hub fans session events out to websocket clients. A client that cannot
// keep up is dropped.
type Hub struct {
	clients    map[*client]bool
	register   chan *client
	unregister chan *client
	broadcast  chan []byte
	count      chan chan int
	stop       chan struct{}
	done       chan struct{} // closed when Run exits
	stopOnce   sync.Once
	logger     *zap.Logger
}

// NewHub creates a hub. Call Run to start it.
func NewHub(logger *zap.Logger) *Hub {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Hub{
		clients:    make(map[*client]bool),
		register:   make(chan *client),
		unregister: make(chan *client),
		broadcast:  make(chan []byte, sendBuffer),
		count:      make(chan chan int),
		stop:       make(chan struct{}),
		done:       make(chan struct{}),
		logger:     logger.Named("ws"),
	}
}

// Run serves registrations and broadcasts until Stop.
func (h *Hub) Run() {
	defer close(h.done)

	for {
		select {
		case <-h.stop:
			for c := range h.clients {
				close(c.send)
			}
			h.clients = make(map[*client]bool)
			return

		case c := <-h.register:
			h.clients[c] = true
			h.logger.Debug("client connected", zap.Int("clients", len(h.clients)))

		case c := <-h.unregister:
			if _, ok := h.clients[c]; ok {
				delete(h.clients, c)
				close(c.send)
				h.logger.Debug("client disconnected", zap.Int("clients", len(h.clients)))
			}

		case reply := <-h.count:
			reply <- len(h.clients)

		case msg := <-h.broadcast:
			for c := range h.clients {
				select {
				case c.send <- msg:
				default:
					delete(h.clients, c)
					close(c.send)
					h.logger.Warn("dropping slow client")
				}
			}
		}
	}
}

// Stop shuts the hub down and waits for Run to exit.
func (h *Hub) Stop() {
	h.stopOnce.Do(func() { close(h.stop) })
	<-h.done
}

// Clients returns the number of connected clients, 0 once stopped.
func (h *Hub) Clients() int {
	reply := make(chan int, 1)
	select {
	case h.count <- reply:
		return <-reply
	case <-h.done:
		return 0
	}
}

// Publish queues ev for every client. It never blocks on a stopped hub.
func (h *Hub) Publish(ev Event) {
	data, err := json.Marshal(ev)
	if err != nil {
		h.logger.Error("marshal event", zap.Error(err))
		return
	}
	select {
	case h.broadcast <- data:
	case <-h.done:
	}
}

// Watch publishes the session's catalog and favorites transitions. It
// returns the unsubscribe.
func (h *Hub) Watch(sess *ops.Session) func() {
	unsubCatalog := sess.Catalog.Subscribe(func(snap catalog.Snapshot) {
		h.Publish(catalogEvent(snap))
	})
	unsubFavs := sess.Favorites.Subscribe(func(set favorites.Set) {
		ids := set.IDs()
		if ids == nil {
			ids = []int{}
		}
		h.Publish(Event{Type: "favorites", Favorites: ids})
	})
	return func() {
		unsubCatalog()
		unsubFavs()
	}
}

// ServeWS upgrades the request and starts the client pumps.
func (h *Hub) ServeWS(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Warn("websocket upgrade failed", zap.Error(err))
		return
	}

	c := &client{hub: h, conn: conn, send: make(chan []byte, sendBuffer)}
	select {
	case h.register <- c:
	case <-h.done:
		conn.Close()
		return
	}

	go c.writePump()
	go c.readPump()
}

type client struct {
	hub  *Hub
	conn *websocket.Conn
	send chan []byte
}

// readPump discards client messages; it exists to process pongs and notice
// the connection closing.
func (c *client) readPump() {
	defer func() {
		select {
		case c.hub.unregister <- c:
		case <-c.hub.done:
		}
		c.conn.Close()
	}()

	c.conn.SetReadLimit(maxMessageSize)
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				c.hub.logger.Debug("websocket read failed", zap.Error(err))
			}
			return
		}
	}
}

func (c *client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case msg, ok := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, msg); err != nil {
				return
			}
		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
