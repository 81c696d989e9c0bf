// Package stream publishes simulation frames to websocket clients and feeds
// their speed and resize requests back into the simulation.
package stream

import (
	"encoding/json"
	"log"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/plus3/orrery/sim"
	"golang.org/x/time/rate"
)

const (
	writeWait      = 5 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = pongWait * 9 / 10
	maxMessageSize = 4096

	defaultMaxFPS = 30
	defaultBuffer = 8
)

// Enqueuer accepts commands for the simulation thread. *sim.World
// implements it.
type Enqueuer interface {
	Enqueue(cmd sim.Command) bool
}

// Observer is told about client churn and frames dropped for slow clients.
type Observer interface {
	ClientsChanged(n int)
	FrameDropped()
}

type Options struct {
	Commands Enqueuer
	// MaxFPS caps frames per second sent to each client.
	MaxFPS   float64
	Buffer   int
	Observer Observer
}

// Hub is a sim.Sink that fans frames out to websocket clients. Update
// methods are called on the simulation thread and never block on I/O.
type Hub struct {
	commands Enqueuer
	limit    rate.Limit
	buffer   int
	observer Observer
	upgrader websocket.Upgrader

	mu        sync.Mutex
	clients   map[*client]struct{}
	camera    sim.CameraFrame
	starfield sim.StarfieldFrame
}

type client struct {
	conn    *websocket.Conn
	send    chan []byte
	limiter *rate.Limiter
}

func NewHub(opts Options) *Hub {
	if opts.MaxFPS <= 0 {
		opts.MaxFPS = defaultMaxFPS
	}
	if opts.Buffer <= 0 {
		opts.Buffer = defaultBuffer
	}
	return &Hub{
		commands: opts.Commands,
		limit:    rate.Limit(opts.MaxFPS),
		buffer:   opts.Buffer,
		observer: opts.Observer,
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool {
				return true
			},
		},
		clients: make(map[*client]struct{}),
	}
}

func (h *Hub) UpdateCamera(camera sim.CameraFrame) {
	h.mu.Lock()
	h.camera = camera
	h.mu.Unlock()
}

func (h *Hub) UpdateStarfield(stars sim.StarfieldFrame) {
	h.mu.Lock()
	h.starfield = stars
	h.mu.Unlock()
}

// UpdateBodies closes the frame and sends it to every client whose rate
// allows it. A client with a full queue misses the frame.
func (h *Hub) UpdateBodies(bodies []sim.BodyFrame) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if len(h.clients) == 0 {
		return
	}

	data, err := json.Marshal(frameMessage{
		Type:      "frame",
		Frame:     h.starfield.Frame,
		Elapsed:   h.starfield.Elapsed,
		Camera:    h.camera,
		Starfield: h.starfield,
		Bodies:    bodies,
	})
	if err != nil {
		log.Printf("stream: encode frame: %v", err)
		return
	}

	for c := range h.clients {
		if !c.limiter.Allow() {
			continue
		}
		select {
		case c.send <- data:
		default:
			if h.observer != nil {
				h.observer.FrameDropped()
			}
		}
	}
}

// Clients returns the number of connected clients.
func (h *Hub) Clients() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.clients)
}

// ServeHTTP upgrades the request and serves the client until it leaves.
func (h *Hub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("stream: upgrade %s: %v", r.RemoteAddr, err)
		return
	}

	c := &client{
		conn:    conn,
		send:    make(chan []byte, h.buffer),
		limiter: rate.NewLimiter(h.limit, 1),
	}

	hello, err := h.hello()
	if err != nil {
		log.Printf("stream: encode hello: %v", err)
		conn.Close()
		return
	}
	c.send <- hello

	h.register(c)
	go h.writePump(c)
	h.readPump(c)
}

func (h *Hub) hello() ([]byte, error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	return json.Marshal(helloMessage{
		Type:   "hello",
		Camera: h.camera,
		Stars:  h.starfield.Stars,
	})
}

func (h *Hub) register(c *client) {
	h.mu.Lock()
	h.clients[c] = struct{}{}
	n := len(h.clients)
	h.mu.Unlock()

	if h.observer != nil {
		h.observer.ClientsChanged(n)
	}
}

func (h *Hub) unregister(c *client) {
	h.mu.Lock()
	if _, ok := h.clients[c]; !ok {
		h.mu.Unlock()
		return
	}
	delete(h.clients, c)
	close(c.send)
	n := len(h.clients)
	h.mu.Unlock()

	if h.observer != nil {
		h.observer.ClientsChanged(n)
	}
}

func (h *Hub) readPump(c *client) {
	defer func() {
		h.unregister(c)
		c.conn.Close()
	}()

	c.conn.SetReadLimit(maxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		_, data, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				log.Printf("stream: read: %v", err)
			}
			return
		}

		cmd, ok := decodeCommand(data)
		if !ok {
			continue
		}
		if commands := h.target(); commands != nil {
			commands.Enqueue(cmd)
		}
	}
}

// Attach routes client commands to commands. A hub is usually built before
// the world it feeds, so this is set after NewWorld returns.
func (h *Hub) Attach(commands Enqueuer) {
	h.mu.Lock()
	h.commands = commands
	h.mu.Unlock()
}

func (h *Hub) target() Enqueuer {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.commands
}

func (h *Hub) writePump(c *client) {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case msg, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, msg); err != nil {
				return
			}
		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// Close disconnects every client.
func (h *Hub) Close() {
	h.mu.Lock()
	clients := make([]*client, 0, len(h.clients))
	for c := range h.clients {
		clients = append(clients, c)
	}
	h.mu.Unlock()

	for _, c := range clients {
		c.conn.Close()
	}
}
