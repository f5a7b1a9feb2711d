// Guessbox word game
//
// One player (the "Thinker") picks a secret word; everyone else takes turns
// asking yes/no questions until somebody guesses the word or the question
// budget runs out.
//
// Features:
// - Single WebSocket endpoint at /ws; operations carry the room code
// - Rooms are created with a human-chosen code, first to claim it wins
// - The creator becomes the Thinker; later joiners are Guessers
// - Turn order is frozen at round start from the join order of guessers
// - Asking does not pass the turn; the Thinker's answer does
// - Guesses are open to everyone at any time, matched case-insensitively
// - A room dies with its Thinker; other departures only update the roster
// - Optional idle-room reaper via --session-timeout (off by default)
// - In-browser QR button to share a room, backed by go-qrcode

package main

import (
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/julienschmidt/httprouter"
	"github.com/skip2/go-qrcode"
)

type client struct {
	conn   *websocket.Conn
	send   chan any
	handle string
}

type command struct {
	client *client
	msg    clientMessage
}

// engine owns the room registry and every connected client. All game state
// is mutated from its single run goroutine, fed by channels, so operations
// against any room are fully serialized and never interleave.
type engine struct {
	cfg *Config
	reg *registry
	mon *monitor

	clients map[string]*client

	register chan *client
	unreg    chan *client
	commands chan command
}

func newEngine(cfg *Config) *engine {
	return &engine{
		cfg:      cfg,
		reg:      newRegistry(cfg.maxQuestions),
		mon:      newMonitor(),
		clients:  make(map[string]*client),
		register: make(chan *client),
		unreg:    make(chan *client),
		commands: make(chan command),
	}
}

func (e *engine) run() {
	// A nil channel never fires, so the reap case is inert unless an idle
	// timeout was configured.
	var reap <-chan time.Time
	if e.cfg.sessionTimeout > 0 {
		ticker := time.NewTicker(e.cfg.sessionTimeout / 2)
		reap = ticker.C
	}

	for {
		select {
		case c := <-e.register:
			e.clients[c.handle] = c
			e.mon.openConnections.Inc()

		case c := <-e.unreg:
			if cur, ok := e.clients[c.handle]; ok && cur == c {
				delete(e.clients, c.handle)
				close(c.send)
				e.mon.openConnections.Dec()
			}
			e.deliverAll(e.reg.handleDisconnect(c.handle))
			e.mon.activeRooms.Set(float64(e.reg.count()))

		case cmd := <-e.commands:
			e.dispatch(cmd)

		case <-reap:
			cutoff := time.Now().Add(-e.cfg.sessionTimeout)
			e.deliverAll(e.reg.reapIdle(cutoff))
			e.mon.activeRooms.Set(float64(e.reg.count()))
		}
	}
}

// dispatch routes one decoded client message to the matching room
// operation. Unknown message types are dropped without feedback.
func (e *engine) dispatch(cmd command) {
	handle := cmd.client.handle
	msg := cmd.msg

	var events []outbound

	switch msg.Type {
	case "create":
		events = e.reg.handleCreate(handle, msg.Code, msg.Name)
		logf(e.cfg, "GAMES: Player %q asked to create room %q", msg.Name, msg.Code)
	case "join":
		events = e.reg.handleJoin(handle, msg.Code, msg.Name)
		logf(e.cfg, "GAMES: Player %q asked to join room %q", msg.Name, msg.Code)
	case "start":
		events = e.reg.handleStart(handle, msg.Code, msg.Secret)
	case "ask":
		events = e.reg.handleAsk(handle, msg.Code, msg.Text)
	case "answer":
		events = e.reg.handleAnswer(handle, msg.Code, msg.ID, msg.Answer)
	case "guess":
		events = e.reg.handleGuess(handle, msg.Code, msg.Text)
	default:
		return
	}

	e.mon.commands.WithLabelValues(msg.Type).Inc()
	e.mon.activeRooms.Set(float64(e.reg.count()))
	e.deliverAll(events)
}

func (e *engine) deliverAll(events []outbound) {
	for _, ev := range events {
		e.deliver(ev)
	}
}

// deliver is fire-and-forget: a client whose send buffer is full is
// dropped rather than ever blocking the engine.
func (e *engine) deliver(ev outbound) {
	for _, handle := range ev.to {
		c, ok := e.clients[handle]
		if !ok {
			continue
		}

		select {
		case c.send <- ev.msg:
		default:
			delete(e.clients, handle)
			close(c.send)
			e.mon.openConnections.Dec()
		}
	}
}

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// serveWS upgrades the connection and binds it to the engine under a fresh
// opaque handle. The handle is the player's only identity.
func serveWS(cfg *Config, e *engine) httprouter.Handle {
	return func(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			logf(cfg, "GAMES: upgrade error from %s: %v", realIP(r), err)

			return
		}

		c := &client{
			conn:   conn,
			send:   make(chan any, 8),
			handle: uuid.New().String(),
		}

		e.register <- c

		go c.writePump()
		c.readPump(e)
	}
}

func (c *client) readPump(e *engine) {
	defer func() {
		e.unreg <- c
		_ = c.conn.Close()
	}()

	for {
		var msg clientMessage
		if err := c.conn.ReadJSON(&msg); err != nil {
			return
		}

		e.commands <- command{
			client: c,
			msg:    msg,
		}
	}
}

func (c *client) writePump() {
	defer c.conn.Close()

	for msg := range c.send {
		if err := c.conn.WriteJSON(msg); err != nil {
			return
		}
	}
}

// qrHandler generates a PNG QR code pointing at the client page with the
// room code prefilled.
func qrHandler(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	code := ps.ByName("code")
	if code == "" {
		http.Error(w, "missing room code", http.StatusBadRequest)
		return
	}

	// Derive scheme (respecting TLS and X-Forwarded-Proto if present).
	scheme := "http"
	if r.TLS != nil {
		scheme = "https"
	}
	if proto := r.Header.Get("X-Forwarded-Proto"); proto != "" {
		scheme = proto
	}

	// We are at /.../qr/:code; strip the suffix to get back to the client page.
	path := strings.TrimSuffix(r.URL.Path, "/qr/"+code)

	url := scheme + "://" + r.Host + path + "/?room=" + code

	const qrSize = 320 // mobile-friendly size
	png, err := qrcode.Encode(url, qrcode.Medium, qrSize)
	if err != nil {
		http.Error(w, "qr generation failed", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "image/png")
	_, _ = w.Write(png)
}

// registerGuessWord wires up the game:
//   - /            → HTML client
//   - /ws          → WebSocket shared by all rooms
//   - /qr/:code    → PNG QR code for joining a room
func registerGuessWord(cfg *Config, mux *httprouter.Router) *engine {
	e := newEngine(cfg)
	go e.run()

	mux.GET(cfg.prefix+"/ws", serveWS(cfg, e))
	mux.GET(cfg.prefix+"/qr/:code", qrHandler)

	if cfg.metrics {
		mux.Handler("GET", cfg.prefix+"/metrics", e.mon.handler())
	}

	return e
}
