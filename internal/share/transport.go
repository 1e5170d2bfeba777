package share

import (
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"DotDrawer/internal/export"
	"DotDrawer/internal/state"
)

const (
	writeWait         = 5 * time.Second
	readHeaderTimeout = 10 * time.Second
)

type MessageType string

const MessageDrawing MessageType = "drawing"

// Message is what viewers receive on every change. Viewers should ignore
// messages whose revision is not newer than the last one they applied.
type Message struct {
	Type     MessageType            `json:"type"`
	Session  string                 `json:"session"`
	Revision uint64                 `json:"revision"`
	Strokes  [][]export.PointRecord `json:"strokes"`
}

func NewMessage(s state.Snapshot) Message {
	msg := Message{
		Type:     MessageDrawing,
		Session:  s.Session,
		Revision: s.Revision,
		Strokes:  make([][]export.PointRecord, 0, len(s.Drawing)),
	}
	for _, st := range s.Drawing {
		pts := make([]state.PointInfo, 0, len(st))
		for _, d := range st {
			pts = append(pts, state.PointInfo{Midpoint: d.Midpoint, ControlPoint: d.ControlPoint})
		}
		msg.Strokes = append(msg.Strokes, export.Records(pts))
	}
	return msg
}

// peer holds at most one pending message. Messages carry the whole drawing,
// so a newer one replaces whatever the writer has not picked up yet.
type peer struct {
	conn    *websocket.Conn
	pending chan []byte
	done    chan struct{}
	once    sync.Once
}

func newPeer(conn *websocket.Conn) *peer {
	return &peer{
		conn:    conn,
		pending: make(chan []byte, 1),
		done:    make(chan struct{}),
	}
}

// enqueue never blocks.
func (p *peer) enqueue(data []byte) {
	for {
		select {
		case p.pending <- data:
			return
		case <-p.done:
			return
		default:
		}
		select {
		case <-p.pending:
		default:
		}
	}
}

func (p *peer) write(data []byte) error {
	if err := p.conn.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
		return err
	}
	return p.conn.WriteMessage(websocket.TextMessage, data)
}

func (p *peer) close() {
	p.once.Do(func() {
		close(p.done)
		if p.conn != nil {
			p.conn.Close()
		}
	})
}

// Hub fans drawing snapshots out to websocket viewers. It is a
// state.Observer; subscribe it to the model to stream every change. Each
// viewer has its own writer goroutine and DrawingChanged never waits on one.
type Hub struct {
	upgrader websocket.Upgrader

	mu    sync.RWMutex
	peers map[*peer]bool
	last  []byte
}

func NewHub() *Hub {
	return &Hub{
		upgrader: websocket.Upgrader{
			// viewers on the LAN open the page from anywhere
			CheckOrigin: func(*http.Request) bool { return true },
		},
		peers: make(map[*peer]bool),
	}
}

// DrawingChanged implements state.Observer.
func (h *Hub) DrawingChanged(s state.Snapshot) {
	data, err := json.Marshal(NewMessage(s))
	if err != nil {
		log.Printf("[SHARE] Error encoding revision %d: %v", s.Revision, err)
		return
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	h.last = data
	for p := range h.peers {
		p.enqueue(data)
	}
}

// add registers p and queues the latest drawing for it.
func (h *Hub) add(p *peer) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.peers[p] = true
	if h.last != nil {
		p.enqueue(h.last)
	}
	log.Printf("[SHARE] Viewer connected: %s", p.conn.RemoteAddr())
}

func (h *Hub) remove(p *peer) {
	h.mu.Lock()
	_, ok := h.peers[p]
	delete(h.peers, p)
	h.mu.Unlock()
	p.close()
	if ok {
		log.Printf("[SHARE] Viewer removed: %s", p.conn.RemoteAddr())
	}
}

func (h *Hub) writeLoop(p *peer) {
	defer h.remove(p)
	for {
		select {
		case data := <-p.pending:
			if err := p.write(data); err != nil {
				log.Printf("[SHARE] Error sending to %s: %v", p.conn.RemoteAddr(), err)
				return
			}
		case <-p.done:
			return
		}
	}
}

// Viewers returns the number of connected viewers.
func (h *Hub) Viewers() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.peers)
}

// Latest returns the last broadcast message, or nil before the first change.
func (h *Hub) Latest() []byte {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.last
}

// ServeHTTP upgrades the request to a websocket, sends the latest drawing
// and keeps the viewer registered until it disconnects.
func (h *Hub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("[SHARE] Upgrade failed for %s: %v", r.RemoteAddr, err)
		return
	}
	p := newPeer(conn)
	h.add(p)
	go h.writeLoop(p)
	defer h.remove(p)

	// viewers are read-only; reading only detects the close
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			return
		}
	}
}

// Close disconnects every viewer.
func (h *Hub) Close() {
	h.mu.Lock()
	peers := h.peers
	h.peers = make(map[*peer]bool)
	h.mu.Unlock()
	for p := range peers {
		p.close()
	}
}

// Handler routes /ws to the hub and serves the latest message as JSON on /.
func Handler(h *Hub) http.Handler {
	mux := http.NewServeMux()
	mux.Handle("/ws", h)
	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		last := h.Latest()
		if last == nil {
			http.Error(w, "nothing drawn yet", http.StatusNotFound)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write(last)
	})
	return mux
}

// Serve starts an HTTP server for h on addr and returns it together with the
// address it listens on.
func Serve(addr string, h *Hub) (*http.Server, string, error) {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, "", fmt.Errorf("listening on %s: %w", addr, err)
	}
	srv := &http.Server{
		Handler:           Handler(h),
		ReadHeaderTimeout: readHeaderTimeout,
	}
	go func() {
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Printf("[SHARE] Server stopped: %v", err)
		}
	}()
	log.Printf("[SHARE] Listening on %s", ln.Addr())
	return srv, ln.Addr().String(), nil
}
