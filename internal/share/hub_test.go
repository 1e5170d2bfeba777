package share

import (
	"encoding/json"
	"net"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"DotDrawer/internal/state"
)

var testGrid = state.Grid{DotSize: 20, Spacing: 0, Width: 200, Height: 200}

func dial(t *testing.T, srv *httptest.Server) *websocket.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	return conn
}

func readMessage(t *testing.T, conn *websocket.Conn) Message {
	t.Helper()
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	var msg Message
	require.NoError(t, conn.ReadJSON(&msg))
	return msg
}

func TestHubStreamsModelChanges(t *testing.T) {
	hub := NewHub()
	srv := httptest.NewServer(Handler(hub))
	defer srv.Close()
	defer hub.Close()

	m := state.NewPathModel(testGrid, 0)
	cancel := m.Subscribe(hub)
	defer cancel()

	m.CommitSample(state.Cell{Col: 0, Row: 0})

	conn := dial(t, srv)
	first := readMessage(t, conn)
	assert.Equal(t, MessageDrawing, first.Type)
	assert.Equal(t, uint64(1), first.Revision)
	require.Len(t, first.Strokes, 1)
	assert.Equal(t, 10.0, first.Strokes[0][0].P.X)

	m.CommitSample(state.Cell{Col: 2, Row: 0})
	second := readMessage(t, conn)
	assert.Equal(t, uint64(2), second.Revision)
	assert.Equal(t, first.Session, second.Session)
	require.Len(t, second.Strokes[0], 2)
	assert.InDelta(t, 30.0, second.Strokes[0][1].C.X, 1e-9)
	assert.InDelta(t, 10.0, second.Strokes[0][1].C.Y, 1e-9)

	// a straight segment saves its exact midpoint
	data, err := json.Marshal(second.Strokes[0][1].C)
	require.NoError(t, err)
	assert.JSONEq(t, `{"x":30,"y":10}`, string(data))

	m.StartNewStroke()
	m.CommitSample(state.Cell{Col: 2, Row: 2})
	// the writer may fold revision 3 into 4
	third := readMessage(t, conn)
	if third.Revision == 3 {
		third = readMessage(t, conn)
	}
	assert.Equal(t, uint64(4), third.Revision)
	assert.Len(t, third.Strokes, 2)
}

func TestHubDropsClosedViewers(t *testing.T) {
	hub := NewHub()
	srv := httptest.NewServer(Handler(hub))
	defer srv.Close()

	m := state.NewPathModel(testGrid, 0)
	m.Subscribe(hub)
	m.CommitSample(state.Cell{Col: 0, Row: 0})

	conn := dial(t, srv)
	readMessage(t, conn)
	assert.Equal(t, 1, hub.Viewers())

	conn.Close()
	assert.Eventually(t, func() bool { return hub.Viewers() == 0 }, 2*time.Second, 10*time.Millisecond)
}

func TestHandlerServesLatest(t *testing.T) {
	hub := NewHub()
	srv := httptest.NewServer(Handler(hub))
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	m := state.NewPathModel(testGrid, 0)
	m.Subscribe(hub)
	m.CommitSample(state.Cell{Col: 0, Row: 0})

	resp, err = http.Get(srv.URL + "/")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, "application/json", resp.Header.Get("Content-Type"))
	var msg Message
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&msg))
	assert.Equal(t, uint64(1), msg.Revision)
}

func TestNewMessageEmptyDrawing(t *testing.T) {
	data, err := json.Marshal(NewMessage(state.Snapshot{Session: "s"}))
	require.NoError(t, err)
	assert.JSONEq(t, `{"type":"drawing","session":"s","revision":0,"strokes":[]}`, string(data))
}

func TestPeerKeepsOnlyLatestPending(t *testing.T) {
	p := newPeer(nil)
	p.enqueue([]byte("1"))
	p.enqueue([]byte("2"))
	p.enqueue([]byte("3"))
	assert.Equal(t, "3", string(<-p.pending))
	assert.Empty(t, p.pending)

	p.close()
	p.enqueue([]byte("4"))
	p.close()
}

func TestDrawingChangedDoesNotWaitForViewers(t *testing.T) {
	hub := NewHub()
	stuck := newPeer(nil)
	hub.peers[stuck] = true

	m := state.NewPathModel(testGrid, 0)
	m.Subscribe(hub)
	done := make(chan struct{})
	go func() {
		defer close(done)
		for i := 0; i < 5; i++ {
			m.CommitSample(state.Cell{Col: i, Row: 0})
		}
	}()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("model blocked on a viewer that never reads")
	}

	var msg Message
	require.NoError(t, json.Unmarshal(<-stuck.pending, &msg))
	assert.Equal(t, uint64(5), msg.Revision)
}

func TestWriteReportsClosedConnection(t *testing.T) {
	hub := NewHub()
	srv := httptest.NewServer(Handler(hub))
	defer srv.Close()

	hub.DrawingChanged(state.Snapshot{Session: "s", Revision: 1})
	conn := dial(t, srv)
	readMessage(t, conn)

	hub.mu.RLock()
	var p *peer
	for q := range hub.peers {
		p = q
	}
	hub.mu.RUnlock()
	require.NotNil(t, p)

	p.close()
	assert.Error(t, p.write([]byte("{}")))
	assert.Eventually(t, func() bool { return hub.Viewers() == 0 }, 2*time.Second, 10*time.Millisecond)
}

func TestServe(t *testing.T) {
	hub := NewHub()
	srv, addr, err := Serve("127.0.0.1:0", hub)
	require.NoError(t, err)
	defer srv.Close()
	assert.Equal(t, readHeaderTimeout, srv.ReadHeaderTimeout)

	hub.DrawingChanged(state.Snapshot{Session: "s", Revision: 7})
	resp, err := http.Get("http://" + addr + "/")
	require.NoError(t, err)
	defer resp.Body.Close()
	var msg Message
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&msg))
	assert.Equal(t, uint64(7), msg.Revision)
}

func TestLink(t *testing.T) {
	assert.Equal(t, "ws://192.168.1.4:8888/ws", Link(net.IPv4(192, 168, 1, 4), 8888))
}

func ipNet(s string) *net.IPNet {
	ip, n, err := net.ParseCIDR(s)
	if err != nil {
		panic(err)
	}
	n.IP = ip
	return n
}

func TestPickIPv4(t *testing.T) {
	up := net.FlagUp | net.FlagBroadcast
	f := func(want string, ifaces ...iface) {
		t.Helper()
		assert.Equal(t, want, pickIPv4(ifaces).String())
	}

	f("127.0.0.1")
	f("192.168.1.4",
		iface{flags: up | net.FlagLoopback, addrs: []net.Addr{ipNet("127.0.0.1/8")}},
		iface{flags: net.FlagBroadcast, addrs: []net.Addr{ipNet("10.0.0.9/8")}},
		iface{flags: up, addrs: []net.Addr{ipNet("fe80::1/64"), ipNet("169.254.3.3/16"), ipNet("192.168.1.4/24")}},
		iface{flags: up, addrs: []net.Addr{ipNet("192.168.1.5/24")}},
	)
	f("127.0.0.1",
		iface{flags: up, addrs: []net.Addr{ipNet("fe80::1/64")}},
		iface{flags: 0, addrs: []net.Addr{ipNet("10.0.0.9/8")}},
	)
	assert.Len(t, pickIPv4(nil), net.IPv4len)
}

func TestNewService(t *testing.T) {
	svc, err := NewService("board", 8888, []net.IP{net.IPv4(192, 168, 1, 4)})
	require.NoError(t, err)
	assert.Equal(t, serviceType, svc.Service)
	assert.Equal(t, 8888, svc.Port)
	assert.Equal(t, "board", svc.Instance)
}

