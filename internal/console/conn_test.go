// ABOUTME: Tests for the database proxy connection and the browser bridge
// ABOUTME: Runs real websocket servers over httptest on both sides of the bridge

package console

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testUpgrader = websocket.Upgrader{}

func wsURL(srv *httptest.Server) string {
	return "ws" + strings.TrimPrefix(srv.URL, "http")
}

// fakeProxy answers every query with canned frames:
//
//	select -> two rows
//	update -> a status message
//	bad    -> invalid JSON
//	binary -> a binary frame
//	close  -> normal closure
//	hangup -> close frame without a status code
//
// Anything else is echoed back as {"data": query}.
type fakeProxy struct {
	srv     *httptest.Server
	auth    chan string
	closing chan int
}

func newFakeProxy(t *testing.T) *fakeProxy {
	t.Helper()
	p := &fakeProxy{
		auth:    make(chan string, 1),
		closing: make(chan int, 1),
	}
	p.srv = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		p.auth <- r.Header.Get("Authorization")
		ws, err := testUpgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		defer ws.Close()

		for {
			_, msg, err := ws.ReadMessage()
			if err != nil {
				code := -1
				if ce, ok := err.(*websocket.CloseError); ok {
					code = ce.Code
				}
				p.closing <- code
				return
			}

			switch string(msg) {
			case "select":
				_ = ws.WriteMessage(websocket.TextMessage, []byte(`[{"id":1,"name":"a"},{"id":2,"name":"b"}]`))
			case "update":
				_ = ws.WriteMessage(websocket.TextMessage, []byte(`{"data":"2 rows affected"}`))
			case "bad":
				_ = ws.WriteMessage(websocket.TextMessage, []byte(`not json`))
			case "binary":
				_ = ws.WriteMessage(websocket.BinaryMessage, []byte{0x01})
			case "close":
				_ = ws.WriteControl(websocket.CloseMessage,
					websocket.FormatCloseMessage(websocket.CloseNormalClosure, "bye"), time.Now().Add(time.Second))
				return
			case "hangup":
				_ = ws.WriteControl(websocket.CloseMessage, []byte{}, time.Now().Add(time.Second))
				return
			default:
				reply := fmt.Sprintf(`{"data":%q}`, string(msg))
				_ = ws.WriteMessage(websocket.TextMessage, []byte(reply))
			}
		}
	}))
	t.Cleanup(p.srv.Close)
	return p
}

func TestDial_ForwardsBearerToken(t *testing.T) {
	proxy := newFakeProxy(t)

	conn, err := Dial(context.Background(), wsURL(proxy.srv), "tok-1", "c1")
	require.NoError(t, err)
	defer conn.Close()

	assert.Equal(t, "Bearer tok-1", <-proxy.auth)
	assert.Equal(t, "c1", conn.ID())
}

func TestDial_WithoutToken(t *testing.T) {
	proxy := newFakeProxy(t)

	conn, err := Dial(context.Background(), wsURL(proxy.srv), "", "c1")
	require.NoError(t, err)
	defer conn.Close()

	assert.Empty(t, <-proxy.auth)
}

func TestDial_RejectedHandshake(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "forbidden", http.StatusForbidden)
	}))
	defer srv.Close()

	_, err := Dial(context.Background(), wsURL(srv), "tok", "c1")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "403")
}

func TestConn_SendReceive(t *testing.T) {
	proxy := newFakeProxy(t)
	conn, err := Dial(context.Background(), wsURL(proxy.srv), "", "c1")
	require.NoError(t, err)
	defer conn.Close()

	require.NoError(t, conn.Send("select"))
	res, err := conn.Receive()
	require.NoError(t, err)
	rows, ok := res.(Rows)
	require.True(t, ok)
	assert.Equal(t, []string{"id", "name"}, rows.Columns)
	assert.Len(t, rows.Records, 2)

	require.NoError(t, conn.Send("update"))
	res, err = conn.Receive()
	require.NoError(t, err)
	assert.Equal(t, Status{Message: "2 rows affected"}, res)

	require.NoError(t, conn.Send("bad"))
	_, err = conn.Receive()
	assert.ErrorIs(t, err, ErrMalformedFrame)
}

func TestConn_SendIsVerbatim(t *testing.T) {
	proxy := newFakeProxy(t)
	conn, err := Dial(context.Background(), wsURL(proxy.srv), "", "c1")
	require.NoError(t, err)
	defer conn.Close()

	query := `SELECT "x" FROM t WHERE a = 'b'; -- <tag>`
	require.NoError(t, conn.Send(query))
	res, err := conn.Receive()
	require.NoError(t, err)
	assert.Equal(t, Status{Message: query}, res)
}

func TestConn_CloseIsIdempotent(t *testing.T) {
	proxy := newFakeProxy(t)
	conn, err := Dial(context.Background(), wsURL(proxy.srv), "", "c1")
	require.NoError(t, err)

	first := conn.Close()
	assert.Equal(t, first, conn.Close())
	assert.Equal(t, websocket.CloseNormalClosure, <-proxy.closing)
}
