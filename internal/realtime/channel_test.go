package realtime

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/TheRealCocky/Leilao-client/internal/auction"
	"github.com/TheRealCocky/Leilao-client/internal/notify"
)

// testServer is a minimal websocket endpoint that records client frames and
// lets tests push event frames back.
type testServer struct {
	*httptest.Server
	conns  chan *websocket.Conn
	frames chan []byte
}

func newTestServer(t *testing.T) *testServer {
	ts := &testServer{
		conns:  make(chan *websocket.Conn, 4),
		frames: make(chan []byte, 16),
	}
	upgrader := websocket.Upgrader{}
	ts.Server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		ts.conns <- conn
		go func() {
			for {
				_, frame, err := conn.ReadMessage()
				if err != nil {
					return
				}
				ts.frames <- frame
			}
		}()
	}))
	t.Cleanup(ts.Close)
	return ts
}

func (ts *testServer) wsURL() string {
	return "ws" + strings.TrimPrefix(ts.URL, "http")
}

func (ts *testServer) conn(t *testing.T) *websocket.Conn {
	t.Helper()
	select {
	case conn := <-ts.conns:
		return conn
	case <-time.After(time.Second):
		t.Fatal("client never connected")
		return nil
	}
}

func (ts *testServer) frame(t *testing.T) []byte {
	t.Helper()
	select {
	case frame := <-ts.frames:
		return frame
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for client frame")
		return nil
	}
}

func (ts *testServer) expectNoFrame(t *testing.T) {
	t.Helper()
	select {
	case frame := <-ts.frames:
		t.Fatalf("unexpected client frame: %s", frame)
	case <-time.After(150 * time.Millisecond):
	}
}

func testConfig(url string) Config {
	config := DefaultConfig(url)
	config.MaxReconnects = 0
	return config
}

func newTestChannel(t *testing.T, ts *testServer) *Channel {
	t.Helper()
	c := NewChannel(testConfig(ts.wsURL()), zerolog.Nop())
	t.Cleanup(func() { c.Close() })
	return c
}

func TestChannel_JoinIsIdempotent(t *testing.T) {
	ts := newTestServer(t)
	c := newTestChannel(t, ts)

	require.NoError(t, c.Join("user-1"))
	require.NoError(t, c.Join("user-1"))

	assert.JSONEq(t, `{"event":"join","data":"user-1"}`, string(ts.frame(t)))
	ts.expectNoFrame(t)
}

func TestChannel_JoinDistinctRooms(t *testing.T) {
	ts := newTestServer(t)
	c := newTestChannel(t, ts)

	require.NoError(t, c.Join("user-1"))
	require.NoError(t, c.Join("user-2"))

	got := []string{string(ts.frame(t)), string(ts.frame(t))}
	assert.JSONEq(t, `{"event":"join","data":"user-1"}`, got[0])
	assert.JSONEq(t, `{"event":"join","data":"user-2"}`, got[1])
}

func TestChannel_DispatchesEventsInArrivalOrder(t *testing.T) {
	ts := newTestServer(t)
	c := newTestChannel(t, ts)

	received := make(chan string, 8)
	c.Subscribe(Handler{
		AuctionUpdated: func(patch auction.Patch) {
			received <- "update:" + patch.ID
		},
		NewBid: func(auctionID string, bid auction.Bid) {
			received <- fmt.Sprintf("bid:%s:%.0f", auctionID, bid.Amount)
		},
		Notification: func(n notify.Notification) {
			received <- "notif:" + n.Message
		},
	})
	require.NoError(t, c.Connect())

	conn := ts.conn(t)
	frames := []string{
		`{"event":"auctionUpdated","data":{"id":"a1","currentPrice":130}}`,
		`{"event":"newBid","data":{"auctionId":"a1","bid":{"id":"b1","amount":600}}}`,
		`{"event":"notification","data":{"id":"n1","message":"you were outbid"}}`,
	}
	for _, frame := range frames {
		require.NoError(t, conn.WriteMessage(websocket.TextMessage, []byte(frame)))
	}

	want := []string{"update:a1", "bid:a1:600", "notif:you were outbid"}
	for _, expected := range want {
		select {
		case got := <-received:
			assert.Equal(t, expected, got)
		case <-time.After(time.Second):
			t.Fatalf("timed out waiting for %q", expected)
		}
	}
}

func TestChannel_UnknownEventsDropped(t *testing.T) {
	ts := newTestServer(t)
	c := newTestChannel(t, ts)

	received := make(chan string, 8)
	c.Subscribe(Handler{
		Notification: func(n notify.Notification) { received <- n.Message },
	})
	require.NoError(t, c.Connect())

	conn := ts.conn(t)
	require.NoError(t, conn.WriteMessage(websocket.TextMessage, []byte(`{"event":"somethingElse","data":{}}`)))
	require.NoError(t, conn.WriteMessage(websocket.TextMessage, []byte(`{"event":"notification","data":{"id":"n1","message":"hello"}}`)))

	select {
	case got := <-received:
		assert.Equal(t, "hello", got, "unknown event must not break the dispatch loop")
	case <-time.After(time.Second):
		t.Fatal("known event after an unknown one was not delivered")
	}
}

func TestChannel_UnsubscribeStopsDelivery(t *testing.T) {
	ts := newTestServer(t)
	c := newTestChannel(t, ts)

	removed := make(chan string, 8)
	kept := make(chan string, 8)
	unsubscribe := c.Subscribe(Handler{
		Notification: func(n notify.Notification) { removed <- n.Message },
	})
	c.Subscribe(Handler{
		Notification: func(n notify.Notification) { kept <- n.Message },
	})
	require.NoError(t, c.Connect())

	unsubscribe()

	conn := ts.conn(t)
	require.NoError(t, conn.WriteMessage(websocket.TextMessage, []byte(`{"event":"notification","data":{"id":"n1","message":"ping"}}`)))

	select {
	case got := <-kept:
		assert.Equal(t, "ping", got)
	case <-time.After(time.Second):
		t.Fatal("remaining subscriber did not receive the event")
	}
	select {
	case got := <-removed:
		t.Fatalf("unsubscribed handler still received %q", got)
	case <-time.After(150 * time.Millisecond):
	}
}

func TestChannel_OperationsAfterCloseFail(t *testing.T) {
	ts := newTestServer(t)
	c := NewChannel(testConfig(ts.wsURL()), zerolog.Nop())

	require.NoError(t, c.Connect())
	require.NoError(t, c.Close())
	require.NoError(t, c.Close(), "close is idempotent")

	assert.ErrorIs(t, c.Connect(), ErrChannelClosed)
	assert.ErrorIs(t, c.Join("user-1"), ErrChannelClosed)
}

func TestParseEventPayload(t *testing.T) {
	t.Run("unknown event returns nil payload", func(t *testing.T) {
		payload, err := ParseEventPayload(&Envelope{Event: "mystery", Data: []byte(`{}`)})
		require.NoError(t, err)
		assert.Nil(t, payload)
	})

	t.Run("malformed payload returns error", func(t *testing.T) {
		_, err := ParseEventPayload(&Envelope{Event: EventNewBid, Data: []byte(`"nope"`)})
		assert.Error(t, err)
	})
}
