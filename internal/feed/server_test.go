package feed

import (
	"encoding/json"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"github.com/san-kum/propel/internal/traject"
)

func TestEventHistoryEndpoint(t *testing.T) {
	srv := NewServer(":0")
	ts := httptest.NewServer(srv.Handler())
	defer ts.Close()
	defer srv.Stop()

	srv.PublishEvent(EventUpdate{Time: 1.5, Detector: "periapsis", Increasing: true, Action: "CONTINUE"})

	// The broadcast loop consumes the channel asynchronously.
	deadline := time.Now().Add(2 * time.Second)
	for len(srv.History()) == 0 {
		if time.Now().After(deadline) {
			t.Fatal("event never reached history")
		}
		time.Sleep(10 * time.Millisecond)
	}

	resp, err := ts.Client().Get(ts.URL + "/api/events")
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()

	var evs []EventUpdate
	if err := json.NewDecoder(resp.Body).Decode(&evs); err != nil {
		t.Fatal(err)
	}
	if len(evs) != 1 || evs[0].Detector != "periapsis" {
		t.Errorf("history = %+v, want the published event", evs)
	}
}

func TestWebSocketReceivesEvents(t *testing.T) {
	srv := NewServer(":0")
	ts := httptest.NewServer(srv.Handler())
	defer ts.Close()
	defer srv.Stop()

	url := "ws" + strings.TrimPrefix(ts.URL, "http") + "/ws"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatal(err)
	}
	defer conn.Close()

	// Registration races the dial handshake; keep publishing until the
	// client sees a message.
	done := make(chan struct{})
	go func() {
		for {
			select {
			case <-done:
				return
			default:
				srv.PublishEvent(EventUpdate{Time: 2.5, Detector: "altitude", Action: "STOP"})
				time.Sleep(20 * time.Millisecond)
			}
		}
	}()
	defer close(done)

	conn.SetReadDeadline(time.Now().Add(3 * time.Second))
	_, data, err := conn.ReadMessage()
	if err != nil {
		t.Fatal(err)
	}

	var msg struct {
		Type string      `json:"type"`
		Data EventUpdate `json:"data"`
	}
	if err := json.Unmarshal(data, &msg); err != nil {
		t.Fatal(err)
	}
	if msg.Type != "event" || msg.Data.Detector != "altitude" {
		t.Errorf("message = %+v, want the published event", msg)
	}
}

func TestStepPublishingNeverBlocks(t *testing.T) {
	srv := NewServer(":0")
	// No broadcast loop running: the queue fills and publishes drop.
	for i := 0; i < 1000; i++ {
		srv.OnStep(traject.Snapshot{T: float64(i), X: traject.State{1, 2}})
	}
}
