package realtime

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"github.com/tmusial/convoy/internal/models"
)

func TestHubPublish(t *testing.T) {
	hub := NewHub()

	t.Run("delivers to topic subscribers only", func(t *testing.T) {
		a := hub.Subscribe(GroupTopic("g1"))
		b := hub.Subscribe(GroupTopic("g2"))
		defer hub.Unsubscribe(a)
		defer hub.Unsubscribe(b)

		hub.Publish(GroupTopic("g1"), Event{Table: "groups", Type: EventUpdate, RowID: "g1"})

		select {
		case ev := <-a.Events():
			if ev.RowID != "g1" {
				t.Errorf("event = %+v", ev)
			}
		case <-time.After(time.Second):
			t.Fatal("subscriber never received the event")
		}
		select {
		case ev := <-b.Events():
			t.Errorf("wrong-topic subscriber received %+v", ev)
		default:
		}
	})

	t.Run("multi-topic subscriber", func(t *testing.T) {
		sub := hub.Subscribe(GroupTopic("g3"), MarkerTopic("g3"))
		defer hub.Unsubscribe(sub)

		hub.Publish(GroupTopic("g3"), Event{Table: "groups", Type: EventUpdate, RowID: "g3"})
		hub.Publish(MarkerTopic("g3"), Event{Table: "markers", Type: EventInsert, RowID: "m1"})

		for i := 0; i < 2; i++ {
			select {
			case <-sub.Events():
			case <-time.After(time.Second):
				t.Fatalf("missing event %d", i+1)
			}
		}
	})

	t.Run("slow subscriber dropped", func(t *testing.T) {
		sub := hub.Subscribe(GroupTopic("g4"))
		for i := 0; i < subscriberBuffer+1; i++ {
			hub.Publish(GroupTopic("g4"), Event{Table: "groups", Type: EventUpdate, RowID: "g4"})
		}

		// The overflowing publish closes the channel.
		drained := 0
		for range sub.Events() {
			drained++
		}
		if drained != subscriberBuffer {
			t.Errorf("drained %d events, want %d", drained, subscriberBuffer)
		}
	})

	t.Run("unsubscribe twice is safe", func(t *testing.T) {
		sub := hub.Subscribe(GroupTopic("g5"))
		hub.Unsubscribe(sub)
		hub.Unsubscribe(sub)
	})
}

func TestServeWS(t *testing.T) {
	hub := NewHub()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hub.ServeWS(w, r, GroupTopic("g1"))
	}))
	defer srv.Close()

	wsURL := "ws" + strings.TrimPrefix(srv.URL, "http")
	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	if err != nil {
		t.Fatalf("failed to dial: %v", err)
	}
	defer conn.Close()

	// The handler subscribes after the upgrade, so keep publishing until
	// the event comes through.
	stop := make(chan struct{})
	defer close(stop)
	go func() {
		for {
			select {
			case <-stop:
				return
			default:
				hub.Publish(GroupTopic("g1"), Event{Table: "groups", Type: EventUpdate, RowID: "g1"})
				time.Sleep(10 * time.Millisecond)
			}
		}
	}()
	conn.SetReadDeadline(time.Now().Add(2 * time.Second))

	var ev Event
	if err := conn.ReadJSON(&ev); err != nil {
		t.Fatalf("failed to read event: %v", err)
	}
	if ev.Table != "groups" || ev.Type != EventUpdate || ev.RowID != "g1" {
		t.Errorf("event = %+v", ev)
	}
}

func TestMarkerSet(t *testing.T) {
	m1 := &models.Marker{ID: "m1", Title: "First"}
	m2 := &models.Marker{ID: "m2", Title: "Second"}
	set := NewMarkerSet([]*models.Marker{m1, m2})

	t.Run("insert appends", func(t *testing.T) {
		set.Apply(Event{Table: "markers", Type: EventInsert, RowID: "m3",
			Row: &models.Marker{ID: "m3", Title: "Third"}})
		snap := set.Snapshot()
		if len(snap) != 3 || snap[2].ID != "m3" {
			t.Errorf("snapshot = %+v", snap)
		}
	})

	t.Run("update replaces in place", func(t *testing.T) {
		set.Apply(Event{Table: "markers", Type: EventUpdate, RowID: "m1",
			Row: &models.Marker{ID: "m1", Title: "First, renamed"}})
		if got := set.Get("m1"); got == nil || got.Title != "First, renamed" {
			t.Errorf("marker = %+v", got)
		}
		if snap := set.Snapshot(); snap[0].ID != "m1" {
			t.Errorf("update changed ordering: %+v", snap)
		}
	})

	t.Run("update for unseen marker inserts", func(t *testing.T) {
		set.Apply(Event{Table: "markers", Type: EventUpdate, RowID: "m4",
			Row: &models.Marker{ID: "m4", Title: "Fourth"}})
		if set.Get("m4") == nil {
			t.Error("unseen update target should be inserted")
		}
	})

	t.Run("delete removes", func(t *testing.T) {
		set.Apply(Event{Table: "markers", Type: EventDelete, RowID: "m2"})
		if set.Get("m2") != nil {
			t.Error("deleted marker still present")
		}
		for _, m := range set.Snapshot() {
			if m.ID == "m2" {
				t.Error("deleted marker still in snapshot")
			}
		}
	})

	t.Run("delete of unknown id is a no-op", func(t *testing.T) {
		before := len(set.Snapshot())
		set.Apply(Event{Table: "markers", Type: EventDelete, RowID: "nope"})
		if len(set.Snapshot()) != before {
			t.Error("unexpected change")
		}
	})

	t.Run("other tables ignored", func(t *testing.T) {
		before := len(set.Snapshot())
		set.Apply(Event{Table: "groups", Type: EventInsert, RowID: "g1"})
		if len(set.Snapshot()) != before {
			t.Error("group event mutated marker set")
		}
	})
}
