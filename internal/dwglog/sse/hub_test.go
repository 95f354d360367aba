package sse

import (
	"encoding/json"
	"testing"

	"go.uber.org/zap"
)

func TestHubBroadcast(t *testing.T) {
	hub := NewHub(zap.NewNop())
	a := &Client{ID: "a", Events: make(chan Event, 4)}
	b := &Client{ID: "b", Events: make(chan Event, 4)}
	hub.Register(a)
	hub.Register(b)

	hub.Broadcast(Event{EventType: "log_update", Data: "x"})

	for _, c := range []*Client{a, b} {
		select {
		case ev := <-c.Events:
			if ev.EventType != "log_update" || ev.Data != "x" {
				t.Errorf("client %s got %+v", c.ID, ev)
			}
		default:
			t.Errorf("client %s received nothing", c.ID)
		}
	}
}

func TestHubSkipsFullClient(t *testing.T) {
	hub := NewHub(zap.NewNop())
	slow := &Client{ID: "slow", Events: make(chan Event)} // unbuffered, never read
	ok := &Client{ID: "ok", Events: make(chan Event, 1)}
	hub.Register(slow)
	hub.Register(ok)

	// Must not block on the slow client.
	hub.Broadcast(Event{EventType: "log_update", Data: "x"})

	select {
	case <-ok.Events:
	default:
		t.Error("healthy client missed the event")
	}
}

func TestHubUnregister(t *testing.T) {
	hub := NewHub(zap.NewNop())
	c := &Client{ID: "a", Events: make(chan Event, 1)}
	hub.Register(c)
	hub.Unregister("a")

	if _, open := <-c.Events; open {
		t.Error("channel not closed on unregister")
	}
	// A second unregister of the same ID is a no-op.
	hub.Unregister("a")

	hub.Broadcast(Event{EventType: "log_update", Data: "x"})
}

func TestNotifierLocalBroadcast(t *testing.T) {
	hub := NewHub(zap.NewNop())
	c := &Client{ID: "a", Events: make(chan Event, 1)}
	hub.Register(c)

	n := NewNotifier(hub, nil, "", zap.NewNop())
	n.PublishLogUpdate("insert", "2021856")

	select {
	case ev := <-c.Events:
		var upd UpdateEvent
		if err := json.Unmarshal([]byte(ev.Data), &upd); err != nil {
			t.Fatalf("bad payload %q: %v", ev.Data, err)
		}
		if upd.Action != "insert" || upd.Dwg != "2021856" {
			t.Errorf("event = %+v", upd)
		}
	default:
		t.Fatal("no event broadcast")
	}
}
