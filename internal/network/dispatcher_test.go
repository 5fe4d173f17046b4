package network

import (
	"testing"

	"tactics-client/pkg/api"
)

func TestDispatcherFanOut(t *testing.T) {
	d := NewDispatcher()
	a := d.Subscribe("panel")
	b := d.Subscribe("shop")

	d.Publish(api.ClientEvent{Type: api.EventSelected, EntityID: "u1"})

	for name, ch := range map[string]chan api.ClientEvent{"panel": a, "shop": b} {
		select {
		case evt := <-ch:
			if evt.EntityID != "u1" {
				t.Errorf("%s got %+v", name, evt)
			}
		default:
			t.Errorf("%s received nothing", name)
		}
	}
}

func TestDispatcherResubscribeClosesOldChannel(t *testing.T) {
	d := NewDispatcher()
	old := d.Subscribe("panel")
	_ = d.Subscribe("panel")

	if _, open := <-old; open {
		t.Error("old channel left open after resubscribe")
	}
}

func TestDispatcherUnsubscribe(t *testing.T) {
	d := NewDispatcher()
	ch := d.Subscribe("panel")
	if !d.HasSubscribers() {
		t.Fatal("subscriber not registered")
	}

	d.Unsubscribe("panel")
	if d.HasSubscribers() {
		t.Error("subscriber survived Unsubscribe")
	}
	if _, open := <-ch; open {
		t.Error("channel left open after Unsubscribe")
	}
}

func TestDispatcherSlowSubscriberDropsEvents(t *testing.T) {
	d := NewDispatcher()
	ch := d.Subscribe("slow")

	// Переполняем личный канал: Publish не должен заблокироваться.
	for i := 0; i < cap(ch)+10; i++ {
		d.Publish(api.ClientEvent{Type: api.EventSelected, Tick: i})
	}

	if got := len(ch); got != cap(ch) {
		t.Errorf("buffered = %d, want full capacity %d", got, cap(ch))
	}
}
