package engine

import (
	"encoding/json"
	"testing"

	"tactics-client/internal/domain"
	"tactics-client/pkg/api"
)

const testOwner = "p1"

// sinkOp - одна записанная команда рендеру.
type sinkOp struct {
	kind     string // create, move, update, destroy, highlight
	handle   VisualHandle
	unit     domain.UnitSnapshot
	slot     domain.SlotAddress
	stars    int
	items    []string
	animated bool
	slots    int
}

// fakeSink записывает команды вместо рендеринга.
type fakeSink struct {
	next VisualHandle
	ops  []sinkOp
}

func (s *fakeSink) CreateVisual(unit domain.UnitSnapshot, slot domain.SlotAddress) VisualHandle {
	s.next++
	s.ops = append(s.ops, sinkOp{kind: "create", handle: s.next, unit: unit, slot: slot})
	return s.next
}

func (s *fakeSink) MoveVisual(h VisualHandle, slot domain.SlotAddress, animated bool) {
	s.ops = append(s.ops, sinkOp{kind: "move", handle: h, slot: slot, animated: animated})
}

func (s *fakeSink) UpdateVisual(h VisualHandle, stars int, items []string) {
	s.ops = append(s.ops, sinkOp{kind: "update", handle: h, stars: stars, items: items})
}

func (s *fakeSink) DestroyVisual(h VisualHandle) {
	s.ops = append(s.ops, sinkOp{kind: "destroy", handle: h})
}

func (s *fakeSink) HighlightSlots(slots []domain.SlotAddress) {
	s.ops = append(s.ops, sinkOp{kind: "highlight", slots: len(slots)})
}

func (s *fakeSink) opsOf(kind string) []sinkOp {
	var out []sinkOp
	for _, op := range s.ops {
		if op.kind == kind {
			out = append(out, op)
		}
	}
	return out
}

// mutations считает все команды, кроме подсветки (она не мутация).
func (s *fakeSink) mutations() int {
	n := 0
	for _, op := range s.ops {
		if op.kind != "highlight" {
			n++
		}
	}
	return n
}

func (s *fakeSink) reset() { s.ops = nil }

type fakeAuthority struct {
	sent []api.IntentEnvelope
}

func (a *fakeAuthority) SendIntent(env api.IntentEnvelope) {
	a.sent = append(a.sent, env)
}

func (a *fakeAuthority) actions() []string {
	var out []string
	for _, env := range a.sent {
		out = append(out, env.Action)
	}
	return out
}

type fakeBus struct {
	events []api.ClientEvent
}

func (b *fakeBus) Publish(evt api.ClientEvent) {
	b.events = append(b.events, evt)
}

func ownUnit(id, tpl string, stars int) domain.UnitSnapshot {
	return domain.UnitSnapshot{
		ID:         domain.EntityID(id),
		TemplateID: tpl,
		Stars:      stars,
		OwnerID:    testOwner,
	}
}

func enemyUnit(id, tpl string, stars int) domain.UnitSnapshot {
	u := ownUnit(id, tpl, stars)
	u.OwnerID = "p2"
	return u
}

func planningSnapshot(units map[domain.SlotAddress]domain.UnitSnapshot) domain.BoardSnapshot {
	if units == nil {
		units = map[domain.SlotAddress]domain.UnitSnapshot{}
	}
	return domain.BoardSnapshot{Phase: domain.PhasePlanning, Units: units}
}

func newTestEngine(t *testing.T) (*Engine, *fakeSink, *fakeAuthority, *fakeBus) {
	t.Helper()
	sink := &fakeSink{}
	auth := &fakeAuthority{}
	bus := &fakeBus{}
	e := New(NewConfig(), testOwner, "tok", sink, auth, bus)
	return e, sink, auth, bus
}

// feed подает снапшот и прокручивает один тик, чтобы ядро его приняло.
func feed(e *Engine, snap domain.BoardSnapshot) {
	e.SubmitSnapshot(snap)
	e.Tick(PointerSample{})
}

// dragBetween прогоняет полный жест от центра одного слота до центра другого.
func dragBetween(e *Engine, from, to domain.SlotAddress) {
	layout := e.cfg.Layout()
	x0, y0 := layout.SlotCenter(from)
	x1, y1 := layout.SlotCenter(to)
	e.PointerDown(x0, y0)
	e.Tick(PointerSample{X: x0, Y: y0, Down: true})
	e.PointerMove(x1, y1)
	e.Tick(PointerSample{X: x1, Y: y1, Down: true})
	e.PointerUp(x1, y1)
}

func decodePlace(t *testing.T, env api.IntentEnvelope) api.PlacePayload {
	t.Helper()
	var p api.PlacePayload
	if err := json.Unmarshal(env.Payload, &p); err != nil {
		t.Fatalf("bad place payload: %v", err)
	}
	return p
}

func decodeBench(t *testing.T, env api.IntentEnvelope) api.BenchPayload {
	t.Helper()
	var p api.BenchPayload
	if err := json.Unmarshal(env.Payload, &p); err != nil {
		t.Fatalf("bad bench payload: %v", err)
	}
	return p
}
