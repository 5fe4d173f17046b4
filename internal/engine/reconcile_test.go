package engine

import (
	"testing"

	"tactics-client/internal/domain"
)

func newTestReconciler() (*Reconciler, *Registry, *SuppressionLedger, *purchaseTracker, *fakeSink) {
	registry := NewRegistry()
	ledger := NewSuppressionLedger()
	purchases := newPurchaseTracker()
	sink := &fakeSink{}
	return NewReconciler(registry, ledger, purchases, sink), registry, ledger, purchases, sink
}

func TestReconcileCreatesUnknownUnits(t *testing.T) {
	r, registry, _, _, sink := newTestReconciler()

	r.Apply(planningSnapshot(map[domain.SlotAddress]domain.UnitSnapshot{
		domain.BenchSlot(0):    ownUnit("u1", "knight", 1),
		domain.BoardSlot(2, 1): enemyUnit("e1", "mage", 2),
	}))

	if got := len(sink.opsOf("create")); got != 2 {
		t.Fatalf("creates = %d, want 2", got)
	}
	if registry.Len() != 2 {
		t.Errorf("registry size = %d, want 2", registry.Len())
	}
	rec, ok := registry.Get("e1")
	if !ok || rec.Slot != domain.BoardSlot(2, 1) {
		t.Errorf("e1 record = %+v (ok=%v)", rec, ok)
	}
}

func TestReconcileIdenticalSnapshotIsNoop(t *testing.T) {
	r, _, _, _, sink := newTestReconciler()
	snap := planningSnapshot(map[domain.SlotAddress]domain.UnitSnapshot{
		domain.BenchSlot(0): ownUnit("u1", "knight", 1),
	})

	r.Apply(snap)
	sink.reset()
	r.Apply(snap)

	if sink.mutations() != 0 {
		t.Errorf("identical snapshot produced %d sink commands: %+v", sink.mutations(), sink.ops)
	}
}

func TestReconcileMovesAndUpdates(t *testing.T) {
	r, registry, _, _, sink := newTestReconciler()
	r.Apply(planningSnapshot(map[domain.SlotAddress]domain.UnitSnapshot{
		domain.BenchSlot(0): ownUnit("u1", "knight", 1),
	}))
	sink.reset()

	moved := ownUnit("u1", "knight", 2)
	r.Apply(planningSnapshot(map[domain.SlotAddress]domain.UnitSnapshot{
		domain.BoardSlot(1, 1): moved,
	}))

	moves := sink.opsOf("move")
	if len(moves) != 1 || moves[0].slot != domain.BoardSlot(1, 1) || !moves[0].animated {
		t.Errorf("moves = %+v, want one animated move to board(1,1)", moves)
	}
	updates := sink.opsOf("update")
	if len(updates) != 1 || updates[0].stars != 2 {
		t.Errorf("updates = %+v, want one update to 2 stars", updates)
	}
	rec, _ := registry.Get("u1")
	if rec.Slot != domain.BoardSlot(1, 1) || rec.Unit.Stars != 2 {
		t.Errorf("record = %+v, want board(1,1) at 2 stars", rec)
	}
}

func TestReconcileDestroysGoneUnits(t *testing.T) {
	r, registry, _, _, sink := newTestReconciler()
	r.Apply(planningSnapshot(map[domain.SlotAddress]domain.UnitSnapshot{
		domain.BenchSlot(0): ownUnit("u1", "knight", 1),
	}))
	sink.reset()

	r.Apply(planningSnapshot(nil))

	if got := len(sink.opsOf("destroy")); got != 1 {
		t.Errorf("destroys = %d, want 1", got)
	}
	if registry.Len() != 0 {
		t.Errorf("registry size = %d, want 0", registry.Len())
	}
}

func TestReconcileSkipsSuppressedEntity(t *testing.T) {
	r, registry, ledger, _, sink := newTestReconciler()
	r.Apply(planningSnapshot(map[domain.SlotAddress]domain.UnitSnapshot{
		domain.BenchSlot(0): ownUnit("u1", "knight", 1),
	}))

	// Спекулятивный перенос: визуал уже на доске, сервер еще не в курсе.
	registry.MoveTo("u1", domain.BoardSlot(2, 1))
	ledger.SuppressEntity("u1")
	ledger.SuppressSlot(domain.BenchSlot(0))
	sink.reset()

	r.Apply(planningSnapshot(map[domain.SlotAddress]domain.UnitSnapshot{
		domain.BenchSlot(0): ownUnit("u1", "knight", 1),
	}))

	if sink.mutations() != 0 {
		t.Errorf("suppressed unit was touched: %+v", sink.ops)
	}
	rec, _ := registry.Get("u1")
	if rec.Slot != domain.BoardSlot(2, 1) {
		t.Errorf("slot = %v, want speculative board(2,1)", rec.Slot)
	}
}

func TestReconcileSuppressedSlotBlocksCreation(t *testing.T) {
	r, registry, ledger, _, sink := newTestReconciler()
	ledger.SuppressSlot(domain.BenchSlot(3))

	r.Apply(planningSnapshot(map[domain.SlotAddress]domain.UnitSnapshot{
		domain.BenchSlot(3): ownUnit("u1", "knight", 1),
	}))

	if sink.mutations() != 0 || registry.Len() != 0 {
		t.Errorf("suppressed slot produced mutations: %+v", sink.ops)
	}
}

func TestReconcileMergeTargetSurvivesAbsence(t *testing.T) {
	r, registry, ledger, _, sink := newTestReconciler()
	r.Apply(planningSnapshot(map[domain.SlotAddress]domain.UnitSnapshot{
		domain.BenchSlot(0): ownUnit("u1", "knight", 2),
	}))
	ledger.MarkMergeTarget("u1")
	sink.reset()

	// Сервер прислал снапшот без цели слияния - визуал должен выжить.
	r.Apply(planningSnapshot(nil))

	if got := len(sink.opsOf("destroy")); got != 0 {
		t.Errorf("merge target destroyed (%d destroys)", got)
	}
	if _, ok := registry.Get("u1"); !ok {
		t.Error("merge target evicted from registry")
	}
}

func TestReconcileMergeConfirmedUnderNewID(t *testing.T) {
	r, registry, ledger, _, sink := newTestReconciler()
	r.Apply(planningSnapshot(map[domain.SlotAddress]domain.UnitSnapshot{
		domain.BenchSlot(0): ownUnit("old", "knight", 2),
	}))
	ledger.MarkMergeTarget("old")
	oldRec, _ := registry.Get("old")
	sink.reset()

	// Сервер подтвердил слияние новым EntityID в том же слоте.
	r.Apply(planningSnapshot(map[domain.SlotAddress]domain.UnitSnapshot{
		domain.BenchSlot(0): ownUnit("new", "knight", 2),
	}))

	if got := len(sink.opsOf("create")); got != 0 {
		t.Errorf("creates = %d, visual must be re-keyed, not recreated", got)
	}
	if got := len(sink.opsOf("destroy")); got != 0 {
		t.Errorf("destroys = %d, want 0", got)
	}
	if _, ok := registry.Get("old"); ok {
		t.Error("old id still registered")
	}
	rec, ok := registry.Get("new")
	if !ok || rec.Handle != oldRec.Handle {
		t.Errorf("new record = %+v (ok=%v), want inherited handle %d", rec, ok, oldRec.Handle)
	}
}

func TestReconcileAdoptsPendingPurchase(t *testing.T) {
	r, registry, _, purchases, sink := newTestReconciler()

	// Спекулятивная покупка: визуал есть, серверного ID нет.
	h := sink.CreateVisual(domain.UnitSnapshot{TemplateID: "knight", Stars: 1, OwnerID: testOwner}, domain.BenchSlot(0))
	purchases.Add(0, "knight", h, 0)
	sink.reset()

	r.Apply(planningSnapshot(map[domain.SlotAddress]domain.UnitSnapshot{
		domain.BenchSlot(0): ownUnit("srv1", "knight", 1),
	}))

	if got := len(sink.opsOf("create")); got != 0 {
		t.Errorf("creates = %d, adopted purchase must reuse its visual", got)
	}
	rec, ok := registry.Get("srv1")
	if !ok || rec.Handle != h {
		t.Errorf("record = %+v (ok=%v), want adopted handle %d", rec, ok, h)
	}
	if purchases.Len() != 0 {
		t.Errorf("pending purchases = %d, want 0", purchases.Len())
	}
}

func TestReconcileAdoptionRequiresMatchingTemplate(t *testing.T) {
	r, _, _, purchases, sink := newTestReconciler()
	h := sink.CreateVisual(domain.UnitSnapshot{TemplateID: "knight", Stars: 1, OwnerID: testOwner}, domain.BenchSlot(0))
	purchases.Add(0, "knight", h, 0)
	sink.reset()

	// Сервер распорядился слотом иначе: там другой шаблон.
	r.Apply(planningSnapshot(map[domain.SlotAddress]domain.UnitSnapshot{
		domain.BenchSlot(0): ownUnit("srv1", "mage", 1),
	}))

	if got := len(sink.opsOf("create")); got != 1 {
		t.Errorf("creates = %d, mismatched template needs its own visual", got)
	}
	if !purchases.Has(0) {
		t.Error("pending purchase discarded on template mismatch")
	}
}
