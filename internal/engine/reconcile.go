package engine

import (
	"github.com/sirupsen/logrus"

	"tactics-client/internal/domain"
	"tactics-client/pkg/logger"
)

// Reconciler сводит визуальное состояние к авторитетному снапшоту.
//
// Запускается ровно один раз на каждый принятый снапшот и считает
// минимальный дифф против реестра визуалов, не трогая ничего, что
// подавлено реестром подавления: подавленные юниты и слоты остаются
// ровно в том виде, в который их поставила спекулятивная мутация.
type Reconciler struct {
	registry  *Registry
	ledger    *SuppressionLedger
	purchases *purchaseTracker
	sink      VisualSink

	log *logrus.Entry
}

func NewReconciler(
	registry *Registry,
	ledger *SuppressionLedger,
	purchases *purchaseTracker,
	sink VisualSink,
) *Reconciler {
	return &Reconciler{
		registry:  registry,
		ledger:    ledger,
		purchases: purchases,
		sink:      sink,
		log:       logger.Component("reconcile"),
	}
}

// Apply выполняет один проход сверки.
func (r *Reconciler) Apply(snap domain.BoardSnapshot) {
	live := make(map[domain.EntityID]struct{}, len(snap.Units))
	created, updated := 0, 0

	// Шаги 1-3: живые юниты снапшота.
	for slot, unit := range snap.Units {
		live[unit.ID] = struct{}{}

		// Подавленное не трогаем вообще: ни позицию, ни звезды.
		if r.ledger.IsEntitySuppressed(unit.ID) || r.ledger.IsSlotSuppressed(slot) {
			continue
		}

		rec, known := r.registry.Get(unit.ID)
		if known {
			// Обновления - только при реальном расхождении, чтобы не
			// дергать рендер и не прерывать идущие анимации.
			if rec.Slot != slot {
				r.registry.MoveTo(unit.ID, slot)
				r.sink.MoveVisual(rec.Handle, slot, true)
				updated++
			}
			if !rec.Unit.SameVisual(unit) {
				r.sink.UpdateVisual(rec.Handle, unit.Stars, unit.Items)
				updated++
			}
			r.registry.SetUnit(unit.ID, unit)
			continue
		}

		r.createOrAdopt(unit, slot)
		created++
	}

	// Шаг 4: зарегистрированные юниты, пропавшие из снапшота.
	// Цели незавершенных слияний переживают пропажу: их визуал уже
	// изображает результат слияния, сервер просто еще не догнал.
	var gone []domain.EntityID
	r.registry.Each(func(id domain.EntityID, rec VisualRecord) {
		if _, alive := live[id]; alive {
			return
		}
		if r.ledger.IsMergeTarget(id) || r.ledger.IsEntitySuppressed(id) {
			return
		}
		gone = append(gone, id)
	})
	for _, id := range gone {
		rec, ok := r.registry.Remove(id)
		if ok {
			r.sink.DestroyVisual(rec.Handle)
		}
	}

	r.log.WithFields(logrus.Fields{
		"tick":      snap.Tick,
		"phase":     snap.Phase.String(),
		"live":      len(live),
		"created":   created,
		"updated":   updated,
		"destroyed": len(gone),
	}).Debug("snapshot reconciled")
}

// createOrAdopt создает визуал для ранее неизвестного юнита.
//
// Два случая, когда создавать ничего не нужно, а нужно передать уже
// существующий визуал новому идентификатору:
//   - незавершенная покупка в этом слоте скамейки (сервер прислал
//     настоящий ID для спекулятивно размещенного юнита);
//   - подтвержденное слияние под другим EntityID: в слоте стоит цель
//     слияния, которой в снапшоте больше нет.
func (r *Reconciler) createOrAdopt(unit domain.UnitSnapshot, slot domain.SlotAddress) {
	if slot.IsBench() {
		if h, ok := r.purchases.Adopt(slot.Index, unit.TemplateID); ok {
			if err := r.registry.Insert(unit, slot, h); err != nil {
				r.log.WithError(err).WithField("entity", unit.ID).Warn("purchase adoption failed")
				return
			}
			// Спекулятивный визуал создавался как 1*; сервер мог сразу
			// прислать результат слияния.
			if unit.Stars != 1 || len(unit.Items) != 0 {
				r.sink.UpdateVisual(h, unit.Stars, unit.Items)
			}
			r.log.WithFields(logrus.Fields{
				"entity": unit.ID,
				"slot":   slot.String(),
			}).Debug("purchase adopted")
			return
		}
	}

	if prevID, ok := r.registry.EntityAt(slot); ok && r.ledger.IsMergeTarget(prevID) {
		prev, _ := r.registry.Remove(prevID)
		if err := r.registry.Insert(unit, slot, prev.Handle); err != nil {
			r.log.WithError(err).WithField("entity", unit.ID).Warn("merge rekey failed")
			return
		}
		if !prev.Unit.SameVisual(unit) {
			r.sink.UpdateVisual(prev.Handle, unit.Stars, unit.Items)
		}
		r.log.WithFields(logrus.Fields{
			"old": prevID,
			"new": unit.ID,
		}).Debug("merge confirmed under new id")
		return
	}

	h := r.sink.CreateVisual(unit, slot)
	if err := r.registry.Insert(unit, slot, h); err != nil {
		// Инвариант "один визуал на юнита" нарушен быть не может:
		// мы в ветке неизвестного ID. Но если это все же случилось,
		// чужой визуал не плодим.
		r.sink.DestroyVisual(h)
		r.log.WithError(err).WithField("entity", unit.ID).Error("visual registration failed")
	}
}
