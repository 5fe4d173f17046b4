package engine

import (
	"errors"

	"github.com/sirupsen/logrus"

	"tactics-client/internal/domain"
	"tactics-client/internal/systems"
	"tactics-client/pkg/api"
	"tactics-client/pkg/logger"
)

var ErrBenchFull = errors.New("bench is full")

// Authority - исходящий канал намерений. Отправка "выстрелил и забыл":
// ядро не ждет подтверждений, корректность держится на ограниченном
// времени жизни записей подавления.
type Authority interface {
	SendIntent(env api.IntentEnvelope)
}

// EventBus - локальная шина событий ядра для слоев UI.
type EventBus interface {
	Publish(evt api.ClientEvent)
}

// Engine - ядро оптимистичной синхронизации доски.
//
// Один логический поток управления: синхронный Tick двигает опрос
// жестов и применение спекулятивных мутаций. Сетевые снапшоты приходят
// асинхронно, но буферизуются и применяются только в одной точке тика -
// сверка всегда видит целый, самосогласованный снимок.
type Engine struct {
	cfg    Config
	layout systems.BoardLayout

	ledger    *SuppressionLedger
	registry  *Registry
	purchases *purchaseTracker
	drag      *DragController
	recon     *Reconciler

	sink      VisualSink
	authority Authority
	bus       EventBus

	snapshots chan domain.BoardSnapshot

	ownerID string
	token   string

	tick  int
	cycle int // счетчик принятых снапшотов
	phase domain.GamePhase

	log *logrus.Entry
}

// New собирает ядро. Все зависимости передаются явно:
// никаких синглтонов и глобального состояния.
func New(cfg Config, ownerID, token string, sink VisualSink, authority Authority, bus EventBus) *Engine {
	ledger := NewSuppressionLedger()
	registry := NewRegistry()
	purchases := newPurchaseTracker()

	e := &Engine{
		cfg:       cfg,
		layout:    cfg.Layout(),
		ledger:    ledger,
		registry:  registry,
		purchases: purchases,
		sink:      sink,
		authority: authority,
		bus:       bus,
		snapshots: make(chan domain.BoardSnapshot, cfg.SnapshotBuffer),
		ownerID:   ownerID,
		token:     token,
		phase:     domain.PhaseUnknown,
		log:       logger.Component("engine"),
	}
	e.drag = NewDragController(cfg, ownerID, token, ledger, registry, sink, authority, bus)
	e.recon = NewReconciler(registry, ledger, purchases, sink)
	return e
}

// SubmitSnapshot кладет снапшот в буфер. Вызывается с сетевой горутины.
// При переполнении вытесняется самый старый: каждый снапшот полон,
// поэтому пропуск промежуточных безопасен - важен только последний.
func (e *Engine) SubmitSnapshot(snap domain.BoardSnapshot) {
	for {
		select {
		case e.snapshots <- snap:
			return
		default:
			select {
			case <-e.snapshots:
			default:
			}
		}
	}
}

// Tick - один шаг тиковой горутины.
// Порядок фиксирован: сначала снапшот (если есть), потом защитный опрос
// указателя. Сетевые сообщения никогда не применяются посреди сверки.
func (e *Engine) Tick(ptr PointerSample) {
	e.tick++

	select {
	case snap := <-e.snapshots:
		e.ingest(snap)
	default:
	}

	e.drag.Poll(e.tick, ptr, e.phase)
}

// PointerDown / PointerMove / PointerUp пробрасывают сырые события
// указателя в контроллер жестов. Вызываются хостом на тиковой горутине.
func (e *Engine) PointerDown(x, y float64) { e.drag.PointerDown(e.tick, x, y, e.phase) }
func (e *Engine) PointerMove(x, y float64) { e.drag.PointerMove(e.tick, x, y, e.phase) }
func (e *Engine) PointerUp(x, y float64)   { e.drag.PointerUp(e.tick, x, y, e.phase) }

// ingest применяет один авторитетный снапшот.
func (e *Engine) ingest(snap domain.BoardSnapshot) {
	e.cycle++

	// Смена игровой фазы force-отменяет живую сессию ДО сверки,
	// чтобы сверка видела визуалы на законных местах.
	if snap.Phase != e.phase {
		e.drag.Cancel("phase transition")
		e.log.WithFields(logrus.Fields{
			"from": e.phase.String(),
			"to":   snap.Phase.String(),
		}).Info("game phase changed")
		e.phase = snap.Phase
	}

	e.recon.Apply(snap)
	e.purchases.Sweep(e.cycle, e.sink)

	// Подавление живет не дольше одного цикла после коммита:
	// снапшот обработан - реестр сбрасывается безусловно.
	e.ledger.Clear()
}

// Buy выполняет покупку юнита с предсказанием слияний.
//
// Если предсказатель нашел пару, новый визуал НЕ создается: существующий
// повышается в звездах, помечается целью слияния и подавляется. Иначе
// кандидат спекулятивно встает в первый свободный слот скамейки.
// Авторитетная модель не мутируется ни в одном из случаев.
func (e *Engine) Buy(templateID string) error {
	pred := systems.PredictMerge(
		templateID, 1, e.ownerID, e.registry.Occupancy(), e.phase, e.cfg.MaxStars,
	)

	if pred.Merged() {
		for _, step := range pred.Steps {
			rec, ok := e.registry.Get(step.Target)
			if !ok {
				continue
			}
			e.sink.UpdateVisual(rec.Handle, step.Stars, rec.Unit.Items)

			upgraded := rec.Unit
			upgraded.Stars = step.Stars
			e.registry.SetUnit(step.Target, upgraded)

			e.ledger.MarkMergeTarget(step.Target)
			e.ledger.SuppressEntity(step.Target)

			e.bus.Publish(api.ClientEvent{
				Type:     api.EventMerged,
				EntityID: string(step.Target),
				Stars:    step.Stars,
				Tick:     e.tick,
			})
		}
		e.log.WithFields(logrus.Fields{
			"template": templateID,
			"chain":    len(pred.Steps),
			"stars":    pred.FinalStars(),
		}).Debug("merge predicted")
	} else {
		slot, ok := e.freeBenchSlot()
		if !ok {
			return ErrBenchFull
		}

		candidate := domain.UnitSnapshot{
			TemplateID: templateID,
			Stars:      1,
			OwnerID:    e.ownerID,
		}
		h := e.sink.CreateVisual(candidate, slot)
		e.purchases.Add(slot.Index, templateID, h, e.cycle)
		e.ledger.SuppressSlot(slot)

		e.bus.Publish(api.ClientEvent{
			Type: api.EventPurchased,
			Tick: e.tick,
		})
		e.log.WithFields(logrus.Fields{
			"template": templateID,
			"slot":     slot.String(),
		}).Debug("purchase placed")
	}

	env, err := api.NewIntent(e.token, api.ActionBuyUnit, api.BuyPayload{TemplateID: templateID})
	if err != nil {
		return err
	}
	e.authority.SendIntent(env)
	return nil
}

// freeBenchSlot находит первый свободный слот скамейки.
// Слоты с незавершенными покупками тоже считаются занятыми.
func (e *Engine) freeBenchSlot() (domain.SlotAddress, bool) {
	for i := 0; i < e.cfg.BenchSize; i++ {
		slot := domain.BenchSlot(i)
		if _, occupied := e.registry.EntityAt(slot); occupied {
			continue
		}
		if e.ledger.IsSlotSuppressed(slot) || e.purchases.Has(i) {
			continue
		}
		return slot, true
	}
	return domain.NoSlot, false
}

// SetAuthority переключает исходящий канал намерений.
// Нужен, когда транспорт создается после ядра (ему требуется готовый
// приемник снапшотов). Вызывать до старта тикового цикла.
func (e *Engine) SetAuthority(a Authority) {
	e.authority = a
	e.drag.authority = a
}

// Phase возвращает текущую игровую фазу.
func (e *Engine) Phase() domain.GamePhase { return e.phase }

// Drag возвращает контроллер жестов (для диагностики и тестов).
func (e *Engine) Drag() *DragController { return e.drag }

// Registry возвращает реестр визуалов (read-only использование).
func (e *Engine) Registry() *Registry { return e.registry }

// Ledger возвращает реестр подавления (read-only использование).
func (e *Engine) Ledger() *SuppressionLedger { return e.ledger }
