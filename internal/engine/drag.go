package engine

import (
	"math"

	"github.com/sirupsen/logrus"

	"tactics-client/internal/domain"
	"tactics-client/internal/systems"
	"tactics-client/pkg/api"
	"tactics-client/pkg/logger"
)

// PointerSample - опрошенное состояние указателя на текущем тике.
// Контроллер работает по выборкам, а не по событиям: так потерянный
// pointer-up обнаруживается сам собой ("кнопка отпущена, а сессия жива").
type PointerSample struct {
	X, Y float64
	Down bool
}

// DragController - конечный автомат жестов.
//
// Idle -> Pending -> { Active -> Resolved -> Idle } | { Idle (тап) }
//
// Перетаскивание - эксклюзивный ресурс: пока сессия не-None, новая не
// начинается. Все вызовы происходят на тиковой горутине.
type DragController struct {
	layout    systems.BoardLayout
	threshold float64
	ownerID   string
	token     string

	ledger    *SuppressionLedger
	registry  *Registry
	sink      VisualSink
	authority Authority
	bus       EventBus

	session domain.DragSession

	log *logrus.Entry
}

func NewDragController(
	cfg Config,
	ownerID, token string,
	ledger *SuppressionLedger,
	registry *Registry,
	sink VisualSink,
	authority Authority,
	bus EventBus,
) *DragController {
	return &DragController{
		layout:    cfg.Layout(),
		threshold: cfg.DragThresholdPx,
		ownerID:   ownerID,
		token:     token,
		ledger:    ledger,
		registry:  registry,
		sink:      sink,
		authority: authority,
		bus:       bus,
		log:       logger.Component("drag"),
	}
}

// Session возвращает копию текущей сессии (для диагностики и тестов).
func (c *DragController) Session() domain.DragSession {
	return c.session
}

// PointerDown обрабатывает нажатие указателя.
//
// Если к этому моменту жива старая сессия, значит ее pointer-up потерялся:
// Pending закрывается тапом, Active разрешается по текущей точке - и только
// потом начинается новая сессия.
func (c *DragController) PointerDown(tick int, x, y float64, phase domain.GamePhase) {
	switch c.session.Phase {
	case domain.DragPending:
		c.resolveTap(tick)
	case domain.DragActive:
		c.resolveDrop(tick, PointerSample{X: x, Y: y}, phase)
	}
	c.tryBegin(tick, PointerSample{X: x, Y: y, Down: true}, phase)
}

// PointerMove обрабатывает перемещение указателя.
// Пересечение порога расстояния - единственный триггер Pending -> Active.
// В Active ядру делать нечего: визуал за указателем таскает рендер.
func (c *DragController) PointerMove(tick int, x, y float64, phase domain.GamePhase) {
	if c.session.Phase != domain.DragPending {
		return
	}
	if c.distanceFromDown(PointerSample{X: x, Y: y}) > c.threshold {
		c.session.Phase = domain.DragActive
		c.highlightTargets(phase)
		c.log.WithFields(logrus.Fields{
			"entity": c.session.Entity,
			"origin": c.session.Origin.String(),
		}).Debug("drag activated")
	}
}

// PointerUp обрабатывает отпускание указателя.
// Pending без пересечения порога - это тап, мутаций не бывает.
func (c *DragController) PointerUp(tick int, x, y float64, phase domain.GamePhase) {
	switch c.session.Phase {
	case domain.DragPending:
		c.resolveTap(tick)
	case domain.DragActive:
		c.resolveDrop(tick, PointerSample{X: x, Y: y}, phase)
	}
}

// Poll - защитный опрос раз в тик: кнопка уже отпущена, а сессия жива,
// значит pointer-up потерялся во входном слое. Считаем его пришедшим.
func (c *DragController) Poll(tick int, ptr PointerSample, phase domain.GamePhase) {
	if !ptr.Down && !c.session.IsIdle() {
		c.PointerUp(tick, ptr.X, ptr.Y, phase)
	}
}

// Cancel принудительно завершает сессию (смена игровой фазы, дисконнект).
//
// Отмена синхронна: визуал снапается в исходный слот в этом же тике,
// никаких сетевых ответов не ждем. Записей подавления у живой сессии
// еще нет (они появляются только при коммите), поэтому чистить нечего.
func (c *DragController) Cancel(reason string) {
	if c.session.IsIdle() {
		return
	}
	if rec, ok := c.registry.Get(c.session.Entity); ok {
		c.sink.MoveVisual(rec.Handle, c.session.Origin, false)
	}
	c.sink.HighlightSlots(nil)
	c.log.WithFields(logrus.Fields{
		"entity": c.session.Entity,
		"reason": reason,
	}).Debug("drag cancelled")
	c.session = domain.DragSession{}
}

// --- ПЕРЕХОДЫ ---

// tryBegin начинает Pending-сессию, если под указателем свой юнит.
func (c *DragController) tryBegin(tick int, ptr PointerSample, phase domain.GamePhase) {
	occ := c.registry.Occupancy()

	slot, ok := c.layout.SlotAt(ptr.X, ptr.Y)
	if ok {
		if _, occupied := occ[slot]; !occupied {
			ok = false
		}
	}
	if !ok {
		slot, ok = c.layout.UnitNear(ptr.X, ptr.Y, occ)
	}
	if !ok {
		return
	}

	unit := occ[slot]
	if unit.OwnerID != c.ownerID {
		return
	}
	// Юнита с доски можно брать только когда фаза разрешает расстановку.
	// Скамейка доступна всегда.
	if slot.IsBoard() && !phase.AllowsBoardEdit() {
		return
	}

	c.session = domain.DragSession{
		Entity:    unit.ID,
		Origin:    slot,
		FromBench: slot.IsBench(),
		Phase:     domain.DragPending,
		DownX:     ptr.X,
		DownY:     ptr.Y,
		DownTick:  tick,
	}
}

// resolveTap закрывает Pending-сессию как выбор юнита.
// Тап - это эффект, а не мутация: никаких намерений не уходит.
func (c *DragController) resolveTap(tick int) {
	c.bus.Publish(api.ClientEvent{
		Type:     api.EventSelected,
		EntityID: string(c.session.Entity),
		Tick:     tick,
	})
	c.session = domain.DragSession{}
}

// resolveDrop закрывает Active-сессию по точке отпускания.
func (c *DragController) resolveDrop(tick int, ptr PointerSample, phase domain.GamePhase) {
	session := c.session
	res := systems.ResolveDrop(
		ptr.X, ptr.Y, session, c.registry.Occupancy(), c.layout, phase, c.ownerID,
	)

	switch res.Outcome {
	case systems.DropMove:
		c.commitMove(session, res.Target)
	case systems.DropSwap:
		c.commitSwap(session, res)
	case systems.DropSell:
		c.commitSell(tick, session)
	default:
		// Невалидная цель - штатный откат, намерение не отправляется.
		if rec, ok := c.registry.Get(session.Entity); ok {
			c.sink.MoveVisual(rec.Handle, session.Origin, true)
		}
		c.log.WithFields(logrus.Fields{
			"entity": session.Entity,
			"reason": res.Reason,
		}).Debug("drop reverted")
	}

	c.sink.HighlightSlots(nil)
	c.session = domain.DragSession{}
}

// --- КОММИТЫ ---

// commitMove применяет спекулятивный перенос и шлет намерение.
func (c *DragController) commitMove(session domain.DragSession, target domain.SlotAddress) {
	rec, ok := c.registry.Get(session.Entity)
	if !ok {
		return
	}

	c.registry.MoveTo(session.Entity, target)
	c.sink.MoveVisual(rec.Handle, target, true)

	c.ledger.SuppressEntity(session.Entity)
	c.ledger.SuppressSlot(session.Origin)
	c.ledger.SuppressSlot(target)

	c.sendMoveIntent(session.Entity, session.Origin, target)

	c.log.WithFields(logrus.Fields{
		"entity": session.Entity,
		"from":   session.Origin.String(),
		"to":     target.String(),
	}).Debug("move committed")
}

// commitSwap обменивает местами перетаскиваемого юнита и занимающего цель.
// Подавляются оба юнита и оба слота; намерения уходят за обоих.
func (c *DragController) commitSwap(session domain.DragSession, res systems.DropResult) {
	recA, okA := c.registry.Get(session.Entity)
	recB, okB := c.registry.Get(res.Occupant.ID)
	if !okA || !okB {
		return
	}

	c.registry.Swap(session.Entity, res.Occupant.ID)
	c.sink.MoveVisual(recA.Handle, res.Target, true)
	c.sink.MoveVisual(recB.Handle, session.Origin, true)

	c.ledger.SuppressEntity(session.Entity)
	c.ledger.SuppressEntity(res.Occupant.ID)
	c.ledger.SuppressSlot(session.Origin)
	c.ledger.SuppressSlot(res.Target)

	c.sendMoveIntent(session.Entity, session.Origin, res.Target)
	c.sendMoveIntent(res.Occupant.ID, res.Target, session.Origin)

	c.log.WithFields(logrus.Fields{
		"entity":   session.Entity,
		"occupant": res.Occupant.ID,
	}).Debug("swap committed")
}

// commitSell продает юнита: визуал уничтожается сразу, абсолютно
// спекулятивно. Подавление защищает от "воскрешения" юнита ближайшим
// снапшотом, который продажи еще не видел.
func (c *DragController) commitSell(tick int, session domain.DragSession) {
	rec, ok := c.registry.Remove(session.Entity)
	if !ok {
		return
	}
	c.sink.DestroyVisual(rec.Handle)

	c.ledger.SuppressEntity(session.Entity)
	c.ledger.SuppressSlot(session.Origin)

	c.sendIntent(api.ActionSellUnit, api.SellPayload{EntityID: string(session.Entity)})

	c.bus.Publish(api.ClientEvent{
		Type:     api.EventSold,
		EntityID: string(session.Entity),
		Tick:     tick,
	})

	c.log.WithField("entity", session.Entity).Debug("sell committed")
}

// --- ВСПОМОГАТЕЛЬНОЕ ---

func (c *DragController) distanceFromDown(ptr PointerSample) float64 {
	return math.Hypot(ptr.X-c.session.DownX, ptr.Y-c.session.DownY)
}

// sendMoveIntent выбирает тип намерения по виду целевого и исходного слотов.
func (c *DragController) sendMoveIntent(id domain.EntityID, from, to domain.SlotAddress) {
	switch {
	case to.IsBoard():
		c.sendIntent(api.ActionPlaceUnit, api.PlacePayload{
			EntityID: string(id), X: to.X, Y: to.Y,
		})
	case from.IsBench():
		c.sendIntent(api.ActionMoveBenchUnit, api.BenchPayload{
			EntityID: string(id), SlotIndex: to.Index,
		})
	default:
		c.sendIntent(api.ActionBenchUnit, api.BenchPayload{
			EntityID: string(id), SlotIndex: to.Index,
		})
	}
}

func (c *DragController) sendIntent(action string, payload api.Validator) {
	if err := payload.Validate(); err != nil {
		// Сюда попадать нельзя: невалидные цели отсекаются при разрешении.
		c.log.WithError(err).WithField("action", action).Error("intent validation failed")
		return
	}
	env, err := api.NewIntent(c.token, action, payload)
	if err != nil {
		c.log.WithError(err).WithField("action", action).Error("intent marshal failed")
		return
	}
	c.authority.SendIntent(env)
}

// highlightTargets подсвечивает допустимые цели на входе в Active.
func (c *DragController) highlightTargets(phase domain.GamePhase) {
	var slots []domain.SlotAddress

	for i := 0; i < c.layout.BenchSize; i++ {
		slot := domain.BenchSlot(i)
		if _, occupied := c.registry.EntityAt(slot); !occupied && slot != c.session.Origin {
			slots = append(slots, slot)
		}
	}
	if phase.AllowsBoardEdit() {
		for y := 0; y < c.layout.PlayerRows; y++ {
			for x := 0; x < c.layout.Width; x++ {
				slot := domain.BoardSlot(x, y)
				if _, occupied := c.registry.EntityAt(slot); !occupied && slot != c.session.Origin {
					slots = append(slots, slot)
				}
			}
		}
	}

	c.sink.HighlightSlots(slots)
}
