package systems

import (
	"tactics-client/internal/domain"
)

// DropOutcome - исход разрешения точки отпускания.
type DropOutcome uint8

const (
	// DropRevert: цели нет или она запрещена. Спекулятивное состояние
	// откатывается, намерение серверу НЕ отправляется. Это не ошибка,
	// а штатная ветка разрешения.
	DropRevert DropOutcome = iota
	DropMove
	DropSwap
	DropSell
)

var dropOutcomeToString = map[DropOutcome]string{
	DropRevert: "revert",
	DropMove:   "move",
	DropSwap:   "swap",
	DropSell:   "sell",
}

// String реализует интерфейс Stringer (для fmt.Printf)
func (o DropOutcome) String() string {
	if val, ok := dropOutcomeToString[o]; ok {
		return val
	}
	return "unknown"
}

// DropResult - результат разрешения. Не меняет состояние мира!
type DropResult struct {
	Outcome DropOutcome
	Target  domain.SlotAddress
	// Occupant заполняется при DropSwap: кто стоит в целевом слоте.
	Occupant domain.UnitSnapshot
	// Reason - почему revert (для debug-логов).
	Reason string
}

// ResolveDrop вычисляет исход отпускания юнита в точке (x, y).
//
// Порядок поиска цели фиксирован и менять его нельзя:
//  1. прямое попадание в клетку/слот,
//  2. ближайший слот в радиусе дотягивания,
//  3. попадание в стоящего юнита - берем его слот,
//  4. зона продажи,
//  5. иначе revert.
func ResolveDrop(
	x, y float64,
	session domain.DragSession,
	occ Occupancy,
	layout BoardLayout,
	phase domain.GamePhase,
	ownerID string,
) DropResult {
	target, found := layout.SlotAt(x, y)
	if !found {
		target, found = layout.NearestSlot(x, y)
	}
	if !found {
		target, found = layout.UnitNear(x, y, occ)
	}
	if !found {
		if layout.InSellZone(x, y) {
			return DropResult{Outcome: DropSell, Target: session.Origin}
		}
		return DropResult{Outcome: DropRevert, Target: session.Origin, Reason: "no target"}
	}

	return validateTarget(target, session, occ, layout, phase, ownerID)
}

// validateTarget проверяет допустимость найденного слота.
func validateTarget(
	target domain.SlotAddress,
	session domain.DragSession,
	occ Occupancy,
	layout BoardLayout,
	phase domain.GamePhase,
	ownerID string,
) DropResult {
	revert := func(reason string) DropResult {
		return DropResult{Outcome: DropRevert, Target: session.Origin, Reason: reason}
	}

	// 1. Границы и сторона
	if !layout.InBounds(target) {
		return revert("out of bounds")
	}
	if !layout.IsPlayerSide(target) {
		return revert("enemy side")
	}

	// 2. Клетки доски доступны только когда фаза разрешает расстановку
	if target.IsBoard() && !phase.AllowsBoardEdit() {
		return revert("board locked in " + phase.String())
	}

	// 3. Отпустили там же, где подняли - ничего не делаем
	if target == session.Origin {
		return revert("dropped at origin")
	}

	// 4. Занятость цели
	occupant, occupied := occ[target]
	if !occupied {
		return DropResult{Outcome: DropMove, Target: target}
	}
	if occupant.ID == session.Entity {
		return revert("dropped on self")
	}
	if occupant.OwnerID != ownerID {
		return revert("occupied by foreign unit")
	}

	// Оба юнита свои: меняем их местами.
	return DropResult{Outcome: DropSwap, Target: target, Occupant: occupant}
}
