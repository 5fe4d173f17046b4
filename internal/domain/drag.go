package domain

import "strings"

// DragPhase - фаза сессии перетаскивания.
type DragPhase uint8

const (
	DragNone DragPhase = iota
	DragPending
	DragActive
)

var dragPhaseToString = map[DragPhase]string{
	DragNone:    "NONE",
	DragPending: "PENDING",
	DragActive:  "ACTIVE",
}

// String реализует интерфейс Stringer (для fmt.Printf)
func (p DragPhase) String() string {
	if val, ok := dragPhaseToString[p]; ok {
		return strings.ToLower(val)
	}
	return "unknown"
}

// DragSession - состояние одного перетаскивания.
//
// Перетаскивание - эксклюзивный ресурс: в каждый момент времени не-None
// сессия может быть только одна. Создается на pointer-down, уничтожается
// на pointer-up / отмене / смене игровой фазы.
type DragSession struct {
	Entity    EntityID
	Origin    SlotAddress // откуда подняли юнита (сюда откатываемся при revert)
	FromBench bool
	Phase     DragPhase

	// Точка и тик нажатия. Нужны, чтобы отличить тап от перетаскивания:
	// Pending -> Active только при уходе дальше порогового расстояния.
	DownX, DownY float64
	DownTick     int
}

// IsIdle сообщает, свободен ли контроллер для новой сессии.
func (s DragSession) IsIdle() bool {
	return s.Phase == DragNone
}
