package engine

import (
	"tactics-client/internal/domain"
)

// SuppressionLedger - реестр подавления.
//
// Сверка (reconcile) выполняется на каждом снапшоте и без этого реестра
// откатывала бы спекулятивные мутации, которые сервер еще не успел
// подтвердить. Запись существует с момента коммита мутации и живет ровно
// до конца обработки следующего снапшота: Clear() вызывается безусловно,
// подтвердил сервер намерение или нет. Ложное подавление (один
// проигнорированный настоящий апдейт) предпочтительнее мерцания.
//
// Сущности, слоты и цели слияний живут в одном реестре и чистятся
// вместе - раздельная очистка была бы источником рассинхрона.
type SuppressionLedger struct {
	entities     map[domain.EntityID]struct{}
	slots        map[domain.SlotAddress]struct{}
	mergeTargets map[domain.EntityID]struct{}
}

func NewSuppressionLedger() *SuppressionLedger {
	l := &SuppressionLedger{}
	l.Clear()
	return l
}

// SuppressEntity подавляет юнита. Идемпотентно.
func (l *SuppressionLedger) SuppressEntity(id domain.EntityID) {
	if !id.IsNil() {
		l.entities[id] = struct{}{}
	}
}

// SuppressSlot подавляет слот. Идемпотентно.
func (l *SuppressionLedger) SuppressSlot(slot domain.SlotAddress) {
	if !slot.IsNone() {
		l.slots[slot] = struct{}{}
	}
}

// MarkMergeTarget помечает юнита целью незавершенного слияния:
// его визуал нельзя уничтожать, даже если юнит пропал из снапшота.
func (l *SuppressionLedger) MarkMergeTarget(id domain.EntityID) {
	if !id.IsNil() {
		l.mergeTargets[id] = struct{}{}
	}
}

func (l *SuppressionLedger) IsEntitySuppressed(id domain.EntityID) bool {
	_, ok := l.entities[id]
	return ok
}

func (l *SuppressionLedger) IsSlotSuppressed(slot domain.SlotAddress) bool {
	_, ok := l.slots[slot]
	return ok
}

func (l *SuppressionLedger) IsMergeTarget(id domain.EntityID) bool {
	_, ok := l.mergeTargets[id]
	return ok
}

// Len возвращает суммарное число записей (для логов).
func (l *SuppressionLedger) Len() int {
	return len(l.entities) + len(l.slots) + len(l.mergeTargets)
}

// Clear сбрасывает реестр целиком.
//
// Вызывается ровно один раз на каждый принятый снапшот, ПОСЛЕ прохода
// сверки: сам ближайший к коммиту снапшот еще подавлен (он гарантированно
// не отражает уходящее намерение), следующий - уже нет. Это ограничивает
// окно рассинхрона двумя круговыми задержками в худшем случае.
func (l *SuppressionLedger) Clear() {
	l.entities = make(map[domain.EntityID]struct{})
	l.slots = make(map[domain.SlotAddress]struct{})
	l.mergeTargets = make(map[domain.EntityID]struct{})
}
