package engine

import (
	"errors"

	"tactics-client/internal/domain"
	"tactics-client/internal/systems"
)

var ErrDuplicateVisual = errors.New("entity already has a visual")

// VisualRecord - запись реестра: визуал юнита и его последнее известное
// состояние. Unit здесь может опережать сервер (спекулятивные звезды
// после предсказанного слияния) - это нормально, сверка сравнивает
// именно с последним известным, чтобы не дергать рендер без изменений.
type VisualRecord struct {
	Handle VisualHandle
	Unit   domain.UnitSnapshot
	Slot   domain.SlotAddress
}

// Registry - явный владелец соответствия "юнит -> визуал".
//
// Инварианты:
//   - не более одного визуала на EntityID;
//   - не более одного EntityID на занятый слот (кроме однокадрового
//     переходного состояния во время обмена местами).
type Registry struct {
	byEntity map[domain.EntityID]*VisualRecord
	bySlot   map[domain.SlotAddress]domain.EntityID
}

func NewRegistry() *Registry {
	return &Registry{
		byEntity: make(map[domain.EntityID]*VisualRecord),
		bySlot:   make(map[domain.SlotAddress]domain.EntityID),
	}
}

// Insert регистрирует визуал для юнита.
// Повторная регистрация того же EntityID - ошибка (нарушение инварианта).
func (r *Registry) Insert(unit domain.UnitSnapshot, slot domain.SlotAddress, h VisualHandle) error {
	if _, ok := r.byEntity[unit.ID]; ok {
		return ErrDuplicateVisual
	}
	unit.Items = unit.CloneItems()
	r.byEntity[unit.ID] = &VisualRecord{Handle: h, Unit: unit, Slot: slot}
	r.bySlot[slot] = unit.ID
	return nil
}

// Get возвращает запись по ID.
func (r *Registry) Get(id domain.EntityID) (*VisualRecord, bool) {
	rec, ok := r.byEntity[id]
	return rec, ok
}

// EntityAt возвращает юнита, стоящего в слоте.
func (r *Registry) EntityAt(slot domain.SlotAddress) (domain.EntityID, bool) {
	id, ok := r.bySlot[slot]
	return id, ok
}

// Remove удаляет запись и возвращает ее (для уничтожения визуала снаружи).
func (r *Registry) Remove(id domain.EntityID) (VisualRecord, bool) {
	rec, ok := r.byEntity[id]
	if !ok {
		return VisualRecord{}, false
	}
	delete(r.byEntity, id)
	// Слотовый индекс чистим только если он все еще указывает на нас:
	// во время обмена местами слот мог быть уже перезаписан соседом.
	if cur, ok := r.bySlot[rec.Slot]; ok && cur == id {
		delete(r.bySlot, rec.Slot)
	}
	return *rec, true
}

// MoveTo переставляет юнита в другой слот.
func (r *Registry) MoveTo(id domain.EntityID, slot domain.SlotAddress) {
	rec, ok := r.byEntity[id]
	if !ok {
		return
	}
	if cur, ok := r.bySlot[rec.Slot]; ok && cur == id {
		delete(r.bySlot, rec.Slot)
	}
	rec.Slot = slot
	r.bySlot[slot] = id
}

// Swap меняет местами двух юнитов за одну операцию,
// не оставляя промежуточного состояния с потерянным слотом.
func (r *Registry) Swap(a, b domain.EntityID) {
	ra, okA := r.byEntity[a]
	rb, okB := r.byEntity[b]
	if !okA || !okB {
		return
	}
	ra.Slot, rb.Slot = rb.Slot, ra.Slot
	r.bySlot[ra.Slot] = a
	r.bySlot[rb.Slot] = b
}

// SetUnit обновляет последнее известное состояние юнита.
func (r *Registry) SetUnit(id domain.EntityID, unit domain.UnitSnapshot) {
	if rec, ok := r.byEntity[id]; ok {
		unit.Items = unit.CloneItems()
		rec.Unit = unit
	}
}

// Len возвращает количество зарегистрированных визуалов.
func (r *Registry) Len() int {
	return len(r.byEntity)
}

// Each обходит все записи. Порядок не определен;
// мутировать реестр внутри fn нельзя.
func (r *Registry) Each(fn func(id domain.EntityID, rec VisualRecord)) {
	for id, rec := range r.byEntity {
		fn(id, *rec)
	}
}

// Occupancy строит снимок текущего визуального размещения для systems.
func (r *Registry) Occupancy() systems.Occupancy {
	occ := make(systems.Occupancy, len(r.byEntity))
	for _, rec := range r.byEntity {
		occ[rec.Slot] = rec.Unit
	}
	return occ
}
