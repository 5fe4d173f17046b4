package engine

import (
	"tactics-client/internal/domain"
)

// VisualHandle - непрозрачная ссылка на визуальное представление юнита.
// Выдается реализацией VisualSink и имеет смысл только для нее.
type VisualHandle int64

// NilVisual - отсутствующий визуал.
const NilVisual VisualHandle = 0

// VisualSink - контракт между ядром и рендером.
//
// Ядро командует, рендер исполняет: меши, анимации и частицы живут
// по ту сторону этого интерфейса и ядро их не видит. Все вызовы
// происходят на тиковой горутине, реализация не обязана быть
// потокобезопасной.
type VisualSink interface {
	// CreateVisual создает визуал юнита в слоте и возвращает ссылку на него.
	CreateVisual(unit domain.UnitSnapshot, slot domain.SlotAddress) VisualHandle

	// MoveVisual перемещает визуал в слот.
	// animated=false означает мгновенный снап (откат, отмена сессии).
	MoveVisual(h VisualHandle, slot domain.SlotAddress, animated bool)

	// UpdateVisual обновляет звезды и предметы существующего визуала.
	UpdateVisual(h VisualHandle, stars int, items []string)

	// DestroyVisual уничтожает визуал. Ссылка после этого невалидна.
	DestroyVisual(h VisualHandle)

	// HighlightSlots подсвечивает множество слотов (пустой срез гасит все).
	HighlightSlots(slots []domain.SlotAddress)
}
