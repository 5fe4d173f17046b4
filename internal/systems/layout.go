package systems

import (
	"math"

	"tactics-client/internal/domain"
)

// Occupancy - текущее визуальное размещение юнитов: слот -> юнит.
// Строится из реестра визуалов, а не из последнего снапшота, потому что
// спекулятивные мутации уже могли разъехаться с сервером.
type Occupancy map[domain.SlotAddress]domain.UnitSnapshot

// FindEntity возвращает слот, в котором стоит юнит с данным ID.
func (o Occupancy) FindEntity(id domain.EntityID) (domain.SlotAddress, bool) {
	for slot, u := range o {
		if u.ID == id {
			return slot, true
		}
	}
	return domain.NoSlot, false
}

// Rect - прямоугольник в экранных координатах.
type Rect struct {
	X, Y, W, H float64
}

// Contains проверяет попадание точки в прямоугольник.
func (r Rect) Contains(x, y float64) bool {
	return x >= r.X && x < r.X+r.W && y >= r.Y && y < r.Y+r.H
}

// BoardLayout - плоская геометрия доски, скамейки и зоны продажи.
//
// Ядро не знает про 3D: рендер может проецировать указатель на плоскость
// доски как угодно, но на входе в разрешение целей всегда оказываются
// плоские координаты в этой системе. Доска - сетка Width x TotalRows
// с началом в (OriginX, OriginY); нижние PlayerRows рядов принадлежат
// игроку. Скамейка - полоса из BenchSize слотов ниже доски.
type BoardLayout struct {
	Width      int
	TotalRows  int
	PlayerRows int
	BenchSize  int

	TileSize float64
	OriginX  float64
	OriginY  float64
	BenchY   float64

	// SnapRadius - радиус "дотягивания" до ближайшего слота,
	// когда прямого попадания в клетку нет.
	SnapRadius float64

	SellZone Rect
}

// InBounds проверяет, что адрес существует в этой геометрии.
func (l BoardLayout) InBounds(slot domain.SlotAddress) bool {
	switch slot.Kind {
	case domain.SlotBoard:
		return slot.X >= 0 && slot.X < l.Width && slot.Y >= 0 && slot.Y < l.TotalRows
	case domain.SlotBench:
		return slot.Index >= 0 && slot.Index < l.BenchSize
	default:
		return false
	}
}

// IsPlayerSide проверяет, принадлежит ли слот стороне игрока.
// Слоты скамейки всегда свои; клетки доски - только нижние PlayerRows рядов.
func (l BoardLayout) IsPlayerSide(slot domain.SlotAddress) bool {
	if slot.IsBench() {
		return true
	}
	return slot.IsBoard() && slot.Y >= 0 && slot.Y < l.PlayerRows
}

// SlotCenter возвращает центр слота в экранных координатах.
func (l BoardLayout) SlotCenter(slot domain.SlotAddress) (float64, float64) {
	half := l.TileSize / 2
	if slot.IsBench() {
		return l.OriginX + float64(slot.Index)*l.TileSize + half, l.BenchY + half
	}
	return l.OriginX + float64(slot.X)*l.TileSize + half,
		l.OriginY + float64(slot.Y)*l.TileSize + half
}

// SlotAt выполняет прямой hit-test точки в слот (клетку или слот скамейки).
func (l BoardLayout) SlotAt(x, y float64) (domain.SlotAddress, bool) {
	// 1. Полоса скамейки
	if y >= l.BenchY && y < l.BenchY+l.TileSize {
		idx := int(math.Floor((x - l.OriginX) / l.TileSize))
		if idx >= 0 && idx < l.BenchSize {
			return domain.BenchSlot(idx), true
		}
		return domain.NoSlot, false
	}

	// 2. Сетка доски
	cx := int(math.Floor((x - l.OriginX) / l.TileSize))
	cy := int(math.Floor((y - l.OriginY) / l.TileSize))
	if cx >= 0 && cx < l.Width && cy >= 0 && cy < l.TotalRows {
		return domain.BoardSlot(cx, cy), true
	}
	return domain.NoSlot, false
}

// NearestSlot ищет ближайший слот в радиусе SnapRadius от точки.
// Используется как запасной вариант, когда прямого попадания нет
// (отпустили чуть мимо доски).
func (l BoardLayout) NearestSlot(x, y float64) (domain.SlotAddress, bool) {
	best := domain.NoSlot
	bestDist := l.SnapRadius

	check := func(slot domain.SlotAddress) {
		cx, cy := l.SlotCenter(slot)
		d := math.Hypot(x-cx, y-cy)
		if d <= bestDist {
			best = slot
			bestDist = d
		}
	}

	for by := 0; by < l.TotalRows; by++ {
		for bx := 0; bx < l.Width; bx++ {
			check(domain.BoardSlot(bx, by))
		}
	}
	for i := 0; i < l.BenchSize; i++ {
		check(domain.BenchSlot(i))
	}

	return best, !best.IsNone()
}

// UnitNear ищет юнита, чей визуал стоит рядом с точкой.
// Нужен для третьего шага разрешения цели: попали не в клетку,
// а в самого юнита - занимаемый им слот и есть цель.
func (l BoardLayout) UnitNear(x, y float64, occ Occupancy) (domain.SlotAddress, bool) {
	radius := l.TileSize * 0.6
	best := domain.NoSlot
	bestDist := radius

	for slot := range occ {
		cx, cy := l.SlotCenter(slot)
		d := math.Hypot(x-cx, y-cy)
		if d <= bestDist {
			best = slot
			bestDist = d
		}
	}

	return best, !best.IsNone()
}

// InSellZone проверяет попадание точки в зону продажи.
func (l BoardLayout) InSellZone(x, y float64) bool {
	return l.SellZone.Contains(x, y)
}
