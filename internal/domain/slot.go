package domain

import "fmt"

// SlotKind - вид адресуемого слота.
type SlotKind uint8

const (
	SlotNone SlotKind = iota
	SlotBoard
	SlotBench
)

// SlotAddress - размеченное объединение "клетка доски | слот скамейки".
//
// Это value-type: сравнивается оператором ==, пригоден как ключ мапы.
// Для клетки доски значимы X и Y, для скамейки - Index. Поля чужого
// варианта всегда нулевые, чтобы равенство работало без нормализации.
type SlotAddress struct {
	Kind  SlotKind
	X, Y  int // только для SlotBoard
	Index int // только для SlotBench
}

// NoSlot - пустой адрес (юнит нигде не стоит / адрес не определен).
var NoSlot = SlotAddress{}

// BoardSlot создает адрес клетки доски.
func BoardSlot(x, y int) SlotAddress {
	return SlotAddress{Kind: SlotBoard, X: x, Y: y}
}

// BenchSlot создает адрес слота скамейки.
func BenchSlot(index int) SlotAddress {
	return SlotAddress{Kind: SlotBench, Index: index}
}

func (s SlotAddress) IsBoard() bool { return s.Kind == SlotBoard }
func (s SlotAddress) IsBench() bool { return s.Kind == SlotBench }
func (s SlotAddress) IsNone() bool  { return s.Kind == SlotNone }

// String реализует интерфейс Stringer (для логов и сообщений тестов).
func (s SlotAddress) String() string {
	switch s.Kind {
	case SlotBoard:
		return fmt.Sprintf("board(%d,%d)", s.X, s.Y)
	case SlotBench:
		return fmt.Sprintf("bench(%d)", s.Index)
	default:
		return "none"
	}
}
