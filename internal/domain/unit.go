package domain

// UnitSnapshot - неизменяемое представление юнита внутри одного снапшота.
//
// Заменяется целиком при каждом авторитетном обновлении. Клиент никогда
// не мутирует эти значения: спекулятивные изменения (повышение звезд при
// предсказанном слиянии) живут только в визуальном слое и в реестре.
type UnitSnapshot struct {
	ID         EntityID
	TemplateID string
	Stars      int // >= 1
	Items      []string
	OwnerID    string
}

// SameVisual сравнивает поля, влияющие на отображение юнита.
// Сверка вызывает UpdateVisual только если они разошлись.
func (u UnitSnapshot) SameVisual(other UnitSnapshot) bool {
	if u.Stars != other.Stars || len(u.Items) != len(other.Items) {
		return false
	}
	for i := range u.Items {
		if u.Items[i] != other.Items[i] {
			return false
		}
	}
	return true
}

// CloneItems возвращает копию списка предметов.
// Нужна, когда юнит из снапшота кладется в долгоживущую структуру.
func (u UnitSnapshot) CloneItems() []string {
	if len(u.Items) == 0 {
		return nil
	}
	out := make([]string, len(u.Items))
	copy(out, u.Items)
	return out
}

// BoardSnapshot - авторитетный снимок доски, скамейки и фазы.
//
// Приходит от сервера целиком и замещает предыдущее представление клиента.
// Локально не мутируется: все "поверх" снапшота делает реестр подавления.
type BoardSnapshot struct {
	Tick  int
	Phase GamePhase

	// Units содержит только занятые слоты (и доску, и скамейку).
	Units map[SlotAddress]UnitSnapshot
}

// UnitAt возвращает юнита в слоте, если слот занят.
func (b BoardSnapshot) UnitAt(slot SlotAddress) (UnitSnapshot, bool) {
	u, ok := b.Units[slot]
	return u, ok
}

// Contains проверяет, есть ли юнит с данным ID где-нибудь в снимке.
func (b BoardSnapshot) Contains(id EntityID) bool {
	for _, u := range b.Units {
		if u.ID == id {
			return true
		}
	}
	return false
}
