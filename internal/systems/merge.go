package systems

import (
	"sort"

	"tactics-client/internal/domain"
)

// MergeStep - один уровень цепочки слияний.
type MergeStep struct {
	Target domain.EntityID    // существующий юнит, который поглощает кандидата
	Slot   domain.SlotAddress // где он стоит
	Stars  int                // его НОВЫЙ уровень звезд после слияния
}

// MergePrediction - результат предсказания слияния.
// Предсказание никогда не мутирует авторитетную модель: оно лишь говорит
// вызывающему, что делать с визуалами и что подавить до прихода снапшота.
type MergePrediction struct {
	Steps []MergeStep
}

// Merged сообщает, поглощен ли кандидат существующим юнитом.
// false означает, что вызывающий обязан разместить нового юнита сам.
func (p MergePrediction) Merged() bool {
	return len(p.Steps) > 0
}

// FinalStars возвращает уровень звезд вершины цепочки (0, если слияния нет).
func (p MergePrediction) FinalStars() int {
	if len(p.Steps) == 0 {
		return 0
	}
	return p.Steps[len(p.Steps)-1].Stars
}

// PredictMerge предсказывает цепочку слияний для кандидата (templateID, stars).
//
// Поиск пары идет сначала по скамейке (слоты по возрастанию индекса), затем -
// только если фаза позволяет трогать доску - по клеткам доски построчно.
// Первое совпадение по templateID и равному уровню звезд поглощает кандидата,
// и поиск рекурсивно повторяется для получившегося уровня: три покупки 1*,
// пришедшие вразнобой, могут каскадом дать 2*, которое тут же сольется в 3*.
//
// Рекурсия останавливается, когда пары нет или достигнут maxStars.
// Юниты, уже участвующие в цепочке, второй раз не поглощают.
func PredictMerge(
	templateID string,
	stars int,
	ownerID string,
	occ Occupancy,
	phase domain.GamePhase,
	maxStars int,
) MergePrediction {
	var pred MergePrediction
	consumed := make(map[domain.EntityID]bool)

	for stars < maxStars {
		slot, unit, found := findPair(templateID, stars, ownerID, occ, phase, consumed)
		if !found {
			break
		}

		stars++
		consumed[unit.ID] = true
		pred.Steps = append(pred.Steps, MergeStep{
			Target: unit.ID,
			Slot:   slot,
			Stars:  stars,
		})
	}

	return pred
}

// findPair ищет первого подходящего юнита в фиксированном порядке обхода.
func findPair(
	templateID string,
	stars int,
	ownerID string,
	occ Occupancy,
	phase domain.GamePhase,
	consumed map[domain.EntityID]bool,
) (domain.SlotAddress, domain.UnitSnapshot, bool) {
	// Чужие юниты в слияниях не участвуют, даже если шаблон совпал.
	matches := func(u domain.UnitSnapshot) bool {
		return u.OwnerID == ownerID &&
			u.TemplateID == templateID &&
			u.Stars == stars &&
			!consumed[u.ID]
	}

	// 1. Скамейка, индексы по возрастанию.
	// Мапу нельзя обходить как попало: порядок совпадения детерминирован.
	var benchSlots []domain.SlotAddress
	var boardSlots []domain.SlotAddress
	for slot := range occ {
		if slot.IsBench() {
			benchSlots = append(benchSlots, slot)
		} else if slot.IsBoard() {
			boardSlots = append(boardSlots, slot)
		}
	}
	sort.Slice(benchSlots, func(i, j int) bool {
		return benchSlots[i].Index < benchSlots[j].Index
	})
	for _, slot := range benchSlots {
		if u := occ[slot]; matches(u) {
			return slot, u, true
		}
	}

	// 2. Доска, построчно - и только в фазе планирования.
	if !phase.AllowsBoardEdit() {
		return domain.NoSlot, domain.UnitSnapshot{}, false
	}
	sort.Slice(boardSlots, func(i, j int) bool {
		if boardSlots[i].Y != boardSlots[j].Y {
			return boardSlots[i].Y < boardSlots[j].Y
		}
		return boardSlots[i].X < boardSlots[j].X
	})
	for _, slot := range boardSlots {
		if u := occ[slot]; matches(u) {
			return slot, u, true
		}
	}

	return domain.NoSlot, domain.UnitSnapshot{}, false
}
