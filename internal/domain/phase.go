package domain

import "strings"

// GamePhase - фаза раунда. От нее зависит, что разрешено трогать:
// юнитов на доске можно двигать только в планировании, скамейку - всегда.
type GamePhase uint8

const (
	PhaseUnknown GamePhase = iota
	PhasePlanning
	PhaseCombat
)

// Маппинг для конвертации JSON -> Domain
var phaseStringToPhase = map[string]GamePhase{
	"PLANNING": PhasePlanning,
	"COMBAT":   PhaseCombat,
}

// Маппинг для логов Domain -> String
var phaseToString = map[GamePhase]string{
	PhasePlanning: "PLANNING",
	PhaseCombat:   "COMBAT",
}

// ParsePhase конвертирует строку из JSON в GamePhase
func ParsePhase(s string) GamePhase {
	// Делаем нечувствительным к регистру для надежности
	upper := strings.ToUpper(s)
	if val, ok := phaseStringToPhase[upper]; ok {
		return val
	}
	return PhaseUnknown
}

// String реализует интерфейс Stringer (для fmt.Printf)
func (p GamePhase) String() string {
	if val, ok := phaseToString[p]; ok {
		return val
	}
	return "UNKNOWN"
}

// AllowsBoardEdit сообщает, можно ли в этой фазе трогать юнитов на доске.
func (p GamePhase) AllowsBoardEdit() bool {
	return p == PhasePlanning
}
