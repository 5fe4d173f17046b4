package api

import (
	"encoding/json"
)

// --- КЛИЕНТ -> СЕРВЕР (НАМЕРЕНИЯ) ---

// Имена действий в протоколе.
// Клиент никогда не считает отправленное намерение фактом: сервер может
// отклонить его молча, и тогда следующий снапшот просто покажет правду.
const (
	ActionPlaceUnit     = "PLACE_UNIT"
	ActionBenchUnit     = "BENCH_UNIT"
	ActionMoveBenchUnit = "MOVE_BENCH_UNIT"
	ActionSellUnit      = "SELL_UNIT"
	ActionBuyUnit       = "BUY_UNIT"
)

// IntentEnvelope - исходящее сообщение клиента.
// Payload хранится сырым: конкретная структура зависит от Action.
type IntentEnvelope struct {
	Token   string          `json:"token,omitempty"` // ID сессии игрока
	Action  string          `json:"action"`
	Payload json.RawMessage `json:"payload"`
}

// Payloads

// PlacePayload: выставить юнита на клетку доски.
// Используется в: PLACE_UNIT
type PlacePayload struct {
	EntityID string `json:"entityId"`
	X        int    `json:"x"`
	Y        int    `json:"y"`
}

// BenchPayload: убрать юнита на скамейку или переставить внутри нее.
// Используется в: BENCH_UNIT, MOVE_BENCH_UNIT
type BenchPayload struct {
	EntityID  string `json:"entityId"`
	SlotIndex int    `json:"slotIndex"`
}

// SellPayload: продать юнита.
// Используется в: SELL_UNIT
type SellPayload struct {
	EntityID string `json:"entityId"`
}

// BuyPayload: купить юнита из магазина.
// EntityID здесь нет: идентификатор назначит сервер при создании.
// Используется в: BUY_UNIT
type BuyPayload struct {
	TemplateID string `json:"templateId"`
}

// NewIntent собирает конверт из действия и payload-структуры.
// Ошибка маршалинга здесь означает программную ошибку, а не ошибку данных.
func NewIntent(token, action string, payload any) (IntentEnvelope, error) {
	raw, err := json.Marshal(payload)
	if err != nil {
		return IntentEnvelope{}, err
	}
	return IntentEnvelope{Token: token, Action: action, Payload: raw}, nil
}

// --- СЕРВЕР -> КЛИЕНТ ---

// ServerMessage - корневой объект, который сервер шлет клиенту.
type ServerMessage struct {
	// Type тип сообщения. На данный момент: SNAPSHOT.
	Type string `json:"type"`

	// Snapshot полный авторитетный снимок доски.
	// Присылается целиком и замещает предыдущее представление клиента.
	Snapshot *Snapshot `json:"snapshot,omitempty"`
}

// Snapshot - полный снимок доски и скамейки.
//
// Снапшот авторитетен: клиент не "догоняет" его диффами, а замещает
// свое состояние целиком. Локальные спекулятивные мутации защищаются
// от затирания реестром подавления, а не форматом сообщения.
type Snapshot struct {
	Tick  int    `json:"tick"`
	Phase string `json:"phase"` // PLANNING, COMBAT

	// Board содержит только занятые клетки.
	Board []BoardCell `json:"board,omitempty"`

	// Bench - массив длиной в размер скамейки, null = слот пуст.
	Bench []*UnitView `json:"bench"`
}

// BoardCell - занятая клетка доски.
type BoardCell struct {
	X    int      `json:"x"`
	Y    int      `json:"y"`
	Unit UnitView `json:"unit"`
}

// UnitView - представление юнита в снапшоте.
type UnitView struct {
	ID         string   `json:"id"`
	TemplateID string   `json:"templateId"`
	Stars      int      `json:"stars"`
	Items      []string `json:"items,omitempty"`
	Owner      string   `json:"owner"`
}

// --- КЛИЕНТ -> UI (ЛОКАЛЬНЫЕ СОБЫТИЯ) ---

// Типы локальных событий ядра.
const (
	EventSelected  = "SELECTED"
	EventSold      = "SOLD"
	EventMerged    = "MERGED"
	EventPurchased = "PURCHASED"
)

// ClientEvent - событие ядра для слоев UI (панель юнита, магазин, звук).
// Это НЕ сетевые сообщения: они не покидают процесс.
type ClientEvent struct {
	Type     string `json:"type"`
	EntityID string `json:"entityId,omitempty"`
	Stars    int    `json:"stars,omitempty"`
	Tick     int    `json:"tick"`
}
