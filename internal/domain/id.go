package domain

// EntityID - непрозрачный стабильный идентификатор юнита.
//
// Назначается сервером в момент создания юнита и никогда не переиспользуется.
// Клиент не разбирает содержимое идентификатора: для него это ключ,
// по которому сверяются снапшоты и реестр визуалов. Сравнение - по значению.
type EntityID string

// NilEntityID - аналог nil для случаев, когда юнит отсутствует.
const NilEntityID EntityID = ""

// IsNil проверяет, является ли идентификатор пустым.
func (id EntityID) IsNil() bool {
	return id == NilEntityID
}

// String реализует интерфейс Stringer (для логов).
func (id EntityID) String() string {
	if id.IsNil() {
		return "<nil>"
	}
	return string(id)
}
