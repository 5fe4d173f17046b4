package network

import (
	"sync"

	"tactics-client/pkg/api"
)

// Dispatcher занимается только рассылкой локальных событий ядра подписчикам
// (панель юнита, магазин, звук). Подписчики живут на своих горутинах,
// поэтому здесь единственное место ядра, где нужен мьютекс.
type Dispatcher struct {
	mu sync.RWMutex
	// Мапа: имя подписчика -> личный канал
	subscribers map[string]chan api.ClientEvent
}

func NewDispatcher() *Dispatcher {
	return &Dispatcher{
		subscribers: make(map[string]chan api.ClientEvent),
	}
}

// Subscribe создает личный канал для подписчика.
func (d *Dispatcher) Subscribe(name string) chan api.ClientEvent {
	d.mu.Lock()
	defer d.mu.Unlock()

	// Если канал был, закрываем
	if old, ok := d.subscribers[name]; ok {
		close(old)
	}

	ch := make(chan api.ClientEvent, 64)
	d.subscribers[name] = ch
	return ch
}

// Unsubscribe удаляет подписчика.
func (d *Dispatcher) Unsubscribe(name string) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if ch, ok := d.subscribers[name]; ok {
		close(ch)
		delete(d.subscribers, name)
	}
}

// Publish отправляет событие всем подписчикам.
// Не блокируется: медленный подписчик теряет события, а не тормозит тик.
func (d *Dispatcher) Publish(evt api.ClientEvent) {
	d.mu.RLock()
	defer d.mu.RUnlock()

	for _, ch := range d.subscribers {
		select {
		case ch <- evt:
		default:
		}
	}
}

// HasSubscribers сообщает, слушает ли кто-нибудь события.
func (d *Dispatcher) HasSubscribers() bool {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return len(d.subscribers) > 0
}
