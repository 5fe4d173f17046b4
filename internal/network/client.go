package network

import (
	"time"

	"github.com/gorilla/websocket"

	"tactics-client/internal/domain"
	"tactics-client/pkg/api"
	"tactics-client/pkg/logger"
)

// Настройки WebSocket
const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 64 * 1024 // снапшот целой доски крупнее команды
)

// SnapshotReceiver - приемник авторитетных снапшотов.
// Engine реализует этот интерфейс.
type SnapshotReceiver interface {
	SubmitSnapshot(snap domain.BoardSnapshot)
}

// Discard - заглушка Authority: молча поглощает намерения.
// Используется, пока живое соединение еще не установлено.
type Discard struct{}

func (Discard) SendIntent(api.IntentEnvelope) {}

// Client - посредник между WebSocket и ядром.
//
// Реализует engine.Authority: намерения уходят fire-and-forget через
// буферизованный канал, ядро на отправке никогда не блокируется.
type Client struct {
	conn  *websocket.Conn
	send  chan api.IntentEnvelope
	recv  SnapshotReceiver
	token string

	done chan struct{}
}

// Dial подключается к серверу и запускает насосы чтения/записи.
func Dial(url, token string, recv SnapshotReceiver) (*Client, error) {
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		return nil, err
	}

	c := &Client{
		conn:  conn,
		send:  make(chan api.IntentEnvelope, 256),
		recv:  recv,
		token: token,
		done:  make(chan struct{}),
	}

	go c.readPump()
	go c.writePump()

	logger.Component("network").WithField("url", url).Info("Connected to authority")
	return c, nil
}

// SendIntent ставит намерение в очередь отправки.
// При переполненном канале намерение отбрасывается: следующий снапшот
// все равно покажет правду, а блокировать тиковую горутину нельзя.
func (c *Client) SendIntent(env api.IntentEnvelope) {
	env.Token = c.token
	select {
	case c.send <- env:
	default:
		logger.Component("network").WithField("action", env.Action).Warn("send buffer full, intent dropped")
	}
}

// Close разрывает соединение.
func (c *Client) Close() {
	close(c.done)
	if err := c.conn.Close(); err != nil {
		logger.Component("network").WithError(err).Warn("failed to close websocket connection")
	}
}

// readPump читает сообщения сервера и передает снапшоты в ядро.
func (c *Client) readPump() {
	log := logger.Component("network")
	defer func() {
		log.Info("Read pump stopped")
	}()

	c.conn.SetReadLimit(maxMessageSize)
	if err := c.conn.SetReadDeadline(time.Now().Add(pongWait)); err != nil {
		log.WithError(err).Warn("failed to set read deadline")
	}
	c.conn.SetPongHandler(func(string) error {
		if err := c.conn.SetReadDeadline(time.Now().Add(pongWait)); err != nil {
			log.WithError(err).Warn("failed to set pong read deadline")
		}
		return nil
	})

	for {
		var msg api.ServerMessage
		if err := c.conn.ReadJSON(&msg); err != nil {
			log.WithError(err).Warn("Connection lost")
			return
		}

		switch msg.Type {
		case "SNAPSHOT":
			if msg.Snapshot == nil {
				log.Warn("SNAPSHOT message without body")
				continue
			}
			c.recv.SubmitSnapshot(ToDomainSnapshot(*msg.Snapshot))
		default:
			log.WithField("type", msg.Type).Debug("ignoring unknown server message")
		}
	}
}

// writePump пишет намерения и пинги.
func (c *Client) writePump() {
	log := logger.Component("network")
	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()

	for {
		select {
		case env, ok := <-c.send:
			if !ok {
				return
			}
			if err := c.conn.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
				log.WithError(err).Warn("failed to set write deadline")
			}
			if err := c.conn.WriteJSON(env); err != nil {
				log.WithError(err).Warn("intent write failed")
				return
			}
		case <-ticker.C:
			if err := c.conn.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
				log.WithError(err).Warn("failed to set write deadline")
			}
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		case <-c.done:
			return
		}
	}
}

// ToDomainSnapshot конвертирует снапшот протокола во внутреннюю модель.
func ToDomainSnapshot(s api.Snapshot) domain.BoardSnapshot {
	snap := domain.BoardSnapshot{
		Tick:  s.Tick,
		Phase: domain.ParsePhase(s.Phase),
		Units: make(map[domain.SlotAddress]domain.UnitSnapshot, len(s.Board)+len(s.Bench)),
	}

	for _, cell := range s.Board {
		snap.Units[domain.BoardSlot(cell.X, cell.Y)] = toDomainUnit(cell.Unit)
	}
	for i, view := range s.Bench {
		if view == nil {
			continue
		}
		snap.Units[domain.BenchSlot(i)] = toDomainUnit(*view)
	}

	return snap
}

func toDomainUnit(v api.UnitView) domain.UnitSnapshot {
	items := make([]string, len(v.Items))
	copy(items, v.Items)
	if len(items) == 0 {
		items = nil
	}
	return domain.UnitSnapshot{
		ID:         domain.EntityID(v.ID),
		TemplateID: v.TemplateID,
		Stars:      v.Stars,
		Items:      items,
		OwnerID:    v.Owner,
	}
}
