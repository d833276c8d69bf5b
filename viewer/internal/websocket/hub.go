package websocket

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	"github.com/Krimson/eeg-explorer/viewer/internal/explorer"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 64 << 10
	sendBuffer     = 16
)

// Типы сообщений
const (
	TypeExplore  = "explore"
	TypeOverlay  = "overlay"
	TypeSubjects = "subjects"
	TypeOptions  = "options"
	TypeReady    = "ready"
	TypeView     = "view"
	TypeNotice   = "notice"
)

// Inbound - запрос клиента. Поля Request нужны для explore,
// Electrodes - для overlay.
type Inbound struct {
	Type string `json:"type"`
	explorer.Request
	Electrodes []string `json:"electrodes,omitempty"`
}

// Outbound - ответ сервера. Заполнено ровно одно поле данных.
type Outbound struct {
	Type     string            `json:"type"`
	ClientID string            `json:"client_id,omitempty"`
	View     *explorer.View    `json:"view,omitempty"`
	PNG      []byte            `json:"png,omitempty"`
	Subjects []string          `json:"subjects,omitempty"`
	Options  *explorer.Options `json:"options,omitempty"`
	Notice   *explorer.Notice  `json:"notice,omitempty"`
}

// Hub принимает WebSocket соединения и хранит их для закрытия при остановке.
// Каждое сообщение запускает свой конвейер, клиенты ничего не разделяют.
type Hub struct {
	service  *explorer.Service
	log      zerolog.Logger
	upgrader websocket.Upgrader

	mu      sync.Mutex
	clients map[*Client]struct{}
}

// Client представляет WebSocket клиента
type Client struct {
	id     string
	hub    *Hub
	conn   *websocket.Conn
	send   chan []byte
	log    zerolog.Logger
	ctx    context.Context
	cancel context.CancelFunc
}

// NewHub создает новый hub
func NewHub(service *explorer.Service, log zerolog.Logger) *Hub {
	return &Hub{
		service: service,
		log:     log,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  4096,
			WriteBufferSize: 4096,
			CheckOrigin: func(r *http.Request) bool {
				return true
			},
		},
		clients: make(map[*Client]struct{}),
	}
}

// ServeHTTP выполняет upgrade соединения и запускает pumps
func (h *Hub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.log.Warn().Err(err).Msg("failed to upgrade connection")
		return
	}

	id := uuid.New().String()
	clientLog := h.log.With().Str("client_id", id).Logger()
	ctx, cancel := context.WithCancel(clientLog.WithContext(context.Background()))

	client := &Client{
		id:     id,
		hub:    h,
		conn:   conn,
		send:   make(chan []byte, sendBuffer),
		log:    clientLog,
		ctx:    ctx,
		cancel: cancel,
	}
	h.register(client)
	client.reply(Outbound{Type: TypeReady, ClientID: id})

	go client.writePump()
	go client.readPump()
}

// Clients возвращает количество открытых соединений
func (h *Hub) Clients() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.clients)
}

// CloseAll закрывает все соединения
func (h *Hub) CloseAll() {
	h.mu.Lock()
	clients := make([]*Client, 0, len(h.clients))
	for c := range h.clients {
		clients = append(clients, c)
	}
	h.mu.Unlock()

	for _, c := range clients {
		c.cancel()
		_ = c.conn.Close()
	}
}

func (h *Hub) register(c *Client) {
	h.mu.Lock()
	h.clients[c] = struct{}{}
	h.mu.Unlock()
	c.log.Info().Msg("client connected")
}

func (h *Hub) unregister(c *Client) {
	h.mu.Lock()
	delete(h.clients, c)
	h.mu.Unlock()
	c.log.Info().Msg("client disconnected")
}

// readPump обрабатывает сообщения клиента по одному до закрытия соединения.
// Единственный отправитель в c.send, закрывает его при выходе.
func (c *Client) readPump() {
	defer func() {
		c.cancel()
		c.hub.unregister(c)
		close(c.send)
		_ = c.conn.Close()
	}()

	c.conn.SetReadLimit(maxMessageSize)
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		_, data, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				c.log.Warn().Err(err).Msg("websocket read failed")
			}
			return
		}

		var msg Inbound
		if err := json.Unmarshal(data, &msg); err != nil {
			c.notice(explorer.Notice{Kind: explorer.KindInvalidSelection, Message: "Malformed message."})
			continue
		}
		c.handle(msg)
	}
}

func (c *Client) handle(msg Inbound) {
	svc := c.hub.service

	switch msg.Type {
	case TypeExplore:
		view, err := svc.Explore(c.ctx, msg.Request)
		if err != nil {
			c.fail(msg.Type, err)
			return
		}
		c.reply(Outbound{Type: TypeView, View: view})

	case TypeOverlay:
		var buf bytes.Buffer
		if err := svc.OverlayPNG(msg.Electrodes, &buf); err != nil {
			c.fail(msg.Type, err)
			return
		}
		c.reply(Outbound{Type: TypeOverlay, PNG: buf.Bytes()})

	case TypeSubjects:
		subjects, err := svc.Subjects(c.ctx)
		if err != nil {
			c.fail(msg.Type, err)
			return
		}
		c.reply(Outbound{Type: TypeSubjects, Subjects: subjects})

	case TypeOptions:
		opts := svc.Options()
		c.reply(Outbound{Type: TypeOptions, Options: &opts})

	default:
		c.notice(explorer.Notice{Kind: explorer.KindInvalidSelection, Message: "Unknown message type."})
	}
}

func (c *Client) fail(msgType string, err error) {
	n := explorer.NoticeFor(err)
	c.log.Warn().Err(err).Str("type", msgType).Str("kind", string(n.Kind)).Msg("request failed")
	c.notice(n)
}

func (c *Client) notice(n explorer.Notice) {
	c.reply(Outbound{Type: TypeNotice, Notice: &n})
}

func (c *Client) reply(out Outbound) {
	data, err := json.Marshal(out)
	if err != nil {
		c.log.Error().Err(err).Msg("failed to marshal reply")
		return
	}

	select {
	case c.send <- data:
	case <-c.ctx.Done():
	default:
		c.log.Warn().Str("type", out.Type).Msg("send buffer full, dropping reply")
	}
}

// writePump отправляет ответы клиенту и держит соединение живым
func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		_ = c.conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, message); err != nil {
				c.log.Warn().Err(err).Msg("failed to write message")
				return
			}

		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
