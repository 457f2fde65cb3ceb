// Package monitoring 通过WebSocket向仪表盘推送实时判定结果
package monitoring

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	lru "github.com/hashicorp/golang-lru/v2"
	"go.uber.org/zap"

	"cyberguard/ml"
)

// MessageType 消息类型
type MessageType string

const (
	VerdictMessage MessageType = "verdict"
)

const (
	writeWait    = 10 * time.Second
	pongWait     = 60 * time.Second
	pingInterval = (pongWait * 9) / 10
	sendBuffer   = 256
)

// Message 推送给客户端的消息
type Message struct {
	Type      MessageType     `json:"type"`
	Timestamp time.Time       `json:"timestamp"`
	ID        string          `json:"id"`
	Data      json.RawMessage `json:"data"`
}

// Verdict 一次预测的结果
type Verdict struct {
	RequestID  string        `json:"request_id,omitempty"`
	Prediction ml.Label      `json:"prediction"`
	Confidence string        `json:"confidence"`
	Features   ml.FeatureMap `json:"features,omitempty"`
}

type client struct {
	conn *websocket.Conn
	send chan []byte
	id   string
}

type entry struct {
	seq     uint64
	payload []byte
}

// Hub WebSocket中心，保存最近的消息用于新客户端回放
type Hub struct {
	clients    map[*client]bool
	broadcast  chan entry
	register   chan *client
	unregister chan *client
	recent     *lru.Cache[uint64, []byte]
	upgrader   websocket.Upgrader
	seq        atomic.Uint64
	connected  atomic.Int64
	done       chan struct{}
	doneOnce   sync.Once
	log        *zap.Logger
}

// NewHub 创建WebSocket中心，replay为回放的消息条数
func NewHub(replay int, log *zap.Logger) (*Hub, error) {
	if replay <= 0 {
		replay = 1
	}
	recent, err := lru.New[uint64, []byte](replay)
	if err != nil {
		return nil, err
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Hub{
		clients:    make(map[*client]bool),
		broadcast:  make(chan entry, sendBuffer),
		register:   make(chan *client),
		unregister: make(chan *client),
		recent:     recent,
		upgrader: websocket.Upgrader{
			CheckOrigin:     func(r *http.Request) bool { return true },
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
		},
		done: make(chan struct{}),
		log:  log,
	}, nil
}

// Run 处理注册、注销和广播，直到ctx结束
func (h *Hub) Run(ctx context.Context) {
	defer func() {
		h.doneOnce.Do(func() { close(h.done) })
		for c := range h.clients {
			close(c.send)
			delete(h.clients, c)
		}
		h.log.Info("verdict feed stopped")
	}()

	for {
		select {
		case c := <-h.register:
			h.clients[c] = true
			h.connected.Store(int64(len(h.clients)))
			h.replay(c)
			h.log.Debug("feed client connected", zap.String("client", c.id), zap.Int("clients", len(h.clients)))

		case c := <-h.unregister:
			if _, ok := h.clients[c]; ok {
				delete(h.clients, c)
				close(c.send)
			}
			h.connected.Store(int64(len(h.clients)))
			h.log.Debug("feed client disconnected", zap.String("client", c.id), zap.Int("clients", len(h.clients)))

		case e := <-h.broadcast:
			h.recent.Add(e.seq, e.payload)
			for c := range h.clients {
				select {
				case c.send <- e.payload:
				default:
					// slow consumer
					close(c.send)
					delete(h.clients, c)
				}
			}
			h.connected.Store(int64(len(h.clients)))

		case <-ctx.Done():
			return
		}
	}
}

// replay 按时间顺序发送最近的消息
func (h *Hub) replay(c *client) {
	for _, seq := range h.recent.Keys() {
		payload, ok := h.recent.Peek(seq)
		if !ok {
			continue
		}
		select {
		case c.send <- payload:
		default:
			return
		}
	}
}

// Clients 返回当前连接的客户端数量
func (h *Hub) Clients() int {
	return int(h.connected.Load())
}

// Publish 发布一次判定，队列满时丢弃
func (h *Hub) Publish(v Verdict) {
	data, err := json.Marshal(v)
	if err != nil {
		h.log.Warn("failed to encode verdict", zap.Error(err))
		return
	}
	seq := h.seq.Add(1)
	payload, err := json.Marshal(Message{
		Type:      VerdictMessage,
		Timestamp: time.Now().UTC(),
		ID:        strconv.FormatUint(seq, 10),
		Data:      data,
	})
	if err != nil {
		h.log.Warn("failed to encode message", zap.Error(err))
		return
	}

	select {
	case h.broadcast <- entry{seq: seq, payload: payload}:
	default:
		h.log.Warn("verdict feed queue is full, dropping message")
	}
}

// ServeHTTP 升级为WebSocket连接
func (h *Hub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.log.Warn("websocket upgrade failed", zap.Error(err))
		return
	}

	c := &client{
		conn: conn,
		send: make(chan []byte, sendBuffer),
		id:   uuid.NewString(),
	}
	select {
	case h.register <- c:
	case <-h.done:
		conn.Close()
		return
	}

	go c.writePump()
	go c.readPump(h)
}

func (c *client) writePump() {
	ticker := time.NewTicker(pingInterval)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, message); err != nil {
				return
			}

		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// readPump 只处理控制帧，客户端消息被忽略
func (c *client) readPump(h *Hub) {
	defer func() {
		select {
		case h.unregister <- c:
		case <-h.done:
		}
		c.conn.Close()
	}()

	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})
	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				h.log.Debug("feed client read error", zap.String("client", c.id), zap.Error(err))
			}
			return
		}
	}
}
