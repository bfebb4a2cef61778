// Package subscription 提供进程内的变更订阅分发。
// 变更事件流 (Kafka) 负责跨进程传递，本包把 pipeline 消费到的事件
// 扇出给当前进程内的在线订阅者（websocket 连接）。
package subscription

import "sync"

// Event 是推送给订阅者的载荷。
type Event struct {
	Topic   string      `json:"topic"`
	Payload interface{} `json:"payload"`
}

// Subscription 是一次订阅的句柄，C 上收事件，用完必须 Cancel。
type Subscription struct {
	C      <-chan Event
	hub    *Hub
	topic  string
	ch     chan Event
	cancel sync.Once
}

// Cancel 取消订阅并关闭事件通道。
func (s *Subscription) Cancel() {
	s.cancel.Do(func() {
		s.hub.remove(s.topic, s.ch)
		close(s.ch)
	})
}

// Hub 按主题管理订阅者集合。
// 发布是非阻塞的：订阅者的缓冲满了就丢弃该条事件，慢消费者
// 不能拖住发布方；订阅侧据此只做提示性推送，不做可靠投递。
type Hub struct {
	mu     sync.RWMutex
	topics map[string]map[chan Event]struct{}
}

// NewHub 创建一个新的 Hub。
func NewHub() *Hub {
	return &Hub{topics: make(map[string]map[chan Event]struct{})}
}

// Subscribe 订阅一个主题。
func (h *Hub) Subscribe(topic string) *Subscription {
	ch := make(chan Event, 16)
	h.mu.Lock()
	subs, ok := h.topics[topic]
	if !ok {
		subs = make(map[chan Event]struct{})
		h.topics[topic] = subs
	}
	subs[ch] = struct{}{}
	h.mu.Unlock()
	return &Subscription{C: ch, hub: h, topic: topic, ch: ch}
}

// Publish 向主题的所有订阅者投递一条事件。
func (h *Hub) Publish(topic string, payload interface{}) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	for ch := range h.topics[topic] {
		select {
		case ch <- Event{Topic: topic, Payload: payload}:
		default:
			// 订阅者跟不上就丢弃，推送只是提示
		}
	}
}

// SubscriberCount 返回某主题当前的订阅者数量。
func (h *Hub) SubscriberCount(topic string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.topics[topic])
}

func (h *Hub) remove(topic string, ch chan Event) {
	h.mu.Lock()
	defer h.mu.Unlock()
	subs, ok := h.topics[topic]
	if !ok {
		return
	}
	delete(subs, ch)
	if len(subs) == 0 {
		delete(h.topics, topic)
	}
}
