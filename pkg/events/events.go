// Package events 定义了通过 Kafka 变更事件流传递的事件载荷。
// 写路径只负责把事件发出去 (fire-and-forget)；消费侧的 pipeline
// 负责把事件应用到搜索索引、快照缓存与在线订阅者。
package events

import "time"

// 事件类型常量。
const (
	TypeProfileChanged = "profile_changed"
	TypeRatingChanged  = "rating_changed"
	TypeMessageCreated = "message_created"
	TypeRequestCreated = "request_created"
)

// ChangeEvent 是变更事件流上的统一载荷。
// 具体字段按事件类型选填：Profile/Rating 事件携带 UID，
// Message 事件携带 RoomID 与 MessageID。
type ChangeEvent struct {
	Type       string    `json:"type"`
	UID        string    `json:"uid,omitempty"`
	RoomID     string    `json:"roomId,omitempty"`
	MessageID  string    `json:"messageId,omitempty"`
	RequestID  string    `json:"requestId,omitempty"`
	OccurredAt time.Time `json:"occurredAt"`
}
