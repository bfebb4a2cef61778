package model

import (
	"errors"
	"strings"
	"time"
	"unicode/utf8"
)

// 聊天室类型。
const (
	RoomTypeDM     = "dm"
	RoomTypePublic = "public"
)

// ChatRoom 对应于数据库中的 'chat_rooms' 表。
// dm 房间通过 DmKey（两个 uid 排序后以下划线拼接）保证唯一；
// public 房间使用 Title 展示，Members 为空表示对所有人开放。
type ChatRoom struct {
	ID          string     `gorm:"type:varchar(36);primaryKey" json:"id"`
	Type        string     `gorm:"type:varchar(10);not null;index" json:"type"`
	Title       string     `gorm:"type:varchar(100)" json:"title,omitempty"`
	Description string     `gorm:"type:varchar(255)" json:"description,omitempty"`
	DmKey       *string    `gorm:"type:varchar(80);uniqueIndex" json:"dmKey,omitempty"`
	Members     StringList `gorm:"type:json" json:"members"`
	CreatedAt   time.Time  `gorm:"autoCreateTime" json:"createdAt"`
}

func (ChatRoom) TableName() string {
	return "chat_rooms"
}

// Validate 在写入存储前校验房间记录。
func (r *ChatRoom) Validate() error {
	switch r.Type {
	case RoomTypeDM:
		if r.DmKey == nil || *r.DmKey == "" {
			return errors.New("dm 房间缺少 dmKey")
		}
		if len(r.Members) != 2 {
			return errors.New("dm 房间必须恰好包含两名成员")
		}
	case RoomTypePublic:
		if r.Title == "" {
			return errors.New("public 房间缺少标题")
		}
	default:
		return errors.New("未知的房间类型: " + r.Type)
	}
	return nil
}

// DmKeyFor 为一对用户生成稳定的 dmKey：uid 排序后以下划线拼接。
func DmKeyFor(uidA, uidB string) string {
	if uidA > uidB {
		uidA, uidB = uidB, uidA
	}
	return uidA + "_" + uidB
}

// RoomMessage 对应于数据库中的 'room_messages' 表。
type RoomMessage struct {
	ID         string    `gorm:"type:varchar(36);primaryKey" json:"id"`
	RoomID     string    `gorm:"type:varchar(36);not null;index" json:"roomId"`
	SenderUID  string    `gorm:"type:varchar(36);not null" json:"senderUid"`
	SenderName string    `gorm:"type:varchar(100)" json:"senderName"`
	Text       string    `gorm:"type:varchar(2000);not null" json:"text"`
	CreatedAt  time.Time `gorm:"autoCreateTime;index" json:"createdAt"`
}

func (RoomMessage) TableName() string {
	return "room_messages"
}

// ValidateText 在写入存储前校验消息文本长度。
func (m *RoomMessage) ValidateText(maxLen int) error {
	trimmed := strings.TrimSpace(m.Text)
	if trimmed == "" {
		return errors.New("消息不能为空")
	}
	if utf8.RuneCountInString(trimmed) > maxLen {
		return errors.New("消息长度超出限制")
	}
	m.Text = trimmed
	return nil
}
