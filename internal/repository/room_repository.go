package repository

import (
	"errors"
	"tutor-connect-go/internal/model"

	"gorm.io/gorm"
)

// RoomRepository 接口定义了聊天室与消息的持久化操作。
type RoomRepository interface {
	CreateRoom(room *model.ChatRoom) error
	FindByID(roomID string) (*model.ChatRoom, error)
	// FindDmRoom 按 dmKey 查找私聊房间；不存在时返回 (nil, nil)。
	FindDmRoom(dmKey string) (*model.ChatRoom, error)
	FindDmRoomsFor(uid string) ([]model.ChatRoom, error)
	FindPublicRooms() ([]model.ChatRoom, error)
	DeleteRooms(roomIDs []string) error

	SaveMessage(message *model.RoomMessage) error
	FindMessage(messageID string) (*model.RoomMessage, error)
	FindMessages(roomID string, limit int) ([]model.RoomMessage, error)
}

type roomRepository struct {
	db *gorm.DB
}

// NewRoomRepository 创建一个新的 RoomRepository 实例。
func NewRoomRepository(db *gorm.DB) RoomRepository {
	return &roomRepository{db: db}
}

// CreateRoom 创建一个聊天室，写入前做结构校验。
func (r *roomRepository) CreateRoom(room *model.ChatRoom) error {
	if err := room.Validate(); err != nil {
		return err
	}
	return r.db.Create(room).Error
}

// FindByID 根据 ID 查找聊天室。
func (r *roomRepository) FindByID(roomID string) (*model.ChatRoom, error) {
	var room model.ChatRoom
	err := r.db.First(&room, "id = ?", roomID).Error
	if err != nil {
		return nil, err
	}
	return &room, nil
}

// FindDmRoom 按 dmKey 查找私聊房间。
func (r *roomRepository) FindDmRoom(dmKey string) (*model.ChatRoom, error) {
	var room model.ChatRoom
	err := r.db.Where("type = ? AND dm_key = ?", model.RoomTypeDM, dmKey).
		First(&room).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &room, nil
}

// FindDmRoomsFor 返回某用户参与的全部私聊房间，按创建时间倒序。
func (r *roomRepository) FindDmRoomsFor(uid string) ([]model.ChatRoom, error) {
	var rooms []model.ChatRoom
	err := r.db.Where("type = ? AND JSON_CONTAINS(members, JSON_QUOTE(?))", model.RoomTypeDM, uid).
		Order("created_at DESC").
		Find(&rooms).Error
	return rooms, err
}

// FindPublicRooms 返回全部公共房间，按标题升序。
func (r *roomRepository) FindPublicRooms() ([]model.ChatRoom, error) {
	var rooms []model.ChatRoom
	err := r.db.Where("type = ?", model.RoomTypePublic).
		Order("title ASC, created_at ASC").
		Find(&rooms).Error
	return rooms, err
}

// DeleteRooms 按 ID 批量删除聊天室（用于重复房间清理）。
func (r *roomRepository) DeleteRooms(roomIDs []string) error {
	if len(roomIDs) == 0 {
		return nil
	}
	return r.db.Where("id IN ?", roomIDs).Delete(&model.ChatRoom{}).Error
}

// SaveMessage 持久化一条聊天消息。
func (r *roomRepository) SaveMessage(message *model.RoomMessage) error {
	return r.db.Create(message).Error
}

// FindMessage 根据 ID 查找一条消息。
func (r *roomRepository) FindMessage(messageID string) (*model.RoomMessage, error) {
	var message model.RoomMessage
	err := r.db.First(&message, "id = ?", messageID).Error
	if err != nil {
		return nil, err
	}
	return &message, nil
}

// FindMessages 返回房间内最近的消息，按时间升序。
func (r *roomRepository) FindMessages(roomID string, limit int) ([]model.RoomMessage, error) {
	if limit <= 0 {
		limit = 100
	}
	// 先按时间倒序取最近 limit 条，再反转为升序返回
	var recent []model.RoomMessage
	err := r.db.Where("room_id = ?", roomID).
		Order("created_at DESC").
		Limit(limit).
		Find(&recent).Error
	if err != nil {
		return nil, err
	}
	for i, j := 0, len(recent)-1; i < j; i, j = i+1, j-1 {
		recent[i], recent[j] = recent[j], recent[i]
	}
	return recent, nil
}
