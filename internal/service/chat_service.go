package service

import (
	"context"
	"errors"
	"time"
	"tutor-connect-go/internal/config"
	"tutor-connect-go/internal/model"
	"tutor-connect-go/internal/repository"
	"tutor-connect-go/pkg/events"
	"tutor-connect-go/pkg/kafka"
	"tutor-connect-go/pkg/log"

	"github.com/google/uuid"
)

// defaultPublicRooms 是启动时保证存在的公共聊天室。
var defaultPublicRooms = []struct {
	Title       string
	Description string
}{
	{"General", "Campus-wide general discussion"},
	{"Hackathons", "Team up and talk hackathons"},
	{"Academics", "Courses, exams and study groups"},
	{"Placements", "Internships and placement prep"},
	{"Off-topic", "Everything else"},
}

// ErrNotRoomMember 表示发送者不是私聊房间的成员。
var ErrNotRoomMember = errors.New("不是该房间的成员")

// ChatService 接口定义了聊天室与消息相关的业务操作。
type ChatService interface {
	// EnsureDefaultRooms 先清理重名的公共房间，再补齐缺失的默认房间。
	EnsureDefaultRooms(ctx context.Context) error
	// GetOrCreateDmRoom 返回两名用户之间的私聊房间，不存在则创建。
	GetOrCreateDmRoom(uidA, uidB string) (*model.ChatRoom, error)
	ListPublicRooms() ([]model.ChatRoom, error)
	ListDmRooms(uid string) ([]model.ChatRoom, error)
	SendMessage(ctx context.Context, roomID, senderUID, senderName, text string) (*model.RoomMessage, error)
	ListMessages(roomID string, limit int) ([]model.RoomMessage, error)
	GetMessage(messageID string) (*model.RoomMessage, error)
}

// chatService 是 ChatService 接口的实现。
type chatService struct {
	roomRepo repository.RoomRepository
}

// NewChatService 创建一个新的 ChatService 实例。
func NewChatService(roomRepo repository.RoomRepository) ChatService {
	return &chatService{roomRepo: roomRepo}
}

// EnsureDefaultRooms 幂等地维护默认公共房间。
// 顺序固定：先删除每个标题下多余的重复房间（保留最早创建的一个），
// 再为缺失的标题创建新房间。清理在播种之前，避免刚播种的房间又被当作重复删掉。
func (s *chatService) EnsureDefaultRooms(ctx context.Context) error {
	rooms, err := s.roomRepo.FindPublicRooms()
	if err != nil {
		return err
	}

	// 按标题分组，保留每组中创建时间最早的房间
	keep := make(map[string]model.ChatRoom)
	var duplicates []string
	for _, room := range rooms {
		existing, ok := keep[room.Title]
		if !ok {
			keep[room.Title] = room
			continue
		}
		if room.CreatedAt.Before(existing.CreatedAt) {
			duplicates = append(duplicates, existing.ID)
			keep[room.Title] = room
		} else {
			duplicates = append(duplicates, room.ID)
		}
	}
	if len(duplicates) > 0 {
		log.Infof("清理 %d 个重复的公共房间", len(duplicates))
		if err := s.roomRepo.DeleteRooms(duplicates); err != nil {
			return err
		}
	}

	// 补齐缺失的默认房间
	for _, def := range defaultPublicRooms {
		if _, ok := keep[def.Title]; ok {
			continue
		}
		room := &model.ChatRoom{
			ID:          uuid.NewString(),
			Type:        model.RoomTypePublic,
			Title:       def.Title,
			Description: def.Description,
		}
		if err := s.roomRepo.CreateRoom(room); err != nil {
			return err
		}
		log.Infof("创建默认公共房间: %s", def.Title)
	}
	return nil
}

// GetOrCreateDmRoom 返回两名用户之间的私聊房间。
// dmKey 由两个 uid 排序拼接而成，数据库唯一索引保证同一对用户只有一个房间。
func (s *chatService) GetOrCreateDmRoom(uidA, uidB string) (*model.ChatRoom, error) {
	if uidA == uidB {
		return nil, errors.New("不能和自己建立私聊")
	}

	dmKey := model.DmKeyFor(uidA, uidB)
	room, err := s.roomRepo.FindDmRoom(dmKey)
	if err != nil {
		return nil, err
	}
	if room != nil {
		return room, nil
	}

	room = &model.ChatRoom{
		ID:      uuid.NewString(),
		Type:    model.RoomTypeDM,
		DmKey:   &dmKey,
		Members: []string{uidA, uidB},
	}
	if err := s.roomRepo.CreateRoom(room); err != nil {
		// 并发创建撞上唯一索引时重查一次
		if existing, findErr := s.roomRepo.FindDmRoom(dmKey); findErr == nil && existing != nil {
			return existing, nil
		}
		return nil, err
	}
	return room, nil
}

// ListPublicRooms 返回全部公共房间。
func (s *chatService) ListPublicRooms() ([]model.ChatRoom, error) {
	return s.roomRepo.FindPublicRooms()
}

// ListDmRooms 返回某用户参与的全部私聊房间。
func (s *chatService) ListDmRooms(uid string) ([]model.ChatRoom, error) {
	return s.roomRepo.FindDmRoomsFor(uid)
}

// SendMessage 校验并持久化一条消息，随后发布消息事件供在线订阅者消费。
// 校验失败不写入；消息一旦持久化即进入房间的只追加消息流。
func (s *chatService) SendMessage(ctx context.Context, roomID, senderUID, senderName, text string) (*model.RoomMessage, error) {
	room, err := s.roomRepo.FindByID(roomID)
	if err != nil {
		return nil, errors.New("房间不存在")
	}
	if room.Type == model.RoomTypeDM && !room.Members.Contains(senderUID) {
		return nil, ErrNotRoomMember
	}

	message := &model.RoomMessage{
		ID:         uuid.NewString(),
		RoomID:     roomID,
		SenderUID:  senderUID,
		SenderName: senderName,
		Text:       text,
	}
	if err := message.ValidateText(config.Conf.Chat.MessageMaxLength); err != nil {
		return nil, err
	}
	if err := s.roomRepo.SaveMessage(message); err != nil {
		return nil, err
	}

	if err := kafka.PublishChangeEvent(events.ChangeEvent{
		Type:       events.TypeMessageCreated,
		UID:        senderUID,
		RoomID:     roomID,
		MessageID:  message.ID,
		OccurredAt: time.Now(),
	}); err != nil {
		log.Errorf("发布消息事件失败: room=%s, err=%v", roomID, err)
	}

	return message, nil
}

// ListMessages 返回房间内最近的消息，按时间升序。
func (s *chatService) ListMessages(roomID string, limit int) ([]model.RoomMessage, error) {
	return s.roomRepo.FindMessages(roomID, limit)
}

// GetMessage 根据 ID 返回一条消息。
func (s *chatService) GetMessage(messageID string) (*model.RoomMessage, error) {
	return s.roomRepo.FindMessage(messageID)
}
