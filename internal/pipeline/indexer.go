// Package pipeline 实现变更事件流的消费端。
// 它把事件应用到三个地方：搜索索引（档案文档）、Redis 快照（作废）
// 与进程内订阅者（websocket 推送）。所有应用都是幂等的，事件
// 重复投递不会造成状态偏差。
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"tutor-connect-go/internal/model"
	"tutor-connect-go/internal/repository"
	"tutor-connect-go/internal/subscription"
	"tutor-connect-go/pkg/es"
	"tutor-connect-go/pkg/events"
	"tutor-connect-go/pkg/log"

	"gorm.io/gorm"
)

// 进程内订阅主题。
const (
	TopicRequests = "requests"
)

// RoomTopic 返回某个房间的订阅主题名。
func RoomTopic(roomID string) string {
	return "room:" + roomID
}

// ProfileTopic 返回某个档案的订阅主题名。
func ProfileTopic(uid string) string {
	return "profile:" + uid
}

// Indexer 消费变更事件并把它们应用到下游。
type Indexer struct {
	profileRepo repository.ProfileRepository
	roomRepo    repository.RoomRepository
	cache       repository.ProfileCache
	hub         *subscription.Hub
	indexName   string
}

// NewIndexer 创建一个新的 Indexer 实例。
func NewIndexer(profileRepo repository.ProfileRepository, roomRepo repository.RoomRepository, cache repository.ProfileCache, hub *subscription.Hub, indexName string) *Indexer {
	return &Indexer{
		profileRepo: profileRepo,
		roomRepo:    roomRepo,
		cache:       cache,
		hub:         hub,
		indexName:   indexName,
	}
}

// Process 处理一条变更事件。返回错误时消费循环会按重试策略重投。
func (p *Indexer) Process(ctx context.Context, event events.ChangeEvent) error {
	switch event.Type {
	case events.TypeProfileChanged, events.TypeRatingChanged:
		return p.applyProfileChange(ctx, event)
	case events.TypeMessageCreated:
		return p.applyMessageCreated(event)
	case events.TypeRequestCreated:
		p.hub.Publish(TopicRequests, event)
		return nil
	default:
		// 未知事件类型直接跳过，不视为失败
		log.Warnf("跳过未知类型的变更事件: %s", event.Type)
		return nil
	}
}

// applyProfileChange 用数据库中的当前状态刷新档案的索引文档与快照。
// 事件只携带 uid，不携带数据，重放永远收敛到数据库的最新状态。
func (p *Indexer) applyProfileChange(ctx context.Context, event events.ChangeEvent) error {
	profile, err := p.profileRepo.FindByUID(event.UID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			// 档案已删除：清掉索引文档与快照
			if delErr := es.DeleteProfile(ctx, p.indexName, event.UID); delErr != nil {
				return delErr
			}
			return p.cache.Invalidate(ctx, event.UID)
		}
		return fmt.Errorf("读取档案失败: %w", err)
	}

	if err := es.IndexProfile(ctx, p.indexName, model.EsProfileFromModel(profile)); err != nil {
		return fmt.Errorf("刷新档案索引失败: %w", err)
	}
	if err := p.cache.Invalidate(ctx, event.UID); err != nil {
		return fmt.Errorf("作废档案快照失败: %w", err)
	}

	p.hub.Publish(ProfileTopic(event.UID), profile)
	return nil
}

// applyMessageCreated 把新消息推给房间的在线订阅者。
func (p *Indexer) applyMessageCreated(event events.ChangeEvent) error {
	message, err := p.roomRepo.FindMessage(event.MessageID)
	if err != nil {
		return fmt.Errorf("读取消息失败: %w", err)
	}
	p.hub.Publish(RoomTopic(event.RoomID), message)
	return nil
}
