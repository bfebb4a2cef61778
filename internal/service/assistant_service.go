package service

import (
	"context"
	"sync"
	"time"
	"tutor-connect-go/internal/assistant"
	"tutor-connect-go/internal/config"
	"tutor-connect-go/pkg/log"

	"github.com/google/uuid"
)

// AssistantService 接口定义了校园助手的会话编排操作。
// 每个对话连接对应一个会话；会话随连接打开创建、关闭销毁。
type AssistantService interface {
	// OpenSession 创建并打开一个新会话，返回会话 ID 与欢迎语。
	OpenSession() (sessionID, greeting string)
	// HandleMessage 处理一条用户消息：识别意图，必要时触发搜索，生成回复。
	HandleMessage(ctx context.Context, sessionID, text string) (assistant.Reply, bool)
	// CloseSession 关闭并销毁会话。
	CloseSession(sessionID string)
	// Deliver 下发一条回复：先发送文本，导航在固定延迟后触发。
	Deliver(reply assistant.Reply, sendText func(string), navigate func(assistant.Navigation))
	// Transcript 返回会话记录（调试用）。
	Transcript(sessionID string) ([]assistant.Entry, bool)
}

// assistantService 是 AssistantService 接口的实现。
type assistantService struct {
	searchSvc SearchService
	cfg       config.AssistantConfig
	sessions  sync.Map // sessionID -> *assistant.Session
}

// NewAssistantService 创建一个新的 AssistantService 实例。
func NewAssistantService(searchSvc SearchService, cfg config.AssistantConfig) AssistantService {
	return &assistantService{searchSvc: searchSvc, cfg: cfg}
}

// OpenSession 创建一个新会话并打开它。
// 欢迎语由会话保证只生成一次；新会话首次打开必然带欢迎语。
func (s *assistantService) OpenSession() (string, string) {
	sess := assistant.NewSession(uuid.NewString())
	greeting, _ := sess.Open()
	s.sessions.Store(sess.ID(), sess)
	return sess.ID(), greeting
}

// HandleMessage 处理一条用户消息。
// find_tutor / find_teammate 意图会触发一次搜索，把命中数喂给回复生成器；
// 搜索失败不阻断对话，回复退化为不带命中数的版本。
func (s *assistantService) HandleMessage(ctx context.Context, sessionID, text string) (assistant.Reply, bool) {
	value, ok := s.sessions.Load(sessionID)
	if !ok {
		return assistant.Reply{}, false
	}
	sess := value.(*assistant.Session)

	return sess.Submit(text, s.cfg.MinQueryLength, func(res assistant.Result, sctx assistant.Context) assistant.Reply {
		var resultCount *int
		switch res.Intent {
		case assistant.IntentFindTutor:
			if _, count, err := s.searchSvc.SearchTutors(ctx, res.Subject, res.Department, s.cfg.SearchTopK); err == nil {
				resultCount = &count
			} else {
				log.Warnf("助手搜索导师失败: %v", err)
			}
		case assistant.IntentFindTeammate:
			if _, count, err := s.searchSvc.SearchTeammates(ctx, res.Subject, res.Department, s.cfg.SearchTopK); err == nil {
				resultCount = &count
			} else {
				log.Warnf("助手搜索队友失败: %v", err)
			}
		}
		return assistant.Respond(res, sctx, resultCount)
	})
}

// CloseSession 关闭并销毁会话，状态不跨会话保留。
func (s *assistantService) CloseSession(sessionID string) {
	if value, ok := s.sessions.LoadAndDelete(sessionID); ok {
		value.(*assistant.Session).Close()
	}
}

// Deliver 下发一条回复。文本立即发送；附带导航时，导航在固定延迟后
// 触发，保证用户先读到回复再发生跳转。
func (s *assistantService) Deliver(reply assistant.Reply, sendText func(string), navigate func(assistant.Navigation)) {
	sendText(reply.Text)
	if reply.Navigation == nil {
		return
	}
	nav := *reply.Navigation
	delay := time.Duration(s.cfg.NavigationDelayMs) * time.Millisecond
	time.AfterFunc(delay, func() {
		navigate(nav)
	})
}

// Transcript 返回会话记录。
func (s *assistantService) Transcript(sessionID string) ([]assistant.Entry, bool) {
	value, ok := s.sessions.Load(sessionID)
	if !ok {
		return nil, false
	}
	return value.(*assistant.Session).Transcript(), true
}
