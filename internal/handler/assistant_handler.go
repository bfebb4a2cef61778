package handler

import (
	"encoding/json"
	"net/http"
	"sync"
	"tutor-connect-go/internal/assistant"
	"tutor-connect-go/internal/service"
	"tutor-connect-go/pkg/log"
	"tutor-connect-go/pkg/token"

	"github.com/gin-gonic/gin"
)

// AssistantHandler 负责处理校园助手的 WebSocket 对话连接。
type AssistantHandler struct {
	assistantService service.AssistantService
	jwtManager       *token.JWTManager
}

// NewAssistantHandler 创建一个新的 AssistantHandler 实例。
func NewAssistantHandler(assistantService service.AssistantService, jwtManager *token.JWTManager) *AssistantHandler {
	return &AssistantHandler{assistantService: assistantService, jwtManager: jwtManager}
}

// inboundAssistantMessage 是助手对话的上行帧。
type inboundAssistantMessage struct {
	Text string `json:"text"`
}

// assistantFrame 是助手对话的下行帧。
// type 取值：greeting / reply / navigate / error。
type assistantFrame struct {
	Type       string                `json:"type"`
	Text       string                `json:"text,omitempty"`
	Navigation *assistant.Navigation `json:"navigation,omitempty"`
	SessionID  string                `json:"sessionId,omitempty"`
}

// Handle 处理一个助手对话连接。
// 连接建立即打开会话并下发一次欢迎语；之后每条文本帧走
// 识别 → 搜索 → 回复的流程，回复帧先发，导航帧延迟后发；
// 连接断开时销毁会话，对话状态不跨连接保留。
func (h *AssistantHandler) Handle(c *gin.Context) {
	claims, err := h.jwtManager.VerifyToken(c.Param("token"))
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"code": http.StatusUnauthorized, "message": "无效的 token"})
		return
	}

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.Error("WebSocket 升级失败", err)
		return
	}
	defer conn.Close()

	sessionID, greeting := h.assistantService.OpenSession()
	defer h.assistantService.CloseSession(sessionID)

	log.Infof("助手会话已打开: session=%s, user=%s", sessionID, claims.Username)

	// 写操作跨两个 goroutine（读循环与延迟导航回调），必须串行化
	var writeMu sync.Mutex
	writeFrame := func(frame assistantFrame) {
		writeMu.Lock()
		defer writeMu.Unlock()
		if err := conn.WriteJSON(frame); err != nil {
			log.Warnf("写入助手帧失败: %v", err)
		}
	}

	writeFrame(assistantFrame{Type: "greeting", Text: greeting, SessionID: sessionID})

	for {
		_, raw, err := conn.ReadMessage()
		if err != nil {
			log.Warnf("从 WebSocket 读取消息失败: %v", err)
			break
		}

		var inbound inboundAssistantMessage
		if err := json.Unmarshal(raw, &inbound); err != nil {
			writeFrame(assistantFrame{Type: "error", Text: "无法解析消息"})
			continue
		}

		reply, ok := h.assistantService.HandleMessage(c.Request.Context(), sessionID, inbound.Text)
		if !ok {
			writeFrame(assistantFrame{Type: "error", Text: "会话不可用"})
			continue
		}

		h.assistantService.Deliver(reply,
			func(text string) {
				writeFrame(assistantFrame{Type: "reply", Text: text})
			},
			func(nav assistant.Navigation) {
				writeFrame(assistantFrame{Type: "navigate", Navigation: &nav})
			})
	}

	log.Infof("助手会话已关闭: session=%s", sessionID)
}
