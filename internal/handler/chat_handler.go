package handler

import (
	"encoding/json"
	"net/http"
	"strconv"
	"tutor-connect-go/internal/pipeline"
	"tutor-connect-go/internal/service"
	"tutor-connect-go/internal/subscription"
	"tutor-connect-go/pkg/log"
	"tutor-connect-go/pkg/token"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true // 允许所有来源
	},
}

// ChatHandler 负责处理聊天室的 REST 接口与 WebSocket 连接。
type ChatHandler struct {
	chatService service.ChatService
	userService service.UserService
	hub         *subscription.Hub
	jwtManager  *token.JWTManager
}

// NewChatHandler 创建一个新的 ChatHandler 实例。
func NewChatHandler(chatService service.ChatService, userService service.UserService, hub *subscription.Hub, jwtManager *token.JWTManager) *ChatHandler {
	return &ChatHandler{
		chatService: chatService,
		userService: userService,
		hub:         hub,
		jwtManager:  jwtManager,
	}
}

// ListPublicRooms 返回全部公共聊天室。
func (h *ChatHandler) ListPublicRooms(c *gin.Context) {
	rooms, err := h.chatService.ListPublicRooms()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"code": http.StatusInternalServerError, "message": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"code": http.StatusOK, "data": rooms, "message": "success"})
}

// ListMyDmRooms 返回当前用户参与的私聊房间。
func (h *ChatHandler) ListMyDmRooms(c *gin.Context) {
	rooms, err := h.chatService.ListDmRooms(c.GetString("uid"))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"code": http.StatusInternalServerError, "message": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"code": http.StatusOK, "data": rooms, "message": "success"})
}

// OpenDmRequest 定义了建立私聊 API 的请求体结构。
type OpenDmRequest struct {
	PeerUID string `json:"peerUid" binding:"required"`
}

// OpenDm 返回当前用户与对方之间的私聊房间，不存在则创建。
func (h *ChatHandler) OpenDm(c *gin.Context) {
	var req OpenDmRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"code": http.StatusBadRequest, "message": "无效的请求负载：peerUid 不能为空"})
		return
	}

	room, err := h.chatService.GetOrCreateDmRoom(c.GetString("uid"), req.PeerUID)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"code": http.StatusBadRequest, "message": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"code": http.StatusOK, "data": room, "message": "success"})
}

// ListMessages 返回房间内最近的消息。
func (h *ChatHandler) ListMessages(c *gin.Context) {
	limit := 100
	if v, ok := c.GetQuery("limit"); ok {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			limit = n
		}
	}

	messages, err := h.chatService.ListMessages(c.Param("id"), limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"code": http.StatusInternalServerError, "message": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"code": http.StatusOK, "data": messages, "message": "success"})
}

// inboundChatMessage 是 WebSocket 上行帧的结构。
type inboundChatMessage struct {
	Text string `json:"text"`
}

// outboundChatFrame 是 WebSocket 下行帧的结构。
type outboundChatFrame struct {
	Type    string      `json:"type"`
	Payload interface{} `json:"payload,omitempty"`
	Message string      `json:"message,omitempty"`
}

// HandleRoom 处理一个房间的 WebSocket 连接。
// token 放在路径参数里，因为浏览器的 WebSocket API 无法自定义请求头。
// 连接建立后订阅房间主题：本进程或其它进程写入的消息都会经由
// 变更事件流与 Hub 推送到这里。
func (h *ChatHandler) HandleRoom(c *gin.Context) {
	claims, err := h.jwtManager.VerifyToken(c.Param("token"))
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"code": http.StatusUnauthorized, "message": "无效的 token"})
		return
	}
	user, err := h.userService.GetByUID(claims.UID)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"code": http.StatusUnauthorized, "message": "用户不存在"})
		return
	}

	roomID := c.Param("id")

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.Error("WebSocket 升级失败", err)
		return
	}
	defer conn.Close()

	log.Infof("房间 WebSocket 连接已建立: room=%s, user=%s", roomID, user.Username)

	// 订阅房间主题，写协程把推送转发到连接上
	sub := h.hub.Subscribe(pipeline.RoomTopic(roomID))
	defer sub.Cancel()

	done := make(chan struct{})
	go func() {
		defer close(done)
		for ev := range sub.C {
			frame := outboundChatFrame{Type: "message", Payload: ev.Payload}
			if err := conn.WriteJSON(frame); err != nil {
				return
			}
		}
	}()

	for {
		_, raw, err := conn.ReadMessage()
		if err != nil {
			log.Warnf("从 WebSocket 读取消息失败: %v", err)
			break
		}

		var inbound inboundChatMessage
		if err := json.Unmarshal(raw, &inbound); err != nil {
			_ = conn.WriteJSON(outboundChatFrame{Type: "error", Message: "无法解析消息"})
			continue
		}

		if _, err := h.chatService.SendMessage(c.Request.Context(), roomID, user.UID, user.Username, inbound.Text); err != nil {
			_ = conn.WriteJSON(outboundChatFrame{Type: "error", Message: err.Error()})
			continue
		}
		// 发送成功不回显，消息经变更事件流推回给所有订阅者（包括发送者）
	}

	sub.Cancel()
	<-done
}
