package handler

import (
	"net/http"
	"strconv"
	"tutor-connect-go/internal/service"
	"tutor-connect-go/pkg/log"

	"github.com/gin-gonic/gin"
)

// AdminHandler 负责处理管理端的 API 请求。
type AdminHandler struct {
	userService service.UserService
	chatService service.ChatService
}

// NewAdminHandler 创建一个新的 AdminHandler 实例。
func NewAdminHandler(userService service.UserService, chatService service.ChatService) *AdminHandler {
	return &AdminHandler{userService: userService, chatService: chatService}
}

// ListUsers 分页返回用户列表。
func (h *AdminHandler) ListUsers(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	size, _ := strconv.Atoi(c.DefaultQuery("size", "20"))

	users, total, err := h.userService.ListUsers(page, size)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"code": http.StatusInternalServerError, "message": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"code":    http.StatusOK,
		"message": "success",
		"data": gin.H{
			"items": users,
			"total": total,
			"page":  page,
			"size":  size,
		},
	})
}

// ReseedRooms 手动触发一次默认公共房间的清理与补齐。
func (h *AdminHandler) ReseedRooms(c *gin.Context) {
	if err := h.chatService.EnsureDefaultRooms(c.Request.Context()); err != nil {
		log.Error("ReseedRooms: failed", err)
		c.JSON(http.StatusInternalServerError, gin.H{"code": http.StatusInternalServerError, "message": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"code": http.StatusOK, "message": "默认房间已就绪"})
}
