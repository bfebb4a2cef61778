package handler

import (
	"net/http"
	"tutor-connect-go/internal/model"
	"tutor-connect-go/internal/service"
	"tutor-connect-go/pkg/log"

	"github.com/gin-gonic/gin"
)

// RequestHandler 负责处理学生求助请求相关的 API。
type RequestHandler struct {
	requestService service.RequestService
}

// NewRequestHandler 创建一个新的 RequestHandler 实例。
func NewRequestHandler(requestService service.RequestService) *RequestHandler {
	return &RequestHandler{requestService: requestService}
}

// PostRequestBody 定义了发布求助请求 API 的请求体结构。
type PostRequestBody struct {
	Name        string `json:"name" binding:"required"`
	Email       string `json:"email"`
	Subject     string `json:"subject" binding:"required"`
	Description string `json:"description"`
	Year        string `json:"year"`
	Department  string `json:"department"`
}

// PostRequest 发布一条求助请求。
func (h *RequestHandler) PostRequest(c *gin.Context) {
	var req PostRequestBody
	if err := c.ShouldBindJSON(&req); err != nil {
		log.Warnf("PostRequest: Invalid request payload, error: %v", err)
		c.JSON(http.StatusBadRequest, gin.H{"code": http.StatusBadRequest, "message": "无效的请求负载：姓名和科目不能为空"})
		return
	}

	request := &model.StudentRequest{
		UID:         c.GetString("uid"),
		Name:        req.Name,
		Email:       req.Email,
		Subject:     req.Subject,
		Description: req.Description,
		Year:        req.Year,
		Department:  req.Department,
	}
	if err := h.requestService.PostRequest(request); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"code": http.StatusBadRequest, "message": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"code": http.StatusOK, "data": request, "message": "求助请求发布成功"})
}

// ListRequests 按科目/院系过滤返回求助请求列表。
func (h *RequestHandler) ListRequests(c *gin.Context) {
	requests, err := h.requestService.ListRequests(c.Query("subject"), c.Query("department"))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"code": http.StatusInternalServerError, "message": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"code": http.StatusOK, "data": requests, "message": "success"})
}
