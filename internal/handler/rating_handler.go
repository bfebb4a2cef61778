package handler

import (
	"errors"
	"net/http"
	"tutor-connect-go/internal/service"
	"tutor-connect-go/pkg/log"

	"github.com/gin-gonic/gin"
)

// RatingHandler 负责处理导师评分相关的 API 请求。
type RatingHandler struct {
	ratingService service.RatingService
}

// NewRatingHandler 创建一个新的 RatingHandler 实例。
func NewRatingHandler(ratingService service.RatingService) *RatingHandler {
	return &RatingHandler{ratingService: ratingService}
}

// SubmitRatingRequest 定义了提交评分 API 的请求体结构。
type SubmitRatingRequest struct {
	Score   int    `json:"score"`
	Comment string `json:"comment"`
}

// SubmitRating 处理评分提交请求。
// 同一用户对同一导师重复提交会覆盖此前的评分。
func (h *RatingHandler) SubmitRating(c *gin.Context) {
	var req SubmitRatingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		log.Warnf("SubmitRating: Invalid request payload, error: %v", err)
		c.JSON(http.StatusBadRequest, gin.H{"code": http.StatusBadRequest, "message": "无效的请求负载"})
		return
	}

	tutorUID := c.Param("uid")
	reviewerUID := c.GetString("uid")

	profile, err := h.ratingService.SubmitRating(c.Request.Context(), tutorUID, reviewerUID, req.Score, req.Comment)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrInvalidScore),
			errors.Is(err, service.ErrCommentTooLong),
			errors.Is(err, service.ErrSelfRating):
			c.JSON(http.StatusBadRequest, gin.H{"code": http.StatusBadRequest, "message": err.Error()})
		case errors.Is(err, service.ErrTutorNotFound):
			c.JSON(http.StatusNotFound, gin.H{"code": http.StatusNotFound, "message": err.Error()})
		default:
			log.Errorf("SubmitRating: tutor=%s reviewer=%s, error: %v", tutorUID, reviewerUID, err)
			c.JSON(http.StatusInternalServerError, gin.H{"code": http.StatusInternalServerError, "message": "评分提交失败"})
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"code":    http.StatusOK,
		"message": "评分提交成功",
		"data": gin.H{
			"ratingAvg":   profile.TutorStats.RatingAvg,
			"ratingCount": profile.TutorStats.RatingCount,
		},
	})
}

// GetMyRating 返回当前用户对某导师的既有评分。
func (h *RatingHandler) GetMyRating(c *gin.Context) {
	tutorUID := c.Param("uid")
	reviewerUID := c.GetString("uid")

	rating, err := h.ratingService.GetMyRating(tutorUID, reviewerUID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"code": http.StatusInternalServerError, "message": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"code": http.StatusOK, "data": rating, "message": "success"})
}

// ListRatings 返回某导师收到的全部评分。
func (h *RatingHandler) ListRatings(c *gin.Context) {
	tutorUID := c.Param("uid")

	ratings, err := h.ratingService.ListRatings(tutorUID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"code": http.StatusInternalServerError, "message": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"code": http.StatusOK, "data": ratings, "message": "success"})
}
