package handler

import (
	"net/http"
	"tutor-connect-go/internal/config"
	"tutor-connect-go/internal/repository"
	"tutor-connect-go/internal/service"
	"tutor-connect-go/pkg/log"

	"github.com/gin-gonic/gin"
)

// ProfileHandler 负责处理档案、导师/队友列表相关的 API 请求。
type ProfileHandler struct {
	profileService service.ProfileService
	searchService  service.SearchService
}

// NewProfileHandler 创建一个新的 ProfileHandler 实例。
func NewProfileHandler(profileService service.ProfileService, searchService service.SearchService) *ProfileHandler {
	return &ProfileHandler{profileService: profileService, searchService: searchService}
}

// GetMyProfile 返回当前登录用户的档案。
func (h *ProfileHandler) GetMyProfile(c *gin.Context) {
	uid := c.GetString("uid")
	profile, err := h.profileService.GetProfile(c.Request.Context(), uid)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"code": http.StatusNotFound, "message": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"code": http.StatusOK, "data": profile, "message": "success"})
}

// GetProfile 返回指定用户的档案。
func (h *ProfileHandler) GetProfile(c *gin.Context) {
	uid := c.Param("uid")
	profile, err := h.profileService.GetProfile(c.Request.Context(), uid)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"code": http.StatusNotFound, "message": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"code": http.StatusOK, "data": profile, "message": "success"})
}

// UpdateMyProfile 更新当前登录用户的档案。
func (h *ProfileHandler) UpdateMyProfile(c *gin.Context) {
	var req service.ProfileUpdate
	if err := c.ShouldBindJSON(&req); err != nil {
		log.Warnf("UpdateMyProfile: Invalid request payload, error: %v", err)
		c.JSON(http.StatusBadRequest, gin.H{"code": http.StatusBadRequest, "message": "无效的请求负载"})
		return
	}

	uid := c.GetString("uid")
	profile, err := h.profileService.UpdateProfile(c.Request.Context(), uid, req)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"code": http.StatusBadRequest, "message": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"code": http.StatusOK, "data": profile, "message": "档案更新成功"})
}

// BecomeTutor 把当前用户注册为导师。
func (h *ProfileHandler) BecomeTutor(c *gin.Context) {
	var req service.TutorRegistration
	if err := c.ShouldBindJSON(&req); err != nil {
		log.Warnf("BecomeTutor: Invalid request payload, error: %v", err)
		c.JSON(http.StatusBadRequest, gin.H{"code": http.StatusBadRequest, "message": "无效的请求负载"})
		return
	}

	uid := c.GetString("uid")
	profile, err := h.profileService.BecomeTutor(c.Request.Context(), uid, req)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"code": http.StatusBadRequest, "message": err.Error()})
		return
	}

	log.Infof("User '%s' registered as tutor, subjects: %v", uid, req.Subjects)
	c.JSON(http.StatusOK, gin.H{"code": http.StatusOK, "data": profile, "message": "导师注册成功"})
}

// UploadAvatar 上传当前用户的头像。
func (h *ProfileHandler) UploadAvatar(c *gin.Context) {
	fileHeader, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"code": http.StatusBadRequest, "message": "缺少头像文件"})
		return
	}
	file, err := fileHeader.Open()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"code": http.StatusInternalServerError, "message": "读取头像文件失败"})
		return
	}
	defer file.Close()

	uid := c.GetString("uid")
	photoURL, err := h.profileService.UploadAvatar(
		c.Request.Context(), uid,
		fileHeader.Filename,
		fileHeader.Header.Get("Content-Type"),
		file, fileHeader.Size,
	)
	if err != nil {
		log.Errorf("UploadAvatar: failed for user '%s', error: %v", uid, err)
		c.JSON(http.StatusInternalServerError, gin.H{"code": http.StatusInternalServerError, "message": "头像上传失败"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"code": http.StatusOK, "data": gin.H{"photoURL": photoURL}, "message": "头像上传成功"})
}

// ListTutors 返回导师列表。优先走搜索索引，索引失败时退回数据库。
func (h *ProfileHandler) ListTutors(c *gin.Context) {
	subject := c.Query("subject")
	department := c.Query("department")

	docs, total, err := h.searchService.SearchTutors(c.Request.Context(), subject, department, config.Conf.Assistant.SearchTopK)
	if err == nil {
		c.JSON(http.StatusOK, gin.H{"code": http.StatusOK, "data": gin.H{"items": docs, "total": total}, "message": "success"})
		return
	}
	log.Warnf("ListTutors: 搜索索引不可用，退回数据库: %v", err)

	profiles, dbErr := h.profileService.ListTutors(repository.ProfileFilter{Subject: subject, Department: department})
	if dbErr != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"code": http.StatusInternalServerError, "message": dbErr.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"code": http.StatusOK, "data": gin.H{"items": profiles, "total": len(profiles)}, "message": "success"})
}

// ListTeammates 返回候选队友列表。优先走搜索索引，索引失败时退回数据库。
func (h *ProfileHandler) ListTeammates(c *gin.Context) {
	skill := c.Query("skill")
	department := c.Query("department")

	docs, total, err := h.searchService.SearchTeammates(c.Request.Context(), skill, department, config.Conf.Assistant.SearchTopK)
	if err == nil {
		c.JSON(http.StatusOK, gin.H{"code": http.StatusOK, "data": gin.H{"items": docs, "total": total}, "message": "success"})
		return
	}
	log.Warnf("ListTeammates: 搜索索引不可用，退回数据库: %v", err)

	profiles, dbErr := h.profileService.ListTeammates(repository.ProfileFilter{Skill: skill, Department: department})
	if dbErr != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"code": http.StatusInternalServerError, "message": dbErr.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"code": http.StatusOK, "data": gin.H{"items": profiles, "total": len(profiles)}, "message": "success"})
}

// SearchProfiles 对档案做自由文本检索。
func (h *ProfileHandler) SearchProfiles(c *gin.Context) {
	query := c.Query("q")
	if query == "" {
		c.JSON(http.StatusBadRequest, gin.H{"code": http.StatusBadRequest, "message": "缺少查询参数 q"})
		return
	}

	docs, total, err := h.searchService.SearchProfiles(c.Request.Context(), query, config.Conf.Assistant.SearchTopK)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"code": http.StatusInternalServerError, "message": "搜索失败"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"code": http.StatusOK, "data": gin.H{"items": docs, "total": total}, "message": "success"})
}
