package repository

import (
	"tutor-connect-go/internal/model"

	"gorm.io/gorm"
)

// RequestRepository 接口定义了学生求助请求的持久化操作。
type RequestRepository interface {
	Create(request *model.StudentRequest) error
	FindWithFilter(subject, department string) ([]model.StudentRequest, error)
}

type requestRepository struct {
	db *gorm.DB
}

// NewRequestRepository 创建一个新的 RequestRepository 实例。
func NewRequestRepository(db *gorm.DB) RequestRepository {
	return &requestRepository{db: db}
}

// Create 创建一条求助请求，写入前做结构校验。
func (r *requestRepository) Create(request *model.StudentRequest) error {
	if err := request.Validate(); err != nil {
		return err
	}
	return r.db.Create(request).Error
}

// FindWithFilter 按科目/院系等值条件检索求助请求，按时间倒序。
func (r *requestRepository) FindWithFilter(subject, department string) ([]model.StudentRequest, error) {
	db := r.db.Model(&model.StudentRequest{})
	if subject != "" {
		db = db.Where("subject = ?", subject)
	}
	if department != "" {
		db = db.Where("department = ?", department)
	}
	var requests []model.StudentRequest
	err := db.Order("created_at DESC").Find(&requests).Error
	return requests, err
}
