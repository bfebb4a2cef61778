package service

import (
	"strconv"
	"time"
	"tutor-connect-go/internal/model"
	"tutor-connect-go/internal/repository"
	"tutor-connect-go/pkg/events"
	"tutor-connect-go/pkg/kafka"
	"tutor-connect-go/pkg/log"
)

// RequestService 接口定义了学生求助请求的业务操作。
type RequestService interface {
	PostRequest(request *model.StudentRequest) error
	ListRequests(subject, department string) ([]model.StudentRequest, error)
}

// requestService 是 RequestService 接口的实现。
type requestService struct {
	requestRepo repository.RequestRepository
}

// NewRequestService 创建一个新的 RequestService 实例。
func NewRequestService(requestRepo repository.RequestRepository) RequestService {
	return &requestService{requestRepo: requestRepo}
}

// PostRequest 发布一条求助请求并发出变更事件。
func (s *requestService) PostRequest(request *model.StudentRequest) error {
	if err := s.requestRepo.Create(request); err != nil {
		return err
	}

	if err := kafka.PublishChangeEvent(events.ChangeEvent{
		Type:       events.TypeRequestCreated,
		UID:        request.UID,
		RequestID:  strconv.FormatUint(uint64(request.ID), 10),
		OccurredAt: time.Now(),
	}); err != nil {
		log.Errorf("发布求助请求事件失败: uid=%s, err=%v", request.UID, err)
	}
	return nil
}

// ListRequests 按科目/院系过滤返回求助请求列表。
func (s *requestService) ListRequests(subject, department string) ([]model.StudentRequest, error) {
	return s.requestRepo.FindWithFilter(subject, department)
}
