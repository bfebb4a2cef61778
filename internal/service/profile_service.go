package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path"
	"time"
	"tutor-connect-go/internal/config"
	"tutor-connect-go/internal/model"
	"tutor-connect-go/internal/repository"
	"tutor-connect-go/pkg/events"
	"tutor-connect-go/pkg/kafka"
	"tutor-connect-go/pkg/log"
	"tutor-connect-go/pkg/storage"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ProfileUpdate 是档案更新请求的载荷，nil 指针表示不修改该字段。
type ProfileUpdate struct {
	DisplayName *string   `json:"displayName"`
	Department  *string   `json:"department"`
	Year        *string   `json:"year"`
	Bio         *string   `json:"bio"`
	Skills      *[]string `json:"skills"`
	Interests   *[]string `json:"interests"`
	LookingFor  *string   `json:"lookingFor"`
}

// TutorRegistration 是"成为导师"操作的载荷。
type TutorRegistration struct {
	Subjects         []string `json:"subjects"`
	PricingText      string   `json:"pricingText"`
	AvailabilityText string   `json:"availabilityText"`
}

// ProfileService 接口定义了用户档案相关的业务操作。
type ProfileService interface {
	GetProfile(ctx context.Context, uid string) (*model.UserProfile, error)
	UpdateProfile(ctx context.Context, uid string, update ProfileUpdate) (*model.UserProfile, error)
	BecomeTutor(ctx context.Context, uid string, reg TutorRegistration) (*model.UserProfile, error)
	UploadAvatar(ctx context.Context, uid, filename, contentType string, reader io.Reader, size int64) (string, error)
	ListTutors(filter repository.ProfileFilter) ([]model.UserProfile, error)
	ListTeammates(filter repository.ProfileFilter) ([]model.UserProfile, error)
}

// profileService 是 ProfileService 接口的实现。
type profileService struct {
	profileRepo repository.ProfileRepository
	cache       repository.ProfileCache
}

// NewProfileService 创建一个新的 ProfileService 实例。
func NewProfileService(profileRepo repository.ProfileRepository, cache repository.ProfileCache) ProfileService {
	return &profileService{profileRepo: profileRepo, cache: cache}
}

// GetProfile 读取一条档案。先查 Redis 快照，未命中时回源 MySQL 并回填。
func (s *profileService) GetProfile(ctx context.Context, uid string) (*model.UserProfile, error) {
	if s.cache != nil {
		cached, err := s.cache.Get(ctx, uid)
		if err != nil {
			log.Warnf("读取档案快照失败，回源数据库: uid=%s, err=%v", uid, err)
		}
		if cached != nil {
			return cached, nil
		}
	}

	profile, err := s.profileRepo.FindByUID(uid)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errors.New("档案不存在")
		}
		return nil, err
	}

	if s.cache != nil {
		if err := s.cache.Set(ctx, profile); err != nil {
			log.Warnf("回填档案快照失败: uid=%s, err=%v", uid, err)
		}
	}
	return profile, nil
}

// UpdateProfile 更新档案的基础字段，随后作废快照并发布变更事件。
func (s *profileService) UpdateProfile(ctx context.Context, uid string, update ProfileUpdate) (*model.UserProfile, error) {
	profile, err := s.profileRepo.FindByUID(uid)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errors.New("档案不存在")
		}
		return nil, err
	}

	if update.DisplayName != nil {
		profile.DisplayName = *update.DisplayName
	}
	if update.Department != nil {
		profile.Department = update.Department
	}
	if update.Year != nil {
		profile.Year = update.Year
	}
	if update.Bio != nil {
		profile.Bio = *update.Bio
	}
	if update.Skills != nil {
		profile.Skills = *update.Skills
	}
	if update.Interests != nil {
		profile.Interests = *update.Interests
	}
	if update.LookingFor != nil {
		profile.LookingFor = *update.LookingFor
	}

	if err := s.profileRepo.Update(profile); err != nil {
		return nil, err
	}

	s.afterProfileWrite(ctx, uid)
	return profile, nil
}

// BecomeTutor 把一条学生档案升级为导师档案。
// 升级不清零已有的评分聚合，重复注册只覆盖科目与报价信息。
func (s *profileService) BecomeTutor(ctx context.Context, uid string, reg TutorRegistration) (*model.UserProfile, error) {
	if len(reg.Subjects) == 0 {
		return nil, errors.New("导师注册必须至少选择一个科目")
	}

	profile, err := s.profileRepo.FindByUID(uid)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errors.New("档案不存在")
		}
		return nil, err
	}

	profile.IsTutor = true
	profile.TutorSubjects = reg.Subjects
	profile.TutorPricingText = reg.PricingText
	profile.TutorAvailabilityText = reg.AvailabilityText

	if err := s.profileRepo.Update(profile); err != nil {
		return nil, err
	}

	s.afterProfileWrite(ctx, uid)
	return profile, nil
}

// UploadAvatar 上传头像到对象存储，并把可访问的 URL 写回档案。
func (s *profileService) UploadAvatar(ctx context.Context, uid, filename, contentType string, reader io.Reader, size int64) (string, error) {
	profile, err := s.profileRepo.FindByUID(uid)
	if err != nil {
		return "", err
	}

	objectName := fmt.Sprintf("avatars/%s/%s%s", uid, uuid.NewString(), path.Ext(filename))
	bucket := config.Conf.MinIO.BucketName
	if err := storage.PutObject(ctx, bucket, objectName, reader, size, contentType); err != nil {
		return "", fmt.Errorf("上传头像失败: %w", err)
	}

	photoURL, err := storage.GetPresignedURL(bucket, objectName, 7*24*time.Hour)
	if err != nil {
		return "", err
	}

	profile.PhotoURL = &photoURL
	if err := s.profileRepo.Update(profile); err != nil {
		return "", err
	}

	s.afterProfileWrite(ctx, uid)
	return photoURL, nil
}

// ListTutors 按过滤条件返回导师档案列表（数据库路径）。
func (s *profileService) ListTutors(filter repository.ProfileFilter) ([]model.UserProfile, error) {
	return s.profileRepo.FindTutors(filter)
}

// ListTeammates 按过滤条件返回候选队友档案列表（数据库路径）。
func (s *profileService) ListTeammates(filter repository.ProfileFilter) ([]model.UserProfile, error) {
	return s.profileRepo.FindTeammates(filter)
}

// afterProfileWrite 是档案写路径的统一收尾：作废快照并发布变更事件。
// 事件流是最终一致的旁路，发布失败只记日志，不影响已提交的写入。
func (s *profileService) afterProfileWrite(ctx context.Context, uid string) {
	if s.cache != nil {
		if err := s.cache.Invalidate(ctx, uid); err != nil {
			log.Warnf("作废档案快照失败: uid=%s, err=%v", uid, err)
		}
	}
	if err := kafka.PublishChangeEvent(events.ChangeEvent{
		Type:       events.TypeProfileChanged,
		UID:        uid,
		OccurredAt: time.Now(),
	}); err != nil {
		log.Errorf("发布档案变更事件失败: uid=%s, err=%v", uid, err)
	}
}
