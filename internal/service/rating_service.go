package service

import (
	"context"
	"errors"
	"time"
	"tutor-connect-go/internal/model"
	"tutor-connect-go/internal/repository"
	"tutor-connect-go/pkg/events"
	"tutor-connect-go/pkg/kafka"
	"tutor-connect-go/pkg/log"
	"unicode/utf8"
)

// 评分提交的业务错误，handler 层据此映射 HTTP 状态码。
var (
	ErrInvalidScore   = errors.New("评分必须在 1 到 5 之间")
	ErrCommentTooLong = errors.New("评语不能超过 500 字符")
	ErrSelfRating     = errors.New("不能给自己评分")
	ErrTutorNotFound  = errors.New("导师不存在")
)

// RatingService 接口定义了导师评分相关的业务操作。
type RatingService interface {
	// SubmitRating 提交或覆盖一条评分，并在同一事务内增量维护导师的评分聚合。
	SubmitRating(ctx context.Context, tutorUID, reviewerUID string, score int, comment string) (*model.UserProfile, error)
	// GetMyRating 返回评价者对某导师的既有评分；没有则返回 (nil, nil)。
	GetMyRating(tutorUID, reviewerUID string) (*model.Rating, error)
	ListRatings(tutorUID string) ([]model.Rating, error)
}

// ratingService 是 RatingService 接口的实现。
type ratingService struct {
	ratingRepo repository.RatingRepository
}

// NewRatingService 创建一个新的 RatingService 实例。
func NewRatingService(ratingRepo repository.RatingRepository) RatingService {
	return &ratingService{ratingRepo: ratingRepo}
}

// SubmitRating 提交评分。
//
// 校验全部发生在写入之前，任何校验失败都不会产生写入。事务内先对
// 导师档案行加排他锁，再按是否已有该评价者的记录走两条路径：
//   - 已有记录：覆盖分数与评语，均值替换旧分 (avg*n - old + new) / n，计数不变；
//   - 新记录：插入评分，均值并入新分 (avg*n + new) / (n+1)，计数加一。
//
// 聚合永远增量更新，绝不全量重算。同一导师的并发提交被行锁串行化，
// 不同导师互不阻塞。
func (s *ratingService) SubmitRating(ctx context.Context, tutorUID, reviewerUID string, score int, comment string) (*model.UserProfile, error) {
	if score < 1 || score > 5 {
		return nil, ErrInvalidScore
	}
	if utf8.RuneCountInString(comment) > 500 {
		return nil, ErrCommentTooLong
	}
	if tutorUID == reviewerUID {
		return nil, ErrSelfRating
	}

	var updated *model.UserProfile
	err := s.ratingRepo.InTransaction(ctx, func(tx repository.RatingTx) error {
		profile, err := tx.ProfileForUpdate(tutorUID)
		if err != nil {
			return err
		}
		if profile == nil || !profile.IsTutor {
			return ErrTutorNotFound
		}

		existing, err := tx.Rating(tutorUID, reviewerUID)
		if err != nil {
			return err
		}

		avg := profile.TutorStats.RatingAvg
		count := profile.TutorStats.RatingCount

		if existing != nil {
			// 覆盖更新：均值里换出旧分、换入新分，计数不变
			newAvg := (avg*float64(count) - float64(existing.Score) + float64(score)) / float64(count)
			existing.Score = score
			existing.Comment = comment
			if err := tx.SaveRating(existing); err != nil {
				return err
			}
			avg = newAvg
		} else {
			// 新评分：均值并入新分，计数加一
			newAvg := (avg*float64(count) + float64(score)) / float64(count+1)
			rating := &model.Rating{
				TutorUID:    tutorUID,
				ReviewerUID: reviewerUID,
				Score:       score,
				Comment:     comment,
			}
			if err := tx.SaveRating(rating); err != nil {
				return err
			}
			avg = newAvg
			count++
		}

		if err := tx.UpdateTutorStats(tutorUID, avg, count); err != nil {
			return err
		}

		profile.TutorStats.RatingAvg = avg
		profile.TutorStats.RatingCount = count
		updated = profile
		return nil
	})
	if err != nil {
		return nil, err
	}

	// 事务提交后发布变更事件，驱动索引更新与快照作废
	if err := kafka.PublishChangeEvent(events.ChangeEvent{
		Type:       events.TypeRatingChanged,
		UID:        tutorUID,
		OccurredAt: time.Now(),
	}); err != nil {
		log.Errorf("发布评分变更事件失败: tutor=%s, err=%v", tutorUID, err)
	}

	return updated, nil
}

// GetMyRating 返回评价者对某导师的既有评分。
func (s *ratingService) GetMyRating(tutorUID, reviewerUID string) (*model.Rating, error) {
	return s.ratingRepo.FindByTutorAndReviewer(tutorUID, reviewerUID)
}

// ListRatings 返回某导师收到的全部评分。
func (s *ratingService) ListRatings(tutorUID string) ([]model.Rating, error) {
	return s.ratingRepo.FindAllByTutor(tutorUID)
}
