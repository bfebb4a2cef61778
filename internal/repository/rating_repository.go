package repository

import (
	"context"
	"errors"
	"tutor-connect-go/internal/model"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// RatingTx 是评分事务内可用的操作集合。
// 事务必须把单条评分与导师聚合作为一个原子单元读写：
// ProfileForUpdate 对导师档案行加排他锁，使同一导师的并发提交串行化；
// 不同导师锁不同的行，互不竞争。
type RatingTx interface {
	// ProfileForUpdate 锁定并返回导师档案；档案不存在时返回 (nil, nil)。
	ProfileForUpdate(tutorUID string) (*model.UserProfile, error)
	// Rating 返回 (tutor, reviewer) 的既有评分；不存在时返回 (nil, nil)。
	Rating(tutorUID, reviewerUID string) (*model.Rating, error)
	SaveRating(rating *model.Rating) error
	UpdateTutorStats(tutorUID string, avg float64, count int) error
}

// RatingRepository 接口定义了评分数据的持久化操作。
type RatingRepository interface {
	// InTransaction 在单个数据库事务内执行 fn；fn 返回错误则整体回滚，
	// 评分记录与聚合要么都写入要么都不写入。
	InTransaction(ctx context.Context, fn func(tx RatingTx) error) error
	FindByTutorAndReviewer(tutorUID, reviewerUID string) (*model.Rating, error)
	FindAllByTutor(tutorUID string) ([]model.Rating, error)
}

type ratingRepository struct {
	db *gorm.DB
}

// NewRatingRepository 创建一个新的 RatingRepository 实例。
func NewRatingRepository(db *gorm.DB) RatingRepository {
	return &ratingRepository{db: db}
}

type ratingTx struct {
	tx *gorm.DB
}

func (t *ratingTx) ProfileForUpdate(tutorUID string) (*model.UserProfile, error) {
	var profile model.UserProfile
	err := t.tx.Clauses(clause.Locking{Strength: "UPDATE"}).
		First(&profile, "uid = ?", tutorUID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &profile, nil
}

func (t *ratingTx) Rating(tutorUID, reviewerUID string) (*model.Rating, error) {
	var rating model.Rating
	err := t.tx.Where("tutor_uid = ? AND reviewer_uid = ?", tutorUID, reviewerUID).
		First(&rating).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &rating, nil
}

func (t *ratingTx) SaveRating(rating *model.Rating) error {
	return t.tx.Save(rating).Error
}

func (t *ratingTx) UpdateTutorStats(tutorUID string, avg float64, count int) error {
	return t.tx.Model(&model.UserProfile{}).
		Where("uid = ?", tutorUID).
		Updates(map[string]interface{}{"rating_avg": avg, "rating_count": count}).Error
}

// InTransaction 在 GORM 事务中执行 fn。
func (r *ratingRepository) InTransaction(ctx context.Context, fn func(tx RatingTx) error) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&ratingTx{tx: tx})
	})
}

// FindByTutorAndReviewer 返回某评价者对某导师的评分；不存在时返回 (nil, nil)。
func (r *ratingRepository) FindByTutorAndReviewer(tutorUID, reviewerUID string) (*model.Rating, error) {
	var rating model.Rating
	err := r.db.Where("tutor_uid = ? AND reviewer_uid = ?", tutorUID, reviewerUID).
		First(&rating).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &rating, nil
}

// FindAllByTutor 返回某导师收到的全部评分，按更新时间倒序。
func (r *ratingRepository) FindAllByTutor(tutorUID string) ([]model.Rating, error) {
	var ratings []model.Rating
	err := r.db.Where("tutor_uid = ?", tutorUID).
		Order("updated_at DESC").
		Find(&ratings).Error
	return ratings, err
}
