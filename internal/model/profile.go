package model

import (
	"errors"
	"time"
	"unicode/utf8"
)

// TutorStats 是嵌入在导师档案中的派生聚合。
// 不变量：RatingAvg 恒等于该导师当前所有评分的均值，由评分事务增量维护，
// 正常运行期间绝不全量重算。
type TutorStats struct {
	RatingAvg   float64 `gorm:"column:rating_avg;not null;default:0" json:"ratingAvg"`
	RatingCount int     `gorm:"column:rating_count;not null;default:0" json:"ratingCount"`
}

// UserProfile 对应于数据库中的 'profiles' 表。
// 一条记录承载学生档案，isTutor=true 时同时承载导师档案字段。
type UserProfile struct {
	UID         string  `gorm:"type:varchar(36);primaryKey" json:"uid"`
	Email       string  `gorm:"type:varchar(255)" json:"email"`
	DisplayName string  `gorm:"type:varchar(100);not null" json:"displayName"`
	PhotoURL    *string `gorm:"type:varchar(512)" json:"photoURL"`
	Department  *string `gorm:"type:varchar(50);index" json:"department"`
	Year        *string `gorm:"type:varchar(20)" json:"year"`
	Bio         string  `gorm:"type:text" json:"bio"`
	// Skills 面向组队场景，Interests 为补充展示字段。
	Skills    StringList `gorm:"type:json" json:"skills"`
	Interests StringList `gorm:"type:json" json:"interests"`
	// LookingFor 描述该用户想找什么样的队友。
	LookingFor string `gorm:"type:varchar(255)" json:"lookingFor"`

	// 导师相关字段
	IsTutor               bool       `gorm:"not null;default:false;index" json:"isTutor"`
	TutorSubjects         StringList `gorm:"type:json" json:"tutorSubjects"`
	TutorPricingText      string     `gorm:"type:varchar(255)" json:"tutorPricingText"`
	TutorAvailabilityText string     `gorm:"type:varchar(255)" json:"tutorAvailabilityText"`
	TutorStats            TutorStats `gorm:"embedded" json:"tutorStats"`

	CreatedAt time.Time `gorm:"autoCreateTime" json:"createdAt"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updatedAt"`
}

func (UserProfile) TableName() string {
	return "profiles"
}

// Validate 在写入存储前校验档案字段的完整性。
func (p *UserProfile) Validate() error {
	if p.UID == "" {
		return errors.New("档案缺少 uid")
	}
	if p.DisplayName == "" {
		return errors.New("档案缺少显示名称")
	}
	if utf8.RuneCountInString(p.Bio) > 1000 {
		return errors.New("个人简介不能超过 1000 字符")
	}
	if p.IsTutor && len(p.TutorSubjects) == 0 {
		return errors.New("导师档案必须至少包含一个科目")
	}
	return nil
}
