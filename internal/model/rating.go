package model

import "time"

// Rating 对应于数据库中的 'ratings' 表。
// (tutor_uid, reviewer_uid) 上的唯一索引保证同一评价者对同一导师只有一条记录，
// 重复提交是覆盖更新而非新增。
type Rating struct {
	ID          uint      `gorm:"primaryKey" json:"-"`
	TutorUID    string    `gorm:"type:varchar(36);not null;uniqueIndex:idx_tutor_reviewer" json:"tutorUid"`
	ReviewerUID string    `gorm:"type:varchar(36);not null;uniqueIndex:idx_tutor_reviewer" json:"reviewerUid"`
	Score       int       `gorm:"not null" json:"score"`
	Comment     string    `gorm:"type:varchar(500)" json:"comment"`
	CreatedAt   time.Time `gorm:"autoCreateTime" json:"createdAt"`
	UpdatedAt   time.Time `gorm:"autoUpdateTime" json:"updatedAt"`
}

func (Rating) TableName() string {
	return "ratings"
}
