package model

import (
	"errors"
	"time"
	"unicode/utf8"
)

// StudentRequest 对应于数据库中的 'student_requests' 表，
// 即学生发布的求助请求（"我需要 Data Structures 方面的帮助"）。
type StudentRequest struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	UID         string    `gorm:"type:varchar(36);not null;index" json:"uid"`
	Name        string    `gorm:"type:varchar(100);not null" json:"name"`
	Email       string    `gorm:"type:varchar(255)" json:"email"`
	Subject     string    `gorm:"type:varchar(100);not null;index" json:"subject"`
	Description string    `gorm:"type:text" json:"description"`
	Year        string    `gorm:"type:varchar(20)" json:"year"`
	Department  string    `gorm:"type:varchar(50);index" json:"department"`
	CreatedAt   time.Time `gorm:"autoCreateTime" json:"createdAt"`
}

func (StudentRequest) TableName() string {
	return "student_requests"
}

// Validate 在写入存储前校验请求字段。
func (r *StudentRequest) Validate() error {
	if r.UID == "" {
		return errors.New("求助请求缺少 uid")
	}
	if r.Subject == "" {
		return errors.New("求助请求缺少科目")
	}
	if utf8.RuneCountInString(r.Description) > 2000 {
		return errors.New("求助描述不能超过 2000 字符")
	}
	return nil
}
