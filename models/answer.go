package models

import (
	"time"

	"gorm.io/gorm"
)

// Answer is a reply bound to exactly one question. The parent is referenced by id
// only and resolved through the question repository.
type Answer struct {
	ID         uint      `gorm:"primaryKey" json:"id"`
	Content    string    `gorm:"type:text;not null" json:"content"`
	CreateDate time.Time `gorm:"column:create_date;not null" json:"create_date"`
	QuestionID uint      `gorm:"index;not null" json:"question_id"`
}

// BeforeCreate hook ensures the timestamp is set even when not provided.
func (a *Answer) BeforeCreate(tx *gorm.DB) error {
	if a.CreateDate.IsZero() {
		a.CreateDate = time.Now()
	}
	return nil
}
