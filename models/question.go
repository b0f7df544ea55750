package models

import (
	"time"

	"gorm.io/gorm"
)

// Question is a posted topic. It owns its answers: deleting a question removes them.
type Question struct {
	ID         uint      `gorm:"primaryKey" json:"id"`
	Subject    string    `gorm:"size:200;not null;index" json:"subject"`
	Content    string    `gorm:"type:text;not null" json:"content"`
	CreateDate time.Time `gorm:"column:create_date;not null" json:"create_date"`
	AnswerList []Answer  `gorm:"foreignKey:QuestionID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"answer_list"`
}

// BeforeCreate stamps the creation time when the caller left it empty.
func (q *Question) BeforeCreate(tx *gorm.DB) error {
	if q.CreateDate.IsZero() {
		q.CreateDate = time.Now()
	}
	return nil
}

// NewAnswer builds an unsaved answer bound to q. It does not touch q.AnswerList;
// the repository appends once the insert commits.
func (q *Question) NewAnswer(content string) Answer {
	return Answer{
		Content:    content,
		CreateDate: time.Now(),
		QuestionID: q.ID,
	}
}

// HasAnswer reports whether the in-memory answer list holds an answer with the given id.
func (q *Question) HasAnswer(id uint) bool {
	for _, a := range q.AnswerList {
		if a.ID == id {
			return true
		}
	}
	return false
}
