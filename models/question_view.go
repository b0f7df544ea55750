package models

import "time"

// QuestionView aggregates detail-page reads per question and day. Rows outlive the
// question they count so the console can still report historic traffic.
type QuestionView struct {
	ID         uint      `gorm:"primaryKey" json:"id"`
	Day        time.Time `gorm:"uniqueIndex:idx_qv_day_question;type:date;not null" json:"day"`
	QuestionID uint      `gorm:"uniqueIndex:idx_qv_day_question;not null" json:"question_id"`
	Count      int64     `gorm:"not null;default:0" json:"count"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// All lists every persisted model in migration order.
func All() []interface{} {
	return []interface{}{&Question{}, &Answer{}, &QuestionView{}}
}
