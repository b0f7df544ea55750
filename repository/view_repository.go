package repository

import (
	"context"
	"fmt"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/cppla/sbb/models"
)

// ViewRepository aggregates question detail reads.
type ViewRepository struct {
	db *gorm.DB
}

// NewViewRepository creates a repository on top of db.
func NewViewRepository(db *gorm.DB) *ViewRepository {
	return &ViewRepository{db: db}
}

// Record adds one view of questionID on the local day containing at.
func (r *ViewRepository) Record(ctx context.Context, questionID uint, at time.Time) error {
	local := at.In(time.Local)
	day := time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, time.Local)

	// Atomic upsert to avoid duplicate key errors under concurrency
	err := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "day"}, {Name: "question_id"}},
		DoUpdates: clause.Assignments(map[string]interface{}{"count": gorm.Expr("count + 1"), "updated_at": time.Now()}),
	}).Create(&models.QuestionView{Day: day, QuestionID: questionID, Count: 1}).Error
	if err != nil {
		return fmt.Errorf("record view of question %d: %w", questionID, err)
	}
	return nil
}

// CountFor sums all recorded views of one question.
func (r *ViewRepository) CountFor(ctx context.Context, questionID uint) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&models.QuestionView{}).
		Where("question_id = ?", questionID).
		Select("COALESCE(SUM(count),0)").
		Scan(&n).Error
	if err != nil {
		return 0, fmt.Errorf("count views of question %d: %w", questionID, err)
	}
	return n, nil
}

// Total sums every recorded view.
func (r *ViewRepository) Total(ctx context.Context) (int64, error) {
	var n int64
	if err := r.db.WithContext(ctx).Model(&models.QuestionView{}).Select("COALESCE(SUM(count),0)").Scan(&n).Error; err != nil {
		return 0, fmt.Errorf("count views: %w", err)
	}
	return n, nil
}
