package repository

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/cppla/sbb/models"
)

// QuestionRepository is the data-access contract for questions and their answers.
type QuestionRepository struct {
	db *gorm.DB
}

// NewQuestionRepository creates a repository on top of db.
func NewQuestionRepository(db *gorm.DB) *QuestionRepository {
	return &QuestionRepository{db: db}
}

func preloadAnswers(db *gorm.DB) *gorm.DB {
	return db.Order("id ASC")
}

// FindAll returns every question in id order.
func (r *QuestionRepository) FindAll(ctx context.Context) ([]models.Question, error) {
	var qs []models.Question
	if err := r.db.WithContext(ctx).Order("id ASC").Find(&qs).Error; err != nil {
		return nil, fmt.Errorf("find all questions: %w", err)
	}
	return qs, nil
}

// FindByID loads a question with its answers. A missing row yields (nil, nil).
func (r *QuestionRepository) FindByID(ctx context.Context, id uint) (*models.Question, error) {
	var q models.Question
	err := r.db.WithContext(ctx).Preload("AnswerList", preloadAnswers).First(&q, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find question %d: %w", id, err)
	}
	return &q, nil
}

// FindBySubject returns the single question with exactly this subject.
// No match yields (nil, nil); several matches yield ErrAmbiguousResult.
func (r *QuestionRepository) FindBySubject(ctx context.Context, subject string) (*models.Question, error) {
	return r.findUnique(ctx, r.db.Where("subject = ?", subject))
}

// FindBySubjectAndContent is FindBySubject narrowed by exact content.
func (r *QuestionRepository) FindBySubjectAndContent(ctx context.Context, subject, content string) (*models.Question, error) {
	return r.findUnique(ctx, r.db.Where("subject = ? AND content = ?", subject, content))
}

// FindBySubjectLike matches subject against a SQL LIKE pattern; the caller supplies the wildcards.
func (r *QuestionRepository) FindBySubjectLike(ctx context.Context, pattern string) ([]models.Question, error) {
	var qs []models.Question
	if err := r.db.WithContext(ctx).Where("subject LIKE ?", pattern).Order("id ASC").Find(&qs).Error; err != nil {
		return nil, fmt.Errorf("find questions like %q: %w", pattern, err)
	}
	return qs, nil
}

// findUnique fetches at most two rows so ambiguity is detected without scanning the table.
func (r *QuestionRepository) findUnique(ctx context.Context, query *gorm.DB) (*models.Question, error) {
	var qs []models.Question
	if err := query.WithContext(ctx).Order("id ASC").Limit(2).Find(&qs).Error; err != nil {
		return nil, fmt.Errorf("find unique question: %w", err)
	}
	switch len(qs) {
	case 0:
		return nil, nil
	case 1:
		return &qs[0], nil
	default:
		return nil, ErrAmbiguousResult
	}
}

// Count returns the number of stored questions.
func (r *QuestionRepository) Count(ctx context.Context) (int64, error) {
	var n int64
	if err := r.db.WithContext(ctx).Model(&models.Question{}).Count(&n).Error; err != nil {
		return 0, fmt.Errorf("count questions: %w", err)
	}
	return n, nil
}

// Save inserts q when its id is zero or unknown. For a stored question only subject and
// content change; the stored create date is copied back into q. Answers are never written
// through this call.
func (r *QuestionRepository) Save(ctx context.Context, q *models.Question) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if q.ID != 0 {
			var stored models.Question
			err := tx.Select("id", "create_date").First(&stored, q.ID).Error
			if err == nil {
				q.CreateDate = stored.CreateDate
				return tx.Model(&models.Question{}).Where("id = ?", q.ID).
					Updates(map[string]interface{}{"subject": q.Subject, "content": q.Content}).Error
			}
			if !errors.Is(err, gorm.ErrRecordNotFound) {
				return err
			}
		}
		return tx.Omit(clause.Associations).Create(q).Error
	})
	if err != nil {
		return fmt.Errorf("save question: %w", err)
	}
	return nil
}

// Delete removes q and every answer whose parent is q in one transaction.
func (r *QuestionRepository) Delete(ctx context.Context, q *models.Question) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("question_id = ?", q.ID).Delete(&models.Answer{}).Error; err != nil {
			return err
		}
		return tx.Delete(&models.Question{}, q.ID).Error
	})
	if err != nil {
		return fmt.Errorf("delete question %d: %w", q.ID, err)
	}
	q.AnswerList = nil
	return nil
}

// AddAnswer creates an answer under q, persists it and appends it to q.AnswerList so
// the caller sees the new answer without reloading. The list is left untouched on error.
func (r *QuestionRepository) AddAnswer(ctx context.Context, q *models.Question, content string) (*models.Answer, error) {
	a := q.NewAnswer(content)
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return insertAnswer(tx, &a)
	})
	if err != nil {
		return nil, fmt.Errorf("add answer to question %d: %w", q.ID, err)
	}
	q.AnswerList = append(q.AnswerList, a)
	return &q.AnswerList[len(q.AnswerList)-1], nil
}
