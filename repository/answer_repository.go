package repository

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/cppla/sbb/models"
)

// AnswerRepository is the data-access contract for answers.
type AnswerRepository struct {
	db *gorm.DB
}

// NewAnswerRepository creates a repository on top of db.
func NewAnswerRepository(db *gorm.DB) *AnswerRepository {
	return &AnswerRepository{db: db}
}

// FindByID returns the answer or (nil, nil) when absent.
func (r *AnswerRepository) FindByID(ctx context.Context, id uint) (*models.Answer, error) {
	var a models.Answer
	err := r.db.WithContext(ctx).First(&a, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find answer %d: %w", id, err)
	}
	return &a, nil
}

// FindByQuestionID lists the answers of one question in id order.
func (r *AnswerRepository) FindByQuestionID(ctx context.Context, questionID uint) ([]models.Answer, error) {
	var as []models.Answer
	if err := r.db.WithContext(ctx).Where("question_id = ?", questionID).Order("id ASC").Find(&as).Error; err != nil {
		return nil, fmt.Errorf("find answers of question %d: %w", questionID, err)
	}
	return as, nil
}

// Count returns the number of stored answers.
func (r *AnswerRepository) Count(ctx context.Context) (int64, error) {
	var n int64
	if err := r.db.WithContext(ctx).Model(&models.Answer{}).Count(&n).Error; err != nil {
		return 0, fmt.Errorf("count answers: %w", err)
	}
	return n, nil
}

// Save upserts a by id. An existing answer keeps its create date; only content and parent
// change. It fails with ErrConstraintViolation when a.QuestionID does not resolve to a
// stored question.
func (r *AnswerRepository) Save(ctx context.Context, a *models.Answer) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if a.ID == 0 {
			return insertAnswer(tx, a)
		}
		var stored models.Answer
		err := tx.Select("id", "create_date").First(&stored, a.ID).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return insertAnswer(tx, a)
		}
		if err != nil {
			return err
		}
		if err := requireQuestion(tx, a.QuestionID); err != nil {
			return err
		}
		a.CreateDate = stored.CreateDate
		return tx.Model(&models.Answer{}).Where("id = ?", a.ID).
			Updates(map[string]interface{}{"content": a.Content, "question_id": a.QuestionID}).Error
	})
	if err != nil {
		return fmt.Errorf("save answer: %w", err)
	}
	return nil
}

func insertAnswer(tx *gorm.DB, a *models.Answer) error {
	if err := requireQuestion(tx, a.QuestionID); err != nil {
		return err
	}
	return tx.Create(a).Error
}

func requireQuestion(tx *gorm.DB, questionID uint) error {
	if questionID == 0 {
		return ErrConstraintViolation
	}
	var n int64
	if err := tx.Model(&models.Question{}).Where("id = ?", questionID).Count(&n).Error; err != nil {
		return err
	}
	if n == 0 {
		return ErrConstraintViolation
	}
	return nil
}
