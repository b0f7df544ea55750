// Package testdb opens isolated in-memory stores for tests.
package testdb

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/cppla/sbb/config"
	"github.com/cppla/sbb/models"
)

const (
	SubjectSBB    = "sbb가 무엇인가요?"
	ContentSBB    = "sbb에 대해서 알고 싶습니다."
	SubjectModel  = "스프링부트 모델 질문입니다."
	ContentModel  = "id는 자동으로 생성되나요?"
	ContentAnswer = "네 자동으로 생성됩니다."
)

// Config returns a test-profile configuration.
func Config() config.AppConfig {
	c := config.Defaults(config.ProfileTest)
	c.LogLevel = "silent"
	c.GinMode = "test"
	return c
}

// Open returns a fresh migrated in-memory database closed at test cleanup.
func Open(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := config.OpenDatabase(Config(), models.All()...)
	require.NoError(t, err)
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})
	return db
}

// Seed stores the two sample questions (ids 1 and 2) and one answer (id 1) under question 2.
func Seed(t *testing.T, db *gorm.DB) {
	t.Helper()
	ctx := context.Background()
	now := time.Now()
	q1 := models.Question{Subject: SubjectSBB, Content: ContentSBB, CreateDate: now}
	require.NoError(t, db.WithContext(ctx).Create(&q1).Error)
	q2 := models.Question{Subject: SubjectModel, Content: ContentModel, CreateDate: now}
	require.NoError(t, db.WithContext(ctx).Create(&q2).Error)
	a := models.Answer{Content: ContentAnswer, QuestionID: q2.ID, CreateDate: now}
	require.NoError(t, db.WithContext(ctx).Create(&a).Error)
}
