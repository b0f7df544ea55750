package controllers

import (
	"github.com/gin-gonic/gin"

	"github.com/cppla/sbb/repository"
	"github.com/cppla/sbb/utils"
)

// ConsoleController serves the operator console mounted under the configured console path.
type ConsoleController struct {
	questions *repository.QuestionRepository
	answers   *repository.AnswerRepository
	views     *repository.ViewRepository
	cache     *utils.Cache
}

// NewConsoleController creates a new ConsoleController instance.
func NewConsoleController(questions *repository.QuestionRepository, answers *repository.AnswerRepository, views *repository.ViewRepository, cache *utils.Cache) *ConsoleController {
	return &ConsoleController{questions: questions, answers: answers, views: views, cache: cache}
}

// GetStats returns row counts for the store.
func (s *ConsoleController) GetStats(ctx *gin.Context) {
	rctx := ctx.Request.Context()
	questionCount, err := s.questions.Count(rctx)
	if err != nil {
		// Fallback to 0 instead of failing the whole endpoint
		utils.Sugar.Warnf("console stats: %v", err)
	}
	answerCount, err := s.answers.Count(rctx)
	if err != nil {
		utils.Sugar.Warnf("console stats: %v", err)
	}
	viewCount, err := s.views.Total(rctx)
	if err != nil {
		utils.Sugar.Warnf("console stats: %v", err)
	}

	utils.Success(ctx, gin.H{
		"question_count": questionCount,
		"answer_count":   answerCount,
		"view_count":     viewCount,
	})
}

// FlushCache drops every cached question payload.
func (s *ConsoleController) FlushCache(ctx *gin.Context) {
	removed := s.cache.InvalidateByPrefix(ctx.Request.Context(), "question:")
	utils.Success(ctx, gin.H{"removed": removed})
}
