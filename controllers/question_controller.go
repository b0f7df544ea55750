package controllers

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/cppla/sbb/models"
	"github.com/cppla/sbb/repository"
	"github.com/cppla/sbb/utils"
)

const (
	cacheKeyQuestionList   = "question:list:all"
	cacheKeyQuestionDetail = "question:detail:"
)

// QuestionController manages CRUD operations for questions and their answers.
type QuestionController struct {
	questions *repository.QuestionRepository
	answers   *repository.AnswerRepository
	cache     *utils.Cache
}

// NewQuestionController creates a new QuestionController instance. cache may be nil.
func NewQuestionController(questions *repository.QuestionRepository, answers *repository.AnswerRepository, cache *utils.Cache) *QuestionController {
	return &QuestionController{questions: questions, answers: answers, cache: cache}
}

type questionRequest struct {
	Subject string `json:"subject" binding:"required"`
	Content string `json:"content" binding:"required"`
}

type answerRequest struct {
	Content string `json:"content" binding:"required"`
}

// ListQuestions returns questions in id order. Filters:
// subject (exact, optionally with content) or subject_like (SQL LIKE pattern).
// content alone is rejected rather than ignored.
func (q *QuestionController) ListQuestions(ctx *gin.Context) {
	subject := ctx.Query("subject")
	content := ctx.Query("content")
	like := ctx.Query("subject_like")

	switch {
	case content != "" && subject == "":
		utils.Error(ctx, http.StatusBadRequest, 40002, "content filter requires subject")
	case subject != "":
		var (
			found *models.Question
			err   error
		)
		if content != "" {
			found, err = q.questions.FindBySubjectAndContent(ctx.Request.Context(), subject, content)
		} else {
			found, err = q.questions.FindBySubject(ctx.Request.Context(), subject)
		}
		if err != nil {
			writeRepositoryError(ctx, err, 50101, "failed to find question")
			return
		}
		items := []models.Question{}
		if found != nil {
			items = append(items, *found)
		}
		utils.Success(ctx, gin.H{"items": items})
	case like != "":
		items, err := q.questions.FindBySubjectLike(ctx.Request.Context(), like)
		if err != nil {
			writeRepositoryError(ctx, err, 50102, "failed to search questions")
			return
		}
		utils.Success(ctx, gin.H{"items": items})
	default:
		if b, ok := q.cache.GetBytes(ctx.Request.Context(), cacheKeyQuestionList); ok {
			ctx.Data(http.StatusOK, "application/json", b)
			return
		}
		items, err := q.questions.FindAll(ctx.Request.Context())
		if err != nil {
			writeRepositoryError(ctx, err, 50103, "failed to list questions")
			return
		}
		payload := gin.H{"items": items}
		q.cache.SetJSON(ctx.Request.Context(), cacheKeyQuestionList, utils.Envelope(payload))
		utils.Success(ctx, payload)
	}
}

// GetQuestion returns a single question with its answers.
func (q *QuestionController) GetQuestion(ctx *gin.Context) {
	id, ok := parseID(ctx, "id")
	if !ok {
		return
	}
	key := cacheKeyQuestionDetail + strconv.FormatUint(uint64(id), 10)
	if b, ok := q.cache.GetBytes(ctx.Request.Context(), key); ok {
		ctx.Data(http.StatusOK, "application/json", b)
		return
	}

	question, err := q.questions.FindByID(ctx.Request.Context(), id)
	if err != nil {
		writeRepositoryError(ctx, err, 50104, "failed to load question")
		return
	}
	if question == nil {
		utils.Error(ctx, http.StatusNotFound, 40401, "question not found")
		return
	}
	payload := gin.H{"question": question}
	q.cache.SetJSON(ctx.Request.Context(), key, utils.Envelope(payload))
	utils.Success(ctx, payload)
}

// CreateQuestion stores a new question.
func (q *QuestionController) CreateQuestion(ctx *gin.Context) {
	subject, content, ok := bindQuestion(ctx)
	if !ok {
		return
	}
	question := models.Question{Subject: subject, Content: content}
	if err := q.questions.Save(ctx.Request.Context(), &question); err != nil {
		writeRepositoryError(ctx, err, 50105, "failed to create question")
		return
	}
	q.cache.Delete(ctx.Request.Context(), cacheKeyQuestionList)
	utils.Created(ctx, gin.H{"question": question})
}

// UpdateQuestion edits the subject and content of an existing question.
func (q *QuestionController) UpdateQuestion(ctx *gin.Context) {
	id, ok := parseID(ctx, "id")
	if !ok {
		return
	}
	subject, content, ok := bindQuestion(ctx)
	if !ok {
		return
	}
	question, err := q.questions.FindByID(ctx.Request.Context(), id)
	if err != nil {
		writeRepositoryError(ctx, err, 50106, "failed to load question")
		return
	}
	if question == nil {
		utils.Error(ctx, http.StatusNotFound, 40402, "question not found")
		return
	}
	question.Subject = subject
	question.Content = content
	if err := q.questions.Save(ctx.Request.Context(), question); err != nil {
		writeRepositoryError(ctx, err, 50107, "failed to update question")
		return
	}
	q.invalidate(ctx, id)
	utils.Success(ctx, gin.H{"question": question})
}

// DeleteQuestion removes a question together with its answers.
func (q *QuestionController) DeleteQuestion(ctx *gin.Context) {
	id, ok := parseID(ctx, "id")
	if !ok {
		return
	}
	question, err := q.questions.FindByID(ctx.Request.Context(), id)
	if err != nil {
		writeRepositoryError(ctx, err, 50108, "failed to load question")
		return
	}
	if question == nil {
		utils.Error(ctx, http.StatusNotFound, 40403, "question not found")
		return
	}
	removedAnswers := len(question.AnswerList)
	if err := q.questions.Delete(ctx.Request.Context(), question); err != nil {
		writeRepositoryError(ctx, err, 50109, "failed to delete question")
		return
	}
	q.invalidate(ctx, id)
	utils.Success(ctx, gin.H{"message": "question deleted", "removed_answers": removedAnswers})
}

// CreateAnswer adds an answer to a question through the question's association helper.
func (q *QuestionController) CreateAnswer(ctx *gin.Context) {
	id, ok := parseID(ctx, "id")
	if !ok {
		return
	}
	var req answerRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		utils.Error(ctx, http.StatusBadRequest, 40020, "invalid request payload")
		return
	}
	content := strings.TrimSpace(utils.Sanitize(req.Content))
	if content == "" {
		utils.Error(ctx, http.StatusBadRequest, 40021, "content cannot be empty")
		return
	}

	question, err := q.questions.FindByID(ctx.Request.Context(), id)
	if err != nil {
		writeRepositoryError(ctx, err, 50110, "failed to load question")
		return
	}
	if question == nil {
		utils.Error(ctx, http.StatusNotFound, 40404, "question not found")
		return
	}
	answer, err := q.questions.AddAnswer(ctx.Request.Context(), question, content)
	if err != nil {
		writeRepositoryError(ctx, err, 50111, "failed to create answer")
		return
	}
	q.invalidate(ctx, id)
	utils.Created(ctx, gin.H{"answer": answer, "answer_count": len(question.AnswerList)})
}

// GetAnswer returns one answer; its question_id resolves the parent.
func (q *QuestionController) GetAnswer(ctx *gin.Context) {
	id, ok := parseID(ctx, "id")
	if !ok {
		return
	}
	answer, err := q.answers.FindByID(ctx.Request.Context(), id)
	if err != nil {
		writeRepositoryError(ctx, err, 50112, "failed to load answer")
		return
	}
	if answer == nil {
		utils.Error(ctx, http.StatusNotFound, 40405, "answer not found")
		return
	}
	utils.Success(ctx, gin.H{"answer": answer})
}

func (q *QuestionController) invalidate(ctx *gin.Context, id uint) {
	q.cache.Delete(ctx.Request.Context(), cacheKeyQuestionList, cacheKeyQuestionDetail+strconv.FormatUint(uint64(id), 10))
}

func bindQuestion(ctx *gin.Context) (string, string, bool) {
	var req questionRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		utils.Error(ctx, http.StatusBadRequest, 40010, "invalid request payload")
		return "", "", false
	}
	subject := utils.SanitizeSubject(req.Subject)
	if subject == "" {
		utils.Error(ctx, http.StatusBadRequest, 40011, "subject cannot be empty")
		return "", "", false
	}
	if len([]rune(subject)) > 200 {
		utils.Error(ctx, http.StatusBadRequest, 40012, "subject is longer than 200 characters")
		return "", "", false
	}
	content := strings.TrimSpace(utils.Sanitize(req.Content))
	if content == "" {
		utils.Error(ctx, http.StatusBadRequest, 40013, "content cannot be empty")
		return "", "", false
	}
	return subject, content, true
}

func parseID(ctx *gin.Context, name string) (uint, bool) {
	id, err := strconv.ParseUint(ctx.Param(name), 10, 64)
	if err != nil || id == 0 {
		utils.Error(ctx, http.StatusBadRequest, 40001, "invalid "+name)
		return 0, false
	}
	return uint(id), true
}

// writeRepositoryError maps repository faults to HTTP statuses; anything unknown is a 500 with fallbackCode.
func writeRepositoryError(ctx *gin.Context, err error, fallbackCode int, message string) {
	switch {
	case errors.Is(err, repository.ErrAmbiguousResult):
		utils.Error(ctx, http.StatusConflict, 40901, err.Error())
	case errors.Is(err, repository.ErrConstraintViolation):
		utils.Error(ctx, http.StatusUnprocessableEntity, 42201, err.Error())
	default:
		utils.Sugar.Errorw(message, "path", ctx.Request.URL.Path, "error", err)
		utils.Error(ctx, http.StatusInternalServerError, fallbackCode, message)
	}
}
