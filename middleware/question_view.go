package middleware

import (
	"context"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/cppla/sbb/repository"
	"github.com/cppla/sbb/utils"
)

// QuestionDetailRoute is the route template whose successful reads are counted.
const QuestionDetailRoute = "/api/v1/questions/:id"

// QuestionViewRecorder counts successful GETs of a question detail per day.
func QuestionViewRecorder(views *repository.ViewRepository) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if c.Request.Method != "GET" || c.FullPath() != QuestionDetailRoute {
			return
		}
		status := c.Writer.Status()
		if status < 200 || status >= 300 {
			return
		}
		id, err := strconv.ParseUint(c.Param("id"), 10, 64)
		if err != nil {
			return
		}
		// The response is already written; a failed count must not affect it.
		ctx, cancel := context.WithTimeout(context.WithoutCancel(c.Request.Context()), 2*time.Second)
		defer cancel()
		if err := views.Record(ctx, uint(id), time.Now()); err != nil {
			utils.Sugar.Warnf("record question view id=%d err=%v", id, err)
		}
	}
}
