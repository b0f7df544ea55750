package controllers

import (
	"github.com/gin-gonic/gin"

	"github.com/cppla/sbb/middleware"
	"github.com/cppla/sbb/utils"
)

// CSRFController exposes the token the CSRF middleware bound to the request.
type CSRFController struct{}

func NewCSRFController() *CSRFController { return &CSRFController{} }

// GetToken returns the current token and where clients must echo it.
func (c *CSRFController) GetToken(ctx *gin.Context) {
	token := ctx.GetString(middleware.ContextCSRFTokenKey)
	utils.Success(ctx, gin.H{
		"enabled":     token != "",
		"token":       token,
		"header_name": middleware.CSRFHeaderName,
		"cookie_name": middleware.CSRFCookieName,
	})
}
