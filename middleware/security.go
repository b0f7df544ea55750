package middleware

import (
	"crypto/subtle"
	"net/http"
	"path"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/gin-gonic/gin"

	"github.com/cppla/sbb/config"
	"github.com/cppla/sbb/utils"
)

const (
	// ContextDecisionKey stores the authorization decision inside Gin context.
	ContextDecisionKey = "authz_decision"
	// ContextCSRFTokenKey stores the CSRF token valid for the current request.
	ContextCSRFTokenKey = "csrf_token"

	// CSRFCookieName is readable by scripts so clients can echo it back in CSRFHeaderName.
	CSRFCookieName = "XSRF-TOKEN"
	CSRFHeaderName = "X-XSRF-TOKEN"

	// PermitAllPattern matches every request path.
	PermitAllPattern = "/**"
)

// Decision is the outcome of the authorization rule for a request.
type Decision string

const (
	DecisionAllow Decision = "allow"
)

// Authorize applies the single "/**" permit-all rule. No input produces anything but DecisionAllow.
func Authorize(requestPath string) Decision {
	return DecisionAllow
}

// PermitAll records the authorization decision and always continues the chain.
func PermitAll() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set(ContextDecisionKey, Authorize(c.Request.URL.Path))
		c.Next()
	}
}

// FrameOptions writes the X-Frame-Options header on every response.
func FrameOptions(mode string) gin.HandlerFunc {
	mode = strings.ToUpper(strings.TrimSpace(mode))
	if mode == "" {
		mode = "SAMEORIGIN"
	}
	return func(c *gin.Context) {
		c.Header("X-Frame-Options", mode)
		c.Next()
	}
}

// CSRFOptions configures the double-submit cookie check.
type CSRFOptions struct {
	Enabled bool
	// Ignore lists ant-style patterns exempt from validation, e.g. "/db-console/**".
	Ignore []string
}

// CSRFOptionsFrom exempts the configured console path. A root or empty console path
// exempts nothing, since it would cover every route.
func CSRFOptionsFrom(cfg config.AppConfig) CSRFOptions {
	opts := CSRFOptions{Enabled: cfg.CSRFEnabled}
	if console := strings.TrimRight(cfg.ConsolePath, "/"); console != "" {
		opts.Ignore = []string{console + "/**"}
	}
	return opts
}

// CSRF issues a signed token cookie on safe requests and requires unsafe requests to
// echo that cookie in the X-XSRF-TOKEN header.
func CSRF(signer *utils.CSRFSigner, opts CSRFOptions) gin.HandlerFunc {
	maxAge := int(signer.TTL().Seconds())
	return func(c *gin.Context) {
		if !opts.Enabled {
			c.Next()
			return
		}

		cookie, _ := c.Cookie(CSRFCookieName)
		cookieValid := cookie != "" && signer.Verify(cookie) == nil

		if isSafeMethod(c.Request.Method) {
			token := cookie
			if !cookieValid {
				var err error
				token, err = signer.Issue()
				if err != nil {
					utils.Sugar.Errorf("issue csrf token: %v", err)
					utils.Error(c, http.StatusInternalServerError, 50010, "failed to issue csrf token")
					c.Abort()
					return
				}
				c.SetSameSite(http.SameSiteLaxMode)
				c.SetCookie(CSRFCookieName, token, maxAge, "/", "", false, false)
			}
			c.Set(ContextCSRFTokenKey, token)
			c.Header(CSRFHeaderName, token)
			c.Next()
			return
		}

		if matchAny(opts.Ignore, c.Request.URL.Path) {
			c.Next()
			return
		}

		header := c.GetHeader(CSRFHeaderName)
		if !cookieValid || header == "" || subtle.ConstantTimeCompare([]byte(header), []byte(cookie)) != 1 {
			utils.Error(c, http.StatusForbidden, 40310, "invalid or missing csrf token")
			c.Abort()
			return
		}
		c.Set(ContextCSRFTokenKey, cookie)
		c.Next()
	}
}

func isSafeMethod(method string) bool {
	switch method {
	case http.MethodGet, http.MethodHead, http.MethodOptions, http.MethodTrace:
		return true
	}
	return false
}

func matchAny(patterns []string, p string) bool {
	for _, pattern := range patterns {
		if MatchPath(pattern, p) {
			return true
		}
	}
	return false
}

// MatchPath reports whether p matches a doublestar pattern: "**" spans any number of
// segments, "/x/**" also matches "/x" itself. A trailing slash on p is ignored.
func MatchPath(pattern, p string) bool {
	ok, err := doublestar.Match(pattern, cleanPath(p))
	return err == nil && ok
}

func cleanPath(p string) string {
	if p == "" {
		return "/"
	}
	return path.Clean("/" + p)
}
