package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"

	"github.com/cppla/sbb/config"
	"github.com/cppla/sbb/utils"
)

func newSecuredEngine(t *testing.T, opts CSRFOptions) (*gin.Engine, *utils.CSRFSigner) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	signer := utils.NewCSRFSigner("secret", time.Hour)
	r := gin.New()
	r.Use(PermitAll(), FrameOptions("sameorigin"), CSRF(signer, opts))
	handler := func(c *gin.Context) {
		d, _ := c.Get(ContextDecisionKey)
		c.String(http.StatusOK, string(d.(Decision)))
	}
	r.Any("/*path", handler)
	return r, signer
}

func TestAuthorizeAlwaysAllows(t *testing.T) {
	for _, p := range []string{"", "/", "/api/v1/questions", "/db-console/stats", "/../etc/passwd", "*", "/a/b/c/d"} {
		require.Equal(t, DecisionAllow, Authorize(p), p)
	}
}

func TestPermitAllAndFrameOptions(t *testing.T) {
	r, _ := newSecuredEngine(t, CSRFOptions{Enabled: false})
	for _, method := range []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete} {
		for _, p := range []string{"/", "/anything", "/api/v1/questions/1"} {
			w := httptest.NewRecorder()
			r.ServeHTTP(w, httptest.NewRequest(method, p, nil))
			require.Equal(t, http.StatusOK, w.Code, "%s %s", method, p)
			require.Equal(t, "allow", w.Body.String())
			require.Equal(t, "SAMEORIGIN", w.Header().Get("X-Frame-Options"))
		}
	}
}

func TestCSRF_SafeRequestIssuesCookie(t *testing.T) {
	r, signer := newSecuredEngine(t, CSRFOptions{Enabled: true})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/questions", nil))
	require.Equal(t, http.StatusOK, w.Code)

	token := w.Header().Get(CSRFHeaderName)
	require.NotEmpty(t, token)
	require.NoError(t, signer.Verify(token))

	var found bool
	for _, c := range w.Result().Cookies() {
		if c.Name == CSRFCookieName {
			found = true
			require.Equal(t, token, c.Value)
			require.False(t, c.HttpOnly)
		}
	}
	require.True(t, found)
}

func TestCSRF_UnsafeRequests(t *testing.T) {
	r, signer := newSecuredEngine(t, CSRFOptions{Enabled: true, Ignore: []string{"/db-console/**"}})
	token, err := signer.Issue()
	require.NoError(t, err)
	other, err := signer.Issue()
	require.NoError(t, err)
	forged, err := utils.NewCSRFSigner("other-secret", time.Hour).Issue()
	require.NoError(t, err)

	cases := []struct {
		name   string
		path   string
		cookie string
		header string
		want   int
	}{
		{name: "missing token", path: "/api/v1/questions", want: http.StatusForbidden},
		{name: "header only", path: "/api/v1/questions", header: token, want: http.StatusForbidden},
		{name: "cookie only", path: "/api/v1/questions", cookie: token, want: http.StatusForbidden},
		{name: "mismatch", path: "/api/v1/questions", cookie: token, header: other, want: http.StatusForbidden},
		{name: "foreign signature", path: "/api/v1/questions", cookie: forged, header: forged, want: http.StatusForbidden},
		{name: "matching token", path: "/api/v1/questions", cookie: token, header: token, want: http.StatusOK},
		{name: "console exempt", path: "/db-console/cache/flush", want: http.StatusOK},
		{name: "console root exempt", path: "/db-console", want: http.StatusOK},
	}
	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, tc.path, nil)
			if tc.cookie != "" {
				req.AddCookie(&http.Cookie{Name: CSRFCookieName, Value: tc.cookie})
			}
			if tc.header != "" {
				req.Header.Set(CSRFHeaderName, tc.header)
			}
			w := httptest.NewRecorder()
			r.ServeHTTP(w, req)
			require.Equal(t, tc.want, w.Code)
			// Rejections come from the CSRF stage, never from authorization.
			require.Equal(t, "SAMEORIGIN", w.Header().Get("X-Frame-Options"))
		})
	}
}

func TestMatchPath(t *testing.T) {
	cases := []struct {
		pattern string
		path    string
		want    bool
	}{
		{"/**", "/a/b/c", true},
		{"/**", "/a", true},
		{"/db-console/**", "/db-console", true},
		{"/db-console/**", "/db-console/stats", true},
		{"/db-console/**", "/db-console/cache/flush", true},
		{"/db-console/**", "/db-consoles/stats", false},
		{"/db-console/**", "/api/db-console", false},
		{"/api/*/questions", "/api/v1/questions", true},
		{"/api/*/questions", "/api/v1/x/questions", false},
		{"/api/**/answers", "/api/v1/questions/2/answers", true},
		{"/exact", "/exact/", true},
		{"/exact", "/exact/more", false},
		{"/q?", "/q1", true},
		{"/q[0-9]", "/qx", false},
		{"/db-console/**", "/db-console/../api/v1/questions", false},
	}
	for _, tc := range cases {
		require.Equal(t, tc.want, MatchPath(tc.pattern, tc.path), "%s vs %s", tc.pattern, tc.path)
	}
}

func TestCSRFOptionsFrom_RootConsoleExemptsNothing(t *testing.T) {
	for _, console := range []string{"/", "", "///"} {
		opts := CSRFOptionsFrom(config.AppConfig{CSRFEnabled: true, ConsolePath: console})
		require.Empty(t, opts.Ignore, console)

		r, _ := newSecuredEngine(t, opts)
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/api/v1/questions", nil))
		require.Equal(t, http.StatusForbidden, w.Code, console)
	}

	opts := CSRFOptionsFrom(config.AppConfig{CSRFEnabled: true, ConsolePath: "/db-console"})
	require.Equal(t, []string{"/db-console/**"}, opts.Ignore)
}
