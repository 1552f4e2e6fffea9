package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"docserial/internal/core/apperror"
	appctx "docserial/internal/core/context"
	"docserial/pkg/logger"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type staticValidator struct {
	principal *appctx.Principal
}

func (v staticValidator) ValidateToken(token string) (*appctx.Principal, error) {
	if token != "good" {
		return nil, apperror.NewUnauthorized("bad token")
	}
	return v.principal, nil
}

func TestTrace_PropagatesRequestID(t *testing.T) {
	r := gin.New()
	r.Use(Trace())

	var trace *appctx.TraceContext
	r.GET("/", func(c *gin.Context) {
		trace = appctx.GetTrace(c.Request.Context())
		c.Status(http.StatusNoContent)
	})

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(HeaderRequestID, "req-1")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	require.NotNil(t, trace)
	assert.Equal(t, "req-1", trace.RequestID)
	assert.Equal(t, appctx.OriginHTTP, trace.Origin)
	assert.NotEmpty(t, trace.TraceID)
	assert.Equal(t, "req-1", w.Header().Get(HeaderRequestID))
	assert.Equal(t, trace.TraceID, w.Header().Get(HeaderTraceID))
}

func TestLogger_LogsRequestAndInjectsLogger(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)
	log := logger.NewFromZap(zap.New(core))

	r := gin.New()
	r.Use(Trace(), Logger(log))
	r.GET("/x", func(c *gin.Context) {
		logger.Info(c.Request.Context(), "inside handler")
		c.Status(http.StatusTeapot)
	})

	r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/x?a=1", nil))

	require.Equal(t, 2, logs.Len())
	inside := logs.FilterMessage("inside handler").All()
	require.Len(t, inside, 1)
	assert.Equal(t, appctx.OriginHTTP, inside[0].ContextMap()["origin"])

	req := logs.FilterMessage("http request").All()
	require.Len(t, req, 1)
	fields := req[0].ContextMap()
	assert.Equal(t, "/x", fields["path"])
	assert.Equal(t, "a=1", fields["query"])
	assert.EqualValues(t, http.StatusTeapot, fields["status"])
}

func TestAuthAndPermission(t *testing.T) {
	r := gin.New()
	r.Use(ErrorHandler())
	v := staticValidator{principal: &appctx.Principal{Subject: "ops", Permissions: []string{appctx.PermPrefixRead}}}
	g := r.Group("", Auth(v))
	g.GET("/read", RequirePermission(appctx.PermPrefixRead), func(c *gin.Context) {
		assert.Equal(t, "ops", appctx.GetSubject(c.Request.Context()))
		c.Status(http.StatusOK)
	})
	g.GET("/write", RequirePermission(appctx.PermPrefixWrite), func(c *gin.Context) {
		c.Status(http.StatusOK)
	})

	cases := []struct {
		path, header string
		want         int
	}{
		{"/read", "", http.StatusUnauthorized},
		{"/read", "Basic good", http.StatusUnauthorized},
		{"/read", "Bearer nope", http.StatusUnauthorized},
		{"/read", "Bearer good", http.StatusOK},
		{"/write", "bearer good", http.StatusForbidden},
	}
	for _, tc := range cases {
		req := httptest.NewRequest(http.MethodGet, tc.path, nil)
		if tc.header != "" {
			req.Header.Set("Authorization", tc.header)
		}
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		assert.Equal(t, tc.want, w.Code, "%s %q", tc.path, tc.header)
	}
}

func TestRequirePermission_NoPrincipal(t *testing.T) {
	r := gin.New()
	r.Use(ErrorHandler())
	r.GET("/", RequirePermission(appctx.PermPrefixRead), func(c *gin.Context) { c.Status(http.StatusOK) })

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestRecovery_Writes500(t *testing.T) {
	r := gin.New()
	r.Use(Recovery(), Trace(), ErrorHandler())
	r.GET("/", func(c *gin.Context) { panic("boom") })

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Contains(t, w.Body.String(), apperror.CodeInternal)
	assert.NotContains(t, w.Body.String(), "boom")
}
