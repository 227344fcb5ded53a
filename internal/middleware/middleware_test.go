package middleware

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/rs/zerolog"
	"github.com/yigit/lms/internal/app/models/dto"
	"github.com/yigit/lms/internal/pkg/apperrors"
	"github.com/yigit/lms/internal/pkg/metrics"
	"github.com/yigit/lms/internal/pkg/ratelimit"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func serve(router *gin.Engine, method, path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func decodeError(t *testing.T, w *httptest.ResponseRecorder) dto.ErrorResponse {
	t.Helper()
	var body dto.ErrorResponse
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode %q: %v", w.Body.String(), err)
	}
	return body
}

func TestHandleAPIError(t *testing.T) {
	tests := []struct {
		name    string
		err     error
		status  int
		code    dto.ErrorCode
		message string
	}{
		{"not found", apperrors.NewNotFoundError(apperrors.EntityCourse, 7), http.StatusNotFound, dto.ErrorCodeNotFound, "Course not found: 7"},
		{"conflict", apperrors.NewAlreadyEnrolledError(), http.StatusConflict, dto.ErrorCodeConflict, "Student is already enrolled to this course."},
		{"validation", apperrors.NewValidationError(map[string]string{"courseId": "must not be null"}), http.StatusBadRequest, dto.ErrorCodeValidation, "Request validation failed."},
		{"unexpected", errors.New("connection reset by peer"), http.StatusInternalServerError, dto.ErrorCodeInternal, "Unexpected error occurred."},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			router := gin.New()
			router.GET("/", func(c *gin.Context) { HandleAPIError(c, tt.err) })

			w := serve(router, http.MethodGet, "/", "")
			if w.Code != tt.status {
				t.Fatalf("status = %d, want %d", w.Code, tt.status)
			}
			body := decodeError(t, w)
			if body.Error != tt.code || body.Message != tt.message {
				t.Fatalf("body = %+v", body)
			}
			if tt.code == dto.ErrorCodeValidation && body.Fields["courseId"] != "must not be null" {
				t.Errorf("fields = %v", body.Fields)
			}
			if tt.code != dto.ErrorCodeValidation && body.Fields != nil {
				t.Errorf("unexpected fields %v", body.Fields)
			}
		})
	}
}

func TestHandleAPIErrorHidesInternalDetails(t *testing.T) {
	router := gin.New()
	router.GET("/", func(c *gin.Context) { HandleAPIError(c, errors.New("pq: password authentication failed")) })

	w := serve(router, http.MethodGet, "/", "")
	if strings.Contains(w.Body.String(), "password") {
		t.Fatalf("internal error leaked: %s", w.Body.String())
	}
}

type payload struct {
	Name  *string `json:"name" binding:"required"`
	Count int     `json:"count" binding:"min=1,max=5"`
}

func TestBindJSON(t *testing.T) {
	tests := []struct {
		name   string
		body   string
		fields map[string]string
	}{
		{"valid", `{"name":"x","count":2}`, nil},
		{"missing required", `{"count":2}`, map[string]string{"name": "must not be null"}},
		{"below min", `{"name":"x","count":0}`, map[string]string{"count": "must be at least 1"}},
		{"above max", `{"name":"x","count":9}`, map[string]string{"count": "must be at most 5"}},
		{"wrong type", `{"name":"x","count":"two"}`, map[string]string{"count": "must be of type int"}},
		{"syntax error", `{"name":}`, map[string]string{"body": "malformed JSON"}},
		{"empty body", ``, map[string]string{"body": "request body is required"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var bindErr error
			router := gin.New()
			router.POST("/", func(c *gin.Context) {
				var p payload
				bindErr = BindJSON(c, &p)
				c.Status(http.StatusOK)
			})
			serve(router, http.MethodPost, "/", tt.body)

			if tt.fields == nil {
				if bindErr != nil {
					t.Fatalf("BindJSON() error = %v", bindErr)
				}
				return
			}
			if !errors.Is(bindErr, apperrors.ErrValidationFailed) {
				t.Fatalf("BindJSON() error = %v, want validation error", bindErr)
			}
			got := apperrors.ValidationFields(bindErr)
			for field, msg := range tt.fields {
				if got[field] != msg {
					t.Errorf("fields[%s] = %q, want %q (all: %v)", field, got[field], msg, got)
				}
			}
		})
	}
}

func TestRequestID(t *testing.T) {
	router := gin.New()
	router.Use(RequestID())
	var seen string
	router.GET("/", func(c *gin.Context) {
		seen = GetRequestID(c)
		c.Status(http.StatusOK)
	})

	w := serve(router, http.MethodGet, "/", "")
	generated := w.Header().Get(RequestIDHeader)
	if generated == "" || generated != seen {
		t.Fatalf("generated id = %q, handler saw %q", generated, seen)
	}

	const callerID = "4f9c2b1e-8a6d-4c3e-9b7a-1d2e3f405162"
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(RequestIDHeader, callerID)
	w = httptest.NewRecorder()
	router.ServeHTTP(w, req)
	if got := w.Header().Get(RequestIDHeader); got != callerID || seen != callerID {
		t.Fatalf("propagated id = %q, handler saw %q", got, seen)
	}
}

func TestRequestIDReplacesInvalidCallerID(t *testing.T) {
	router := gin.New()
	router.Use(RequestID())
	router.GET("/", func(c *gin.Context) { c.Status(http.StatusOK) })

	for _, bad := range []string{"abc-123", strings.Repeat("x", 4096), "id\twith\ttabs"} {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set(RequestIDHeader, bad)
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		got := w.Header().Get(RequestIDHeader)
		if got == bad {
			t.Errorf("caller id %.20q was echoed back", bad)
		}
		if _, err := uuid.Parse(got); err != nil {
			t.Errorf("replacement id %q is not a UUID", got)
		}
	}
}

func TestRecovery(t *testing.T) {
	router := gin.New()
	router.Use(Recovery(zerolog.Nop()))
	router.GET("/", func(*gin.Context) { panic("boom") })

	w := serve(router, http.MethodGet, "/", "")
	if w.Code != http.StatusInternalServerError {
		t.Fatalf("status = %d", w.Code)
	}
	if body := decodeError(t, w); body.Error != dto.ErrorCodeInternal {
		t.Fatalf("body = %+v", body)
	}
}

func TestRequestLoggerWritesOneLine(t *testing.T) {
	var buf strings.Builder
	router := gin.New()
	router.Use(RequestID(), RequestLogger(zerolog.New(&buf)))
	router.GET("/missing", func(c *gin.Context) { c.Status(http.StatusNotFound) })

	serve(router, http.MethodGet, "/missing", "")

	var line map[string]interface{}
	if err := json.Unmarshal([]byte(strings.TrimSpace(buf.String())), &line); err != nil {
		t.Fatalf("log line %q: %v", buf.String(), err)
	}
	if line["level"] != "warn" || line["status"] != float64(http.StatusNotFound) || line["requestId"] == "" {
		t.Fatalf("log line = %v", line)
	}
}

func TestRateLimit(t *testing.T) {
	limiter := ratelimit.NewClientLimiter(0.001, 2, time.Minute)
	router := gin.New()
	router.Use(RateLimit(limiter))
	router.GET("/", func(c *gin.Context) { c.Status(http.StatusOK) })

	for i := 0; i < 2; i++ {
		if w := serve(router, http.MethodGet, "/", ""); w.Code != http.StatusOK {
			t.Fatalf("request %d status = %d", i, w.Code)
		}
	}

	w := serve(router, http.MethodGet, "/", "")
	if w.Code != http.StatusTooManyRequests {
		t.Fatalf("status = %d, want 429", w.Code)
	}
	if w.Header().Get("Retry-After") == "" {
		t.Error("Retry-After header missing")
	}
	if body := decodeError(t, w); body.Error != dto.ErrorCodeTooManyRequests {
		t.Fatalf("body = %+v", body)
	}
}

func TestRateLimitNilLimiterAllows(t *testing.T) {
	router := gin.New()
	router.Use(RateLimit(nil))
	router.GET("/", func(c *gin.Context) { c.Status(http.StatusOK) })

	for i := 0; i < 5; i++ {
		if w := serve(router, http.MethodGet, "/", ""); w.Code != http.StatusOK {
			t.Fatalf("status = %d", w.Code)
		}
	}
}

func TestMetricsUsesRouteTemplate(t *testing.T) {
	m := metrics.New()
	router := gin.New()
	router.Use(Metrics(m))
	router.GET("/api/courses/:id", func(c *gin.Context) { c.Status(http.StatusOK) })

	serve(router, http.MethodGet, "/api/courses/1", "")
	serve(router, http.MethodGet, "/api/courses/2", "")

	n, err := testutil.GatherAndCount(m.Registry(), "lms_http_requests_total")
	if err != nil {
		t.Fatal(err)
	}
	if n != 1 {
		t.Fatalf("series = %d, want one per route template", n)
	}
}
