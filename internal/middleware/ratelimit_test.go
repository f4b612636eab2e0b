package middleware

import (
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"
	"time"

	"github.com/hitoshi/miniwiki/internal/model"
	"golang.org/x/time/rate"
)

func okHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
}

func requestFrom(ip string, user *model.User) *http.Request {
	req := httptest.NewRequest(http.MethodGet, "/wiki", nil)
	req.RemoteAddr = ip + ":54321"
	if user != nil {
		req = req.WithContext(ContextWithUser(req.Context(), user))
	}
	return req
}

func testConfig(generalBurst, authBurst int) RateLimiterConfig {
	return RateLimiterConfig{
		GeneralRate:     1,
		GeneralBurst:    generalBurst,
		AuthRate:        rate.Limit(10.0 / 60.0),
		AuthBurst:       authBurst,
		CleanupInterval: time.Minute,
	}
}

// --- GeneralMiddleware ---

func TestGeneralMiddleware_AllowsWithinBurst(t *testing.T) {
	rl := NewRateLimiter(testConfig(5, 10))
	defer rl.Stop()
	handler := rl.GeneralMiddleware()(okHandler())

	for i := 0; i < 5; i++ {
		w := httptest.NewRecorder()
		handler.ServeHTTP(w, requestFrom("10.0.0.1", nil))
		if w.Code != http.StatusOK {
			t.Errorf("request %d: status = %d, want %d", i, w.Code, http.StatusOK)
		}
	}
}

func TestGeneralMiddleware_Returns429WithRetryAfter(t *testing.T) {
	rl := NewRateLimiter(testConfig(2, 10))
	defer rl.Stop()
	handler := rl.GeneralMiddleware()(okHandler())

	for i := 0; i < 2; i++ {
		handler.ServeHTTP(httptest.NewRecorder(), requestFrom("10.0.0.1", nil))
	}

	w := httptest.NewRecorder()
	handler.ServeHTTP(w, requestFrom("10.0.0.1", nil))

	if w.Code != http.StatusTooManyRequests {
		t.Fatalf("status = %d, want %d", w.Code, http.StatusTooManyRequests)
	}
	retryAfter, err := strconv.Atoi(w.Header().Get("Retry-After"))
	if err != nil || retryAfter < 1 {
		t.Errorf("Retry-After = %q, want positive integer", w.Header().Get("Retry-After"))
	}
}

func TestGeneralMiddleware_KeysByUserWhenLoggedIn(t *testing.T) {
	rl := NewRateLimiter(testConfig(1, 10))
	defer rl.Stop()
	handler := rl.GeneralMiddleware()(okHandler())

	alice := &model.User{ID: 1}
	bob := &model.User{ID: 2}

	// 同じIPでもユーザーごとに独立して制限される
	for _, user := range []*model.User{alice, bob} {
		w := httptest.NewRecorder()
		handler.ServeHTTP(w, requestFrom("10.0.0.1", user))
		if w.Code != http.StatusOK {
			t.Errorf("user %d: status = %d, want %d", user.ID, w.Code, http.StatusOK)
		}
	}

	w := httptest.NewRecorder()
	handler.ServeHTTP(w, requestFrom("10.0.0.2", alice))
	if w.Code != http.StatusTooManyRequests {
		t.Errorf("alice from another IP: status = %d, want %d", w.Code, http.StatusTooManyRequests)
	}

	if got := rl.GeneralLimiterCount(); got != 2 {
		t.Errorf("GeneralLimiterCount() = %d, want 2", got)
	}
}

func TestGeneralMiddleware_IsolatesClients(t *testing.T) {
	rl := NewRateLimiter(testConfig(1, 10))
	defer rl.Stop()
	handler := rl.GeneralMiddleware()(okHandler())

	handler.ServeHTTP(httptest.NewRecorder(), requestFrom("10.0.0.1", nil))

	w := httptest.NewRecorder()
	handler.ServeHTTP(w, requestFrom("10.0.0.2", nil))
	if w.Code != http.StatusOK {
		t.Errorf("second client: status = %d, want %d", w.Code, http.StatusOK)
	}
}

// --- AuthMiddleware ---

func TestAuthMiddleware_LimitsByIPRegardlessOfUser(t *testing.T) {
	rl := NewRateLimiter(testConfig(100, 3))
	defer rl.Stop()
	handler := rl.AuthMiddleware()(okHandler())

	users := []*model.User{nil, {ID: 1}, {ID: 2}}
	for i, user := range users {
		w := httptest.NewRecorder()
		handler.ServeHTTP(w, requestFrom("192.0.2.1", user))
		if w.Code != http.StatusOK {
			t.Errorf("request %d: status = %d, want %d", i, w.Code, http.StatusOK)
		}
	}

	w := httptest.NewRecorder()
	handler.ServeHTTP(w, requestFrom("192.0.2.1", &model.User{ID: 3}))
	if w.Code != http.StatusTooManyRequests {
		t.Errorf("status = %d, want %d", w.Code, http.StatusTooManyRequests)
	}
	// 10 req/min なので1トークンの補充に約6秒
	if got, _ := strconv.Atoi(w.Header().Get("Retry-After")); got < 6 {
		t.Errorf("Retry-After = %q, want >= 6", w.Header().Get("Retry-After"))
	}
}

func TestAuthMiddleware_IndependentFromGeneral(t *testing.T) {
	rl := NewRateLimiter(testConfig(1, 5))
	defer rl.Stop()

	general := rl.GeneralMiddleware()(okHandler())
	auth := rl.AuthMiddleware()(okHandler())

	general.ServeHTTP(httptest.NewRecorder(), requestFrom("10.0.0.1", nil))
	w := httptest.NewRecorder()
	general.ServeHTTP(w, requestFrom("10.0.0.1", nil))
	if w.Code != http.StatusTooManyRequests {
		t.Fatalf("general: status = %d, want %d", w.Code, http.StatusTooManyRequests)
	}

	w = httptest.NewRecorder()
	auth.ServeHTTP(w, requestFrom("10.0.0.1", nil))
	if w.Code != http.StatusOK {
		t.Errorf("auth: status = %d, want %d", w.Code, http.StatusOK)
	}
	if got := rl.AuthLimiterCount(); got != 1 {
		t.Errorf("AuthLimiterCount() = %d, want 1", got)
	}
}

// --- cleanup ---

func TestRateLimiter_CleanupRemovesExpiredEntries(t *testing.T) {
	rl := NewRateLimiter(testConfig(10, 10))
	defer rl.Stop()

	base := time.Now()
	rl.now = func() time.Time { return base }

	rl.GeneralMiddleware()(okHandler()).ServeHTTP(httptest.NewRecorder(), requestFrom("10.0.0.1", nil))
	rl.AuthMiddleware()(okHandler()).ServeHTTP(httptest.NewRecorder(), requestFrom("10.0.0.1", nil))

	rl.now = func() time.Time { return base.Add(time.Minute) }
	rl.cleanup()
	if rl.GeneralLimiterCount() != 1 || rl.AuthLimiterCount() != 1 {
		t.Fatalf("entries removed too early: general=%d auth=%d", rl.GeneralLimiterCount(), rl.AuthLimiterCount())
	}

	rl.now = func() time.Time { return base.Add(3 * time.Minute) }
	rl.cleanup()
	if rl.GeneralLimiterCount() != 0 || rl.AuthLimiterCount() != 0 {
		t.Errorf("entries not removed: general=%d auth=%d", rl.GeneralLimiterCount(), rl.AuthLimiterCount())
	}
}

func TestRateLimiter_StopIsIdempotent(t *testing.T) {
	rl := NewRateLimiter(testConfig(1, 1))
	rl.Stop()
	rl.Stop()
}

func TestNewRateLimiterConfig(t *testing.T) {
	cfg := DefaultRateLimiterConfig()

	if cfg.GeneralBurst != 120 || cfg.AuthBurst != 10 {
		t.Errorf("bursts = %d/%d, want 120/10", cfg.GeneralBurst, cfg.AuthBurst)
	}
	if float64(cfg.GeneralRate) != 2.0 {
		t.Errorf("GeneralRate = %v, want 2", cfg.GeneralRate)
	}
	if cfg.CleanupInterval != 5*time.Minute {
		t.Errorf("CleanupInterval = %v, want 5m", cfg.CleanupInterval)
	}
}
