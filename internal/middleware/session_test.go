package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/hitoshi/miniwiki/internal/model"
)

// --- モック定義 ---

type mockResolver struct {
	resolveFn func(r *http.Request) *model.User
}

func (m *mockResolver) Resolve(r *http.Request) *model.User {
	if m.resolveFn != nil {
		return m.resolveFn(r)
	}
	return nil
}

func resolverFor(user *model.User) *mockResolver {
	return &mockResolver{
		resolveFn: func(_ *http.Request) *model.User { return user },
	}
}

// --- テスト ---

func TestSessionMiddleware_InjectsUser(t *testing.T) {
	mw := NewSessionMiddleware(resolverFor(&model.User{ID: 12, Username: "alice"}))

	var captured *model.User
	handler := mw(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		captured = UserFromContext(r.Context())
		w.WriteHeader(http.StatusOK)
	}))

	w := httptest.NewRecorder()
	handler.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/wiki", nil))

	if w.Code != http.StatusOK {
		t.Errorf("status = %d, want %d", w.Code, http.StatusOK)
	}
	if captured == nil || captured.ID != 12 {
		t.Errorf("user = %+v, want id=12", captured)
	}
}

func TestSessionMiddleware_AnonymousPassesThrough(t *testing.T) {
	mw := NewSessionMiddleware(resolverFor(nil))

	called := false
	handler := mw(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
		if user := UserFromContext(r.Context()); user != nil {
			t.Errorf("user = %+v, want nil", user)
		}
		w.WriteHeader(http.StatusOK)
	}))

	w := httptest.NewRecorder()
	handler.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/wiki", nil))

	if !called {
		t.Error("handler should have been called")
	}
	if w.Code != http.StatusOK {
		t.Errorf("status = %d, want %d", w.Code, http.StatusOK)
	}
}

func TestRequireUserMiddleware_RedirectsAnonymous(t *testing.T) {
	handler := NewRequireUserMiddleware("/login")(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Error("handler should not be called")
	}))

	for _, method := range []string{http.MethodGet, http.MethodPost} {
		w := httptest.NewRecorder()
		handler.ServeHTTP(w, httptest.NewRequest(method, "/wiki/new", nil))

		if w.Code != http.StatusFound {
			t.Errorf("%s: status = %d, want %d", method, w.Code, http.StatusFound)
		}
		if loc := w.Header().Get("Location"); loc != "/login" {
			t.Errorf("%s: Location = %q, want %q", method, loc, "/login")
		}
	}
}

func TestRequireUserMiddleware_AllowsUser(t *testing.T) {
	called := false
	handler := NewRequireUserMiddleware("/login")(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest(http.MethodGet, "/wiki/new", nil)
	req = req.WithContext(ContextWithUser(req.Context(), &model.User{ID: 1}))
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)

	if !called {
		t.Error("handler should have been called")
	}
	if w.Code != http.StatusOK {
		t.Errorf("status = %d, want %d", w.Code, http.StatusOK)
	}
}

func TestUserFromContext_Empty(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	if user := UserFromContext(req.Context()); user != nil {
		t.Errorf("UserFromContext() = %+v, want nil", user)
	}
}
