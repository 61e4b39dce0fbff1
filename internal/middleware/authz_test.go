//go:build unit

package middleware

import (
	"category-api/internal/auth"
	"category-api/internal/logger"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/casbin/casbin/v2"
)

// subjectSession is a session.Manager stub that reports a fixed subject.
type subjectSession struct {
	subject string
}

func (s subjectSession) LoadAndSave(next http.Handler) http.Handler           { return next }
func (s subjectSession) Put(ctx context.Context, key string, val interface{}) {}
func (s subjectSession) GetString(ctx context.Context, key string) string {
	if key == SessionSubjectKey {
		return s.subject
	}
	return ""
}
func (s subjectSession) PopString(ctx context.Context, key string) string { return "" }
func (s subjectSession) RenewToken(ctx context.Context) error             { return nil }
func (s subjectSession) Destroy(ctx context.Context) error                { return nil }
func (s subjectSession) Remove(ctx context.Context, key string)           {}

func TestAuthorizer(t *testing.T) {
	m, err := auth.NewModel()
	if err != nil {
		t.Fatalf("failed to build model: %v", err)
	}
	e, err := casbin.NewEnforcer(m)
	if err != nil {
		t.Fatalf("failed to create enforcer: %v", err)
	}
	auth.SeedDefaultPolicies(e, logger.Nop())
	auth.SeedAdmins(e, []string{"alice"}, logger.Nop())
	if err := auth.EnsureUser(e, "bob"); err != nil {
		t.Fatalf("failed to add user: %v", err)
	}

	testCases := []struct {
		name       string
		subject    string
		method     string
		path       string
		wantStatus int
	}{
		{"anonymous reads navlist", "", "GET", "/api/navlist", http.StatusOK},
		{"anonymous reads category", "", "GET", "/api/categories/c1", http.StatusOK},
		{"anonymous reads page", "", "GET", "/category/c1", http.StatusOK},
		{"anonymous cannot create", "", "POST", "/api/categories", http.StatusForbidden},
		{"anonymous cannot sort", "", "POST", "/api/categories/all/sort", http.StatusForbidden},
		{"anonymous cannot delete", "", "POST", "/api/categories/c1/delete", http.StatusForbidden},
		{"user reads", "bob", "GET", "/api/subcategories/c1", http.StatusOK},
		{"user cannot update", "bob", "POST", "/api/categories/c1", http.StatusForbidden},
		{"admin reads", "alice", "GET", "/api/categories", http.StatusOK},
		{"admin creates", "alice", "POST", "/api/categories", http.StatusOK},
		{"admin sorts", "alice", "POST", "/api/categories/all/sort", http.StatusOK},
		{"admin deletes", "alice", "POST", "/api/categories/c1/delete", http.StatusOK},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			var seen *UserInfo
			next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				seen = GetUserInfo(r.Context())
				w.WriteHeader(http.StatusOK)
			})
			h := Authorizer(e, subjectSession{subject: tc.subject}, logger.Nop())(next)

			rr := httptest.NewRecorder()
			h.ServeHTTP(rr, httptest.NewRequest(tc.method, tc.path, nil))

			if rr.Code != tc.wantStatus {
				t.Fatalf("want status %d; got %d", tc.wantStatus, rr.Code)
			}
			if tc.wantStatus == http.StatusForbidden {
				var body map[string]string
				if err := json.Unmarshal(rr.Body.Bytes(), &body); err != nil {
					t.Fatalf("invalid JSON: %v", err)
				}
				if body["error"] != "permission:denied" {
					t.Errorf("want error code permission:denied; got %q", body["error"])
				}
				return
			}
			want := tc.subject
			if want == "" {
				want = AnonymousSubject
			}
			if seen == nil || seen.Subject != want {
				t.Errorf("want subject %q in context; got %+v", want, seen)
			}
		})
	}
}
