package middleware

import (
	"category-api/internal/logger"
	"category-api/internal/session"
	"net/http"

	"github.com/casbin/casbin/v2"
)

// SessionSubjectKey is the session key holding the logged-in user's subject.
const SessionSubjectKey = "user_subject"

// Authorizer creates a new middleware for authorization.
// It checks the user's permissions using Casbin based on session data.
func Authorizer(e casbin.IEnforcer, sm session.Manager, log logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			subject := sm.GetString(r.Context(), SessionSubjectKey)
			if subject == "" {
				subject = AnonymousSubject
			}

			// Add user info to the request context for downstream handlers.
			r = r.WithContext(SetUserInfo(r.Context(), &UserInfo{Subject: subject}))

			allowed, err := e.Enforce(subject, r.URL.Path, r.Method)
			if err != nil {
				log.Error(err, "authorization check failed")
				WriteError(w, http.StatusInternalServerError, "internal:error", "authorization", "Authorization error")
				return
			}

			if !allowed {
				WriteError(w, http.StatusForbidden, "permission:denied", "permission", "Permission denied")
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
