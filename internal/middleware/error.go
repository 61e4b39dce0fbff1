package middleware

import (
	"category-api/internal/logger"
	"category-api/internal/view"
	"fmt"
	"net/http"
)

// AppError represents a custom error type for the application.
type AppError struct {
	Error   error
	Message string
	Code    int    // HTTP status
	ErrCode string // API error code, e.g. "entity:notfound"
	Data    string // entity or field the error is about
}

// AppHandler is a custom handler function type that returns an AppError.
type AppHandler func(http.ResponseWriter, *http.Request) *AppError

// Error is a middleware that converts handler errors into user-friendly error pages.
func Error(log logger.Logger, view *view.View) func(AppHandler) http.Handler {
	return func(next AppHandler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if rec := recover(); rec != nil {
					err, ok := rec.(error)
					if !ok {
						err = fmt.Errorf("%v", rec)
					}
					log.Error(err, "Panic recovered")
					data := map[string]interface{}{
						"StatusCode": http.StatusInternalServerError,
						"StatusText": "Internal Server Error",
					}
					w.WriteHeader(http.StatusInternalServerError)
					view.Render(w, "error.html", data)
				}
			}()

			err := next(w, r)
			if err != nil {
				logAppError(log, r, err)
				data := map[string]interface{}{
					"StatusCode": err.Code,
					"StatusText": err.Message,
				}
				w.WriteHeader(err.Code)
				view.Render(w, "error.html", data)
			}
		})
	}
}

// APIError is the JSON counterpart of Error for the /api routes.
func APIError(log logger.Logger) func(AppHandler) http.Handler {
	return func(next AppHandler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if rec := recover(); rec != nil {
					err, ok := rec.(error)
					if !ok {
						err = fmt.Errorf("%v", rec)
					}
					log.Error(err, "Panic recovered")
					WriteError(w, http.StatusInternalServerError, "internal:error", "", "Internal Server Error")
				}
			}()

			if err := next(w, r); err != nil {
				logAppError(log, r, err)
				code := err.ErrCode
				if code == "" {
					code = "internal:error"
				}
				WriteError(w, err.Code, code, err.Data, err.Message)
			}
		})
	}
}

// logAppError logs server faults as errors and client mistakes as warnings.
func logAppError(log logger.Logger, r *http.Request, err *AppError) {
	l := log.With(map[string]interface{}{"path": r.URL.Path, "status": err.Code})
	if err.Code >= http.StatusInternalServerError {
		l.Error(err.Error, err.Message)
		return
	}
	if err.Error != nil {
		l.Warn(err.Message + ": " + err.Error.Error())
		return
	}
	l.Warn(err.Message)
}
