package http

import (
	"context"
	"errors"
	"net/http"
	"slices"
	"strings"
	"time"

	"github.com/fjod/artverse/internal/auth"
	"github.com/fjod/artverse/internal/domain"
	"github.com/fjod/artverse/internal/repository"
	"github.com/fjod/artverse/internal/service"
	"github.com/go-chi/chi/v5/middleware"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

type contextKey string

const (
	principalKey contextKey = "principal"
	badTokenKey  contextKey = "bad_token"
)

const bearerPrefix = "Bearer "

// TokenVerifier checks a session token.
type TokenVerifier interface {
	Parse(token string) (auth.Identity, error)
}

// UserLookup loads the account a token was issued for.
type UserLookup interface {
	GetByID(ctx context.Context, id primitive.ObjectID) (*domain.User, error)
}

// Authenticate reads the session token from the auth cookie, or from an
// Authorization bearer header, and stores the caller in the request
// context. The caller's role is the stored one, so role changes and
// deleted accounts take effect before the token expires. Requests without
// a valid token continue anonymously; routes that need a caller sit behind
// RequireAuth or RequireRole.
func Authenticate(tokens TokenVerifier, users UserLookup, cookieName string, log *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := tokenFromRequest(r, cookieName)
			if token == "" {
				next.ServeHTTP(w, r)
				return
			}

			id, err := tokens.Parse(token)
			if err != nil {
				log.Debug("rejected session token", zap.String("request_id", requestID(r)), zap.Error(err))
				ctx := context.WithValue(r.Context(), badTokenKey, true)
				next.ServeHTTP(w, r.WithContext(ctx))
				return
			}

			user, err := users.GetByID(r.Context(), id.UserID)
			if errors.Is(err, repository.ErrNotFound) {
				log.Debug("token for unknown user", zap.String("request_id", requestID(r)), zap.String("user_id", id.UserID.Hex()))
				ctx := context.WithValue(r.Context(), badTokenKey, true)
				next.ServeHTTP(w, r.WithContext(ctx))
				return
			}
			if err != nil {
				log.Error("repo get session user error", zap.String("request_id", requestID(r)), zap.Error(err))
				respondError(w, log, http.StatusInternalServerError, "internal server error")
				return
			}

			p := service.Principal{UserID: user.ID, Role: user.Role}
			ctx := context.WithValue(r.Context(), principalKey, p)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func tokenFromRequest(r *http.Request, cookieName string) string {
	if c, err := r.Cookie(cookieName); err == nil && c.Value != "" {
		return c.Value
	}
	if h := r.Header.Get("Authorization"); strings.HasPrefix(h, bearerPrefix) {
		return strings.TrimSpace(strings.TrimPrefix(h, bearerPrefix))
	}
	return ""
}

// RequireAuth rejects anonymous requests with 401.
func RequireAuth(log *zap.Logger) func(http.Handler) http.Handler {
	return RequireRole(log)
}

// RequireRole rejects anonymous requests with 401 and, when roles are given,
// callers holding none of them with 403.
func RequireRole(log *zap.Logger, roles ...domain.Role) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			p := principalFrom(r.Context())
			if !p.Authenticated() {
				msg := "not authenticated"
				if bad, _ := r.Context().Value(badTokenKey).(bool); bad {
					msg = "invalid or expired token"
				}
				respondError(w, log, http.StatusUnauthorized, msg)
				return
			}
			if len(roles) > 0 && !slices.Contains(roles, p.Role) {
				respondError(w, log, http.StatusForbidden, service.ErrForbidden.Message)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func principalFrom(ctx context.Context) service.Principal {
	p, _ := ctx.Value(principalKey).(service.Principal)
	return p
}

// WithPrincipal returns ctx carrying p, as Authenticate would store it.
func WithPrincipal(ctx context.Context, p service.Principal) context.Context {
	return context.WithValue(ctx, principalKey, p)
}

func requestID(r *http.Request) string {
	return middleware.GetReqID(r.Context())
}

// RequestLogger logs one line per request once the response is written.
func RequestLogger(log *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			start := time.Now()
			defer func() {
				fields := []zap.Field{
					zap.String("method", r.Method),
					zap.String("path", r.URL.Path),
					zap.Int("status", ww.Status()),
					zap.Int("bytes", ww.BytesWritten()),
					zap.Duration("duration", time.Since(start)),
					zap.String("request_id", requestID(r)),
				}
				if ww.Status() >= http.StatusInternalServerError {
					log.Error("request", fields...)
					return
				}
				log.Info("request", fields...)
			}()
			next.ServeHTTP(ww, r)
		})
	}
}
