package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/jmoiron/sqlx"
	"github.com/knighthaven/api/internal/models"
	"github.com/knighthaven/api/internal/utils"
)

// Auth rejects requests without a valid bearer token. On success the current
// user row is loaded and attached to the request context.
func Auth(db *sqlx.DB, secret string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			user, ok := authenticate(db, secret, r)
			if !ok {
				utils.JSONError(w, http.StatusUnauthorized, "invalid or missing token")
				return
			}
			next.ServeHTTP(w, r.WithContext(withUser(r.Context(), user)))
		})
	}
}

// OptionalAuth attaches the user when a valid token is present and otherwise
// lets the request through unauthenticated.
func OptionalAuth(db *sqlx.DB, secret string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if user, ok := authenticate(db, secret, r); ok {
				r = r.WithContext(withUser(r.Context(), user))
			}
			next.ServeHTTP(w, r)
		})
	}
}

func authenticate(db *sqlx.DB, secret string, r *http.Request) (*models.User, bool) {
	auth := r.Header.Get("Authorization")
	if auth == "" {
		return nil, false
	}

	parts := strings.SplitN(auth, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
		return nil, false
	}

	token := strings.TrimSpace(parts[1])
	if token == "" {
		return nil, false
	}

	claims, err := utils.VerifyToken(token, secret)
	if err != nil {
		return nil, false
	}

	var user models.User
	err = db.Get(&user, `
		SELECT id, email, password_hash, display_name, is_ucf_verified, created_at, updated_at
		FROM users
		WHERE id=$1
	`, claims.SubjectInt())
	if err != nil {
		return nil, false
	}

	return &user, true
}

func withUser(ctx context.Context, user *models.User) context.Context {
	ctx = context.WithValue(ctx, utils.CtxUserIDKey, user.ID)
	return context.WithValue(ctx, utils.CtxUserKey, user)
}

// UserFrom pulls the authenticated user out of the context, nil when the
// request came through OptionalAuth without a token.
func UserFrom(ctx context.Context) *models.User {
	u, _ := ctx.Value(utils.CtxUserKey).(*models.User)
	return u
}
