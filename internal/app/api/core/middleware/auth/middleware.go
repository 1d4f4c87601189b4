package auth

import (
	"crypto/subtle"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"golang.org/x/crypto/bcrypt"

	"github.com/h44z/mariadb-varportal/internal/app/api/core/respond"
	"github.com/h44z/mariadb-varportal/internal/app/api/v1/models"
	"github.com/h44z/mariadb-varportal/internal/domain"
)

// Middleware authenticates requests with HTTP basic auth against a single administrator account.
// Authenticated requests carry the administrator in their context user info.
type Middleware struct {
	username     string
	passwordHash []byte
	realm        string
}

// New creates the middleware. The password may be given in plain text or as bcrypt hash.
func New(username, password string) (*Middleware, error) {
	if username == "" || password == "" {
		return nil, fmt.Errorf("%w: username and password are required", domain.ErrInvalidData)
	}

	hash := []byte(password)
	if _, err := bcrypt.Cost(hash); err != nil {
		hash, err = bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
		if err != nil {
			return nil, fmt.Errorf("failed to hash admin password: %w", err)
		}
	}

	return &Middleware{
		username:     username,
		passwordHash: hash,
		realm:        "varportal",
	}, nil
}

// Handler returns the authentication middleware handler.
func (m *Middleware) Handler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		username, password, ok := r.BasicAuth()
		if !ok || !m.checkCredentials(username, password) {
			if ok {
				slog.Debug("rejected api credentials", "user", username, "path", r.URL.Path)
			}
			m.unauthorized(w)
			return
		}

		ctx := domain.SetUserInfo(r.Context(), &domain.ContextUserInfo{
			Id:      username,
			IsAdmin: true,
		})

		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func (m *Middleware) checkCredentials(username, password string) bool {
	userOk := subtle.ConstantTimeCompare([]byte(strings.TrimSpace(username)), []byte(m.username)) == 1
	passwordOk := bcrypt.CompareHashAndPassword(m.passwordHash, []byte(password)) == nil

	return userOk && passwordOk
}

func (m *Middleware) unauthorized(w http.ResponseWriter) {
	w.Header().Set("WWW-Authenticate", fmt.Sprintf(`Basic realm="%s", charset="UTF-8"`, m.realm))
	respond.JSON(w, http.StatusUnauthorized, models.Error{
		Code:    http.StatusUnauthorized,
		Message: "missing or invalid credentials",
	})
}
