package validators

import (
	"net/http"
	"strings"

	pkgerrors "github.com/lastros/pos-backend/pkg/errors"
)

// BearerToken extracts the token from an "Authorization: Bearer <token>" header.
func BearerToken(r *http.Request) (string, error) {
	parts := strings.Fields(r.Header.Get("Authorization"))
	var token string
	switch {
	case len(parts) == 2 && strings.EqualFold(parts[0], "bearer"):
		token = parts[1]
	case len(parts) == 1 && !strings.EqualFold(parts[0], "bearer"):
		token = parts[0]
	}
	if token == "" {
		return "", pkgerrors.New(pkgerrors.CodeUnauthorized, "missing credentials")
	}
	return token, nil
}
