package validators

import (
	"net/http"
	"strings"
	"time"

	pkgerrors "github.com/lastros/pos-backend/pkg/errors"
)

// ParseQueryDate reads an optional YYYY-MM-DD query parameter.
func ParseQueryDate(r *http.Request, key string) (string, error) {
	raw := strings.TrimSpace(r.URL.Query().Get(key))
	if raw == "" {
		return "", nil
	}
	if _, err := time.Parse("2006-01-02", raw); err != nil {
		return "", pkgerrors.New(pkgerrors.CodeValidation, "query parameter must be a date").WithDetails(map[string]any{"field": key, "format": "YYYY-MM-DD"})
	}
	return raw, nil
}
