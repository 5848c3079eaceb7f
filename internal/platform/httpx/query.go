package httpx

import (
	"fmt"
	"net/http"
	"strconv"
	"strings"
)

// QueryInt reads an integer query parameter, returning 0 when it is absent.
func QueryInt(r *http.Request, name string) (int, error) {
	raw := strings.TrimSpace(r.URL.Query().Get(name))
	if raw == "" {
		return 0, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("%s %q is not a number: %w", name, raw, ErrValidation)
	}
	return v, nil
}
