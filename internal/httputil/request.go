package httputil

import (
	"fmt"
	"io"
	"net/http"

	"github.com/goccy/go-json"
)

// MaxJSONBody caps JSON request bodies.
const MaxJSONBody = 10 << 20

// ParseJSON decodes the JSON request body into dest. The body is limited to
// MaxJSONBody; larger bodies fail with a *http.MaxBytesError.
func ParseJSON(w http.ResponseWriter, r *http.Request, dest any) error {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, MaxJSONBody))
	if err != nil {
		return fmt.Errorf("read request body: %w", err)
	}
	if err := json.Unmarshal(body, dest); err != nil {
		return fmt.Errorf("invalid JSON: %w", err)
	}
	return nil
}
