package llm

import (
	"fmt"
	"net/http"
)

// ProviderError carries a non-success response from a model provider. There
// are no automatic retries; a failed call requires explicit re-submission.
type ProviderError struct {
	Provider string
	Status   int
	Body     string
}

func (e *ProviderError) Error() string {
	return fmt.Sprintf("%s error: status %d: %s", e.Provider, e.Status, e.Body)
}

// AuthFailure reports whether the provider rejected our credentials.
func (e *ProviderError) AuthFailure() bool {
	return e.Status == http.StatusUnauthorized || e.Status == http.StatusForbidden
}
