// Package extract retrieves the primary textual content of a webpage through
// an external page-extraction service.
package extract

import (
	"context"
	"errors"
	"fmt"
)

var (
	// ErrUnsupportedDomain is returned for professional-network URLs that
	// block automated retrieval. The caller should ask the user to paste the
	// bio text instead.
	ErrUnsupportedDomain = errors.New("domain does not allow scraping")

	// ErrEmptyContent is returned when the service responds without any
	// markdown content.
	ErrEmptyContent = errors.New("no content found")
)

// ServiceError carries a non-success response from the extraction service.
type ServiceError struct {
	Status int
	Body   string
}

func (e *ServiceError) Error() string {
	return fmt.Sprintf("extraction service error: status %d: %s", e.Status, e.Body)
}

// Extractor resolves a URL into markdown text.
type Extractor interface {
	Extract(ctx context.Context, url string) (string, error)
}
