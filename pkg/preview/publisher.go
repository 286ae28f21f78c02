package preview

import (
	"context"

	"github.com/goliatone/go-sitepreview/pkg/site"
)

// Publisher receives the fully merged document and the raw patch when the
// operator publishes. It owns durable persistence; the store only observes
// success or failure.
type Publisher interface {
	Publish(ctx context.Context, siteID string, doc *site.Data, patch map[string]any) error
}

// PublisherFunc adapts a function to the Publisher interface.
type PublisherFunc func(ctx context.Context, siteID string, doc *site.Data, patch map[string]any) error

// Publish calls the wrapped function.
func (f PublisherFunc) Publish(ctx context.Context, siteID string, doc *site.Data, patch map[string]any) error {
	return f(ctx, siteID, doc, patch)
}
