package client

import (
	"context"

	"github.com/complyhub/gst-sentinel/pkg/types/common"
)

// Repository defines the persistence contract for the client registry.
type Repository interface {
	Create(ctx context.Context, c *Client) error
	GetByID(ctx context.Context, id common.ID) (*Client, error)
	GetByGSTIN(ctx context.Context, gstin string) (*Client, error)
	Update(ctx context.Context, c *Client) error

	// List returns one page of clients plus the total row count.
	List(ctx context.Context, p common.Pagination) ([]*Client, int64, error)

	// ListAssessable streams the IDs of all active clients in stable order,
	// page by page, for batch assessment runs.
	ListAssessable(ctx context.Context, afterID common.ID, limit int) ([]common.ID, error)
}
