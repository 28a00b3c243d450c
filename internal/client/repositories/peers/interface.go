package peers

import (
	"context"

	"github.com/dmitrijs2005/chattypatty/internal/client/models"
)

type Repository interface {
	// Load returns the stored records in insertion order. A store that does
	// not exist yet yields an empty list.
	Load(ctx context.Context) ([]models.PeerRecord, error)
	// Replace stores records as the complete new list.
	Replace(ctx context.Context, records []models.PeerRecord) error
}
