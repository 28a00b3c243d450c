package profile

import (
	"context"

	"github.com/dmitrijs2005/chattypatty/internal/client/models"
)

type Repository interface {
	Load(ctx context.Context) (models.Profile, error)
	Save(ctx context.Context, p models.Profile) error
}
