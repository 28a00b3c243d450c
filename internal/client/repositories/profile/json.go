package profile

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"

	"github.com/dmitrijs2005/chattypatty/internal/client/models"
	"github.com/dmitrijs2005/chattypatty/internal/common"
	"github.com/dmitrijs2005/chattypatty/internal/filex"
)

type JSONRepository struct {
	path string
}

func NewJSONRepository(path string) *JSONRepository {
	return &JSONRepository{path: path}
}

func (r *JSONRepository) Path() string { return r.path }

func (r *JSONRepository) Load(ctx context.Context) (models.Profile, error) {
	data, err := os.ReadFile(r.path)
	if errors.Is(err, fs.ErrNotExist) {
		return models.Profile{}, common.ErrNotFound
	}
	if err != nil {
		return models.Profile{}, fmt.Errorf("failed to read profile: %w", err)
	}

	var p models.Profile
	if err := json.Unmarshal(data, &p); err != nil {
		return models.Profile{}, fmt.Errorf("failed to load profile: %w: %w", common.ErrCorrupt, err)
	}
	if strings.TrimSpace(p.Username) == "" {
		return models.Profile{}, fmt.Errorf("failed to load profile: %w: empty username", common.ErrCorrupt)
	}
	return p, nil
}

func (r *JSONRepository) Save(ctx context.Context, p models.Profile) error {
	if err := filex.WriteJSON(r.path, p); err != nil {
		return fmt.Errorf("failed to save profile: %w", err)
	}
	return nil
}
