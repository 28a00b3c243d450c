package peers

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"

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

// Path is the file backing the repository.
func (r *JSONRepository) Path() string { return r.path }

func (r *JSONRepository) Load(ctx context.Context) ([]models.PeerRecord, error) {
	data, err := os.ReadFile(r.path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read peers: %w", err)
	}
	if len(bytes.TrimSpace(data)) == 0 {
		return nil, nil
	}

	var records []models.PeerRecord
	if err := json.Unmarshal(data, &records); err != nil {
		return nil, fmt.Errorf("failed to load peers: %w: %w", common.ErrCorrupt, err)
	}
	return records, nil
}

func (r *JSONRepository) Replace(ctx context.Context, records []models.PeerRecord) error {
	if records == nil {
		records = []models.PeerRecord{}
	}
	if err := filex.WriteJSON(r.path, records); err != nil {
		return fmt.Errorf("failed to save peers: %w", err)
	}
	return nil
}
