package peers

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/dmitrijs2005/chattypatty/internal/client/models"
	"github.com/dmitrijs2005/chattypatty/internal/common"
	"github.com/dmitrijs2005/chattypatty/internal/dbx"
)

type SQLiteRepository struct {
	db *sql.DB
}

func NewSQLiteRepository(db *sql.DB) *SQLiteRepository {
	return &SQLiteRepository{db: db}
}

func (r *SQLiteRepository) Load(ctx context.Context) ([]models.PeerRecord, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT username, ip, created_at, last_seen, is_online
		FROM peers
		ORDER BY seq
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to load peers: %w", err)
	}
	defer rows.Close()

	var result []models.PeerRecord
	for rows.Next() {
		var (
			rec           models.PeerRecord
			created, seen string
		)
		if err := rows.Scan(&rec.Username, &rec.Address, &created, &seen, &rec.IsOnline); err != nil {
			return nil, fmt.Errorf("failed to scan peer row: %w", err)
		}
		if rec.CreatedAt, err = models.ParseTime(created); err != nil {
			return nil, fmt.Errorf("failed to load peer %s: %w: %w", rec.Username, common.ErrCorrupt, err)
		}
		if rec.LastSeen, err = models.ParseTime(seen); err != nil {
			return nil, fmt.Errorf("failed to load peer %s: %w: %w", rec.Username, common.ErrCorrupt, err)
		}
		result = append(result, rec)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate peer rows: %w", err)
	}
	return result, nil
}

// Replace rewrites the table inside one transaction; seq follows the slice
// order so Load returns records in the same order.
func (r *SQLiteRepository) Replace(ctx context.Context, records []models.PeerRecord) error {
	err := dbx.WithTx(ctx, r.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		if _, err := tx.ExecContext(ctx, `DELETE FROM peers`); err != nil {
			return err
		}
		for i, rec := range records {
			_, err := tx.ExecContext(ctx, `
				INSERT INTO peers (seq, username, ip, created_at, last_seen, is_online)
				VALUES (?, ?, ?, ?, ?, ?)
			`, i+1, rec.Username, rec.Address, models.FormatTime(rec.CreatedAt), models.FormatTime(rec.LastSeen), rec.IsOnline)
			if err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to replace peers: %w", err)
	}
	return nil
}
