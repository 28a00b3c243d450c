// Package identity owns the local user's profile.
package identity

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/dmitrijs2005/chattypatty/internal/client/models"
	"github.com/dmitrijs2005/chattypatty/internal/client/repositories/profile"
	"github.com/dmitrijs2005/chattypatty/internal/common"
	"github.com/dmitrijs2005/chattypatty/internal/logging"
	"github.com/dmitrijs2005/chattypatty/internal/netx"
)

// Registrar receives the saved profile as a directory record.
// *directory.Directory satisfies it.
type Registrar interface {
	UpsertIfAbsent(ctx context.Context, rec models.PeerRecord) (bool, error)
}

type Store struct {
	repo    profile.Repository
	dir     Registrar
	log     logging.Logger
	now     func() time.Time
	localIP func() string
}

func NewStore(repo profile.Repository, dir Registrar, log logging.Logger) *Store {
	return &Store{
		repo:    repo,
		dir:     dir,
		log:     log.With("component", "identity"),
		now:     time.Now,
		localIP: netx.LocalIP,
	}
}

// Load returns the stored profile, common.ErrNotFound when there is none or
// common.ErrCorrupt when it cannot be parsed.
func (s *Store) Load(ctx context.Context) (models.Profile, error) {
	return s.repo.Load(ctx)
}

// Save writes the profile for username, replacing any previous one. The
// creation time of a readable previous profile is kept. An empty address is
// replaced by the detected local IP. The profile is then added to the
// directory unless the username is already there.
func (s *Store) Save(ctx context.Context, username, address string) (models.Profile, error) {
	username = strings.TrimSpace(username)
	if username == "" {
		return models.Profile{}, common.ErrInvalidUsername
	}
	address = strings.TrimSpace(address)
	if address == "" {
		address = s.localIP()
	}

	now := s.now()
	created := now

	prev, err := s.repo.Load(ctx)
	switch {
	case err == nil:
		if !prev.CreatedAt.IsZero() {
			created = prev.CreatedAt
		}
	case errors.Is(err, common.ErrNotFound):
	case errors.Is(err, common.ErrCorrupt):
		s.log.Warn(ctx, "replacing unreadable profile", "error", err)
	default:
		return models.Profile{}, err
	}

	p := models.Profile{
		Username:  username,
		Address:   address,
		CreatedAt: created,
		LastSeen:  now,
		IsOnline:  true,
	}
	if err := s.repo.Save(ctx, p); err != nil {
		return models.Profile{}, err
	}

	if s.dir != nil {
		if _, err := s.dir.UpsertIfAbsent(ctx, p.AsPeer()); err != nil {
			return p, fmt.Errorf("profile saved, directory update failed: %w", err)
		}
	}

	s.log.Info(ctx, "profile saved", "username", p.Username, "address", p.Address)
	return p, nil
}
