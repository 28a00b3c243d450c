// Package directory implements the local peer directory: an ordered,
// username-unique list of peer records backed by a peers.Repository.
//
// Readers get an immutable snapshot through an atomic pointer and never see
// a partially applied change. Writers are serialized by a mutex and persist
// the new list before publishing it, so a failed write leaves both the store
// and the in-memory view unchanged.
package directory

import (
	"context"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/dmitrijs2005/chattypatty/internal/client/models"
	"github.com/dmitrijs2005/chattypatty/internal/client/repositories/peers"
	"github.com/dmitrijs2005/chattypatty/internal/common"
	"github.com/dmitrijs2005/chattypatty/internal/logging"
)

type snapshot struct {
	records []models.PeerRecord
	index   map[string]int
}

func newSnapshot(records []models.PeerRecord) *snapshot {
	s := &snapshot{
		records: make([]models.PeerRecord, 0, len(records)),
		index:   make(map[string]int, len(records)),
	}
	for _, r := range records {
		if r.Username == "" {
			continue
		}
		if _, dup := s.index[r.Username]; dup {
			continue
		}
		s.index[r.Username] = len(s.records)
		s.records = append(s.records, r)
	}
	return s
}

func (s *snapshot) clone() []models.PeerRecord {
	out := make([]models.PeerRecord, len(s.records))
	copy(out, s.records)
	return out
}

type Directory struct {
	repo peers.Repository
	log  logging.Logger
	now  func() time.Time

	mu   sync.Mutex
	snap atomic.Pointer[snapshot]
}

type Option func(*Directory)

// WithClock overrides time.Now for timestamps written by the directory.
func WithClock(now func() time.Time) Option {
	return func(d *Directory) { d.now = now }
}

// New returns an empty directory over repo. Call Reload to read the store.
func New(repo peers.Repository, log logging.Logger, opts ...Option) *Directory {
	d := &Directory{
		repo: repo,
		log:  log.With("component", "directory"),
		now:  time.Now,
	}
	for _, o := range opts {
		o(d)
	}
	d.snap.Store(newSnapshot(nil))
	return d
}

// Open is New followed by Reload.
func Open(ctx context.Context, repo peers.Repository, log logging.Logger, opts ...Option) (*Directory, error) {
	d := New(repo, log, opts...)
	if err := d.Reload(ctx); err != nil {
		return nil, err
	}
	return d, nil
}

// Reload replaces the in-memory view with the stored list. Records with an
// empty username are dropped and duplicate usernames keep the first entry.
func (d *Directory) Reload(ctx context.Context) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	records, err := d.repo.Load(ctx)
	if err != nil {
		return err
	}
	d.snap.Store(newSnapshot(records))
	return nil
}

// Records returns a copy of the current list in insertion order.
func (d *Directory) Records() []models.PeerRecord {
	return d.snap.Load().clone()
}

func (d *Directory) Len() int {
	return len(d.snap.Load().records)
}

func (d *Directory) Get(username string) (models.PeerRecord, bool) {
	s := d.snap.Load()
	i, ok := s.index[username]
	if !ok {
		return models.PeerRecord{}, false
	}
	return s.records[i], true
}

// Filter returns records whose username contains query, case-insensitively,
// in insertion order.
func (d *Directory) Filter(query string) []models.PeerRecord {
	query = strings.TrimSpace(query)
	var out []models.PeerRecord
	for _, r := range d.snap.Load().records {
		if r.MatchesQuery(query) {
			out = append(out, r)
		}
	}
	return out
}

// commit persists records and publishes them. Must be called with mu held.
func (d *Directory) commit(ctx context.Context, records []models.PeerRecord) error {
	if err := d.repo.Replace(ctx, records); err != nil {
		return err
	}
	d.snap.Store(newSnapshot(records))
	return nil
}

// UpsertIfAbsent appends rec unless a record with the same username exists.
// It reports whether rec was inserted. An existing record is never modified.
func (d *Directory) UpsertIfAbsent(ctx context.Context, rec models.PeerRecord) (bool, error) {
	rec.Username = strings.TrimSpace(rec.Username)
	if rec.Username == "" {
		return false, common.ErrInvalidUsername
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	cur := d.snap.Load()
	if _, ok := cur.index[rec.Username]; ok {
		return false, nil
	}

	if rec.Address == "" {
		rec.Address = common.UnknownAddress
	}
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = d.now()
	}
	if rec.LastSeen.IsZero() {
		rec.LastSeen = rec.CreatedAt
	}

	if err := d.commit(ctx, append(cur.clone(), rec)); err != nil {
		return false, err
	}
	return true, nil
}

// Merge applies a server snapshot of online usernames. Listed users are
// marked online with last_seen set to now; everyone else is marked offline.
// Listed users missing from the directory are appended with an unknown
// address. Applying the same snapshot twice yields the same online flags.
func (d *Directory) Merge(ctx context.Context, usernames []string) error {
	now := d.now()

	members := make(map[string]struct{}, len(usernames))
	var order []string
	for _, u := range usernames {
		if u == "" {
			continue
		}
		if _, dup := members[u]; dup {
			continue
		}
		members[u] = struct{}{}
		order = append(order, u)
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	cur := d.snap.Load()
	next := cur.clone()
	for i := range next {
		_, online := members[next[i].Username]
		next[i].IsOnline = online
		if online {
			next[i].LastSeen = now
		}
	}
	for _, u := range order {
		if _, known := cur.index[u]; known {
			continue
		}
		next = append(next, models.PeerRecord{
			Username:  u,
			Address:   common.UnknownAddress,
			CreatedAt: now,
			LastSeen:  now,
			IsOnline:  true,
		})
	}

	return d.commit(ctx, next)
}

// Resolve records an address learned by lookup. A missing user is appended.
func (d *Directory) Resolve(ctx context.Context, username, address string) error {
	if username == "" {
		return common.ErrInvalidUsername
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	cur := d.snap.Load()
	if i, ok := cur.index[username]; ok {
		if cur.records[i].Address == address {
			return nil
		}
		next := cur.clone()
		next[i].Address = address
		return d.commit(ctx, next)
	}

	now := d.now()
	return d.commit(ctx, append(cur.clone(), models.PeerRecord{
		Username:  username,
		Address:   address,
		CreatedAt: now,
		LastSeen:  now,
	}))
}
