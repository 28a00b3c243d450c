package cli

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/dmitrijs2005/chattypatty/internal/client/models"
	"github.com/dmitrijs2005/chattypatty/internal/client/presence"
	"github.com/dmitrijs2005/chattypatty/internal/common"
	"github.com/dmitrijs2005/chattypatty/internal/netx"
)

var (
	ErrUsage       = errors.New("wrong arguments, see help")
	ErrNoSelection = errors.New("no peer selected, use peers and select <n>")
)

func onlineLabel(online bool) string {
	if online {
		return "online"
	}
	return "offline"
}

func (a *App) WhoAmI(ctx context.Context) error {
	p := a.currentProfile()
	if p.Username == "" {
		return common.ErrNotFound
	}
	a.say("%s  %s  created %s  last seen %s",
		p.Username, p.Address, models.FormatTime(p.CreatedAt), models.FormatTime(p.LastSeen))
	return nil
}

func (a *App) Setup(ctx context.Context, args []string) error {
	if len(args) < 1 || len(args) > 2 {
		return ErrUsage
	}
	addr := ""
	if len(args) == 2 {
		if !netx.IsIP(args[1]) {
			return fmt.Errorf("%q is not an IP address", args[1])
		}
		addr = args[1]
	}

	p, err := a.identity.Save(ctx, args[0], addr)
	if p.Username == "" {
		return err
	}
	a.setProfile(p)
	a.say("Profile saved: %s (%s)", p.Username, p.Address)
	if err != nil {
		return err
	}

	// re-register under the new identity if a session is up
	if st := a.runner.Status(); st.State != presence.Disconnected && st.State != presence.Closed {
		return a.runner.Connect(p)
	}
	return nil
}

func (a *App) Peers(ctx context.Context, args []string) error {
	recs := a.dir.Filter(strings.Join(args, " "))

	sel := make(map[int]string, len(recs))
	for i, r := range recs {
		sel[i+1] = r.Username
	}
	a.mu.Lock()
	a.selection = sel
	a.mu.Unlock()

	if len(recs) == 0 {
		a.say("No peers.")
		return nil
	}
	for i, r := range recs {
		a.say("%3d. %-20s %-15s %-7s last seen %s",
			i+1, r.Username, r.Address, onlineLabel(r.IsOnline), models.FormatTime(r.LastSeen))
	}
	return nil
}

func (a *App) Select(ctx context.Context, args []string) error {
	if len(args) != 1 {
		return ErrUsage
	}
	n, err := strconv.Atoi(args[0])
	if err != nil {
		return ErrUsage
	}

	a.mu.Lock()
	username, ok := a.selection[n]
	a.mu.Unlock()
	if !ok {
		return fmt.Errorf("no peer #%d in the last listing", n)
	}

	rec, ok := a.dir.Get(username)
	if !ok {
		return fmt.Errorf("%s: %w", username, common.ErrNotFound)
	}

	a.mu.Lock()
	a.selected = rec.Username
	a.mu.Unlock()
	a.say("Selected %s  %s  %s  first seen %s",
		rec.Username, rec.Address, onlineLabel(rec.IsOnline), models.FormatTime(rec.CreatedAt))
	return nil
}

func (a *App) Add(ctx context.Context, args []string) error {
	if len(args) != 1 {
		return ErrUsage
	}
	ok, err := a.dir.UpsertIfAbsent(ctx, models.PeerRecord{Username: args[0]})
	if err != nil {
		return err
	}
	if ok {
		a.say("Added %s.", args[0])
	} else {
		a.say("%s is already known.", args[0])
	}
	return nil
}

func (a *App) Refresh(ctx context.Context) error {
	if err := a.dir.Reload(ctx); err != nil {
		return err
	}
	a.say("%d peer(s) known.", len(a.dir.Records()))
	return nil
}

// Lookup queues a lookup; the answer is printed by the event watcher.
func (a *App) Lookup(ctx context.Context, args []string) error {
	var username string
	switch len(args) {
	case 0:
		a.mu.Lock()
		username = a.selected
		a.mu.Unlock()
		if username == "" {
			return ErrNoSelection
		}
	case 1:
		username = args[0]
	default:
		return ErrUsage
	}

	a.runner.Lookup(username)
	a.say("Looking up %s...", username)
	return nil
}

func (a *App) Status(ctx context.Context) error {
	st := a.runner.Status()

	line := st.State.String()
	if st.State == presence.Closed && st.Reason != presence.ReasonNone {
		line += " (" + st.Reason.String() + ")"
	}
	a.say("Session: %s", line)
	if st.SessionID != "" {
		a.say("Session id: %s", st.SessionID)
	}

	var online []string
	for u, on := range st.Online {
		if on {
			online = append(online, u)
		}
	}
	sort.Strings(online)
	if len(online) > 0 {
		a.say("Online: %s", strings.Join(online, ", "))
	}
	return nil
}

func (a *App) Connect(ctx context.Context) error {
	p := a.currentProfile()
	if p.Username == "" {
		return common.ErrNotFound
	}
	return a.runner.Connect(p)
}

func (a *App) Disconnect(ctx context.Context) error {
	return a.runner.Disconnect()
}

// Probe checks the server in the background and reports when done.
func (a *App) Probe(ctx context.Context) error {
	a.say("Probing %s...", a.probeCfg.ServerURL)
	a.wg.Add(1)
	go func() {
		defer a.wg.Done()
		if err := probeFn(ctx, a.probeCfg); err != nil {
			a.say("* probe failed: %v", err)
			return
		}
		a.say("* server %s is reachable", a.probeCfg.ServerURL)
	}()
	return nil
}
