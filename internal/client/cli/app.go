package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"sync"

	"github.com/dmitrijs2005/chattypatty/internal/client/models"
	"github.com/dmitrijs2005/chattypatty/internal/client/presence"
	"github.com/dmitrijs2005/chattypatty/internal/client/runner"
	"github.com/dmitrijs2005/chattypatty/internal/common"
	"github.com/dmitrijs2005/chattypatty/internal/logging"
)

type identityStore interface {
	Load(ctx context.Context) (models.Profile, error)
	Save(ctx context.Context, username, address string) (models.Profile, error)
}

type peerDirectory interface {
	Reload(ctx context.Context) error
	Records() []models.PeerRecord
	Filter(query string) []models.PeerRecord
	Get(username string) (models.PeerRecord, bool)
	UpsertIfAbsent(ctx context.Context, rec models.PeerRecord) (bool, error)
}

type sessionRunner interface {
	Connect(p models.Profile) error
	Disconnect() error
	Lookup(username string) <-chan runner.LookupResult
	Status() runner.Status
	Subscribe() chan runner.Event
	Unsubscribe(ch chan runner.Event)
}

// probeFn is a test seam for presence.Probe.
var probeFn = presence.Probe

type App struct {
	identity identityStore
	dir      peerDirectory
	runner   sessionRunner
	probeCfg presence.Config
	log      logging.Logger

	interactive bool

	outMu sync.Mutex
	out   io.Writer

	mu        sync.Mutex
	profile   models.Profile
	selection map[int]string
	selected  string

	wg sync.WaitGroup
}

type Options struct {
	Identity    identityStore
	Directory   peerDirectory
	Runner      sessionRunner
	Probe       presence.Config
	Logger      logging.Logger
	Out         io.Writer
	Interactive bool
}

func NewApp(o Options) *App {
	return &App{
		identity:    o.Identity,
		dir:         o.Directory,
		runner:      o.Runner,
		probeCfg:    o.Probe,
		log:         o.Logger.With("component", "cli"),
		interactive: o.Interactive,
		out:         o.Out,
		selection:   map[int]string{},
	}
}

func (a *App) say(format string, args ...any) {
	a.outMu.Lock()
	defer a.outMu.Unlock()
	fmt.Fprintf(a.out, format+"\n", args...)
}

func (a *App) currentProfile() models.Profile {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.profile
}

func (a *App) setProfile(p models.Profile) {
	a.mu.Lock()
	a.profile = p
	a.mu.Unlock()
}

func (a *App) prompt() string {
	if !a.interactive {
		return ""
	}
	st := a.runner.Status()
	return fmt.Sprintf("chatty (%s %s)> ", a.currentProfile().Username, st.State)
}

// Run makes sure a profile exists, connects and serves the REPL on in until
// it is exhausted or the user exits.
func (a *App) Run(ctx context.Context, in io.Reader) error {
	scanner := bufio.NewScanner(in)

	p, err := a.ensureProfile(ctx, scanner)
	if err != nil {
		return err
	}
	a.setProfile(p)
	a.say("Welcome, %s (type 'help' for commands)", p.Username)

	events := a.runner.Subscribe()
	ctx, cancel := context.WithCancel(ctx)
	a.wg.Add(1)
	go a.watchEvents(ctx, events)
	defer func() {
		cancel()
		a.runner.Unsubscribe(events)
		a.wg.Wait()
	}()

	if err := a.runner.Connect(p); err != nil {
		a.log.Warn(ctx, "connect request failed", "error", err)
		a.say("Cannot connect: %v", err)
	}

	runREPL(ctx, a, a.prompt, scanner)
	return nil
}

// ensureProfile loads the profile or, when there is none or it is
// unreadable, asks for a username until one is saved.
func (a *App) ensureProfile(ctx context.Context, scanner *bufio.Scanner) (models.Profile, error) {
	p, err := a.identity.Load(ctx)
	switch {
	case err == nil:
		return p, nil
	case errors.Is(err, common.ErrNotFound):
		a.say("No profile yet.")
	case errors.Is(err, common.ErrCorrupt):
		a.log.Warn(ctx, "profile unreadable", "error", err)
		a.say("Profile is unreadable (%v), creating a new one.", err)
	default:
		return models.Profile{}, err
	}

	for {
		a.outMu.Lock()
		name, err := GetSimpleText(scanner, "Choose a username:", a.out)
		a.outMu.Unlock()
		if err != nil {
			return models.Profile{}, fmt.Errorf("no username given: %w", err)
		}
		p, err := a.identity.Save(ctx, name, "")
		if errors.Is(err, common.ErrInvalidUsername) {
			a.say("Username must not be empty.")
			continue
		}
		if err != nil && p.Username == "" {
			return models.Profile{}, err
		}
		if err != nil {
			a.say("Warning: %v", err)
		}
		return p, nil
	}
}

// watchEvents prints session progress as it happens.
func (a *App) watchEvents(ctx context.Context, events chan runner.Event) {
	defer a.wg.Done()
	for {
		select {
		case <-ctx.Done():
			return
		case ev, ok := <-events:
			if !ok {
				return
			}
			a.printEvent(ev)
		}
	}
}

func (a *App) printEvent(ev runner.Event) {
	switch ev.Type {
	case runner.EventState:
		switch ev.State {
		case presence.Listening:
			a.say("* connected")
		case presence.Closed:
			a.say("* disconnected: %s", ev.Reason)
		}
	case runner.EventOnline:
		a.say("* %d user(s) online", ev.Online.Count())
	case runner.EventLookup:
		r := ev.Lookup
		switch {
		case r.Err == nil:
			a.say("* %s is at %s", r.Username, r.Address)
		case errors.Is(r.Err, common.ErrNotFound):
			a.say("* %s is not known to the server", r.Username)
		default:
			a.say("* lookup %s failed: %v", r.Username, r.Err)
		}
	}
}
