package status

import (
	"context"
	"errors"
	"sync"

	bridgemanager "github.com/devgianlu/go-bridgemanager"
	"github.com/devgianlu/go-bridgemanager/bridge"
	"github.com/devgianlu/go-bridgemanager/config"
	"github.com/devgianlu/go-bridgemanager/login"
	"github.com/devgianlu/go-bridgemanager/session"
)

var ErrNotMounted = errors.New("view is not mounted")

type State int

const (
	// StateAbsent means the identity has not been fetched yet.
	StateAbsent State = iota
	StateSignedOut
	StateSignedIn
)

func (s State) String() string {
	switch s {
	case StateAbsent:
		return "absent"
	case StateSignedOut:
		return "signed out"
	case StateSignedIn:
		return "signed in"
	default:
		return "unknown"
	}
}

// View is the status page of a single bridge. Every request result is tagged with the mount
// generation it was issued in, results from an older generation are ignored.
type View struct {
	log    bridgemanager.Logger
	bridge bridge.Bridge
	sess   *session.Session
	cfg    config.Config

	mu         sync.Mutex
	generation uint64
	mounted    bool
	pending    int
	identity   *bridge.Identity
	err        error
	machine    *login.Machine
	prompt     string

	// mountCtx ends login steps that wait on the user (QR scan, OAuth2 redirect) on unmount.
	mountCtx    context.Context
	mountCancel context.CancelFunc
}

// Snapshot is a consistent copy of the view state for rendering.
type Snapshot struct {
	Bridge   bridgemanager.BridgeId
	State    State
	Summary  string
	Loading  bool
	Err      error
	RawState string

	// Login is set while a login flow is active.
	Login *login.Snapshot
	// Prompt is the QR code or link produced by an in flight login step.
	Prompt string
}

func NewView(log bridgemanager.Logger, b bridge.Bridge, sess *session.Session, cfg config.Config) *View {
	v := &View{
		log:    log.WithBridge(b.Id()),
		bridge: b,
		sess:   sess,
		cfg:    cfg,
	}

	if p, ok := b.(bridge.Prompter); ok {
		p.SetPromptHandler(v.setPrompt)
	}

	return v
}

func (v *View) Bridge() bridge.Bridge {
	return v.bridge
}

func (v *View) setPrompt(prompt string) {
	v.mu.Lock()
	v.prompt = prompt
	v.mu.Unlock()
}

// Mount starts a new generation and fetches the identity.
func (v *View) Mount(ctx context.Context) error {
	v.mu.Lock()
	if v.mountCancel != nil {
		v.mountCancel()
	}

	v.mountCtx, v.mountCancel = context.WithCancel(context.Background())
	v.generation++
	v.mounted = true
	v.pending = 0
	v.identity = nil
	v.err = nil
	v.machine = nil
	v.prompt = ""
	v.mu.Unlock()

	v.log.Debugf("mounted status view")
	return v.Refresh(ctx)
}

// Unmount discards the state of the view, results of requests still in flight are ignored.
// Login steps waiting on the user are cancelled.
func (v *View) Unmount() {
	v.mu.Lock()
	defer v.mu.Unlock()

	if v.mountCancel != nil {
		v.mountCancel()
		v.mountCancel = nil
	}

	v.generation++
	v.mounted = false
	v.pending = 0
	v.machine = nil
	v.prompt = ""
}

func (v *View) begin() (uint64, bool) {
	v.mu.Lock()
	defer v.mu.Unlock()

	if !v.mounted {
		return 0, false
	}

	v.pending++
	return v.generation, true
}

// finishLocked ends a request of generation gen and reports whether its result still applies.
func (v *View) finishLocked(gen uint64) bool {
	if !v.mounted || gen != v.generation {
		return false
	}

	v.pending--
	return true
}

// Refresh fetches the identity again. The previous identity is replaced as a whole.
func (v *View) Refresh(ctx context.Context) error {
	gen, ok := v.begin()
	if !ok {
		return ErrNotMounted
	}

	ident, err := v.bridge.GetCurrentIdentity(ctx, v.sess)

	v.mu.Lock()
	defer v.mu.Unlock()

	if !v.finishLocked(gen) {
		v.log.Debugf("ignoring stale identity result")
		return nil
	}

	if err != nil {
		v.log.WithError(err).Warnf("failed fetching identity")
		v.err = err
		return err
	}

	v.identity = ident
	v.err = nil
	if ident.SignedIn {
		v.machine = nil
		v.prompt = ""
	}

	return nil
}

// Logout signs out of the bridge and then fetches the identity regardless of the outcome.
// A logout failure is kept as the view error even if the refresh succeeds.
func (v *View) Logout(ctx context.Context) error {
	gen, ok := v.begin()
	if !ok {
		return ErrNotMounted
	}

	logoutErr := v.bridge.Logout(ctx, v.sess)
	if logoutErr != nil {
		v.log.WithError(logoutErr).Warnf("failed logging out")
	}

	v.mu.Lock()
	current := v.finishLocked(gen)
	v.mu.Unlock()

	if !current {
		return nil
	}

	refreshErr := v.Refresh(ctx)
	if logoutErr != nil {
		v.mu.Lock()
		if v.mounted && gen == v.generation {
			v.err = errors.Join(logoutErr, refreshErr)
		}
		v.mu.Unlock()
	}

	return errors.Join(logoutErr, refreshErr)
}

// LoginMachine returns the login flow of the bridge, creating it on first use. It fails if the
// view isn't showing a signed out identity.
func (v *View) LoginMachine(ctx context.Context) (*login.Machine, error) {
	v.mu.Lock()
	if v.machine != nil {
		defer v.mu.Unlock()
		return v.machine, nil
	} else if !v.mounted {
		v.mu.Unlock()
		return nil, ErrNotMounted
	} else if v.stateLocked() != StateSignedOut {
		v.mu.Unlock()
		return nil, errors.New("login is only available while signed out")
	}

	gen, mountCtx := v.generation, v.mountCtx
	v.mu.Unlock()

	def, err := v.bridge.LoginFlow(ctx, v.sess)
	if err != nil {
		return nil, err
	}

	machine, err := login.NewMachine(v.log, def, func(ctx context.Context, step login.Step, payload login.Payload) (login.Status, error) {
		ctx, cancel := context.WithCancelCause(ctx)
		defer cancel(nil)

		stop := context.AfterFunc(mountCtx, func() { cancel(ErrNotMounted) })
		defer stop()

		return v.bridge.Login(ctx, v.sess, step, payload)
	}, v.onLoggedIn)
	if err != nil {
		return nil, err
	}

	v.mu.Lock()
	defer v.mu.Unlock()

	if !v.mounted || gen != v.generation {
		return nil, ErrNotMounted
	} else if v.machine == nil {
		v.machine = machine
	}

	return v.machine, nil
}

// Machine returns the active login flow, nil if there is none.
func (v *View) Machine() *login.Machine {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.machine
}

// onLoggedIn refreshes the identity after a completed login. If that fails the completed machine
// is dropped, so a new login can start once the view is refreshed or the bridge answers again.
func (v *View) onLoggedIn(ctx context.Context) error {
	err := v.Refresh(ctx)
	if errors.Is(err, ErrNotMounted) {
		return nil
	} else if err != nil {
		v.mu.Lock()
		v.machine = nil
		v.mu.Unlock()
	}

	return err
}

func (v *View) stateLocked() State {
	switch {
	case v.identity == nil:
		return StateAbsent
	case v.identity.SignedIn:
		return StateSignedIn
	default:
		return StateSignedOut
	}
}

func (v *View) Snapshot() Snapshot {
	v.mu.Lock()
	defer v.mu.Unlock()

	snap := Snapshot{
		Bridge:  v.bridge.Id(),
		State:   v.stateLocked(),
		Loading: v.pending > 0,
		Err:     v.err,
		Prompt:  v.prompt,
	}

	if v.identity != nil {
		snap.Summary = v.identity.Summary()
		if v.cfg.InternalBridgeInfo() {
			snap.RawState = v.identity.IndentedRaw()
		}
	}

	if v.machine != nil {
		loginSnap := v.machine.Snapshot()
		snap.Login = &loginSnap
	}

	return snap
}
