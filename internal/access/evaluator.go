package access

import (
	"sync"
)

// State is the lifecycle of the profile an Evaluator reads from.
type State int

const (
	StateLoading State = iota
	StateLoaded
	StateFailed
)

func (s State) String() string {
	switch s {
	case StateLoading:
		return "loading"
	case StateLoaded:
		return "loaded"
	case StateFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// Decision is the outcome of a permission check. Pending means the profile
// has not arrived yet and callers should defer any allow/deny rendering.
type Decision int

const (
	Pending Decision = iota
	Granted
	Denied
)

func (d Decision) String() string {
	switch d {
	case Granted:
		return "granted"
	case Denied:
		return "denied"
	default:
		return "pending"
	}
}

// Tracker holds the current profile and its loading state. The effective
// set is recomputed on every Resolve and dropped on Invalidate.
type Tracker struct {
	mu      sync.RWMutex
	state   State
	profile Profile
	set     Set
	err     error
}

// NewTracker returns a tracker in the loading state.
func NewTracker() *Tracker {
	return &Tracker{state: StateLoading, set: Set{}}
}

// Begin marks a (re)fetch in flight.
func (t *Tracker) Begin() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.state = StateLoading
	t.err = nil
}

// Resolve stores a fetched profile.
func (t *Tracker) Resolve(p Profile) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.state = StateLoaded
	t.profile = p
	t.set = p.Effective()
	t.err = nil
}

// Fail records a failed fetch. A failed profile has no roles.
func (t *Tracker) Fail(err error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.state = StateFailed
	t.profile = Profile{}
	t.set = Set{}
	t.err = err
}

// Invalidate discards the cached set; the tracker waits for the next Resolve.
func (t *Tracker) Invalidate() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.state = StateLoading
	t.profile = Profile{}
	t.set = Set{}
}

// State returns the current state and the last fetch error, if any.
func (t *Tracker) State() (State, error) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.state, t.err
}

// Profile returns the last resolved profile.
func (t *Tracker) Profile() Profile {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.profile
}

func (t *Tracker) snapshot() (State, Set) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.state, t.set
}

// Evaluator answers "may the current user do X".
type Evaluator struct {
	tracker *Tracker
}

// NewEvaluator reads from t. A nil tracker behaves like an unauthenticated user.
func NewEvaluator(t *Tracker) *Evaluator {
	return &Evaluator{tracker: t}
}

// ForProfile returns an evaluator over an already loaded profile.
func ForProfile(p Profile) *Evaluator {
	t := NewTracker()
	t.Resolve(p)
	return NewEvaluator(t)
}

// ForSet returns an evaluator over an already computed effective set.
func ForSet(s Set) *Evaluator {
	t := NewTracker()
	t.mu.Lock()
	t.state = StateLoaded
	t.set = s
	t.mu.Unlock()
	return NewEvaluator(t)
}

// Loading reports whether the profile is still being fetched.
func (e *Evaluator) Loading() bool {
	if e == nil || e.tracker == nil {
		return false
	}
	state, _ := e.tracker.snapshot()
	return state == StateLoading
}

// Decide evaluates check, returning Pending while the profile is loading.
func (e *Evaluator) Decide(check Check) Decision {
	if e == nil || e.tracker == nil {
		return Denied
	}
	state, set := e.tracker.snapshot()
	if state == StateLoading {
		return Pending
	}
	if HasPermission(set, check) {
		return Granted
	}
	return Denied
}

// HasPermission is Decide collapsed to a boolean; Pending counts as false.
func (e *Evaluator) HasPermission(check Check) bool {
	return e.Decide(check) == Granted
}

// Can is shorthand for HasPermission(All(perms...)).
func (e *Evaluator) Can(perms ...Permission) bool {
	return e.HasPermission(All(perms...))
}

// Permissions returns the effective set, empty while loading.
func (e *Evaluator) Permissions() Set {
	if e == nil || e.tracker == nil {
		return Set{}
	}
	state, set := e.tracker.snapshot()
	if state == StateLoading {
		return Set{}
	}
	return set
}
