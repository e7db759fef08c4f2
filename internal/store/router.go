package store

import (
	"errors"
	"fmt"
	"sort"
	"sync"

	"github.com/matchpoint-labs/tennis-predict/internal/models"
)

// ErrUnknownSource is returned when switching to an unregistered backend.
var ErrUnknownSource = errors.New("unknown data source")

// SwitchListener observes data source changes.
type SwitchListener func(from, to string)

// Router selects the active backend among named ones. It implements Store by
// delegating every call to the backend active at call time.
type Router struct {
	mu        sync.RWMutex
	backends  map[string]Store
	active    string
	nextID    int
	listeners map[int]SwitchListener
}

// NewRouter registers backends under their Name() and activates initial.
func NewRouter(initial string, backends ...Store) (*Router, error) {
	r := &Router{
		backends:  make(map[string]Store, len(backends)),
		listeners: make(map[int]SwitchListener),
	}
	for _, b := range backends {
		r.backends[b.Name()] = b
	}
	if _, ok := r.backends[initial]; !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownSource, initial)
	}
	r.active = initial
	return r, nil
}

// Active returns the currently selected backend.
func (r *Router) Active() Store {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.backends[r.active]
}

// ActiveName returns the name of the current backend.
func (r *Router) ActiveName() string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.active
}

// Names lists the registered backends.
func (r *Router) Names() []string {
	r.mu.RLock()
	names := make([]string, 0, len(r.backends))
	for n := range r.backends {
		names = append(names, n)
	}
	r.mu.RUnlock()
	sort.Strings(names)
	return names
}

// Switch makes name the active backend. It reports false without notifying
// anyone when name is already active.
func (r *Router) Switch(name string) (bool, error) {
	r.mu.Lock()
	if _, ok := r.backends[name]; !ok {
		r.mu.Unlock()
		return false, fmt.Errorf("%w: %s", ErrUnknownSource, name)
	}
	if r.active == name {
		r.mu.Unlock()
		return false, nil
	}
	from := r.active
	r.active = name
	listeners := make([]SwitchListener, 0, len(r.listeners))
	for _, l := range r.listeners {
		listeners = append(listeners, l)
	}
	r.mu.Unlock()

	for _, l := range listeners {
		l(from, name)
	}
	return true, nil
}

// Subscribe registers fn for switch notifications and returns a function
// that removes it.
func (r *Router) Subscribe(fn SwitchListener) func() {
	r.mu.Lock()
	id := r.nextID
	r.nextID++
	r.listeners[id] = fn
	r.mu.Unlock()

	return func() {
		r.mu.Lock()
		delete(r.listeners, id)
		r.mu.Unlock()
	}
}

func (r *Router) Name() string { return r.ActiveName() }
func (r *Router) Players() PlayerCollection { return r.Active().Players() }
func (r *Router) Matches() Collection[models.Match] { return r.Active().Matches() }
func (r *Router) Predictions() Collection[models.Prediction] { return r.Active().Predictions() }
func (r *Router) Compliance() Collection[models.Compliance] { return r.Active().Compliance() }
func (r *Router) ModelWeights() Collection[models.ModelWeights] { return r.Active().ModelWeights() }
func (r *Router) ModelFeedback() Collection[models.ModelFeedback] { return r.Active().ModelFeedback() }
func (r *Router) Alias() AliasWriter { return r.Active().Alias() }
func (r *Router) Auth() Auth { return r.Active().Auth() }
func (r *Router) AppLogs() AppLogs { return r.Active().AppLogs() }

// OnFeedback subscribes l on every backend so it survives switches.
func (r *Router) OnFeedback(l FeedbackListener) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, b := range r.backends {
		b.OnFeedback(l)
	}
}
