package catalog

import (
	"context"
	"math/rand"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/dimonomid/memegen/kvstore"
	"github.com/dimonomid/memegen/log"
	"github.com/gobwas/glob"
	"github.com/juju/errors"
	"gopkg.in/yaml.v2"
)

var (
	// ErrCatalogUnavailable means the template list could not be fetched or
	// parsed.
	ErrCatalogUnavailable = errors.New("catalog unavailable")

	// ErrNoTemplatesSelectable means a template was requested, but there are
	// none to choose from.
	ErrNoTemplatesSelectable = errors.New("no templates selectable")
)

const (
	DefaultCacheTTL = time.Hour

	storeKeyCachedMemes    = "cached_memes"
	storeKeyMemesCacheTime = "memes_cache_time"
)

// State is a snapshot of what the Manager knows.
type State struct {
	AllMemes  []Template
	IsLoading bool

	// Err is set if the last load has failed. AllMemes may still be populated
	// from the cache in this case.
	Err error
}

// Update is sent to ManagerParams.UpdatesCh whenever the State changes.
type Update struct {
	State State
}

type ManagerParams struct {
	Fetcher Fetcher

	// Store is where the fetched catalog is cached. If nil, there's no cache.
	Store kvstore.Store

	// CacheTTL is how long a cached catalog is considered fresh;
	// DefaultCacheTTL if zero.
	CacheTTL time.Duration

	// UpdatesCh, if not nil, receives every state change. The Manager never
	// blocks on it for longer than it takes the receiver to read.
	UpdatesCh chan<- Update

	Logger *log.Logger

	// Now is time.Now if nil.
	Now func() time.Time
}

// Manager owns the template catalog: it loads it (from the cache and/or
// the Fetcher), and answers queries about it. It's safe for concurrent use:
// typically Load runs in its own goroutine while the UI reads the state.
type Manager struct {
	params ManagerParams

	mtx   sync.Mutex
	state State
}

func NewManager(params ManagerParams) *Manager {
	if params.CacheTTL == 0 {
		params.CacheTTL = DefaultCacheTTL
	}

	if params.Now == nil {
		params.Now = time.Now
	}

	params.Logger = params.Logger.WithNamespaceAppended("catalog")

	return &Manager{
		params: params,
		state: State{
			IsLoading: true,
		},
	}
}

// Load serves the cached catalog right away if it's fresh, then fetches the
// current one. It blocks until the fetch is done; IsLoading is always false
// once it returns. The returned State is the final one.
func (m *Manager) Load(ctx context.Context) State {
	m.updateState(func(s *State) {
		s.IsLoading = true
		s.Err = nil
	})

	now := m.params.Now()

	if cached, ok := m.loadCache(now); ok {
		m.params.Logger.Verbose1f("Using %d cached templates", len(cached))
		m.updateState(func(s *State) {
			s.AllMemes = cached
			s.IsLoading = false
		})
	}

	templates, err := m.params.Fetcher.Fetch(ctx)
	if err != nil {
		m.params.Logger.Errorf("Failed to fetch templates: %s", err.Error())
		return m.updateState(func(s *State) {
			s.Err = errors.Annotatef(ErrCatalogUnavailable, "%s", err.Error())
			s.IsLoading = false
		})
	}

	m.params.Logger.Infof("Fetched %d templates", len(templates))

	if err := m.saveCache(templates, now); err != nil {
		// Not being able to cache is not a reason to fail the load.
		m.params.Logger.Warnf("Failed to cache templates: %s", err.Error())
	}

	return m.updateState(func(s *State) {
		s.AllMemes = templates
		s.IsLoading = false
	})
}

// State returns the current state.
func (m *Manager) State() State {
	m.mtx.Lock()
	defer m.mtx.Unlock()

	return m.state
}

func (m *Manager) updateState(f func(s *State)) State {
	m.mtx.Lock()
	f(&m.state)
	state := m.state
	m.mtx.Unlock()

	if m.params.UpdatesCh != nil {
		m.params.UpdatesCh <- Update{State: state}
	}

	return state
}

func (m *Manager) loadCache(now time.Time) ([]Template, bool) {
	if m.params.Store == nil {
		return nil, false
	}

	tsStr, ok, err := m.params.Store.Get(storeKeyMemesCacheTime)
	if err != nil || !ok {
		return nil, false
	}

	tsMillis, err := strconv.ParseInt(tsStr, 10, 64)
	if err != nil {
		m.params.Logger.Warnf("Broken cache time %q: %s", tsStr, err.Error())
		return nil, false
	}

	if now.Sub(time.UnixMilli(tsMillis)) >= m.params.CacheTTL {
		return nil, false
	}

	data, ok, err := m.params.Store.Get(storeKeyCachedMemes)
	if err != nil || !ok {
		return nil, false
	}

	var templates []Template
	if err := yaml.Unmarshal([]byte(data), &templates); err != nil {
		m.params.Logger.Warnf("Failed to parse cached templates: %s", err.Error())
		return nil, false
	}

	return templates, true
}

func (m *Manager) saveCache(templates []Template, now time.Time) error {
	if m.params.Store == nil {
		return nil
	}

	data, err := yaml.Marshal(templates)
	if err != nil {
		return errors.Trace(err)
	}

	if err := m.params.Store.Set(storeKeyCachedMemes, string(data)); err != nil {
		return errors.Trace(err)
	}

	if err := m.params.Store.Set(storeKeyMemesCacheTime, strconv.FormatInt(now.UnixMilli(), 10)); err != nil {
		return errors.Trace(err)
	}

	return nil
}

// Random returns a random template, or ErrNoTemplatesSelectable if the
// catalog is empty.
func (m *Manager) Random(rnd *rand.Rand) (Template, error) {
	templates := m.State().AllMemes
	if len(templates) == 0 {
		return Template{}, errors.Trace(ErrNoTemplatesSelectable)
	}

	return templates[rnd.Intn(len(templates))], nil
}

// Find resolves a template spec as given by the user: a template id, a name
// (case-insensitive) or a glob over names. Anything which looks like a URL or
// a path to a file is returned as an ad-hoc template.
func (m *Manager) Find(spec string) (Template, error) {
	if looksLikeLocation(spec) {
		return Template{ID: spec, Name: spec, URL: spec}, nil
	}

	templates := m.State().AllMemes

	for _, t := range templates {
		if t.ID == spec || strings.EqualFold(t.Name, spec) {
			return t, nil
		}
	}

	matcher, err := glob.Compile(strings.ToLower(spec))
	if err != nil {
		return Template{}, errors.Annotatef(err, "parsing %q as a glob pattern", spec)
	}

	for _, t := range templates {
		if matcher.Match(strings.ToLower(t.Name)) {
			return t, nil
		}
	}

	if len(templates) == 0 {
		return Template{}, errors.Annotatef(ErrNoTemplatesSelectable, "looking for %q", spec)
	}

	return Template{}, errors.Errorf("no template matches %q", spec)
}

func looksLikeLocation(spec string) bool {
	for _, prefix := range []string{"http://", "https://", "file://", "/", "./", "../"} {
		if strings.HasPrefix(spec, prefix) {
			return true
		}
	}

	return false
}
