// Package recent keeps the durable list of memes the user has produced
// (downloaded or copied), newest first.
package recent

import (
	"sync"
	"time"

	"github.com/dimonomid/memegen/kvstore"
	"github.com/dimonomid/memegen/log"
	"github.com/dimonomid/memegen/meme"
	"github.com/dimonomid/memegen/util/capped"
	"github.com/juju/errors"
	"gopkg.in/yaml.v2"
)

const (
	// StoreKey is the kvstore key the list is persisted under.
	StoreKey = "meme_history"

	DefaultMaxLen = 20
)

type Entry struct {
	Time time.Time
	Doc  meme.Document
}

// storedEntry is how an Entry looks in the store: the Document is kept as a
// memegen command line, so that the stored history is human-readable and
// every entry can be pasted into a shell as is.
type storedEntry struct {
	TimeMs int64  `yaml:"time_ms"`
	Cmd    string `yaml:"cmd"`
}

type History struct {
	params HistoryParams

	mtx     sync.Mutex
	entries []Entry
}

type HistoryParams struct {
	Store kvstore.Store

	// MaxLen is DefaultMaxLen if zero.
	MaxLen int

	Logger *log.Logger

	// Now is time.Now if nil.
	Now func() time.Time
}

// New loads the history from the store. Entries which fail to parse are
// skipped with a warning, so that one bad line doesn't lose the rest.
func New(params HistoryParams) (*History, error) {
	if params.MaxLen == 0 {
		params.MaxLen = DefaultMaxLen
	}

	if params.Now == nil {
		params.Now = time.Now
	}

	params.Logger = params.Logger.WithNamespaceAppended("recent")

	h := &History{
		params: params,
	}

	if err := h.load(); err != nil {
		return nil, errors.Trace(err)
	}

	return h, nil
}

func (h *History) load() error {
	raw, ok, err := h.params.Store.Get(StoreKey)
	if err != nil {
		return errors.Annotatef(err, "getting %s", StoreKey)
	}

	if !ok {
		return nil
	}

	var stored []storedEntry
	if err := yaml.Unmarshal([]byte(raw), &stored); err != nil {
		h.params.Logger.Warnf("Ignoring corrupted history: %s", err.Error())
		return nil
	}

	entries := make([]Entry, 0, len(stored))
	for _, se := range stored {
		var doc meme.Document
		if err := doc.UnmarshalShellCmd(se.Cmd); err != nil {
			h.params.Logger.Warnf("Skipping history entry %q: %s", se.Cmd, err.Error())
			continue
		}

		entries = append(entries, Entry{
			Time: time.UnixMilli(se.TimeMs),
			Doc:  doc,
		})
	}

	h.entries = capped.KeepFirst(entries, h.params.MaxLen)

	return nil
}

// Add puts the Document in front of the history, dropping the oldest entries
// beyond MaxLen, and persists the result.
func (h *History) Add(doc meme.Document) error {
	h.mtx.Lock()
	defer h.mtx.Unlock()

	entry := Entry{
		Time: h.params.Now(),
		Doc:  doc,
	}

	entries := capped.Prepend(h.entries, entry, h.params.MaxLen)
	if err := h.saveLocked(entries); err != nil {
		return errors.Trace(err)
	}

	h.entries = entries

	return nil
}

// Clear removes all entries, both from memory and from the store.
func (h *History) Clear() error {
	h.mtx.Lock()
	defer h.mtx.Unlock()

	if err := h.params.Store.Delete(StoreKey); err != nil {
		return errors.Annotatef(err, "deleting %s", StoreKey)
	}

	h.entries = nil

	return nil
}

// Items returns the entries, newest first.
func (h *History) Items() []Entry {
	h.mtx.Lock()
	defer h.mtx.Unlock()

	return append([]Entry(nil), h.entries...)
}

func (h *History) saveLocked(entries []Entry) error {
	stored := make([]storedEntry, 0, len(entries))
	for _, e := range entries {
		stored = append(stored, storedEntry{
			TimeMs: e.Time.UnixMilli(),
			Cmd:    e.Doc.MarshalShellCmd(),
		})
	}

	data, err := yaml.Marshal(stored)
	if err != nil {
		return errors.Trace(err)
	}

	if err := h.params.Store.Set(StoreKey, string(data)); err != nil {
		return errors.Annotatef(err, "setting %s", StoreKey)
	}

	return nil
}
