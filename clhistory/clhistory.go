package clhistory

import (
	"bytes"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/dimonomid/memegen/util/capped"
	"github.com/juju/errors"
)

// DefaultMaxLen is used when CLHistoryParams.MaxLen is zero.
const DefaultMaxLen = 500

type CLHistory struct {
	params CLHistoryParams

	items []Item

	// curHistIdx is used when navigating the history using Prev / Next.
	// When navigating isn't in progress (after a new item was added using Add),
	// it's reset to -1.
	curHistIdx        int
	lastEphemeralItem Item
}

type CLHistoryParams struct {
	// Filename is where to load the history from and write it to.  If it's
	// empty, the history is only kept in RAM and not persisted anywhere.
	Filename string

	// MaxLen is how many items to keep in RAM; when the file is loaded, only
	// the last MaxLen items are used. If zero, DefaultMaxLen is used.
	MaxLen int
}

type Item struct {
	Time time.Time

	Str string
}

// New creates the history and loads it from the file, if any. Failure to
// load is returned along with a usable (empty) history: a corrupted history
// file should not prevent the app from starting.
func New(params CLHistoryParams) (*CLHistory, error) {
	if params.MaxLen == 0 {
		params.MaxLen = DefaultMaxLen
	}

	h := &CLHistory{
		params: params,

		curHistIdx: -1,
	}

	if err := h.Load(); err != nil {
		return h, errors.Trace(err)
	}

	return h, nil
}

// Load loads all history from the file. If Filename in params is empty,
// Load is a no-op. A missing file is not an error.
func (h *CLHistory) Load() error {
	if h.params.Filename == "" {
		return nil
	}

	data, err := os.ReadFile(h.params.Filename)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}

		return errors.Trace(err)
	}

	items, err := unmarshalItems(data)
	if err != nil {
		return errors.Annotatef(err, "parsing %s", h.params.Filename)
	}

	h.items, _ = capped.KeepLast(items, h.params.MaxLen)
	h.resetHistoryNavigation()

	return nil
}

// Add adds the given string as a new history item to the in-RAM history and,
// if Filename in params was not empty, then also to this file. It also resets
// the history navigation, if any. Repeating the last item is a no-op.
func (h *CLHistory) Add(s string) error {
	h.resetHistoryNavigation()

	if len(h.items) > 0 && h.items[len(h.items)-1].Str == s {
		return nil
	}

	item := Item{
		Time: time.Now(),
		Str:  s,
	}

	h.items = append(h.items, item)
	h.items, _ = capped.KeepLast(h.items, h.params.MaxLen)

	if h.params.Filename != "" {
		f, err := os.OpenFile(h.params.Filename, os.O_WRONLY|os.O_CREATE|os.O_APPEND, 0666)
		if err != nil {
			return errors.Trace(err)
		}

		defer f.Close()

		if _, err := f.Write(marshalItem(item)); err != nil {
			return errors.Trace(err)
		}
	}

	return nil
}

// Items returns all items, from the oldest to the newest.
func (h *CLHistory) Items() []Item {
	return append([]Item(nil), h.items...)
}

// Reset resets the history navigation. Typically client code should call it
// when a user edits or aborts/accepts the command line.
func (h *CLHistory) Reset() {
	h.resetHistoryNavigation()
}

// Prev returns what it considers the previous item, and whether there are
// more items before it.
func (h *CLHistory) Prev(s string) (Item, bool) {
	if h.curHistIdx == -1 {
		h.startHistoryNavigation(s)
	}

	h.curHistIdx--
	if h.curHistIdx < 0 {
		h.curHistIdx = 0
	}

	return h.getItem(h.curHistIdx), h.curHistIdx > 0
}

// Next returns what it considers the next item, and whether there are more
// items after it.
func (h *CLHistory) Next(s string) (Item, bool) {
	if h.curHistIdx == -1 {
		h.startHistoryNavigation(s)
	}

	h.curHistIdx++
	if h.curHistIdx > len(h.items) {
		// We do allow it to exceed the data by 1 item, which means just returning
		// lastEphemeralItem; thus we use len(h.items) and not len(h.items)-1.
		h.curHistIdx = len(h.items)
	}

	return h.getItem(h.curHistIdx), h.curHistIdx < len(h.items)
}

func (h *CLHistory) startHistoryNavigation(s string) {
	h.curHistIdx = len(h.items)
	h.lastEphemeralItem = Item{Str: s}
}

func (h *CLHistory) resetHistoryNavigation() {
	h.curHistIdx = -1
	h.lastEphemeralItem = Item{}
}

func (h *CLHistory) getItem(idx int) Item {
	if idx < len(h.items) {
		return h.items[idx]
	}

	if idx == len(h.items) {
		return h.lastEphemeralItem
	}

	panic(fmt.Sprintf("idx=%d, len(items)=%d", idx, len(h.items)))
}

// :1650712458000000000:12:0:foo bar baz
//
// The length includes the trailing newline, so the string itself may contain
// newlines as well.
func marshalItem(item Item) []byte {
	b := bytes.Buffer{}
	b.WriteRune(':')
	b.WriteString(strconv.FormatInt(item.Time.UnixNano(), 10))
	b.WriteRune(':')
	b.WriteString(strconv.Itoa(len(item.Str) + 1))
	b.WriteString(":0:") // For now, no extra info
	b.WriteString(item.Str)
	b.WriteRune('\n')

	return b.Bytes()
}

func unmarshalItems(data []byte) ([]Item, error) {
	var items []Item

	for len(data) > 0 {
		// Tolerate empty lines, e.g. if someone edited the file by hand.
		if data[0] == '\n' {
			data = data[1:]
			continue
		}

		item, rest, err := unmarshalItem(data)
		if err != nil {
			return items, errors.Trace(err)
		}

		items = append(items, item)
		data = rest
	}

	return items, nil
}

func unmarshalItem(data []byte) (Item, []byte, error) {
	if data[0] != ':' {
		return Item{}, nil, errors.Errorf("expected ':', got %q", data[0])
	}
	data = data[1:]

	var fields [3]int64
	for i := range fields {
		idx := bytes.IndexByte(data, ':')
		if idx < 0 {
			return Item{}, nil, errors.Errorf("unterminated header")
		}

		v, err := strconv.ParseInt(string(data[:idx]), 10, 64)
		if err != nil {
			return Item{}, nil, errors.Annotatef(err, "header field %d", i)
		}

		fields[i] = v
		data = data[idx+1:]
	}

	tsNano, length := fields[0], fields[1]
	if length < 1 || length > int64(len(data)) {
		return Item{}, nil, errors.Errorf("invalid item length %d", length)
	}

	item := Item{
		Time: time.Unix(0, tsNano),
		Str:  string(bytes.TrimSuffix(data[:length], []byte("\n"))),
	}

	return item, data[length:], nil
}
