package recent

import (
	"fmt"
	"path/filepath"
	"testing"
	"time"

	"github.com/dimonomid/memegen/kvstore"
	"github.com/dimonomid/memegen/meme"
	"github.com/juju/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fakeNow() func() time.Time {
	t := time.Unix(1700000000, 0)
	return func() time.Time {
		t = t.Add(time.Second)
		return t
	}
}

func topTexts(entries []Entry) []string {
	ret := make([]string, 0, len(entries))
	for _, e := range entries {
		ret = append(ret, e.Doc.TopText)
	}
	return ret
}

func TestAddNewestFirstAndCapped(t *testing.T) {
	h, err := New(HistoryParams{Store: kvstore.NewMemStore(), Now: fakeNow()})
	require.Nil(t, err)
	assert.Empty(t, h.Items())

	for i := 0; i < 25; i++ {
		require.Nil(t, h.Add(meme.Default().WithTopText(fmt.Sprintf("meme %d", i))))
	}

	items := h.Items()
	require.Len(t, items, DefaultMaxLen)
	assert.Equal(t, "meme 24", items[0].Doc.TopText)
	assert.Equal(t, "meme 5", items[DefaultMaxLen-1].Doc.TopText)
	assert.True(t, items[0].Time.After(items[1].Time))
}

func TestPersistedAcrossInstances(t *testing.T) {
	fname := filepath.Join(t.TempDir(), "store.yaml")

	store, err := kvstore.NewFileStore(kvstore.FileStoreParams{Filename: fname})
	require.Nil(t, err)

	h, err := New(HistoryParams{Store: store, Now: fakeNow()})
	require.Nil(t, err)

	doc := meme.Default().
		WithTopText("it's a 'quoted' text").
		WithBottomText("").
		WithFontSize(2.5).
		WithTextColor("#ff0")

	require.Nil(t, h.Add(meme.Default()))
	require.Nil(t, h.Add(doc))

	store2, err := kvstore.NewFileStore(kvstore.FileStoreParams{Filename: fname})
	require.Nil(t, err)

	h2, err := New(HistoryParams{Store: store2})
	require.Nil(t, err)

	items := h2.Items()
	require.Len(t, items, 2)
	assert.Equal(t, doc, items[0].Doc)
	assert.Equal(t, meme.Default(), items[1].Doc)
	assert.Equal(t, h.Items()[0].Time.UnixMilli(), items[0].Time.UnixMilli())
}

func TestClear(t *testing.T) {
	store := kvstore.NewMemStore()

	h, err := New(HistoryParams{Store: store})
	require.Nil(t, err)

	require.Nil(t, h.Add(meme.Default()))
	require.Nil(t, h.Clear())
	assert.Empty(t, h.Items())

	_, ok, err := store.Get(StoreKey)
	require.Nil(t, err)
	assert.False(t, ok)
}

func TestBadEntriesSkipped(t *testing.T) {
	store := kvstore.NewMemStore()
	require.Nil(t, store.Set(StoreKey, `
- time_ms: 1000
  cmd: "rm -rf /"
- time_ms: 2000
  cmd: "memegen --template http://example.com/a.png --top hi"
`))

	h, err := New(HistoryParams{Store: store})
	require.Nil(t, err)

	assert.Equal(t, []string{"hi"}, topTexts(h.Items()))
	assert.Equal(t, int64(2000), h.Items()[0].Time.UnixMilli())
}

func TestCorruptedHistoryIgnored(t *testing.T) {
	store := kvstore.NewMemStore()
	require.Nil(t, store.Set(StoreKey, "{{{ not yaml"))

	h, err := New(HistoryParams{Store: store})
	require.Nil(t, err)
	assert.Empty(t, h.Items())
}

type failingStore struct {
	kvstore.Store
}

func (failingStore) Set(key, value string) error {
	return errors.New("disk full")
}

func TestAddFailureKeepsMemoryIntact(t *testing.T) {
	h, err := New(HistoryParams{Store: failingStore{Store: kvstore.NewMemStore()}})
	require.Nil(t, err)

	assert.NotNil(t, h.Add(meme.Default()))
	assert.Empty(t, h.Items())
}
