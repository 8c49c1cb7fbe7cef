package theme

import (
	"testing"

	"github.com/dimonomid/memegen/kvstore"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func envWith(colorfgbg string) func(string) string {
	return func(key string) string {
		if key == "COLORFGBG" {
			return colorfgbg
		}
		return ""
	}
}

func TestSystemPreference(t *testing.T) {
	type testCase struct {
		colorfgbg string
		wantDark  bool
	}

	testCases := []testCase{
		{colorfgbg: "", wantDark: true},
		{colorfgbg: "15;0", wantDark: true},
		{colorfgbg: "0;15", wantDark: false},
		{colorfgbg: "0;7", wantDark: false},
		{colorfgbg: "15;8", wantDark: true},
		{colorfgbg: "0;default;15", wantDark: false},
		{colorfgbg: "garbage", wantDark: true},
	}

	for _, tc := range testCases {
		th, err := New(ThemeParams{Store: kvstore.NewMemStore(), Getenv: envWith(tc.colorfgbg)})
		require.Nil(t, err)
		assert.Equal(t, tc.wantDark, th.IsDark(), "COLORFGBG=%q", tc.colorfgbg)
	}
}

func TestPersistedWinsOverSystem(t *testing.T) {
	store := kvstore.NewMemStore()
	require.Nil(t, store.Set(StoreKey, "light"))

	th, err := New(ThemeParams{Store: store, Getenv: envWith("15;0")})
	require.Nil(t, err)
	assert.False(t, th.IsDark())
}

func TestToggle(t *testing.T) {
	store := kvstore.NewMemStore()

	th, err := New(ThemeParams{Store: store, Getenv: envWith("")})
	require.Nil(t, err)
	require.True(t, th.IsDark())
	assert.Equal(t, darkPalette, th.Palette())

	isDark, err := th.Toggle()
	require.Nil(t, err)
	assert.False(t, isDark)
	assert.Equal(t, lightPalette, th.Palette())

	v, ok, err := store.Get(StoreKey)
	require.Nil(t, err)
	assert.True(t, ok)
	assert.Equal(t, "light", v)

	// A new instance picks up the persisted value.
	th2, err := New(ThemeParams{Store: store, Getenv: envWith("15;0")})
	require.Nil(t, err)
	assert.False(t, th2.IsDark())
}
