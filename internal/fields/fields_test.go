package fields

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCount(t *testing.T) {
	assert.Equal(t, 5, Count())
}

func TestTableOrder(t *testing.T) {
	wantKinds := []Kind{KindImage, KindLabel, KindUsernameInput, KindPasswordInput, KindSubmitButton}
	for i, want := range wantKinds {
		d, err := At(i)
		require.NoError(t, err)
		assert.Equal(t, want, d.Kind, "index %d", i)
	}
}

func TestDescriptors(t *testing.T) {
	d, err := At(IndexLabel)
	require.NoError(t, err)
	assert.Equal(t, TileAndSelected, d.Visibility)
	assert.Equal(t, InteractiveNone, d.Interactive)

	d, err = At(IndexUsername)
	require.NoError(t, err)
	assert.Equal(t, TileOnly, d.Visibility)
	assert.Equal(t, InteractiveFocused, d.Interactive)
	assert.Equal(t, TagUsername, d.Tag)

	d, err = At(IndexPassword)
	require.NoError(t, err)
	assert.Equal(t, TagPassword, d.Tag)
	assert.Equal(t, InteractiveNone, d.Interactive)
}

func TestAtOutOfRange(t *testing.T) {
	for _, i := range []int{-1, 5, 6, 100} {
		_, err := At(i)
		assert.ErrorIs(t, err, ErrOutOfRange, "index %d", i)
	}
}

func TestAdjacentTo(t *testing.T) {
	got, err := AdjacentTo(IndexSubmit)
	require.NoError(t, err)
	assert.Equal(t, IndexPassword, got)

	_, err = AdjacentTo(IndexUsername)
	assert.ErrorIs(t, err, ErrOutOfRange)
	_, err = AdjacentTo(7)
	assert.ErrorIs(t, err, ErrOutOfRange)
}

func TestAllIsACopy(t *testing.T) {
	a := All()
	require.Len(t, a, 5)
	a[0].Label = "mutated"
	d, err := At(0)
	require.NoError(t, err)
	assert.NotEqual(t, "mutated", d.Label)
}
