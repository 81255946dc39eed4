package pageindex

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAddSelectRoundTrip(t *testing.T) {
	idx := New()
	idx.Add(7, 500)

	pgno, ok := idx.Select(100)
	require.True(t, ok, "Select should find page 7")
	assert.EqualValues(t, 7, pgno)

	_, ok = idx.Select(100)
	assert.False(t, ok, "page 7 should have been removed after Select")
}

func TestSelectPrefersSmallestSufficientBucket(t *testing.T) {
	idx := New()
	idx.Add(1, 8000)
	idx.Add(2, 300)

	pgno, ok := idx.Select(100)
	require.True(t, ok, "Select should find a page")
	assert.EqualValues(t, 2, pgno, "want smallest sufficient bucket")
}

func TestSelectNoneSufficient(t *testing.T) {
	idx := New()
	idx.Add(1, 10)

	_, ok := idx.Select(5000)
	assert.False(t, ok, "Select should fail when no page has enough free space")
}
