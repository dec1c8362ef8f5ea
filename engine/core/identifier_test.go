package core

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIdentifierLookupAfterRelease(t *testing.T) {
	owner := &struct{ name string }{"a"}
	id := IdentifierAquireNewID(owner)
	require.NotEqual(t, InvalidID, id)

	got, ok := IdentifierLookup(id)
	require.True(t, ok)
	assert.Same(t, owner, got)

	require.NoError(t, IdentifierReleaseID(id))
	_, ok = IdentifierLookup(id)
	assert.False(t, ok)

	assert.Error(t, IdentifierReleaseID(id), "double release must fail")
}

func TestIdentifierReuseDoesNotCollide(t *testing.T) {
	first := IdentifierAquireNewID("first")
	require.NoError(t, IdentifierReleaseID(first))

	second := IdentifierAquireNewID("second")
	defer IdentifierReleaseID(second)

	assert.NotEqual(t, first, second)
	_, ok := IdentifierLookup(first)
	assert.False(t, ok, "stale identity must not resolve to the new owner")

	got, ok := IdentifierLookup(second)
	require.True(t, ok)
	assert.Equal(t, "second", got)
}

func TestIdentifierAllRenderersNeverResolves(t *testing.T) {
	_, ok := IdentifierLookup(AllRenderers)
	assert.False(t, ok)
	assert.Equal(t, "all", AllRenderers.String())
}
