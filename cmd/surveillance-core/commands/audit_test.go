package commands

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestScopedCatalog_EmptyScopeReturnsEverything(t *testing.T) {
	cat, err := scopedCatalog("")
	require.NoError(t, err)
	assert.Equal(t, len(defaultCatalog().All()), len(cat.All()))
}

func TestScopedCatalog_FiltersToNamedChecks(t *testing.T) {
	cat, err := scopedCatalog("access-control-doc")
	require.NoError(t, err)
	require.Len(t, cat.All(), 1)
	assert.Equal(t, "access-control-doc", cat.All()[0].ID)
}

func TestScopedCatalog_UnknownCheckIDErrors(t *testing.T) {
	_, err := scopedCatalog("not-a-real-check")
	assert.Error(t, err)
}

func TestScopedCatalog_TrimsWhitespaceAroundCommas(t *testing.T) {
	cat, err := scopedCatalog(" access-control-doc , idsr-artifact-shape ")
	require.NoError(t, err)
	assert.Len(t, cat.All(), 2)
}
