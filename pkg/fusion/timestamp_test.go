package fusion

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sentinel-surveillance/core/pkg/apperr"
)

func TestParseTimestamp_RFC3339(t *testing.T) {
	ts, err := ParseTimestamp("2025-01-10T09:45:00Z")
	require.NoError(t, err)
	assert.Equal(t, 2025, ts.Year())
	assert.Equal(t, time.Month(1), ts.Month())
}

func TestParseTimestamp_EpochSeconds(t *testing.T) {
	ts, err := ParseTimestamp("1736502300")
	require.NoError(t, err)
	assert.Equal(t, int64(1736502300), ts.Unix())
}

func TestParseTimestamp_EpochWithFraction(t *testing.T) {
	ts, err := ParseTimestamp("1736502300.5")
	require.NoError(t, err)
	assert.Equal(t, int64(1736502300), ts.Unix())
}

func TestParseTimestamp_Empty(t *testing.T) {
	_, err := ParseTimestamp("")
	require.Error(t, err)
	assert.True(t, apperr.IsKind(err, apperr.Validation))
}

func TestParseTimestamp_Unparseable(t *testing.T) {
	_, err := ParseTimestamp("not a timestamp at all")
	require.Error(t, err)
	assert.True(t, apperr.IsKind(err, apperr.Validation))
}

func TestParseTimestampValue_Float64(t *testing.T) {
	ts, err := ParseTimestampValue(1736502300.0)
	require.NoError(t, err)
	assert.Equal(t, int64(1736502300), ts.Unix())
}

func TestParseTimestampValue_String(t *testing.T) {
	ts, err := ParseTimestampValue("2025-01-10T09:45:00Z")
	require.NoError(t, err)
	assert.Equal(t, 2025, ts.Year())
}

func TestParseTimestampValue_Nil(t *testing.T) {
	_, err := ParseTimestampValue(nil)
	assert.Error(t, err)
}

func TestParseTimestampValue_UnsupportedType(t *testing.T) {
	_, err := ParseTimestampValue(struct{}{})
	assert.Error(t, err)
}
