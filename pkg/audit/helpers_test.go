package audit

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func mustParseAudit(t *testing.T, s string) time.Time {
	t.Helper()
	ts, err := time.Parse(time.RFC3339, s)
	require.NoError(t, err)
	return ts.UTC()
}
