package migrations

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStatements(t *testing.T) {
	stmts, err := Statements()
	require.NoError(t, err)
	require.Len(t, stmts, 9)
	for _, s := range stmts {
		assert.True(t, strings.HasPrefix(s, "CREATE TABLE IF NOT EXISTS"), s)
		assert.False(t, strings.HasSuffix(s, ";"))
		assert.NotContains(t, s, "--")
	}
	assert.Contains(t, stmts[4], "uq_invoices_reservation (reservation_id)")
}
