package main

import (
	"os"
	"regexp"
	"testing"

	"github.com/stretchr/testify/require"
)

// The repositories scan cfop and accumulator codes as strings and build
// COALESCE(code, '') expressions, so the DDL must declare them TEXT.
func TestSchemaDeclaresFiscalCodesAsText(t *testing.T) {
	ddl, err := os.ReadFile("../schema.sql")
	require.NoError(t, err)

	for _, table := range []string{"cfops", "accumulators"} {
		block := tableBlock(t, string(ddl), table)
		require.Regexp(t, regexp.MustCompile(`(?m)^\s+code\s+TEXT NOT NULL,$`), block,
			"%s.code must be TEXT", table)
	}
}

func tableBlock(t *testing.T, ddl, table string) string {
	t.Helper()
	pattern := regexp.MustCompile(`(?s)CREATE TABLE IF NOT EXISTS ` + table + ` \(.*?\);`)
	block := pattern.FindString(ddl)
	require.NotEmpty(t, block, "table %s not found in schema", table)
	return block
}
