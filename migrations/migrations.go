// Package migrations embeds the MySQL schema.
package migrations

import (
	"context"
	"database/sql"
	"embed"
	"fmt"
	"sort"
	"strings"
)

//go:embed *.sql
var files embed.FS

// Statements returns the statements of every embedded file, in file name
// order.  Comment lines are dropped; statements are split on ";" at end of
// line.
func Statements() ([]string, error) {
	entries, err := files.ReadDir(".")
	if err != nil {
		return nil, err
	}
	names := make([]string, 0, len(entries))
	for _, e := range entries {
		names = append(names, e.Name())
	}
	sort.Strings(names)

	var out []string
	for _, name := range names {
		raw, err := files.ReadFile(name)
		if err != nil {
			return nil, err
		}
		var b strings.Builder
		for _, line := range strings.Split(string(raw), "\n") {
			trimmed := strings.TrimSpace(line)
			if trimmed == "" || strings.HasPrefix(trimmed, "--") {
				continue
			}
			b.WriteString(line)
			b.WriteByte('\n')
			if strings.HasSuffix(trimmed, ";") {
				out = append(out, strings.TrimSuffix(strings.TrimSpace(b.String()), ";"))
				b.Reset()
			}
		}
		if rest := strings.TrimSpace(b.String()); rest != "" {
			out = append(out, rest)
		}
	}
	return out, nil
}

// Apply runs every statement.  The schema uses IF NOT EXISTS, so applying
// it twice is harmless.
func Apply(ctx context.Context, db *sql.DB) error {
	stmts, err := Statements()
	if err != nil {
		return err
	}
	for i, s := range stmts {
		if _, err := db.ExecContext(ctx, s); err != nil {
			return fmt.Errorf("statement %d: %w", i+1, err)
		}
	}
	return nil
}
