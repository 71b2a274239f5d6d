package statement

import (
	"slices"
	"strings"

	sq "github.com/Masterminds/squirrel"

	"github.com/roach88/reqkey/internal/reqerr"
)

// Dialect describes the SQL flavor a builder renders for.
type Dialect struct {
	Name        string
	Placeholder sq.PlaceholderFormat

	// QuoteOpen and QuoteClose wrap each identifier part.
	QuoteOpen  string
	QuoteClose string

	// Hints are appended to the FROM target when supported.
	SupportsHints bool

	// TopLimit renders limits as SELECT TOP (n) instead of LIMIT n.
	TopLimit bool
}

// Built-in dialects.
var (
	SQLite = Dialect{
		Name:        "sqlite",
		Placeholder: sq.Question,
		QuoteOpen:   `"`,
		QuoteClose:  `"`,
	}
	Postgres = Dialect{
		Name:        "postgres",
		Placeholder: sq.Dollar,
		QuoteOpen:   `"`,
		QuoteClose:  `"`,
	}
	SQLServer = Dialect{
		Name:          "sqlserver",
		Placeholder:   sq.AtP,
		QuoteOpen:     "[",
		QuoteClose:    "]",
		SupportsHints: true,
		TopLimit:      true,
	}
)

var dialects = map[string]Dialect{
	SQLite.Name:    SQLite,
	"sqlite3":      SQLite,
	Postgres.Name:  Postgres,
	"postgresql":   Postgres,
	SQLServer.Name: SQLServer,
	"mssql":        SQLServer,
}

// LookupDialect returns the dialect registered under name (case-insensitive).
func LookupDialect(name string) (Dialect, error) {
	d, ok := dialects[strings.ToLower(strings.TrimSpace(name))]
	if !ok {
		return Dialect{}, reqerr.InvalidArgument("unknown dialect %q (known: %s)", name, strings.Join(DialectNames(), ", "))
	}
	return d, nil
}

// DialectNames returns the canonical dialect names.
func DialectNames() []string {
	return []string{SQLite.Name, Postgres.Name, SQLServer.Name}
}

// Quote quotes a possibly schema-qualified identifier: crm.customers
// becomes "crm"."customers". Quote characters inside a part are doubled.
func (d Dialect) Quote(name string) string {
	parts := strings.Split(name, ".")
	for i, p := range parts {
		p = strings.ReplaceAll(p, d.QuoteClose, d.QuoteClose+d.QuoteClose)
		parts[i] = d.QuoteOpen + p + d.QuoteClose
	}
	return strings.Join(parts, ".")
}

// QuoteAll quotes each name.
func (d Dialect) QuoteAll(names []string) []string {
	out := slices.Clone(names)
	for i, n := range out {
		out[i] = d.Quote(n)
	}
	return out
}
