// Package testutil holds helpers shared by package tests.
package testutil

import (
	"fmt"
	"testing"

	"github.com/sebdah/goldie/v2"

	"github.com/roach88/reqkey/internal/request"
)

// Golden returns a goldie instance reading testdata/golden/{name}.golden
// relative to the calling package.
//
// To regenerate golden files, run:
//
//	go test ./internal/statement -update
func Golden(t *testing.T) *goldie.Goldie {
	t.Helper()
	return goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)
}

// StatementText is the golden form of a statement: the SQL, a newline,
// then the arguments.
func StatementText(s request.Statement) []byte {
	return fmt.Appendf(nil, "%s\n-- args: %v", s.SQL, s.Args)
}

// AssertStatement compares s against the golden file for name.
func AssertStatement(t *testing.T, name string, s request.Statement) {
	t.Helper()
	Golden(t).Assert(t, name, StatementText(s))
}
