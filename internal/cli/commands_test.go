package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/reqkey/internal/predicate"
	"github.com/roach88/reqkey/internal/request"
	"github.com/roach88/reqkey/internal/store"
)

func TestKindsText(t *testing.T) {
	out, err := runRoot(t, "kinds")
	require.NoError(t, err)

	assert.Contains(t, out, "KIND")
	assert.Regexp(t, `AverageAll\s+average\s+field,hints\s+field`, out)
	assert.Regexp(t, `CountAll\s+count\s+hints\s+-`, out)
}

func TestKindsJSON(t *testing.T) {
	out, err := runRoot(t, "kinds", "--format", "json")
	require.NoError(t, err)

	var resp struct {
		Status string     `json:"status"`
		Data   []KindInfo `json:"data"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	assert.Equal(t, "ok", resp.Status)

	byKind := map[string]KindInfo{}
	for _, k := range resp.Data {
		byKind[k.Kind] = k
	}
	require.Contains(t, byKind, "Query")
	assert.Equal(t, "fields,where,orderBy,limit,hints", byKind["Query"].Accepts)
	assert.Empty(t, byKind["Query"].Requires)
}

func TestHashIsOrderIndependent(t *testing.T) {
	a := writeRequestFile(t, "target: Customer\nkind: Count\nwhere: e.Age > 18 && e.Name == \"ann\"\n")
	b := writeRequestFile(t, "target: Customer\nkind: count\nwhere: e.Name == \"ann\" && e.Age > 18\n")

	outA, err := runRoot(t, "hash", "-f", a)
	require.NoError(t, err)
	outB, err := runRoot(t, "hash", "-f", b)
	require.NoError(t, err)
	assert.Equal(t, outA, outB)

	want, err := request.New(request.KindCount, "Customer", request.WithWhere(predicate.Must(predicate.And(
		predicate.Must(predicate.New("Age", predicate.GreaterThan, 18)),
		predicate.Must(predicate.New("Name", predicate.Equal, "ann")),
	))))
	require.NoError(t, err)
	assert.Equal(t, fmt.Sprintf("%016x\n", want.Hash()), outA)
}

func TestHashReportsWarnings(t *testing.T) {
	path := writeRequestFile(t, "target: Customer\nkind: Exists\nwhere: e.Name == null\n")

	out, err := runRoot(t, "hash", "-f", path)
	require.NoError(t, err)
	assert.Contains(t, out, "warning: Field 'Name' checked with IS NULL")

	out, err = runRoot(t, "hash", "-f", path, "--format", "json")
	require.NoError(t, err)
	var resp struct {
		Data HashResult `json:"data"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	assert.False(t, resp.Data.Portable)
	assert.Len(t, resp.Data.Hash, 16)
	assert.Equal(t, "Exists(Customer) where=(Name IS NULL)", resp.Data.Request)
}

func TestHashInvalidRequest(t *testing.T) {
	path := writeRequestFile(t, "target: Customer\nkind: CountAll\nlimit: 3\n")

	out, err := runRoot(t, "hash", "-f", path)
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
	assert.Contains(t, out, "Error [INVALID_ARGUMENT]")
}

func TestHashMissingFile(t *testing.T) {
	out, err := runRoot(t, "hash", "-f", filepath.Join(t.TempDir(), "nope.yaml"))
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.Contains(t, out, "Error [E005]")
}

const renderFile = `target: Customer
kind: Query
fields: [Id, Name]
where: e.Age >= 21 || strings.HasPrefix(e.Name, "a")
order_by: [Name, Id DESC]
limit: 5
`

func TestRenderPostgres(t *testing.T) {
	out, err := runRoot(t, "render", "-f", writeRequestFile(t, renderFile), "--dialect", "postgres")
	require.NoError(t, err)
	assert.Equal(t,
		`SELECT "Id", "Name" FROM "Customer" WHERE ("Age" >= $1 OR "Name" LIKE $2) ORDER BY "Name" ASC, "Id" DESC LIMIT 5`+"\n"+
			"-- args: [21 a%]\n",
		out)
}

func TestRenderDialectFromEnvironment(t *testing.T) {
	t.Setenv("REQKEY_DIALECT", "sqlserver")

	out, err := runRoot(t, "render", "-f", writeRequestFile(t, renderFile), "--format", "json")
	require.NoError(t, err)

	var resp struct {
		Data RenderResult `json:"data"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	assert.Equal(t, "sqlserver", resp.Data.Dialect)
	assert.True(t, strings.HasPrefix(resp.Data.SQL, "SELECT TOP (5) [Id], [Name] FROM [Customer]"), resp.Data.SQL)
	assert.Equal(t, []any{float64(21), "a%"}, resp.Data.Args)
}

func TestRenderRejectsHints(t *testing.T) {
	path := writeRequestFile(t, "target: Customer\nkind: CountAll\nhints: WITH (NOLOCK)\n")

	out, err := runRoot(t, "render", "-f", path)
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
	assert.Contains(t, out, "UNSUPPORTED_HINTS")

	out, err = runRoot(t, "render", "-f", path, "--dialect", "sqlserver")
	require.NoError(t, err)
	assert.Equal(t, "SELECT COUNT(*) AS [CountValue] FROM [Customer] WITH (NOLOCK)\n", out)
}

// seedDatabase creates a SQLite file with three customers.
func seedDatabase(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "customers.db")
	s, err := store.Open(context.Background(), "sqlite", path)
	require.NoError(t, err)
	defer s.Close()

	s.DB().MustExec(`CREATE TABLE Customer (Id INTEGER PRIMARY KEY, Name TEXT, Age INTEGER NOT NULL)`)
	s.DB().MustExec(`INSERT INTO Customer (Id, Name, Age) VALUES (1, 'ann', 20), (2, 'bob', 30), (3, NULL, 40)`)
	return path
}

func TestExec(t *testing.T) {
	db := seedDatabase(t)

	tests := []struct {
		name string
		body string
		want string
	}{
		{"average", "target: Customer\nkind: AverageAll\nfield: Age\n", "30\n"},
		{"count", "target: Customer\nkind: Count\nwhere: e.Age > 25\n", "2\n"},
		{"exists", "target: Customer\nkind: Exists\nwhere: e.Name == \"bob\"\n", "true\n"},
		{"not exists", "target: Customer\nkind: Exists\nwhere: e.Name == \"zed\"\n", "false\n"},
		{"empty aggregate", "target: Customer\nkind: Min\nfield: Age\nwhere: e.Age > 99\n", "NULL\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := runRoot(t, "exec", "-f", writeRequestFile(t, tt.body), "--db", db)
			require.NoError(t, err)
			assert.Equal(t, tt.want, out)
		})
	}
}

func TestExecQuery(t *testing.T) {
	db := seedDatabase(t)
	path := writeRequestFile(t, "target: Customer\nkind: Query\nfields: [Id, Name]\norder_by: [Id DESC]\nlimit: 2\n")

	out, err := runRoot(t, "exec", "-f", path, "--db", db)
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.Len(t, lines, 4)
	assert.Regexp(t, `^Id\s+Name$`, lines[0])
	assert.Regexp(t, `^3\s+NULL$`, lines[1])
	assert.Regexp(t, `^2\s+bob$`, lines[2])
	assert.Equal(t, "(2 row(s))", lines[3])
}

func TestExecDeleteWithEnvironmentDB(t *testing.T) {
	db := seedDatabase(t)
	t.Setenv("REQKEY_DB", db)

	out, err := runRoot(t, "exec", "-f", writeRequestFile(t, "target: Customer\nkind: Delete\nwhere: e.Age < 35\n"), "--format", "json")
	require.NoError(t, err)

	var resp struct {
		Data ExecResult `json:"data"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	require.NotNil(t, resp.Data.Affected)
	assert.Equal(t, int64(2), *resp.Data.Affected)

	out, err = runRoot(t, "exec", "-f", writeRequestFile(t, "target: Customer\nkind: CountAll\n"))
	require.NoError(t, err)
	assert.Equal(t, "1\n", out)
}

func TestExecMissingDatabase(t *testing.T) {
	path := writeRequestFile(t, "target: Customer\nkind: CountAll\n")

	out, err := runRoot(t, "exec", "-f", path, "--db", filepath.Join(t.TempDir(), "none.db"))
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.Contains(t, out, "database not found")

	out, err = runRoot(t, "exec", "-f", path)
	require.Error(t, err)
	assert.Contains(t, out, "no database given")
}

func TestExecUnknownTable(t *testing.T) {
	db := seedDatabase(t)
	path := writeRequestFile(t, "target: Orders\nkind: CountAll\n")

	out, err := runRoot(t, "exec", "-f", path, "--db", db)
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.Contains(t, out, "Error [E008]")
}

func TestVerboseLogsToStderr(t *testing.T) {
	out, errOut := &bytes.Buffer{}, &bytes.Buffer{}
	cmd := NewRootCommand()
	cmd.SetOut(out)
	cmd.SetErr(errOut)
	cmd.SetArgs([]string{"hash", "-v", "-f", writeRequestFile(t, "target: Customer\nkind: CountAll\n")})

	require.NoError(t, cmd.Execute())
	assert.Contains(t, errOut.String(), "Built CountAll(Customer)")
	assert.NotContains(t, out.String(), "Built")
}
