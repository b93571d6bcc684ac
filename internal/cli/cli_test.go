package cli

import (
	"bytes"
	"encoding/csv"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/connerohnesorge/litebind"
)

func run(t *testing.T, args ...string) (stdout, stderr string, err error) {
	t.Helper()
	var out, errOut bytes.Buffer
	cmd := NewRootCommand()
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	cmd.SetArgs(args)
	err = cmd.Execute()
	return out.String(), errOut.String(), err
}

func tempDB(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "test.db")
	_, _, err := run(t, "batch", path, `
		create table users(id integer primary key, name text, score float);
		insert into users(name, score) values ('alice', 9.5);
		insert into users(name, score) values ('bob', null);
	`)
	require.NoError(t, err)
	return path
}

func TestVersion(t *testing.T) {
	out, _, err := run(t, "version")
	require.NoError(t, err)
	assert.Contains(t, out, "litebind "+litebind.Version)
	assert.Contains(t, out, "engine modernc")
}

func TestUnknownEngine(t *testing.T) {
	_, _, err := run(t, "--engine", "oracle", "version")
	assert.ErrorContains(t, err, `unknown engine "oracle"`)
}

func TestExec(t *testing.T) {
	db := tempDB(t)

	out, errOut, err := run(t, "exec", db, "select id, name, score from users where id >= ? order by id", "1")
	require.NoError(t, err)
	assert.Equal(t, "id\tname\tscore\n1\talice\t9.5\n2\tbob\tNULL\n", out)
	assert.Contains(t, errOut, "changes: 0")

	_, errOut, err = run(t, "exec", db, "insert into users(name, score) values (?, ?)", "'42'", "NULL")
	require.NoError(t, err)
	assert.Contains(t, errOut, "changes: 1")

	out, _, err = run(t, "exec", db, "select typeof(name), typeof(score) from users where id = 3")
	require.NoError(t, err)
	assert.Equal(t, "typeof(name)\ttypeof(score)\ntext\tnull\n", out)
}

func TestExecError(t *testing.T) {
	db := tempDB(t)
	_, _, err := run(t, "exec", db, "select * from missing")
	assert.ErrorIs(t, err, litebind.ErrPrepare)
}

func TestBatchFromFile(t *testing.T) {
	db := tempDB(t)
	script := filepath.Join(t.TempDir(), "script.sql")
	require.NoError(t, os.WriteFile(script, []byte("update users set score = ? where score is null; delete from users where id = 1;"), 0o644))

	out, _, err := run(t, "batch", db, "@"+script, "1")
	require.NoError(t, err)
	assert.Equal(t, "changes: 1\n", out)

	out, _, err = run(t, "exec", db, "select name, score from users")
	require.NoError(t, err)
	assert.Equal(t, "name\tscore\nbob\t1\n", out)
}

func TestReadOnly(t *testing.T) {
	db := tempDB(t)
	_, _, err := run(t, "--read-only", "batch", db, "delete from users")
	assert.ErrorIs(t, err, litebind.ErrExecution)
	assert.Contains(t, err.Error(), "readonly")
}

func TestExportCSV(t *testing.T) {
	db := tempDB(t)
	target := filepath.Join(t.TempDir(), "users.csv")

	_, errOut, err := run(t, "export", db, "select name, score from users order by id", "-o", target)
	require.NoError(t, err)
	assert.Contains(t, errOut, "exported 2 rows")

	f, err := os.Open(target)
	require.NoError(t, err)
	defer f.Close()
	records, err := csv.NewReader(f).ReadAll()
	require.NoError(t, err)
	assert.Equal(t, [][]string{{"name", "score"}, {"alice", "9.5"}, {"bob", "NULL"}}, records)
}

func TestExportStdout(t *testing.T) {
	db := tempDB(t)

	_, _, err := run(t, "export", db, "select 1")
	assert.ErrorContains(t, err, "--format is required")

	out, _, err := run(t, "export", db, "select name from users where id = ?", "2", "--format", "json")
	require.NoError(t, err)
	assert.JSONEq(t, `{"name":"bob"}`, out)
}

type scriptReader struct {
	lines   []string
	prompts []string
}

func (r *scriptReader) Readline() (string, error) {
	if len(r.lines) == 0 {
		return "", io.EOF
	}
	line := r.lines[0]
	r.lines = r.lines[1:]
	return line, nil
}

func (r *scriptReader) SetPrompt(prompt string) {
	r.prompts = append(r.prompts, prompt)
}

func TestShell(t *testing.T) {
	conn, err := litebind.Open("")
	require.NoError(t, err)
	defer conn.Close()

	rl := &scriptReader{lines: []string{
		"create table t(a);",
		"",
		"insert into t",
		"  values (1);",
		".changes",
		"select a from t;",
		".fields",
		"select * from missing;",
		".bogus",
		".quit",
		"select 'not reached';",
	}}
	var out, errOut bytes.Buffer
	require.NoError(t, runShell(conn, rl, &out, &errOut))

	assert.Equal(t, "1\na\n1\na\n", out.String())
	assert.Contains(t, errOut.String(), "no such table: missing")
	assert.Contains(t, errOut.String(), `unknown command ".bogus"`)
	assert.Contains(t, rl.prompts, shellContPrompt)
	assert.Len(t, rl.lines, 1)
}

func TestParseParam(t *testing.T) {
	assert.Nil(t, parseParam("NULL"))
	assert.Equal(t, int64(-3), parseParam("-3"))
	assert.Equal(t, 2.5, parseParam("2.5"))
	assert.Equal(t, "12", parseParam("'12'"))
	assert.Equal(t, "hello", parseParam("hello"))
}
