package cli

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type evalResponse struct {
	Status string     `json:"status"`
	Data   EvalResult `json:"data"`
	Error  *struct {
		Code    string         `json:"code"`
		Message string         `json:"message"`
		Details map[string]any `json:"details"`
	} `json:"error"`
}

func runEvalCmd(t *testing.T, format string, args ...string) (string, error) {
	t.Helper()
	buf := &bytes.Buffer{}
	cmd := NewEvalCommand(&RootOptions{Format: format})
	cmd.SetOut(buf)
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs(append([]string{schemaDir}, args...))
	err := cmd.Execute()
	return buf.String(), err
}

func evalJSON(t *testing.T, args ...string) (evalResponse, error) {
	t.Helper()
	out, err := runEvalCmd(t, "json", args...)
	var resp evalResponse
	require.NoError(t, json.Unmarshal([]byte(out), &resp), out)
	return resp, err
}

func record(t *testing.T, resp evalResponse) map[string]any {
	t.Helper()
	var rec map[string]any
	require.NoError(t, json.Unmarshal(resp.Data.Record, &rec))
	return rec
}

// seedUser creates a User in db and returns its id.
func seedUser(t *testing.T, db string) string {
	t.Helper()
	resp, err := evalJSON(t, "--db", db, "--model", "User",
		"--input", `{"email": "ada@example.com", "name": "Ada", "age": 36}`)
	require.NoError(t, err)
	require.NotEmpty(t, resp.Data.ID)
	return resp.Data.ID
}

func TestEvalCreate(t *testing.T) {
	resp, err := evalJSON(t,
		"--model", "User",
		"--input", `{"email": " Ada@Example.com ", "name": "Ada", "age": 36}`,
	)
	require.NoError(t, err)
	assert.Equal(t, "ok", resp.Status)
	assert.Equal(t, "User", resp.Data.Model)
	assert.Equal(t, "create", resp.Data.Action)
	assert.NotEmpty(t, resp.Data.ID)

	rec := record(t, resp)
	assert.Equal(t, resp.Data.ID, rec["id"])
	assert.Equal(t, "ada@example.com", rec["email"])
	assert.Equal(t, "member", rec["role"])
	assert.EqualValues(t, 36, rec["age"])
	assert.NotEmpty(t, rec["createdAt"])
}

func TestEvalCreateText(t *testing.T) {
	db := filepath.Join(t.TempDir(), "app.db")
	uid := seedUser(t, db)

	out, err := runEvalCmd(t, "text",
		"--db", db,
		"--identity", "User:"+uid,
		"--model", "Post",
		"--input", `{"title": "Hello, World"}`,
		"--select", "title,slug",
	)
	require.NoError(t, err)
	assert.JSONEq(t, `{"title": "Hello, World", "slug": "hello-world"}`, out)
}

func TestEvalIdentity(t *testing.T) {
	db := filepath.Join(t.TempDir(), "app.db")
	uid := seedUser(t, db)

	resp, err := evalJSON(t, "--db", db, "--identity", "User:"+uid, "--model", "Post",
		"--input", `{"title": "Owned"}`)
	require.NoError(t, err)
	assert.Equal(t, uid, record(t, resp)["author"])

	anon, err := evalJSON(t, "--db", db, "--model", "Post", "--input", `{"title": "Orphan"}`)
	require.Error(t, err)
	require.NotNil(t, anon.Error)
	assert.Equal(t, "VALIDATION_FAILED", anon.Error.Code)
	assert.Equal(t, "Identity is not present.", anon.Error.Message)

	ghost, err := evalJSON(t, "--db", db, "--identity", "User:ghost", "--model", "Post",
		"--input", `{"title": "Haunted"}`)
	require.Error(t, err)
	require.NotNil(t, ghost.Error)
	assert.Equal(t, "NOT_FOUND", ghost.Error.Code)
}

func TestEvalValidationFailed(t *testing.T) {
	resp, err := evalJSON(t,
		"--model", "User",
		"--input", `{"email": "bob@example.com", "age": 17}`,
	)
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))

	assert.Equal(t, "error", resp.Status)
	require.NotNil(t, resp.Error)
	assert.Equal(t, "VALIDATION_FAILED", resp.Error.Code)
	assert.Equal(t, "Value is not greater than or equal to rhs.", resp.Error.Message)
	assert.Equal(t, "User", resp.Error.Details["model"])
	assert.Equal(t, []any{"age"}, resp.Error.Details["path"])
}

func TestEvalKeysUnallowed(t *testing.T) {
	resp, err := evalJSON(t,
		"--model", "Post",
		"--input", `{"title": "Hello", "slug": "mine"}`,
	)
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
	require.NotNil(t, resp.Error)
	assert.Equal(t, "KEYS_UNALLOWED", resp.Error.Code)
	assert.Equal(t, []any{"slug"}, resp.Error.Details["keys"])
}

func TestEvalUnknownModel(t *testing.T) {
	resp, err := evalJSON(t, "--model", "Nope")
	require.Error(t, err)
	require.NotNil(t, resp.Error)
	assert.Equal(t, "NOT_FOUND", resp.Error.Code)
}

func TestEvalRecordLifecycle(t *testing.T) {
	db := filepath.Join(t.TempDir(), "app.db")

	created, err := evalJSON(t, "--db", db, "--model", "User",
		"--input", `{"email": "ada@example.com", "name": "Ada", "age": 36}`)
	require.NoError(t, err)
	id := created.Data.ID
	require.NotEmpty(t, id)

	found, err := evalJSON(t, "--db", db, "--model", "User", "--action", "find", "--id", id, "--select", "id,email")
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"id": id, "email": "ada@example.com"}, record(t, found))

	// unique sees the stored record
	dup, err := evalJSON(t, "--db", db, "--model", "User", "--input", `{"email": "ADA@example.com"}`)
	require.Error(t, err)
	require.NotNil(t, dup.Error)
	assert.Equal(t, "Value is not unique.", dup.Error.Message)

	updated, err := evalJSON(t, "--db", db, "--model", "User", "--action", "update", "--id", id, "--input", `{"age": 40}`)
	require.NoError(t, err)
	assert.EqualValues(t, 40, record(t, updated)["age"])

	deleted, err := evalJSON(t, "--db", db, "--model", "User", "--action", "delete", "--id", id)
	require.NoError(t, err)
	assert.Equal(t, id, deleted.Data.ID)
	assert.Nil(t, deleted.Data.Record)

	missing, err := evalJSON(t, "--db", db, "--model", "User", "--action", "find", "--id", id)
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
	require.NotNil(t, missing.Error)
	assert.Equal(t, "NOT_FOUND", missing.Error.Code)
}

func TestEvalUpsert(t *testing.T) {
	db := filepath.Join(t.TempDir(), "app.db")
	uid := seedUser(t, db)

	existing, err := evalJSON(t, "--db", db, "--model", "User", "--action", "upsert", "--id", uid,
		"--input", `{"name": "Ada L"}`)
	require.NoError(t, err)
	assert.Equal(t, uid, existing.Data.ID)
	rec := record(t, existing)
	assert.Equal(t, "ada@example.com", rec["email"])
	assert.Equal(t, "Ada L", rec["name"])

	fresh, err := evalJSON(t, "--db", db, "--model", "User", "--action", "upsert", "--id", "missing",
		"--input", `{"email": "bob@example.com"}`)
	require.NoError(t, err)
	assert.NotEqual(t, uid, fresh.Data.ID)
	assert.NotEqual(t, "missing", fresh.Data.ID)
	assert.Equal(t, "member", record(t, fresh)["role"])
}

func TestEvalTrustedUpdate(t *testing.T) {
	db := filepath.Join(t.TempDir(), "app.db")
	uid := seedUser(t, db)

	created, err := evalJSON(t, "--db", db, "--identity", "User:"+uid, "--model", "Post", "--input", `{"title": "First"}`)
	require.NoError(t, err)

	updated, err := evalJSON(t, "--db", db, "--model", "Post", "--action", "update", "--id", created.Data.ID,
		"--trusted", "--input", `{"title": "Second Take", "slug": "custom"}`)
	require.NoError(t, err)
	assert.Equal(t, "second-take", record(t, updated)["slug"])
}

func TestEvalInputFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "input.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"title": "From File"}`), 0o644))

	db := filepath.Join(t.TempDir(), "app.db")
	uid := seedUser(t, db)

	resp, err := evalJSON(t, "--db", db, "--identity", "User:"+uid, "--model", "Post", "--input", "@"+path)
	require.NoError(t, err)
	assert.Equal(t, "from-file", record(t, resp)["slug"])
}

func TestEvalCommandErrors(t *testing.T) {
	tests := []struct {
		name string
		args []string
		code string
	}{
		{"unknown action", []string{"--model", "User", "--action", "merge"}, ErrCodeBadInput},
		{"update without id", []string{"--model", "User", "--action", "update"}, ErrCodeBadInput},
		{"missing input file", []string{"--model", "User", "--input", "@/nonexistent/input.json"}, ErrCodeBadInput},
		{"malformed identity", []string{"--model", "User", "--identity", "User"}, ErrCodeBadInput},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp, err := evalJSON(t, tt.args...)
			require.Error(t, err)
			assert.Equal(t, ExitCommandError, GetExitCode(err))
			require.NotNil(t, resp.Error)
			assert.Equal(t, tt.code, resp.Error.Code)
		})
	}
}

func TestEvalMissingSchema(t *testing.T) {
	buf := &bytes.Buffer{}
	cmd := NewEvalCommand(&RootOptions{Format: "text"})
	cmd.SetOut(buf)
	cmd.SetArgs([]string{"/nonexistent/schema", "--model", "User"})

	err := cmd.Execute()
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.Contains(t, buf.String(), "Error [E005]")
}

func TestEvalRequiresModel(t *testing.T) {
	_, err := runEvalCmd(t, "text")
	require.Error(t, err)
	assert.Contains(t, err.Error(), `required flag(s) "model" not set`)
}
