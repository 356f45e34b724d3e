package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/JonMunkholm/edupath-ingest/internal/core"
)

func runCLI(t *testing.T, args ...string) (string, error) {
	t.Helper()
	t.Setenv("DATABASE_URL", "")
	t.Setenv("DB_URL", "")
	t.Setenv("NOTIFY_REDIS_URL", "")
	t.Setenv("LOG_LEVEL", "error")

	var out bytes.Buffer
	cmd := newRootCmd()
	cmd.SetOut(&out)
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestIngest(t *testing.T) {
	path := writeFile(t, "students.csv", "student_id,username\ns1,ada\ns2,alan\n")

	out, err := runCLI(t, "ingest", path, "--entity-type", "User", "--user", "ops")
	require.NoError(t, err)

	var resp core.Response
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	assert.Equal(t, core.StatusCompleted, resp.Status)
	assert.Equal(t, "students.csv", resp.FileName)
	require.NotNil(t, resp.TotalRecords)
	assert.Equal(t, 2, *resp.TotalRecords)
}

func TestIngest_AsyncWaitsForCompletion(t *testing.T) {
	path := writeFile(t, "modules.csv", "module_id,code\nm1,CS101\n")

	out, err := runCLI(t, "ingest", path, "-t", "Module", "--async")
	require.NoError(t, err)

	var run core.Run
	require.NoError(t, json.Unmarshal([]byte(out), &run))
	assert.Equal(t, core.StatusCompleted, run.Status)
}

func TestIngest_FailedRunExitsNonZero(t *testing.T) {
	path := writeFile(t, "notes.txt", "a,b\n1,2\n")

	out, err := runCLI(t, "ingest", path, "--entity-type", "Note")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed")
	assert.Contains(t, out, `"status": "FAILED"`)
}

func TestIngest_RequiresEntityType(t *testing.T) {
	_, err := runCLI(t, "ingest", writeFile(t, "a.csv", "x\n1\n"))
	assert.ErrorContains(t, err, "entity-type")
}

func TestStatus_UnknownRun(t *testing.T) {
	_, err := runCLI(t, "status", "42")
	assert.ErrorIs(t, err, core.ErrRunNotFound)

	_, err = runCLI(t, "status", "abc")
	assert.ErrorContains(t, err, "invalid run id")
}

func TestRuns_Empty(t *testing.T) {
	out, err := runCLI(t, "runs", "--limit", "5")
	require.NoError(t, err)
	assert.JSONEq(t, "[]", out)
}
