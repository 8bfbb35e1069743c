package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/prince156/ChakraCore/internal/store"
)

// seedSessionDB creates a session database with a few log events and
// snapshot generations.
func seedSessionDB(t *testing.T, events, snapshots int) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "session.db")

	st, err := store.Open(path)
	require.NoError(t, err)
	defer st.Close()

	ctx := context.Background()
	for i := 0; i < events; i++ {
		_, err := st.AppendLogEvent(ctx, "call", []byte(`{}`))
		require.NoError(t, err)
	}
	for g := 1; g <= snapshots; g++ {
		require.NoError(t, st.WriteSnapshot(ctx, int64(g), int64(g*2), []byte("snap")))
	}
	return path
}

func TestInspectSummarizesSession(t *testing.T) {
	dbPath := seedSessionDB(t, 5, 2)

	buf := &bytes.Buffer{}
	rootOpts := &RootOptions{Format: "json"}
	cmd := NewInspectCommand(rootOpts)
	cmd.SetOut(buf)
	cmd.SetArgs([]string{dbPath})

	err := cmd.Execute()
	require.NoError(t, err)

	var resp CLIResponse
	require.NoError(t, json.Unmarshal(buf.Bytes(), &resp))
	assert.Equal(t, "ok", resp.Status)

	data, ok := resp.Data.(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, float64(5), data["log_events"])
	assert.Equal(t, float64(5), data["last_log_seq"])

	snaps, ok := data["snapshots"].([]interface{})
	require.True(t, ok)
	assert.Len(t, snaps, 2)
}

func TestInspectEmptySession(t *testing.T) {
	dbPath := seedSessionDB(t, 0, 0)

	buf := &bytes.Buffer{}
	rootOpts := &RootOptions{Format: "text"}
	cmd := NewInspectCommand(rootOpts)
	cmd.SetOut(buf)
	cmd.SetArgs([]string{dbPath})

	err := cmd.Execute()
	require.NoError(t, err)

	out := buf.String()
	assert.Contains(t, out, "Log events: 0")
	assert.Contains(t, out, "Snapshots: 0")
}

func TestInspectMissingDatabase(t *testing.T) {
	buf := &bytes.Buffer{}
	rootOpts := &RootOptions{Format: "text"}
	cmd := NewInspectCommand(rootOpts)
	cmd.SetOut(buf)
	cmd.SetArgs([]string{filepath.Join(t.TempDir(), "nope.db")})

	err := cmd.Execute()
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
}
