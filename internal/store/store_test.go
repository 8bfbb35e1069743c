package store

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/prince156/ChakraCore/internal/session"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "session.db"))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func TestOpen_Idempotent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "session.db")

	s1, err := Open(path)
	require.NoError(t, err)
	require.NoError(t, s1.Close())

	s2, err := Open(path)
	require.NoError(t, err)
	require.NoError(t, s2.Close())
}

func TestAppendLogEvent_AssignsMonotonicSeq(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	seq1, err := s.AppendLogEvent(ctx, "external-call", []byte("a"))
	require.NoError(t, err)
	seq2, err := s.AppendLogEvent(ctx, "date-now", []byte("b"))
	require.NoError(t, err)

	assert.Greater(t, seq2, seq1)
}

func TestReadLogEvents_FromSeq(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	for i, kind := range []string{"k1", "k2", "k3"} {
		_, err := s.AppendLogEvent(ctx, kind, []byte{byte(i)})
		require.NoError(t, err)
	}

	events, err := s.ReadLogEvents(ctx, 2)
	require.NoError(t, err)
	require.Len(t, events, 2)
	assert.Equal(t, "k2", events[0].Kind)
	assert.Equal(t, "k3", events[1].Kind)
	assert.Less(t, events[0].Seq, events[1].Seq)
}

func TestSnapshotRoundTrip(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	payload := []byte("opaque snapshot bytes")
	require.NoError(t, s.WriteSnapshot(ctx, 1, 42, payload))

	got, err := s.ReadSnapshot(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, payload, got)
}

func TestReadSnapshot_MissingGenerationIsNotFound(t *testing.T) {
	s := openTestStore(t)

	_, err := s.ReadSnapshot(context.Background(), 99)
	assert.ErrorIs(t, err, session.ErrNotFound)
}

func TestWriteSnapshot_RewriteReplacesPayload(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.WriteSnapshot(ctx, 1, 10, []byte("first")))
	require.NoError(t, s.WriteSnapshot(ctx, 1, 10, []byte("second")))

	got, err := s.ReadSnapshot(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, []byte("second"), got)

	infos, err := s.ListSnapshots(ctx)
	require.NoError(t, err)
	assert.Len(t, infos, 1)
}

func TestListSnapshots_GenerationOrder(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.WriteSnapshot(ctx, 3, 30, []byte("ccc")))
	require.NoError(t, s.WriteSnapshot(ctx, 1, 10, []byte("a")))
	require.NoError(t, s.WriteSnapshot(ctx, 2, 20, []byte("bb")))

	infos, err := s.ListSnapshots(ctx)
	require.NoError(t, err)
	require.Len(t, infos, 3)

	for i, want := range []int64{1, 2, 3} {
		assert.Equal(t, want, infos[i].Generation)
		assert.Equal(t, want*10, infos[i].LogSeq)
		assert.Equal(t, int64(i+1), infos[i].Size)
		assert.False(t, infos[i].CreatedAt.IsZero())
	}
}

func TestPruneSnapshots_KeepsNewestGenerations(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	for gen := int64(1); gen <= 5; gen++ {
		require.NoError(t, s.WriteSnapshot(ctx, gen, gen*100, []byte("p")))
	}

	deleted, err := s.PruneSnapshots(ctx, 2)
	require.NoError(t, err)
	assert.Equal(t, 3, deleted)

	infos, err := s.ListSnapshots(ctx)
	require.NoError(t, err)
	require.Len(t, infos, 2)
	assert.Equal(t, int64(4), infos[0].Generation)
	assert.Equal(t, int64(5), infos[1].Generation)

	// Nothing left to prune.
	deleted, err = s.PruneSnapshots(ctx, 2)
	require.NoError(t, err)
	assert.Zero(t, deleted)
}

func TestPruneSnapshots_NegativeKeepRejected(t *testing.T) {
	s := openTestStore(t)

	_, err := s.PruneSnapshots(context.Background(), -1)
	assert.Error(t, err)
}

func TestMetaRoundTrip(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.SetMeta(ctx, "mode", "record"))
	require.NoError(t, s.SetMeta(ctx, "mode", "replay"))

	got, err := s.Meta(ctx, "mode")
	require.NoError(t, err)
	assert.Equal(t, "replay", got)

	_, err = s.Meta(ctx, "missing")
	assert.ErrorIs(t, err, session.ErrNotFound)
}
