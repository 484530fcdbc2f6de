package ledger

import (
	"bytes"
	"encoding/base64"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Ken1t5cnethEllinguehyh4eton/elderly-monitoring/core/notify"
	"github.com/Ken1t5cnethEllinguehyh4eton/elderly-monitoring/core/storage"
	"github.com/Ken1t5cnethEllinguehyh4eton/elderly-monitoring/types/ids"
)

func init() {
	key := make([]byte, 32)
	for i := range key {
		key[i] = byte(100 - i)
	}
	os.Setenv("MONITOR_DEK", base64.StdEncoding.EncodeToString(key))
}

func newTestState(t *testing.T) *State {
	t.Helper()
	store, err := storage.NewStorage(filepath.Join(t.TempDir(), "db"))
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return NewState(store)
}

func at() time.Time {
	return time.Date(2026, 3, 14, 9, 30, 0, 0, time.UTC)
}

func TestAppendRecordAssignsSequentialIds(t *testing.T) {
	state := newTestState(t)

	r1, n1, err := state.AppendRecord(ids.NewHandle([]byte("a1")), ids.NewHandle([]byte("s1")), at())
	require.NoError(t, err)
	r2, n2, err := state.AppendRecord(ids.NewHandle([]byte("a2")), ids.NewHandle([]byte("s2")), at())
	require.NoError(t, err)

	assert.Equal(t, ids.RecordID(1), r1.ID)
	assert.Equal(t, ids.RecordID(2), r2.ID)
	assert.Equal(t, uint64(1), n1.Seq)
	assert.Equal(t, uint64(2), n2.Seq)

	got, found, err := state.GetRecord(r1.ID)
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, r1.ActivityHandle, got.ActivityHandle)
	assert.Equal(t, r1.SleepHandle, got.SleepHandle)
	assert.True(t, got.CreatedAt.Equal(at()))

	// Outcome row is created in the same batch.
	outcome, found, err := state.GetOutcome(r1.ID)
	require.NoError(t, err)
	assert.True(t, found)
	assert.False(t, outcome.Handled)

	_, found, err = state.GetRecord(0)
	require.NoError(t, err)
	assert.False(t, found)
}

func TestOutcomeSealedAtRest(t *testing.T) {
	state := newTestState(t)

	rec, _, err := state.AppendRecord(ids.NewHandle([]byte("a")), ids.NewHandle([]byte("s")), at())
	require.NoError(t, err)
	_, err = state.CompleteOutcome(rec.ID, "fall_detected", at())
	require.NoError(t, err)

	// The raw stored value must not leak the summary.
	raw, err := state.Store().Get(outcomeKey(rec.ID))
	require.NoError(t, err)
	assert.False(t, bytes.Contains(raw, []byte("fall_detected")))

	outcome, found, err := state.GetOutcome(rec.ID)
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, "fall_detected", outcome.Summary)
	assert.True(t, outcome.Handled)
}

func TestRegisterRequestRejectsTokenReuse(t *testing.T) {
	state := newTestState(t)

	rec, _, err := state.AppendRecord(ids.NewHandle([]byte("a")), ids.NewHandle([]byte("s")), at())
	require.NoError(t, err)

	_, err = state.RegisterAnomalyRequest("tok-1", rec.ID, at())
	require.NoError(t, err)
	_, err = state.RegisterAnomalyRequest("tok-1", rec.ID, at())
	require.Error(t, err)

	// Separate namespaces: the same token string in the alert
	// namespace is a distinct correlation.
	alert, _, err := state.AppendAlert(ids.NewHandle([]byte("p")), at())
	require.NoError(t, err)
	_, err = state.RegisterAlertRequest("tok-1", alert.ID, at())
	require.NoError(t, err)

	recID, found, err := state.ResolveAnomalyRequest("tok-1")
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, rec.ID, recID)

	alertID, found, err := state.ResolveAlertRequest("tok-1")
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, alert.ID, alertID)

	_, found, err = state.ResolveAnomalyRequest("tok-2")
	require.NoError(t, err)
	assert.False(t, found)
}

func TestCorrelationSurvivesCompletion(t *testing.T) {
	state := newTestState(t)

	rec, _, err := state.AppendRecord(ids.NewHandle([]byte("a")), ids.NewHandle([]byte("s")), at())
	require.NoError(t, err)
	_, err = state.RegisterAnomalyRequest("tok-1", rec.ID, at())
	require.NoError(t, err)
	_, err = state.CompleteOutcome(rec.ID, "ok", at())
	require.NoError(t, err)

	// Still resolvable after the outcome is applied.
	id, found, err := state.ResolveAnomalyRequest("tok-1")
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, rec.ID, id)

	reqs, err := state.ListRequests()
	require.NoError(t, err)
	require.Len(t, reqs, 1)
	assert.True(t, reqs[0].Completed)
}

func TestFeedSince(t *testing.T) {
	state := newTestState(t)

	for i := 0; i < 5; i++ {
		_, _, err := state.AppendRecord(ids.NewHandle([]byte{byte(i)}), ids.NewHandle([]byte{byte(i + 100)}), at())
		require.NoError(t, err)
	}

	all, err := state.FeedSince(0, 0)
	require.NoError(t, err)
	require.Len(t, all, 5)
	for i, n := range all {
		assert.Equal(t, uint64(i+1), n.Seq)
		assert.Equal(t, notify.KindRecordSubmitted, n.Kind)
	}

	page, err := state.FeedSince(2, 2)
	require.NoError(t, err)
	require.Len(t, page, 2)
	assert.Equal(t, uint64(3), page[0].Seq)
	assert.Equal(t, uint64(4), page[1].Seq)

	length, err := state.FeedLength()
	require.NoError(t, err)
	assert.Equal(t, uint64(5), length)
}

func TestAppendAlertDecryptedFeedOnly(t *testing.T) {
	state := newTestState(t)

	alert, _, err := state.AppendAlert(ids.NewHandle([]byte("p")), at())
	require.NoError(t, err)

	n, err := state.AppendAlertDecrypted(alert.ID, at())
	require.NoError(t, err)
	assert.Equal(t, notify.KindAlertDecrypted, n.Kind)
	assert.Equal(t, alert.ID, n.AlertID)

	// No outcome row appears for alerts.
	_, found, err := state.GetOutcome(ids.RecordID(alert.ID))
	require.NoError(t, err)
	assert.False(t, found)
}
