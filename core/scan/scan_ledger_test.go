package scan

import (
	"encoding/base64"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/Ken1t5cnethEllinguehyh4eton/elderly-monitoring/core/ledger"
	"github.com/Ken1t5cnethEllinguehyh4eton/elderly-monitoring/core/storage"
	"github.com/Ken1t5cnethEllinguehyh4eton/elderly-monitoring/types/ids"
)

func init() {
	key := make([]byte, 32)
	for i := range key {
		key[i] = byte(i)
	}
	os.Setenv("MONITOR_DEK", base64.StdEncoding.EncodeToString(key))
}

func newTestState(t *testing.T) *ledger.State {
	t.Helper()
	store, err := storage.NewStorage(filepath.Join(t.TempDir(), "scan_db"))
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return ledger.NewState(store)
}

func TestScanCleanLedger(t *testing.T) {
	state := newTestState(t)
	now := time.Date(2026, 4, 2, 8, 0, 0, 0, time.UTC)

	for i := 0; i < 3; i++ {
		_, _, err := state.AppendRecord(ids.NewHandle([]byte{byte(i)}), ids.NewHandle([]byte{byte(i), 1}), now)
		require.NoError(t, err)
	}
	_, _, err := state.AppendAlert(ids.NewHandle([]byte("alert")), now)
	require.NoError(t, err)

	_, err = state.RegisterAnomalyRequest("req-1", 1, now)
	require.NoError(t, err)
	_, err = state.RegisterAnomalyRequest("req-2", 2, now)
	require.NoError(t, err)
	_, err = state.RegisterAlertRequest("req-3", 1, now)
	require.NoError(t, err)
	_, err = state.CompleteOutcome(1, "fall_detected", now)
	require.NoError(t, err)

	report, err := ScanLedger(state)
	require.NoError(t, err)
	require.True(t, report.Clean())
	require.Equal(t, uint64(3), report.Records)
	require.Equal(t, uint64(1), report.Alerts)
	require.Equal(t, 1, report.Completed)
	require.Equal(t, 1, report.OpenAnomaly)
	require.Equal(t, 1, report.OpenAlert)
	require.Equal(t, uint64(8), report.FeedLength)
}

func TestScanEmptyLedger(t *testing.T) {
	state := newTestState(t)

	report, err := ScanLedger(state)
	require.NoError(t, err)
	require.True(t, report.Clean())
	require.Zero(t, report.Records)
	require.Zero(t, report.Alerts)
	require.Zero(t, report.FeedLength)
}
