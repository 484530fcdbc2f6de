package monitor

import (
	"crypto/ed25519"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Ken1t5cnethEllinguehyh4eton/elderly-monitoring/core/auth"
	"github.com/Ken1t5cnethEllinguehyh4eton/elderly-monitoring/core/ledger"
	"github.com/Ken1t5cnethEllinguehyh4eton/elderly-monitoring/core/notify"
	"github.com/Ken1t5cnethEllinguehyh4eton/elderly-monitoring/core/oracle"
	"github.com/Ken1t5cnethEllinguehyh4eton/elderly-monitoring/core/storage"
	"github.com/Ken1t5cnethEllinguehyh4eton/elderly-monitoring/types/ids"
)

func init() {
	// Outcomes are sealed with the node DEK; tests need one set.
	key := make([]byte, 32)
	for i := range key {
		key[i] = byte(i)
	}
	os.Setenv("MONITOR_DEK", base64.StdEncoding.EncodeToString(key))
}

// scriptedGateway mints deterministic tokens and records every dispatch.
type scriptedGateway struct {
	seq       int
	handles   [][]ids.Handle
	callbacks []string
	failNext  bool
}

func (g *scriptedGateway) BeginDecryption(handles []ids.Handle, callback string) (oracle.Token, error) {
	if g.failNext {
		g.failNext = false
		return "", errors.New("oracle unreachable")
	}
	g.seq++
	g.handles = append(g.handles, handles)
	g.callbacks = append(g.callbacks, callback)
	return oracle.Token(fmt.Sprintf("req-%d", g.seq)), nil
}

// sinkRecorder collects pushed notifications.
type sinkRecorder struct {
	seen []notify.Notification
}

func (r *sinkRecorder) Notify(n notify.Notification) {
	r.seen = append(r.seen, n)
}

type testEnv struct {
	svc       *Service
	state     *ledger.State
	gateway   *scriptedGateway
	sink      *sinkRecorder
	oracleKey ed25519.PrivateKey
	denied    map[string]bool
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	store, err := storage.NewStorage(filepath.Join(t.TempDir(), "db"))
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })

	pub, priv, err := ed25519.GenerateKey(rand.Reader)
	require.NoError(t, err)

	env := &testEnv{
		state:     ledger.NewState(store),
		gateway:   &scriptedGateway{},
		sink:      &sinkRecorder{},
		oracleKey: priv,
		denied:    map[string]bool{},
	}
	policy := auth.PolicyFunc(func(caller string) error {
		if env.denied[caller] {
			return errors.New("denied by test policy")
		}
		return nil
	})
	svc, err := NewService(Config{
		State:    env.state,
		Gateway:  env.gateway,
		Verifier: &oracle.Ed25519Verifier{PublicKey: pub},
		Policy:   policy,
		Sinks:    []notify.Notifier{env.sink},
	})
	require.NoError(t, err)
	svc.now = func() time.Time { return time.Date(2026, 3, 14, 9, 30, 0, 0, time.UTC) }
	env.svc = svc
	return env
}

func (e *testEnv) signedList(t *testing.T, token oracle.Token, values []string) ([]byte, []byte) {
	t.Helper()
	clear, err := oracle.EncodeCleartextList(values)
	require.NoError(t, err)
	return clear, oracle.SignProof(e.oracleKey, token, clear)
}

func handleOf(s string) ids.Handle {
	return ids.NewHandle([]byte(s))
}

func TestSubmitAssignsDenseIds(t *testing.T) {
	env := newTestEnv(t)

	for i := 1; i <= 3; i++ {
		id, err := env.svc.SubmitEncryptedSensorData(handleOf(fmt.Sprintf("act-%d", i)), handleOf(fmt.Sprintf("slp-%d", i)))
		require.NoError(t, err)
		assert.Equal(t, ids.RecordID(i), id)
	}

	// Every record starts with the zero outcome.
	for i := 1; i <= 3; i++ {
		outcome, err := env.svc.GetDecryptedEvent(ids.RecordID(i))
		require.NoError(t, err)
		assert.Equal(t, "", outcome.Summary)
		assert.False(t, outcome.Handled)
	}

	// Alerts count in their own namespace, starting at 1 again.
	alertID, err := env.svc.SubmitEncryptedAlert(handleOf("alert-1"))
	require.NoError(t, err)
	assert.Equal(t, ids.AlertID(1), alertID)

	records, alerts, feed, err := env.svc.Counts()
	require.NoError(t, err)
	assert.Equal(t, uint64(3), records)
	assert.Equal(t, uint64(1), alerts)
	assert.Equal(t, uint64(4), feed)
}

func TestSubmitEmitsNotifications(t *testing.T) {
	env := newTestEnv(t)

	_, err := env.svc.SubmitEncryptedSensorData(handleOf("act"), handleOf("slp"))
	require.NoError(t, err)
	_, err = env.svc.SubmitEncryptedAlert(handleOf("alert"))
	require.NoError(t, err)

	require.Len(t, env.sink.seen, 2)
	assert.Equal(t, notify.KindRecordSubmitted, env.sink.seen[0].Kind)
	assert.Equal(t, ids.RecordID(1), env.sink.seen[0].RecordID)
	assert.Equal(t, uint64(1), env.sink.seen[0].Seq)
	assert.Equal(t, notify.KindAlertSubmitted, env.sink.seen[1].Kind)
	assert.Equal(t, ids.AlertID(1), env.sink.seen[1].AlertID)
	assert.Equal(t, uint64(2), env.sink.seen[1].Seq)
	assert.False(t, env.sink.seen[0].At.IsZero())
}

func TestRequestAnomalyDetectionUnknownRecord(t *testing.T) {
	env := newTestEnv(t)

	_, err := env.svc.RequestAnomalyDetection("caregiver-1", 0)
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = env.svc.RequestAnomalyDetection("caregiver-1", 99)
	assert.ErrorIs(t, err, ErrNotFound)

	// Nothing was dispatched to the oracle.
	assert.Equal(t, 0, env.gateway.seq)
}

func TestRequestAnomalyDetectionUnauthorized(t *testing.T) {
	env := newTestEnv(t)
	env.denied["intruder"] = true

	id, err := env.svc.SubmitEncryptedSensorData(handleOf("act"), handleOf("slp"))
	require.NoError(t, err)

	_, err = env.svc.RequestAnomalyDetection("intruder", id)
	assert.ErrorIs(t, err, ErrUnauthorized)
	assert.Equal(t, 0, env.gateway.seq)
}

func TestRequestAnomalyDetectionDispatchesOrderedHandles(t *testing.T) {
	env := newTestEnv(t)

	activity := handleOf("act")
	sleep := handleOf("slp")
	id, err := env.svc.SubmitEncryptedSensorData(activity, sleep)
	require.NoError(t, err)

	token, err := env.svc.RequestAnomalyDetection("caregiver-1", id)
	require.NoError(t, err)
	assert.Equal(t, oracle.Token("req-1"), token)

	require.Len(t, env.gateway.handles, 1)
	assert.Equal(t, []ids.Handle{activity, sleep}, env.gateway.handles[0])
	assert.Equal(t, oracle.CallbackAnomalyResult, env.gateway.callbacks[0])

	last := env.sink.seen[len(env.sink.seen)-1]
	assert.Equal(t, notify.KindDecryptionRequested, last.Kind)
	assert.Equal(t, id, last.RecordID)
}

func TestRequestAlertDecryptionDispatchesPayloadHandle(t *testing.T) {
	env := newTestEnv(t)

	payload := handleOf("alert-payload")
	id, err := env.svc.SubmitEncryptedAlert(payload)
	require.NoError(t, err)

	_, err = env.svc.RequestAlertDecryption("caregiver-1", 7)
	assert.ErrorIs(t, err, ErrNotFound)

	token, err := env.svc.RequestAlertDecryption("caregiver-1", id)
	require.NoError(t, err)
	assert.NotEmpty(t, token)

	require.Len(t, env.gateway.handles, 1)
	assert.Equal(t, []ids.Handle{payload}, env.gateway.handles[0])
	assert.Equal(t, oracle.CallbackAlertCleartext, env.gateway.callbacks[0])

	last := env.sink.seen[len(env.sink.seen)-1]
	assert.Equal(t, notify.KindAlertDecryptionRequested, last.Kind)
	assert.Equal(t, id, last.AlertID)
}

func TestRequestDispatchFailureLeavesNoCorrelation(t *testing.T) {
	env := newTestEnv(t)

	id, err := env.svc.SubmitEncryptedSensorData(handleOf("act"), handleOf("slp"))
	require.NoError(t, err)

	env.gateway.failNext = true
	_, err = env.svc.RequestAnomalyDetection("caregiver-1", id)
	require.Error(t, err)

	reqs, err := env.svc.PendingRequests()
	require.NoError(t, err)
	assert.Empty(t, reqs)

	// The request can simply be retried.
	_, err = env.svc.RequestAnomalyDetection("caregiver-1", id)
	assert.NoError(t, err)
}
