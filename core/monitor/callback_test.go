package monitor

import (
	"crypto/ed25519"
	"crypto/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Ken1t5cnethEllinguehyh4eton/elderly-monitoring/core/ledger"
	"github.com/Ken1t5cnethEllinguehyh4eton/elderly-monitoring/core/notify"
	"github.com/Ken1t5cnethEllinguehyh4eton/elderly-monitoring/core/oracle"
)

func TestHandleAnomalyResultUnknownToken(t *testing.T) {
	env := newTestEnv(t)

	clear, proof := env.signedList(t, "never-issued", []string{"fall_detected"})
	err := env.svc.HandleAnomalyResult("never-issued", clear, proof)
	assert.ErrorIs(t, err, ErrInvalidRequest)
}

func TestHandleAnomalyResultAppliesFirstCleartextOnly(t *testing.T) {
	env := newTestEnv(t)

	id, err := env.svc.SubmitEncryptedSensorData(handleOf("act"), handleOf("slp"))
	require.NoError(t, err)
	token, err := env.svc.RequestAnomalyDetection("caregiver-1", id)
	require.NoError(t, err)

	// The oracle answers with both decrypted values; only the first
	// one may end up in the outcome.
	clear, proof := env.signedList(t, token, []string{"fall_detected", "ok"})
	require.NoError(t, env.svc.HandleAnomalyResult(token, clear, proof))

	outcome, err := env.svc.GetDecryptedEvent(id)
	require.NoError(t, err)
	assert.Equal(t, "fall_detected", outcome.Summary)
	assert.True(t, outcome.Handled)

	last := env.sink.seen[len(env.sink.seen)-1]
	assert.Equal(t, notify.KindResultReady, last.Kind)
	assert.Equal(t, id, last.RecordID)
}

func TestHandleAnomalyResultSecondDeliveryRejected(t *testing.T) {
	env := newTestEnv(t)

	id, err := env.svc.SubmitEncryptedSensorData(handleOf("act"), handleOf("slp"))
	require.NoError(t, err)
	token, err := env.svc.RequestAnomalyDetection("caregiver-1", id)
	require.NoError(t, err)

	clear, proof := env.signedList(t, token, []string{"fall_detected"})
	require.NoError(t, env.svc.HandleAnomalyResult(token, clear, proof))

	// A replay with a different, validly signed answer still bounces
	// and the first result is retained.
	clear2, proof2 := env.signedList(t, token, []string{"all_clear"})
	err = env.svc.HandleAnomalyResult(token, clear2, proof2)
	assert.ErrorIs(t, err, ErrAlreadyHandled)

	outcome, err := env.svc.GetDecryptedEvent(id)
	require.NoError(t, err)
	assert.Equal(t, "fall_detected", outcome.Summary)
	assert.True(t, outcome.Handled)
}

func TestHandleAnomalyResultBadProof(t *testing.T) {
	env := newTestEnv(t)

	id, err := env.svc.SubmitEncryptedSensorData(handleOf("act"), handleOf("slp"))
	require.NoError(t, err)
	token, err := env.svc.RequestAnomalyDetection("caregiver-1", id)
	require.NoError(t, err)

	clear, err := oracle.EncodeCleartextList([]string{"fall_detected"})
	require.NoError(t, err)
	_, wrongKey, err := ed25519.GenerateKey(rand.Reader)
	require.NoError(t, err)
	badProof := oracle.SignProof(wrongKey, token, clear)

	err = env.svc.HandleAnomalyResult(token, clear, badProof)
	assert.ErrorIs(t, err, ErrInvalidProof)

	// The failure leaves the outcome untouched and the request open,
	// so a later valid delivery still lands.
	outcome, err := env.svc.GetDecryptedEvent(id)
	require.NoError(t, err)
	assert.Equal(t, "", outcome.Summary)
	assert.False(t, outcome.Handled)

	goodClear, goodProof := env.signedList(t, token, []string{"fall_detected"})
	require.NoError(t, env.svc.HandleAnomalyResult(token, goodClear, goodProof))
	outcome, err = env.svc.GetDecryptedEvent(id)
	require.NoError(t, err)
	assert.True(t, outcome.Handled)
}

func TestHandleAnomalyResultProofCheckedBeforeDecode(t *testing.T) {
	env := newTestEnv(t)

	id, err := env.svc.SubmitEncryptedSensorData(handleOf("act"), handleOf("slp"))
	require.NoError(t, err)
	token, err := env.svc.RequestAnomalyDetection("caregiver-1", id)
	require.NoError(t, err)

	// Undecodable payload with a bogus proof fails on the proof, not
	// on decoding.
	garbage := []byte("not-a-json-array")
	err = env.svc.HandleAnomalyResult(token, garbage, []byte("bogus"))
	assert.ErrorIs(t, err, ErrInvalidProof)

	// A validly signed but undecodable payload fails decoding and
	// changes nothing; the request stays open.
	proof := oracle.SignProof(env.oracleKey, token, garbage)
	err = env.svc.HandleAnomalyResult(token, garbage, proof)
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrInvalidProof)

	outcome, err := env.svc.GetDecryptedEvent(id)
	require.NoError(t, err)
	assert.False(t, outcome.Handled)
}

func TestHandleAnomalyResultEmptyList(t *testing.T) {
	env := newTestEnv(t)

	id, err := env.svc.SubmitEncryptedSensorData(handleOf("act"), handleOf("slp"))
	require.NoError(t, err)
	token, err := env.svc.RequestAnomalyDetection("caregiver-1", id)
	require.NoError(t, err)

	clear, proof := env.signedList(t, token, []string{})
	require.NoError(t, env.svc.HandleAnomalyResult(token, clear, proof))

	outcome, err := env.svc.GetDecryptedEvent(id)
	require.NoError(t, err)
	assert.Equal(t, "", outcome.Summary)
	assert.True(t, outcome.Handled)
}

func TestCallbacksResolveOutOfOrder(t *testing.T) {
	env := newTestEnv(t)

	id1, err := env.svc.SubmitEncryptedSensorData(handleOf("act-1"), handleOf("slp-1"))
	require.NoError(t, err)
	id2, err := env.svc.SubmitEncryptedSensorData(handleOf("act-2"), handleOf("slp-2"))
	require.NoError(t, err)

	token1, err := env.svc.RequestAnomalyDetection("caregiver-1", id1)
	require.NoError(t, err)
	token2, err := env.svc.RequestAnomalyDetection("caregiver-1", id2)
	require.NoError(t, err)

	// The second request's answer arrives first.
	clear2, proof2 := env.signedList(t, token2, []string{"walk_ok"})
	require.NoError(t, env.svc.HandleAnomalyResult(token2, clear2, proof2))
	clear1, proof1 := env.signedList(t, token1, []string{"fall_detected"})
	require.NoError(t, env.svc.HandleAnomalyResult(token1, clear1, proof1))

	o1, err := env.svc.GetDecryptedEvent(id1)
	require.NoError(t, err)
	o2, err := env.svc.GetDecryptedEvent(id2)
	require.NoError(t, err)
	assert.Equal(t, "fall_detected", o1.Summary)
	assert.Equal(t, "walk_ok", o2.Summary)
}

func TestAlertCallbackIsRepeatable(t *testing.T) {
	env := newTestEnv(t)

	id, err := env.svc.SubmitEncryptedAlert(handleOf("alert"))
	require.NoError(t, err)
	token, err := env.svc.RequestAlertDecryption("caregiver-1", id)
	require.NoError(t, err)

	clear := oracle.EncodeCleartext("wandering detected at 03:12")
	proof := oracle.SignProof(env.oracleKey, token, clear)

	// No idempotence guard on this path: the same valid delivery
	// lands twice and emits twice.
	require.NoError(t, env.svc.HandleAlertCleartext(token, clear, proof))
	require.NoError(t, env.svc.HandleAlertCleartext(token, clear, proof))

	feed, err := env.svc.FeedSince(0, 0)
	require.NoError(t, err)
	var decrypted int
	for _, n := range feed {
		if n.Kind == notify.KindAlertDecrypted {
			decrypted++
			assert.Equal(t, id, n.AlertID)
		}
	}
	assert.Equal(t, 2, decrypted)
}

func TestAlertCallbackBadProof(t *testing.T) {
	env := newTestEnv(t)

	id, err := env.svc.SubmitEncryptedAlert(handleOf("alert"))
	require.NoError(t, err)
	token, err := env.svc.RequestAlertDecryption("caregiver-1", id)
	require.NoError(t, err)

	clear := oracle.EncodeCleartext("text")
	err = env.svc.HandleAlertCleartext(token, clear, []byte("bogus"))
	assert.ErrorIs(t, err, ErrInvalidProof)

	err = env.svc.HandleAlertCleartext("unknown-token", clear, []byte("bogus"))
	assert.ErrorIs(t, err, ErrInvalidRequest)
}

func TestGetDecryptedEventUnknownId(t *testing.T) {
	env := newTestEnv(t)

	outcome, err := env.svc.GetDecryptedEvent(0)
	require.NoError(t, err)
	assert.Equal(t, "", outcome.Summary)
	assert.False(t, outcome.Handled)

	outcome, err = env.svc.GetDecryptedEvent(42)
	require.NoError(t, err)
	assert.False(t, outcome.Handled)
}

func TestPendingRequestsCompletion(t *testing.T) {
	env := newTestEnv(t)

	recID, err := env.svc.SubmitEncryptedSensorData(handleOf("act"), handleOf("slp"))
	require.NoError(t, err)
	alertID, err := env.svc.SubmitEncryptedAlert(handleOf("alert"))
	require.NoError(t, err)

	recToken, err := env.svc.RequestAnomalyDetection("caregiver-1", recID)
	require.NoError(t, err)
	alertToken, err := env.svc.RequestAlertDecryption("caregiver-1", alertID)
	require.NoError(t, err)

	reqs, err := env.svc.PendingRequests()
	require.NoError(t, err)
	require.Len(t, reqs, 2)
	for _, r := range reqs {
		assert.False(t, r.Completed)
	}

	clear, proof := env.signedList(t, recToken, []string{"ok"})
	require.NoError(t, env.svc.HandleAnomalyResult(recToken, clear, proof))
	alertClear := oracle.EncodeCleartext("text")
	require.NoError(t, env.svc.HandleAlertCleartext(alertToken, alertClear, oracle.SignProof(env.oracleKey, alertToken, alertClear)))

	reqs, err = env.svc.PendingRequests()
	require.NoError(t, err)
	require.Len(t, reqs, 2)
	for _, r := range reqs {
		switch r.Kind {
		case ledger.RequestAnomaly:
			// The correlation survives completion; it is only marked done.
			assert.True(t, r.Completed)
			assert.Equal(t, recID, r.RecordID)
		case ledger.RequestAlert:
			// Alert requests have no completion state at all.
			assert.False(t, r.Completed)
			assert.Equal(t, alertID, r.AlertID)
		}
	}
}

func TestFeedOrderingAcrossPaths(t *testing.T) {
	env := newTestEnv(t)

	recID, err := env.svc.SubmitEncryptedSensorData(handleOf("act"), handleOf("slp"))
	require.NoError(t, err)
	_, err = env.svc.SubmitEncryptedAlert(handleOf("alert"))
	require.NoError(t, err)
	token, err := env.svc.RequestAnomalyDetection("caregiver-1", recID)
	require.NoError(t, err)
	clear, proof := env.signedList(t, token, []string{"ok"})
	require.NoError(t, env.svc.HandleAnomalyResult(token, clear, proof))

	feed, err := env.svc.FeedSince(0, 0)
	require.NoError(t, err)
	require.Len(t, feed, 4)
	kinds := []notify.Kind{
		notify.KindRecordSubmitted,
		notify.KindAlertSubmitted,
		notify.KindDecryptionRequested,
		notify.KindResultReady,
	}
	for i, n := range feed {
		assert.Equal(t, uint64(i+1), n.Seq)
		assert.Equal(t, kinds[i], n.Kind)
	}

	// Pagination.
	tail, err := env.svc.FeedSince(2, 1)
	require.NoError(t, err)
	require.Len(t, tail, 1)
	assert.Equal(t, uint64(3), tail[0].Seq)
}
