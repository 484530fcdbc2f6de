package monitor

import (
	"fmt"

	"github.com/Ken1t5cnethEllinguehyh4eton/elderly-monitoring/core/oracle"
)

// HandleAnomalyResult applies the oracle's answer for an anomaly
// detection request. Steps, strictly in order: resolve the token,
// refuse if the record is already handled, verify the proof, decode,
// commit. The proof check always precedes any use of the cleartexts,
// and every failure leaves the outcome exactly as it was.
func (s *Service) HandleAnomalyResult(token oracle.Token, cleartexts, proof []byte) error {
	s.lock.Lock()
	defer s.lock.Unlock()

	id, found, err := s.state.ResolveAnomalyRequest(token)
	if err != nil {
		return err
	}
	if !found {
		s.auditEvent("AnomalyResult", string(token), "failure", "unknown request token", nil)
		return fmt.Errorf("%w: %s", ErrInvalidRequest, token)
	}

	outcome, found, err := s.state.GetOutcome(id)
	if err != nil {
		return err
	}
	if !found {
		// Every stored record gets its outcome at intake; a correlation
		// pointing at a record without one means corrupt state.
		return fmt.Errorf("missing outcome for record %d", id)
	}
	if outcome.Handled {
		s.auditEvent("AnomalyResult", string(token), "failure", "result already handled", map[string]string{"recordId": fmt.Sprint(id)})
		return fmt.Errorf("%w: record %d", ErrAlreadyHandled, id)
	}

	if !s.verifier.VerifyProof(token, cleartexts, proof) {
		s.auditEvent("ProofVerification", string(token), "failure", "proof did not verify", nil)
		return fmt.Errorf("%w: %s", ErrInvalidProof, token)
	}

	values, err := oracle.DecodeCleartextList(cleartexts)
	if err != nil {
		s.auditEvent("AnomalyResult", string(token), "failure", err.Error(), nil)
		return err
	}
	// The ordered list mirrors the requested handles: activity first,
	// then sleep. Only the first value becomes the summary; the sleep
	// cleartext is discarded.
	summary := ""
	if len(values) > 0 {
		summary = values[0]
	}

	n, err := s.state.CompleteOutcome(id, summary, s.now().UTC())
	if err != nil {
		return err
	}
	s.emit(n)
	s.auditEvent("AnomalyResult", string(token), "success", "outcome applied", map[string]string{"recordId": fmt.Sprint(id)})
	return nil
}

// HandleAlertCleartext applies the oracle's answer for an alert
// decryption request. The proof is verified the same way, but this
// path keeps no completion state: a repeated valid delivery verifies
// and emits again, and the decrypted text itself is never persisted,
// only the alert-decrypted feed entry is.
func (s *Service) HandleAlertCleartext(token oracle.Token, cleartexts, proof []byte) error {
	s.lock.Lock()
	defer s.lock.Unlock()

	id, found, err := s.state.ResolveAlertRequest(token)
	if err != nil {
		return err
	}
	if !found {
		s.auditEvent("AlertCleartext", string(token), "failure", "unknown request token", nil)
		return fmt.Errorf("%w: %s", ErrInvalidRequest, token)
	}

	if !s.verifier.VerifyProof(token, cleartexts, proof) {
		s.auditEvent("ProofVerification", string(token), "failure", "proof did not verify", nil)
		return fmt.Errorf("%w: %s", ErrInvalidProof, token)
	}

	n, err := s.state.AppendAlertDecrypted(id, s.now().UTC())
	if err != nil {
		return err
	}
	s.emit(n)
	s.auditEvent("AlertCleartext", string(token), "success", "alert decrypted", map[string]string{"alertId": fmt.Sprint(id)})
	return nil
}
