package monitor

import (
	"fmt"

	"github.com/Ken1t5cnethEllinguehyh4eton/elderly-monitoring/core/oracle"
	"github.com/Ken1t5cnethEllinguehyh4eton/elderly-monitoring/types/ids"
)

// RequestAnomalyDetection asks the oracle to decrypt a stored record's
// activity and sleep handles, in that order. The policy is consulted
// before anything else. Returns the correlation token; the answer
// arrives later through HandleAnomalyResult and nothing here blocks
// waiting for it.
func (s *Service) RequestAnomalyDetection(caller string, id ids.RecordID) (oracle.Token, error) {
	s.lock.Lock()
	defer s.lock.Unlock()

	if err := s.policy.Authorize(caller); err != nil {
		s.auditEvent("AnomalyRequest", caller, "failure", err.Error(), map[string]string{"recordId": fmt.Sprint(id)})
		return "", fmt.Errorf("%w: %v", ErrUnauthorized, err)
	}
	rec, found, err := s.state.GetRecord(id)
	if err != nil {
		return "", err
	}
	if !found {
		s.auditEvent("AnomalyRequest", caller, "failure", "record not stored", map[string]string{"recordId": fmt.Sprint(id)})
		return "", fmt.Errorf("%w: record %d", ErrNotFound, id)
	}

	token, err := s.gateway.BeginDecryption([]ids.Handle{rec.ActivityHandle, rec.SleepHandle}, oracle.CallbackAnomalyResult)
	if err != nil {
		s.auditEvent("AnomalyRequest", caller, "failure", err.Error(), map[string]string{"recordId": fmt.Sprint(id)})
		return "", fmt.Errorf("begin decryption: %w", err)
	}
	n, err := s.state.RegisterAnomalyRequest(token, id, s.now().UTC())
	if err != nil {
		return "", err
	}
	s.emit(n)
	s.auditEvent("AnomalyRequest", caller, "success", "decryption requested", map[string]string{
		"recordId":  fmt.Sprint(id),
		"requestId": string(token),
	})
	return token, nil
}

// RequestAlertDecryption asks the oracle to decrypt a stored alert's
// payload handle. Same gating as the anomaly path; the correlation
// lands in the alert namespace.
func (s *Service) RequestAlertDecryption(caller string, id ids.AlertID) (oracle.Token, error) {
	s.lock.Lock()
	defer s.lock.Unlock()

	if err := s.policy.Authorize(caller); err != nil {
		s.auditEvent("AlertRequest", caller, "failure", err.Error(), map[string]string{"alertId": fmt.Sprint(id)})
		return "", fmt.Errorf("%w: %v", ErrUnauthorized, err)
	}
	alert, found, err := s.state.GetAlert(id)
	if err != nil {
		return "", err
	}
	if !found {
		s.auditEvent("AlertRequest", caller, "failure", "alert not stored", map[string]string{"alertId": fmt.Sprint(id)})
		return "", fmt.Errorf("%w: alert %d", ErrNotFound, id)
	}

	token, err := s.gateway.BeginDecryption([]ids.Handle{alert.PayloadHandle}, oracle.CallbackAlertCleartext)
	if err != nil {
		s.auditEvent("AlertRequest", caller, "failure", err.Error(), map[string]string{"alertId": fmt.Sprint(id)})
		return "", fmt.Errorf("begin decryption: %w", err)
	}
	n, err := s.state.RegisterAlertRequest(token, id, s.now().UTC())
	if err != nil {
		return "", err
	}
	s.emit(n)
	s.auditEvent("AlertRequest", caller, "success", "alert decryption requested", map[string]string{
		"alertId":   fmt.Sprint(id),
		"requestId": string(token),
	})
	return token, nil
}
