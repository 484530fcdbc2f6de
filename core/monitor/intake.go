package monitor

import (
	"fmt"

	"github.com/Ken1t5cnethEllinguehyh4eton/elderly-monitoring/types/ids"
)

// SubmitEncryptedSensorData stores one encrypted observation and
// returns its id. Handles are stored exactly as given; the node never
// interprets them. Ids are dense from 1 and strictly increasing even
// under concurrent submission.
func (s *Service) SubmitEncryptedSensorData(activity, sleep ids.Handle) (ids.RecordID, error) {
	s.lock.Lock()
	defer s.lock.Unlock()

	rec, n, err := s.state.AppendRecord(activity, sleep, s.now().UTC())
	if err != nil {
		s.auditEvent("RecordIntake", "", "failure", err.Error(), nil)
		return 0, err
	}
	s.emit(n)
	s.auditEvent("RecordIntake", fmt.Sprintf("record:%d", rec.ID), "success", "encrypted record stored", nil)
	return rec.ID, nil
}

// SubmitEncryptedAlert stores one encrypted alert payload and returns
// its id, counted in the alert namespace.
func (s *Service) SubmitEncryptedAlert(payload ids.Handle) (ids.AlertID, error) {
	s.lock.Lock()
	defer s.lock.Unlock()

	alert, n, err := s.state.AppendAlert(payload, s.now().UTC())
	if err != nil {
		s.auditEvent("AlertIntake", "", "failure", err.Error(), nil)
		return 0, err
	}
	s.emit(n)
	s.auditEvent("AlertIntake", fmt.Sprintf("alert:%d", alert.ID), "success", "encrypted alert stored", nil)
	return alert.ID, nil
}
