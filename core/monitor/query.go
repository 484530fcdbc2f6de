package monitor

import (
	"github.com/Ken1t5cnethEllinguehyh4eton/elderly-monitoring/core/ledger"
	"github.com/Ken1t5cnethEllinguehyh4eton/elderly-monitoring/core/notify"
	"github.com/Ken1t5cnethEllinguehyh4eton/elderly-monitoring/core/observation"
	"github.com/Ken1t5cnethEllinguehyh4eton/elderly-monitoring/types/ids"
)

// GetDecryptedEvent returns the outcome for a record. Ids that were
// never assigned (including 0) read as the zero outcome {"", false}
// with no error; only storage failures are errors.
func (s *Service) GetDecryptedEvent(id ids.RecordID) (observation.Outcome, error) {
	s.lock.Lock()
	defer s.lock.Unlock()

	outcome, _, err := s.state.GetOutcome(id)
	if err != nil {
		return observation.Outcome{}, err
	}
	return outcome, nil
}

// FeedSince returns up to limit notifications with Seq > after.
func (s *Service) FeedSince(after uint64, limit int) ([]notify.Notification, error) {
	s.lock.Lock()
	defer s.lock.Unlock()

	return s.state.FeedSince(after, limit)
}

// PendingRequests lists every registered correlation with its
// completion state, for scans and the dev inspection endpoint.
func (s *Service) PendingRequests() ([]ledger.Request, error) {
	s.lock.Lock()
	defer s.lock.Unlock()

	return s.state.ListRequests()
}

// Counts returns the highest assigned record id, alert id and feed
// sequence number, in that order.
func (s *Service) Counts() (records, alerts, feed uint64, err error) {
	s.lock.Lock()
	defer s.lock.Unlock()

	if records, err = s.state.RecordCount(); err != nil {
		return 0, 0, 0, err
	}
	if alerts, err = s.state.AlertCount(); err != nil {
		return 0, 0, 0, err
	}
	if feed, err = s.state.FeedLength(); err != nil {
		return 0, 0, 0, err
	}
	return records, alerts, feed, nil
}
