// Package monitor implements the decrypt-request / verified-callback
// protocol over the ledger: encrypted intake, policy-gated oracle
// requests, verified idempotent callbacks and outcome queries.
package monitor

import (
	"errors"
	"sync"
	"time"

	"github.com/Ken1t5cnethEllinguehyh4eton/elderly-monitoring/core/audit"
	"github.com/Ken1t5cnethEllinguehyh4eton/elderly-monitoring/core/auth"
	"github.com/Ken1t5cnethEllinguehyh4eton/elderly-monitoring/core/ledger"
	"github.com/Ken1t5cnethEllinguehyh4eton/elderly-monitoring/core/notify"
	"github.com/Ken1t5cnethEllinguehyh4eton/elderly-monitoring/core/oracle"
)

// Config carries the collaborators a Service needs. State, Gateway,
// Verifier and Policy are required; there is no built-in allow-all
// policy, deployments decide who may request decryption.
type Config struct {
	State    *ledger.State
	Gateway  oracle.Gateway
	Verifier oracle.ProofVerifier
	Policy   auth.RequestPolicy
	Audit    audit.AuditLogger
	Sinks    []notify.Notifier
}

// Service serializes every entry point behind one mutex. Between a
// request returning and its callback arriving, any number of other
// entry points may run; the token carries the correlation across that
// gap. There are no timeouts: an unanswered request stays open.
type Service struct {
	lock sync.Mutex

	state    *ledger.State
	gateway  oracle.Gateway
	verifier oracle.ProofVerifier
	policy   auth.RequestPolicy
	audit    audit.AuditLogger
	sinks    []notify.Notifier

	now func() time.Time
}

func NewService(cfg Config) (*Service, error) {
	if cfg.State == nil {
		return nil, errors.New("monitor: ledger state is required")
	}
	if cfg.Gateway == nil {
		return nil, errors.New("monitor: oracle gateway is required")
	}
	if cfg.Verifier == nil {
		return nil, errors.New("monitor: proof verifier is required")
	}
	if cfg.Policy == nil {
		return nil, errors.New("monitor: request policy is required")
	}
	auditLogger := cfg.Audit
	if auditLogger == nil {
		auditLogger = audit.NewStdoutAuditLogger()
	}
	return &Service{
		state:    cfg.State,
		gateway:  cfg.Gateway,
		verifier: cfg.Verifier,
		policy:   cfg.Policy,
		audit:    auditLogger,
		sinks:    cfg.Sinks,
		now:      time.Now,
	}, nil
}

func (s *Service) emit(n notify.Notification) {
	for _, sink := range s.sinks {
		sink.Notify(n)
	}
}

func (s *Service) auditEvent(eventType, entity, result, reason string, metadata map[string]string) {
	s.audit.LogEvent(audit.AuditEvent{
		Timestamp: s.now(),
		EventType: eventType,
		EntityID:  entity,
		Result:    result,
		Reason:    reason,
		Metadata:  metadata,
	})
}
