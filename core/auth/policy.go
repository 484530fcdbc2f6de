package auth

import (
	"encoding/json"
	"fmt"
	"io/ioutil"
	"sync"
)

// RequestPolicy decides whether a caller may ask the oracle to decrypt
// stored handles. Only the two request entry points consult it; intake
// and oracle callbacks are never gated. Deployments inject the policy,
// the node ships no built-in allow-all.
type RequestPolicy interface {
	Authorize(caller string) error
}

// PolicyFunc adapts a function to RequestPolicy.
type PolicyFunc func(caller string) error

func (f PolicyFunc) Authorize(caller string) error { return f(caller) }

type caregiverEntry struct {
	Authorized bool   `json:"authorized"`
	Name       string `json:"name"`
}

// AllowlistPolicy authorizes callers listed in a JSON allowlist file
// (caregivers.json). The file can be edited and reloaded while the
// node is serving.
type AllowlistPolicy struct {
	path string

	lock    sync.RWMutex
	allowed map[string]bool
}

func NewAllowlistPolicy(path string) (*AllowlistPolicy, error) {
	p := &AllowlistPolicy{path: path, allowed: make(map[string]bool)}
	if err := p.Reload(); err != nil {
		return nil, err
	}
	return p, nil
}

// Reload re-reads the allowlist file.
func (p *AllowlistPolicy) Reload() error {
	data, err := ioutil.ReadFile(p.path)
	if err != nil {
		return err
	}
	var entries map[string]caregiverEntry
	if err := json.Unmarshal(data, &entries); err != nil {
		return err
	}
	allowed := make(map[string]bool, len(entries))
	for caller, e := range entries {
		allowed[caller] = e.Authorized
	}
	p.lock.Lock()
	defer p.lock.Unlock()
	p.allowed = allowed
	return nil
}

func (p *AllowlistPolicy) Authorize(caller string) error {
	p.lock.RLock()
	defer p.lock.RUnlock()
	if !p.allowed[caller] {
		return fmt.Errorf("caller not in allowlist: %s", caller)
	}
	return nil
}
