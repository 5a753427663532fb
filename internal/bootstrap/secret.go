// SPDX-License-Identifier: MPL-2.0

package bootstrap

import (
	"os"
	"sync"
)

// Secret holds a sensitive environment value read once at startup.
// Dropping the secret removes the variable from the process
// environment and zeroes the held copy, so neither child processes nor
// later code can recover it. Drop is idempotent and safe to defer.
type Secret struct {
	mu      sync.Mutex
	name    string
	value   string
	dropped bool
}

// CaptureSecret reads the named environment variable into a Secret.
// The variable stays in the environment until Drop is called; a missing
// variable yields a secret whose Value is empty.
func CaptureSecret(name string) *Secret {
	return &Secret{
		name:  name,
		value: os.Getenv(name),
	}
}

// Value returns the captured value, or "" after the secret is dropped.
func (s *Secret) Value() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.dropped {
		return ""
	}
	return s.value
}

// Drop removes the variable from the process environment and discards
// the held copy.
func (s *Secret) Drop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.dropped {
		return
	}
	os.Unsetenv(s.name)
	s.value = ""
	s.dropped = true
}

// Dropped reports whether Drop has run.
func (s *Secret) Dropped() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.dropped
}
