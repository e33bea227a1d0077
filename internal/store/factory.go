// SPDX-License-Identifier: MIT

package store

import "fmt"

// Backend names supported by New.
const (
	BackendMemory = "memory"
	BackendBadger = "badger"
)

// New builds a store for the configured backend. path is only used by
// the badger backend.
func New(backend, path string) (Store, error) {
	switch backend {
	case BackendMemory, "":
		return NewMemoryStore(), nil
	case BackendBadger:
		if path == "" {
			return nil, fmt.Errorf("badger backend requires a data path")
		}
		return OpenBadgerStore(path)
	default:
		return nil, fmt.Errorf("unknown store backend %q", backend)
	}
}
