package store

import (
	"fmt"
	"sync"

	"github.com/and161185/openstudio/internal/errs"
)

// guard runs fn while holding l. The lock is released by defer, and a panic
// raised inside fn is returned as errs.ErrInternal, so the store stays usable.
func guard(l sync.Locker, fn func() error) (err error) {
	l.Lock()
	defer l.Unlock()
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("%w: critical section: %v", errs.ErrInternal, r)
		}
	}()
	return fn()
}
