//go:build !unix

package db

import (
	"context"
	"time"
)

// lockFile is a no-op where flock is unavailable; atomic rename still keeps
// the file consistent.
func lockFile(context.Context, string, time.Duration) (func(), error) {
	return func() {}, nil
}
