// Package runid generates the correlation identifier attached to every log
// line and published event for a single CLI invocation.
package runid

import "github.com/google/uuid"

// New returns a fresh run correlation ID.
func New() string {
	return uuid.NewString()
}
