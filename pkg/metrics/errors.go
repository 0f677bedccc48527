package metrics

import (
	"errors"
)

// Sentinel kinds for metrics errors.
var (
	ErrCollectorStopped = errors.New("metrics collector stopped")
)
