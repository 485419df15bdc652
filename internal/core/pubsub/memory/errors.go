// Package memory is an in-process pubsub.Provider for single node deployments.
package memory

import "errors"

// ErrEngineClosed is returned when operating on a closed engine.
var ErrEngineClosed = errors.New("engine is closed")
