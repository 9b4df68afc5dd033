package telemetry

import (
	"context"
	"errors"

	"github.com/ConanSherry4869/voltage-control/core/model"
)

// ErrNoData is returned by a Source when no complete snapshot is available
// yet. The loop treats it as a skipped tick: no command is emitted.
var ErrNoData = errors.New("telemetry: no complete snapshot available")

// Source delivers plant measurements to the control loop. Read must return
// a fully-populated snapshot taken as one consistent set; implementations
// that receive fields asynchronously assemble them under a lock and hand
// out a value copy, never a partially written struct.
type Source interface {
	Read(ctx context.Context) (model.Snapshot, error)
}
