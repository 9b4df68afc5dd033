package pcs

import (
	"context"

	"github.com/ConanSherry4869/voltage-control/core/model"
)

// CommandSink transmits the per-tick active power order to the converter.
// A failed Send is logged and counted by the caller; it never stops the
// control loop.
type CommandSink interface {
	Send(ctx context.Context, cmd model.PowerCommand) error
}
