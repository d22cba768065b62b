package grid

import "context"

// Saver is the engine's persistence collaborator. The engine assumes no
// transport: the auto-save coordinator and the paste commit both hand it
// the exact snapshot of changes the call must cover, as one batch.
type Saver interface {
	SaveCells(ctx context.Context, changes []Change) error
}
