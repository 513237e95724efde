package checkpointer

import "github.com/pkg/errors"

// nStep implements checkpointing every N steps
type nStep struct {
	interval int
	object   Serializable

	// filename returns the filename of the next checkpoint. Use
	// FilenameEnumerator to number consecutive checkpoints.
	filename func() string
}

// NewNStep returns a checkpointer that checkpoints every n steps
func NewNStep(n int, object Serializable,
	filename func() string) Checkpointer {
	if n < 1 {
		n = 1
	}
	return &nStep{
		interval: n,
		object:   object,
		filename: filename,
	}
}

// Checkpoint saves the tracked object if step is a multiple of the
// interval
func (n *nStep) Checkpoint(step int) error {
	if step%n.interval != 0 {
		return nil
	}
	return errors.Wrap(Save(n.filename(), n.object), "checkpoint")
}
