// Package checkpointer periodically saves serializable objects, such
// as policy weights, while an experiment runs
package checkpointer

import (
	"encoding/gob"
	"os"

	"github.com/pkg/errors"
)

// Serializable is an object that can be saved/serialized
type Serializable interface {
	gob.GobEncoder
	gob.GobDecoder
}

// Checkpointer checkpoints/saves serializable objects based on the
// number of steps taken in an experiment
type Checkpointer interface {
	Checkpoint(step int) error
}

// Save gob-encodes object to filename
func Save(filename string, object Serializable) error {
	file, err := os.Create(filename)
	if err != nil {
		return errors.Wrap(err, "save: could not create checkpoint file")
	}
	defer file.Close()

	if err := gob.NewEncoder(file).Encode(object); err != nil {
		return errors.Wrap(err, "save: could not encode checkpoint")
	}
	return nil
}

// Load decodes a checkpoint saved with Save into object
func Load(filename string, object Serializable) error {
	file, err := os.Open(filename)
	if err != nil {
		return errors.Wrap(err, "load: could not open checkpoint file")
	}
	defer file.Close()

	if err := gob.NewDecoder(file).Decode(object); err != nil {
		return errors.Wrap(err, "load: could not decode checkpoint")
	}
	return nil
}
