// Package trackers implements Trackers, which track and save data
// from the batches of timesteps produced in an experiment
package trackers

import (
	"encoding/gob"
	"os"

	"github.com/pkg/errors"
	ts "github.com/samuelfneumann/golocomotion/timestep"
)

// Tracker keeps track of experiment data and saves the data after the
// experiment has finished
type Tracker interface {
	Track(b ts.Batch)
	Save() error
}

// LoadData loads and returns the data saved by a Tracker
func LoadData(filename string) ([]float64, error) {
	file, err := os.Open(filename)
	if err != nil {
		return nil, errors.Wrap(err, "loadData: could not open data file")
	}
	defer file.Close()

	var data []float64
	if err := gob.NewDecoder(file).Decode(&data); err != nil {
		return nil, errors.Wrap(err, "loadData: could not decode data")
	}
	return data, nil
}

// save gob-encodes data to filename
func save(filename string, data []float64) error {
	file, err := os.Create(filename)
	if err != nil {
		return errors.Wrap(err, "could not open save file")
	}
	defer file.Close()

	if err := gob.NewEncoder(file).Encode(data); err != nil {
		return errors.Wrap(err, "could not encode data")
	}
	return nil
}
