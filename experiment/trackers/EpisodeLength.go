package trackers

import (
	"github.com/pkg/errors"
	ts "github.com/samuelfneumann/golocomotion/timestep"
)

// EpisodeLength tracks and saves the lengths of episodes in an
// experiment, in the order in which they end.
// Note that an episode must finish for this Tracker to save its data.
type EpisodeLength struct {
	episodeLengths []float64
	filename       string
}

// NewEpisodeLength returns a new EpisodeLength Tracker which will save
// its data at the specified location filename
func NewEpisodeLength(filename string) *EpisodeLength {
	return &EpisodeLength{filename: filename}
}

// Track caches the length of every episode that ended in the batch
func (e *EpisodeLength) Track(b ts.Batch) {
	for _, i := range b.Ended() {
		e.episodeLengths = append(e.episodeLengths, float64(b.Number[i]))
	}
}

// Data returns the lengths of all finished episodes
func (e *EpisodeLength) Data() []float64 {
	return append([]float64(nil), e.episodeLengths...)
}

// Save saves the data tracked by the EpisodeLength Tracker to disk
func (e *EpisodeLength) Save() error {
	return errors.Wrap(save(e.filename, e.episodeLengths), "save")
}
