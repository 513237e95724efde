package trackers

import (
	"path/filepath"
	"testing"

	ts "github.com/samuelfneumann/golocomotion/timestep"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"
)

func batch(number []int, reward []float64, reset []bool) ts.Batch {
	return ts.Batch{
		Observation: mat.NewDense(len(number), 1, nil),
		Reward:      mat.NewVecDense(len(reward), reward),
		Number:      number,
		Reset:       reset,
		Terminated:  make([]bool, len(number)),
	}
}

func TestReturnAcrossResets(t *testing.T) {
	r := NewReturn("")
	r.Track(batch([]int{1, 1}, []float64{1, 2}, []bool{false, true}))
	r.Track(batch([]int{2, 1}, []float64{3, 4}, []bool{true, false}))
	r.Track(batch([]int{1, 2}, []float64{5, 6}, []bool{false, true}))

	assert.Equal(t, []float64{2, 4, 10}, r.Data())
	assert.Panics(t, func() {
		r.Track(batch([]int{3, 1}, []float64{0, 0}, []bool{false, false}))
	})
	assert.Panics(t, func() {
		r.Track(batch([]int{2}, []float64{0}, []bool{false}))
	})
}

func TestEpisodeLengthSaveLoad(t *testing.T) {
	filename := filepath.Join(t.TempDir(), "lengths.gob")
	e := NewEpisodeLength(filename)
	e.Track(batch([]int{3, 1, 7}, make([]float64, 3),
		[]bool{true, false, true}))
	e.Track(batch([]int{1, 2, 1}, make([]float64, 3),
		[]bool{false, true, false}))

	require.NoError(t, e.Save())
	data, err := LoadData(filename)
	require.NoError(t, err)
	assert.Equal(t, []float64{3, 7, 2}, data)

	_, err = LoadData(filepath.Join(t.TempDir(), "missing.gob"))
	assert.Error(t, err)
}

func TestSmooth(t *testing.T) {
	data := []float64{1, 3, 5, 7}
	assert.Equal(t, []float64{1, 2, 4, 6}, Smooth(data, 2))
	assert.Equal(t, data, Smooth(data, 1))
}

func TestPlot(t *testing.T) {
	filename := filepath.Join(t.TempDir(), "returns.png")
	err := Plot(filename, "Return", "Return", 2,
		Series{Name: "zero", Data: []float64{1, 2, 3}},
		Series{Name: "uniform", Data: []float64{3, 2, 1}})
	require.NoError(t, err)
	assert.FileExists(t, filename)
}
