package humanoid

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"gonum.org/v1/gonum/spatial/r3"
)

func snapshotAt(x float64, ballX ...float64) Snapshot {
	s := Snapshot{
		Root:   RootState{Position: r3.Vec{X: x}},
		Target: r3.Vec{X: 3},
	}
	for _, b := range ballX {
		s.Auxiliary = append(s.Auxiliary, RootState{Position: r3.Vec{X: b}})
	}
	return s
}

func TestApproachBall(t *testing.T) {
	task := NewApproachBall(0, 1e-6)

	// One unit closer to the target
	r := task.GetReward(snapshotAt(0, 3), snapshotAt(1, 3))
	assert.InDelta(t, math.E-1, r, 1e-12)

	// Moving away is penalized but bounded below by -1
	r = task.GetReward(snapshotAt(1, 3), snapshotAt(0, 3))
	assert.InDelta(t, math.Exp(-1)-1, r, 1e-12)

	// Standing still next to a ball that moved
	r = task.GetReward(snapshotAt(1, 3), snapshotAt(1, 3.5))
	assert.InDelta(t, 1.0, r, 1e-12)

	// Movement within the tolerance is noise
	r = task.GetReward(snapshotAt(1, 3), snapshotAt(1, 3+1e-9))
	assert.InDelta(t, 0.0, r, 1e-12)

	// No ball to track
	r = task.GetReward(snapshotAt(1), snapshotAt(1))
	assert.Equal(t, 0.0, r)

	assert.Panics(t, func() { NewApproachBall(-1, 0) })
}

func TestApproachBallFinite(t *testing.T) {
	task := NewApproachBall(0, 1e-6)
	tests := []struct {
		prev, cur Snapshot
	}{
		{snapshotAt(0, 3), snapshotAt(math.NaN(), 3)},
		{snapshotAt(0, 3), snapshotAt(math.Inf(1), math.Inf(-1))},
		{snapshotAt(-1e200, 3), snapshotAt(1e200, 3)},
		{snapshotAt(1e200, 3), snapshotAt(-1e200, 3)},
		{snapshotAt(3, 3), snapshotAt(3, math.NaN())},
	}

	for i, test := range tests {
		r := task.GetReward(test.prev, test.cur)
		assert.False(t, math.IsNaN(r) || math.IsInf(r, 0), "case %v: %v", i,
			r)
	}
}

func TestForward(t *testing.T) {
	task := NewForward(0.1, 1)
	r := task.GetReward(snapshotAt(0), snapshotAt(0.5))
	assert.InDelta(t, 6.0, r, 1e-12)

	r = task.GetReward(snapshotAt(0), snapshotAt(math.NaN()))
	assert.Equal(t, 1.0, r)

	assert.Equal(t, 1.0, Forward{AliveBonus: 1}.GetReward(snapshotAt(0),
		snapshotAt(1)))
	assert.Panics(t, func() { NewForward(0, 1) })
}

func TestTaskFunc(t *testing.T) {
	var task Task = TaskFunc(func(prev, cur Snapshot) float64 {
		return cur.Root.Position.X - prev.Root.Position.X
	})
	assert.Equal(t, 2.0, task.GetReward(snapshotAt(1), snapshotAt(3)))
}
