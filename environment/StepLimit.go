package environment

// StepLimit implements the Ender interface to end episodes at specific
// timestep limits. An episode is cut off on the step that brings it to
// episodeSteps completed steps.
type StepLimit struct {
	episodeSteps int
}

// NewStepLimit creates and returns a new step limit
func NewStepLimit(episodeSteps int) StepLimit {
	return StepLimit{episodeSteps}
}

// EpisodeSteps returns the maximum number of steps in an episode
func (s StepLimit) EpisodeSteps() int {
	return s.episodeSteps
}

// Reached returns whether an episode which completed progress steps
// before the current one ends on the current step
func (s StepLimit) Reached(progress int) bool {
	return progress >= s.episodeSteps-1
}

// End flags each environment whose episode reaches the step limit on
// the current step
func (s StepLimit) End(progress []int, reset []bool) {
	for i, p := range progress {
		if s.Reached(p) {
			reset[i] = true
		}
	}
}
