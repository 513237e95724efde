package humanoid

import (
	"math"

	env "github.com/samuelfneumann/golocomotion/environment"
)

// Config configures a Humanoid task. Configurations are JSON
// serializable and can be decoded from any format viper supports.
type Config struct {
	NumEnvironments int `json:"numEnvironments" mapstructure:"numEnvironments" yaml:"numEnvironments"`

	// LocalRootObservation encodes the root orientation relative to the
	// heading frame instead of the world frame
	LocalRootObservation bool `json:"localRootObservation" mapstructure:"localRootObservation" yaml:"localRootObservation"`

	TerminationHeight      float64 `json:"terminationHeight" mapstructure:"terminationHeight" yaml:"terminationHeight"`
	EnableEarlyTermination bool    `json:"enableEarlyTermination" mapstructure:"enableEarlyTermination" yaml:"enableEarlyTermination"`
	ContactForceThreshold  float64 `json:"contactForceThreshold" mapstructure:"contactForceThreshold" yaml:"contactForceThreshold"`

	ContactAllowedBodyNames []string `json:"contactAllowedBodyNames" mapstructure:"contactAllowedBodyNames" yaml:"contactAllowedBodyNames"`
	KeyBodyNames            []string `json:"keyBodyNames" mapstructure:"keyBodyNames" yaml:"keyBodyNames"`

	// JointOffsets holds the DOF index boundaries of each joint. Spans
	// of width 3 are spherical joints and spans of width 1 are hinges.
	JointOffsets []int `json:"jointOffsets" mapstructure:"jointOffsets" yaml:"jointOffsets"`

	// HingeAxes is the rotation axis (0, 1, or 2) of each hinge joint,
	// in joint order
	HingeAxes []int `json:"hingeAxes" mapstructure:"hingeAxes" yaml:"hingeAxes"`

	MaxEpisodeLength int     `json:"maxEpisodeLength" mapstructure:"maxEpisodeLength" yaml:"maxEpisodeLength"`
	PositionControl  bool    `json:"positionControl" mapstructure:"positionControl" yaml:"positionControl"`
	PowerScale       float64 `json:"powerScale" mapstructure:"powerScale" yaml:"powerScale"`

	// NumObservations is the declared observation width. Zero derives
	// the width from the skeleton.
	NumObservations int `json:"numObservations" mapstructure:"numObservations" yaml:"numObservations"`

	// ObserveAuxiliary appends the position of each auxiliary actor
	// relative to the root, in the heading frame, to the observation
	ObserveAuxiliary bool `json:"observeAuxiliary" mapstructure:"observeAuxiliary" yaml:"observeAuxiliary"`

	// InitialDOFPositions overrides the zero initial position of the
	// named DOFs
	InitialDOFPositions map[string]float64 `json:"initialDOFPositions" mapstructure:"initialDOFPositions" yaml:"initialDOFPositions"`

	Discount            float64 `json:"discount" mapstructure:"discount" yaml:"discount"`
	Dt                  float64 `json:"dt" mapstructure:"dt" yaml:"dt"`
	ControlFrequencyInv int     `json:"controlFrequencyInv" mapstructure:"controlFrequencyInv" yaml:"controlFrequencyInv"`
}

// DefaultConfig returns the configuration of the Atlas soccer task
func DefaultConfig() Config {
	return Config{
		NumEnvironments:         4,
		LocalRootObservation:    false,
		TerminationHeight:       0.3,
		EnableEarlyTermination:  true,
		ContactForceThreshold:   0.1,
		ContactAllowedBodyNames: []string{"right_ankle", "left_ankle"},
		KeyBodyNames: []string{"right_hand", "left_hand", "right_ankle",
			"left_ankle"},
		JointOffsets: []int{0, 3, 4, 7, 8, 11, 14, 15, 18, 21, 24, 25, 28,
			31, 32, 35},
		HingeAxes:        []int{1, 2, 2, 1, 1},
		MaxEpisodeLength: 300,
		PositionControl:  true,
		PowerScale:       1.0,
		NumObservations:  0,
		ObserveAuxiliary: true,
		InitialDOFPositions: map[string]float64{
			"r_arm_shx": math.Pi / 2,
			"l_arm_shx": -math.Pi / 2,
		},
		Discount:            0.99,
		Dt:                  1.0 / 60.0,
		ControlFrequencyInv: 2,
	}
}

// Validate checks the parts of the configuration that do not depend on
// the host's asset. Errors wrap environment.ErrConfiguration.
func (c Config) Validate() error {
	if c.NumEnvironments < 1 {
		return env.ConfigErrorf("validate: numEnvironments must be "+
			"positive, got %v", c.NumEnvironments)
	}
	if c.MaxEpisodeLength < 1 {
		return env.ConfigErrorf("validate: maxEpisodeLength must be "+
			"positive, got %v", c.MaxEpisodeLength)
	}
	if len(c.JointOffsets) < 2 {
		return env.ConfigErrorf("validate: jointOffsets needs at least "+
			"two boundaries, got %v", len(c.JointOffsets))
	}
	if c.JointOffsets[0] != 0 {
		return env.ConfigErrorf("validate: jointOffsets must start at 0, "+
			"got %v", c.JointOffsets[0])
	}
	for i := 1; i < len(c.JointOffsets); i++ {
		if c.JointOffsets[i] < c.JointOffsets[i-1] {
			return env.ConfigErrorf("validate: jointOffsets must be "+
				"non-decreasing, got %v after %v", c.JointOffsets[i],
				c.JointOffsets[i-1])
		}
	}
	if c.NumObservations < 0 {
		return env.ConfigErrorf("validate: numObservations must be "+
			"non-negative, got %v", c.NumObservations)
	}
	if c.Discount < 0 || c.Discount > 1 {
		return env.ConfigErrorf("validate: discount must be in [0, 1], "+
			"got %v", c.Discount)
	}
	if c.Dt <= 0 || c.ControlFrequencyInv < 1 {
		return env.ConfigErrorf("validate: dt and controlFrequencyInv "+
			"must be positive, got %v and %v", c.Dt, c.ControlFrequencyInv)
	}
	if c.ContactForceThreshold < 0 {
		return env.ConfigErrorf("validate: contactForceThreshold must be "+
			"non-negative, got %v", c.ContactForceThreshold)
	}
	if !c.PositionControl && c.PowerScale <= 0 {
		return env.ConfigErrorf("validate: powerScale must be positive "+
			"under torque control, got %v", c.PowerScale)
	}
	return nil
}

// ControlDt returns the simulated time covered by one Step
func (c Config) ControlDt() float64 {
	return c.Dt * float64(c.ControlFrequencyInv)
}
