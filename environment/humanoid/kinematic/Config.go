package kinematic

import (
	env "github.com/samuelfneumann/golocomotion/environment"
)

// Config holds the physical parameters of a Sim
type Config struct {
	NumEnvironments int     `json:"numEnvironments" mapstructure:"numEnvironments" yaml:"numEnvironments"`
	Dt              float64 `json:"dt" mapstructure:"dt" yaml:"dt"`
	Substeps        int     `json:"substeps" mapstructure:"substeps" yaml:"substeps"`
	Seed            uint64  `json:"seed" mapstructure:"seed" yaml:"seed"`

	Gravity float64 `json:"gravity" mapstructure:"gravity" yaml:"gravity"`

	// TrackingRate is the rate, per second, at which a DOF closes the
	// gap to its position target
	TrackingRate float64 `json:"trackingRate" mapstructure:"trackingRate" yaml:"trackingRate"`

	// Inertia and Damping of every DOF under torque control
	Inertia float64 `json:"inertia" mapstructure:"inertia" yaml:"inertia"`
	Damping float64 `json:"damping" mapstructure:"damping" yaml:"damping"`

	// Bodies closer than ContactMargin to the ground are in contact and
	// pushed up with a force of ContactStiffness per unit of remaining
	// margin
	ContactMargin    float64 `json:"contactMargin" mapstructure:"contactMargin" yaml:"contactMargin"`
	ContactStiffness float64 `json:"contactStiffness" mapstructure:"contactStiffness" yaml:"contactStiffness"`

	// Friction is the fraction of horizontal velocity lost per second
	// by bodies on the ground
	Friction float64 `json:"friction" mapstructure:"friction" yaml:"friction"`

	// KickSpeed is the speed given to the ball when a body touches it
	KickSpeed float64 `json:"kickSpeed" mapstructure:"kickSpeed" yaml:"kickSpeed"`
}

// DefaultConfig returns the default physical parameters
func DefaultConfig() Config {
	return Config{
		NumEnvironments:  4,
		Dt:               1.0 / 60.0,
		Substeps:         2,
		Seed:             0,
		Gravity:          9.81,
		TrackingRate:     20,
		Inertia:          10,
		Damping:          5,
		ContactMargin:    0.02,
		ContactStiffness: 5000,
		Friction:         4,
		KickSpeed:        2,
	}
}

// Validate returns an error wrapping environment.ErrConfiguration if
// any parameter is out of range
func (c Config) Validate() error {
	if c.NumEnvironments < 1 {
		return env.ConfigErrorf("validate: numEnvironments must be "+
			"positive, got %v", c.NumEnvironments)
	}
	if c.Dt <= 0 || c.Substeps < 1 {
		return env.ConfigErrorf("validate: dt and substeps must be "+
			"positive, got %v and %v", c.Dt, c.Substeps)
	}
	if c.Inertia <= 0 {
		return env.ConfigErrorf("validate: inertia must be positive, got "+
			"%v", c.Inertia)
	}
	if c.TrackingRate < 0 || c.Damping < 0 || c.Friction < 0 ||
		c.ContactMargin < 0 || c.ContactStiffness < 0 || c.Gravity < 0 {
		return env.ConfigErrorf("validate: physical parameters must be " +
			"non-negative")
	}
	return nil
}
