package kinematic

import (
	"fmt"
	"math"

	env "github.com/samuelfneumann/golocomotion/environment"
	"github.com/samuelfneumann/golocomotion/environment/humanoid"
	"gonum.org/v1/gonum/spatial/r1"
	"gonum.org/v1/gonum/spatial/r3"
)

// Body is a rigid body of the model. Every body except the root is
// attached to its parent by exactly one joint.
type Body struct {
	Name   string
	Parent int // -1 for the root
	Joint  int // -1 for the root

	// Offset is the body's position in its parent's frame at rest
	Offset r3.Vec

	// Radius is the distance from the body's position to its surface
	// when checking ground contact
	Radius float64
}

// Joint is a spherical or hinge joint between a body and its parent
type Joint struct {
	Name string
	Kind humanoid.JointKind
	Axis int // Hinge axis: 0, 1, or 2

	// Limits of each of the joint's DOFs
	Limit r1.Interval

	// Effort is the maximum torque of each of the joint's motors
	Effort float64
}

// Model is a humanoid rig together with the ball placed in front of it
type Model struct {
	Bodies []Body
	Joints []Joint

	// RootHeight is the height of the root body at rest
	RootHeight float64

	BallRadius float64

	// BallStart holds the x and y ranges the ball is placed in
	BallStart [2]r1.Interval
}

// DefaultModel returns an Atlas-like rig with 16 bodies and 35 DOFs.
// The rig faces along x with z up, and its arms point sideways at
// rest.
func DefaultModel() Model {
	spherical := func(name string, effort float64) Joint {
		return Joint{
			Name:   name,
			Kind:   humanoid.SphericalJoint,
			Limit:  r1.Interval{Min: -math.Pi, Max: math.Pi},
			Effort: effort,
		}
	}
	hinge := func(name string, axis int, low, high, effort float64) Joint {
		return Joint{
			Name:   name,
			Kind:   humanoid.HingeJoint,
			Axis:   axis,
			Limit:  r1.Interval{Min: low, Max: high},
			Effort: effort,
		}
	}

	joints := []Joint{
		spherical("waist", 200),
		hinge("spine", 1, -0.66, 0.66, 200),
		spherical("r_arm_sh", 100),
		hinge("r_arm_el", 2, -2.35, 0, 80),
		spherical("r_arm_wr", 40),
		spherical("l_arm_sh", 100),
		hinge("l_arm_el", 2, 0, 2.35, 80),
		spherical("l_arm_wr", 40),
		spherical("neck", 40),
		spherical("r_leg_hp", 300),
		hinge("r_leg_kn", 1, 0, 2.35, 300),
		spherical("r_leg_an", 100),
		spherical("l_leg_hp", 300),
		hinge("l_leg_kn", 1, 0, 2.35, 300),
		spherical("l_leg_an", 100),
	}

	bodies := []Body{
		{Name: "pelvis", Parent: -1, Joint: -1, Radius: 0.15},
		{Name: "ltorso", Parent: 0, Joint: 0, Offset: r3.Vec{Z: 0.1}, Radius: 0.12},
		{Name: "utorso", Parent: 1, Joint: 1, Offset: r3.Vec{Z: 0.25}, Radius: 0.18},
		{Name: "r_uarm", Parent: 2, Joint: 2, Offset: r3.Vec{Y: -0.22, Z: 0.2}, Radius: 0.06},
		{Name: "r_larm", Parent: 3, Joint: 3, Offset: r3.Vec{Y: -0.3}, Radius: 0.05},
		{Name: "right_hand", Parent: 4, Joint: 4, Offset: r3.Vec{Y: -0.28}, Radius: 0.05},
		{Name: "l_uarm", Parent: 2, Joint: 5, Offset: r3.Vec{Y: 0.22, Z: 0.2}, Radius: 0.06},
		{Name: "l_larm", Parent: 6, Joint: 6, Offset: r3.Vec{Y: 0.3}, Radius: 0.05},
		{Name: "left_hand", Parent: 7, Joint: 7, Offset: r3.Vec{Y: 0.28}, Radius: 0.05},
		{Name: "head", Parent: 2, Joint: 8, Offset: r3.Vec{Z: 0.35}, Radius: 0.12},
		{Name: "r_uleg", Parent: 0, Joint: 9, Offset: r3.Vec{Y: -0.1, Z: -0.05}, Radius: 0.08},
		{Name: "r_lleg", Parent: 10, Joint: 10, Offset: r3.Vec{Z: -0.42}, Radius: 0.06},
		{Name: "right_ankle", Parent: 11, Joint: 11, Offset: r3.Vec{Z: -0.42}, Radius: 0.05},
		{Name: "l_uleg", Parent: 0, Joint: 12, Offset: r3.Vec{Y: 0.1, Z: -0.05}, Radius: 0.08},
		{Name: "l_lleg", Parent: 13, Joint: 13, Offset: r3.Vec{Z: -0.42}, Radius: 0.06},
		{Name: "left_ankle", Parent: 14, Joint: 14, Offset: r3.Vec{Z: -0.42}, Radius: 0.05},
	}

	return Model{
		Bodies:     bodies,
		Joints:     joints,
		RootHeight: 0.05 + 0.42 + 0.42 + 0.05,
		BallRadius: 0.11,
		BallStart: [2]r1.Interval{
			{Min: 2, Max: 4},
			{Min: -1, Max: 1},
		},
	}
}

// Validate checks that the model is a tree whose joints are each used
// by exactly one body. Errors wrap environment.ErrConfiguration.
func (m Model) Validate() error {
	if len(m.Bodies) == 0 || m.Bodies[0].Parent != -1 {
		return env.ConfigErrorf("validate: body 0 must be the root")
	}

	used := make([]bool, len(m.Joints))
	for i := 1; i < len(m.Bodies); i++ {
		b := m.Bodies[i]
		if b.Parent < 0 || b.Parent >= i {
			return env.ConfigErrorf("validate: body %q must follow its "+
				"parent", b.Name)
		}
		if b.Joint < 0 || b.Joint >= len(m.Joints) || used[b.Joint] {
			return env.ConfigErrorf("validate: body %q has invalid or "+
				"shared joint %v", b.Name, b.Joint)
		}
		used[b.Joint] = true
	}
	for j, u := range used {
		if !u {
			return env.ConfigErrorf("validate: joint %q moves no body",
				m.Joints[j].Name)
		}
	}

	for _, j := range m.Joints {
		if j.Kind == humanoid.HingeJoint && (j.Axis < 0 || j.Axis > 2) {
			return env.ConfigErrorf("validate: hinge %q has axis %v",
				j.Name, j.Axis)
		}
		if j.Limit.Max < j.Limit.Min {
			return env.ConfigErrorf("validate: joint %q has empty limits",
				j.Name)
		}
	}
	if m.BallRadius <= 0 {
		return env.ConfigErrorf("validate: ball radius must be positive")
	}
	return nil
}

// BodyNames returns the names of the bodies in order
func (m Model) BodyNames() []string {
	names := make([]string, len(m.Bodies))
	for i, b := range m.Bodies {
		names[i] = b.Name
	}
	return names
}

// DOFNames returns the name of every DOF. The DOFs of a spherical
// joint are suffixed with x, y, and z.
func (m Model) DOFNames() []string {
	var names []string
	for _, j := range m.Joints {
		if j.Kind == humanoid.SphericalJoint {
			for _, axis := range "xyz" {
				names = append(names, fmt.Sprintf("%v%c", j.Name, axis))
			}
		} else {
			names = append(names, j.Name)
		}
	}
	return names
}

// JointOffsets returns the index of each joint's first DOF, followed by
// the number of DOFs
func (m Model) JointOffsets() []int {
	offsets := make([]int, 0, len(m.Joints)+1)
	d := 0
	for _, j := range m.Joints {
		offsets = append(offsets, d)
		d += j.Kind.Width()
	}
	return append(offsets, d)
}

// HingeAxes returns the axis of each hinge joint in joint order
func (m Model) HingeAxes() []int {
	var axes []int
	for _, j := range m.Joints {
		if j.Kind == humanoid.HingeJoint {
			axes = append(axes, j.Axis)
		}
	}
	return axes
}

// NumDOF returns the number of DOFs of the model
func (m Model) NumDOF() int {
	offsets := m.JointOffsets()
	return offsets[len(offsets)-1]
}
