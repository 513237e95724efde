package humanoid

import (
	env "github.com/samuelfneumann/golocomotion/environment"
)

// Actors lists the root-state rows of one environment's actors
type Actors struct {
	Humanoid  int
	Auxiliary []int
}

// All returns the rows of every actor, humanoid first
func (a Actors) All() []int {
	return append([]int{a.Humanoid}, a.Auxiliary...)
}

// ActorMap maps each environment to its actors
type ActorMap struct {
	envs         []Actors
	numActors    int
	numAuxiliary int
}

// NewActorMap builds an ActorMap from the per-environment actor rows
// reported by a host. Every environment must hold a humanoid and the
// same number of auxiliary actors, and no row may be shared or fall
// outside [0, numActors). Errors wrap environment.ErrConfiguration.
func NewActorMap(envActors [][]int, numActors int) (*ActorMap, error) {
	if len(envActors) == 0 {
		return nil, env.ConfigErrorf("newActorMap: no environments")
	}

	seen := make(map[int]bool, numActors)
	envs := make([]Actors, len(envActors))
	numAux := len(envActors[0]) - 1

	for e, actors := range envActors {
		if len(actors) == 0 {
			return nil, env.ConfigErrorf("newActorMap: environment %v has "+
				"no humanoid actor", e)
		}
		if len(actors)-1 != numAux {
			return nil, env.ConfigErrorf("newActorMap: environment %v has %v "+
				"auxiliary actors, environment 0 has %v", e, len(actors)-1,
				numAux)
		}

		for _, a := range actors {
			if a < 0 || a >= numActors {
				return nil, env.ConfigErrorf("newActorMap: actor %v of "+
					"environment %v out of range [0, %v)", a, e, numActors)
			}
			if seen[a] {
				return nil, env.ConfigErrorf("newActorMap: actor %v is "+
					"listed more than once", a)
			}
			seen[a] = true
		}

		envs[e] = Actors{
			Humanoid:  actors[0],
			Auxiliary: append([]int(nil), actors[1:]...),
		}
	}

	return &ActorMap{envs: envs, numActors: numActors, numAuxiliary: numAux}, nil
}

// Len returns the number of environments
func (a *ActorMap) Len() int {
	return len(a.envs)
}

// NumActors returns the number of root-state rows
func (a *ActorMap) NumActors() int {
	return a.numActors
}

// NumAuxiliary returns the number of auxiliary actors per environment
func (a *ActorMap) NumAuxiliary() int {
	return a.numAuxiliary
}

// Env returns the actors of environment e
func (a *ActorMap) Env(e int) Actors {
	return a.envs[e]
}

// Rows returns the root-state rows of every actor of the listed
// environments
func (a *ActorMap) Rows(envIDs []int) []int {
	rows := make([]int, 0, len(envIDs)*(a.numAuxiliary+1))
	for _, e := range envIDs {
		rows = append(rows, a.envs[e].Humanoid)
		rows = append(rows, a.envs[e].Auxiliary...)
	}
	return rows
}
