package sim

import "fmt"

// InvalidConfigError is returned from New or a config setter when a
// parameter is out of its valid range. The simulation is never
// constructed, or is left unmodified, when this is returned.
type InvalidConfigError struct {
	Field  string
	Reason string
}

func (e *InvalidConfigError) Error() string {
	return fmt.Sprintf("sim: invalid %s: %s", e.Field, e.Reason)
}

// SolverNonConvergedError is advisory: the pressure solver exceeded
// MaxIterations before reaching Tolerance. The substep that produced
// it is still committed with the partial pressure field applied.
type SolverNonConvergedError struct {
	Iterations int
	Residual   float64
}

func (e *SolverNonConvergedError) Error() string {
	return fmt.Sprintf("sim: pressure solver did not converge after %d iterations (residual=%g)", e.Iterations, e.Residual)
}

// NumericBlowupError is returned when a particle velocity becomes
// non-finite. The simulation is marked invalid; every subsequent
// Update/TimeStep call returns this error until Reset is called.
type NumericBlowupError struct {
	ParticleIndex int
}

func (e *NumericBlowupError) Error() string {
	return fmt.Sprintf("sim: particle %d velocity became non-finite", e.ParticleIndex)
}
