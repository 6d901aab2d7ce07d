package sim

import (
	"github.com/pthm-cable/macflip/transfer"
	"github.com/pthm-cable/macflip/vecmath"
)

// Config is the plain (non-YAML) configuration a Simulation is built
// from. config.Config.ToSimConfig converts a loaded configuration file
// into one of these; callers that don't need YAML can build one by
// hand.
type Config struct {
	Method         transfer.Method
	BlendingFactor float64
	CFLNumber      float64
	Gravity        vecmath.Vec3
	Density        float64

	Tolerance     float64
	MaxIterations int
	Tau           float64
	Sigma         float64

	CellSize          float64
	GridSize          vecmath.Vec3i
	GridOffset        vecmath.Vec3
	BoundarySkinWidth float64

	SeedDensity int
}

// DefaultConfig returns the reference solver's tuning over a 16^3 grid
// with unit cell size, matching config/defaults.yaml.
func DefaultConfig() Config {
	return Config{
		Method:         transfer.PIC,
		BlendingFactor: 0.97,
		CFLNumber:      3.0,
		Gravity:        vecmath.Vec3{Y: -9.81},
		Density:        1.0,

		Tolerance:     1e-6,
		MaxIterations: 200,
		Tau:           0.97,
		Sigma:         0.25,

		CellSize:          1.0,
		GridSize:          vecmath.Vec3i{X: 16, Y: 16, Z: 16},
		GridOffset:        vecmath.Vec3{},
		BoundarySkinWidth: 1e-7,

		SeedDensity: 2,
	}
}

func (c Config) validate() error {
	if c.CellSize <= 0 {
		return &InvalidConfigError{Field: "CellSize", Reason: "must be positive"}
	}
	if c.GridSize.X <= 0 || c.GridSize.Y <= 0 || c.GridSize.Z <= 0 {
		return &InvalidConfigError{Field: "GridSize", Reason: "must be positive in every dimension"}
	}
	if c.CFLNumber <= 0 {
		return &InvalidConfigError{Field: "CFLNumber", Reason: "must be positive"}
	}
	if c.BlendingFactor < 0 || c.BlendingFactor > 1 {
		return &InvalidConfigError{Field: "BlendingFactor", Reason: "must be in [0,1]"}
	}
	if c.Density <= 0 {
		return &InvalidConfigError{Field: "Density", Reason: "must be positive"}
	}
	if c.Tolerance <= 0 {
		return &InvalidConfigError{Field: "Tolerance", Reason: "must be positive"}
	}
	if c.MaxIterations <= 0 {
		return &InvalidConfigError{Field: "MaxIterations", Reason: "must be positive"}
	}
	switch c.Method {
	case transfer.PIC, transfer.FLIPBlend, transfer.APIC:
	default:
		return &InvalidConfigError{Field: "Method", Reason: "unknown transfer method"}
	}
	return nil
}
