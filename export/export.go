// Package export writes CSV snapshots of particle and per-substep
// diagnostic state, in the teacher's telemetry output style
// (github.com/gocarina/gocsv), for offline inspection of a run.
package export

import (
	"fmt"
	"os"

	"github.com/gocarina/gocsv"

	"github.com/pthm-cable/macflip/particle"
	"github.com/pthm-cable/macflip/sim"
)

// ParticleRecord is one CSV row of particle state.
type ParticleRecord struct {
	Index int     `csv:"index"`
	X     float64 `csv:"x"`
	Y     float64 `csv:"y"`
	Z     float64 `csv:"z"`
	VX    float64 `csv:"vx"`
	VY    float64 `csv:"vy"`
	VZ    float64 `csv:"vz"`
	CellX int     `csv:"cell_x"`
	CellY int     `csv:"cell_y"`
	CellZ int     `csv:"cell_z"`
}

// DiagnosticsRecord is one CSV row of per-substep solver diagnostics.
type DiagnosticsRecord struct {
	Step             int     `csv:"step"`
	Iterations       int     `csv:"iterations"`
	Residual         float64 `csv:"residual"`
	MaxPressure      float64 `csv:"max_pressure"`
	MaxParticleSpeed float64 `csv:"max_particle_speed"`
	Converged        bool    `csv:"converged"`
}

// ParticleRecordsFrom converts a particle slice into CSV-marshalable
// rows.
func ParticleRecordsFrom(ps []particle.Particle) []ParticleRecord {
	records := make([]ParticleRecord, len(ps))
	for i, p := range ps {
		records[i] = ParticleRecord{
			Index: i,
			X:     p.Position.X, Y: p.Position.Y, Z: p.Position.Z,
			VX: p.Velocity.X, VY: p.Velocity.Y, VZ: p.Velocity.Z,
			CellX: p.GridIndex.X, CellY: p.GridIndex.Y, CellZ: p.GridIndex.Z,
		}
	}
	return records
}

// DiagnosticsRecordFrom converts one StepDiagnostics into a CSV row
// tagged with its step number.
func DiagnosticsRecordFrom(step int, d sim.StepDiagnostics) DiagnosticsRecord {
	return DiagnosticsRecord{
		Step:             step,
		Iterations:       d.Iterations,
		Residual:         d.Residual,
		MaxPressure:      d.MaxPressure,
		MaxParticleSpeed: d.MaxParticleSpeed,
		Converged:        d.Converged,
	}
}

// WriteParticlesCSV writes a full particle snapshot, with header, to
// path.
func WriteParticlesCSV(path string, ps []particle.Particle) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("export: creating %s: %w", path, err)
	}
	defer f.Close()

	if err := gocsv.Marshal(ParticleRecordsFrom(ps), f); err != nil {
		return fmt.Errorf("export: writing particle snapshot: %w", err)
	}
	return nil
}

// DiagnosticsWriter appends one StepDiagnostics row per substep to an
// open CSV file, writing the header once on the first call — the same
// header-then-headerless-append idiom the teacher's telemetry output
// manager uses for its per-window CSV rows.
type DiagnosticsWriter struct {
	file          *os.File
	headerWritten bool
	step          int
}

// NewDiagnosticsWriter creates (or truncates) path and returns a
// writer ready to append diagnostics rows to it.
func NewDiagnosticsWriter(path string) (*DiagnosticsWriter, error) {
	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("export: creating %s: %w", path, err)
	}
	return &DiagnosticsWriter{file: f}, nil
}

// Write appends one diagnostics row, tagged with an auto-incrementing
// step counter.
func (w *DiagnosticsWriter) Write(d sim.StepDiagnostics) error {
	records := []DiagnosticsRecord{DiagnosticsRecordFrom(w.step, d)}
	w.step++

	if !w.headerWritten {
		if err := gocsv.Marshal(records, w.file); err != nil {
			return fmt.Errorf("export: writing diagnostics: %w", err)
		}
		w.headerWritten = true
		return nil
	}
	if err := gocsv.MarshalWithoutHeaders(records, w.file); err != nil {
		return fmt.Errorf("export: writing diagnostics: %w", err)
	}
	return nil
}

// Close flushes and closes the underlying file.
func (w *DiagnosticsWriter) Close() error {
	return w.file.Close()
}
