// Package machine drives the chips of a shard: it decides which tables are
// present, generates and commits their traces, and checks them in debug mode.
package machine

import (
	"fmt"
	"log/slog"

	"github.com/vybium/vybium-crypto/pkg/vybium-crypto/field"

	"github.com/vybium/vybium-zkvm/internal/vybium-zkvm/air"
	"github.com/vybium/vybium-zkvm/internal/vybium-zkvm/chips"
	"github.com/vybium/vybium-zkvm/internal/vybium-zkvm/events"
	"github.com/vybium/vybium-zkvm/internal/vybium-zkvm/utils"
)

// Chip is a trace table of the machine
type Chip interface {
	Name() string
	Width() int
	Included(record *events.ExecutionRecord) bool
	GenerateTrace(input, output *events.ExecutionRecord) (*chips.RowMajorMatrix, error)
	EvalRow(builder air.AirBuilder, row []field.Element) error
}

// Machine is an ordered set of chips
type Machine struct {
	chips  []Chip
	logger *slog.Logger
}

// New creates a machine over the given chips
func New(logger *slog.Logger, chipList ...Chip) *Machine {
	return &Machine{
		chips:  chipList,
		logger: utils.ModuleLogger(logger, utils.VerifierModule),
	}
}

// NewPrecompileMachine creates the machine with every precompile chip
func NewPrecompileMachine(chunkSize, workers int, logger *slog.Logger) *Machine {
	return New(logger, chips.NewUint32SqrChip(chunkSize, workers, logger))
}

// Chips returns the chips in order
func (m *Machine) Chips() []Chip {
	return m.chips
}

// Trace is the generated table of one chip
type Trace struct {
	Chip   Chip
	Matrix *chips.RowMajorMatrix
}

// GenerateTraces builds the table of every included chip. The returned record
// holds the byte lookups requested while populating the rows.
func (m *Machine) GenerateTraces(record *events.ExecutionRecord) ([]Trace, *events.ExecutionRecord, error) {
	output := events.NewExecutionRecord(record.Shard)
	traces := make([]Trace, 0, len(m.chips))

	for _, chip := range m.chips {
		if !chip.Included(record) {
			continue
		}
		matrix, err := chip.GenerateTrace(record, output)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to generate %s trace: %w", chip.Name(), err)
		}
		if matrix.Width != chip.Width() {
			return nil, nil, fmt.Errorf("%s trace has width %d, want %d", chip.Name(), matrix.Width, chip.Width())
		}
		if !utils.IsPowerOfTwo(matrix.Height()) {
			return nil, nil, fmt.Errorf("%s trace height %d is not a power of two", chip.Name(), matrix.Height())
		}
		traces = append(traces, Trace{Chip: chip, Matrix: matrix})
	}
	return traces, output, nil
}
