package chips

import (
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/holiman/uint256"
	"github.com/vybium/vybium-crypto/pkg/vybium-crypto/field"

	"github.com/vybium/vybium-zkvm/internal/vybium-zkvm/air"
	"github.com/vybium/vybium-zkvm/internal/vybium-zkvm/core"
	"github.com/vybium/vybium-zkvm/internal/vybium-zkvm/events"
	"github.com/vybium/vybium-zkvm/internal/vybium-zkvm/operations"
	"github.com/vybium/vybium-zkvm/internal/vybium-zkvm/utils"
)

// Uint32SqrChipName is the name of the UINT32_SQR table in shapes and reports
const Uint32SqrChipName = "Uint32SqrMod"

// ErrMalformedEvent marks an event that cannot belong to this chip. It is an
// internal invariant violation, never a user error.
var ErrMalformedEvent = errors.New("chips: malformed event")

// the modulus zero test sums raw bytes
func init() {
	if !core.ByteSumFits(core.WordSize) {
		panic("chips: modulus byte sum can wrap the field")
	}
}

// Uint32SqrChip builds and constrains the UINT32_SQR trace
type Uint32SqrChip struct {
	chunkSize int
	workers   int
	logger    *slog.Logger
}

// NewUint32SqrChip creates the chip. chunkSize and workers only affect
// scheduling; non-positive values fall back to one chunk and one worker.
func NewUint32SqrChip(chunkSize, workers int, logger *slog.Logger) *Uint32SqrChip {
	if workers <= 0 {
		workers = 1
	}
	return &Uint32SqrChip{
		chunkSize: chunkSize,
		workers:   workers,
		logger:    utils.ModuleLogger(logger, utils.TraceModule),
	}
}

// Name returns the table name
func (c *Uint32SqrChip) Name() string {
	return Uint32SqrChipName
}

// Width returns the number of trace columns
func (c *Uint32SqrChip) Width() int {
	return NumUint32SqrCols
}

// LocalOnly reports that rows never constrain their neighbours
func (c *Uint32SqrChip) LocalOnly() bool {
	return true
}

// Included reports whether the chip contributes a table for the shard
func (c *Uint32SqrChip) Included(record *events.ExecutionRecord) bool {
	if record.Shape != nil {
		return record.Shape.Included(c.Name())
	}
	return len(record.PrecompileEvents(events.SyscallUint32Sqr)) > 0
}

// GenerateTrace builds one row per UINT32_SQR event of input, padded to the
// shard's height. Byte lookups requested by the rows are added to output.
func (c *Uint32SqrChip) GenerateTrace(input, output *events.ExecutionRecord) (*RowMajorMatrix, error) {
	entries := input.PrecompileEvents(events.SyscallUint32Sqr)
	bounds := utils.ChunkBounds(len(entries), c.chunkSize)

	chunkRows := make([][][]field.Element, len(bounds))
	chunkBytes := make([]events.ByteLookups, len(bounds))

	var wg sync.WaitGroup
	errs := make(chan error, len(bounds))
	sem := make(chan struct{}, c.workers)

	for i, b := range bounds {
		wg.Add(1)
		go func(chunk, start, end int) {
			defer wg.Done()
			sem <- struct{}{}
			defer func() { <-sem }()

			rows := make([][]field.Element, 0, end-start)
			var lookups events.ByteLookups
			for idx := start; idx < end; idx++ {
				ev, ok := entries[idx].Event.(*events.Uint32SqrEvent)
				if !ok {
					errs <- fmt.Errorf("%w: entry %d is %T", ErrMalformedEvent, idx, entries[idx].Event)
					return
				}
				cols, err := c.populate(ev, &lookups)
				if err != nil {
					errs <- fmt.Errorf("event %d: %w", idx, err)
					return
				}
				rows = append(rows, cols.ToRow())
			}
			chunkRows[chunk] = rows
			chunkBytes[chunk] = lookups
		}(i, b[0], b[1])
	}

	wg.Wait()
	close(errs)
	if err := <-errs; err != nil {
		return nil, err
	}

	rows := make([][]field.Element, 0, len(entries))
	for i := range bounds {
		rows = append(rows, chunkRows[i]...)
		output.AddByteLookupEvents(chunkBytes[i])
	}

	var fixedLog2 *int
	if h, ok := input.Shape.Log2Height(c.Name()); ok {
		fixedLog2 = &h
	}
	rows, err := PadRowsFixed(rows, c.dummyRow(), fixedLog2)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", c.Name(), err)
	}

	values := make([]field.Element, 0, len(rows)*NumUint32SqrCols)
	for _, row := range rows {
		values = append(values, row...)
	}

	c.logger.Debug("generated trace",
		"chip", c.Name(), "events", len(entries), "chunks", len(bounds), "rows", len(rows))
	return NewRowMajorMatrix(values, NumUint32SqrCols)
}

func (c *Uint32SqrChip) populate(ev *events.Uint32SqrEvent, record events.ByteRecord) (*Uint32SqrCols, error) {
	if len(ev.X) != 1 || len(ev.Modulus) != 1 ||
		len(ev.XMemoryRecords) != 1 || len(ev.ModulusMemoryRecords) != 1 {
		return nil, fmt.Errorf("%w: operands and records must be one word", ErrMalformedEvent)
	}

	cols := &Uint32SqrCols{
		Shard:      core.FromUint32(ev.Shard),
		Clk:        core.FromUint32(ev.Clk),
		XPtr:       core.FromUint32(ev.XPtr),
		ModulusPtr: core.FromUint32(ev.ModulusPtr),
		IsReal:     field.One,
	}

	if err := cols.XMemory.Populate(ev.XMemoryRecords[0], record); err != nil {
		return nil, fmt.Errorf("%w: x write: %v", ErrMalformedEvent, err)
	}
	if err := cols.ModulusMemory.Populate(ev.ModulusMemoryRecords[0], record); err != nil {
		return nil, fmt.Errorf("%w: modulus read: %v", ErrMalformedEvent, err)
	}

	modulusBytes := core.WordsToBytesLE(ev.Modulus)
	modulusIsZero := cols.ModulusIsZero.Populate(core.Sum(core.FromBytes(modulusBytes)))

	x := core.Uint256FromWordsLE(ev.X)
	modulus := core.Uint256FromBytesLE(modulusBytes)
	effective := modulus
	if modulusIsZero == 1 {
		effective = core.WordModulus()
	}

	result := cols.Output.PopulateWithModulus(record, ev.Shard, x, x, effective, operations.FieldOperationMul)

	cols.ModulusIsNotZero = core.FromBool(modulusIsZero == 0)
	if modulusIsZero == 0 {
		if err := cols.OutputRangeCheck.Populate(record, ev.Shard, result, modulus); err != nil {
			return nil, fmt.Errorf("%w: result range check: %v", ErrMalformedEvent, err)
		}
	}
	return cols, nil
}

// dummyRow is the canonical padding row: 0 * 0 mod 2^32 with is_real = 0
func (c *Uint32SqrChip) dummyRow() []field.Element {
	cols := &Uint32SqrCols{}
	zero := new(uint256.Int)
	cols.Output.Populate(events.DiscardByteRecord(), 0, zero, zero, operations.FieldOperationMul)
	return cols.ToRow()
}

// EvalRow decodes row and evaluates its constraints
func (c *Uint32SqrChip) EvalRow(builder air.AirBuilder, row []field.Element) error {
	cols, err := Uint32SqrColsFromRow(row)
	if err != nil {
		return err
	}
	c.Eval(builder, cols)
	return nil
}

// Eval asserts that a real row squares the old value of x modulo the
// effective modulus and writes the result back, and that padding rows stay inert.
func (c *Uint32SqrChip) Eval(builder air.AirBuilder, cols *Uint32SqrCols) {
	isReal := cols.IsReal
	builder.Named("is_real").AssertBool(isReal)

	modulusBytes := cols.ModulusMemory.Access.Value
	cols.ModulusIsZero.Eval(builder, core.Sum(modulusBytes[:]), isReal)

	modulusIsZero := cols.ModulusIsZero.Result
	notZero := field.One.Sub(modulusIsZero)
	builder.Named("modulus_is_not_zero").AssertEq(cols.ModulusIsNotZero, isReal.Mul(notZero))

	// modulus·(1 - z) + 2^32·z
	storedModulus := core.NewPolynomial(append(modulusBytes.Slice(), field.Zero))
	pModulus := storedModulus.MulScalar(notZero).
		Add(operations.U32Field.ModulusPolynomial().MulScalar(modulusIsZero))

	x := cols.XMemory.PrevValue
	cols.Output.EvalWithModulus(builder, x[:], x[:], pModulus, operations.FieldOperationMul, isReal)
	cols.OutputRangeCheck.Eval(builder, cols.Output.Result[:], modulusBytes[:], cols.ModulusIsNotZero)

	builder.When(isReal).Named("result_written").AssertAllEq(cols.Output.Result[:], cols.XMemory.Access.Value[:])

	// the modulus is read at clk and x is written at clk+1
	operations.EvalMemoryAccess(builder, cols.Shard, cols.Clk.Add(field.One), cols.XPtr,
		cols.XMemory.Access, cols.XMemory.PrevValue, isReal)
	operations.EvalMemoryAccess(builder, cols.Shard, cols.Clk, cols.ModulusPtr,
		cols.ModulusMemory.Access, cols.ModulusMemory.PrevValue(), isReal)

	builder.ReceiveSyscall(cols.Shard, cols.Clk,
		core.FromUint32(events.SyscallUint32Sqr.SyscallID()),
		cols.XPtr, cols.ModulusPtr, isReal)
}
