// Package chips turns precompile events into trace matrices and defines the
// constraints each trace row must satisfy.
package chips

import (
	"fmt"

	"github.com/vybium/vybium-crypto/pkg/vybium-crypto/field"

	"github.com/vybium/vybium-zkvm/internal/vybium-zkvm/operations"
)

// Uint32SqrCols is one row of the UINT32_SQR trace
type Uint32SqrCols struct {
	Shard      field.Element
	Clk        field.Element
	XPtr       field.Element
	ModulusPtr field.Element

	// XMemory is the write of the result over x at clk+1
	XMemory operations.MemoryWriteCols
	// ModulusMemory is the read of the modulus at clk
	ModulusMemory operations.MemoryReadCols

	ModulusIsZero    operations.IsZeroOperation
	ModulusIsNotZero field.Element

	Output           operations.FieldOpCols
	OutputRangeCheck operations.FieldLtCols

	IsReal field.Element
}

// NumUint32SqrCols is the width of the UINT32_SQR trace
const NumUint32SqrCols = 4 +
	operations.NumMemoryWriteCols +
	operations.NumMemoryReadCols +
	operations.NumIsZeroCols + 1 +
	operations.NumFieldOpCols +
	operations.NumFieldLtCols + 1

type columnWriter struct {
	row []field.Element
}

func (w *columnWriter) put(values ...field.Element) {
	w.row = append(w.row, values...)
}

type columnReader struct {
	row []field.Element
	pos int
}

func (r *columnReader) next() field.Element {
	v := r.row[r.pos]
	r.pos++
	return v
}

func (r *columnReader) fill(dst []field.Element) {
	for i := range dst {
		dst[i] = r.next()
	}
}

func putAccess(w *columnWriter, a *operations.MemoryAccessCols) {
	w.put(a.Value[:]...)
	w.put(a.PrevShard, a.PrevClk, a.CompareClk, a.DiffLow16, a.DiffHigh8)
}

func readAccess(r *columnReader, a *operations.MemoryAccessCols) {
	r.fill(a.Value[:])
	a.PrevShard = r.next()
	a.PrevClk = r.next()
	a.CompareClk = r.next()
	a.DiffLow16 = r.next()
	a.DiffHigh8 = r.next()
}

// ToRow flattens the columns in declaration order
func (c *Uint32SqrCols) ToRow() []field.Element {
	w := &columnWriter{row: make([]field.Element, 0, NumUint32SqrCols)}
	w.put(c.Shard, c.Clk, c.XPtr, c.ModulusPtr)
	w.put(c.XMemory.PrevValue[:]...)
	putAccess(w, &c.XMemory.Access)
	putAccess(w, &c.ModulusMemory.Access)
	w.put(c.ModulusIsZero.Inverse, c.ModulusIsZero.Result, c.ModulusIsNotZero)
	w.put(c.Output.Result[:]...)
	w.put(c.Output.Carry[:]...)
	w.put(c.Output.WitnessLow[:]...)
	w.put(c.Output.WitnessHigh[:]...)
	w.put(c.OutputRangeCheck.ByteFlags[:]...)
	w.put(c.OutputRangeCheck.LhsComparisonByte, c.OutputRangeCheck.RhsComparisonByte)
	w.put(c.IsReal)
	return w.row
}

// Uint32SqrColsFromRow is the inverse of ToRow
func Uint32SqrColsFromRow(row []field.Element) (*Uint32SqrCols, error) {
	if len(row) != NumUint32SqrCols {
		return nil, fmt.Errorf("row has %d columns, want %d", len(row), NumUint32SqrCols)
	}
	r := &columnReader{row: row}
	c := &Uint32SqrCols{}
	c.Shard = r.next()
	c.Clk = r.next()
	c.XPtr = r.next()
	c.ModulusPtr = r.next()
	r.fill(c.XMemory.PrevValue[:])
	readAccess(r, &c.XMemory.Access)
	readAccess(r, &c.ModulusMemory.Access)
	c.ModulusIsZero.Inverse = r.next()
	c.ModulusIsZero.Result = r.next()
	c.ModulusIsNotZero = r.next()
	r.fill(c.Output.Result[:])
	r.fill(c.Output.Carry[:])
	r.fill(c.Output.WitnessLow[:])
	r.fill(c.Output.WitnessHigh[:])
	r.fill(c.OutputRangeCheck.ByteFlags[:])
	c.OutputRangeCheck.LhsComparisonByte = r.next()
	c.OutputRangeCheck.RhsComparisonByte = r.next()
	c.IsReal = r.next()
	return c, nil
}
