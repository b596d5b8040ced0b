// Package vybiumzkvm is the public API of the vybium zkVM precompile core.
//
// It executes the UINT32_SQR precompile natively against word memory, turns
// the emitted events into fixed-width trace tables and checks them against
// their constraints and bus interactions.
//
// # Quick Start
//
//	vm, err := vybiumzkvm.NewVM(vybiumzkvm.DefaultConfig())
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	// x = 3, modulus = 5
//	_ = vm.StoreWord(0x100, 3)
//	_ = vm.StoreWord(0x104, 5)
//
//	if err := vm.SqrMod(0x100, 0x104); err != nil {
//		log.Fatal(err)
//	}
//
//	x, _ := vm.LoadWord(0x100) // 4
//
//	// Check the shard
//	if _, err := vm.Verify(); err != nil {
//		log.Fatal(err)
//	}
//
// # Errors
//
// Every error returned by this package is a *VMError. A misaligned pointer
// yields ErrFatalPrecondition and halts the VM; a rejected shard yields
// ErrProofVerification. Use errors.Is with a VMError carrying the code:
//
//	if errors.Is(err, &vybiumzkvm.VMError{Code: vybiumzkvm.ErrFatalPrecondition}) {
//		...
//	}
//
// # Architecture
//
// - pkg/vybium-zkvm/: Public API (this package)
// - internal/vybium-zkvm/: Private implementation (not importable)
//
// Implementation details in internal/ can be refactored without breaking the public API.
package vybiumzkvm
