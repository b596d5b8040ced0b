package machine

import (
	"fmt"
	"sync"

	"github.com/vybium/vybium-crypto/pkg/vybium-crypto/hash"
	"github.com/vybium/vybium-crypto/pkg/vybium-crypto/merkle"

	"github.com/vybium/vybium-zkvm/internal/vybium-zkvm/chips"
	"github.com/vybium/vybium-zkvm/internal/vybium-zkvm/utils"
)

const commitBatchSize = 1024

// Commit returns the Merkle root over the row hashes of a trace
func Commit(matrix *chips.RowMajorMatrix) (hash.Digest, error) {
	numRows := matrix.Height()
	if !utils.IsPowerOfTwo(numRows) {
		return hash.Digest{}, fmt.Errorf("cannot commit to %d rows", numRows)
	}

	leaves := make([]hash.Digest, numRows)
	var wg sync.WaitGroup
	for start := 0; start < numRows; start += commitBatchSize {
		end := min(start+commitBatchSize, numRows)
		wg.Add(1)
		go func(start, end int) {
			defer wg.Done()
			for row := start; row < end; row++ {
				leaves[row] = hash.HashVarlen(matrix.Row(row))
			}
		}(start, end)
	}
	wg.Wait()

	// a tree needs two leaves; a one-row trace commits to its row twice
	if len(leaves) == 1 {
		leaves = append(leaves, leaves[0])
	}

	tree, err := merkle.New(leaves)
	if err != nil {
		return hash.Digest{}, fmt.Errorf("failed to create Merkle tree: %w", err)
	}
	return tree.Root(), nil
}
