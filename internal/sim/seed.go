package sim

import (
	"encoding/binary"

	"golang.org/x/crypto/blake2b"
)

// DeriveSeed returns the PCG seed pair of one combat of a batch.
//
// The pair depends only on the batch seed, the scenario id and the combat
// index, so a batch replays identically whatever the worker count.
func DeriveSeed(base uint64, scenario string, index int) (uint64, uint64) {
	buf := make([]byte, 16, 16+len(scenario))
	binary.LittleEndian.PutUint64(buf[:8], base)
	binary.LittleEndian.PutUint64(buf[8:], uint64(index))
	buf = append(buf, scenario...)

	sum := blake2b.Sum256(buf)
	return binary.LittleEndian.Uint64(sum[:8]), binary.LittleEndian.Uint64(sum[8:16])
}
