package crypto

import "io"

// SetRandReaderForTesting replaces the random source used for key
// generation, IVs, content keys and encapsulation seeds. It returns a
// function that restores the previous reader.
func SetRandReaderForTesting(r io.Reader) func() {
	original := randReader
	randReader = r
	return func() { randReader = original }
}
