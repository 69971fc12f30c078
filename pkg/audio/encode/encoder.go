// ABOUTME: Encoder interface definition
// ABOUTME: Common interface for sample encoders
package encode

// Encoder encodes float32 samples to bytes
type Encoder interface {
	// Encode converts interleaved samples in [-1, 1] to encoded bytes
	Encode(samples []float32) ([]byte, error)

	// Close releases encoder resources
	Close() error
}
