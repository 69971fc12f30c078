// ABOUTME: Tests for latency ping slot
// ABOUTME: Tests burst dropping, consume and drain
package songtime

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPingBurstKeepsFirstStamp(t *testing.T) {
	var p latencyPing

	require.True(t, p.post(1.0, 1))
	assert.False(t, p.post(2.0, 1), "second ping must not overwrite an unconsumed one")
	assert.True(t, p.pending())

	stamp, gen, ok := p.consume()
	require.True(t, ok)
	assert.Equal(t, 1.0, stamp)
	assert.Equal(t, uint64(1), gen)
	assert.Equal(t, uint64(1), p.dropped.Load())

	_, _, ok = p.consume()
	assert.False(t, ok, "ping consumed twice")
}

func TestPingPostAfterConsume(t *testing.T) {
	var p latencyPing

	require.True(t, p.post(1.0, 1))
	_, _, ok := p.consume()
	require.True(t, ok)

	require.True(t, p.post(3.0, 2))
	stamp, gen, ok := p.consume()
	require.True(t, ok)
	assert.Equal(t, 3.0, stamp)
	assert.Equal(t, uint64(2), gen)
}

func TestPingDrain(t *testing.T) {
	var p latencyPing

	require.True(t, p.post(1.0, 1))
	p.drain()

	assert.False(t, p.pending())
	_, _, ok := p.consume()
	assert.False(t, ok)
	assert.True(t, p.post(2.0, 2), "drained slot should accept a new ping")
}
