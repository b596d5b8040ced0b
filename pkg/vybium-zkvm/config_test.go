package vybiumzkvm

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConfigValidate(t *testing.T) {
	require.NoError(t, DefaultConfig().Validate())

	tests := []struct {
		name   string
		mutate func(c *Config)
	}{
		{"negative chunk size", func(c *Config) { c.WithChunkSize(-1) }},
		{"no workers", func(c *Config) { c.WithWorkers(0) }},
		{"log2 rows too large", func(c *Config) { c.WithFixedLog2Rows(Uint32SqrChip, maxLog2Rows+1) }},
		{"negative log2 rows", func(c *Config) { c.WithFixedLog2Rows(Uint32SqrChip, -1) }},
		{"bad log level", func(c *Config) { c.WithLogLevel("loud") }},
		{"shard zero", func(c *Config) { c.WithShard(0) }},
		{"shard past memory gap", func(c *Config) { c.WithShard(1<<24 + 1) }},
		{"unknown chip", func(c *Config) { c.WithFixedLog2Rows("Uint32Sqr", 3) }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := DefaultConfig()
			tt.mutate(c)
			assert.Error(t, c.Validate())
		})
	}
}

func TestConfigClone(t *testing.T) {
	c := DefaultConfig().WithChunkSize(8).WithFixedLog2Rows(Uint32SqrChip, 4)
	clone := c.Clone()
	assert.Equal(t, c, clone)

	clone.FixedLog2Rows[Uint32SqrChip] = 5
	clone.WithWorkers(9)
	assert.Equal(t, 4, c.FixedLog2Rows[Uint32SqrChip])
	assert.Equal(t, 4, c.Workers)
}

func TestConfigAcceptsKnownChip(t *testing.T) {
	c := DefaultConfig().WithFixedLog2Rows(Uint32SqrChip, 0).WithShard(1 << 24)
	assert.NoError(t, c.Validate())

	_, err := NewVM(DefaultConfig().WithFixedLog2Rows("Uint32sqrMod", 3))
	assert.ErrorIs(t, err, &VMError{Code: ErrInvalidConfig})
}
