package vybiumzkvm

import (
	"fmt"
	"maps"

	"github.com/vybium/vybium-zkvm/internal/vybium-zkvm/core"
	"github.com/vybium/vybium-zkvm/internal/vybium-zkvm/utils"
)

// maxLog2Rows bounds fixed trace heights
const maxLog2Rows = 24

// Config represents the configuration of the VM and its trace generation
type Config struct {
	// ChunkSize is the number of events populated per worker task; 0 means one chunk
	ChunkSize int

	// Workers bounds the number of concurrently populated chunks
	Workers int

	// FixedLog2Rows pins the log2 height of named chips, forcing their inclusion
	FixedLog2Rows map[string]int

	// LogLevel is one of trace, debug, info, warn, error
	LogLevel string

	// Shard is the shard index of the run; shard 0 is the initial memory image
	Shard uint32
}

// DefaultConfig returns a default configuration
func DefaultConfig() *Config {
	return &Config{
		ChunkSize: 256,
		Workers:   4,
		LogLevel:  "info",
		Shard:     1,
	}
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	if c.ChunkSize < 0 {
		return fmt.Errorf("chunk size must not be negative, got %d", c.ChunkSize)
	}

	if c.Workers <= 0 {
		return fmt.Errorf("workers must be positive, got %d", c.Workers)
	}

	for chip, h := range c.FixedLog2Rows {
		if !knownChip(chip) {
			return fmt.Errorf("unknown chip %q in fixed log2 rows", chip)
		}
		if h < 0 || h > maxLog2Rows {
			return fmt.Errorf("log2 rows of %s must be in [0, %d], got %d", chip, maxLog2Rows, h)
		}
	}

	if _, err := utils.ParseLevel(c.LogLevel); err != nil {
		return err
	}

	if c.Shard == 0 {
		return fmt.Errorf("shard 0 is reserved for the initial memory image")
	}

	// memory columns store the shard gap to the initial image in 24 bits
	if c.Shard > core.MaxClkDiff {
		return fmt.Errorf("shard must be at most %d, got %d", core.MaxClkDiff, c.Shard)
	}

	return nil
}

// WithChunkSize sets the chunk size
func (c *Config) WithChunkSize(size int) *Config {
	c.ChunkSize = size
	return c
}

// WithWorkers sets the number of workers
func (c *Config) WithWorkers(workers int) *Config {
	c.Workers = workers
	return c
}

// WithFixedLog2Rows pins the log2 height of a chip
func (c *Config) WithFixedLog2Rows(chip string, log2Rows int) *Config {
	if c.FixedLog2Rows == nil {
		c.FixedLog2Rows = make(map[string]int)
	}
	c.FixedLog2Rows[chip] = log2Rows
	return c
}

// WithLogLevel sets the log level
func (c *Config) WithLogLevel(level string) *Config {
	c.LogLevel = level
	return c
}

// WithShard sets the shard index
func (c *Config) WithShard(shard uint32) *Config {
	c.Shard = shard
	return c
}

// Clone creates a copy of the configuration
func (c *Config) Clone() *Config {
	return &Config{
		ChunkSize:     c.ChunkSize,
		Workers:       c.Workers,
		FixedLog2Rows: maps.Clone(c.FixedLog2Rows),
		LogLevel:      c.LogLevel,
		Shard:         c.Shard,
	}
}

func knownChip(name string) bool {
	return name == Uint32SqrChip
}
