package main

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	vybiumzkvm "github.com/vybium/vybium-zkvm/pkg/vybium-zkvm"
)

func TestParseWord(t *testing.T) {
	tests := []struct {
		in   string
		want uint32
		ok   bool
	}{
		{"5", 5, true},
		{"0xFFFFFFFF", 0xFFFFFFFF, true},
		{"0b101", 5, true},
		{"4294967296", 0, false},
		{"-1", 0, false},
		{"x", 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := parseWord(tt.in)
			if !tt.ok {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestReadInputs(t *testing.T) {
	inputs, err := readInputs(strings.NewReader("{\"x\":3,\"modulus\":5}\n\n{\"x\":7,\"modulus\":0}\n"))
	require.NoError(t, err)
	assert.Equal(t, []SqrInput{{X: 3, Modulus: 5}, {X: 7, Modulus: 0}}, inputs)

	_, err = readInputs(strings.NewReader("{\"x\":3,\n"))
	assert.ErrorContains(t, err, "line 1")
}

func TestRun(t *testing.T) {
	config := vybiumzkvm.DefaultConfig().WithLogLevel("error").WithChunkSize(1)
	out, err := run(config, []SqrInput{{3, 5}, {0xFFFFFFFF, 0}, {10, 7}}, true)
	require.NoError(t, err)

	assert.True(t, out.Verified)
	assert.Equal(t, []SqrOutput{
		{X: 3, Modulus: 5, Result: 4},
		{X: 0xFFFFFFFF, Modulus: 0, Result: 1},
		{X: 10, Modulus: 7, Result: 2},
	}, out.Results)
	require.Len(t, out.Tables, 1)
	assert.Equal(t, 4, out.Tables[0].Height)
}
