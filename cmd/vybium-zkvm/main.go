package main

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"math/rand"
	"os"
	"strconv"

	"github.com/spf13/cobra"

	vybiumzkvm "github.com/vybium/vybium-zkvm/pkg/vybium-zkvm"
)

var (
	Version = "dev"
)

// Batch input is one JSON object per line, like the prover's stdin protocol
type SqrInput struct {
	X       uint32 `json:"x"`
	Modulus uint32 `json:"modulus"`
}

type SqrOutput struct {
	X       uint32 `json:"x"`
	Modulus uint32 `json:"modulus"`
	Result  uint32 `json:"result"`
}

type RunOutput struct {
	Results  []SqrOutput              `json:"results,omitempty"`
	Tables   []vybiumzkvm.TableSummary `json:"tables"`
	Stats    map[string]int           `json:"stats"`
	Verified bool                     `json:"verified"`
}

// word pair addresses start here and advance by 8 bytes per input
const baseAddr = 0x1000

func main() {
	config := vybiumzkvm.DefaultConfig()
	var fixedLog2 int
	var verify bool

	var rootCmd = &cobra.Command{
		Use:     "vybium-zkvm",
		Short:   "Execute, trace and check the UINT32_SQR precompile",
		Version: Version,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if fixedLog2 >= 0 {
				config.WithFixedLog2Rows(vybiumzkvm.Uint32SqrChip, fixedLog2)
			}
			return config.Validate()
		},
		SilenceUsage: true,
	}
	rootCmd.CompletionOptions.DisableDefaultCmd = true

	flags := rootCmd.PersistentFlags()
	flags.IntVar(&config.ChunkSize, "chunk-size", config.ChunkSize, "Events per trace generation task (0 = one chunk)")
	flags.IntVar(&config.Workers, "workers", config.Workers, "Concurrent trace generation tasks")
	flags.StringVar(&config.LogLevel, "log-level", config.LogLevel, "Log level: trace, debug, info, warn, error")
	flags.Uint32Var(&config.Shard, "shard", config.Shard, "Shard index (shard 0 is reserved)")
	flags.IntVar(&fixedLog2, "fixed-log2-rows", -1, "Pin the log2 height of the UINT32_SQR table (-1 = next power of two)")
	flags.BoolVar(&verify, "verify", true, "Check constraints and bus balance after execution")

	var sqrmodCmd = &cobra.Command{
		Use:   "sqrmod X MODULUS",
		Short: "Square X modulo MODULUS (0 means 2^32)",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			x, err := parseWord(args[0])
			if err != nil {
				return err
			}
			modulus, err := parseWord(args[1])
			if err != nil {
				return err
			}
			out, err := run(config, []SqrInput{{X: x, Modulus: modulus}}, verify)
			if err != nil {
				return err
			}
			return writeJSON(cmd.OutOrStdout(), out)
		},
	}

	var batchCmd = &cobra.Command{
		Use:   "batch",
		Short: "Read {\"x\":..,\"modulus\":..} lines from stdin and run each one",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			inputs, err := readInputs(cmd.InOrStdin())
			if err != nil {
				return err
			}
			logStderr(fmt.Sprintf("Read %d inputs", len(inputs)))
			out, err := run(config, inputs, verify)
			if err != nil {
				return err
			}
			return writeJSON(cmd.OutOrStdout(), out)
		},
	}

	var count int
	var seed int64
	var zeroModulus bool
	var traceCmd = &cobra.Command{
		Use:   "trace",
		Short: "Run a seeded random sweep and print the trace summary",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			rng := rand.New(rand.NewSource(seed))
			inputs := make([]SqrInput, count)
			for i := range inputs {
				inputs[i].X = rng.Uint32()
				if !zeroModulus {
					inputs[i].Modulus = rng.Uint32()
				}
			}
			out, err := run(config, inputs, verify)
			if err != nil {
				return err
			}
			out.Results = nil
			return writeJSON(cmd.OutOrStdout(), out)
		},
	}
	traceCmd.Flags().IntVar(&count, "count", 100, "Number of random inputs")
	traceCmd.Flags().Int64Var(&seed, "seed", 1, "Random seed")
	traceCmd.Flags().BoolVar(&zeroModulus, "zero-modulus", false, "Use modulus 0 (wrapping square) for every input")

	rootCmd.AddCommand(sqrmodCmd, batchCmd, traceCmd)

	if err := rootCmd.Execute(); err != nil {
		fatal(err.Error())
	}
}

// run seeds every input at its own word pair, squares them in order and
// generates the trace
func run(config *vybiumzkvm.Config, inputs []SqrInput, verify bool) (*RunOutput, error) {
	vm, err := vybiumzkvm.NewVM(config)
	if err != nil {
		return nil, err
	}

	for i, in := range inputs {
		xPtr := uint32(baseAddr + 8*i)
		if err := vm.StoreWord(xPtr, in.X); err != nil {
			return nil, err
		}
		if err := vm.StoreWord(xPtr+4, in.Modulus); err != nil {
			return nil, err
		}
	}

	out := &RunOutput{Results: make([]SqrOutput, 0, len(inputs))}
	for i, in := range inputs {
		xPtr := uint32(baseAddr + 8*i)
		if err := vm.SqrMod(xPtr, xPtr+4); err != nil {
			return nil, err
		}
		result, err := vm.LoadWord(xPtr)
		if err != nil {
			return nil, err
		}
		out.Results = append(out.Results, SqrOutput{X: in.X, Modulus: in.Modulus, Result: result})
	}
	logStderr(fmt.Sprintf("Executed %d syscalls in %d cycles", len(inputs), vm.GetState().Clk))

	summary, err := vm.GenerateTrace()
	if err != nil {
		return nil, err
	}
	out.Tables = summary.Tables
	out.Stats = summary.Stats

	if verify {
		if _, err := vm.Verify(); err != nil {
			return nil, err
		}
		out.Verified = true
		logStderr("Shard verified")
	}
	return out, nil
}

func readInputs(r io.Reader) ([]SqrInput, error) {
	var inputs []SqrInput
	scanner := bufio.NewScanner(r)
	for line := 1; scanner.Scan(); line++ {
		if len(scanner.Bytes()) == 0 {
			continue
		}
		var in SqrInput
		if err := json.Unmarshal(scanner.Bytes(), &in); err != nil {
			return nil, fmt.Errorf("failed to parse line %d: %w", line, err)
		}
		inputs = append(inputs, in)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read input: %w", err)
	}
	return inputs, nil
}

// parseWord accepts decimal, 0x hex, 0o octal and 0b binary words
func parseWord(s string) (uint32, error) {
	v, err := strconv.ParseUint(s, 0, 32)
	if err != nil {
		return 0, fmt.Errorf("invalid word %q: %w", s, err)
	}
	return uint32(v), nil
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func logStderr(msg string) {
	fmt.Fprintln(os.Stderr, "vybium-zkvm:", msg)
}

func fatal(msg string) {
	logStderr("ERROR: " + msg)
	os.Exit(1)
}
