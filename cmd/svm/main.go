package main

// -----------------------------------------------------------------------------
// svm – command-line front end for the script VM
// -----------------------------------------------------------------------------
// Commands:
//   svm run <script.hex>        – execute a script and print its RunResult
//   svm step <script.hex>       – execute a script, printing one line per
//                                 instruction, then its RunResult
//   svm catalogue opcodes       – list the opcode table with gas costs
//   svm catalogue syscalls      – list the syscall table with gas costs
// -----------------------------------------------------------------------------

import (
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"synnergy-svm/core"
)

var svmLog = logrus.WithField("component", "svm-cli")

var rootCmd = &cobra.Command{Use: "svm", Short: "Run scripts against the script VM"}

var (
	flagGas        int64
	flagPushOnly   bool
	flagScriptHash string
)

var runCmd = &cobra.Command{
	Use:   "run <script-hex-file>",
	Short: "Execute a script and print its result as JSON",
	Args:  cobra.ExactArgs(1),
	RunE:  runScript,
}

var stepCmd = &cobra.Command{
	Use:   "step <script-hex-file>",
	Short: "Execute a script, printing one line per instruction, then its result",
	Args:  cobra.ExactArgs(1),
	RunE:  stepScript,
}

var catalogueCmd = &cobra.Command{Use: "catalogue", Short: "List opcode/syscall tables"}

var catalogueOpcodesCmd = &cobra.Command{
	Use:   "opcodes",
	Short: "List the opcode table",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		return json.NewEncoder(cmd.OutOrStdout()).Encode(core.Opcodes())
	},
}

var catalogueSyscallsCmd = &cobra.Command{
	Use:   "syscalls",
	Short: "List the syscall table",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		return json.NewEncoder(cmd.OutOrStdout()).Encode(core.Syscalls())
	},
}

// loadExecution parses the common run/step flags and arguments into a fresh
// engine and the code/scriptHash/gas triple ExecuteScript needs.
func loadExecution(args []string) (*core.Engine, core.InitBundle, []byte, core.UInt160, core.Fixed8, error) {
	raw, err := os.ReadFile(args[0])
	if err != nil {
		return nil, core.InitBundle{}, nil, core.UInt160{}, 0, err
	}
	code, err := hex.DecodeString(trimNewline(raw))
	if err != nil {
		return nil, core.InitBundle{}, nil, core.UInt160{}, 0, fmt.Errorf("decoding script hex: %w", err)
	}

	var sh core.UInt160
	if flagScriptHash != "" {
		shBytes, err := hex.DecodeString(flagScriptHash)
		if err != nil {
			return nil, core.InitBundle{}, nil, core.UInt160{}, 0, fmt.Errorf("decoding --script-hash: %w", err)
		}
		sh, err = core.UInt160FromBytes(shBytes)
		if err != nil {
			return nil, core.InitBundle{}, nil, core.UInt160{}, 0, err
		}
	}

	gas := core.Fixed8(flagGas)
	if gas == 0 {
		gas = core.NewFixed8(10)
	}

	chain := core.NewInMemoryBlockchain()
	engine := core.NewEngine(chain)
	init := core.InitBundle{
		ScriptContainer: core.ScriptContainer{
			Kind:        core.ContainerTransaction,
			Transaction: &core.Transaction{Type: core.TxInvocation},
		},
		Trigger: core.TriggerApplication,
	}
	return engine, init, code, sh, gas, nil
}

func encodeResult(w io.Writer, result *core.RunResult) error {
	out := struct {
		State       string        `json:"state"`
		Stack       []interface{} `json:"stack"`
		GasConsumed int64         `json:"gasConsumed"`
		Fault       string        `json:"fault,omitempty"`
	}{
		State:       result.State.String(),
		GasConsumed: int64(result.GasConsumed),
	}
	if result.FaultErr != nil {
		out.Fault = result.FaultErr.Error()
	}
	for _, item := range result.Stack {
		out.Stack = append(out.Stack, item.ToContractParameter())
	}
	return json.NewEncoder(w).Encode(out)
}

func runScript(cmd *cobra.Command, args []string) error {
	engine, init, code, sh, gas, err := loadExecution(args)
	if err != nil {
		return err
	}
	result := engine.ExecuteScript(init, code, sh, gas, flagPushOnly)
	svmLog.WithField("state", result.State.String()).Debug("execution finished")
	return encodeResult(cmd.OutOrStdout(), result)
}

// stepScript runs the same execution as "run" but installs an engine.Trace
// hook that prints one "pc opcode" line per instruction as it dispatches,
// followed by the final RunResult JSON.
func stepScript(cmd *cobra.Command, args []string) error {
	engine, init, code, sh, gas, err := loadExecution(args)
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()
	engine.Trace = func(pc uint32, op core.Opcode) {
		fmt.Fprintf(out, "%04d %s\n", pc, op)
	}
	result := engine.ExecuteScript(init, code, sh, gas, flagPushOnly)
	svmLog.WithField("state", result.State.String()).Debug("execution finished")
	return encodeResult(out, result)
}

func trimNewline(b []byte) string {
	n := len(b)
	for n > 0 && (b[n-1] == '\n' || b[n-1] == '\r' || b[n-1] == ' ') {
		n--
	}
	return string(b[:n])
}

func init() {
	for _, c := range []*cobra.Command{runCmd, stepCmd} {
		c.Flags().Int64Var(&flagGas, "gas", 0, "gas budget in Fixed8 units (default 10 GAS)")
		c.Flags().BoolVar(&flagPushOnly, "push-only", false, "restrict execution to push-only opcodes")
		c.Flags().StringVar(&flagScriptHash, "script-hash", "", "hex UInt160 to attribute the script to")
	}

	catalogueCmd.AddCommand(catalogueOpcodesCmd, catalogueSyscallsCmd)
	rootCmd.AddCommand(runCmd, stepCmd, catalogueCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
