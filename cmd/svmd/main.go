package main

// -----------------------------------------------------------------------------
// svmd – debug HTTP daemon for the script VM
// -----------------------------------------------------------------------------
// Public commands:
//   svmd start   – launch HTTP daemon
//   svmd stop    – gracefully shut down a daemon started in this process
//   svmd status  – show listen address / uptime of such a daemon
// -----------------------------------------------------------------------------

import (
	"context"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"sync"
	"syscall"
	"time"

	"github.com/gorilla/mux"
	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"golang.org/x/time/rate"

	"synnergy-svm/core"
	pkgconfig "synnergy-svm/pkg/config"
)

var (
	svmdEngine *core.Engine
	svmdChain  *core.InMemoryBlockchain
	svmdSrv    *http.Server

	svmdCtx  context.Context
	svmdStop context.CancelFunc

	svmdListen    string
	svmdDefaultGas core.Fixed8
	svmdStartTime time.Time

	svmdOnce   sync.Once
	svmdLogger = logrus.StandardLogger()
)

func svmdInit(cmd *cobra.Command, _ []string) error {
	var err error
	svmdOnce.Do(func() {
		_ = godotenv.Load()

		cfg, cfgErr := pkgconfig.LoadFromEnv()
		if cfgErr != nil {
			svmdLogger.WithError(cfgErr).Debug("no config file found, using env/defaults")
			cfg = &pkgconfig.Config{}
			cfg.Daemon.ListenAddr = ":9090"
			cfg.Daemon.RateLimitPerSec = 200
			cfg.Daemon.RateLimitBurst = 100
			cfg.VM.DefaultGas = int64(core.NewFixed8(10))
			cfg.Logging.Level = "info"
		}

		lvl := svmdEnvOr("LOG_LEVEL", cfg.Logging.Level)
		lv, e := logrus.ParseLevel(lvl)
		if e != nil {
			err = e
			return
		}
		svmdLogger.SetLevel(lv)
		svmdLogger.SetFormatter(&logrus.JSONFormatter{})

		svmdListen = svmdEnvOr("SVMD_LISTEN", cfg.Daemon.ListenAddr)
		svmdDefaultGas = core.Fixed8(int64(svmdEnvOrUint64("SVMD_DEFAULT_GAS", uint64(cfg.VM.DefaultGas))))
		svmdLimiter = rate.NewLimiter(rate.Limit(cfg.Daemon.RateLimitPerSec), cfg.Daemon.RateLimitBurst)

		svmdChain = core.NewInMemoryBlockchain()
		svmdEngine = core.NewEngine(svmdChain)

		r := mux.NewRouter()
		r.Use(svmdRateLimit)
		r.HandleFunc("/execute", svmdExecuteHandler).Methods("POST")
		r.HandleFunc("/step", svmdStepHandler).Methods("POST")
		r.HandleFunc("/catalogue/opcodes", svmdOpcodesHandler).Methods("GET")
		r.HandleFunc("/catalogue/syscalls", svmdSyscallsHandler).Methods("GET")

		svmdSrv = &http.Server{
			Addr:         svmdListen,
			Handler:      r,
			ReadTimeout:  5 * time.Second,
			WriteTimeout: 15 * time.Second,
			IdleTimeout:  30 * time.Second,
		}
	})
	return err
}

func svmdEnvOr(k, d string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return d
}

func svmdEnvOrUint64(k string, def uint64) uint64 {
	if v := os.Getenv(k); v != "" {
		if n, err := strconv.ParseUint(v, 10, 64); err == nil {
			return n
		}
	}
	return def
}

var svmdLimiter = rate.NewLimiter(200, 100) // replaced with config-derived limits in svmdInit

func svmdRateLimit(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !svmdLimiter.Allow() {
			http.Error(w, "rate limit", http.StatusTooManyRequests)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// executeRequest is the wire shape POSTed to /execute: a hex script, the
// invoking script hash, a gas budget, and pushOnly/trigger flags.
type executeRequest struct {
	Script     string `json:"script"`
	ScriptHash string `json:"scriptHash"`
	Gas        int64  `json:"gas"`
	PushOnly   bool   `json:"pushOnly"`
	Trigger    string `json:"trigger"` // "verification" | "application"
}

type executeResponse struct {
	State       string        `json:"state"`
	Stack       []interface{} `json:"stack"`
	Actions     []core.Action `json:"actions"`
	GasConsumed int64         `json:"gasConsumed"`
	Fault       string        `json:"fault,omitempty"`
}

// svmdParseExecuteRequest decodes and validates the common /execute and
// /step request body, returning the decoded script, its attributed hash,
// the init bundle, and the effective gas budget.
func svmdParseExecuteRequest(r *http.Request) (req executeRequest, code []byte, sh core.UInt160, init core.InitBundle, gas core.Fixed8, err error) {
	if err = json.NewDecoder(r.Body).Decode(&req); err != nil {
		return
	}
	code, err = hex.DecodeString(req.Script)
	if err != nil {
		err = fmt.Errorf("bad script hex: %w", err)
		return
	}
	shBytes, err := hex.DecodeString(req.ScriptHash)
	if err != nil {
		err = fmt.Errorf("bad scriptHash hex: %w", err)
		return
	}
	sh, err = core.UInt160FromBytes(shBytes)
	if err != nil {
		return
	}

	trigger := core.TriggerApplication
	if req.Trigger == "verification" {
		trigger = core.TriggerVerification
	}
	init = core.InitBundle{
		ScriptContainer: core.ScriptContainer{
			Kind:        core.ContainerTransaction,
			Transaction: &core.Transaction{Type: core.TxInvocation},
		},
		Trigger: trigger,
	}

	gas = core.Fixed8(req.Gas)
	if gas == 0 {
		gas = svmdDefaultGas
	}
	return
}

func svmdResultToResponse(result *core.RunResult) executeResponse {
	resp := executeResponse{
		State:       result.State.String(),
		GasConsumed: int64(result.GasConsumed),
		Actions:     result.Actions,
	}
	if result.FaultErr != nil {
		resp.Fault = result.FaultErr.Error()
	}
	for _, item := range result.Stack {
		resp.Stack = append(resp.Stack, item.ToContractParameter())
	}
	return resp
}

func svmdExecuteHandler(w http.ResponseWriter, r *http.Request) {
	req, code, sh, init, gas, err := svmdParseExecuteRequest(r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	result := svmdEngine.ExecuteScript(init, code, sh, gas, req.PushOnly)

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(svmdResultToResponse(result))
}

// stepResponse is executeResponse plus the per-instruction trace (§3
// "single-step debug execution"): one "pc opcode" line per dispatched
// instruction, in execution order.
type stepResponse struct {
	executeResponse
	Trace []string `json:"trace"`
}

// svmdStepHandler runs the request's script on a request-scoped engine (not
// the shared svmdEngine) so concurrent /step calls don't race setting
// Engine.Trace, recording one line per instruction as it dispatches.
func svmdStepHandler(w http.ResponseWriter, r *http.Request) {
	req, code, sh, init, gas, err := svmdParseExecuteRequest(r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	var trace []string
	engine := core.NewEngine(svmdChain)
	engine.Trace = func(pc uint32, op core.Opcode) {
		trace = append(trace, fmt.Sprintf("%04d %s", pc, op))
	}
	result := engine.ExecuteScript(init, code, sh, gas, req.PushOnly)

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(stepResponse{executeResponse: svmdResultToResponse(result), Trace: trace})
}

func svmdOpcodesHandler(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(core.Opcodes())
}

func svmdSyscallsHandler(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(core.Syscalls())
}

func svmdHandleStart(cmd *cobra.Command, _ []string) error {
	if svmdSrv == nil {
		return errors.New("daemon not initialised")
	}
	if svmdCtx != nil {
		fmt.Fprintln(cmd.OutOrStdout(), "svmd already running")
		return nil
	}
	svmdCtx, svmdStop = context.WithCancel(context.Background())
	go func() {
		if err := svmdSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			svmdLogger.Fatalf("svmd http: %v", err)
		}
	}()
	svmdStartTime = time.Now()
	fmt.Fprintf(cmd.OutOrStdout(), "svmd started on %s\n", svmdSrv.Addr)
	return nil
}

// svmdHandleStartForeground is what the "start" subcommand runs: it brings
// the daemon up and blocks until SIGINT/SIGTERM, then shuts down gracefully.
func svmdHandleStartForeground(cmd *cobra.Command, args []string) error {
	if err := svmdHandleStart(cmd, args); err != nil {
		return err
	}
	sig := make(chan os.Signal, 1)
	signal.Notify(sig, os.Interrupt, syscall.SIGTERM)
	<-sig
	return svmdHandleStop(cmd, args)
}

func svmdHandleStop(cmd *cobra.Command, _ []string) error {
	if svmdCtx == nil {
		fmt.Fprintln(cmd.OutOrStdout(), "svmd not running")
		return nil
	}
	svmdStop()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	_ = svmdSrv.Shutdown(ctx)
	svmdCtx, svmdStop = nil, nil
	fmt.Fprintln(cmd.OutOrStdout(), "svmd stopped")
	return nil
}

func svmdHandleStatus(cmd *cobra.Command, _ []string) error {
	running := svmdCtx != nil
	uptime := time.Since(svmdStartTime).Truncate(time.Second)
	fmt.Fprintf(cmd.OutOrStdout(), "running: %v\nlisten: %s\nuptime: %s\n", running, svmdSrv.Addr, uptime)
	return nil
}

var svmdRootCmd = &cobra.Command{Use: "svmd", Short: "Debug HTTP service for the script VM", PersistentPreRunE: svmdInit}
var svmdStartCmd = &cobra.Command{Use: "start", Short: "Start daemon and block until interrupted", Args: cobra.NoArgs, RunE: svmdHandleStartForeground}
var svmdStopCmd = &cobra.Command{Use: "stop", Short: "Stop daemon", Args: cobra.NoArgs, RunE: svmdHandleStop}
var svmdStatusCmd = &cobra.Command{Use: "status", Short: "Status", Args: cobra.NoArgs, RunE: svmdHandleStatus}

func init() { svmdRootCmd.AddCommand(svmdStartCmd, svmdStopCmd, svmdStatusCmd) }

func main() {
	if err := svmdRootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
