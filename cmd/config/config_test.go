package config

import (
	"os"
	"testing"

	"github.com/spf13/viper"

	"synnergy-svm/internal/testutil"
)

func TestLoadConfigDefault(t *testing.T) {
	wd, err := os.Getwd()
	if err != nil {
		t.Fatalf("Getwd failed: %v", err)
	}
	defer os.Chdir(wd)
	viper.Reset()

	if err := os.Chdir(".."); err != nil {
		t.Fatalf("chdir failed: %v", err)
	}
	LoadConfig("")
	if AppConfig.Daemon.ListenAddr != ":9090" {
		t.Fatalf("unexpected listen addr: %s", AppConfig.Daemon.ListenAddr)
	}
}

func TestLoadConfigOverride(t *testing.T) {
	wd, err := os.Getwd()
	if err != nil {
		t.Fatalf("Getwd failed: %v", err)
	}
	defer os.Chdir(wd)
	viper.Reset()

	if err := os.Chdir(".."); err != nil {
		t.Fatalf("chdir failed: %v", err)
	}
	LoadConfig("bootstrap")
	if AppConfig.Daemon.RateLimitBurst != 250 {
		t.Fatalf("expected RateLimitBurst 250, got %d", AppConfig.Daemon.RateLimitBurst)
	}
	if AppConfig.Daemon.ListenAddr != ":9091" {
		t.Fatalf("expected listen addr override")
	}
}

func TestLoadConfigSandbox(t *testing.T) {
	sb, err := testutil.NewSandbox()
	if err != nil {
		t.Fatalf("NewSandbox failed: %v", err)
	}
	defer sb.Cleanup()

	if err := os.Mkdir(sb.Path("config"), 0700); err != nil {
		t.Fatalf("Mkdir failed: %v", err)
	}

	data := []byte("vm:\n  default_gas: 777\ndaemon:\n  listen_addr: \":1234\"\n")
	if err := sb.WriteFile("config/default.yaml", data, 0600); err != nil {
		t.Fatalf("WriteFile failed: %v", err)
	}

	wd, err := os.Getwd()
	if err != nil {
		t.Fatalf("Getwd failed: %v", err)
	}
	defer os.Chdir(wd)
	viper.Reset()

	if err := os.Chdir(sb.Root); err != nil {
		t.Fatalf("chdir failed: %v", err)
	}
	LoadConfig("")

	if AppConfig.VM.DefaultGas != 777 {
		t.Fatalf("expected DefaultGas 777, got %d", AppConfig.VM.DefaultGas)
	}
	if AppConfig.Daemon.ListenAddr != ":1234" {
		t.Fatalf("expected listen addr :1234, got %s", AppConfig.Daemon.ListenAddr)
	}
}
