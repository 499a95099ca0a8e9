package config

import (
	"os"
	"testing"

	"stylusctor/internal/testutil"
)

func TestLoadConfigDefaults(t *testing.T) {
	LoadConfig("")
	if AppConfig.Solc.Path != "solc" {
		t.Fatalf("expected default solc path, got %q", AppConfig.Solc.Path)
	}
	if AppConfig.Chain.ChainID != 412346 {
		t.Fatalf("expected default chain id 412346, got %d", AppConfig.Chain.ChainID)
	}
}

func TestLoadConfigOverrideFile(t *testing.T) {
	sb, err := testutil.NewSandbox()
	if err != nil {
		t.Fatalf("NewSandbox failed: %v", err)
	}
	defer sb.Cleanup()

	data := []byte("solc:\n  path: /opt/solc/solc\nchain:\n  rpc_url: http://example:8545\n  chain_id: 42161\n")
	if err := sb.WriteFile("stylusctor.yaml", data, 0600); err != nil {
		t.Fatalf("WriteFile failed: %v", err)
	}

	LoadConfig(sb.Path("stylusctor.yaml"))

	if AppConfig.Solc.Path != "/opt/solc/solc" {
		t.Fatalf("expected overridden solc path, got %q", AppConfig.Solc.Path)
	}
	if AppConfig.Chain.RPCURL != "http://example:8545" {
		t.Fatalf("expected overridden rpc url, got %q", AppConfig.Chain.RPCURL)
	}
	if AppConfig.Chain.ChainID != 42161 {
		t.Fatalf("expected overridden chain id, got %d", AppConfig.Chain.ChainID)
	}
}

func TestLoadConfigEnvOverride(t *testing.T) {
	os.Setenv("STYLUSCTOR_RPC_URL", "http://env-override:9545")
	defer os.Unsetenv("STYLUSCTOR_RPC_URL")

	LoadConfig("")

	if AppConfig.Chain.RPCURL != "http://env-override:9545" {
		t.Fatalf("expected env-overridden rpc url, got %q", AppConfig.Chain.RPCURL)
	}
}
