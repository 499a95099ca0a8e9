package config

// Package config provides a reusable loader for stylusctor's configuration
// files and environment variables. It is versioned so that applications can
// depend on a stable API contract.
//
// Version: v0.1.0

import (
	"os"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"stylusctor/pkg/utils"
)

// Version is the semantic version of this configuration package.
const Version = "v0.1.0"

// Config represents the unified configuration for the stylusctor CLI.
type Config struct {
	Solc struct {
		Path    string `yaml:"path" json:"path"`
		AsmArgs string `yaml:"asm_args" json:"asm_args"`
	} `yaml:"solc" json:"solc"`

	Chain struct {
		RPCURL  string `yaml:"rpc_url" json:"rpc_url"`
		ChainID int64  `yaml:"chain_id" json:"chain_id"`
		GasCap  uint64 `yaml:"gas_cap" json:"gas_cap"`
	} `yaml:"chain" json:"chain"`

	Activation struct {
		MagicHex string `yaml:"magic_hex" json:"magic_hex"`
		Version  int    `yaml:"version" json:"version"`
	} `yaml:"activation" json:"activation"`

	Logging struct {
		Level string `yaml:"level" json:"level"`
		File  string `yaml:"file" json:"file"`
	} `yaml:"logging" json:"logging"`
}

// AppConfig holds the configuration loaded via Load or LoadFromEnv.
var AppConfig Config

// defaults seeds AppConfig with values sane enough to run against a local
// devnode before any file or environment override is applied.
func defaults() Config {
	var c Config
	c.Solc.Path = "solc"
	c.Solc.AsmArgs = "--asm"
	c.Chain.RPCURL = "http://127.0.0.1:8545"
	c.Chain.ChainID = 412346
	c.Chain.GasCap = 30_000_000
	c.Activation.MagicHex = "004556"
	c.Activation.Version = 1
	c.Logging.Level = "info"
	return c
}

// Load reads the YAML configuration file at path, if non-empty and present,
// over top of the built-in defaults, then layers environment-variable
// overrides (via .env through godotenv, then the process environment). The
// resulting configuration is stored in AppConfig and returned.
func Load(path string) (*Config, error) {
	cfg := defaults()

	if path != "" {
		b, err := os.ReadFile(path)
		if err != nil {
			if !os.IsNotExist(err) {
				return nil, utils.Wrap(err, "read config file")
			}
		} else if err := yaml.Unmarshal(b, &cfg); err != nil {
			return nil, utils.Wrap(err, "parse config file")
		}
	}

	_ = godotenv.Load() // best effort; absence of .env is not an error

	cfg.Solc.Path = utils.EnvOrDefault("STYLUSCTOR_SOLC_PATH", cfg.Solc.Path)
	cfg.Chain.RPCURL = utils.EnvOrDefault("STYLUSCTOR_RPC_URL", cfg.Chain.RPCURL)
	cfg.Chain.ChainID = int64(utils.EnvOrDefaultInt("STYLUSCTOR_CHAIN_ID", int(cfg.Chain.ChainID)))
	cfg.Chain.GasCap = utils.EnvOrDefaultUint64("STYLUSCTOR_GAS_CAP", cfg.Chain.GasCap)
	cfg.Activation.MagicHex = utils.EnvOrDefault("STYLUSCTOR_ACTIVATION_MAGIC", cfg.Activation.MagicHex)
	cfg.Activation.Version = utils.EnvOrDefaultInt("STYLUSCTOR_ACTIVATION_VERSION", cfg.Activation.Version)
	cfg.Logging.Level = utils.EnvOrDefault("STYLUSCTOR_LOG_LEVEL", cfg.Logging.Level)
	cfg.Logging.File = utils.EnvOrDefault("STYLUSCTOR_LOG_FILE", cfg.Logging.File)

	AppConfig = cfg
	return &AppConfig, nil
}

// LoadFromEnv loads configuration using the STYLUSCTOR_CONFIG environment
// variable to locate the config file, if any.
func LoadFromEnv() (*Config, error) {
	return Load(utils.EnvOrDefault("STYLUSCTOR_CONFIG", ""))
}
