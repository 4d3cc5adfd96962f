package emulator

import (
	"os"

	"gopkg.in/yaml.v3"

	"github.com/ezrec/pl0fx/fixed"
	"github.com/ezrec/pl0fx/provider"
)

// ProviderSelect picks which provider contracts get attached.
type ProviderSelect struct {
	// Use selects the architecture: "", "none", "binary", "unary",
	// or "both".
	Use string `yaml:"use"`

	provider.Config `yaml:",inline"`
}

// Config is the YAML configuration surface for an emulator: the
// fixed-point scale, compilation base address, runaway bound, and the
// provider selection with its mixing and fallback policy.
type Config struct {
	Scale    int64          `yaml:"scale"`
	Base     int            `yaml:"base"`
	MaxSteps int            `yaml:"max_steps"`
	Provider ProviderSelect `yaml:"provider"`
}

// LoadConfig reads and decodes a YAML configuration file.
func LoadConfig(path string) (cfg *Config, err error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return
	}

	return ParseConfig(data)
}

// ParseConfig decodes YAML configuration bytes, filling defaults.
func ParseConfig(data []byte) (cfg *Config, err error) {
	cfg = &Config{}

	err = yaml.Unmarshal(data, cfg)
	if err != nil {
		cfg = nil
		return
	}

	if cfg.Scale == 0 {
		cfg.Scale = fixed.DEFAULT_SCALE
	}
	if cfg.MaxSteps == 0 {
		cfg.MaxSteps = DEFAULT_MAX_STEPS
	}
	if cfg.Provider.Config.Scale == 0 {
		cfg.Provider.Config.Scale = cfg.Scale
	}

	return
}

// Configure applies a configuration to the emulator, attaching the
// selected providers around the given estimators. A nil estimator
// leaves that contract unattached regardless of the selection.
func (emu *Emulator) Configure(cfg *Config, bin provider.BinaryEstimator, un provider.UnaryEstimator) {
	emu.Scale = cfg.Scale
	emu.Base = cfg.Base

	useBinary := cfg.Provider.Use == "binary" || cfg.Provider.Use == "both"
	useUnary := cfg.Provider.Use == "unary" || cfg.Provider.Use == "both"

	emu.Binary = nil
	emu.Unary = nil

	if useBinary && bin != nil {
		emu.Binary = provider.NewBinary(bin, cfg.Provider.Config)
	}
	if useUnary && un != nil {
		emu.Unary = provider.NewUnary(un, cfg.Provider.Config)
	}
}
