package config

import (
	"bytes"
	_ "embed"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/go-playground/validator/v10"
	"github.com/mitchellh/mapstructure"
	"github.com/rs/zerolog"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/tapnet/tap-core/model/eip712"
	"github.com/tapnet/tap-core/model/tap"
)

const configFileFlagName = "config-file"

var (
	//go:embed default-config.yml
	configFile string

	// ErrInvalidConfig is returned when the loaded configuration does not pass validation.
	ErrInvalidConfig = errors.New("invalid configuration")
)

// TapConfig is the configuration of the receipt core.
type TapConfig struct {
	// ConfigFile is the path of an optional yaml file overriding the defaults.
	ConfigFile string     `validate:"omitempty,file" mapstructure:"config-file"`
	Core       CoreConfig `mapstructure:"tap-config"`
}

// CoreConfig holds the receipt processing parameters.
type CoreConfig struct {
	LogLevel             string        `validate:"oneof=debug info warn error" mapstructure:"log-level"`
	ChainID              uint64        `validate:"gt=0" mapstructure:"chain-id"`
	VerifyingContract    string        `validate:"eth_addr" mapstructure:"verifying-contract"`
	CheckParallelism     uint          `validate:"gt=0" mapstructure:"check-parallelism"`
	CheckTimeout         time.Duration `validate:"gte=0" mapstructure:"check-timeout"`
	RevalidateUniqueness bool          `mapstructure:"revalidate-uniqueness"`
	AppraisalCacheSize   uint          `validate:"gt=0" mapstructure:"appraisal-cache-size"`
	DataDir              string        `validate:"required" mapstructure:"datadir"`
}

// Domain returns the EIP-712 domain of the configured chain and verifier contract.
func (c CoreConfig) Domain() eip712.Domain {
	return tap.NewDomain(c.ChainID, common.HexToAddress(c.VerifyingContract))
}

// Level returns the configured log level.
func (c CoreConfig) Level() zerolog.Level {
	level, err := zerolog.ParseLevel(c.LogLevel)
	if err != nil {
		return zerolog.InfoLevel
	}
	return level
}

// Validate runs all validation tags of the configuration.
func (c *TapConfig) Validate() error {
	validate := validator.New()
	if err := validate.Struct(c); err != nil {
		var validationErrs validator.ValidationErrors
		if errors.As(err, &validationErrs) {
			msgs := make([]string, 0, len(validationErrs))
			for _, e := range validationErrs {
				msgs = append(msgs, fmt.Sprintf("%s failed %q", e.Namespace(), e.Tag()))
			}
			return fmt.Errorf("%s: %w", strings.Join(msgs, "; "), ErrInvalidConfig)
		}
		return fmt.Errorf("could not validate config: %w", err)
	}
	return nil
}

// DefaultConfig returns the configuration embedded in the binary.
func DefaultConfig() (*TapConfig, error) {
	conf, err := rawViperConfig()
	if err != nil {
		return nil, err
	}
	return unmarshal(conf)
}

// Load reads the default configuration, merges the config file named by the
// config-file flag if set, and applies the flags changed on the command line.
// Expected errors:
//   - ErrInvalidConfig if the resulting configuration does not validate
func Load(flags *pflag.FlagSet) (*TapConfig, error) {
	conf, err := rawViperConfig()
	if err != nil {
		return nil, err
	}

	if flags.Lookup(configFileFlagName) != nil {
		path, err := flags.GetString(configFileFlagName)
		if err != nil {
			return nil, fmt.Errorf("could not read config file flag: %w", err)
		}
		if path != "" {
			conf.SetConfigFile(path)
			if err := conf.MergeInConfig(); err != nil {
				return nil, fmt.Errorf("could not merge config file %s: %w", path, err)
			}
			conf.Set(configFileFlagName, path)
		}
	}

	if err := applyFlags(conf, flags); err != nil {
		return nil, err
	}

	return unmarshal(conf)
}

func rawViperConfig() (*viper.Viper, error) {
	conf := viper.New()
	conf.SetConfigType("yaml")
	if err := conf.ReadConfig(bytes.NewBufferString(configFile)); err != nil {
		return nil, fmt.Errorf("could not read default config: %w", err)
	}
	return conf, nil
}

func unmarshal(conf *viper.Viper) (*TapConfig, error) {
	config := &TapConfig{}
	err := conf.Unmarshal(config, func(decoderConfig *mapstructure.DecoderConfig) {
		// enforce all fields are set on the TapConfig struct
		decoderConfig.ErrorUnused = true
	})
	if err != nil {
		return nil, fmt.Errorf("could not unmarshal config: %w", err)
	}
	if err := config.Validate(); err != nil {
		return nil, err
	}
	return config, nil
}
