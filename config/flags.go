package config

import (
	"fmt"
	"strings"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

const (
	// All constant strings are used for CLI flag names and corresponding keys for config values.
	logLevel             = "log-level"
	chainID              = "chain-id"
	verifyingContract    = "verifying-contract"
	checkParallelism     = "check-parallelism"
	checkTimeout         = "check-timeout"
	revalidateUniqueness = "revalidate-uniqueness"
	appraisalCacheSize   = "appraisal-cache-size"
	dataDir              = "datadir"
)

func AllFlagNames() []string {
	return []string{
		logLevel, chainID, verifyingContract, checkParallelism, checkTimeout, revalidateUniqueness, appraisalCacheSize, dataDir,
	}
}

// InitializePFlagSet initializes all CLI flags of the receipt core on the provided pflag set.
// Args:
//
//	*pflag.FlagSet: the pflag set of the binary.
//	*TapConfig: the default config used to set default values on the flags
func InitializePFlagSet(flags *pflag.FlagSet, config *TapConfig) {
	flags.String(configFileFlagName, "", "path to a yaml file overriding the default config")

	core := config.Core
	flags.String(logLevel, core.LogLevel, "log level: debug, info, warn or error")
	flags.Uint64(chainID, core.ChainID, "chain id of the EIP-712 domain")
	flags.String(verifyingContract, core.VerifyingContract, "verifier contract address of the EIP-712 domain")
	flags.Uint(checkParallelism, core.CheckParallelism, "number of receipts checked in parallel")
	flags.Duration(checkTimeout, core.CheckTimeout, "deadline for all checks of a single receipt, zero disables it")
	flags.Bool(revalidateUniqueness, core.RevalidateUniqueness, "query uniqueness again when receipts are aggregated")
	flags.Uint(appraisalCacheSize, core.AppraisalCacheSize, "number of appraisals kept in the lookup cache")
	flags.String(dataDir, core.DataDir, "directory of the badger database backing the reference checks")
}

// applyFlags overrides the config values of all flags changed on the command line. In the
// config file all core values are stored one level down on the tap-config property, so a flag
// like --chain-id overrides tap-config.chain-id.
// Returns:
// error: if a flag does not have a corresponding key in the viper store.
func applyFlags(conf *viper.Viper, flags *pflag.FlagSet) error {
	m := make(map[string]string)
	// create map of key -> full pathkey
	// ie: "chain-id" -> "tap-config.chain-id"
	for _, key := range conf.AllKeys() {
		s := strings.Split(key, ".")
		if len(s) == 2 {
			m[s[1]] = key
		}
	}
	// each flag name should correspond to exactly one key in our config store after it is loaded with the default config
	for _, flagName := range AllFlagNames() {
		if _, ok := m[flagName]; !ok {
			return fmt.Errorf("invalid configuration missing configuration key flag name %s check config file and cli flags", flagName)
		}
	}

	flags.Visit(func(flag *pflag.Flag) {
		fullKey, ok := m[flag.Name]
		if !ok {
			return
		}
		conf.Set(fullKey, flag.Value.String())
	})
	return nil
}
