// Copyright (C) 2021-2024, Chainflow, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

// Package config builds the node's configuration from command line flags,
// environment variables, and an optional config file.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/chainflow/chainflowgo/statesync/driver"
	"github.com/chainflow/chainflowgo/utils/logging"
)

const (
	appName   = "chainflowgo"
	envPrefix = "CHAINFLOW"

	// Recognized database backends.
	LevelDBName = "leveldb"
	MemDBName   = "memdb"
)

var (
	homeDir        = os.ExpandEnv("$HOME")
	defaultDataDir = filepath.Join(homeDir, "."+appName)
	defaultDBDir   = filepath.Join(defaultDataDir, "db")
	defaultLogDir  = filepath.Join(defaultDataDir, "logs")
)

// Config is the fully resolved node configuration.
type Config struct {
	LoggingConfig logging.Config `json:"loggingConfig"`
	DriverConfig  driver.Config  `json:"driverConfig"`

	DBType string `json:"dbType"`
	DBDir  string `json:"dbDir"`

	DataClientWorkers       int `json:"dataClientWorkers"`
	StorageServiceWorkers   int `json:"storageServiceWorkers"`
	StreamingServiceWorkers int `json:"streamingServiceWorkers"`
}

// BuildFlagSet returns the complete set of flags the node recognizes.
func BuildFlagSet() *pflag.FlagSet {
	fs := pflag.NewFlagSet(appName, pflag.ContinueOnError)

	fs.String(ConfigFileKey, "", "Specifies a config file")

	// Logging
	fs.String(LogDirKey, defaultLogDir, "Logging directory")
	fs.String(LogLevelKey, "debug", "The log level written to the log file. Should be one of {verbo, debug, trace, info, warn, error, fatal, off}")
	fs.String(LogDisplayLevelKey, "", "The log level displayed on stdout. If left blank, will inherit the value of log-level. Otherwise, should be one of {verbo, debug, trace, info, warn, error, fatal, off}")

	// Database
	fs.String(DBTypeKey, LevelDBName, fmt.Sprintf("Database backend. Should be one of {%s, %s}", LevelDBName, MemDBName))
	fs.String(DBDirKey, defaultDBDir, "Path to database directory")

	// State sync driver
	fs.Uint64(WaypointVersionKey, 0, "Ledger version the node must reach before it is considered bootstrapped")
	fs.Bool(DedicatedDriverRuntimeKey, true, "Run the state sync driver on its own execution context")

	// Runtimes
	fs.Int(DataClientWorkersKey, 2, "Number of workers backing the data client runtime")
	fs.Int(StorageServiceWorkersKey, 2, "Number of workers backing the storage service runtime")
	fs.Int(StreamingServiceWorkersKey, 1, "Number of workers backing the streaming service runtime")

	return fs
}

// BuildViper returns the viper environment from the given command line
// arguments, the process environment, and the config file the arguments
// name (if any). Flags take precedence over the config file, which takes
// precedence over the environment.
func BuildViper(fs *pflag.FlagSet, args []string) (*viper.Viper, error) {
	if err := fs.Parse(args); err != nil {
		return nil, err
	}

	v := viper.New()
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.SetEnvPrefix(envPrefix)
	if err := v.BindPFlags(fs); err != nil {
		return nil, err
	}

	if v.IsSet(ConfigFileKey) {
		v.SetConfigFile(os.ExpandEnv(v.GetString(ConfigFileKey)))
		if err := v.ReadInConfig(); err != nil {
			return nil, err
		}
	}
	return v, nil
}

func getLoggingConfig(v *viper.Viper) (logging.Config, error) {
	config := logging.DefaultConfig(os.ExpandEnv(v.GetString(LogDirKey)))

	var err error
	config.LogLevel, err = logging.ToLevel(v.GetString(LogLevelKey))
	if err != nil {
		return config, err
	}

	displayLevel := v.GetString(LogDisplayLevelKey)
	if displayLevel == "" {
		config.DisplayLevel = config.LogLevel
	} else {
		config.DisplayLevel, err = logging.ToLevel(displayLevel)
		if err != nil {
			return config, err
		}
	}

	config.LoggerName = appName
	return config, nil
}

// GetConfig resolves the node configuration from the [viper] environment.
func GetConfig(v *viper.Viper) (Config, error) {
	loggingConfig, err := getLoggingConfig(v)
	if err != nil {
		return Config{}, err
	}

	config := Config{
		LoggingConfig: loggingConfig,
		DriverConfig: driver.Config{
			WaypointVersion:  v.GetUint64(WaypointVersionKey),
			DedicatedRuntime: v.GetBool(DedicatedDriverRuntimeKey),
		},
		DBType:                  v.GetString(DBTypeKey),
		DBDir:                   os.ExpandEnv(v.GetString(DBDirKey)),
		DataClientWorkers:       v.GetInt(DataClientWorkersKey),
		StorageServiceWorkers:   v.GetInt(StorageServiceWorkersKey),
		StreamingServiceWorkers: v.GetInt(StreamingServiceWorkersKey),
	}

	switch config.DBType {
	case LevelDBName, MemDBName:
	default:
		return Config{}, fmt.Errorf("unknown database type: %q", config.DBType)
	}

	for key, workers := range map[string]int{
		DataClientWorkersKey:       config.DataClientWorkers,
		StorageServiceWorkersKey:   config.StorageServiceWorkers,
		StreamingServiceWorkersKey: config.StreamingServiceWorkers,
	} {
		if workers <= 0 {
			return Config{}, fmt.Errorf("%s must be positive, got %d", key, workers)
		}
	}

	return config, nil
}
