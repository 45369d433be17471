package settings

import (
	"github.com/kelseyhightower/envconfig"
)

// EnvPrefix is the prefix of environment variables read by LoadEnvironment
const EnvPrefix = "ANMGR"

// Environment holds process settings that may be supplied through ANMGR_* variables
type Environment struct {
	LocalConfig string `envconfig:"LOCAL_CONFIG" default:"manager.yaml"`
	ManagerDir  string `envconfig:"MANAGER_DIR"`
	LogLevel    string `envconfig:"LOG_LEVEL" default:"info"`
	LogJSON     bool   `envconfig:"LOG_JSON"`
	StateDB     string `envconfig:"STATE_DB"`
	MetricsAddr string `envconfig:"METRICS_ADDR"`
	Offline     bool   `envconfig:"OFFLINE"`
}

// LoadEnvironment reads the ANMGR_* environment variables
func LoadEnvironment() (Environment, error) {
	var env Environment
	if err := envconfig.Process(EnvPrefix, &env); err != nil {
		return Environment{}, err
	}
	return env, nil
}
