// Package config resolves the endpoints and names used by the calc command.
// Values come from flags, then CALC_* environment variables, then defaults.
package config

import (
	"strings"

	"github.com/spf13/viper"
)

const (
	KeyName       = "name"
	KeyServer     = "server"
	KeyAdvertise  = "advertise"
	KeyAnnounce   = "announce"
	KeyDispatcher = "dispatcher"
	KeyClient     = "client"
	KeyLogLevel   = "log-level"
)

var Defaults = map[string]string{
	KeyName:       "default",
	KeyServer:     "127.0.0.1:3000",
	KeyAdvertise:  "",
	KeyAnnounce:   "127.0.0.1:3001",
	KeyDispatcher: "127.0.0.1:3002",
	KeyClient:     "127.0.0.1:0",
	KeyLogLevel:   "info",
}

type Config struct {
	Name string `mapstructure:"name"`
	// ServerEndPoint is where the server listens.
	ServerEndPoint string `mapstructure:"server"`
	// AdvertiseEndPoint is what the server announces; empty means the
	// address it is listening on.
	AdvertiseEndPoint string `mapstructure:"advertise"`
	// AnnounceEndPoint is where the dispatcher takes server announces.
	AnnounceEndPoint string `mapstructure:"announce"`
	// DispatcherEndPoint is where the dispatcher answers client lookups.
	DispatcherEndPoint string `mapstructure:"dispatcher"`
	ClientEndPoint     string `mapstructure:"client"`
	LogLevel           string `mapstructure:"log-level"`
}

func New() *viper.Viper {
	v := viper.New()
	v.SetEnvPrefix("calc")
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()
	for key, value := range Defaults {
		v.SetDefault(key, value)
	}
	return v
}

func Load(v *viper.Viper) (cfg Config, err error) {
	err = v.Unmarshal(&cfg)
	return
}
