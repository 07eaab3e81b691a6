package config

import (
	"testing"

	"go.llib.dev/testcase/assert"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load(New())
	assert.NoError(t, err)
	assert.Equal(t, Config{
		Name:               "default",
		ServerEndPoint:     "127.0.0.1:3000",
		AnnounceEndPoint:   "127.0.0.1:3001",
		DispatcherEndPoint: "127.0.0.1:3002",
		ClientEndPoint:     "127.0.0.1:0",
		LogLevel:           "info",
	}, cfg)
}

func TestLoadEnvironment(t *testing.T) {
	t.Setenv("CALC_SERVER", "0.0.0.0:4000")
	t.Setenv("CALC_ADVERTISE", "calc.internal:4000")
	t.Setenv("CALC_LOG_LEVEL", "debug")
	cfg, err := Load(New())
	assert.NoError(t, err)
	assert.Equal(t, "0.0.0.0:4000", cfg.ServerEndPoint)
	assert.Equal(t, "calc.internal:4000", cfg.AdvertiseEndPoint)
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, "127.0.0.1:3001", cfg.AnnounceEndPoint)
}

func TestLoadOverride(t *testing.T) {
	v := New()
	v.Set(KeyName, "east")
	cfg, err := Load(v)
	assert.NoError(t, err)
	assert.Equal(t, "east", cfg.Name)
}
