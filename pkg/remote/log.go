package remote

import (
	"github.com/rs/zerolog"
	zlog "github.com/rs/zerolog/log"
)

func componentLogger(base zerolog.Logger, component, name string) zerolog.Logger {
	return base.With().Str(component, name).Logger()
}

func defaultLogger(component, name string) zerolog.Logger {
	return componentLogger(zlog.Logger, component, name)
}
