package logger

import (
	"context"
	"fmt"
	"io"

	"github.com/giantswarm/microerror"
	"github.com/giantswarm/micrologger"
	"github.com/go-stack/stack"
)

// callerDepth skips the go-kit valuer binding, the micrologger call and the
// level filter so that the caller key points at the code emitting the entry.
const callerDepth = 5

var levels = map[string]int{
	"debug":   0,
	"info":    1,
	"warning": 2,
	"error":   3,
}

type Config struct {
	IOWriter io.Writer
	// Level is the minimum level emitted, one of debug, info, warning or
	// error.
	Level string
}

// New returns a micrologger dropping every entry below config.Level. Entries
// without a known level are always emitted. Loggers derived with With keep
// the filter.
func New(config Config) (micrologger.Logger, error) {
	if config.IOWriter == nil {
		return nil, microerror.Maskf(invalidConfigError, "%T.IOWriter must not be empty", config)
	}

	minLevel, ok := levels[config.Level]
	if !ok {
		return nil, microerror.Maskf(invalidConfigError, "%T.Level must be one of debug, info, warning, error", config)
	}

	var err error

	var underlying micrologger.Logger
	{
		c := micrologger.Config{
			Caller: func() interface{} {
				return fmt.Sprintf("%+v", stack.Caller(callerDepth))
			},
			IOWriter: config.IOWriter,
		}

		underlying, err = micrologger.New(c)
		if err != nil {
			return nil, microerror.Mask(err)
		}
	}

	l := &levelLogger{
		underlying: underlying,

		minLevel: minLevel,
	}

	return l, nil
}

type levelLogger struct {
	underlying micrologger.Logger

	minLevel int
}

func (l *levelLogger) Log(keyVals ...interface{}) {
	if l.enabled(keyVals) {
		l.underlying.Log(keyVals...)
	}
}

func (l *levelLogger) LogCtx(ctx context.Context, keyVals ...interface{}) {
	if l.enabled(keyVals) {
		l.underlying.LogCtx(ctx, keyVals...)
	}
}

func (l *levelLogger) With(keyVals ...interface{}) micrologger.Logger {
	return &levelLogger{
		underlying: l.underlying.With(keyVals...),

		minLevel: l.minLevel,
	}
}

func (l *levelLogger) enabled(keyVals []interface{}) bool {
	for i := 1; i < len(keyVals); i += 2 {
		if keyVals[i-1] != micrologger.KeyLevel {
			continue
		}

		s, ok := keyVals[i].(string)
		if !ok {
			return true
		}
		level, ok := levels[s]
		if !ok {
			return true
		}

		return level >= l.minLevel
	}

	return true
}
