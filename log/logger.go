package log

import (
	"os"
	"strings"
	"sync/atomic"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var (
	logger atomic.Pointer[zap.Logger]
	level  = zap.NewAtomicLevelAt(zapcore.DebugLevel) // shared by both cores, changed on config reload
)

// Init builds the process logger. production switches to JSON output.
// Records below ERROR are written without caller, ERROR and above with caller and stack.
func Init(production bool) error {
	var base zap.Config
	if production {
		base = zap.NewProductionConfig()
		level.SetLevel(zapcore.InfoLevel)
	} else {
		base = zap.NewDevelopmentConfig()
		base.EncoderConfig.EncodeCaller = zapcore.ShortCallerEncoder
	}

	enc := base.EncoderConfig
	enc.TimeKey = "timestamp"
	enc.EncodeTime = zapcore.TimeEncoderOfLayout("2006-01-02 15:04:05")
	enc.EncodeLevel = zapcore.CapitalLevelEncoder

	encNoCaller := enc
	encNoCaller.CallerKey = ""

	encWithCaller := enc
	encWithCaller.CallerKey = "caller"

	var encA, encB zapcore.Encoder
	if production {
		encA = zapcore.NewJSONEncoder(encNoCaller)
		encB = zapcore.NewJSONEncoder(encWithCaller)
	} else {
		encA = zapcore.NewConsoleEncoder(encNoCaller)
		encB = zapcore.NewConsoleEncoder(encWithCaller)
	}

	ws := zapcore.Lock(zapcore.AddSync(os.Stdout))

	coreNoCaller := zapcore.NewCore(encA, ws,
		zap.LevelEnablerFunc(func(lvl zapcore.Level) bool {
			return level.Enabled(lvl) && lvl < zapcore.ErrorLevel
		}),
	)
	coreWithCaller := zapcore.NewCore(encB, ws,
		zap.LevelEnablerFunc(func(lvl zapcore.Level) bool {
			return lvl >= zapcore.ErrorLevel
		}),
	)

	logger.Store(zap.New(
		zapcore.NewTee(coreNoCaller, coreWithCaller),
		zap.AddCaller(),
		zap.AddStacktrace(zapcore.ErrorLevel),
	))
	return nil
}

// SetLevel changes the minimum level of non-error records, e.g. "info" or "debug".
// Unknown names are ignored.
func SetLevel(name string) {
	var lvl zapcore.Level
	if err := lvl.UnmarshalText([]byte(strings.ToLower(strings.TrimSpace(name)))); err != nil {
		return
	}
	level.SetLevel(lvl)
}

// L returns the process logger, falling back to the development config when Init was never called.
func L() *zap.Logger {
	if l := logger.Load(); l != nil {
		return l
	}
	_ = Init(false)
	return logger.Load()
}

func Sync() { _ = L().Sync() }
