package config

import (
	"os"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"golang.org/x/xerrors"
)

// Log output formats.
const (
	FormatJSON    = "json"
	FormatConsole = "console"
)

// Logging configures the zap logger of the server.
type Logging struct {
	// One of debug, info, warn, error.
	Level string `yaml:"level"`
	// json or console.
	Format string `yaml:"format"`
}

// DefaultLogging logs json at info level.
func DefaultLogging() Logging {
	return Logging{Level: "info", Format: FormatJSON}
}

// Validate checks the level and format.
func (logging Logging) Validate() error {
	if _, err := logging.level(); err != nil {
		return err
	}
	if logging.Format != FormatJSON && logging.Format != FormatConsole {
		return xerrors.Errorf(
			"format %q must be %v or %v", logging.Format, FormatJSON, FormatConsole,
		)
	}
	return nil
}

func (logging Logging) level() (zapcore.Level, error) {
	var level zapcore.Level
	if err := level.UnmarshalText([]byte(logging.Level)); err != nil {
		return level, xerrors.Errorf("level %q: %w", logging.Level, err)
	}
	return level, nil
}

// Build returns a logger writing to stdout.
func (logging Logging) Build() (*zap.Logger, error) {
	return logging.build(zapcore.AddSync(os.Stdout))
}

func (logging Logging) build(output zapcore.WriteSyncer) (*zap.Logger, error) {
	if err := logging.Validate(); err != nil {
		return nil, err
	}
	level, _ := logging.level()

	encoderConfig := zapcore.EncoderConfig{
		TimeKey:        "timestamp",
		LevelKey:       "level",
		NameKey:        "logger",
		CallerKey:      "caller",
		FunctionKey:    zapcore.OmitKey,
		MessageKey:     "message",
		StacktraceKey:  "stacktrace",
		LineEnding:     zapcore.DefaultLineEnding,
		EncodeLevel:    zapcore.LowercaseLevelEncoder,
		EncodeTime:     zapcore.ISO8601TimeEncoder,
		EncodeDuration: zapcore.MillisDurationEncoder,
		EncodeCaller:   zapcore.ShortCallerEncoder,
	}

	var encoder zapcore.Encoder
	if logging.Format == FormatConsole {
		encoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
		encoder = zapcore.NewConsoleEncoder(encoderConfig)
	} else {
		encoder = zapcore.NewJSONEncoder(encoderConfig)
	}

	core := zapcore.NewCore(encoder, output, level)
	return zap.New(core, zap.AddCaller()), nil
}
