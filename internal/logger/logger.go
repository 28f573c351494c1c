package logger

import (
	"io"
	"os"
	"strings"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Logger is a structured logger bound to a service name.
type Logger struct {
	*zap.SugaredLogger
	service string
}

// Options configures a Logger.
type Options struct {
	Service  string
	Env      string
	Level    string
	Location *time.Location
	Writer   io.Writer
}

// New builds a Logger. Production uses the JSON encoder, every other env the console encoder.
func New(opts Options) *Logger {
	if opts.Location == nil {
		opts.Location = time.UTC
	}
	var w zapcore.WriteSyncer = zapcore.AddSync(os.Stdout)
	if opts.Writer != nil {
		w = zapcore.AddSync(opts.Writer)
	}

	encCfg := EncoderConfig(opts.Location)
	var enc zapcore.Encoder
	if opts.Env == "production" || opts.Writer != nil {
		enc = zapcore.NewJSONEncoder(encCfg)
	} else {
		enc = zapcore.NewConsoleEncoder(encCfg)
	}

	core := zapcore.NewCore(enc, w, zap.NewAtomicLevelAt(ParseLevel(opts.Level)))
	zl := zap.New(core, zap.AddCaller(), zap.AddCallerSkip(1))

	sugar := zl.Sugar()
	if opts.Service != "" {
		sugar = sugar.With("service", opts.Service)
	}
	return &Logger{SugaredLogger: sugar, service: opts.Service}
}

// Nop returns a Logger that discards everything.
func Nop() *Logger {
	return &Logger{SugaredLogger: zap.NewNop().Sugar()}
}

// EncoderConfig is shared by the application logger and the access log middleware.
func EncoderConfig(loc *time.Location) zapcore.EncoderConfig {
	return zapcore.EncoderConfig{
		TimeKey:        "ts",
		LevelKey:       "level",
		NameKey:        "logger",
		CallerKey:      "caller",
		FunctionKey:    zapcore.OmitKey,
		MessageKey:     "msg",
		StacktraceKey:  "stacktrace",
		LineEnding:     zapcore.DefaultLineEnding,
		EncodeLevel:    zapcore.LowercaseLevelEncoder,
		EncodeTime:     timeEncoder(loc),
		EncodeDuration: zapcore.MillisDurationEncoder,
		EncodeCaller:   zapcore.ShortCallerEncoder,
	}
}

func timeEncoder(loc *time.Location) zapcore.TimeEncoder {
	return func(t time.Time, enc zapcore.PrimitiveArrayEncoder) {
		enc.AppendString(t.In(loc).Format(time.RFC3339Nano))
	}
}

// ParseLevel maps LOG_LEVEL values to zap levels, defaulting to info.
func ParseLevel(level string) zapcore.Level {
	var l zapcore.Level
	if err := l.UnmarshalText([]byte(strings.ToLower(strings.TrimSpace(level)))); err != nil {
		return zapcore.InfoLevel
	}
	return l
}

// WithRequestID returns a child logger tagged with the request id.
func (l *Logger) WithRequestID(id string) *Logger {
	if id == "" {
		return l
	}
	return &Logger{SugaredLogger: l.With("request_id", id), service: l.service}
}

// WithFields returns a child logger with additional fields.
func (l *Logger) WithFields(fields map[string]any) *Logger {
	args := make([]any, 0, len(fields)*2)
	for k, v := range fields {
		args = append(args, k, v)
	}
	return &Logger{SugaredLogger: l.With(args...), service: l.service}
}

// Component tags every entry with a component name, the way migration and scheduler logs are grouped.
func (l *Logger) Component(name string) *Logger {
	return &Logger{SugaredLogger: l.With("component", name), service: l.service}
}

func (l *Logger) Error(msg string, keysAndValues ...any) {
	l.Errorw(msg, keysAndValues...)
}

func (l *Logger) Warn(msg string, keysAndValues ...any) {
	l.Warnw(msg, keysAndValues...)
}

func (l *Logger) Info(msg string, keysAndValues ...any) {
	l.Infow(msg, keysAndValues...)
}

func (l *Logger) Debug(msg string, keysAndValues ...any) {
	l.Debugw(msg, keysAndValues...)
}

func (l *Logger) Fatal(msg string, keysAndValues ...any) {
	l.Fatalw(msg, keysAndValues...)
}

// Sync flushes buffered entries.
func (l *Logger) Sync() error {
	return l.SugaredLogger.Sync()
}
