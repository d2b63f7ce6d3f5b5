package logger

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// bufferedLogger writes JSON log lines into buf so tests can parse them back
func bufferedLogger(buf *bytes.Buffer) *zap.Logger {
	encoderConfig := zapcore.EncoderConfig{
		TimeKey:        "timestamp",
		LevelKey:       "level",
		MessageKey:     "message",
		StacktraceKey:  "stacktrace",
		LineEnding:     zapcore.DefaultLineEnding,
		EncodeLevel:    zapcore.LowercaseLevelEncoder,
		EncodeTime:     zapcore.ISO8601TimeEncoder,
		EncodeDuration: zapcore.SecondsDurationEncoder,
	}

	core := zapcore.NewCore(
		zapcore.NewJSONEncoder(encoderConfig),
		zapcore.AddSync(buf),
		zapcore.DebugLevel,
	)
	return zap.New(core)
}

func TestProperty_LogLinesAreStructuredJSON(t *testing.T) {
	properties := gopter.NewProperties(nil)

	properties.Property("every line parses as JSON with level, timestamp and message", prop.ForAll(
		func(message string, level string) bool {
			var buf bytes.Buffer
			logger := bufferedLogger(&buf)
			defer logger.Sync()

			switch level {
			case "debug":
				logger.Debug(message)
			case "warn":
				logger.Warn(message)
			case "error":
				logger.Error(message)
			default:
				logger.Info(message)
			}

			var entry map[string]interface{}
			if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
				return false
			}
			for _, key := range []string{"level", "timestamp", "message"} {
				if _, ok := entry[key]; !ok {
					return false
				}
			}
			return entry["message"] == message
		},
		gen.AnyString(),
		gen.OneConstOf("debug", "info", "warn", "error"),
	))

	properties.TestingRun(t, gopter.ConsoleReporter(false))
}

func TestErrorLogsCarryTheAttachedFields(t *testing.T) {
	var buf bytes.Buffer
	logger := bufferedLogger(&buf)
	defer logger.Sync()

	logger.Error("checkout failed", zap.String("error", "product unavailable"))

	var entry map[string]interface{}
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatal(err)
	}
	if entry["error"] != "product unavailable" {
		t.Errorf("error field = %v, want the attached message", entry["error"])
	}
}

func TestNewBuildsForBothEnvironments(t *testing.T) {
	for _, env := range []string{"production", "development"} {
		logger, err := New(env)
		if err != nil {
			t.Fatalf("New(%q): %v", env, err)
		}
		logger.Sync()
	}
}
