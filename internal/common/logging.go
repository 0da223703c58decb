package common

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/ternarybob/arbor"
	"github.com/ternarybob/arbor/models"
)

// NewLoggerFromConfig builds an arbor logger with the configured writers and level.
func NewLoggerFromConfig(config LoggingConfig) arbor.ILogger {
	logger := arbor.NewLogger()

	hasFile := false
	hasConsole := false
	for _, output := range config.Outputs {
		switch output {
		case "file":
			hasFile = true
		case "console", "stdout":
			hasConsole = true
		}
	}

	if hasFile && config.FilePath != "" {
		if err := os.MkdirAll(filepath.Dir(config.FilePath), 0755); err != nil {
			fmt.Fprintf(os.Stderr, "Warning: failed to create log directory: %v\n", err)
		} else {
			logger = logger.WithFileWriter(models.WriterConfiguration{
				Type:       models.LogWriterTypeFile,
				FileName:   config.FilePath,
				TimeFormat: "15:04:05",
				MaxSize:    100 * 1024 * 1024,
				MaxBackups: 3,
				TextOutput: true,
			})
		}
	}

	// Always keep a console writer when nothing else is usable
	if hasConsole || !hasFile {
		logger = logger.WithConsoleWriter(models.WriterConfiguration{
			Type:       models.LogWriterTypeConsole,
			TimeFormat: "15:04:05",
			TextOutput: true,
		})
	}

	return logger.WithLevelFromString(config.Level)
}

// NewSilentLogger creates a logger that discards all output
func NewSilentLogger() arbor.ILogger {
	return arbor.NewNoOpLogger()
}
