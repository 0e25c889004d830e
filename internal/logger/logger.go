// Package logger holds the process-wide arbor logger.
package logger

import (
	"os"
	"path/filepath"
	"sync"

	"github.com/ternarybob/arbor"
	arborcommon "github.com/ternarybob/arbor/common"
	"github.com/ternarybob/arbor/models"

	"github.com/ternarybob/postforge/internal/config"
)

var (
	globalLogger arbor.ILogger
	loggerMutex  sync.RWMutex
)

// GetLogger returns the global logger. Before SetupLogger or InitLogger
// runs it returns a console logger.
func GetLogger() arbor.ILogger {
	loggerMutex.RLock()
	if globalLogger != nil {
		defer loggerMutex.RUnlock()
		return globalLogger
	}
	loggerMutex.RUnlock()

	loggerMutex.Lock()
	defer loggerMutex.Unlock()
	if globalLogger == nil {
		globalLogger = arbor.NewLogger().
			WithConsoleWriter(writerConfig(nil, models.LogWriterTypeConsole, "")).
			WithLevelFromString("info")
	}
	return globalLogger
}

// InitLogger replaces the global logger.
func InitLogger(logger arbor.ILogger) {
	loggerMutex.Lock()
	defer loggerMutex.Unlock()
	globalLogger = logger
}

// outputs reports which writers the logging config asks for.
func outputs(cfg *config.Config) (console, file bool) {
	for _, out := range cfg.Logging.Output {
		switch out {
		case "stdout", "console":
			console = true
		case "file":
			file = true
		case "both":
			console, file = true, true
		}
	}
	return console, file
}

// SetupLogger builds the logger described by cfg and makes it global.
func SetupLogger(cfg *config.Config) arbor.ILogger {
	logger := arbor.NewLogger()
	console, file := outputs(cfg)

	if file {
		logPath := cfg.LogPath()
		if err := os.MkdirAll(filepath.Dir(logPath), 0755); err != nil {
			console = true
			defer func() {
				logger.Warn().Err(err).Str("logs_dir", filepath.Dir(logPath)).Msg("Failed to create logs directory")
			}()
		} else {
			logger = logger.WithFileWriter(writerConfig(cfg, models.LogWriterTypeFile, logPath))
		}
	}

	if !console && !file {
		console = true
		defer func() {
			logger.Warn().Strs("configured_outputs", cfg.Logging.Output).Msg("No log outputs configured, using console")
		}()
	}

	if console {
		logger = logger.WithConsoleWriter(writerConfig(cfg, models.LogWriterTypeConsole, ""))
	}

	// Memory writer keeps recent entries available to tests and diagnostics.
	logger = logger.WithMemoryWriter(writerConfig(cfg, models.LogWriterTypeMemory, ""))
	logger = logger.WithLevelFromString(cfg.Logging.Level)

	InitLogger(logger)
	return logger
}

func writerConfig(cfg *config.Config, writerType models.LogWriterType, filename string) models.WriterConfiguration {
	timeFormat := "15:04:05.000"
	outputType := models.OutputFormatLogfmt
	var maxSize int64 = 100 * 1024 * 1024
	maxBackups := 5

	if cfg != nil {
		if cfg.Logging.TimeFormat != "" {
			timeFormat = cfg.Logging.TimeFormat
		}
		if cfg.Logging.Format == "json" {
			outputType = models.OutputFormatJSON
		}
		if cfg.Logging.MaxSizeMB > 0 {
			maxSize = int64(cfg.Logging.MaxSizeMB) * 1024 * 1024
		}
		if cfg.Logging.MaxBackups > 0 {
			maxBackups = cfg.Logging.MaxBackups
		}
	}

	return models.WriterConfiguration{
		Type:       writerType,
		FileName:   filename,
		TimeFormat: timeFormat,
		OutputType: outputType,
		MaxSize:    maxSize,
		MaxBackups: maxBackups,
	}
}

// Stop flushes buffered log entries. Safe to call more than once.
func Stop() {
	arborcommon.Stop()
}
