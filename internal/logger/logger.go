package logger

import (
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"sync"

	"contactsheet/internal/config"
)

// Logger provides leveled logging (info/warning/error) to files and stdout/stderr.
type Logger struct {
	infoLog    *log.Logger
	warningLog *log.Logger
	errorLog   *log.Logger
	logDir     string
	mu         sync.Mutex
}

// NewLogger creates a Logger and ensures the log directory exists.
func NewLogger(config *config.Config) (*Logger, error) {
	if err := os.MkdirAll(config.LogDirectory, 0755); err != nil {
		return nil, fmt.Errorf("failed to create log directory: %w", err)
	}

	logger := &Logger{
		logDir: config.LogDirectory,
	}

	if err := logger.setupLoggers(); err != nil {
		return nil, err
	}
	return logger, nil
}

// NewWriter creates a Logger without log files, writing every level to w.
func NewWriter(w io.Writer) *Logger {
	return &Logger{
		infoLog:    log.New(w, "INFO    ", log.Ldate|log.Ltime),
		warningLog: log.New(w, "WARNING ", log.Ldate|log.Ltime),
		errorLog:   log.New(w, "ERROR   ", log.Ldate|log.Ltime),
	}
}

// Discard returns a Logger that drops everything.
func Discard() *Logger {
	return NewWriter(io.Discard)
}

// setupLoggers initializes writers and per-level loggers.
func (l *Logger) setupLoggers() error {
	infoFileHandle, err := l.openLogFile(filepath.Join(l.logDir, "info.log"))
	if err != nil {
		return err
	}
	warningFileHandle, err := l.openLogFile(filepath.Join(l.logDir, "warning.log"))
	if err != nil {
		return err
	}
	errorFileHandle, err := l.openLogFile(filepath.Join(l.logDir, "error.log"))
	if err != nil {
		return err
	}

	infoWriter := io.MultiWriter(os.Stdout, infoFileHandle)
	warningWriter := io.MultiWriter(os.Stdout, warningFileHandle)
	errorWriter := io.MultiWriter(os.Stderr, errorFileHandle)

	l.infoLog = log.New(infoWriter, "INFO    ", log.Ldate|log.Ltime|log.Lshortfile)
	l.warningLog = log.New(warningWriter, "WARNING ", log.Ldate|log.Ltime|log.Lshortfile)
	l.errorLog = log.New(errorWriter, "ERROR   ", log.Ldate|log.Ltime|log.Lshortfile)
	return nil
}

// openLogFile opens or creates a log file for appending.
func (l *Logger) openLogFile(filename string) (*os.File, error) {
	file, err := os.OpenFile(filename, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0666)
	if err != nil {
		return nil, fmt.Errorf("failed to open log file %s: %w", filename, err)
	}
	return file, nil
}

// Info writes a formatted info-level log entry.
func (l *Logger) Info(format string, v ...interface{}) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.infoLog.Output(2, fmt.Sprintf(format, v...))
}

// Warning writes a formatted warning-level log entry.
func (l *Logger) Warning(format string, v ...interface{}) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.warningLog.Output(2, fmt.Sprintf(format, v...))
}

// Error writes a formatted error-level log entry.
func (l *Logger) Error(format string, v ...interface{}) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.errorLog.Output(2, fmt.Sprintf(format, v...))
}

// LogDirectory returns the directory holding the level files, empty for writer-only loggers.
func (l *Logger) LogDirectory() string {
	return l.logDir
}

// CleanLogs truncates the specified log file.
func (l *Logger) CleanLogs(fileName string) error {
	if l.logDir == "" {
		return nil
	}
	filePath := filepath.Join(l.logDir, fileName)
	file, err := os.OpenFile(filePath, os.O_WRONLY|os.O_TRUNC, 0644)
	if err != nil {
		l.Error("Error opening file: %v", err)
		return err
	}
	defer file.Close()

	l.Info("File %s has been cleared.", fileName)
	return nil
}
