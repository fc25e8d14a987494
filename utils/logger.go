package utils

import (
	"fmt"
	"io"
	"log"
	"os"
	"time"
)

// Logger is the leveled logger used across the RFM pipeline. It writes to a
// dated log file and duplicates every message to stdout. Debug messages are
// emitted only in verbose mode.
type Logger struct {
	infoLogger  *log.Logger
	errorLogger *log.Logger
	debugLogger *log.Logger
	isVerbose   bool
}

// NewLogger creates a pipeline logger backed by rfm_log_<date>.log in the
// working directory. If the log file cannot be opened the logger falls back
// to stdout only.
func NewLogger(verbose bool) *Logger {
	currentTime := time.Now().Format("2006-01-02")
	logFileName := fmt.Sprintf("rfm_log_%s.log", currentTime)

	var out io.Writer
	file, err := os.OpenFile(logFileName, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0666)
	if err != nil {
		log.Printf("Could not open log file %s, logging to stdout only: %v", logFileName, err)
		out = io.Discard
	} else {
		out = file
	}

	return NewLoggerWithWriter(out, verbose)
}

// NewLoggerWithWriter creates a logger that writes to the given writer
// instead of a log file. Intended for tests and embedding.
func NewLoggerWithWriter(w io.Writer, verbose bool) *Logger {
	return &Logger{
		infoLogger:  log.New(w, "INFO: ", log.Ldate|log.Ltime|log.Lshortfile),
		errorLogger: log.New(w, "ERROR: ", log.Ldate|log.Ltime|log.Lshortfile),
		debugLogger: log.New(w, "DEBUG: ", log.Ldate|log.Ltime|log.Lshortfile),
		isVerbose:   verbose,
	}
}

// Info logs an informational message.
func (l *Logger) Info(format string, v ...interface{}) {
	msg := fmt.Sprintf(format, v...)
	l.infoLogger.Println(msg)
	log.Println("INFO:", msg)
}

// Error logs an error message.
func (l *Logger) Error(format string, v ...interface{}) {
	msg := fmt.Sprintf(format, v...)
	l.errorLogger.Println(msg)
	log.Println("ERROR:", msg)
}

// Debug logs a debug message when verbose mode is enabled.
func (l *Logger) Debug(format string, v ...interface{}) {
	if !l.isVerbose {
		return
	}

	msg := fmt.Sprintf(format, v...)
	l.debugLogger.Println(msg)
	log.Println("DEBUG:", msg)
}

// LogRunStart logs the beginning of a pipeline run.
func (l *Logger) LogRunStart(runID string) {
	l.Info("Starting RFM pipeline run %s", runID)
}

// LogRunComplete logs a finished pipeline run with its totals.
func (l *Logger) LogRunComplete(startTime time.Time, records, entities int) {
	duration := time.Since(startTime)
	l.Info("RFM pipeline run finished. Duration: %v", duration)
	l.Info("Processed: %d records across %d entities", records, entities)
}
