package utils

import (
	"fmt"
	"io"
	"os"
	"strings"
	"time"
)

// LogLevel represents the verbosity level of logging
type LogLevel int

const (
	ErrorLevel LogLevel = iota
	WarningLevel
	InfoLevel
	DebugLevel
	TraceLevel
)

// String returns a string representation of the log level
func (l LogLevel) String() string {
	switch l {
	case ErrorLevel:
		return "ERROR"
	case WarningLevel:
		return "WARNING"
	case InfoLevel:
		return "INFO"
	case DebugLevel:
		return "DEBUG"
	case TraceLevel:
		return "TRACE"
	default:
		return "UNKNOWN"
	}
}

// Logger represents a logging utility
type Logger struct {
	Level      LogLevel
	Output     io.Writer
	ShowTime   bool
	Prefix     string
	IndentSize int
	indent     int // Current indentation level
}

// LevelFromVerbosity maps the -debug flag (0, 1, 2...) onto a log level
func LevelFromVerbosity(v int) LogLevel {
	switch {
	case v <= 0:
		return InfoLevel
	case v == 1:
		return DebugLevel
	default:
		return TraceLevel
	}
}

// NewLogger creates a new logger with the specified verbosity level
func NewLogger(level LogLevel) *Logger {
	return &Logger{
		Level:      level,
		Output:     os.Stdout,
		ShowTime:   true,
		IndentSize: 2,
		indent:     0,
	}
}

// NewFileLogger creates a new logger that writes to a file
func NewFileLogger(level LogLevel, filename string) (*Logger, error) {
	file, err := os.Create(filename)
	if err != nil {
		return nil, err
	}

	return &Logger{
		Level:      level,
		Output:     file,
		ShowTime:   true,
		IndentSize: 2,
		indent:     0,
	}, nil
}

// SetOutput sets the output writer
func (l *Logger) SetOutput(w io.Writer) {
	l.Output = w
}

// Indent increases the indentation level
func (l *Logger) Indent() {
	l.indent++
}

// Outdent decreases the indentation level
func (l *Logger) Outdent() {
	if l.indent > 0 {
		l.indent--
	}
}

// log logs a message at the specified level
func (l *Logger) log(level LogLevel, format string, args ...interface{}) {
	if level > l.Level {
		return
	}

	var builder strings.Builder

	// Add timestamp if enabled
	if l.ShowTime {
		builder.WriteString(time.Now().Format("15:04:05.000 "))
	}

	// Add level indicator
	builder.WriteString(fmt.Sprintf("[%s] ", level.String()))

	// Add prefix if set
	if l.Prefix != "" {
		builder.WriteString(fmt.Sprintf("%s: ", l.Prefix))
	}

	// Add indentation
	if l.indent > 0 {
		builder.WriteString(strings.Repeat(" ", l.indent*l.IndentSize))
	}

	// Add the main message
	builder.WriteString(fmt.Sprintf(format, args...))
	builder.WriteString("\n")

	fmt.Fprint(l.Output, builder.String())
}

// Error logs an error message
func (l *Logger) Error(format string, args ...interface{}) {
	l.log(ErrorLevel, format, args...)
}

// Warning logs a warning message
func (l *Logger) Warning(format string, args ...interface{}) {
	l.log(WarningLevel, format, args...)
}

// Info logs an informational message
func (l *Logger) Info(format string, args ...interface{}) {
	l.log(InfoLevel, format, args...)
}

// Enabled reports whether messages at level would be written.
func (l *Logger) Enabled(level LogLevel) bool {
	return level <= l.Level
}

// Circuit logs information about circuit state
func (l *Logger) Circuit(format string, args ...interface{}) {
	l.log(DebugLevel, "CIRCUIT: "+format, args...)
}

// Fault logs the outcome of a test generation attempt for one fault
func (l *Logger) Fault(format string, args ...interface{}) {
	l.log(DebugLevel, "FAULT: "+format, args...)
}

// Vector logs accepted test vectors and the faults they drop
func (l *Logger) Vector(format string, args ...interface{}) {
	l.log(DebugLevel, "VECTOR: "+format, args...)
}

// Search logs excite/propagate/justify steps
func (l *Logger) Search(format string, args ...interface{}) {
	l.log(TraceLevel, "SEARCH: "+format, args...)
}

// Simulation logs fault simulation passes
func (l *Logger) Simulation(format string, args ...interface{}) {
	l.log(TraceLevel, "SIMULATION: "+format, args...)
}

// Discard returns a logger that writes nothing, for library callers and tests
func Discard() *Logger {
	return &Logger{Level: ErrorLevel, Output: io.Discard, IndentSize: 2}
}
