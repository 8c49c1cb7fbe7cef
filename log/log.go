// Package log is memegen's own leveled logger. Since the terminal is owned by
// the UI, nothing is ever printed to stdout or stderr: messages go to a file,
// ~/.memegen.log by default.
package log

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/juju/errors"
)

type LogLevel int

const (
	Verbose3 LogLevel = iota
	Verbose2
	Verbose1
	Info
	Warning
	Error
)

var levelNames = map[string]LogLevel{
	"verbose3": Verbose3,
	"verbose2": Verbose2,
	"verbose1": Verbose1,
	"info":     Info,
	"warning":  Warning,
	"error":    Error,
}

// ParseLevel parses one of: error, warning, info, verbose1, verbose2,
// verbose3.
func ParseLevel(s string) (LogLevel, error) {
	level, ok := levelNames[strings.ToLower(s)]
	if !ok {
		return Info, errors.Errorf(
			"invalid log level %q, try error, warning, info, verbose1, verbose2 or verbose3", s,
		)
	}

	return level, nil
}

func (l LogLevel) String() string {
	for name, level := range levelNames {
		if level == l {
			return name
		}
	}

	return fmt.Sprintf("level(%d)", int(l))
}

var (
	out    io.Writer
	outMtx sync.Mutex
)

// SetOutput makes all loggers write to w. If it's never called, the first
// message opens ~/.memegen.log.
func SetOutput(w io.Writer) {
	outMtx.Lock()
	defer outMtx.Unlock()

	out = w
}

// SetOutputFile is like SetOutput, but opens (or creates) the given file for
// appending.
func SetOutputFile(fname string) error {
	f, err := os.OpenFile(fname, os.O_WRONLY|os.O_CREATE|os.O_APPEND, 0644)
	if err != nil {
		return errors.Annotatef(err, "opening log file")
	}

	SetOutput(f)
	return nil
}

func printf(format string, a ...interface{}) {
	outMtx.Lock()
	defer outMtx.Unlock()

	if out == nil {
		out = openDefaultLogFile()
	}

	if !strings.HasSuffix(format, "\n") {
		format += "\n"
	}

	fmt.Fprintf(out, "%s: %s", time.Now().Format("2006-01-02T15:04:05.999"), fmt.Sprintf(format, a...))
}

func openDefaultLogFile() io.Writer {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return io.Discard
	}

	f, err := os.OpenFile(
		filepath.Join(homeDir, ".memegen.log"),
		os.O_WRONLY|os.O_CREATE|os.O_APPEND, 0644,
	)
	if err != nil {
		// Logging must never break the app.
		return io.Discard
	}

	return f
}

type Logger struct {
	minLevel LogLevel

	namespace string
}

func NewLogger(minLevel LogLevel) *Logger {
	return &Logger{
		minLevel: minLevel,
	}
}

// thisOrDefault lets nil loggers be used: they log at Info and above.
func (l *Logger) thisOrDefault() *Logger {
	if l != nil {
		return l
	}

	return &Logger{
		minLevel: Info,
	}
}

func (l *Logger) WithNamespaceAppended(n string) *Logger {
	l = l.thisOrDefault()

	ns := l.namespace
	if ns != "" {
		ns += "/"
	}
	ns += n

	newLogger := *l
	newLogger.namespace = ns
	return &newLogger
}

func (l *Logger) Verbose3f(format string, a ...interface{}) {
	l.Printf(Verbose3, format, a...)
}

func (l *Logger) Verbose2f(format string, a ...interface{}) {
	l.Printf(Verbose2, format, a...)
}

func (l *Logger) Verbose1f(format string, a ...interface{}) {
	l.Printf(Verbose1, format, a...)
}

func (l *Logger) Infof(format string, a ...interface{}) {
	l.Printf(Info, format, a...)
}

func (l *Logger) Warnf(format string, a ...interface{}) {
	l.Printf(Warning, format, a...)
}

func (l *Logger) Errorf(format string, a ...interface{}) {
	l.Printf(Error, format, a...)
}

func (l *Logger) Printf(level LogLevel, format string, a ...interface{}) {
	l = l.thisOrDefault()

	if level < l.minLevel {
		return
	}

	msg := fmt.Sprintf(format, a...)
	if l.namespace != "" {
		msg = fmt.Sprintf("[%s] %s", l.namespace, msg)
	}

	printf("%s %s", strings.ToUpper(level.String()[:1]), msg)
}
