// Package log provides leveled logging for the osm packages and commands.
package log

import (
	"fmt"
	"io"
	stdlog "log"
	"os"
	"runtime"
	"strings"
	"sync"
)

// Level controls which messages are written.
type Level int

const (
	TRACE Level = iota
	DEBUG
	INFO
	WARN
	ERROR
)

var levelNames = [...]string{"TRACE", "DEBUG", "INFO", "WARN", "ERROR"}

func (l Level) String() string {
	if l < TRACE || l > ERROR {
		return fmt.Sprintf("Level(%d)", int(l))
	}
	return levelNames[l]
}

// ParseLevel maps a level name, case insensitively, to its Level.
func ParseLevel(name string) (Level, error) {
	switch strings.ToUpper(name) {
	case "TRACE":
		return TRACE, nil
	case "DEBUG":
		return DEBUG, nil
	case "INFO":
		return INFO, nil
	case "WARN":
		return WARN, nil
	case "ERROR":
		return ERROR, nil
	}
	return INFO, fmt.Errorf("unknown log level (%v)", name)
}

var (
	mu    sync.Mutex
	level = INFO
	std   = stdlog.New(os.Stderr, "", stdlog.LstdFlags)

	// IsDebug mirrors whether DEBUG is enabled so callers can skip
	// building expensive messages.
	IsDebug bool
)

// SetLogLevel sets the minimum level that will be written.
func SetLogLevel(l Level) {
	mu.Lock()
	level = l
	IsDebug = l <= DEBUG
	mu.Unlock()
}

// SetOutput redirects where messages are written.
func SetOutput(w io.Writer) {
	std.SetOutput(w)
}

func output(l Level, msg string) {
	mu.Lock()
	min := level
	mu.Unlock()
	if l < min {
		return
	}
	if _, file, line, ok := runtime.Caller(2); ok {
		if i := strings.LastIndexByte(file, '/'); i >= 0 {
			file = file[i+1:]
		}
		std.Printf("[%v] %v:%v: %v", l, file, line, msg)
		return
	}
	std.Printf("[%v] %v", l, msg)
}

func Trace(args ...interface{}) { output(TRACE, fmt.Sprint(args...)) }

func Tracef(format string, args ...interface{}) { output(TRACE, fmt.Sprintf(format, args...)) }

func Debug(args ...interface{}) { output(DEBUG, fmt.Sprint(args...)) }

func Debugf(format string, args ...interface{}) { output(DEBUG, fmt.Sprintf(format, args...)) }

func Info(args ...interface{}) { output(INFO, fmt.Sprint(args...)) }

func Infof(format string, args ...interface{}) { output(INFO, fmt.Sprintf(format, args...)) }

func Warn(args ...interface{}) { output(WARN, fmt.Sprint(args...)) }

func Warnf(format string, args ...interface{}) { output(WARN, fmt.Sprintf(format, args...)) }

func Error(args ...interface{}) { output(ERROR, fmt.Sprint(args...)) }

func Errorf(format string, args ...interface{}) { output(ERROR, fmt.Sprintf(format, args...)) }
