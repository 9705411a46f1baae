// Package blelog wires BzPeri's logging onto the standard library log
// package the way the teacher does: hashicorp/logutils filters by
// level, the output fans out to stderr and a rotating file via
// natefinch/lumberjack.
package blelog

import (
	"fmt"
	"io"
	"os"
	"strings"

	"log"

	"github.com/hashicorp/logutils"
	"gopkg.in/natefinch/lumberjack.v2"
)

// Level names exactly the set logutils.LevelFilter is configured
// with, in ascending severity order.
type Level string

const (
	Debug Level = "DEBUG"
	Warn  Level = "WARN"
	Error Level = "ERROR"
)

var allLevels = []logutils.LogLevel{
	logutils.LogLevel(Debug), logutils.LogLevel(Warn), logutils.LogLevel(Error),
}

// FileConfig enables rotating file output alongside stderr.
type FileConfig struct {
	Path       string
	MaxSizeMB  int
	MaxBackups int
	MaxAgeDays int
}

// Setup installs a level-filtered writer as the standard log package's
// output. minLevel must be one of Debug, Warn, Error. If file.Path is
// non-empty, output is duplicated to a lumberjack-rotated file.
func Setup(minLevel Level, file *FileConfig) error {
	var out io.Writer = os.Stderr
	if file != nil && file.Path != "" {
		rotated := &lumberjack.Logger{
			Filename:   file.Path,
			MaxSize:    orDefault(file.MaxSizeMB, 10),
			MaxBackups: orDefault(file.MaxBackups, 5),
			MaxAge:     orDefault(file.MaxAgeDays, 28),
		}
		out = io.MultiWriter(os.Stderr, rotated)
	}
	log.SetOutput(&logutils.LevelFilter{
		Levels:   allLevels,
		MinLevel: logutils.LogLevel(strings.ToUpper(string(minLevel))),
		Writer:   out,
	})
	log.SetFlags(log.LstdFlags | log.Lshortfile)
	return nil
}

func orDefault(v, def int) int {
	if v <= 0 {
		return def
	}
	return v
}

// Logger is a component-scoped sink: every call is tagged with both
// the level logutils filters on and a short component prefix, e.g.
// "[DEBUG] adapter: powering on hci0".
type Logger struct {
	component string
}

// New returns a Logger tagging its output with component.
func New(component string) *Logger {
	return &Logger{component: component}
}

func (l *Logger) logf(level Level, format string, args ...interface{}) {
	log.Printf("[%s] %s: %s", level, l.component, fmt.Sprintf(format, args...))
}

func (l *Logger) Debugf(format string, args ...interface{}) { l.logf(Debug, format, args...) }
func (l *Logger) Warnf(format string, args ...interface{})  { l.logf(Warn, format, args...) }
func (l *Logger) Errorf(format string, args ...interface{}) { l.logf(Error, format, args...) }
