package msg

import (
	"io"
	"os"
	"strings"
	"sync/atomic"

	"github.com/sirupsen/logrus"
)

// Levels accepted by WriteMsgLevel.
const (
	LevelDebug   = 10
	LevelInfo    = 20
	LevelWarning = 30
	LevelError   = 40
)

var (
	logger     = newLogger(os.Stderr)
	noiseLimit int32
)

func newLogger(out io.Writer) *logrus.Logger {
	l := logrus.New()
	l.Out = out
	l.Level = logrus.InfoLevel
	l.Formatter = &logrus.TextFormatter{DisableTimestamp: true}
	return l
}

// Logger returns the process-wide logger.
func Logger() *logrus.Logger {
	return logger
}

func SetOutput(out io.Writer) {
	logger.SetOutput(out)
}

// SetLevel accepts any logrus level name ("debug", "info", ...).
func SetLevel(level string) error {
	l, err := logrus.ParseLevel(level)
	if err != nil {
		return err
	}
	logger.SetLevel(l)
	return nil
}

func SetNoiseLimit(limit int) {
	atomic.StoreInt32(&noiseLimit, int32(limit))
}

// 0
func WriteMsg(myStr string, noiseLevel int) {
	WriteMsgLevel(myStr, LevelInfo, noiseLevel)
}

// 0, 0
func WriteMsgLevel(msg string, level, noiseLevel int) {
	if int32(noiseLevel) > atomic.LoadInt32(&noiseLimit) {
		return
	}
	msg = strings.TrimRight(msg, "\n")
	switch {
	case level >= LevelError:
		logger.Error(msg)
	case level >= LevelWarning:
		logger.Warn(msg)
	case level >= LevelInfo:
		logger.Info(msg)
	default:
		logger.Debug(msg)
	}
}

// Debugf is for kernel code that must stay quiet unless debugging is on.
func Debugf(format string, args ...interface{}) {
	logger.Debugf(format, args...)
}

func WithField(key string, value interface{}) *logrus.Entry {
	return logger.WithField(key, value)
}
