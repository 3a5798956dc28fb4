package logging

import (
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/sirupsen/logrus"
	"gopkg.in/natefinch/lumberjack.v2"
)

var Logger = logrus.New()

type Options struct {
	Level      string
	File       string
	JSON       bool
	SystemName string
}

// Init configures the package logger. When File is set, output goes both to
// stdout and to a lumberjack-rotated file.
func Init(opts Options) error {
	level, err := logrus.ParseLevel(strings.ToLower(opts.Level))
	if err != nil {
		level = logrus.InfoLevel
	}
	Logger.SetLevel(level)

	if opts.JSON {
		Logger.SetFormatter(&logrus.JSONFormatter{
			FieldMap: logrus.FieldMap{logrus.FieldKeyMsg: "message"},
		})
	} else {
		Logger.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	}
	if opts.SystemName != "" {
		Logger.AddHook(&sourceHook{system: opts.SystemName})
	}

	if opts.File == "" {
		Logger.SetOutput(os.Stdout)
		return nil
	}
	if err := os.MkdirAll(filepath.Dir(opts.File), 0o750); err != nil {
		return err
	}
	Logger.SetOutput(io.MultiWriter(os.Stdout, &lumberjack.Logger{
		Filename:   opts.File,
		MaxSize:    10,
		MaxBackups: 3,
		MaxAge:     28,
		Compress:   true,
	}))
	return nil
}

// sourceHook stamps every entry with the emitting system name.
type sourceHook struct {
	system string
}

func (h *sourceHook) Levels() []logrus.Level { return logrus.AllLevels }

func (h *sourceHook) Fire(e *logrus.Entry) error {
	if _, ok := e.Data["source"]; !ok {
		e.Data["source"] = h.system
	}
	return nil
}
