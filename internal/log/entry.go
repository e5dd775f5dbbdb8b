package log

import (
	logrus "gopkg.in/Sirupsen/logrus.v0"
)

type Level uint8

const (
	PanicLevel Level = iota
	FatalLevel
	ErrorLevel
	WarnLevel
	InfoLevel
	DebugLevel
)

func (lvl Level) logrus() logrus.Level {
	switch lvl {
	case PanicLevel:
		return logrus.PanicLevel
	case FatalLevel:
		return logrus.FatalLevel
	case ErrorLevel:
		return logrus.ErrorLevel
	case WarnLevel:
		return logrus.WarnLevel
	case InfoLevel:
		return logrus.InfoLevel
	default:
		return logrus.DebugLevel
	}
}

// SetOutputLevel raises or lowers the global logrus threshold. The per-module
// mask in EnableDebugModules is still consulted first: Warn and more severe
// entries pass it for every module, Info and Debug entries only for modules
// that have been enabled.
func SetOutputLevel(lvl Level) {
	logrus.SetLevel(lvl.logrus())
}
