package log

import (
	"fmt"

	logrus "gopkg.in/Sirupsen/logrus.v0"
)

// EntryZ is a fluent, chainable log builder. Call a Module's DebugZ/InfoZ/...
// to obtain one (nil if the module/level pair is disabled, in which case every
// chained call below is a no-op on a nil receiver), chain field setters, and
// finish with End(). This keeps call sites allocation-light when logging is
// disabled, since the field builders never run.
type EntryZ struct {
	mod    Module
	lvl    Level
	msg    string
	fields logrus.Fields
}

func newEntryZ() *EntryZ {
	return &EntryZ{fields: make(logrus.Fields, 4)}
}

func (e *EntryZ) String(key, val string) *EntryZ {
	if e == nil {
		return nil
	}
	e.fields[key] = val
	return e
}

func (e *EntryZ) Bool(key string, val bool) *EntryZ {
	if e == nil {
		return nil
	}
	e.fields[key] = val
	return e
}

func (e *EntryZ) Uint8(key string, val uint8) *EntryZ {
	if e == nil {
		return nil
	}
	e.fields[key] = val
	return e
}

func (e *EntryZ) Uint16(key string, val uint16) *EntryZ {
	if e == nil {
		return nil
	}
	e.fields[key] = val
	return e
}

func (e *EntryZ) Uint32(key string, val uint32) *EntryZ {
	if e == nil {
		return nil
	}
	e.fields[key] = val
	return e
}

func (e *EntryZ) Int(key string, val int) *EntryZ {
	if e == nil {
		return nil
	}
	e.fields[key] = val
	return e
}

func (e *EntryZ) Int64(key string, val int64) *EntryZ {
	if e == nil {
		return nil
	}
	e.fields[key] = val
	return e
}

func (e *EntryZ) Hex8(key string, val uint8) *EntryZ {
	if e == nil {
		return nil
	}
	e.fields[key] = fmt.Sprintf("%02x", val)
	return e
}

func (e *EntryZ) Hex16(key string, val uint16) *EntryZ {
	if e == nil {
		return nil
	}
	e.fields[key] = fmt.Sprintf("%04x", val)
	return e
}

func (e *EntryZ) Hex32(key string, val uint32) *EntryZ {
	if e == nil {
		return nil
	}
	e.fields[key] = fmt.Sprintf("%08x", val)
	return e
}

func (e *EntryZ) Error(key string, err error) *EntryZ {
	if e == nil {
		return nil
	}
	if err == nil {
		e.fields[key] = "<nil>"
	} else {
		e.fields[key] = err.Error()
	}
	return e
}

func (e *EntryZ) Blob(key string, b []byte) *EntryZ {
	if e == nil {
		return nil
	}
	e.fields[key] = fmt.Sprintf("%d bytes", len(b))
	return e
}

// End emits the log line. Safe to call on a nil receiver.
func (e *EntryZ) End() {
	if e == nil {
		return
	}
	entry := logrus.WithFields(e.fields).WithField("_mod", modNames[e.mod])
	switch e.lvl.logrus() {
	case logrus.DebugLevel:
		entry.Debug(e.msg)
	case logrus.InfoLevel:
		entry.Info(e.msg)
	case logrus.WarnLevel:
		entry.Warn(e.msg)
	case logrus.ErrorLevel:
		entry.Error(e.msg)
	case logrus.FatalLevel:
		entry.Fatal(e.msg)
	case logrus.PanicLevel:
		entry.Panic(e.msg)
	}
}
