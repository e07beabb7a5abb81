package xlog

import (
	"go.uber.org/zap/zapcore"
)

var _ xLogCore = (*consoleCore)(nil)

// consoleCore writes to the process stdout or stderr, or to a caller
// provided syncer.
type consoleCore struct {
	encoder LogEncoderType
	writer  LogOutWriterType
	ws      zapcore.WriteSyncer
}

func (cc *consoleCore) build(
	lvlEnabler zapcore.LevelEnabler,
	lvlEnc zapcore.LevelEncoder,
	tsEnc zapcore.TimeEncoder,
) (zapcore.Core, func() error) {
	ws, stop := cc.ws, func() error { return nil }
	if ws == nil {
		ws, stop = getOutWriterByType(cc.writer)
	}
	if stop == nil {
		stop = func() error { return nil }
	}
	config := newEncoderConfig(lvlEnc, tsEnc)
	return zapcore.NewCore(getEncoderByType(cc.encoder)(config), ws, lvlEnabler), stop
}
