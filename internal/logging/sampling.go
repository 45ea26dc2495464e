package logging

import (
	"maps"
	"slices"

	"go.uber.org/zap/zapcore"
)

// newSampledCore wraps core with one sampler per configured level. Levels
// without a sampling entry, and everything at Error or above, pass through.
func newSampledCore(core zapcore.Core, cfg SamplingConfig) zapcore.Core {
	if !cfg.Enabled || len(cfg.Levels) == 0 {
		return core
	}

	sampled := make(map[zapcore.Level]bool, len(cfg.Levels))
	var cores []zapcore.Core
	for _, lvl := range slices.Sorted(maps.Keys(cfg.Levels)) {
		if lvl >= zapcore.ErrorLevel {
			continue
		}
		sampled[lvl] = true
		rate := cfg.Levels[lvl]
		cores = append(cores, zapcore.NewSamplerWithOptions(
			filterLevels(core, func(l zapcore.Level) bool { return l == lvl }),
			cfg.Tick.Duration(),
			rate.Initial,
			rate.Thereafter,
		))
	}

	cores = append(cores, filterLevels(core, func(l zapcore.Level) bool {
		return l >= zapcore.ErrorLevel || !sampled[l]
	}))
	return zapcore.NewTee(cores...)
}

// levelFilterCore passes only entries whose level is accepted.
type levelFilterCore struct {
	zapcore.Core
	accept func(zapcore.Level) bool
}

func filterLevels(core zapcore.Core, accept func(zapcore.Level) bool) zapcore.Core {
	return &levelFilterCore{Core: core, accept: accept}
}

func (c *levelFilterCore) Enabled(lvl zapcore.Level) bool {
	return c.accept(lvl) && c.Core.Enabled(lvl)
}

func (c *levelFilterCore) Check(e zapcore.Entry, ce *zapcore.CheckedEntry) *zapcore.CheckedEntry {
	if !c.accept(e.Level) {
		return ce
	}
	return c.Core.Check(e, ce)
}

func (c *levelFilterCore) With(fields []zapcore.Field) zapcore.Core {
	return &levelFilterCore{Core: c.Core.With(fields), accept: c.accept}
}
