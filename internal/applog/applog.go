// Copyright 2026 The LLMSpell Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//	http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package applog builds the zap.Logger every llmspell component
// takes by constructor injection. There is deliberately no package
// level logger: tests construct their own via zaptest and components
// that forget to wire one get a compile error, not silent nil
// dereferences at 2am.
package applog

import (
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Config selects the logger's output shape.
type Config struct {
	// Level is one of debug, info, warn, error. Empty defaults to info.
	Level string
	// Development enables human-readable console output instead of JSON.
	Development bool
}

// New builds a *zap.Logger from cfg. Callers that want a no-op logger
// for tests should use go.uber.org/zap's zap.NewNop() directly rather
// than routing through here.
func New(cfg Config) (*zap.Logger, error) {
	var zcfg zap.Config
	if cfg.Development {
		zcfg = zap.NewDevelopmentConfig()
	} else {
		zcfg = zap.NewProductionConfig()
	}
	level, err := levelFromString(cfg.Level)
	if err != nil {
		return nil, err
	}
	zcfg.Level = zap.NewAtomicLevelAt(level)
	return zcfg.Build()
}

func levelFromString(s string) (zapcore.Level, error) {
	if s == "" {
		return zapcore.InfoLevel, nil
	}
	var lvl zapcore.Level
	if err := lvl.UnmarshalText([]byte(s)); err != nil {
		return zapcore.InfoLevel, err
	}
	return lvl, nil
}

// NoOp returns a logger that discards everything, for components
// constructed without explicit logging configuration (mirroring the
// zap.NewNop() default this module's constructors apply to a nil logger).
func NoOp() *zap.Logger { return zap.NewNop() }
