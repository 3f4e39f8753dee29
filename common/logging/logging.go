// Copyright (c) 2025 Sonic Operations Ltd
//
// Use of this software is governed by the Business Source License included
// in the LICENSE file and at soniclabs.com/bsl11.
//
// Change Date: 2028-4-16
//
// On the date above, in accordance with the Business Source License, use of
// this software will be governed by the GNU Lesser General Public License v3.

// Package logging provides the loggers used by the command line tools.
package logging

import (
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// New creates a human readable logger writing to stderr. Debug messages are
// only included if verbose is set.
func New(verbose bool) (*zap.Logger, error) {
	level := zapcore.InfoLevel
	if verbose {
		level = zapcore.DebugLevel
	}
	config := zap.Config{
		Level:             zap.NewAtomicLevelAt(level),
		Encoding:          "console",
		DisableStacktrace: true,
		EncoderConfig: zapcore.EncoderConfig{
			TimeKey:        "time",
			LevelKey:       "level",
			MessageKey:     "msg",
			LineEnding:     zapcore.DefaultLineEnding,
			EncodeLevel:    zapcore.CapitalLevelEncoder,
			EncodeTime:     zapcore.ISO8601TimeEncoder,
			EncodeDuration: zapcore.StringDurationEncoder,
		},
		OutputPaths:      []string{"stderr"},
		ErrorOutputPaths: []string{"stderr"},
	}
	return config.Build()
}

// ProgressLogger reports the progress of a long running operation every
// time a given number of steps has been completed.
type ProgressLogger struct {
	logger   *zap.Logger
	what     string
	interval uint64
	counter  uint64
	start    time.Time
	last     time.Time
}

// NewProgressLogger creates a progress logger reporting on the given logger
// after every interval steps. The operation is assumed to start now.
func NewProgressLogger(logger *zap.Logger, what string, interval uint64) *ProgressLogger {
	now := time.Now()
	return &ProgressLogger{
		logger:   logger,
		what:     what,
		interval: max(interval, 1),
		start:    now,
		last:     now,
	}
}

// Step records the completion of the given number of steps.
func (p *ProgressLogger) Step(steps uint64) {
	before := p.counter / p.interval
	p.counter += steps
	if p.counter/p.interval == before {
		return
	}
	now := time.Now()
	p.logger.Info("progress",
		zap.String("of", p.what),
		zap.Uint64("done", p.counter),
		zap.Float64("rate", rate(p.interval, now.Sub(p.last))),
	)
	p.last = now
}

// Done logs a summary of the operation.
func (p *ProgressLogger) Done() {
	elapsed := time.Since(p.start)
	p.logger.Info("finished",
		zap.String("of", p.what),
		zap.Uint64("done", p.counter),
		zap.Duration("elapsed", elapsed),
		zap.Float64("rate", rate(p.counter, elapsed)),
	)
}

// Count returns the number of steps recorded so far.
func (p *ProgressLogger) Count() uint64 {
	return p.counter
}

// rate computes steps per second.
func rate(steps uint64, elapsed time.Duration) float64 {
	if elapsed <= 0 {
		return 0
	}
	return float64(steps) / elapsed.Seconds()
}
