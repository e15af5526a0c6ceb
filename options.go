// Copyright 2026 Joseph Cumines
//
// Permission to use, copy, modify, and distribute this software for any
// purpose with or without fee is hereby granted, provided that this copyright
// notice appears in all copies.

package modelchecker

import (
	"github.com/joeycumines/logiface"
	islog "github.com/joeycumines/logiface-slog"
)

// poolOptions holds configuration options for Pool creation.
type poolOptions struct {
	workers int
	logger  *logiface.Logger[*islog.Event]
}

// Option configures a Pool instance.
type Option interface {
	applyPool(*poolOptions)
}

type optionFunc func(*poolOptions)

func (f optionFunc) applyPool(opts *poolOptions) { f(opts) }

// WithWorkers sets the number of worker goroutines a Pool runs its search
// across. The default, if unset or non-positive, is runtime.NumCPU().
func WithWorkers(n int) Option {
	return optionFunc(func(opts *poolOptions) {
		opts.workers = n
	})
}

// WithLogger attaches a structured logger a Pool uses to report the start
// and end of each Run (including any failing path found) and each trial that
// fails its check. Worker lifecycle and steal activity are not logged.
// Without this option, logging is a no-op.
func WithLogger(logger *logiface.Logger[*islog.Event]) Option {
	return optionFunc(func(opts *poolOptions) {
		opts.logger = logger
	})
}
