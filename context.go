// Copyright (C) 2019-2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package dominium

import (
	"sync"

	"github.com/luxfi/log"
	"github.com/luxfi/metric"
)

// Context is the root resource bundle threaded through a running
// simulation: shared logging/metrics plumbing plus the kernel
// parameters every subsystem was constructed with. It mirrors the
// teacher's ChainContext in shape (a plain struct of shared
// resources, an optional lock for callers that share one Context
// across goroutines), but carries none of the chain/network-specific
// fields — this kernel has no subnets, chains, or validators.
type Context struct {
	// Lock guards fields below for callers that choose to share a
	// Context across goroutines. The kernel itself never locks
	// internally; see §5 of the specification this module implements.
	Lock sync.RWMutex

	Log        log.Logger
	Metrics    metric.Registry
	Parameters Parameters
}

// NewContext builds a Context from explicit dependencies. A nil
// logger is valid: every call site in this module checks for nil
// before logging, so passing nil is equivalent to a no-op logger
// without requiring a dedicated noop type.
func NewContext(logger log.Logger, metrics metric.Registry, params Parameters) *Context {
	if params == nil {
		params = DefaultParameters
	}
	return &Context{
		Log:        logger,
		Metrics:    metrics,
		Parameters: params,
	}
}

// DebugRefusal logs an expected-control-flow refusal at debug level
// if a logger is configured. Refusals are not faults; they never log
// above debug.
func (c *Context) DebugRefusal(msg string, fields ...any) {
	if c == nil || c.Log == nil {
		return
	}
	c.Log.Debug(msg, fields...)
}
