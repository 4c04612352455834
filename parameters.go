// Copyright (C) 2019-2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package dominium

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidMinConfidence is returned when the minimum retained
	// belief confidence is out of range.
	ErrInvalidMinConfidence = errors.New("min confidence must be < confidence max")

	// ErrInvalidPlanMaxSteps is returned when the configured plan step
	// ceiling is zero or exceeds the kernel-wide hard limit.
	ErrInvalidPlanMaxSteps = errors.New("plan max steps must be in (0, 8]")

	// ErrInvalidHouseholdMax is returned when the configured household
	// member ceiling is zero or exceeds the kernel-wide hard limit.
	ErrInvalidHouseholdMax = errors.New("household max members must be in (0, 32]")

	// ErrInvalidCollapseThreshold is returned when a collapse interest
	// threshold is configured above ConfidenceMax.
	ErrInvalidCollapseThreshold = errors.New("collapse block threshold must be <= confidence max")
)

// KernelHardPlanMaxSteps and KernelHardHouseholdMax are the absolute
// ceilings no Parameters value may exceed, regardless of
// configuration (spec §6 constants).
const (
	KernelHardPlanMaxSteps = 8
	KernelHardHouseholdMax = 32
)

// Parameters is the kernel-wide configuration every subsystem reads
// at construction time. Like the teacher's consensus Parameters, it is
// implemented by an unexported struct behind a constructor and a
// Valid() gate, never mutated after NewParameters returns.
type Parameters interface {
	// DecayQ16PerAct is the per-tick Q16 confidence decay rate applied
	// by belief.Store.Decay.
	DecayQ16PerAct() uint32
	// MinConfidenceQ16 is the confidence floor below which a belief
	// entry is evicted.
	MinConfidenceQ16() uint32
	// PlanMaxSteps is the configured plan step ceiling. The planner
	// does not read it; planner.Build takes its ceiling from
	// Options.MaxSteps, defaulting to planner.MaxSteps.
	PlanMaxSteps() uint32
	// HouseholdMaxMembers is the configured household member ceiling.
	HouseholdMaxMembers() uint32
	// CollapseBlockThresholdQ16 is the interest-strength threshold at
	// or above which ARC collapse is refused.
	CollapseBlockThresholdQ16() uint32
	// Valid returns a non-nil error if the parameters are out of
	// range.
	Valid() error
	// String renders a human-readable summary for logs.
	String() string
}

type params struct {
	decayQ16PerAct            uint32
	minConfidenceQ16          uint32
	planMaxSteps              uint32
	householdMaxMembers       uint32
	collapseBlockThresholdQ16 uint32
}

// DefaultParameters are the production-tuned kernel parameters.
var DefaultParameters Parameters = &params{
	decayQ16PerAct:            40000,
	minConfidenceQ16:          1000,
	planMaxSteps:              KernelHardPlanMaxSteps,
	householdMaxMembers:       KernelHardHouseholdMax,
	collapseBlockThresholdQ16: ConfidenceMax / 2,
}

// TestParameters are small-scale parameters suitable for unit tests
// that want to exercise boundaries quickly.
var TestParameters Parameters = &params{
	decayQ16PerAct:            10000,
	minConfidenceQ16:          1000,
	planMaxSteps:              4,
	householdMaxMembers:       4,
	collapseBlockThresholdQ16: ConfidenceMax / 4,
}

// NewParameters constructs Parameters from explicit knobs.
func NewParameters(decayQ16PerAct, minConfidenceQ16, planMaxSteps, householdMaxMembers, collapseBlockThresholdQ16 uint32) Parameters {
	return &params{
		decayQ16PerAct:            decayQ16PerAct,
		minConfidenceQ16:          minConfidenceQ16,
		planMaxSteps:              planMaxSteps,
		householdMaxMembers:       householdMaxMembers,
		collapseBlockThresholdQ16: collapseBlockThresholdQ16,
	}
}

func (p *params) DecayQ16PerAct() uint32            { return p.decayQ16PerAct }
func (p *params) MinConfidenceQ16() uint32          { return p.minConfidenceQ16 }
func (p *params) PlanMaxSteps() uint32              { return p.planMaxSteps }
func (p *params) HouseholdMaxMembers() uint32       { return p.householdMaxMembers }
func (p *params) CollapseBlockThresholdQ16() uint32 { return p.collapseBlockThresholdQ16 }

func (p *params) Valid() error {
	switch {
	case p.minConfidenceQ16 >= ConfidenceMax:
		return ErrInvalidMinConfidence
	case p.planMaxSteps == 0 || p.planMaxSteps > KernelHardPlanMaxSteps:
		return ErrInvalidPlanMaxSteps
	case p.householdMaxMembers == 0 || p.householdMaxMembers > KernelHardHouseholdMax:
		return ErrInvalidHouseholdMax
	case p.collapseBlockThresholdQ16 > ConfidenceMax:
		return ErrInvalidCollapseThreshold
	default:
		return nil
	}
}

func (p *params) String() string {
	return fmt.Sprintf(
		"Parameters{DecayQ16PerAct=%d, MinConfidenceQ16=%d, PlanMaxSteps=%d, HouseholdMaxMembers=%d, CollapseBlockThresholdQ16=%d}",
		p.decayQ16PerAct, p.minConfidenceQ16, p.planMaxSteps, p.householdMaxMembers, p.collapseBlockThresholdQ16,
	)
}
