// Copyright (C) 2019-2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package population

import (
	"errors"
	"fmt"

	"github.com/luxfi/log"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/luxfi/dominium"
	"github.com/luxfi/dominium/due"
	"github.com/luxfi/dominium/refusal"
)

// CohortHook processes one due cohort tick and returns the cohort's
// next due tick, or due.TickNone to retire it.
type CohortHook func(cohort *Cohort, nowTick dominium.ActTime) dominium.ActTime

// MigrationHook overrides default migration application.
type MigrationHook func(flow *Flow)

var (
	errCohortTicksMetric = errors.New("failed to register cohort ticks metric")
	errMigrationsMetric  = errors.New("failed to register migrations metric")
)

// Scheduler drives cohort ticks and migration arrivals through the
// shared due scheduler. It never iterates cohorts globally: only
// entries whose due tick is at or before the advance target fire.
type Scheduler struct {
	due            *due.Scheduler
	cohorts        *CohortRegistry
	migrations     *MigrationRegistry
	cohortHook     CohortHook
	migrationHook  MigrationHook
	startTick      dominium.ActTime
	processedLast  uint64
	processedTotal uint64
	log            log.Logger

	cohortTicks       prometheus.Counter
	migrationsApplied prometheus.Counter
}

// cohortDispatcher adapts one cohort to the due scheduler. A cohort
// with zero count never fires.
type cohortDispatcher struct {
	sched  *Scheduler
	cohort *Cohort
}

func (d *cohortDispatcher) NextTick(dominium.ActTime) dominium.ActTime {
	if d.cohort == nil || d.cohort.Count == 0 {
		return due.TickNone
	}
	return d.cohort.NextDueTick
}

func (d *cohortDispatcher) ProcessUntil(targetTick dominium.ActTime) dominium.ActTime {
	cohort := d.cohort
	if cohort == nil || cohort.Count == 0 {
		return due.TickNone
	}
	next := cohort.NextDueTick
	if next == due.TickNone || next > targetTick {
		return next
	}
	sched := d.sched
	for next != due.TickNone && next <= targetTick {
		sched.processedLast++
		sched.processedTotal++
		if sched.cohortTicks != nil {
			sched.cohortTicks.Inc()
		}
		if sched.cohortHook != nil {
			next = sched.cohortHook(cohort, next)
		} else {
			next = due.TickNone
		}
		cohort.NextDueTick = next
	}
	return next
}

// migrationDispatcher adapts one flow to the due scheduler, firing at
// its arrival act.
type migrationDispatcher struct {
	sched *Scheduler
	flow  *Flow
}

func (d *migrationDispatcher) NextTick(dominium.ActTime) dominium.ActTime {
	if d.flow == nil || d.flow.Status != FlowActive {
		return due.TickNone
	}
	return d.flow.ArrivalAct
}

func (d *migrationDispatcher) ProcessUntil(targetTick dominium.ActTime) dominium.ActTime {
	flow := d.flow
	if flow == nil || flow.Status != FlowActive {
		return due.TickNone
	}
	if flow.ArrivalAct == due.TickNone || flow.ArrivalAct > targetTick {
		return flow.ArrivalAct
	}
	sched := d.sched
	sched.processedLast++
	sched.processedTotal++
	if sched.migrationsApplied != nil {
		sched.migrationsApplied.Inc()
	}
	if sched.migrationHook != nil {
		sched.migrationHook(flow)
	} else if sched.cohorts != nil {
		if code := Apply(flow, sched.cohorts); code != refusal.PopNone && sched.log != nil {
			sched.log.Debug("migration refused",
				log.Uint64("flow", flow.FlowID),
				log.Stringer("refusal", code))
		}
	}
	flow.ArrivalAct = due.TickNone
	flow.Status = FlowCompleted
	return due.TickNone
}

// NewScheduler constructs a population Scheduler over the cohort and
// migration registries, registering its metrics with reg when
// non-nil. startTick seeds newly registered cohorts whose due tick is
// still "never".
func NewScheduler(cohorts *CohortRegistry, migrations *MigrationRegistry, capacity int, startTick dominium.ActTime, logger log.Logger, reg prometheus.Registerer) (*Scheduler, error) {
	s := &Scheduler{
		due:        due.NewScheduler(capacity),
		cohorts:    cohorts,
		migrations: migrations,
		startTick:  startTick,
		log:        logger,
	}
	if reg != nil {
		s.cohortTicks = prometheus.NewCounter(prometheus.CounterOpts{
			Name: "population_cohort_ticks",
			Help: "Number of cohort due ticks processed",
		})
		if err := reg.Register(s.cohortTicks); err != nil {
			return nil, fmt.Errorf("%w: %w", errCohortTicksMetric, err)
		}
		s.migrationsApplied = prometheus.NewCounter(prometheus.CounterOpts{
			Name: "population_migrations_applied",
			Help: "Number of migration flows applied",
		})
		if err := reg.Register(s.migrationsApplied); err != nil {
			return nil, fmt.Errorf("%w: %w", errMigrationsMetric, err)
		}
	}
	return s, nil
}

// SetCohortHook installs the per-cohort tick hook.
func (s *Scheduler) SetCohortHook(hook CohortHook) { s.cohortHook = hook }

// SetMigrationHook overrides default migration application.
func (s *Scheduler) SetMigrationHook(hook MigrationHook) { s.migrationHook = hook }

// RegisterCohort enrolls a cohort, seeding a "never" due tick with
// the scheduler's start tick.
func (s *Scheduler) RegisterCohort(cohort *Cohort) error {
	if cohort == nil {
		return ErrRegistryFull
	}
	if cohort.NextDueTick == dominium.ActTimeMax {
		cohort.NextDueTick = s.startTick
	}
	if _, ok := s.due.Register(cohort.CohortID, &cohortDispatcher{sched: s, cohort: cohort}, cohort.NextDueTick); !ok {
		return ErrRegistryFull
	}
	return nil
}

// RegisterMigration enrolls a flow to fire at its arrival act.
func (s *Scheduler) RegisterMigration(flow *Flow) error {
	if flow == nil {
		return ErrRegistryFull
	}
	if _, ok := s.due.Register(flow.FlowID, &migrationDispatcher{sched: s, flow: flow}, flow.ArrivalAct); !ok {
		return ErrRegistryFull
	}
	return nil
}

// Advance processes every due cohort tick and migration arrival at or
// before targetTick in (tick, id) order.
func (s *Scheduler) Advance(targetTick dominium.ActTime) {
	s.processedLast = 0
	s.due.Advance(targetTick)
}

// ProcessedLast returns the number of due events processed by the
// most recent Advance.
func (s *Scheduler) ProcessedLast() uint64 { return s.processedLast }

// ProcessedTotal returns the number of due events processed over the
// scheduler's lifetime.
func (s *Scheduler) ProcessedTotal() uint64 { return s.processedTotal }

// NextDue returns the earliest pending due tick, or due.TickNone.
func (s *Scheduler) NextDue() dominium.ActTime {
	tick, _, ok := s.due.NextDue()
	if !ok {
		return due.TickNone
	}
	return tick
}
