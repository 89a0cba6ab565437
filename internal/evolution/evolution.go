// Package evolution turns a list of mutations into an executable plan.
//
// Planning follows the mutation contract: every mutation renders its DDL
// against the working signature and then advances it, in order. The working
// signature is a clone of the base, so the caller's signatures are never
// touched. Verify checks the resulting signature against the target, which is
// the round-trip guarantee an evolution must give before it is executed.
package evolution

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"slices"

	"github.com/tordrt/schemaevolve/internal/backend"
	"github.com/tordrt/schemaevolve/internal/diff"
	"github.com/tordrt/schemaevolve/internal/mutation"
	"github.com/tordrt/schemaevolve/internal/signature"
)

// ErrIncompleteEvolution is returned when a planned evolution does not carry
// the base signature to the target.
var ErrIncompleteEvolution = errors.New("evolution does not reproduce the target signature")

// Executor runs DDL statements against a database.
type Executor interface {
	ExecDDL(ctx context.Context, stmts []string) error
}

// Evolver plans and executes evolutions for one SQL dialect.
type Evolver struct {
	adapter backend.Adapter
	logger  *slog.Logger
}

// Option configures an Evolver.
type Option func(*Evolver)

// WithLogger sets the logger. A nil logger discards output.
func WithLogger(logger *slog.Logger) Option {
	return func(e *Evolver) {
		e.logger = logger
	}
}

// New returns an Evolver rendering DDL through adapter.
func New(adapter backend.Adapter, opts ...Option) *Evolver {
	e := &Evolver{adapter: adapter}
	for _, opt := range opts {
		opt(e)
	}
	if e.logger == nil {
		e.logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return e
}

// Adapter returns the dialect adapter the evolver renders with.
func (e *Evolver) Adapter() backend.Adapter { return e.adapter }

// Step is one planned mutation and its statements.
type Step struct {
	Namespace string
	Mutation  mutation.Mutation
	SQL       []string
}

// Plan is the outcome of planning an evolution.
type Plan struct {
	Dialect string
	Steps   []Step
	// Result is the working signature after every step was simulated.
	Result *signature.Project
}

// Empty reports whether the plan has no steps.
func (p *Plan) Empty() bool {
	return p == nil || len(p.Steps) == 0
}

// Statements returns every statement of the plan in execution order.
func (p *Plan) Statements() []string {
	if p == nil {
		return nil
	}
	var stmts []string
	for _, step := range p.Steps {
		stmts = append(stmts, step.SQL...)
	}
	return stmts
}

// Namespaces returns the namespaces touched by the plan, in plan order.
func (p *Plan) Namespaces() []string {
	var names []string
	for _, step := range p.Steps {
		if !slices.Contains(names, step.Namespace) {
			names = append(names, step.Namespace)
		}
	}
	return names
}

// StepsFor returns the steps of one namespace.
func (p *Plan) StepsFor(namespace string) []Step {
	var steps []Step
	for _, step := range p.Steps {
		if step.Namespace == namespace {
			steps = append(steps, step)
		}
	}
	return steps
}

// Plan renders and simulates the evolution against a clone of base.
// Namespaces are processed in name order.
func (e *Evolver) Plan(base *signature.Project, evolution map[string][]mutation.Mutation) (*Plan, error) {
	work := base.Clone()
	plan := &Plan{Dialect: e.adapter.Name()}

	namespaces := make([]string, 0, len(evolution))
	for ns := range evolution {
		namespaces = append(namespaces, ns)
	}
	slices.Sort(namespaces)

	for _, ns := range namespaces {
		for _, m := range evolution[ns] {
			if r, ok := m.(*mutation.RenameField); ok {
				for _, attr := range r.IgnoredArguments(ns, work) {
					e.logger.Info("ignoring rename argument",
						slog.String("namespace", ns),
						slog.String("mutation", r.String()),
						slog.String("argument", string(attr)))
				}
			}

			stmts, err := m.Mutate(ns, work, e.adapter)
			if err != nil {
				return nil, fmt.Errorf("failed to render %s in %s: %w", m, ns, err)
			}
			if err := m.Simulate(ns, work); err != nil {
				return nil, fmt.Errorf("failed to simulate %s in %s: %w", m, ns, err)
			}
			e.logger.Debug("planned mutation",
				slog.String("namespace", ns),
				slog.String("mutation", m.String()),
				slog.Int("statements", len(stmts)))

			plan.Steps = append(plan.Steps, Step{Namespace: ns, Mutation: m, SQL: stmts})
		}
	}
	plan.Result = work
	return plan, nil
}

// Verify checks that the plan's resulting signature matches target.
func (e *Evolver) Verify(plan *Plan, target *signature.Project) error {
	remaining := diff.Compute(plan.Result, target)
	if remaining.IsEmpty() {
		return nil
	}
	e.logger.Warn("evolution is incomplete", slog.String("remaining", remaining.String()))
	return fmt.Errorf("%w:\n%s", ErrIncompleteEvolution, remaining)
}

// Execute runs the plan's statements through exec.
func (e *Evolver) Execute(ctx context.Context, exec Executor, plan *Plan) error {
	if plan.Empty() {
		e.logger.Info("nothing to evolve")
		return nil
	}
	stmts := plan.Statements()
	e.logger.Info("executing evolution",
		slog.String("dialect", plan.Dialect),
		slog.Int("mutations", len(plan.Steps)),
		slog.Int("statements", len(stmts)))
	if err := exec.ExecDDL(ctx, stmts); err != nil {
		return fmt.Errorf("failed to execute evolution: %w", err)
	}
	return nil
}
