// Package comparison runs side-by-side energy estimates for two model descriptions and
// keeps the resulting draft report until it is replaced.
package comparison

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/aura-dashboard/backend/internal/llm"
	"github.com/aura-dashboard/backend/internal/metrics"
	"github.com/aura-dashboard/backend/internal/report"
	"github.com/aura-dashboard/backend/pkg/logger"
)

type State int

const (
	StateIdle State = iota
	StateComparing
	StateReady
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateComparing:
		return "comparing"
	case StateReady:
		return "ready"
	default:
		return "unknown"
	}
}

var (
	ErrComparisonInFlight = errors.New("a comparison is already in progress")
	ErrNoComparison       = errors.New("no comparison is ready")
)

// PredictionError reports which side's estimate failed.
type PredictionError struct {
	Side string
	Err  error
}

func (e *PredictionError) Error() string {
	return fmt.Sprintf("energy prediction for %s failed: %v", e.Side, e.Err)
}

func (e *PredictionError) Unwrap() error { return e.Err }

type Estimator interface {
	PredictEnergy(ctx context.Context, in llm.EnergyPredictionInput) (*llm.EnergyPrediction, error)
}

type Submission struct {
	Title  string            `json:"title"`
	ModelA report.ModelInput `json:"modelA"`
	ModelB report.ModelInput `json:"modelB"`
}

// Event describes one state transition. Draft is set on entering Ready, Err on a
// failed comparison.
type Event struct {
	From  State
	To    State
	Draft *report.Draft
	Err   error
}

type Orchestrator struct {
	estimator Estimator
	builder   *report.Builder

	mu          sync.Mutex
	state       State
	current     *report.Draft
	subscribers map[int]func(Event)
	nextSubID   int
}

func NewOrchestrator(estimator Estimator, builder *report.Builder) *Orchestrator {
	if builder == nil {
		builder = report.NewBuilder()
	}
	return &Orchestrator{
		estimator:   estimator,
		builder:     builder,
		subscribers: make(map[int]func(Event)),
	}
}

// Submit estimates both sides concurrently and, when both succeed, replaces the current
// draft. Any failure leaves no draft behind. A submission made while another is in flight
// is rejected with ErrComparisonInFlight. Cancelling ctx does not abort a started comparison.
func (o *Orchestrator) Submit(ctx context.Context, sub Submission) (report.Draft, error) {
	a := ApplyPreset(sub.ModelA)
	b := ApplyPreset(sub.ModelB)
	if err := ValidateInput(report.ModelAName, a); err != nil {
		return report.Draft{}, err
	}
	if err := ValidateInput(report.ModelBName, b); err != nil {
		return report.Draft{}, err
	}

	if err := o.begin(); err != nil {
		return report.Draft{}, err
	}

	logger.Info("Comparison started",
		zap.String("model_a", a.Architecture),
		zap.String("model_b", b.Architecture),
	)

	predA, predB, err := o.predictBoth(context.WithoutCancel(ctx), a, b)
	if err != nil {
		o.fail(err)
		return report.Draft{}, err
	}

	draft, err := o.builder.Build(sub.Title,
		report.Side{Input: a, Prediction: predA},
		report.Side{Input: b, Prediction: predB},
	)
	if err != nil {
		o.fail(err)
		return report.Draft{}, err
	}

	o.finish(draft)
	return draft, nil
}

func (o *Orchestrator) predictBoth(ctx context.Context, a, b report.ModelInput) (*report.Prediction, *report.Prediction, error) {
	var predA, predB *report.Prediction

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		p, err := o.predict(gctx, report.ModelAName, a)
		predA = p
		return err
	})
	g.Go(func() error {
		p, err := o.predict(gctx, report.ModelBName, b)
		predB = p
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, nil, err
	}
	return predA, predB, nil
}

func (o *Orchestrator) predict(ctx context.Context, side string, in report.ModelInput) (*report.Prediction, error) {
	start := time.Now()
	out, err := o.estimator.PredictEnergy(ctx, llm.EnergyPredictionInput{
		ModelArchitecture: in.Architecture,
		DataSize:          in.DataSize,
	})
	metrics.PredictionDuration.WithLabelValues(side).Observe(time.Since(start).Seconds())
	if err != nil {
		return nil, &PredictionError{Side: side, Err: err}
	}
	if out == nil {
		return nil, &PredictionError{Side: side, Err: errors.New("estimator returned no prediction")}
	}
	return &report.Prediction{
		PredictedEnergyConsumption: out.PredictedEnergyConsumption,
		ConfidenceLevel:            out.ConfidenceLevel,
		VisualizationType:          out.VisualizationType,
	}, nil
}

func (o *Orchestrator) begin() error {
	o.mu.Lock()
	if o.state == StateComparing {
		o.mu.Unlock()
		metrics.ComparisonsTotal.WithLabelValues("rejected").Inc()
		return ErrComparisonInFlight
	}
	from := o.state
	o.state = StateComparing
	o.current = nil
	subs := o.snapshotSubscribers()
	o.mu.Unlock()

	notify(subs, Event{From: from, To: StateComparing})
	return nil
}

func (o *Orchestrator) fail(err error) {
	o.mu.Lock()
	o.state = StateIdle
	o.current = nil
	subs := o.snapshotSubscribers()
	o.mu.Unlock()

	metrics.ComparisonsTotal.WithLabelValues("failed").Inc()
	logger.Error("Comparison failed", zap.Error(err))
	notify(subs, Event{From: StateComparing, To: StateIdle, Err: err})
}

func (o *Orchestrator) finish(d report.Draft) {
	o.mu.Lock()
	o.state = StateReady
	o.current = &d
	subs := o.snapshotSubscribers()
	o.mu.Unlock()

	metrics.ComparisonsTotal.WithLabelValues("succeeded").Inc()
	logger.Info("Comparison ready",
		zap.String("title", d.Title),
		zap.Float64("model_a_energy", d.ChartData[0].Energy),
		zap.Float64("model_b_energy", d.ChartData[1].Energy),
	)

	ready := d
	notify(subs, Event{From: StateComparing, To: StateReady, Draft: &ready})
}

func (o *Orchestrator) State() State {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.state
}

// Current returns a copy of the ready draft.
func (o *Orchestrator) Current() (report.Draft, error) {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.state != StateReady || o.current == nil {
		return report.Draft{}, ErrNoComparison
	}
	return *o.current, nil
}

// Subscribe registers fn for every state transition. Callbacks run on the goroutine
// that caused the transition and must not block. The returned func unsubscribes.
func (o *Orchestrator) Subscribe(fn func(Event)) func() {
	o.mu.Lock()
	id := o.nextSubID
	o.nextSubID++
	o.subscribers[id] = fn
	o.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			o.mu.Lock()
			delete(o.subscribers, id)
			o.mu.Unlock()
		})
	}
}

func (o *Orchestrator) snapshotSubscribers() []func(Event) {
	subs := make([]func(Event), 0, len(o.subscribers))
	for _, fn := range o.subscribers {
		subs = append(subs, fn)
	}
	return subs
}

func notify(subs []func(Event), ev Event) {
	for _, fn := range subs {
		fn(ev)
	}
}
