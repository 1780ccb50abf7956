package termgpu

import (
	"context"
	"fmt"
	"time"

	"github.com/gogpu/termgpu/action"
	"github.com/gogpu/termgpu/present"
	"github.com/gogpu/termgpu/resource"
	"github.com/gogpu/termgpu/schedule"
	"github.com/gogpu/termgpu/shader"

	// Register the shader backends named by ExecutorConfig.
	_ "github.com/gogpu/termgpu/shader/interp"
	_ "github.com/gogpu/termgpu/shader/jit"
)

// Engine owns one resource graph: its resources, the action lists that
// mutate them and the queue that serializes their runs.
type Engine struct {
	cfg       Config
	resources *resource.Pool
	sched     *schedule.Scheduler
	runner    *action.Runner
	presenter present.Presenter
}

// New creates an engine. The configuration is validated and the
// presenter created before New returns.
func New(opts ...EngineOption) (*Engine, error) {
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}
	if err := o.config.Validate(); err != nil {
		return nil, err
	}

	p := o.presenter
	if p == nil {
		var err error
		p, err = present.New(o.config.Present.Backend, present.Config{
			Output:  o.output,
			Profile: o.config.Present.Profile,
		})
		if err != nil {
			return nil, fmt.Errorf("termgpu: %w", err)
		}
	}

	return &Engine{
		cfg:       o.config,
		resources: resource.NewPool(),
		sched: schedule.New(schedule.Options{
			QueueDepth:    o.config.Scheduler.QueueDepth,
			CoalesceTicks: o.config.Scheduler.CoalesceTicks,
			OnError:       o.onError,
		}),
		runner: &action.Runner{
			Presenter: p,
			MaxDepth:  o.config.Actions.MaxTriggerDepth,
		},
		presenter: p,
	}, nil
}

// Config returns the configuration the engine was created with.
func (e *Engine) Config() Config { return e.cfg }

// Resources returns the handle pool of the engine's images and buffers.
func (e *Engine) Resources() *resource.Pool { return e.resources }

// Presenter returns the presenter that receives Present actions.
func (e *Engine) Presenter() present.Presenter { return e.presenter }

// Compile builds an executor for m using the configured backend order.
func (e *Engine) Compile(m *shader.Module) (shader.Executor, error) {
	return shader.NewExecutorWith(m, e.cfg.Executor.Backends...)
}

// CompileBytes decodes a bytecode module and compiles it.
func (e *Engine) CompileBytes(data []byte) (shader.Executor, error) {
	m, err := shader.NewModule(data)
	if err != nil {
		return nil, err
	}
	return e.Compile(m)
}

func (e *Engine) runList(list *action.List) schedule.RunFunc {
	return func(ctx context.Context, payload []byte, timer float32) error {
		return e.runner.Run(ctx, list, action.NewState(payload, timer))
	}
}

// Execute queues one run of list and waits for it. It needs a running
// engine.
func (e *Engine) Execute(ctx context.Context, list *action.List, payload []byte) error {
	return e.sched.Queue().Do(ctx, func(ctx context.Context) error {
		return e.runList(list)(ctx, payload, e.sched.Elapsed())
	})
}

// BindPipe returns a pipe that runs list with each payload it is sent.
func (e *Engine) BindPipe(name string, list *action.List) *schedule.Pipe {
	return e.sched.Pipe(name, e.runList(list))
}

// BindTimer runs list every period until the timer is stopped. The
// period must be positive.
func (e *Engine) BindTimer(name string, period time.Duration, list *action.List) (*schedule.Timer, error) {
	return e.sched.Every(name, period, e.runList(list))
}

// Run processes runs until ctx is done. Pending runs are failed with
// schedule.ErrClosed when it returns.
func (e *Engine) Run(ctx context.Context) error {
	Logger().Info("termgpu: engine started",
		"backends", e.cfg.Executor.Backends, "present", e.cfg.Present.Backend)
	err := e.sched.Run(ctx)
	Logger().Info("termgpu: engine stopped", "err", err)
	return err
}
