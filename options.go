package termgpu

import (
	"io"

	"github.com/gogpu/termgpu/present"
)

// EngineOption configures an Engine during creation.
//
// Example:
//
//	cfg, err := termgpu.LoadConfig("termgpu.toml")
//	...
//	e, err := termgpu.New(termgpu.WithConfig(cfg), termgpu.WithOutput(os.Stdout))
type EngineOption func(*engineOptions)

type engineOptions struct {
	config    Config
	presenter present.Presenter
	output    io.Writer
	onError   func(source string, err error)
}

func defaultOptions() engineOptions {
	return engineOptions{config: DefaultConfig()}
}

// WithConfig replaces the default configuration.
func WithConfig(cfg Config) EngineOption {
	return func(o *engineOptions) {
		o.config = cfg
	}
}

// WithPresenter sets the presenter directly, bypassing the [present]
// section of the configuration.
func WithPresenter(p present.Presenter) EngineOption {
	return func(o *engineOptions) {
		o.presenter = p
	}
}

// WithOutput sets the writer handed to the configured presenter backend,
// typically the terminal connection.
func WithOutput(w io.Writer) EngineOption {
	return func(o *engineOptions) {
		o.output = w
	}
}

// WithErrorHandler receives failures of timer-triggered runs. Failures
// of pipe runs are returned to the sender instead.
func WithErrorHandler(fn func(source string, err error)) EngineOption {
	return func(o *engineOptions) {
		o.onError = fn
	}
}
