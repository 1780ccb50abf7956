package termgpu

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/pelletier/go-toml/v2"

	"github.com/gogpu/termgpu/action"
	"github.com/gogpu/termgpu/present"
	"github.com/gogpu/termgpu/schedule"
	"github.com/gogpu/termgpu/shader"
)

// Config is the engine configuration, usually read from a TOML file:
//
//	[executor]
//	backends = ["jit", "interpreter"]
//
//	[scheduler]
//	queue_depth = 64
//	coalesce_ticks = true
//
//	[actions]
//	max_trigger_depth = 8
//
//	[present]
//	backend = "ansi"
//	profile = "truecolor"
type Config struct {
	Executor  ExecutorConfig  `toml:"executor"`
	Scheduler SchedulerConfig `toml:"scheduler"`
	Actions   ActionsConfig   `toml:"actions"`
	Present   PresentConfig   `toml:"present"`
}

// ExecutorConfig selects shader backends.
type ExecutorConfig struct {
	// Backends lists shader backends in the order they are tried.
	Backends []string `toml:"backends"`
}

// SchedulerConfig tunes the run queue.
type SchedulerConfig struct {
	QueueDepth    int  `toml:"queue_depth"`
	CoalesceTicks bool `toml:"coalesce_ticks"`
}

// ActionsConfig tunes action list execution.
type ActionsConfig struct {
	MaxTriggerDepth int `toml:"max_trigger_depth"`
}

// PresentConfig selects the presenter backend.
type PresentConfig struct {
	Backend string `toml:"backend"`
	Profile string `toml:"profile"`
}

// ErrInvalidConfig is wrapped by every Validate failure.
var ErrInvalidConfig = errors.New("termgpu: invalid config")

// DefaultConfig returns the configuration used when none is given.
func DefaultConfig() Config {
	return Config{
		Executor: ExecutorConfig{
			Backends: append([]string(nil), shader.DefaultBackendPriority...),
		},
		Scheduler: SchedulerConfig{
			QueueDepth:    schedule.DefaultQueueDepth,
			CoalesceTicks: true,
		},
		Actions: ActionsConfig{
			MaxTriggerDepth: action.DefaultMaxDepth,
		},
		Present: PresentConfig{
			Backend: "discard",
		},
	}
}

// ParseConfig decodes TOML over DefaultConfig and validates the result.
// Keys that do not exist in Config are rejected.
func ParseConfig(data []byte) (Config, error) {
	cfg := DefaultConfig()
	dec := toml.NewDecoder(bytes.NewReader(data)).DisallowUnknownFields()
	if err := dec.Decode(&cfg); err != nil {
		var strict *toml.StrictMissingError
		if errors.As(err, &strict) {
			return Config{}, fmt.Errorf("%w: %s", ErrInvalidConfig, strict.String())
		}
		return Config{}, fmt.Errorf("termgpu: parse config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// LoadConfig reads and parses a TOML file.
func LoadConfig(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("termgpu: load config: %w", err)
	}
	return ParseConfig(data)
}

// Validate checks value ranges and that every named backend is registered.
func (c *Config) Validate() error {
	if len(c.Executor.Backends) == 0 {
		return fmt.Errorf("%w: executor.backends is empty", ErrInvalidConfig)
	}
	for _, name := range c.Executor.Backends {
		if !shader.HasBackend(name) {
			return fmt.Errorf("%w: executor.backends: unknown backend %q", ErrInvalidConfig, name)
		}
	}
	if c.Scheduler.QueueDepth < 0 {
		return fmt.Errorf("%w: scheduler.queue_depth %d is negative", ErrInvalidConfig, c.Scheduler.QueueDepth)
	}
	if c.Actions.MaxTriggerDepth < 0 {
		return fmt.Errorf("%w: actions.max_trigger_depth %d is negative", ErrInvalidConfig, c.Actions.MaxTriggerDepth)
	}
	if !present.IsRegistered(c.Present.Backend) {
		return fmt.Errorf("%w: present.backend: unknown backend %q", ErrInvalidConfig, c.Present.Backend)
	}
	if _, err := present.ParseProfile(c.Present.Profile); err != nil {
		return fmt.Errorf("%w: present.profile: %w", ErrInvalidConfig, err)
	}
	return nil
}

// Write encodes c as TOML.
func (c *Config) Write(w io.Writer) error {
	return toml.NewEncoder(w).Encode(c)
}
