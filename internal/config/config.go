// Package config holds the settings shared by the gol and gol-bench commands.
// Values come from defaults, then an optional YAML file, then command-line
// flags.
package config

import (
	"flag"
	"fmt"
	"os"
	"runtime"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"gol-bench/internal/engine"
	"gol-bench/pkg/sims/life"
)

// Config represents the command-line and file parameters of a run.
type Config struct {
	File string `yaml:"-"`

	Workers     int           `yaml:"workers"`
	Sweep       IntList       `yaml:"sweep"`
	Width       int           `yaml:"width"`
	Height      int           `yaml:"height"`
	Generations int           `yaml:"generations"`
	TimeLimit   time.Duration `yaml:"time_limit"`
	Edge        string        `yaml:"edge"`
	Pattern     string        `yaml:"pattern"`
	Seed        int64         `yaml:"seed"`
	Density     float64       `yaml:"density"`
	TPS         int           `yaml:"tps"`
	Scale       int           `yaml:"scale"`

	Log  LogConfig  `yaml:"log"`
	MQTT MQTTConfig `yaml:"mqtt"`
}

// LogConfig selects the slog handler.
type LogConfig struct {
	Debug bool `yaml:"debug"`
	JSON  bool `yaml:"json"`
}

// MQTTConfig contains MQTT broker settings for run reports. An empty broker
// disables publishing.
type MQTTConfig struct {
	Broker   string        `yaml:"broker"`
	Topic    string        `yaml:"topic"`
	ClientID string        `yaml:"client_id"`
	QoS      byte          `yaml:"qos"`
	Timeout  time.Duration `yaml:"timeout"`
}

// DefaultConfig returns a Config populated with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		Workers:     runtime.NumCPU(),
		Width:       256,
		Height:      256,
		Generations: 100,
		Edge:        life.Clamped.String(),
		Pattern:     engine.DefaultPattern,
		Seed:        42,
		Density:     0.3,
		Scale:       3,
		MQTT: MQTTConfig{
			Topic:   "gol/reports",
			Timeout: 2 * time.Second,
		},
	}
}

// Bind attaches the configuration to the provided FlagSet.
func (c *Config) Bind(fs *flag.FlagSet) {
	fs.StringVar(&c.File, "config", c.File, "YAML config file; flags override its values")
	fs.IntVar(&c.Workers, "workers", c.Workers, "number of partition workers")
	fs.Var(&c.Sweep, "sweep", "comma-separated worker counts to benchmark, e.g. 1,2,4,8")
	fs.IntVar(&c.Width, "w", c.Width, "board width")
	fs.IntVar(&c.Height, "h", c.Height, "board height")
	fs.IntVar(&c.Generations, "generations", c.Generations, "generations per run (0 = no limit)")
	fs.DurationVar(&c.TimeLimit, "time-limit", c.TimeLimit, "wall-clock limit per run (0 = no limit)")
	fs.StringVar(&c.Edge, "edge", c.Edge, "edge policy: clamped or torus")
	fs.StringVar(&c.Pattern, "pattern", c.Pattern, "seed pattern: "+strings.Join(life.Patterns(), ", "))
	fs.Int64Var(&c.Seed, "seed", c.Seed, "seed for random patterns")
	fs.Float64Var(&c.Density, "density", c.Density, "alive probability for the random pattern")
	fs.IntVar(&c.TPS, "tps", c.TPS, "ticks per second (0 = unpaced)")
	fs.IntVar(&c.Scale, "scale", c.Scale, "pixel scale multiplier")
	fs.BoolVar(&c.Log.Debug, "debug", c.Log.Debug, "enable debug logging")
	fs.BoolVar(&c.Log.JSON, "json", c.Log.JSON, "log as JSON")
	fs.StringVar(&c.MQTT.Broker, "mqtt-broker", c.MQTT.Broker, "MQTT broker host:port for run reports")
	fs.StringVar(&c.MQTT.Topic, "mqtt-topic", c.MQTT.Topic, "MQTT topic prefix for run reports")
}

// Parse binds c to fs and parses args. When -config names a file its values
// replace the defaults, and flags given explicitly on the command line are
// applied again on top.
func (c *Config) Parse(fs *flag.FlagSet, args []string) error {
	c.Bind(fs)
	if err := fs.Parse(args); err != nil {
		return err
	}
	if c.File == "" {
		return c.Validate()
	}

	explicit := map[string]string{}
	fs.Visit(func(f *flag.Flag) {
		explicit[f.Name] = f.Value.String()
	})
	if err := c.ApplyFile(c.File); err != nil {
		return err
	}
	for name, value := range explicit {
		if err := fs.Set(name, value); err != nil {
			return fmt.Errorf("reapply -%s: %w", name, err)
		}
	}
	return c.Validate()
}

// Load reads and validates a YAML configuration file on top of the defaults.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()
	if err := cfg.ApplyFile(path); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// ApplyFile overlays the values present in a YAML file onto c.
func (c *Config) ApplyFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config file: %w", err)
	}
	file := c.File
	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("failed to parse config: %w", err)
	}
	c.File = file
	return nil
}

// Validate rejects settings that no run could start with.
func (c *Config) Validate() error {
	if _, err := life.ParseEdge(c.Edge); err != nil {
		return &engine.ConfigError{Field: "edge", Reason: err.Error()}
	}
	if c.Scale < 1 {
		return &engine.ConfigError{Field: "scale", Reason: "must be at least 1"}
	}
	if c.MQTT.QoS > 2 {
		return &engine.ConfigError{Field: "mqtt.qos", Reason: "must be 0, 1 or 2"}
	}
	if c.MQTT.Broker != "" && c.MQTT.Topic == "" {
		return &engine.ConfigError{Field: "mqtt.topic", Reason: "required with a broker"}
	}
	for _, n := range c.WorkerCounts() {
		rc, err := c.RunConfig(n)
		if err != nil {
			return err
		}
		if err := rc.Validate(); err != nil {
			return err
		}
	}
	return nil
}

// WorkerCounts lists the worker counts to run: the sweep when set, otherwise
// the single worker count.
func (c *Config) WorkerCounts() []int {
	if len(c.Sweep) > 0 {
		return c.Sweep
	}
	return []int{c.Workers}
}

// RunConfig converts the settings into an engine run with the given number
// of workers.
func (c *Config) RunConfig(workers int) (engine.RunConfig, error) {
	edge, err := life.ParseEdge(c.Edge)
	if err != nil {
		return engine.RunConfig{}, &engine.ConfigError{Field: "edge", Reason: err.Error()}
	}
	return engine.RunConfig{
		Workers:     workers,
		Width:       c.Width,
		Height:      c.Height,
		Generations: c.Generations,
		TimeLimit:   c.TimeLimit,
		Edge:        edge,
		Pattern:     c.Pattern,
		Seed:        c.Seed,
		Density:     c.Density,
		TPS:         c.TPS,
	}, nil
}

// IntList is a comma-separated list of positive integers usable as a flag.
type IntList []int

// String formats the list as it would be passed on the command line.
func (l *IntList) String() string {
	if l == nil {
		return ""
	}
	parts := make([]string, len(*l))
	for i, n := range *l {
		parts[i] = strconv.Itoa(n)
	}
	return strings.Join(parts, ",")
}

// Set parses a comma-separated list, replacing any previous value.
func (l *IntList) Set(s string) error {
	var out IntList
	for _, field := range strings.Split(s, ",") {
		field = strings.TrimSpace(field)
		if field == "" {
			continue
		}
		n, err := strconv.Atoi(field)
		if err != nil {
			return fmt.Errorf("invalid count %q: %w", field, err)
		}
		if n < 1 {
			return fmt.Errorf("invalid count %d: must be at least 1", n)
		}
		out = append(out, n)
	}
	*l = out
	return nil
}
