package main

import (
	"bytes"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/pelletier/go-toml/v2"
)

// config holds the demo settings. Values come from the defaults, then the
// TOML file, then flags given on the command line.
type config struct {
	Width         int      `toml:"width"`
	Height        int      `toml:"height"`
	Output        string   `toml:"output"`
	Frames        int      `toml:"frames"`
	FrameInterval duration `toml:"frame_interval"`
	QueueSize     int      `toml:"queue_size"`
	Convergence   duration `toml:"convergence"`
	Scale         float64  `toml:"scale"`
	Workers       int      `toml:"workers"`
	Verbose       bool     `toml:"verbose"`
}

func defaultConfig() config {
	return config{
		Width:         640,
		Height:        360,
		Output:        "rpdemo.png",
		Frames:        60,
		FrameInterval: duration(16 * time.Millisecond),
		QueueSize:     4,
		Convergence:   duration(500 * time.Millisecond),
		Scale:         1,
		Workers:       1,
	}
}

// duration is a time.Duration written as a Go duration string in TOML.
type duration time.Duration

func (d *duration) UnmarshalText(b []byte) error {
	v, err := time.ParseDuration(string(b))
	if err != nil {
		return err
	}
	*d = duration(v)
	return nil
}

func (d duration) MarshalText() ([]byte, error) {
	return []byte(time.Duration(d).String()), nil
}

// String and Set make duration a flag.Value.
func (d *duration) String() string { return time.Duration(*d).String() }

func (d *duration) Set(s string) error { return d.UnmarshalText([]byte(s)) }

// loadConfig decodes a TOML file over cfg. Unknown keys are errors.
func loadConfig(path string, cfg *config) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	dec := toml.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	if err := dec.Decode(cfg); err != nil {
		return fmt.Errorf("config %s: %w", path, err)
	}
	return nil
}

// parseConfig parses args. Flags override the config file only when they
// are given explicitly.
func parseConfig(args []string) (config, error) {
	cfg := defaultConfig()
	fs := flag.NewFlagSet("rpdemo", flag.ContinueOnError)
	var (
		path  = fs.String("config", "", "TOML config file")
		flags = defaultConfig()
	)
	fs.IntVar(&flags.Width, "width", flags.Width, "frame width")
	fs.IntVar(&flags.Height, "height", flags.Height, "frame height")
	fs.StringVar(&flags.Output, "output", flags.Output, "PNG snapshot path")
	fs.IntVar(&flags.Frames, "frames", flags.Frames, "number of submissions")
	fs.Var(&flags.FrameInterval, "frame-interval", "time between submissions")
	fs.IntVar(&flags.QueueSize, "queue-size", flags.QueueSize, "submission queue bound")
	fs.Var(&flags.Convergence, "convergence", "render time convergence window")
	fs.Float64Var(&flags.Scale, "scale", flags.Scale, "snapshot scale factor")
	fs.IntVar(&flags.Workers, "workers", flags.Workers, "rasterizer worker goroutines (0 = GOMAXPROCS)")
	fs.BoolVar(&flags.Verbose, "v", flags.Verbose, "debug logging")
	if err := fs.Parse(args); err != nil {
		return cfg, err
	}

	if *path != "" {
		if err := loadConfig(*path, &cfg); err != nil {
			return cfg, err
		}
	}
	fs.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "width":
			cfg.Width = flags.Width
		case "height":
			cfg.Height = flags.Height
		case "output":
			cfg.Output = flags.Output
		case "frames":
			cfg.Frames = flags.Frames
		case "frame-interval":
			cfg.FrameInterval = flags.FrameInterval
		case "queue-size":
			cfg.QueueSize = flags.QueueSize
		case "convergence":
			cfg.Convergence = flags.Convergence
		case "scale":
			cfg.Scale = flags.Scale
		case "workers":
			cfg.Workers = flags.Workers
		case "v":
			cfg.Verbose = flags.Verbose
		}
	})
	return cfg, cfg.validate()
}

func (c config) validate() error {
	switch {
	case c.Width <= 0 || c.Height <= 0:
		return fmt.Errorf("invalid size %dx%d", c.Width, c.Height)
	case c.Frames <= 0:
		return fmt.Errorf("frames must be positive, got %d", c.Frames)
	case c.Scale <= 0:
		return fmt.Errorf("scale must be positive, got %v", c.Scale)
	case c.Output == "":
		return fmt.Errorf("no output path")
	}
	return nil
}
