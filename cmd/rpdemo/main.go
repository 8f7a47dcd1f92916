// Command rpdemo drives a render pipeline with an animated scene and writes
// a PNG snapshot of the last submission.
//
// Usage:
//
//	rpdemo [-config rpdemo.toml] [-width 640] [-height 360] [-frames 60] [-output out.png]
package main

import (
	"context"
	"errors"
	"fmt"
	"image"
	"image/png"
	"log/slog"
	"os"
	"os/signal"
	"time"

	xdraw "golang.org/x/image/draw"

	"github.com/gogpu/renderpipe"
	"github.com/gogpu/renderpipe/backend"
	"github.com/gogpu/renderpipe/geom"
	"github.com/gogpu/renderpipe/pipeline"
	"github.com/gogpu/renderpipe/rasterizer"
)

func main() {
	cfg, err := parseConfig(os.Args[1:])
	if err != nil {
		fmt.Fprintln(os.Stderr, "rpdemo:", err)
		os.Exit(2)
	}
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	if err := run(ctx, cfg); err != nil {
		fmt.Fprintln(os.Stderr, "rpdemo:", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg config) error {
	level := slog.LevelInfo
	if cfg.Verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
	renderpipe.SetLogger(logger)

	device, release, err := backend.OpenNoopDevice()
	if err != nil {
		return err
	}
	defer release()
	gc := backend.NewGraphicsContext(backend.NullDeviceHandle{}, backend.WithHALDevice(device))
	display, err := gc.CreateDisplayTarget(geom.Size{Width: cfg.Width, Height: cfg.Height})
	if err != nil {
		return err
	}

	fatal := make(chan error, 1)
	p := pipeline.New(
		pipeline.NewRasterizerFunc(rasterizer.WithWorkers(cfg.Workers)),
		display, gc,
		pipeline.WithMaxQueueSize(cfg.QueueSize),
		pipeline.WithConvergence(time.Duration(cfg.Convergence)),
		pipeline.WithFatalErrorHandler(func(err error) {
			select {
			case fatal <- err:
			default:
			}
		}),
	)
	defer p.Close()

	provider, err := p.ResourceProvider()
	if err != nil {
		return err
	}
	sc, err := buildScene(provider, cfg.Width, cfg.Height)
	if err != nil {
		return err
	}

	var last pipeline.Submission
	ticker := time.NewTicker(max(time.Duration(cfg.FrameInterval), time.Millisecond))
	defer ticker.Stop()
	for i := range cfg.Frames {
		last = pipeline.Submission{
			RenderTree: sc.tree,
			Animations: sc.anims,
			TimeOffset: time.Duration(i) * loop / time.Duration(cfg.Frames),
		}
		if err := p.Submit(last); err != nil {
			return err
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case err := <-fatal:
			return err
		case <-ticker.C:
		}
	}

	img, err := snapshot(ctx, p, last)
	if err != nil {
		return err
	}
	if cfg.Scale != 1 {
		img = scale(img, cfg.Scale)
	}
	if err := writePNG(cfg.Output, img); err != nil {
		return err
	}

	// The display is only quiescent once the rasterizer goroutine is gone.
	p.Close()
	st := p.Stats()
	logger.Info("done",
		"output", cfg.Output,
		"submissions", st.Submissions,
		"frames", st.Frames,
		"evicted", st.Evicted,
		"presents", display.PresentCount(),
		"last_frame", st.LastFrame,
		"device_textures", gc.LiveHALTextures())
	return nil
}

// snapshot rasterizes s offscreen and waits for the pixels.
func snapshot(ctx context.Context, p *pipeline.Pipeline, s pipeline.Submission) (*image.RGBA, error) {
	type result struct {
		img *image.RGBA
		err error
	}
	done := make(chan result, 1)
	err := p.RasterizeToRGBAPixels(s, func(pixels []byte, size geom.Size, err error) {
		if err != nil {
			done <- result{err: err}
			return
		}
		img := image.NewRGBA(image.Rect(0, 0, size.Width, size.Height))
		copy(img.Pix, pixels)
		done <- result{img: img}
	})
	if err != nil {
		return nil, err
	}
	select {
	case r := <-done:
		return r.img, r.err
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

func scale(src *image.RGBA, factor float64) *image.RGBA {
	b := src.Bounds()
	w := max(int(float64(b.Dx())*factor+0.5), 1)
	h := max(int(float64(b.Dy())*factor+0.5), 1)
	dst := image.NewRGBA(image.Rect(0, 0, w, h))
	xdraw.CatmullRom.Scale(dst, dst.Bounds(), src, b, xdraw.Src, nil)
	return dst
}

func writePNG(path string, img image.Image) (err error) {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer func() {
		err = errors.Join(err, f.Close())
	}()
	return png.Encode(f, img)
}
