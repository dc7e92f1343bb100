package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/notf-ui/notf/errutil"
	"github.com/notf-ui/notf/graph"
	"github.com/notf-ui/notf/input"
	"github.com/notf-ui/notf/internal/cli"
	"github.com/notf-ui/notf/internal/ctxlog"
	"github.com/notf-ui/notf/internal/syncutil"
	"github.com/notf-ui/notf/node"
	"github.com/notf-ui/notf/property"
	"github.com/notf-ui/notf/scene"
	"github.com/notf-ui/notf/timer"
)

// main is the entrypoint for the notf-demo application.
func main() {
	// Use a minimal logger until the full one is configured.
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	})))

	if err := run(os.Stdout, os.Args[1:]); err != nil {
		var exitErr *cli.ExitError
		if errors.As(err, &exitErr) {
			fmt.Fprintln(os.Stderr, exitErr.Message)
			os.Exit(exitErr.Code)
		}
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// run encapsulates the main application logic for easier testing and error
// handling. The calling goroutine becomes the UI thread.
func run(outW io.Writer, args []string) error {
	cfg, shouldExit, err := cli.Parse(args, outW)
	if err != nil {
		return err
	}
	if shouldExit {
		return nil
	}

	logger := cli.NewLogger(cfg.LogLevel, cfg.LogFormat, outW)
	ctx := ctxlog.WithLogger(context.Background(), logger)

	g, err := graph.Initialize(ctx)
	if err != nil {
		return err
	}
	defer graph.Shutdown()

	root, err := g.Root().Get()
	if err != nil {
		return err
	}
	handles, err := scene.NewLoader(ctx).Load(ctx, cfg.ScenePath, root)
	if err != nil {
		return err
	}
	logger.Info("scene loaded", "path", cfg.ScenePath, "top_nodes", len(handles))

	// The ticker node carries the property the UI loop animates.
	ticker := node.NewRunTime("ticker")
	frame := property.New(property.Decl[float64]{Name: "frame"})
	if err := ticker.AddProperty(frame); err != nil {
		return err
	}
	if _, err := node.Attach(root, ticker); err != nil {
		return err
	}
	if err := ticker.Finalize(); err != nil {
		return err
	}

	pool := timer.NewPool(ctx)
	defer pool.Close()

	var queue input.Queue
	beat := pool.Interval(cfg.Tick, timer.Infinite, func() {
		queue.Post(input.CharInput{Char: '.'})
	})
	defer beat.Stop()

	framesDone := make(chan struct{})
	render := syncutil.Spawn("render", func() {
		defer close(framesDone)
		id := syncutil.GoroutineID()
		for frame := 0; frame < cfg.Frames; {
			if err := g.Freeze(id); err != nil {
				// The UI thread is promoting; try again next tick.
				var frozenErr *errutil.AlreadyFrozenError
				if errors.As(err, &frozenErr) {
					time.Sleep(cfg.Tick)
					continue
				}
				logger.Error("freeze failed", "error", err)
				return
			}
			digest, nodes := sceneDigest(root)
			if err := g.Unfreeze(id); err != nil {
				logger.Error("unfreeze failed", "error", err)
				return
			}
			logger.Info("frame rendered", "frame", frame, "nodes", nodes, "digest", digest)
			frame++
			time.Sleep(cfg.Tick)
		}
	})
	defer render.Join()

	// UI loop: drain input, animate, synchronize, until the render thread
	// has drawn its last frame.
	for running := true; running; {
		select {
		case <-framesDone:
			running = false
		case <-time.After(cfg.Tick):
		}

		for range queue.Drain() {
			frame.Set(frame.Get() + 1)
		}

		touched, err := g.Synchronize()
		if err != nil {
			// A frame is in flight; promote on the next tick.
			var frozenErr *errutil.AlreadyFrozenError
			if errors.As(err, &frozenErr) {
				continue
			}
			return err
		}
		if len(touched) > 0 {
			logger.Debug("synchronized", "touched", len(touched))
		}
	}

	logger.Info("demo finished", "frames", cfg.Frames, "ticks", frame.Get())
	return nil
}

// sceneDigest folds the property hashes of the whole tree, the cheap stand
// in for issuing draw calls.
func sceneDigest(root node.Node) (uint64, int) {
	var digest uint64
	nodes := 0
	var walk func(n node.Node)
	walk = func(n node.Node) {
		nodes++
		for _, p := range n.Properties() {
			digest = digest*31 + p.HashValue()
		}
		for _, h := range n.Children() {
			if c, err := h.Get(); err == nil {
				walk(c)
			}
		}
	}
	walk(root)
	return digest, nodes
}
