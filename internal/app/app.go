// ABOUTME: Application orchestration
// ABOUTME: Runs the frame loop, device pump and TUI together until quit
package app

import (
	"context"
	"fmt"
	"log"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"golang.org/x/sync/errgroup"

	"github.com/Resonate-Protocol/songclock/internal/ui"
	"github.com/Resonate-Protocol/songclock/internal/version"
	"github.com/Resonate-Protocol/songclock/pkg/audio/output"
)

// pump is a device that needs a goroutine to produce buffers
type pump interface {
	Run(ctx context.Context)
}

// App coordinates the frame loop with the device and the TUI
type App struct {
	runner   *Runner
	device   output.Device
	controls *ui.Controls
	program  *tea.Program
	updates  chan ui.StatusMsg
	lastLog  time.Time
}

// New creates an application. With useTUI false status is logged instead.
func New(device output.Device, config Config, useTUI bool) *App {
	a := &App{
		runner: NewRunner(device, config),
		device: device,
	}

	if useTUI {
		a.controls = &ui.Controls{
			Commands: a.runner.Commands(),
			Quit:     make(chan struct{}, 1),
		}
		a.program = ui.Run(a.controls)
		a.updates = make(chan ui.StatusMsg, 10)
		a.runner.OnStatus = a.sendStatus
	} else {
		a.runner.OnStatus = a.logStatus
	}

	return a
}

// Runner returns the frame loop
func (a *App) Runner() *Runner {
	return a.runner
}

// Run starts playback and blocks until ctx is cancelled or the user quits
func (a *App) Run(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	log.Printf("Starting %s", version.String())

	g, ctx := errgroup.WithContext(ctx)

	if p, ok := a.device.(pump); ok {
		g.Go(func() error {
			p.Run(ctx)
			return nil
		})
	}

	a.runner.Authority().Play()
	g.Go(func() error {
		return a.runner.Run(ctx)
	})

	if a.program != nil {
		g.Go(func() error {
			defer cancel()
			if _, err := a.program.Run(); err != nil {
				return fmt.Errorf("TUI failed: %w", err)
			}
			return nil
		})

		g.Go(func() error {
			for {
				select {
				case <-ctx.Done():
					a.program.Quit()
					return nil
				case <-a.controls.Quit:
					log.Printf("Received quit signal from TUI")
					cancel()
				case msg := <-a.updates:
					a.program.Send(msg)
				}
			}
		})
	}

	err := g.Wait()
	a.runner.Authority().Pause()
	return err
}

// sendStatus forwards a snapshot to the TUI without blocking the frame loop
func (a *App) sendStatus(msg ui.StatusMsg) {
	select {
	case a.updates <- msg:
	default:
	}
}

// logStatus logs a snapshot at most once per second
func (a *App) logStatus(msg ui.StatusMsg) {
	if time.Since(a.lastLog) < time.Second {
		return
	}
	a.lastLog = time.Now()

	log.Printf("t=%.3fs state=%s beat=%d lag=%.0fms catchups=%d period=%.1fms",
		msg.Stats.CurrentTime, msg.Stats.State, msg.Beat,
		msg.Stats.LagRemaining*1000, msg.Stats.CatchUps, msg.Stats.BufferPeriod*1000)
}
