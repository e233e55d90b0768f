// Package driver runs the emulation loop: it paces instruction execution,
// refreshes the VM's input vector from the window, feeds wall-clock time to
// the 60 Hz timers, and renders the framebuffer whenever it changes. The VM
// itself never blocks or sleeps; all pacing lives here.
package driver

import (
	"context"
	"fmt"
	"time"

	"github.com/retroenv/retrogolib/log"

	"github.com/bradford-hamilton/gr8/internal/chip8"
	"github.com/bradford-hamilton/gr8/internal/pixel"
)

// DefaultClockHz is the default instruction execution rate. Real CHIP-8
// machines ran instructions far faster than the 60 Hz timer cadence.
const DefaultClockHz = 180

// Driver ties a VM to its window and pacing clock.
type Driver struct {
	vm     *chip8.VM
	window *pixel.Window
	logger *log.Logger
	clock  *time.Ticker
}

// New returns a Driver executing clockHz instructions per second.
func New(vm *chip8.VM, window *pixel.Window, logger *log.Logger, clockHz int) *Driver {
	if clockHz <= 0 {
		clockHz = DefaultClockHz
	}
	return &Driver{
		vm:     vm,
		window: window,
		logger: logger,
		clock:  time.NewTicker(time.Second / time.Duration(clockHz)),
	}
}

// Run drives the VM until the window closes, the context is cancelled, or
// execution fails. There is no "done" outcome: a well-formed ROM loops
// forever, so a nil return always means a driver-initiated stop.
func (d *Driver) Run(ctx context.Context) error {
	defer d.clock.Stop()

	last := time.Now()
	for {
		select {
		case <-ctx.Done():
			d.logger.Info("shutdown requested")
			return nil
		case <-d.clock.C:
		}
		if d.window.Closed() {
			d.logger.Info("window closed")
			return nil
		}

		d.refreshInput()

		now := time.Now()
		d.vm.AddTime(now.Sub(last))
		last = now

		if _, err := d.vm.Update(); err != nil {
			return fmt.Errorf("execution halted at pc 0x%03X: %w", d.vm.PC(), err)
		}
		if d.vm.DrawFlag() {
			d.window.DrawGraphics(d.vm.Graphics())
		} else {
			// Keep the event loop alive on cycles that do not draw.
			d.window.UpdateInput()
		}
	}
}

// refreshInput forwards key press/release edges from the window into the
// VM's 16-slot input vector. Held keys stay down until their release edge.
func (d *Driver) refreshInput() {
	for k, button := range d.window.KeyMap {
		if d.window.JustPressed(button) {
			d.logger.Debug("key down", log.Int("key", int(k)))
			d.vm.SetKeyDown(k)
		}
		if d.window.JustReleased(button) {
			d.vm.SetKeyUp(k)
		}
	}
}
