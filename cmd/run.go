package cmd

import (
	"os"

	"github.com/faiface/pixel/pixelgl"
	"github.com/retroenv/retrogolib/app"
	"github.com/retroenv/retrogolib/log"
	"github.com/spf13/cobra"

	"github.com/bradford-hamilton/gr8/internal/chip8"
	"github.com/bradford-hamilton/gr8/internal/driver"
	"github.com/bradford-hamilton/gr8/internal/pixel"
)

// clockHz is the instruction execution rate for the run command.
var clockHz int

// runCmd runs the gr8 virtual machine until the window closes, an interrupt
// arrives, or the ROM faults.
var runCmd = &cobra.Command{
	Use:   "run `path/to/rom`",
	Short: "run the gr8 emulator",
	Args:  cobra.ExactArgs(1),
	Run:   runGr8,
}

func init() {
	runCmd.Flags().IntVar(&clockHz, "clock", driver.DefaultClockHz, "instruction clock rate in hz")
}

func runGr8(cmd *cobra.Command, args []string) {
	logger := newLogger()
	pathToROM := args[0]

	rom, err := os.ReadFile(pathToROM)
	if err != nil {
		logger.Fatal("error reading rom", log.Err(err))
	}

	// pixelgl needs ownership of the main thread for the window event loop.
	pixelgl.Run(func() {
		window, err := pixel.NewWindow()
		if err != nil {
			logger.Fatal("error creating window", log.Err(err))
		}

		vm := chip8.New()
		if err := vm.Load(rom); err != nil {
			logger.Fatal("error loading rom", log.Err(err))
		}
		logger.Info("rom loaded",
			log.String("path", pathToROM),
			log.Int("bytes", len(rom)),
			log.Int("clock_hz", clockHz),
		)

		d := driver.New(vm, window, logger, clockHz)
		if err := d.Run(app.Context()); err != nil {
			logger.Fatal(err.Error())
		}
	})
}
