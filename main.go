package main

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/ananin/chip8vm/internal/chip8"
	"github.com/ananin/chip8vm/internal/hal"
	"github.com/spf13/cobra"
)

func main() {
	cmd := &cobra.Command{
		Use:           fmt.Sprintf("%s PATH_TO_ROM_FILE", filepath.Base(os.Args[0])),
		Short:         "Run emulator",
		Args:          cobra.ExactArgs(1),
		SilenceErrors: true,
	}

	verbose := cmd.Flags().BoolP("verbose", "v", false, "enable verbose logging")
	speed := cmd.Flags().Int("speed", 700, "instruction rate in instructions per second")
	seed := cmd.Flags().Uint64("seed", 0, "random number seed, 0 picks one from the clock")

	quirks := chip8.Quirks{}
	cmd.Flags().BoolVar(&quirks.ClipSprites, "quirk-clip", false, "clip sprites at the screen edges instead of wrapping")
	cmd.Flags().BoolVar(&quirks.IndexOverflowFlag, "quirk-index-vf", false, "set VF when FX1E overflows the index register")
	cmd.Flags().BoolVar(&quirks.ShiftUsesVY, "quirk-shift-vy", false, "FX06/FX0E shift VY into VX instead of shifting VX")
	cmd.Flags().BoolVar(&quirks.KeepIndexOnBulk, "quirk-keep-index", false, "FX55/FX65 leave the index register unchanged")

	cmd.RunE = func(_ *cobra.Command, args []string) error {
		loggerOpts := &slog.HandlerOptions{
			Level: slog.LevelInfo,
		}
		if *verbose {
			loggerOpts.Level = slog.LevelDebug
		}

		slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, loggerOpts)))

		path := args[0]
		rom, err := os.ReadFile(path)
		if err != nil {
			return fmt.Errorf("unable to load file %q: %w", path, err)
		}

		if *speed <= 0 {
			return fmt.Errorf("invalid instruction rate %d", *speed)
		}

		rngSeed := *seed
		if rngSeed == 0 {
			rngSeed = uint64(time.Now().UnixNano())
		}

		h, err := hal.New()
		if err != nil {
			return fmt.Errorf("unable to initialize hal: %w", err)
		}
		defer h.Shutdown()

		machine := chip8.New(quirks, rngSeed)

		for {
			if err := machine.Load(rom); err != nil {
				return fmt.Errorf("unable to load rom: %w", err)
			}

			err := run(machine, h, *speed)

			if errors.Is(err, hal.ErrQuit) {
				return nil
			}

			if errors.Is(err, hal.ErrReboot) {
				continue
			}

			return err
		}
	}

	cmd.SetArgs(os.Args[1:])
	if err := cmd.Execute(); err != nil {
		slog.Error("fatal error", "err", err)
		os.Exit(1)
	}
}

// run drives one machine session: instructions at the configured rate,
// timer ticks at 60 Hz from the clock driver, redraw and beeper updates
// from the step results. It returns hal.ErrQuit or hal.ErrReboot.
func run(machine *chip8.Machine, h *hal.HAL, speed int) error {
	stepInterval := time.Second / time.Duration(speed)
	clock := chip8.NewClock(time.Now())

	if err := h.Draw(machine.Pixels()); err != nil {
		return err
	}

	for {
		if err := h.ReadInput(func(key uint8, down bool) {
			if err := machine.SetKey(key, down); err != nil {
				slog.Error("drop key event", "err", err)
			}
		}); err != nil {
			return err
		}

		for range clock.Ticks(time.Now()) {
			machine.TickTimers()
		}

		pc := machine.PC()
		res, err := machine.Step()
		if err != nil {
			// A violation ends the program; stay alive for reboot or quit.
			slog.Error("emulation fault", "pc", fmt.Sprintf("0x%04x", pc), "err", err)
			return waitForReboot(machine, h)
		}

		if res.Drawn {
			if err := h.Draw(machine.Pixels()); err != nil {
				return err
			}
		}

		if err := h.SetBeep(res.Sound); err != nil {
			return err
		}

		// Jump-to-self means the program is done.
		if !res.Waiting && machine.PC() == pc {
			slog.Info("program looped")
			return waitForReboot(machine, h)
		}

		time.Sleep(stepInterval)
	}
}

// waitForReboot idles after the program ended, keeping the window alive
// until the user reboots or quits.
func waitForReboot(machine *chip8.Machine, h *hal.HAL) error {
	for {
		if err := h.ReadInput(func(key uint8, down bool) {
			_ = machine.SetKey(key, down)
		}); err != nil {
			return err
		}

		if err := h.SetBeep(false); err != nil {
			return err
		}

		time.Sleep(chip8.TimerInterval)
	}
}
