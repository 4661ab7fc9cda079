package cmd

import (
	"fmt"
	"os"
	"os/signal"
	"time"

	"github.com/spf13/cobra"

	"github.com/kjordahl/chippy8/internal/audio"
	"github.com/kjordahl/chippy8/internal/chip8"
	"github.com/kjordahl/chippy8/internal/sched"
)

// runCmd runs the chippy8 virtual machine and blocks until it shuts down.
var runCmd = &cobra.Command{
	Use:   "run `path/to/rom`",
	Short: "run the chippy8 virtual machine against a ROM",
	Args:  cobra.ExactArgs(1),
	Run:   runChippy8,
}

func runChippy8(cmd *cobra.Command, args []string) {
	logger := newLogger()
	pathToROM := args[0]

	program, err := os.ReadFile(pathToROM)
	if err != nil {
		fmt.Printf("error reading ROM %q: %v\n", pathToROM, err)
		os.Exit(1)
	}

	vm, err := chip8.NewVM(program, cfg.kind, uint64(time.Now().UnixNano()))
	if err != nil {
		fmt.Printf("error creating a new chip-8 VM: %v\n", err)
		os.Exit(1)
	}

	player := audio.NewPlayer("assets/beep.mp3", logger)
	machine := sched.NewMachine(vm, sched.NullKeyboard{}, player.Trigger, logger)

	interrupt := make(chan os.Signal, 1)
	signal.Notify(interrupt, os.Interrupt)
	go func() {
		<-interrupt
		logger.Info("interrupt received, shutting down")
		machine.Stop()
	}()

	done := make(chan error, 2)

	go func() {
		tickPeriod := time.Second / sched.InstructionFrequency
		interval := sched.NewInterval("interp", tickPeriod, 8*time.Millisecond, logger)
		lastTick := time.Now()
		done <- interval.Run(func() (sched.State, error) {
			if !machine.Active() {
				return sched.Done, nil
			}
			now := time.Now()
			elapsed := now.Sub(lastTick)
			lastTick = now
			if err := machine.Tick(elapsed); err != nil {
				return sched.Done, err
			}
			return sched.Continue, nil
		})
	}()

	go func() {
		interval := sched.NewInterval("render", 16*time.Millisecond, 16*time.Millisecond, logger)
		done <- interval.Run(func() (sched.State, error) {
			if !machine.Active() {
				return sched.Done, nil
			}
			if frame, ok := machine.Display.ExtractFrame(); ok {
				logger.Debugf("frame ready: %d lit pixels", countLit(frame))
			}
			return sched.Continue, nil
		})
	}()

	if err := <-done; err != nil {
		fmt.Printf("chip-8 VM exited with error: %v\n", err)
		os.Exit(1)
	}
	<-done
}

func countLit(frame chip8.DisplayBuffer) int {
	n := 0
	for _, px := range frame {
		if px != 0 {
			n++
		}
	}
	return n
}
