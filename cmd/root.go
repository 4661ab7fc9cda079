package cmd

import (
	"errors"
	"fmt"
	"os"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/kjordahl/chippy8/internal/chip8"
	"github.com/kjordahl/chippy8/internal/logging"
)

// currentReleaseVersion is used to print the version the user currently has downloaded.
const currentReleaseVersion = "v0.1.0"

// runConfig collects the persistent flags shared by every subcommand that
// touches a VM. There is no config file format; everything comes straight
// off the command line.
type runConfig struct {
	logLevel string
	kindFlag string
	kind     chip8.Kind
}

var cfg runConfig

// rootCmd is the base for all commands.
var rootCmd = &cobra.Command{
	Use:   "chippy8 [command]",
	Short: "chippy8 is a Chip-8 virtual machine with a time-travel debugger",
	Long:  "chippy8 is a Chip-8 virtual machine with a time-travel debugger",
	Args: func(cmd *cobra.Command, args []string) error {
		if len(args) < 1 {
			return errors.New("requires at least 1 argument")
		}
		return nil
	},
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Println("Unknown command. Try `chippy8 help` for more information")
	},
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		kind, err := chip8.ParseKind(cfg.kindFlag)
		if err != nil {
			return err
		}
		cfg.kind = kind
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfg.logLevel, "log", "info", "log level: trace, debug, info, warn, error, off")
	rootCmd.PersistentFlags().StringVar(&cfg.kindFlag, "kind", chip8.Chip48.String(), "interpreter variant: COSMACVIP or CHIP48")

	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(versionCmd)
}

// newLogger builds the logger for the resolved --log flag, exiting with a
// usage error if the level name is unrecognized.
func newLogger() *logrus.Logger {
	logger, err := logging.New(cfg.logLevel)
	if err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
	return logger
}

// Execute runs chippy8 according to the user's command/subcommand/flags.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}
