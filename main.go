package main

import (
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/golang/glog"
	"github.com/spf13/cobra"

	"github.com/Joiy908/Nand2Tetris/config"
)

type usageError struct {
	name string
}

func (e usageError) Error() string {
	return "usage: " + e.name + " xxx.asm"
}

// options carries the persistent flags shared by every command.
type options struct {
	configPath             string
	allowLabelRedefinition bool
	stdout                 io.Writer
	stderr                 io.Writer
}

// load reads the config file and applies the flags given on the command line on top of it.
func (o *options) load(cmd *cobra.Command) (config.Config, error) {
	conf, err := config.Load(o.configPath, cmd.Flags().Changed("config"))
	if err != nil {
		return conf, err
	}
	if cmd.Flags().Changed("allow-label-redefinition") {
		conf.AllowLabelRedefinition = o.allowLabelRedefinition
	}
	return conf, nil
}

func newRootCmd(stdout, stderr io.Writer) *cobra.Command {
	opts := &options{stdout: stdout, stderr: stderr}
	var binary, symbols bool

	rootCmd := &cobra.Command{
		Use:   "hackasm xxx.asm",
		Short: "Assembler for the Hack computer",
		Long: `Hackasm translates Hack assembly into Hack machine code. The output is written next to
the source with its extension replaced, one 16 character binary word per line.

The other commands serve the same assembler to editors and browsers, run programs on a
Hack emulator and grade assembly submissions. A source file named like one of the commands
must be given with a directory, as in ./run.`,
		Args: func(cmd *cobra.Command, args []string) error {
			if len(args) != 1 {
				return usageError{name: cmd.Name()}
			}
			return nil
		},
		SilenceErrors: true,
		SilenceUsage:  true,
		RunE: func(cmd *cobra.Command, args []string) error {
			conf, err := opts.load(cmd)
			if err != nil {
				return err
			}
			if cmd.Flags().Changed("binary") {
				conf.Binary = binary
			}
			return assembleFile(args[0], conf, symbols, opts.stdout, opts.stderr)
		},
	}
	rootCmd.SetOut(stdout)
	rootCmd.SetErr(stderr)

	rootCmd.PersistentFlags().StringVar(&opts.configPath, "config", config.DefaultPath, "JSON config file")
	rootCmd.PersistentFlags().BoolVar(&opts.allowLabelRedefinition, "allow-label-redefinition", false, "let a later label definition replace an earlier one")
	rootCmd.PersistentFlags().AddGoFlagSet(flag.CommandLine)
	rootCmd.Flags().BoolVar(&binary, "binary", false, "also write big-endian binary words to a .bin file")
	rootCmd.Flags().BoolVar(&symbols, "symbols", false, "print the symbol table to stderr")

	rootCmd.AddCommand(
		newLanguageServerCmd(opts),
		newServeCmd(opts),
		newWebCmd(opts),
		newRunCmd(opts),
		newDisCmd(opts),
		newAutogradeCmd(opts),
	)
	return rootCmd
}

func run(args []string, stdout, stderr io.Writer) int {
	rootCmd := newRootCmd(stdout, stderr)
	rootCmd.SetArgs(args)
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(stderr, err)
		return 1
	}
	return 0
}

func main() {
	// glog writes to files unless told otherwise
	flag.Set("logtostderr", "true")
	code := run(os.Args[1:], os.Stdout, os.Stderr)
	glog.Flush()
	os.Exit(code)
}
