package main

import (
	"bufio"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/k0kubun/pp/v3"
	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"

	"github.com/Joiy908/Nand2Tetris/assembler"
	"github.com/Joiy908/Nand2Tetris/autograder"
	"github.com/Joiy908/Nand2Tetris/config"
	"github.com/Joiy908/Nand2Tetris/emulator"
	"github.com/Joiy908/Nand2Tetris/languageServer"
	"github.com/Joiy908/Nand2Tetris/util"
)

// outputPath replaces the extension of the source path.
func outputPath(path, extension string) string {
	return strings.TrimSuffix(path, filepath.Ext(path)) + extension
}

func checkSourceFile(path string) error {
	info, err := os.Stat(path)
	if err != nil || !info.Mode().IsRegular() {
		return fmt.Errorf("%s is not a valid file path", path)
	}
	return nil
}

func assembleSourceFile(path string, conf config.Config) (*assembler.Program, error) {
	if err := checkSourceFile(path); err != nil {
		return nil, err
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	program, err := assembler.Assemble(f, conf.Assembler())
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return program, nil
}

// assembleFile assembles path and writes the words next to it. Nothing is written unless the whole
// program assembles.
func assembleFile(path string, conf config.Config, symbols bool, stdout, stderr io.Writer) error {
	program, err := assembleSourceFile(path, conf)
	if err != nil {
		return err
	}
	util.LogF("assembled %d instructions from %s", len(program.Words), path)

	if symbols {
		printSymbols(program.Symbols, stderr)
	}

	outPath := outputPath(path, conf.OutputExtension)
	binPath := outputPath(path, ".bin")
	if err := checkOverwrite(path, outPath); err != nil {
		return err
	}
	if conf.Binary {
		if err := checkOverwrite(path, binPath); err != nil {
			return err
		}
	}

	if err := writeOutput(outPath, program.Words, assembler.WriteText); err != nil {
		return err
	}
	if conf.Binary {
		if err := writeOutput(binPath, program.Words, assembler.WriteBinary); err != nil {
			return err
		}
		fmt.Fprintf(stdout, "write to %s successfully.\n", binPath)
	}
	fmt.Fprintf(stdout, "write to %s successfully.\n", outPath)
	return nil
}

// checkOverwrite rejects an output path that names the source file itself.
func checkOverwrite(source, output string) error {
	if filepath.Clean(source) == filepath.Clean(output) {
		return fmt.Errorf("%s: output would overwrite the source file", source)
	}
	return nil
}

func writeOutput(path string, words []uint16, write func(io.Writer, []uint16) error) (err error) {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := f.Close(); err == nil {
			err = cerr
		}
		if err != nil {
			os.Remove(path)
		}
	}()

	w := bufio.NewWriter(f)
	if err := write(w, words); err != nil {
		return err
	}
	return w.Flush()
}

func printSymbols(symbols *assembler.SymbolTable, w io.Writer) {
	printer := pp.New()
	printer.SetOutput(w)
	f, ok := w.(*os.File)
	printer.SetColoringEnabled(ok && isatty.IsTerminal(f.Fd()))
	printer.Fprintln(w, symbols.Entries(assembler.SymbolLabel, assembler.SymbolVariable))
}

func newLanguageServerCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:       "languageServer [debug]",
		Short:     "Serve the Hack language server over stdin and stdout",
		Args:      cobra.MatchAll(cobra.MaximumNArgs(1), cobra.OnlyValidArgs),
		ValidArgs: []string{"debug"},
		RunE: func(cmd *cobra.Command, args []string) error {
			conf, err := opts.load(cmd)
			if err != nil {
				return err
			}
			if len(args) == 1 {
				util.LoggingEnabled = true
			}
			languageServer.ListenAndServe(conf.Assembler())
			return nil
		},
	}
}

func newServeCmd(opts *options) *cobra.Command {
	var addr string
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the Hack language server over TCP so it can be debugged remotely",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			conf, err := opts.load(cmd)
			if err != nil {
				return err
			}
			if !cmd.Flags().Changed("addr") {
				addr = conf.LanguageServerAddr
			}
			return languageServer.ListenAndServeTCP(addr, conf.Assembler())
		},
	}
	cmd.Flags().StringVar(&addr, "addr", config.Default().LanguageServerAddr, "TCP address to listen on")
	return cmd
}

func newWebCmd(opts *options) *cobra.Command {
	var addr string
	cmd := &cobra.Command{
		Use:   "web [xxx.asm]",
		Short: "Serve the browser runner, with the language server on /lsp",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			conf, err := opts.load(cmd)
			if err != nil {
				return err
			}
			if !cmd.Flags().Changed("addr") {
				addr = conf.WebAddr
			}
			assemblyPath := ""
			if len(args) == 1 {
				if err := checkSourceFile(args[0]); err != nil {
					return err
				}
				assemblyPath = args[0]
			}
			return emulator.RunStandaloneWebserver(addr, assemblyPath, conf, map[string]http.Handler{
				"/lsp": languageServer.NewWebsocketHandler(conf.Assembler()),
			})
		},
	}
	cmd.Flags().StringVar(&addr, "addr", config.Default().WebAddr, "HTTP address to listen on")
	return cmd
}

func newRunCmd(opts *options) *cobra.Command {
	var limit uint64
	var watches []string
	cmd := &cobra.Command{
		Use:   "run xxx.asm",
		Short: "Assemble a program and run it on the Hack emulator",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			conf, err := opts.load(cmd)
			if err != nil {
				return err
			}
			if cmd.Flags().Changed("limit") {
				conf.CycleLimit = limit
			}
			program, err := assembleSourceFile(args[0], conf)
			if err != nil {
				return err
			}

			inst := emulator.NewEmulator(emulator.EmulatorConfig{
				Program:      program.Words,
				RuntimeLimit: conf.CycleLimit,
			})
			inst.Emulate()

			out := opts.stdout
			state := inst.GetState()
			fmt.Fprintf(out, "A=%d D=%d PC=%d executed=%d halted=%t\n", state.A, state.D, state.PC, state.Executed, state.Halted)
			for i := uint16(0); i < 16; i++ {
				fmt.Fprintf(out, "RAM[%d]=%d\n", i, int16(inst.ReadRAM(i)))
			}
			for _, expr := range watches {
				res, err := inst.EvaluateExpression(expr, program.Symbols)
				if err != nil {
					return fmt.Errorf("%s: %w", expr, err)
				}
				fmt.Fprintf(out, "%s = %s\n", expr, res.String)
			}

			if errs := inst.GetErrors(); len(errs) > 0 {
				return fmt.Errorf("runtime error at ROM[%d] (source line %d): %w",
					errs[0].PC(), sourceLine(program, errs[0].PC()), errs[0])
			}
			return nil
		},
	}
	cmd.Flags().Uint64Var(&limit, "limit", config.Default().CycleLimit, "instructions to execute before giving up, 0 for no limit")
	cmd.Flags().StringArrayVar(&watches, "watch", nil, "expression to print after the run, such as RAM[sum] or D+1")
	return cmd
}

func sourceLine(program *assembler.Program, pc uint16) int {
	if int(pc) < len(program.SourceLines) {
		return program.SourceLines[pc] + 1
	}
	return 0
}

func newDisCmd(opts *options) *cobra.Command {
	var binary bool
	cmd := &cobra.Command{
		Use:   "dis xxx.hack",
		Short: "Disassemble Hack machine code",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := os.Open(args[0])
			if err != nil {
				return err
			}
			defer f.Close()

			var words []uint16
			if binary {
				words, err = assembler.ReadBinary(f)
			} else {
				words, err = assembler.ReadText(f)
			}
			if err != nil {
				return err
			}

			w := bufio.NewWriter(opts.stdout)
			for i, word := range words {
				instruction, err := assembler.Decode(word)
				if err != nil {
					w.Flush()
					return fmt.Errorf("word %d: %w", i, err)
				}
				fmt.Fprintln(w, instruction)
			}
			return w.Flush()
		},
	}
	cmd.Flags().BoolVar(&binary, "binary", false, "read big-endian binary words instead of text")
	return cmd
}

func newAutogradeCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "autograde [autograderConfig.json]",
		Short: "Grade assembly submissions and write Gradescope results",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			conf, err := opts.load(cmd)
			if err != nil {
				return err
			}

			var gradingConf *autograder.Config
			if len(args) == 1 {
				gradingConf, err = autograder.LoadConfig(args[0])
				if err != nil {
					return err
				}
			} else if gradingConf = autograder.GetConfig(); gradingConf == nil {
				return fmt.Errorf("no autograder config at %s", autograder.DefaultConfigPath)
			}

			gso, err := autograder.AutogradeAssembly(gradingConf, conf.Assembler())
			if err != nil {
				return err
			}
			score, maxScore := gso.Score()
			fmt.Fprintf(opts.stdout, "%s: %d/%d\n", gradingConf.AssignmentName, score, maxScore)
			return nil
		},
	}
}
