// Command lumi is the front end for the toolchain: it assembles source text
// into container binaries, disassembles them back to text, and runs or
// single-steps them through the virtual machine.
package main

import (
	"bufio"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/fatih/color"
	"github.com/sirupsen/logrus"
	"github.com/urfave/cli"

	"lumi/asm"
	"lumi/disasm"
	"lumi/vm"
)

var log = logrus.New()

func main() {
	app := cli.NewApp()
	app.Name = "lumi"
	app.Usage = "assemble, disassemble and run programs for the LUMI virtual machine"
	app.Action = func(c *cli.Context) error {
		cli.ShowAppHelp(c)
		return nil
	}
	app.Commands = []cli.Command{
		assembleCommand,
		disasmCommand,
		runCommand,
		debugCommand,
	}

	if err := app.Run(os.Args); err != nil {
		log.WithError(err).Error("lumi failed")
		os.Exit(1)
	}
}

var assembleCommand = cli.Command{
	Name:      "assemble",
	Aliases:   []string{"asm"},
	Usage:     "assemble a source file into a container binary",
	ArgsUsage: "source.lasm out.bin",
	Action: func(c *cli.Context) error {
		args := c.Args()
		if len(args) < 2 {
			return cli.NewExitError("usage: lumi assemble <source> <out>", 1)
		}

		source, err := os.ReadFile(args[0])
		if err != nil {
			readErr := &asm.AssemblerError{Kind: asm.ErrFailedToReadFile, Detail: err.Error()}
			return cli.NewExitError(readErr.Error(), 1)
		}

		binary, errs := asm.Assemble(string(source))
		if len(errs) > 0 {
			for _, e := range errs {
				log.WithField("file", args[0]).Error(e)
			}
			return cli.NewExitError("assembly failed", 1)
		}

		if err := os.WriteFile(args[1], binary, 0644); err != nil {
			writeErr := &asm.AssemblerError{Kind: asm.ErrFailedToWriteBinaryFile, Detail: err.Error()}
			return cli.NewExitError(writeErr.Error(), 1)
		}

		color.Green("assembled %s -> %s (%d bytes)", args[0], args[1], len(binary))
		return nil
	},
}

var disasmCommand = cli.Command{
	Name:      "disassemble",
	Aliases:   []string{"disasm", "d"},
	Usage:     "disassemble a container binary to text",
	ArgsUsage: "in.bin",
	Action: func(c *cli.Context) error {
		args := c.Args()
		if len(args) < 1 {
			return cli.NewExitError("usage: lumi disassemble <in.bin>", 1)
		}

		data, err := os.ReadFile(args[0])
		if err != nil {
			return cli.NewExitError(fmt.Sprintf("reading %s: %v", args[0], err), 1)
		}

		text, err := disasm.Disassemble(data)
		if err != nil {
			return cli.NewExitError(err.Error(), 1)
		}

		fmt.Print(text)
		return nil
	},
}

var watchFlag = cli.StringSliceFlag{
	Name:  "watch",
	Usage: "watch a register or heap address for changes, e.g. reg:0 or mem:128",
}

var runCommand = cli.Command{
	Name:      "run",
	Usage:     "run a container binary to completion",
	ArgsUsage: "in.bin",
	Flags:     []cli.Flag{watchFlag},
	Action: func(c *cli.Context) error {
		args := c.Args()
		if len(args) < 1 {
			return cli.NewExitError("usage: lumi run <in.bin>", 1)
		}

		data, err := os.ReadFile(args[0])
		if err != nil {
			return cli.NewExitError(fmt.Sprintf("reading %s: %v", args[0], err), 1)
		}

		machine, err := vm.Load(data)
		if err != nil {
			return cli.NewExitError(err.Error(), 1)
		}
		if err := applyWatches(machine, c.StringSlice("watch")); err != nil {
			return cli.NewExitError(err.Error(), 1)
		}

		events := machine.Run()
		reportEvents(events)

		last := events[len(events)-1]
		if last.Kind == vm.EventCrash {
			return cli.NewExitError("program crashed", int(last.Code))
		}
		return nil
	},
}

var debugCommand = cli.Command{
	Name:      "debug",
	Aliases:   []string{"dbg"},
	Usage:     "single-step a container binary interactively",
	ArgsUsage: "in.bin",
	Action: func(c *cli.Context) error {
		args := c.Args()
		if len(args) < 1 {
			return cli.NewExitError("usage: lumi debug <in.bin>", 1)
		}

		data, err := os.ReadFile(args[0])
		if err != nil {
			return cli.NewExitError(fmt.Sprintf("reading %s: %v", args[0], err), 1)
		}

		machine, err := vm.Load(data)
		if err != nil {
			return cli.NewExitError(err.Error(), 1)
		}

		startEvents := machine.Start()
		reportEvents(startEvents)
		if startEvents[len(startEvents)-1].Kind == vm.EventCrash {
			return cli.NewExitError("bad container header", 1)
		}

		runDebugSession(machine)
		return nil
	},
}

func applyWatches(machine *vm.VM, specs []string) error {
	for _, spec := range specs {
		parts := strings.SplitN(spec, ":", 2)
		if len(parts) != 2 {
			return fmt.Errorf("invalid watch spec %q, want kind:index", spec)
		}
		idx, err := strconv.Atoi(parts[1])
		if err != nil {
			return fmt.Errorf("invalid watch index in %q: %v", spec, err)
		}

		var kind vm.WatchKeyKind
		switch parts[0] {
		case "reg":
			kind = vm.WatchRegister
		case "freg":
			kind = vm.WatchFloatRegister
		case "mem":
			kind = vm.WatchMemory
		default:
			return fmt.Errorf("unknown watch kind %q (want reg, freg or mem)", parts[0])
		}

		machine.AddWatch(vm.WatchKey{Kind: kind, Index: idx})
	}
	return nil
}

// reportEvents renders a run's event log the way a diagnostics-focused CLI
// front end should: structured fields on the log line, color reserved for
// the terminal status so a scrolling run is easy to scan.
func reportEvents(events []vm.Event) {
	for _, e := range events {
		switch e.Kind {
		case vm.EventStart:
			log.Info("program started")
		case vm.EventGracefulShutdown:
			color.Green("program exited with code %d", e.Code)
		case vm.EventCrash:
			color.Red("program crashed with code %d", e.Code)
		case vm.EventBreakpointHit:
			color.Yellow("paused at breakpoint")
		case vm.EventWatchChanged:
			log.WithFields(logrus.Fields{
				"kind":     e.Watch.Key.Kind,
				"index":    e.Watch.Key.Index,
				"previous": e.Watch.Previous,
				"current":  e.Watch.Current,
			}).Info("watch changed")
		}
	}
}

// runDebugSession drives a single-step REPL over a VM: n/next executes one
// instruction, r/run free-runs to the next breakpoint or terminal status,
// b/break <addr> toggles a software breakpoint keyed on the program counter.
func runDebugSession(machine *vm.VM) {
	fmt.Println("Commands:\n\tn or next: execute next instruction\n\tr or run: run to completion or breakpoint\n\tb or break <addr>: toggle a breakpoint\n\tq or quit: exit")

	breakpoints := make(map[int]struct{})
	reader := bufio.NewReader(os.Stdin)

	for {
		fmt.Printf("(pc=0x%08x) -> ", machine.PC())
		line, err := reader.ReadString('\n')
		if err != nil {
			return
		}
		line = strings.ToLower(strings.TrimSpace(line))

		switch {
		case line == "n" || line == "next":
			status := machine.RunOnce()
			printStepStatus(status)

		case line == "r" || line == "run":
			for {
				if _, hit := breakpoints[machine.PC()]; hit {
					color.Yellow("breakpoint at 0x%08x", machine.PC())
					break
				}
				status := machine.RunOnce()
				if status.Kind != vm.StatusContinue {
					printStepStatus(status)
					break
				}
			}

		case strings.HasPrefix(line, "b"):
			fields := strings.Fields(line)
			if len(fields) != 2 {
				fmt.Println("usage: break <addr>")
				continue
			}
			addr, err := strconv.ParseInt(fields[1], 0, 64)
			if err != nil {
				fmt.Println("invalid address:", err)
				continue
			}
			if _, ok := breakpoints[int(addr)]; ok {
				delete(breakpoints, int(addr))
				fmt.Printf("removed breakpoint at 0x%08x\n", addr)
			} else {
				breakpoints[int(addr)] = struct{}{}
				fmt.Printf("set breakpoint at 0x%08x\n", addr)
			}

		case line == "q" || line == "quit":
			return

		default:
			fmt.Println("unrecognized command")
		}
	}
}

func printStepStatus(status vm.Status) {
	switch status.Kind {
	case vm.StatusContinue:
		// still running; nothing to report
	case vm.StatusBreakpointHit:
		color.Yellow("hit BKPT")
	case vm.StatusCrash:
		color.Red("crashed with code %d", status.Code)
	case vm.StatusDone:
		color.Green("halted with code %d", status.Code)
	}
}
