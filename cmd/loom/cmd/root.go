// Package cmd implements the Loom CLI commands.
//
// The command structure follows standard Go CLI patterns with a root command
// that dispatches to subcommands (serve, render, demos, init).
package cmd

import (
	"fmt"
	"io"
	"os"
	"strings"
)

// Version information set at build time.
var (
	Version   = "0.1.0-dev"
	BuildTime = "unknown"
)

// Command represents a CLI command.
type Command struct {
	Name        string
	Short       string
	Long        string
	Usage       string
	Run         func(args []string) error
	SubCommands []*Command
}

var rootCmd = &Command{
	Name:  "loom",
	Short: "Loom - server-rendered reactive UI in Go",
	Long: `Loom declares a component tree in Go, binds it to named state and
pushes a fresh render to the browser after every interaction.

Use "loom <command> --help" for more information about a command.`,
	Usage: "loom <command> [flags]",
}

// Commands registered with the CLI.
var commands = make(map[string]*Command)

// stdout receives command output. Tests replace it.
var stdout io.Writer = os.Stdout

// configDir overrides the project directory searched for loom.yaml.
var configDir string

// RegisterCommand adds a command to the CLI.
func RegisterCommand(cmd *Command) {
	commands[cmd.Name] = cmd
	rootCmd.SubCommands = append(rootCmd.SubCommands, cmd)
}

// Execute runs the CLI with the process arguments.
func Execute() error {
	return run(os.Args[1:])
}

func run(args []string) error {
	// Handle no arguments
	if len(args) == 0 {
		printHelp(rootCmd)
		return nil
	}

	// Handle global flags and extract --config
	var filteredArgs []string
	for i := 0; i < len(args); i++ {
		arg := args[i]
		switch arg {
		case "-h", "--help", "help":
			if len(filteredArgs) == 0 {
				printHelp(rootCmd)
				return nil
			}
			filteredArgs = append(filteredArgs, arg)
		case "-v", "--version", "version":
			if len(filteredArgs) == 0 {
				fmt.Fprintf(stdout, "Loom CLI version %s (built %s)\n", Version, BuildTime)
				return nil
			}
			filteredArgs = append(filteredArgs, arg)
		case "--config":
			if i+1 < len(args) {
				configDir = args[i+1]
				i++
			} else {
				return fmt.Errorf("--config requires a directory path")
			}
		default:
			if strings.HasPrefix(arg, "--config=") {
				configDir = strings.TrimPrefix(arg, "--config=")
				continue
			}
			filteredArgs = append(filteredArgs, arg)
		}
	}
	args = filteredArgs

	if len(args) == 0 {
		printHelp(rootCmd)
		return nil
	}

	// Find and execute the command
	cmdName := args[0]
	cmd, ok := commands[cmdName]
	if !ok {
		fmt.Fprintf(os.Stderr, "Error: unknown command %q\n\n", cmdName)
		printHelp(rootCmd)
		return fmt.Errorf("unknown command: %s", cmdName)
	}

	// Check for help flag on subcommand
	cmdArgs := args[1:]
	for _, arg := range cmdArgs {
		if arg == "-h" || arg == "--help" || arg == "help" {
			printCommandHelp(cmd)
			return nil
		}
	}

	return cmd.Run(cmdArgs)
}

// parseFlags splits args into the values of the named "--flag value" or
// "--flag=value" options and the remaining positional arguments.
func parseFlags(args []string, names ...string) (map[string]string, []string, error) {
	known := make(map[string]bool, len(names))
	for _, n := range names {
		known[n] = true
	}

	values := make(map[string]string)
	var positional []string
	for i := 0; i < len(args); i++ {
		arg := args[i]
		if !strings.HasPrefix(arg, "--") {
			positional = append(positional, arg)
			continue
		}
		name, value, hasValue := strings.Cut(strings.TrimPrefix(arg, "--"), "=")
		if !known[name] {
			return nil, nil, fmt.Errorf("unknown flag --%s", name)
		}
		if !hasValue {
			if i+1 >= len(args) {
				return nil, nil, fmt.Errorf("--%s requires a value", name)
			}
			value = args[i+1]
			i++
		}
		values[name] = value
	}
	return values, positional, nil
}

func printHelp(cmd *Command) {
	fmt.Fprintln(stdout, cmd.Long)
	fmt.Fprintln(stdout)
	fmt.Fprintln(stdout, "Usage:")
	fmt.Fprintf(stdout, "  %s\n", cmd.Usage)
	fmt.Fprintln(stdout)
	fmt.Fprintln(stdout, "Commands:")
	for _, sub := range cmd.SubCommands {
		fmt.Fprintf(stdout, "  %-14s %s\n", sub.Name, sub.Short)
	}
	fmt.Fprintln(stdout)
	fmt.Fprintln(stdout, "Flags:")
	fmt.Fprintln(stdout, "  -h, --help           Show help for a command")
	fmt.Fprintln(stdout, "  -v, --version        Show version information")
	fmt.Fprintln(stdout, "  --config DIR         Project directory holding loom.yaml (default: nearest go.mod)")
	fmt.Fprintln(stdout)
	fmt.Fprintln(stdout, "Environment:")
	fmt.Fprintln(stdout, "  LOOM_ADDR, LOOM_WS_PATH, LOOM_DEBUG, LOOM_TITLE, LOOM_THEME,")
	fmt.Fprintln(stdout, "  LOOM_LOG_LEVEL, LOOM_LOG_FORMAT, LOOM_EVENTS_PER_SECOND override loom.yaml")
	fmt.Fprintln(stdout)
	fmt.Fprintln(stdout, "Examples:")
	fmt.Fprintln(stdout, "  loom serve --demo traffic     Serve a bundled demo on :8000")
	fmt.Fprintln(stdout, "  loom render --format html     Print the server-side HTML of a demo")
	fmt.Fprintln(stdout, "  loom init myapp               Create a new project")
}

func printCommandHelp(cmd *Command) {
	fmt.Fprintln(stdout, cmd.Long)
	fmt.Fprintln(stdout)
	fmt.Fprintln(stdout, "Usage:")
	fmt.Fprintf(stdout, "  %s\n", cmd.Usage)
}
