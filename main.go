package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/pflag"

	"github.com/illarion/stagedit/cmd"
	"github.com/illarion/stagedit/internal/edit"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGTERM, syscall.SIGHUP)
	defer stop()
	ctx, stopInterrupt := edit.NotifyInterrupt(ctx)
	defer stopInterrupt()

	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	switch os.Args[1] {
	case "edit":
		runEdit(ctx, os.Args[2:])
	case "history":
		runHistory(ctx, os.Args[2:])
	case "diff":
		runDiff(ctx, os.Args[2:])
	case "completion":
		runCompletion(ctx, os.Args[2:])
	case "help", "-h", "--help":
		if len(os.Args) <= 2 {
			printUsage()
			return
		}
		printCommandHelp(os.Args[2])
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n", os.Args[1])
		printUsage()
		os.Exit(1)
	}
}

// commonFlags are accepted by every command that reads the config
type commonFlags struct {
	config  *string
	verbose *bool
	quiet   *bool
}

func addCommonFlags(fs *pflag.FlagSet) commonFlags {
	fs.String("history-db", "", "Install history database")
	return commonFlags{
		config:  fs.String("config", "", "Config file (default: $XDG_CONFIG_HOME/stagedit/config.yaml)"),
		verbose: fs.BoolP("verbose", "v", false, "Show debug output"),
		quiet:   fs.BoolP("quiet", "q", false, "Only show warnings and errors"),
	}
}

func loadConfig(fs *pflag.FlagSet, common commonFlags) *cmd.Config {
	cfg, err := cmd.LoadConfig(*common.config, fs)
	if err != nil {
		cmd.HandleError(err)
	}
	return cfg
}

func parse(fs *pflag.FlagSet, args []string) {
	if err := fs.Parse(args); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %s\n", err)
		os.Exit(1)
	}
}

func runEdit(ctx context.Context, args []string) {
	fs := pflag.NewFlagSet("edit", pflag.ExitOnError)
	common := addCommonFlags(fs)
	original := fs.String("original", "", "Seed the staging copy from this file")
	references := fs.StringArray("reference", nil, "Show this file as a commented reference (repeatable)")
	markers := fs.Bool("markers", false, "Wrap the content in marker comments")
	root := fs.String("root", "", "Confine targets to this directory")
	fs.Bool("remove-empty-parent", false, "Remove the parent directory if left empty")
	fs.Bool("diff", false, "Show a diff of each installed file")
	fs.Bool("strict", false, "Install nothing if the editor exits non-zero")
	fs.Bool("no-history", false, "Do not record installs")
	parse(fs, args)

	cfg := loadConfig(fs, common)
	log := cmd.NewLogger(os.Stderr, *common.verbose, *common.quiet)

	cmd.Edit(ctx, cmd.EditOptions{
		Files:      fs.Args(),
		Original:   *original,
		References: *references,
		Markers:    *markers,
		Root:       *root,
	}, cfg, log)
}

func runHistory(_ context.Context, args []string) {
	fs := pflag.NewFlagSet("history", pflag.ExitOnError)
	common := addCommonFlags(fs)
	parse(fs, args)

	if fs.NArg() > 1 {
		fmt.Fprintln(os.Stderr, "Usage: stagedit history [file]")
		os.Exit(1)
	}

	cfg := loadConfig(fs, common)
	cmd.History(cfg, fs.Arg(0))
}

func runDiff(_ context.Context, args []string) {
	fs := pflag.NewFlagSet("diff", pflag.ExitOnError)
	common := addCommonFlags(fs)
	parse(fs, args)

	cfg := loadConfig(fs, common)
	cmd.Diff(cfg, fs.Args())
}

func runCompletion(_ context.Context, args []string) {
	if len(args) < 1 {
		fmt.Fprintln(os.Stderr, "Usage: stagedit completion <bash|zsh|fish>")
		os.Exit(1)
	}
	cmd.Completion(args[0])
}

func printUsage() {
	fmt.Println("stagedit - Edit files through staging copies")
	fmt.Println()
	fmt.Println("Usage:")
	fmt.Println("  stagedit <command> [arguments]")
	fmt.Println()
	fmt.Println("Commands:")
	fmt.Println("  edit        Edit files in $EDITOR and install the result")
	fmt.Println("  history     Show recorded installs")
	fmt.Println("  diff        Show what the last install of a file changed")
	fmt.Println("  completion  Generate shell completions")
	fmt.Println("  help        Show help for a command")
	fmt.Println()
	fmt.Println("Examples:")
	fmt.Println("  stagedit edit /etc/app.conf                          # Edit a single file")
	fmt.Println("  stagedit edit --reference base.conf override.conf    # Edit next to a reference")
	fmt.Println("  stagedit history                                     # List recorded installs")
	fmt.Println()
	fmt.Println("Use 'stagedit help <command>' for more information about a command.")
}

func printCommandHelp(command string) {
	switch command {
	case "edit":
		fmt.Println("stagedit edit [flags] <file> [file...]")
		fmt.Println()
		fmt.Println("Copies each file to a hidden staging file next to it, opens all staging")
		fmt.Println("files in one editor invocation and installs the edited copies over the")
		fmt.Println("targets. Files that end up empty are left untouched.")
		fmt.Println()
		fmt.Println("The editor is taken from $STAGEDIT_EDITOR, $EDITOR or $VISUAL, in that")
		fmt.Println("order, falling back to editor, nano, vim and vi.")
		fmt.Println()
		fmt.Println("Flags:")
		fmt.Println("  --original <file>       Seed the staging copy from this file (single target only)")
		fmt.Println("  --reference <file>      Show this file as a commented reference (repeatable)")
		fmt.Println("  --markers               Wrap the content in marker comments")
		fmt.Println("  --remove-empty-parent   Remove the parent directory if left empty")
		fmt.Println("  --root <dir>            Confine targets to this directory")
		fmt.Println("  --diff                  Show a diff of each installed file")
		fmt.Println("  --strict                Install nothing if the editor exits non-zero")
		fmt.Println("  --no-history            Do not record installs")
		fmt.Println("  --history-db <file>     Install history database")
		fmt.Println("  --config <file>         Config file")
		fmt.Println("  -v, --verbose           Show debug output")
		fmt.Println("  -q, --quiet             Only show warnings and errors")
		fmt.Println()
		fmt.Println("Examples:")
		fmt.Println("  stagedit edit /etc/app.conf")
		fmt.Println("  stagedit edit --original /usr/lib/app.conf /etc/app.conf")
		fmt.Println("  stagedit edit --reference /usr/lib/app.conf /etc/app.conf.d/override.conf")
		fmt.Println("  STAGEDIT_EDITOR='code --wait' stagedit edit a.conf b.conf")
	case "history":
		fmt.Println("stagedit history [file]")
		fmt.Println()
		fmt.Println("Lists recorded installs, oldest first.")
		fmt.Println("With a file argument, only installs of that file are shown.")
		fmt.Println()
		fmt.Println("Example:")
		fmt.Println("  stagedit history /etc/app.conf")
	case "diff":
		fmt.Println("stagedit diff <file> [file...]")
		fmt.Println()
		fmt.Println("Shows a unified diff between the content a file had before its last")
		fmt.Println("install and its current content. Warns when the file was changed")
		fmt.Println("after it was installed.")
		fmt.Println()
		fmt.Println("Example:")
		fmt.Println("  stagedit diff /etc/app.conf")
	case "completion":
		fmt.Println("stagedit completion <bash|zsh|fish>")
		fmt.Println()
		fmt.Println("Outputs shell completion script for the specified shell.")
		fmt.Println()
		fmt.Println("Setup:")
		fmt.Println("  # Bash - add to ~/.bashrc")
		fmt.Println("  eval \"$(stagedit completion bash)\"")
		fmt.Println()
		fmt.Println("  # Zsh - add to ~/.zshrc")
		fmt.Println("  eval \"$(stagedit completion zsh)\"")
		fmt.Println()
		fmt.Println("  # Fish - add to ~/.config/fish/config.fish")
		fmt.Println("  stagedit completion fish | source")
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n", command)
		printUsage()
	}
}
