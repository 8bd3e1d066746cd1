package main

import (
	"flag"
	"fmt"
	"io"
	"os"
	"runtime"
	"strings"

	"github.com/xatuke/screenshader/internal/config"
	"github.com/xatuke/screenshader/internal/shader"
)

// GL and GLX calls must stay on the thread that created the context, and
// the compositor runs on the main goroutine.
func init() {
	runtime.LockOSThread()
}

func main() {
	if len(os.Args) < 2 {
		os.Exit(runCompositor(nil))
	}

	switch os.Args[1] {
	case "run":
		os.Exit(runCompositor(os.Args[2:]))
	case "reload":
		os.Exit(runReload(os.Args[2:]))
	case "stop":
		os.Exit(runStop(os.Args[2:]))
	case "status":
		os.Exit(runStatus(os.Args[2:]))
	case "params":
		os.Exit(runParams(os.Args[2:]))
	case "shaders":
		os.Exit(runShaders(os.Args[2:]))
	case "config":
		os.Exit(runConfig(os.Args[2:]))
	case "tui":
		os.Exit(runTUI(os.Args[2:]))
	case "mcp":
		os.Exit(runMCP(os.Args[2:]))
	case "help", "-h", "--help":
		printMainUsage(os.Stdout)
		os.Exit(0)
	default:
		// A bare shader path starts the compositor with it.
		if len(os.Args) == 2 && isShaderArg(os.Args[1]) {
			os.Exit(runCompositor(os.Args[1:]))
		}
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n\n", os.Args[1])
		printMainUsage(os.Stderr)
		os.Exit(2)
	}
}

func isShaderArg(arg string) bool {
	return strings.HasSuffix(arg, ".frag")
}

func printMainUsage(w io.Writer) {
	fmt.Fprintln(w, "Usage: screenshader [command] [options]")
	fmt.Fprintln(w, "")
	fmt.Fprintln(w, "Commands:")
	fmt.Fprintln(w, "  run [shader.frag]   Start the compositor (default)")
	fmt.Fprintln(w, "  reload              Rebuild the active shader")
	fmt.Fprintln(w, "  stop                Stop the compositor")
	fmt.Fprintln(w, "  status              Show compositor status")
	fmt.Fprintln(w, "")
	fmt.Fprintln(w, "  params get          Print shader parameters")
	fmt.Fprintln(w, "  params set          Set parameters (name=value ...)")
	fmt.Fprintln(w, "  shaders             List shaders and switch with --use NAME")
	fmt.Fprintln(w, "")
	fmt.Fprintln(w, "  config validate     Validate configuration")
	fmt.Fprintln(w, "  config print        Print configuration")
	fmt.Fprintln(w, "  config explain      Explain a config value")
	fmt.Fprintln(w, "")
	fmt.Fprintln(w, "  tui                 Open the shader browser and parameter tuner")
	fmt.Fprintln(w, "  mcp serve           Start MCP server (stdio transport)")
	fmt.Fprintln(w, "")
	fmt.Fprintln(w, "Run 'screenshader <command> --help' for command-specific options.")
}

// loadConfig loads path, or the default location when path is empty.
func loadConfig(path string) (*config.LoadResult, error) {
	if path == "" {
		return config.LoadWithSources()
	}
	return config.LoadFromPath(path)
}

func configPathFlag(fs *flag.FlagSet) *string {
	return fs.String("config", "", "Config file path (default: ~/.config/screenshader/config.yaml)")
}

// shaderDir resolves the configured shader directory against the install dir.
func shaderDir(cfg *config.Config) string {
	installDir, _ := shader.InstallDir()
	return cfg.ResolveShaderDir(installDir)
}

func parseFlags(fs *flag.FlagSet, args []string) (int, bool) {
	if err := fs.Parse(args); err != nil {
		if err == flag.ErrHelp {
			return 0, false
		}
		return 2, false
	}
	return 0, true
}
