package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/xatuke/screenshader/internal/ipc"
	"github.com/xatuke/screenshader/internal/params"
	"github.com/xatuke/screenshader/internal/shader"
)

func noArgsCommand(name, summary string, args []string) bool {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(os.Stderr)
	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: screenshader %s\n\n%s\n", name, summary)
	}
	if err := fs.Parse(args); err != nil {
		return false
	}
	if fs.NArg() != 0 {
		fmt.Fprintf(os.Stderr, "%s takes no arguments\n", name)
		fs.Usage()
		return false
	}
	return true
}

func runReload(args []string) int {
	if !noArgsCommand("reload", "Rebuild the active shader via IPC.", args) {
		return 2
	}
	if err := ipc.NewClient().ReloadShader(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	fmt.Println("reload requested")
	return 0
}

func runStop(args []string) int {
	if !noArgsCommand("stop", "Stop the running compositor via IPC.", args) {
		return 2
	}
	if err := ipc.NewClient().Stop(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	fmt.Println("stop requested")
	return 0
}

func runStatus(args []string) int {
	fs := flag.NewFlagSet("status", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)
	asJSON := fs.Bool("json", false, "Output JSON")
	fs.Usage = func() {
		fmt.Fprintln(os.Stderr, "Usage: screenshader status [--json]")
		fmt.Fprintln(os.Stderr, "")
		fmt.Fprintln(os.Stderr, "Show compositor status via IPC.")
	}
	if code, ok := parseFlags(fs, args); !ok {
		return code
	}

	status, err := ipc.NewClient().GetStatus()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	if *asJSON {
		return printJSON(os.Stdout, status)
	}
	fmt.Printf("daemon_running:  %v\n", status.DaemonRunning)
	fmt.Printf("shader:          %s\n", status.Shader)
	if status.ShaderError != "" {
		fmt.Printf("shader_error:    %s\n", status.ShaderError)
	}
	fmt.Printf("params_file:     %s (%d params)\n", status.ParamsFile, status.ParamCount)
	fmt.Printf("windows:         %d tracked, %d mapped, %d bound\n", status.Windows, status.Mapped, status.Bound)
	fmt.Printf("target:          %dx%d\n", status.Width, status.Height)
	fmt.Printf("frames:          %d\n", status.Frames)
	fmt.Printf("protocol_errors: %d\n", status.ProtocolErrors)
	fmt.Printf("uptime_seconds:  %d\n", status.UptimeSeconds)
	return 0
}

func printParamsUsage(w io.Writer) {
	fmt.Fprintln(w, "Usage:")
	fmt.Fprintln(w, "  screenshader params get [--config PATH]")
	fmt.Fprintln(w, "  screenshader params set [--config PATH] [--replace] name=value...")
	fmt.Fprintln(w, "")
	fmt.Fprintln(w, "Parameters go through the running compositor, or straight to the")
	fmt.Fprintln(w, "params file when it is not running.")
}

func runParams(args []string) int {
	if len(args) == 0 {
		printParamsUsage(os.Stderr)
		return 2
	}
	switch args[0] {
	case "get":
		return runParamsGet(args[1:])
	case "set":
		return runParamsSet(args[1:])
	case "help", "-h", "--help":
		printParamsUsage(os.Stdout)
		return 0
	default:
		fmt.Fprintf(os.Stderr, "Unknown params subcommand: %s\n\n", args[0])
		printParamsUsage(os.Stderr)
		return 2
	}
}

func runParamsGet(args []string) int {
	fs := flag.NewFlagSet("params get", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)
	path := configPathFlag(fs)
	if code, ok := parseFlags(fs, args); !ok {
		return code
	}

	var ps []params.Param
	if data, err := ipc.NewClient().GetParams(); err == nil {
		ps = data.Params
	} else {
		res, err := loadConfig(*path)
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			return 1
		}
		ps, err = params.Read(res.Config.ParamsFile)
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			return 1
		}
	}
	for _, p := range ps {
		fmt.Println(p.String())
	}
	return 0
}

func runParamsSet(args []string) int {
	fs := flag.NewFlagSet("params set", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)
	path := configPathFlag(fs)
	replace := fs.Bool("replace", false, "Replace the whole parameter set instead of merging")
	if code, ok := parseFlags(fs, args); !ok {
		return code
	}
	if fs.NArg() == 0 && !*replace {
		fmt.Fprintln(os.Stderr, "params set requires at least one name=value")
		return 2
	}

	updates := make([]params.Param, 0, fs.NArg())
	for _, arg := range fs.Args() {
		p, err := params.ParseAssignment(arg)
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			return 2
		}
		updates = append(updates, p)
	}

	if _, err := ipc.NewClient().SetParams(updates, *replace); err == nil {
		return 0
	}

	// Compositor not running; edit the file directly.
	res, err := loadConfig(*path)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	file := res.Config.ParamsFile
	next := updates
	if !*replace {
		current, err := params.Read(file)
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			return 1
		}
		next = params.Merge(current, updates)
	}
	if err := params.Write(file, next); err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	return 0
}

func runShaders(args []string) int {
	fs := flag.NewFlagSet("shaders", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)
	path := configPathFlag(fs)
	use := fs.String("use", "", "Switch the running compositor to this shader")
	fs.Usage = func() {
		fmt.Fprintln(os.Stderr, "Usage: screenshader shaders [--config PATH] [--use NAME]")
		fmt.Fprintln(os.Stderr, "")
		fmt.Fprintln(os.Stderr, "List post-process shaders in shader_dir; * marks the active one.")
	}
	if code, ok := parseFlags(fs, args); !ok {
		return code
	}

	res, err := loadConfig(*path)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	dir := shaderDir(res.Config)
	client := ipc.NewClient()

	if *use != "" {
		applied, err := client.SelectShader(shader.PathFor(dir, *use))
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			return 1
		}
		fmt.Printf("selected %s\n", applied)
		return 0
	}

	names, err := shader.List(dir)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	active := ""
	if st, err := client.GetStatus(); err == nil {
		active, _ = filepath.Abs(st.Shader)
	}
	for _, name := range names {
		marker := " "
		if abs, _ := filepath.Abs(shader.PathFor(dir, name)); abs == active {
			marker = "*"
		}
		fmt.Printf("%s %s\n", marker, name)
	}
	return 0
}

func printJSON(w io.Writer, v any) int {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	return 0
}
