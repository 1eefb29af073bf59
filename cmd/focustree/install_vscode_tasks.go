package main

import (
	"bufio"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/hayeah/focustree/internal/hujsonutil"
)

//go:embed tasks.jsonc
var tasksJSONCContent []byte

// InstallVSCodeTasksCmd represents the install:vscode:tasks subcommand
type InstallVSCodeTasksCmd struct {
	Yes bool `arg:"-y,--yes" help:"Save without asking for confirmation"`
}

// InstallVSCodeTasksRunner merges the focustree tasks into the workspace's
// .vscode/tasks.json.
type InstallVSCodeTasksRunner struct {
	Args     InstallVSCodeTasksCmd
	RootPath string
	Out      io.Writer
	In       io.Reader
}

// vscodeTask represents a single VS Code task definition.
type vscodeTask struct {
	Label        string                 `json:"label"`
	Type         string                 `json:"type"`
	Command      string                 `json:"command"`
	Args         []string               `json:"args,omitempty"`
	Options      map[string]interface{} `json:"options,omitempty"`
	Presentation map[string]interface{} `json:"presentation,omitempty"`
	// Keep the "problemMatcher" property even when empty so VS Code doesn't
	// fall back to default problem matchers.
	ProblemMatcher []interface{} `json:"problemMatcher"`
}

// vscodeInput represents a VS Code input definition.
type vscodeInput struct {
	ID          string      `json:"id"`
	Type        string      `json:"type"`
	Description string      `json:"description,omitempty"`
	Default     interface{} `json:"default,omitempty"`
}

// tasksFile is a partial representation of tasks.json that only cares about
// tasks and inputs.
type tasksFile struct {
	Tasks  []vscodeTask  `json:"tasks"`
	Inputs []vscodeInput `json:"inputs"`
}

func NewInstallVSCodeTasksRunner(args InstallVSCodeTasksCmd, rootPath string, out io.Writer) *InstallVSCodeTasksRunner {
	return &InstallVSCodeTasksRunner{
		Args:     args,
		RootPath: rootPath,
		Out:      out,
		In:       os.Stdin,
	}
}

// Run executes the installation of VS Code tasks
func (r *InstallVSCodeTasksRunner) Run() error {
	vscodeDir := filepath.Join(r.RootPath, ".vscode")
	tasksPath := filepath.Join(vscodeDir, "tasks.json")

	if err := os.MkdirAll(vscodeDir, 0755); err != nil {
		return fmt.Errorf("failed to create .vscode directory: %w", err)
	}

	var dest *hujsonutil.Value
	data, err := os.ReadFile(tasksPath)
	switch {
	case err == nil:
		dest, err = hujsonutil.Parse(data)
		if err != nil {
			return fmt.Errorf("failed to parse existing tasks.json: %w", err)
		}
		fmt.Fprintln(r.Out, "Merging with existing tasks.json...")
	case errors.Is(err, fs.ErrNotExist):
		fmt.Fprintf(r.Out, "No existing tasks.json found. Creating new file at %s\n", tasksPath)
		dest, err = hujsonutil.Parse([]byte(`{"version": "2.0.0"}`))
		if err != nil {
			return err
		}
	default:
		return fmt.Errorf("failed to read tasks.json: %w", err)
	}

	added, err := mergeTasks(dest, tasksJSONCContent)
	if err != nil {
		return fmt.Errorf("failed to merge tasks: %w", err)
	}
	if added == 0 {
		fmt.Fprintln(r.Out, "All focustree tasks are already installed.")
		return nil
	}

	dest.Format()
	fmt.Fprintln(r.Out, "Preview of the updated tasks.json:")
	fmt.Fprintln(r.Out, string(dest.Pack()))

	if !r.Args.Yes && !r.confirm("Do you want to save these changes?") {
		fmt.Fprintln(r.Out, "Operation cancelled.")
		return nil
	}

	if err := os.WriteFile(tasksPath, dest.Pack(), 0644); err != nil {
		return fmt.Errorf("failed to save tasks.json: %w", err)
	}
	fmt.Fprintf(r.Out, "Successfully updated %s\n", tasksPath)
	return nil
}

// mergeTasks inserts the tasks and inputs of src into dest, skipping labels
// and ids dest already has. Comments and ordering in dest are preserved.
// It returns how many entries were added.
func mergeTasks(dest *hujsonutil.Value, src []byte) (int, error) {
	srcValue, err := hujsonutil.Parse(src)
	if err != nil {
		return 0, fmt.Errorf("failed to parse embedded tasks.jsonc: %w", err)
	}
	std := srcValue.Clone()
	std.Standardize()
	var srcObj tasksFile
	if err := json.Unmarshal(std.Pack(), &srcObj); err != nil {
		return 0, err
	}

	added := 0
	for _, task := range srcObj.Tasks {
		ok, err := dest.InsertUnique("/tasks", "label", task)
		if err != nil {
			return added, err
		}
		if ok {
			added++
		}
	}
	for _, in := range srcObj.Inputs {
		ok, err := dest.InsertUnique("/inputs", "id", in)
		if err != nil {
			return added, err
		}
		if ok {
			added++
		}
	}
	return added, nil
}

// confirm asks the user for confirmation
func (r *InstallVSCodeTasksRunner) confirm(prompt string) bool {
	fmt.Fprintf(r.Out, "%s (y/N): ", prompt)
	line, _ := bufio.NewReader(r.In).ReadString('\n')
	return strings.ToLower(strings.TrimSpace(line)) == "y"
}
