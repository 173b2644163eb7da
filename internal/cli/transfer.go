package cli

import (
	"fmt"
	"os"
)

// ImportCommand replaces a library with the content of a library file, or
// merges the file's new terms into it.
type ImportCommand struct {
	CommonFlags
	Library string
	File    string
	Create  bool
	Merge   bool
}

func NewImportCommand() *ImportCommand {
	return &ImportCommand{}
}

func (cmd *ImportCommand) ParseFlags(args []string) error {
	fs := newFlagSet("import", "-lib <library> -file <path> [options]",
		"Replace a library with the content of a serialized library file.\nThe file is validated first; a malformed file leaves the library unchanged.\nWith -merge only terms missing from the library are added.")
	cmd.register(fs)
	fs.StringVar(&cmd.Library, "lib", "", "Library name (required)")
	fs.StringVar(&cmd.File, "file", "", "Path to the library file to import (required)")
	fs.BoolVar(&cmd.Create, "create", false, "Create the library if it does not exist")
	fs.BoolVar(&cmd.Merge, "merge", false, "Add missing terms instead of replacing the library")

	if err := fs.Parse(args); err != nil {
		return err
	}
	if cmd.Library == "" {
		return fmt.Errorf("required flag -lib not provided")
	}
	if cmd.File == "" {
		return fmt.Errorf("required flag -file not provided")
	}
	return nil
}

func (cmd *ImportCommand) Run() error {
	data, err := os.ReadFile(cmd.File)
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", cmd.File, err)
	}

	ws := openWorkspace(&cmd.CommonFlags)
	defer ws.Close()

	if cmd.Create && !ws.Registry.Has(cmd.Library) {
		if err := ws.Registry.Create(cmd.Library); err != nil {
			return err
		}
	}

	if cmd.Merge {
		added, err := ws.Registry.Merge(cmd.Library, string(data))
		if err != nil {
			return fmt.Errorf("merge %s: %w", cmd.File, err)
		}
		cmd.printf("Merged %d new entries into %s\n", added, cmd.Library)
		return nil
	}

	count, err := ws.Registry.Replace(cmd.Library, string(data))
	if err != nil {
		return fmt.Errorf("import %s: %w", cmd.File, err)
	}
	cmd.printf("Imported %d entries into %s\n", count, cmd.Library)
	return nil
}

// ExportCommand writes a library in serialized form.
type ExportCommand struct {
	CommonFlags
	Library string
	File    string
}

func NewExportCommand() *ExportCommand {
	return &ExportCommand{}
}

func (cmd *ExportCommand) ParseFlags(args []string) error {
	fs := newFlagSet("export", "[-lib <library>] [-file <path>] [options]",
		"Write a library in serialized form to a file or standard output.")
	cmd.register(fs)
	fs.StringVar(&cmd.Library, "lib", "", "Library name (defaults to the current library)")
	fs.StringVar(&cmd.File, "file", "", "Output file (defaults to standard output)")
	return fs.Parse(args)
}

func (cmd *ExportCommand) Run() error {
	ws := openWorkspace(&cmd.CommonFlags)
	defer ws.Close()

	_, lib, err := ws.open(cmd.Library)
	if err != nil {
		return err
	}

	if cmd.File == "" {
		return lib.Encode(cmd.out())
	}

	if err := os.WriteFile(cmd.File, []byte(lib.Serialize()), 0o644); err != nil {
		return fmt.Errorf("failed to write %s: %w", cmd.File, err)
	}
	cmd.printf("Exported %d entries to %s\n", lib.Size(), cmd.File)
	return nil
}
