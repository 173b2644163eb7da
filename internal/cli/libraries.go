package cli

import (
	"fmt"
)

// LibsCommand lists the known libraries.
type LibsCommand struct {
	CommonFlags
}

func NewLibsCommand() *LibsCommand {
	return &LibsCommand{}
}

func (cmd *LibsCommand) ParseFlags(args []string) error {
	fs := newFlagSet("libs", "[options]", "List word libraries. The current library is marked with '*'.")
	cmd.register(fs)
	return fs.Parse(args)
}

func (cmd *LibsCommand) Run() error {
	ws := openWorkspace(&cmd.CommonFlags)
	defer ws.Close()

	names := ws.Registry.Names()
	if len(names) == 0 {
		cmd.printf("No libraries in %s\n", ws.Store.Dir())
		return nil
	}

	current := ws.Registry.Current()
	for _, name := range names {
		marker := " "
		if name == current.Name {
			marker = "*"
		}
		cmd.printf("%s %s\n", marker, name)
	}
	if current.Stale {
		cmd.printf("\nStored selection no longer exists, using %s\n", current.Name)
	}
	return nil
}

// CreateCommand creates a library file.
type CreateCommand struct {
	CommonFlags
	Name   string
	Select bool
}

func NewCreateCommand() *CreateCommand {
	return &CreateCommand{}
}

func (cmd *CreateCommand) ParseFlags(args []string) error {
	fs := newFlagSet("create", "-name <library> [options]", "Create an empty word library. Existing libraries are left untouched.")
	cmd.register(fs)
	fs.StringVar(&cmd.Name, "name", "", "Library name (required)")
	fs.BoolVar(&cmd.Select, "select", false, "Make the new library current")

	if err := fs.Parse(args); err != nil {
		return err
	}
	if cmd.Name == "" {
		return fmt.Errorf("required flag -name not provided")
	}
	return nil
}

func (cmd *CreateCommand) Run() error {
	ws := openWorkspace(&cmd.CommonFlags)
	defer ws.Close()

	if err := ws.Registry.Create(cmd.Name); err != nil {
		return err
	}
	cmd.printf("Library %s ready at %s\n", cmd.Name, ws.Store.Path(cmd.Name))

	if cmd.Select {
		if err := ws.Registry.Select(cmd.Name); err != nil {
			return err
		}
		cmd.printf("Current library: %s\n", cmd.Name)
	}
	return nil
}

// SelectCommand changes the current library.
type SelectCommand struct {
	CommonFlags
	Name string
}

func NewSelectCommand() *SelectCommand {
	return &SelectCommand{}
}

func (cmd *SelectCommand) ParseFlags(args []string) error {
	fs := newFlagSet("select", "-name <library> [options]", "Make a library the current one.")
	cmd.register(fs)
	fs.StringVar(&cmd.Name, "name", "", "Library name (required)")

	if err := fs.Parse(args); err != nil {
		return err
	}
	if cmd.Name == "" {
		return fmt.Errorf("required flag -name not provided")
	}
	return nil
}

func (cmd *SelectCommand) Run() error {
	ws := openWorkspace(&cmd.CommonFlags)
	defer ws.Close()

	if err := ws.Registry.Select(cmd.Name); err != nil {
		return err
	}
	cmd.printf("Current library: %s\n", cmd.Name)
	return nil
}
