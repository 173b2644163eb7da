package cli

import (
	"fmt"
	"strings"

	"github.com/mrlokans/wordbook/internal/entities"
)

// AddCommand inserts or overwrites a word.
type AddCommand struct {
	CommonFlags
	Library    string
	Term       string
	Definition string
	Example    string
	Categories string
}

func NewAddCommand() *AddCommand {
	return &AddCommand{}
}

func (cmd *AddCommand) ParseFlags(args []string) error {
	fs := newFlagSet("add", "-term <word> -def <definition> [options]",
		"Add a word to a library, replacing any existing definition.")
	cmd.register(fs)
	fs.StringVar(&cmd.Library, "lib", "", "Library name (defaults to the current library)")
	fs.StringVar(&cmd.Term, "term", "", "Word to add (required)")
	fs.StringVar(&cmd.Definition, "def", "", "Definition")
	fs.StringVar(&cmd.Example, "example", "", "Example sentence")
	fs.StringVar(&cmd.Categories, "categories", "", "Comma-separated word categories, e.g. N,V")

	if err := fs.Parse(args); err != nil {
		return err
	}
	if cmd.Term == "" {
		return fmt.Errorf("required flag -term not provided")
	}
	return nil
}

func (cmd *AddCommand) Run() error {
	categories, err := parseCategories(cmd.Categories)
	if err != nil {
		return err
	}

	ws := openWorkspace(&cmd.CommonFlags)
	defer ws.Close()

	name, lib, err := ws.open(cmd.Library)
	if err != nil {
		return err
	}

	entry := entities.Entry{
		Term:       cmd.Term,
		Definition: cmd.Definition,
		Example:    cmd.Example,
		Categories: categories,
	}
	if err := lib.Put(entry); err != nil {
		return err
	}
	if err := ws.Registry.Commit(name); err != nil {
		return err
	}

	stored, _ := lib.Lookup(cmd.Term)
	cmd.printf("%s: %s\n", name, stored)
	return nil
}

func parseCategories(s string) ([]entities.Category, error) {
	if strings.TrimSpace(s) == "" {
		return nil, nil
	}
	var out []entities.Category
	for _, part := range strings.Split(s, ",") {
		c, err := entities.ParseCategory(part)
		if err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, nil
}

// LookupCommand prints the entry for a word.
type LookupCommand struct {
	CommonFlags
	Library string
	Term    string
}

func NewLookupCommand() *LookupCommand {
	return &LookupCommand{}
}

func (cmd *LookupCommand) ParseFlags(args []string) error {
	fs := newFlagSet("lookup", "-term <word> [options]", "Print the definition of a word.")
	cmd.register(fs)
	fs.StringVar(&cmd.Library, "lib", "", "Library name (defaults to the current library)")
	fs.StringVar(&cmd.Term, "term", "", "Word to look up (required)")

	if err := fs.Parse(args); err != nil {
		return err
	}
	if cmd.Term == "" {
		return fmt.Errorf("required flag -term not provided")
	}
	return nil
}

func (cmd *LookupCommand) Run() error {
	ws := openWorkspace(&cmd.CommonFlags)
	defer ws.Close()

	name, lib, err := ws.open(cmd.Library)
	if err != nil {
		return err
	}

	entry, ok := lib.Lookup(cmd.Term)
	if !ok {
		return fmt.Errorf("%q not found in %s", cmd.Term, name)
	}
	cmd.printf("%s\n", entry)
	return nil
}

// RemoveCommand deletes a word.
type RemoveCommand struct {
	CommonFlags
	Library string
	Term    string
}

func NewRemoveCommand() *RemoveCommand {
	return &RemoveCommand{}
}

func (cmd *RemoveCommand) ParseFlags(args []string) error {
	fs := newFlagSet("remove", "-term <word> [options]", "Remove a word from a library.")
	cmd.register(fs)
	fs.StringVar(&cmd.Library, "lib", "", "Library name (defaults to the current library)")
	fs.StringVar(&cmd.Term, "term", "", "Word to remove (required)")

	if err := fs.Parse(args); err != nil {
		return err
	}
	if cmd.Term == "" {
		return fmt.Errorf("required flag -term not provided")
	}
	return nil
}

func (cmd *RemoveCommand) Run() error {
	ws := openWorkspace(&cmd.CommonFlags)
	defer ws.Close()

	name, lib, err := ws.open(cmd.Library)
	if err != nil {
		return err
	}

	if !lib.Remove(cmd.Term) {
		cmd.printf("%q was not in %s\n", cmd.Term, name)
		return nil
	}
	if err := ws.Registry.Commit(name); err != nil {
		return err
	}
	cmd.printf("Removed %q from %s\n", cmd.Term, name)
	return nil
}
