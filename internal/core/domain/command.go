package domain

import "strings"

// Command is an external process invocation.
type Command struct {
	// Name is the program to run, either a path or a name looked up in PATH.
	Name string
	// Args are the program arguments.
	Args []string
	// Dir is the working directory. Empty means the current directory.
	Dir string
	// Env holds extra "KEY=VALUE" entries appended to the inherited environment.
	Env []string
}

// String renders the command line for logs.
func (c Command) String() string {
	return strings.Join(append([]string{c.Name}, c.Args...), " ")
}

// CommandResult holds the captured output of a finished command.
type CommandResult struct {
	Stdout   []byte
	Stderr   []byte
	ExitCode int
}
