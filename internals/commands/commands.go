package commands

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// exit is replaced in tests
var exit = os.Exit

type Command struct {
	*cobra.Command
	runner Runner
}

type Runner interface {
	RunE(cmd *cobra.Command, args []string) error
}

// New wraps cmd so that errors returned by run are rendered as error boxes
func New(cmd *cobra.Command, run Runner) *Command {
	build := &Command{
		cmd,
		run,
	}
	build.Command.Run = func(cmd *cobra.Command, args []string) {
		err := FromError(run.RunE(cmd, args))
		if err != nil {
			var asCliErr *CliError
			if errors.As(err, &asCliErr) {
				fmt.Fprintln(cmd.ErrOrStderr(), asCliErr.RichError()+"\n")
			} else {
				fmt.Fprintln(cmd.ErrOrStderr(), ErrorBox(err.Error(), ""))
			}
			exit(1)
		}
	}

	return build
}
