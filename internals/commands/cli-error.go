package commands

import (
	"errors"
	"fmt"

	"github.com/charmbracelet/lipgloss"
	"github.com/minepkg/mclaunch/internals/downloadmgr"
	"github.com/minepkg/mclaunch/internals/instances"
	"github.com/minepkg/mclaunch/internals/launcher"
	"github.com/minepkg/mclaunch/internals/resolver"
)

// CliError is an error that might get displayed to the user
type CliError struct {
	Text        string
	Code        string
	Suggestions []string
	Help        string
	Err         error
}

func (e *CliError) Error() string {
	return e.Text
}

func (e *CliError) Unwrap() error {
	return e.Err
}

func (e *CliError) RichError() string {
	rendered := ErrorBox(e.Text, e.Help)
	if len(e.Suggestions) != 0 {
		suggestionText := "Suggestion:\n"
		if len(e.Suggestions) > 1 {
			suggestionText = "Suggestions:\n"
		}
		suggestionText = Emoji("📎 ") + suggestionText
		for _, s := range e.Suggestions {
			suggestionText += " ⦁ " + s + "\n"
		}
		rendered = lipgloss.JoinVertical(lipgloss.Left, rendered, styleHelpBox.Render(suggestionText))
	}
	return rendered
}

// FromError turns known launcher errors into a CliError with some help for the user.
// Unknown errors are returned as-is.
func FromError(err error) error {
	var cliErr *CliError
	if err == nil || errors.As(err, &cliErr) {
		return err
	}

	var (
		cycle    *resolver.ResolutionCycleError
		fetch    *resolver.ManifestFetchError
		missing  *launcher.MissingValueError
		stage    *instances.StageError
		download *downloadmgr.Failure
	)
	switch {
	case errors.Is(err, resolver.ErrUnknownVersion):
		return &CliError{
			Text:        err.Error(),
			Code:        "unknown_version",
			Suggestions: []string{"Run \"mclaunch versions\" to list all available versions"},
			Err:         err,
		}
	case errors.As(err, &cycle):
		return &CliError{
			Text: err.Error(),
			Code: "inheritance_cycle",
			Help: "The version files in your versions directory inherit from each other. Remove the broken ones and try again",
			Err:  err,
		}
	case errors.As(err, &missing):
		return &CliError{
			Text:        err.Error(),
			Code:        "missing_launch_value",
			Suggestions: []string{fmt.Sprintf("Set it with --var %s=<value>", missing.Key)},
			Err:         err,
		}
	case errors.As(err, &download) && download.Kind == downloadmgr.FailureCanceled:
		return &CliError{Text: "Installation canceled", Code: "canceled", Err: err}
	case errors.As(err, &fetch), errors.As(err, &stage) && stage.Stage == instances.StateDownloading:
		return &CliError{
			Text:        err.Error(),
			Code:        "download_failed",
			Help:        "Files that were downloaded & verified are kept.",
			Suggestions: []string{"Check your internet connection and run the command again"},
			Err:         err,
		}
	}
	return err
}
