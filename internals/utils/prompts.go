package utils

import (
	"errors"
	"fmt"
	"strings"

	"github.com/manifoldco/promptui"
	"github.com/minepkg/mclaunch/internals/minecraft"
)

// ErrAborted is returned if the user aborted a prompt
var ErrAborted = errors.New("aborted")

func SelectPrompt(prompt *promptui.Select) (string, error) {
	_, res, err := prompt.Run()
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrAborted, err)
	}
	return res, nil
}

func BoolPrompt(prompt *promptui.Prompt) (bool, error) {
	_, err := prompt.Run()
	if err != nil {
		if errors.Is(err, promptui.ErrInterrupt) {
			return false, ErrAborted
		}
		return false, nil
	}
	return true, nil
}

// SelectVersion lets the user pick one of versions. Typing filters the list
func SelectVersion(versions []minecraft.VersionEntry) (string, error) {
	if len(versions) == 0 {
		return "", errors.New("no versions to select from")
	}
	prompt := &promptui.Select{
		Label: "Minecraft version",
		Items: versions,
		Size:  12,
		Templates: &promptui.SelectTemplates{
			Label:    "{{ . }}",
			Active:   "▸ {{ .ID | cyan }} {{ .Type | faint }}",
			Inactive: "  {{ .ID }} {{ .Type | faint }}",
			Selected: "Minecraft {{ .ID | green }}",
		},
		Searcher: func(input string, index int) bool {
			return strings.Contains(versions[index].ID, strings.TrimSpace(input))
		},
	}
	i, _, err := prompt.Run()
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrAborted, err)
	}
	return versions[i].ID, nil
}
