// (c) Siemens AG 2023
//
// SPDX-License-Identifier: MIT

package cli

import (
	"errors"
	"fmt"

	"github.com/manifoldco/promptui"
)

// ErrAborted signals that the user aborted an interactive prompt.
var ErrAborted = errors.New("aborted")

// promptPassword prompts for a non-empty password with masked input.
func promptPassword(label string) (string, error) {
	prompt := promptui.Prompt{
		Label: label,
		Mask:  '*',
		Validate: func(input string) error {
			if input == "" {
				return errors.New("password must not be empty")
			}
			return nil
		},
	}
	result, err := prompt.Run()
	if err != nil {
		if errors.Is(err, promptui.ErrInterrupt) || errors.Is(err, promptui.ErrEOF) {
			return "", ErrAborted
		}
		return "", err
	}
	return result, nil
}

// confirm prompts for a yes/no confirmation, defaulting to no. It returns true
// immediately if force is true.
func confirm(label string, force bool) (bool, error) {
	if force {
		return true, nil
	}
	prompt := promptui.Prompt{
		Label:     fmt.Sprintf("%s [y/N]", label),
		IsConfirm: true,
	}
	_, err := prompt.Run()
	switch {
	case err == nil:
		return true, nil
	case errors.Is(err, promptui.ErrAbort):
		return false, nil
	case errors.Is(err, promptui.ErrInterrupt), errors.Is(err, promptui.ErrEOF):
		return false, ErrAborted
	}
	return false, err
}
