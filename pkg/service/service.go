// Package service implements the commands: each service prompts, validates,
// calls the API through the session gate and prints the result.
package service

import (
	"context"

	"github.com/campuscoders/campus-cli/pkg/api"
	"github.com/campuscoders/campus-cli/pkg/credentials"
	clierrors "github.com/campuscoders/campus-cli/pkg/errors"
	"github.com/campuscoders/campus-cli/pkg/output"
	"github.com/campuscoders/campus-cli/pkg/prompter"
	"github.com/campuscoders/campus-cli/pkg/session"
)

// Env is what every service needs. It is built once per invocation.
type Env struct {
	API       *api.API
	Gate      *session.Gate
	Out       *output.Printer
	Prompt    *prompter.Prompter
	Snapshots *credentials.File
	// SearchLimit is the page size for user search.
	SearchLimit int
}

// requireProfile returns the session for commands that need a finished
// profile. Users who have not completed onboarding are sent to setup.
func (e *Env) requireProfile(ctx context.Context) (*session.Session, error) {
	s, dest, err := e.Gate.Require(ctx)
	if err != nil {
		return nil, err
	}
	if dest == session.DestProfileSetup {
		return nil, clierrors.ValidationError("profile", "Profile setup is not complete").
			WithSuggestion("Finish onboarding with 'campus profile setup'.")
	}
	return s, nil
}

// prompt fills value from the terminal when it was not given as a flag.
func (e *Env) prompt(value *string, label string, secret bool) error {
	if *value != "" {
		return nil
	}
	var (
		got string
		err error
	)
	if secret {
		got, err = e.Prompt.Password(label)
	} else {
		got, err = e.Prompt.String(label)
	}
	if err != nil {
		return err
	}
	*value = got
	return nil
}
