package puppet

import (
	"github.com/devgianlu/go-bridgemanager/login"
)

const (
	// StepLink submits credentials straight to the link endpoint.
	StepLink login.Step = "link"
	// StepAuthorize waits for an OAuth2 authorization done in the browser.
	StepAuthorize login.Step = "authorize"
)

func resolver(service string) func(login.Status) (login.Transition, error) {
	return func(status login.Status) (login.Transition, error) {
		switch status {
		case login.StatusLoggedIn, login.StatusAlreadyLoggedIn:
			return login.SignedIn(), nil
		default:
			return login.Transition{}, login.UnknownStatus(service, status)
		}
	}
}

func InstagramFlow(service string) *login.Definition {
	return &login.Definition{
		Service: service,
		Title:   "Sign into Instagram",
		Intro:   "To start using the Matrix-Instagram bridge, sign in with your Instagram account below.",
		Initial: StepLink,
		Steps: []login.StepSpec{{
			Step:   StepLink,
			Prompt: []string{"Enter your Instagram username and password."},
			Fields: []login.Field{
				{Name: "username", Label: "Username", Kind: login.FieldText},
				{Name: "password", Label: "Password", Kind: login.FieldPassword},
			},
			SubmitLabel: "Sign in",
		}},
		Resolve: resolver(service),
	}
}

func SlackFlow(service string) *login.Definition {
	return &login.Definition{
		Service: service,
		Title:   "Sign into Slack",
		Intro:   "To start using the Matrix-Slack bridge, authorize it to access your Slack workspace.",
		Initial: StepAuthorize,
		Steps: []login.StepSpec{{
			Step: StepAuthorize,
			Prompt: []string{
				"Open the link that appears below once you start and allow access to your workspace.",
			},
			SubmitLabel: "Authorize",
			OAuth:       true,
		}},
		Resolve: resolver(service),
	}
}
