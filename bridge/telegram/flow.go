package telegram

import (
	"github.com/devgianlu/go-bridgemanager/login"
)

const (
	StepRequestCode  login.Step = "request_code"
	StepBotToken     login.Step = "bot_token"
	StepSendCode     login.Step = "send_code"
	StepSendPassword login.Step = "send_password"
)

const (
	StatusRequest  login.Status = "request"
	StatusToken    login.Status = "token"
	StatusCode     login.Status = "code"
	StatusPassword login.Status = "password"
)

var steps = []login.Step{StepRequestCode, StepBotToken, StepSendCode, StepSendPassword}

func resolve(status login.Status) (login.Transition, error) {
	switch status {
	case StatusRequest:
		return login.GoTo(StepRequestCode), nil
	case StatusToken:
		return login.GoTo(StepBotToken), nil
	case StatusCode:
		return login.GoTo(StepSendCode), nil
	case StatusPassword:
		return login.GoTo(StepSendPassword), nil
	case login.StatusLoggedIn, login.StatusAlreadyLoggedIn:
		return login.SignedIn(), nil
	default:
		return login.Transition{}, login.UnknownStatus(service, status)
	}
}

// Flow returns the Telegram login flow. The bot token step is only reachable if the bridge
// allows bot logins.
func Flow(allowBotLogin bool) *login.Definition {
	requestCode := login.StepSpec{
		Step: StepRequestCode,
		Prompt: []string{
			"Please enter your phone number to sign into the Telegram bridge.",
			"This works the same way as a normal Telegram client: you'll receive a code through " +
				"SMS or an existing Telegram client and you input it here to sign in.",
		},
		Fields:      []login.Field{{Name: "phone", Label: "Phone number", Kind: login.FieldPhone}},
		SubmitLabel: "Request code",
	}

	botToken := login.StepSpec{
		Step: StepBotToken,
		Prompt: []string{
			"You can use a bot token instead of a real account to sign in too. " +
				"Note that bot accounts are significantly more limited than normal accounts.",
		},
		Fields:       []login.Field{{Name: "token", Label: "Bot token", Kind: login.FieldText}},
		SubmitLabel:  "Sign in",
		Alternatives: []login.Alternative{{Step: StepRequestCode, Label: "Use phone number"}},
	}

	if allowBotLogin {
		requestCode.Alternatives = []login.Alternative{{Step: StepBotToken, Label: "Use bot token"}}
	}

	return &login.Definition{
		Service: service,
		Title:   "Sign into Telegram",
		Intro:   "To start using the Matrix-Telegram bridge, sign in with your Telegram account below.",
		Initial: StepRequestCode,
		Steps: []login.StepSpec{
			requestCode,
			botToken,
			{
				Step:        StepSendCode,
				Prompt:      []string{"Sign-in code sent. Please enter the code here."},
				Fields:      []login.Field{{Name: "code", Label: "Phone code", Kind: login.FieldNumber}},
				SubmitLabel: "Sign in",
			},
			{
				Step: StepSendPassword,
				Prompt: []string{
					"Sign-in code confirmed, but you have two-factor authentication enabled. " +
						"Please enter your password here.",
				},
				Fields:      []login.Field{{Name: "password", Label: "Password", Kind: login.FieldPassword}},
				SubmitLabel: "Sign in",
			},
		},
		Resolve: resolve,
	}
}
