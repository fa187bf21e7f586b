package login_test

import (
	"context"
	"errors"
	"sync"
	"testing"

	bridgemanager "github.com/devgianlu/go-bridgemanager"
	"github.com/devgianlu/go-bridgemanager/login"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
)

const (
	stepPhone    login.Step = "phone"
	stepToken    login.Step = "token"
	stepCode     login.Step = "code"
	stepPassword login.Step = "password"
)

func testDefinition() *login.Definition {
	return &login.Definition{
		Service: "Test bridge",
		Initial: stepPhone,
		Steps: []login.StepSpec{
			{
				Step:         stepPhone,
				Fields:       []login.Field{{Name: "phone", Kind: login.FieldPhone}},
				Alternatives: []login.Alternative{{Step: stepToken, Label: "Use token"}},
			},
			{
				Step:         stepToken,
				Fields:       []login.Field{{Name: "token", Kind: login.FieldText}},
				Alternatives: []login.Alternative{{Step: stepPhone, Label: "Use phone"}},
			},
			{Step: stepCode, Fields: []login.Field{{Name: "code", Kind: login.FieldNumber}}},
			{Step: stepPassword, Fields: []login.Field{{Name: "password", Kind: login.FieldPassword}}},
		},
		Resolve: func(status login.Status) (login.Transition, error) {
			switch status {
			case login.StatusLoggedIn, login.StatusAlreadyLoggedIn:
				return login.SignedIn(), nil
			case "code":
				return login.GoTo(stepCode), nil
			case "token":
				return login.GoTo(stepToken), nil
			case "password":
				return login.GoTo(stepPassword), nil
			case "phone":
				return login.GoTo(stepPhone), nil
			default:
				return login.Transition{}, login.UnknownStatus("Test bridge", status)
			}
		},
	}
}

type submission struct {
	Step    login.Step
	Payload login.Payload
}

type MachineSuite struct {
	suite.Suite

	submissions []submission
	replies     []login.Status
	replyErr    error
	loggedIn    int

	machine *login.Machine
}

func (suite *MachineSuite) SetupTest() {
	suite.submissions = nil
	suite.replies = nil
	suite.replyErr = nil
	suite.loggedIn = 0

	var err error
	suite.machine, err = login.NewMachine(&bridgemanager.NullLogger{}, testDefinition(), suite.submit, func(context.Context) error {
		suite.loggedIn++
		return nil
	})
	suite.Require().NoError(err)
}

func (suite *MachineSuite) submit(_ context.Context, step login.Step, payload login.Payload) (login.Status, error) {
	suite.submissions = append(suite.submissions, submission{step, payload})
	if suite.replyErr != nil {
		return "", suite.replyErr
	}

	status := suite.replies[0]
	suite.replies = suite.replies[1:]
	return status, nil
}

func (suite *MachineSuite) TestTransitions() {
	tests := []struct {
		status   login.Status
		expected login.Step
		loggedIn int
	}{
		{"code", stepCode, 0},
		{"token", stepToken, 0},
		{login.StatusLoggedIn, stepPhone, 1},
		{login.StatusAlreadyLoggedIn, stepPhone, 1},
	}

	for _, tt := range tests {
		suite.Run(string(tt.status), func() {
			suite.SetupTest()
			suite.replies = []login.Status{tt.status}

			suite.Require().NoError(suite.machine.SetValue("phone", "+1 555 123 4567"))
			suite.Require().NoError(suite.machine.Submit(context.Background()))

			suite.Equal(tt.expected, suite.machine.Step())
			suite.Equal(tt.loggedIn, suite.loggedIn)
			suite.Equal(tt.loggedIn == 1, suite.machine.Done())
			suite.False(suite.machine.Loading())
			suite.NoError(suite.machine.Err())

			suite.Require().Len(suite.submissions, 1)
			suite.Equal(stepPhone, suite.submissions[0].Step)
			suite.Equal(login.Payload{"phone": "+15551234567"}, suite.submissions[0].Payload)
		})
	}
}

func (suite *MachineSuite) TestFullFlow() {
	suite.replies = []login.Status{"code", "password", login.StatusLoggedIn}

	suite.Require().NoError(suite.machine.SetValue("phone", "+15551234567"))
	suite.Require().NoError(suite.machine.Submit(context.Background()))
	suite.Equal(stepCode, suite.machine.Step())

	suite.Require().NoError(suite.machine.SetValue("code", " 123456 "))
	suite.Require().NoError(suite.machine.Submit(context.Background()))
	suite.Equal(stepPassword, suite.machine.Step())

	suite.Require().NoError(suite.machine.SetValue("password", " hunter2 "))
	suite.Require().NoError(suite.machine.Submit(context.Background()))
	suite.True(suite.machine.Done())
	suite.Equal(1, suite.loggedIn)

	suite.Require().Len(suite.submissions, 3)
	suite.Equal(login.Payload{"code": "123456"}, suite.submissions[1].Payload)
	suite.Equal(login.Payload{"password": " hunter2 "}, suite.submissions[2].Payload, "passwords are sent verbatim")

	suite.ErrorIs(suite.machine.Submit(context.Background()), login.ErrDone)
	suite.Len(suite.submissions, 3)
	suite.Equal(1, suite.loggedIn, "completion callback must run exactly once")
}

func (suite *MachineSuite) TestValidation() {
	suite.False(suite.machine.CanSubmit())

	err := suite.machine.Submit(context.Background())
	var validationErr *login.ValidationError
	suite.Require().ErrorAs(err, &validationErr)
	suite.Equal("phone", validationErr.Field)
	suite.NoError(suite.machine.Err(), "validation errors are not shown inline")
	suite.Empty(suite.submissions)

	suite.Require().NoError(suite.machine.SetValue("phone", "   "))
	suite.False(suite.machine.CanSubmit())

	suite.Require().NoError(suite.machine.SetValue("phone", "+15551234567"))
	suite.True(suite.machine.CanSubmit())

	suite.replies = []login.Status{"code"}
	suite.Require().NoError(suite.machine.Submit(context.Background()))

	suite.Require().NoError(suite.machine.SetValue("code", "12a"))
	suite.False(suite.machine.CanSubmit())
	suite.ErrorAs(suite.machine.Submit(context.Background()), &validationErr)
	suite.Equal("code", validationErr.Field)
}

func (suite *MachineSuite) TestCodeKeepsLeadingZero() {
	suite.replies = []login.Status{"code", login.StatusLoggedIn}
	suite.Require().NoError(suite.machine.SetValue("phone", "+15551234567"))
	suite.Require().NoError(suite.machine.Submit(context.Background()))

	suite.Require().NoError(suite.machine.SetValue("code", "01234"))
	suite.Require().NoError(suite.machine.Submit(context.Background()))

	suite.Require().Len(suite.submissions, 2)
	suite.Equal(login.Payload{"code": "01234"}, suite.submissions[1].Payload)
}

func (suite *MachineSuite) TestSetValueUnknownField() {
	suite.Error(suite.machine.SetValue("code", "123456"))
}

func (suite *MachineSuite) TestSubmitError() {
	suite.replyErr = errors.New("boom")

	suite.Require().NoError(suite.machine.SetValue("phone", "+15551234567"))
	err := suite.machine.Submit(context.Background())
	suite.EqualError(err, "boom")

	suite.Equal(stepPhone, suite.machine.Step())
	suite.EqualError(suite.machine.Err(), "boom")
	suite.False(suite.machine.Loading())
	suite.True(suite.machine.CanSubmit(), "the step can be submitted again")
	suite.Equal("+15551234567", suite.machine.Value("phone"))

	suite.replyErr = nil
	suite.replies = []login.Status{"code"}
	suite.Require().NoError(suite.machine.Submit(context.Background()))
	suite.NoError(suite.machine.Err(), "a successful submit clears the error")
}

func (suite *MachineSuite) TestUnknownStatus() {
	suite.replies = []login.Status{"bogus"}

	suite.Require().NoError(suite.machine.SetValue("phone", "+15551234567"))
	err := suite.machine.Submit(context.Background())
	suite.ErrorIs(err, login.ErrUnknownStatus)

	var statusErr *login.UnknownStatusError
	suite.Require().ErrorAs(suite.machine.Err(), &statusErr)
	suite.Equal(login.Status("bogus"), statusErr.Status)
	suite.Equal(stepPhone, suite.machine.Step())
	suite.False(suite.machine.Done())
	suite.Zero(suite.loggedIn)
}

func (suite *MachineSuite) TestValuesPreserved() {
	suite.replies = []login.Status{"code", "phone"}

	suite.Require().NoError(suite.machine.SetValue("phone", "+15551234567"))
	suite.Require().NoError(suite.machine.Submit(context.Background()))
	suite.Require().NoError(suite.machine.SetValue("code", "111"))

	suite.Require().NoError(suite.machine.Submit(context.Background()))
	suite.Equal(stepPhone, suite.machine.Step())
	suite.Empty(suite.machine.Value("phone"), "re-entered step starts over")

	suite.replies = []login.Status{"token"}
	suite.Require().NoError(suite.machine.SetValue("phone", "+15551234567"))
	suite.Require().NoError(suite.machine.Submit(context.Background()))
	suite.Equal(stepToken, suite.machine.Step())
}

func (suite *MachineSuite) TestSwitch() {
	suite.Require().NoError(suite.machine.SetValue("phone", "+15551234567"))

	suite.Require().NoError(suite.machine.Switch(stepToken))
	suite.Equal(stepToken, suite.machine.Step())
	suite.Require().NoError(suite.machine.SetValue("token", "123:abc"))

	suite.Require().NoError(suite.machine.Switch(stepPhone))
	suite.Equal("+15551234567", suite.machine.Value("phone"), "switching keeps entered values")

	suite.Error(suite.machine.Switch(stepPassword), "only alternatives can be switched to")
}

func (suite *MachineSuite) TestCallbackError() {
	machine, err := login.NewMachine(&bridgemanager.NullLogger{}, testDefinition(), func(context.Context, login.Step, login.Payload) (login.Status, error) {
		return login.StatusLoggedIn, nil
	}, func(context.Context) error {
		return errors.New("refresh failed")
	})
	suite.Require().NoError(err)

	suite.Require().NoError(machine.SetValue("phone", "+15551234567"))
	suite.Error(machine.Submit(context.Background()))
	suite.True(machine.Done())
	suite.ErrorContains(machine.Err(), "refresh failed")
}

func TestMachineSuite(t *testing.T) {
	suite.Run(t, new(MachineSuite))
}

func TestSubmitWhileLoading(t *testing.T) {
	started := make(chan struct{})
	release := make(chan struct{})

	var calls int
	var callsLock sync.Mutex
	machine, err := login.NewMachine(&bridgemanager.NullLogger{}, testDefinition(), func(context.Context, login.Step, login.Payload) (login.Status, error) {
		callsLock.Lock()
		calls++
		callsLock.Unlock()

		close(started)
		<-release
		return "code", nil
	}, nil)
	require.NoError(t, err)
	require.NoError(t, machine.SetValue("phone", "+15551234567"))

	done := make(chan error, 1)
	go func() { done <- machine.Submit(context.Background()) }()

	<-started
	assert.True(t, machine.Loading())
	assert.False(t, machine.CanSubmit(), "submit must be disabled while loading")
	assert.ErrorIs(t, machine.Submit(context.Background()), login.ErrBusy)
	assert.ErrorIs(t, machine.Switch(stepToken), login.ErrBusy)

	close(release)
	require.NoError(t, <-done)

	assert.False(t, machine.Loading())
	assert.Equal(t, stepCode, machine.Step())

	callsLock.Lock()
	assert.Equal(t, 1, calls)
	callsLock.Unlock()
}

func TestInvalidDefinition(t *testing.T) {
	def := testDefinition()
	def.Initial = "missing"

	_, err := login.NewMachine(&bridgemanager.NullLogger{}, def, nil, nil)
	assert.Error(t, err)

	def = testDefinition()
	def.Resolve = nil
	_, err = login.NewMachine(&bridgemanager.NullLogger{}, def, nil, nil)
	assert.Error(t, err)
}
