package status_test

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	bridgemanager "github.com/devgianlu/go-bridgemanager"
	"github.com/devgianlu/go-bridgemanager/bridge"
	"github.com/devgianlu/go-bridgemanager/config"
	"github.com/devgianlu/go-bridgemanager/login"
	"github.com/devgianlu/go-bridgemanager/session"
	"github.com/devgianlu/go-bridgemanager/status"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"
	"go.uber.org/goleak"
)

var (
	signedOut = &bridge.Identity{Raw: json.RawMessage(`{"telegram":null}`)}
	signedIn  = &bridge.Identity{SignedIn: true, DisplayName: "Dev User", Handle: "devuser", Raw: json.RawMessage(`{"telegram":{"id":1}}`)}
)

func testFlow() *login.Definition {
	return &login.Definition{
		Service: "Test bridge",
		Initial: "cookies",
		Steps:   []login.StepSpec{{Step: "cookies", Fields: []login.Field{{Name: "token"}}}},
		Resolve: func(s login.Status) (login.Transition, error) {
			if s == login.StatusLoggedIn {
				return login.SignedIn(), nil
			}

			return login.Transition{}, login.UnknownStatus("Test bridge", s)
		},
	}
}

type ViewSuite struct {
	suite.Suite

	bridge *MockBridge
	sess   *session.Session
	view   *status.View
}

func (suite *ViewSuite) SetupTest() {
	suite.bridge = NewMockBridge(suite.T())
	suite.bridge.EXPECT().Id().Return(bridgemanager.BridgeTelegram).Maybe()

	suite.sess = session.New("@alice:example.com", "token")
	suite.view = status.NewView(&bridgemanager.NullLogger{}, suite.bridge, suite.sess, config.New(nil, false))
}

func (suite *ViewSuite) TestMountSignedIn() {
	suite.bridge.EXPECT().GetCurrentIdentity(mock.Anything, suite.sess).Return(signedIn, nil).Once()

	suite.Equal(status.StateAbsent, suite.view.Snapshot().State)
	suite.Require().NoError(suite.view.Mount(context.Background()))

	snap := suite.view.Snapshot()
	suite.Equal(status.StateSignedIn, snap.State)
	suite.Equal("Signed in as Dev User (@devuser)", snap.Summary)
	suite.False(snap.Loading)
	suite.NoError(snap.Err)
	suite.Nil(snap.Login)
	suite.Empty(snap.RawState, "internal state is hidden unless enabled")

	_, err := suite.view.LoginMachine(context.Background())
	suite.Error(err, "no login while signed in")
}

func (suite *ViewSuite) TestMountError() {
	fetchErr := errors.New("network down")
	suite.bridge.EXPECT().GetCurrentIdentity(mock.Anything, suite.sess).Return(nil, fetchErr).Once()

	suite.ErrorIs(suite.view.Mount(context.Background()), fetchErr)

	snap := suite.view.Snapshot()
	suite.Equal(status.StateAbsent, snap.State)
	suite.ErrorIs(snap.Err, fetchErr)
	suite.False(snap.Loading)
}

func (suite *ViewSuite) TestLoadingWhilePending() {
	started := make(chan struct{})
	release := make(chan struct{})
	suite.bridge.EXPECT().GetCurrentIdentity(mock.Anything, suite.sess).RunAndReturn(func(context.Context, *session.Session) (*bridge.Identity, error) {
		close(started)
		<-release
		return signedOut, nil
	}).Once()

	done := make(chan error, 1)
	go func() { done <- suite.view.Mount(context.Background()) }()

	<-started
	suite.True(suite.view.Snapshot().Loading)

	close(release)
	suite.Require().NoError(<-done)
	suite.False(suite.view.Snapshot().Loading)
	suite.Equal(status.StateSignedOut, suite.view.Snapshot().State)
}

func (suite *ViewSuite) TestLogoutRefreshes() {
	suite.bridge.EXPECT().GetCurrentIdentity(mock.Anything, suite.sess).Return(signedIn, nil).Once()
	suite.Require().NoError(suite.view.Mount(context.Background()))

	suite.bridge.EXPECT().Logout(mock.Anything, suite.sess).Return(nil).Once()
	suite.bridge.EXPECT().GetCurrentIdentity(mock.Anything, suite.sess).Return(signedOut, nil).Once()
	suite.Require().NoError(suite.view.Logout(context.Background()))

	snap := suite.view.Snapshot()
	suite.Equal(status.StateSignedOut, snap.State)
	suite.NoError(snap.Err)
}

func (suite *ViewSuite) TestLogoutFailureStillRefreshes() {
	suite.bridge.EXPECT().GetCurrentIdentity(mock.Anything, suite.sess).Return(signedIn, nil).Once()
	suite.Require().NoError(suite.view.Mount(context.Background()))

	logoutErr := errors.New("logout failed")
	suite.bridge.EXPECT().Logout(mock.Anything, suite.sess).Return(logoutErr).Once()
	suite.bridge.EXPECT().GetCurrentIdentity(mock.Anything, suite.sess).Return(signedIn, nil).Once()

	suite.ErrorIs(suite.view.Logout(context.Background()), logoutErr)

	snap := suite.view.Snapshot()
	suite.Equal(status.StateSignedIn, snap.State)
	suite.ErrorIs(snap.Err, logoutErr, "logout error must be surfaced")
	suite.False(snap.Loading)
	suite.bridge.AssertNumberOfCalls(suite.T(), "GetCurrentIdentity", 2)
}

func (suite *ViewSuite) TestStaleResultAfterUnmount() {
	started := make(chan struct{})
	release := make(chan struct{})
	suite.bridge.EXPECT().GetCurrentIdentity(mock.Anything, suite.sess).RunAndReturn(func(context.Context, *session.Session) (*bridge.Identity, error) {
		close(started)
		<-release
		return signedIn, nil
	}).Once()

	done := make(chan error, 1)
	go func() { done <- suite.view.Mount(context.Background()) }()

	<-started
	suite.view.Unmount()
	close(release)
	suite.Require().NoError(<-done)

	snap := suite.view.Snapshot()
	suite.Equal(status.StateAbsent, snap.State, "results after unmount must be ignored")
	suite.False(snap.Loading)

	suite.ErrorIs(suite.view.Refresh(context.Background()), status.ErrNotMounted)
}

func (suite *ViewSuite) TestStaleResultAfterRemount() {
	started := make(chan struct{})
	release := make(chan struct{})
	suite.bridge.EXPECT().GetCurrentIdentity(mock.Anything, suite.sess).RunAndReturn(func(context.Context, *session.Session) (*bridge.Identity, error) {
		close(started)
		<-release
		return signedIn, nil
	}).Once()

	done := make(chan error, 1)
	go func() { done <- suite.view.Mount(context.Background()) }()
	<-started

	suite.view.Unmount()
	suite.bridge.EXPECT().GetCurrentIdentity(mock.Anything, suite.sess).Return(signedOut, nil).Once()
	suite.Require().NoError(suite.view.Mount(context.Background()))

	close(release)
	suite.Require().NoError(<-done)

	suite.Equal(status.StateSignedOut, suite.view.Snapshot().State)
}

func (suite *ViewSuite) TestLoginCompletes() {
	suite.bridge.EXPECT().GetCurrentIdentity(mock.Anything, suite.sess).Return(signedOut, nil).Once()
	suite.Require().NoError(suite.view.Mount(context.Background()))

	suite.bridge.EXPECT().LoginFlow(mock.Anything, suite.sess).Return(testFlow(), nil).Once()
	machine, err := suite.view.LoginMachine(context.Background())
	suite.Require().NoError(err)

	again, err := suite.view.LoginMachine(context.Background())
	suite.Require().NoError(err)
	suite.Same(machine, again, "at most one login flow per view")

	suite.Require().NotNil(suite.view.Snapshot().Login)

	suite.bridge.EXPECT().Login(mock.Anything, suite.sess, login.Step("cookies"), login.Payload{"token": "abc"}).Return(login.StatusLoggedIn, nil).Once()
	suite.bridge.EXPECT().GetCurrentIdentity(mock.Anything, suite.sess).Return(signedIn, nil).Once()

	suite.Require().NoError(machine.SetValue("token", "abc"))
	suite.Require().NoError(machine.Submit(context.Background()))

	snap := suite.view.Snapshot()
	suite.Equal(status.StateSignedIn, snap.State)
	suite.Nil(snap.Login, "login flow is discarded once signed in")
}

func (suite *ViewSuite) TestLoginRefreshFailureDropsMachine() {
	suite.bridge.EXPECT().GetCurrentIdentity(mock.Anything, suite.sess).Return(signedOut, nil).Once()
	suite.Require().NoError(suite.view.Mount(context.Background()))

	suite.bridge.EXPECT().LoginFlow(mock.Anything, suite.sess).Return(testFlow(), nil).Once()
	machine, err := suite.view.LoginMachine(context.Background())
	suite.Require().NoError(err)

	fetchErr := errors.New("network down")
	suite.bridge.EXPECT().Login(mock.Anything, suite.sess, login.Step("cookies"), login.Payload{"token": "abc"}).Return(login.StatusLoggedIn, nil).Once()
	suite.bridge.EXPECT().GetCurrentIdentity(mock.Anything, suite.sess).Return(nil, fetchErr).Once()

	suite.Require().NoError(machine.SetValue("token", "abc"))
	suite.ErrorIs(machine.Submit(context.Background()), fetchErr)
	suite.True(machine.Done())

	snap := suite.view.Snapshot()
	suite.ErrorIs(snap.Err, fetchErr)
	suite.Nil(snap.Login, "a completed login flow must not stay on screen")
	suite.Nil(suite.view.Machine())

	// the next refresh sees the linked account
	suite.bridge.EXPECT().GetCurrentIdentity(mock.Anything, suite.sess).Return(signedIn, nil).Once()
	suite.Require().NoError(suite.view.Refresh(context.Background()))
	suite.Equal(status.StateSignedIn, suite.view.Snapshot().State)
}

func (suite *ViewSuite) TestUnmountCancelsWaitingLogin() {
	suite.bridge.EXPECT().GetCurrentIdentity(mock.Anything, suite.sess).Return(signedOut, nil).Once()
	suite.Require().NoError(suite.view.Mount(context.Background()))

	suite.bridge.EXPECT().LoginFlow(mock.Anything, suite.sess).Return(testFlow(), nil).Once()
	machine, err := suite.view.LoginMachine(context.Background())
	suite.Require().NoError(err)

	waiting := make(chan struct{})
	suite.bridge.EXPECT().Login(mock.Anything, suite.sess, login.Step("cookies"), mock.Anything).RunAndReturn(func(ctx context.Context, _ *session.Session, _ login.Step, _ login.Payload) (login.Status, error) {
		close(waiting)
		<-ctx.Done()
		return "", ctx.Err()
	}).Once()

	suite.Require().NoError(machine.SetValue("token", "abc"))

	done := make(chan error, 1)
	go func() { done <- machine.Submit(context.Background()) }()
	<-waiting

	suite.view.Unmount()
	suite.ErrorIs(<-done, context.Canceled)
	suite.False(machine.Loading())
}

func (suite *ViewSuite) TestUnmountDiscardsLogin() {
	suite.bridge.EXPECT().GetCurrentIdentity(mock.Anything, suite.sess).Return(signedOut, nil).Times(2)
	suite.Require().NoError(suite.view.Mount(context.Background()))

	suite.bridge.EXPECT().LoginFlow(mock.Anything, suite.sess).Return(testFlow(), nil).Times(2)
	first, err := suite.view.LoginMachine(context.Background())
	suite.Require().NoError(err)

	suite.view.Unmount()
	suite.Nil(suite.view.Snapshot().Login)

	suite.Require().NoError(suite.view.Mount(context.Background()))
	second, err := suite.view.LoginMachine(context.Background())
	suite.Require().NoError(err)
	suite.NotSame(first, second)
}

func TestViewSuite(t *testing.T) {
	defer goleak.VerifyNone(t)
	suite.Run(t, new(ViewSuite))
}

func TestRawState(t *testing.T) {
	b := NewMockBridge(t)
	b.EXPECT().Id().Return(bridgemanager.BridgeTelegram).Maybe()
	b.EXPECT().GetCurrentIdentity(mock.Anything, mock.Anything).Return(signedIn, nil).Once()

	view := status.NewView(&bridgemanager.NullLogger{}, b, session.New("@alice:example.com", "token"), config.New(nil, true))
	if err := view.Mount(context.Background()); err != nil {
		t.Fatal(err)
	}

	expected := "{\n  \"telegram\": {\n    \"id\": 1\n  }\n}"
	if raw := view.Snapshot().RawState; raw != expected {
		t.Fatalf("unexpected raw state: %q", raw)
	}
}
