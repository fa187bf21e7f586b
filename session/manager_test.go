package session_test

import (
	"context"
	"net/http/httptest"
	"testing"

	bridgemanager "github.com/devgianlu/go-bridgemanager"
	"github.com/devgianlu/go-bridgemanager/apiclient"
	"github.com/devgianlu/go-bridgemanager/devserver"
	"github.com/devgianlu/go-bridgemanager/session"
	"github.com/stretchr/testify/suite"
)

type ManagerSuite struct {
	suite.Suite

	stateDir string
	server   *httptest.Server
	state    *bridgemanager.AppState
	manager  *session.Manager
}

func (suite *ManagerSuite) SetupTest() {
	suite.stateDir = suite.T().TempDir()
	suite.server = httptest.NewServer(devserver.New(&bridgemanager.NullLogger{}, devserver.DefaultOptions()).Handler())

	api, err := apiclient.NewClient(&bridgemanager.NullLogger{}, suite.server.Client(), suite.server.URL+"/api")
	suite.Require().NoError(err)

	suite.state = &bridgemanager.AppState{}
	suite.Require().NoError(suite.state.Read(suite.stateDir))

	suite.manager = session.NewManager(&bridgemanager.NullLogger{}, api, suite.state)
}

func (suite *ManagerSuite) TearDownTest() {
	suite.server.Close()
}

func (suite *ManagerSuite) TestLoginPersists() {
	suite.Nil(suite.manager.Restore())

	sess, err := suite.manager.Login(context.Background(), " @admin:example.com ", "admin")
	suite.Require().NoError(err)
	suite.Equal("@admin:example.com", sess.UserId())
	suite.True(sess.Valid())

	state := &bridgemanager.AppState{}
	suite.Require().NoError(state.Read(suite.stateDir))
	suite.True(state.HasCredentials())

	userId, token := state.GetCredentials()
	suite.Equal("@admin:example.com", userId)

	sessToken, err := sess.AccessToken()
	suite.Require().NoError(err)
	suite.Equal(sessToken, token)

	restored := suite.manager.Restore()
	suite.Require().NotNil(restored)
	suite.Equal(sess.UserId(), restored.UserId())
}

func (suite *ManagerSuite) TestLoginWrongPassword() {
	_, err := suite.manager.Login(context.Background(), "@admin:example.com", "nope")

	var apiErr *apiclient.ApiError
	suite.Require().ErrorAs(err, &apiErr)
	suite.Equal("M_FORBIDDEN", apiErr.ErrCode)
	suite.False(suite.state.HasCredentials())
}

func (suite *ManagerSuite) TestLoginMissingFields() {
	_, err := suite.manager.Login(context.Background(), "  ", "admin")
	suite.Error(err)
}

func (suite *ManagerSuite) TestLogout() {
	sess, err := suite.manager.Login(context.Background(), "@admin:example.com", "admin")
	suite.Require().NoError(err)

	suite.Require().NoError(suite.manager.Logout(context.Background(), sess))
	suite.False(sess.Valid())
	suite.False(suite.state.HasCredentials())

	_, err = sess.AccessToken()
	suite.ErrorIs(err, session.ErrNoSession)
	suite.Nil(suite.manager.Restore())
}

func (suite *ManagerSuite) TestLogoutServerFailure() {
	sess, err := suite.manager.Login(context.Background(), "@admin:example.com", "admin")
	suite.Require().NoError(err)

	suite.server.Close()

	err = suite.manager.Logout(context.Background(), sess)
	var netErr *apiclient.NetworkError
	suite.ErrorAs(err, &netErr)

	suite.False(sess.Valid(), "session is invalidated even if the server call fails")
	suite.False(suite.state.HasCredentials())
}

func TestManagerSuite(t *testing.T) {
	suite.Run(t, new(ManagerSuite))
}
