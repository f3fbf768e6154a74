package services_test

import (
	"context"
	"testing"
	"time"

	"github.com/democratia-universalis/duengine/internal/apperrors"
	"github.com/democratia-universalis/duengine/internal/core/domain"
	"github.com/democratia-universalis/duengine/internal/core/services"
	"github.com/democratia-universalis/duengine/internal/dto"
	"github.com/democratia-universalis/duengine/internal/relay"
	"github.com/stretchr/testify/suite"
)

type RoleServiceTestSuite struct {
	suite.Suite
	registry *services.RegistryService
	out      *relay.Queue
	service  *services.RoleService
	now      time.Time
}

func (suite *RoleServiceTestSuite) SetupTest() {
	suite.registry = services.NewRegistryService(nil, testLogger())
	suite.out = relay.NewQueue(64)
	suite.now = time.Date(2024, time.May, 4, 15, 45, 0, 0, time.UTC)
	suite.service = services.NewRoleService(suite.registry, suite.out, testLogger(),
		services.WithRoleClock(func() time.Time { return suite.now }))
	suite.registry.NewPlayer("1001", "alice")
}

func (suite *RoleServiceTestSuite) TestGrant_RejectsDuplicate() {
	err := suite.service.Grant("1001", "Chancellor", suite.now, domain.TermIndefinite)
	suite.Require().NoError(err)

	err = suite.service.Grant("1001", "Chancellor", suite.now, 10*24*time.Hour)
	suite.ErrorIs(err, apperrors.ErrAlreadyGranted)

	roles, err := suite.service.RolesOf("1001")
	suite.Require().NoError(err)
	suite.Require().Len(roles, 1)
	suite.True(roles[0].Indefinite())
}

func (suite *RoleServiceTestSuite) TestGrant_UnknownPlayer() {
	err := suite.service.Grant("9999", "Chancellor", suite.now, domain.TermIndefinite)
	suite.ErrorIs(err, apperrors.ErrNotFound)
}

func (suite *RoleServiceTestSuite) TestGrantUntil_TermStartsAtDayBoundary() {
	suite.Require().NoError(suite.service.GrantUntil("1001", "Senator", "14-05-2024"))

	roles, err := suite.service.RolesOf("1001")
	suite.Require().NoError(err)
	suite.Require().Len(roles, 1)
	suite.Equal(time.Date(2024, time.May, 4, 0, 0, 0, 0, time.UTC), roles[0].TermStart)
	suite.Equal(10*24*time.Hour, roles[0].TermLength)

	// Inclusive boundary: expired at the end date's midnight, not before.
	suite.False(roles[0].HasExpired(time.Date(2024, time.May, 13, 23, 59, 59, 0, time.UTC)))
	suite.True(roles[0].HasExpired(time.Date(2024, time.May, 14, 0, 0, 0, 0, time.UTC)))
}

func (suite *RoleServiceTestSuite) TestGrantUntil_EmptyEndIsIndefinite() {
	suite.Require().NoError(suite.service.GrantUntil("1001", "Citizen", ""))

	roles, err := suite.service.RolesOf("1001")
	suite.Require().NoError(err)
	suite.Require().Len(roles, 1)
	suite.True(roles[0].Indefinite())
	suite.False(roles[0].HasExpired(suite.now.AddDate(100, 0, 0)))
}

func (suite *RoleServiceTestSuite) TestGrantUntil_MalformedAndPastDates() {
	err := suite.service.GrantUntil("1001", "Senator", "2024-05-14")
	suite.ErrorIs(err, apperrors.ErrMalformedDate)

	err = suite.service.GrantUntil("1001", "Senator", "03-05-2024")
	suite.ErrorIs(err, apperrors.ErrValidation)

	roles, err := suite.service.RolesOf("1001")
	suite.Require().NoError(err)
	suite.Empty(roles)
}

func (suite *RoleServiceTestSuite) TestRevoke() {
	suite.Require().NoError(suite.service.Grant("1001", "Chancellor", suite.now, domain.TermIndefinite))
	suite.Require().NoError(suite.service.Revoke("1001", "Chancellor"))

	err := suite.service.Revoke("1001", "Chancellor")
	suite.ErrorIs(err, apperrors.ErrNotGranted)

	err = suite.service.Revoke("9999", "Chancellor")
	suite.ErrorIs(err, apperrors.ErrNotFound)
}

func (suite *RoleServiceTestSuite) TestRolesQueryCommand_ByUsername() {
	suite.Require().NoError(suite.service.GrantUntil("1001", "Senator", "14-05-2024"))
	suite.Require().NoError(suite.service.GrantUntil("1001", "Citizen", ""))

	cmd, err := dto.NewRolesQueryCommand("2002", "ALICE", "")
	suite.Require().NoError(err)
	suite.service.EnqueueRole(cmd)
	suite.service.Update(context.Background())

	replies := drain(suite.out)
	suite.Require().Len(replies, 1)
	suite.Equal(relay.PlayerRef("2002"), replies[0].To)
	suite.Equal([]string{
		"Roles of alice:",
		"Senator (until 14-05-2024)",
		"Citizen (indefinite)",
	}, replies[0].Message)
}

func (suite *RoleServiceTestSuite) TestGrantCommand_FailureReply() {
	cmd, err := dto.NewGrantRoleCommand("1001", "Senator", "not-a-date", "court")
	suite.Require().NoError(err)
	suite.service.EnqueueRole(cmd)
	suite.service.Update(context.Background())

	replies := drain(suite.out)
	suite.Require().Len(replies, 1)
	suite.Equal(relay.Recipient("court"), replies[0].To)
	suite.Equal([]string{"The end date must be of the format DD-MM-YYYY."}, replies[0].Message)
}

func TestRoleServiceTestSuite(t *testing.T) {
	suite.Run(t, new(RoleServiceTestSuite))
}
