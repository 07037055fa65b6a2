package service

import (
	"github.com/RoyceAzure/lab/storefront/internal/domain/model"
	"github.com/RoyceAzure/lab/storefront/internal/infra/kv"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type UserTestSuite struct {
	serviceSuite
}

func registration() RegisterInput {
	return RegisterInput{
		Name:            "Aisha",
		Email:           "Aisha@Example.com ",
		Password:        "secret1",
		ConfirmPassword: "secret1",
	}
}

func (s *UserTestSuite) TestRegisterValidation() {
	cases := []struct {
		name  string
		edit  func(*RegisterInput)
		field string
	}{
		{"missing name", func(in *RegisterInput) { in.Name = "" }, "name"},
		{"missing email", func(in *RegisterInput) { in.Email = "" }, "email"},
		{"missing confirm", func(in *RegisterInput) { in.ConfirmPassword = "" }, "confirm_password"},
		{"mismatch", func(in *RegisterInput) { in.ConfirmPassword = "secret2" }, "confirm_password"},
		{"too short", func(in *RegisterInput) { in.Password, in.ConfirmPassword = "abc", "abc" }, "password"},
	}
	for _, tc := range cases {
		s.Run(tc.name, func() {
			in := registration()
			tc.edit(&in)
			_, err := s.users.Register(s.ctx, in)
			var verr *model.ValidationError
			require.ErrorAs(s.T(), err, &verr)
			assert.Equal(s.T(), tc.field, verr.Field)
		})
	}

	users, err := s.users.List(s.ctx)
	require.NoError(s.T(), err)
	assert.Empty(s.T(), users)
}

func (s *UserTestSuite) TestRegisterLoginLogout() {
	user, err := s.users.Register(s.ctx, registration())
	require.NoError(s.T(), err)
	assert.Equal(s.T(), "aisha@example.com", user.Email)
	assert.Equal(s.T(), model.RoleCustomer, user.Role)

	current, err := s.users.Current(s.ctx)
	require.NoError(s.T(), err)
	assert.Equal(s.T(), user.ID, current.ID)

	require.NoError(s.T(), s.users.Logout(s.ctx))
	_, err = s.users.Current(s.ctx)
	assert.ErrorIs(s.T(), err, ErrNoSession)

	_, err = s.users.Login(s.ctx, "AISHA@example.com", "wrong-pass")
	assert.ErrorIs(s.T(), err, ErrInvalidCredentials)
	_, err = s.users.Login(s.ctx, "nobody@example.com", "secret1")
	assert.ErrorIs(s.T(), err, ErrInvalidCredentials)

	logged, err := s.users.Login(s.ctx, "AISHA@example.com", "secret1")
	require.NoError(s.T(), err)
	assert.Equal(s.T(), user.ID, logged.ID)

	got, err := s.users.Get(s.ctx, user.ID)
	require.NoError(s.T(), err)
	assert.Equal(s.T(), "Aisha", got.Name)
}

func (s *UserTestSuite) TestEmailIsUnique() {
	_, err := s.users.Register(s.ctx, registration())
	require.NoError(s.T(), err)

	again := registration()
	again.Email = "aisha@EXAMPLE.com"
	_, err = s.users.Register(s.ctx, again)
	assert.ErrorIs(s.T(), err, ErrEmailTaken)

	users, err := s.users.List(s.ctx)
	require.NoError(s.T(), err)
	assert.Len(s.T(), users, 1)
}

func (s *UserTestSuite) TestPasswordIsHashed() {
	_, err := s.users.Register(s.ctx, registration())
	require.NoError(s.T(), err)

	var creds []model.Credential
	require.NoError(s.T(), s.store.View(s.ctx, func(r kv.Reader) error {
		var err error
		creds, err = s.users.Repos.Credentials.List(r)
		return err
	}))
	require.Len(s.T(), creds, 1)
	assert.NotEqual(s.T(), "secret1", creds[0].PasswordHash)
	assert.NotContains(s.T(), creds[0].PasswordHash, "secret1")
}
