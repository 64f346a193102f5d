package service

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/d60-Lab/quickcart/internal/auth"
	"github.com/d60-Lab/quickcart/internal/model"
)

func newUsers(f *fixture) (UserService, *auth.Manager) {
	tokens := auth.NewManager("test-secret", time.Hour)
	return NewUserService(f.db, tokens), tokens
}

func TestRegisterAndLogin(t *testing.T) {
	f := newFixture(t)
	svc, tokens := newUsers(f)

	res, err := svc.Register(f.ctx, RegisterInput{Name: "Bob", Email: " Bob@Example.com ", Phone: "99999", Password: "s3cret"})
	require.NoError(t, err)
	assert.Equal(t, "bob@example.com", res.User.Email)
	assert.Equal(t, model.RoleCustomer, res.User.Role)
	assert.NotEqual(t, "s3cret", res.User.Password)
	assert.True(t, res.User.WalletBalance.IsZero())

	claims, err := tokens.Parse(res.Token)
	require.NoError(t, err)
	assert.Equal(t, res.User.ID, claims.UserID)
	assert.Equal(t, model.RoleCustomer, claims.Role)

	_, err = svc.Register(f.ctx, RegisterInput{Name: "Bob2", Email: "bob@example.com", Password: "x"})
	require.ErrorIs(t, err, ErrEmailTaken)
	_, err = svc.Register(f.ctx, RegisterInput{Email: "c@example.com", Password: "x"})
	require.ErrorIs(t, err, ErrMissingFields)

	logged, err := svc.Login(f.ctx, "BOB@example.com", "s3cret")
	require.NoError(t, err)
	assert.Equal(t, res.User.ID, logged.User.ID)

	_, err = svc.Login(f.ctx, "bob@example.com", "wrong")
	require.ErrorIs(t, err, ErrInvalidCredentials)
	_, err = svc.Login(f.ctx, "nobody@example.com", "s3cret")
	require.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestUpdateProfile_KeepsWalletBalance(t *testing.T) {
	f := newFixture(t)
	svc, _ := newUsers(f)
	f.fund(t, f.user.ID, "250")
	f.addUser(t, "taken@example.com", model.RoleCustomer)

	res, err := svc.UpdateProfile(f.ctx, f.user.ID, ProfilePatch{Name: "Alice B", Password: "newpass"})
	require.NoError(t, err)
	assert.Equal(t, "Alice B", res.User.Name)
	assert.NotEmpty(t, res.Token)
	assert.True(t, f.balanceOf(t, f.user.ID).Equal(dec("250")))

	_, err = svc.Login(f.ctx, f.user.Email, "newpass")
	require.NoError(t, err)

	_, err = svc.UpdateProfile(f.ctx, f.user.ID, ProfilePatch{Email: "taken@example.com"})
	require.ErrorIs(t, err, ErrEmailTaken)
	_, err = svc.UpdateProfile(f.ctx, "nobody", ProfilePatch{Name: "x"})
	require.ErrorIs(t, err, ErrUserNotFound)
}

func TestAddresses(t *testing.T) {
	f := newFixture(t)
	svc, _ := newUsers(f)

	a, err := svc.AddAddress(f.ctx, f.user.ID, AddressInput{Street: "22 Hill Rd", City: "Mumbai", Zip: "400050"})
	require.NoError(t, err)
	assert.Equal(t, f.user.ID, a.UserID)

	_, err = svc.AddAddress(f.ctx, f.user.ID, AddressInput{Street: "x", City: " "})
	require.ErrorIs(t, err, ErrMissingFields)

	list, err := svc.Addresses(f.ctx, f.user.ID)
	require.NoError(t, err)
	assert.Len(t, list, 2)
}
