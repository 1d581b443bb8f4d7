package service

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/beyondbeauty/press/database/model"
	"github.com/beyondbeauty/press/util/common"
	"github.com/beyondbeauty/press/util/crypto"
)

func registration(email, username, password string) RegisterRequest {
	return RegisterRequest{
		Profile: Profile{
			Email:     email,
			Username:  username,
			FirstName: "Ada",
			LastName:  "Lovelace",
			Age:       36,
		},
		Password: password,
	}
}

func TestRegisterAssignsEditorAndActive(t *testing.T) {
	env := setup(t)

	account, err := env.auth.Register(registration("A@X.com ", "alice", "pw-alice"))
	require.NoError(t, err)
	assert.Equal(t, "a@x.com", account.Email)
	assert.Equal(t, model.RoleEditor, account.Role)
	assert.True(t, account.IsActive)
	assert.NotEqual(t, "pw-alice", account.PasswordHash)

	stored, err := env.accounts.FindByEmail("a@x.com")
	require.NoError(t, err)
	assert.Equal(t, account.Id, stored.Id)
}

func TestRegisterDuplicateEmail(t *testing.T) {
	env := setup(t)

	_, err := env.auth.Register(registration("a@x.com", "alice", "pw"))
	require.NoError(t, err)

	_, err = env.auth.Register(registration("a@x.com", "bob", "pw2"))
	var dup *common.DuplicateAccountError
	require.True(t, errors.As(err, &dup))
	assert.Equal(t, "email", dup.Field)

	_, err = env.auth.Register(registration("b@x.com", "alice", "pw2"))
	require.True(t, errors.As(err, &dup))
	assert.Equal(t, "username", dup.Field)

	list, err := env.accounts.List()
	require.NoError(t, err)
	assert.Len(t, list, 1)
}

func TestRegisterUniqueIndexFallback(t *testing.T) {
	env := setup(t)

	_, err := env.accounts.Register(Profile{Email: "a@x.com", Username: "alice"}, "hash")
	require.NoError(t, err)

	// bypass the pre-check to hit the constraint directly
	err = env.accounts.DB.Create(&model.Account{Email: "a@x.com", Username: "other", PasswordHash: "h", Role: model.RoleEditor}).Error
	require.Error(t, err)
}

func TestRegisterValidation(t *testing.T) {
	env := setup(t)

	_, err := env.auth.Register(RegisterRequest{})
	var verr *common.ValidationError
	require.True(t, errors.As(err, &verr))
	assert.Equal(t, []string{"email", "username", "password"}, verr.Fields)

	long := make([]byte, 73)
	for i := range long {
		long[i] = 'x'
	}
	_, err = env.auth.Register(registration("a@x.com", "alice", string(long)))
	require.True(t, errors.As(err, &verr))
	assert.Equal(t, []string{"password"}, verr.Fields)
}

func TestLogin(t *testing.T) {
	env := setup(t)

	_, err := env.auth.Register(registration("a@x.com", "alice", "correct"))
	require.NoError(t, err)

	result, err := env.auth.Login("a@x.com", "correct")
	require.NoError(t, err)
	assert.Equal(t, model.RoleEditor, result.Role)
	assert.Equal(t, "Ada", result.FirstName)
	assert.Equal(t, "Lovelace", result.LastName)
	assert.Equal(t, int64(3600), result.ExpiresIn)

	claims, err := env.issuer.Validate(result.Token)
	require.NoError(t, err)
	assert.Equal(t, "a@x.com", claims.Email)
	assert.Equal(t, "editor", claims.Role)
}

func TestLoginFailuresAreGeneric(t *testing.T) {
	env := setup(t)

	_, err := env.auth.Register(registration("a@x.com", "alice", "correct"))
	require.NoError(t, err)
	_, err = env.auth.Register(registration("off@x.com", "off", "correct"))
	require.NoError(t, err)
	require.NoError(t, env.accounts.SetActive("off@x.com", false))

	_, err = env.auth.Login("a@x.com", "wrong")
	assert.ErrorIs(t, err, common.ErrInvalidCredentials)

	account, err := env.accounts.FindByEmail("a@x.com")
	require.NoError(t, err)
	assert.True(t, account.IsActive)

	_, err = env.auth.Login("nobody@x.com", "correct")
	assert.ErrorIs(t, err, common.ErrInvalidCredentials)

	_, err = env.auth.Login("off@x.com", "correct")
	assert.ErrorIs(t, err, common.ErrInvalidCredentials)
}

func TestLoginRejectsPasswordBeyondStoredPrefix(t *testing.T) {
	env := setup(t)

	password := strings.Repeat("p", crypto.MaxPasswordBytes)
	_, err := env.auth.Register(registration("a@x.com", "alice", password))
	require.NoError(t, err)

	_, err = env.auth.Login("a@x.com", password)
	require.NoError(t, err)

	_, err = env.auth.Login("a@x.com", password+"-and-more")
	assert.ErrorIs(t, err, common.ErrInvalidCredentials)
}

func TestAccountAdministration(t *testing.T) {
	env := setup(t)

	account, err := env.auth.Register(registration("a@x.com", "alice", "pw"))
	require.NoError(t, err)

	require.NoError(t, env.accounts.SetRole("a@x.com", model.RoleAdmin))
	stored, err := env.accounts.FindById(account.Id)
	require.NoError(t, err)
	assert.Equal(t, model.RoleAdmin, stored.Role)

	var verr *common.ValidationError
	assert.True(t, errors.As(env.accounts.SetRole("a@x.com", "owner"), &verr))

	var nf *common.NotFoundError
	assert.True(t, errors.As(env.accounts.SetActive("nobody@x.com", false), &nf))

	dto, err := env.accounts.SetActiveById(account.Id, false)
	require.NoError(t, err)
	assert.False(t, dto.IsActive)
	assert.False(t, env.accounts.IsAccountActive(account.Id))
	assert.False(t, env.accounts.IsAccountActive(12345))

	_, err = env.accounts.SetActiveById(12345, true)
	assert.True(t, errors.As(err, &nf))
}

func strPtr(s string) *string { return &s }

func TestUpdateAccount(t *testing.T) {
	env := setup(t)

	account, err := env.auth.Register(registration("a@x.com", "alice", "old-pw"))
	require.NoError(t, err)
	_, err = env.auth.Register(registration("b@x.com", "bob", "pw"))
	require.NoError(t, err)

	age := 40
	dto, err := env.auth.UpdateAccount(account.Id, ProfileUpdate{
		FirstName: strPtr(" Augusta "),
		Age:       &age,
		Email:     strPtr("Ada@X.com"),
	}, strPtr("new-pw"))
	require.NoError(t, err)
	assert.Equal(t, "Augusta", dto.FirstName)
	assert.Equal(t, "Lovelace", dto.LastName)
	assert.Equal(t, 40, dto.Age)
	assert.Equal(t, "ada@x.com", dto.Email)
	assert.Equal(t, model.RoleEditor, dto.Role)

	_, err = env.auth.Login("ada@x.com", "old-pw")
	assert.ErrorIs(t, err, common.ErrInvalidCredentials)
	_, err = env.auth.Login("ada@x.com", "new-pw")
	require.NoError(t, err)

	// without a password the hash stays
	_, err = env.auth.UpdateAccount(account.Id, ProfileUpdate{Address: strPtr("London")}, nil)
	require.NoError(t, err)
	_, err = env.auth.Login("ada@x.com", "new-pw")
	require.NoError(t, err)

	var dup *common.DuplicateAccountError
	_, err = env.auth.UpdateAccount(account.Id, ProfileUpdate{Username: strPtr("bob")}, nil)
	require.True(t, errors.As(err, &dup))
	assert.Equal(t, "username", dup.Field)
	_, err = env.auth.UpdateAccount(account.Id, ProfileUpdate{Email: strPtr("b@x.com")}, nil)
	require.True(t, errors.As(err, &dup))
	assert.Equal(t, "email", dup.Field)

	// keeping its own email is not a collision
	_, err = env.auth.UpdateAccount(account.Id, ProfileUpdate{Email: strPtr("ada@x.com")}, nil)
	require.NoError(t, err)

	var verr *common.ValidationError
	_, err = env.auth.UpdateAccount(account.Id, ProfileUpdate{}, strPtr(strings.Repeat("x", crypto.MaxPasswordBytes+1)))
	require.True(t, errors.As(err, &verr))
	assert.Equal(t, []string{"password"}, verr.Fields)
	_, err = env.auth.UpdateAccount(account.Id, ProfileUpdate{Username: strPtr("  ")}, nil)
	require.True(t, errors.As(err, &verr))

	var nf *common.NotFoundError
	_, err = env.auth.UpdateAccount(999, ProfileUpdate{FirstName: strPtr("x")}, nil)
	assert.True(t, errors.As(err, &nf))
}

func TestDeleteAccount(t *testing.T) {
	env := setup(t)

	account, err := env.auth.Register(registration("a@x.com", "alice", "pw"))
	require.NoError(t, err)

	require.NoError(t, env.accounts.Delete(account.Id))
	assert.False(t, env.accounts.IsAccountActive(account.Id))
	_, err = env.auth.Login("a@x.com", "pw")
	assert.ErrorIs(t, err, common.ErrInvalidCredentials)

	var nf *common.NotFoundError
	assert.True(t, errors.As(env.accounts.Delete(account.Id), &nf))

	// the email is free again
	_, err = env.auth.Register(registration("a@x.com", "alice", "pw"))
	require.NoError(t, err)
}
