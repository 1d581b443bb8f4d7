package service

import (
	"errors"
	"strings"
	"sync"

	"github.com/beyondbeauty/press/database/model"
	"github.com/beyondbeauty/press/logger"
	"github.com/beyondbeauty/press/util/common"
	"github.com/beyondbeauty/press/util/crypto"
	"github.com/beyondbeauty/press/web/session"
)

// RegisterRequest is a self-registration: a profile plus the chosen password.
type RegisterRequest struct {
	Profile
	Password string
}

// LoginResult is returned to a client that signed in.
type LoginResult struct {
	Token     string     `json:"token"`
	Role      model.Role `json:"role"`
	FirstName string     `json:"firstName"`
	LastName  string     `json:"lastName"`
	ExpiresIn int64      `json:"expiresIn"` // seconds
}

// AuthService ties the account store, the password vault and the session
// issuer together for registration and login.
type AuthService struct {
	accounts *AccountService
	vault    *crypto.Vault
	issuer   *session.Issuer

	dummyOnce sync.Once
	dummyHash string
}

func NewAuthService(accounts *AccountService, vault *crypto.Vault, issuer *session.Issuer) *AuthService {
	return &AuthService{accounts: accounts, vault: vault, issuer: issuer}
}

func (s *AuthService) Register(req RegisterRequest) (*model.Account, error) {
	var missing []string
	if strings.TrimSpace(req.Email) == "" {
		missing = append(missing, "email")
	}
	if strings.TrimSpace(req.Username) == "" {
		missing = append(missing, "username")
	}
	if req.Password == "" {
		missing = append(missing, "password")
	}
	if len(missing) > 0 {
		return nil, common.NewValidationError("missing required fields", missing...)
	}
	if len(req.Password) > crypto.MaxPasswordBytes {
		return nil, common.NewValidationError("password is longer than 72 bytes", "password")
	}

	hash, err := s.vault.Hash(req.Password)
	if err != nil {
		return nil, err
	}
	account, err := s.accounts.Register(req.Profile, hash)
	if err != nil {
		return nil, err
	}
	logger.Infof("account %d registered (%s)", account.Id, account.Username)
	return account, nil
}

// UpdateAccount applies an administrator's profile change. A non-nil password
// is validated and rehashed.
func (s *AuthService) UpdateAccount(id int, u ProfileUpdate, password *string) (AccountDTO, error) {
	hash := ""
	if password != nil {
		if *password == "" {
			return AccountDTO{}, common.NewValidationError("empty value", "password")
		}
		if len(*password) > crypto.MaxPasswordBytes {
			return AccountDTO{}, common.NewValidationError("password is longer than 72 bytes", "password")
		}
		var err error
		if hash, err = s.vault.Hash(*password); err != nil {
			return AccountDTO{}, err
		}
	}
	account, err := s.accounts.UpdateProfile(id, u, hash)
	if err != nil {
		return AccountDTO{}, err
	}
	logger.Infof("account %d updated (password changed: %v)", id, password != nil)
	return account, nil
}

// Login checks the credentials and mints a session token. Every failure that
// is the caller's fault is reported as ErrInvalidCredentials.
func (s *AuthService) Login(email, password string) (*LoginResult, error) {
	account, err := s.accounts.FindByEmail(email)
	if err != nil {
		var nf *common.NotFoundError
		if !errors.As(err, &nf) {
			return nil, err
		}
		s.vault.Verify(password, s.dummy())
		logger.Warningf("login rejected: no account for %q", email)
		return nil, common.ErrInvalidCredentials
	}

	if !s.accounts.AuthenticateGate(account) {
		logger.Warningf("login rejected: account %d is inactive", account.Id)
		return nil, common.ErrInvalidCredentials
	}

	if !s.vault.Verify(password, account.PasswordHash) {
		logger.Warningf("login rejected: wrong password for account %d", account.Id)
		return nil, common.ErrInvalidCredentials
	}

	token, err := s.issuer.Issue(account.Id, account.Email, string(account.Role))
	if err != nil {
		return nil, err
	}
	return &LoginResult{
		Token:     token,
		Role:      account.Role,
		FirstName: account.FirstName,
		LastName:  account.LastName,
		ExpiresIn: int64(s.issuer.TTL().Seconds()),
	}, nil
}

// dummy is a hash compared against when the email is unknown, so that path
// costs the same as a wrong password.
func (s *AuthService) dummy() string {
	s.dummyOnce.Do(func() {
		hash, err := s.vault.Hash("press-dummy-password")
		if err != nil {
			logger.Warning("dummy hash:", err)
		}
		s.dummyHash = hash
	})
	return s.dummyHash
}
