package service

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/beyondbeauty/press/database"
	"github.com/beyondbeauty/press/util/crypto"
	"github.com/beyondbeauty/press/web/session"
)

type testEnv struct {
	assets   *AssetService
	articles *ArticleService
	accounts *AccountService
	auth     *AuthService
	issuer   *session.Issuer
}

func setup(t *testing.T) *testEnv {
	t.Helper()
	require.NoError(t, database.InitDB(filepath.Join(t.TempDir(), "test.db")))
	t.Cleanup(func() { _ = database.CloseDB() })

	assets, _ := newTestAssets(t)
	accounts := NewAccountService()
	issuer := session.NewIssuer([]byte("test-secret"), time.Hour)
	return &testEnv{
		assets:   assets,
		articles: NewArticleService(assets),
		accounts: accounts,
		auth:     NewAuthService(accounts, crypto.NewVault(bcrypt.MinCost), issuer),
		issuer:   issuer,
	}
}
