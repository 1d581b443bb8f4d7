package service

import (
	"fmt"
	"strings"

	"gorm.io/gorm"

	"github.com/beyondbeauty/press/database"
	"github.com/beyondbeauty/press/database/model"
	"github.com/beyondbeauty/press/logger"
	"github.com/beyondbeauty/press/util/common"
)

// Profile lists exactly the account fields a registrant may set. Role and
// active state are not among them.
type Profile struct {
	Email         string
	Username      string
	FirstName     string
	LastName      string
	Age           int
	Gender        string
	ContactNumber string
	Address       string
}

// ProfileUpdate changes the profile fields that are set. Like Profile it has
// no role or active field.
type ProfileUpdate struct {
	Email         *string
	Username      *string
	FirstName     *string
	LastName      *string
	Age           *int
	Gender        *string
	ContactNumber *string
	Address       *string
}

// AccountDTO is an account as exposed to administrators.
type AccountDTO struct {
	Id            int        `json:"id"`
	Email         string     `json:"email"`
	Username      string     `json:"username"`
	FirstName     string     `json:"firstName"`
	LastName      string     `json:"lastName"`
	Age           int        `json:"age"`
	Gender        string     `json:"gender"`
	ContactNumber string     `json:"contactNumber"`
	Address       string     `json:"address"`
	Role          model.Role `json:"role"`
	IsActive      bool       `json:"isActive"`
}

// AccountView strips an account down to what may leave the server.
func AccountView(a *model.Account) AccountDTO {
	return AccountDTO{
		Id:            a.Id,
		Email:         a.Email,
		Username:      a.Username,
		FirstName:     a.FirstName,
		LastName:      a.LastName,
		Age:           a.Age,
		Gender:        a.Gender,
		ContactNumber: a.ContactNumber,
		Address:       a.Address,
		Role:          a.Role,
		IsActive:      a.IsActive,
	}
}

// AccountService persists accounts, unique by email and by username.
type AccountService struct {
	DB *gorm.DB
}

func NewAccountService() *AccountService {
	return &AccountService{DB: database.GetDB()}
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// Register stores a new editor account. Existing email or username is a
// DuplicateAccountError naming the field.
func (s *AccountService) Register(p Profile, passwordHash string) (*model.Account, error) {
	email := normalizeEmail(p.Email)
	username := strings.TrimSpace(p.Username)

	existing := &model.Account{}
	err := s.DB.Where("email = ? OR username = ?", email, username).First(existing).Error
	if err == nil {
		if existing.Email == email {
			return nil, &common.DuplicateAccountError{Field: "email"}
		}
		return nil, &common.DuplicateAccountError{Field: "username"}
	} else if !database.IsNotFound(err) {
		return nil, fmt.Errorf("check existing account: %w", err)
	}

	account := &model.Account{
		Email:         email,
		Username:      username,
		FirstName:     strings.TrimSpace(p.FirstName),
		LastName:      strings.TrimSpace(p.LastName),
		Age:           p.Age,
		Gender:        strings.TrimSpace(p.Gender),
		ContactNumber: strings.TrimSpace(p.ContactNumber),
		Address:       strings.TrimSpace(p.Address),
		PasswordHash:  passwordHash,
		Role:          model.RoleEditor,
		IsActive:      true,
	}
	if err := s.DB.Create(account).Error; err != nil {
		if database.IsDuplicate(err) {
			return nil, &common.DuplicateAccountError{}
		}
		return nil, fmt.Errorf("create account: %w", err)
	}
	return account, nil
}

func (s *AccountService) FindByEmail(email string) (*model.Account, error) {
	account := &model.Account{}
	err := s.DB.Where("email = ?", normalizeEmail(email)).First(account).Error
	if database.IsNotFound(err) {
		return nil, &common.NotFoundError{Entity: "account", Key: email}
	} else if err != nil {
		return nil, err
	}
	return account, nil
}

func (s *AccountService) FindById(id int) (*model.Account, error) {
	account := &model.Account{}
	err := s.DB.First(account, id).Error
	if database.IsNotFound(err) {
		return nil, &common.NotFoundError{Entity: "account", Key: id}
	} else if err != nil {
		return nil, err
	}
	return account, nil
}

// AuthenticateGate reports whether account may sign in.
func (s *AccountService) AuthenticateGate(account *model.Account) bool {
	return account != nil && account.IsActive
}

// IsAccountActive re-reads the account so a deactivation takes effect before
// the holder's token expires.
func (s *AccountService) IsAccountActive(id int) bool {
	account, err := s.FindById(id)
	if err != nil {
		logger.Debugf("active check for account %d: %v", id, err)
		return false
	}
	return s.AuthenticateGate(account)
}

func (s *AccountService) List() ([]AccountDTO, error) {
	var accounts []model.Account
	if err := s.DB.Order("id ASC").Find(&accounts).Error; err != nil {
		return nil, err
	}
	out := make([]AccountDTO, 0, len(accounts))
	for i := range accounts {
		out = append(out, AccountView(&accounts[i]))
	}
	return out, nil
}

// SetRole changes an account's role. Only operator tooling calls this.
func (s *AccountService) SetRole(email string, role model.Role) error {
	if !role.Valid() {
		return common.NewValidationError("unknown role "+string(role), "role")
	}
	return s.updateByEmail(email, "role", role)
}

func (s *AccountService) SetActive(email string, active bool) error {
	return s.updateByEmail(email, "is_active", active)
}

func (s *AccountService) SetActiveById(id int, active bool) (AccountDTO, error) {
	result := s.DB.Model(&model.Account{}).Where("id = ?", id).Update("is_active", active)
	if result.Error != nil {
		return AccountDTO{}, result.Error
	}
	if result.RowsAffected == 0 {
		return AccountDTO{}, &common.NotFoundError{Entity: "account", Key: id}
	}
	account, err := s.FindById(id)
	if err != nil {
		return AccountDTO{}, err
	}
	return AccountView(account), nil
}

// UpdateProfile applies u to account id and, when passwordHash is non-empty,
// replaces the stored hash. A taken email or username is a
// DuplicateAccountError naming the field.
func (s *AccountService) UpdateProfile(id int, u ProfileUpdate, passwordHash string) (AccountDTO, error) {
	if _, err := s.FindById(id); err != nil {
		return AccountDTO{}, err
	}

	updates := make(map[string]any)
	if u.Email != nil {
		email := normalizeEmail(*u.Email)
		if email == "" {
			return AccountDTO{}, common.NewValidationError("empty value", "email")
		}
		if err := s.checkTaken(id, "email", email); err != nil {
			return AccountDTO{}, err
		}
		updates["email"] = email
	}
	if u.Username != nil {
		username := strings.TrimSpace(*u.Username)
		if username == "" {
			return AccountDTO{}, common.NewValidationError("empty value", "username")
		}
		if err := s.checkTaken(id, "username", username); err != nil {
			return AccountDTO{}, err
		}
		updates["username"] = username
	}
	for column, value := range map[string]*string{
		"first_name":     u.FirstName,
		"last_name":      u.LastName,
		"gender":         u.Gender,
		"contact_number": u.ContactNumber,
		"address":        u.Address,
	} {
		if value != nil {
			updates[column] = strings.TrimSpace(*value)
		}
	}
	if u.Age != nil {
		updates["age"] = *u.Age
	}
	if passwordHash != "" {
		updates["password_hash"] = passwordHash
	}

	if len(updates) > 0 {
		err := s.DB.Model(&model.Account{}).Where("id = ?", id).Updates(updates).Error
		if database.IsDuplicate(err) {
			return AccountDTO{}, &common.DuplicateAccountError{}
		} else if err != nil {
			return AccountDTO{}, fmt.Errorf("update account: %w", err)
		}
	}

	account, err := s.FindById(id)
	if err != nil {
		return AccountDTO{}, err
	}
	return AccountView(account), nil
}

func (s *AccountService) checkTaken(id int, column string, value string) error {
	var count int64
	err := s.DB.Model(&model.Account{}).
		Where(column+" = ? AND id <> ?", value, id).
		Count(&count).Error
	if err != nil {
		return err
	}
	if count > 0 {
		return &common.DuplicateAccountError{Field: column}
	}
	return nil
}

// Delete removes account id. Tokens already issued to it fail the active
// re-check from then on.
func (s *AccountService) Delete(id int) error {
	result := s.DB.Delete(&model.Account{}, id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return &common.NotFoundError{Entity: "account", Key: id}
	}
	return nil
}

func (s *AccountService) updateByEmail(email string, column string, value any) error {
	result := s.DB.Model(&model.Account{}).
		Where("email = ?", normalizeEmail(email)).
		Update(column, value)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return &common.NotFoundError{Entity: "account", Key: email}
	}
	return nil
}
