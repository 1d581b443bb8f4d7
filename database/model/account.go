package model

type Role string

const (
	RoleAdmin  Role = "admin"
	RoleEditor Role = "editor"
)

func (r Role) Valid() bool {
	return r == RoleAdmin || r == RoleEditor
}

// Account is a person allowed to sign in. PasswordHash is never serialized.
type Account struct {
	Id            int    `json:"id" gorm:"primaryKey;autoIncrement"`
	Email         string `json:"email" gorm:"uniqueIndex;not null"`
	Username      string `json:"username" gorm:"uniqueIndex;not null"`
	FirstName     string `json:"firstName"`
	LastName      string `json:"lastName"`
	Age           int    `json:"age"`
	Gender        string `json:"gender"`
	ContactNumber string `json:"contactNumber"`
	Address       string `json:"address"`
	PasswordHash  string `json:"-" gorm:"column:password_hash;not null"`
	Role          Role   `json:"role" gorm:"not null"`
	IsActive      bool   `json:"isActive" gorm:"not null"`
	CreatedAt     int64  `json:"createdAt" gorm:"autoCreateTime"`
	UpdatedAt     int64  `json:"updatedAt" gorm:"autoUpdateTime"`
}
