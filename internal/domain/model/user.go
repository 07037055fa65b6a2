package model

import (
	"strings"
)

type Role string

const (
	RoleAdmin    Role = "admin"
	RoleCustomer Role = "customer"
)

type User struct {
	Base
	Name    string `json:"name"`
	Email   string `json:"email"`
	Phone   string `json:"phone"`
	Address string `json:"address"`
	Role    Role   `json:"role"`
}

func (u User) Validate() error {
	if err := required("name", u.Name); err != nil {
		return err
	}
	if err := required("email", u.Email); err != nil {
		return err
	}
	if u.Role != RoleAdmin && u.Role != RoleCustomer {
		return NewValidationError("role", "must be admin or customer")
	}
	return nil
}

func (u User) IsAdmin() bool {
	return u.Role == RoleAdmin
}

// Credential 以 email 為索引, 只保存 bcrypt hash
type Credential struct {
	Base
	Email        string `json:"email"`
	PasswordHash string `json:"password_hash"`
	UserID       string `json:"user_id"`

	// 舊資料的明碼密碼, 只在讀取時出現
	LegacyPassword string `json:"-"`
}

func (c Credential) Validate() error {
	if err := required("email", c.Email); err != nil {
		return err
	}
	if c.LegacyPassword == "" {
		if err := required("password_hash", c.PasswordHash); err != nil {
			return err
		}
	}
	return required("user_id", c.UserID)
}

// NormalizeEmail email 比對一律小寫去空白
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
