package model

import (
	"fmt"
	"strings"
)

// ParseRole 不分大小寫, 空字串視為 customer
// 未知的角色原樣保留, 交給 Validate 擋下
func ParseRole(raw string) Role {
	role := Role(strings.ToLower(strings.TrimSpace(raw)))
	if role == "" {
		return RoleCustomer
	}
	return role
}

// DecodeUser 註冊頁寫入的使用者沒有 role, 時間欄位是 createdAt
func DecodeUser(raw []byte) (User, error) {
	f, err := newFieldSet(raw)
	if err != nil {
		return User{}, fmt.Errorf("decode user: %w", err)
	}
	user := User{Base: f.base()}
	var role string
	f.read(&user.Name, "name")
	f.read(&user.Email, "email")
	f.read(&user.Phone, "phone")
	f.read(&user.Address, "address")
	f.read(&role, "role")
	if f.err != nil {
		return User{}, fmt.Errorf("decode user: %w", f.err)
	}
	user.Role = ParseRole(role)
	return user, nil
}

func DecodeUsers(data []byte) ([]User, error) {
	return decodeRecords(data, "users", DecodeUser)
}

/*
DecodeCredential 相容註冊頁的 {email, password, userId}
明碼 password 只放在 LegacyPassword, 不會再被寫回, 由 Migrate 換成 bcrypt hash
*/
func DecodeCredential(raw []byte) (Credential, error) {
	f, err := newFieldSet(raw)
	if err != nil {
		return Credential{}, fmt.Errorf("decode credential: %w", err)
	}
	cred := Credential{Base: f.base()}
	f.read(&cred.Email, "email")
	f.read(&cred.PasswordHash, "password_hash", "passwordHash")
	f.read(&cred.UserID, "user_id", "userId")
	if cred.PasswordHash == "" {
		f.read(&cred.LegacyPassword, "password")
	}
	if f.err != nil {
		return Credential{}, fmt.Errorf("decode credential: %w", f.err)
	}
	cred.Email = NormalizeEmail(cred.Email)
	if cred.ID == "" {
		cred.ID = cred.Email
	}
	return cred, nil
}

func DecodeCredentials(data []byte) ([]Credential, error) {
	return decodeRecords(data, "credentials", DecodeCredential)
}
