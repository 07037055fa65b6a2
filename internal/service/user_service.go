package service

import (
	"context"
	"errors"
	"strings"

	"github.com/RoyceAzure/lab/storefront/internal/constants"
	"github.com/RoyceAzure/lab/storefront/internal/domain/model"
	"github.com/RoyceAzure/lab/storefront/internal/infra/kv"
	"golang.org/x/crypto/bcrypt"
)

type RegisterInput struct {
	Name            string `json:"name"`
	Email           string `json:"email"`
	Password        string `json:"password"`
	ConfirmPassword string `json:"confirm_password"`
	Phone           string `json:"phone"`
	Address         string `json:"address"`
}

type IUserService interface {
	Register(ctx context.Context, in RegisterInput) (model.User, error)
	Login(ctx context.Context, email, password string) (model.User, error)
	Logout(ctx context.Context) error
	Current(ctx context.Context) (model.User, error)
	List(ctx context.Context) ([]model.User, error)
	Get(ctx context.Context, id string) (model.User, error)
}

type UserService struct {
	base
}

func NewUserService(deps Deps) *UserService {
	return &UserService{base: newBase(deps)}
}

func validateRegister(in RegisterInput) error {
	for _, f := range []struct{ name, value string }{
		{"name", in.Name},
		{"email", in.Email},
		{"password", in.Password},
		{"confirm_password", in.ConfirmPassword},
	} {
		if strings.TrimSpace(f.value) == "" {
			return model.NewValidationError(f.name, "is required")
		}
	}
	if in.Password != in.ConfirmPassword {
		return model.NewValidationError("confirm_password", "does not match password")
	}
	if len(in.Password) < constants.MinPasswordLength {
		return model.NewValidationError("password", "must be at least 6 characters")
	}
	return nil
}

/*
Register 建立 customer, 使用者與帳密在同一個交易寫入, 成功後設為目前登入的使用者
錯誤:
  - *model.ValidationError: 缺少欄位, 密碼不一致或太短
  - ErrEmailTaken: email 已註冊 (不分大小寫)
*/
func (s *UserService) Register(ctx context.Context, in RegisterInput) (user model.User, err error) {
	if err := validateRegister(in); err != nil {
		return user, err
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), s.PasswordCost)
	if err != nil {
		return user, err
	}

	err = s.update(ctx, func(tx kv.Txn) error {
		user, err = s.createAccount(tx, model.User{
			Name:    strings.TrimSpace(in.Name),
			Email:   model.NormalizeEmail(in.Email),
			Phone:   in.Phone,
			Address: in.Address,
			Role:    model.RoleCustomer,
		}, string(hash))
		if err != nil {
			return err
		}
		return s.Repos.Session.Put(tx, user)
	})
	return user, err
}

func (b base) createAccount(tx kv.Txn, user model.User, passwordHash string) (model.User, error) {
	email := model.NormalizeEmail(user.Email)
	_, taken, err := b.Repos.Credentials.Find(tx, func(c model.Credential) bool { return c.Email == email })
	if err != nil {
		return model.User{}, err
	}
	if taken {
		return model.User{}, ErrEmailTaken
	}

	user.Email = email
	user, err = b.Repos.Users.Add(tx, user)
	if err != nil {
		return model.User{}, err
	}
	_, err = b.Repos.Credentials.Add(tx, model.Credential{
		Email:        email,
		PasswordHash: passwordHash,
		UserID:       user.ID,
	})
	if err != nil {
		return model.User{}, err
	}
	return user, nil
}

// Login 成功後寫入 session
// 錯誤:
//   - ErrInvalidCredentials: email 不存在或密碼錯誤
func (s *UserService) Login(ctx context.Context, email, password string) (user model.User, err error) {
	email = model.NormalizeEmail(email)
	err = s.update(ctx, func(tx kv.Txn) error {
		cred, ok, err := s.Repos.Credentials.Find(tx, func(c model.Credential) bool { return c.Email == email })
		if err != nil {
			return err
		}
		if !ok || cred.PasswordHash == "" {
			return ErrInvalidCredentials
		}
		if err := bcrypt.CompareHashAndPassword([]byte(cred.PasswordHash), []byte(password)); err != nil {
			if errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
				return ErrInvalidCredentials
			}
			return err
		}
		user, err = s.Repos.Users.Get(tx, cred.UserID)
		if isNotFound(err) {
			return ErrInvalidCredentials
		}
		if err != nil {
			return err
		}
		return s.Repos.Session.Put(tx, user)
	})
	return user, err
}

func (s *UserService) Logout(ctx context.Context) error {
	return s.update(ctx, func(tx kv.Txn) error {
		return s.Repos.Session.Delete(tx)
	})
}

// Current 目前登入的使用者
// 錯誤:
//   - ErrNoSession: 沒有登入
func (s *UserService) Current(ctx context.Context) (user model.User, err error) {
	err = s.view(ctx, func(r kv.Reader) error {
		var found bool
		user, found, err = s.Repos.Session.Get(r)
		if err != nil {
			return err
		}
		if !found {
			return ErrNoSession
		}
		return nil
	})
	return user, err
}

func (s *UserService) List(ctx context.Context) (users []model.User, err error) {
	err = s.view(ctx, func(r kv.Reader) error {
		users, err = s.Repos.Users.List(r)
		return err
	})
	return users, err
}

func (s *UserService) Get(ctx context.Context, id string) (user model.User, err error) {
	err = s.view(ctx, func(r kv.Reader) error {
		user, err = s.Repos.Users.Get(r, id)
		return err
	})
	return user, err
}

var _ IUserService = (*UserService)(nil)
