package service

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/RoyceAzure/lab/storefront/internal/constants"
	"github.com/RoyceAzure/lab/storefront/internal/domain/model"
	"github.com/RoyceAzure/lab/storefront/internal/infra/kv"
	"github.com/shopspring/decimal"
	"golang.org/x/crypto/bcrypt"
	"gopkg.in/yaml.v3"
)

type AdminAccount struct {
	Name     string
	Email    string
	Password string
}

type MigrateReport struct {
	MovedKeys          []string `json:"moved_keys"`
	DroppedKeys        []string `json:"dropped_keys"`
	OrdersWritten      int      `json:"orders_written"`
	UsersWritten       int      `json:"users_written"`
	CredentialsWritten int      `json:"credentials_written"`
	PasswordsHashed    int      `json:"passwords_hashed"`
}

type SeedReport struct {
	Categories int `json:"categories"`
	Products   int `json:"products"`
}

type IStorageService interface {
	Initialize(ctx context.Context, admin AdminAccount) error
	Migrate(ctx context.Context) (MigrateReport, error)
	SeedFile(ctx context.Context, path string) (SeedReport, error)
}

type StorageService struct {
	base
}

func NewStorageService(deps Deps) *StorageService {
	return &StorageService{base: newBase(deps)}
}

/*
Initialize 只補上不存在的資料, 重複呼叫不會修改任何東西:
  - 每個集合的空陣列
  - 預設 settings
  - admin 帳號 (email 尚未註冊時)
*/
func (s *StorageService) Initialize(ctx context.Context, admin AdminAccount) error {
	var hash []byte
	if admin.Email != "" {
		if len(admin.Password) < constants.MinPasswordLength {
			return model.NewValidationError("admin.password", "must be at least 6 characters")
		}
		var err error
		hash, err = bcrypt.GenerateFromPassword([]byte(admin.Password), s.PasswordCost)
		if err != nil {
			return err
		}
	}

	return s.update(ctx, func(tx kv.Txn) error {
		for _, key := range constants.CollectionKeys {
			_, err := tx.Get(key)
			if err == nil {
				continue
			}
			if !errors.Is(err, kv.ErrNotFound) {
				return err
			}
			if err := tx.Put(key, []byte("[]")); err != nil {
				return err
			}
		}

		if _, found, err := s.Repos.Settings.Get(tx); err != nil {
			return err
		} else if !found {
			if err := s.Repos.Settings.Put(tx, model.DefaultSettings()); err != nil {
				return err
			}
		}

		if admin.Email == "" {
			return nil
		}
		name := admin.Name
		if strings.TrimSpace(name) == "" {
			name = "Admin"
		}
		_, err := s.createAccount(tx, model.User{Name: name, Email: admin.Email, Role: model.RoleAdmin}, string(hash))
		if errors.Is(err, ErrEmailTaken) {
			return nil
		}
		return err
	})
}

/*
Migrate 整理舊格式資料:
  - e-commerce-* 的 key 在新 key 不存在時搬過去, 然後刪除舊 key
  - orders, users, credentials 與 session 統一寫成 snake_case
  - 明碼密碼換成 bcrypt hash
*/
func (s *StorageService) Migrate(ctx context.Context) (report MigrateReport, err error) {
	err = s.update(ctx, func(tx kv.Txn) error {
		report = MigrateReport{}
		for legacy, key := range constants.LegacyKeys {
			data, err := tx.Get(legacy)
			if errors.Is(err, kv.ErrNotFound) {
				continue
			}
			if err != nil {
				return err
			}

			_, err = tx.Get(key)
			switch {
			case errors.Is(err, kv.ErrNotFound) || isEmptyArray(tx, key):
				if err := tx.Put(key, data); err != nil {
					return err
				}
				report.MovedKeys = append(report.MovedKeys, legacy)
			case err != nil:
				return err
			default:
				report.DroppedKeys = append(report.DroppedKeys, legacy)
			}
			if err := tx.Delete(legacy); err != nil {
				return err
			}
		}

		orders, err := s.Repos.Orders.List(tx)
		if err != nil {
			return err
		}
		if err := s.Repos.Orders.Replace(tx, orders); err != nil {
			return err
		}
		report.OrdersWritten = len(orders)

		users, err := s.Repos.Users.List(tx)
		if err != nil {
			return err
		}
		if err := s.Repos.Users.Replace(tx, users); err != nil {
			return err
		}
		report.UsersWritten = len(users)

		creds, err := s.Repos.Credentials.List(tx)
		if err != nil {
			return err
		}
		for i := range creds {
			if creds[i].LegacyPassword == "" {
				continue
			}
			hash, err := bcrypt.GenerateFromPassword([]byte(creds[i].LegacyPassword), s.PasswordCost)
			if err != nil {
				return fmt.Errorf("hash password for %s: %w", creds[i].Email, err)
			}
			creds[i].PasswordHash = string(hash)
			creds[i].LegacyPassword = ""
			report.PasswordsHashed++
		}
		if err := s.Repos.Credentials.Replace(tx, creds); err != nil {
			return err
		}
		report.CredentialsWritten = len(creds)

		session, found, err := s.Repos.Session.Get(tx)
		if err != nil || !found {
			return err
		}
		return s.Repos.Session.Put(tx, session)
	})
	if err == nil {
		s.Logger.Info().
			Strs("moved", report.MovedKeys).
			Strs("dropped", report.DroppedKeys).
			Int("orders", report.OrdersWritten).
			Int("users", report.UsersWritten).
			Int("credentials", report.CredentialsWritten).
			Int("hashed", report.PasswordsHashed).
			Msg("storage migrated")
	}
	return report, err
}

// Initialize 寫入的空陣列不算既有資料
func isEmptyArray(r kv.Reader, key string) bool {
	data, err := r.Get(key)
	return err == nil && strings.TrimSpace(string(data)) == "[]"
}

type seedFile struct {
	Categories []seedCategory `yaml:"categories"`
}

type seedCategory struct {
	Name        string        `yaml:"name"`
	Description string        `yaml:"description"`
	Products    []seedProduct `yaml:"products"`
}

type seedProduct struct {
	Name        string `yaml:"name"`
	Description string `yaml:"description"`
	Price       string `yaml:"price"`
	ImageURL    string `yaml:"image_url"`
	Stock       int    `yaml:"stock"`
}

/*
SeedFile 從 yaml 匯入分類與商品, 商品一樣會建立庫存
同名分類已存在時沿用, 整個檔案在同一個交易
*/
func (s *StorageService) SeedFile(ctx context.Context, path string) (report SeedReport, err error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return report, fmt.Errorf("read seed file: %w", err)
	}
	var seed seedFile
	if err := yaml.Unmarshal(raw, &seed); err != nil {
		return report, fmt.Errorf("parse seed file: %w", err)
	}

	err = s.update(ctx, func(tx kv.Txn) error {
		report = SeedReport{}
		for _, sc := range seed.Categories {
			category, ok, err := s.Repos.Categories.Find(tx, func(c model.Category) bool {
				return strings.EqualFold(c.Name, sc.Name)
			})
			if err != nil {
				return err
			}
			if !ok {
				category, err = s.Repos.Categories.Add(tx, model.Category{Name: sc.Name, Description: sc.Description})
				if err != nil {
					return err
				}
				report.Categories++
			}

			for _, sp := range sc.Products {
				price, err := decimal.NewFromString(sp.Price)
				if err != nil {
					return model.NewValidationError("price", fmt.Sprintf("%q is not a number", sp.Price))
				}
				if sp.Stock < 0 {
					return model.NewValidationError("stock", "must not be negative")
				}
				_, _, err = s.addProduct(tx, ProductInput{
					Name:        sp.Name,
					Description: sp.Description,
					Price:       price,
					ImageURL:    sp.ImageURL,
					CategoryID:  category.ID,
				}, sp.Stock)
				if err != nil {
					return fmt.Errorf("seed product %q: %w", sp.Name, err)
				}
				report.Products++
			}
		}
		return nil
	})
	return report, err
}

var _ IStorageService = (*StorageService)(nil)
