package service

import (
	"os"
	"path/filepath"
	"time"

	"github.com/RoyceAzure/lab/storefront/internal/constants"
	"github.com/RoyceAzure/lab/storefront/internal/domain/model"
	"github.com/RoyceAzure/lab/storefront/internal/infra/kv"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type StorageTestSuite struct {
	serviceSuite
}

func (s *StorageTestSuite) admin() AdminAccount {
	return AdminAccount{Email: "admin@example.com", Password: "admin123"}
}

func (s *StorageTestSuite) snapshot() map[string]string {
	out := make(map[string]string)
	keys := append([]string{constants.KeySettings}, constants.CollectionKeys...)
	require.NoError(s.T(), s.store.View(s.ctx, func(r kv.Reader) error {
		for _, key := range keys {
			data, err := r.Get(key)
			if err != nil {
				return err
			}
			out[key] = string(data)
		}
		return nil
	}))
	return out
}

func (s *StorageTestSuite) TestInitializeIsIdempotent() {
	require.NoError(s.T(), s.storage.Initialize(s.ctx, s.admin()))
	first := s.snapshot()
	assert.Equal(s.T(), "[]", first[constants.KeyProducts])

	require.NoError(s.T(), s.storage.Initialize(s.ctx, s.admin()))
	assert.Equal(s.T(), first, s.snapshot())

	users, err := s.users.List(s.ctx)
	require.NoError(s.T(), err)
	require.Len(s.T(), users, 1)
	assert.True(s.T(), users[0].IsAdmin())

	admin, err := s.users.Login(s.ctx, "admin@example.com", "admin123")
	require.NoError(s.T(), err)
	assert.Equal(s.T(), model.RoleAdmin, admin.Role)
}

func (s *StorageTestSuite) TestInitializeKeepsExistingData() {
	cat := s.mustCategory("Gadgets")
	_, err := s.settings.Save(s.ctx, model.Settings{StoreName: "Mine"})
	require.NoError(s.T(), err)

	require.NoError(s.T(), s.storage.Initialize(s.ctx, AdminAccount{}))

	got, err := s.catalog.GetCategory(s.ctx, cat.ID)
	require.NoError(s.T(), err)
	assert.Equal(s.T(), "Gadgets", got.Name)
	settings, err := s.settings.Get(s.ctx)
	require.NoError(s.T(), err)
	assert.Equal(s.T(), "Mine", settings.StoreName)
}

// 舊版前端留下的資料: 訂單有 camelCase 與結帳頁的混合拼法, 使用者與帳密來自註冊頁
const (
	legacyOrdersFixture = `[
  {"id":"o1","userId":"u1","items":[{"productId":"p1","name":"Widget","price":10,"quantity":1,"total":10}],
   "shipping":{"fullName":"Ali","phoneNumber":"+968 1111","address":"Street 1","city":"Muscat"},
   "subtotal":10,"shippingFee":2.5,"tax":1,"total":13.5,
   "paymentMethod":"Cash on Delivery","status":"Processing","createdAt":"2024-05-01T10:00:00Z"},
  {"id":"ORD-1741000000000","user_id":"user-1741000000000",
   "items":[{"product_id":"p2","name":"Lamp","price":25.5,"quantity":2,"total":51}],
   "shipping":{"fullName":"Fatma Al Said","phoneNumber":"+968 9999 0000","address":"Way 123","city":"Seeb",
     "region":"Muscat","postalCode":"111","deliveryNotes":"Leave at the gate"},
   "subtotal":51,"shippingFee":2.5,"tax":5.1,"total":58.6,"paymentMethod":"Card","status":"pending",
   "created_at":"2025-03-03T08:30:00.000Z","updated_at":"2025-03-03T08:30:00.000Z"}
]`
	registerUsersFixture = `[{"id":"user-1741000000000","name":"Fatma","email":"fatma@example.com","phone":"+968 9999 0000",
  "address":"Seeb","createdAt":"2025-03-03T08:00:00.000Z"}]`
	registerCredentialsFixture = `[{"email":"fatma@example.com","password":"secret1","userId":"user-1741000000000"}]`
	registerSessionFixture     = `{"id":"user-1741000000000","name":"Fatma","email":"fatma@example.com","phone":"+968 9999 0000",
  "address":"Seeb","createdAt":"2025-03-03T08:00:00.000Z"}`
)

func (s *StorageTestSuite) TestMigrateMovesLegacyKeysAndNormalizesOrders() {
	legacyCategories := `[{"id":"c1","name":"Old","description":"","created_at":"2024-01-01T00:00:00Z","updated_at":"2024-01-01T00:00:00Z"}]`
	require.NoError(s.T(), s.storage.Initialize(s.ctx, AdminAccount{}))
	require.NoError(s.T(), s.store.Update(s.ctx, func(tx kv.Txn) error {
		puts := map[string]string{
			"e-commerce-orders":      legacyOrdersFixture,
			"e-commerce-categories":  legacyCategories,
			constants.KeyUsers:       registerUsersFixture,
			constants.KeyCredentials: registerCredentialsFixture,
			constants.KeySession:     registerSessionFixture,
		}
		for key, value := range puts {
			if err := tx.Put(key, []byte(value)); err != nil {
				return err
			}
		}
		return nil
	}))

	report, err := s.storage.Migrate(s.ctx)
	require.NoError(s.T(), err)
	assert.ElementsMatch(s.T(), []string{"e-commerce-orders", "e-commerce-categories"}, report.MovedKeys)
	assert.Equal(s.T(), 2, report.OrdersWritten)
	assert.Equal(s.T(), 1, report.UsersWritten)
	assert.Equal(s.T(), 1, report.CredentialsWritten)
	assert.Equal(s.T(), 1, report.PasswordsHashed)

	require.NoError(s.T(), s.store.View(s.ctx, func(r kv.Reader) error {
		_, err := r.Get("e-commerce-orders")
		assert.ErrorIs(s.T(), err, kv.ErrNotFound)

		for _, key := range []string{constants.KeyOrders, constants.KeyUsers, constants.KeyCredentials, constants.KeySession} {
			data, err := r.Get(key)
			require.NoError(s.T(), err)
			for _, camel := range []string{"userId", "shippingFee", "paymentMethod", "fullName", "phoneNumber", "postalCode", "deliveryNotes", "createdAt", "secret1"} {
				assert.NotContains(s.T(), string(data), camel, key)
			}
		}
		data, err := r.Get(constants.KeyOrders)
		require.NoError(s.T(), err)
		assert.Contains(s.T(), string(data), `"user_id":"u1"`)
		assert.Contains(s.T(), string(data), `"status":"processing"`)
		return nil
	}))

	legacy, err := s.orders.Get(s.ctx, "o1")
	require.NoError(s.T(), err)
	assert.Equal(s.T(), "Ali", legacy.Shipping.FullName)
	assert.Equal(s.T(), "+968 1111", legacy.Shipping.PhoneNumber)
	assert.True(s.T(), legacy.ShippingFee.Equal(decimal.RequireFromString("2.5")))
	assert.Equal(s.T(), "Cash on Delivery", legacy.PaymentMethod)

	checkout, err := s.orders.Get(s.ctx, "ORD-1741000000000")
	require.NoError(s.T(), err)
	assert.Equal(s.T(), "user-1741000000000", checkout.UserID)
	assert.Equal(s.T(), model.ShippingAddress{
		FullName:      "Fatma Al Said",
		PhoneNumber:   "+968 9999 0000",
		Address:       "Way 123",
		City:          "Seeb",
		Region:        "Muscat",
		PostalCode:    "111",
		DeliveryNotes: "Leave at the gate",
	}, checkout.Shipping)
	assert.True(s.T(), checkout.ShippingFee.Equal(decimal.RequireFromString("2.5")))
	assert.True(s.T(), checkout.Total.Equal(decimal.RequireFromString("58.6")))
	assert.Equal(s.T(), "Card", checkout.PaymentMethod)
	assert.Equal(s.T(), model.OrderStatusPending, checkout.Status)
	assert.True(s.T(), checkout.CreatedAt.Equal(time.Date(2025, 3, 3, 8, 30, 0, 0, time.UTC)))
	require.Len(s.T(), checkout.Items, 1)
	assert.Equal(s.T(), "p2", checkout.Items[0].ProductID)
	assert.Equal(s.T(), 2, checkout.Items[0].Quantity)

	user, err := s.users.Get(s.ctx, "user-1741000000000")
	require.NoError(s.T(), err)
	assert.Equal(s.T(), model.RoleCustomer, user.Role)
	assert.Equal(s.T(), "+968 9999 0000", user.Phone)
	assert.Equal(s.T(), "Seeb", user.Address)
	assert.True(s.T(), user.CreatedAt.Equal(time.Date(2025, 3, 3, 8, 0, 0, 0, time.UTC)))

	current, err := s.users.Current(s.ctx)
	require.NoError(s.T(), err)
	assert.Equal(s.T(), user.ID, current.ID)

	loggedIn, err := s.users.Login(s.ctx, "fatma@example.com", "secret1")
	require.NoError(s.T(), err)
	assert.Equal(s.T(), user.ID, loggedIn.ID)

	category, err := s.catalog.GetCategory(s.ctx, "c1")
	require.NoError(s.T(), err)
	assert.Equal(s.T(), "Old", category.Name)

	order, err := s.orders.UpdateStatus(s.ctx, "o1", model.OrderStatusShipped)
	require.NoError(s.T(), err)
	assert.Equal(s.T(), model.OrderStatusShipped, order.Status)

	// 第二次執行不再搬動或重算密碼
	report, err = s.storage.Migrate(s.ctx)
	require.NoError(s.T(), err)
	assert.Empty(s.T(), report.MovedKeys)
	assert.Equal(s.T(), 0, report.PasswordsHashed)
	_, err = s.users.Login(s.ctx, "fatma@example.com", "secret1")
	assert.NoError(s.T(), err)
}

func (s *StorageTestSuite) TestLegacyPlaintextCredentialCannotLoginBeforeMigrate() {
	require.NoError(s.T(), s.storage.Initialize(s.ctx, AdminAccount{}))
	require.NoError(s.T(), s.store.Update(s.ctx, func(tx kv.Txn) error {
		if err := tx.Put(constants.KeyUsers, []byte(registerUsersFixture)); err != nil {
			return err
		}
		return tx.Put(constants.KeyCredentials, []byte(registerCredentialsFixture))
	}))

	_, err := s.users.Login(s.ctx, "fatma@example.com", "secret1")
	assert.ErrorIs(s.T(), err, ErrInvalidCredentials)
}

func (s *StorageTestSuite) TestSeedFile() {
	path := filepath.Join(s.T().TempDir(), "seed.yaml")
	require.NoError(s.T(), os.WriteFile(path, []byte(`
categories:
  - name: Electronics
    description: Gadgets and more
    products:
      - name: Headphones
        price: "19.500"
        stock: 12
      - name: Cable
        price: "1.250"
  - name: Books
`), 0o600))

	report, err := s.storage.SeedFile(s.ctx, path)
	require.NoError(s.T(), err)
	assert.Equal(s.T(), 2, report.Categories)
	assert.Equal(s.T(), 2, report.Products)

	products, err := s.catalog.ListProducts(s.ctx)
	require.NoError(s.T(), err)
	require.Len(s.T(), products, 2)
	assert.Equal(s.T(), 12, s.quantityOf(products[0].ID))
	assert.Equal(s.T(), 0, s.quantityOf(products[1].ID))

	// 同名分類沿用
	report, err = s.storage.SeedFile(s.ctx, path)
	require.NoError(s.T(), err)
	assert.Equal(s.T(), 0, report.Categories)
}

func (s *StorageTestSuite) TestSeedFileRollsBackOnBadPrice() {
	path := filepath.Join(s.T().TempDir(), "seed.yaml")
	require.NoError(s.T(), os.WriteFile(path, []byte(`
categories:
  - name: Electronics
    products:
      - name: Good
        price: "1.000"
      - name: Bad
        price: "abc"
`), 0o600))

	_, err := s.storage.SeedFile(s.ctx, path)
	assert.ErrorIs(s.T(), err, model.ErrValidation)

	categories, err := s.catalog.ListCategories(s.ctx)
	require.NoError(s.T(), err)
	assert.Empty(s.T(), categories)
}
