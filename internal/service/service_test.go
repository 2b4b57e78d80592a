package service

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/ucbazaar/shop-backend/internal/model"
	"github.com/ucbazaar/shop-backend/internal/repository"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	require.NoError(t, db.AutoMigrate(
		&model.User{},
		&model.Product{},
		&model.Order{},
		&model.StockHistory{},
		&model.ReferralEdge{},
	))
	return db
}

// fakeBot records sends and can be told to fail for specific chats.
type fakeBot struct {
	mu   sync.Mutex
	sent map[int64][]string
	fail map[int64]error
}

func newFakeBot() *fakeBot {
	return &fakeBot{sent: make(map[int64][]string), fail: make(map[int64]error)}
}

func (f *fakeBot) SendMessage(_ context.Context, chatID int64, text string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.fail[chatID]; err != nil {
		return err
	}
	f.sent[chatID] = append(f.sent[chatID], text)
	return nil
}

func (f *fakeBot) sentTo(chatID int64) []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.sent[chatID]...)
}

type env struct {
	db        *gorm.DB
	orders    repository.OrderRepository
	products  repository.ProductRepository
	referrals repository.ReferralRepository
	users     repository.UserRepository
	stock     StockLedger
	ledger    ReferralLedger
	bot       *fakeBot
	svc       OrderService
}

func newEnv(t *testing.T) *env {
	t.Helper()
	db := newTestDB(t)
	e := &env{
		db:        db,
		orders:    repository.NewOrderRepository(db),
		products:  repository.NewProductRepository(db),
		referrals: repository.NewReferralRepository(db),
		users:     repository.NewUserRepository(db),
		bot:       newFakeBot(),
	}
	e.stock = NewStockLedger(e.products)
	e.ledger = NewReferralLedger(e.referrals, e.users)
	notifier := NewNotifier(e.bot, managerChatID, []int64{extraManagerID, managerChatID})
	e.svc = NewOrderService(e.orders, e.users, e.products, e.stock, e.ledger, notifier)
	return e
}

const (
	managerChatID  int64 = 1000
	extraManagerID int64 = 1001
	customerID     int64 = 5
)

func (e *env) createProduct(t *testing.T, name string, price, stock int64, category string, ft model.FulfillmentType) *model.Product {
	t.Helper()
	p := &model.Product{Name: name, Price: price, Stock: stock, Category: category, Status: model.ProductStatusActive, Fulfillment: ft}
	require.NoError(t, e.products.Create(context.Background(), p))
	return p
}

func (e *env) createOrder(t *testing.T, userID int64, status model.OrderStatus, items model.LineItems) *model.Order {
	t.Helper()
	o := &model.Order{UserID: userID, PubgID: "512345678", Products: items, Status: status}
	require.NoError(t, e.orders.Create(context.Background(), o))
	return o
}

func (e *env) stockOf(t *testing.T, productID uint64) int64 {
	t.Helper()
	p, err := e.products.FindByID(context.Background(), productID)
	require.NoError(t, err)
	return p.Stock
}
