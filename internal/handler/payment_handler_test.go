package handler

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strconv"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/require"
	"github.com/ucbazaar/shop-backend/internal/model"
	"github.com/ucbazaar/shop-backend/internal/payment"
	"github.com/ucbazaar/shop-backend/internal/repository"
	"github.com/ucbazaar/shop-backend/internal/service"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

const (
	testMerchantID = "12345"
	testSecret     = "merchant-secret"
)

type nullBot struct{}

func (nullBot) SendMessage(context.Context, int64, string) error { return nil }

type paymentEnv struct {
	db      *gorm.DB
	orders  repository.OrderRepository
	handler *PaymentHandler
}

func newPaymentEnv(t *testing.T) *paymentEnv {
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

	orderRepo := repository.NewOrderRepository(db)
	productRepo := repository.NewProductRepository(db)
	referralRepo := repository.NewReferralRepository(db)
	userRepo := repository.NewUserRepository(db)
	stock := service.NewStockLedger(productRepo)
	referrals := service.NewReferralLedger(referralRepo, userRepo)
	notifier := service.NewNotifier(nullBot{}, 1000, nil)
	orders := service.NewOrderService(orderRepo, userRepo, productRepo, stock, referrals, notifier)

	return &paymentEnv{
		db:      db,
		orders:  orderRepo,
		handler: NewPaymentHandler(orders, testMerchantID, testSecret),
	}
}

func (e *paymentEnv) createOrder(t *testing.T, status model.OrderStatus, checkoutID string) *model.Order {
	t.Helper()
	o := &model.Order{
		UserID: 5,
		PubgID: "512345678",
		Products: model.LineItems{
			{ProductID: 1, Name: "60 UC", Price: 100, Qty: 1, Category: "uc", Fulfillment: model.FulfillmentAuto},
		},
		Status:     status,
		CheckoutID: checkoutID,
	}
	require.NoError(t, e.orders.Create(context.Background(), o))
	return o
}

func (e *paymentEnv) post(t *testing.T, form url.Values) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/payments/freekassa/callback", strings.NewReader(form.Encode()))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationForm)
	rec := httptest.NewRecorder()
	c := echo.New().NewContext(req, rec)
	require.NoError(t, e.handler.Callback(c))
	return rec
}

func signedForm(orderID uint64, amount string) url.Values {
	id := strconv.FormatUint(orderID, 10)
	return url.Values{
		"MERCHANT_ID":       {testMerchantID},
		"AMOUNT":            {amount},
		"MERCHANT_ORDER_ID": {id},
		"SIGN":              {payment.Sign(testMerchantID, amount, testSecret, id)},
	}
}

func TestCallbackStatusCheck(t *testing.T) {
	e := newPaymentEnv(t)

	rec := e.post(t, url.Values{"status_check": {"1"}})
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, "YES", rec.Body.String())

	var count int64
	require.NoError(t, e.db.Model(&model.Order{}).Count(&count).Error)
	require.Zero(t, count, "liveness ping performs no writes")
}

func TestCallbackConfirmsPayment(t *testing.T) {
	e := newPaymentEnv(t)
	o := e.createOrder(t, model.OrderStatusUnpaid, "")

	rec := e.post(t, signedForm(o.ID, "100"))
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, "YES", rec.Body.String())

	got, err := e.orders.FindByID(context.Background(), o.ID)
	require.NoError(t, err)
	require.Equal(t, model.OrderStatusPending, got.Status)
}

func TestCallbackTamperedSignature(t *testing.T) {
	e := newPaymentEnv(t)
	o := e.createOrder(t, model.OrderStatusUnpaid, "")

	form := signedForm(o.ID, "100")
	form.Set("SIGN", "deadbeefdeadbeefdeadbeefdeadbeef")
	rec := e.post(t, form)
	require.Equal(t, http.StatusBadRequest, rec.Code)

	got, err := e.orders.FindByID(context.Background(), o.ID)
	require.NoError(t, err)
	require.Equal(t, model.OrderStatusUnpaid, got.Status, "no state change on signature mismatch")
}

func TestCallbackForeignMerchant(t *testing.T) {
	e := newPaymentEnv(t)
	o := e.createOrder(t, model.OrderStatusUnpaid, "")

	id := strconv.FormatUint(o.ID, 10)
	form := url.Values{
		"MERCHANT_ID":       {"99999"},
		"AMOUNT":            {"100"},
		"MERCHANT_ORDER_ID": {id},
		"SIGN":              {payment.Sign("99999", "100", testSecret, id)},
	}
	rec := e.post(t, form)
	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestCallbackUnknownOrder(t *testing.T) {
	e := newPaymentEnv(t)

	rec := e.post(t, signedForm(424242, "100"))
	require.Equal(t, http.StatusNotFound, rec.Code)
}

func TestCallbackIdempotentOnTerminalOrder(t *testing.T) {
	e := newPaymentEnv(t)
	o := e.createOrder(t, model.OrderStatusDelivered, "")

	rec := e.post(t, signedForm(o.ID, "100"))
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, "YES", rec.Body.String())

	got, err := e.orders.FindByID(context.Background(), o.ID)
	require.NoError(t, err)
	require.Equal(t, model.OrderStatusDelivered, got.Status)
}

func TestCallbackFansOutToCheckoutGroup(t *testing.T) {
	e := newPaymentEnv(t)
	a := e.createOrder(t, model.OrderStatusUnpaid, "group-1")
	b := e.createOrder(t, model.OrderStatusUnpaid, "group-1")
	settled := e.createOrder(t, model.OrderStatusError, "group-1")

	rec := e.post(t, signedForm(a.ID, "100"))
	require.Equal(t, http.StatusOK, rec.Code)

	for _, id := range []uint64{a.ID, b.ID} {
		got, err := e.orders.FindByID(context.Background(), id)
		require.NoError(t, err)
		require.Equal(t, model.OrderStatusPending, got.Status)
	}
	got, err := e.orders.FindByID(context.Background(), settled.ID)
	require.NoError(t, err)
	require.Equal(t, model.OrderStatusError, got.Status, "terminal sibling untouched")
}

func TestCallbackRepeatedDeliveryDoesNotDoubleProcess(t *testing.T) {
	e := newPaymentEnv(t)
	o := e.createOrder(t, model.OrderStatusUnpaid, "")

	rec := e.post(t, signedForm(o.ID, "100"))
	require.Equal(t, http.StatusOK, rec.Code)
	rec = e.post(t, signedForm(o.ID, "100"))
	require.Equal(t, http.StatusOK, rec.Code, "duplicate webhook is acknowledged")

	got, err := e.orders.FindByID(context.Background(), o.ID)
	require.NoError(t, err)
	require.Equal(t, model.OrderStatusPending, got.Status)
}
