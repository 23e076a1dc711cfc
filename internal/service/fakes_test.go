package service

import (
	"context"
	"errors"
	"io"
	"notes-marketplace/internal/client"
	"notes-marketplace/internal/model"
	"notes-marketplace/internal/repository"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

type fakeRazorpay struct {
	mu           sync.Mutex
	createCalls  []*model.RazorpayOrderRequest
	createOrder  func(req *model.RazorpayOrderRequest) (*model.OrderIntent, error)
	fetchOrder   func(orderID string) (*model.OrderIntent, error)
	verifyPay    func(orderID, paymentID, signature string) error
	verifyHook   func(body []byte, signature string) error
	fetchedOrder []string
}

var _ client.RazorpayClient = (*fakeRazorpay)(nil)

func (f *fakeRazorpay) KeyID() string { return "rzp_test_key" }

func (f *fakeRazorpay) CreateOrder(_ context.Context, req *model.RazorpayOrderRequest) (*model.OrderIntent, error) {
	f.mu.Lock()
	f.createCalls = append(f.createCalls, req)
	f.mu.Unlock()
	if f.createOrder != nil {
		return f.createOrder(req)
	}
	return &model.OrderIntent{
		ID:       "order_" + uuid.NewString()[:8],
		Entity:   "order",
		Amount:   req.Amount,
		Currency: req.Currency,
		Receipt:  req.Receipt,
		Status:   "created",
		Notes:    req.Notes,
	}, nil
}

func (f *fakeRazorpay) FetchOrder(_ context.Context, orderID string) (*model.OrderIntent, error) {
	f.mu.Lock()
	f.fetchedOrder = append(f.fetchedOrder, orderID)
	f.mu.Unlock()
	if f.fetchOrder != nil {
		return f.fetchOrder(orderID)
	}
	return nil, errors.New("order not found")
}

func (f *fakeRazorpay) VerifyPaymentSignature(orderID, paymentID, signature string) error {
	if f.verifyPay != nil {
		return f.verifyPay(orderID, paymentID, signature)
	}
	return nil
}

func (f *fakeRazorpay) VerifyWebhookSignature(body []byte, signature string) error {
	if f.verifyHook != nil {
		return f.verifyHook(body, signature)
	}
	return nil
}

type fakeStorage struct {
	mu        sync.Mutex
	objects   map[string][]byte
	putErr    error
	deleteErr error
	urlErr    error
}

var _ client.ObjectStorage = (*fakeStorage)(nil)

func newFakeStorage() *fakeStorage {
	return &fakeStorage{objects: map[string][]byte{}}
}

func (f *fakeStorage) Put(_ context.Context, key, _ string, body io.Reader, _ int64) error {
	if f.putErr != nil {
		return f.putErr
	}
	data, err := io.ReadAll(body)
	if err != nil {
		return err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.objects[key] = data
	return nil
}

func (f *fakeStorage) Delete(_ context.Context, key string) error {
	if f.deleteErr != nil {
		return f.deleteErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.objects, key)
	return nil
}

func (f *fakeStorage) PublicURL(key string) (string, error) {
	if f.urlErr != nil {
		return "", f.urlErr
	}
	return "https://cdn.example.test/" + key, nil
}

func (f *fakeStorage) has(key string) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	_, ok := f.objects[key]
	return ok
}

type failingEntitlementRepo struct {
	err error
}

func (r failingEntitlementRepo) Create(context.Context, *model.Entitlement) (bool, error) {
	return false, r.err
}

func (r failingEntitlementRepo) ListingIDs(context.Context, string) ([]string, error) {
	return nil, r.err
}

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := "file:" + uuid.NewString() + "?mode=memory&cache=shared"
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{Logger: logger.Discard})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(model.AllTables()...))

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	return db
}

type testRepos struct {
	listings     repository.ListingRepository
	entitlements repository.EntitlementRepository
	events       repository.WebhookEventRepository
}

func newTestRepos(t *testing.T) *testRepos {
	db := newTestDB(t)
	return &testRepos{
		listings:     repository.NewListingRepository(db),
		entitlements: repository.NewEntitlementRepository(db),
		events:       repository.NewWebhookEventRepository(db),
	}
}

var testLogger = zap.NewNop()
