package cart

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/fjod/go_cart/cart-store/internal/domain"
	"github.com/fjod/go_cart/cart-store/internal/storage"
	"github.com/shopspring/decimal"
)

var errNetwork = errors.New("connection refused")

type mockInventory struct {
	m     sync.Mutex
	stock map[int64]int
	err   error
	calls int
}

func (m *mockInventory) GetStock(_ context.Context, productID int64) (domain.Stock, error) {
	m.m.Lock()
	defer m.m.Unlock()
	m.calls++
	if m.err != nil {
		return domain.Stock{}, m.err
	}
	return domain.Stock{ID: productID, Amount: m.stock[productID]}, nil
}

func (m *mockInventory) setStock(productID int64, amount int) {
	m.m.Lock()
	defer m.m.Unlock()
	m.stock[productID] = amount
}

func (m *mockInventory) callCount() int {
	m.m.Lock()
	defer m.m.Unlock()
	return m.calls
}

type mockCatalog struct {
	m      sync.Mutex
	err    error
	calls  int
	echoID int64
}

func (m *mockCatalog) GetProduct(_ context.Context, productID int64) (domain.Product, error) {
	m.m.Lock()
	defer m.m.Unlock()
	m.calls++
	if m.err != nil {
		return domain.Product{}, m.err
	}
	product := testProduct(productID)
	if m.echoID != 0 {
		product.ID = m.echoID
	}
	return product, nil
}

// blockingNotifier holds every notification until release is closed.
type blockingNotifier struct {
	entered chan string
	release chan struct{}
}

func newBlockingNotifier() *blockingNotifier {
	return &blockingNotifier{entered: make(chan string, 8), release: make(chan struct{})}
}

func (n *blockingNotifier) Error(_ context.Context, message string) {
	n.entered <- message
	<-n.release
}

func testProduct(productID int64) domain.Product {
	return domain.Product{
		ID:    productID,
		Title: fmt.Sprintf("Tênis %d", productID),
		Price: decimal.RequireFromString("139.9"),
		Image: fmt.Sprintf("https://cdn.example.com/%d.jpg", productID),
	}
}

// mockStorage wraps Memory and can be switched to fail writes.
type mockStorage struct {
	*storage.Memory
	m        sync.Mutex
	setErr   error
	getErr   error
	setCalls int
}

func newMockStorage() *mockStorage {
	return &mockStorage{Memory: storage.NewMemory()}
}

func (m *mockStorage) Get(ctx context.Context, key string) (string, error) {
	if m.getErr != nil {
		return "", m.getErr
	}
	return m.Memory.Get(ctx, key)
}

func (m *mockStorage) Set(ctx context.Context, key, value string) error {
	m.m.Lock()
	m.setCalls++
	err := m.setErr
	m.m.Unlock()
	if err != nil {
		return err
	}
	return m.Memory.Set(ctx, key, value)
}

func (m *mockStorage) writes() int {
	m.m.Lock()
	defer m.m.Unlock()
	return m.setCalls
}
