package cart

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	"github.com/fjod/go_cart/cart-store/internal/domain"
	"github.com/fjod/go_cart/cart-store/internal/notify"
	"github.com/fjod/go_cart/cart-store/internal/storage"
	"github.com/sirupsen/logrus"
)

const DefaultStorageKey = "@RocketShoes:cart"

// Inventory reports how many units of a product are available.
type Inventory interface {
	GetStock(ctx context.Context, productID int64) (domain.Stock, error)
}

// Catalog returns the product record copied into a new cart entry.
type Catalog interface {
	GetProduct(ctx context.Context, productID int64) (domain.Product, error)
}

type Deps struct {
	Inventory Inventory
	Catalog   Catalog
	Storage   storage.Storage
	Notifier  notify.Notifier
}

type UpdateProductAmount struct {
	ProductID int64
	Amount    int
}

// Store owns the cart and its persisted snapshot. Mutations run one at a
// time, each against the cart left by the previous one; reads never wait
// on a mutation's remote calls.
type Store struct {
	inventory Inventory
	catalog   Catalog
	storage   storage.Storage
	notifier  notify.Notifier
	log       logrus.FieldLogger
	key       string
	messages  Messages

	writeMu sync.Mutex
	mu      sync.RWMutex
	cart    domain.Cart
}

type Option func(*Store)

func WithStorageKey(key string) Option {
	return func(s *Store) { s.key = key }
}

func WithMessages(m Messages) Option {
	return func(s *Store) { s.messages = m }
}

func WithLogger(log logrus.FieldLogger) Option {
	return func(s *Store) { s.log = log }
}

// New builds the store and loads the persisted snapshot. A snapshot that
// cannot be decoded, or that holds a non-positive amount or a repeated id,
// is discarded and the cart starts empty.
func New(ctx context.Context, deps Deps, opts ...Option) (*Store, error) {
	s := &Store{
		inventory: deps.Inventory,
		catalog:   deps.Catalog,
		storage:   deps.Storage,
		notifier:  deps.Notifier,
		log:       logrus.StandardLogger(),
		key:       DefaultStorageKey,
		messages:  DefaultMessages,
	}
	for _, opt := range opts {
		opt(s)
	}

	initial, err := s.load(ctx)
	if err != nil {
		return nil, err
	}
	s.cart = initial
	return s, nil
}

func (s *Store) load(ctx context.Context) (domain.Cart, error) {
	raw, err := s.storage.Get(ctx, s.key)
	if errors.Is(err, storage.ErrNotFound) {
		return domain.Cart{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read cart snapshot: %w", err)
	}

	var snapshot domain.Cart
	if err := json.Unmarshal([]byte(raw), &snapshot); err != nil {
		s.log.WithError(err).WithField("key", s.key).Warn("discarding unreadable cart snapshot")
		return domain.Cart{}, nil
	}
	if err := snapshot.Validate(); err != nil {
		s.log.WithError(err).WithField("key", s.key).Warn("discarding invalid cart snapshot")
		return domain.Cart{}, nil
	}
	return snapshot.Clone(), nil
}

// Cart returns a copy of the current cart.
func (s *Store) Cart() domain.Cart {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.cart.Clone()
}

// AddProduct puts one more unit of productID in the cart, creating the
// entry from the catalog on first add.
func (s *Store) AddProduct(ctx context.Context, productID int64) error {
	err := s.serialized(func() error { return s.addProduct(ctx, productID) })
	return s.fail(ctx, err, ErrAddProduct, s.messages.AddFailed, productID)
}

func (s *Store) addProduct(ctx context.Context, productID int64) error {
	stock, err := s.inventory.GetStock(ctx, productID)
	if err != nil {
		return err
	}
	if stock.Amount <= 0 {
		return ErrOutOfStock
	}

	next := s.Cart()
	if i, ok := next.Find(productID); ok {
		if next[i].Amount+1 > stock.Amount {
			return ErrOutOfStock
		}
		next[i].Amount++
		return s.commit(ctx, next)
	}

	product, err := s.catalog.GetProduct(ctx, productID)
	if err != nil {
		return err
	}
	// the entry is keyed by the requested id whatever the catalog echoes
	product.ID = productID

	return s.commit(ctx, append(next, domain.CartEntry{Product: product, Amount: 1}))
}

// RemoveProduct drops the entry for productID. It makes no remote calls.
func (s *Store) RemoveProduct(ctx context.Context, productID int64) error {
	err := s.serialized(func() error { return s.removeProduct(ctx, productID) })
	return s.fail(ctx, err, ErrRemoveProduct, s.messages.RemoveFailed, productID)
}

func (s *Store) removeProduct(ctx context.Context, productID int64) error {
	current := s.Cart()
	if _, ok := current.Find(productID); !ok {
		return ErrNotInCart
	}

	next := make(domain.Cart, 0, len(current)-1)
	for _, entry := range current {
		if entry.ID != productID {
			next = append(next, entry)
		}
	}
	return s.commit(ctx, next)
}

// UpdateProductAmount sets the amount of an entry. Non-positive amounts
// are ignored; going to zero is done with RemoveProduct.
func (s *Store) UpdateProductAmount(ctx context.Context, req UpdateProductAmount) error {
	if req.Amount <= 0 {
		return nil
	}

	err := s.serialized(func() error { return s.updateProductAmount(ctx, req) })
	return s.fail(ctx, err, ErrUpdateAmount, s.messages.UpdateFailed, req.ProductID)
}

func (s *Store) updateProductAmount(ctx context.Context, req UpdateProductAmount) error {
	stock, err := s.inventory.GetStock(ctx, req.ProductID)
	if err != nil {
		return err
	}
	if stock.Amount < req.Amount {
		return ErrOutOfStock
	}

	next := s.Cart()
	if i, ok := next.Find(req.ProductID); ok {
		next[i].Amount = req.Amount
	}
	return s.commit(ctx, next)
}

// serialized runs fn under the writer lock. Notifications are sent by the
// caller after the lock is released.
func (s *Store) serialized(fn func() error) error {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()
	return fn()
}

// commit persists next and only then makes it the current cart, so a
// failed write leaves both unchanged.
func (s *Store) commit(ctx context.Context, next domain.Cart) error {
	data, err := json.Marshal(next)
	if err != nil {
		return fmt.Errorf("encode cart snapshot: %w", err)
	}
	if err := s.storage.Set(ctx, s.key, string(data)); err != nil {
		return fmt.Errorf("write cart snapshot: %w", err)
	}

	s.mu.Lock()
	s.cart = next
	s.mu.Unlock()
	return nil
}

// fail notifies the user about err and maps it to the operation's error.
func (s *Store) fail(ctx context.Context, err, generic error, message string, productID int64) error {
	if err == nil {
		return nil
	}

	log := s.log.WithField("product_id", productID)
	if errors.Is(err, ErrOutOfStock) {
		log.Info("requested quantity is out of stock")
		s.notifier.Error(ctx, s.messages.OutOfStock)
		return ErrOutOfStock
	}

	log.WithError(err).Warn(generic.Error())
	s.notifier.Error(ctx, message)
	return fmt.Errorf("%w: %w", generic, err)
}
