package account

import (
	"fmt"
	"sort"
	"sync"

	"go.uber.org/zap"

	"github.com/uhyunpark/ioaccount/pkg/address"
	"github.com/uhyunpark/ioaccount/pkg/storage"
	"github.com/uhyunpark/ioaccount/pkg/util"
)

// Directory receives the public half of every registered account.
// *storage.Directory satisfies it.
type Directory interface {
	Put(rec storage.Record) error
	Delete(addr string) error
}

// Accounts is an in-memory registry of accounts keyed by address string.
// Duplicate inserts fail with ErrAccountExist instead of overwriting.
type Accounts struct {
	mu       sync.RWMutex
	accounts map[string]*Account // bech32 address -> account

	dir    Directory // optional mirror of public records
	clock  util.Clock
	logger *zap.Logger
}

type Option func(*Accounts)

// WithLogger sets the registry logger (default: no-op)
func WithLogger(l *zap.Logger) Option {
	return func(as *Accounts) { as.logger = l }
}

// WithDirectory mirrors every add/remove into dir
func WithDirectory(dir Directory) Option {
	return func(as *Accounts) { as.dir = dir }
}

// WithClock overrides the clock used to stamp directory records
func WithClock(c util.Clock) Option {
	return func(as *Accounts) { as.clock = c }
}

// NewAccounts creates an empty registry
func NewAccounts(opts ...Option) *Accounts {
	as := &Accounts{
		accounts: make(map[string]*Account),
		clock:    util.RealClock{},
		logger:   zap.NewNop(),
	}
	for _, opt := range opts {
		opt(as)
	}
	return as
}

// Create generates a new account and registers it
func (as *Accounts) Create() (*Account, error) {
	acc, err := New()
	if err != nil {
		observeOp("create", err)
		return nil, err
	}
	if err := as.add(acc); err != nil {
		observeOp("create", err)
		return nil, err
	}
	observeOp("create", nil)
	return acc, nil
}

// Add registers an existing account
// Returns ErrAccountExist if the address is already registered
func (as *Accounts) Add(acc *Account) error {
	err := as.add(acc)
	observeOp("add", err)
	return err
}

func (as *Accounts) add(acc *Account) error {
	key := acc.Address().String()

	as.mu.Lock()
	defer as.mu.Unlock()

	if _, exists := as.accounts[key]; exists {
		return fmt.Errorf("%w: %s", ErrAccountExist, key)
	}

	if as.dir != nil {
		rec := storage.Record{
			Address:   key,
			PublicKey: acc.PublicKeyHex(),
			CreatedAt: as.clock.Now().UnixMilli(),
		}
		if err := as.dir.Put(rec); err != nil {
			return fmt.Errorf("failed to record account %s: %w", key, err)
		}
	}

	as.accounts[key] = acc
	registryAccounts.Inc()
	as.logger.Debug("account_added", zap.String("address", key))
	return nil
}

// Get returns the account registered under addr
func (as *Accounts) Get(addr address.Address) (*Account, error) {
	key := addr.String()

	as.mu.RLock()
	defer as.mu.RUnlock()

	acc, exists := as.accounts[key]
	if !exists {
		err := fmt.Errorf("%w: %s", ErrAccountNotExist, key)
		observeOp("get", err)
		return nil, err
	}
	observeOp("get", nil)
	return acc, nil
}

// Remove unregisters addr
// Returns ErrAccountNotExist if nothing is registered under it
func (as *Accounts) Remove(addr address.Address) error {
	key := addr.String()

	as.mu.Lock()
	defer as.mu.Unlock()

	if _, exists := as.accounts[key]; !exists {
		err := fmt.Errorf("%w: %s", ErrAccountNotExist, key)
		observeOp("remove", err)
		return err
	}

	if as.dir != nil {
		if err := as.dir.Delete(key); err != nil {
			err = fmt.Errorf("failed to delete record %s: %w", key, err)
			observeOp("remove", err)
			return err
		}
	}

	delete(as.accounts, key)
	registryAccounts.Dec()
	observeOp("remove", nil)
	as.logger.Debug("account_removed", zap.String("address", key))
	return nil
}

// List returns all registered accounts ordered by address
// Returns a snapshot copy to avoid holding the lock
func (as *Accounts) List() []*Account {
	as.mu.RLock()
	keys := make([]string, 0, len(as.accounts))
	for k := range as.accounts {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	out := make([]*Account, 0, len(keys))
	for _, k := range keys {
		out = append(out, as.accounts[k])
	}
	as.mu.RUnlock()
	return out
}

// Len returns the number of registered accounts
func (as *Accounts) Len() int {
	as.mu.RLock()
	defer as.mu.RUnlock()
	return len(as.accounts)
}
