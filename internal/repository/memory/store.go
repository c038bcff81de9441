// Package memory is an in-process Entity Store with the same semantics as
// the Mongo implementation: integer identities, store-maintained
// timestamps and soft delete. It backs local runs and tests.
package memory

import (
	"alcyxob/dieta-core/internal/domain"
	"alcyxob/dieta-core/internal/repository"
	"context"
	"sync"
	"time"
)

// Database holds every table behind one lock.
type Database struct {
	mu   sync.RWMutex
	txMu sync.Mutex
	now  func() time.Time

	users      *table[domain.User]
	dietitians *table[domain.Dietitian]
	clients    *table[domain.Client]
	plans      *table[domain.DietPlan]
	meals      *table[domain.Meal]
	progress   *table[domain.ClientProgress]
	photos     *table[domain.ProgressPhoto]
}

// NewDatabase creates an empty database.
func NewDatabase() *Database {
	return &Database{
		now:        func() time.Time { return time.Now().UTC().Truncate(time.Millisecond) },
		users:      newTable(func(u *domain.User) (*int64, *domain.Audit) { return &u.ID, &u.Audit }),
		dietitians: newTable(func(d *domain.Dietitian) (*int64, *domain.Audit) { return &d.ID, &d.Audit }),
		clients:    newTable(func(c *domain.Client) (*int64, *domain.Audit) { return &c.ID, &c.Audit }),
		plans:      newTable(func(p *domain.DietPlan) (*int64, *domain.Audit) { return &p.ID, &p.Audit }),
		meals:      newTable(func(m *domain.Meal) (*int64, *domain.Audit) { return &m.ID, &m.Audit }),
		progress:   newTable(func(p *domain.ClientProgress) (*int64, *domain.Audit) { return &p.ID, &p.Audit }),
		photos:     newTable(func(p *domain.ProgressPhoto) (*int64, *domain.Audit) { return &p.ID, &p.Audit }),
	}
}

// NewStore returns a repository.Store over a fresh in-memory database.
func NewStore() repository.Store {
	return NewDatabase().Store()
}

// Store exposes the database through the repository interfaces.
func (db *Database) Store() repository.Store {
	return repository.Store{
		Users:          &userRepository{db: db},
		Dietitians:     &dietitianRepository{db: db},
		Clients:        &clientRepository{db: db},
		DietPlans:      &dietPlanRepository{db: db},
		Meals:          &mealRepository{db: db},
		Progress:       &progressRepository{db: db},
		ProgressPhotos: &photoRepository{db: db},
		Tx:             &txManager{db: db},
	}
}

// lock takes the write lock for one mutation and returns its release.
// Writes outside a transaction also wait on txMu, so a rollback can only
// ever discard rows its own transaction wrote.
func (db *Database) lock(ctx context.Context) func() {
	inTx := ctx.Value(txKey{}) != nil
	if !inTx {
		db.txMu.Lock()
	}
	db.mu.Lock()
	return func() {
		db.mu.Unlock()
		if !inTx {
			db.txMu.Unlock()
		}
	}
}

// txManager snapshots every table before fn and restores the snapshot
// when fn fails. Transactions are serialized with each other and with
// plain writes; reads never wait on a transaction.
type txManager struct {
	db *Database
}

type txKey struct{}

func (m *txManager) RunInTx(ctx context.Context, fn func(ctx context.Context) error) error {
	if ctx.Value(txKey{}) != nil {
		return fn(ctx)
	}

	m.db.txMu.Lock()
	defer m.db.txMu.Unlock()

	m.db.mu.RLock()
	saved := m.db.snapshot()
	m.db.mu.RUnlock()

	if err := fn(context.WithValue(ctx, txKey{}, true)); err != nil {
		m.db.mu.Lock()
		m.db.restore(saved)
		m.db.mu.Unlock()
		return err
	}
	return nil
}

func (db *Database) snapshot() *Database {
	return &Database{
		users:      db.users.snapshot(),
		dietitians: db.dietitians.snapshot(),
		clients:    db.clients.snapshot(),
		plans:      db.plans.snapshot(),
		meals:      db.meals.snapshot(),
		progress:   db.progress.snapshot(),
		photos:     db.photos.snapshot(),
	}
}

func (db *Database) restore(s *Database) {
	db.users = s.users
	db.dietitians = s.dietitians
	db.clients = s.clients
	db.plans = s.plans
	db.meals = s.meals
	db.progress = s.progress
	db.photos = s.photos
}
