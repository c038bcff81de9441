package memory

import (
	"alcyxob/dieta-core/internal/domain"
	"alcyxob/dieta-core/internal/repository"
	"context"
)

type dietitianRepository struct {
	db *Database
}

func (r *dietitianRepository) Create(ctx context.Context, d *domain.Dietitian) (int64, error) {
	if err := alive(ctx); err != nil {
		return 0, err
	}
	defer r.db.lock(ctx)()

	uid := d.UserID
	if len(r.db.dietitians.find(func(x *domain.Dietitian) bool { return x.UserID == uid }, nil)) > 0 {
		return 0, repository.ErrDuplicate
	}
	return r.db.dietitians.insert(d, r.db.now()), nil
}

func (r *dietitianRepository) GetByID(ctx context.Context, id int64) (*domain.Dietitian, error) {
	if err := alive(ctx); err != nil {
		return nil, err
	}
	r.db.mu.RLock()
	defer r.db.mu.RUnlock()
	return r.db.dietitians.get(id)
}

func (r *dietitianRepository) GetByUserID(ctx context.Context, userID int64) (*domain.Dietitian, error) {
	if err := alive(ctx); err != nil {
		return nil, err
	}
	r.db.mu.RLock()
	defer r.db.mu.RUnlock()

	rows := r.db.dietitians.find(func(x *domain.Dietitian) bool { return x.UserID == userID }, nil)
	if len(rows) == 0 {
		return nil, repository.ErrNotFound
	}
	return &rows[0], nil
}

func (r *dietitianRepository) List(ctx context.Context) ([]domain.Dietitian, error) {
	if err := alive(ctx); err != nil {
		return nil, err
	}
	r.db.mu.RLock()
	defer r.db.mu.RUnlock()
	return r.db.dietitians.find(nil, nil), nil
}

func (r *dietitianRepository) Exists(ctx context.Context, id int64) (bool, error) {
	if err := alive(ctx); err != nil {
		return false, err
	}
	r.db.mu.RLock()
	defer r.db.mu.RUnlock()
	_, err := r.db.dietitians.get(id)
	return err == nil, nil
}

func (r *dietitianRepository) Update(ctx context.Context, d *domain.Dietitian) error {
	if err := alive(ctx); err != nil {
		return err
	}
	defer r.db.lock(ctx)()
	return r.db.dietitians.modify(d.ID, r.db.now(), func(x *domain.Dietitian) {
		x.Specialization = d.Specialization
		x.LicenseNumber = d.LicenseNumber
		x.Education = d.Education
		x.Biography = d.Biography
	})
}

func (r *dietitianRepository) Delete(ctx context.Context, id int64) error {
	if err := alive(ctx); err != nil {
		return err
	}
	defer r.db.lock(ctx)()
	return r.db.dietitians.softDelete(id, r.db.now())
}

type clientRepository struct {
	db *Database
}

func (r *clientRepository) Create(ctx context.Context, c *domain.Client) (int64, error) {
	if err := alive(ctx); err != nil {
		return 0, err
	}
	defer r.db.lock(ctx)()

	uid := c.UserID
	if len(r.db.clients.find(func(x *domain.Client) bool { return x.UserID == uid }, nil)) > 0 {
		return 0, repository.ErrDuplicate
	}
	c.DietitianID = cloneID(c.DietitianID)
	c.CurrentWeight = cloneFloat(c.CurrentWeight)
	return r.db.clients.insert(c, r.db.now()), nil
}

func (r *clientRepository) GetByID(ctx context.Context, id int64) (*domain.Client, error) {
	if err := alive(ctx); err != nil {
		return nil, err
	}
	r.db.mu.RLock()
	defer r.db.mu.RUnlock()
	return r.db.clients.get(id)
}

func (r *clientRepository) GetByUserID(ctx context.Context, userID int64) (*domain.Client, error) {
	if err := alive(ctx); err != nil {
		return nil, err
	}
	r.db.mu.RLock()
	defer r.db.mu.RUnlock()

	rows := r.db.clients.find(func(x *domain.Client) bool { return x.UserID == userID }, nil)
	if len(rows) == 0 {
		return nil, repository.ErrNotFound
	}
	return &rows[0], nil
}

func (r *clientRepository) List(ctx context.Context) ([]domain.Client, error) {
	if err := alive(ctx); err != nil {
		return nil, err
	}
	r.db.mu.RLock()
	defer r.db.mu.RUnlock()
	return r.db.clients.find(nil, nil), nil
}

func (r *clientRepository) ListByDietitianID(ctx context.Context, dietitianID int64) ([]domain.Client, error) {
	if err := alive(ctx); err != nil {
		return nil, err
	}
	r.db.mu.RLock()
	defer r.db.mu.RUnlock()
	return r.db.clients.find(func(x *domain.Client) bool { return x.IsManagedBy(dietitianID) }, nil), nil
}

func (r *clientRepository) Exists(ctx context.Context, id int64) (bool, error) {
	if err := alive(ctx); err != nil {
		return false, err
	}
	r.db.mu.RLock()
	defer r.db.mu.RUnlock()
	_, err := r.db.clients.get(id)
	return err == nil, nil
}

func (r *clientRepository) Update(ctx context.Context, c *domain.Client) error {
	if err := alive(ctx); err != nil {
		return err
	}
	defer r.db.lock(ctx)()
	return r.db.clients.modify(c.ID, r.db.now(), func(x *domain.Client) {
		x.DietitianID = cloneID(c.DietitianID)
		x.DateOfBirth = c.DateOfBirth
		x.Gender = c.Gender
		x.Height = c.Height
		x.InitialWeight = c.InitialWeight
		x.CurrentWeight = cloneFloat(c.CurrentWeight)
		x.MedicalConditions = c.MedicalConditions
		x.Allergies = c.Allergies
	})
}

func (r *clientRepository) SetDietitian(ctx context.Context, clientID int64, dietitianID *int64) error {
	if err := alive(ctx); err != nil {
		return err
	}
	defer r.db.lock(ctx)()
	return r.db.clients.modify(clientID, r.db.now(), func(x *domain.Client) {
		x.DietitianID = cloneID(dietitianID)
	})
}

func (r *clientRepository) UpdateCurrentWeight(ctx context.Context, clientID int64, weight float64) error {
	if err := alive(ctx); err != nil {
		return err
	}
	defer r.db.lock(ctx)()
	return r.db.clients.modify(clientID, r.db.now(), func(x *domain.Client) {
		x.CurrentWeight = &weight
	})
}

func (r *clientRepository) Delete(ctx context.Context, id int64) error {
	if err := alive(ctx); err != nil {
		return err
	}
	defer r.db.lock(ctx)()
	return r.db.clients.softDelete(id, r.db.now())
}

func cloneID(p *int64) *int64 {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}

func cloneFloat(p *float64) *float64 {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}
