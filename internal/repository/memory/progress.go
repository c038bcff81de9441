package memory

import (
	"alcyxob/dieta-core/internal/domain"
	"context"
	"errors"
)

type progressRepository struct {
	db *Database
}

func (r *progressRepository) Create(ctx context.Context, p *domain.ClientProgress) (int64, error) {
	if err := alive(ctx); err != nil {
		return 0, err
	}
	defer r.db.lock(ctx)()
	p.RecordedByDietitianID = cloneID(p.RecordedByDietitianID)
	return r.db.progress.insert(p, r.db.now()), nil
}

func (r *progressRepository) GetByID(ctx context.Context, id int64) (*domain.ClientProgress, error) {
	if err := alive(ctx); err != nil {
		return nil, err
	}
	r.db.mu.RLock()
	defer r.db.mu.RUnlock()
	return r.db.progress.get(id)
}

func (r *progressRepository) ListByClientID(ctx context.Context, clientID int64) ([]domain.ClientProgress, error) {
	if err := alive(ctx); err != nil {
		return nil, err
	}
	r.db.mu.RLock()
	defer r.db.mu.RUnlock()
	return r.db.progress.find(
		func(p *domain.ClientProgress) bool { return p.ClientID == clientID },
		func(a, b *domain.ClientProgress) bool {
			if !a.RecordedDate.Equal(b.RecordedDate) {
				return a.RecordedDate.After(b.RecordedDate)
			}
			return a.ID > b.ID
		}), nil
}

func (r *progressRepository) Update(ctx context.Context, p *domain.ClientProgress) error {
	if err := alive(ctx); err != nil {
		return err
	}
	defer r.db.lock(ctx)()
	return r.db.progress.modify(p.ID, r.db.now(), func(x *domain.ClientProgress) {
		x.Weight = p.Weight
		x.BodyFatPercentage = cloneFloat(p.BodyFatPercentage)
		x.MuscleMass = cloneFloat(p.MuscleMass)
		x.WaistCircumference = cloneFloat(p.WaistCircumference)
		x.ChestCircumference = cloneFloat(p.ChestCircumference)
		x.HipCircumference = cloneFloat(p.HipCircumference)
		x.Notes = p.Notes
		x.RecordedDate = p.RecordedDate
	})
}

func (r *progressRepository) Delete(ctx context.Context, id int64) error {
	if err := alive(ctx); err != nil {
		return err
	}
	defer r.db.lock(ctx)()
	return r.db.progress.softDelete(id, r.db.now())
}

type photoRepository struct {
	db *Database
}

func (r *photoRepository) Create(ctx context.Context, photo *domain.ProgressPhoto) (int64, error) {
	if err := alive(ctx); err != nil {
		return 0, err
	}
	if photo.ProgressID == 0 || photo.ClientID == 0 || photo.ObjectKey == "" {
		return 0, errors.New("photo progress ID, client ID and object key are required")
	}
	defer r.db.lock(ctx)()
	now := r.db.now()
	photo.UploadedAt = now
	return r.db.photos.insert(photo, now), nil
}

func (r *photoRepository) GetByID(ctx context.Context, id int64) (*domain.ProgressPhoto, error) {
	if err := alive(ctx); err != nil {
		return nil, err
	}
	r.db.mu.RLock()
	defer r.db.mu.RUnlock()
	return r.db.photos.get(id)
}

func (r *photoRepository) ListByProgressID(ctx context.Context, progressID int64) ([]domain.ProgressPhoto, error) {
	if err := alive(ctx); err != nil {
		return nil, err
	}
	r.db.mu.RLock()
	defer r.db.mu.RUnlock()
	return r.db.photos.find(func(p *domain.ProgressPhoto) bool { return p.ProgressID == progressID }, nil), nil
}

func (r *photoRepository) Delete(ctx context.Context, id int64) error {
	if err := alive(ctx); err != nil {
		return err
	}
	defer r.db.lock(ctx)()
	return r.db.photos.softDelete(id, r.db.now())
}
