package service

import (
	"alcyxob/dieta-core/internal/domain"
	"alcyxob/dieta-core/internal/ownership"
	"alcyxob/dieta-core/internal/repository"
	"alcyxob/dieta-core/internal/result"
	"alcyxob/dieta-core/internal/storage"
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"
)

// recentEntries is how many records a progress summary carries.
const recentEntries = 5

// ProgressService manages progress records and their photos. Access
// follows the client's current dietitian.
type ProgressService interface {
	GetClientProgress(ctx context.Context, clientID int64) (result.Result[[]domain.ClientProgress], error)
	GetSummary(ctx context.Context, clientID int64) (result.Result[*ProgressSummary], error)
	CreateProgress(ctx context.Context, in ProgressInput) (result.Result[*domain.ClientProgress], error)
	UpdateProgress(ctx context.Context, progressID int64, in ProgressUpdateInput) (result.Result[*domain.ClientProgress], error)
	DeleteProgress(ctx context.Context, progressID int64) (result.Result[bool], error)

	RequestPhotoUpload(ctx context.Context, progressID int64, in PhotoUploadInput) (result.Result[*PhotoUploadResponse], error)
	ConfirmPhotoUpload(ctx context.Context, progressID int64, in ConfirmPhotoInput) (result.Result[*domain.ProgressPhoto], error)
	GetPhotos(ctx context.Context, progressID int64) (result.Result[[]PhotoResponse], error)
	DeletePhoto(ctx context.Context, photoID int64) (result.Result[bool], error)
}

type progressService struct {
	store         repository.Store
	resolver      *ownership.Resolver
	files         storage.FileStorage
	presignExpiry time.Duration
	log           *zap.Logger
	now           clock
}

// NewProgressService creates a new instance of progressService.
func NewProgressService(store repository.Store, resolver *ownership.Resolver, files storage.FileStorage, presignExpiry time.Duration, log *zap.Logger) ProgressService {
	if presignExpiry <= 0 {
		presignExpiry = storage.DefaultPresignedURLExpiry
	}
	return &progressService{
		store:         store,
		resolver:      resolver,
		files:         files,
		presignExpiry: presignExpiry,
		log:           log,
		now:           systemClock,
	}
}

// GetClientProgress lists a client's records, newest first.
func (s *progressService) GetClientProgress(ctx context.Context, clientID int64) (result.Result[[]domain.ClientProgress], error) {
	c, _, err := s.resolver.ManagedClient(ctx, clientID, ownership.DenyAccessProgress)
	if err != nil {
		return result.Propagate[[]domain.ClientProgress](err)
	}
	entries, err := s.store.Progress.ListByClientID(ctx, c.ID)
	if err != nil {
		return fail[[]domain.ClientProgress](err, "list progress")
	}
	return result.OK(entries, "Client progress retrieved successfully."), nil
}

// GetSummary reports start, current and target weight. The current weight
// is the newest record's, or the initial weight without records; the
// target comes from the plan with the latest start date.
func (s *progressService) GetSummary(ctx context.Context, clientID int64) (result.Result[*ProgressSummary], error) {
	c, _, err := s.resolver.ManagedClient(ctx, clientID, ownership.DenyAccessProgress)
	if err != nil {
		return result.Propagate[*ProgressSummary](err)
	}

	entries, err := s.store.Progress.ListByClientID(ctx, c.ID)
	if err != nil {
		return fail[*ProgressSummary](err, "list progress")
	}

	var target *float64
	plan, err := s.store.DietPlans.LatestByClientID(ctx, c.ID)
	switch {
	case err == nil:
		t := plan.TargetWeight
		target = &t
	case !errors.Is(err, repository.ErrNotFound):
		return fail[*ProgressSummary](err, "load latest diet plan")
	}

	summary := &ProgressSummary{
		ClientID:      c.ID,
		StartWeight:   c.InitialWeight,
		CurrentWeight: c.InitialWeight,
		TargetWeight:  target,
		Recent:        entries,
	}
	if len(entries) > 0 {
		summary.CurrentWeight = entries[0].Weight
	}
	if len(entries) > recentEntries {
		summary.Recent = entries[:recentEntries]
	}
	summary.WeightLoss = summary.StartWeight - summary.CurrentWeight

	user, err := s.store.Users.GetByID(ctx, c.UserID)
	switch {
	case err == nil:
		summary.ClientName = user.FullName()
	case !errors.Is(err, repository.ErrNotFound):
		return fail[*ProgressSummary](err, "load client user")
	}

	return result.OK(summary, "Progress summary retrieved successfully."), nil
}

// CreateProgress stores the record against the client's current dietitian
// and moves the client's current weight in the same transaction.
func (s *progressService) CreateProgress(ctx context.Context, in ProgressInput) (result.Result[*domain.ClientProgress], error) {
	c, err := s.resolver.ProgressClient(ctx, in.ClientID, ownership.DenyRecordProgress)
	if err != nil {
		return result.Propagate[*domain.ClientProgress](err)
	}
	if in.Weight <= 0 {
		return result.Failure[*domain.ClientProgress](result.BadRequest, MsgWeightNotPositive), nil
	}

	entry := &domain.ClientProgress{
		ClientID:              c.ID,
		Weight:                in.Weight,
		BodyFatPercentage:     in.BodyFatPercentage,
		MuscleMass:            in.MuscleMass,
		WaistCircumference:    in.WaistCircumference,
		ChestCircumference:    in.ChestCircumference,
		HipCircumference:      in.HipCircumference,
		Notes:                 in.Notes,
		RecordedDate:          in.RecordedDate,
		RecordedByDietitianID: c.DietitianID,
		IsClientEntry:         false,
	}

	err = s.store.Tx.RunInTx(ctx, func(ctx context.Context) error {
		id, err := s.store.Progress.Create(ctx, entry)
		if err != nil {
			return fmt.Errorf("create progress: %w", err)
		}
		entry.ID = id
		if err := s.store.Clients.UpdateCurrentWeight(ctx, c.ID, in.Weight); err != nil {
			return fmt.Errorf("update current weight: %w", err)
		}
		return nil
	})
	if err != nil {
		return result.Propagate[*domain.ClientProgress](err)
	}

	s.log.Info("progress recorded", zap.Int64("progressID", entry.ID), zap.Int64("clientID", c.ID))
	return result.OK(entry, "Progress recorded successfully."), nil
}

// UpdateProgress rewrites the measurements. The client's current weight
// is left as it is.
func (s *progressService) UpdateProgress(ctx context.Context, progressID int64, in ProgressUpdateInput) (result.Result[*domain.ClientProgress], error) {
	entry, _, err := s.resolver.ProgressEntry(ctx, progressID, ownership.DenyUpdateProgress)
	if err != nil {
		return result.Propagate[*domain.ClientProgress](err)
	}
	if in.Weight <= 0 {
		return result.Failure[*domain.ClientProgress](result.BadRequest, MsgWeightNotPositive), nil
	}

	entry.Weight = in.Weight
	entry.BodyFatPercentage = in.BodyFatPercentage
	entry.MuscleMass = in.MuscleMass
	entry.WaistCircumference = in.WaistCircumference
	entry.ChestCircumference = in.ChestCircumference
	entry.HipCircumference = in.HipCircumference
	entry.Notes = in.Notes
	entry.RecordedDate = in.RecordedDate
	if err := s.store.Progress.Update(ctx, entry); err != nil {
		return fail[*domain.ClientProgress](err, "update progress")
	}

	updated, err := s.store.Progress.GetByID(ctx, entry.ID)
	if err != nil {
		return fail[*domain.ClientProgress](err, "reload progress")
	}
	return result.OK(updated, "Progress updated successfully."), nil
}

// DeleteProgress soft-deletes the record and its photo metadata. Stored
// objects are removed afterwards on a best-effort basis.
func (s *progressService) DeleteProgress(ctx context.Context, progressID int64) (result.Result[bool], error) {
	entry, _, err := s.resolver.ProgressEntry(ctx, progressID, ownership.DenyDeleteProgress)
	if err != nil {
		return result.Propagate[bool](err)
	}

	var photos []domain.ProgressPhoto
	err = s.store.Tx.RunInTx(ctx, func(ctx context.Context) error {
		var err error
		photos, err = s.store.ProgressPhotos.ListByProgressID(ctx, entry.ID)
		if err != nil {
			return fmt.Errorf("list photos: %w", err)
		}
		for _, p := range photos {
			if err := s.store.ProgressPhotos.Delete(ctx, p.ID); err != nil {
				return fmt.Errorf("delete photo %d: %w", p.ID, err)
			}
		}
		return s.store.Progress.Delete(ctx, entry.ID)
	})
	if err != nil {
		return fail[bool](err, "delete progress")
	}

	for _, p := range photos {
		s.removeObject(ctx, p.ObjectKey)
	}
	return result.OK(true, "Progress deleted successfully."), nil
}

// --- Photos ---

// RequestPhotoUpload hands out a presigned PUT URL under the record's key
// prefix. Nothing is stored until the upload is confirmed.
func (s *progressService) RequestPhotoUpload(ctx context.Context, progressID int64, in PhotoUploadInput) (result.Result[*PhotoUploadResponse], error) {
	// 1. Authorize against the record
	entry, c, err := s.resolver.ProgressEntry(ctx, progressID, ownership.DenyUpdateProgress)
	if err != nil {
		return result.Propagate[*PhotoUploadResponse](err)
	}

	// 2. Validate the file type
	if !storage.AllowedImageTypes[strings.ToLower(in.ContentType)] {
		return result.Failure[*PhotoUploadResponse](result.BadRequest, MsgUnsupportedImage), nil
	}

	// 3. Generate key and URL
	key := storage.ProgressPhotoKey(c.ID, entry.ID, in.FileName)
	url, err := s.files.GeneratePresignedUploadURL(ctx, key, in.ContentType, s.presignExpiry)
	if err != nil {
		return fail[*PhotoUploadResponse](err, "presign upload")
	}

	s.log.Debug("photo upload url issued", zap.Int64("progressID", entry.ID), zap.String("objectKey", key))
	return result.OK(&PhotoUploadResponse{
		UploadURL: url,
		ObjectKey: key,
		ExpiresAt: s.now().Add(s.presignExpiry),
	}, "Upload URL generated successfully."), nil
}

// ConfirmPhotoUpload records an uploaded object. The key must sit under the
// record's own prefix.
func (s *progressService) ConfirmPhotoUpload(ctx context.Context, progressID int64, in ConfirmPhotoInput) (result.Result[*domain.ProgressPhoto], error) {
	entry, c, err := s.resolver.ProgressEntry(ctx, progressID, ownership.DenyUpdateProgress)
	if err != nil {
		return result.Propagate[*domain.ProgressPhoto](err)
	}
	if !strings.HasPrefix(in.ObjectKey, photoPrefix(c.ID, entry.ID)) {
		return result.Failure[*domain.ProgressPhoto](result.BadRequest, MsgInvalidObjectKey), nil
	}
	if !storage.AllowedImageTypes[strings.ToLower(in.ContentType)] {
		return result.Failure[*domain.ProgressPhoto](result.BadRequest, MsgUnsupportedImage), nil
	}

	photo := &domain.ProgressPhoto{
		ProgressID:  entry.ID,
		ClientID:    c.ID,
		ObjectKey:   in.ObjectKey,
		FileName:    in.FileName,
		ContentType: in.ContentType,
		Size:        in.FileSize,
	}
	id, err := s.store.ProgressPhotos.Create(ctx, photo)
	if err != nil {
		return fail[*domain.ProgressPhoto](err, "create photo")
	}
	photo.ID = id
	return result.OK(photo, "Photo upload confirmed."), nil
}

// GetPhotos lists a record's photos with short-lived download URLs.
func (s *progressService) GetPhotos(ctx context.Context, progressID int64) (result.Result[[]PhotoResponse], error) {
	entry, _, err := s.resolver.ProgressEntry(ctx, progressID, ownership.DenyAccessProgress)
	if err != nil {
		return result.Propagate[[]PhotoResponse](err)
	}
	photos, err := s.store.ProgressPhotos.ListByProgressID(ctx, entry.ID)
	if err != nil {
		return fail[[]PhotoResponse](err, "list photos")
	}

	out := make([]PhotoResponse, 0, len(photos))
	for _, p := range photos {
		url, err := s.files.GeneratePresignedDownloadURL(ctx, p.ObjectKey, s.presignExpiry)
		if err != nil {
			return fail[[]PhotoResponse](err, "presign download")
		}
		out = append(out, PhotoResponse{ProgressPhoto: p, URL: url})
	}
	return result.OK(out, "Photos retrieved successfully."), nil
}

// DeletePhoto soft-deletes the metadata, then removes the object.
func (s *progressService) DeletePhoto(ctx context.Context, photoID int64) (result.Result[bool], error) {
	photo, err := s.store.ProgressPhotos.GetByID(ctx, photoID)
	if err != nil {
		return result.Propagate[bool](lookup(err, MsgPhotoNotFound, "photo"))
	}
	if _, _, err := s.resolver.ProgressEntry(ctx, photo.ProgressID, ownership.DenyUpdateProgress); err != nil {
		return result.Propagate[bool](err)
	}
	if err := s.store.ProgressPhotos.Delete(ctx, photo.ID); err != nil {
		return fail[bool](err, "delete photo")
	}
	s.removeObject(ctx, photo.ObjectKey)
	return result.OK(true, "Photo deleted successfully."), nil
}

// removeObject deletes a stored object. A failure leaves an orphaned
// object and is only logged.
func (s *progressService) removeObject(ctx context.Context, key string) {
	if err := s.files.DeleteObject(ctx, key); err != nil {
		s.log.Warn("failed to delete photo object", zap.String("objectKey", key), zap.Error(err))
	}
}

func photoPrefix(clientID, progressID int64) string {
	return fmt.Sprintf("progress/%d/%d/", clientID, progressID)
}
