package services

import (
	"bytes"
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"image"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"matrimony-backend/internal/cache"
	"matrimony-backend/internal/models"
	"matrimony-backend/internal/profile"
	"matrimony-backend/internal/repository"
	"matrimony-backend/internal/storage"
)

// ProfileStore is the persistence used by ProfileService
type ProfileStore interface {
	GetProfileByUserID(ctx context.Context, userID string) (*models.Profile, error)
	CreateProfile(ctx context.Context, p *models.Profile) (bool, error)
	ListPendingByUser(ctx context.Context, userID string) ([]*models.PendingFieldUpdate, error)
	InTx(ctx context.Context, fn func(tx repository.Tx) error) error
}

// BlobStore keeps photo payloads outside the database
type BlobStore interface {
	Put(ctx context.Context, key string, body []byte, contentType string) error
	Delete(ctx context.Context, key string) error
	URL(ctx context.Context, key string) (string, error)
}

// ProfileOptions are the configurable policies of the profile form
type ProfileOptions struct {
	ModerationEnabled bool
	Payment           profile.PaymentPolicy
	Limits            profile.Limits
}

// ProfileView is a profile together with its derived completion state
type ProfileView struct {
	Profile              *models.Profile          `json:"profile"`
	CompletionPercentage int                      `json:"completionPercentage"`
	NextSection          *profile.Section         `json:"nextSection"`
	Sections             map[profile.Section]bool `json:"sections"`
	IsComplete           bool                     `json:"isComplete"`
}

// SectionView is one section's values prepared for editing
type SectionView struct {
	SectionData profile.Payload `json:"sectionData"`
	IsEmpty     bool            `json:"isEmpty"`
}

// ProfileService applies section submissions and computes profile completion
type ProfileService struct {
	store      ProfileStore
	blobs      BlobStore
	status     cache.StatusCache
	notifier   Notifier
	validator  *profile.Validator
	tracker    profile.Tracker
	classifier profile.FieldClassifier
	moderation bool
	now        func() time.Time
	newID      func() string
}

// NewProfileService creates a new profile service. A nil blob store keeps
// photos inline in the database; nil cache and notifier disable those features.
func NewProfileService(store ProfileStore, blobs BlobStore, status cache.StatusCache, notifier Notifier, opts ProfileOptions) *ProfileService {
	if status == nil {
		status = cache.Nop{}
	}
	return &ProfileService{
		store:      store,
		blobs:      blobs,
		status:     status,
		notifier:   notifier,
		validator:  profile.NewValidator(opts.Limits),
		tracker:    profile.NewTracker(opts.Payment),
		classifier: profile.NewClassifier(opts.ModerationEnabled),
		moderation: opts.ModerationEnabled,
		now:        time.Now,
		newID:      func() string { return uuid.New().String() },
	}
}

// Tracker returns the completion tracker in use
func (s *ProfileService) Tracker() profile.Tracker {
	return s.tracker
}

// GetOrCreate returns the owner's view of their profile, creating an empty profile on first access
func (s *ProfileService) GetOrCreate(ctx context.Context, userID string) (*ProfileView, error) {
	p, err := s.store.GetProfileByUserID(ctx, userID)
	if errors.Is(err, repository.ErrNotFound) {
		if _, err := s.store.CreateProfile(ctx, s.newProfile(userID)); err != nil {
			return nil, storeErr(err)
		}
		log.Info().Str("user_id", userID).Msg("Profile created")
		p, err = s.store.GetProfileByUserID(ctx, userID)
	}
	if err != nil {
		return nil, storeErr(err)
	}

	pending, err := s.pendingFor(ctx, userID)
	if err != nil {
		return nil, err
	}

	view := s.view(ctx, p, pending, true)
	s.cacheStatus(ctx, userID, view)
	return view, nil
}

// Create creates the caller's profile; it fails with ErrProfileExists when one already exists
func (s *ProfileService) Create(ctx context.Context, userID string) (*ProfileView, error) {
	created, err := s.store.CreateProfile(ctx, s.newProfile(userID))
	if err != nil {
		return nil, storeErr(err)
	}
	if !created {
		return nil, ErrProfileExists
	}
	log.Info().Str("user_id", userID).Msg("Profile created")
	return s.GetOrCreate(ctx, userID)
}

// ReadSection returns one section's current values, hydrated for editing
func (s *ProfileService) ReadSection(ctx context.Context, userID string, section profile.Section) (*SectionView, error) {
	if _, err := profile.Lookup(section); err != nil {
		return nil, err
	}
	view, err := s.GetOrCreate(ctx, userID)
	if err != nil {
		return nil, err
	}
	data, err := profile.Hydrate(section, view.Profile)
	if err != nil {
		return nil, err
	}
	return &SectionView{SectionData: data, IsEmpty: profile.IsEmpty(section, view.Profile)}, nil
}

// stagedPhoto is a gallery entry ready to be persisted: either a new photo
// or a reference to a stored one
type stagedPhoto struct {
	index int
	ref   string
	photo *models.Photo
}

// ApplySectionUpdate validates a section payload and applies it to the user's
// profile in one transaction. Sensitive text fields go through the pending
// overlay when moderation is enabled; the images section replaces the whole
// gallery. On any failure nothing is persisted.
func (s *ProfileService) ApplySectionUpdate(ctx context.Context, userID string, payload profile.Payload) (*ProfileView, error) {
	section := payload.Section()
	if err := s.validator.Validate(payload); err != nil {
		sectionSubmissions.WithLabelValues(string(section), "invalid").Inc()
		return nil, err
	}

	var (
		staged   []stagedPhoto
		uploaded []string
	)
	if gallery, ok := payload.(*profile.PhotoGallery); ok {
		current, err := s.store.GetProfileByUserID(ctx, userID)
		if err != nil {
			return nil, storeErr(err)
		}
		staged, uploaded, err = s.stagePhotos(ctx, current.ID, gallery)
		if err != nil {
			s.deleteBlobs(ctx, uploaded)
			sectionSubmissions.WithLabelValues(string(section), "failed").Inc()
			return nil, fmt.Errorf("%w: %w", ErrPersistence, err)
		}
	}

	var (
		committed *models.Profile
		pending   []*models.PendingFieldUpdate
		removed   []string
	)
	err := s.store.InTx(ctx, func(tx repository.Tx) error {
		p, err := tx.LockProfileByUserID(ctx, userID)
		if err != nil {
			return err
		}
		now := s.now()

		switch payload.(type) {
		case *profile.PhotoGallery:
			photos, dropped, err := resolvePhotos(p.Photos, staged, now)
			if err != nil {
				return err
			}
			if err := tx.ReplacePhotos(ctx, p.ID, photos); err != nil {
				return err
			}
			p.Photos, removed = photos, dropped
		case *profile.PaymentDetails:
			if s.tracker.Payment == profile.PaymentRequired && p.PaymentCompletedAt == nil {
				p.PaymentCompletedAt = &now
			}
		default:
			if err := s.applyScalars(ctx, tx, p, payload, now); err != nil {
				return err
			}
		}

		p.UpdatedAt = now
		if err := tx.UpdateProfile(ctx, p); err != nil {
			return err
		}
		if s.moderation {
			if pending, err = tx.ListPendingByUser(ctx, userID); err != nil {
				return err
			}
		}
		committed = p
		return nil
	})
	if err != nil {
		s.deleteBlobs(ctx, uploaded)
		var verr *profile.ValidationError
		if errors.As(err, &verr) {
			sectionSubmissions.WithLabelValues(string(section), "invalid").Inc()
			return nil, err
		}
		sectionSubmissions.WithLabelValues(string(section), "failed").Inc()
		log.Error().Err(err).Str("user_id", userID).Str("section", string(section)).Msg("Failed to apply section update")
		return nil, storeErr(err)
	}
	s.deleteBlobs(ctx, removed)

	view := s.view(ctx, committed, pending, true)
	s.cacheStatus(ctx, userID, view)
	sectionSubmissions.WithLabelValues(string(section), "ok").Inc()
	completionPercentage.Observe(float64(view.CompletionPercentage))

	if s.notifier != nil {
		s.notifier.Notify(ctx, userID, WSMessage{
			Type: MessageProfileUpdated,
			Data: map[string]interface{}{
				"section":              section,
				"completionPercentage": view.CompletionPercentage,
				"nextSection":          view.NextSection,
			},
		}, nil)
	}

	log.Info().
		Str("user_id", userID).
		Str("section", string(section)).
		Int("completion_percentage", view.CompletionPercentage).
		Interface("next_section", view.NextSection).
		Msg("Section updated")

	return view, nil
}

// applyScalars writes the section's fields onto p. With moderation enabled,
// sensitive fields keep their committed value and the proposed value is
// stored as the (user, field) pending update instead.
func (s *ProfileService) applyScalars(ctx context.Context, tx repository.Tx, p *models.Profile, payload profile.Payload, now time.Time) error {
	before := *p
	payload.ApplyTo(p)

	def, err := profile.Lookup(payload.Section())
	if err != nil {
		return err
	}
	for _, field := range def.Fields {
		if !s.classifier.RequiresModeration(field) {
			continue
		}
		proposed, err := profile.Text(p, field)
		if err != nil {
			return err
		}
		current, err := profile.Text(&before, field)
		if err != nil {
			return err
		}
		if err := profile.SetText(p, field, current); err != nil {
			return err
		}

		if proposed == current {
			if err := tx.DeletePendingField(ctx, p.UserID, field); err != nil {
				return err
			}
			continue
		}
		err = tx.UpsertPending(ctx, &models.PendingFieldUpdate{
			ID:        s.newID(),
			UserID:    p.UserID,
			Field:     field,
			Value:     proposed,
			CreatedAt: now,
			UpdatedAt: now,
		})
		if err != nil {
			return err
		}
	}
	return nil
}

// stagePhotos decodes new gallery entries in persisted order and, when a
// blob store is configured, uploads them. It returns the keys it uploaded so
// the caller can remove them if the transaction fails.
func (s *ProfileService) stagePhotos(ctx context.Context, profileID string, g *profile.PhotoGallery) ([]stagedPhoto, []string, error) {
	var (
		staged   []stagedPhoto
		uploaded []string
	)
	for _, i := range g.Order() {
		in := g.Gallery[i]
		if strings.TrimSpace(in.Data) == "" {
			staged = append(staged, stagedPhoto{index: i, ref: in.ID})
			continue
		}

		raw, _, err := profile.DecodeImageData(in.Data)
		if err != nil {
			return nil, uploaded, err
		}
		_, format, err := image.DecodeConfig(bytes.NewReader(raw))
		if err != nil {
			return nil, uploaded, fmt.Errorf("failed to decode photo %d: %w", i, err)
		}
		contentType := "image/" + format

		photo := &models.Photo{
			ID:        s.newID(),
			ProfileID: profileID,
			Width:     in.Dimensions.Width.Value,
			Height:    in.Dimensions.Height.Value,
		}
		if s.blobs != nil {
			key := storage.PhotoKey(profileID, photo.ID)
			if err := s.blobs.Put(ctx, key, raw, contentType); err != nil {
				return nil, uploaded, err
			}
			uploaded = append(uploaded, key)
			photo.ObjectKey = key
		} else {
			photo.Data = "data:" + contentType + ";base64," + base64.StdEncoding.EncodeToString(raw)
		}
		staged = append(staged, stagedPhoto{index: i, photo: photo})
	}
	return staged, uploaded, nil
}

// resolvePhotos builds the replacement gallery: order follows the staged
// slice, the first photo is primary. References must name a stored photo of
// the profile. It also returns the blob keys of stored photos that are dropped.
func resolvePhotos(existing []*models.Photo, staged []stagedPhoto, now time.Time) ([]*models.Photo, []string, error) {
	byID := make(map[string]*models.Photo, len(existing))
	for _, photo := range existing {
		byID[photo.ID] = photo
	}

	kept := make(map[string]bool)
	var violations profile.Violations
	photos := make([]*models.Photo, 0, len(staged))
	for order, st := range staged {
		photo := st.photo
		if photo == nil {
			old, ok := byID[st.ref]
			if !ok || kept[st.ref] {
				violations.Add(fmt.Sprintf("gallery[%d].id", st.index), "Unknown photo")
				continue
			}
			kept[st.ref] = true
			cp := *old
			photo = &cp
		}
		photo.Order = order
		photo.IsPrimary = order == 0
		if photo.CreatedAt.IsZero() {
			photo.CreatedAt = now
		}
		photos = append(photos, photo)
	}
	if len(violations) > 0 {
		return nil, nil, &profile.ValidationError{Section: profile.SectionImages, Violations: violations}
	}

	var dropped []string
	for _, photo := range existing {
		if !kept[photo.ID] && photo.ObjectKey != "" {
			dropped = append(dropped, photo.ObjectKey)
		}
	}
	return photos, dropped, nil
}

// MarkReady flags a complete profile as submitted for moderation
func (s *ProfileService) MarkReady(ctx context.Context, userID string) (*ProfileView, error) {
	var (
		committed *models.Profile
		pending   []*models.PendingFieldUpdate
	)
	err := s.store.InTx(ctx, func(tx repository.Tx) error {
		p, err := tx.LockProfileByUserID(ctx, userID)
		if err != nil {
			return err
		}
		if s.moderation {
			if pending, err = tx.ListPendingByUser(ctx, userID); err != nil {
				return err
			}
		}
		if !s.tracker.IsComplete(s.ownerView(p, pending)) {
			return ErrProfileIncomplete
		}
		if !p.IsReady {
			p.IsReady = true
			p.UpdatedAt = s.now()
			if err := tx.UpdateProfile(ctx, p); err != nil {
				return err
			}
		}
		committed = p
		return nil
	})
	if errors.Is(err, ErrProfileIncomplete) {
		return nil, err
	}
	if err != nil {
		return nil, storeErr(err)
	}

	log.Info().Str("user_id", userID).Msg("Profile marked ready")
	view := s.view(ctx, committed, pending, true)
	s.cacheStatus(ctx, userID, view)
	return view, nil
}

// PublicView returns the committed profile of a user, without pending values
func (s *ProfileService) PublicView(ctx context.Context, userID string) (*ProfileView, error) {
	p, err := s.store.GetProfileByUserID(ctx, userID)
	if err != nil {
		return nil, storeErr(err)
	}
	return s.view(ctx, p, nil, false), nil
}

// Status returns the cached profile status, recomputing it on a miss
func (s *ProfileService) Status(ctx context.Context, userID string) (*cache.Status, error) {
	st, err := s.status.Get(ctx, userID)
	if err == nil {
		return st, nil
	}
	if !errors.Is(err, cache.ErrMiss) {
		log.Warn().Err(err).Str("user_id", userID).Msg("Failed to read profile status cache")
	}

	p, err := s.store.GetProfileByUserID(ctx, userID)
	if errors.Is(err, repository.ErrNotFound) {
		empty := cache.Status{}
		s.setStatus(ctx, userID, empty)
		return &empty, nil
	}
	if err != nil {
		return nil, storeErr(err)
	}
	pending, err := s.pendingFor(ctx, userID)
	if err != nil {
		return nil, err
	}

	fresh := statusOf(s.view(ctx, p, pending, true))
	s.setStatus(ctx, userID, fresh)
	return &fresh, nil
}

// InvalidateStatus drops the cached status after a change made by someone else
func (s *ProfileService) InvalidateStatus(ctx context.Context, userID string) {
	if err := s.status.Delete(ctx, userID); err != nil {
		log.Warn().Err(err).Str("user_id", userID).Msg("Failed to invalidate profile status")
	}
}

func (s *ProfileService) newProfile(userID string) *models.Profile {
	now := s.now()
	return &models.Profile{ID: s.newID(), UserID: userID, CreatedAt: now, UpdatedAt: now}
}

func (s *ProfileService) pendingFor(ctx context.Context, userID string) ([]*models.PendingFieldUpdate, error) {
	if !s.moderation {
		return nil, nil
	}
	pending, err := s.store.ListPendingByUser(ctx, userID)
	if err != nil {
		return nil, storeErr(err)
	}
	return pending, nil
}

// ownerView lays the owner's own pending values over the committed profile
func (s *ProfileService) ownerView(p *models.Profile, pending []*models.PendingFieldUpdate) *models.Profile {
	if !s.moderation || len(pending) == 0 {
		return p
	}
	return profile.MergePending(p, pending)
}

func (s *ProfileService) view(ctx context.Context, p *models.Profile, pending []*models.PendingFieldUpdate, owner bool) *ProfileView {
	shown := p
	if owner {
		shown = s.ownerView(p, pending)
	}
	if shown.Photos == nil {
		shown.Photos = []*models.Photo{}
	}
	s.resolveURLs(ctx, shown.Photos)

	return &ProfileView{
		Profile:              shown,
		CompletionPercentage: s.tracker.Percentage(shown),
		NextSection:          s.tracker.NextSection(shown),
		Sections:             s.tracker.SectionStates(shown),
		IsComplete:           s.tracker.IsComplete(shown),
	}
}

func (s *ProfileService) resolveURLs(ctx context.Context, photos []*models.Photo) {
	if s.blobs == nil {
		return
	}
	for _, photo := range photos {
		if photo.ObjectKey == "" {
			continue
		}
		url, err := s.blobs.URL(ctx, photo.ObjectKey)
		if err != nil {
			log.Warn().Err(err).Str("photo_id", photo.ID).Msg("Failed to presign photo URL")
			continue
		}
		photo.URL = url
	}
}

func (s *ProfileService) deleteBlobs(ctx context.Context, keys []string) {
	if s.blobs == nil {
		return
	}
	for _, key := range keys {
		if err := s.blobs.Delete(ctx, key); err != nil {
			log.Warn().Err(err).Str("key", key).Msg("Failed to delete photo blob")
		}
	}
}

func (s *ProfileService) cacheStatus(ctx context.Context, userID string, view *ProfileView) {
	s.setStatus(ctx, userID, statusOf(view))
}

func (s *ProfileService) setStatus(ctx context.Context, userID string, st cache.Status) {
	if err := s.status.Set(ctx, userID, st); err != nil {
		log.Warn().Err(err).Str("user_id", userID).Msg("Failed to cache profile status")
	}
}

func statusOf(view *ProfileView) cache.Status {
	st := cache.Status{
		HasProfile:           true,
		IsProfileComplete:    view.IsComplete,
		CompletionPercentage: view.CompletionPercentage,
	}
	if view.NextSection != nil {
		next := string(*view.NextSection)
		st.NextSection = &next
	}
	return st
}
