// Package catalog orchestrates sessions, backend calls, image uploads, and
// change events around the per-session display state.
package catalog

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync/atomic"

	"github.com/couchcryptid/peak-catalog/internal/domain"
	"github.com/couchcryptid/peak-catalog/internal/observability"
	"github.com/couchcryptid/peak-catalog/internal/state"
	"github.com/couchcryptid/peak-catalog/internal/validation"
)

// ErrSignupRejected is returned when the backend does not create the account.
var ErrSignupRejected = errors.New("signup rejected")

// Backend is the peak catalog REST API.
type Backend interface {
	Signup(ctx context.Context, user domain.User) bool
	Authenticate(ctx context.Context, email, password string) *domain.LoginResult
	VerifyTwoFactorLogin(ctx context.Context, tempToken, code string) *domain.Session
	RecoveryTwoFactorLogin(ctx context.Context, tempToken, recoveryCode string) *domain.Session
	SetupTwoFactor(ctx context.Context, token string) *domain.TwoFactorSetup
	VerifyTwoFactorSetup(ctx context.Context, token, code string) *domain.TwoFactorActivation

	ListUserPeaks(ctx context.Context, token, userID string, categoryIDs []string) ([]domain.Peak, error)
	GetPeak(ctx context.Context, token, id string) (domain.Peak, error)
	CreatePeak(ctx context.Context, token string, payload domain.PeakPayload) (domain.Peak, error)
	UpdatePeak(ctx context.Context, token, id string, payload domain.PeakPayload) (domain.Peak, error)
	DeletePeak(ctx context.Context, token, id string) error
	ListCategories(ctx context.Context, token string) ([]domain.Category, error)
}

// ImageUploader stores images with the image host.
type ImageUploader interface {
	UploadImages(ctx context.Context, files []domain.ImageFile) ([]domain.StoredImage, error)
}

// EventPublisher emits peak change events.
type EventPublisher interface {
	PublishPeakEvent(ctx context.Context, event domain.PeakEvent) error
}

// Service is the catalog's application layer.
type Service struct {
	backend   Backend
	uploader  ImageUploader
	publisher EventPublisher
	store     *state.Store
	logger    *slog.Logger
	metrics   *observability.Metrics
	ready     atomic.Bool
}

// New creates a Service. A nil uploader or publisher disables that feature.
func New(backend Backend, store *state.Store, uploader ImageUploader, publisher EventPublisher, logger *slog.Logger, metrics *observability.Metrics) *Service {
	return &Service{
		backend:   backend,
		uploader:  uploader,
		publisher: publisher,
		store:     store,
		logger:    logger,
		metrics:   metrics,
	}
}

// CheckReadiness returns nil once a refresh has reached the backend successfully.
func (s *Service) CheckReadiness(_ context.Context) error {
	if !s.ready.Load() {
		return errors.New("catalog has not reached the backend yet")
	}
	return nil
}

// Signup validates the form and creates the account.
func (s *Service) Signup(ctx context.Context, user domain.User) error {
	if err := validation.Struct(user); err != nil {
		return err
	}
	if !s.backend.Signup(ctx, user) {
		return ErrSignupRejected
	}
	s.logger.Info("account created", "email", user.Email)
	return nil
}

// Login authenticates the user. When a session is issued its display state is
// installed and loaded; when a second factor is needed the challenge is returned.
func (s *Service) Login(ctx context.Context, email, password string) (domain.LoginResult, error) {
	res := s.backend.Authenticate(ctx, email, password)
	if res == nil {
		return domain.LoginResult{}, domain.ErrUnauthorized
	}
	if res.Session != nil {
		s.startSession(ctx, *res.Session)
	}
	return *res, nil
}

// CompleteTwoFactor finishes a challenged login with an authenticator code, or
// with a recovery code when recovery is true.
func (s *Service) CompleteTwoFactor(ctx context.Context, tempToken, code string, recovery bool) (domain.Session, error) {
	var session *domain.Session
	if recovery {
		session = s.backend.RecoveryTwoFactorLogin(ctx, tempToken, code)
	} else {
		session = s.backend.VerifyTwoFactorLogin(ctx, tempToken, code)
	}
	if session == nil {
		return domain.Session{}, domain.ErrUnauthorized
	}
	s.startSession(ctx, *session)
	return *session, nil
}

// Restore reinstalls a session persisted by the client and reloads its data.
// A token the backend no longer accepts is dropped.
func (s *Service) Restore(ctx context.Context, session domain.Session) (state.SessionState, error) {
	if err := validation.Struct(session); err != nil {
		return state.SessionState{}, err
	}
	s.store.Put(session)
	st, err := s.Refresh(ctx, session.Token)
	if err != nil {
		if errors.Is(err, domain.ErrUnauthorized) {
			s.store.Clear(session.Token)
		}
		return state.SessionState{}, err
	}
	return st, nil
}

// Logout drops all display state for the session.
func (s *Service) Logout(token string) {
	s.store.Clear(token)
}

// SetupTwoFactor begins second-factor enrolment.
func (s *Service) SetupTwoFactor(ctx context.Context, token string) (domain.TwoFactorSetup, error) {
	if _, err := s.State(token); err != nil {
		return domain.TwoFactorSetup{}, err
	}
	setup := s.backend.SetupTwoFactor(ctx, token)
	if setup == nil {
		return domain.TwoFactorSetup{}, errors.New("two-factor setup failed")
	}
	return *setup, nil
}

// VerifyTwoFactorSetup confirms enrolment and returns the recovery codes.
func (s *Service) VerifyTwoFactorSetup(ctx context.Context, token, code string) (domain.TwoFactorActivation, error) {
	if _, err := s.State(token); err != nil {
		return domain.TwoFactorActivation{}, err
	}
	act := s.backend.VerifyTwoFactorSetup(ctx, token, code)
	if act == nil {
		return domain.TwoFactorActivation{}, errors.New("two-factor verification failed")
	}
	return *act, nil
}

// State returns a copy of the session's display state.
func (s *Service) State(token string) (state.SessionState, error) {
	st, ok := s.store.Get(token)
	if !ok {
		return state.SessionState{}, domain.ErrSessionNotFound
	}
	return st, nil
}

// Refresh refetches categories and then peaks, and replaces both in one step.
// On failure the previous state is left untouched.
func (s *Service) Refresh(ctx context.Context, token string) (state.SessionState, error) {
	st, err := s.State(token)
	if err != nil {
		return state.SessionState{}, err
	}

	categories, err := s.backend.ListCategories(ctx, token)
	if err != nil {
		return state.SessionState{}, s.refreshFailed(token, fmt.Errorf("list categories: %w", err))
	}
	peaks, err := s.backend.ListUserPeaks(ctx, token, st.Session.ID, nil)
	if err != nil {
		return state.SessionState{}, s.refreshFailed(token, fmt.Errorf("list peaks: %w", err))
	}

	if !s.store.Refresh(token, peaks, categories) {
		return state.SessionState{}, domain.ErrSessionNotFound
	}
	s.metrics.StateRefreshes.WithLabelValues("success").Inc()
	s.ready.Store(true)

	s.logger.Debug("state refreshed", "user_id", st.Session.ID, "peaks", len(peaks), "categories", len(categories))
	return s.State(token)
}

func (s *Service) refreshFailed(token string, err error) error {
	s.metrics.StateRefreshes.WithLabelValues("error").Inc()
	s.logger.Warn("state refresh failed", "error", err)
	return s.dropIfUnauthorized(token, err)
}

// GetPeak fetches one peak from the backend.
func (s *Service) GetPeak(ctx context.Context, token, id string) (domain.Peak, error) {
	if _, err := s.State(token); err != nil {
		return domain.Peak{}, err
	}
	p, err := s.backend.GetPeak(ctx, token, id)
	if err != nil {
		return domain.Peak{}, s.dropIfUnauthorized(token, fmt.Errorf("get peak %s: %w", id, err))
	}
	return p, nil
}

// CreatePeak validates and stores a new peak, publishes the change, and refreshes state.
func (s *Service) CreatePeak(ctx context.Context, token string, p domain.Peak) (domain.Peak, error) {
	st, err := s.State(token)
	if err != nil {
		return domain.Peak{}, err
	}
	payload := domain.ToPayload(p)
	if err := validation.Struct(payload); err != nil {
		return domain.Peak{}, err
	}

	created, err := s.backend.CreatePeak(ctx, token, payload)
	if err != nil {
		return domain.Peak{}, s.dropIfUnauthorized(token, fmt.Errorf("create peak: %w", err))
	}
	s.afterMutation(ctx, token, domain.NewPeakEvent(domain.PeakCreated, created.ID, st.Session.ID, &created))
	return created, nil
}

// UpdatePeak validates and replaces a peak, publishes the change, and refreshes state.
func (s *Service) UpdatePeak(ctx context.Context, token, id string, p domain.Peak) (domain.Peak, error) {
	st, err := s.State(token)
	if err != nil {
		return domain.Peak{}, err
	}
	payload := domain.ToPayload(p)
	if err := validation.Struct(payload); err != nil {
		return domain.Peak{}, err
	}

	updated, err := s.backend.UpdatePeak(ctx, token, id, payload)
	if err != nil {
		return domain.Peak{}, s.dropIfUnauthorized(token, fmt.Errorf("update peak %s: %w", id, err))
	}
	s.afterMutation(ctx, token, domain.NewPeakEvent(domain.PeakUpdated, id, st.Session.ID, &updated))
	return updated, nil
}

// DeletePeak removes a peak, publishes the change, and refreshes state.
func (s *Service) DeletePeak(ctx context.Context, token, id string) error {
	st, err := s.State(token)
	if err != nil {
		return err
	}
	if err := s.backend.DeletePeak(ctx, token, id); err != nil {
		return s.dropIfUnauthorized(token, fmt.Errorf("delete peak %s: %w", id, err))
	}
	s.afterMutation(ctx, token, domain.NewPeakEvent(domain.PeakDeleted, id, st.Session.ID, nil))
	return nil
}

// UploadImages stores images with the image host, one at a time.
func (s *Service) UploadImages(ctx context.Context, token string, files []domain.ImageFile) ([]domain.StoredImage, error) {
	if _, err := s.State(token); err != nil {
		return nil, err
	}
	if s.uploader == nil {
		if len(files) == 0 {
			return []domain.StoredImage{}, nil
		}
		return nil, fmt.Errorf("image uploads: %w", domain.ErrNotConfigured)
	}
	return s.uploader.UploadImages(ctx, files)
}

// afterMutation publishes the change event and reloads state. Neither step
// fails the mutation, which the backend has already accepted.
func (s *Service) afterMutation(ctx context.Context, token string, ev domain.PeakEvent) {
	s.publish(ctx, ev)
	if _, err := s.Refresh(ctx, token); err != nil {
		s.logger.Warn("refresh after mutation failed", "action", ev.Action, "peak_id", ev.PeakID, "error", err)
	}
}

func (s *Service) startSession(ctx context.Context, session domain.Session) {
	s.store.Put(session)
	if _, err := s.Refresh(ctx, session.Token); err != nil {
		s.logger.Warn("initial refresh failed", "user_id", session.ID, "error", err)
	}
	s.logger.Info("session started", "user_id", session.ID)
}

func (s *Service) dropIfUnauthorized(token string, err error) error {
	if errors.Is(err, domain.ErrUnauthorized) {
		s.store.Clear(token)
	}
	return err
}
