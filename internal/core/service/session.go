package service

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/patrickmn/go-cache"
	"go.uber.org/zap"

	"userdir/internal/core/domain"
	"userdir/internal/core/port"
	"userdir/internal/core/telemetry"
	"userdir/pkg/config"
)

type session struct {
	mu    sync.Mutex
	state domain.ViewState
}

// SessionRegistry keeps the view state of each open directory screen:
// filters, the edit draft, the detail selection and the theme. Sessions
// expire after ttl without access.
type SessionRegistry struct {
	directory port.UserDirectory
	sessions  *cache.Cache
	ttl       time.Duration
	logger    *config.Logger
	metrics   *telemetry.AppMetrics
}

func NewSessionRegistry(directory port.UserDirectory, ttl time.Duration, logger *config.Logger, metrics *telemetry.AppMetrics) *SessionRegistry {
	if logger == nil {
		logger = config.NewNopLogger()
	}

	r := &SessionRegistry{
		directory: directory,
		sessions:  cache.New(ttl, 2*ttl),
		ttl:       ttl,
		logger:    logger,
		metrics:   metrics,
	}

	r.sessions.OnEvicted(func(id string, _ interface{}) {
		r.metrics.SetActiveSessions(r.sessions.ItemCount())
	})

	return r
}

func (r *SessionRegistry) Open() (string, domain.ViewState) {
	id := uuid.NewString()
	s := &session{state: domain.NewViewState()}

	r.sessions.Set(id, s, r.ttl)
	r.metrics.SetActiveSessions(r.sessions.ItemCount())

	return id, s.state
}

func (r *SessionRegistry) Close(id string) {
	r.sessions.Delete(id)
}

func (r *SessionRegistry) lookup(id string) (*session, error) {
	v, ok := r.sessions.Get(id)
	if !ok {
		return nil, domain.ErrSessionNotFound
	}

	s := v.(*session)

	// sliding expiry
	r.sessions.Set(id, s, r.ttl)

	return s, nil
}

func (r *SessionRegistry) update(id string, fn func(*domain.ViewState) error) (domain.ViewState, error) {
	s, err := r.lookup(id)
	if err != nil {
		return domain.ViewState{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := fn(&s.state); err != nil {
		return s.state, err
	}

	return s.state, nil
}

func (r *SessionRegistry) State(id string) (domain.ViewState, error) {
	return r.update(id, func(*domain.ViewState) error { return nil })
}

func (r *SessionRegistry) SetFilters(id string, q domain.ViewQuery) (domain.ViewState, error) {
	return r.update(id, func(st *domain.ViewState) error {
		if q.Status == "" {
			q.Status = domain.StatusAll
		}

		if q.City == "" {
			q.City = domain.CityAll
		}

		st.Query = q
		return nil
	})
}

// OpenDraft starts editing. A nil userID opens a blank draft with a fresh
// id; otherwise the draft is a copy of the stored record.
func (r *SessionRegistry) OpenDraft(ctx context.Context, id string, userID *int64) (domain.ViewState, error) {
	return r.update(id, func(st *domain.ViewState) error {
		if userID == nil {
			draft := r.directory.NewDraft()
			st.Draft = &draft
			return nil
		}

		user, ok := r.directory.Get(ctx, *userID)
		if !ok {
			return domain.ErrUserNotFound
		}

		st.Draft = &user
		return nil
	})
}

func (r *SessionRegistry) EditDraft(id string, patch domain.UserPatch) (domain.ViewState, error) {
	return r.update(id, func(st *domain.ViewState) error {
		if st.Draft == nil {
			return domain.ErrNoDraft
		}

		draft := patch.ApplyTo(*st.Draft)
		st.Draft = &draft
		return nil
	})
}

// SaveDraft upserts the draft into the directory and closes it.
func (r *SessionRegistry) SaveDraft(ctx context.Context, id string) (domain.UserRecord, error) {
	var saved domain.UserRecord

	_, err := r.update(id, func(st *domain.ViewState) error {
		if st.Draft == nil {
			return domain.ErrNoDraft
		}

		saved, _ = r.directory.Upsert(ctx, *st.Draft)
		st.Draft = nil

		if st.Selected != nil && st.Selected.ID == saved.ID {
			selected := saved
			st.Selected = &selected
		}

		return nil
	})

	if err != nil {
		return domain.UserRecord{}, err
	}

	r.logger.Ctx(ctx).Debug("Draft saved", zap.String("session", id), zap.Int64("user_id", saved.ID))

	return saved, nil
}

// CancelDraft discards the draft. The directory is not touched.
func (r *SessionRegistry) CancelDraft(id string) (domain.ViewState, error) {
	return r.update(id, func(st *domain.ViewState) error {
		st.Draft = nil
		return nil
	})
}

func (r *SessionRegistry) Select(ctx context.Context, id string, userID int64) (domain.ViewState, error) {
	return r.update(id, func(st *domain.ViewState) error {
		user, ok := r.directory.Get(ctx, userID)
		if !ok {
			return domain.ErrUserNotFound
		}

		st.Selected = &user
		return nil
	})
}

func (r *SessionRegistry) CloseDetail(id string) (domain.ViewState, error) {
	return r.update(id, func(st *domain.ViewState) error {
		st.Selected = nil
		return nil
	})
}

func (r *SessionRegistry) ToggleTheme(id string) (domain.ViewState, error) {
	return r.update(id, func(st *domain.ViewState) error {
		st.Theme = st.Theme.Toggle()
		return nil
	})
}

// Visible is the directory rendered through the session's filters.
func (r *SessionRegistry) Visible(ctx context.Context, id string) ([]domain.UserRecord, error) {
	st, err := r.State(id)
	if err != nil {
		return nil, err
	}

	return r.directory.View(ctx, st.Query), nil
}

func (r *SessionRegistry) Count() int {
	return r.sessions.ItemCount()
}

// Snapshot bundles the state with the visible users and the city choices
// for the filter.
func (r *SessionRegistry) Snapshot(ctx context.Context, id string) (domain.ViewSnapshot, error) {
	st, err := r.State(id)
	if err != nil {
		return domain.ViewSnapshot{}, err
	}

	all := r.directory.List(ctx)

	return domain.ViewSnapshot{
		State:   st,
		Visible: domain.ApplyView(all, st.Query),
		Cities:  domain.CityChoices(all),
	}, nil
}
