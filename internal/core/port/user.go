package port

import (
	"context"

	"userdir/internal/core/domain"
)

type UserDirectory interface {
	Create(ctx context.Context, draft domain.UserRecord) domain.UserRecord
	Upsert(ctx context.Context, record domain.UserRecord) (domain.UserRecord, bool)
	Delete(ctx context.Context, id int64) bool
	Get(ctx context.Context, id int64) (domain.UserRecord, bool)
	List(ctx context.Context) []domain.UserRecord
	View(ctx context.Context, q domain.ViewQuery) []domain.UserRecord
	Cities(ctx context.Context) []string
	NewDraft() domain.UserRecord
}

type SessionService interface {
	Open() (string, domain.ViewState)
	State(id string) (domain.ViewState, error)
	Close(id string)
	SetFilters(id string, q domain.ViewQuery) (domain.ViewState, error)
	OpenDraft(ctx context.Context, id string, userID *int64) (domain.ViewState, error)
	EditDraft(id string, patch domain.UserPatch) (domain.ViewState, error)
	SaveDraft(ctx context.Context, id string) (domain.UserRecord, error)
	CancelDraft(id string) (domain.ViewState, error)
	Select(ctx context.Context, id string, userID int64) (domain.ViewState, error)
	CloseDetail(id string) (domain.ViewState, error)
	ToggleTheme(id string) (domain.ViewState, error)
	Visible(ctx context.Context, id string) ([]domain.UserRecord, error)
	Snapshot(ctx context.Context, id string) (domain.ViewSnapshot, error)
}
