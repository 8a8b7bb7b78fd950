package service

import (
	"context"
	"strconv"
	"sync"

	"go.uber.org/zap"

	"userdir/internal/core/domain"
	"userdir/internal/core/port"
	"userdir/internal/core/telemetry"
	"userdir/pkg/config"
)

// UserDirectory owns the canonical, insertion-ordered user collection.
// Mutation happens in place under the lock; readers always get copies.
type UserDirectory struct {
	mu      sync.RWMutex
	users   []domain.UserRecord
	ids     *IDGenerator
	logger  *config.Logger
	metrics *telemetry.AppMetrics
	probe   port.Telemetry
}

type DirectoryOption func(*UserDirectory)

func WithSeed(users []domain.UserRecord) DirectoryOption {
	return func(d *UserDirectory) {
		for _, u := range users {
			d.upsertLocked(u)
		}
	}
}

func WithIDGenerator(ids *IDGenerator) DirectoryOption {
	return func(d *UserDirectory) {
		d.ids = ids
	}
}

func WithDirectoryLogger(logger *config.Logger) DirectoryOption {
	return func(d *UserDirectory) {
		d.logger = logger
	}
}

func WithDirectoryMetrics(metrics *telemetry.AppMetrics) DirectoryOption {
	return func(d *UserDirectory) {
		d.metrics = metrics
	}
}

func WithDirectoryTelemetry(probe port.Telemetry) DirectoryOption {
	return func(d *UserDirectory) {
		d.probe = probe
	}
}

func NewUserDirectory(opts ...DirectoryOption) *UserDirectory {
	d := &UserDirectory{
		users:  make([]domain.UserRecord, 0),
		ids:    NewIDGenerator(),
		logger: config.NewNopLogger(),
		probe:  telemetry.NewNoOpProbe(),
	}

	for _, opt := range opts {
		opt(d)
	}

	for _, u := range d.users {
		d.ids.Observe(u.ID)
	}

	return d
}

func (d *UserDirectory) indexOf(id int64) int {
	for i, u := range d.users {
		if u.ID == id {
			return i
		}
	}

	return -1
}

func (d *UserDirectory) upsertLocked(record domain.UserRecord) bool {
	if i := d.indexOf(record.ID); i >= 0 {
		d.users[i] = record
		return false
	}

	d.users = append(d.users, record)

	return true
}

func (d *UserDirectory) snapshot() []domain.UserRecord {
	d.mu.RLock()
	defer d.mu.RUnlock()

	out := make([]domain.UserRecord, len(d.users))
	copy(out, d.users)

	return out
}

// Create appends draft. A draft whose id is already taken overwrites the
// existing record in place, exactly like Upsert.
func (d *UserDirectory) Create(ctx context.Context, draft domain.UserRecord) domain.UserRecord {
	saved, created := d.Upsert(ctx, draft)

	if !created {
		d.logger.Ctx(ctx).Warn("Create hit an existing id, record overwritten",
			zap.Int64("id", draft.ID))
	}

	return saved
}

// Upsert replaces the record with the same id, keeping its position, or
// appends the record when the id is new. It reports whether it appended.
func (d *UserDirectory) Upsert(ctx context.Context, record domain.UserRecord) (domain.UserRecord, bool) {
	ctx, span := d.probe.StartServiceSpan(ctx, "directory", "Upsert", map[string]interface{}{
		"user.id": record.ID,
	})
	defer span.End()

	d.mu.Lock()
	created := d.upsertLocked(record)
	d.mu.Unlock()

	d.ids.Observe(record.ID)

	operation := "update"
	if created {
		operation = "create"
	}

	d.metrics.RecordUserOperation(ctx, operation)
	d.probe.RecordBusinessEvent(ctx, operation, "user", strconv.FormatInt(record.ID, 10), map[string]interface{}{
		"city":   record.City,
		"status": record.Status,
	})

	d.logger.Ctx(ctx).Debug("User upserted",
		zap.Int64("id", record.ID),
		zap.Bool("created", created))

	return record, created
}

// Delete removes the record with id. Unknown ids are ignored.
func (d *UserDirectory) Delete(ctx context.Context, id int64) bool {
	ctx, span := d.probe.StartServiceSpan(ctx, "directory", "Delete", map[string]interface{}{
		"user.id": id,
	})
	defer span.End()

	d.mu.Lock()

	i := d.indexOf(id)
	if i >= 0 {
		d.users = append(d.users[:i], d.users[i+1:]...)
	}

	d.mu.Unlock()

	span.SetAttributes(map[string]interface{}{"user.removed": i >= 0})

	if i < 0 {
		return false
	}

	d.metrics.RecordUserOperation(ctx, "delete")
	d.probe.RecordBusinessEvent(ctx, "deleted", "user", strconv.FormatInt(id, 10), nil)

	d.logger.Ctx(ctx).Debug("User deleted", zap.Int64("id", id))

	return true
}

func (d *UserDirectory) Get(ctx context.Context, id int64) (domain.UserRecord, bool) {
	d.mu.RLock()
	defer d.mu.RUnlock()

	if i := d.indexOf(id); i >= 0 {
		return d.users[i], true
	}

	return domain.UserRecord{}, false
}

func (d *UserDirectory) List(ctx context.Context) []domain.UserRecord {
	return d.snapshot()
}

func (d *UserDirectory) View(ctx context.Context, q domain.ViewQuery) []domain.UserRecord {
	return domain.ApplyView(d.snapshot(), q)
}

func (d *UserDirectory) Cities(ctx context.Context) []string {
	return domain.DistinctCities(d.snapshot())
}

// NewDraft returns an empty record carrying a fresh id. It is not part of
// the collection until it is saved.
func (d *UserDirectory) NewDraft() domain.UserRecord {
	return domain.UserRecord{ID: d.ids.Next()}
}
