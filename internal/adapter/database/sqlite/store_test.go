package sqlite_test

import (
	"context"
	"path/filepath"
	"testing"

	. "github.com/onsi/gomega"
	"github.com/stretchr/testify/suite"

	. "userdir/pkg/test"

	"userdir/internal/adapter/database/sqlite"
	"userdir/internal/core/port"
)

type StoreTestSuite struct {
	suite.Suite
	DB    *sqlite.DB
	Store *sqlite.Store
}

func (s *StoreTestSuite) SetupTest() {
	s.DB = InitTestDB()
	s.Store = sqlite.NewStore(s.DB, nil)
}

func (s *StoreTestSuite) TearDownTest() {
	CleanKV(s.T(), s.DB)
	s.DB.Close()
}

func TestStoreTestSuite(t *testing.T) {
	RegisterTestingT(t)
	suite.Run(t, new(StoreTestSuite))
}

func (s *StoreTestSuite) TestGet_MissingKey() {
	_, err := s.Store.Get(context.Background(), "todos")

	Expect(err).To(MatchError(port.ErrKeyNotFound))
}

func (s *StoreTestSuite) TestSet_InsertsThenReplaces() {
	ctx := context.Background()

	Expect(s.Store.Set(ctx, "todos", []byte(`[]`))).To(Succeed())
	Expect(s.Store.Set(ctx, "todos", []byte(`[{"id":1}]`))).To(Succeed())

	got, err := s.Store.Get(ctx, "todos")

	Expect(err).To(BeNil())
	Expect(string(got)).To(Equal(`[{"id":1}]`))

	var rows int
	Expect(s.DB.QueryRow("SELECT COUNT(*) FROM kv_entries").Scan(&rows)).To(Succeed())
	Expect(rows).To(Equal(1))
}

func (s *StoreTestSuite) TestDelete() {
	ctx := context.Background()

	_ = s.Store.Set(ctx, "todos", []byte(`[]`))

	Expect(s.Store.Delete(ctx, "todos")).To(Succeed())
	Expect(s.Store.Delete(ctx, "todos")).To(Succeed())

	_, err := s.Store.Get(ctx, "todos")
	Expect(err).To(MatchError(port.ErrKeyNotFound))
}

func TestOpen_InMemoryIsMigrated(t *testing.T) {
	RegisterTestingT(t)
	ctx := context.Background()

	db, err := sqlite.Open(":memory:", MigrationsPath(), "error")
	Expect(err).To(BeNil())
	defer db.Close()

	store := sqlite.NewStore(db, nil)

	Expect(store.Set(ctx, "todos", []byte(`[]`))).To(Succeed())

	got, err := store.Get(ctx, "todos")
	Expect(err).To(BeNil())
	Expect(string(got)).To(Equal(`[]`))
}

func TestOpen_FileSurvivesReopen(t *testing.T) {
	RegisterTestingT(t)
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "nested", "userdir.db")

	db, err := sqlite.Open(path, MigrationsPath(), "error")
	Expect(err).To(BeNil())
	Expect(sqlite.NewStore(db, nil).Set(ctx, "todos", []byte(`[{"id":1}]`))).To(Succeed())
	Expect(db.Close()).To(Succeed())

	db, err = sqlite.Open(path, MigrationsPath(), "error")
	Expect(err).To(BeNil())
	defer db.Close()

	got, err := sqlite.NewStore(db, nil).Get(ctx, "todos")
	Expect(err).To(BeNil())
	Expect(string(got)).To(Equal(`[{"id":1}]`))
}
