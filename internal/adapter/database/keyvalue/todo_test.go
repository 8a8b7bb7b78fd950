package keyvalue_test

import (
	"context"
	"errors"
	"testing"

	. "github.com/onsi/gomega"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/suite"
	"github.com/uptrace/opentelemetry-go-extra/otelzap"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	. "userdir/pkg/test"

	"userdir/internal/adapter/database/keyvalue"
	"userdir/internal/adapter/database/memory"
	"userdir/internal/adapter/database/sqlite"
	"userdir/internal/core/domain"
	"userdir/internal/core/port"
	"userdir/pkg/config"
)

var ctx = context.Background()

type TodoRepositoryTestSuite struct {
	suite.Suite
	Store port.KeyValueStore
	Repo  *keyvalue.TodoRepository
	Logs  *observer.ObservedLogs
}

func (s *TodoRepositoryTestSuite) SetupTest() {
	core, logs := observer.New(zapcore.DebugLevel)
	logger := &config.Logger{Logger: otelzap.New(zap.New(core)), ServiceName: "test"}

	s.Store = memory.NewStore()
	s.Logs = logs
	s.Repo = keyvalue.NewTodoRepository(s.Store, keyvalue.WithLogger(logger))
}

func TestTodoRepositoryTestSuite(t *testing.T) {
	RegisterTestingT(t)
	suite.Run(t, new(TodoRepositoryTestSuite))
}

func (s *TodoRepositoryTestSuite) TestList_MissingKeyIsEmpty() {
	todos, err := s.Repo.List(ctx)

	Expect(err).To(BeNil())
	Expect(todos).To(BeEmpty())
}

func (s *TodoRepositoryTestSuite) TestAddRemoveKeepsRemainingIDs() {
	first, err := s.Repo.Add(ctx, "buy milk")
	Expect(err).To(BeNil())
	Expect(first).To(Equal(domain.TodoRecord{ID: 1, Text: "buy milk", Completed: false}))

	second, err := s.Repo.Add(ctx, "call mom")
	Expect(err).To(BeNil())
	Expect(second.ID).To(Equal(2))

	Expect(s.Repo.Remove(ctx, 1)).To(Succeed())

	todos, err := s.Repo.List(ctx)
	Expect(err).To(BeNil())
	Expect(todos).To(Equal([]domain.TodoRecord{{ID: 2, Text: "call mom"}}))
}

func (s *TodoRepositoryTestSuite) TestStoredPayloadUsesLegacyFieldName() {
	_, _ = s.Repo.Add(ctx, "buy milk")

	raw, err := s.Store.Get(ctx, keyvalue.DefaultTodoKey)

	Expect(err).To(BeNil())
	Expect(string(raw)).To(MatchJSON(`[{"id":1,"text":"buy milk","complated":false}]`))
}

func (s *TodoRepositoryTestSuite) TestUpdate_ReplacesMatchingRecord() {
	_, _ = s.Repo.Add(ctx, "buy milk")
	_, _ = s.Repo.Add(ctx, "call mom")

	updated, err := s.Repo.Update(ctx, domain.TodoRecord{ID: 1, Text: "buy oat milk", Completed: true})

	Expect(err).To(BeNil())
	Expect(updated.Text).To(Equal("buy oat milk"))

	todos, _ := s.Repo.List(ctx)
	Expect(todos).To(Equal([]domain.TodoRecord{
		{ID: 1, Text: "buy oat milk", Completed: true},
		{ID: 2, Text: "call mom"},
	}))
}

func (s *TodoRepositoryTestSuite) TestUpdate_UnknownIDIsNoOp() {
	_, _ = s.Repo.Add(ctx, "buy milk")

	input := domain.TodoRecord{ID: 42, Text: "ghost", Completed: true}
	returned, err := s.Repo.Update(ctx, input)

	Expect(err).To(BeNil())
	Expect(returned).To(Equal(input))

	todos, _ := s.Repo.List(ctx)
	Expect(todos).To(Equal([]domain.TodoRecord{{ID: 1, Text: "buy milk"}}))
}

func (s *TodoRepositoryTestSuite) TestRemove_UnknownIDIsNoOp() {
	_, _ = s.Repo.Add(ctx, "buy milk")

	assert.NoError(s.T(), s.Repo.Remove(ctx, 9))

	todos, _ := s.Repo.List(ctx)
	Expect(todos).To(HaveLen(1))
}

func (s *TodoRepositoryTestSuite) TestList_MalformedPayloadIsEmptyAndWarns() {
	Expect(s.Store.Set(ctx, keyvalue.DefaultTodoKey, []byte("{not json"))).To(Succeed())

	todos, err := s.Repo.List(ctx)

	Expect(err).To(BeNil())
	Expect(todos).To(BeEmpty())
	Expect(s.Logs.FilterLevelExact(zapcore.WarnLevel).Len()).To(Equal(1))
}

func (s *TodoRepositoryTestSuite) TestAdd_AfterMalformedPayloadStartsOver() {
	Expect(s.Store.Set(ctx, keyvalue.DefaultTodoKey, []byte("garbage"))).To(Succeed())

	todo, err := s.Repo.Add(ctx, "fresh")

	Expect(err).To(BeNil())
	Expect(todo.ID).To(Equal(1))
}

func (s *TodoRepositoryTestSuite) TestAdd_LengthPlusOneCollisionIsLogged() {
	_, _ = s.Repo.Add(ctx, "one")
	_, _ = s.Repo.Add(ctx, "two")
	_ = s.Repo.Remove(ctx, 1)

	todo, err := s.Repo.Add(ctx, "three")

	Expect(err).To(BeNil())
	Expect(todo.ID).To(Equal(2))

	todos, _ := s.Repo.List(ctx)
	Expect(todos).To(HaveLen(2))
	Expect(todos[0].ID).To(Equal(todos[1].ID))

	warnings := s.Logs.FilterMessage("New todo id is already in use").All()
	Expect(warnings).To(HaveLen(1))
}

func (s *TodoRepositoryTestSuite) TestAdd_MaxPlusOneAvoidsCollision() {
	repo := keyvalue.NewTodoRepository(memory.NewStore(), keyvalue.WithIDStrategy(domain.MaxPlusOne))

	_, _ = repo.Add(ctx, "one")
	_, _ = repo.Add(ctx, "two")
	_ = repo.Remove(ctx, 1)

	todo, err := repo.Add(ctx, "three")

	Expect(err).To(BeNil())
	Expect(todo.ID).To(Equal(3))
}

func (s *TodoRepositoryTestSuite) TestWithKey_IsolatesCollections() {
	other := keyvalue.NewTodoRepository(s.Store, keyvalue.WithKey("todos:other"))

	_, _ = s.Repo.Add(ctx, "mine")

	todos, err := other.List(ctx)

	Expect(err).To(BeNil())
	Expect(todos).To(BeEmpty())
	Expect(other.Key()).To(Equal("todos:other"))
}

func (s *TodoRepositoryTestSuite) TestConcurrentAddsAreSerialized() {
	repo := keyvalue.NewTodoRepository(memory.NewStore(), keyvalue.WithIDStrategy(domain.MaxPlusOne))

	done := make(chan struct{})

	for i := 0; i < 20; i++ {
		go func() {
			_, _ = repo.Add(ctx, "parallel")
			done <- struct{}{}
		}()
	}

	for i := 0; i < 20; i++ {
		<-done
	}

	todos, _ := repo.List(ctx)
	Expect(todos).To(HaveLen(20))
}

type failingStore struct {
	memory.Store
}

var errStoreDown = errors.New("store down")

func (f *failingStore) Get(ctx context.Context, key string) ([]byte, error) {
	return nil, errStoreDown
}

func (s *TodoRepositoryTestSuite) TestStoreErrorsPropagate() {
	repo := keyvalue.NewTodoRepository(&failingStore{})

	_, err := repo.List(ctx)
	Expect(err).To(MatchError(errStoreDown))

	_, err = repo.Add(ctx, "x")
	Expect(err).To(MatchError(errStoreDown))
}

func TestTodoRepository_SQLiteStore(t *testing.T) {
	RegisterTestingT(t)

	db := InitTestDB()
	defer db.Close()

	repo := keyvalue.NewTodoRepository(sqlite.NewStore(db, nil))

	_, err := repo.Add(ctx, "buy milk")
	Expect(err).To(BeNil())
	_, err = repo.Add(ctx, "call mom")
	Expect(err).To(BeNil())
	Expect(repo.Remove(ctx, 1)).To(Succeed())

	todos, err := repo.List(ctx)
	Expect(err).To(BeNil())
	Expect(todos).To(Equal([]domain.TodoRecord{{ID: 2, Text: "call mom"}}))
}
