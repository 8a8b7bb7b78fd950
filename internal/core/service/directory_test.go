package service_test

import (
	"context"
	"math"
	"sync"
	"testing"

	. "github.com/onsi/gomega"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/suite"
	"go.opentelemetry.io/otel"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"

	"userdir/internal/core/domain"
	"userdir/internal/core/service"
	"userdir/internal/core/telemetry"
	"userdir/pkg/config"

	factory "userdir/pkg/test/factory"
)

var ctx = context.Background()

type DirectoryTestSuite struct {
	suite.Suite
	Directory *service.UserDirectory
}

func (s *DirectoryTestSuite) SetupTest() {
	s.Directory = service.NewUserDirectory(service.WithSeed(domain.SampleUsers()))
}

func TestDirectoryTestSuite(t *testing.T) {
	RegisterTestingT(t)
	suite.Run(t, new(DirectoryTestSuite))
}

func ids(users []domain.UserRecord) []int64 {
	out := make([]int64, 0, len(users))
	for _, u := range users {
		out = append(out, u.ID)
	}

	return out
}

func (s *DirectoryTestSuite) TestSeedKeepsOrder() {
	Expect(ids(s.Directory.List(ctx))).To(Equal([]int64{1, 2, 3, 4}))
}

func (s *DirectoryTestSuite) TestUpsert_ExistingKeepsPosition() {
	edited := domain.UserRecord{ID: 2, Name: "Renamed", Email: "r@example.com", City: "Kulob", Status: false}

	saved, created := s.Directory.Upsert(ctx, edited)

	Expect(created).To(BeFalse())
	Expect(saved).To(Equal(edited))

	users := s.Directory.List(ctx)
	Expect(ids(users)).To(Equal([]int64{1, 2, 3, 4}))
	Expect(users[1]).To(Equal(edited))
}

func (s *DirectoryTestSuite) TestUpsert_ReplacesWholesale() {
	original, _ := s.Directory.Get(ctx, 1)
	Expect(original.Phone).NotTo(BeEmpty())

	s.Directory.Upsert(ctx, domain.UserRecord{ID: 1, Name: "Only Name"})

	got, _ := s.Directory.Get(ctx, 1)
	Expect(got.Phone).To(BeEmpty())
	Expect(got.Email).To(BeEmpty())
}

func (s *DirectoryTestSuite) TestUpsert_NewIDAppendsAtEnd() {
	user := factory.NewUser[domain.UserRecord](map[string]any{"ID": int64(99)})

	_, created := s.Directory.Upsert(ctx, user)

	Expect(created).To(BeTrue())
	Expect(ids(s.Directory.List(ctx))).To(Equal([]int64{1, 2, 3, 4, 99}))
}

func (s *DirectoryTestSuite) TestUpsert_Idempotent() {
	user := domain.UserRecord{ID: 50, Name: "Twice", City: "Khujand"}

	s.Directory.Upsert(ctx, user)
	once := s.Directory.List(ctx)

	s.Directory.Upsert(ctx, user)
	twice := s.Directory.List(ctx)

	Expect(twice).To(Equal(once))
}

func (s *DirectoryTestSuite) TestCreate_CollidingIDOverwrites() {
	saved := s.Directory.Create(ctx, domain.UserRecord{ID: 3, Name: "Overwritten"})

	Expect(saved.Name).To(Equal("Overwritten"))
	Expect(s.Directory.List(ctx)).To(HaveLen(4))

	got, ok := s.Directory.Get(ctx, 3)
	Expect(ok).To(BeTrue())
	Expect(got.Name).To(Equal("Overwritten"))
}

func (s *DirectoryTestSuite) TestCreate_FromDraft() {
	draft := s.Directory.NewDraft()
	draft.Name = "New Person"

	Expect(draft.ID).To(BeNumerically(">", 4))

	s.Directory.Create(ctx, draft)

	users := s.Directory.List(ctx)
	Expect(users[len(users)-1].Name).To(Equal("New Person"))
}

func (s *DirectoryTestSuite) TestDelete_Twice() {
	Expect(s.Directory.Delete(ctx, 2)).To(BeTrue())
	after := s.Directory.List(ctx)

	Expect(s.Directory.Delete(ctx, 2)).To(BeFalse())
	Expect(s.Directory.List(ctx)).To(Equal(after))
	Expect(ids(after)).To(Equal([]int64{1, 3, 4}))
}

func (s *DirectoryTestSuite) TestListReturnsCopy() {
	users := s.Directory.List(ctx)
	users[0].Name = "mutated"

	got, _ := s.Directory.Get(ctx, 1)
	assert.NotEqual(s.T(), "mutated", got.Name)
}

func (s *DirectoryTestSuite) TestViewAndCities() {
	s.Directory.Upsert(ctx, domain.UserRecord{ID: 10, Name: "Extra", City: "Dushanbe", Status: false})

	view := s.Directory.View(ctx, domain.ViewQuery{Status: domain.StatusInactive, City: "Dushanbe"})
	for _, u := range view {
		Expect(u.City).To(Equal("Dushanbe"))
		Expect(u.Status).To(BeFalse())
	}

	Expect(ids(view)).To(ContainElement(int64(10)))
	Expect(s.Directory.Cities(ctx)).To(Equal([]string{"Dushanbe", "Khujand", "Kulob", "Istaravshan"}))
}

func (s *DirectoryTestSuite) TestNewDraftIDsAreUnique() {
	seen := map[int64]bool{}

	var mu sync.Mutex
	var wg sync.WaitGroup

	for i := 0; i < 50; i++ {
		wg.Add(1)

		go func() {
			defer wg.Done()

			id := s.Directory.NewDraft().ID

			mu.Lock()
			seen[id] = true
			mu.Unlock()
		}()
	}

	wg.Wait()

	Expect(seen).To(HaveLen(50))
}

func (s *DirectoryTestSuite) TestNewDraftAfterMaxIDStaysPositive() {
	s.Directory.Upsert(ctx, domain.UserRecord{ID: math.MaxInt64, Name: "Edge"})

	draft := s.Directory.NewDraft()

	Expect(draft.ID).To(BeNumerically(">", 4))
	Expect(draft.ID).ToNot(Equal(int64(math.MaxInt64)))

	_, exists := s.Directory.Get(ctx, draft.ID)
	Expect(exists).To(BeFalse())
}

func (s *DirectoryTestSuite) TestDeleteIsTraced() {
	recorder := tracetest.NewSpanRecorder()
	provider := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(recorder))

	previous := otel.GetTracerProvider()
	otel.SetTracerProvider(provider)
	defer otel.SetTracerProvider(previous)

	directory := service.NewUserDirectory(
		service.WithSeed(domain.SampleUsers()),
		service.WithDirectoryTelemetry(telemetry.NewOTELProbe(config.NewNopLogger())),
	)

	Expect(directory.Delete(ctx, 3)).To(BeTrue())
	Expect(directory.Delete(ctx, 3)).To(BeFalse())

	var removed []bool
	for _, span := range recorder.Ended() {
		if span.Name() != "service.directory.Delete" {
			continue
		}

		for _, kv := range span.Attributes() {
			if kv.Key == "user.removed" {
				removed = append(removed, kv.Value.AsBool())
			}
		}
	}

	Expect(removed).To(Equal([]bool{true, false}))
}
