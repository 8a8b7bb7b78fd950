package service_test

import (
	"context"
	"testing"

	. "github.com/onsi/gomega"
	"github.com/stretchr/testify/suite"

	"userdir/internal/adapter/database/keyvalue"
	"userdir/internal/adapter/database/memory"
	"userdir/internal/core/domain"
	"userdir/internal/core/service"
)

type TodoServiceTestSuite struct {
	suite.Suite
	Service *service.TodoService
}

func (s *TodoServiceTestSuite) SetupTest() {
	repo := keyvalue.NewTodoRepository(memory.NewStore())

	s.Service = service.NewTodoService(repo, nil, nil, nil)
}

func TestTodoServiceTestSuite(t *testing.T) {
	RegisterTestingT(t)
	suite.Run(t, new(TodoServiceTestSuite))
}

func (s *TodoServiceTestSuite) TestList_Empty() {
	todos, err := s.Service.List(context.Background())

	Expect(err).To(BeNil())
	Expect(todos).To(BeEmpty())
}

func (s *TodoServiceTestSuite) TestAddUpdateRemove() {
	ctx := context.Background()

	todo, err := s.Service.Add(ctx, "buy milk")
	Expect(err).To(BeNil())
	Expect(todo.ID).To(Equal(1))

	todo.Completed = true
	saved, err := s.Service.Update(ctx, todo)
	Expect(err).To(BeNil())
	Expect(saved.Completed).To(BeTrue())

	todos, _ := s.Service.List(ctx)
	Expect(todos).To(Equal([]domain.TodoRecord{{ID: 1, Text: "buy milk", Completed: true}}))

	Expect(s.Service.Remove(ctx, 1)).To(Succeed())

	todos, _ = s.Service.List(ctx)
	Expect(todos).To(BeEmpty())
}
