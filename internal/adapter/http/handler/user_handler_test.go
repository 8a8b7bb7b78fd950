package handler_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	. "github.com/onsi/gomega"
	"github.com/stretchr/testify/suite"

	httpadapter "userdir/internal/adapter/http"
	"userdir/internal/adapter/http/handler"
	"userdir/internal/core/domain"
	"userdir/internal/core/service"
)

type envelope struct {
	Data    json.RawMessage `json:"data"`
	Message string          `json:"message"`
	Error   *struct {
		Code   string `json:"code"`
		Errors []struct {
			Field   string `json:"field"`
			Message string `json:"message"`
		} `json:"errors"`
	} `json:"error"`
}

func perform(router *gin.Engine, method, path, body string) (*httptest.ResponseRecorder, envelope) {
	req, _ := http.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")

	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	var env envelope
	_ = json.Unmarshal(w.Body.Bytes(), &env)

	return w, env
}

type UserHandlerSuite struct {
	suite.Suite
	Directory *service.UserDirectory
	Router    *gin.Engine
}

func (s *UserHandlerSuite) SetupTest() {
	s.Directory = service.NewUserDirectory(service.WithSeed(domain.SampleUsers()))

	s.Router = httpadapter.SetupRouterForTests(httpadapter.HandlersConfig{
		UserHandler: handler.NewUserHandler(s.Directory, nil),
	})
}

func TestUserHandlerSuite(t *testing.T) {
	RegisterTestingT(t)
	suite.Run(t, new(UserHandlerSuite))
}

type userList struct {
	Size  int                 `json:"size"`
	Users []domain.UserRecord `json:"users"`
}

func (s *UserHandlerSuite) TestListUsers_All() {
	w, _ := perform(s.Router, "GET", "/users", "")

	Expect(w.Code).To(Equal(http.StatusOK))

	var list userList
	Expect(json.Unmarshal(w.Body.Bytes(), &list)).To(Succeed())
	Expect(list.Size).To(Equal(4))
}

func (s *UserHandlerSuite) TestListUsers_ComposedFilters() {
	s.Directory.Upsert(ctx, domain.UserRecord{ID: 20, Name: "Anna", Email: "anna@x.tj", City: "Kulob", Status: true})

	w, _ := perform(s.Router, "GET", "/users?status=active&city=Kulob&search=ANN", "")

	Expect(w.Code).To(Equal(http.StatusOK))

	var list userList
	_ = json.Unmarshal(w.Body.Bytes(), &list)

	for _, u := range list.Users {
		Expect(u.City).To(Equal("Kulob"))
		Expect(u.Status).To(BeTrue())
		Expect(strings.ToLower(u.Name + u.Email + u.City)).To(ContainSubstring("ann"))
	}

	Expect(list.Users).To(ContainElement(HaveField("ID", int64(20))))
}

func (s *UserHandlerSuite) TestListUsers_InvalidStatus() {
	w, env := perform(s.Router, "GET", "/users?status=sleeping", "")

	Expect(w.Code).To(Equal(http.StatusBadRequest))
	Expect(env.Error.Code).To(Equal("VALIDATION_ERROR"))
	Expect(env.Error.Errors[0].Field).To(Equal("status"))
}

func (s *UserHandlerSuite) TestListCities() {
	w, env := perform(s.Router, "GET", "/users/cities", "")

	Expect(w.Code).To(Equal(http.StatusOK))

	var cities struct {
		Cities  []string `json:"cities"`
		Choices []string `json:"choices"`
	}
	Expect(json.Unmarshal(env.Data, &cities)).To(Succeed())
	Expect(cities.Cities).To(Equal([]string{"Dushanbe", "Khujand", "Kulob", "Istaravshan"}))
}

func (s *UserHandlerSuite) TestNewDraftIsNotStored() {
	w, env := perform(s.Router, "GET", "/users/draft", "")

	Expect(w.Code).To(Equal(http.StatusOK))

	var draft domain.UserRecord
	Expect(json.Unmarshal(env.Data, &draft)).To(Succeed())
	Expect(draft.ID).To(BeNumerically(">", 0))
	Expect(s.Directory.List(ctx)).To(HaveLen(4))
}

func (s *UserHandlerSuite) TestCreateUser_GeneratesID() {
	w, env := perform(s.Router, "POST", "/users", `{"name":"Zarina","email":"z@x.tj","city":"Khujand","status":true}`)

	Expect(w.Code).To(Equal(http.StatusCreated))

	var created domain.UserRecord
	_ = json.Unmarshal(env.Data, &created)
	Expect(created.ID).To(BeNumerically(">", 4))

	users := s.Directory.List(ctx)
	Expect(users).To(HaveLen(5))
	Expect(users[4].Name).To(Equal("Zarina"))
}

func (s *UserHandlerSuite) TestUpsertUser_ExistingAndNew() {
	w, _ := perform(s.Router, "PUT", "/users/2", `{"id":999,"name":"Replaced","city":"Kulob"}`)
	Expect(w.Code).To(Equal(http.StatusOK))

	got, _ := s.Directory.Get(ctx, 2)
	Expect(got.Name).To(Equal("Replaced"))

	_, found := s.Directory.Get(ctx, 999)
	Expect(found).To(BeFalse())

	w, _ = perform(s.Router, "PUT", "/users/77", `{"name":"Appended"}`)
	Expect(w.Code).To(Equal(http.StatusCreated))
	Expect(s.Directory.List(ctx)[4].ID).To(Equal(int64(77)))
}

func (s *UserHandlerSuite) TestGetUser() {
	w, env := perform(s.Router, "GET", "/users/1", "")
	Expect(w.Code).To(Equal(http.StatusOK))

	var user struct {
		ID           int64  `json:"id"`
		StatusLabel  string `json:"status_label"`
		DisplayImage string `json:"display_image"`
	}
	_ = json.Unmarshal(env.Data, &user)
	Expect(user.ID).To(Equal(int64(1)))
	Expect(user.StatusLabel).To(BeElementOf("Active", "Inactive"))
	Expect(user.DisplayImage).NotTo(BeEmpty())

	w, _ = perform(s.Router, "GET", "/users/404", "")
	Expect(w.Code).To(Equal(http.StatusNotFound))

	w, _ = perform(s.Router, "GET", "/users/abc", "")
	Expect(w.Code).To(Equal(http.StatusBadRequest))
}

func (s *UserHandlerSuite) TestDeleteUser_Twice() {
	w, env := perform(s.Router, "DELETE", "/users/3", "")
	Expect(w.Code).To(Equal(http.StatusOK))
	Expect(string(env.Data)).To(MatchJSON(`{"id":3,"removed":true}`))

	w, env = perform(s.Router, "DELETE", "/users/3", "")
	Expect(w.Code).To(Equal(http.StatusOK))
	Expect(string(env.Data)).To(MatchJSON(`{"id":3,"removed":false}`))

	Expect(s.Directory.List(ctx)).To(HaveLen(3))
}
