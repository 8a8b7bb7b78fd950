package response

import "userdir/internal/core/domain"

type UserResponse struct {
	domain.UserRecord
	StatusLabel  string `json:"status_label"`
	DisplayImage string `json:"display_image"`
}

func NewUserResponse(u domain.UserRecord) UserResponse {
	return UserResponse{
		UserRecord:   u,
		StatusLabel:  u.StatusLabel(),
		DisplayImage: u.DisplayImage(),
	}
}

func NewUserResponses(users []domain.UserRecord) []UserResponse {
	out := make([]UserResponse, 0, len(users))
	for _, u := range users {
		out = append(out, NewUserResponse(u))
	}

	return out
}

type UserListResponse struct {
	Size  int              `json:"size"`
	Query domain.ViewQuery `json:"query"`
	Data  []UserResponse   `json:"users"`
}

type DeleteResponse struct {
	ID      int64 `json:"id"`
	Removed bool  `json:"removed"`
}

type CitiesResponse struct {
	Cities  []string `json:"cities"`
	Choices []string `json:"choices"`
}

type SessionResponse struct {
	ID      string           `json:"id"`
	State   domain.ViewState `json:"state"`
	Visible []UserResponse   `json:"visible"`
	Cities  []string         `json:"cities"`
}

type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

type ResponseError struct {
	Code    string            `json:"code"`
	Errors  []ValidationError `json:"errors"`
	Details any               `json:"details,omitempty"`
}

type SuccessResponse struct {
	Data    any    `json:"data,omitempty"`
	Message string `json:"message,omitempty"`
}

type ErrorResponse struct {
	Error ResponseError `json:"error"`
}
