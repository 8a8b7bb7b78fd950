package request

import "userdir/internal/core/domain"

type UserRequest struct {
	ID     int64  `json:"id,omitempty"`
	Name   string `json:"name,omitempty" validate:"max=255"`
	Email  string `json:"email,omitempty" validate:"max=255"`
	City   string `json:"city,omitempty" validate:"max=255"`
	Phone  string `json:"phone,omitempty" validate:"max=64"`
	Img    string `json:"img,omitempty" validate:"max=2048"`
	Status bool   `json:"status"`
}

func (r UserRequest) ToRecord() domain.UserRecord {
	return domain.UserRecord{
		ID:     r.ID,
		Name:   r.Name,
		Email:  r.Email,
		City:   r.City,
		Phone:  r.Phone,
		Img:    r.Img,
		Status: r.Status,
	}
}

// UserPatchRequest edits a draft field by field; absent fields stay as
// they are.
type UserPatchRequest struct {
	Name   *string `json:"name,omitempty" validate:"omitempty,max=255"`
	Email  *string `json:"email,omitempty" validate:"omitempty,max=255"`
	City   *string `json:"city,omitempty" validate:"omitempty,max=255"`
	Phone  *string `json:"phone,omitempty" validate:"omitempty,max=64"`
	Img    *string `json:"img,omitempty" validate:"omitempty,max=2048"`
	Status *bool   `json:"status,omitempty"`
}

func (r UserPatchRequest) ToPatch() domain.UserPatch {
	return domain.UserPatch{
		Name:   r.Name,
		Email:  r.Email,
		City:   r.City,
		Phone:  r.Phone,
		Img:    r.Img,
		Status: r.Status,
	}
}

type ViewQueryRequest struct {
	Status string `json:"status" form:"status" validate:"omitempty,oneof=all active inactive"`
	City   string `json:"city" form:"city" validate:"max=255"`
	Search string `json:"search" form:"search" validate:"max=255"`
}

func (r ViewQueryRequest) ToQuery() domain.ViewQuery {
	status, _ := domain.ParseStatusFilter(r.Status)

	q := domain.ViewQuery{Status: status, City: r.City, Search: r.Search}
	if q.City == "" {
		q.City = domain.CityAll
	}

	return q
}

// Todo text is stored as given, empty included.
type TodoRequest struct {
	Text string `json:"text"`
}

type TodoUpdateRequest struct {
	Text      string `json:"text"`
	Completed bool   `json:"complated"`
}
