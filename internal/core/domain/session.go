package domain

import "errors"

var (
	ErrUserNotFound        = errors.New("user not found")
	ErrSessionNotFound     = errors.New("session not found")
	ErrNoDraft             = errors.New("no draft is open")
	ErrInvalidStatusFilter = errors.New("invalid status filter")
)

type Theme string

const (
	ThemeLight Theme = "light"
	ThemeDark  Theme = "dark"
)

func (t Theme) Toggle() Theme {
	if t == ThemeDark {
		return ThemeLight
	}

	return ThemeDark
}

// ViewState is what a directory screen holds besides the collection:
// active filters, the record being edited and the record being viewed.
type ViewState struct {
	Query    ViewQuery   `json:"query"`
	Draft    *UserRecord `json:"draft,omitempty"`
	Selected *UserRecord `json:"selected,omitempty"`
	Theme    Theme       `json:"theme"`
}

func NewViewState() ViewState {
	return ViewState{
		Query: DefaultViewQuery(),
		Theme: ThemeLight,
	}
}

func (s *ViewState) IsEditing() bool {
	return s.Draft != nil
}

func (s *ViewState) IsDetailOpen() bool {
	return s.Selected != nil
}

// ViewSnapshot is everything a screen needs to render at once.
type ViewSnapshot struct {
	State   ViewState    `json:"state"`
	Visible []UserRecord `json:"visible"`
	Cities  []string     `json:"cities"`
}
