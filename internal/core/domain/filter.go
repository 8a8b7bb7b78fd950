package domain

import (
	"fmt"
	"strings"
)

type StatusFilter string

const (
	StatusAll      StatusFilter = "all"
	StatusActive   StatusFilter = "active"
	StatusInactive StatusFilter = "inactive"
)

const CityAll = "all"

// DefaultCities are always offered as city filter choices, ahead of the
// cities found in the collection.
var DefaultCities = []string{"Dushanbe", "Khujand", "Kulob", "Istaravshan"}

func ParseStatusFilter(s string) (StatusFilter, error) {
	switch StatusFilter(s) {
	case "", StatusAll:
		return StatusAll, nil
	case StatusActive:
		return StatusActive, nil
	case StatusInactive:
		return StatusInactive, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrInvalidStatusFilter, s)
	}
}

// ViewQuery is the set of filters the directory table is rendered with.
type ViewQuery struct {
	Status StatusFilter `json:"status"`
	City   string       `json:"city"`
	Search string       `json:"search"`
}

func DefaultViewQuery() ViewQuery {
	return ViewQuery{Status: StatusAll, City: CityAll}
}

func (q ViewQuery) normalized() ViewQuery {
	if q.Status == "" {
		q.Status = StatusAll
	}

	return q
}

func (s StatusFilter) matches(u UserRecord) bool {
	switch s {
	case StatusActive:
		return u.Status
	case StatusInactive:
		return !u.Status
	default:
		return true
	}
}

func cityMatches(city string, u UserRecord) bool {
	return city == CityAll || u.City == city
}

func searchMatches(query string, u UserRecord) bool {
	if query == "" {
		return true
	}

	q := strings.ToLower(query)

	return strings.Contains(strings.ToLower(u.Name), q) ||
		strings.Contains(strings.ToLower(u.Email), q) ||
		strings.Contains(strings.ToLower(u.City), q)
}

func keep(users []UserRecord, pred func(UserRecord) bool) []UserRecord {
	out := make([]UserRecord, 0, len(users))

	for _, u := range users {
		if pred(u) {
			out = append(out, u)
		}
	}

	return out
}

// FilterByStatus returns the input unchanged for StatusAll.
func FilterByStatus(users []UserRecord, status StatusFilter) []UserRecord {
	if status == StatusAll || status == "" {
		return users
	}

	return keep(users, status.matches)
}

// FilterByCity matches city names exactly and case-sensitively. Only
// CityAll passes everything through; "" selects records without a city.
func FilterByCity(users []UserRecord, city string) []UserRecord {
	if city == CityAll {
		return users
	}

	return keep(users, func(u UserRecord) bool { return u.City == city })
}

// Search keeps records whose name, email or city contains query,
// ignoring case. An empty query keeps everything.
func Search(users []UserRecord, query string) []UserRecord {
	return keep(users, func(u UserRecord) bool { return searchMatches(query, u) })
}

// DistinctCities lists each city once, in the order it is first seen.
func DistinctCities(users []UserRecord) []string {
	seen := make(map[string]struct{}, len(users))
	cities := make([]string, 0)

	for _, u := range users {
		if _, ok := seen[u.City]; ok {
			continue
		}

		seen[u.City] = struct{}{}
		cities = append(cities, u.City)
	}

	return cities
}

// CityChoices merges DefaultCities with the cities present in users.
func CityChoices(users []UserRecord) []string {
	seen := make(map[string]struct{})
	choices := make([]string, 0, len(DefaultCities))

	for _, city := range append(append([]string{}, DefaultCities...), DistinctCities(users)...) {
		if _, ok := seen[city]; ok {
			continue
		}

		seen[city] = struct{}{}
		choices = append(choices, city)
	}

	return choices
}

// MatchesView is the per-record form of ApplyView.
func MatchesView(u UserRecord, q ViewQuery) bool {
	q = q.normalized()

	return cityMatches(q.City, u) && q.Status.matches(u) && searchMatches(q.Search, u)
}

// ApplyView runs the city filter, then the status filter, then search.
func ApplyView(users []UserRecord, q ViewQuery) []UserRecord {
	q = q.normalized()

	return Search(FilterByStatus(FilterByCity(users, q.City), q.Status), q.Search)
}
