package service

import (
	"context"
	"strings"

	"github.com/mrjaketay/timeApp-sub001/internal/model"
	"github.com/mrjaketay/timeApp-sub001/internal/repository"
)

// Suggestion is one typeahead result.
type Suggestion struct {
	ID   string `json:"id"`
	Text string `json:"text"`
	Type string `json:"type"`
}

const (
	minSearchLen       = 2
	defaultSearchLimit = 10
)

type searchFetch func(*repository.SearchRepo, context.Context, repository.SearchQuery) ([]repository.SearchRow, error)

type searchKind struct {
	roles  []model.Role
	global bool
	fetch  searchFetch
	text   func(repository.SearchRow) string
}

func nameWithDetail(r repository.SearchRow) string {
	if r.Detail == "" {
		return r.Label
	}
	return r.Label + " (" + r.Detail + ")"
}

func labelOnly(r repository.SearchRow) string { return r.Label }

func uidWithHolder(r repository.SearchRow) string {
	if r.Detail == "" {
		return r.Label
	}
	return r.Label + " - " + r.Detail
}

var searchKinds = map[string]searchKind{
	"attendance": {roles: []model.Role{model.RoleEmployer}, fetch: (*repository.SearchRepo).AttendanceSubjects, text: nameWithDetail},
	"companies":  {roles: []model.Role{model.RoleAdmin}, global: true, fetch: (*repository.SearchRepo).Companies, text: labelOnly},
	"employees":  {roles: []model.Role{model.RoleEmployer}, fetch: (*repository.SearchRepo).Employees, text: nameWithDetail},
	"nfc-cards":  {roles: []model.Role{model.RoleEmployer}, fetch: (*repository.SearchRepo).Cards, text: uidWithHolder},
	"users":      {roles: []model.Role{model.RoleAdmin}, global: true, fetch: (*repository.SearchRepo).Users, text: nameWithDetail},
}

// IsSearchType reports whether kind names a searchable collection.
func IsSearchType(kind string) bool {
	_, ok := searchKinds[kind]
	return ok
}

// SearchService answers the typeahead endpoints.
type SearchService struct {
	Repo  *repository.SearchRepo
	Limit int
}

func NewSearchService(repo *repository.SearchRepo, limit int) *SearchService {
	if limit <= 0 {
		limit = defaultSearchLimit
	}
	return &SearchService{Repo: repo, Limit: limit}
}

// Search returns at most Limit suggestions of kind for q.  Short queries,
// anonymous callers and callers without the required role get an empty
// list rather than an error.
func (s *SearchService) Search(ctx context.Context, actor *Actor, kind, q string) ([]Suggestion, error) {
	out := []Suggestion{}
	k, ok := searchKinds[kind]
	if !ok {
		return nil, notFound("unknown search type")
	}
	term := strings.ToLower(strings.TrimSpace(q))
	if len([]rune(term)) < minSearchLen {
		return out, nil
	}
	if !actor.Is(k.roles...) {
		return out, nil
	}
	query := repository.SearchQuery{Term: term, Limit: s.Limit}
	if !k.global {
		if !actor.HasCompany() {
			return out, nil
		}
		query.CompanyID = actor.CompanyID
	}

	rows, err := k.fetch(s.Repo, ctx, query)
	if err != nil {
		return nil, internal("search "+kind, err)
	}
	seen := make(map[string]struct{}, len(rows))
	for _, r := range rows {
		if _, dup := seen[r.ID]; dup {
			continue
		}
		seen[r.ID] = struct{}{}
		out = append(out, Suggestion{ID: r.ID, Text: k.text(r), Type: kind})
		if len(out) == s.Limit {
			break
		}
	}
	return out, nil
}
