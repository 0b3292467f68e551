package main

import (
	"context"
	"fmt"
	"slices"
	"strings"

	"github.com/simp-lee/coachsync/internal/app"
	"github.com/simp-lee/coachsync/internal/domain"
	"github.com/simp-lee/coachsync/internal/module/resource"
)

// domainOps erases the entity type of a hook so commands can address any
// domain by name.
type domainOps struct {
	fetch  func(ctx context.Context, filter domain.Filter) (listResult, error)
	get    func(ctx context.Context, id string) (any, error)
	delete func(ctx context.Context, id string) error
	stats  func(ctx context.Context, filter domain.Filter) (domain.Stats, error)
}

type listResult struct {
	Items      any                    `json:"items"`
	Pagination *domain.PaginationInfo `json:"pagination,omitempty"`
}

func opsOf[T domain.Entity](ops resource.Operations[T]) domainOps {
	return domainOps{
		fetch: func(ctx context.Context, filter domain.Filter) (listResult, error) {
			items, err := ops.Fetch(ctx, filter)
			if err != nil {
				return listResult{}, err
			}
			return listResult{Items: items, Pagination: ops.State().Pagination}, nil
		},
		get: func(ctx context.Context, id string) (any, error) {
			return ops.Get(ctx, id)
		},
		delete: ops.Delete,
		stats:  ops.FetchStats,
	}
}

func registry(s *app.State) map[string]domainOps {
	return map[string]domainOps{
		"users":         opsOf[domain.User](s.Users),
		"clients":       opsOf[domain.Client](s.Clients),
		"diets":         opsOf[domain.Diet](s.Diets),
		"workouts":      opsOf[domain.Workout](s.Workouts),
		"courses":       opsOf[domain.Course](s.Courses),
		"messages":      opsOf[domain.Message](s.Messages),
		"notifications": opsOf[domain.Notification](s.Notifications),
		"plans":         opsOf[domain.Plan](s.Plans),
		"feedback":      opsOf[domain.Feedback](s.Feedback),
		"reports":       opsOf[domain.Report](s.Reports),
	}
}

func lookup(s *app.State, name string) (domainOps, error) {
	reg := registry(s)
	ops, ok := reg[strings.ToLower(name)]
	if !ok {
		names := make([]string, 0, len(reg))
		for n := range reg {
			names = append(names, n)
		}
		slices.Sort(names)
		return domainOps{}, fmt.Errorf("unknown domain %q (one of: %s)", name, strings.Join(names, ", "))
	}
	return ops, nil
}

// parseFilters turns repeated key=value flags into a Filter.
func parseFilters(pairs []string) (domain.Filter, error) {
	filter := domain.Filter{}
	for _, p := range pairs {
		key, value, ok := strings.Cut(p, "=")
		key = strings.TrimSpace(key)
		if !ok || key == "" {
			return nil, fmt.Errorf("invalid --filter %q (expected key=value)", p)
		}
		filter = filter.With(key, strings.TrimSpace(value))
	}
	return filter, nil
}

func parseIDArg(s string) (string, error) {
	id, err := domain.ParseID(strings.TrimSpace(s))
	if err != nil {
		return "", err
	}
	return id.String(), nil
}
