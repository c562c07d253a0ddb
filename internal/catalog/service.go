package catalog

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/garsonhq/backend-garson/internal/discount"
)

// ErrNotFound is returned when a menu item id matches no row.
var ErrNotFound = errors.New("catalog: not found")

const (
	cacheKeyExtras    = "catalog:extras"
	cacheKeyDiscounts = "catalog:discounts"
)

type catalogStore interface {
	ListMenuItems(ctx context.Context, includeInactive bool, limit, offset int) ([]MenuItem, error)
	CountMenuItems(ctx context.Context, includeInactive bool) (int64, error)
	GetMenuItem(ctx context.Context, id uuid.UUID) (MenuItem, error)
	ListExtras(ctx context.Context) ([]Extra, error)
	ListDiscounts(ctx context.Context, includeInactive bool) ([]discount.Discount, error)
}

// Service is the read side of the menu: items, extras, and the discount
// catalog, cached in Redis as JSON.
type Service struct {
	store catalogStore
	cache *Cache
}

// ServiceConfig groups Service dependencies.
type ServiceConfig struct {
	Store catalogStore
	Cache *Cache
}

// NewService constructs the catalog service.
func NewService(cfg ServiceConfig) *Service {
	return &Service{store: cfg.Store, cache: cfg.Cache}
}

// MenuPage is one page of menu items with pagination metadata.
type MenuPage struct {
	Items      []MenuItem `json:"items"`
	Page       int        `json:"page"`
	PerPage    int        `json:"perPage"`
	TotalItems int64      `json:"totalItems"`
}

// ListMenu returns a page of active menu items, served from cache when warm.
func (s *Service) ListMenu(ctx context.Context, page, perPage int) (MenuPage, error) {
	key := fmt.Sprintf("catalog:menu:%d:%d", page, perPage)
	var cached MenuPage
	if hit, err := s.cache.GetJSON(ctx, key, &cached); err == nil && hit {
		return cached, nil
	}

	offset := (page - 1) * perPage
	items, err := s.store.ListMenuItems(ctx, false, perPage, offset)
	if err != nil {
		return MenuPage{}, err
	}
	total, err := s.store.CountMenuItems(ctx, false)
	if err != nil {
		return MenuPage{}, err
	}
	result := MenuPage{Items: items, Page: page, PerPage: perPage, TotalItems: total}
	_ = s.cache.SetJSON(ctx, key, result)
	return result, nil
}

// GetMenuItem fetches one item by id.
func (s *Service) GetMenuItem(ctx context.Context, id uuid.UUID) (MenuItem, error) {
	return s.store.GetMenuItem(ctx, id)
}

// ListExtras returns the active modifier catalog.
func (s *Service) ListExtras(ctx context.Context) ([]Extra, error) {
	var cached []Extra
	if hit, err := s.cache.GetJSON(ctx, cacheKeyExtras, &cached); err == nil && hit {
		return cached, nil
	}
	extras, err := s.store.ListExtras(ctx)
	if err != nil {
		return nil, err
	}
	_ = s.cache.SetJSON(ctx, cacheKeyExtras, extras)
	return extras, nil
}

// ListDiscounts returns the active discount catalog.
func (s *Service) ListDiscounts(ctx context.Context) ([]discount.Discount, error) {
	var cached []discount.Discount
	if hit, err := s.cache.GetJSON(ctx, cacheKeyDiscounts, &cached); err == nil && hit {
		return cached, nil
	}
	discounts, err := s.store.ListDiscounts(ctx, false)
	if err != nil {
		return nil, err
	}
	_ = s.cache.SetJSON(ctx, cacheKeyDiscounts, discounts)
	return discounts, nil
}
