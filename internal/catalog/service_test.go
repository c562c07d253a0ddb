package catalog

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/google/uuid"
	redis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"

	"github.com/garsonhq/backend-garson/internal/discount"
)

type countingStore struct {
	items     []MenuItem
	extras    []Extra
	discounts []discount.Discount
	listCalls int
}

func (c *countingStore) ListMenuItems(_ context.Context, _ bool, limit, offset int) ([]MenuItem, error) {
	c.listCalls++
	if offset >= len(c.items) {
		return nil, nil
	}
	end := offset + limit
	if end > len(c.items) {
		end = len(c.items)
	}
	return c.items[offset:end], nil
}

func (c *countingStore) CountMenuItems(_ context.Context, _ bool) (int64, error) {
	return int64(len(c.items)), nil
}

func (c *countingStore) GetMenuItem(_ context.Context, id uuid.UUID) (MenuItem, error) {
	for _, item := range c.items {
		if item.ID == id {
			return item, nil
		}
	}
	return MenuItem{}, ErrNotFound
}

func (c *countingStore) ListExtras(_ context.Context) ([]Extra, error) {
	c.listCalls++
	return c.extras, nil
}

func (c *countingStore) ListDiscounts(_ context.Context, _ bool) ([]discount.Discount, error) {
	c.listCalls++
	return c.discounts, nil
}

func newCatalogFixture(t *testing.T) (*Service, *countingStore) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	store := &countingStore{
		items: []MenuItem{
			{ID: uuid.New(), Name: "Khinkali", Category: "mains", Price: 1000, Active: true},
			{ID: uuid.New(), Name: "Lahmajo", Category: "mains", Price: 800, Active: true},
		},
		extras: []Extra{{ID: uuid.New(), Name: "Extra cheese", Price: 200, Active: true}},
		discounts: []discount.Discount{
			{ID: uuid.New(), Name: "Regulars", Kind: discount.KindPercent, PercentBps: 1000, Active: true},
		},
	}
	svc := NewService(ServiceConfig{
		Store: store,
		Cache: NewCache(client, time.Minute),
	})
	return svc, store
}

func TestListMenuServesSecondReadFromCache(t *testing.T) {
	svc, store := newCatalogFixture(t)

	first, err := svc.ListMenu(context.Background(), 1, 50)
	require.NoError(t, err)
	require.Len(t, first.Items, 2)
	require.Equal(t, 1, store.listCalls)

	second, err := svc.ListMenu(context.Background(), 1, 50)
	require.NoError(t, err)
	require.Equal(t, first, second)
	require.Equal(t, 1, store.listCalls, "second read must come from cache")
}

func TestListExtrasAndDiscountsCached(t *testing.T) {
	svc, store := newCatalogFixture(t)

	extras, err := svc.ListExtras(context.Background())
	require.NoError(t, err)
	require.Len(t, extras, 1)

	discounts, err := svc.ListDiscounts(context.Background())
	require.NoError(t, err)
	require.Len(t, discounts, 1)

	calls := store.listCalls
	_, err = svc.ListExtras(context.Background())
	require.NoError(t, err)
	_, err = svc.ListDiscounts(context.Background())
	require.NoError(t, err)
	require.Equal(t, calls, store.listCalls)
}

func TestGetMenuItemMissing(t *testing.T) {
	svc, _ := newCatalogFixture(t)

	_, err := svc.GetMenuItem(context.Background(), uuid.New())
	require.ErrorIs(t, err, ErrNotFound)
}

func TestServiceWorksWithoutRedis(t *testing.T) {
	store := &countingStore{items: []MenuItem{{ID: uuid.New(), Name: "Khinkali", Price: 1000, Active: true}}}
	svc := NewService(ServiceConfig{Store: store, Cache: NewCache(nil, 0)})

	page, err := svc.ListMenu(context.Background(), 1, 10)
	require.NoError(t, err)
	require.Len(t, page.Items, 1)
}
