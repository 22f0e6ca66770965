package service

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"go-catalog-api/internal/model"
)

type memProductStore struct {
	mu       sync.Mutex
	products map[string]model.Product
	lastOpts model.ListProductsOptions
}

func newMemProductStore() *memProductStore {
	return &memProductStore{products: map[string]model.Product{}}
}

func (s *memProductStore) List(_ context.Context, opts model.ListProductsOptions) ([]model.Product, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.lastOpts = opts
	out := make([]model.Product, 0, len(s.products))
	for _, p := range s.products {
		out = append(out, p)
	}
	return out, nil
}

func (s *memProductStore) FindByID(_ context.Context, id string) (model.Product, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	p, ok := s.products[id]
	if !ok {
		return model.Product{}, model.ErrProductNotFound
	}
	return p, nil
}

func (s *memProductStore) ExistsByName(_ context.Context, name string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, p := range s.products {
		if p.Name == name {
			return true, nil
		}
	}
	return false, nil
}

func (s *memProductStore) Create(_ context.Context, p model.Product) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.products[p.ID] = p
	return nil
}

func (s *memProductStore) Update(_ context.Context, p model.Product) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.products[p.ID]; !ok {
		return model.ErrProductNotFound
	}
	s.products[p.ID] = p
	return nil
}

func (s *memProductStore) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.products[id]; !ok {
		return model.ErrProductNotFound
	}
	delete(s.products, id)
	return nil
}

func TestProductService(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	t.Run("list applies pagination defaults", func(t *testing.T) {
		store := newMemProductStore()
		svc := NewProductService(store)

		_, err := svc.List(ctx, model.ListProductsOptions{})
		require.NoError(t, err)
		require.Equal(t, 1, store.lastOpts.Page)
		require.Equal(t, 10, store.lastOpts.Limit)
		require.Equal(t, "price", store.lastOpts.Sort)
		require.Equal(t, "asc", store.lastOpts.SortOrder)

		_, err = svc.List(ctx, model.ListProductsOptions{Page: 3, Limit: 5, Sort: "name", SortOrder: "DESC"})
		require.NoError(t, err)
		require.Equal(t, 3, store.lastOpts.Page)
		require.Equal(t, "desc", store.lastOpts.SortOrder)
	})

	t.Run("duplicate name conflicts", func(t *testing.T) {
		svc := NewProductService(newMemProductStore())

		_, err := svc.Create(ctx, model.CreateProductRequest{Name: "Keyboard", Price: 49.90, Quantity: 3})
		require.NoError(t, err)

		_, err = svc.Create(ctx, model.CreateProductRequest{Name: "Keyboard", Price: 10, Quantity: 1})
		requireAPIError(t, err, 409, "CONFLICT")
	})

	t.Run("get missing product fails", func(t *testing.T) {
		svc := NewProductService(newMemProductStore())

		_, err := svc.Get(ctx, "nope")
		requireAPIError(t, err, 404, "NOT_FOUND")
	})

	t.Run("update patches only provided fields", func(t *testing.T) {
		svc := NewProductService(newMemProductStore())

		created, err := svc.Create(ctx, model.CreateProductRequest{
			Name:        "Keyboard",
			Description: "mechanical",
			Price:       49.90,
			Quantity:    3,
		})
		require.NoError(t, err)

		newPrice := 39.90
		updated, err := svc.Update(ctx, created.ID, model.UpdateProductRequest{Price: &newPrice})
		require.NoError(t, err)
		require.Equal(t, 39.90, updated.Price)
		require.Equal(t, "Keyboard", updated.Name)
		require.Equal(t, "mechanical", updated.Description)
	})

	t.Run("delete is terminal", func(t *testing.T) {
		svc := NewProductService(newMemProductStore())

		created, err := svc.Create(ctx, model.CreateProductRequest{Name: "Keyboard", Price: 49.90})
		require.NoError(t, err)

		require.NoError(t, svc.Delete(ctx, created.ID))
		err = svc.Delete(ctx, created.ID)
		requireAPIError(t, err, 404, "NOT_FOUND")
	})
}
