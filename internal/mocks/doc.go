// Package mocks provides in-memory and call-tracking implementations of the
// store, generation and scheduling interfaces for tests.
//
// Stores keep their rows in maps guarded by a mutex, so they are safe to use
// from jobs running on scheduler goroutines. Each store also exposes
// function fields (CreateFn, GetByIDFn, ...) that take precedence over the
// in-memory behavior when set:
//
//	recipes := mocks.NewMockRecipeStore()
//	recipes.GetByIDFn = func(ctx context.Context, id uuid.UUID) (*domain.Recipe, error) {
//	    return nil, store.ErrRecipeNotFound
//	}
//
// Generators and the object store record every call for later assertions.
package mocks
