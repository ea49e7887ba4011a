package mocks

import (
	"context"
	"database/sql"
	"sync"

	"github.com/google/uuid"
	"github.com/phrazzld/mise-api/internal/domain"
	"github.com/phrazzld/mise-api/internal/store"
)

// MockRecipeStore implements store.RecipeStore in memory.
type MockRecipeStore struct {
	GetByIDFn      func(ctx context.Context, id uuid.UUID) (*domain.Recipe, error)
	UpdateFn       func(ctx context.Context, recipe *domain.Recipe) error
	SetStatusFn    func(ctx context.Context, id uuid.UUID, status domain.RecipeStatus) error
	SetScheduledFn func(ctx context.Context, id uuid.UUID, scheduled bool) error
	AddImageFn     func(ctx context.Context, image *domain.RecipeImage) error

	mu          sync.Mutex
	recipes     map[uuid.UUID]domain.Recipe
	steps       map[uuid.UUID]domain.Step
	tags        map[uuid.UUID]domain.Tag
	essentials  map[uuid.UUID]domain.Essential
	comments    map[uuid.UUID]domain.CookingComment
	ingredients map[uuid.UUID][]string
	images      map[uuid.UUID][]domain.RecipeImage

	// TxCount counts WithTx calls.
	TxCount int
}

var _ store.RecipeStore = (*MockRecipeStore)(nil)

// NewMockRecipeStore creates an empty store.
func NewMockRecipeStore() *MockRecipeStore {
	return &MockRecipeStore{
		recipes:     make(map[uuid.UUID]domain.Recipe),
		steps:       make(map[uuid.UUID]domain.Step),
		tags:        make(map[uuid.UUID]domain.Tag),
		essentials:  make(map[uuid.UUID]domain.Essential),
		comments:    make(map[uuid.UUID]domain.CookingComment),
		ingredients: make(map[uuid.UUID][]string),
		images:      make(map[uuid.UUID][]domain.RecipeImage),
	}
}

// Put seeds a recipe and the ingredient names IngredientNames returns for it.
func (m *MockRecipeStore) Put(recipe *domain.Recipe, ingredients ...string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.recipes[recipe.ID] = *recipe
	m.ingredients[recipe.ID] = ingredients
}

// PutStep seeds a step.
func (m *MockRecipeStore) PutStep(step *domain.Step) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.steps[step.ID] = *step
}

// PutTag seeds a tag.
func (m *MockRecipeStore) PutTag(tag *domain.Tag) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.tags[tag.ID] = *tag
}

// PutEssential seeds an essential.
func (m *MockRecipeStore) PutEssential(e *domain.Essential) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.essentials[e.ID] = *e
}

// PutComment seeds a cooking comment.
func (m *MockRecipeStore) PutComment(c *domain.CookingComment) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.comments[c.ID] = *c
}

// Images returns the images attached to a recipe.
func (m *MockRecipeStore) Images(recipeID uuid.UUID) []domain.RecipeImage {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]domain.RecipeImage(nil), m.images[recipeID]...)
}

func (m *MockRecipeStore) Create(_ context.Context, recipe *domain.Recipe) error {
	if err := recipe.Validate(); err != nil {
		return store.ErrInvalidEntity
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if _, exists := m.recipes[recipe.ID]; exists {
		return store.ErrDuplicate
	}
	m.recipes[recipe.ID] = *recipe
	return nil
}

func (m *MockRecipeStore) GetByID(ctx context.Context, id uuid.UUID) (*domain.Recipe, error) {
	if m.GetByIDFn != nil {
		return m.GetByIDFn(ctx, id)
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	r, ok := m.recipes[id]
	if !ok || r.IsDeleted {
		return nil, store.ErrRecipeNotFound
	}
	return &r, nil
}

func (m *MockRecipeStore) Update(ctx context.Context, recipe *domain.Recipe) error {
	if m.UpdateFn != nil {
		return m.UpdateFn(ctx, recipe)
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.recipes[recipe.ID]; !ok {
		return store.ErrRecipeNotFound
	}
	m.recipes[recipe.ID] = *recipe
	return nil
}

func (m *MockRecipeStore) SetStatus(ctx context.Context, id uuid.UUID, status domain.RecipeStatus) error {
	if m.SetStatusFn != nil {
		return m.SetStatusFn(ctx, id, status)
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	r, ok := m.recipes[id]
	if !ok {
		return store.ErrRecipeNotFound
	}
	r.Status = status
	m.recipes[id] = r
	return nil
}

func (m *MockRecipeStore) SetScheduled(ctx context.Context, id uuid.UUID, scheduled bool) error {
	if m.SetScheduledFn != nil {
		return m.SetScheduledFn(ctx, id, scheduled)
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	r, ok := m.recipes[id]
	if !ok {
		return store.ErrRecipeNotFound
	}
	r.IsScheduled = scheduled
	m.recipes[id] = r
	return nil
}

func (m *MockRecipeStore) IngredientNames(_ context.Context, id uuid.UUID) ([]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.recipes[id]; !ok {
		return nil, store.ErrRecipeNotFound
	}
	return append([]string(nil), m.ingredients[id]...), nil
}

func (m *MockRecipeStore) HasImages(_ context.Context, id uuid.UUID) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.images[id]) > 0, nil
}

func (m *MockRecipeStore) AddImage(ctx context.Context, image *domain.RecipeImage) error {
	if m.AddImageFn != nil {
		return m.AddImageFn(ctx, image)
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.recipes[image.RecipeID]; !ok {
		return store.ErrRecipeNotFound
	}
	m.images[image.RecipeID] = append(m.images[image.RecipeID], *image)
	return nil
}

func (m *MockRecipeStore) GetStep(_ context.Context, id uuid.UUID) (*domain.Step, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.steps[id]
	if !ok {
		return nil, store.ErrStepNotFound
	}
	return &s, nil
}

func (m *MockRecipeStore) UpdateStep(_ context.Context, step *domain.Step) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.steps[step.ID]; !ok {
		return store.ErrStepNotFound
	}
	m.steps[step.ID] = *step
	return nil
}

func (m *MockRecipeStore) GetTag(_ context.Context, id uuid.UUID) (*domain.Tag, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	t, ok := m.tags[id]
	if !ok {
		return nil, store.ErrTagNotFound
	}
	return &t, nil
}

func (m *MockRecipeStore) UpdateTag(_ context.Context, tag *domain.Tag) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.tags[tag.ID]; !ok {
		return store.ErrTagNotFound
	}
	m.tags[tag.ID] = *tag
	return nil
}

func (m *MockRecipeStore) GetEssential(_ context.Context, id uuid.UUID) (*domain.Essential, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	e, ok := m.essentials[id]
	if !ok {
		return nil, store.ErrEssentialNotFound
	}
	return &e, nil
}

func (m *MockRecipeStore) UpdateEssential(_ context.Context, e *domain.Essential) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.essentials[e.ID]; !ok {
		return store.ErrEssentialNotFound
	}
	m.essentials[e.ID] = *e
	return nil
}

func (m *MockRecipeStore) GetComment(_ context.Context, id uuid.UUID) (*domain.CookingComment, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	c, ok := m.comments[id]
	if !ok {
		return nil, store.ErrCommentNotFound
	}
	return &c, nil
}

func (m *MockRecipeStore) UpdateComment(_ context.Context, c *domain.CookingComment) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.comments[c.ID]; !ok {
		return store.ErrCommentNotFound
	}
	m.comments[c.ID] = *c
	return nil
}

// WithTx returns the same store; transactions are not simulated.
func (m *MockRecipeStore) WithTx(_ *sql.Tx) store.RecipeStore {
	m.mu.Lock()
	m.TxCount++
	m.mu.Unlock()
	return m
}

// MockStarchStore implements store.StarchPreparationStore in memory.
type MockStarchStore struct {
	SetImageURLFn func(ctx context.Context, id uuid.UUID, url string) error

	mu    sync.Mutex
	preps map[uuid.UUID]domain.StarchPreparation
}

var _ store.StarchPreparationStore = (*MockStarchStore)(nil)

// NewMockStarchStore creates an empty store.
func NewMockStarchStore() *MockStarchStore {
	return &MockStarchStore{preps: make(map[uuid.UUID]domain.StarchPreparation)}
}

func (m *MockStarchStore) Create(_ context.Context, prep *domain.StarchPreparation) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, exists := m.preps[prep.ID]; exists {
		return store.ErrDuplicate
	}
	m.preps[prep.ID] = *prep
	return nil
}

func (m *MockStarchStore) GetByID(_ context.Context, id uuid.UUID) (*domain.StarchPreparation, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.preps[id]
	if !ok {
		return nil, store.ErrStarchPreparationNotFound
	}
	p.Steps = append([]string(nil), p.Steps...)
	return &p, nil
}

func (m *MockStarchStore) Update(_ context.Context, prep *domain.StarchPreparation) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.preps[prep.ID]; !ok {
		return store.ErrStarchPreparationNotFound
	}
	m.preps[prep.ID] = *prep
	return nil
}

func (m *MockStarchStore) SetImageURL(ctx context.Context, id uuid.UUID, url string) error {
	if m.SetImageURLFn != nil {
		return m.SetImageURLFn(ctx, id, url)
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.preps[id]
	if !ok {
		return store.ErrStarchPreparationNotFound
	}
	p.ImageURL = url
	m.preps[id] = p
	return nil
}
