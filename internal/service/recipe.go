package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/cases"

	"github.com/recipebox/recipebox-go/internal/model"
	"github.com/recipebox/recipebox-go/internal/repository"
)

// maxCategoryLength matches the width of the category column.
const maxCategoryLength = 255

var (
	ErrFieldsRequired   = errors.New("name and description are required")
	ErrCategoryRequired = errors.New("category is required")
	ErrCategoryTooLong  = errors.New("category must be at most 255 characters")
	ErrRecipeNotFound   = errors.New("recipe not found")
)

// RecipeService handles recipe business logic. Every method takes the ID of
// the authenticated owner and never touches another owner's recipes.
type RecipeService struct {
	repo *repository.RecipeRepository
}

// NewRecipeService creates a new RecipeService.
func NewRecipeService(repo *repository.RecipeRepository) *RecipeService {
	return &RecipeService{repo: repo}
}

// List returns all recipes owned by ownerID.
func (s *RecipeService) List(ctx context.Context, ownerID string) ([]model.RecipeResponse, error) {
	recipes, err := s.repo.ListByOwner(ctx, ownerID)
	if err != nil {
		return nil, fmt.Errorf("listing recipes: %w", err)
	}

	return recipesToResponse(recipes), nil
}

// ListByCategory returns the owner's recipes whose category equals category
// under Unicode case folding. There is no trimming or partial matching.
func (s *RecipeService) ListByCategory(ctx context.Context, ownerID, category string) ([]model.RecipeResponse, error) {
	if category == "" {
		return nil, ErrCategoryRequired
	}

	recipes, err := s.repo.ListByCategory(ctx, ownerID, CategoryKey(category))
	if err != nil {
		return nil, fmt.Errorf("listing recipes by category: %w", err)
	}

	return recipesToResponse(recipes), nil
}

// Get returns a single recipe owned by ownerID.
func (s *RecipeService) Get(ctx context.Context, ownerID, id string) (model.RecipeResponse, error) {
	recipe, err := s.repo.GetByID(ctx, ownerID, id)
	if err != nil {
		if errors.Is(err, repository.ErrRecipeNotFound) {
			return model.RecipeResponse{}, ErrRecipeNotFound
		}
		return model.RecipeResponse{}, fmt.Errorf("getting recipe: %w", err)
	}

	return toRecipeResponse(*recipe), nil
}

// Create stores a new recipe for ownerID.
func (s *RecipeService) Create(ctx context.Context, ownerID string, req model.RecipeRequest) (model.RecipeResponse, error) {
	recipe, err := recipeFromRequest(ownerID, req)
	if err != nil {
		return model.RecipeResponse{}, err
	}

	if err := s.repo.Create(ctx, &recipe, CategoryKey(recipe.Category)); err != nil {
		return model.RecipeResponse{}, fmt.Errorf("creating recipe: %w", err)
	}

	return toRecipeResponse(recipe), nil
}

// Update replaces every mutable field of the owner's recipe.
func (s *RecipeService) Update(ctx context.Context, ownerID, id string, req model.RecipeRequest) (model.RecipeResponse, error) {
	recipe, err := recipeFromRequest(ownerID, req)
	if err != nil {
		return model.RecipeResponse{}, err
	}
	recipe.ID = id

	if err := s.repo.Update(ctx, &recipe, CategoryKey(recipe.Category)); err != nil {
		if errors.Is(err, repository.ErrRecipeNotFound) {
			return model.RecipeResponse{}, ErrRecipeNotFound
		}
		return model.RecipeResponse{}, fmt.Errorf("updating recipe: %w", err)
	}

	return s.Get(ctx, ownerID, id)
}

// Delete removes the owner's recipe.
func (s *RecipeService) Delete(ctx context.Context, ownerID, id string) error {
	err := s.repo.Delete(ctx, ownerID, id)
	if errors.Is(err, repository.ErrRecipeNotFound) {
		return ErrRecipeNotFound
	}
	if err != nil {
		return fmt.Errorf("deleting recipe: %w", err)
	}
	return nil
}

// CategoryKey folds a category for case-insensitive exact comparison.
func CategoryKey(category string) string {
	return cases.Fold().String(category)
}

func recipeFromRequest(ownerID string, req model.RecipeRequest) (model.Recipe, error) {
	if strings.TrimSpace(req.Name) == "" || strings.TrimSpace(req.Description) == "" {
		return model.Recipe{}, ErrFieldsRequired
	}

	category := req.Category
	if category == "" {
		category = model.DefaultCategory
	}
	if utf8.RuneCountInString(category) > maxCategoryLength {
		return model.Recipe{}, ErrCategoryTooLong
	}

	ingredients := req.Ingredients
	if ingredients == nil {
		ingredients = []string{}
	}

	return model.Recipe{
		OwnerID:     ownerID,
		Name:        req.Name,
		Description: req.Description,
		Ingredients: ingredients,
		Image:       req.Image,
		Category:    category,
	}, nil
}

func toRecipeResponse(r model.Recipe) model.RecipeResponse {
	return model.RecipeResponse{
		ID:          r.ID,
		Name:        r.Name,
		Description: r.Description,
		Ingredients: r.Ingredients,
		Image:       r.Image,
		Category:    r.Category,
		CreatedBy:   r.OwnerID,
		CreatedAt:   r.CreatedAt,
		UpdatedAt:   r.UpdatedAt,
	}
}

// recipesToResponse always returns a non-nil slice so empty lists encode as [].
func recipesToResponse(recipes []model.Recipe) []model.RecipeResponse {
	result := make([]model.RecipeResponse, len(recipes))
	for i, r := range recipes {
		result[i] = toRecipeResponse(r)
	}
	return result
}
