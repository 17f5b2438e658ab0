package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/recipebox/recipebox-go/internal/model"
)

var ErrRecipeNotFound = errors.New("recipe not found")

const recipeColumns = `id, owner_id, name, description, ingredients, image, category, created_at, updated_at`

// RecipeRepository handles recipe persistence. Every read and write is
// filtered by owner, so another owner's recipe is indistinguishable from a
// missing one.
type RecipeRepository struct {
	db *sql.DB
}

// NewRecipeRepository creates a new RecipeRepository.
func NewRecipeRepository(db *sql.DB) *RecipeRepository {
	return &RecipeRepository{db: db}
}

// Create inserts a recipe, assigning its ID and timestamps. categoryKey is
// the case-folded category used for lookups.
func (r *RecipeRepository) Create(ctx context.Context, recipe *model.Recipe, categoryKey string) error {
	query := `INSERT INTO recipes (id, owner_id, name, description, ingredients, image, category, category_key, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`

	ingredients, err := encodeIngredients(recipe.Ingredients)
	if err != nil {
		return err
	}

	now := timestamp()
	id := uuid.NewString()

	_, err = r.db.ExecContext(ctx, query,
		id, recipe.OwnerID, recipe.Name, recipe.Description, ingredients,
		nullString(recipe.Image), recipe.Category, categoryKey, now, now,
	)
	if err != nil {
		return err
	}

	recipe.ID = id
	recipe.CreatedAt = now
	recipe.UpdatedAt = now
	return nil
}

// GetByID retrieves a recipe by ID within the owner's scope.
func (r *RecipeRepository) GetByID(ctx context.Context, ownerID, id string) (*model.Recipe, error) {
	query := `SELECT ` + recipeColumns + ` FROM recipes WHERE id = ? AND owner_id = ?`

	recipe, err := scanRecipe(r.db.QueryRowContext(ctx, query, id, ownerID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrRecipeNotFound
		}
		return nil, err
	}

	return recipe, nil
}

// ListByOwner retrieves all recipes of an owner, newest first.
func (r *RecipeRepository) ListByOwner(ctx context.Context, ownerID string) ([]model.Recipe, error) {
	query := `SELECT ` + recipeColumns + ` FROM recipes WHERE owner_id = ? ORDER BY created_at DESC`

	return r.list(ctx, query, ownerID)
}

// ListByCategory retrieves an owner's recipes whose folded category equals categoryKey.
func (r *RecipeRepository) ListByCategory(ctx context.Context, ownerID, categoryKey string) ([]model.Recipe, error) {
	query := `SELECT ` + recipeColumns + ` FROM recipes WHERE owner_id = ? AND category_key = ? ORDER BY created_at DESC`

	return r.list(ctx, query, ownerID, categoryKey)
}

// Update replaces the mutable fields of a recipe owned by recipe.OwnerID.
func (r *RecipeRepository) Update(ctx context.Context, recipe *model.Recipe, categoryKey string) error {
	query := `UPDATE recipes
		SET name = ?, description = ?, ingredients = ?, image = ?, category = ?, category_key = ?, updated_at = ?
		WHERE id = ? AND owner_id = ?`

	ingredients, err := encodeIngredients(recipe.Ingredients)
	if err != nil {
		return err
	}

	now := timestamp()

	result, err := r.db.ExecContext(ctx, query,
		recipe.Name, recipe.Description, ingredients, nullString(recipe.Image),
		recipe.Category, categoryKey, now, recipe.ID, recipe.OwnerID,
	)
	if err != nil {
		return err
	}

	if err := expectOneRow(result); err != nil {
		return err
	}

	recipe.UpdatedAt = now
	return nil
}

// Delete removes a recipe owned by ownerID.
func (r *RecipeRepository) Delete(ctx context.Context, ownerID, id string) error {
	query := `DELETE FROM recipes WHERE id = ? AND owner_id = ?`

	result, err := r.db.ExecContext(ctx, query, id, ownerID)
	if err != nil {
		return err
	}

	return expectOneRow(result)
}

func (r *RecipeRepository) list(ctx context.Context, query string, args ...any) ([]model.Recipe, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var recipes []model.Recipe
	for rows.Next() {
		recipe, err := scanRecipe(rows)
		if err != nil {
			return nil, err
		}
		recipes = append(recipes, *recipe)
	}

	return recipes, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRecipe(row rowScanner) (*model.Recipe, error) {
	var (
		recipe      model.Recipe
		ingredients []byte
		image       sql.NullString
	)

	err := row.Scan(
		&recipe.ID, &recipe.OwnerID, &recipe.Name, &recipe.Description, &ingredients,
		&image, &recipe.Category, &recipe.CreatedAt, &recipe.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	if err := json.Unmarshal(ingredients, &recipe.Ingredients); err != nil {
		return nil, fmt.Errorf("decoding ingredients of recipe %s: %w", recipe.ID, err)
	}
	if recipe.Ingredients == nil {
		recipe.Ingredients = []string{}
	}
	recipe.Image = image.String

	return &recipe, nil
}

func encodeIngredients(ingredients []string) (string, error) {
	if ingredients == nil {
		ingredients = []string{}
	}
	b, err := json.Marshal(ingredients)
	if err != nil {
		return "", fmt.Errorf("encoding ingredients: %w", err)
	}
	return string(b), nil
}

func expectOneRow(result sql.Result) error {
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return err
	}

	if rowsAffected == 0 {
		return ErrRecipeNotFound
	}

	return nil
}
