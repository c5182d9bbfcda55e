// Package recipes implements the recipe domain: CRUD, and the pantry match
// calculation that ranks recipes by how much of their ingredient list the
// user already has.
package recipes

import (
	"context"
	"math"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"

	"pantrypal/pkg/storage"
)

// RecipeInput carries the writable fields of a recipe
type RecipeInput struct {
	Title       string
	Description string
	Servings    int
	PrepMinutes int
	Ingredients []storage.Ingredient
}

// Match ranks one recipe against the user's pantry
type Match struct {
	Recipe       *storage.Recipe
	MatchPercent int
	Missing      []string
}

// Service provides recipe operations for the API layer
type Service struct {
	store storage.Store
}

// NewService creates a recipe service
func NewService(store storage.Store) *Service {
	return &Service{store: store}
}

// Create stores a new recipe for the user
func (s *Service) Create(ctx context.Context, userID string, input RecipeInput) (*storage.Recipe, error) {
	now := time.Now()
	recipe := &storage.Recipe{
		ID:          uuid.NewString(),
		UserID:      userID,
		Title:       strings.TrimSpace(input.Title),
		Description: strings.TrimSpace(input.Description),
		Servings:    input.Servings,
		PrepMinutes: input.PrepMinutes,
		Ingredients: input.Ingredients,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := s.store.SaveRecipe(recipe); err != nil {
		return nil, err
	}
	return recipe, nil
}

// Get returns one of the user's recipes
func (s *Service) Get(ctx context.Context, id, userID string) (*storage.Recipe, error) {
	return s.store.GetRecipe(id, userID)
}

// List returns the user's recipes
func (s *Service) List(ctx context.Context, userID string) ([]*storage.Recipe, error) {
	return s.store.GetRecipes(userID)
}

// Update replaces the writable fields of a recipe, ingredient list included
func (s *Service) Update(ctx context.Context, id, userID string, input RecipeInput) (*storage.Recipe, error) {
	recipe, err := s.store.GetRecipe(id, userID)
	if err != nil {
		return nil, err
	}

	recipe.Title = strings.TrimSpace(input.Title)
	recipe.Description = strings.TrimSpace(input.Description)
	recipe.Servings = input.Servings
	recipe.PrepMinutes = input.PrepMinutes
	recipe.Ingredients = input.Ingredients
	recipe.UpdatedAt = time.Now()

	if err := s.store.UpdateRecipe(recipe); err != nil {
		return nil, err
	}
	return recipe, nil
}

// Delete removes one of the user's recipes
func (s *Service) Delete(ctx context.Context, id, userID string) error {
	return s.store.DeleteRecipe(id, userID)
}

// Matches ranks all of the user's recipes against their pantry, best
// match first. Ties break alphabetically by title.
func (s *Service) Matches(ctx context.Context, userID string) ([]Match, error) {
	recipes, err := s.store.GetRecipes(userID)
	if err != nil {
		return nil, err
	}
	items, err := s.store.GetItems(userID, "")
	if err != nil {
		return nil, err
	}

	have := make(map[string]bool, len(items))
	for _, item := range items {
		have[NormalizeName(item.Name)] = true
	}

	matches := make([]Match, 0, len(recipes))
	for _, recipe := range recipes {
		matches = append(matches, matchRecipe(recipe, have))
	}

	sort.SliceStable(matches, func(i, j int) bool {
		if matches[i].MatchPercent != matches[j].MatchPercent {
			return matches[i].MatchPercent > matches[j].MatchPercent
		}
		return matches[i].Recipe.Title < matches[j].Recipe.Title
	})
	return matches, nil
}

// matchRecipe computes the percentage of ingredients present in the
// pantry, rounded to the nearest whole percent. A recipe with no
// ingredients counts as a full match.
func matchRecipe(recipe *storage.Recipe, have map[string]bool) Match {
	if len(recipe.Ingredients) == 0 {
		return Match{Recipe: recipe, MatchPercent: 100}
	}

	found := 0
	var missing []string
	for _, ing := range recipe.Ingredients {
		if have[NormalizeName(ing.Name)] {
			found++
		} else {
			missing = append(missing, ing.Name)
		}
	}

	percent := int(math.Round(float64(found) / float64(len(recipe.Ingredients)) * 100))
	return Match{Recipe: recipe, MatchPercent: percent, Missing: missing}
}
