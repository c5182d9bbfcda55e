package api

import (
	"strings"
	"time"

	"pantrypal/pkg/pantry"
	"pantrypal/pkg/recipes"
	"pantrypal/pkg/storage"
	"pantrypal/pkg/token"
)

const dateLayout = "2006-01-02"

// SignupRequest is the POST /api/auth/signup body
type SignupRequest struct {
	Email    string `json:"email" binding:"required"`
	Name     string `json:"name"`
	Password string `json:"password" binding:"required"`
}

// LoginRequest is the POST /api/auth/login body
type LoginRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// RefreshRequest carries the refresh token for refresh and logout
type RefreshRequest struct {
	RefreshToken string `json:"refresh_token" binding:"required"`
}

// UserResponse is the public view of an account
type UserResponse struct {
	ID        string     `json:"id"`
	Email     string     `json:"email"`
	Name      string     `json:"name,omitempty"`
	CreatedAt time.Time  `json:"created_at"`
	LastLogin *time.Time `json:"last_login,omitempty"`
}

// AuthResponse is returned by signup and login
type AuthResponse struct {
	User   UserResponse `json:"user"`
	Tokens *token.Pair  `json:"tokens"`
}

func toUserResponse(u *storage.User) UserResponse {
	return UserResponse{
		ID:        u.ID,
		Email:     u.Email,
		Name:      u.Name,
		CreatedAt: u.CreatedAt,
		LastLogin: u.LastLogin,
	}
}

// ItemRequest is the body for creating or updating a pantry item. Dates
// are YYYY-MM-DD strings.
type ItemRequest struct {
	Name         string  `json:"name" binding:"required"`
	Category     string  `json:"category"`
	Quantity     float64 `json:"quantity"`
	Unit         string  `json:"unit"`
	PurchaseDate string  `json:"purchase_date"`
	ExpiryDate   string  `json:"expiry_date" binding:"required"`
}

func (r *ItemRequest) toInput() (pantry.ItemInput, error) {
	input := pantry.ItemInput{
		Name:     strings.TrimSpace(r.Name),
		Category: strings.TrimSpace(r.Category),
		Quantity: r.Quantity,
		Unit:     strings.TrimSpace(r.Unit),
	}
	expiry, err := time.Parse(dateLayout, r.ExpiryDate)
	if err != nil {
		return input, err
	}
	input.ExpiryDate = expiry
	if r.PurchaseDate != "" {
		purchase, err := time.Parse(dateLayout, r.PurchaseDate)
		if err != nil {
			return input, err
		}
		input.PurchaseDate = purchase
	}
	return input, nil
}

// ItemResponse is a pantry item with its derived expiry fields
type ItemResponse struct {
	ID           string  `json:"id"`
	Name         string  `json:"name"`
	Category     string  `json:"category,omitempty"`
	Quantity     float64 `json:"quantity"`
	Unit         string  `json:"unit,omitempty"`
	Display      string  `json:"display_quantity"`
	PurchaseDate string  `json:"purchase_date,omitempty"`
	ExpiryDate   string  `json:"expiry_date"`
	DaysLeft     int     `json:"days_until_expiry"`
	Status       string  `json:"status"`
}

func toItemResponse(item *storage.PantryItem, soonDays int) ItemResponse {
	now := time.Now()
	resp := ItemResponse{
		ID:         item.ID,
		Name:       item.Name,
		Category:   item.Category,
		Quantity:   item.Quantity,
		Unit:       item.Unit,
		Display:    pantry.FormatQuantity(item.Quantity, item.Unit),
		ExpiryDate: item.ExpiryDate.Format(dateLayout),
		DaysLeft:   pantry.DaysUntilExpiry(item.ExpiryDate, now),
		Status:     pantry.StatusOf(item.ExpiryDate, now, soonDays),
	}
	if !item.PurchaseDate.IsZero() {
		resp.PurchaseDate = item.PurchaseDate.Format(dateLayout)
	}
	return resp
}

func toItemResponses(items []*storage.PantryItem, soonDays int) []ItemResponse {
	out := make([]ItemResponse, 0, len(items))
	for _, item := range items {
		out = append(out, toItemResponse(item, soonDays))
	}
	return out
}

// IngredientDTO is one ingredient line in recipe requests and responses
type IngredientDTO struct {
	Name     string  `json:"name" binding:"required"`
	Quantity float64 `json:"quantity"`
	Unit     string  `json:"unit,omitempty"`
}

// RecipeRequest is the body for creating or updating a recipe
type RecipeRequest struct {
	Title       string          `json:"title" binding:"required"`
	Description string          `json:"description"`
	Servings    int             `json:"servings"`
	PrepMinutes int             `json:"prep_minutes"`
	Ingredients []IngredientDTO `json:"ingredients"`
}

func (r *RecipeRequest) toInput() recipes.RecipeInput {
	input := recipes.RecipeInput{
		Title:       strings.TrimSpace(r.Title),
		Description: strings.TrimSpace(r.Description),
		Servings:    r.Servings,
		PrepMinutes: r.PrepMinutes,
	}
	for _, ing := range r.Ingredients {
		input.Ingredients = append(input.Ingredients, storage.Ingredient{
			Name:     strings.TrimSpace(ing.Name),
			Quantity: ing.Quantity,
			Unit:     strings.TrimSpace(ing.Unit),
		})
	}
	return input
}

// RecipeResponse is a stored recipe
type RecipeResponse struct {
	ID          string          `json:"id"`
	Title       string          `json:"title"`
	Description string          `json:"description,omitempty"`
	Servings    int             `json:"servings,omitempty"`
	PrepMinutes int             `json:"prep_minutes,omitempty"`
	Ingredients []IngredientDTO `json:"ingredients"`
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`
}

func toRecipeResponse(rec *storage.Recipe) RecipeResponse {
	resp := RecipeResponse{
		ID:          rec.ID,
		Title:       rec.Title,
		Description: rec.Description,
		Servings:    rec.Servings,
		PrepMinutes: rec.PrepMinutes,
		Ingredients: make([]IngredientDTO, 0, len(rec.Ingredients)),
		CreatedAt:   rec.CreatedAt,
		UpdatedAt:   rec.UpdatedAt,
	}
	for _, ing := range rec.Ingredients {
		resp.Ingredients = append(resp.Ingredients, IngredientDTO{
			Name:     ing.Name,
			Quantity: ing.Quantity,
			Unit:     ing.Unit,
		})
	}
	return resp
}

func toRecipeResponses(recs []*storage.Recipe) []RecipeResponse {
	out := make([]RecipeResponse, 0, len(recs))
	for _, rec := range recs {
		out = append(out, toRecipeResponse(rec))
	}
	return out
}

// MatchResponse is one recipe ranked against the user's pantry
type MatchResponse struct {
	Recipe       RecipeResponse `json:"recipe"`
	MatchPercent int            `json:"match_percent"`
	Missing      []string       `json:"missing_ingredients,omitempty"`
}

func toMatchResponses(matches []recipes.Match) []MatchResponse {
	out := make([]MatchResponse, 0, len(matches))
	for _, m := range matches {
		out = append(out, MatchResponse{
			Recipe:       toRecipeResponse(m.Recipe),
			MatchPercent: m.MatchPercent,
			Missing:      m.Missing,
		})
	}
	return out
}
