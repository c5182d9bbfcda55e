package api

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"pantrypal/pkg/auth"
	"pantrypal/pkg/events"
	"pantrypal/pkg/health"
	"pantrypal/pkg/logger"
	"pantrypal/pkg/pantry"
	"pantrypal/pkg/recipes"
)

// Handler encapsulates the REST API handlers
type Handler struct {
	auth    *auth.Service
	pantry  *pantry.Service
	recipes *recipes.Service
	hub     *events.Hub
	monitor *health.Monitor
	log     *logger.Logger
}

// NewHandler creates a new API handler
func NewHandler(authSvc *auth.Service, pantrySvc *pantry.Service, recipeSvc *recipes.Service, hub *events.Hub, monitor *health.Monitor) *Handler {
	return &Handler{
		auth:    authSvc,
		pantry:  pantrySvc,
		recipes: recipeSvc,
		hub:     hub,
		monitor: monitor,
		log:     logger.Get().With("component", "api"),
	}
}

// HandleSignup registers a new account and opens a session
func (h *Handler) HandleSignup(c *gin.Context) {
	var req SignupRequest
	if err := c.BindJSON(&req); err != nil {
		RespondError(c, http.StatusBadRequest, ErrInvalidRequest)
		return
	}

	user, pair, err := h.auth.Signup(c.Request.Context(), req.Email, req.Name, req.Password)
	if err != nil {
		RespondServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, AuthResponse{User: toUserResponse(user), Tokens: pair})
}

// HandleLogin authenticates credentials and opens a session
func (h *Handler) HandleLogin(c *gin.Context) {
	var req LoginRequest
	if err := c.BindJSON(&req); err != nil {
		RespondError(c, http.StatusBadRequest, ErrInvalidRequest)
		return
	}

	user, pair, err := h.auth.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		h.log.Warn("failed login attempt", "email", req.Email)
		RespondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, AuthResponse{User: toUserResponse(user), Tokens: pair})
}

// HandleRefresh exchanges a refresh token for a fresh token pair
func (h *Handler) HandleRefresh(c *gin.Context) {
	var req RefreshRequest
	if err := c.BindJSON(&req); err != nil {
		RespondError(c, http.StatusBadRequest, ErrInvalidRequest)
		return
	}

	pair, err := h.auth.Refresh(c.Request.Context(), req.RefreshToken)
	if err != nil {
		RespondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, pair)
}

// HandleLogout revokes the session behind a refresh token. Always succeeds;
// a logout must not fail client-side even with a stale token.
func (h *Handler) HandleLogout(c *gin.Context) {
	var req RefreshRequest
	if err := c.BindJSON(&req); err == nil {
		h.auth.Logout(c.Request.Context(), req.RefreshToken)
	}
	c.Status(http.StatusNoContent)
}

// HandleSession reports the state of the current session, including the
// expiring-soon flag the client uses for its countdown banner
func (h *Handler) HandleSession(c *gin.Context) {
	info, ok := c.Get(ctxSession)
	if !ok {
		RespondError(c, http.StatusUnauthorized, ErrUnauthorized)
		return
	}
	c.JSON(http.StatusOK, info)
}

// HandleAddItem creates a pantry item
func (h *Handler) HandleAddItem(c *gin.Context) {
	var req ItemRequest
	if err := c.BindJSON(&req); err != nil {
		RespondError(c, http.StatusBadRequest, ErrInvalidRequest)
		return
	}
	input, err := req.toInput()
	if err != nil {
		RespondError(c, http.StatusBadRequest, "invalid date, expected YYYY-MM-DD")
		return
	}

	item, err := h.pantry.Add(c.Request.Context(), userID(c), input)
	if err != nil {
		RespondServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, toItemResponse(item, h.pantry.SoonDays()))
}

// HandleListItems returns the user's pantry, optionally filtered by category
func (h *Handler) HandleListItems(c *gin.Context) {
	items, err := h.pantry.List(c.Request.Context(), userID(c), c.Query("category"))
	if err != nil {
		RespondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, toItemResponses(items, h.pantry.SoonDays()))
}

// HandleGetItem returns a single pantry item
func (h *Handler) HandleGetItem(c *gin.Context) {
	item, err := h.pantry.Get(c.Request.Context(), c.Param("id"), userID(c))
	if err != nil {
		RespondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, toItemResponse(item, h.pantry.SoonDays()))
}

// HandleUpdateItem replaces a pantry item's writable fields
func (h *Handler) HandleUpdateItem(c *gin.Context) {
	var req ItemRequest
	if err := c.BindJSON(&req); err != nil {
		RespondError(c, http.StatusBadRequest, ErrInvalidRequest)
		return
	}
	input, err := req.toInput()
	if err != nil {
		RespondError(c, http.StatusBadRequest, "invalid date, expected YYYY-MM-DD")
		return
	}

	item, err := h.pantry.Update(c.Request.Context(), c.Param("id"), userID(c), input)
	if err != nil {
		RespondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, toItemResponse(item, h.pantry.SoonDays()))
}

// HandleDeleteItem removes a pantry item
func (h *Handler) HandleDeleteItem(c *gin.Context) {
	if err := h.pantry.Delete(c.Request.Context(), c.Param("id"), userID(c)); err != nil {
		RespondServiceError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// HandleExpiringItems returns items expiring within ?days=N, defaulting to
// the configured expiring-soon window
func (h *Handler) HandleExpiringItems(c *gin.Context) {
	days := 0
	if raw := c.Query("days"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 0 {
			RespondError(c, http.StatusBadRequest, "invalid days parameter")
			return
		}
		days = parsed
	}

	items, err := h.pantry.ListExpiring(c.Request.Context(), userID(c), days)
	if err != nil {
		RespondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, toItemResponses(items, h.pantry.SoonDays()))
}

// HandleCreateRecipe stores a new recipe
func (h *Handler) HandleCreateRecipe(c *gin.Context) {
	var req RecipeRequest
	if err := c.BindJSON(&req); err != nil {
		RespondError(c, http.StatusBadRequest, ErrInvalidRequest)
		return
	}

	rec, err := h.recipes.Create(c.Request.Context(), userID(c), req.toInput())
	if err != nil {
		RespondServiceError(c, err)
		return
	}
	c.JSON(http.StatusCreated, toRecipeResponse(rec))
}

// HandleListRecipes returns the user's recipes
func (h *Handler) HandleListRecipes(c *gin.Context) {
	recs, err := h.recipes.List(c.Request.Context(), userID(c))
	if err != nil {
		RespondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, toRecipeResponses(recs))
}

// HandleGetRecipe returns a single recipe
func (h *Handler) HandleGetRecipe(c *gin.Context) {
	rec, err := h.recipes.Get(c.Request.Context(), c.Param("id"), userID(c))
	if err != nil {
		RespondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, toRecipeResponse(rec))
}

// HandleUpdateRecipe replaces a recipe and its ingredient list
func (h *Handler) HandleUpdateRecipe(c *gin.Context) {
	var req RecipeRequest
	if err := c.BindJSON(&req); err != nil {
		RespondError(c, http.StatusBadRequest, ErrInvalidRequest)
		return
	}

	rec, err := h.recipes.Update(c.Request.Context(), c.Param("id"), userID(c), req.toInput())
	if err != nil {
		RespondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, toRecipeResponse(rec))
}

// HandleDeleteRecipe removes a recipe
func (h *Handler) HandleDeleteRecipe(c *gin.Context) {
	if err := h.recipes.Delete(c.Request.Context(), c.Param("id"), userID(c)); err != nil {
		RespondServiceError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// HandleMatches ranks the user's recipes against the pantry
func (h *Handler) HandleMatches(c *gin.Context) {
	matches, err := h.recipes.Matches(c.Request.Context(), userID(c))
	if err != nil {
		RespondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, toMatchResponses(matches))
}

// HandleHealth reports server health
func (h *Handler) HandleHealth(c *gin.Context) {
	active := 0
	if h.hub != nil {
		active = h.hub.ActiveConnections()
	}
	c.JSON(http.StatusOK, h.monitor.GetHealth(active))
}

// HandleEvents upgrades the connection to a websocket scoped to the user
func (h *Handler) HandleEvents(c *gin.Context) {
	if err := h.hub.ServeWS(c.Writer, c.Request, userID(c)); err != nil {
		h.log.Warn("websocket upgrade failed", "error", err)
	}
}

// RegisterRoutes registers all API routes
func (h *Handler) RegisterRoutes(router *gin.Engine) {
	api := router.Group("/api")

	authGroup := api.Group("/auth")
	{
		authGroup.POST("/signup", h.HandleSignup)
		authGroup.POST("/login", h.HandleLogin)
		authGroup.POST("/refresh", h.HandleRefresh)
		authGroup.POST("/logout", h.HandleLogout)
		authGroup.GET("/session", AuthMiddleware(h.auth), h.HandleSession)
	}

	api.GET("/health", h.HandleHealth)

	protected := api.Group("", AuthMiddleware(h.auth))
	{
		protected.POST("/pantry", h.HandleAddItem)
		protected.GET("/pantry", h.HandleListItems)
		protected.GET("/pantry/expiring", h.HandleExpiringItems)
		protected.GET("/pantry/:id", h.HandleGetItem)
		protected.PUT("/pantry/:id", h.HandleUpdateItem)
		protected.DELETE("/pantry/:id", h.HandleDeleteItem)

		protected.POST("/recipes", h.HandleCreateRecipe)
		protected.GET("/recipes", h.HandleListRecipes)
		protected.GET("/recipes/matches", h.HandleMatches)
		protected.GET("/recipes/:id", h.HandleGetRecipe)
		protected.PUT("/recipes/:id", h.HandleUpdateRecipe)
		protected.DELETE("/recipes/:id", h.HandleDeleteRecipe)

		protected.GET("/events", h.HandleEvents)
	}
}

// SetupRouter initializes the Gin router with middleware and the API routes
func SetupRouter(h *Handler, allowedOrigin string) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(RequestLogger())
	router.Use(CORSMiddleware(allowedOrigin))

	h.RegisterRoutes(router)
	return router
}
