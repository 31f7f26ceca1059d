package api

import (
	"errors"
	"net/http"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/microcosm-cc/bluemonday"

	"github.com/tanakrit/slipbook/internal/ai"
	"github.com/tanakrit/slipbook/internal/auth"
	"github.com/tanakrit/slipbook/internal/db"
	"github.com/tanakrit/slipbook/internal/models"
	"github.com/tanakrit/slipbook/internal/slipdate"
)

type Server struct {
	Store       *db.Store
	AuthService *auth.Service
	Echo        *echo.Echo
	DB          *pgxpool.Pool
	AI          ai.Describer
	Registry    *ai.CategoryRegistry
	Extractor   *slipdate.Extractor

	sanitizer *bluemonday.Policy
}

func NewServer(pool *pgxpool.Pool, describer ai.Describer) (*Server, error) {
	e := echo.New()
	e.Use(middleware.Logger())
	e.Use(middleware.Recover())
	e.Use(middleware.BodyLimit("10M"))

	// CORS: allow frontend origins from env or default to localhost
	allowedOrigins := []string{"http://localhost:5173"}
	if extra := os.Getenv("CORS_ORIGINS"); extra != "" {
		for _, o := range strings.Split(extra, ",") {
			o = strings.TrimSpace(o)
			if o != "" {
				allowedOrigins = append(allowedOrigins, o)
			}
		}
	}
	e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins: allowedOrigins,
		AllowMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete},
		AllowHeaders: []string{echo.HeaderOrigin, echo.HeaderContentType, echo.HeaderAccept, echo.HeaderAuthorization},
	}))

	registry, err := ai.LoadCategoryRegistry()
	if err != nil {
		return nil, err
	}

	s := &Server{
		DB:          pool,
		Store:       db.NewStore(pool),
		AuthService: auth.NewService(pool),
		Echo:        e,
		AI:          describer,
		Registry:    registry,
		Extractor:   slipdate.NewExtractor(),
		sanitizer:   bluemonday.StrictPolicy(),
	}

	s.routes()
	return s, nil
}

func (s *Server) routes() {
	s.Echo.GET("/health", s.handleHealth)
	api := s.Echo.Group("/api/v1")

	// Auth Routes
	api.POST("/auth/signup", s.handleSignup)
	api.POST("/auth/login", s.handleLogin)

	// Protected Routes
	entries := api.Group("/entries")
	entries.Use(auth.Middleware)
	entries.GET("", s.handleListEntries)
	entries.POST("", s.handleCreateEntry)
	entries.GET("/stats", s.handleGetStats)
	entries.GET("/:id", s.handleGetEntry)
	entries.PUT("/:id", s.handleUpdateEntry)
	entries.DELETE("/:id", s.handleDeleteEntry)

	aiGroup := api.Group("/ai")
	aiGroup.Use(auth.Middleware)
	aiGroup.POST("/extract", s.handleExtract)
}

func (s *Server) handleHealth(c echo.Context) error {
	return c.String(http.StatusOK, "OK")
}

func (s *Server) handleSignup(c echo.Context) error {
	var req auth.SignupRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Invalid request"})
	}
	req.Email = strings.TrimSpace(strings.ToLower(req.Email))
	if req.Email == "" || !strings.Contains(req.Email, "@") {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Valid email is required"})
	}
	if len(req.Password) < 8 {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Password must be at least 8 characters"})
	}

	resp, err := s.AuthService.Signup(c.Request().Context(), req)
	if err != nil {
		if err == auth.ErrUserExists {
			return c.JSON(http.StatusConflict, map[string]string{"error": err.Error()})
		}
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": err.Error()})
	}

	return c.JSON(http.StatusCreated, resp)
}

func (s *Server) handleLogin(c echo.Context) error {
	var req auth.LoginRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Invalid request"})
	}
	req.Email = strings.TrimSpace(strings.ToLower(req.Email))

	resp, err := s.AuthService.Login(c.Request().Context(), req)
	if err != nil {
		if err == auth.ErrInvalidCreds {
			return c.JSON(http.StatusUnauthorized, map[string]string{"error": "Invalid credentials"})
		}
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": err.Error()})
	}

	return c.JSON(http.StatusOK, resp)
}

// Entry Handlers

type entryRequest struct {
	Type     *string  `json:"type"`
	Amount   *float64 `json:"amount"`
	Category *string  `json:"category"`
	Note     *string  `json:"note"`
	Datetime *string  `json:"datetime"`
	ImageURL *string  `json:"image_url"`
}

func (s *Server) handleListEntries(c echo.Context) error {
	userID, err := auth.GetUserIDFromContext(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, map[string]string{"error": "Unauthorized"})
	}

	params := db.ListParams{
		Type:     c.QueryParam("type"),
		Category: c.QueryParam("category"),
	}
	if params.Type != "" && !models.ValidType(params.Type) {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "type must be income or expense"})
	}
	if l, err := strconv.Atoi(c.QueryParam("limit")); err == nil && l > 0 {
		params.Limit = l
	}
	if o, err := strconv.Atoi(c.QueryParam("offset")); err == nil && o >= 0 {
		params.Offset = o
	}

	from, to, err := parseRange(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": err.Error()})
	}
	params.From = from
	params.To = to

	result, err := s.Store.ListEntries(c.Request().Context(), userID.String(), params)
	if err != nil {
		c.Logger().Errorf("Failed to list entries: %v", err)
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "Internal Server Error"})
	}

	return c.JSON(http.StatusOK, result)
}

func (s *Server) handleGetEntry(c echo.Context) error {
	userID, err := auth.GetUserIDFromContext(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, map[string]string{"error": "Unauthorized"})
	}

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Invalid entry ID"})
	}

	entry, err := s.Store.GetEntry(c.Request().Context(), userID.String(), id.String())
	if err != nil {
		if errors.Is(err, db.ErrNotFound) {
			return c.JSON(http.StatusNotFound, map[string]string{"error": "Not found"})
		}
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "Internal Server Error"})
	}

	return c.JSON(http.StatusOK, entry)
}

func (s *Server) handleCreateEntry(c echo.Context) error {
	userID, err := auth.GetUserIDFromContext(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, map[string]string{"error": "Unauthorized"})
	}

	var req entryRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Invalid request"})
	}

	entry := models.Entry{
		UserID:   userID.String(),
		Type:     "expense",
		Category: s.Registry.Default,
		Datetime: time.Now(),
	}
	if req.Type != nil {
		if !models.ValidType(*req.Type) {
			return c.JSON(http.StatusBadRequest, map[string]string{"error": "type must be income or expense"})
		}
		entry.Type = *req.Type
	}
	if req.Amount != nil {
		if *req.Amount < 0 {
			return c.JSON(http.StatusBadRequest, map[string]string{"error": "amount must be non-negative"})
		}
		entry.Amount = *req.Amount
	}
	if req.Category != nil && strings.TrimSpace(*req.Category) != "" {
		entry.Category = strings.TrimSpace(*req.Category)
	}
	if req.Note != nil {
		entry.Note = s.sanitizer.Sanitize(strings.TrimSpace(*req.Note))
	}
	if req.Datetime != nil && *req.Datetime != "" {
		ts, err := parseDatetime(*req.Datetime)
		if err != nil {
			return c.JSON(http.StatusBadRequest, map[string]string{"error": "Invalid datetime"})
		}
		entry.Datetime = ts
	}
	if req.ImageURL != nil {
		entry.ImageURL = strings.TrimSpace(*req.ImageURL)
	}

	created, err := s.Store.CreateEntry(c.Request().Context(), &entry)
	if err != nil {
		c.Logger().Errorf("Failed to create entry: %v", err)
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "Internal Server Error"})
	}

	return c.JSON(http.StatusCreated, created)
}

func (s *Server) handleUpdateEntry(c echo.Context) error {
	userID, err := auth.GetUserIDFromContext(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, map[string]string{"error": "Unauthorized"})
	}

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Invalid entry ID"})
	}

	var req entryRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Invalid request"})
	}

	params := db.UpdateParams{
		Type:     req.Type,
		Amount:   req.Amount,
		Category: req.Category,
		ImageURL: req.ImageURL,
	}
	if req.Type != nil && !models.ValidType(*req.Type) {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "type must be income or expense"})
	}
	if req.Amount != nil && *req.Amount < 0 {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "amount must be non-negative"})
	}
	if req.Note != nil {
		clean := s.sanitizer.Sanitize(strings.TrimSpace(*req.Note))
		params.Note = &clean
	}
	if req.Datetime != nil {
		ts, err := parseDatetime(*req.Datetime)
		if err != nil {
			return c.JSON(http.StatusBadRequest, map[string]string{"error": "Invalid datetime"})
		}
		params.Datetime = &ts
	}

	entry, err := s.Store.UpdateEntry(c.Request().Context(), userID.String(), id.String(), params)
	if err != nil {
		if errors.Is(err, db.ErrNotFound) {
			return c.JSON(http.StatusNotFound, map[string]string{"error": "Not found"})
		}
		c.Logger().Errorf("Failed to update entry: %v", err)
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "Internal Server Error"})
	}

	return c.JSON(http.StatusOK, entry)
}

func (s *Server) handleDeleteEntry(c echo.Context) error {
	userID, err := auth.GetUserIDFromContext(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, map[string]string{"error": "Unauthorized"})
	}

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Invalid entry ID"})
	}

	if err := s.Store.DeleteEntry(c.Request().Context(), userID.String(), id.String()); err != nil {
		if errors.Is(err, db.ErrNotFound) {
			return c.JSON(http.StatusNotFound, map[string]string{"error": "Not found"})
		}
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "Internal Server Error"})
	}

	return c.NoContent(http.StatusNoContent)
}

func (s *Server) handleGetStats(c echo.Context) error {
	userID, err := auth.GetUserIDFromContext(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, map[string]string{"error": "Unauthorized"})
	}

	from, to, err := parseRange(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": err.Error()})
	}

	stats, err := s.Store.GetStats(c.Request().Context(), userID.String(), db.ListParams{From: from, To: to})
	if err != nil {
		c.Logger().Errorf("Failed to compute stats: %v", err)
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "Internal Server Error"})
	}

	return c.JSON(http.StatusOK, stats)
}

// parseRange reads either month=YYYY-MM or from/to RFC 3339 query params.
func parseRange(c echo.Context) (*time.Time, *time.Time, error) {
	if month := c.QueryParam("month"); month != "" {
		start, err := time.Parse("2006-01", month)
		if err != nil {
			return nil, nil, errors.New("month must be YYYY-MM")
		}
		end := start.AddDate(0, 1, 0)
		return &start, &end, nil
	}

	var from, to *time.Time
	if v := c.QueryParam("from"); v != "" {
		ts, err := parseDatetime(v)
		if err != nil {
			return nil, nil, errors.New("invalid from datetime")
		}
		from = &ts
	}
	if v := c.QueryParam("to"); v != "" {
		ts, err := parseDatetime(v)
		if err != nil {
			return nil, nil, errors.New("invalid to datetime")
		}
		to = &ts
	}
	return from, to, nil
}

// parseDatetime accepts RFC 3339 or a bare local datetime.
func parseDatetime(v string) (time.Time, error) {
	if ts, err := time.Parse(time.RFC3339, v); err == nil {
		return ts, nil
	}
	return time.Parse("2006-01-02T15:04:05", v)
}

func (s *Server) Start(port string) error {
	return s.Echo.Start(":" + port)
}
