package http

import (
	"context"
	"crypto/subtle"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	"github.com/go-playground/validator/v10"

	"github.com/collagery/collagery"
)

// Library is the record-resolver surface handlers depend on.
type Library interface {
	Get(ctx context.Context, slug string) (collagery.Collage, error)
	Create(ctx context.Context, in collagery.CreateCollage) (collagery.Collage, error)
	Delete(ctx context.Context, slug string) error
	SetVisibility(ctx context.Context, slug string, visible bool) (collagery.Collage, error)
	List(ctx context.Context, includeHidden bool) ([]collagery.Collage, error)
	ExportArchive(ctx context.Context, slug string) (collagery.Archive, error)
}

// CORSConfig mirrors go-chi/cors options.
type CORSConfig struct {
	Enabled          bool     `mapstructure:"enabled"`
	AllowedOrigins   []string `mapstructure:"allowed_origins"`
	AllowedMethods   []string `mapstructure:"allowed_methods"`
	AllowedHeaders   []string `mapstructure:"allowed_headers"`
	ExposedHeaders   []string `mapstructure:"exposed_headers"`
	AllowCredentials bool     `mapstructure:"allow_credentials"`
	MaxAge           int      `mapstructure:"max_age"`
}

// HandlerConfig holds handler-level settings.
type HandlerConfig struct {
	AdminPassword string
	CORS          CORSConfig
}

// Handler provides the HTTP handlers for all collage operations.
type Handler struct {
	config   HandlerConfig
	library  Library
	tokens   Tokens
	validate *validator.Validate
}

// NewHandler creates a Handler over the given library and token service.
func NewHandler(config *HandlerConfig, library Library, tokens Tokens) *Handler {
	return &Handler{
		config:   *config,
		library:  library,
		tokens:   tokens,
		validate: validator.New(),
	}
}

// Router returns the configured http.Handler.
func (h *Handler) Router() http.Handler {
	r := chi.NewRouter()

	r.Use(RequestID)
	if h.config.CORS.Enabled {
		r.Use(cors.Handler(cors.Options{
			AllowedOrigins:   h.config.CORS.AllowedOrigins,
			AllowedMethods:   h.config.CORS.AllowedMethods,
			AllowedHeaders:   h.config.CORS.AllowedHeaders,
			ExposedHeaders:   h.config.CORS.ExposedHeaders,
			AllowCredentials: h.config.CORS.AllowCredentials,
			MaxAge:           h.config.CORS.MaxAge,
		}))
	}

	r.Post("/login", h.handleLogin)
	r.Get("/posts", h.handleList)
	r.Get("/post", h.handleGet)
	r.Get("/export", h.handleExport)

	r.Group(func(r chi.Router) {
		r.Use(RequireAdmin(h.tokens))
		r.Post("/posts", h.handleCreate)
		r.Post("/posts/delete", h.handleDelete)
		r.Post("/posts/visibility", h.handleVisibility)
	})

	return r
}

type loginRequest struct {
	Password string `json:"password"`
}

func (h *Handler) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteError(w, http.StatusUnauthorized, "wrong password")
		return
	}

	if req.Password == "" ||
		subtle.ConstantTimeCompare([]byte(req.Password), []byte(h.config.AdminPassword)) != 1 {
		WriteError(w, http.StatusUnauthorized, "wrong password")
		return
	}

	token, err := h.tokens.Issue()
	if err != nil {
		HandleError(w, r, err)
		return
	}
	_ = WriteJSON(w, http.StatusOK, map[string]string{"token": token})
}

func (h *Handler) handleList(w http.ResponseWriter, r *http.Request) {
	showHidden := false
	if raw := r.URL.Query().Get("showHidden"); raw != "" {
		showHidden, _ = strconv.ParseBool(raw)
	}

	// Auth is optional here; it only gates the hidden records.
	if showHidden && !authorized(h.tokens, r) {
		WriteError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	items, err := h.library.List(r.Context(), showHidden)
	if err != nil {
		HandleError(w, r, err)
		return
	}
	_ = WriteJSON(w, http.StatusOK, map[string]any{"items": items})
}

func (h *Handler) handleGet(w http.ResponseWriter, r *http.Request) {
	slug := r.URL.Query().Get("slug")
	if slug == "" {
		WriteError(w, http.StatusBadRequest, "missing slug")
		return
	}

	col, err := h.library.Get(r.Context(), slug)
	if err != nil {
		HandleError(w, r, err)
		return
	}
	_ = WriteJSON(w, http.StatusOK, col)
}

type createItemRequest struct {
	URL     string `json:"url" validate:"required,url"`
	Caption string `json:"caption"`
}

type createRequest struct {
	Slug    string              `json:"slug" validate:"required"`
	Title   string              `json:"title"`
	Date    string              `json:"date" validate:"omitempty,datetime=2006-01-02"`
	Desc    string              `json:"desc"`
	Tags    []string            `json:"tags"`
	Items   []createItemRequest `json:"items" validate:"required,min=1,dive"`
	Preview string              `json:"preview" validate:"omitempty,url"`
	Visible *bool               `json:"visible"`
}

func (h *Handler) handleCreate(w http.ResponseWriter, r *http.Request) {
	var req createRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := h.validate.Struct(&req); err != nil {
		WriteError(w, http.StatusBadRequest, fmt.Sprintf("invalid request: %v", err))
		return
	}

	items := make([]collagery.CollageItem, 0, len(req.Items))
	for _, item := range req.Items {
		items = append(items, collagery.CollageItem{URL: item.URL, Caption: item.Caption})
	}

	col, err := h.library.Create(r.Context(), collagery.CreateCollage{
		Slug:    req.Slug,
		Title:   req.Title,
		Date:    req.Date,
		Desc:    req.Desc,
		Tags:    req.Tags,
		Items:   items,
		Preview: req.Preview,
		Visible: req.Visible,
	})
	if err != nil {
		HandleError(w, r, err)
		return
	}
	_ = WriteJSON(w, http.StatusOK, map[string]any{"ok": true, "slug": col.Slug})
}

type slugRequest struct {
	Slug string `json:"slug"`
}

func (h *Handler) handleDelete(w http.ResponseWriter, r *http.Request) {
	var req slugRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Slug == "" {
		WriteError(w, http.StatusBadRequest, "missing slug")
		return
	}

	if err := h.library.Delete(r.Context(), req.Slug); err != nil {
		HandleError(w, r, err)
		return
	}
	_ = WriteJSON(w, http.StatusOK, map[string]any{"ok": true, "slug": req.Slug})
}

type visibilityRequest struct {
	Slug    string `json:"slug"`
	Visible *bool  `json:"visible"`
}

func (h *Handler) handleVisibility(w http.ResponseWriter, r *http.Request) {
	var req visibilityRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Slug == "" {
		WriteError(w, http.StatusBadRequest, "missing slug")
		return
	}

	visible := true
	if req.Visible != nil {
		visible = *req.Visible
	}

	col, err := h.library.SetVisibility(r.Context(), req.Slug, visible)
	if err != nil {
		HandleError(w, r, err)
		return
	}
	_ = WriteJSON(w, http.StatusOK, map[string]any{
		"ok":      true,
		"slug":    col.Slug,
		"visible": col.IsVisible(),
	})
}

func (h *Handler) handleExport(w http.ResponseWriter, r *http.Request) {
	slug := r.URL.Query().Get("slug")
	if slug == "" {
		WriteError(w, http.StatusBadRequest, "missing slug")
		return
	}

	archive, err := h.library.ExportArchive(r.Context(), slug)
	if err != nil {
		HandleError(w, r, err)
		return
	}

	filename := archive.Name + ".zip"
	w.Header().Set("Content-Type", "application/zip")
	w.Header().Set("Content-Disposition", contentDisposition(filename))
	w.Header().Set("Content-Length", strconv.Itoa(len(archive.Data)))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(archive.Data)
}

// contentDisposition builds an attachment header with an ASCII fallback
// filename plus the RFC 5987 UTF-8 form for clients that support it.
func contentDisposition(filename string) string {
	ascii := make([]rune, 0, len(filename))
	for _, r := range filename {
		if r > 0x20 && r < 0x7f && r != '"' && r != '\\' {
			ascii = append(ascii, r)
		} else {
			ascii = append(ascii, '_')
		}
	}
	return fmt.Sprintf(`attachment; filename="%s"; filename*=UTF-8''%s`,
		string(ascii), url.PathEscape(filename))
}
