package auth

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/warungpos/warungpos/internal/shared"
	"github.com/warungpos/warungpos/internal/view"
)

// Handler wires HTTP endpoints for authentication flows.
type Handler struct {
	logger         *slog.Logger
	service        *Service
	renderer       *view.Engine
	sessionManager *shared.SessionManager
	validator      *validator.Validate
}

// NewHandler constructs a Handler instance.
func NewHandler(logger *slog.Logger, service *Service, renderer *view.Engine, sessions *shared.SessionManager) *Handler {
	return &Handler{
		logger:         logger,
		service:        service,
		renderer:       renderer,
		sessionManager: sessions,
		validator:      validator.New(),
	}
}

// MountRoutes registers auth routes on the provided router.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/", h.showLogin)
	r.Post("/login", h.handleLogin)
	r.Post("/logout", h.handleLogout)
}

type loginForm struct {
	Email    string `validate:"required,email"`
	Password string `validate:"required"`
}

func (h *Handler) showLogin(w http.ResponseWriter, r *http.Request) {
	sess := shared.SessionFromContext(r.Context())
	if sess != nil && sess.User() != "" {
		view.Redirect(w, r, "/apps/dashboard")
		return
	}
	h.render(w, r, http.StatusOK, map[string]any{"errors": map[string]string{}})
}

func (h *Handler) handleLogin(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
		return
	}
	sess := shared.SessionFromContext(r.Context())

	form := loginForm{
		Email:    r.PostFormValue("email"),
		Password: r.PostFormValue("password"),
	}
	errs := make(map[string]string)
	if err := h.validator.Struct(form); err != nil {
		for _, fieldErr := range err.(validator.ValidationErrors) {
			errs[fieldErr.Field()] = fieldErr.Error()
		}
	}

	if len(errs) == 0 {
		user, err := h.service.Authenticate(r.Context(), form.Email, form.Password)
		if err != nil {
			errs["general"] = shared.UserSafeMessage(shared.ErrInvalidCredentials)
		} else {
			if sess != nil {
				// rotate the session ID so a pre-login cookie never
				// carries an authenticated session
				if err := h.sessionManager.Renew(r.Context(), sess); err != nil {
					h.logger.Error("renew session", slog.Any("error", err))
				}
				sess.SetUser(strconv.FormatInt(user.ID, 10))
				sess.AddFlash(shared.FlashMessage{Kind: "success", Message: "Selamat datang kembali"})
			} else {
				h.logger.Error("session missing during login")
			}
			view.Redirect(w, r, "/apps/dashboard")
			return
		}
	}

	h.render(w, r, http.StatusUnprocessableEntity, map[string]any{
		"errors": errs,
		"email":  form.Email,
	})
}

func (h *Handler) handleLogout(w http.ResponseWriter, r *http.Request) {
	if sess := shared.SessionFromContext(r.Context()); sess != nil {
		h.sessionManager.Destroy(sess)
	}
	view.Redirect(w, r, "/")
}

func (h *Handler) render(w http.ResponseWriter, r *http.Request, status int, props map[string]any) {
	if err := h.renderer.Render(w, r, status, "Auth/Login", props); err != nil {
		h.logger.Error("render login", slog.Any("error", err))
	}
}
