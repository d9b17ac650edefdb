// Package web serves the roster page: server-rendered HTML over a shared
// roster.View, with form posts for signup and unregister.
package web

import (
	"bytes"
	"embed"
	"encoding/json"
	"html/template"
	"io/fs"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/Shivanand-hulikatti/activity-signup/internal/roster"
)

//go:embed templates/*.html
var templatesFS embed.FS

//go:embed all:static
var staticFS embed.FS

// Handler renders the roster view and dispatches its form actions.
type Handler struct {
	view   *roster.View
	tmpl   *template.Template
	logger *zap.Logger
}

// signupForm echoes the signup fields back after a failed attempt.
type signupForm struct {
	Activity string
	Email    string
}

type indexData struct {
	roster.Page
	Form signupForm
}

type confirmData struct {
	Prompt      string
	Activity    string
	Participant string
}

// NewHandler parses the embedded templates.
func NewHandler(view *roster.View, logger *zap.Logger) (*Handler, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	tmpl, err := template.New("roster").
		Funcs(template.FuncMap{"statusClass": statusClass}).
		ParseFS(templatesFS, "templates/*.html")
	if err != nil {
		return nil, err
	}
	return &Handler{view: view, tmpl: tmpl, logger: logger}, nil
}

// Routes mounts the page, its actions and the static assets on r.
func (h *Handler) Routes(r chi.Router) {
	static, _ := fs.Sub(staticFS, "static")
	r.Handle("/static/*", http.StripPrefix("/static/", http.FileServer(http.FS(static))))

	r.Get("/", h.Index)
	r.Post("/refresh", h.Refresh)
	r.Post("/signup", h.Signup)
	r.Get("/unregister", h.ConfirmUnregister)
	r.Post("/unregister", h.Unregister)
	r.Get("/health", h.Health)
}

// Index handles GET /
func (h *Handler) Index(w http.ResponseWriter, r *http.Request) {
	h.renderIndex(w, http.StatusOK, signupForm{})
}

// Refresh handles POST /refresh by reloading the activity collection.
func (h *Handler) Refresh(w http.ResponseWriter, r *http.Request) {
	h.view.Load(r.Context())
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

// Signup handles POST /signup. A success resets the form by redirecting;
// a failure re-renders the page with the submitted values.
func (h *Handler) Signup(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "invalid form", http.StatusBadRequest)
		return
	}
	form := signupForm{
		Activity: r.PostFormValue("activity"),
		Email:    r.PostFormValue("email"),
	}

	out := h.view.SubmitSignup(r.Context(), form.Activity, form.Email)
	if out.Kind == roster.Succeeded {
		http.Redirect(w, r, "/", http.StatusSeeOther)
		return
	}
	h.renderIndex(w, http.StatusOK, form)
}

// ConfirmUnregister handles GET /unregister?activity=&participant=
func (h *Handler) ConfirmUnregister(w http.ResponseWriter, r *http.Request) {
	activity := r.URL.Query().Get("activity")
	participant := r.URL.Query().Get("participant")
	if participant == "" {
		http.Redirect(w, r, "/", http.StatusSeeOther)
		return
	}
	h.render(w, http.StatusOK, "confirm.html", confirmData{
		Prompt:      roster.UnregisterPrompt(activity, participant),
		Activity:    activity,
		Participant: participant,
	})
}

// Unregister handles POST /unregister. The confirm field must be "yes"
// for the request to reach the API.
func (h *Handler) Unregister(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "invalid form", http.StatusBadRequest)
		return
	}
	confirmed := r.PostFormValue("confirm") == "yes"
	h.view.Unregister(r.Context(),
		r.PostFormValue("activity"),
		r.PostFormValue("participant"),
		roster.ConfirmFunc(func(string) bool { return confirmed }),
	)
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

// Health handles GET /health
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
}

func (h *Handler) renderIndex(w http.ResponseWriter, status int, form signupForm) {
	h.render(w, status, "index.html", indexData{Page: h.view.Snapshot(), Form: form})
}

// render executes into a buffer first so a template error never leaves a
// half-written page.
func (h *Handler) render(w http.ResponseWriter, status int, name string, data any) {
	var buf bytes.Buffer
	if err := h.tmpl.ExecuteTemplate(&buf, name, data); err != nil {
		h.logger.Error("render template", zap.String("template", name), zap.Error(err))
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, _ = buf.WriteTo(w)
}

// statusClass is the CSS class list of the status area.
func statusClass(s roster.Status) string {
	classes := []string{string(s.Kind)}
	if !s.Visible {
		classes = append(classes, "hidden")
	}
	return strings.TrimSpace(strings.Join(classes, " "))
}
