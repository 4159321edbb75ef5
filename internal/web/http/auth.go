package http

import (
	"net/http"
	"strings"
	"time"

	"github.com/tripnest/tripnest/internal/identity"
	"github.com/tripnest/tripnest/internal/web/flash"
	"github.com/tripnest/tripnest/internal/web/guard"
	"github.com/tripnest/tripnest/internal/web/session"
	"github.com/tripnest/tripnest/pkg/slogx"
	"github.com/tripnest/tripnest/pkg/travelsdk"
)

type loginInput struct {
	Email    string `form:"email" validate:"required,email"`
	Password string `form:"password" validate:"required"`
}

// AuthHandler serves sign-in, self-registration and sign-out.
type AuthHandler struct {
	Registry  *session.Registry
	Pages     *Renderer
	CookieTTL time.Duration
}

// LoginPage renders the sign-in form. A signed-in visitor goes straight to
// where they were heading.
func (h *AuthHandler) LoginPage(w http.ResponseWriter, r *http.Request) {
	next := guard.SafeNext(r.URL.Query().Get("next"))
	if st := session.StateFromRequest(r); st.IsAuthenticated() {
		http.Redirect(w, r, landing(st.User.Role, next), http.StatusSeeOther)
		return
	}
	h.Pages.Render(w, r, http.StatusOK, "login.html", Page{
		Title: "Sign in",
		Form:  map[string]string{"next": next},
	})
}

func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	in := loginInput{
		Email:    strings.TrimSpace(r.PostFormValue("email")),
		Password: r.PostFormValue("password"),
	}
	next := guard.SafeNext(r.PostFormValue("next"))
	p := Page{
		Title:  "Sign in",
		Form:   map[string]string{"email": in.Email, "next": next},
		Errors: map[string]string{},
	}

	if fe := identity.Validate(in); len(fe) > 0 {
		p.Errors = fe
		h.Pages.Render(w, r, http.StatusUnprocessableEntity, "login.html", p)
		return
	}

	s := h.Registry.NewStore()
	u, err := s.Login(r.Context(), in.Email, in.Password)
	if err != nil {
		if !isCorrectable(err) {
			slogx.FromContext(r.Context()).Warn("login failed", "error", err)
		}
		h.Pages.Render(w, r, formError(&p, err), "login.html", p)
		return
	}

	h.establish(w, r, s)
	slogx.FromContext(r.Context()).Info("signed in", "user_id", u.ID, "role", u.Role.String())
	http.Redirect(w, r, landing(u.Role, next), http.StatusSeeOther)
}

func (h *AuthHandler) RegisterPage(w http.ResponseWriter, r *http.Request) {
	if st := session.StateFromRequest(r); st.IsAuthenticated() {
		http.Redirect(w, r, st.User.Role.HomePath(), http.StatusSeeOther)
		return
	}
	h.Pages.Render(w, r, http.StatusOK, "register.html", Page{Title: "Create account"})
}

// Register creates a customer account. The role is never taken from the
// form.
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	in := session.RegisterInput{
		Name:            strings.TrimSpace(r.PostFormValue("name")),
		Email:           strings.TrimSpace(r.PostFormValue("email")),
		Phone:           strings.TrimSpace(r.PostFormValue("phone")),
		Password:        r.PostFormValue("password"),
		ConfirmPassword: r.PostFormValue("confirm_password"),
	}
	p := Page{
		Title:  "Create account",
		Form:   map[string]string{"name": in.Name, "email": in.Email, "phone": in.Phone},
		Errors: map[string]string{},
	}

	s := h.Registry.NewStore()
	u, err := s.Register(r.Context(), in)
	if err != nil {
		h.Pages.Render(w, r, formError(&p, err), "register.html", p)
		return
	}

	h.establish(w, r, s)
	slogx.FromContext(r.Context()).Info("registered", "user_id", u.ID)
	flash.Write(w, r, flash.Notice{Kind: flash.Success, Message: "Welcome to TripNest, " + u.Name + "."})
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

// Logout ends the session locally at once; the backend hears about it in
// the background.
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	if s := session.FromContext(r.Context()); s != nil {
		token := s.Snapshot().Token
		s.Logout(r.Context())
		h.Registry.Forget(token)
	}
	session.ClearCookie(w, r)
	flash.Write(w, r, flash.Notice{Kind: flash.Info, Message: "You have been signed out."})
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

// establish persists a freshly signed-in store and retires the one the
// request arrived with, revoking its token.
func (h *AuthHandler) establish(w http.ResponseWriter, r *http.Request, s *session.Store) {
	h.Registry.Replace(r.Context(), session.FromContext(r.Context()), s)
	session.WriteCookie(w, r, s.Snapshot().Token, h.CookieTTL)
}

// landing is next when the role may open it, otherwise the role's home.
func landing(role identity.Role, next string) string {
	path, _, _ := strings.Cut(next, "?")
	if path != "" && identity.CanAccess(role, path) {
		return next
	}
	return role.HomePath()
}

func isCorrectable(err error) bool {
	e, ok := travelsdk.AsError(err)
	return ok && !e.Transient()
}
