package folio

import (
	"net/http"

	"github.com/gorilla/sessions"
	"github.com/labstack/echo-contrib/session"
	"github.com/labstack/echo/v4"
)

const (
	sessionName     = "folio_session"
	sessionKeyAuth  = "authenticated"
	sessionKeyName  = "name"
	sessionKeyRole  = "role"
	sessionLifetime = 60 * 60 * 12
)

// SessionResolver resolves the principal attached to a request, if any. It is
// the only authentication collaborator the guard knows about; swapping the
// implementation (tests use a fake) changes nothing downstream.
type SessionResolver interface {
	Resolve(c echo.Context) (Principal, bool)
}

// cookieSessionResolver reads the gorilla cookie session established by the
// login handler.
type cookieSessionResolver struct{}

func (cookieSessionResolver) Resolve(c echo.Context) (Principal, bool) {
	sess, err := session.Get(sessionName, c)
	if err != nil {
		return Principal{}, false
	}
	auth, ok := sess.Values[sessionKeyAuth].(bool)
	if !ok || !auth {
		return Principal{}, false
	}
	p := Principal{Role: RoleUser}
	if name, ok := sess.Values[sessionKeyName].(string); ok {
		p.Name = name
	}
	if role, ok := sess.Values[sessionKeyRole].(string); ok {
		p.Role = Role(role)
	}
	return p, true
}

// requireRole wraps a handler chain with the authorization filter. No
// principal short-circuits to a 401 envelope, an unsatisfied role to 403;
// otherwise the wrapped handler runs with the request untouched and its
// result passes through unchanged. Authorization failure is a returned
// response, never a panic.
func (a *App) requireRole(required Role) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			principal, ok := a.sessions.Resolve(c)
			if !ok {
				return respondError(c, http.StatusUnauthorized, ErrUnauthorized.Error())
			}
			if !principal.Role.Satisfies(required) {
				return respondError(c, http.StatusForbidden, ErrForbidden.Error())
			}
			c.Set(principalContextKey, principal)
			return next(c)
		}
	}
}

const principalContextKey = "folio.principal"

// CurrentPrincipal returns the principal stored by requireRole, if any.
func CurrentPrincipal(c echo.Context) (Principal, bool) {
	p, ok := c.Get(principalContextKey).(Principal)
	return p, ok
}

func setAdminSession(c echo.Context, name string) error {
	sess, err := session.Get(sessionName, c)
	if err != nil {
		return err
	}
	sess.Values[sessionKeyAuth] = true
	sess.Values[sessionKeyName] = name
	sess.Values[sessionKeyRole] = string(RoleAdmin)
	return sess.Save(c.Request(), c.Response())
}

func clearSession(c echo.Context) error {
	sess, err := session.Get(sessionName, c)
	if err != nil {
		return err
	}
	sess.Options.MaxAge = -1
	return sess.Save(c.Request(), c.Response())
}

func (a *App) newSessionStore() *sessions.CookieStore {
	store := sessions.NewCookieStore([]byte(a.Config.SessionSecret))
	store.Options = &sessions.Options{
		Path:     "/",
		HttpOnly: true,
		MaxAge:   sessionLifetime,
		SameSite: http.SameSiteLaxMode,
		Secure:   a.Config.CookieSecure,
	}
	return store
}
