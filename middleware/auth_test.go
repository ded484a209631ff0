package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"eventhub-api/logger"
	"eventhub-api/models"
	"eventhub-api/utils"
)

func init() {
	gin.SetMode(gin.TestMode)
}

// stubRoles mimics the persisted Participant default.
type stubRoles struct {
	calls int
	err   error
}

func (s *stubRoles) EnsureRole(_ context.Context, user *models.User) (models.Role, error) {
	s.calls++
	if s.err != nil {
		return 0, s.err
	}
	if role, ok := user.HighestRole(); ok {
		return role, nil
	}
	user.Groups = append(user.Groups, models.Group{Name: models.RoleParticipant.String()})
	return models.RoleParticipant, nil
}

func userWith(roles ...models.Role) *models.User {
	u := &models.User{ID: "u1", Username: "u1", IsActive: true}
	for _, r := range roles {
		u.Groups = append(u.Groups, models.Group{Name: r.String()})
	}
	return u
}

func gatedRouter(user *models.User, min models.Role, roles RoleResolver) *gin.Engine {
	r := gin.New()
	r.Use(func(c *gin.Context) {
		if user != nil {
			c.Set(currentUserKey, user)
		}
		c.Next()
	})
	r.GET("/protected/*path", RequireRole(min, roles), func(c *gin.Context) {
		c.String(http.StatusOK, "ok")
	})
	return r
}

func get(r http.Handler, target string) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, target, nil))
	return rec
}

func TestRequireRoleAnonymousGoesToLogin(t *testing.T) {
	rec := get(gatedRouter(nil, models.RoleParticipant, &stubRoles{}), "/protected/page?x=1")

	assert.Equal(t, http.StatusFound, rec.Code)
	assert.Equal(t, "/login?next=%2Fprotected%2Fpage%3Fx%3D1", rec.Header().Get("Location"))
}

func TestRequireRoleHierarchy(t *testing.T) {
	tests := []struct {
		name    string
		user    *models.User
		min     models.Role
		allowed bool
	}{
		{"admin passes participant gate", userWith(models.RoleAdmin), models.RoleParticipant, true},
		{"admin passes organizer gate", userWith(models.RoleAdmin), models.RoleOrganizer, true},
		{"organizer passes organizer gate", userWith(models.RoleOrganizer), models.RoleOrganizer, true},
		{"organizer fails admin gate", userWith(models.RoleOrganizer), models.RoleAdmin, false},
		{"participant fails organizer gate", userWith(models.RoleParticipant), models.RoleOrganizer, false},
		{"participant passes participant gate", userWith(models.RoleParticipant), models.RoleParticipant, true},
		{"superuser without groups passes admin gate", &models.User{ID: "root", IsSuperuser: true}, models.RoleAdmin, true},
		{"user without groups becomes participant", userWith(), models.RoleParticipant, true},
		{"user without groups fails organizer gate", userWith(), models.RoleOrganizer, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := get(gatedRouter(tt.user, tt.min, &stubRoles{}), "/protected/x")
			if tt.allowed {
				assert.Equal(t, http.StatusOK, rec.Code)
				return
			}
			assert.Equal(t, http.StatusSeeOther, rec.Code)
			assert.Equal(t, FallbackPath, rec.Header().Get("Location"))

			var flash *http.Cookie
			for _, c := range rec.Result().Cookies() {
				if c.Name == utils.FlashCookie {
					flash = c
				}
			}
			require.NotNil(t, flash, "expected a flash message")
		})
	}
}

func TestRequireRolePersistsDefault(t *testing.T) {
	user := userWith()
	roles := &stubRoles{}

	rec := get(gatedRouter(user, models.RoleParticipant, roles), "/protected/x")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 1, roles.calls)
	assert.True(t, user.HasRole(models.RoleParticipant))
}

func TestRequireRoleResolverFailure(t *testing.T) {
	r := gin.New()
	r.Use(ErrorHandler(logger.Discard()))
	r.Use(func(c *gin.Context) {
		c.Set(currentUserKey, userWith())
		c.Next()
	})
	r.GET("/x", RequireRole(models.RoleParticipant, &stubRoles{err: errors.New("db down")}), func(c *gin.Context) {
		c.String(http.StatusOK, "ok")
	})

	rec := get(r, "/x")
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}

func TestRequireLogin(t *testing.T) {
	r := gin.New()
	r.POST("/logout", RequireLogin(), func(c *gin.Context) { c.Status(http.StatusNoContent) })

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/logout", nil))
	assert.Equal(t, http.StatusFound, rec.Code)
	assert.Equal(t, "/login?next=%2Flogout", rec.Header().Get("Location"))
}

type stubSessions map[string]*models.User

func (s stubSessions) UserFromToken(_ context.Context, token string) (*models.User, error) {
	if u, ok := s[token]; ok {
		return u, nil
	}
	return nil, errors.New("invalid token")
}

func TestAuthenticate(t *testing.T) {
	alice := userWith(models.RoleParticipant)
	r := gin.New()
	r.Use(Authenticate(stubSessions{"good": alice}, logger.Discard()))
	r.GET("/whoami", func(c *gin.Context) {
		if u, ok := CurrentUser(c); ok {
			c.String(http.StatusOK, u.ID)
			return
		}
		c.String(http.StatusOK, "anonymous")
	})

	rec := get(r, "/whoami")
	assert.Equal(t, "anonymous", rec.Body.String())

	req := httptest.NewRequest(http.MethodGet, "/whoami", nil)
	req.AddCookie(&http.Cookie{Name: SessionCookie, Value: "good"})
	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	assert.Equal(t, alice.ID, rec.Body.String())

	req = httptest.NewRequest(http.MethodGet, "/whoami", nil)
	req.AddCookie(&http.Cookie{Name: SessionCookie, Value: "forged"})
	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	assert.Equal(t, "anonymous", rec.Body.String())

	var cleared bool
	for _, c := range rec.Result().Cookies() {
		if c.Name == SessionCookie && c.MaxAge < 0 {
			cleared = true
		}
	}
	assert.True(t, cleared)
}
