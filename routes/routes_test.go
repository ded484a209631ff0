package routes

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"eventhub-api/config"
	"eventhub-api/database"
	"eventhub-api/logger"
	"eventhub-api/middleware"
	"eventhub-api/models"
	"eventhub-api/services"
)

func init() {
	gin.SetMode(gin.TestMode)
}

// instantQueue reports every message as delivered.
type instantQueue struct{}

func (instantQueue) Enqueue(services.Message) (<-chan error, error) {
	done := make(chan error, 1)
	done <- nil
	return done, nil
}

type app struct {
	t      *testing.T
	db     *gorm.DB
	router *gin.Engine
}

func newApp(t *testing.T) *app {
	t.Helper()
	db, err := database.OpenInMemory(strings.ReplaceAll(t.Name(), "/", "_"))
	require.NoError(t, err)

	l := logger.Discard()
	cfg := &config.Config{
		JWTSecret: "test-secret",
		TokenTTL:  time.Hour,
		BaseURL:   "http://127.0.0.1:8080",
	}

	router := gin.New()
	router.Use(middleware.ErrorHandler(l))
	SetupRoutes(router, db, cfg, Dependencies{
		EmailService: services.NewEmailService(instantQueue{}, cfg.BaseURL, time.Second, l),
		Revocations:  services.NewMemoryRevocationStore(),
		RateLimiter:  middleware.NewRateLimiter(1000, 1000),
		Logger:       l,
	})
	return &app{t: t, db: db, router: router}
}

// session is a minimal cookie jar.
type session struct {
	cookies map[string]*http.Cookie
}

func newSession() *session {
	return &session{cookies: map[string]*http.Cookie{}}
}

func (a *app) do(s *session, method, target string, form url.Values) *httptest.ResponseRecorder {
	a.t.Helper()
	var body *strings.Reader
	if form != nil {
		body = strings.NewReader(form.Encode())
	} else {
		body = strings.NewReader("")
	}
	req := httptest.NewRequest(method, target, body)
	if form != nil {
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	}
	for _, c := range s.cookies {
		req.AddCookie(c)
	}

	rec := httptest.NewRecorder()
	a.router.ServeHTTP(rec, req)

	for _, c := range rec.Result().Cookies() {
		if c.MaxAge < 0 {
			delete(s.cookies, c.Name)
			continue
		}
		s.cookies[c.Name] = c
	}
	return rec
}

type pageResponse struct {
	Page     string `json:"page"`
	Messages []struct {
		Level   string `json:"level"`
		Message string `json:"message"`
	} `json:"messages"`
	Data json.RawMessage `json:"data"`
}

func lastMessage(t *testing.T, page pageResponse) (level, message string) {
	t.Helper()
	require.NotEmpty(t, page.Messages)
	last := page.Messages[len(page.Messages)-1]
	return last.Level, last.Message
}

func decodePage(t *testing.T, rec *httptest.ResponseRecorder) pageResponse {
	t.Helper()
	var page pageResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &page))
	return page
}

// signUpAndLogin runs the full account flow and returns a logged-in session.
func (a *app) signUpAndLogin(username, role string) *session {
	a.t.Helper()
	s := newSession()

	rec := a.do(s, http.MethodPost, "/signup", url.Values{
		"username":         {username},
		"email":            {username + "@example.com"},
		"password":         {"Passw0rd!"},
		"password_confirm": {"Passw0rd!"},
		"role":             {role},
	})
	require.Equal(a.t, http.StatusSeeOther, rec.Code)
	require.Equal(a.t, middleware.LoginPath, rec.Header().Get("Location"))

	var profile models.Profile
	require.NoError(a.t, a.db.Joins("JOIN users ON users.id = profiles.user_id").
		Where("users.username = ?", username).First(&profile).Error)

	rec = a.do(s, http.MethodGet, "/activate/"+profile.ActivationToken, nil)
	require.Equal(a.t, http.StatusSeeOther, rec.Code)

	// Rendering the login page drains the signup and activation messages.
	a.do(s, http.MethodGet, middleware.LoginPath, nil)

	rec = a.do(s, http.MethodPost, "/login", url.Values{
		"username": {username},
		"password": {"Passw0rd!"},
	})
	require.Equal(a.t, http.StatusSeeOther, rec.Code)
	require.Equal(a.t, "/", rec.Header().Get("Location"))
	require.Contains(a.t, s.cookies, middleware.SessionCookie)
	return s
}

func TestLoginRequiresActivation(t *testing.T) {
	a := newApp(t)
	s := newSession()

	rec := a.do(s, http.MethodPost, "/signup", url.Values{
		"username":         {"alice"},
		"email":            {"alice@example.com"},
		"password":         {"Passw0rd!"},
		"password_confirm": {"Passw0rd!"},
	})
	require.Equal(t, http.StatusSeeOther, rec.Code)

	rec = a.do(s, http.MethodPost, "/login", url.Values{"username": {"alice"}, "password": {"Passw0rd!"}})
	assert.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, middleware.LoginPath, rec.Header().Get("Location"))
	assert.NotContains(t, s.cookies, middleware.SessionCookie)

	page := decodePage(t, a.do(s, http.MethodGet, "/login", nil))
	_, message := lastMessage(t, page)
	assert.Equal(t, "Please activate your account before logging in.", message)
}

func TestSignupPasswordMismatch(t *testing.T) {
	a := newApp(t)
	rec := a.do(newSession(), http.MethodPost, "/signup", url.Values{
		"username":         {"alice"},
		"email":            {"alice@example.com"},
		"password":         {"Passw0rd!"},
		"password_confirm": {"Different1!"},
	})
	assert.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/signup", rec.Header().Get("Location"))

	var users int64
	require.NoError(t, a.db.Model(&models.User{}).Count(&users).Error)
	assert.Equal(t, int64(0), users)
}

func TestGateRedirects(t *testing.T) {
	a := newApp(t)

	rec := a.do(newSession(), http.MethodGet, "/dashboard/admin", nil)
	assert.Equal(t, http.StatusFound, rec.Code)
	assert.Equal(t, "/login?next=%2Fdashboard%2Fadmin", rec.Header().Get("Location"))

	participant := a.signUpAndLogin("paula", "Participant")
	rec = a.do(participant, http.MethodPost, "/categories", url.Values{"name": {"Music"}})
	assert.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, middleware.FallbackPath, rec.Header().Get("Location"))

	rec = a.do(participant, http.MethodGet, "/", nil)
	assert.Equal(t, http.StatusFound, rec.Code)
	assert.Equal(t, "/dashboard/participant", rec.Header().Get("Location"))

	admin := a.signUpAndLogin("ada", "Admin")
	rec = a.do(admin, http.MethodGet, "/", nil)
	assert.Equal(t, "/dashboard/admin", rec.Header().Get("Location"))
	rec = a.do(admin, http.MethodGet, "/dashboard/organizer", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestLoginHonoursNext(t *testing.T) {
	a := newApp(t)
	a.signUpAndLogin("alice", "Participant")

	s := newSession()
	rec := a.do(s, http.MethodPost, "/login?next="+url.QueryEscape("/profile"), url.Values{
		"username": {"alice"},
		"password": {"Passw0rd!"},
	})
	assert.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/profile", rec.Header().Get("Location"))

	rec = a.do(s, http.MethodPost, "/login?next="+url.QueryEscape("https://evil.example.com"), url.Values{
		"username": {"alice"},
		"password": {"Passw0rd!"},
	})
	assert.Equal(t, "/", rec.Header().Get("Location"))
}

func TestEventAndRSVPFlow(t *testing.T) {
	a := newApp(t)
	admin := a.signUpAndLogin("ada", "Admin")
	organizer := a.signUpAndLogin("olga", "Organizer")
	alice := a.signUpAndLogin("alice", "Participant")
	bob := a.signUpAndLogin("bob", "Participant")

	rec := a.do(admin, http.MethodPost, "/categories", url.Values{"name": {"Tech"}, "description": {"Talks"}})
	require.Equal(t, http.StatusSeeOther, rec.Code)
	var category models.Category
	require.NoError(t, a.db.Where("name = ?", "Tech").First(&category).Error)

	rec = a.do(alice, http.MethodPost, "/events", url.Values{"name": {"Nope"}})
	assert.Equal(t, middleware.FallbackPath, rec.Header().Get("Location"))

	rec = a.do(organizer, http.MethodPost, "/events", url.Values{
		"name":             {"Go Meetup"},
		"description":      {"Talks and pizza"},
		"date":             {"2030-05-01"},
		"time":             {"18:30"},
		"location":         {"Hall A"},
		"category_id":      {category.ID},
		"max_participants": {"1"},
	})
	require.Equal(t, http.StatusSeeOther, rec.Code)
	eventPath := rec.Header().Get("Location")
	require.True(t, strings.HasPrefix(eventPath, "/events/"))

	rec = a.do(alice, http.MethodPost, eventPath+"/rsvp", url.Values{"notes": {"front row"}})
	require.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, eventPath, rec.Header().Get("Location"))

	page := decodePage(t, a.do(alice, http.MethodGet, eventPath, nil))
	assert.Equal(t, "events/event_detail", page.Page)
	level, _ := lastMessage(t, page)
	assert.Equal(t, "success", level)

	var detail struct {
		Event struct {
			RSVPCount int64 `json:"rsvp_count"`
			IsFull    bool  `json:"is_full"`
		} `json:"event"`
		CanRSVP bool `json:"can_rsvp"`
	}
	require.NoError(t, json.Unmarshal(page.Data, &detail))
	assert.Equal(t, int64(1), detail.Event.RSVPCount)
	assert.True(t, detail.Event.IsFull)
	assert.False(t, detail.CanRSVP)

	rec = a.do(bob, http.MethodPost, eventPath+"/rsvp", nil)
	require.Equal(t, http.StatusSeeOther, rec.Code)
	page = decodePage(t, a.do(bob, http.MethodGet, eventPath, nil))
	_, message := lastMessage(t, page)
	assert.Equal(t, "This event is full and cannot accept more participants.", message)

	rec = a.do(bob, http.MethodPost, eventPath+"/cancel-rsvp", nil)
	require.Equal(t, http.StatusSeeOther, rec.Code)
	page = decodePage(t, a.do(bob, http.MethodGet, eventPath, nil))
	_, message = lastMessage(t, page)
	assert.Equal(t, "No RSVP found to cancel.", message)

	rec = a.do(alice, http.MethodPost, eventPath+"/cancel-rsvp", nil)
	require.Equal(t, http.StatusSeeOther, rec.Code)
	rec = a.do(bob, http.MethodPost, eventPath+"/rsvp", nil)
	require.Equal(t, http.StatusSeeOther, rec.Code)

	page = decodePage(t, a.do(bob, http.MethodGet, eventPath+"/participants", nil))
	var participants struct {
		RSVPs []struct {
			User struct {
				Username string `json:"username"`
			} `json:"user"`
		} `json:"rsvps"`
	}
	require.NoError(t, json.Unmarshal(page.Data, &participants))
	require.Len(t, participants.RSVPs, 1)
	assert.Equal(t, "bob", participants.RSVPs[0].User.Username)

	rec = a.do(admin, http.MethodPost, eventPath+"/delete", nil)
	require.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/events", rec.Header().Get("Location"))

	rec = a.do(alice, http.MethodGet, eventPath, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestLogoutRevokesSession(t *testing.T) {
	a := newApp(t)
	s := a.signUpAndLogin("alice", "Participant")
	token := s.cookies[middleware.SessionCookie]

	rec := a.do(s, http.MethodPost, "/logout", nil)
	require.Equal(t, http.StatusSeeOther, rec.Code)

	replay := newSession()
	replay.cookies[middleware.SessionCookie] = token
	rec = a.do(replay, http.MethodGet, "/profile", nil)
	assert.Equal(t, http.StatusFound, rec.Code)
	assert.Equal(t, fmt.Sprintf("%s?next=%%2Fprofile", middleware.LoginPath), rec.Header().Get("Location"))
}

func TestHealth(t *testing.T) {
	a := newApp(t)
	rec := a.do(newSession(), http.MethodGet, "/health", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"healthy","database":"ok"}`, rec.Body.String())
}
