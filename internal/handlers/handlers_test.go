package handlers

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/Windi-Fikriyansyah/talentlink_be/internal/db/dbtest"
	"github.com/Windi-Fikriyansyah/talentlink_be/internal/middleware"
	"github.com/Windi-Fikriyansyah/talentlink_be/internal/models"
	"github.com/Windi-Fikriyansyah/talentlink_be/internal/utils"
)

const testSecret = "test-secret"

type envelope struct {
	Success bool            `json:"success"`
	Code    string          `json:"code"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

type harness struct {
	t   *testing.T
	app *fiber.App
	db  *gorm.DB
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	gdb := dbtest.New(t)
	app := NewApp(Deps{
		DB:            gdb,
		Log:           zap.NewNop(),
		JWTSecret:     testSecret,
		JWTExpiresMin: 60,
	})
	return &harness{t: t, app: app, db: gdb}
}

func (h *harness) token(u models.User) string {
	h.t.Helper()
	tok, err := utils.SignJWT(testSecret, u.ID.String(), string(u.Role), 60)
	require.NoError(h.t, err)
	return tok
}

func (h *harness) do(method, path, token string, body interface{}) (int, envelope) {
	h.t.Helper()
	var r io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		require.NoError(h.t, err)
		r = bytes.NewReader(b)
	}
	req := httptest.NewRequest(method, path, r)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := h.app.Test(req, -1)
	require.NoError(h.t, err)
	defer resp.Body.Close()

	var env envelope
	raw, err := io.ReadAll(resp.Body)
	require.NoError(h.t, err)
	if len(raw) > 0 {
		require.NoError(h.t, json.Unmarshal(raw, &env), string(raw))
	}
	return resp.StatusCode, env
}

func decode[T any](t *testing.T, env envelope) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(env.Data, &v))
	return v
}

func TestRegisterLoginMe(t *testing.T) {
	h := newHarness(t)

	status, env := h.do(http.MethodPost, "/api/auth/register", "", fiber.Map{
		"name": "Ana", "email": "Ana@Example.com", "password": "secret1", "role": "freelancer",
	})
	require.Equal(t, http.StatusCreated, status)
	assert.True(t, env.Success)

	status, _ = h.do(http.MethodPost, "/api/auth/register", "", fiber.Map{
		"name": "Ana", "email": "ana@example.com", "password": "secret1",
	})
	assert.Equal(t, http.StatusBadRequest, status)

	status, env = h.do(http.MethodPost, "/api/auth/register", "", fiber.Map{
		"name": "Root", "email": "root@example.com", "password": "secret1", "role": "admin",
	})
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, "ValidationError", env.Code)

	status, _ = h.do(http.MethodPost, "/api/auth/login", "", fiber.Map{"email": "ana@example.com", "password": "wrong!"})
	assert.Equal(t, http.StatusUnauthorized, status)

	req := httptest.NewRequest(http.MethodPost, "/api/auth/login",
		bytes.NewReader([]byte(`{"email":"ana@example.com","password":"secret1"}`)))
	req.Header.Set("Content-Type", "application/json")
	resp, err := h.app.Test(req, -1)
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var cookie *http.Cookie
	for _, c := range resp.Cookies() {
		if c.Name == middleware.CookieName {
			cookie = c
		}
	}
	require.NotNil(t, cookie)

	req = httptest.NewRequest(http.MethodGet, "/api/me", nil)
	req.AddCookie(cookie)
	resp, err = h.app.Test(req, -1)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestProtectedRoutesNeedToken(t *testing.T) {
	h := newHarness(t)

	status, _ := h.do(http.MethodGet, "/api/projects", "", nil)
	assert.Equal(t, http.StatusUnauthorized, status)

	status, _ = h.do(http.MethodPatch, "/api/proposals/"+uuid.NewString()+"/accept", "garbage", nil)
	assert.Equal(t, http.StatusUnauthorized, status)
}

func TestProposalLifecycleOverHTTP(t *testing.T) {
	h := newHarness(t)
	client := dbtest.CreateUser(t, h.db, "client", models.RoleClient)
	a := dbtest.CreateUser(t, h.db, "a", models.RoleFreelancer)
	b := dbtest.CreateUser(t, h.db, "b", models.RoleFreelancer)
	ct, at, bt := h.token(client), h.token(a), h.token(b)

	status, _ := h.do(http.MethodPost, "/api/projects", at, fiber.Map{"title": "x", "budget": 10})
	assert.Equal(t, http.StatusForbidden, status)

	status, env := h.do(http.MethodPost, "/api/projects", ct, fiber.Map{
		"title": "Landing page", "description": "marketing site", "budget": "500.00",
		"duration": "2 weeks", "skills": []string{"Go", "React"},
	})
	require.Equal(t, http.StatusCreated, status)
	project := decode[models.Project](t, env)

	status, env = h.do(http.MethodGet, "/api/projects?skill=go&min_budget=100", at, nil)
	require.Equal(t, http.StatusOK, status)
	assert.Len(t, decode[[]models.Project](t, env), 1)

	submit := func(token string, rate string) (int, envelope) {
		return h.do(http.MethodPost, "/api/proposals", token, fiber.Map{
			"project_id": project.ID, "cover_letter": "hire me", "proposed_rate": rate,
		})
	}
	status, env = submit(at, "100")
	require.Equal(t, http.StatusCreated, status)
	pa := decode[models.Proposal](t, env)

	status, env = submit(at, "90")
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, "DuplicateProposal", env.Code)

	status, env = submit(bt, "80")
	require.Equal(t, http.StatusCreated, status)
	pb := decode[models.Proposal](t, env)

	status, _ = submit(ct, "70")
	assert.Equal(t, http.StatusForbidden, status)

	status, env = h.do(http.MethodGet, "/api/projects/"+project.ID.String()+"/proposals", ct, nil)
	require.Equal(t, http.StatusOK, status)
	assert.Len(t, decode[[]models.Proposal](t, env), 2)

	status, env = h.do(http.MethodPatch, "/api/proposals/"+pb.ID.String()+"/accept", at, nil)
	assert.Equal(t, http.StatusForbidden, status)

	status, env = h.do(http.MethodPatch, "/api/proposals/"+pb.ID.String()+"/accept", ct, nil)
	require.Equal(t, http.StatusOK, status)
	contract := decode[models.Contract](t, env)
	assert.True(t, contract.AgreedRate.Equal(pb.ProposedRate))
	assert.Equal(t, b.ID, contract.FreelancerID)

	status, env = h.do(http.MethodPatch, "/api/proposals/"+pb.ID.String()+"/accept", ct, nil)
	assert.Equal(t, http.StatusConflict, status)
	assert.Equal(t, "AlreadyProcessed", env.Code)

	status, env = h.do(http.MethodPatch, "/api/proposals/"+pa.ID.String()+"/reject", ct, nil)
	assert.Equal(t, http.StatusConflict, status)
	assert.Equal(t, "AlreadyProcessed", env.Code)

	status, env = h.do(http.MethodGet, "/api/proposals/mine", at, nil)
	require.Equal(t, http.StatusOK, status)
	mine := decode[[]models.Proposal](t, env)
	require.Len(t, mine, 1)
	assert.Equal(t, models.ProposalRejected, mine[0].Status)

	status, env = h.do(http.MethodGet, "/api/notifications/unread-count", bt, nil)
	require.Equal(t, http.StatusOK, status)
	assert.JSONEq(t, `{"unread":1}`, string(env.Data))

	status, _ = h.do(http.MethodPatch, "/api/contracts/"+contract.ID.String()+"/complete", bt, nil)
	assert.Equal(t, http.StatusForbidden, status)

	status, _ = h.do(http.MethodPatch, "/api/contracts/"+contract.ID.String()+"/complete", ct, nil)
	require.Equal(t, http.StatusOK, status)

	status, _ = h.do(http.MethodPost, "/api/contracts/"+contract.ID.String()+"/reviews", ct, fiber.Map{"rating": 5, "comment": "great"})
	require.Equal(t, http.StatusCreated, status)

	status, env = h.do(http.MethodPost, "/api/contracts/"+contract.ID.String()+"/reviews", ct, fiber.Map{"rating": 4})
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, "DuplicateReview", env.Code)

	status, env = h.do(http.MethodGet, "/api/users/"+b.ID.String()+"/reviews", at, nil)
	require.Equal(t, http.StatusOK, status)
	assert.Contains(t, string(env.Data), `"count":1`)
}

func TestNotFoundAndValidationMapping(t *testing.T) {
	h := newHarness(t)
	client := dbtest.CreateUser(t, h.db, "client", models.RoleClient)
	ct := h.token(client)

	status, env := h.do(http.MethodPatch, "/api/proposals/"+uuid.NewString()+"/accept", ct, nil)
	assert.Equal(t, http.StatusNotFound, status)
	assert.Equal(t, "NotFound", env.Code)
	assert.False(t, env.Success)

	status, env = h.do(http.MethodPatch, "/api/proposals/not-a-uuid/accept", ct, nil)
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, "ValidationError", env.Code)

	status, _ = h.do(http.MethodGet, "/api/messages", ct, nil)
	assert.Equal(t, http.StatusBadRequest, status)
}

func TestMessagingAndNotificationsOverHTTP(t *testing.T) {
	h := newHarness(t)
	alice := dbtest.CreateUser(t, h.db, "alice", models.RoleClient)
	bob := dbtest.CreateUser(t, h.db, "bob", models.RoleFreelancer)
	at, bt := h.token(alice), h.token(bob)

	status, env := h.do(http.MethodPost, "/api/messages", at, fiber.Map{"receiver_id": bob.ID, "text": "hello"})
	require.Equal(t, http.StatusCreated, status)
	msg := decode[models.Message](t, env)

	status, env = h.do(http.MethodGet, "/api/messages?user_id="+alice.ID.String(), bt, nil)
	require.Equal(t, http.StatusOK, status)
	assert.Len(t, decode[[]models.Message](t, env), 1)

	status, _ = h.do(http.MethodPatch, "/api/messages/"+msg.ID.String()+"/read", at, nil)
	assert.Equal(t, http.StatusForbidden, status)
	status, _ = h.do(http.MethodPatch, "/api/messages/"+msg.ID.String()+"/read", bt, nil)
	assert.Equal(t, http.StatusOK, status)

	status, env = h.do(http.MethodGet, "/api/notifications?unread=true", bt, nil)
	require.Equal(t, http.StatusOK, status)
	list := decode[[]models.Notification](t, env)
	require.Len(t, list, 1)

	status, _ = h.do(http.MethodPatch, "/api/notifications/"+list[0].ID.String()+"/read", at, nil)
	assert.Equal(t, http.StatusForbidden, status)

	status, env = h.do(http.MethodPost, "/api/notifications/read-all", bt, nil)
	require.Equal(t, http.StatusOK, status)
	assert.JSONEq(t, `{"updated":1}`, string(env.Data))
}

func TestOpsEndpoints(t *testing.T) {
	h := newHarness(t)

	status, _ := h.do(http.MethodGet, "/healthz", "", nil)
	assert.Equal(t, http.StatusOK, status)

	resp, err := h.app.Test(httptest.NewRequest(http.MethodGet, "/metrics", nil), -1)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestProfileOverHTTP(t *testing.T) {
	h := newHarness(t)
	fl := dbtest.CreateUser(t, h.db, "fl", models.RoleFreelancer)
	client := dbtest.CreateUser(t, h.db, "client", models.RoleClient)
	ft, ct := h.token(fl), h.token(client)

	status, env := h.do(http.MethodGet, "/api/profile/me", ft, nil)
	assert.Equal(t, http.StatusNotFound, status)
	assert.Equal(t, "NotFound", env.Code)

	status, env = h.do(http.MethodPut, "/api/profile/me", ft, fiber.Map{
		"bio": "Go developer", "skills": []string{"Go"}, "hourly_rate": "40",
	})
	require.Equal(t, http.StatusOK, status)
	saved := decode[models.Profile](t, env)
	assert.Equal(t, fl.ID, saved.UserID)

	status, _ = h.do(http.MethodPut, "/api/profile/me", ft, fiber.Map{"hourly_rate": "-5"})
	assert.Equal(t, http.StatusBadRequest, status)

	status, env = h.do(http.MethodGet, "/api/users/"+fl.ID.String()+"/profile", ct, nil)
	require.Equal(t, http.StatusOK, status)
	got := decode[models.Profile](t, env)
	assert.Equal(t, "Go developer", got.Bio)
	assert.Equal(t, saved.ID, got.ID)
}
