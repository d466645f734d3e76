package handlers

import (
	"bytes"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"regexp"
	"strings"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/Jidetireni/sanctuary-access/factory"
	"github.com/Jidetireni/sanctuary-access/internal/config"
	"github.com/Jidetireni/sanctuary-access/internal/middleware"
	"github.com/Jidetireni/sanctuary-access/internal/repository"
	"github.com/Jidetireni/sanctuary-access/internal/services/mailer"
	"github.com/Jidetireni/sanctuary-access/internal/services/members"
	"github.com/Jidetireni/sanctuary-access/internal/services/users"
	"github.com/Jidetireni/sanctuary-access/pkg/cache"
	"github.com/Jidetireni/sanctuary-access/pkg/database"
	emailpkg "github.com/Jidetireni/sanctuary-access/pkg/email"
	"github.com/Jidetireni/sanctuary-access/pkg/images"
	"github.com/Jidetireni/sanctuary-access/pkg/logger"
	"github.com/Jidetireni/sanctuary-access/pkg/token"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var memberColumns = []string{
	"id", "first_name", "last_name", "phone", "email", "picture", "email_validated_at",
	"requested_at", "device_id", "user_id", "created_at", "updated_at",
}

type testAPI struct {
	router http.Handler
	mock   sqlmock.Sqlmock
	jwt    *token.Jwt
}

func newTestAPI(t *testing.T) *testAPI {
	t.Helper()

	mockDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = mockDB.Close() })

	db := sqlx.NewDb(mockDB, "postgres")
	db.Mapper = database.NewMapper()

	cfg := &config.Config{
		Server: config.ServerConfig{Env: "test", FEURL: "https://church.test", APIURL: "https://api.church.test"},
		Auth:   config.AuthConfig{JWTSecret: "test-secret"},
		IsDev:  true,
	}
	log := logger.Nop()
	store := cache.NewMemory()
	jwt := token.NewJwt(cfg.Auth.JWTSecret)
	admins := users.NewAdminGate([]string{"pastor@church.org"})

	email, err := emailpkg.New(cfg, log)
	require.NoError(t, err)

	repo := repository.NewMemberRepository(db)
	f := &factory.Factory{
		Logger:   log,
		JWTToken: jwt,
		Services: &factory.Services{
			Member: members.New(db, cfg, repo, images.NewProcessor(t.TempDir()), email, store, log),
			User:   users.New(cfg, jwt, store, nil, admins, log),
			Mailer: mailer.New(email),
		},
		Repositories: &factory.Repositories{Member: repo},
		Middleware:   middleware.New(jwt, admins, log),
	}

	validate, trans, err := NewValidator()
	require.NoError(t, err)
	h := NewHandlers(f, cfg, validate, trans)

	r := chi.NewRouter()
	r.Get("/healthz", h.HealthCheckHandler)
	r.Post("/auth/login", h.Login)
	r.Get("/auth/google", h.GoogleLogin)
	r.Post("/auth/refresh", h.RefreshToken)
	r.Get("/email/verify", h.VerifyEmail)
	r.Group(func(r chi.Router) {
		r.Use(f.Middleware.RequireAuth)
		r.Get("/auth/me", h.Me)
		r.Post("/email/send", h.SendEmail)
		r.Route("/members", func(r chi.Router) {
			r.With(f.Middleware.RequireAdmin).Get("/", h.ListMembers)
			r.Post("/", h.SubmitMember)
			r.Get("/search", h.SearchMembers)
			r.Get("/{id}", h.GetMember)
			r.Put("/{id}", h.UpdateMember)
			r.Post("/{id}/picture", h.UploadPicture)
		})
	})

	return &testAPI{router: r, mock: mock, jwt: jwt}
}

func (a *testAPI) bearer(t *testing.T, email string, provider token.Provider, roles ...string) string {
	t.Helper()
	pair, err := a.jwt.GenerateTokenPair(&token.TokenPairParams{Email: email, Provider: provider, Roles: roles})
	require.NoError(t, err)
	return "Bearer " + pair.AccessToken
}

func (a *testAPI) do(req *http.Request) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	a.router.ServeHTTP(rec, req)
	return rec
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return body
}

func TestHealthCheck(t *testing.T) {
	api := newTestAPI(t)

	rec := api.do(httptest.NewRequest(http.MethodGet, "/healthz", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	body := decodeBody(t, rec)
	data := body["data"].(map[string]any)
	assert.Equal(t, "available", data["status"])
}

func TestLogin(t *testing.T) {
	api := newTestAPI(t)

	t.Run("valid", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/auth/login", strings.NewReader(`{"email":"ada@example.org","name":"Ada"}`))
		rec := api.do(req)
		require.Equal(t, http.StatusOK, rec.Code)

		data := decodeBody(t, rec)["data"].(map[string]any)
		assert.NotEmpty(t, data["access_token"])
		user := data["user"].(map[string]any)
		assert.Equal(t, false, user["is_admin"])
		assert.Len(t, rec.Result().Cookies(), 2)
	})

	t.Run("invalid email", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/auth/login", strings.NewReader(`{"email":"not-an-email"}`))
		rec := api.do(req)
		require.Equal(t, http.StatusBadRequest, rec.Code)

		body := decodeBody(t, rec)
		assert.Equal(t, "Input validation failed", body["message"])
		errs := body["errors"].([]any)
		require.Len(t, errs, 1)
		assert.Equal(t, "email", errs[0].(map[string]any)["field"])
	})

	t.Run("unknown field", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/auth/login", strings.NewReader(`{"email":"ada@example.org","password":"x"}`))
		assert.Equal(t, http.StatusBadRequest, api.do(req).Code)
	})
}

func TestRefreshFromBody(t *testing.T) {
	api := newTestAPI(t)

	rec := api.do(httptest.NewRequest(http.MethodPost, "/auth/login", strings.NewReader(`{"email":"ada@example.org"}`)))
	require.Equal(t, http.StatusOK, rec.Code)
	refresh := decodeBody(t, rec)["data"].(map[string]any)["refresh_token"].(string)

	body, err := json.Marshal(map[string]string{"refresh_token": refresh})
	require.NoError(t, err)
	rec = api.do(httptest.NewRequest(http.MethodPost, "/auth/refresh", bytes.NewReader(body)))
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = api.do(httptest.NewRequest(http.MethodPost, "/auth/refresh", nil))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestGoogleLoginDisabled(t *testing.T) {
	api := newTestAPI(t)
	rec := api.do(httptest.NewRequest(http.MethodGet, "/auth/google", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestMe(t *testing.T) {
	api := newTestAPI(t)

	assert.Equal(t, http.StatusUnauthorized, api.do(httptest.NewRequest(http.MethodGet, "/auth/me", nil)).Code)

	req := httptest.NewRequest(http.MethodGet, "/auth/me", nil)
	req.Header.Set("Authorization", api.bearer(t, "pastor@church.org", token.ProviderGoogle, token.RoleMember, token.RoleAdmin))
	rec := api.do(req)
	require.Equal(t, http.StatusOK, rec.Code)
	data := decodeBody(t, rec)["data"].(map[string]any)
	assert.Equal(t, true, data["is_admin"])
}

func TestSearchMembers(t *testing.T) {
	t.Run("wildcard needs admin", func(t *testing.T) {
		api := newTestAPI(t)
		req := httptest.NewRequest(http.MethodGet, "/members/search?last_name=*", nil)
		req.Header.Set("Authorization", api.bearer(t, "ada@example.org", token.ProviderCredentials, token.RoleMember))

		rec := api.do(req)
		assert.Equal(t, http.StatusForbidden, rec.Code)
	})

	t.Run("last name", func(t *testing.T) {
		api := newTestAPI(t)
		now := time.Now().UTC()
		id := uuid.New()

		api.mock.ExpectQuery(regexp.QuoteMeta(`SELECT * FROM members WHERE last_name ILIKE $1 ORDER BY requested_at DESC, id DESC LIMIT 6`)).
			WithArgs("%love%").
			WillReturnRows(sqlmock.NewRows(memberColumns).AddRow(id.String(), "Ada", "Lovelace", "555", "ada@example.org",
				"pictures/a.jpg", nil, now, nil, "lovelace0555", now, now))

		req := httptest.NewRequest(http.MethodGet, "/members/search?last_name=love&limit=5", nil)
		req.Header.Set("Authorization", api.bearer(t, "ada@example.org", token.ProviderCredentials, token.RoleMember))

		rec := api.do(req)
		require.Equal(t, http.StatusOK, rec.Code)
		data := decodeBody(t, rec)["data"].(map[string]any)
		assert.Equal(t, "last_name", data["mode"])
		items := data["items"].([]any)
		require.Len(t, items, 1)
		assert.Equal(t, "/uploads/pictures/a.jpg", items[0].(map[string]any)["picture_url"])
		assert.NoError(t, api.mock.ExpectationsWereMet())
	})

	t.Run("bad cursor", func(t *testing.T) {
		api := newTestAPI(t)
		req := httptest.NewRequest(http.MethodGet, "/members/search?last_name=love&cursor=%25%25", nil)
		req.Header.Set("Authorization", api.bearer(t, "ada@example.org", token.ProviderCredentials, token.RoleMember))

		assert.Equal(t, http.StatusBadRequest, api.do(req).Code)
	})
}

func TestSubmitMember(t *testing.T) {
	api := newTestAPI(t)
	now := time.Now().UTC()
	id := uuid.New()

	api.mock.ExpectBegin()
	api.mock.ExpectQuery(regexp.QuoteMeta(`INSERT INTO members (first_name,last_name,phone,email,picture,requested_at,device_id,user_id) VALUES ($1,$2,$3,$4,$5,$6,$7,$8) RETURNING *`)).
		WithArgs("Ada", "Lovelace", "555-010-1234", "ada@example.org", sqlmock.AnyArg(), sqlmock.AnyArg(), "tablet-3", "lovelace1234").
		WillReturnRows(sqlmock.NewRows(memberColumns).AddRow(id.String(), "Ada", "Lovelace", "555-010-1234", "ada@example.org",
			nil, nil, now, "tablet-3", "lovelace1234", now, now))
	api.mock.ExpectCommit()

	req := httptest.NewRequest(http.MethodPost, "/members",
		strings.NewReader(`{"first_name":"Ada","last_name":"Lovelace","phone":"555-010-1234","email":"ada@example.org"}`))
	req.Header.Set("Authorization", api.bearer(t, "ada@example.org", token.ProviderCredentials, token.RoleMember))
	req.Header.Set("X-Device-ID", "tablet-3")

	rec := api.do(req)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	data := decodeBody(t, rec)["data"].(map[string]any)
	assert.Equal(t, id.String(), data["id"])
	assert.Equal(t, "lovelace1234", data["user_id"])
	assert.NoError(t, api.mock.ExpectationsWereMet())
}

func TestSubmitMember_ForeignEmailForbidden(t *testing.T) {
	api := newTestAPI(t)

	req := httptest.NewRequest(http.MethodPost, "/members",
		strings.NewReader(`{"first_name":"Ada","last_name":"Lovelace","phone":"555-010-1234","email":"victim@example.org"}`))
	req.Header.Set("Authorization", api.bearer(t, "mallory@example.org", token.ProviderCredentials, token.RoleMember))

	rec := api.do(req)
	assert.Equal(t, http.StatusForbidden, rec.Code, rec.Body.String())
	assert.NoError(t, api.mock.ExpectationsWereMet())
}

func TestSubmitMember_Validation(t *testing.T) {
	api := newTestAPI(t)

	req := httptest.NewRequest(http.MethodPost, "/members", strings.NewReader(`{"first_name":"Ada"}`))
	req.Header.Set("Authorization", api.bearer(t, "ada@example.org", token.ProviderCredentials, token.RoleMember))

	rec := api.do(req)
	require.Equal(t, http.StatusBadRequest, rec.Code)
	errs := decodeBody(t, rec)["errors"].([]any)
	fields := make([]string, 0, len(errs))
	for _, e := range errs {
		fields = append(fields, e.(map[string]any)["field"].(string))
	}
	assert.ElementsMatch(t, []string{"last_name", "phone", "email"}, fields)
}

func TestUpdateMember_IDMismatch(t *testing.T) {
	api := newTestAPI(t)

	req := httptest.NewRequest(http.MethodPut, "/members/"+uuid.NewString(),
		strings.NewReader(`{"id":"`+uuid.NewString()+`","first_name":"Ada","last_name":"L","phone":"1","email":"ada@example.org"}`))
	req.Header.Set("Authorization", api.bearer(t, "ada@example.org", token.ProviderCredentials, token.RoleMember))

	assert.Equal(t, http.StatusBadRequest, api.do(req).Code)
}

func TestGetMember(t *testing.T) {
	t.Run("invalid id", func(t *testing.T) {
		api := newTestAPI(t)
		req := httptest.NewRequest(http.MethodGet, "/members/not-a-uuid", nil)
		req.Header.Set("Authorization", api.bearer(t, "ada@example.org", token.ProviderCredentials, token.RoleMember))
		assert.Equal(t, http.StatusBadRequest, api.do(req).Code)
	})

	t.Run("not found", func(t *testing.T) {
		api := newTestAPI(t)
		id := uuid.New()
		api.mock.ExpectQuery(regexp.QuoteMeta(`SELECT * FROM members WHERE id = $1 LIMIT 1`)).
			WithArgs(id.String()).
			WillReturnRows(sqlmock.NewRows(memberColumns))

		req := httptest.NewRequest(http.MethodGet, "/members/"+id.String(), nil)
		req.Header.Set("Authorization", api.bearer(t, "ada@example.org", token.ProviderCredentials, token.RoleMember))
		assert.Equal(t, http.StatusNotFound, api.do(req).Code)
	})

	t.Run("someone else's", func(t *testing.T) {
		api := newTestAPI(t)
		id := uuid.New()
		now := time.Now().UTC()
		api.mock.ExpectQuery(regexp.QuoteMeta(`SELECT * FROM members WHERE id = $1 LIMIT 1`)).
			WithArgs(id.String()).
			WillReturnRows(sqlmock.NewRows(memberColumns).AddRow(id.String(), "Bob", "Byron", "1", "bob@example.org",
				nil, nil, now, nil, "byron1", now, now))

		req := httptest.NewRequest(http.MethodGet, "/members/"+id.String(), nil)
		req.Header.Set("Authorization", api.bearer(t, "ada@example.org", token.ProviderCredentials, token.RoleMember))
		assert.Equal(t, http.StatusForbidden, api.do(req).Code)
	})
}

func TestListMembers_AdminOnly(t *testing.T) {
	api := newTestAPI(t)

	req := httptest.NewRequest(http.MethodGet, "/members", nil)
	req.Header.Set("Authorization", api.bearer(t, "ada@example.org", token.ProviderCredentials, token.RoleMember))
	assert.Equal(t, http.StatusForbidden, api.do(req).Code)

	api.mock.ExpectQuery(regexp.QuoteMeta(`SELECT * FROM members ORDER BY requested_at DESC, id DESC LIMIT 21`)).
		WillReturnRows(sqlmock.NewRows(memberColumns))

	req = httptest.NewRequest(http.MethodGet, "/members", nil)
	req.Header.Set("Authorization", api.bearer(t, "pastor@church.org", token.ProviderGoogle, token.RoleMember, token.RoleAdmin))
	rec := api.do(req)
	require.Equal(t, http.StatusOK, rec.Code)
	data := decodeBody(t, rec)["data"].(map[string]any)
	assert.Empty(t, data["items"])
	assert.NoError(t, api.mock.ExpectationsWereMet())
}

func TestUploadPicture_MissingFile(t *testing.T) {
	api := newTestAPI(t)

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	require.NoError(t, mw.WriteField("note", "no file"))
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/members/"+uuid.NewString()+"/picture", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	req.Header.Set("Authorization", api.bearer(t, "ada@example.org", token.ProviderCredentials, token.RoleMember))

	rec := api.do(req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "picture file is required", decodeBody(t, rec)["message"])
}

func TestSendEmail(t *testing.T) {
	api := newTestAPI(t)
	auth := api.bearer(t, "ada@example.org", token.ProviderCredentials, token.RoleMember)

	req := httptest.NewRequest(http.MethodPost, "/email/send", strings.NewReader(`{"to":"bob@example.org","subject":"hi","body":"x"}`))
	req.Header.Set("Authorization", auth)
	assert.Equal(t, http.StatusForbidden, api.do(req).Code)

	req = httptest.NewRequest(http.MethodPost, "/email/send", strings.NewReader(`{"to":"ada@example.org","subject":"hi","body":"x"}`))
	req.Header.Set("Authorization", auth)
	assert.Equal(t, http.StatusAccepted, api.do(req).Code)

	req = httptest.NewRequest(http.MethodPost, "/email/send", strings.NewReader(`{"to":"ada@example.org","subject":"hi"}`))
	req.Header.Set("Authorization", auth)
	assert.Equal(t, http.StatusBadRequest, api.do(req).Code)
}

func TestVerifyEmail_BadToken(t *testing.T) {
	api := newTestAPI(t)
	rec := api.do(httptest.NewRequest(http.MethodGet, "/email/verify?token=nope", nil))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
