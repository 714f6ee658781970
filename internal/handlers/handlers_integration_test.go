package handlers_test

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"contacts/internal/config"
	"contacts/internal/handlers"
	"contacts/internal/middleware"
	"contacts/internal/models"
	"contacts/internal/repositories"
	"contacts/internal/services"
	"contacts/internal/uploads"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

type testApp struct {
	app       *fiber.App
	db        *gorm.DB
	assetsDir string
}

// setupApp sets up a Fiber app for testing with a private in-memory SQLite
// database and a temporary asset directory.
func setupApp(t *testing.T) *testApp {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{Logger: logger.Discard})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&models.Contact{}))
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			sqlDB.Close()
		}
	})

	assetsDir := t.TempDir()
	avatars, err := uploads.NewAvatarStore(assetsDir)
	require.NoError(t, err)

	contactService := services.NewContactService(repositories.NewGORMContactRepository(db), avatars, nil, nil)
	contactHandler := handlers.NewContactHandler(contactService, nil)

	app := fiber.New(fiber.Config{ErrorHandler: handlers.ErrorHandler(nil)})
	app.Static("/", assetsDir)
	contactHandler.RegisterRoutes(app, middleware.Owner(config.DefaultOwner, ""))

	return &testApp{app: app, db: db, assetsDir: assetsDir}
}

type contactEnvelope struct {
	Status  bool            `json:"status"`
	Message string          `json:"message"`
	Data    *models.Contact `json:"data"`
}

type listEnvelope struct {
	Status  bool             `json:"status"`
	Message string           `json:"message"`
	Data    []models.Contact `json:"data"`
}

func (ta *testApp) do(t *testing.T, req *http.Request, out interface{}) *http.Response {
	t.Helper()
	resp, err := ta.app.Test(req, -1)
	require.NoError(t, err)
	if out != nil {
		defer resp.Body.Close()
		require.NoError(t, json.NewDecoder(resp.Body).Decode(out))
	}
	return resp
}

func jsonRequest(method, target string, body interface{}) *http.Request {
	jsonBody, _ := json.Marshal(body)
	req := httptest.NewRequest(method, target, bytes.NewReader(jsonBody))
	req.Header.Set("Content-Type", "application/json")
	return req
}

func multipartRequest(t *testing.T, method, target string, fields map[string]string, filename string, content []byte) *http.Request {
	t.Helper()
	body := &bytes.Buffer{}
	w := multipart.NewWriter(body)
	for k, v := range fields {
		require.NoError(t, w.WriteField(k, v))
	}
	if filename != "" {
		part, err := w.CreateFormFile("avatarFile", filename)
		require.NoError(t, err)
		_, err = part.Write(content)
		require.NoError(t, err)
	}
	require.NoError(t, w.Close())

	req := httptest.NewRequest(method, target, body)
	req.Header.Set("Content-Type", w.FormDataContentType())
	return req
}

func (ta *testApp) create(t *testing.T, body interface{}) *models.Contact {
	t.Helper()
	var env contactEnvelope
	resp := ta.do(t, jsonRequest(http.MethodPost, "/", body), &env)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.NotNil(t, env.Data)
	return env.Data
}

func TestPing(t *testing.T) {
	ta := setupApp(t)

	resp := ta.do(t, httptest.NewRequest(http.MethodGet, "/ping", nil), nil)
	defer resp.Body.Close()
	b, _ := io.ReadAll(resp.Body)

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "Hi from server", string(b))
}

func TestCreateAndGetContact(t *testing.T) {
	ta := setupApp(t)

	var created contactEnvelope
	resp := ta.do(t, jsonRequest(http.MethodPost, "/", map[string]interface{}{
		"name":          "Ada",
		"lastName":      "Lovelace",
		"phoneNumber":   "+44 20 7946 0000",
		"email":         "ada@example.com",
		"age":           36,
		"avatar":        "http://cdn.example.com/ada.png",
		"linkToWebsite": "https://example.com/ada",
		"tags":          "math,poetry",
		"id":            12345,
		"owner":         "someone else",
	}), &created)

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.True(t, created.Status)
	assert.Equal(t, "Contact created successfully!", created.Message)
	require.NotNil(t, created.Data)
	assert.Positive(t, created.Data.ID)
	assert.NotEqual(t, uint(12345), created.Data.ID)
	assert.Equal(t, config.DefaultOwner, created.Data.Owner)
	assert.False(t, created.Data.CreatedAt.IsZero())
	assert.False(t, created.Data.UpdatedAt.IsZero())

	var fetched contactEnvelope
	resp = ta.do(t, httptest.NewRequest(http.MethodGet, fmt.Sprintf("/%d", created.Data.ID), nil), &fetched)

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.True(t, fetched.Status)
	assert.Equal(t, "success", fetched.Message)
	require.NotNil(t, fetched.Data)
	assert.Equal(t, created.Data.ID, fetched.Data.ID)
	assert.Equal(t, "Ada", fetched.Data.Name)
	assert.Equal(t, "Lovelace", fetched.Data.LastName)
	assert.Equal(t, "+44 20 7946 0000", fetched.Data.PhoneNumber)
	assert.Equal(t, "ada@example.com", fetched.Data.Email)
	assert.Equal(t, 36, fetched.Data.Age)
	assert.Equal(t, "http://cdn.example.com/ada.png", fetched.Data.Avatar)
	assert.Equal(t, "https://example.com/ada", fetched.Data.LinkToWebsite)
	assert.Equal(t, "math,poetry", fetched.Data.Tags)
}

func TestCreateContact_FormBody(t *testing.T) {
	ta := setupApp(t)

	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader("name=Grace&lastName=Hopper&age=85"))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	var env contactEnvelope
	resp := ta.do(t, req, &env)

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	require.NotNil(t, env.Data)
	assert.Equal(t, "Grace", env.Data.Name)
	assert.Equal(t, "Hopper", env.Data.LastName)
	assert.Equal(t, 85, env.Data.Age)
}

func TestGetContact_Missing(t *testing.T) {
	ta := setupApp(t)

	for _, target := range []string{"/999999", "/not-a-number"} {
		resp := ta.do(t, httptest.NewRequest(http.MethodGet, target, nil), nil)
		defer resp.Body.Close()
		b, _ := io.ReadAll(resp.Body)

		assert.Equal(t, http.StatusOK, resp.StatusCode)
		assert.JSONEq(t, `{"status":true,"message":"success","data":null}`, string(b))
	}
}

func TestCreateContact_WithAvatarFile(t *testing.T) {
	ta := setupApp(t)

	req := multipartRequest(t, http.MethodPost, "/", map[string]string{
		"name":   "Ada",
		"age":    "36",
		"avatar": "http://ignored.example.com/x.png",
	}, "portrait.jpeg", []byte("jpeg-bytes"))

	var env contactEnvelope
	resp := ta.do(t, req, &env)

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	require.NotNil(t, env.Data)
	assert.Equal(t, "Ada", env.Data.Name)
	assert.Equal(t, 36, env.Data.Age)
	assert.True(t, strings.HasPrefix(env.Data.Avatar, "http://example.com/"), env.Data.Avatar)
	assert.True(t, strings.HasSuffix(env.Data.Avatar, ".jpeg"), env.Data.Avatar)
	assert.NotContains(t, env.Data.Avatar, "ignored")
	assert.NotContains(t, env.Data.Avatar, "portrait")

	name := filepath.Base(env.Data.Avatar)
	content, err := os.ReadFile(filepath.Join(ta.assetsDir, name))
	require.NoError(t, err)
	assert.Equal(t, []byte("jpeg-bytes"), content)

	// The stored avatar is served at the root.
	resp = ta.do(t, httptest.NewRequest(http.MethodGet, "/"+name, nil), nil)
	defer resp.Body.Close()
	served, _ := io.ReadAll(resp.Body)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, []byte("jpeg-bytes"), served)
}

func TestListContacts_Pagination(t *testing.T) {
	ta := setupApp(t)
	for i := 0; i < 12; i++ {
		ta.create(t, map[string]interface{}{"name": fmt.Sprintf("c%02d", i)})
	}

	var page1, page2 listEnvelope
	ta.do(t, httptest.NewRequest(http.MethodGet, "/?limit=5&page=1", nil), &page1)
	ta.do(t, httptest.NewRequest(http.MethodGet, "/?limit=5&page=2", nil), &page2)

	assert.True(t, page1.Status)
	assert.Len(t, page1.Data, 5)
	assert.Len(t, page2.Data, 5)
	seen := map[uint]bool{}
	for _, c := range page1.Data {
		seen[c.ID] = true
	}
	for _, c := range page2.Data {
		assert.False(t, seen[c.ID], "pages must be disjoint")
	}
	assert.Equal(t, "c05", page2.Data[0].Name)

	var page3 listEnvelope
	ta.do(t, httptest.NewRequest(http.MethodGet, "/?limit=5&page=3", nil), &page3)
	assert.Len(t, page3.Data, 2)
}

func TestListContacts_Defaults(t *testing.T) {
	ta := setupApp(t)
	for i := 0; i < 12; i++ {
		ta.create(t, map[string]interface{}{"name": fmt.Sprintf("c%02d", i)})
	}

	for _, target := range []string{"/", "/?limit=abc&page=xyz", "/?limit=0&page=-3", "/?limit=2.5"} {
		var env listEnvelope
		resp := ta.do(t, httptest.NewRequest(http.MethodGet, target, nil), &env)

		assert.Equal(t, http.StatusOK, resp.StatusCode, target)
		assert.Len(t, env.Data, 10, target)
		assert.Equal(t, "c00", env.Data[0].Name, target)
	}

	var empty listEnvelope
	ta.do(t, httptest.NewRequest(http.MethodGet, "/?page=5", nil), &empty)
	assert.NotNil(t, empty.Data)
	assert.Empty(t, empty.Data)
}

func TestUpdateContact(t *testing.T) {
	ta := setupApp(t)
	created := ta.create(t, map[string]interface{}{"name": "Ada", "email": "ada@example.com", "age": 36})

	var env contactEnvelope
	resp := ta.do(t, jsonRequest(http.MethodPatch, fmt.Sprintf("/%d", created.ID), map[string]interface{}{
		"lastName": "King",
		"age":      37,
	}), &env)

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.True(t, env.Status)
	assert.Equal(t, "success", env.Message)
	require.NotNil(t, env.Data)
	assert.Equal(t, created.ID, env.Data.ID)
	assert.Equal(t, "Ada", env.Data.Name)
	assert.Equal(t, "ada@example.com", env.Data.Email)
	assert.Equal(t, "King", env.Data.LastName)
	assert.Equal(t, 37, env.Data.Age)
	assert.Equal(t, created.CreatedAt.Unix(), env.Data.CreatedAt.Unix())
	assert.False(t, env.Data.UpdatedAt.Before(created.UpdatedAt))
}

func TestUpdateContact_WithAvatarFile(t *testing.T) {
	ta := setupApp(t)
	created := ta.create(t, map[string]interface{}{"name": "Ada", "avatar": "http://old.example.com/a.png"})

	req := multipartRequest(t, http.MethodPatch, fmt.Sprintf("/%d", created.ID), map[string]string{
		"avatar": "http://ignored.example.com/b.png",
	}, "new.gif", []byte("gif"))

	var env contactEnvelope
	ta.do(t, req, &env)

	require.NotNil(t, env.Data)
	assert.Equal(t, "Ada", env.Data.Name)
	assert.True(t, strings.HasPrefix(env.Data.Avatar, "http://example.com/"), env.Data.Avatar)
	assert.True(t, strings.HasSuffix(env.Data.Avatar, ".gif"), env.Data.Avatar)
	_, err := os.Stat(filepath.Join(ta.assetsDir, filepath.Base(env.Data.Avatar)))
	assert.NoError(t, err)
}

func TestUpdateContact_Missing(t *testing.T) {
	ta := setupApp(t)

	resp := ta.do(t, jsonRequest(http.MethodPatch, "/999999", map[string]interface{}{"name": "Nobody"}), nil)
	defer resp.Body.Close()
	b, _ := io.ReadAll(resp.Body)

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.JSONEq(t, `{"status":true,"message":"success","data":null}`, string(b))
}

func TestUpdateContact_InvalidBody(t *testing.T) {
	ta := setupApp(t)
	created := ta.create(t, map[string]interface{}{"name": "Ada"})

	req := httptest.NewRequest(http.MethodPatch, fmt.Sprintf("/%d", created.ID), strings.NewReader(`{"age":`))
	req.Header.Set("Content-Type", "application/json")

	var env contactEnvelope
	resp := ta.do(t, req, &env)

	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.False(t, env.Status)
	assert.NotEmpty(t, env.Message)
	assert.Nil(t, env.Data)
}

func TestDeleteContact(t *testing.T) {
	ta := setupApp(t)
	created := ta.create(t, map[string]interface{}{"name": "Ada", "lastName": "Lovelace"})
	target := fmt.Sprintf("/%d", created.ID)

	var deleted contactEnvelope
	resp := ta.do(t, httptest.NewRequest(http.MethodDelete, target, nil), &deleted)

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.True(t, deleted.Status)
	require.NotNil(t, deleted.Data)
	assert.Equal(t, created.ID, deleted.Data.ID)
	assert.Equal(t, "Lovelace", deleted.Data.LastName)

	var fetched contactEnvelope
	resp = ta.do(t, httptest.NewRequest(http.MethodGet, target, nil), &fetched)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.True(t, fetched.Status)
	assert.Nil(t, fetched.Data)

	var again contactEnvelope
	ta.do(t, httptest.NewRequest(http.MethodDelete, target, nil), &again)
	assert.True(t, again.Status)
	assert.Nil(t, again.Data)
}

func TestStorageFailure(t *testing.T) {
	ta := setupApp(t)
	sqlDB, err := ta.db.DB()
	require.NoError(t, err)
	require.NoError(t, sqlDB.Close())

	requests := []*http.Request{
		jsonRequest(http.MethodPost, "/", map[string]interface{}{"name": "Ada"}),
		httptest.NewRequest(http.MethodGet, "/1", nil),
		httptest.NewRequest(http.MethodGet, "/", nil),
		jsonRequest(http.MethodPatch, "/1", map[string]interface{}{"name": "Ada"}),
		httptest.NewRequest(http.MethodDelete, "/1", nil),
	}
	for _, req := range requests {
		var env contactEnvelope
		resp := ta.do(t, req, &env)

		assert.Equal(t, http.StatusInternalServerError, resp.StatusCode, req.Method+" "+req.URL.Path)
		assert.False(t, env.Status)
		assert.NotEmpty(t, env.Message)
		assert.Nil(t, env.Data)
	}
}

func TestUnknownRoute(t *testing.T) {
	ta := setupApp(t)

	var env contactEnvelope
	resp := ta.do(t, httptest.NewRequest(http.MethodPut, "/1", nil), &env)

	assert.Equal(t, http.StatusMethodNotAllowed, resp.StatusCode)
	assert.False(t, env.Status)
}
