package handlers

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func registerTestUser(t *testing.T, env *testEnv, name, email string) *http.Cookie {
	t.Helper()

	body, err := json.Marshal(RegisterRequest{Name: name, Email: email})
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, "/users", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := env.do(req)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	for _, cookie := range rec.Result().Cookies() {
		if cookie.Name == sessionCookieName {
			require.NotEmpty(t, cookie.Value)
			return cookie
		}
	}
	t.Fatalf("register response missing %s cookie", sessionCookieName)
	return nil
}

func TestRegisterSetsSessionCookie(t *testing.T) {
	env := newTestEnv()

	cookie := registerTestUser(t, env, "Alice", "alice@example.com")
	assert.True(t, cookie.HttpOnly)

	// The minted credential must attribute subsequent requests.
	req := httptest.NewRequest(http.MethodGet, "/me", nil)
	req.AddCookie(cookie)
	rec := env.do(req)
	require.Equal(t, http.StatusOK, rec.Code)

	var me struct {
		Name  string `json:"name"`
		Email string `json:"email"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &me))
	assert.Equal(t, "Alice", me.Name)
	assert.Equal(t, "alice@example.com", me.Email)
}

func TestRegisterValidatesFields(t *testing.T) {
	env := newTestEnv()

	for name, payload := range map[string]string{
		"missing name":  `{"email":"a@example.com"}`,
		"missing email": `{"name":"Alice"}`,
		"blank fields":  `{"name":"  ","email":""}`,
		"not json":      `not json`,
	} {
		t.Run(name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/users", bytes.NewReader([]byte(payload)))
			rec := env.do(req)
			assert.Equal(t, http.StatusBadRequest, rec.Code)
		})
	}
}

func TestRegisterDuplicateEmail(t *testing.T) {
	env := newTestEnv()

	registerTestUser(t, env, "Alice", "alice@example.com")

	body := []byte(`{"name":"Other Alice","email":"alice@example.com"}`)
	req := httptest.NewRequest(http.MethodPost, "/users", bytes.NewReader(body))
	rec := env.do(req)
	assert.Equal(t, http.StatusConflict, rec.Code)
}
