package echoapi_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"reflect"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	echoapi "github.com/risingacademy/backend/apps/api/echo"
	"github.com/risingacademy/backend/core"
	"github.com/risingacademy/backend/core/user"
	metricsvc "github.com/risingacademy/backend/services/metrics"
	"github.com/risingacademy/backend/services/ratelimit"
	testutil "github.com/risingacademy/backend/tests"
)

const (
	demoEmail    = "admin@risingacademy.com"
	demoPassword = "admin123"
)

var (
	errMissingToken   = httpErr{Error: "missing or malformed jwt"}
	errForbidden      = httpErr{Error: "permission denied"}
	errNotFound       = httpErr{Error: "not found"}
	errSessionExpired = httpErr{Error: "session has expired"}
)

func setup(t *testing.T, conf ...*core.Config) (*echoapi.Server, *testutil.Env) {
	env := testutil.NewEnv(t, conf...)
	srv := echoapi.NewServer(echoapi.ServerDeps{
		Conf:        env.Conf,
		Logger:      env.Logger,
		AppSvc:      env.AppSvc,
		SettingsSvc: env.SettingsSvc,
		AuthSvc:     env.AuthSvc,
		Limiter:     ratelimit.NewMemoryLimiter(env.Conf.Server.SubmitRateLimit, env.Conf.Server.SubmitRateWindow),
		Metrics:     metricsvc.NewCollector(),
		Validate:    env.Validate,
		Uni:         env.Uni,
	})
	return srv, env
}

type httpErr struct {
	Error string `json:"error"`
}

type httpTest struct {
	name     string
	method   string
	path     string
	body     []byte
	token    string
	wantCode int
	wantData []byte
}

func newAuthRequest(method, path, token string, data ...[]byte) (*http.Request, *httptest.ResponseRecorder) {
	var body bytes.Buffer
	if len(data) > 0 {
		body.Write(data[0])
	}
	req := httptest.NewRequest(method, path, &body)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	return req, rec
}

func newRequest(method, path string, data ...[]byte) (*http.Request, *httptest.ResponseRecorder) {
	return newAuthRequest(method, path, "", data...)
}

// login signs in through the API and returns the token.
func login(t *testing.T, srv *echoapi.Server, email, pwd string) string {
	t.Helper()
	req, rec := newRequest(http.MethodPost, "/v1/auth/login", marchallObj(t, user.Credentials{Email: email, Password: pwd}))
	srv.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var resp echoapi.LoginResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.NotEmpty(t, resp.Token)
	return resp.Token
}

// adminToken signs the demo admin in.
func adminToken(t *testing.T, srv *echoapi.Server) string {
	return login(t, srv, demoEmail, demoPassword)
}

// userToken signs in a new account without the admin role.
func userToken(t *testing.T, srv *echoapi.Server, env *testutil.Env) string {
	testutil.CreateUser(t, env, "user@test.dz", "user-pass-1234")
	return login(t, srv, "user@test.dz", "user-pass-1234")
}

func marchallObj(t *testing.T, obj interface{}) []byte {
	data, err := json.Marshal(obj)
	if err != nil {
		t.Fatalf("marchallObj() failed: %v", err)
	}
	return data
}

func jsonBytesEqual(t *testing.T, b1, b2 []byte) (bool, error) {
	var j1, j2 interface{}
	if err := json.Unmarshal(b1, &j1); err != nil {
		return false, err
	}
	if err := json.Unmarshal(b2, &j2); err != nil {
		return false, err
	}
	return reflect.DeepEqual(j1, j2), nil
}

func checkCodeAndData(t *testing.T, tt httpTest, rec *httptest.ResponseRecorder) {
	if rec.Code != tt.wantCode {
		t.Errorf("failed! code = %v; wantCode %v", rec.Code, tt.wantCode)
	}
	if tt.wantData == nil {
		return
	}
	ok, err := jsonBytesEqual(t, rec.Body.Bytes(), tt.wantData)
	if err != nil {
		t.Errorf("jsonBytesEqual() failed to compare; err %v", err)
	}
	if !ok {
		t.Errorf("failed! data = %v; wantData %v", rec.Body.String(), string(tt.wantData))
	}
}

// runHTTPTests runs the table; defaults holds the method and path of the rows that leave them empty.
func runHTTPTests(t *testing.T, srv *echoapi.Server, tests []httpTest, defaults ...string) {
	for _, tt := range tests {
		tt := tt
		if tt.method == "" && len(defaults) > 0 {
			tt.method = defaults[0]
		}
		if tt.path == "" && len(defaults) > 1 {
			tt.path = defaults[1]
		}
		if tt.wantCode == 0 {
			tt.wantCode = http.StatusOK
		}
		t.Run(tt.name, func(t *testing.T) {
			req, rec := newAuthRequest(tt.method, tt.path, tt.token, tt.body)
			srv.ServeHTTP(rec, req)
			checkCodeAndData(t, tt, rec)
		})
	}
}

func TestServer_home(t *testing.T) {
	srv, _ := setup(t)

	req, rec := newRequest(http.MethodGet, "/")
	srv.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Welcome to Rising Academy API!", rec.Body.String())

	req, rec = newRequest(http.MethodGet, "/healthz")
	srv.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status": "ok"}`, rec.Body.String())

	req, rec = newRequest(http.MethodGet, "/metrics")
	srv.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "risingacademy_http_requests_total")
}
