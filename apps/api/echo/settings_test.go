package echoapi_test

import (
	"encoding/json"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/risingacademy/backend/core/settings"
)

func Test_settingsApi_retrieve(t *testing.T) {
	srv, env := setup(t)

	runHTTPTests(t, srv, []httpTest{
		{name: "defaults when empty", method: http.MethodGet, path: "/v1/settings", wantData: marchallObj(t, settings.Default())},
	})

	t.Run("defaults when the store fails", func(t *testing.T) {
		env.DB.SetError(assert.AnError)
		defer env.DB.SetError(nil)

		req, rec := newRequest(http.MethodGet, "/v1/settings")
		srv.ServeHTTP(rec, req)
		checkCodeAndData(t, httpTest{wantCode: http.StatusOK, wantData: marchallObj(t, settings.Default())}, rec)
	})
}

func Test_settingsApi_update(t *testing.T) {
	srv, env := setup(t)
	admin := adminToken(t, srv)

	contact := settings.Contact{
		Facebook:  "https://www.facebook.com/risingacademy",
		Instagram: "https://www.instagram.com/risingacademy",
		Phone:     "0670710505",
		Location:  "Batna",
	}
	stats := settings.Stats{Students: 650, Languages: 14, ProgrammingLanguages: 20, SuccessRate: 97}

	runHTTPTests(t, srv, []httpTest{
		{name: "Auth required", method: http.MethodPatch, path: "/v1/settings", wantCode: http.StatusUnauthorized, wantData: marchallObj(t, errMissingToken)},
		{
			name: "Admin required", method: http.MethodPatch, path: "/v1/settings", token: userToken(t, srv, env),
			body: marchallObj(t, settings.UpdateSiteSettings{Stats: &stats}), wantCode: http.StatusForbidden, wantData: marchallObj(t, errForbidden),
		},
		{
			name: "no block", method: http.MethodPatch, path: "/v1/settings", token: admin, body: []byte(`{}`),
			wantCode: http.StatusBadRequest, wantData: marchallObj(t, httpErr{Error: "no settings block given"}),
		},
	})

	t.Run("invalid block", func(t *testing.T) {
		body := marchallObj(t, settings.UpdateSiteSettings{
			Stats:   &settings.Stats{SuccessRate: 120},
			Contact: &settings.Contact{Facebook: "not a url"},
		})
		req, rec := newAuthRequest(http.MethodPatch, "/v1/settings", admin, body)
		srv.ServeHTTP(rec, req)
		require.Equal(t, http.StatusBadRequest, rec.Code, rec.Body.String())

		var fldErrs map[string]string
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &fldErrs))
		assert.Contains(t, fldErrs, "stats.successRate")
		assert.Contains(t, fldErrs, "contact.facebook")
	})

	t.Run("partial updates keep the other blocks", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodPatch, "/v1/settings", admin, marchallObj(t, settings.UpdateSiteSettings{Contact: &contact}))
		srv.ServeHTTP(rec, req)
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

		req, rec = newAuthRequest(http.MethodPatch, "/v1/settings", admin, marchallObj(t, settings.UpdateSiteSettings{Stats: &stats}))
		srv.ServeHTTP(rec, req)
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

		req, rec = newRequest(http.MethodGet, "/v1/settings")
		srv.ServeHTTP(rec, req)
		require.Equal(t, http.StatusOK, rec.Code)

		var got settings.SiteSettings
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
		assert.Equal(t, contact, got.Contact)
		assert.Equal(t, stats, got.Stats)
		assert.False(t, got.UpdatedAt.IsZero())
	})

	t.Run("store failure", func(t *testing.T) {
		env.DB.SetError(assert.AnError)
		defer env.DB.SetError(nil)

		req, rec := newAuthRequest(http.MethodPatch, "/v1/settings", admin, marchallObj(t, settings.UpdateSiteSettings{Stats: &stats}))
		srv.ServeHTTP(rec, req)
		checkCodeAndData(t, httpTest{
			wantCode: http.StatusServiceUnavailable,
			wantData: marchallObj(t, httpErr{Error: "service temporarily unavailable"}),
		}, rec)
	})
}
