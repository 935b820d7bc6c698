package peakapi

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/couchcryptid/peak-catalog/internal/domain"
	"github.com/couchcryptid/peak-catalog/internal/observability"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	testToken         = "tok-123"
	contentTypeJSON   = "application/json"
	headerContentType = "Content-Type"
)

func testClient(baseURL string) *Client {
	return NewClient(baseURL, 5*time.Second, observability.NewMetricsForTesting(),
		slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func writeJSON(t *testing.T, w http.ResponseWriter, status int, v any) {
	t.Helper()
	w.Header().Set(headerContentType, contentTypeJSON)
	w.WriteHeader(status)
	require.NoError(t, json.NewEncoder(w).Encode(v))
}

func TestClient_Signup(t *testing.T) {
	tests := []struct {
		name   string
		status int
		want   bool
	}{
		{"created", http.StatusCreated, true},
		{"ok is not created", http.StatusOK, false},
		{"conflict", http.StatusConflict, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				assert.Equal(t, http.MethodPost, r.Method)
				assert.Equal(t, "/api/users", r.URL.Path)
				var u domain.User
				assert.NoError(t, json.NewDecoder(r.Body).Decode(&u))
				assert.Equal(t, "a@b.c", u.Email)
				w.WriteHeader(tt.status)
			}))
			defer srv.Close()

			ok := testClient(srv.URL).Signup(context.Background(), domain.User{Email: "a@b.c"})
			assert.Equal(t, tt.want, ok)
		})
	}
}

func TestClient_Authenticate_Session(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/users/authenticate", r.URL.Path)
		assert.Empty(t, r.Header.Get("Authorization"))
		writeJSON(t, w, http.StatusOK, map[string]any{
			"success": true, "name": "Ann", "email": "a@b.c", "token": testToken, "_id": "u1",
		})
	}))
	defer srv.Close()

	res := testClient(srv.URL).Authenticate(context.Background(), "a@b.c", "pw")
	require.NotNil(t, res)
	require.NotNil(t, res.Session)
	assert.Nil(t, res.Challenge)
	assert.Equal(t, domain.Session{ID: "u1", Name: "Ann", Email: "a@b.c", Token: testToken}, *res.Session)
}

func TestClient_Authenticate_Challenge(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(t, w, http.StatusOK, map[string]any{
			"twoFactorRequired": true, "tempToken": "tmp", "name": "Ann", "email": "a@b.c", "_id": "u1",
		})
	}))
	defer srv.Close()

	res := testClient(srv.URL).Authenticate(context.Background(), "a@b.c", "pw")
	require.NotNil(t, res)
	require.NotNil(t, res.Challenge)
	assert.Nil(t, res.Session)
	assert.Equal(t, "tmp", res.Challenge.TempToken)
	assert.True(t, res.Challenge.TwoFactorRequired)
}

func TestClient_Authenticate_Rejected(t *testing.T) {
	t.Run("unauthorized status", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			writeJSON(t, w, http.StatusUnauthorized, map[string]any{"message": "bad credentials"})
		}))
		defer srv.Close()
		assert.Nil(t, testClient(srv.URL).Authenticate(context.Background(), "a@b.c", "bad"))
	})

	t.Run("success false", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			writeJSON(t, w, http.StatusOK, map[string]any{"success": false})
		}))
		defer srv.Close()
		assert.Nil(t, testClient(srv.URL).Authenticate(context.Background(), "a@b.c", "bad"))
	})
}

func TestClient_SecondFactorLogin(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var body map[string]string
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "tmp", body["tempToken"])

		switch r.URL.Path {
		case "/api/2fa/verify-login":
			if body["code"] != "123456" {
				writeJSON(t, w, http.StatusUnauthorized, map[string]any{})
				return
			}
		case "/api/2fa/recovery-login":
			assert.Equal(t, "rc-1", body["recoveryCode"])
		default:
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		writeJSON(t, w, http.StatusOK, map[string]any{"success": true, "token": testToken, "_id": "u1"})
	}))
	defer srv.Close()

	c := testClient(srv.URL)
	s := c.VerifyTwoFactorLogin(context.Background(), "tmp", "123456")
	require.NotNil(t, s)
	assert.Equal(t, testToken, s.Token)

	assert.Nil(t, c.VerifyTwoFactorLogin(context.Background(), "tmp", "000000"))

	s = c.RecoveryTwoFactorLogin(context.Background(), "tmp", "rc-1")
	require.NotNil(t, s)
	assert.Equal(t, "u1", s.ID)
}

func TestClient_TwoFactorSetup(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer "+testToken, r.Header.Get("Authorization"))
		switch r.URL.Path {
		case "/api/2fa/setup":
			writeJSON(t, w, http.StatusOK, map[string]any{"otpauthUrl": "otpauth://totp/x"})
		case "/api/2fa/verify-setup":
			writeJSON(t, w, http.StatusOK, map[string]any{"enabled": true, "recoveryCodes": []string{"a", "b"}})
		}
	}))
	defer srv.Close()

	c := testClient(srv.URL)
	setup := c.SetupTwoFactor(context.Background(), testToken)
	require.NotNil(t, setup)
	assert.Equal(t, "otpauth://totp/x", setup.OTPAuthURL)

	act := c.VerifyTwoFactorSetup(context.Background(), testToken, "123456")
	require.NotNil(t, act)
	assert.True(t, act.Enabled)
	assert.Equal(t, []string{"a", "b"}, act.RecoveryCodes)
}

func TestClient_TwoFactorSetup_Failure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	c := testClient(srv.URL)
	assert.Nil(t, c.SetupTwoFactor(context.Background(), testToken))
	assert.Nil(t, c.VerifyTwoFactorSetup(context.Background(), testToken, "1"))
}

func TestClient_ListUserPeaks(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/users/u1/peaks", r.URL.Path)
		assert.Equal(t, "Bearer "+testToken, r.Header.Get("Authorization"))
		assert.Equal(t, []string{"c1", "c2"}, r.URL.Query()["categoryIds"])
		w.Header().Set(headerContentType, contentTypeJSON)
		_, _ = w.Write([]byte(`[
			{"_id":"p1","name":"A","elevation":1200,"lat":47,"lng":11,"categories":["c1"]},
			{"_id":"p2","name":"B","elevation":"n/a","lat":47,"lng":11,"categories":[{"_id":"c2","name":"Ireland"}]}
		]`))
	}))
	defer srv.Close()

	peaks, err := testClient(srv.URL).ListUserPeaks(context.Background(), testToken, "u1", []string{"c1", "c2"})
	require.NoError(t, err)
	require.Len(t, peaks, 2)
	assert.Equal(t, []string{"c1"}, domain.CategoryIDs(peaks[0]))
	assert.False(t, peaks[1].Elevation.Numeric())
	assert.Equal(t, domain.CategoryRefsObjects, peaks[1].Categories.Kind())
}

func TestClient_ListUserPeaks_NoFilterNoQuery(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Empty(t, r.URL.RawQuery)
		writeJSON(t, w, http.StatusOK, nil)
	}))
	defer srv.Close()

	peaks, err := testClient(srv.URL).ListUserPeaks(context.Background(), testToken, "u1", nil)
	require.NoError(t, err)
	assert.NotNil(t, peaks)
	assert.Empty(t, peaks)
}

func TestClient_PeakCRUD(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer "+testToken, r.Header.Get("Authorization"))
		switch {
		case r.Method == http.MethodGet && r.URL.Path == "/api/peaks/p1":
			writeJSON(t, w, http.StatusOK, map[string]any{"_id": "p1", "name": "A", "elevation": 1200, "lat": 1, "lng": 2})
		case r.Method == http.MethodGet && r.URL.Path == "/api/peaks/missing":
			writeJSON(t, w, http.StatusNotFound, map[string]any{"message": "not found"})
		case r.Method == http.MethodPost && r.URL.Path == "/api/peaks":
			var p domain.PeakPayload
			assert.NoError(t, json.NewDecoder(r.Body).Decode(&p))
			assert.Equal(t, []string{"c1"}, p.Categories)
			writeJSON(t, w, http.StatusCreated, map[string]any{"_id": "new", "name": p.Name, "elevation": p.Elevation, "lat": p.Lat, "lng": p.Lng})
		case r.Method == http.MethodPut && r.URL.Path == "/api/peaks/p1":
			writeJSON(t, w, http.StatusOK, map[string]any{"_id": "p1", "name": "renamed", "elevation": 1, "lat": 1, "lng": 2})
		case r.Method == http.MethodDelete && r.URL.Path == "/api/peaks/p1":
			w.WriteHeader(http.StatusNoContent)
		default:
			t.Errorf("unexpected %s %s", r.Method, r.URL.Path)
		}
	}))
	defer srv.Close()

	c := testClient(srv.URL)
	ctx := context.Background()

	p, err := c.GetPeak(ctx, testToken, "p1")
	require.NoError(t, err)
	assert.Equal(t, "A", p.Name)

	_, err = c.GetPeak(ctx, testToken, "missing")
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrPeakNotFound))

	created, err := c.CreatePeak(ctx, testToken, domain.PeakPayload{Name: "N", Categories: []string{"c1"}, Images: []domain.StoredImage{}})
	require.NoError(t, err)
	assert.Equal(t, "new", created.ID)

	updated, err := c.UpdatePeak(ctx, testToken, "p1", domain.PeakPayload{Name: "renamed"})
	require.NoError(t, err)
	assert.Equal(t, "renamed", updated.Name)

	require.NoError(t, c.DeletePeak(ctx, testToken, "p1"))
}

func TestClient_ListCategories(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/categories", r.URL.Path)
		writeJSON(t, w, http.StatusOK, []domain.Category{{ID: "c1", Name: "Alps"}})
	}))
	defer srv.Close()

	cats, err := testClient(srv.URL).ListCategories(context.Background(), testToken)
	require.NoError(t, err)
	assert.Equal(t, []domain.Category{{ID: "c1", Name: "Alps"}}, cats)
}

func TestClient_UnauthorizedMapsToSentinel(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"message":"token expired"}`))
	}))
	defer srv.Close()

	c := testClient(srv.URL)
	_, err := c.ListCategories(context.Background(), "expired")
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrUnauthorized))
	assert.Contains(t, err.Error(), "401")
	assert.Contains(t, err.Error(), "token expired")
	assert.Equal(t, 1.0, testutil.ToFloat64(c.metrics.BackendRequests.WithLabelValues("list_categories", "error")))
}

func TestClient_Timeout(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		time.Sleep(200 * time.Millisecond)
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	c := testClient(srv.URL)
	c.httpClient.Timeout = 50 * time.Millisecond

	_, err := c.ListCategories(context.Background(), testToken)
	require.Error(t, err)
}

func TestClient_BadJSON(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{not json`))
	}))
	defer srv.Close()

	_, err := testClient(srv.URL).GetPeak(context.Background(), testToken, "p1")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "decode response")
}
