package adapthttp_test

import (
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	adapthttp "petitdej/internal/adapter/http"
	"petitdej/internal/adapter/memory"
	"petitdej/internal/app"
	"petitdej/internal/token"
)

// ---------------------------------------------------------------------------
// Test-server helpers
// ---------------------------------------------------------------------------

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()

	db := memory.New()
	authSvc := app.NewAuthService(db)
	resSvc := app.NewReservationService(db.NewReservationRepo())
	issuer := token.NewIssuer([]byte("test-secret"), time.Hour)

	webDir := t.TempDir()
	if err := os.WriteFile(filepath.Join(webDir, "index.html"), []byte("<html></html>"), 0o600); err != nil {
		t.Fatal(err)
	}

	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	srv := adapthttp.New(authSvc, resSvc, issuer, webDir, log)
	ts := httptest.NewServer(srv.Handler())
	t.Cleanup(ts.Close)
	return ts
}

// newClient returns a cookie-keeping client, one per simulated user.
func newClient(t *testing.T) *http.Client {
	t.Helper()
	jar, err := cookiejar.New(nil)
	if err != nil {
		t.Fatal(err)
	}
	return &http.Client{
		Jar: jar,
		CheckRedirect: func(req *http.Request, via []*http.Request) error {
			return http.ErrUseLastResponse
		},
	}
}

func postJSON(t *testing.T, c *http.Client, url string, payload any) *http.Response {
	t.Helper()
	b, err := json.Marshal(payload)
	if err != nil {
		t.Fatal(err)
	}
	resp, err := c.Post(url, "application/json", bytes.NewReader(b))
	if err != nil {
		t.Fatalf("POST %s: %v", url, err)
	}
	return resp
}

func doRequest(t *testing.T, c *http.Client, method, url string) *http.Response {
	t.Helper()
	req, err := http.NewRequest(method, url, nil)
	if err != nil {
		t.Fatal(err)
	}
	resp, err := c.Do(req)
	if err != nil {
		t.Fatalf("%s %s: %v", method, url, err)
	}
	return resp
}

func decodeBody(t *testing.T, resp *http.Response) map[string]any {
	t.Helper()
	defer resp.Body.Close() //nolint:errcheck
	var m map[string]any
	if err := json.NewDecoder(resp.Body).Decode(&m); err != nil {
		t.Fatalf("failed to decode response body: %v", err)
	}
	return m
}

func login(t *testing.T, c *http.Client, baseURL, username, password string) {
	t.Helper()
	resp := postJSON(t, c, baseURL+"/api/register-or-login", map[string]string{
		"username": username,
		"password": password,
	})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("login %s: expected 200, got %d", username, resp.StatusCode)
	}
	resp.Body.Close() //nolint:errcheck
}

// ---------------------------------------------------------------------------
// Tests
// ---------------------------------------------------------------------------

func TestHealthEndpoint(t *testing.T) {
	ts := newTestServer(t)

	resp, err := http.Get(ts.URL + "/api/health")
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	body := decodeBody(t, resp)
	if body["ok"] != true {
		t.Fatalf("expected ok=true, got %v", body["ok"])
	}
}

func TestRegisterOrLogin(t *testing.T) {
	ts := newTestServer(t)

	t.Run("new user registers", func(t *testing.T) {
		c := newClient(t)
		resp := postJSON(t, c, ts.URL+"/api/register-or-login", map[string]string{
			"username": "alice", "password": "pw1",
		})
		if resp.StatusCode != http.StatusOK {
			t.Fatalf("expected 200, got %d", resp.StatusCode)
		}
		body := decodeBody(t, resp)
		if body["ok"] != true || body["username"] != "alice" {
			t.Fatalf("unexpected body: %v", body)
		}
	})

	t.Run("existing user logs in", func(t *testing.T) {
		c := newClient(t)
		login(t, c, ts.URL, "alice", "pw1")
	})

	t.Run("wrong password rejected", func(t *testing.T) {
		c := newClient(t)
		resp := postJSON(t, c, ts.URL+"/api/register-or-login", map[string]string{
			"username": "alice", "password": "wrong",
		})
		if resp.StatusCode != http.StatusUnauthorized {
			t.Fatalf("expected 401, got %d", resp.StatusCode)
		}
		resp.Body.Close() //nolint:errcheck
	})

	t.Run("missing fields rejected", func(t *testing.T) {
		c := newClient(t)
		for _, payload := range []map[string]string{
			{"username": "x"},
			{"password": "y"},
			{},
		} {
			resp := postJSON(t, c, ts.URL+"/api/register-or-login", payload)
			if resp.StatusCode != http.StatusBadRequest {
				t.Errorf("payload %v: expected 400, got %d", payload, resp.StatusCode)
			}
			resp.Body.Close() //nolint:errcheck
		}
	})

	t.Run("malformed body rejected", func(t *testing.T) {
		resp, err := http.Post(ts.URL+"/api/register-or-login", "application/json", bytes.NewReader([]byte("{not json")))
		if err != nil {
			t.Fatal(err)
		}
		if resp.StatusCode != http.StatusBadRequest {
			t.Fatalf("expected 400, got %d", resp.StatusCode)
		}
		resp.Body.Close() //nolint:errcheck
	})

	t.Run("username trimmed", func(t *testing.T) {
		c := newClient(t)
		resp := postJSON(t, c, ts.URL+"/api/register-or-login", map[string]string{
			"username": "  carol  ", "password": "pw",
		})
		body := decodeBody(t, resp)
		if body["username"] != "carol" {
			t.Fatalf("expected trimmed username, got %v", body["username"])
		}
	})
}

func TestMe(t *testing.T) {
	ts := newTestServer(t)

	t.Run("anonymous", func(t *testing.T) {
		resp, err := http.Get(ts.URL + "/api/me")
		if err != nil {
			t.Fatal(err)
		}
		if resp.StatusCode != http.StatusOK {
			t.Fatalf("expected 200, got %d", resp.StatusCode)
		}
		body := decodeBody(t, resp)
		if body["user"] != nil {
			t.Fatalf("expected user=null, got %v", body["user"])
		}
	})

	t.Run("authenticated", func(t *testing.T) {
		c := newClient(t)
		login(t, c, ts.URL, "alice", "pw1")

		resp := doRequest(t, c, http.MethodGet, ts.URL+"/api/me")
		body := decodeBody(t, resp)
		user, ok := body["user"].(map[string]any)
		if !ok || user["username"] != "alice" {
			t.Fatalf("expected user alice, got %v", body["user"])
		}
	})

	t.Run("garbage cookie yields null not error", func(t *testing.T) {
		req, _ := http.NewRequest(http.MethodGet, ts.URL+"/api/me", nil)
		req.AddCookie(&http.Cookie{Name: "auth", Value: "not.a.token"})
		resp, err := http.DefaultClient.Do(req)
		if err != nil {
			t.Fatal(err)
		}
		if resp.StatusCode != http.StatusOK {
			t.Fatalf("expected 200, got %d", resp.StatusCode)
		}
		body := decodeBody(t, resp)
		if body["user"] != nil {
			t.Fatalf("expected user=null, got %v", body["user"])
		}
	})
}

func TestLogout(t *testing.T) {
	ts := newTestServer(t)
	c := newClient(t)
	login(t, c, ts.URL, "alice", "pw1")

	resp := doRequest(t, c, http.MethodPost, ts.URL+"/api/logout")
	body := decodeBody(t, resp)
	if body["ok"] != true {
		t.Fatalf("expected ok=true, got %v", body)
	}

	// The jar dropped the cookie, so we are anonymous again.
	resp = doRequest(t, c, http.MethodGet, ts.URL+"/api/me")
	body = decodeBody(t, resp)
	if body["user"] != nil {
		t.Fatalf("expected user=null after logout, got %v", body["user"])
	}

	// Logging out while anonymous still succeeds.
	resp = doRequest(t, c, http.MethodPost, ts.URL+"/api/logout")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	resp.Body.Close() //nolint:errcheck
}

func TestReserve(t *testing.T) {
	ts := newTestServer(t)

	t.Run("anonymous rejected", func(t *testing.T) {
		resp := postJSON(t, newClient(t), ts.URL+"/api/reserve", map[string]string{"date": "2024-05-10"})
		if resp.StatusCode != http.StatusUnauthorized {
			t.Fatalf("expected 401, got %d", resp.StatusCode)
		}
		resp.Body.Close() //nolint:errcheck
	})

	c := newClient(t)
	login(t, c, ts.URL, "alice", "pw1")

	t.Run("invalid date rejected", func(t *testing.T) {
		for _, d := range []string{"", "2024-02-30", "10/05/2024"} {
			resp := postJSON(t, c, ts.URL+"/api/reserve", map[string]string{"date": d})
			if resp.StatusCode != http.StatusBadRequest {
				t.Errorf("date %q: expected 400, got %d", d, resp.StatusCode)
			}
			resp.Body.Close() //nolint:errcheck
		}
	})

	t.Run("reserve and conflict", func(t *testing.T) {
		resp := postJSON(t, c, ts.URL+"/api/reserve", map[string]string{
			"date": "2024-05-10", "description": "croissants",
		})
		if resp.StatusCode != http.StatusOK {
			t.Fatalf("expected 200, got %d", resp.StatusCode)
		}
		resp.Body.Close() //nolint:errcheck

		// Second booking for the same day conflicts, even by the same user.
		resp = postJSON(t, c, ts.URL+"/api/reserve", map[string]string{"date": "2024-05-10"})
		if resp.StatusCode != http.StatusConflict {
			t.Fatalf("expected 409, got %d", resp.StatusCode)
		}
		resp.Body.Close() //nolint:errcheck
	})

	t.Run("get single reservation", func(t *testing.T) {
		resp, err := http.Get(ts.URL + "/api/reservation/2024-05-10")
		if err != nil {
			t.Fatal(err)
		}
		body := decodeBody(t, resp)
		res, ok := body["reservation"].(map[string]any)
		if !ok {
			t.Fatalf("expected reservation object, got %v", body["reservation"])
		}
		if res["username"] != "alice" || res["description"] != "croissants" {
			t.Fatalf("unexpected reservation %v", res)
		}
	})

	t.Run("get free date returns null", func(t *testing.T) {
		resp, err := http.Get(ts.URL + "/api/reservation/2024-05-11")
		if err != nil {
			t.Fatal(err)
		}
		body := decodeBody(t, resp)
		if body["reservation"] != nil {
			t.Fatalf("expected null, got %v", body["reservation"])
		}
	})
}

func TestListMonth(t *testing.T) {
	ts := newTestServer(t)
	c := newClient(t)
	login(t, c, ts.URL, "alice", "pw1")

	for _, d := range []string{"2024-01-31", "2024-02-01", "2024-02-29", "2024-03-01"} {
		resp := postJSON(t, c, ts.URL+"/api/reserve", map[string]string{"date": d})
		if resp.StatusCode != http.StatusOK {
			t.Fatalf("reserve %s: got %d", d, resp.StatusCode)
		}
		resp.Body.Close() //nolint:errcheck
	}

	t.Run("half-open month interval", func(t *testing.T) {
		resp, err := http.Get(ts.URL + "/api/reservations?month=2024-02")
		if err != nil {
			t.Fatal(err)
		}
		body := decodeBody(t, resp)
		items, ok := body["reservations"].([]any)
		if !ok {
			t.Fatalf("expected reservations array, got %v", body["reservations"])
		}
		if len(items) != 2 {
			t.Fatalf("expected 2 reservations in 2024-02, got %d", len(items))
		}
		first := items[0].(map[string]any)
		last := items[1].(map[string]any)
		if first["date"] != "2024-02-01" || last["date"] != "2024-02-29" {
			t.Fatalf("unexpected dates: %v, %v", first["date"], last["date"])
		}
	})

	t.Run("listing is public", func(t *testing.T) {
		resp, err := http.Get(ts.URL + "/api/reservations?month=2024-01")
		if err != nil {
			t.Fatal(err)
		}
		if resp.StatusCode != http.StatusOK {
			t.Fatalf("expected 200, got %d", resp.StatusCode)
		}
		resp.Body.Close() //nolint:errcheck
	})

	t.Run("invalid month rejected", func(t *testing.T) {
		for _, m := range []string{"", "2024", "2024-13", "2024-02-01"} {
			resp, err := http.Get(ts.URL + "/api/reservations?month=" + m)
			if err != nil {
				t.Fatal(err)
			}
			if resp.StatusCode != http.StatusBadRequest {
				t.Errorf("month %q: expected 400, got %d", m, resp.StatusCode)
			}
			resp.Body.Close() //nolint:errcheck
		}
	})
}

// The full register -> reserve -> foreign cancel -> own cancel scenario.
func TestCancelFlow(t *testing.T) {
	ts := newTestServer(t)

	alice := newClient(t)
	bob := newClient(t)
	login(t, alice, ts.URL, "alice", "pw1")
	login(t, bob, ts.URL, "bob", "pw2")

	resp := postJSON(t, alice, ts.URL+"/api/reserve", map[string]string{"date": "2024-05-10"})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("reserve: got %d", resp.StatusCode)
	}
	resp.Body.Close() //nolint:errcheck

	// Anonymous cancellation is rejected before any store access.
	resp = doRequest(t, newClient(t), http.MethodDelete, ts.URL+"/api/reservation/2024-05-10")
	if resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("anonymous cancel: expected 401, got %d", resp.StatusCode)
	}
	resp.Body.Close() //nolint:errcheck

	// Bob cannot cancel alice's reservation.
	resp = doRequest(t, bob, http.MethodDelete, ts.URL+"/api/reservation/2024-05-10")
	if resp.StatusCode != http.StatusForbidden {
		t.Fatalf("foreign cancel: expected 403, got %d", resp.StatusCode)
	}
	resp.Body.Close() //nolint:errcheck

	// Cancelling a free day is not found.
	resp = doRequest(t, bob, http.MethodDelete, ts.URL+"/api/reservation/2024-05-11")
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("free-day cancel: expected 404, got %d", resp.StatusCode)
	}
	resp.Body.Close() //nolint:errcheck

	// An invalid date is a 400, not a 404.
	resp = doRequest(t, bob, http.MethodDelete, ts.URL+"/api/reservation/2024-13-99")
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("invalid-date cancel: expected 400, got %d", resp.StatusCode)
	}
	resp.Body.Close() //nolint:errcheck

	// Alice cancels her own.
	resp = doRequest(t, alice, http.MethodDelete, ts.URL+"/api/reservation/2024-05-10")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("own cancel: expected 200, got %d", resp.StatusCode)
	}
	resp.Body.Close() //nolint:errcheck

	// The month listing no longer includes it.
	resp, err := http.Get(ts.URL + "/api/reservations?month=2024-05")
	if err != nil {
		t.Fatal(err)
	}
	body := decodeBody(t, resp)
	if items, ok := body["reservations"].([]any); !ok || len(items) != 0 {
		t.Fatalf("expected empty listing, got %v", body["reservations"])
	}
}

func TestSSODisabled(t *testing.T) {
	ts := newTestServer(t)

	resp, err := http.Get(ts.URL + "/api/config")
	if err != nil {
		t.Fatal(err)
	}
	body := decodeBody(t, resp)
	if body["sso_enabled"] != false {
		t.Fatalf("expected sso_enabled=false, got %v", body["sso_enabled"])
	}

	resp, err = http.Get(ts.URL + "/api/auth/sso/login")
	if err != nil {
		t.Fatal(err)
	}
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", resp.StatusCode)
	}
	resp.Body.Close() //nolint:errcheck
}

func TestMethodNotAllowed(t *testing.T) {
	ts := newTestServer(t)

	tests := []struct {
		name   string
		method string
		path   string
	}{
		{"GET register-or-login", http.MethodGet, "/api/register-or-login"},
		{"GET logout", http.MethodGet, "/api/logout"},
		{"POST me", http.MethodPost, "/api/me"},
		{"POST reservations", http.MethodPost, "/api/reservations"},
		{"GET reserve", http.MethodGet, "/api/reserve"},
		{"PUT reservation", http.MethodPut, "/api/reservation/2024-05-10"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			resp := doRequest(t, newClient(t), tc.method, ts.URL+tc.path)
			if resp.StatusCode != http.StatusMethodNotAllowed {
				t.Fatalf("expected 405, got %d", resp.StatusCode)
			}
			resp.Body.Close() //nolint:errcheck
		})
	}
}
