package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
)

func TestSettingsHandler_Page(t *testing.T) {
	store := &memorySettings{filename: `"><script>x</script>`}
	handler := NewSettingsHandler(silentLogger(), false, store)

	req := httptest.NewRequest("GET", "/settings?saved=1", nil)
	req.AddCookie(&http.Cookie{Name: "_csrf", Value: "tok123"})
	w := httptest.NewRecorder()
	handler.HandleSettings(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	body := w.Body.String()
	if strings.Contains(body, "<script>x</script>") {
		t.Error("SECURITY: setting value rendered without escaping")
	}
	if !strings.Contains(body, "Settings saved.") {
		t.Error("expected saved banner")
	}
	if !strings.Contains(body, `data-csrf="tok123"`) {
		t.Error("expected csrf token on the form")
	}
}

func TestSettingsHandler_SaveForm(t *testing.T) {
	store := &memorySettings{}
	handler := NewSettingsHandler(silentLogger(), false, store)

	form := url.Values{"filename": {"historical_nav.csv"}}
	req := httptest.NewRequest("POST", "/settings", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	w := httptest.NewRecorder()
	handler.HandleSaveSettings(w, req)

	if w.Code != http.StatusFound || w.Header().Get("Location") != "/settings?saved=1" {
		t.Errorf("expected redirect, got %d %s", w.Code, w.Header().Get("Location"))
	}
	if store.filename != "historical_nav.csv" {
		t.Errorf("expected value to be stored, got %q", store.filename)
	}
}

func TestSettingsHandler_APIRoundTrip(t *testing.T) {
	store := &memorySettings{}
	handler := NewSettingsHandler(silentLogger(), false, store)

	value := "  spaces and ünïcode.csv "
	payload, _ := json.Marshal(settingsBody{Filename: value})
	req := httptest.NewRequest("PUT", "/api/settings", strings.NewReader(string(payload)))
	w := httptest.NewRecorder()
	handler.HandleSettingsAPI(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}

	req = httptest.NewRequest("GET", "/api/settings", nil)
	w = httptest.NewRecorder()
	handler.HandleSettingsAPI(w, req)

	var body settingsBody
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("failed to unmarshal: %v", err)
	}
	if body.Filename != value {
		t.Errorf("expected %q to round-trip, got %q", value, body.Filename)
	}
}

func TestSettingsHandler_APIErrors(t *testing.T) {
	store := &memorySettings{}
	handler := NewSettingsHandler(silentLogger(), false, store)

	req := httptest.NewRequest("PUT", "/api/settings", strings.NewReader(`{"filename":`))
	w := httptest.NewRecorder()
	handler.HandleSettingsAPI(w, req)
	if w.Code != http.StatusBadRequest {
		t.Errorf("expected 400 for malformed body, got %d", w.Code)
	}

	long := strings.Repeat("a", maxSettingLength+1)
	req = httptest.NewRequest("PUT", "/api/settings", strings.NewReader(`{"filename":"`+long+`"}`))
	w = httptest.NewRecorder()
	handler.HandleSettingsAPI(w, req)
	if w.Code != http.StatusBadRequest {
		t.Errorf("expected 400 for oversize value, got %d", w.Code)
	}

	req = httptest.NewRequest("DELETE", "/api/settings", nil)
	w = httptest.NewRecorder()
	handler.HandleSettingsAPI(w, req)
	if w.Code != http.StatusMethodNotAllowed {
		t.Errorf("expected 405, got %d", w.Code)
	}

	store.err = errors.New("badger closed")
	req = httptest.NewRequest("GET", "/api/settings", nil)
	w = httptest.NewRecorder()
	handler.HandleSettingsAPI(w, req)
	if w.Code != http.StatusInternalServerError {
		t.Errorf("expected 500 on storage failure, got %d", w.Code)
	}
}
