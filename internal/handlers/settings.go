package handlers

import (
	"html/template"
	"net/http"
	"strings"

	"github.com/bobmcallan/etf-portal/internal/common"
	"github.com/bobmcallan/etf-portal/internal/interfaces"
)

// maxSettingLength bounds the free-text setting.
const maxSettingLength = 1024

// SettingsHandler serves the settings page and the settings API.
type SettingsHandler struct {
	logger    *common.Logger
	templates *template.Template
	devMode   bool
	store     interfaces.SettingsStore
}

// NewSettingsHandler creates a new settings handler.
func NewSettingsHandler(logger *common.Logger, devMode bool, store interfaces.SettingsStore) *SettingsHandler {
	return &SettingsHandler{
		logger:    logger,
		templates: ParseTemplates(),
		devMode:   devMode,
		store:     store,
	}
}

// settingsBody is the JSON shape of GET/PUT /api/settings.
type settingsBody struct {
	Filename string `json:"filename"`
}

// HandleSettings serves GET /settings.
func (h *SettingsHandler) HandleSettings(w http.ResponseWriter, r *http.Request) {
	filename, err := h.store.Filename(r.Context())
	if err != nil {
		h.logger.Error().Str("error", err.Error()).Msg("failed to read settings")
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	csrfToken := ""
	if csrfCookie, err := r.Cookie("_csrf"); err == nil {
		csrfToken = csrfCookie.Value
	}

	data := map[string]interface{}{
		"Page":      "settings",
		"PageTitle": "SETTINGS",
		"DevMode":   h.devMode,
		"Filename":  filename,
		"Saved":     r.URL.Query().Get("saved") == "1",
		"CSRFToken": csrfToken,
	}

	render(w, h.templates, h.logger, "settings.html", data)
}

// HandleSaveSettings handles POST /settings.
func (h *SettingsHandler) HandleSaveSettings(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "Bad Request", http.StatusBadRequest)
		return
	}

	value := r.FormValue("filename")
	if len(value) > maxSettingLength {
		http.Error(w, "Bad Request", http.StatusBadRequest)
		return
	}

	if err := h.store.SetFilename(r.Context(), value); err != nil {
		h.logger.Error().Str("error", err.Error()).Msg("failed to save settings")
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	http.Redirect(w, r, "/settings?saved=1", http.StatusFound)
}

// HandleSettingsAPI handles GET and PUT /api/settings.
func (h *SettingsHandler) HandleSettingsAPI(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet, http.MethodHead:
		filename, err := h.store.Filename(r.Context())
		if err != nil {
			h.logger.Error().Str("error", err.Error()).Msg("failed to read settings")
			WriteError(w, http.StatusInternalServerError, "failed to read settings")
			return
		}
		WriteJSON(w, http.StatusOK, settingsBody{Filename: filename})

	case http.MethodPut:
		var body settingsBody
		if err := DecodeJSON(r, &body); err != nil {
			WriteError(w, http.StatusBadRequest, err.Error())
			return
		}
		if len(body.Filename) > maxSettingLength {
			WriteError(w, http.StatusBadRequest, "filename is too long")
			return
		}
		if strings.ContainsRune(body.Filename, 0) {
			WriteError(w, http.StatusBadRequest, "filename contains a NUL byte")
			return
		}
		if err := h.store.SetFilename(r.Context(), body.Filename); err != nil {
			h.logger.Error().Str("error", err.Error()).Msg("failed to save settings")
			WriteError(w, http.StatusInternalServerError, "failed to save settings")
			return
		}
		h.logger.Info().Int("length", len(body.Filename)).Msg("settings saved")
		WriteJSON(w, http.StatusOK, body)

	default:
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
	}
}
