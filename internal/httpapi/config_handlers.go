package httpapi

import (
	"net/http"
	"path/filepath"

	"hireassist-engine/internal/config"
)

type ConfigHandler struct {
	Config func() config.Config
	Path   string
}

// Get returns the effective config with credentials replaced by flags.
func (h ConfigHandler) Get(w http.ResponseWriter, r *http.Request) {
	cfg := h.Config()
	secrets := map[string]bool{
		"ai":       cfg.AI.APIKey != "",
		"telegram": cfg.Telegram.Token != "",
	}
	cfg.AI.APIKey = ""
	cfg.Telegram.Token = ""
	WriteJSON(w, http.StatusOK, map[string]any{"config": cfg, "secrets": secrets})
}

func (h ConfigHandler) GetPath(w http.ResponseWriter, r *http.Request) {
	abs, _ := filepath.Abs(h.Path)
	WriteJSON(w, http.StatusOK, map[string]any{"path": abs})
}

func (h ConfigHandler) Validate(w http.ResponseWriter, r *http.Request) {
	_, vr := config.NormalizeAndValidate(h.Config())
	WriteJSON(w, http.StatusOK, vr)
}
