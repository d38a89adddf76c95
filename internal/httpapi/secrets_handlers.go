package httpapi

import (
	"encoding/json"
	"net"
	"net/http"

	"github.com/go-chi/chi/v5"

	"hireassist-engine/internal/secrets"
)

var secretAccounts = map[string]string{
	"ai":       secrets.AIKeyAccount,
	"telegram": secrets.TelegramKeyAccount,
}

type SecretsHandler struct {
	Set func(account, value string) error
}

type setSecretReq struct {
	Value string `json:"value"`
}

// Put stores a credential in the OS keychain. Only loopback callers are
// accepted; the engine picks the value up on its next start.
func (h SecretsHandler) Put(w http.ResponseWriter, r *http.Request) {
	if !isLoopback(r.RemoteAddr) {
		WriteError(w, r, http.StatusForbidden, "forbidden", "secrets can only be set locally")
		return
	}
	account, ok := secretAccounts[chi.URLParam(r, "name")]
	if !ok {
		WriteError(w, r, http.StatusNotFound, "unknown_secret", "unknown secret name")
		return
	}

	var req setSecretReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteError(w, r, http.StatusBadRequest, "invalid_json", "invalid json")
		return
	}
	set := h.Set
	if set == nil {
		set = secrets.Set
	}
	if err := set(account, req.Value); err != nil {
		WriteError(w, r, http.StatusBadRequest, "keyring_error", "failed to store secret: "+err.Error())
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func isLoopback(remoteAddr string) bool {
	host, _, err := net.SplitHostPort(remoteAddr)
	if err != nil {
		host = remoteAddr
	}
	if host == "localhost" {
		return true
	}
	ip := net.ParseIP(host)
	return ip != nil && ip.IsLoopback()
}
