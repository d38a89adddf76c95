package secrets

import (
	"strings"

	"github.com/rotisserie/eris"
	"github.com/zalando/go-keyring"

	"hireassist-engine/internal/config"
)

const (
	// KeyringService groups the engine's secrets in the OS keychain.
	KeyringService = "hireassist"

	AIKeyAccount       = "ai:api_key"
	TelegramKeyAccount = "telegram:bot_token"
)

var ErrNotFound = eris.New("secret not found")

// Get returns a secret from the OS keychain.
func Get(account string) (string, error) {
	if strings.TrimSpace(account) == "" {
		return "", eris.New("keyring account name is empty")
	}
	v, err := keyring.Get(KeyringService, account)
	if err != nil || strings.TrimSpace(v) == "" {
		return "", ErrNotFound
	}
	return v, nil
}

func Set(account, value string) error {
	if strings.TrimSpace(account) == "" {
		return eris.New("keyring account name is empty")
	}
	if strings.TrimSpace(value) == "" {
		return eris.New("secret is empty")
	}
	return eris.Wrap(keyring.Set(KeyringService, account, value), "keyring set")
}

func Delete(account string) error {
	if strings.TrimSpace(account) == "" {
		return eris.New("keyring account name is empty")
	}
	return eris.Wrap(keyring.Delete(KeyringService, account), "keyring delete")
}

// Resolve fills credentials the environment did not provide from the keychain.
// Missing secrets are not an error: the features using them degrade.
func Resolve(cfg *config.Config) {
	if cfg.AI.APIKey == "" {
		if v, err := Get(AIKeyAccount); err == nil {
			cfg.AI.APIKey = v
		}
	}
	if cfg.Telegram.Token == "" {
		if v, err := Get(TelegramKeyAccount); err == nil {
			cfg.Telegram.Token = v
		}
	}
}
