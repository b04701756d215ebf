package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"sync/atomic"

	"jobpay-engine/internal/config"
	"jobpay-engine/internal/secrets"
)

// SecretsHandler stores database passwords in the OS keychain under the
// accounts named in the config.
type SecretsHandler struct {
	CfgVal *atomic.Value // stores config.Config
}

type setPasswordReq struct {
	Password string `json:"password"`
}

func (h SecretsHandler) sourceAccount() string {
	return h.CfgVal.Load().(config.Config).Source.PasswordKeyring
}

func (h SecretsHandler) redisAccount() string {
	return h.CfgVal.Load().(config.Config).Cache.RedisPasswordKeyring
}

func (h SecretsHandler) SetSourcePassword(w http.ResponseWriter, r *http.Request) {
	h.set(w, r, h.sourceAccount(), "source.password_keyring")
}

func (h SecretsHandler) DeleteSourcePassword(w http.ResponseWriter, r *http.Request) {
	h.delete(w, r, h.sourceAccount(), "source.password_keyring")
}

func (h SecretsHandler) SetRedisPassword(w http.ResponseWriter, r *http.Request) {
	h.set(w, r, h.redisAccount(), "cache.redis_password_keyring")
}

func (h SecretsHandler) DeleteRedisPassword(w http.ResponseWriter, r *http.Request) {
	h.delete(w, r, h.redisAccount(), "cache.redis_password_keyring")
}

func (h SecretsHandler) set(w http.ResponseWriter, r *http.Request, account, field string) {
	if !isLocal(r) {
		WriteError(w, r, http.StatusForbidden, "forbidden", "forbidden")
		return
	}
	if strings.TrimSpace(account) == "" {
		WriteError(w, r, http.StatusBadRequest, "no_account", field+" is not set")
		return
	}

	var req setPasswordReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteError(w, r, http.StatusBadRequest, "invalid_json", "invalid json")
		return
	}
	if err := secrets.Set(account, req.Password); err != nil {
		WriteError(w, r, http.StatusBadRequest, "store_failed", "failed to store password: "+err.Error())
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h SecretsHandler) delete(w http.ResponseWriter, r *http.Request, account, field string) {
	if !isLocal(r) {
		WriteError(w, r, http.StatusForbidden, "forbidden", "forbidden")
		return
	}
	if strings.TrimSpace(account) == "" {
		WriteError(w, r, http.StatusBadRequest, "no_account", field+" is not set")
		return
	}
	if err := secrets.Delete(account); err != nil {
		if errors.Is(err, secrets.ErrNotFound) {
			WriteError(w, r, http.StatusNotFound, "not_found", err.Error())
			return
		}
		WriteError(w, r, http.StatusInternalServerError, "delete_failed", err.Error())
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
