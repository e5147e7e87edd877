package handlers

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/azrilhafizi/kirim-backend/internal/api/httpx"
	"github.com/azrilhafizi/kirim-backend/internal/auth"
	"github.com/azrilhafizi/kirim-backend/internal/services"
)

// AuthHandler issues session tokens. Login is the demo account's number plus
// the possession PIN; there is no user registration.
type AuthHandler struct {
	TM       *auth.TokenManager
	Accounts *services.AccountService
	Authn    services.Authenticator
}

func NewAuthHandler(tm *auth.TokenManager, accounts *services.AccountService, authn services.Authenticator) *AuthHandler {
	return &AuthHandler{TM: tm, Accounts: accounts, Authn: authn}
}

type loginReq struct {
	AccountNumber string `json:"account_number"`
	PIN           string `json:"pin"`
}

type tokenResp struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	ExpiresIn    int64  `json:"expires_in"` // seconds
}

func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req loginReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.AccountNumber == "" {
		httpx.WriteError(w, http.StatusBadRequest, "bad_request", "account_number and pin required", nil)
		return
	}

	account, err := h.Accounts.Current(r.Context())
	if err != nil {
		httpx.WriteError(w, http.StatusInternalServerError, "internal_error", "internal error", nil)
		return
	}
	if req.AccountNumber != account.AccountNumber {
		httpx.WriteError(w, http.StatusUnauthorized, "invalid_credentials", "invalid credentials", nil)
		return
	}
	ok, err := h.Authn.Challenge(r.Context(), "Sign in", req.PIN)
	if err != nil || !ok {
		httpx.WriteError(w, http.StatusUnauthorized, "invalid_credentials", "invalid credentials", nil)
		return
	}

	access, refresh, exp, err := h.TM.GeneratePair(account.AccountNumber)
	if err != nil {
		httpx.WriteError(w, http.StatusInternalServerError, "internal_error", "token generation failed", nil)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, tokenResp{
		AccessToken:  access,
		RefreshToken: refresh,
		ExpiresIn:    int64(time.Until(exp).Seconds()),
	})
}

type refreshReq struct {
	RefreshToken string `json:"refresh_token"`
}

func (h *AuthHandler) Refresh(w http.ResponseWriter, r *http.Request) {
	var req refreshReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.RefreshToken == "" {
		httpx.WriteError(w, http.StatusBadRequest, "bad_request", "refresh_token required", nil)
		return
	}
	claims, isRefresh, err := h.TM.ParseAny(req.RefreshToken)
	if err != nil || !isRefresh {
		httpx.WriteError(w, http.StatusUnauthorized, "invalid_token", "invalid refresh token", nil)
		return
	}
	access, refresh, exp, err := h.TM.GeneratePair(claims.AccountNumber)
	if err != nil {
		httpx.WriteError(w, http.StatusInternalServerError, "internal_error", "token generation failed", nil)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, tokenResp{
		AccessToken:  access,
		RefreshToken: refresh,
		ExpiresIn:    int64(time.Until(exp).Seconds()),
	})
}
