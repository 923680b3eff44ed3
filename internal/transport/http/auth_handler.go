package http

import (
	"net/http"

	"studysync/internal/app"
)

// AuthHandler exposes the OTP-gated signup flow, login, and profile.
type AuthHandler struct {
	accounts *app.AccountService
}

func NewAuthHandler(accounts *app.AccountService) *AuthHandler {
	return &AuthHandler{accounts: accounts}
}

type emailRequest struct {
	Email string `json:"email"`
}

type verifyOTPRequest struct {
	Email string `json:"email"`
	OTP   string `json:"otp"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type messageResponse struct {
	Message string `json:"message"`
}

func (h *AuthHandler) sendOTP(w http.ResponseWriter, r *http.Request) {
	var req emailRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, err)
		return
	}
	if err := h.accounts.SendSignupOTP(r.Context(), req.Email); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, messageResponse{Message: "OTP sent successfully"})
}

func (h *AuthHandler) verifyOTP(w http.ResponseWriter, r *http.Request) {
	var req verifyOTPRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, err)
		return
	}
	if err := h.accounts.VerifySignupOTP(r.Context(), req.Email, req.OTP); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, messageResponse{Message: "OTP verified successfully"})
}

func (h *AuthHandler) resendOTP(w http.ResponseWriter, r *http.Request) {
	var req emailRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, err)
		return
	}
	if err := h.accounts.ResendOTP(r.Context(), req.Email); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, messageResponse{Message: "OTP sent successfully"})
}

func (h *AuthHandler) register(w http.ResponseWriter, r *http.Request) {
	var req app.RegisterInput
	if err := decodeBody(r, &req); err != nil {
		writeError(w, err)
		return
	}
	authed, err := h.accounts.Register(r.Context(), req)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, authed)
}

func (h *AuthHandler) login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, err)
		return
	}
	authed, err := h.accounts.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, authed)
}

func (h *AuthHandler) me(w http.ResponseWriter, r *http.Request) {
	claims, ok := claimsFrom(r)
	if !ok {
		writeJSON(w, http.StatusUnauthorized, errorPayload{Message: "not authenticated"})
		return
	}
	user, err := h.accounts.GetUser(r.Context(), claims.UserID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, user)
}

func (h *AuthHandler) updateProfile(w http.ResponseWriter, r *http.Request) {
	claims, ok := claimsFrom(r)
	if !ok {
		writeJSON(w, http.StatusUnauthorized, errorPayload{Message: "not authenticated"})
		return
	}
	var req app.ProfileUpdate
	if err := decodeBody(r, &req); err != nil {
		writeError(w, err)
		return
	}
	user, err := h.accounts.UpdateProfile(r.Context(), claims.UserID, req)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, user)
}
