package http

import (
	"encoding/json"
	"net/http"

	"account-auth/internal/domain"
	"account-auth/internal/dto"
	"account-auth/internal/httpx"
	"account-auth/internal/service"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
)

const maxBodyBytes = 1 << 20

const registeredMessage = "Account created, please verify your email"

var errBadBody = domain.NewError(domain.KindValidation, "invalid request body")

type handlers struct {
	auth  service.AuthService
	reset service.PasswordResetService
	users service.UserService
}

func decode(w http.ResponseWriter, r *http.Request, v any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		return errBadBody.Wrap(err)
	}
	return nil
}

func (h *handlers) register(w http.ResponseWriter, r *http.Request) {
	var req dto.RegisterRequest
	if err := decode(w, r, &req); err != nil {
		httpx.WriteError(w, r, err)
		return
	}
	profile, err := h.auth.Register(r.Context(), req)
	if err != nil {
		httpx.WriteError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusCreated, dto.RegisterResponse{
		Success: true,
		Message: registeredMessage,
		User:    *profile,
	})
}

func (h *handlers) verifyAccount(w http.ResponseWriter, r *http.Request) {
	profile, err := h.auth.VerifyEmail(r.Context(), chi.URLParam(r, "verificationCode"))
	if err != nil {
		httpx.WriteError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, profile)
}

func (h *handlers) login(w http.ResponseWriter, r *http.Request) {
	var req dto.LoginRequest
	if err := decode(w, r, &req); err != nil {
		httpx.WriteError(w, r, err)
		return
	}
	resp, err := h.auth.Login(r.Context(), req, httpx.ClientIP(r))
	if err != nil {
		httpx.WriteError(w, r, err)
		return
	}
	w.Header().Set("Authorization", "JWT "+resp.Token)
	httpx.WriteJSON(w, http.StatusOK, resp)
}

func (h *handlers) requestReset(w http.ResponseWriter, r *http.Request) {
	var req dto.ResetPasswordRequest
	if err := decode(w, r, &req); err != nil {
		httpx.WriteError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, h.reset.Request(r.Context(), req.Email))
}

func (h *handlers) checkReset(w http.ResponseWriter, r *http.Request) {
	ok, err := h.reset.Check(r.Context(), chi.URLParam(r, "resetToken"))
	if err != nil {
		httpx.WriteError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, ok)
}

func (h *handlers) saveReset(w http.ResponseWriter, r *http.Request) {
	var req dto.ResetPasswordSaveRequest
	if err := decode(w, r, &req); err != nil {
		httpx.WriteError(w, r, err)
		return
	}
	resp, err := h.reset.Save(r.Context(), req)
	if err != nil {
		httpx.WriteError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, resp)
}

func (h *handlers) listUsers(w http.ResponseWriter, r *http.Request) {
	users, err := h.users.List(r.Context())
	if err != nil {
		httpx.WriteError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, users)
}

func (h *handlers) me(w http.ResponseWriter, r *http.Request) {
	profile, ok := httpx.ProfileFromContext(r.Context())
	if !ok {
		httpx.WriteError(w, r, domain.ErrInvalidSessionToken)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, profile)
}

func (h *handlers) getUser(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		httpx.WriteError(w, r, domain.ErrUserNotFound)
		return
	}
	profile, err := h.users.Get(r.Context(), id)
	if err != nil {
		httpx.WriteError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, profile)
}
