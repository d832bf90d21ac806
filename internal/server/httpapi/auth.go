package httpapi

import (
	"net/http"

	"github.com/sayedsafi2000/pixelsbee/internal/server/models"
	"github.com/sayedsafi2000/pixelsbee/internal/server/policy"
	"github.com/sayedsafi2000/pixelsbee/internal/server/services"
)

type registerRequest struct {
	Name          string      `json:"name"`
	Email         string      `json:"email"`
	Password      string      `json:"password"`
	Role          models.Role `json:"role"`
	ProfilePicURL *string     `json:"profile_pic_url"`
}

type registerResponse struct {
	Message string             `json:"message"`
	Token   string             `json:"token,omitempty"`
	User    models.AccountView `json:"user"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginResponse struct {
	Token string             `json:"token"`
	User  models.AccountView `json:"user"`
}

func (a *API) register(w http.ResponseWriter, r *http.Request) {
	if _, ok := a.allow(w, r, policy.Register, policy.Resource{}); !ok {
		return
	}

	var req registerRequest
	if err := decodeJSON(r, &req); err != nil {
		a.writeError(w, r, err)
		return
	}

	res, err := a.accounts.Register(r.Context(), services.RegisterInput{
		Name:          req.Name,
		Email:         req.Email,
		Password:      req.Password,
		Role:          req.Role,
		ProfilePicURL: req.ProfilePicURL,
	})
	if err != nil {
		a.writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusCreated, registerResponse{Message: res.Message, Token: res.Token, User: res.Account})
}

func (a *API) login(w http.ResponseWriter, r *http.Request) {
	if _, ok := a.allow(w, r, policy.Login, policy.Resource{}); !ok {
		return
	}

	var req loginRequest
	if err := decodeJSON(r, &req); err != nil {
		a.writeError(w, r, err)
		return
	}

	res, err := a.accounts.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		a.writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, loginResponse{Token: res.Token, User: res.Account})
}
