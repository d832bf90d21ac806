package httpapi

import (
	"net/http"

	"github.com/sayedsafi2000/pixelsbee/internal/server/policy"
)

type profileRequest struct {
	Name          string  `json:"name"`
	Email         string  `json:"email"`
	ProfilePicURL *string `json:"profile_pic_url"`
}

type passwordRequest struct {
	OldPassword string `json:"oldPassword"`
	NewPassword string `json:"newPassword"`
}

func (a *API) getProfile(w http.ResponseWriter, r *http.Request) {
	actor, ok := a.allow(w, r, policy.ProfileManage, policy.Resource{})
	if !ok {
		return
	}
	view, err := a.accounts.Profile(r.Context(), actor.ID)
	if err != nil {
		a.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, view)
}

func (a *API) updateProfile(w http.ResponseWriter, r *http.Request) {
	actor, ok := a.allow(w, r, policy.ProfileManage, policy.Resource{})
	if !ok {
		return
	}

	var req profileRequest
	if err := decodeJSON(r, &req); err != nil {
		a.writeError(w, r, err)
		return
	}

	if err := a.accounts.UpdateProfile(r.Context(), actor.ID, req.Name, req.Email, req.ProfilePicURL); err != nil {
		a.writeError(w, r, err)
		return
	}
	writeMessage(w, http.StatusOK, "Profile updated")
}

func (a *API) changePassword(w http.ResponseWriter, r *http.Request) {
	actor, ok := a.allow(w, r, policy.ProfileManage, policy.Resource{})
	if !ok {
		return
	}

	var req passwordRequest
	if err := decodeJSON(r, &req); err != nil {
		a.writeError(w, r, err)
		return
	}

	if err := a.accounts.ChangePassword(r.Context(), actor.ID, req.OldPassword, req.NewPassword); err != nil {
		a.writeError(w, r, err)
		return
	}
	writeMessage(w, http.StatusOK, "Password changed")
}

func (a *API) userStats(w http.ResponseWriter, r *http.Request) {
	actor, ok := a.allow(w, r, policy.UserStats, policy.Resource{})
	if !ok {
		return
	}
	stats, err := a.stats.User(r.Context(), actor.ID)
	if err != nil {
		a.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, stats)
}

func (a *API) vendorStats(w http.ResponseWriter, r *http.Request) {
	actor, ok := a.allow(w, r, policy.VendorStats, policy.Resource{})
	if !ok {
		return
	}
	stats, err := a.stats.Vendor(r.Context(), actor.ID)
	if err != nil {
		a.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, stats)
}
