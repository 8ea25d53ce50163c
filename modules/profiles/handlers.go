package profiles

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/kingsocial/authkit/pkg/authstate"
	"github.com/kingsocial/authkit/pkg/guard"
)

type handlers struct {
	storage Storage
	logger  *slog.Logger
}

func (h *handlers) create(w http.ResponseWriter, r *http.Request) {
	user := guard.UserFromContext(r.Context())
	if user == nil {
		respondError(w, http.StatusUnauthorized, "unauthorized", "authentication required")
		return
	}

	var input ProfileInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_json", "request body is not valid JSON")
		return
	}
	if problems := input.Validate(); len(problems) > 0 {
		respondValidation(w, problems)
		return
	}

	profile := &Profile{
		ID:          uuid.New(),
		UserID:      user.ID,
		DisplayName: input.DisplayName,
		Username:    input.Username,
		Bio:         input.Bio,
		AvatarURL:   input.AvatarURL,
		City:        input.City,
	}
	if err := h.storage.Create(r.Context(), profile); err != nil {
		h.writeStorageError(w, err)
		return
	}
	respondProfile(w, http.StatusCreated, profile)
}

func (h *handlers) get(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid_id", "profile id must be a UUID")
		return
	}

	profile, err := h.storage.GetByID(r.Context(), id)
	if err != nil {
		h.writeStorageError(w, err)
		return
	}
	respondProfile(w, http.StatusOK, profile)
}

func (h *handlers) me(w http.ResponseWriter, r *http.Request) {
	user := guard.UserFromContext(r.Context())
	if user == nil {
		respondError(w, http.StatusUnauthorized, "unauthorized", "authentication required")
		return
	}

	profile, err := h.storage.GetByUserID(r.Context(), user.ID)
	if err != nil {
		h.writeStorageError(w, err)
		return
	}
	respondProfile(w, http.StatusOK, profile)
}

func (h *handlers) update(w http.ResponseWriter, r *http.Request) {
	user := guard.UserFromContext(r.Context())
	if user == nil {
		respondError(w, http.StatusUnauthorized, "unauthorized", "authentication required")
		return
	}

	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid_id", "profile id must be a UUID")
		return
	}

	var input ProfileInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_json", "request body is not valid JSON")
		return
	}
	if problems := input.Validate(); len(problems) > 0 {
		respondValidation(w, problems)
		return
	}

	profile, err := h.storage.GetByID(r.Context(), id)
	if err != nil {
		h.writeStorageError(w, err)
		return
	}
	if !h.canModify(user, profile) {
		respondError(w, http.StatusUnauthorized, "forbidden", "profile belongs to another user")
		return
	}

	profile.DisplayName = input.DisplayName
	profile.Username = input.Username
	profile.Bio = input.Bio
	profile.AvatarURL = input.AvatarURL
	profile.City = input.City

	if err := h.storage.Update(r.Context(), profile); err != nil {
		h.writeStorageError(w, err)
		return
	}
	respondProfile(w, http.StatusOK, profile)
}

func (h *handlers) delete(w http.ResponseWriter, r *http.Request) {
	user := guard.UserFromContext(r.Context())
	if user == nil {
		respondError(w, http.StatusUnauthorized, "unauthorized", "authentication required")
		return
	}

	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid_id", "profile id must be a UUID")
		return
	}

	profile, err := h.storage.GetByID(r.Context(), id)
	if err != nil {
		h.writeStorageError(w, err)
		return
	}
	if !h.canModify(user, profile) {
		respondError(w, http.StatusUnauthorized, "forbidden", "profile belongs to another user")
		return
	}

	if err := h.storage.Delete(r.Context(), id); err != nil {
		h.writeStorageError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *handlers) list(w http.ResponseWriter, r *http.Request) {
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	offset, _ := strconv.Atoi(r.URL.Query().Get("offset"))

	result, err := h.storage.List(r.Context(), limit, offset)
	if err != nil {
		h.writeStorageError(w, err)
		return
	}
	respond(w, http.StatusOK, envelope{
		Profiles: result,
		Code:     "ok",
		Meta:     map[string]any{"count": len(result), "offset": offset},
	})
}

// canModify allows owners plus moderation roles.
func (h *handlers) canModify(user *authstate.User, profile *Profile) bool {
	if user.ID == profile.UserID {
		return true
	}
	role := user.AppMetadata.Role
	return role == authstate.RoleAdmin || role == authstate.RoleModerator
}

func (h *handlers) writeStorageError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ErrNotFound):
		respondError(w, http.StatusNotFound, "not_found", "profile not found")
	case errors.Is(err, ErrUsernameTaken):
		respondError(w, http.StatusConflict, "username_taken", "username already taken")
	case errors.Is(err, ErrProfileExists):
		respondError(w, http.StatusConflict, "profile_exists", "user already has a profile")
	default:
		h.logger.Error("profile storage failure",
			slog.Any("error", err),
			slog.String("component", "profiles"),
		)
		respondError(w, http.StatusInternalServerError, "internal_error", "something went wrong")
	}
}
