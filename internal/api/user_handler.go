package api

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"golang.org/x/crypto/bcrypt"

	"github.com/palabra-labs/palabra-api/internal/api/shared"
	"github.com/palabra-labs/palabra-api/internal/platform/logger"
	"github.com/palabra-labs/palabra-api/internal/service"
	"github.com/palabra-labs/palabra-api/internal/store"
)

// UserHandler handles user-account API requests. Password hashing happens
// here, at the transport boundary: the service only ever sees hashed
// credentials.
type UserHandler struct {
	userService service.UserService
	validator   *validator.Validate
	bcryptCost  int
}

// NewUserHandler creates a new UserHandler with the given dependencies.
func NewUserHandler(userService service.UserService) *UserHandler {
	return &UserHandler{
		userService: userService,
		validator:   validator.New(),
		bcryptCost:  bcrypt.DefaultCost,
	}
}

// Create handles POST /api/users requests.
func (h *UserHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req CreateUserRequest

	if err := shared.DecodeJSON(r, &req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid request format")
		return
	}

	if err := h.validator.Struct(req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Validation error: "+err.Error())
		return
	}

	hashed, err := h.hashPassword(req.Password)
	if err != nil {
		shared.RespondWithErrorAndLog(w, r, http.StatusInternalServerError,
			"Failed to create user", err)
		return
	}

	user, err := h.userService.CreateUser(r.Context(), req.Name, req.Email, hashed)
	if err != nil {
		h.respondWithServiceError(w, r, err)
		return
	}

	shared.RespondWithJSON(w, r, http.StatusCreated, userToResponse(user))
}

// List handles GET /api/users requests.
func (h *UserHandler) List(w http.ResponseWriter, r *http.Request) {
	users, err := h.userService.ListUsers(r.Context())
	if err != nil {
		h.respondWithServiceError(w, r, err)
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, usersToResponse(users))
}

// Get handles GET /api/users/{id} requests.
func (h *UserHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r)
	if !ok {
		return
	}

	user, err := h.userService.GetUser(r.Context(), id)
	if err != nil {
		h.respondWithServiceError(w, r, err)
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, userToResponse(user))
}

// Lookup handles GET /api/users/lookup requests. The email is matched
// exactly, not case-insensitively.
func (h *UserHandler) Lookup(w http.ResponseWriter, r *http.Request) {
	email := r.URL.Query().Get("email")
	if email == "" {
		shared.RespondWithError(w, r, http.StatusBadRequest, "email query parameter is required")
		return
	}

	user, err := h.userService.AuthorizeUser(r.Context(), email)
	if err != nil {
		h.respondWithServiceError(w, r, err)
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, userToResponse(user))
}

// Credentials handles GET /api/users/credentials requests. Absence is
// reported as a JSON null body with 200, mirroring the service contract
// where a miss is not an error.
func (h *UserHandler) Credentials(w http.ResponseWriter, r *http.Request) {
	email := r.URL.Query().Get("email")
	if email == "" {
		shared.RespondWithError(w, r, http.StatusBadRequest, "email query parameter is required")
		return
	}

	creds, err := h.userService.FindCredentials(r.Context(), email)
	if err != nil {
		h.respondWithServiceError(w, r, err)
		return
	}

	if creds == nil {
		shared.RespondWithJSON(w, r, http.StatusOK, nil)
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, credentialsToResponse(creds))
}

// Progress handles GET /api/users/{id}/progress requests.
func (h *UserHandler) Progress(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r)
	if !ok {
		return
	}

	progress, err := h.userService.GetProgress(r.Context(), id)
	if err != nil {
		h.respondWithServiceError(w, r, err)
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, progressToResponse(progress))
}

// Update handles PUT /api/users/{id} requests with partial-update semantics.
func (h *UserHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r)
	if !ok {
		return
	}

	var req UpdateUserRequest
	if err := shared.DecodeJSON(r, &req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid request format")
		return
	}

	if err := h.validator.Struct(req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Validation error: "+err.Error())
		return
	}

	patch := store.UserPatch{
		Name:  req.Name,
		Email: req.Email,
	}

	if req.Password != nil {
		hashed, err := h.hashPassword(*req.Password)
		if err != nil {
			shared.RespondWithErrorAndLog(w, r, http.StatusInternalServerError,
				"Failed to update user", err)
			return
		}
		patch.HashedPassword = &hashed
	}

	user, err := h.userService.UpdateUser(r.Context(), id, patch)
	if err != nil {
		h.respondWithServiceError(w, r, err)
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, userToResponse(user))
}

// Delete handles DELETE /api/users/{id} requests.
func (h *UserHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r)
	if !ok {
		return
	}

	if err := h.userService.DeleteUser(r.Context(), id); err != nil {
		h.respondWithServiceError(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// DeleteMany handles DELETE /api/users requests with a body of IDs.
func (h *UserHandler) DeleteMany(w http.ResponseWriter, r *http.Request) {
	var req DeleteUsersRequest
	if err := shared.DecodeJSON(r, &req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid request format")
		return
	}

	if err := h.validator.Struct(req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Validation error: "+err.Error())
		return
	}

	deleted, err := h.userService.DeleteUsers(r.Context(), req.IDs)
	if err != nil {
		h.respondWithServiceError(w, r, err)
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, DeleteUsersResponse{Deleted: deleted})
}

// ChangePassword handles PATCH /api/users/{id}/password requests.
func (h *UserHandler) ChangePassword(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r)
	if !ok {
		return
	}

	var req ChangePasswordRequest
	if err := shared.DecodeJSON(r, &req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid request format")
		return
	}

	if err := h.validator.Struct(req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Validation error: "+err.Error())
		return
	}

	hashed, err := h.hashPassword(req.Password)
	if err != nil {
		shared.RespondWithErrorAndLog(w, r, http.StatusInternalServerError,
			"Failed to change password", err)
		return
	}

	if err := h.userService.ChangePassword(r.Context(), id, hashed); err != nil {
		h.respondWithServiceError(w, r, err)
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, MessageResponse{
		Message: "Password updated successfully",
	})
}

// UpdatePassword handles PUT /api/users/password requests.
func (h *UserHandler) UpdatePassword(w http.ResponseWriter, r *http.Request) {
	var req UpdatePasswordRequest
	if err := shared.DecodeJSON(r, &req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid request format")
		return
	}

	if err := h.validator.Struct(req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Validation error: "+err.Error())
		return
	}

	hashed, err := h.hashPassword(req.Password)
	if err != nil {
		shared.RespondWithErrorAndLog(w, r, http.StatusInternalServerError,
			"Failed to update password", err)
		return
	}

	user, err := h.userService.UpdatePasswordByEmail(r.Context(), req.Email, hashed)
	if err != nil {
		h.respondWithServiceError(w, r, err)
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, userToResponse(user))
}

// hashPassword hashes a plaintext password for storage. The service layer
// never sees plaintext credentials.
func (h *UserHandler) hashPassword(password string) (string, error) {
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), h.bcryptCost)
	if err != nil {
		return "", err
	}
	return string(hashed), nil
}

// pathID extracts the {id} path parameter as a positive int64.
// It writes an error response and returns false when the parameter is
// missing or malformed.
func (h *UserHandler) pathID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	raw := chi.URLParam(r, "id")
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		log := logger.FromContext(r.Context())
		log.Warn("invalid id path parameter", "value", raw)
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid user ID")
		return 0, false
	}
	return id, true
}

// respondWithServiceError maps a service error to a status code and safe
// message, logging the original error.
func (h *UserHandler) respondWithServiceError(w http.ResponseWriter, r *http.Request, err error) {
	shared.RespondWithErrorAndLog(w, r, MapErrorToStatusCode(err), GetSafeErrorMessage(err), err)
}
