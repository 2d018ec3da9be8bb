package web

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/dmitrijs2005/poseidon/internal/common"
	"github.com/dmitrijs2005/poseidon/internal/server/models"
	"github.com/dmitrijs2005/poseidon/internal/server/services"
)

// userView is the client-facing projection of a user. The password hash
// never crosses this boundary.
type userView struct {
	ID       int64  `json:"id"`
	Username string `json:"username"`
	FullName string `json:"fullName"`
	Role     string `json:"role"`
}

func toUserView(u *models.User) userView {
	return userView{ID: u.ID, Username: u.Username, FullName: u.FullName, Role: u.Role}
}

func (s *Server) handleUserList(w http.ResponseWriter, r *http.Request) {
	list, err := s.users.List(r.Context())
	if err != nil {
		writeJSONError(w, http.StatusInternalServerError, "internal error")
		return
	}
	views := make([]userView, 0, len(list))
	for _, u := range list {
		views = append(views, toUserView(u))
	}
	writeJSON(w, http.StatusOK, views)
}

func (s *Server) handleUserAdd(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		writeJSONError(w, http.StatusBadRequest, "invalid form")
		return
	}

	user, err := s.users.Create(r.Context(),
		r.PostFormValue("username"),
		r.PostFormValue("password"),
		r.PostFormValue("fullname"),
		r.PostFormValue("role"),
	)
	if err != nil {
		s.writeUserError(w, err)
		return
	}

	s.logger.Info(r.Context(), "user created",
		"user", PrincipalFrom(r).Username, "created", user.Username)
	writeJSON(w, http.StatusCreated, toUserView(user))
}

func (s *Server) handleUserGet(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(chi.URLParam(r, "id"))
	if err != nil {
		writeJSONError(w, http.StatusBadRequest, "invalid id")
		return
	}
	user, err := s.users.GetByID(r.Context(), id)
	if err != nil {
		s.writeUserError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toUserView(user))
}

func (s *Server) handleUserUpdate(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(chi.URLParam(r, "id"))
	if err != nil {
		writeJSONError(w, http.StatusBadRequest, "invalid id")
		return
	}
	if err := r.ParseForm(); err != nil {
		writeJSONError(w, http.StatusBadRequest, "invalid form")
		return
	}

	user, err := s.users.Update(r.Context(), id,
		r.PostFormValue("username"),
		r.PostFormValue("password"),
		r.PostFormValue("fullname"),
		r.PostFormValue("role"),
	)
	if err != nil {
		s.writeUserError(w, err)
		return
	}

	s.logger.Info(r.Context(), "user updated",
		"user", PrincipalFrom(r).Username, "updated", user.Username)
	writeJSON(w, http.StatusOK, toUserView(user))
}

func (s *Server) handleUserDelete(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(chi.URLParam(r, "id"))
	if err != nil {
		writeJSONError(w, http.StatusBadRequest, "invalid id")
		return
	}
	if err := s.users.Delete(r.Context(), id); err != nil {
		s.writeUserError(w, err)
		return
	}

	s.logger.Info(r.Context(), "user deleted",
		"user", PrincipalFrom(r).Username, "deleted_id", id)
	w.WriteHeader(http.StatusNoContent)
}

// writeUserError maps service errors onto the response taxonomy: field-level
// validation maps, not-found, the recoverable uniqueness conflict, and a
// catch-all.
func (s *Server) writeUserError(w http.ResponseWriter, err error) {
	var verr *services.ValidationError
	switch {
	case errors.As(err, &verr):
		writeJSON(w, http.StatusUnprocessableEntity, map[string]any{"errors": verr.Fields})
	case errors.Is(err, common.ErrNotFound):
		writeJSONError(w, http.StatusNotFound, "not found")
	case errors.Is(err, common.ErrAlreadyExists):
		writeJSONError(w, http.StatusConflict, "username is already in use")
	default:
		writeJSONError(w, http.StatusInternalServerError, "internal error")
	}
}
