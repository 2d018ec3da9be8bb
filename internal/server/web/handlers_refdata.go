package web

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/dmitrijs2005/poseidon/internal/common"
	"github.com/dmitrijs2005/poseidon/internal/server/models"
	"github.com/dmitrijs2005/poseidon/internal/server/repositories/refdata"
)

// mountRefData wires the uniform list/add/update/delete routes for one
// reference-data table. All five tables share this handler set; only the
// form decoding differs. The authorization gate has already run by the time
// these execute, so the principal is used purely for log attribution.
func mountRefData[T any](r chi.Router, prefix string, s *Server, repo func() *refdata.Repository[T], decode func(r *http.Request) (*T, error)) {
	h := &refDataHandlers[T]{server: s, name: prefix, repo: repo, decode: decode}

	r.Route(prefix, func(r chi.Router) {
		r.Get("/list", h.list)
		r.Post("/add", h.add)
		r.Get("/update/{id}", h.get)
		r.Post("/update/{id}", h.update)
		r.Post("/delete/{id}", h.remove)
	})
}

type refDataHandlers[T any] struct {
	server *Server
	name   string
	repo   func() *refdata.Repository[T]
	decode func(r *http.Request) (*T, error)
}

func (h *refDataHandlers[T]) list(w http.ResponseWriter, r *http.Request) {
	items, err := h.repo().FindAll(r.Context())
	if err != nil {
		writeJSONError(w, http.StatusInternalServerError, "internal error")
		return
	}
	if items == nil {
		items = []*T{}
	}
	writeJSON(w, http.StatusOK, items)
}

func (h *refDataHandlers[T]) add(w http.ResponseWriter, r *http.Request) {
	e, err := h.decode(r)
	if err != nil {
		writeJSONError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}
	created, err := h.repo().Create(r.Context(), e)
	if err != nil {
		writeJSONError(w, http.StatusInternalServerError, "internal error")
		return
	}

	h.server.logger.Info(r.Context(), "record created",
		"table", h.name, "user", PrincipalFrom(r).Username)
	writeJSON(w, http.StatusCreated, created)
}

func (h *refDataHandlers[T]) get(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(chi.URLParam(r, "id"))
	if err != nil {
		writeJSONError(w, http.StatusBadRequest, "invalid id")
		return
	}
	e, err := h.repo().FindByID(r.Context(), id)
	if err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, e)
}

func (h *refDataHandlers[T]) update(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(chi.URLParam(r, "id"))
	if err != nil {
		writeJSONError(w, http.StatusBadRequest, "invalid id")
		return
	}
	e, err := h.decode(r)
	if err != nil {
		writeJSONError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}
	setEntityID(e, id)

	updated, err := h.repo().Update(r.Context(), e)
	if err != nil {
		h.writeError(w, err)
		return
	}

	h.server.logger.Info(r.Context(), "record updated",
		"table", h.name, "id", id, "user", PrincipalFrom(r).Username)
	writeJSON(w, http.StatusOK, updated)
}

func (h *refDataHandlers[T]) remove(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(chi.URLParam(r, "id"))
	if err != nil {
		writeJSONError(w, http.StatusBadRequest, "invalid id")
		return
	}
	if err := h.repo().Delete(r.Context(), id); err != nil {
		h.writeError(w, err)
		return
	}

	h.server.logger.Info(r.Context(), "record deleted",
		"table", h.name, "id", id, "user", PrincipalFrom(r).Username)
	w.WriteHeader(http.StatusNoContent)
}

func (h *refDataHandlers[T]) writeError(w http.ResponseWriter, err error) {
	if errors.Is(err, common.ErrNotFound) {
		writeJSONError(w, http.StatusNotFound, "not found")
		return
	}
	writeJSONError(w, http.StatusInternalServerError, "internal error")
}

// setEntityID stamps the path id onto the decoded entity before an update.
func setEntityID(e any, id int64) {
	switch v := e.(type) {
	case *models.BidList:
		v.ID = id
	case *models.CurvePoint:
		v.ID = id
	case *models.Rating:
		v.ID = id
	case *models.RuleName:
		v.ID = id
	case *models.Trade:
		v.ID = id
	}
}

// Form decoders. Numeric fields reject garbage instead of defaulting to
// zero, since a silently zeroed quantity is worse than a 422.

func formFloat(r *http.Request, field string) (float64, error) {
	raw := r.PostFormValue(field)
	if raw == "" {
		return 0, nil
	}
	return strconv.ParseFloat(raw, 64)
}

func formInt(r *http.Request, field string) (int64, error) {
	raw := r.PostFormValue(field)
	if raw == "" {
		return 0, nil
	}
	return strconv.ParseInt(raw, 10, 64)
}

func decodeBidList(r *http.Request) (*models.BidList, error) {
	if err := r.ParseForm(); err != nil {
		return nil, err
	}
	qty, err := formFloat(r, "bidQuantity")
	if err != nil {
		return nil, errors.New("bidQuantity must be a number")
	}
	return &models.BidList{
		Account:     r.PostFormValue("account"),
		Type:        r.PostFormValue("type"),
		BidQuantity: qty,
	}, nil
}

func decodeCurvePoint(r *http.Request) (*models.CurvePoint, error) {
	if err := r.ParseForm(); err != nil {
		return nil, err
	}
	curveID, err := formInt(r, "curveId")
	if err != nil {
		return nil, errors.New("curveId must be an integer")
	}
	term, err := formFloat(r, "term")
	if err != nil {
		return nil, errors.New("term must be a number")
	}
	value, err := formFloat(r, "value")
	if err != nil {
		return nil, errors.New("value must be a number")
	}
	return &models.CurvePoint{CurveID: curveID, Term: term, Value: value}, nil
}

func decodeRating(r *http.Request) (*models.Rating, error) {
	if err := r.ParseForm(); err != nil {
		return nil, err
	}
	order, err := formInt(r, "orderNumber")
	if err != nil {
		return nil, errors.New("orderNumber must be an integer")
	}
	return &models.Rating{
		MoodysRating: r.PostFormValue("moodysRating"),
		SandPRating:  r.PostFormValue("sandPRating"),
		FitchRating:  r.PostFormValue("fitchRating"),
		OrderNumber:  int32(order),
	}, nil
}

func decodeRuleName(r *http.Request) (*models.RuleName, error) {
	if err := r.ParseForm(); err != nil {
		return nil, err
	}
	return &models.RuleName{
		Name:        r.PostFormValue("name"),
		Description: r.PostFormValue("description"),
		JSON:        r.PostFormValue("json"),
		Template:    r.PostFormValue("template"),
		SQLStr:      r.PostFormValue("sqlStr"),
		SQLPart:     r.PostFormValue("sqlPart"),
	}, nil
}

func decodeTrade(r *http.Request) (*models.Trade, error) {
	if err := r.ParseForm(); err != nil {
		return nil, err
	}
	qty, err := formFloat(r, "buyQuantity")
	if err != nil {
		return nil, errors.New("buyQuantity must be a number")
	}
	return &models.Trade{
		Account:     r.PostFormValue("account"),
		Type:        r.PostFormValue("type"),
		BuyQuantity: qty,
	}, nil
}
