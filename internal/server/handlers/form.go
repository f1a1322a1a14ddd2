package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/agentstation/userdetails/internal/server/response"
	"github.com/agentstation/userdetails/pkg/form"
	"github.com/agentstation/userdetails/pkg/logging"
)

// FormView is the JSON form state of the caller's session.
type FormView struct {
	Session string `json:"session"`
	form.Snapshot
}

func (h *Handlers) formView(w http.ResponseWriter, r *http.Request) (*form.Form, FormView) {
	s := h.sessions.FromRequest(w, r)
	return s.Form, FormView{Session: s.PublicID, Snapshot: s.Form.Snapshot()}
}

// HandleGetForm handles GET /api/v1/form.
func (h *Handlers) HandleGetForm(w http.ResponseWriter, r *http.Request) {
	_, v := h.formView(w, r)
	response.OK(w, v)
}

// HandleReplaceForm handles PUT /api/v1/form. The body holds every value;
// omitted fields are cleared.
func (h *Handlers) HandleReplaceForm(w http.ResponseWriter, r *http.Request) {
	s := h.sessions.FromRequest(w, r)

	var values form.Values
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&values); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			response.TooLarge(w, err.Error())
			return
		}
		response.BadRequest(w, "Invalid form values", err.Error())
		return
	}

	if err := s.Form.Replace(values); err != nil {
		response.ErrorFromType(w, err)
		return
	}
	response.OK(w, FormView{Session: s.PublicID, Snapshot: s.Form.Snapshot()})
}

// HandleAppendTechStack handles POST /api/v1/form/techstack.
func (h *Handlers) HandleAppendTechStack(w http.ResponseWriter, r *http.Request) {
	s := h.sessions.FromRequest(w, r)
	if s.Form.State() == form.Submitting {
		response.Conflict(w, form.ErrFormDisabled.Error(), "a submission is pending")
		return
	}

	s.Form.Append()
	response.JSON(w, http.StatusCreated, response.Success(FormView{Session: s.PublicID, Snapshot: s.Form.Snapshot()}))
}

// HandleRemoveTechStack handles DELETE /api/v1/form/techstack/{index}.
func (h *Handlers) HandleRemoveTechStack(w http.ResponseWriter, r *http.Request, index int) {
	s := h.sessions.FromRequest(w, r)
	if err := s.Form.RemoveEntry(index); err != nil {
		response.ErrorFromType(w, err)
		return
	}
	response.OK(w, FormView{Session: s.PublicID, Snapshot: s.Form.Snapshot()})
}

// HandleSubmit handles POST /api/v1/form/submit. An accepted submission
// outlives the request; it ends when the delay elapses, on cancel, or when
// the session expires.
func (h *Handlers) HandleSubmit(w http.ResponseWriter, r *http.Request) {
	s := h.sessions.FromRequest(w, r)
	logger := logging.FromContext(r.Context())

	t, err := s.Form.Submit(context.WithoutCancel(r.Context()))
	if err != nil {
		logger.Debug().Err(err).Str("session", s.PublicID).Msg("Submit refused")
		response.ErrorFromType(w, err)
		return
	}

	logger.Info().Str("session", s.PublicID).Time("due", t.Deadline()).Msg("Submission accepted")
	response.Accepted(w, FormView{Session: s.PublicID, Snapshot: s.Form.Snapshot()})
}

// HandleCancel handles POST /api/v1/form/cancel.
func (h *Handlers) HandleCancel(w http.ResponseWriter, r *http.Request) {
	s := h.sessions.FromRequest(w, r)
	if !s.Form.Cancel() {
		response.Conflict(w, "No submission pending", "")
		return
	}
	response.OK(w, FormView{Session: s.PublicID, Snapshot: s.Form.Snapshot()})
}
