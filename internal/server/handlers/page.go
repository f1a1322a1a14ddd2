package handlers

import (
	"bytes"
	"context"
	"net/http"
	"net/url"
	"strconv"

	"github.com/agentstation/userdetails/internal/view"
	"github.com/agentstation/userdetails/pkg/form"
	"github.com/agentstation/userdetails/pkg/logging"
)

// Page actions posted by the HTML form.
const (
	ActionSave   = ""
	ActionSubmit = "submit"
	ActionAppend = "append"
	ActionRemove = "remove"
	ActionCancel = "cancel"
)

// HandlePage handles GET /.
func (h *Handlers) HandlePage(w http.ResponseWriter, r *http.Request) {
	s := h.sessions.FromRequest(w, r)
	page := view.NewPage(s.Form.Snapshot(), h.display.Lines(), h.streamPath)

	var buf bytes.Buffer
	if err := h.renderer.Page(&buf, page); err != nil {
		h.logger.Error().Err(err).Msg("Failed to render page")
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("Cache-Control", "no-store")
	_, _ = buf.WriteTo(w)
}

// HandlePageAction handles POST /. Posted field values are applied first,
// then the action runs, and the browser is redirected back to the page.
func (h *Handlers) HandlePageAction(w http.ResponseWriter, r *http.Request) {
	s := h.sessions.FromRequest(w, r)
	logger := logging.FromContext(r.Context())

	if err := r.ParseForm(); err != nil {
		http.Error(w, "Invalid form data", http.StatusBadRequest)
		return
	}

	action := r.PostForm.Get("action")
	if r.PostForm.Has("remove") {
		action = ActionRemove
	}

	// The cancel control sits outside the field set and posts no values.
	if action != ActionCancel && s.Form.State() == form.Editing {
		if err := s.Form.Replace(valuesFromForm(r.PostForm)); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
	}

	switch action {
	case ActionSave:
	case ActionSubmit:
		if _, err := s.Form.Submit(context.WithoutCancel(r.Context())); err != nil {
			// Field errors are kept on the form and shown on the page.
			logger.Debug().Err(err).Str("session", s.PublicID).Msg("Submit refused")
		}
	case ActionAppend:
		s.Form.Append()
	case ActionRemove:
		index, err := strconv.Atoi(r.PostForm.Get("remove"))
		if err != nil {
			http.Error(w, "Tech stack index must be a number", http.StatusBadRequest)
			return
		}
		s.Form.Remove(index)
	case ActionCancel:
		s.Form.Cancel()
	default:
		http.Error(w, "Unknown action", http.StatusBadRequest)
		return
	}

	http.Redirect(w, r, "/", http.StatusSeeOther)
}

// HandleDisplay handles GET /display. The body is empty until a record
// has been submitted.
func (h *Handlers) HandleDisplay(w http.ResponseWriter, _ *http.Request) {
	var buf bytes.Buffer
	if err := h.renderer.Display(&buf, h.display.Lines()); err != nil {
		h.logger.Error().Err(err).Msg("Failed to render display")
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("Cache-Control", "no-store")
	_, _ = buf.WriteTo(w)
}

// valuesFromForm reads posted field values. Tech stack entries keep their
// posted order.
func valuesFromForm(v url.Values) form.Values {
	return form.Values{
		FirstName:   v.Get("firstName"),
		LastName:    v.Get("lastName"),
		Email:       v.Get("email"),
		PhoneNumber: v.Get("phoneNumber"),
		Gender:      v.Get("gender"),
		DateOfBirth: v.Get("dob"),
		TechStack:   append([]string(nil), v["techStack"]...),
	}
}
