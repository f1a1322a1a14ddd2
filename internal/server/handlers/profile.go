package handlers

import (
	"net/http"
	"strconv"

	"github.com/agentstation/userdetails/internal/server/response"
	"github.com/agentstation/userdetails/internal/view"
	"github.com/agentstation/userdetails/pkg/profile"
)

// ProfileVersionHeader carries the store version on profile responses.
const ProfileVersionHeader = "X-Profile-Version"

// ProfileView is the submitted record with the store version it was read at.
type ProfileView struct {
	Version uint64         `json:"version"`
	Record  profile.Record `json:"record"`
}

// HandleGetProfile handles GET /api/v1/profile. Data is null until the
// first submission completes.
func (h *Handlers) HandleGetProfile(w http.ResponseWriter, _ *http.Request) {
	st := h.app.Store()
	version := st.Version()
	w.Header().Set(ProfileVersionHeader, strconv.FormatUint(version, 10))

	record, ok := st.Current()
	if !ok {
		response.OK(w, nil)
		return
	}
	response.OK(w, ProfileView{Version: version, Record: record})
}

// HandleProfileText handles GET /api/v1/profile/text.
func (h *Handlers) HandleProfileText(w http.ResponseWriter, _ *http.Request) {
	record, ok := h.app.Store().Current()
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(view.Text(record, ok)))
}
