package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"resumebuilder/internal/resume/model"
	"resumebuilder/internal/resume/service"
	"resumebuilder/pkg/logger"
	"resumebuilder/store"
)

type ResumeHandler struct {
	Service *service.ResumeService
}

func NewResumeHandler(service *service.ResumeService) *ResumeHandler {
	return &ResumeHandler{Service: service}
}

func (h *ResumeHandler) Login(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req model.LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	user := store.UserRef{ID: req.ID, Name: req.Name, Email: req.Email}
	token, st, err := h.Service.Login(r.Context(), user)
	if errors.Is(err, service.ErrNoUserID) {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	if err != nil {
		logger.Sugar.Errorf("Handler: Failed to log in: %v", err)
		http.Error(w, "Failed to log in", http.StatusInternalServerError)
		return
	}

	resp := model.LoginResponse{Token: token}
	if st.User != nil {
		resp.User = *st.User
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *ResumeHandler) Logout(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	st, err := h.Service.Logout(r.Context())
	if err != nil {
		writeStoreError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, st)
}

func (h *ResumeHandler) GetState(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}
	writeJSON(w, http.StatusOK, h.Service.Snapshot())
}

func (h *ResumeHandler) GetResumes(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}
	docs := h.Service.SearchResumes(r.URL.Query().Get("q"))
	writeJSON(w, http.StatusOK, model.Summarize(docs))
}

func (h *ResumeHandler) CreateResume(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req model.CreateResumeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	st, err := h.Service.CreateResume(r.Context(), req.Title)
	if errors.Is(err, service.ErrEmptyTitle) {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	if err != nil {
		writeStoreError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, st)
}

// Command applies one action from the wire vocabulary and answers with the
// resulting snapshot.
func (h *ResumeHandler) Command(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var action store.Action
	if err := json.NewDecoder(r.Body).Decode(&action); err != nil || action.Type == "" {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	st, err := h.Service.Dispatch(r.Context(), action)
	if err != nil {
		writeStoreError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, st)
}

func writeStoreError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, store.ErrNoCurrentDocument):
		status = http.StatusConflict
	case errors.Is(err, store.ErrInvalidReorder),
		errors.Is(err, store.ErrInvalidPayload),
		errors.Is(err, store.ErrDuplicateSection):
		status = http.StatusUnprocessableEntity
	case errors.Is(err, store.ErrNotFound):
		status = http.StatusNotFound
	default:
		logger.Sugar.Errorf("Handler: command failed: %v", err)
	}
	writeJSON(w, status, model.ErrorResponse{Code: store.Code(err), Message: err.Error()})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logger.Sugar.Errorf("Handler: failed to encode response: %v", err)
	}
}
