package apiserver

import (
	"net/http"

	"edu-network/internal/services"
)

// JobHandler serves job listings, educator profiles and match scores.
type JobHandler struct {
	jobService services.JobService
}

func NewJobHandler(js services.JobService) *JobHandler {
	return &JobHandler{jobService: js}
}

func (h *JobHandler) CreateJobHandler(w http.ResponseWriter, r *http.Request) {
	ownerID, ok := currentUserID(w, r)
	if !ok {
		return
	}
	var input services.JobInput
	if !decodeJSON(w, r, &input) {
		return
	}
	job, err := h.jobService.CreateJob(r.Context(), ownerID, input)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSONResponse(w, http.StatusCreated, job)
}

func (h *JobHandler) ListJobsHandler(w http.ResponseWriter, r *http.Request) {
	jobs, err := h.jobService.ListActiveJobs(r.Context(), queryInt(r, "limit", 0))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSONResponse(w, http.StatusOK, jobs)
}

func (h *JobHandler) GetJobHandler(w http.ResponseWriter, r *http.Request) {
	jobID, ok := pathUint(w, r, "jobID")
	if !ok {
		return
	}
	job, err := h.jobService.GetJob(r.Context(), jobID)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSONResponse(w, http.StatusOK, job)
}

func (h *JobHandler) UpdateJobHandler(w http.ResponseWriter, r *http.Request) {
	actorID, ok := currentUserID(w, r)
	if !ok {
		return
	}
	jobID, ok := pathUint(w, r, "jobID")
	if !ok {
		return
	}
	var input services.JobInput
	if !decodeJSON(w, r, &input) {
		return
	}
	job, err := h.jobService.UpdateJob(r.Context(), actorID, jobID, input)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSONResponse(w, http.StatusOK, job)
}

func (h *JobHandler) DeleteJobHandler(w http.ResponseWriter, r *http.Request) {
	actorID, ok := currentUserID(w, r)
	if !ok {
		return
	}
	jobID, ok := pathUint(w, r, "jobID")
	if !ok {
		return
	}
	if err := h.jobService.DeleteJob(r.Context(), actorID, jobID); err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSONResponse(w, http.StatusNoContent, nil)
}

// JobMatchHandler handles GET /api/v1/jobs/{jobID}/match
func (h *JobHandler) JobMatchHandler(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUserID(w, r)
	if !ok {
		return
	}
	jobID, ok := pathUint(w, r, "jobID")
	if !ok {
		return
	}
	match, err := h.jobService.GetJobMatch(r.Context(), userID, jobID)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSONResponse(w, http.StatusOK, match)
}

// RecommendedJobsHandler handles GET /api/v1/jobs/recommended?limit=N
func (h *JobHandler) RecommendedJobsHandler(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUserID(w, r)
	if !ok {
		return
	}
	matches, err := h.jobService.RecommendJobs(r.Context(), userID, queryInt(r, "limit", 0))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSONResponse(w, http.StatusOK, matches)
}

// GetEducatorProfileHandler handles GET /api/v1/profile/educator
func (h *JobHandler) GetEducatorProfileHandler(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUserID(w, r)
	if !ok {
		return
	}
	profile, err := h.jobService.GetEducatorProfile(r.Context(), userID)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	if profile == nil {
		writeJSONError(w, "educator profile not found", http.StatusNotFound)
		return
	}
	writeJSONResponse(w, http.StatusOK, profile)
}

// UpsertEducatorProfileHandler handles PUT /api/v1/profile/educator
func (h *JobHandler) UpsertEducatorProfileHandler(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUserID(w, r)
	if !ok {
		return
	}
	var input services.EducatorProfileInput
	if !decodeJSON(w, r, &input) {
		return
	}
	profile, err := h.jobService.UpsertEducatorProfile(r.Context(), userID, input)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSONResponse(w, http.StatusOK, profile)
}
