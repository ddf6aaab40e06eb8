package apiserver

import (
	"net/http"
	"strings"

	"edu-network/internal/models"
	"edu-network/internal/services"
)

// NetworkHandler handles HTTP requests for connection requests, connections and follows.
type NetworkHandler struct {
	networkService services.NetworkService
}

// NewNetworkHandler creates a new NetworkHandler.
func NewNetworkHandler(ns services.NetworkService) *NetworkHandler {
	return &NetworkHandler{networkService: ns}
}

// SendConnectionRequestPayload defines the expected JSON body for sending a connection request.
type SendConnectionRequestPayload struct {
	RecipientID uint   `json:"recipientId" validate:"required"`
	Message     string `json:"message" validate:"max=500"`
}

// RequestActionPayload is the body of POST /network/requests/{requestID}/action.
type RequestActionPayload struct {
	Action string `json:"action" validate:"required"`
}

// SendConnectionRequestHandler handles POST /api/v1/network/connect
func (h *NetworkHandler) SendConnectionRequestHandler(w http.ResponseWriter, r *http.Request) {
	senderID, ok := currentUserID(w, r)
	if !ok {
		return
	}
	var payload SendConnectionRequestPayload
	if !decodeJSON(w, r, &payload) {
		return
	}

	result, err := h.networkService.SendConnectionRequest(r.Context(), senderID, payload.RecipientID, payload.Message)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	if result.Connected {
		writeJSONResponse(w, http.StatusOK, result)
		return
	}
	writeJSONResponse(w, http.StatusCreated, result)
}

// RequestActionHandler handles POST /api/v1/network/requests/{requestID}/action
func (h *NetworkHandler) RequestActionHandler(w http.ResponseWriter, r *http.Request) {
	actorID, ok := currentUserID(w, r)
	if !ok {
		return
	}
	requestID, ok := pathUint(w, r, "requestID")
	if !ok {
		return
	}
	var payload RequestActionPayload
	if !decodeJSON(w, r, &payload) {
		return
	}

	action := models.RequestAction(strings.ToUpper(strings.TrimSpace(payload.Action)))
	req, err := h.networkService.ActOnRequest(r.Context(), actorID, requestID, action)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSONResponse(w, http.StatusOK, req)
}

// ListPendingReceivedHandler handles GET /api/v1/network/requests
func (h *NetworkHandler) ListPendingReceivedHandler(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUserID(w, r)
	if !ok {
		return
	}
	requests, err := h.networkService.ListPendingReceived(r.Context(), userID)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSONResponse(w, http.StatusOK, requests)
}

// ListPendingSentHandler handles GET /api/v1/network/requests/sent
func (h *NetworkHandler) ListPendingSentHandler(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUserID(w, r)
	if !ok {
		return
	}
	requests, err := h.networkService.ListPendingSent(r.Context(), userID)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSONResponse(w, http.StatusOK, requests)
}

// ToggleFollowHandler handles POST /api/v1/network/follow/{userID}
func (h *NetworkHandler) ToggleFollowHandler(w http.ResponseWriter, r *http.Request) {
	actorID, ok := currentUserID(w, r)
	if !ok {
		return
	}
	targetID, ok := pathUint(w, r, "userID")
	if !ok {
		return
	}
	result, err := h.networkService.ToggleFollow(r.Context(), actorID, targetID)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSONResponse(w, http.StatusOK, result)
}

// RelationshipStatusHandler handles GET /api/v1/network/status/{userID}
func (h *NetworkHandler) RelationshipStatusHandler(w http.ResponseWriter, r *http.Request) {
	actorID, ok := currentUserID(w, r)
	if !ok {
		return
	}
	targetID, ok := pathUint(w, r, "userID")
	if !ok {
		return
	}
	status, err := h.networkService.GetRelationshipStatus(r.Context(), actorID, targetID)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSONResponse(w, http.StatusOK, status)
}

// ListConnectionsHandler handles GET /api/v1/network/connections
func (h *NetworkHandler) ListConnectionsHandler(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUserID(w, r)
	if !ok {
		return
	}
	conns, err := h.networkService.ListConnections(r.Context(), userID)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSONResponse(w, http.StatusOK, conns)
}

// RemoveConnectionHandler handles DELETE /api/v1/network/connections/{userID}
func (h *NetworkHandler) RemoveConnectionHandler(w http.ResponseWriter, r *http.Request) {
	actorID, ok := currentUserID(w, r)
	if !ok {
		return
	}
	targetID, ok := pathUint(w, r, "userID")
	if !ok {
		return
	}
	if err := h.networkService.RemoveConnection(r.Context(), actorID, targetID); err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSONResponse(w, http.StatusNoContent, nil)
}

// UserConnectionsHandler handles GET /api/v1/network/users/{userID}/connections
func (h *NetworkHandler) UserConnectionsHandler(w http.ResponseWriter, r *http.Request) {
	viewerID, ok := currentUserID(w, r)
	if !ok {
		return
	}
	targetID, ok := pathUint(w, r, "userID")
	if !ok {
		return
	}
	conns, err := h.networkService.ListUserConnections(r.Context(), viewerID, targetID)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSONResponse(w, http.StatusOK, conns)
}

// FollowersHandler handles GET /api/v1/network/users/{userID}/followers
func (h *NetworkHandler) FollowersHandler(w http.ResponseWriter, r *http.Request) {
	viewerID, ok := currentUserID(w, r)
	if !ok {
		return
	}
	targetID, ok := pathUint(w, r, "userID")
	if !ok {
		return
	}
	users, err := h.networkService.ListFollowers(r.Context(), viewerID, targetID)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSONResponse(w, http.StatusOK, users)
}

// FollowingHandler handles GET /api/v1/network/users/{userID}/following
func (h *NetworkHandler) FollowingHandler(w http.ResponseWriter, r *http.Request) {
	viewerID, ok := currentUserID(w, r)
	if !ok {
		return
	}
	targetID, ok := pathUint(w, r, "userID")
	if !ok {
		return
	}
	users, err := h.networkService.ListFollowing(r.Context(), viewerID, targetID)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSONResponse(w, http.StatusOK, users)
}
