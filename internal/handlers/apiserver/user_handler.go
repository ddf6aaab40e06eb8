package apiserver

import (
	"net/http"
	"strings"

	"edu-network/internal/services"
)

// UserHandler 封装了用户资料和隐私设置相关的 HTTP 处理器方法。
type UserHandler struct {
	userService    services.UserService
	privacyService services.PrivacyService
}

// NewUserHandler 创建一个新的 UserHandler 实例。
func NewUserHandler(userService services.UserService, privacyService services.PrivacyService) *UserHandler {
	return &UserHandler{userService: userService, privacyService: privacyService}
}

// GetMyProfileHandler 处理获取当前登录用户信息的请求。
func (h *UserHandler) GetMyProfileHandler(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUserID(w, r)
	if !ok {
		return
	}
	user, err := h.userService.GetMyProfile(r.Context(), userID)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSONResponse(w, http.StatusOK, user)
}

// UpdateMyProfileHandler 处理更新当前登录用户信息的请求。
func (h *UserHandler) UpdateMyProfileHandler(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUserID(w, r)
	if !ok {
		return
	}
	var patch services.ProfilePatch
	if !decodeJSON(w, r, &patch) {
		return
	}
	user, err := h.userService.UpdateMyProfile(r.Context(), userID, patch)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSONResponse(w, http.StatusOK, user)
}

// GetUserProfileHandler 返回指定用户的资料，按隐私设置隐藏邮箱和电话。
func (h *UserHandler) GetUserProfileHandler(w http.ResponseWriter, r *http.Request) {
	viewerID, ok := currentUserID(w, r)
	if !ok {
		return
	}
	targetID, ok := pathUint(w, r, "userID")
	if !ok {
		return
	}
	user, err := h.privacyService.GetVisibleProfile(r.Context(), viewerID, targetID)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSONResponse(w, http.StatusOK, user)
}

// VisibilityHandler handles GET /api/v1/users/{userID}/visibility
func (h *UserHandler) VisibilityHandler(w http.ResponseWriter, r *http.Request) {
	viewerID, ok := currentUserID(w, r)
	if !ok {
		return
	}
	targetID, ok := pathUint(w, r, "userID")
	if !ok {
		return
	}
	view, err := h.privacyService.Visibility(r.Context(), viewerID, targetID)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSONResponse(w, http.StatusOK, view)
}

// SearchUsersHandler 处理搜索用户的请求。
func (h *UserHandler) SearchUsersHandler(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUserID(w, r)
	if !ok {
		return
	}

	query := strings.TrimSpace(r.URL.Query().Get("query"))
	if len(query) < 2 {
		writeJSONError(w, "search query must be at least 2 characters", http.StatusBadRequest)
		return
	}

	users, err := h.userService.SearchUsers(r.Context(), query, userID)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSONResponse(w, http.StatusOK, users)
}

// GetPrivacyHandler handles GET /api/v1/privacy
func (h *UserHandler) GetPrivacyHandler(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUserID(w, r)
	if !ok {
		return
	}
	settings, err := h.privacyService.GetSettings(r.Context(), userID)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSONResponse(w, http.StatusOK, settings)
}

// UpdatePrivacyHandler handles PUT /api/v1/privacy
func (h *UserHandler) UpdatePrivacyHandler(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUserID(w, r)
	if !ok {
		return
	}
	var patch services.PrivacyPatch
	if !decodeJSON(w, r, &patch) {
		return
	}
	settings, err := h.privacyService.UpdateSettings(r.Context(), userID, userID, patch)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSONResponse(w, http.StatusOK, settings)
}
