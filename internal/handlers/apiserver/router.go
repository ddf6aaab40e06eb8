package apiserver

import (
	"net/http"

	"github.com/gorilla/mux"

	"edu-network/internal/middleware"
)

// Handlers groups every HTTP handler the API server exposes.
type Handlers struct {
	Auth          *AuthHandler
	Users         *UserHandler
	Network       *NetworkHandler
	Jobs          *JobHandler
	Notifications *NotificationHandler
}

// NewRouter 设置 HTTP 路由。/auth/register 和 /auth/login 是公开的，/api/v1 下的路由都需要认证。
func NewRouter(h Handlers, authMW mux.MiddlewareFunc) *mux.Router {
	r := mux.NewRouter()
	r.Use(middleware.AccessLog)

	// 认证路由
	authRouter := r.PathPrefix("/auth").Subrouter()
	authRouter.HandleFunc("/register", h.Auth.Register).Methods(http.MethodPost)
	authRouter.HandleFunc("/login", h.Auth.Login).Methods(http.MethodPost)

	apiRouter := r.PathPrefix("/api/v1").Subrouter()
	apiRouter.Use(authMW)

	apiRouter.HandleFunc("/auth/logout", h.Auth.LogoutHandler).Methods(http.MethodPost)

	// 用户与隐私
	apiRouter.HandleFunc("/users/me", h.Users.GetMyProfileHandler).Methods(http.MethodGet)
	apiRouter.HandleFunc("/users/me", h.Users.UpdateMyProfileHandler).Methods(http.MethodPut)
	apiRouter.HandleFunc("/users/search", h.Users.SearchUsersHandler).Methods(http.MethodGet)
	apiRouter.HandleFunc("/users/{userID:[0-9]+}", h.Users.GetUserProfileHandler).Methods(http.MethodGet)
	apiRouter.HandleFunc("/users/{userID:[0-9]+}/visibility", h.Users.VisibilityHandler).Methods(http.MethodGet)
	apiRouter.HandleFunc("/privacy", h.Users.GetPrivacyHandler).Methods(http.MethodGet)
	apiRouter.HandleFunc("/privacy", h.Users.UpdatePrivacyHandler).Methods(http.MethodPut)

	// 人脉网络
	network := apiRouter.PathPrefix("/network").Subrouter()
	network.HandleFunc("/connect", h.Network.SendConnectionRequestHandler).Methods(http.MethodPost)
	network.HandleFunc("/requests", h.Network.ListPendingReceivedHandler).Methods(http.MethodGet)
	network.HandleFunc("/requests/sent", h.Network.ListPendingSentHandler).Methods(http.MethodGet)
	network.HandleFunc("/requests/{requestID:[0-9]+}/action", h.Network.RequestActionHandler).Methods(http.MethodPost)
	network.HandleFunc("/follow/{userID:[0-9]+}", h.Network.ToggleFollowHandler).Methods(http.MethodPost)
	network.HandleFunc("/status/{userID:[0-9]+}", h.Network.RelationshipStatusHandler).Methods(http.MethodGet)
	network.HandleFunc("/connections", h.Network.ListConnectionsHandler).Methods(http.MethodGet)
	network.HandleFunc("/connections/{userID:[0-9]+}", h.Network.RemoveConnectionHandler).Methods(http.MethodDelete)
	network.HandleFunc("/users/{userID:[0-9]+}/connections", h.Network.UserConnectionsHandler).Methods(http.MethodGet)
	network.HandleFunc("/users/{userID:[0-9]+}/followers", h.Network.FollowersHandler).Methods(http.MethodGet)
	network.HandleFunc("/users/{userID:[0-9]+}/following", h.Network.FollowingHandler).Methods(http.MethodGet)

	// 职位与匹配
	apiRouter.HandleFunc("/jobs", h.Jobs.CreateJobHandler).Methods(http.MethodPost)
	apiRouter.HandleFunc("/jobs", h.Jobs.ListJobsHandler).Methods(http.MethodGet)
	apiRouter.HandleFunc("/jobs/recommended", h.Jobs.RecommendedJobsHandler).Methods(http.MethodGet)
	apiRouter.HandleFunc("/jobs/{jobID:[0-9]+}", h.Jobs.GetJobHandler).Methods(http.MethodGet)
	apiRouter.HandleFunc("/jobs/{jobID:[0-9]+}", h.Jobs.UpdateJobHandler).Methods(http.MethodPut)
	apiRouter.HandleFunc("/jobs/{jobID:[0-9]+}", h.Jobs.DeleteJobHandler).Methods(http.MethodDelete)
	apiRouter.HandleFunc("/jobs/{jobID:[0-9]+}/match", h.Jobs.JobMatchHandler).Methods(http.MethodGet)
	apiRouter.HandleFunc("/profile/educator", h.Jobs.GetEducatorProfileHandler).Methods(http.MethodGet)
	apiRouter.HandleFunc("/profile/educator", h.Jobs.UpsertEducatorProfileHandler).Methods(http.MethodPut)

	// 通知
	apiRouter.HandleFunc("/notifications", h.Notifications.ListNotificationsHandler).Methods(http.MethodGet)
	apiRouter.HandleFunc("/notifications/{notificationID:[0-9]+}/read", h.Notifications.MarkReadHandler).Methods(http.MethodPost)

	return r
}
