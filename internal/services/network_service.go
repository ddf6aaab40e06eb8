package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"edu-network/internal/events"
	"edu-network/internal/metrics"
	"edu-network/internal/models"
	"edu-network/internal/storage"
)

// RelationshipState is the single summary of how the actor relates to another user.
type RelationshipState string

const (
	RelationshipConnected       RelationshipState = "CONNECTED"
	RelationshipPendingSent     RelationshipState = "PENDING_SENT"
	RelationshipPendingReceived RelationshipState = "PENDING_RECEIVED"
	RelationshipFollowing       RelationshipState = "FOLLOWING"
	RelationshipNone            RelationshipState = "NONE"
)

// SendResult is what SendConnectionRequest produced. Connected is true when the recipient had
// already asked to connect and their request was accepted instead of creating a new one.
type SendResult struct {
	Request   *models.ConnectionRequest `json:"request"`
	Connected bool                      `json:"connected"`
}

type FollowResult struct {
	Following bool `json:"following"`
}

type RelationshipStatus struct {
	Status       RelationshipState `json:"status"`
	IsFollowing  bool              `json:"isFollowing"`
	IsFollowedBy bool              `json:"isFollowedBy"`
	// PendingRequestID is set only for PENDING_SENT and PENDING_RECEIVED.
	PendingRequestID *uint `json:"connectionRequestId"`
}

// NetworkService manages connection requests, connections and follows.
type NetworkService interface {
	SendConnectionRequest(ctx context.Context, senderID, recipientID uint, message string) (*SendResult, error)
	ActOnRequest(ctx context.Context, actorID, requestID uint, action models.RequestAction) (*models.ConnectionRequest, error)
	ToggleFollow(ctx context.Context, actorID, targetID uint) (*FollowResult, error)
	GetRelationshipStatus(ctx context.Context, actorID, targetID uint) (*RelationshipStatus, error)
	ListConnections(ctx context.Context, actorID uint) ([]models.ConnectionWithUser, error)
	RemoveConnection(ctx context.Context, actorID, targetID uint) error

	ListPendingReceived(ctx context.Context, actorID uint) ([]models.ConnectionRequestWithUsers, error)
	ListPendingSent(ctx context.Context, actorID uint) ([]models.ConnectionRequestWithUsers, error)
	ListUserConnections(ctx context.Context, viewerID, targetID uint) ([]models.ConnectionWithUser, error)
	ListFollowers(ctx context.Context, viewerID, targetID uint) ([]*models.UserBasicInfo, error)
	ListFollowing(ctx context.Context, viewerID, targetID uint) ([]*models.UserBasicInfo, error)
}

type networkService struct {
	db          *gorm.DB // transactions for the multi-row state changes
	userRepo    storage.UserRepository
	requestRepo storage.ConnectionRequestRepository
	connRepo    storage.ConnectionRepository
	followRepo  storage.FollowRepository
	privacy     PrivacyService
	publisher   events.Publisher
}

// NewNetworkService creates a new NetworkService instance.
func NewNetworkService(
	db *gorm.DB,
	userRepo storage.UserRepository,
	requestRepo storage.ConnectionRequestRepository,
	connRepo storage.ConnectionRepository,
	followRepo storage.FollowRepository,
	privacy PrivacyService,
	publisher events.Publisher,
) NetworkService {
	if publisher == nil {
		publisher = events.NopPublisher{}
	}
	return &networkService{
		db:          db,
		userRepo:    userRepo,
		requestRepo: requestRepo,
		connRepo:    connRepo,
		followRepo:  followRepo,
		privacy:     privacy,
		publisher:   publisher,
	}
}

// graphRepos are the repositories bound to one transaction.
type graphRepos struct {
	requests storage.ConnectionRequestRepository
	conns    storage.ConnectionRepository
	follows  storage.FollowRepository
}

func (s *networkService) inTx(ctx context.Context, fn func(r graphRepos) error) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(graphRepos{
			requests: storage.NewGormConnectionRequestRepository(tx),
			conns:    storage.NewGormConnectionRepository(tx),
			follows:  storage.NewGormFollowRepository(tx),
		})
	})
}

func (s *networkService) requireUser(ctx context.Context, userID uint) error {
	exists, err := s.userRepo.Exists(ctx, userID)
	if err != nil {
		return fmt.Errorf("check user %d: %w", userID, err)
	}
	if !exists {
		return ErrUserNotFound
	}
	return nil
}

// establishConnection creates the canonical Connection and both Follow edges, skipping any
// that already exist. It is the only path that creates a Connection and must run inside the
// transaction that accepted the request.
func establishConnection(ctx context.Context, conns storage.ConnectionRepository, follows storage.FollowRepository, userID1, userID2 uint) (bool, error) {
	_, created, err := conns.GetOrCreate(ctx, userID1, userID2)
	if err != nil {
		return false, fmt.Errorf("create connection %d-%d: %w", userID1, userID2, err)
	}
	if _, err := follows.GetOrCreate(ctx, userID1, userID2); err != nil {
		return false, fmt.Errorf("create follow %d->%d: %w", userID1, userID2, err)
	}
	if _, err := follows.GetOrCreate(ctx, userID2, userID1); err != nil {
		return false, fmt.Errorf("create follow %d->%d: %w", userID2, userID1, err)
	}
	return created, nil
}

// acceptPending moves a PENDING request to ACCEPTED and establishes the connection. The update
// is conditional on the status so two concurrent accepts cannot both succeed.
func acceptPending(ctx context.Context, r graphRepos, req *models.ConnectionRequest) error {
	ok, err := r.requests.TransitionStatus(ctx, req.ID, models.ConnectionRequestStatusAccepted, models.ConnectionRequestStatusPending)
	if err != nil {
		return fmt.Errorf("accept connection request %d: %w", req.ID, err)
	}
	if !ok {
		return ErrRequestNotPending
	}
	if _, err := establishConnection(ctx, r.conns, r.follows, req.SenderID, req.RecipientID); err != nil {
		return err
	}
	req.Status = models.ConnectionRequestStatusAccepted
	return nil
}

func connectionEstablishedEvent(req *models.ConnectionRequest) events.RelationshipEvent {
	return events.RelationshipEvent{
		Type:        events.ConnectionEstablished,
		ActorID:     req.RecipientID,
		TargetID:    req.SenderID,
		ReferenceID: req.ID,
		OccurredAt:  time.Now(),
	}
}

// SendConnectionRequest validates the pair and either creates a PENDING request or, when the
// recipient already asked to connect, accepts theirs.
func (s *networkService) SendConnectionRequest(ctx context.Context, senderID, recipientID uint, message string) (*SendResult, error) {
	result, err := s.sendConnectionRequest(ctx, senderID, recipientID, message)
	metrics.ConnectionRequests.WithLabelValues(sendOutcome(result, err)).Inc()
	return result, err
}

func (s *networkService) sendConnectionRequest(ctx context.Context, senderID, recipientID uint, message string) (*SendResult, error) {
	if err := s.requireUser(ctx, recipientID); err != nil {
		return nil, err
	}
	if recipientID == senderID {
		return nil, ErrSelfConnection
	}

	// Evaluated up front so the transaction below only touches its own repositories.
	canSend, err := s.privacy.CanSendConnectionRequest(ctx, senderID, recipientID)
	if err != nil {
		return nil, err
	}

	var result *SendResult
	txErr := s.inTx(ctx, func(r graphRepos) error {
		var err error
		result, err = sendWithinTx(ctx, r, senderID, recipientID, message, canSend)
		return err
	})
	if txErr != nil {
		return nil, txErr
	}

	if result.Connected {
		zap.L().Info("mutual connection request auto-accepted",
			zap.Uint("request", result.Request.ID), zap.Uint("sender", senderID), zap.Uint("recipient", recipientID))
		s.publisher.Publish(ctx, connectionEstablishedEvent(result.Request))
	} else {
		zap.L().Info("connection request sent",
			zap.Uint("request", result.Request.ID), zap.Uint("sender", senderID), zap.Uint("recipient", recipientID))
		s.publisher.Publish(ctx, events.RelationshipEvent{
			Type:        events.ConnectionRequestSent,
			ActorID:     senderID,
			TargetID:    recipientID,
			ReferenceID: result.Request.ID,
			OccurredAt:  time.Now(),
		})
	}
	return result, nil
}

// sendWithinTx is the transactional part of SendConnectionRequest. The PENDING-per-pair unique
// index backs the lookup: when a concurrent send for the same pair commits between the lookup
// and the insert, the insert fails with gorm.ErrDuplicatedKey and the committed row is resolved
// the same way a row found by the lookup would be.
func sendWithinTx(ctx context.Context, r graphRepos, senderID, recipientID uint, message string, canSend bool) (*SendResult, error) {
	connected, err := r.conns.Exists(ctx, senderID, recipientID)
	if err != nil {
		return nil, fmt.Errorf("check connection %d-%d: %w", senderID, recipientID, err)
	}
	if connected {
		return nil, ErrAlreadyConnected
	}

	existing, err := r.requests.FindLiveBetween(ctx, senderID, recipientID)
	if err != nil {
		return nil, fmt.Errorf("find existing request %d-%d: %w", senderID, recipientID, err)
	}
	// An ACCEPTED request with no Connection belongs to a connection that was removed since.
	if existing != nil && existing.Status == models.ConnectionRequestStatusPending {
		return resolvePending(ctx, r, existing, senderID)
	}

	if !canSend {
		return nil, ErrRequestsNotAccepted
	}
	req := &models.ConnectionRequest{
		SenderID:    senderID,
		RecipientID: recipientID,
		Status:      models.ConnectionRequestStatusPending,
		Message:     message,
	}
	err = r.requests.Create(ctx, req)
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		pending, findErr := r.requests.FindPendingBetween(ctx, senderID, recipientID)
		if findErr != nil {
			return nil, fmt.Errorf("find conflicting request %d-%d: %w", senderID, recipientID, findErr)
		}
		if pending == nil {
			// the conflicting row already moved on; the caller may simply retry
			return nil, ErrDuplicateRequest
		}
		zap.L().Info("concurrent connection request for the same pair",
			zap.Uint("request", pending.ID), zap.Uint("sender", senderID), zap.Uint("recipient", recipientID))
		return resolvePending(ctx, r, pending, senderID)
	}
	if err != nil {
		return nil, fmt.Errorf("create connection request %d->%d: %w", senderID, recipientID, err)
	}
	return &SendResult{Request: req}, nil
}

// resolvePending handles a PENDING request already present for the pair: the sender's own is a
// duplicate, the other side's is accepted.
func resolvePending(ctx context.Context, r graphRepos, pending *models.ConnectionRequest, senderID uint) (*SendResult, error) {
	if pending.SenderID == senderID {
		return nil, ErrDuplicateRequest
	}
	if err := acceptPending(ctx, r, pending); err != nil {
		return nil, err
	}
	return &SendResult{Request: pending, Connected: true}, nil
}

func sendOutcome(result *SendResult, err error) string {
	switch {
	case err == nil && result.Connected:
		return "auto_accepted"
	case err == nil:
		return "created"
	case errors.Is(err, ErrDuplicateRequest):
		return "duplicate"
	case errors.Is(err, ErrAlreadyConnected):
		return "already_connected"
	case errors.Is(err, ErrForbidden):
		return "forbidden"
	case errors.Is(err, ErrNotFound), errors.Is(err, ErrInvalidOperation):
		return "invalid"
	default:
		return "error"
	}
}

// ActOnRequest applies ACCEPT, REJECT or WITHDRAW to a request.
func (s *networkService) ActOnRequest(ctx context.Context, actorID, requestID uint, action models.RequestAction) (*models.ConnectionRequest, error) {
	req, err := s.actOnRequest(ctx, actorID, requestID, action)
	result := "ok"
	if err != nil {
		result = "rejected"
		if !isDomainError(err) {
			result = "error"
		}
	}
	metrics.RequestActions.WithLabelValues(string(action), result).Inc()
	return req, err
}

func (s *networkService) actOnRequest(ctx context.Context, actorID, requestID uint, action models.RequestAction) (*models.ConnectionRequest, error) {
	switch action {
	case models.RequestActionAccept, models.RequestActionReject, models.RequestActionWithdraw:
	default:
		return nil, ErrInvalidAction
	}

	var updated *models.ConnectionRequest
	txErr := s.inTx(ctx, func(r graphRepos) error {
		req, err := r.requests.GetByID(ctx, requestID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrRequestNotFound
			}
			return fmt.Errorf("load connection request %d: %w", requestID, err)
		}

		switch action {
		case models.RequestActionWithdraw:
			// The sender may withdraw whatever the current status is.
			if req.SenderID != actorID {
				return ErrNotRequestSender
			}
			if _, err := r.requests.TransitionStatus(ctx, req.ID, models.ConnectionRequestStatusWithdrawn); err != nil {
				return fmt.Errorf("withdraw connection request %d: %w", req.ID, err)
			}
		case models.RequestActionAccept, models.RequestActionReject:
			if req.RecipientID != actorID {
				return ErrNotRequestRecipient
			}
			if req.Status != models.ConnectionRequestStatusPending {
				return ErrRequestNotPending
			}
			if action == models.RequestActionAccept {
				if err := acceptPending(ctx, r, req); err != nil {
					return err
				}
			} else {
				ok, err := r.requests.TransitionStatus(ctx, req.ID, models.ConnectionRequestStatusRejected, models.ConnectionRequestStatusPending)
				if err != nil {
					return fmt.Errorf("reject connection request %d: %w", req.ID, err)
				}
				if !ok {
					return ErrRequestNotPending
				}
			}
		}

		updated, err = r.requests.GetByID(ctx, req.ID)
		if err != nil {
			return fmt.Errorf("reload connection request %d: %w", req.ID, err)
		}
		return nil
	})
	if txErr != nil {
		return nil, txErr
	}

	zap.L().Info("connection request updated",
		zap.Uint("request", updated.ID), zap.Uint("actor", actorID),
		zap.String("action", string(action)), zap.String("status", string(updated.Status)))
	if action == models.RequestActionAccept {
		s.publisher.Publish(ctx, connectionEstablishedEvent(updated))
	}
	return updated, nil
}

func isDomainError(err error) bool {
	var de *domainError
	return errors.As(err, &de)
}

// ToggleFollow follows targetID, or unfollows if the actor already follows them.
func (s *networkService) ToggleFollow(ctx context.Context, actorID, targetID uint) (*FollowResult, error) {
	if err := s.requireUser(ctx, targetID); err != nil {
		return nil, err
	}
	if actorID == targetID {
		return nil, ErrSelfFollow
	}

	removed, err := s.followRepo.Delete(ctx, actorID, targetID)
	if err != nil {
		return nil, fmt.Errorf("unfollow %d->%d: %w", actorID, targetID, err)
	}
	if removed {
		metrics.FollowToggles.WithLabelValues("unfollowed").Inc()
		return &FollowResult{Following: false}, nil
	}

	created, err := s.followRepo.GetOrCreate(ctx, actorID, targetID)
	if err != nil {
		return nil, fmt.Errorf("follow %d->%d: %w", actorID, targetID, err)
	}
	metrics.FollowToggles.WithLabelValues("followed").Inc()
	if created {
		s.publisher.Publish(ctx, events.RelationshipEvent{
			Type:       events.FollowCreated,
			ActorID:    actorID,
			TargetID:   targetID,
			OccurredAt: time.Now(),
		})
	}
	return &FollowResult{Following: true}, nil
}

// GetRelationshipStatus reports CONNECTED > PENDING_SENT > PENDING_RECEIVED > FOLLOWING > NONE.
func (s *networkService) GetRelationshipStatus(ctx context.Context, actorID, targetID uint) (*RelationshipStatus, error) {
	if err := s.requireUser(ctx, targetID); err != nil {
		return nil, err
	}

	connected, err := s.connRepo.Exists(ctx, actorID, targetID)
	if err != nil {
		return nil, fmt.Errorf("check connection %d-%d: %w", actorID, targetID, err)
	}
	isFollowing, err := s.followRepo.Exists(ctx, actorID, targetID)
	if err != nil {
		return nil, fmt.Errorf("check follow %d->%d: %w", actorID, targetID, err)
	}
	isFollowedBy, err := s.followRepo.Exists(ctx, targetID, actorID)
	if err != nil {
		return nil, fmt.Errorf("check follow %d->%d: %w", targetID, actorID, err)
	}

	status := &RelationshipStatus{IsFollowing: isFollowing, IsFollowedBy: isFollowedBy}
	if connected {
		status.Status = RelationshipConnected
		return status, nil
	}

	pending, err := s.requestRepo.FindPendingBetween(ctx, actorID, targetID)
	if err != nil {
		return nil, fmt.Errorf("find pending request %d-%d: %w", actorID, targetID, err)
	}
	switch {
	case pending != nil && pending.SenderID == actorID:
		status.Status = RelationshipPendingSent
		status.PendingRequestID = &pending.ID
	case pending != nil:
		status.Status = RelationshipPendingReceived
		status.PendingRequestID = &pending.ID
	case isFollowing:
		status.Status = RelationshipFollowing
	default:
		status.Status = RelationshipNone
	}
	return status, nil
}

func (s *networkService) ListConnections(ctx context.Context, actorID uint) ([]models.ConnectionWithUser, error) {
	conns, err := s.connRepo.ListForUser(ctx, actorID)
	if err != nil {
		return nil, fmt.Errorf("list connections of user %d: %w", actorID, err)
	}

	otherIDs := make([]uint, 0, len(conns))
	for _, c := range conns {
		otherIDs = append(otherIDs, c.OtherUser(actorID))
	}
	users, err := s.basicInfoByID(ctx, otherIDs)
	if err != nil {
		return nil, err
	}

	result := make([]models.ConnectionWithUser, 0, len(conns))
	for _, c := range conns {
		result = append(result, models.ConnectionWithUser{Connection: c, User: users[c.OtherUser(actorID)]})
	}
	return result, nil
}

// RemoveConnection deletes the Connection only. Follow edges created alongside it are kept.
func (s *networkService) RemoveConnection(ctx context.Context, actorID, targetID uint) error {
	if err := s.requireUser(ctx, targetID); err != nil {
		return err
	}
	removed, err := s.connRepo.Delete(ctx, actorID, targetID)
	if err != nil {
		return fmt.Errorf("remove connection %d-%d: %w", actorID, targetID, err)
	}
	if !removed {
		return ErrNotConnected
	}
	zap.L().Info("connection removed", zap.Uint("actor", actorID), zap.Uint("target", targetID))
	return nil
}

func (s *networkService) ListPendingReceived(ctx context.Context, actorID uint) ([]models.ConnectionRequestWithUsers, error) {
	requests, err := s.requestRepo.ListPendingForRecipient(ctx, actorID)
	if err != nil {
		return nil, fmt.Errorf("list pending requests for user %d: %w", actorID, err)
	}
	return s.withUsers(ctx, requests)
}

func (s *networkService) ListPendingSent(ctx context.Context, actorID uint) ([]models.ConnectionRequestWithUsers, error) {
	requests, err := s.requestRepo.ListPendingFromSender(ctx, actorID)
	if err != nil {
		return nil, fmt.Errorf("list sent requests for user %d: %w", actorID, err)
	}
	return s.withUsers(ctx, requests)
}

func (s *networkService) ListUserConnections(ctx context.Context, viewerID, targetID uint) ([]models.ConnectionWithUser, error) {
	if err := s.requireConnectionsVisible(ctx, viewerID, targetID); err != nil {
		return nil, err
	}
	return s.ListConnections(ctx, targetID)
}

func (s *networkService) ListFollowers(ctx context.Context, viewerID, targetID uint) ([]*models.UserBasicInfo, error) {
	if err := s.requireConnectionsVisible(ctx, viewerID, targetID); err != nil {
		return nil, err
	}
	ids, err := s.followRepo.GetFollowerIDs(ctx, targetID)
	if err != nil {
		return nil, fmt.Errorf("list followers of user %d: %w", targetID, err)
	}
	return s.userRepo.GetMultipleBasicInfoByIDs(ctx, ids)
}

func (s *networkService) ListFollowing(ctx context.Context, viewerID, targetID uint) ([]*models.UserBasicInfo, error) {
	if err := s.requireConnectionsVisible(ctx, viewerID, targetID); err != nil {
		return nil, err
	}
	ids, err := s.followRepo.GetFollowingIDs(ctx, targetID)
	if err != nil {
		return nil, fmt.Errorf("list following of user %d: %w", targetID, err)
	}
	return s.userRepo.GetMultipleBasicInfoByIDs(ctx, ids)
}

func (s *networkService) requireConnectionsVisible(ctx context.Context, viewerID, targetID uint) error {
	if err := s.requireUser(ctx, targetID); err != nil {
		return err
	}
	ok, err := s.privacy.CanViewConnectionsList(ctx, viewerID, targetID)
	if err != nil {
		return err
	}
	if !ok {
		return ErrConnectionsHidden
	}
	return nil
}

func (s *networkService) basicInfoByID(ctx context.Context, ids []uint) (map[uint]*models.UserBasicInfo, error) {
	infos, err := s.userRepo.GetMultipleBasicInfoByIDs(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("load user info: %w", err)
	}
	byID := make(map[uint]*models.UserBasicInfo, len(infos))
	for _, info := range infos {
		byID[info.ID] = info
	}
	return byID, nil
}

func (s *networkService) withUsers(ctx context.Context, requests []models.ConnectionRequest) ([]models.ConnectionRequestWithUsers, error) {
	ids := make([]uint, 0, len(requests)*2)
	for _, r := range requests {
		ids = append(ids, r.SenderID, r.RecipientID)
	}
	users, err := s.basicInfoByID(ctx, ids)
	if err != nil {
		return nil, err
	}

	result := make([]models.ConnectionRequestWithUsers, 0, len(requests))
	for _, r := range requests {
		result = append(result, models.ConnectionRequestWithUsers{
			ConnectionRequest: r,
			Sender:            users[r.SenderID],
			Recipient:         users[r.RecipientID],
		})
	}
	return result, nil
}
