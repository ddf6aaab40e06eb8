package services

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"edu-network/internal/models"
	"edu-network/internal/permissions"
	"edu-network/internal/storage"
)

// PrivacyPatch carries the settings a user wants to change. Nil fields are left as they are.
type PrivacyPatch struct {
	WhoCanSendConnectRequest *models.VisibilityLevel `json:"whoCanSendConnectRequest,omitempty"`
	WhoCanSeeConnectionsList *models.VisibilityLevel `json:"whoCanSeeConnectionsList,omitempty"`
	WhoCanSeePosts           *models.VisibilityLevel `json:"whoCanSeePosts,omitempty"`
	WhoCanSeeEmail           *models.VisibilityLevel `json:"whoCanSeeEmail,omitempty"`
	WhoCanSeePhone           *models.VisibilityLevel `json:"whoCanSeePhone,omitempty"`
}

// VisibilityView is every privacy gate evaluated for one viewer/target pair.
type VisibilityView struct {
	IsOwner                  bool `json:"isOwner"`
	IsConnected              bool `json:"isConnected"`
	CanSendConnectionRequest bool `json:"canSendConnectionRequest"`
	CanViewConnectionsList   bool `json:"canViewConnectionsList"`
	CanViewPosts             bool `json:"canViewPosts"`
	CanViewEmail             bool `json:"canViewEmail"`
	CanViewPhone             bool `json:"canViewPhone"`
}

// PrivacyService resolves per-user visibility settings into yes/no answers for a viewer.
type PrivacyService interface {
	GetSettings(ctx context.Context, userID uint) (*models.PrivacySettings, error)
	UpdateSettings(ctx context.Context, actorID, userID uint, patch PrivacyPatch) (*models.PrivacySettings, error)

	CanViewConnectionsList(ctx context.Context, viewerID, targetID uint) (bool, error)
	CanViewEmail(ctx context.Context, viewerID, targetID uint) (bool, error)
	CanViewPhone(ctx context.Context, viewerID, targetID uint) (bool, error)
	CanViewPosts(ctx context.Context, viewerID, targetID uint) (bool, error)
	CanSendConnectionRequest(ctx context.Context, senderID, targetID uint) (bool, error)

	Visibility(ctx context.Context, viewerID, targetID uint) (*VisibilityView, error)
	// GetVisibleProfile returns the target user with the fields the viewer may not see blanked.
	GetVisibleProfile(ctx context.Context, viewerID, targetID uint) (*models.User, error)
}

type privacyService struct {
	userRepo    storage.UserRepository
	privacyRepo storage.PrivacyRepository
	connRepo    storage.ConnectionRepository
}

func NewPrivacyService(userRepo storage.UserRepository, privacyRepo storage.PrivacyRepository, connRepo storage.ConnectionRepository) PrivacyService {
	return &privacyService{userRepo: userRepo, privacyRepo: privacyRepo, connRepo: connRepo}
}

func (s *privacyService) GetSettings(ctx context.Context, userID uint) (*models.PrivacySettings, error) {
	settings, err := s.privacyRepo.GetOrCreate(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("load privacy settings for user %d: %w", userID, err)
	}
	return settings, nil
}

func (s *privacyService) UpdateSettings(ctx context.Context, actorID, userID uint, patch PrivacyPatch) (*models.PrivacySettings, error) {
	settings, err := s.GetSettings(ctx, userID)
	if err != nil {
		return nil, err
	}
	if err := permissions.RequireOwner(actorID, settings); err != nil {
		return nil, ErrNotOwner
	}

	fields := []struct {
		value *models.VisibilityLevel
		dst   *models.VisibilityLevel
	}{
		{patch.WhoCanSendConnectRequest, &settings.WhoCanSendConnectRequest},
		{patch.WhoCanSeeConnectionsList, &settings.WhoCanSeeConnectionsList},
		{patch.WhoCanSeePosts, &settings.WhoCanSeePosts},
		{patch.WhoCanSeeEmail, &settings.WhoCanSeeEmail},
		{patch.WhoCanSeePhone, &settings.WhoCanSeePhone},
	}
	for _, f := range fields {
		if f.value == nil {
			continue
		}
		if !f.value.Valid() {
			return nil, ErrInvalidVisibility
		}
		*f.dst = *f.value
	}

	if err := s.privacyRepo.Update(ctx, settings); err != nil {
		return nil, fmt.Errorf("update privacy settings for user %d: %w", userID, err)
	}
	zap.L().Info("privacy settings updated", zap.Uint("user", userID))
	return settings, nil
}

// allows resolves one tier. CONNECTIONS_ONLY needs a Connection between the two users.
func (s *privacyService) allows(ctx context.Context, level models.VisibilityLevel, viewerID, targetID uint) (bool, error) {
	switch level {
	case models.VisibilityPublic:
		return true, nil
	case models.VisibilityConnectionsOnly:
		connected, err := s.connRepo.Exists(ctx, viewerID, targetID)
		if err != nil {
			return false, fmt.Errorf("check connection %d-%d: %w", viewerID, targetID, err)
		}
		return connected, nil
	default:
		return false, nil
	}
}

func (s *privacyService) gate(ctx context.Context, viewerID, targetID uint, pick func(*models.PrivacySettings) models.VisibilityLevel) (bool, error) {
	if viewerID == targetID {
		return true, nil
	}
	settings, err := s.GetSettings(ctx, targetID)
	if err != nil {
		return false, err
	}
	return s.allows(ctx, pick(settings), viewerID, targetID)
}

func (s *privacyService) CanViewConnectionsList(ctx context.Context, viewerID, targetID uint) (bool, error) {
	return s.gate(ctx, viewerID, targetID, func(p *models.PrivacySettings) models.VisibilityLevel { return p.WhoCanSeeConnectionsList })
}

func (s *privacyService) CanViewEmail(ctx context.Context, viewerID, targetID uint) (bool, error) {
	return s.gate(ctx, viewerID, targetID, func(p *models.PrivacySettings) models.VisibilityLevel { return p.WhoCanSeeEmail })
}

func (s *privacyService) CanViewPhone(ctx context.Context, viewerID, targetID uint) (bool, error) {
	return s.gate(ctx, viewerID, targetID, func(p *models.PrivacySettings) models.VisibilityLevel { return p.WhoCanSeePhone })
}

func (s *privacyService) CanViewPosts(ctx context.Context, viewerID, targetID uint) (bool, error) {
	return s.gate(ctx, viewerID, targetID, func(p *models.PrivacySettings) models.VisibilityLevel { return p.WhoCanSeePosts })
}

// CanSendConnectionRequest treats CONNECTIONS_ONLY like PUBLIC; only NO_ONE blocks requests.
func (s *privacyService) CanSendConnectionRequest(ctx context.Context, senderID, targetID uint) (bool, error) {
	settings, err := s.GetSettings(ctx, targetID)
	if err != nil {
		return false, err
	}
	switch settings.WhoCanSendConnectRequest {
	case models.VisibilityPublic, models.VisibilityConnectionsOnly:
		return true, nil
	default:
		return false, nil
	}
}

func (s *privacyService) Visibility(ctx context.Context, viewerID, targetID uint) (*VisibilityView, error) {
	exists, err := s.userRepo.Exists(ctx, targetID)
	if err != nil {
		return nil, fmt.Errorf("check user %d: %w", targetID, err)
	}
	if !exists {
		return nil, ErrUserNotFound
	}

	if viewerID == targetID {
		return &VisibilityView{
			IsOwner:                true,
			CanViewConnectionsList: true,
			CanViewPosts:           true,
			CanViewEmail:           true,
			CanViewPhone:           true,
		}, nil
	}

	settings, err := s.GetSettings(ctx, targetID)
	if err != nil {
		return nil, err
	}
	connected, err := s.connRepo.Exists(ctx, viewerID, targetID)
	if err != nil {
		return nil, fmt.Errorf("check connection %d-%d: %w", viewerID, targetID, err)
	}
	// Connection state is known, so tiers resolve without further queries.
	resolve := func(level models.VisibilityLevel) bool {
		return level == models.VisibilityPublic || (level == models.VisibilityConnectionsOnly && connected)
	}

	return &VisibilityView{
		IsConnected:              connected,
		CanSendConnectionRequest: settings.WhoCanSendConnectRequest != models.VisibilityNoOne,
		CanViewConnectionsList:   resolve(settings.WhoCanSeeConnectionsList),
		CanViewPosts:             resolve(settings.WhoCanSeePosts),
		CanViewEmail:             resolve(settings.WhoCanSeeEmail),
		CanViewPhone:             resolve(settings.WhoCanSeePhone),
	}, nil
}

func (s *privacyService) GetVisibleProfile(ctx context.Context, viewerID, targetID uint) (*models.User, error) {
	user, err := s.userRepo.GetByID(ctx, targetID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("load user %d: %w", targetID, err)
	}

	view, err := s.Visibility(ctx, viewerID, targetID)
	if err != nil {
		return nil, err
	}
	if !view.CanViewEmail {
		user.Email = ""
	}
	if !view.CanViewPhone {
		user.Phone = ""
	}
	return user, nil
}
