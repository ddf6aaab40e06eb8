package models

// VisibilityLevel is the privacy tier gating one profile attribute or list.
type VisibilityLevel string

const (
	VisibilityPublic          VisibilityLevel = "PUBLIC"
	VisibilityConnectionsOnly VisibilityLevel = "CONNECTIONS_ONLY"
	VisibilityNoOne           VisibilityLevel = "NO_ONE"
)

// Valid reports whether v is one of the known tiers.
func (v VisibilityLevel) Valid() bool {
	switch v {
	case VisibilityPublic, VisibilityConnectionsOnly, VisibilityNoOne:
		return true
	}
	return false
}

// PrivacySettings holds one user's visibility choices. A row is created lazily on first read.
type PrivacySettings struct {
	BaseModel
	UserID                   uint            `gorm:"not null;uniqueIndex" json:"userId"`
	WhoCanSendConnectRequest VisibilityLevel `gorm:"type:varchar(20);not null;default:'PUBLIC'" json:"whoCanSendConnectRequest"`
	WhoCanSeeConnectionsList VisibilityLevel `gorm:"type:varchar(20);not null;default:'CONNECTIONS_ONLY'" json:"whoCanSeeConnectionsList"`
	WhoCanSeePosts           VisibilityLevel `gorm:"type:varchar(20);not null;default:'PUBLIC'" json:"whoCanSeePosts"`
	WhoCanSeeEmail           VisibilityLevel `gorm:"type:varchar(20);not null;default:'CONNECTIONS_ONLY'" json:"whoCanSeeEmail"`
	WhoCanSeePhone           VisibilityLevel `gorm:"type:varchar(20);not null;default:'CONNECTIONS_ONLY'" json:"whoCanSeePhone"`
}

// DefaultPrivacySettings returns the settings a user gets before changing anything.
func DefaultPrivacySettings(userID uint) *PrivacySettings {
	return &PrivacySettings{
		UserID:                   userID,
		WhoCanSendConnectRequest: VisibilityPublic,
		WhoCanSeeConnectionsList: VisibilityConnectionsOnly,
		WhoCanSeePosts:           VisibilityPublic,
		WhoCanSeeEmail:           VisibilityConnectionsOnly,
		WhoCanSeePhone:           VisibilityConnectionsOnly,
	}
}

// OwnerID implements permissions.Owned.
func (p *PrivacySettings) OwnerID() uint {
	return p.UserID
}

// TableName 指定 PrivacySettings 模型的表名。
func (PrivacySettings) TableName() string {
	return "user_privacy_settings"
}
