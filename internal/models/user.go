package models

// User 代表系统中的用户。
type User struct {
	BaseModel
	Username     string `gorm:"type:varchar(100);uniqueIndex;not null" json:"username"`
	PasswordHash string `gorm:"type:varchar(255);not null" json:"-"` // 不暴露密码哈希
	Email        string `gorm:"type:varchar(100);index" json:"email,omitempty"`
	Phone        string `gorm:"type:varchar(32)" json:"phone,omitempty"`
	Nickname     string `gorm:"type:varchar(100)" json:"nickname,omitempty"`
	AvatarURL    string `gorm:"type:varchar(255)" json:"avatarUrl,omitempty"`
	Headline     string `gorm:"type:varchar(255)" json:"headline,omitempty"`
	Bio          string `gorm:"type:text" json:"bio,omitempty"`

	PrivacySettings *PrivacySettings `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"-"`
}

// UserBasicInfo holds minimal public information about a user.
// Used when listing connections, followers and pending requests.
type UserBasicInfo struct {
	ID        uint   `json:"id"`
	Username  string `json:"username"`
	Nickname  string `json:"nickname,omitempty"`
	AvatarURL string `json:"avatarUrl,omitempty"`
	Headline  string `json:"headline,omitempty"`
}

// TableName 指定 User 模型的表名。
func (User) TableName() string {
	return "users"
}
