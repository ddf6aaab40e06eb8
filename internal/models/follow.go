package models

// Follow is a directed subscription follower -> following, unique per ordered pair.
type Follow struct {
	EdgeModel
	FollowerID  uint `gorm:"not null;uniqueIndex:idx_follow_pair" json:"followerId"`
	FollowingID uint `gorm:"not null;uniqueIndex:idx_follow_pair;index" json:"followingId"`
}

// TableName 指定 Follow 模型的表名。
func (Follow) TableName() string {
	return "follows"
}
