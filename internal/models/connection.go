package models

// Connection represents an established, undirected relationship between two users.
// To avoid duplicates and simplify queries, UserAID is always less than UserBID.
type Connection struct {
	EdgeModel
	UserAID uint `gorm:"column:user_a_id;not null;uniqueIndex:idx_connection_pair" json:"userAId"`
	UserBID uint `gorm:"column:user_b_id;not null;uniqueIndex:idx_connection_pair;index" json:"userBId"`
}

// NewConnection returns a connection between the two users in canonical order.
func NewConnection(userID1, userID2 uint) *Connection {
	c := &Connection{UserAID: userID1, UserBID: userID2}
	c.EnsureCanonicalOrder()
	return c
}

// EnsureCanonicalOrder sets UserAID to the smaller ID and UserBID to the larger ID.
// This should be called before creating a Connection record.
func (c *Connection) EnsureCanonicalOrder() {
	if c.UserAID > c.UserBID {
		c.UserAID, c.UserBID = c.UserBID, c.UserAID
	}
}

// CanonicalPair orders two user ids the way connections are stored.
func CanonicalPair(userID1, userID2 uint) (uint, uint) {
	if userID1 > userID2 {
		return userID2, userID1
	}
	return userID1, userID2
}

// OtherUser returns the participant that is not userID.
func (c *Connection) OtherUser(userID uint) uint {
	if c.UserAID == userID {
		return c.UserBID
	}
	return c.UserAID
}

// Involves reports whether userID is one side of the connection.
func (c *Connection) Involves(userID uint) bool {
	return c.UserAID == userID || c.UserBID == userID
}

// TableName 指定 Connection 模型的表名。
func (Connection) TableName() string {
	return "connections"
}

// ConnectionWithUser is a connection as seen from one participant.
type ConnectionWithUser struct {
	Connection
	User *UserBasicInfo `json:"user"`
}
