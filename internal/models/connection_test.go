package models

import "testing"

func TestNewConnectionIsCanonical(t *testing.T) {
	testCases := []struct {
		a, b  uint
		wantA uint
		wantB uint
	}{
		{1, 2, 1, 2},
		{9, 3, 3, 9},
		{5, 5, 5, 5},
	}
	for _, tc := range testCases {
		c := NewConnection(tc.a, tc.b)
		if c.UserAID != tc.wantA || c.UserBID != tc.wantB {
			t.Errorf("NewConnection(%d, %d) = (%d, %d)", tc.a, tc.b, c.UserAID, c.UserBID)
		}
		if a, b := CanonicalPair(tc.a, tc.b); a != tc.wantA || b != tc.wantB {
			t.Errorf("CanonicalPair(%d, %d) = (%d, %d)", tc.a, tc.b, a, b)
		}
	}
}

func TestConnectionOtherUser(t *testing.T) {
	c := NewConnection(7, 4)
	if got := c.OtherUser(4); got != 7 {
		t.Errorf("OtherUser(4) = %d", got)
	}
	if got := c.OtherUser(7); got != 4 {
		t.Errorf("OtherUser(7) = %d", got)
	}
	if !c.Involves(7) || c.Involves(5) {
		t.Error("Involves mismatch")
	}
}
