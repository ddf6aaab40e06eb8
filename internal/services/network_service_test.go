package services

import (
	"errors"
	"testing"

	"edu-network/internal/events"
	"edu-network/internal/models"
)

func TestSendConnectionRequestCreatesPending(t *testing.T) {
	f := newFixture(t)
	a, b := f.createUser(t, "alice"), f.createUser(t, "bob")

	res, err := f.network.SendConnectionRequest(f.ctx, a.ID, b.ID, "Let's connect")
	if err != nil {
		t.Fatalf("SendConnectionRequest: %v", err)
	}
	if res.Connected {
		t.Error("Connected = true, want false")
	}
	if res.Request.Status != models.ConnectionRequestStatusPending || res.Request.Message != "Let's connect" {
		t.Errorf("request = %+v", res.Request)
	}

	evs := f.events.Drain()
	if len(evs) != 1 || evs[0].Type != events.ConnectionRequestSent || evs[0].TargetID != b.ID || evs[0].ReferenceID != res.Request.ID {
		t.Errorf("events = %+v", evs)
	}
}

func TestSendConnectionRequestRejections(t *testing.T) {
	f := newFixture(t)
	a, b, c, d := f.createUser(t, "alice"), f.createUser(t, "bob"), f.createUser(t, "carol"), f.createUser(t, "dave")

	if _, err := f.network.SendConnectionRequest(f.ctx, a.ID, b.ID, ""); err != nil {
		t.Fatalf("seed request: %v", err)
	}
	f.connect(t, a, c)
	f.setPrivacy(t, d, PrivacyPatch{WhoCanSendConnectRequest: level(models.VisibilityNoOne)})

	testCases := []struct {
		name        string
		recipientID uint
		wantErr     error
		wantKind    error
	}{
		{"self", a.ID, ErrSelfConnection, ErrInvalidOperation},
		{"unknown recipient", 9999, ErrUserNotFound, ErrNotFound},
		{"duplicate", b.ID, ErrDuplicateRequest, ErrConflict},
		{"already connected", c.ID, ErrAlreadyConnected, ErrConflict},
		{"not accepting", d.ID, ErrRequestsNotAccepted, ErrForbidden},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := f.network.SendConnectionRequest(f.ctx, a.ID, tc.recipientID, "")
			if !errors.Is(err, tc.wantErr) {
				t.Fatalf("err = %v, want %v", err, tc.wantErr)
			}
			if !errors.Is(err, tc.wantKind) {
				t.Errorf("err %v does not wrap kind %v", err, tc.wantKind)
			}
		})
	}
}

func TestConnectionsOnlyStillAcceptsRequests(t *testing.T) {
	f := newFixture(t)
	a, b := f.createUser(t, "alice"), f.createUser(t, "bob")
	f.setPrivacy(t, b, PrivacyPatch{WhoCanSendConnectRequest: level(models.VisibilityConnectionsOnly)})

	if _, err := f.network.SendConnectionRequest(f.ctx, a.ID, b.ID, ""); err != nil {
		t.Fatalf("SendConnectionRequest: %v", err)
	}
}

func TestAcceptEstablishesConnectionAndFollows(t *testing.T) {
	f := newFixture(t)
	a, b := f.createUser(t, "alice"), f.createUser(t, "bob")

	res, err := f.network.SendConnectionRequest(f.ctx, a.ID, b.ID, "Let's connect")
	if err != nil {
		t.Fatalf("SendConnectionRequest: %v", err)
	}
	f.events.Drain()

	req, err := f.network.ActOnRequest(f.ctx, b.ID, res.Request.ID, models.RequestActionAccept)
	if err != nil {
		t.Fatalf("ActOnRequest: %v", err)
	}
	if req.Status != models.ConnectionRequestStatusAccepted {
		t.Errorf("status = %s, want ACCEPTED", req.Status)
	}

	conn, err := f.conns.Get(f.ctx, b.ID, a.ID)
	if err != nil {
		t.Fatalf("connection missing: %v", err)
	}
	if conn.UserAID >= conn.UserBID {
		t.Errorf("connection not canonical: %d, %d", conn.UserAID, conn.UserBID)
	}
	for _, pair := range [][2]uint{{a.ID, b.ID}, {b.ID, a.ID}} {
		ok, err := f.follows.Exists(f.ctx, pair[0], pair[1])
		if err != nil || !ok {
			t.Errorf("follow %d->%d exists = %v, %v", pair[0], pair[1], ok, err)
		}
	}

	status, err := f.network.GetRelationshipStatus(f.ctx, a.ID, b.ID)
	if err != nil {
		t.Fatalf("GetRelationshipStatus: %v", err)
	}
	if status.Status != RelationshipConnected {
		t.Errorf("status = %s, want CONNECTED", status.Status)
	}

	evs := f.events.Drain()
	if len(evs) != 1 || evs[0].Type != events.ConnectionEstablished || evs[0].TargetID != a.ID || evs[0].ActorID != b.ID {
		t.Errorf("events = %+v", evs)
	}
}

func TestMutualRequestAutoAccepts(t *testing.T) {
	f := newFixture(t)
	a, b := f.createUser(t, "alice"), f.createUser(t, "bob")

	first, err := f.network.SendConnectionRequest(f.ctx, a.ID, b.ID, "")
	if err != nil {
		t.Fatalf("first request: %v", err)
	}
	second, err := f.network.SendConnectionRequest(f.ctx, b.ID, a.ID, "")
	if err != nil {
		t.Fatalf("second request: %v", err)
	}
	if !second.Connected {
		t.Fatal("Connected = false, want the pending request to be accepted")
	}
	if second.Request.ID != first.Request.ID || second.Request.Status != models.ConnectionRequestStatusAccepted {
		t.Errorf("request = %+v, want #%d ACCEPTED", second.Request, first.Request.ID)
	}

	if n := f.count(t, &models.ConnectionRequest{}); n != 1 {
		t.Errorf("connection requests = %d, want 1", n)
	}
	if n := f.count(t, &models.Connection{}); n != 1 {
		t.Errorf("connections = %d, want 1", n)
	}
	if n := f.count(t, &models.Follow{}); n != 2 {
		t.Errorf("follows = %d, want 2", n)
	}
	pending, err := f.network.ListPendingReceived(f.ctx, b.ID)
	if err != nil || len(pending) != 0 {
		t.Errorf("pending for bob = %v, %v", pending, err)
	}
}

func TestActOnRequestRules(t *testing.T) {
	f := newFixture(t)
	a, b, c := f.createUser(t, "alice"), f.createUser(t, "bob"), f.createUser(t, "carol")

	res, err := f.network.SendConnectionRequest(f.ctx, a.ID, b.ID, "")
	if err != nil {
		t.Fatalf("SendConnectionRequest: %v", err)
	}
	id := res.Request.ID

	testCases := []struct {
		name    string
		actorID uint
		reqID   uint
		action  models.RequestAction
		wantErr error
	}{
		{"unknown action", b.ID, id, models.RequestAction("IGNORE"), ErrInvalidAction},
		{"unknown request", b.ID, 9999, models.RequestActionAccept, ErrRequestNotFound},
		{"sender cannot accept", a.ID, id, models.RequestActionAccept, ErrNotRequestRecipient},
		{"stranger cannot reject", c.ID, id, models.RequestActionReject, ErrNotRequestRecipient},
		{"recipient cannot withdraw", b.ID, id, models.RequestActionWithdraw, ErrNotRequestSender},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := f.network.ActOnRequest(f.ctx, tc.actorID, tc.reqID, tc.action)
			if !errors.Is(err, tc.wantErr) {
				t.Errorf("err = %v, want %v", err, tc.wantErr)
			}
		})
	}

	req, err := f.network.ActOnRequest(f.ctx, b.ID, id, models.RequestActionReject)
	if err != nil {
		t.Fatalf("reject: %v", err)
	}
	if req.Status != models.ConnectionRequestStatusRejected {
		t.Errorf("status = %s, want REJECTED", req.Status)
	}
	if _, err := f.network.ActOnRequest(f.ctx, b.ID, id, models.RequestActionAccept); !errors.Is(err, ErrRequestNotPending) {
		t.Errorf("accept after reject err = %v, want ErrRequestNotPending", err)
	}
	if n := f.count(t, &models.Connection{}); n != 0 {
		t.Errorf("connections = %d, want 0", n)
	}

	// The sender may withdraw regardless of status.
	req, err = f.network.ActOnRequest(f.ctx, a.ID, id, models.RequestActionWithdraw)
	if err != nil {
		t.Fatalf("withdraw: %v", err)
	}
	if req.Status != models.ConnectionRequestStatusWithdrawn {
		t.Errorf("status = %s, want WITHDRAWN", req.Status)
	}
}

func TestResendAfterRejectCreatesNewRequest(t *testing.T) {
	f := newFixture(t)
	a, b := f.createUser(t, "alice"), f.createUser(t, "bob")

	first, err := f.network.SendConnectionRequest(f.ctx, a.ID, b.ID, "")
	if err != nil {
		t.Fatalf("first: %v", err)
	}
	if _, err := f.network.ActOnRequest(f.ctx, b.ID, first.Request.ID, models.RequestActionReject); err != nil {
		t.Fatalf("reject: %v", err)
	}
	second, err := f.network.SendConnectionRequest(f.ctx, a.ID, b.ID, "")
	if err != nil {
		t.Fatalf("second: %v", err)
	}
	if second.Request.ID == first.Request.ID || second.Request.Status != models.ConnectionRequestStatusPending {
		t.Errorf("second request = %+v", second.Request)
	}
}

func TestToggleFollow(t *testing.T) {
	f := newFixture(t)
	a, b := f.createUser(t, "alice"), f.createUser(t, "bob")

	for i, want := range []bool{true, false, true} {
		res, err := f.network.ToggleFollow(f.ctx, a.ID, b.ID)
		if err != nil {
			t.Fatalf("toggle %d: %v", i, err)
		}
		if res.Following != want {
			t.Errorf("toggle %d: Following = %v, want %v", i, res.Following, want)
		}
	}
	if n := f.count(t, &models.Follow{}); n != 1 {
		t.Errorf("follows = %d, want 1", n)
	}

	created := 0
	for _, e := range f.events.Drain() {
		if e.Type == events.FollowCreated {
			created++
		}
	}
	if created != 2 {
		t.Errorf("follow.created events = %d, want 2", created)
	}

	if _, err := f.network.ToggleFollow(f.ctx, a.ID, a.ID); !errors.Is(err, ErrSelfFollow) {
		t.Errorf("self follow err = %v", err)
	}
	if _, err := f.network.ToggleFollow(f.ctx, a.ID, 9999); !errors.Is(err, ErrUserNotFound) {
		t.Errorf("unknown target err = %v", err)
	}
}

func TestRelationshipStatusPrecedence(t *testing.T) {
	f := newFixture(t)
	a, b := f.createUser(t, "alice"), f.createUser(t, "bob")

	check := func(actor, target *models.User, want RelationshipState, wantPending bool) *RelationshipStatus {
		t.Helper()
		got, err := f.network.GetRelationshipStatus(f.ctx, actor.ID, target.ID)
		if err != nil {
			t.Fatalf("GetRelationshipStatus: %v", err)
		}
		if got.Status != want {
			t.Errorf("%s -> %s: status = %s, want %s", actor.Username, target.Username, got.Status, want)
		}
		if (got.PendingRequestID != nil) != wantPending {
			t.Errorf("%s -> %s: pending id = %v", actor.Username, target.Username, got.PendingRequestID)
		}
		return got
	}

	check(a, b, RelationshipNone, false)

	if _, err := f.network.ToggleFollow(f.ctx, a.ID, b.ID); err != nil {
		t.Fatal(err)
	}
	got := check(a, b, RelationshipFollowing, false)
	if !got.IsFollowing || got.IsFollowedBy {
		t.Errorf("flags = %+v", got)
	}

	res, err := f.network.SendConnectionRequest(f.ctx, a.ID, b.ID, "")
	if err != nil {
		t.Fatal(err)
	}
	// A pending request outranks following.
	got = check(a, b, RelationshipPendingSent, true)
	if *got.PendingRequestID != res.Request.ID {
		t.Errorf("pending id = %d, want %d", *got.PendingRequestID, res.Request.ID)
	}
	got = check(b, a, RelationshipPendingReceived, true)
	if got.IsFollowing || !got.IsFollowedBy {
		t.Errorf("bob flags = %+v", got)
	}

	if _, err := f.network.ActOnRequest(f.ctx, b.ID, res.Request.ID, models.RequestActionAccept); err != nil {
		t.Fatal(err)
	}
	check(a, b, RelationshipConnected, false)
	check(b, a, RelationshipConnected, false)

	if _, err := f.network.GetRelationshipStatus(f.ctx, a.ID, 9999); !errors.Is(err, ErrUserNotFound) {
		t.Errorf("unknown target err = %v", err)
	}
}

func TestRemoveConnectionKeepsFollows(t *testing.T) {
	f := newFixture(t)
	a, b := f.createUser(t, "alice"), f.createUser(t, "bob")
	f.connect(t, a, b)

	if err := f.network.RemoveConnection(f.ctx, b.ID, a.ID); err != nil {
		t.Fatalf("RemoveConnection: %v", err)
	}
	if ok, _ := f.conns.Exists(f.ctx, a.ID, b.ID); ok {
		t.Error("connection still exists")
	}
	if n := f.count(t, &models.Follow{}); n != 2 {
		t.Errorf("follows = %d, want both kept", n)
	}

	status, err := f.network.GetRelationshipStatus(f.ctx, a.ID, b.ID)
	if err != nil {
		t.Fatal(err)
	}
	if status.Status != RelationshipFollowing {
		t.Errorf("status after removal = %s, want FOLLOWING", status.Status)
	}

	if err := f.network.RemoveConnection(f.ctx, a.ID, b.ID); !errors.Is(err, ErrNotConnected) {
		t.Errorf("second removal err = %v, want ErrNotConnected", err)
	}
	if err := f.network.RemoveConnection(f.ctx, a.ID, 9999); !errors.Is(err, ErrUserNotFound) {
		t.Errorf("unknown user err = %v, want ErrUserNotFound", err)
	}

	// The accepted request from before the removal does not block reconnecting.
	res, err := f.network.SendConnectionRequest(f.ctx, a.ID, b.ID, "")
	if err != nil {
		t.Fatalf("reconnect: %v", err)
	}
	if res.Connected || res.Request.Status != models.ConnectionRequestStatusPending {
		t.Errorf("reconnect result = %+v", res)
	}
}

func TestEstablishConnectionIsIdempotent(t *testing.T) {
	f := newFixture(t)
	a, b := f.createUser(t, "alice"), f.createUser(t, "bob")

	for i := 0; i < 2; i++ {
		created, err := establishConnection(f.ctx, f.conns, f.follows, b.ID, a.ID)
		if err != nil {
			t.Fatalf("run %d: %v", i, err)
		}
		if created != (i == 0) {
			t.Errorf("run %d: created = %v", i, created)
		}
	}
	if n := f.count(t, &models.Connection{}); n != 1 {
		t.Errorf("connections = %d, want 1", n)
	}
	if n := f.count(t, &models.Follow{}); n != 2 {
		t.Errorf("follows = %d, want 2", n)
	}
}

func TestListsRespectConnectionsVisibility(t *testing.T) {
	f := newFixture(t)
	a, b, c := f.createUser(t, "alice"), f.createUser(t, "bob"), f.createUser(t, "carol")
	f.connect(t, a, b)

	conns, err := f.network.ListConnections(f.ctx, a.ID)
	if err != nil {
		t.Fatalf("ListConnections: %v", err)
	}
	if len(conns) != 1 || conns[0].User == nil || conns[0].User.ID != b.ID {
		t.Fatalf("connections = %+v", conns)
	}

	// Default is CONNECTIONS_ONLY.
	if _, err := f.network.ListUserConnections(f.ctx, c.ID, a.ID); !errors.Is(err, ErrConnectionsHidden) {
		t.Errorf("stranger err = %v, want ErrConnectionsHidden", err)
	}
	if _, err := f.network.ListFollowers(f.ctx, c.ID, a.ID); !errors.Is(err, ErrConnectionsHidden) {
		t.Errorf("stranger followers err = %v", err)
	}
	if got, err := f.network.ListUserConnections(f.ctx, b.ID, a.ID); err != nil || len(got) != 1 {
		t.Errorf("connected viewer = %v, %v", got, err)
	}

	f.setPrivacy(t, a, PrivacyPatch{WhoCanSeeConnectionsList: level(models.VisibilityPublic)})
	followers, err := f.network.ListFollowers(f.ctx, c.ID, a.ID)
	if err != nil || len(followers) != 1 || followers[0].ID != b.ID {
		t.Errorf("followers = %v, %v", followers, err)
	}
	following, err := f.network.ListFollowing(f.ctx, c.ID, a.ID)
	if err != nil || len(following) != 1 || following[0].ID != b.ID {
		t.Errorf("following = %v, %v", following, err)
	}

	f.setPrivacy(t, a, PrivacyPatch{WhoCanSeeConnectionsList: level(models.VisibilityNoOne)})
	if _, err := f.network.ListUserConnections(f.ctx, b.ID, a.ID); !errors.Is(err, ErrConnectionsHidden) {
		t.Errorf("NO_ONE err = %v", err)
	}
	if got, err := f.network.ListUserConnections(f.ctx, a.ID, a.ID); err != nil || len(got) != 1 {
		t.Errorf("owner = %v, %v", got, err)
	}
}

func TestPendingListsAreEnriched(t *testing.T) {
	f := newFixture(t)
	a, b := f.createUser(t, "alice"), f.createUser(t, "bob")
	if _, err := f.network.SendConnectionRequest(f.ctx, a.ID, b.ID, "hi"); err != nil {
		t.Fatal(err)
	}

	received, err := f.network.ListPendingReceived(f.ctx, b.ID)
	if err != nil || len(received) != 1 {
		t.Fatalf("received = %v, %v", received, err)
	}
	if received[0].Sender == nil || received[0].Sender.Username != "alice" {
		t.Errorf("sender = %+v", received[0].Sender)
	}

	sent, err := f.network.ListPendingSent(f.ctx, a.ID)
	if err != nil || len(sent) != 1 {
		t.Fatalf("sent = %v, %v", sent, err)
	}
	if sent[0].Recipient == nil || sent[0].Recipient.Username != "bob" {
		t.Errorf("recipient = %+v", sent[0].Recipient)
	}
}
