package store

import (
	"testing"

	"linkup/backend/internal/models"
)

// After one request exists, neither direction may create another one.
func TestSendRequestPairUniqueness(t *testing.T) {
	db := newTestDB(t)
	identity := NewIdentity(db, nil)
	relationships := NewRelationships(db, false)

	alice := createTestUser(t, identity, "alice")
	bob := createTestUser(t, identity, "bob")

	request, err := relationships.SendRequest(alice.ID, bob.ID)
	if err != nil {
		t.Fatalf("SendRequest: %v", err)
	}
	if !request.IsNew || request.IsAccepted {
		t.Errorf("fresh request flags: is_new=%v is_accepted=%v", request.IsNew, request.IsAccepted)
	}

	_, err = relationships.SendRequest(alice.ID, bob.ID)
	wantKind(t, err, KindDuplicate)

	_, err = relationships.SendRequest(bob.ID, alice.ID)
	wantKind(t, err, KindDuplicate)
}

func TestSendRequestToSelf(t *testing.T) {
	db := newTestDB(t)
	identity := NewIdentity(db, nil)
	relationships := NewRelationships(db, false)

	alice := createTestUser(t, identity, "alice")

	_, err := relationships.SendRequest(alice.ID, alice.ID)
	wantKind(t, err, KindInvalidInput)
}

func TestFindPairRequest(t *testing.T) {
	db := newTestDB(t)
	identity := NewIdentity(db, nil)
	relationships := NewRelationships(db, false)

	alice := createTestUser(t, identity, "alice")
	bob := createTestUser(t, identity, "bob")
	carol := createTestUser(t, identity, "carol")

	sent, err := relationships.SendRequest(alice.ID, bob.ID)
	if err != nil {
		t.Fatalf("SendRequest: %v", err)
	}

	for _, pair := range [][2]uint{{alice.ID, bob.ID}, {bob.ID, alice.ID}} {
		found, err := relationships.FindPairRequest(pair[0], pair[1])
		if err != nil {
			t.Fatalf("FindPairRequest(%d, %d): %v", pair[0], pair[1], err)
		}
		if found == nil || found.ID != sent.ID {
			t.Errorf("FindPairRequest(%d, %d) did not find the request", pair[0], pair[1])
		}
	}

	found, err := relationships.FindPairRequest(alice.ID, carol.ID)
	if err != nil {
		t.Fatalf("FindPairRequest: %v", err)
	}
	if found != nil {
		t.Errorf("found a request for an unrelated pair")
	}
}

func TestCreateFriendshipPreconditions(t *testing.T) {
	db := newTestDB(t)
	identity := NewIdentity(db, nil)
	relationships := NewRelationships(db, false)

	alice := createTestUser(t, identity, "alice")
	bob := createTestUser(t, identity, "bob")

	// No request yet.
	_, err := relationships.CreateFriendship(alice.ID, bob.ID)
	wantKind(t, err, KindPrecondition)
	if err.Error() != "no friend request exists between these users" {
		t.Errorf("wrong message for the missing-request case: %q", err)
	}

	request, err := relationships.SendRequest(alice.ID, bob.ID)
	if err != nil {
		t.Fatalf("SendRequest: %v", err)
	}

	// Pending, not yet accepted: distinct failure.
	_, err = relationships.CreateFriendship(alice.ID, bob.ID)
	wantKind(t, err, KindPrecondition)
	if err.Error() != "the friend request must be accepted first" {
		t.Errorf("wrong message for the unaccepted case: %q", err)
	}

	if _, err := relationships.UpdateRequest(bob.ID, request.ID, UpdateRequestParams{IsAccepted: boolPtr(true)}); err != nil {
		t.Fatalf("accept: %v", err)
	}

	friendship, err := relationships.CreateFriendship(alice.ID, bob.ID)
	if err != nil {
		t.Fatalf("CreateFriendship after acceptance: %v", err)
	}
	if friendship.UserID != alice.ID || friendship.FriendOfID != bob.ID {
		t.Errorf("friendship sides: user=%d friend_of=%d", friendship.UserID, friendship.FriendOfID)
	}
	if friendship.Nickname != nil || friendship.IsBlocked {
		t.Errorf("fresh friendship defaults: nickname=%v blocked=%v", friendship.Nickname, friendship.IsBlocked)
	}
}

// With the loose policy either orientation of the accepted request works;
// with the strict policy only the matching orientation does.
func TestCreateFriendshipDirectionPolicy(t *testing.T) {
	db := newTestDB(t)
	identity := NewIdentity(db, nil)
	loose := NewRelationships(db, false)
	strict := NewRelationships(db, true)

	alice := createTestUser(t, identity, "alice")
	bob := createTestUser(t, identity, "bob")

	request, err := loose.SendRequest(alice.ID, bob.ID)
	if err != nil {
		t.Fatalf("SendRequest: %v", err)
	}
	if _, err := loose.UpdateRequest(bob.ID, request.ID, UpdateRequestParams{IsAccepted: boolPtr(true)}); err != nil {
		t.Fatalf("accept: %v", err)
	}

	// Reversed orientation: strict refuses, loose allows.
	_, err = strict.CreateFriendship(bob.ID, alice.ID)
	wantKind(t, err, KindPrecondition)

	if _, err := loose.CreateFriendship(bob.ID, alice.ID); err != nil {
		t.Fatalf("loose reversed orientation: %v", err)
	}

	// Matching orientation passes the strict check.
	if _, err := strict.CreateFriendship(alice.ID, bob.ID); err != nil {
		t.Fatalf("strict matching orientation: %v", err)
	}
}

func TestAreFriendsSymmetric(t *testing.T) {
	db := newTestDB(t)
	identity := NewIdentity(db, nil)
	relationships := NewRelationships(db, false)

	alice := createTestUser(t, identity, "alice")
	bob := createTestUser(t, identity, "bob")

	for _, pair := range [][2]uint{{alice.ID, bob.ID}, {bob.ID, alice.ID}} {
		friends, err := relationships.AreFriends(pair[0], pair[1])
		if err != nil {
			t.Fatalf("AreFriends: %v", err)
		}
		if friends {
			t.Errorf("AreFriends(%d, %d) true before any friendship", pair[0], pair[1])
		}
	}

	request, _ := relationships.SendRequest(alice.ID, bob.ID)
	relationships.UpdateRequest(bob.ID, request.ID, UpdateRequestParams{IsAccepted: boolPtr(true)})
	if _, err := relationships.CreateFriendship(alice.ID, bob.ID); err != nil {
		t.Fatalf("CreateFriendship: %v", err)
	}

	// One directional row makes the check true both ways.
	for _, pair := range [][2]uint{{alice.ID, bob.ID}, {bob.ID, alice.ID}} {
		friends, err := relationships.AreFriends(pair[0], pair[1])
		if err != nil {
			t.Fatalf("AreFriends: %v", err)
		}
		if !friends {
			t.Errorf("AreFriends(%d, %d) false after friendship", pair[0], pair[1])
		}
	}
}

func TestUpdateRequestRecipientOnly(t *testing.T) {
	db := newTestDB(t)
	identity := NewIdentity(db, nil)
	relationships := NewRelationships(db, false)

	alice := createTestUser(t, identity, "alice")
	bob := createTestUser(t, identity, "bob")

	request, err := relationships.SendRequest(alice.ID, bob.ID)
	if err != nil {
		t.Fatalf("SendRequest: %v", err)
	}

	// The sender cannot accept their own request.
	_, err = relationships.UpdateRequest(alice.ID, request.ID, UpdateRequestParams{IsAccepted: boolPtr(true)})
	wantKind(t, err, KindForbidden)

	updated, err := relationships.UpdateRequest(bob.ID, request.ID, UpdateRequestParams{
		IsAccepted: boolPtr(true),
		IsNew:      boolPtr(false),
	})
	if err != nil {
		t.Fatalf("recipient update: %v", err)
	}
	if !updated.IsAccepted || updated.IsNew {
		t.Errorf("flags after update: accepted=%v new=%v", updated.IsAccepted, updated.IsNew)
	}
}

// Deleting the provenance request must not touch friendships created from it.
func TestDeleteRequestKeepsFriendship(t *testing.T) {
	db := newTestDB(t)
	identity := NewIdentity(db, nil)
	relationships := NewRelationships(db, false)

	alice := createTestUser(t, identity, "alice")
	bob := createTestUser(t, identity, "bob")

	request, _ := relationships.SendRequest(alice.ID, bob.ID)
	relationships.UpdateRequest(bob.ID, request.ID, UpdateRequestParams{IsAccepted: boolPtr(true)})
	if _, err := relationships.CreateFriendship(alice.ID, bob.ID); err != nil {
		t.Fatalf("CreateFriendship: %v", err)
	}

	if err := relationships.DeleteRequest(alice.ID, request.ID); err != nil {
		t.Fatalf("DeleteRequest: %v", err)
	}

	friends, err := relationships.AreFriends(alice.ID, bob.ID)
	if err != nil {
		t.Fatalf("AreFriends: %v", err)
	}
	if !friends {
		t.Error("friendship vanished with the request")
	}

	// And with the request gone the pair may start over.
	if _, err := relationships.SendRequest(bob.ID, alice.ID); err != nil {
		t.Errorf("new request after deletion: %v", err)
	}
}

func TestDeleteRequestParticipantsOnly(t *testing.T) {
	db := newTestDB(t)
	identity := NewIdentity(db, nil)
	relationships := NewRelationships(db, false)

	alice := createTestUser(t, identity, "alice")
	bob := createTestUser(t, identity, "bob")
	carol := createTestUser(t, identity, "carol")

	request, _ := relationships.SendRequest(alice.ID, bob.ID)

	err := relationships.DeleteRequest(carol.ID, request.ID)
	wantKind(t, err, KindForbidden)

	// The sender may delete (withdraw) their own request.
	if err := relationships.DeleteRequest(alice.ID, request.ID); err != nil {
		t.Fatalf("sender delete: %v", err)
	}
}

func TestUpdateFriendshipOwnerOnly(t *testing.T) {
	db := newTestDB(t)
	identity := NewIdentity(db, nil)
	relationships := NewRelationships(db, false)

	alice := createTestUser(t, identity, "alice")
	bob := createTestUser(t, identity, "bob")

	request, _ := relationships.SendRequest(alice.ID, bob.ID)
	relationships.UpdateRequest(bob.ID, request.ID, UpdateRequestParams{IsAccepted: boolPtr(true)})
	friendship, err := relationships.CreateFriendship(alice.ID, bob.ID)
	if err != nil {
		t.Fatalf("CreateFriendship: %v", err)
	}

	// alice is the user side, not the owner.
	nickname := strPtr("bestie")
	_, err = relationships.UpdateFriendship(alice.ID, friendship.ID, UpdateFriendshipParams{Nickname: &nickname})
	wantKind(t, err, KindForbidden)

	updated, err := relationships.UpdateFriendship(bob.ID, friendship.ID, UpdateFriendshipParams{
		Nickname:  &nickname,
		IsBlocked: boolPtr(true),
	})
	if err != nil {
		t.Fatalf("owner update: %v", err)
	}
	if updated.Nickname == nil || *updated.Nickname != "bestie" || !updated.IsBlocked {
		t.Errorf("fields after update: nickname=%v blocked=%v", updated.Nickname, updated.IsBlocked)
	}

	// A present-but-nil nickname clears it.
	var cleared *string
	updated, err = relationships.UpdateFriendship(bob.ID, friendship.ID, UpdateFriendshipParams{Nickname: &cleared})
	if err != nil {
		t.Fatalf("clear nickname: %v", err)
	}
	var reloaded models.Friendship
	if err := db.First(&reloaded, friendship.ID).Error; err != nil {
		t.Fatalf("reload: %v", err)
	}
	if reloaded.Nickname != nil {
		t.Errorf("nickname not cleared: %v", *reloaded.Nickname)
	}
}
