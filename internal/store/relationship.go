package store

import (
	"errors"

	"linkup/backend/internal/models"

	"gorm.io/gorm"
)

// Relationships owns FriendRequest and Friendship rows and enforces the
// request → accept → friend lifecycle.
type Relationships struct {
	db *gorm.DB

	// strictDirection requires a Friendship's (user, friend_of) to line up
	// exactly with the accepted request's (from_user, to_user). When false,
	// either orientation of the accepted request satisfies the precondition.
	strictDirection bool
}

// NewRelationships builds a Relationships engine over db.
func NewRelationships(db *gorm.DB, strictDirection bool) *Relationships {
	return &Relationships{db: db, strictDirection: strictDirection}
}

// SendRequest creates a friend request from one user to another. It fails if
// the two are the same user or if a request already exists in either
// direction for the pair. The existence check and the insert run in one
// transaction; the canonical-pair unique index catches the remaining race
// between two mirrored requests and surfaces it as a duplicate, not a 500.
func (s *Relationships) SendRequest(fromID, toID uint) (*models.FriendRequest, error) {
	if fromID == toID {
		return nil, invalidInput("cannot send a friend request to yourself")
	}

	request := models.FriendRequest{FromUserID: fromID, ToUserID: toID}
	err := s.db.Transaction(func(tx *gorm.DB) error {
		existing, err := findPairRequest(tx, fromID, toID)
		if err != nil {
			return err
		}
		if existing != nil {
			return duplicate("a friend request already exists between these users")
		}
		return tx.Create(&request).Error
	})
	if err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, duplicate("a friend request already exists between these users")
		}
		return nil, err
	}
	return &request, nil
}

// FindPairRequest returns the single request between the unordered pair
// {a, b}, or nil if none exists. The direction sent by a is checked first.
func (s *Relationships) FindPairRequest(aID, bID uint) (*models.FriendRequest, error) {
	return findPairRequest(s.db, aID, bID)
}

func findPairRequest(db *gorm.DB, aID, bID uint) (*models.FriendRequest, error) {
	var request models.FriendRequest
	err := db.Where("from_user_id = ? AND to_user_id = ?", aID, bID).First(&request).Error
	if err == nil {
		return &request, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}
	err = db.Where("from_user_id = ? AND to_user_id = ?", bID, aID).First(&request).Error
	if err == nil {
		return &request, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}
	return nil, nil
}

// GetRequest fetches a request by ID, restricted to its two participants.
func (s *Relationships) GetRequest(actorID, id uint) (*models.FriendRequest, error) {
	var request models.FriendRequest
	if err := s.db.First(&request, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, notFound("friend request not found")
		}
		return nil, err
	}
	if request.FromUserID != actorID && request.ToUserID != actorID {
		return nil, forbidden("you are not a participant of this friend request")
	}
	return &request, nil
}

// ListIncomingRequests returns one page of requests addressed to userID,
// newest first, plus the total count.
func (s *Relationships) ListIncomingRequests(userID uint, page, limit int) ([]models.FriendRequest, int64, error) {
	query := s.db.Model(&models.FriendRequest{}).Where("to_user_id = ?", userID)
	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	var requests []models.FriendRequest
	offset := (page - 1) * limit
	if err := query.Order("created_on DESC").Offset(offset).Limit(limit).
		Find(&requests).Error; err != nil {
		return nil, 0, err
	}
	return requests, total, nil
}

// UpdateRequestParams carries the mutable request flags; nil means keep.
type UpdateRequestParams struct {
	IsNew      *bool
	IsAccepted *bool
}

// UpdateRequest mutates the is_new / is_accepted flags. Only the recipient
// may do this; the sender cannot accept their own request.
func (s *Relationships) UpdateRequest(actorID, id uint, params UpdateRequestParams) (*models.FriendRequest, error) {
	var request models.FriendRequest
	if err := s.db.First(&request, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, notFound("friend request not found")
		}
		return nil, err
	}
	if request.ToUserID != actorID {
		return nil, forbidden("only the recipient may update a friend request")
	}

	updates := map[string]any{}
	if params.IsNew != nil {
		updates["is_new"] = *params.IsNew
	}
	if params.IsAccepted != nil {
		updates["is_accepted"] = *params.IsAccepted
	}
	if len(updates) == 0 {
		return &request, nil
	}
	if err := s.db.Model(&request).Updates(updates).Error; err != nil {
		return nil, err
	}
	return &request, nil
}

// DeleteRequest removes a request. Either participant may do this.
// Friendships already created from the request are left untouched.
func (s *Relationships) DeleteRequest(actorID, id uint) error {
	request, err := s.GetRequest(actorID, id)
	if err != nil {
		return err
	}
	return s.db.Delete(request).Error
}

// CreateFriendship records that user is a friend of friendOf. The sole
// precondition is an accepted request between the pair; whether the
// orientation must match is the strictDirection policy.
func (s *Relationships) CreateFriendship(userID, friendOfID uint) (*models.Friendship, error) {
	if userID == friendOfID {
		return nil, invalidInput("cannot befriend yourself")
	}

	friendship := models.Friendship{UserID: userID, FriendOfID: friendOfID}
	err := s.db.Transaction(func(tx *gorm.DB) error {
		request, err := findPairRequest(tx, userID, friendOfID)
		if err != nil {
			return err
		}
		if request == nil {
			return precondition("no friend request exists between these users")
		}
		if !request.IsAccepted {
			return precondition("the friend request must be accepted first")
		}
		if s.strictDirection && (request.FromUserID != userID || request.ToUserID != friendOfID) {
			return precondition("the friendship direction must match the accepted request")
		}
		return tx.Create(&friendship).Error
	})
	if err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, duplicate("this friendship already exists")
		}
		return nil, err
	}
	return &friendship, nil
}

// AreFriends reports whether a Friendship row exists between the two users
// in either direction.
func (s *Relationships) AreFriends(aID, bID uint) (bool, error) {
	return areFriends(s.db, aID, bID)
}

func areFriends(db *gorm.DB, aID, bID uint) (bool, error) {
	var count int64
	err := db.Model(&models.Friendship{}).
		Where("(user_id = ? AND friend_of_id = ?) OR (user_id = ? AND friend_of_id = ?)",
			aID, bID, bID, aID).
		Count(&count).Error
	return count > 0, err
}

// GetFriendship fetches a friendship row by ID, restricted to its two sides.
func (s *Relationships) GetFriendship(actorID, id uint) (*models.Friendship, error) {
	var friendship models.Friendship
	if err := s.db.First(&friendship, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, notFound("friendship not found")
		}
		return nil, err
	}
	if friendship.UserID != actorID && friendship.FriendOfID != actorID {
		return nil, forbidden("you are not a participant of this friendship")
	}
	return &friendship, nil
}

// ListFriendships returns one page of the rows owned by userID (rows where
// they are the friend_of side), with the friend preloaded.
func (s *Relationships) ListFriendships(userID uint, page, limit int) ([]models.Friendship, int64, error) {
	query := s.db.Model(&models.Friendship{}).Where("friend_of_id = ?", userID)
	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	var friendships []models.Friendship
	offset := (page - 1) * limit
	if err := query.Preload("User").Order("start_date DESC").
		Offset(offset).Limit(limit).Find(&friendships).Error; err != nil {
		return nil, 0, err
	}
	return friendships, total, nil
}

// UpdateFriendshipParams carries the owner-mutable fields. Nickname uses a
// double pointer so a present-but-null value clears the nickname.
type UpdateFriendshipParams struct {
	Nickname  **string
	IsBlocked *bool
}

// UpdateFriendship changes the private nickname or the blocked flag. Only
// the friend_of owner of the row may do this.
func (s *Relationships) UpdateFriendship(actorID, id uint, params UpdateFriendshipParams) (*models.Friendship, error) {
	var friendship models.Friendship
	if err := s.db.First(&friendship, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, notFound("friendship not found")
		}
		return nil, err
	}
	if friendship.FriendOfID != actorID {
		return nil, forbidden("only the owner may update this friendship")
	}

	updates := map[string]any{}
	if params.Nickname != nil {
		updates["nickname"] = *params.Nickname
	}
	if params.IsBlocked != nil {
		updates["is_blocked"] = *params.IsBlocked
	}
	if len(updates) == 0 {
		return &friendship, nil
	}
	if err := s.db.Model(&friendship).Updates(updates).Error; err != nil {
		return nil, err
	}
	return &friendship, nil
}

// DeleteFriendship removes a friendship row. Either side may do this.
func (s *Relationships) DeleteFriendship(actorID, id uint) error {
	friendship, err := s.GetFriendship(actorID, id)
	if err != nil {
		return err
	}
	return s.db.Delete(friendship).Error
}
