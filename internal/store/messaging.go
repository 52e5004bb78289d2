package store

import (
	"errors"

	"linkup/backend/internal/models"

	"gorm.io/gorm"
)

// Messaging owns Message rows. Every send is gated on the current friendship
// state; nothing is cached between calls.
type Messaging struct {
	db *gorm.DB
}

// NewMessaging builds a Messaging gate over db.
func NewMessaging(db *gorm.DB) *Messaging {
	return &Messaging{db: db}
}

// SendMessage creates a message from one user to another. The friendship
// check runs inside the insert transaction so a concurrent unfriend cannot
// slip a message past it. A recipient who has blocked the sender on their
// side of the friendship refuses delivery.
func (s *Messaging) SendMessage(content string, fromID, toID uint) (*models.Message, error) {
	if content == "" {
		return nil, invalidInput("message content must not be empty")
	}
	if fromID == toID {
		return nil, invalidInput("cannot message yourself")
	}

	message := models.Message{Content: content, FromUserID: fromID, ToUserID: toID}
	err := s.db.Transaction(func(tx *gorm.DB) error {
		friends, err := areFriends(tx, fromID, toID)
		if err != nil {
			return err
		}
		if !friends {
			return precondition("users are not friends")
		}

		var blocked int64
		if err := tx.Model(&models.Friendship{}).
			Where("user_id = ? AND friend_of_id = ? AND is_blocked = ?", fromID, toID, true).
			Count(&blocked).Error; err != nil {
			return err
		}
		if blocked > 0 {
			return forbidden("the recipient has blocked you")
		}
		return tx.Create(&message).Error
	})
	if err != nil {
		return nil, err
	}
	return &message, nil
}

// ListConversation returns one page of the messages exchanged between the
// current user and the other user, in both directions, newest first. It
// fails with not-found if the other user does not exist or the two are not
// friends; the friendship check is symmetric, matching the rule SendMessage
// applies.
func (s *Messaging) ListConversation(currentID, otherID uint, page, limit int) ([]models.Message, int64, error) {
	var other models.User
	if err := s.db.First(&other, otherID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, 0, notFound("user not found")
		}
		return nil, 0, err
	}
	friends, err := areFriends(s.db, currentID, otherID)
	if err != nil {
		return nil, 0, err
	}
	if !friends {
		return nil, 0, notFound("no conversation with this user")
	}

	query := s.db.Model(&models.Message{}).
		Where("(from_user_id = ? AND to_user_id = ?) OR (from_user_id = ? AND to_user_id = ?)",
			currentID, otherID, otherID, currentID)
	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	var messages []models.Message
	offset := (page - 1) * limit
	if err := query.Order("sent_on DESC, id DESC").Offset(offset).Limit(limit).
		Find(&messages).Error; err != nil {
		return nil, 0, err
	}
	return messages, total, nil
}

// GetMessage fetches a message by ID, restricted to its two participants.
func (s *Messaging) GetMessage(actorID, id uint) (*models.Message, error) {
	var message models.Message
	if err := s.db.First(&message, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, notFound("message not found")
		}
		return nil, err
	}
	if message.FromUserID != actorID && message.ToUserID != actorID {
		return nil, forbidden("you are not a participant of this message")
	}
	return &message, nil
}

// UpdateMessageParams carries the mutable message fields; nil means keep.
type UpdateMessageParams struct {
	Content *string
	IsNew   *bool
}

// UpdateMessage mutates content or the unread flag. Either participant may
// do this; sender edits content, recipient marks it read.
func (s *Messaging) UpdateMessage(actorID, id uint, params UpdateMessageParams) (*models.Message, error) {
	message, err := s.GetMessage(actorID, id)
	if err != nil {
		return nil, err
	}

	updates := map[string]any{}
	if params.Content != nil {
		if *params.Content == "" {
			return nil, invalidInput("message content must not be empty")
		}
		updates["content"] = *params.Content
	}
	if params.IsNew != nil {
		updates["is_new"] = *params.IsNew
	}
	if len(updates) == 0 {
		return message, nil
	}
	if err := s.db.Model(message).Updates(updates).Error; err != nil {
		return nil, err
	}
	return message, nil
}

// DeleteMessage removes a message. Either participant may do this.
func (s *Messaging) DeleteMessage(actorID, id uint) error {
	message, err := s.GetMessage(actorID, id)
	if err != nil {
		return err
	}
	return s.db.Delete(message).Error
}
