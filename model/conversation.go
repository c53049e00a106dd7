package model

import (
	"context"
	"time"

	"github.com/Laisky/errors/v2"
	"gorm.io/gorm"

	"github.com/agentsim/simcheck/common/random"
	"github.com/agentsim/simcheck/dto"
)

// Conversation is one generated round.
type Conversation struct {
	ID           string        `json:"id" gorm:"primaryKey;type:varchar(36)"`
	UserID       string        `json:"user_id" gorm:"index;not null"`
	RoundNumber  int           `json:"round_number"`
	TimePeriod   string        `json:"time_period"`
	Scenario     string        `json:"scenario"`
	ScenarioName string        `json:"scenario_name"`
	Messages     []dto.Message `json:"messages" gorm:"serializer:json"`
	CreatedAt    time.Time     `json:"created_at" gorm:"index"`
}

func (c *Conversation) ToDTO() dto.Conversation {
	messages := c.Messages
	if messages == nil {
		messages = []dto.Message{}
	}
	return dto.Conversation{
		ID:           c.ID,
		UserID:       c.UserID,
		RoundNumber:  c.RoundNumber,
		TimePeriod:   c.TimePeriod,
		Scenario:     c.Scenario,
		ScenarioName: c.ScenarioName,
		Messages:     messages,
		CreatedAt:    c.CreatedAt,
	}
}

// ObserverMessage is an observer prompt and the conversation it produced.
type ObserverMessage struct {
	ID             string    `json:"id" gorm:"primaryKey;type:varchar(36)"`
	UserID         string    `json:"user_id" gorm:"index;not null"`
	Message        string    `json:"message"`
	ConversationID string    `json:"conversation_id"`
	CreatedAt      time.Time `json:"created_at" gorm:"index"`
}

func (m *ObserverMessage) ToDTO() dto.ObserverMessage {
	return dto.ObserverMessage{
		ID:             m.ID,
		UserID:         m.UserID,
		Message:        m.Message,
		ConversationID: m.ConversationID,
		CreatedAt:      m.CreatedAt,
	}
}

// CreateConversation assigns the next round number of the owner and stores conv.
func CreateConversation(ctx context.Context, conv *Conversation) error {
	return errors.Wrap(withStoreRetry(ctx, func() error {
		return DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
			return createConversation(tx, conv)
		})
	}), "create conversation")
}

func createConversation(tx *gorm.DB, conv *Conversation) error {
	var last int
	if err := tx.Model(&Conversation{}).
		Where("user_id = ?", conv.UserID).
		Select("COALESCE(MAX(round_number), 0)").
		Scan(&last).Error; err != nil {
		return err
	}
	if conv.ID == "" {
		conv.ID = random.NewID()
	}
	if conv.CreatedAt.IsZero() {
		conv.CreatedAt = time.Now().UTC()
	}
	conv.RoundNumber = last + 1
	return tx.Create(conv).Error
}

// ListConversations returns the conversations of userID oldest first.
func ListConversations(ctx context.Context, userID string) ([]*Conversation, error) {
	var convs []*Conversation
	err := DB.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("round_number asc").
		Find(&convs).Error
	if err != nil {
		return nil, errors.Wrap(err, "list conversations")
	}
	return convs, nil
}

// RecordObserverExchange stores an observer prompt together with its dedicated conversation.
func RecordObserverExchange(ctx context.Context, msg *ObserverMessage, conv *Conversation) error {
	return errors.Wrap(withStoreRetry(ctx, func() error {
		return DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
			if err := createConversation(tx, conv); err != nil {
				return err
			}
			if msg.ID == "" {
				msg.ID = random.NewID()
			}
			msg.UserID = conv.UserID
			msg.ConversationID = conv.ID
			msg.CreatedAt = conv.CreatedAt
			return tx.Create(msg).Error
		})
	}), "record observer exchange")
}

func ListObserverMessages(ctx context.Context, userID string) ([]*ObserverMessage, error) {
	var msgs []*ObserverMessage
	err := DB.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at asc, id asc").
		Find(&msgs).Error
	if err != nil {
		return nil, errors.Wrap(err, "list observer messages")
	}
	return msgs, nil
}
