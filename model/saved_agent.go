package model

import (
	"context"
	"time"

	"github.com/Laisky/errors/v2"
	"github.com/jinzhu/copier"

	"github.com/agentsim/simcheck/common/random"
	"github.com/agentsim/simcheck/dto"
)

// SavedAgent is an entry of a user's reusable agent library.
type SavedAgent struct {
	ID           string          `json:"id" gorm:"primaryKey;type:varchar(36)"`
	UserID       string          `json:"user_id" gorm:"index;not null"`
	Name         string          `json:"name" gorm:"not null"`
	Archetype    string          `json:"archetype"`
	Personality  dto.Personality `json:"personality" gorm:"serializer:json"`
	Goal         string          `json:"goal"`
	Expertise    string          `json:"expertise"`
	Background   string          `json:"background"`
	AvatarPrompt string          `json:"avatar_prompt"`
	AvatarURL    string          `json:"avatar_url"`
	IsFavorite   bool            `json:"is_favorite"`
	CreatedAt    time.Time       `json:"created_at" gorm:"index"`
}

// NewSavedAgent builds an unsaved library entry from a creation payload.
func NewSavedAgent(userID string, spec dto.SavedAgentSpec) (*SavedAgent, error) {
	saved := &SavedAgent{}
	if err := copier.Copy(saved, NewAgent(userID, spec.AgentSpec)); err != nil {
		return nil, errors.Wrap(err, "copy agent fields")
	}
	saved.ID = random.NewID()
	saved.IsFavorite = spec.IsFavorite
	return saved, nil
}

func (s *SavedAgent) ToDTO() dto.SavedAgent {
	agent := &Agent{}
	// field sets are identical apart from IsFavorite
	_ = copier.Copy(agent, s)
	return dto.SavedAgent{
		Agent:      agent.ToDTO(),
		IsFavorite: s.IsFavorite,
	}
}

func CreateSavedAgent(ctx context.Context, saved *SavedAgent) error {
	return errors.Wrap(withStoreRetry(ctx, func() error {
		return DB.WithContext(ctx).Create(saved).Error
	}), "create saved agent")
}

// ListSavedAgents returns favorites first, then by creation time.
func ListSavedAgents(ctx context.Context, userID string) ([]*SavedAgent, error) {
	var saved []*SavedAgent
	err := DB.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("is_favorite desc, created_at asc, id asc").
		Find(&saved).Error
	if err != nil {
		return nil, errors.Wrap(err, "list saved agents")
	}
	return saved, nil
}

func GetSavedAgent(ctx context.Context, userID, id string) (*SavedAgent, error) {
	saved := &SavedAgent{}
	err := DB.WithContext(ctx).
		Where("id = ? AND user_id = ?", id, userID).
		First(saved).Error
	if err != nil {
		return nil, notFound(err)
	}
	return saved, nil
}

// UpdateSavedAgent replaces every editable field including the favorite flag.
func UpdateSavedAgent(ctx context.Context, userID, id string, spec dto.SavedAgentSpec) (*SavedAgent, error) {
	saved, err := GetSavedAgent(ctx, userID, id)
	if err != nil {
		return nil, err
	}
	updated := NewAgent(userID, spec.AgentSpec)
	saved.Name = updated.Name
	saved.Archetype = updated.Archetype
	saved.Personality = updated.Personality
	saved.Goal = updated.Goal
	saved.Expertise = updated.Expertise
	saved.Background = updated.Background
	saved.AvatarPrompt = updated.AvatarPrompt
	saved.IsFavorite = spec.IsFavorite

	err = withStoreRetry(ctx, func() error {
		return DB.WithContext(ctx).Save(saved).Error
	})
	if err != nil {
		return nil, errors.Wrap(err, "update saved agent")
	}
	return saved, nil
}

// SetFavorite sets the flag when favorite is non-nil and toggles it otherwise.
func SetFavorite(ctx context.Context, userID, id string, favorite *bool) (*SavedAgent, error) {
	saved, err := GetSavedAgent(ctx, userID, id)
	if err != nil {
		return nil, err
	}
	if favorite != nil {
		saved.IsFavorite = *favorite
	} else {
		saved.IsFavorite = !saved.IsFavorite
	}

	err = withStoreRetry(ctx, func() error {
		return DB.WithContext(ctx).Model(saved).Update("is_favorite", saved.IsFavorite).Error
	})
	if err != nil {
		return nil, errors.Wrap(err, "update favorite")
	}
	return saved, nil
}

func DeleteSavedAgent(ctx context.Context, userID, id string) error {
	var affected int64
	err := withStoreRetry(ctx, func() error {
		res := DB.WithContext(ctx).Where("id = ? AND user_id = ?", id, userID).Delete(&SavedAgent{})
		affected = res.RowsAffected
		return res.Error
	})
	if err != nil {
		return errors.Wrap(err, "delete saved agent")
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}
