package model

import (
	"context"
	"time"

	"github.com/Laisky/errors/v2"
	"gorm.io/gorm"

	"github.com/agentsim/simcheck/common/random"
	"github.com/agentsim/simcheck/dto"
)

// Agent is a simulation participant owned by exactly one user.
type Agent struct {
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
	CreatedAt    time.Time       `json:"created_at" gorm:"index"`
}

// NewAgent builds an unsaved agent for userID.
func NewAgent(userID string, spec dto.AgentSpec) *Agent {
	agent := &Agent{
		ID:        random.NewID(),
		UserID:    userID,
		CreatedAt: time.Now().UTC(),
	}
	agent.apply(spec)
	return agent
}

func (a *Agent) apply(spec dto.AgentSpec) {
	a.Name = spec.Name
	a.Archetype = spec.Archetype
	a.Personality = spec.Personality
	a.Goal = spec.Goal
	a.Expertise = spec.Expertise
	a.Background = spec.Background
	a.AvatarPrompt = spec.AvatarPrompt
}

// Spec returns the editable fields.
func (a *Agent) Spec() dto.AgentSpec {
	return dto.AgentSpec{
		Name:         a.Name,
		Archetype:    a.Archetype,
		Personality:  a.Personality,
		Goal:         a.Goal,
		Expertise:    a.Expertise,
		Background:   a.Background,
		AvatarPrompt: a.AvatarPrompt,
	}
}

func (a *Agent) ToDTO() dto.Agent {
	return dto.Agent{
		AgentSpec: a.Spec(),
		ID:        a.ID,
		UserID:    a.UserID,
		AvatarURL: a.AvatarURL,
		CreatedAt: a.CreatedAt,
	}
}

func CreateAgent(ctx context.Context, agent *Agent) error {
	return errors.Wrap(withStoreRetry(ctx, func() error {
		return DB.WithContext(ctx).Create(agent).Error
	}), "create agent")
}

// ListAgents returns the agents of userID in creation order.
func ListAgents(ctx context.Context, userID string) ([]*Agent, error) {
	var agents []*Agent
	err := DB.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at asc, id asc").
		Find(&agents).Error
	if err != nil {
		return nil, errors.Wrap(err, "list agents")
	}
	return agents, nil
}

// GetAgent returns ErrNotFound for unknown ids and for agents of other users alike.
func GetAgent(ctx context.Context, userID, id string) (*Agent, error) {
	agent := &Agent{}
	err := DB.WithContext(ctx).
		Where("id = ? AND user_id = ?", id, userID).
		First(agent).Error
	if err != nil {
		return nil, notFound(err)
	}
	return agent, nil
}

// UpdateAgent replaces the editable fields of an owned agent.
func UpdateAgent(ctx context.Context, userID, id string, spec dto.AgentSpec, avatarURL string) (*Agent, error) {
	agent, err := GetAgent(ctx, userID, id)
	if err != nil {
		return nil, err
	}
	agent.apply(spec)
	if avatarURL != "" {
		agent.AvatarURL = avatarURL
	}
	err = withStoreRetry(ctx, func() error {
		return DB.WithContext(ctx).Save(agent).Error
	})
	if err != nil {
		return nil, errors.Wrap(err, "update agent")
	}
	return agent, nil
}

func DeleteAgent(ctx context.Context, userID, id string) error {
	var affected int64
	err := withStoreRetry(ctx, func() error {
		res := DB.WithContext(ctx).Where("id = ? AND user_id = ?", id, userID).Delete(&Agent{})
		affected = res.RowsAffected
		return res.Error
	})
	if err != nil {
		return errors.Wrap(err, "delete agent")
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}

// BulkDeleteAgents removes every listed agent or none of them.
// Any id that is unknown or owned by someone else yields ErrNotFound and leaves the store untouched.
func BulkDeleteAgents(ctx context.Context, userID string, ids []string) (int, error) {
	unique := dedupe(ids)
	if len(unique) == 0 {
		return 0, nil
	}

	var deleted int64
	err := withStoreRetry(ctx, func() error {
		return DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
			var owned int64
			if err := tx.Model(&Agent{}).
				Where("user_id = ? AND id IN ?", userID, unique).
				Count(&owned).Error; err != nil {
				return err
			}
			if int(owned) != len(unique) {
				return ErrNotFound
			}

			res := tx.Where("user_id = ? AND id IN ?", userID, unique).Delete(&Agent{})
			deleted = res.RowsAffected
			return res.Error
		})
	})
	switch {
	case errors.Is(err, ErrNotFound):
		return 0, ErrNotFound
	case err != nil:
		return 0, errors.Wrap(err, "bulk delete agents")
	}
	return int(deleted), nil
}

func dedupe(ids []string) []string {
	seen := make(map[string]struct{}, len(ids))
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}
