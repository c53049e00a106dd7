package model

import (
	"context"
	"time"

	"github.com/Laisky/errors/v2"
	"gorm.io/gorm"

	"github.com/agentsim/simcheck/common/random"
	"github.com/agentsim/simcheck/dto"
)

// TimePeriods is the daily cycle a simulation moves through.
var TimePeriods = []string{"morning", "afternoon", "evening"}

// SimulationState is the per-user simulation clock and scenario.
type SimulationState struct {
	ID           string    `json:"id" gorm:"primaryKey;type:varchar(36)"`
	UserID       string    `json:"user_id" gorm:"uniqueIndex;not null"`
	IsActive     bool      `json:"is_active"`
	CurrentDay   int       `json:"current_day"`
	TimePeriod   string    `json:"time_period"`
	Scenario     string    `json:"scenario"`
	ScenarioName string    `json:"scenario_name"`
	UpdatedAt    time.Time `json:"updated_at"`
}

func freshState(userID string) *SimulationState {
	return &SimulationState{
		ID:         random.NewID(),
		UserID:     userID,
		CurrentDay: 1,
		TimePeriod: TimePeriods[0],
		UpdatedAt:  time.Now().UTC(),
	}
}

func (s *SimulationState) ToDTO() dto.SimulationState {
	return dto.SimulationState{
		ID:           s.ID,
		UserID:       s.UserID,
		IsActive:     s.IsActive,
		CurrentDay:   s.CurrentDay,
		TimePeriod:   s.TimePeriod,
		Scenario:     s.Scenario,
		ScenarioName: s.ScenarioName,
	}
}

// Advance moves the clock one period forward, rolling over to the next day after the last period.
func (s *SimulationState) Advance() {
	for i, period := range TimePeriods {
		if period != s.TimePeriod {
			continue
		}
		if i == len(TimePeriods)-1 {
			s.CurrentDay++
			s.TimePeriod = TimePeriods[0]
		} else {
			s.TimePeriod = TimePeriods[i+1]
		}
		return
	}
	s.TimePeriod = TimePeriods[0]
}

// GetState returns the state of userID, creating the default inactive one on first access.
func GetState(ctx context.Context, userID string) (*SimulationState, error) {
	state := &SimulationState{}
	err := withStoreRetry(ctx, func() error {
		return DB.WithContext(ctx).
			Where(SimulationState{UserID: userID}).
			Attrs(freshState(userID)).
			FirstOrCreate(state).Error
	})
	if err != nil {
		return nil, errors.Wrap(err, "load simulation state")
	}
	return state, nil
}

func SaveState(ctx context.Context, state *SimulationState) error {
	state.UpdatedAt = time.Now().UTC()
	return errors.Wrap(withStoreRetry(ctx, func() error {
		return DB.WithContext(ctx).Save(state).Error
	}), "save simulation state")
}

// ResetUser deletes every agent, conversation and observer message of userID and
// restores an inactive state without scenario, all in one transaction.
func ResetUser(ctx context.Context, userID string) (*SimulationState, error) {
	state := freshState(userID)
	err := withStoreRetry(ctx, func() error {
		return DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
			for _, table := range []any{&Agent{}, &Conversation{}, &ObserverMessage{}} {
				if err := tx.Where("user_id = ?", userID).Delete(table).Error; err != nil {
					return err
				}
			}

			existing := &SimulationState{}
			err := tx.Where("user_id = ?", userID).First(existing).Error
			switch {
			case err == nil:
				state.ID = existing.ID
			case !errors.Is(err, gorm.ErrRecordNotFound):
				return err
			}
			return tx.Save(state).Error
		})
	})
	if err != nil {
		return nil, errors.Wrap(err, "reset simulation")
	}
	return state, nil
}
