package scenario

import (
	"context"
	"fmt"
	"net/http"
	"slices"

	"github.com/Laisky/errors/v2"

	"github.com/agentsim/simcheck/common/random"
	"github.com/agentsim/simcheck/dto"
	"github.com/agentsim/simcheck/harness/client"
)

// Favorites covers the saved-agent library and its favorite flag.
func Favorites() Scenario {
	return Scenario{
		Name:        "favorites",
		Description: "saved agents keep is_favorite, toggle persists, unknown and foreign ids refused, update and delete",
		Steps:       favoritesSteps,
	}
}

func (e *Env) createSaved(ctx context.Context, spec dto.SavedAgentSpec) (dto.SavedAgent, error) {
	ok, body := e.Runner.Check(ctx, client.Request{
		Name:         fmt.Sprintf("save agent %s (favorite %t)", spec.Name, spec.IsFavorite),
		Method:       http.MethodPost,
		Path:         "/saved-agents",
		Body:         spec,
		ExpectStatus: http.StatusOK,
		ExpectAnyOf:  []int{http.StatusCreated},
		ExpectKeys:   []string{"id", "is_favorite"},
	})
	if !ok {
		return dto.SavedAgent{}, errors.Errorf("could not save agent %q", spec.Name)
	}
	var saved dto.SavedAgent
	if err := body.Decode(&saved); err != nil {
		return dto.SavedAgent{}, err
	}
	return saved, nil
}

func (e *Env) listSaved(ctx context.Context, name string) ([]dto.SavedAgent, error) {
	ok, body := e.Runner.Check(ctx, client.Request{Name: name, Path: "/saved-agents"})
	if !ok {
		return nil, errors.New("could not list saved agents")
	}
	return decodeList[dto.SavedAgent](body, "saved_agents", "agents")
}

// savedByID finds id in the caller's library.
func (e *Env) savedByID(ctx context.Context, name, id string) (dto.SavedAgent, bool) {
	list, err := e.listSaved(ctx, name)
	if err != nil {
		return dto.SavedAgent{}, false
	}
	i := slices.IndexFunc(list, func(s dto.SavedAgent) bool { return s.ID == id })
	if i < 0 {
		return dto.SavedAgent{}, false
	}
	return list[i], true
}

func (e *Env) toggleFavorite(ctx context.Context, name, id string, status int) (dto.SavedAgent, bool) {
	req := client.Request{
		Name:         name,
		Method:       http.MethodPut,
		Path:         "/saved-agents/" + id + "/favorite",
		ExpectStatus: status,
	}
	if status == http.StatusOK {
		req.ExpectKeys = []string{"is_favorite"}
	}
	ok, body := e.Runner.Check(ctx, req)
	var saved dto.SavedAgent
	if ok && status == http.StatusOK {
		if err := body.Decode(&saved); err != nil {
			return saved, false
		}
	}
	return saved, ok
}

func favoritesSteps() []Step {
	var favorite, plain dto.SavedAgent

	return []Step{
		{
			Name: "library requires auth",
			Run: func(ctx context.Context, env *Env) error {
				env.forbidsAnonymous(ctx, client.Request{Method: http.MethodGet, Path: "/saved-agents"})
				env.forbidsAnonymous(ctx, client.Request{
					Method: http.MethodPut,
					Path:   "/saved-agents/" + random.GetUUID() + "/favorite",
				})
				return nil
			},
		},
		{
			Name: "save with favorite flag",
			Run: func(ctx context.Context, env *Env) error {
				var err error
				if favorite, err = env.createSaved(ctx, dto.SavedAgentSpec{AgentSpec: env.Factory.Agent(), IsFavorite: true}); err != nil {
					return err
				}
				if plain, err = env.createSaved(ctx, dto.SavedAgentSpec{AgentSpec: env.Factory.Agent()}); err != nil {
					return err
				}
				env.Runner.Assert("favorite flag kept on create", favorite.IsFavorite, "is_favorite false")
				env.Runner.Assert("plain agent not favorite", !plain.IsFavorite, "is_favorite true")
				return nil
			},
		},
		{
			Name: "toggle persists",
			Run: func(ctx context.Context, env *Env) error {
				toggled, ok := env.toggleFavorite(ctx, "toggle favorite on", plain.ID, http.StatusOK)
				if ok {
					env.Runner.Assert("toggle response flips flag", toggled.IsFavorite, "is_favorite still false")
				}
				if stored, found := env.savedByID(ctx, "library after toggle", plain.ID); found {
					env.Runner.Assert("toggle persisted", stored.IsFavorite, "stored is_favorite false")
				} else {
					env.Runner.Assert("toggled agent listed", false, "saved agent "+plain.ID+" missing")
				}

				if toggled, ok = env.toggleFavorite(ctx, "toggle favorite off", plain.ID, http.StatusOK); ok {
					env.Runner.Assert("second toggle flips back", !toggled.IsFavorite, "is_favorite still true")
				}
				return nil
			},
		},
		{
			Name: "unknown id is 404",
			Run: func(ctx context.Context, env *Env) error {
				env.toggleFavorite(ctx, "toggle unknown saved agent is 404", random.GetUUID(), http.StatusNotFound)
				return nil
			},
		},
		{
			Name: "foreign caller cannot toggle",
			Run: func(ctx context.Context, env *Env) error {
				s, err := env.Auth.Register(ctx)
				if err != nil {
					return err
				}
				env.as(s).toggleFavorite(ctx, "foreign toggle is 404", favorite.ID, http.StatusNotFound)
				if stored, found := env.savedByID(ctx, "library after foreign toggle", favorite.ID); found {
					env.Runner.Assert("foreign toggle left flag intact", stored.IsFavorite, "is_favorite flipped by another caller")
				}
				return nil
			},
		},
		{
			Name: "update saved agent",
			Run: func(ctx context.Context, env *Env) error {
				spec := dto.SavedAgentSpec{AgentSpec: favorite.AgentSpec, IsFavorite: true}
				spec.Name = favorite.Name + " Revised"
				spec.Goal = "Revise the plan after the first review."
				env.Runner.Check(ctx, client.Request{
					Name:   "update saved agent",
					Method: http.MethodPut,
					Path:   "/saved-agents/" + favorite.ID,
					Body:   spec,
				})
				if stored, found := env.savedByID(ctx, "library after update", favorite.ID); found {
					env.Runner.Assert("saved agent update persisted", stored.Name == spec.Name && stored.Goal == spec.Goal,
						fmt.Sprintf("name %q goal %q", stored.Name, stored.Goal))
				}
				return nil
			},
		},
		{
			Name:   "delete saved agents",
			Always: true,
			Run: func(ctx context.Context, env *Env) error {
				for _, s := range []dto.SavedAgent{favorite, plain} {
					if s.ID == "" {
						continue
					}
					env.Runner.Check(ctx, client.Request{
						Name:         "delete saved agent " + s.Name,
						Method:       http.MethodDelete,
						Path:         "/saved-agents/" + s.ID,
						ExpectStatus: http.StatusOK,
						ExpectAnyOf:  []int{http.StatusNoContent},
					})
				}
				if favorite.ID == "" {
					return nil
				}
				if _, found := env.savedByID(ctx, "library after delete", favorite.ID); found {
					env.Runner.Assert("deleted saved agent gone", false, "saved agent "+favorite.ID+" still listed")
				}
				env.Runner.Check(ctx, client.Request{
					Name:         "delete saved agent twice is 404",
					Method:       http.MethodDelete,
					Path:         "/saved-agents/" + favorite.ID,
					ExpectStatus: http.StatusNotFound,
				})
				return nil
			},
		},
	}
}
