package coordinator

import (
	"context"
	"fmt"

	"github.com/julianstephens/lifeos/internal/cache"
	"github.com/julianstephens/lifeos/internal/logger"
	"github.com/julianstephens/lifeos/internal/models"
)

type projectList = []models.Project

func byProjectID(id string) func(models.Project) bool {
	return func(p models.Project) bool { return p.ID == id }
}

func (c *Coordinator) CreateProject(ctx context.Context, in models.CreateProjectInput) error {
	a := action{collection: CollectionProjects, name: "create", failure: "create project"}
	if err := c.validator.Struct(in); err != nil {
		return c.invalid(a, err)
	}
	a.success = fmt.Sprintf("Created project %q", in.Name)

	placeholder := models.NewProject(tempID(), c.userID, in, c.Now())
	return run(ctx, c, c.projects, a, cache.Mutation[models.Project]{
		Optimistic: func(cur projectList) projectList { return append(cur, placeholder) },
		Commit: func(ctx context.Context) (cache.Reconcile[models.Project], error) {
			created, err := c.provider.CreateProject(ctx, in)
			if err != nil {
				return nil, err
			}
			return func(confirmed projectList) projectList {
				return upsertWhere(confirmed, byProjectID(created.ID), created)
			}, nil
		},
	})
}

func (c *Coordinator) UpdateProject(ctx context.Context, id string, patch models.UpdateProjectInput) error {
	a := action{collection: CollectionProjects, name: "update", failure: "update project", success: "Updated project"}
	switch {
	case patch.Status != nil:
		a.name = "status"
		a.success = fmt.Sprintf("Project marked %s", *patch.Status)
	case patch.GoalID != nil && *patch.GoalID == "":
		a.name, a.success = "unlink_goal", "Project unlinked from its goal"
	case patch.GoalID != nil:
		a.name, a.success = "link_goal", "Project linked to goal"
	}
	if err := c.validator.ID("id", id); err != nil {
		return c.invalid(a, err)
	}
	if err := c.validator.Struct(patch); err != nil {
		return c.invalid(a, err)
	}

	now := c.Now()
	return run(ctx, c, c.projects, a, cache.Mutation[models.Project]{
		Optimistic: func(cur projectList) projectList {
			return replaceWhere(cur, byProjectID(id), func(p models.Project) models.Project {
				return models.ApplyProjectPatch(p, patch, now)
			})
		},
		Commit: func(ctx context.Context) (cache.Reconcile[models.Project], error) {
			updated, err := c.provider.UpdateProject(ctx, id, patch)
			if err != nil {
				return nil, err
			}
			return func(confirmed projectList) projectList {
				return replaceWhere(confirmed, byProjectID(id), func(models.Project) models.Project { return updated })
			}, nil
		},
	})
}

// SetProjectStatus moves a project between idea, planned, active, paused,
// completed and abandoned.
func (c *Coordinator) SetProjectStatus(ctx context.Context, id string, status models.ProjectStatus) error {
	return c.UpdateProject(ctx, id, models.UpdateProjectInput{Status: &status})
}

// LinkProject points a project at goalID; an empty goalID unlinks it.
func (c *Coordinator) LinkProject(ctx context.Context, id, goalID string) error {
	return c.UpdateProject(ctx, id, models.UpdateProjectInput{GoalID: &goalID})
}

func (c *Coordinator) DeleteProject(ctx context.Context, id string) error {
	a := action{collection: CollectionProjects, name: "delete", failure: "delete project", success: "Deleted project"}
	if err := c.validator.ID("id", id); err != nil {
		return c.invalid(a, err)
	}

	drop := func(cur projectList) projectList { return removeWhere(cur, byProjectID(id)) }
	return run(ctx, c, c.projects, a, cache.Mutation[models.Project]{
		Optimistic: drop,
		Commit: func(ctx context.Context) (cache.Reconcile[models.Project], error) {
			if err := c.provider.DeleteProject(ctx, id); err != nil {
				return nil, err
			}
			return drop, nil
		},
	})
}

// ProjectsForGoal returns the cached projects linked to goalID.
func (c *Coordinator) ProjectsForGoal(goalID string) []models.Project {
	var out []models.Project
	for _, p := range c.projects.Read().Items {
		if p.GoalID != nil && *p.GoalID == goalID {
			out = append(out, p)
		}
	}
	return out
}

// unlinkGoal mirrors the storage-side ON DELETE SET NULL in the projects
// cache once a goal is gone.
func (c *Coordinator) unlinkGoal(ctx context.Context, goalID string) {
	unlink := func(cur projectList) projectList {
		return replaceWhere(cur, func(p models.Project) bool { return p.GoalID != nil && *p.GoalID == goalID },
			func(p models.Project) models.Project { return models.UnlinkGoal(p, goalID) })
	}
	err := c.projects.Mutate(ctx, cache.Mutation[models.Project]{
		Name:       "unlink_goal",
		Optimistic: unlink,
		Commit: func(context.Context) (cache.Reconcile[models.Project], error) {
			return unlink, nil
		},
	})
	if err != nil {
		logger.Debug("Could not unlink projects from deleted goal", "goal", goalID, "error", err)
	}
	c.refreshInBackground(c.projects)
}
