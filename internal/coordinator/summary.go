package coordinator

import (
	"github.com/julianstephens/lifeos/internal/models"
	"github.com/julianstephens/lifeos/internal/progress"
	"github.com/julianstephens/lifeos/internal/streak"
)

// Summary is the dashboard headline computed from the cached collections.
type Summary struct {
	HabitsDue       int `json:"habits_due"`
	HabitsCompleted int `json:"habits_completed"`
	OverallStreak   int `json:"overall_streak"`
	ActiveGoals     int `json:"active_goals"`
	ActiveLearning  int `json:"active_learning"`
	ActiveProjects  int `json:"active_projects"`
	BucketAchieved  int `json:"bucket_achieved"`
	BucketTotal     int `json:"bucket_total"`
}

func (c *Coordinator) Summary() Summary {
	today := c.today()
	var s Summary

	var active []models.HabitWithCompletions
	for _, h := range c.habits.Read().Items {
		if h.IsArchived {
			continue
		}
		active = append(active, h)
		if !progress.IsDueToday(h.Habit, today) {
			continue
		}
		s.HabitsDue++
		if progress.IsCompletedOn(h.Completions, today) {
			s.HabitsCompleted++
		}
	}
	s.OverallStreak = streak.Overall(active, today)

	for _, g := range c.goals.Read().Items {
		if g.Status == models.GoalStatusActive {
			s.ActiveGoals++
		}
	}
	for _, i := range c.learning.Read().Items {
		if i.Status == models.LearningStatusActive {
			s.ActiveLearning++
		}
	}
	for _, p := range c.projects.Read().Items {
		if p.Status == models.ProjectStatusActive {
			s.ActiveProjects++
		}
	}
	for _, b := range c.bucket.Read().Items {
		s.BucketTotal++
		if b.IsCompleted {
			s.BucketAchieved++
		}
	}
	return s
}
