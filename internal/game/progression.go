// Package game holds the progression rules shared by task completion,
// stats and the achievement evaluator. Everything here is pure: the
// same numbers go in, the same numbers come out.
package game

import "taskForestAPI/internal/task"

const (
	// ExperiencePerLevel is the width of every level band.
	ExperiencePerLevel = 100

	// MaxTreeStage caps the avatar growth. Levels keep climbing past it.
	MaxTreeStage = 10

	// DefaultReward is used when a task carries no usable reward.
	DefaultReward = 25

	MaxHitPoints           = 100
	HitPointsPerCompletion = 5
)

// LevelForExperience maps accumulated experience to a level, starting at 1.
func LevelForExperience(experience int) int {
	return experience/ExperiencePerLevel + 1
}

// TreeStageForExperience is the level clamped to the visual stage range.
func TreeStageForExperience(experience int) int {
	stage := LevelForExperience(experience)
	if stage > MaxTreeStage {
		return MaxTreeStage
	}
	return stage
}

// ExperienceToNextLevel returns the absolute XP threshold of the next level.
func ExperienceToNextLevel(experience int) int {
	return LevelForExperience(experience) * ExperiencePerLevel
}

type Progress struct {
	Current    int `json:"current"`
	Max        int `json:"max"`
	Percentage int `json:"percentage"`
}

// ProgressWithinLevel reports position inside the current level band.
// Current is always 0-99; the band is never shown as full.
func ProgressWithinLevel(experience int) Progress {
	current := experience % ExperiencePerLevel
	return Progress{
		Current:    current,
		Max:        ExperiencePerLevel,
		Percentage: current,
	}
}

// RewardForPriority maps task priority to its experience reward.
// Anything unrecognized falls back to the medium reward.
func RewardForPriority(priority task.Priority) int {
	switch priority {
	case task.PriorityLow:
		return 10
	case task.PriorityMedium:
		return 25
	case task.PriorityHigh:
		return 50
	case task.PriorityCritical:
		return 100
	default:
		return DefaultReward
	}
}

// RestoreHitPoints applies the per-completion HP restore, capped at max.
func RestoreHitPoints(hitPoints int) int {
	hp := hitPoints + HitPointsPerCompletion
	if hp > MaxHitPoints {
		return MaxHitPoints
	}
	return hp
}

type StageInfo struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

var treeStages = [MaxTreeStage]StageInfo{
	{Name: "Seedling", Description: "Just starting to grow"},
	{Name: "Sprout", Description: "First leaves appearing"},
	{Name: "Young Sapling", Description: "Growing steadily"},
	{Name: "Sapling", Description: "Getting stronger"},
	{Name: "Young Tree", Description: "Developing a strong trunk"},
	{Name: "Growing Tree", Description: "Branches spreading wide"},
	{Name: "Mature Tree", Description: "Full of life and energy"},
	{Name: "Strong Tree", Description: "A pillar of the forest"},
	{Name: "Ancient Tree", Description: "Wise and mighty"},
	{Name: "Legendary Tree", Description: "A beacon of productivity"},
}

// TreeStageInfo returns the display info for a 1-10 stage.
func TreeStageInfo(stage int) StageInfo {
	if stage < 1 {
		stage = 1
	}
	if stage > MaxTreeStage {
		stage = MaxTreeStage
	}
	return treeStages[stage-1]
}
