package services

import (
	"context"
	"time"

	"github.com/cinebrain/releases/internal/models"
)

// Trigger labels what started a pipeline run
type Trigger string

const (
	TriggerInitial Trigger = "initial"
	TriggerSoft    Trigger = "soft"
	TriggerHard    Trigger = "hard"
	TriggerManual  Trigger = "manual"
)

// PipelineResult is the outcome of one pipeline run
type PipelineResult struct {
	Items     []models.ContentItem
	FromCache bool
	// Failed lists the categories that produced no items in this run
	Failed      []string
	GeneratedAt time.Time
}

// ReleasePipeline defines the interface for building the current new-releases selection
type ReleasePipeline interface {
	// Run returns the cached selection when one is fresh, otherwise fetches every
	// category, ranks the merged items and caches the top N.
	Run(ctx context.Context, trigger Trigger) (*PipelineResult, error)
	// Invalidate drops the cached selection so the next Run refetches
	Invalidate()
}
