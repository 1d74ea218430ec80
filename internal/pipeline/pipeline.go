package pipeline

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"nutrisnap-backend/internal/analyzer"
	"nutrisnap-backend/internal/meals"
	"nutrisnap-backend/internal/nutrition"
	"nutrisnap-backend/internal/recent"
	"nutrisnap-backend/internal/shared/metrics"
	"nutrisnap-backend/internal/shared/telemetry"
	"nutrisnap-backend/internal/uploads"
)

var (
	ErrUpload  = errors.New("image upload failed")
	ErrPersist = errors.New("meal record not saved")

	ErrAnalysis        = analyzer.ErrAnalysis
	ErrInvalidResponse = nutrition.ErrInvalidResponse
)

// Outcome classifies a run. It is empty when the run failed before an analysis was obtained.
type Outcome string

const (
	OutcomeSkipped        Outcome = "skipped"
	OutcomeIdentified     Outcome = "identified"
	OutcomeUnidentifiable Outcome = "unidentifiable"
)

// Image is one captured meal photo.
type Image struct {
	Data        []byte
	ContentType string
	FileName    string
}

// Result is what a run produced. Analysis is nil unless the endpoint answered with a valid body.
type Result struct {
	MealID   string
	ImageURL string
	Analysis *nutrition.Analysis
	Saved    bool
	Outcome  Outcome
}

type Uploader interface {
	Upload(ctx context.Context, userID, fileName, contentType string, data []byte) (uploads.Upload, error)
}

type Analyzer interface {
	Analyze(ctx context.Context, fileName, contentType string, data []byte) (nutrition.Analysis, error)
}

type MealStore interface {
	Create(ctx context.Context, meal meals.Meal) (string, error)
}

// Pipeline runs capture, upload, analysis, persistence and cache update for one photo.
type Pipeline struct {
	Uploads  Uploader
	Analyzer Analyzer
	Meals    MealStore
	Caches   recent.Resolver
	Now      func() time.Time
}

// Run processes img for userID. An empty image or user id is a silent no-op.
// Steps run strictly in order and the first failure aborts the rest; a
// persistence failure still returns the analysis with Saved=false.
func (p *Pipeline) Run(ctx context.Context, userID string, img Image) (Result, error) {
	if len(img.Data) == 0 || strings.TrimSpace(userID) == "" {
		metrics.IncScanSkipped()
		telemetry.Info("scan.skipped", map[string]any{
			"has_image": len(img.Data) > 0,
			"has_user":  strings.TrimSpace(userID) != "",
		})
		return Result{Outcome: OutcomeSkipped}, nil
	}

	start := p.now()
	metrics.IncScanStarted()
	defer func() {
		metrics.ObserveScanDurationMs(float64(p.now().Sub(start).Microseconds()) / 1000.0)
	}()

	up, err := p.Uploads.Upload(ctx, userID, img.FileName, img.ContentType, img.Data)
	if err != nil {
		metrics.IncStepFailure(metrics.StepUpload)
		telemetry.Error("scan.upload_failed", map[string]any{"user_id": userID, "error": err})
		return Result{}, fmt.Errorf("%w: %w", ErrUpload, err)
	}
	telemetry.Info("scan.uploaded", map[string]any{
		"user_id":     userID,
		"storage_key": up.StorageKey,
		"size_bytes":  up.SizeBytes,
	})

	analysis, err := p.Analyzer.Analyze(ctx, img.FileName, img.ContentType, img.Data)
	if err != nil {
		res := Result{ImageURL: up.URL}
		if errors.Is(err, ErrInvalidResponse) {
			metrics.IncStepFailure(metrics.StepParse)
			telemetry.Error("scan.invalid_response", map[string]any{"user_id": userID, "error": err})
			return res, err
		}
		metrics.IncStepFailure(metrics.StepAnalyze)
		telemetry.Error("scan.analysis_failed", map[string]any{"user_id": userID, "error": err})
		if !errors.Is(err, ErrAnalysis) {
			err = fmt.Errorf("%w: %w", ErrAnalysis, err)
		}
		return res, err
	}

	res := Result{
		ImageURL: up.URL,
		Analysis: &analysis,
		Outcome:  outcomeOf(analysis),
	}
	metrics.IncScanOutcome(string(res.Outcome))
	telemetry.Info("scan.analyzed", map[string]any{
		"user_id":          userID,
		"meal_name":        analysis.MealName,
		"confidence_score": analysis.ConfidenceScore,
		"outcome":          string(res.Outcome),
	})

	id, err := p.Meals.Create(ctx, meals.Meal{
		UserID:    userID,
		ImageURL:  up.URL,
		Analysis:  analysis,
		CreatedAt: start.UTC(),
	})
	if err != nil {
		metrics.IncStepFailure(metrics.StepPersist)
		telemetry.Error("scan.persist_failed", map[string]any{"user_id": userID, "error": err})
		return res, fmt.Errorf("%w: %w", ErrPersist, err)
	}
	res.MealID = id
	res.Saved = true
	telemetry.Info("scan.persisted", map[string]any{"user_id": userID, "meal_id": id})

	if p.Caches != nil {
		p.Caches.For(userID).Insert(ctx, id, analysis, up.URL)
	}
	return res, nil
}

func outcomeOf(a nutrition.Analysis) Outcome {
	if nutrition.IsUnidentifiable(a) {
		return OutcomeUnidentifiable
	}
	return OutcomeIdentified
}

func (p *Pipeline) now() time.Time {
	if p.Now != nil {
		return p.Now()
	}
	return time.Now()
}
