package resumes

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"time"

	"resumecrack-backend/internal/extract"
	"resumecrack-backend/internal/ident"
	"resumecrack-backend/internal/llm"
	"resumecrack-backend/internal/raster"
	"resumecrack-backend/internal/shared/metrics"
	"resumecrack-backend/internal/shared/storage/object"
	"resumecrack-backend/internal/shared/telemetry"
)

// Pipeline turns a raw uploaded PDF into a persisted, scored record. Each
// submission owns its PipelineRun exclusively; submissions do not coordinate
// with each other.
type Pipeline struct {
	Objects object.ObjectStore
	Records *Store
	Raster  raster.Rasterizer
	LLM     llm.Client
	NewID   ident.Generator
	Now     func() time.Time
	// Extract pulls plain text out of the uploaded PDF. Defaults to
	// extract.TextFromPDF.
	Extract func([]byte) (string, error)
}

// NewPipeline wires the ingestion pipeline with its collaborators.
func NewPipeline(objects object.ObjectStore, records *Store, rasterizer raster.Rasterizer, client llm.Client, newID ident.Generator) *Pipeline {
	return &Pipeline{
		Objects: objects,
		Records: records,
		Raster:  rasterizer,
		LLM:     client,
		NewID:   newID,
		Now:     time.Now,
		Extract: extract.TextFromPDF,
	}
}

// SubmitInput carries one submission's file and job context.
type SubmitInput struct {
	UserID         string
	FileName       string
	File           []byte
	CompanyName    string
	JobTitle       string
	JobDescription string
	// Observer receives advisory stage updates. May be nil.
	Observer Observer
}

// Submit runs the ingestion stages strictly in order. A stage failure halts
// the run and surfaces a PipelineError with the stage attached; blobs
// uploaded by earlier stages are left in place. Submit is not idempotent:
// identical inputs produce distinct records and distinct blobs.
func (p *Pipeline) Submit(ctx context.Context, input SubmitInput) (*ResumeRecord, error) {
	metrics.IncSubmissionStarted()
	start := time.Now()
	run := newPipelineRun(input.Observer)

	record, err := p.run(ctx, run, input)
	metrics.ObserveSubmissionDurationMs(float64(time.Since(start).Microseconds()) / 1000.0)
	if err != nil {
		metrics.IncSubmissionFailed()
		failedStage := run.Stage
		var perr *PipelineError
		if errors.As(err, &perr) {
			failedStage = perr.Stage
		}
		run.fail(err)
		telemetry.Error("pipeline.failed", map[string]any{
			"stage":   failedStage.String(),
			"user_id": input.UserID,
			"error":   err.Error(),
		})
		return nil, err
	}
	metrics.IncSubmissionCompleted()
	return record, nil
}

func (p *Pipeline) run(ctx context.Context, run *PipelineRun, input SubmitInput) (*ResumeRecord, error) {
	run.advance(StageUploading)
	resumePath, _, _, err := p.Objects.Save(ctx, input.UserID, input.FileName, bytes.NewReader(input.File))
	if err != nil {
		return nil, newPipelineError(StageUploading, ErrUploadFailure, err)
	}

	run.advance(StageConverting)
	image, err := p.Raster.FirstPagePNG(ctx, input.File)
	if err != nil {
		return nil, newPipelineError(StageConverting, ErrConversionFailure, err)
	}

	run.advance(StageUploadingImage)
	imagePath, _, _, err := p.Objects.Save(ctx, input.UserID, imageFileName(input.FileName), bytes.NewReader(image))
	if err != nil {
		return nil, newPipelineError(StageUploadingImage, ErrUploadFailure, err)
	}

	run.advance(StageAnalyzing)
	resumeText, err := p.extract(input.File)
	if err != nil {
		return nil, newPipelineError(StageAnalyzing, ErrAnalysisFailure, err)
	}
	raw, err := p.LLM.Feedback(ctx, llm.FeedbackInput{
		ResumeText:     resumeText,
		JobTitle:       input.JobTitle,
		JobDescription: input.JobDescription,
	})
	if err != nil {
		return nil, newPipelineError(StageAnalyzing, ErrAnalysisFailure, err)
	}
	feedback, err := ParseFeedback(raw)
	if err != nil {
		return nil, newPipelineError(StageAnalyzing, ErrParseFailure, err)
	}

	run.advance(StageSaving)
	record := &ResumeRecord{
		ID:             p.NewID(),
		ResumePath:     resumePath,
		ImagePath:      imagePath,
		CompanyName:    input.CompanyName,
		JobTitle:       input.JobTitle,
		JobDescription: input.JobDescription,
		Feedback:       feedback,
		CreatedAt:      p.now(),
		Deleted:        false,
	}
	if err := p.Records.Put(ctx, record); err != nil {
		return nil, newPipelineError(StageSaving, ErrPersistFailure, err)
	}

	run.advance(StageComplete)
	return record, nil
}

func (p *Pipeline) extract(data []byte) (string, error) {
	if p.Extract != nil {
		return p.Extract(data)
	}
	return extract.TextFromPDF(data)
}

func (p *Pipeline) now() time.Time {
	if p.Now != nil {
		return p.Now()
	}
	return time.Now()
}

func imageFileName(fileName string) string {
	base := fileName
	if idx := strings.LastIndex(base, "."); idx > 0 {
		base = base[:idx]
	}
	if base == "" {
		base = "resume"
	}
	return base + ".png"
}
