package resumes

// Stage is one step of the ingestion pipeline. Submissions advance through
// the stages strictly in order; a failure moves the run to StageFailed and
// no later stage executes.
type Stage string

const (
	StageQueued         Stage = "queued"
	StageUploading      Stage = "uploading"
	StageConverting     Stage = "converting"
	StageUploadingImage Stage = "uploading-image"
	StageAnalyzing      Stage = "analyzing"
	StageSaving         Stage = "saving"
	StageComplete       Stage = "complete"
	StageFailed         Stage = "failed"
)

func (s Stage) String() string { return string(s) }

// transitions encodes the only legal successor of each stage. Any stage may
// also move to StageFailed.
var transitions = map[Stage]Stage{
	StageQueued:         StageUploading,
	StageUploading:      StageConverting,
	StageConverting:     StageUploadingImage,
	StageUploadingImage: StageAnalyzing,
	StageAnalyzing:      StageSaving,
	StageSaving:         StageComplete,
}

// CanTransition reports whether moving from one stage to the next is legal.
func CanTransition(from, to Stage) bool {
	if to == StageFailed {
		return from != StageComplete && from != StageFailed
	}
	return transitions[from] == to
}

// statusMessages are the human-readable progress strings emitted to the
// observer at each stage boundary.
var statusMessages = map[Stage]string{
	StageQueued:         "Preparing your submission...",
	StageUploading:      "Uploading the file...",
	StageConverting:     "Converting to image...",
	StageUploadingImage: "Uploading the image...",
	StageAnalyzing:      "Analyzing your resume...",
	StageSaving:         "Saving your results...",
	StageComplete:       "Analysis complete, redirecting...",
	StageFailed:         "Something went wrong.",
}

// StatusMessage returns the progress message for a stage.
func StatusMessage(s Stage) string {
	return statusMessages[s]
}

// PipelineRun tracks one submission's current stage. It is owned by a single
// submission and never shared.
type PipelineRun struct {
	Stage    Stage
	Message  string
	observer Observer
}

// Observer receives advisory progress updates. It carries no correctness
// obligation and may be nil.
type Observer func(stage Stage, message string)

func newPipelineRun(observer Observer) *PipelineRun {
	run := &PipelineRun{observer: observer}
	run.Stage = StageQueued
	run.Message = StatusMessage(StageQueued)
	run.notify()
	return run
}

// advance moves the run to the next stage. It panics on an illegal
// transition since that is a programming error, not a runtime condition.
func (r *PipelineRun) advance(to Stage) {
	if !CanTransition(r.Stage, to) {
		panic("illegal stage transition: " + string(r.Stage) + " -> " + string(to))
	}
	r.Stage = to
	r.Message = StatusMessage(to)
	r.notify()
}

func (r *PipelineRun) fail(err error) {
	r.Stage = StageFailed
	r.Message = StatusMessage(StageFailed)
	if err != nil {
		r.Message = err.Error()
	}
	r.notify()
}

func (r *PipelineRun) notify() {
	if r.observer != nil {
		r.observer(r.Stage, r.Message)
	}
}
