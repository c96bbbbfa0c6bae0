// Package resumes holds the ingestion pipeline, record store and wipe
// operation for resume submissions.
package resumes

import "time"

// ResumeRecord is a persisted resume submission.
// resumePath and imagePath reference blobs in the object store and are set
// once at creation. feedback is nil until analysis completes.
type ResumeRecord struct {
	ID             string    `json:"id"`
	ResumePath     string    `json:"resumePath"`
	ImagePath      string    `json:"imagePath"`
	CompanyName    string    `json:"companyName"`
	JobTitle       string    `json:"jobTitle"`
	JobDescription string    `json:"jobDescription"`
	Feedback       *Feedback `json:"feedback,omitempty"`
	CreatedAt      time.Time `json:"createdAt"`
	Deleted        bool      `json:"deleted"`
}

// Feedback is the structured analysis result parsed from the model output.
type Feedback struct {
	OverallScore int         `json:"overallScore"`
	ATS          ATSCategory `json:"ATS"`
	ToneAndStyle Category    `json:"toneAndStyle"`
	Content      Category    `json:"content"`
	Structure    Category    `json:"structure"`
	Skills       Category    `json:"skills"`
}

// ATSCategory scores ATS suitability. Its tips carry no explanation field.
type ATSCategory struct {
	Score int      `json:"score"`
	Tips  []ATSTip `json:"tips"`
}

// Category scores one aspect of the resume.
type Category struct {
	Score int   `json:"score"`
	Tips  []Tip `json:"tips"`
}

// ATSTip is a short suggestion without a detailed explanation.
type ATSTip struct {
	Type string `json:"type"`
	Tip  string `json:"tip"`
}

// Tip pairs a short title with a detailed explanation.
type Tip struct {
	Type        string `json:"type"`
	Tip         string `json:"tip"`
	Explanation string `json:"explanation"`
}
