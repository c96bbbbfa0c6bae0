package llm

import (
	_ "embed"
	"strings"
)

//go:embed prompts/feedback.txt
var feedbackTemplate string

const feedbackFormat = `interface Feedback {
  overallScore: number; // max 100
  ATS: {
    score: number; // rate based on ATS suitability
    tips: {
      type: "good" | "improve";
      tip: string; // give 3-4 tips
    }[];
  };
  toneAndStyle: {
    score: number; // max 100
    tips: {
      type: "good" | "improve";
      tip: string; // make it a short "title" for the actual explanation
      explanation: string; // explain in detail here
    }[]; // give 3-4 tips
  };
  content: {
    score: number; // max 100
    tips: {
      type: "good" | "improve";
      tip: string; // make it a short "title" for the actual explanation
      explanation: string; // explain in detail here
    }[]; // give 3-4 tips
  };
  structure: {
    score: number; // max 100
    tips: {
      type: "good" | "improve";
      tip: string; // make it a short "title" for the actual explanation
      explanation: string; // explain in detail here
    }[]; // give 3-4 tips
  };
  skills: {
    score: number; // max 100
    tips: {
      type: "good" | "improve";
      tip: string; // make it a short "title" for the actual explanation
      explanation: string; // explain in detail here
    }[]; // give 3-4 tips
  };
}`

// BuildFeedbackPrompt renders the feedback instructions for the given input.
// The output depends only on the input fields.
func BuildFeedbackPrompt(input FeedbackInput) string {
	r := strings.NewReplacer(
		"{{job_title}}", input.JobTitle,
		"{{job_description}}", input.JobDescription,
		"{{format}}", feedbackFormat,
		"{{resume_text}}", input.ResumeText,
	)
	return r.Replace(feedbackTemplate)
}
