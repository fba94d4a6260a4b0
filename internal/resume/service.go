package resume

import (
	"context"
	"encoding/json"
	"regexp"
	"strings"

	"mediverse/internal/ai"
)

const analysisPrompt = `Reply ONLY with valid JSON. No markdown.

Return:
{
  "improvements": [],
  "extracted_skills": [],
  "skill_gaps": [],
  "score": 0,
  "recommended_roles": [],
  "ats_keywords": [],
  "section_feedback": {
    "summary": "",
    "skills": "",
    "experience": "",
    "education": "",
    "projects": ""
  }
}

Resume text:
`

// Analysis is the model's structured verdict on a resume.
type Analysis struct {
	Improvements     []string          `json:"improvements"`
	ExtractedSkills  []string          `json:"extracted_skills"`
	SkillGaps        []string          `json:"skill_gaps"`
	Score            float64           `json:"score"`
	RecommendedRoles []string          `json:"recommended_roles"`
	ATSKeywords      []string          `json:"ats_keywords"`
	SectionFeedback  map[string]string `json:"section_feedback"`

	// Raw is set instead of the fields above when the model replies with
	// something that is not parseable JSON.
	Raw string `json:"raw,omitempty"`
}

var (
	joinedLines  = regexp.MustCompile(`([a-z])\n([a-z])`)
	blankRuns    = regexp.MustCompile(`\n{2,}`)
	spaceRuns    = regexp.MustCompile(`[ \t]{2,}`)
	caseBoundary = regexp.MustCompile(`([a-z])([A-Z])`)
)

// CleanText undoes the common artifacts of PDF extraction: broken lines,
// duplicated whitespace and glued words.
func CleanText(text string) string {
	cleaned := joinedLines.ReplaceAllString(text, "$1 $2")
	cleaned = blankRuns.ReplaceAllString(cleaned, "\n")
	cleaned = spaceRuns.ReplaceAllString(cleaned, " ")
	cleaned = caseBoundary.ReplaceAllString(cleaned, "$1 $2")
	return strings.TrimSpace(cleaned)
}

type ResumeService struct {
	ai *ai.Client
}

func NewResumeService(aiClient *ai.Client) *ResumeService {
	return &ResumeService{ai: aiClient}
}

// Analyze extracts text from the uploaded file and asks the model for a
// structured review. The upload itself is never stored.
func (s *ResumeService) Analyze(ctx context.Context, filename string, data []byte) (*Analysis, error) {
	text, err := ExtractText(filename, data)
	if err != nil {
		return nil, err
	}

	raw, err := s.ai.Generate(ctx, analysisPrompt+CleanText(text), 0.2, 2048)
	if err != nil {
		return nil, err
	}

	return parseAnalysis(raw), nil
}

// parseAnalysis slices the response between the first '{' and the last '}'
// before decoding, since models wrap JSON in prose despite instructions. A
// reply that still fails to decode is returned raw rather than dropped.
func parseAnalysis(raw string) *Analysis {
	first := strings.Index(raw, "{")
	last := strings.LastIndex(raw, "}")

	if first >= 0 && last > first {
		var analysis Analysis
		if err := json.Unmarshal([]byte(raw[first:last+1]), &analysis); err == nil {
			return &analysis
		}
	}
	return &Analysis{Raw: raw}
}
