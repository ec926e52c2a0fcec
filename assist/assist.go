// Package assist wraps a Gemini model for the career tools: resume summaries,
// learning paths, career recommendations and UI translation.
package assist

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"strings"
	"unicode/utf8"

	"hirehub/models"

	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/googleai"
)

const maxPromptInput = 20000

var errNotConfigured = models.NewUnavailableError("AI assistant is not configured")

type Service struct {
	model llms.Model
}

func NewService(model llms.Model) *Service {
	return &Service{model: model}
}

// NewGemini builds the service on Gemini. An empty key yields a service that
// answers every call with 503.
func NewGemini(ctx context.Context, apiKey, modelName string) (*Service, error) {
	if apiKey == "" {
		log.Println("GEMINI_API_KEY not set, AI assistant disabled")
		return &Service{}, nil
	}
	llm, err := googleai.New(ctx,
		googleai.WithAPIKey(apiKey),
		googleai.WithDefaultModel(modelName),
	)
	if err != nil {
		return nil, fmt.Errorf("create gemini client: %w", err)
	}
	return &Service{model: llm}, nil
}

func (s *Service) Enabled() bool {
	return s != nil && s.model != nil
}

// truncate caps s at maxPromptInput bytes without splitting a rune.
func truncate(s string) string {
	if len(s) <= maxPromptInput {
		return s
	}
	end := maxPromptInput
	for end > 0 && !utf8.RuneStart(s[end]) {
		end--
	}
	return s[:end]
}

// stripFences removes a ```json ... ``` wrapper some models add despite JSON mode.
func stripFences(s string) string {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimPrefix(s, "json")
	s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	return strings.TrimSpace(s)
}

// generate sends one prompt and decodes the JSON reply into out. No retries.
func (s *Service) generate(ctx context.Context, prompt string, out any) error {
	if !s.Enabled() {
		return errNotConfigured
	}
	resp, err := llms.GenerateFromSinglePrompt(ctx, s.model, prompt,
		llms.WithJSONMode(),
		llms.WithTemperature(0.3),
	)
	if err != nil {
		return models.NewInternalError("generate content", err)
	}
	if err := json.Unmarshal([]byte(stripFences(resp)), out); err != nil {
		return models.NewInternalError("decode model reply", err)
	}
	return nil
}

type ResumeSummaryInput struct {
	Text string `json:"text" validate:"required"`
}

type ResumeSummary struct {
	Name            string   `json:"name"`
	Headline        string   `json:"headline"`
	Summary         string   `json:"summary"`
	Skills          []string `json:"skills"`
	YearsExperience int      `json:"yearsExperience"`
	Experience      []struct {
		Title    string `json:"title"`
		Company  string `json:"company"`
		Duration string `json:"duration"`
	} `json:"experience"`
	Education []string `json:"education"`
}

const resumePrompt = `You summarize resumes for recruiters.
Return JSON only with this shape:
{"name": string, "headline": string, "summary": string, "skills": [string],
 "yearsExperience": number, "experience": [{"title": string, "company": string, "duration": string}],
 "education": [string]}
Use null or empty values for anything the resume does not state.

RESUME:
%s`

func (s *Service) SummarizeResume(ctx context.Context, in ResumeSummaryInput) (*ResumeSummary, error) {
	var out ResumeSummary
	if err := s.generate(ctx, fmt.Sprintf(resumePrompt, truncate(in.Text)), &out); err != nil {
		return nil, err
	}
	return &out, nil
}

type LearningPathInput struct {
	Name      string            `json:"name" validate:"required"`
	Age       int               `json:"age" validate:"omitempty,gte=10,lte=100"`
	Education string            `json:"education"`
	Goals     string            `json:"goals" validate:"required"`
	Interests []string          `json:"interests"`
	Responses map[string]string `json:"responses"`
}

type LearningPath struct {
	Title     string `json:"title"`
	Overview  string `json:"overview"`
	Resources []struct {
		Title string `json:"title"`
		Type  string `json:"type"`
		URL   string `json:"url"`
	} `json:"resources"`
	Milestones []struct {
		Week  int      `json:"week"`
		Title string   `json:"title"`
		Tasks []string `json:"tasks"`
	} `json:"milestones"`
}

const learningPathPrompt = `You are a career coach building a personal learning path.
Learner profile (JSON):
%s
Return JSON only with this shape:
{"title": string, "overview": string,
 "resources": [{"title": string, "type": "course"|"book"|"video"|"project", "url": string}],
 "milestones": [{"week": number, "title": string, "tasks": [string]}]}`

func (s *Service) LearningPath(ctx context.Context, in LearningPathInput) (*LearningPath, error) {
	profile, err := json.Marshal(in)
	if err != nil {
		return nil, err
	}
	var out LearningPath
	if err := s.generate(ctx, fmt.Sprintf(learningPathPrompt, truncate(string(profile))), &out); err != nil {
		return nil, err
	}
	return &out, nil
}

type CareerInput struct {
	Skills    []string `json:"skills" validate:"min=1"`
	Education string   `json:"education"`
	Location  string   `json:"location"`
	Barriers  []string `json:"barriers"`
}

type CareerRecommendation struct {
	Careers []struct {
		Title       string   `json:"title"`
		Match       int      `json:"match"`
		Why         string   `json:"why"`
		NextSteps   []string `json:"nextSteps"`
		SalaryRange string   `json:"salaryRange"`
	} `json:"careers"`
	Advice string `json:"advice"`
}

const careerPrompt = `Recommend up to five careers for this candidate.
Candidate (JSON):
%s
Take the listed barriers seriously and suggest paths that work around them.
Return JSON only with this shape:
{"careers": [{"title": string, "match": number 0-100, "why": string, "nextSteps": [string], "salaryRange": string}],
 "advice": string}`

func (s *Service) RecommendCareers(ctx context.Context, in CareerInput) (*CareerRecommendation, error) {
	candidate, err := json.Marshal(in)
	if err != nil {
		return nil, err
	}
	var out CareerRecommendation
	if err := s.generate(ctx, fmt.Sprintf(careerPrompt, truncate(string(candidate))), &out); err != nil {
		return nil, err
	}
	return &out, nil
}

type TranslateInput struct {
	TargetLanguage string            `json:"targetLanguage" validate:"required"`
	Content        map[string]string `json:"content" validate:"required,min=1"`
}

const translatePrompt = `Translate every value of this JSON object into %s.
Keep the keys unchanged and keep placeholders like {name} as they are.
Return JSON only: the same object with translated values.

%s`

// Translate returns content with each value translated. Keys the model drops
// keep their original text and keys it invents are ignored.
func (s *Service) Translate(ctx context.Context, in TranslateInput) (map[string]string, error) {
	content, err := json.Marshal(in.Content)
	if err != nil {
		return nil, err
	}
	var reply map[string]string
	if err := s.generate(ctx, fmt.Sprintf(translatePrompt, in.TargetLanguage, truncate(string(content))), &reply); err != nil {
		return nil, err
	}
	out := make(map[string]string, len(in.Content))
	for k, v := range in.Content {
		if t, ok := reply[k]; ok && t != "" {
			v = t
		}
		out[k] = v
	}
	return out, nil
}
