package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"github.com/hqanh/scoresheet/config"
	"github.com/hqanh/scoresheet/internal/dto"
	"github.com/hqanh/scoresheet/internal/model"
	"github.com/rs/zerolog/log"
	"google.golang.org/api/option"
)

// ErrExtractionFailed is the single failure signal of the extraction
// pipeline. Transport faults, empty responses and non-conforming payloads
// all surface as this error; no partial record is ever returned alongside
// it. Recovery is operator-driven: retake the photo and submit again.
var ErrExtractionFailed = errors.New("sheet extraction failed")

const extractionInstruction = `You are reading a photographed student answer sheet.
Extract the student's name, roll number, class name, the exam name printed on
the sheet, and the numeric score for each of the five subjects: math, science,
english, history and computer. Scores are integers from 0 to 100. If a field
is not legible, leave it out rather than guessing.`

// sheetSchema is the strict output contract sent with every request. The
// five subject scores are required; the identity strings may be omitted
// when illegible and are defaulted downstream by the normalizer.
func sheetSchema() *genai.Schema {
	markProps := make(map[string]*genai.Schema, len(model.SubjectKeys))
	for _, subject := range model.SubjectKeys {
		markProps[subject] = &genai.Schema{Type: genai.TypeInteger}
	}
	return &genai.Schema{
		Type: genai.TypeObject,
		Properties: map[string]*genai.Schema{
			"name":       {Type: genai.TypeString},
			"roll_no":    {Type: genai.TypeString},
			"class_name": {Type: genai.TypeString},
			"exam_name":  {Type: genai.TypeString},
			"marks": {
				Type:       genai.TypeObject,
				Properties: markProps,
				Required:   model.SubjectKeys,
			},
		},
		Required: []string{"marks"},
	}
}

// ExtractionProvider is any capability that accepts an image plus an
// output schema and returns JSON conforming to that schema. The concrete
// provider is swappable; nothing downstream of this interface knows which
// vendor answered.
type ExtractionProvider interface {
	GenerateStructured(ctx context.Context, mimeType string, image []byte, instruction string, schema *genai.Schema) ([]byte, error)
}

type geminiProvider struct {
	client    *genai.Client
	modelName string
}

// NewGeminiProvider wires the Gemini vision model as the extraction
// capability. With no API key configured the provider is non-functional
// and every call fails cleanly; the rest of the application still runs.
func NewGeminiProvider(cfg *config.Config) (ExtractionProvider, error) {
	if cfg.GeminiApiKey == "" {
		log.Warn().Msg("GEMINI_API_KEY is not set. Sheet extraction will be non-functional.")
		return &geminiProvider{client: nil}, nil
	}
	ctx := context.Background()
	client, err := genai.NewClient(ctx, option.WithAPIKey(cfg.GeminiApiKey))
	if err != nil {
		return nil, fmt.Errorf("failed to initialize Gemini client: %w", err)
	}
	return &geminiProvider{client: client, modelName: "gemini-1.5-flash"}, nil
}

func (p *geminiProvider) GenerateStructured(ctx context.Context, mimeType string, image []byte, instruction string, schema *genai.Schema) ([]byte, error) {
	if p.client == nil {
		return nil, fmt.Errorf("gemini client not initialized")
	}

	gm := p.client.GenerativeModel(p.modelName)
	gm.ResponseMIMEType = "application/json"
	gm.ResponseSchema = schema

	// genai.ImageData wants the bare format, not the full MIME type.
	format := strings.TrimPrefix(mimeType, "image/")
	resp, err := gm.GenerateContent(ctx, genai.ImageData(format, image), genai.Text(instruction))
	if err != nil {
		return nil, fmt.Errorf("gemini generate content: %w", err)
	}
	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil || len(resp.Candidates[0].Content.Parts) == 0 {
		return nil, fmt.Errorf("gemini returned no content")
	}

	var payload strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		if txt, ok := part.(genai.Text); ok {
			payload.WriteString(string(txt))
		}
	}
	if payload.Len() == 0 {
		return nil, fmt.Errorf("gemini returned no text content")
	}
	return []byte(payload.String()), nil
}

// ExtractionService turns a captured sheet image into a partial student
// record. One call is one attempt; there are no automatic retries.
type ExtractionService interface {
	// ExtractSheet submits the image and parses the structured response.
	// A non-empty examName pins the record to that exam folder, overriding
	// whatever exam label the sheet itself carries. On any failure the
	// returned error wraps ErrExtractionFailed and the record is nil.
	ExtractSheet(ctx context.Context, image []byte, examName string) (*dto.StudentInput, error)
}

type extractionServiceImpl struct {
	provider ExtractionProvider
}

func NewExtractionService(provider ExtractionProvider) ExtractionService {
	return &extractionServiceImpl{provider: provider}
}

func (s *extractionServiceImpl) ExtractSheet(ctx context.Context, image []byte, examName string) (*dto.StudentInput, error) {
	if len(image) == 0 {
		return nil, fmt.Errorf("%w: empty image", ErrExtractionFailed)
	}

	mimeType := http.DetectContentType(image)
	if !strings.HasPrefix(mimeType, "image/") {
		return nil, fmt.Errorf("%w: unsupported content type %s", ErrExtractionFailed, mimeType)
	}

	payload, err := s.provider.GenerateStructured(ctx, mimeType, image, extractionInstruction, sheetSchema())
	if err != nil {
		log.Error().Err(err).Msg("Extraction provider call failed")
		return nil, fmt.Errorf("%w: %s", ErrExtractionFailed, err.Error())
	}

	var record dto.StudentInput
	if err := json.Unmarshal(payload, &record); err != nil {
		log.Warn().Err(err).Str("payload", string(payload)).Msg("Extraction payload does not conform to schema")
		return nil, fmt.Errorf("%w: malformed response payload", ErrExtractionFailed)
	}

	// The photographed sheet's own exam label is not authoritative once
	// the operator is working inside a specific folder.
	if examName != "" {
		record.ExamName = examName
	}
	return &record, nil
}
