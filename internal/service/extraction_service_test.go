package service

import (
	"context"
	"errors"
	"testing"

	"github.com/google/generative-ai-go/genai"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// stubProvider substitutes the Gemini capability in tests: any provider
// that maps image+schema to JSON satisfies the interface.
type stubProvider struct {
	payload []byte
	err     error

	gotMIMEType    string
	gotInstruction string
	gotSchema      *genai.Schema
}

func (p *stubProvider) GenerateStructured(_ context.Context, mimeType string, _ []byte, instruction string, schema *genai.Schema) ([]byte, error) {
	p.gotMIMEType = mimeType
	p.gotInstruction = instruction
	p.gotSchema = schema
	return p.payload, p.err
}

// pngImage is a minimal PNG header, enough for content type sniffing.
var pngImage = []byte("\x89PNG\r\n\x1a\n0000000000000000")

func TestExtractSheetParsesConformingResponse(t *testing.T) {
	provider := &stubProvider{payload: []byte(`{
		"name": "Sara K",
		"roll_no": "2024-001",
		"class_name": "10-B",
		"exam_name": "Sheet Label Exam",
		"marks": {"math": 95, "science": 92, "english": 88, "history": 90, "computer": 85}
	}`)}
	svc := NewExtractionService(provider)

	rec, err := svc.ExtractSheet(context.Background(), pngImage, "")
	require.NoError(t, err)

	assert.Equal(t, "Sara K", rec.Name)
	assert.Equal(t, "2024-001", rec.RollNo)
	assert.Equal(t, "10-B", rec.ClassName)
	assert.Equal(t, "Sheet Label Exam", rec.ExamName)
	assert.Equal(t, float64(95), rec.Marks["math"])
	assert.Equal(t, float64(85), rec.Marks["computer"])

	assert.Equal(t, "image/png", provider.gotMIMEType)
	assert.Equal(t, extractionInstruction, provider.gotInstruction)
	require.NotNil(t, provider.gotSchema)
	assert.Contains(t, provider.gotSchema.Required, "marks")
}

func TestExtractSheetFolderContextOverridesSheetLabel(t *testing.T) {
	provider := &stubProvider{payload: []byte(`{"exam_name": "Whatever The Sheet Says", "marks": {}}`)}
	svc := NewExtractionService(provider)

	rec, err := svc.ExtractSheet(context.Background(), pngImage, "Finals")
	require.NoError(t, err)
	assert.Equal(t, "Finals", rec.ExamName)
}

func TestExtractSheetAbsentFieldsStayAbsent(t *testing.T) {
	provider := &stubProvider{payload: []byte(`{"marks": {"math": 40}}`)}
	svc := NewExtractionService(provider)

	rec, err := svc.ExtractSheet(context.Background(), pngImage, "")
	require.NoError(t, err)
	assert.Empty(t, rec.ID)
	assert.Empty(t, rec.Name)
	assert.Empty(t, rec.ExamName)
	assert.NotContains(t, rec.Marks, "history")
}

func TestExtractSheetFailures(t *testing.T) {
	tests := []struct {
		name     string
		image    []byte
		provider *stubProvider
	}{
		{
			name:     "provider transport error",
			image:    pngImage,
			provider: &stubProvider{err: errors.New("connection reset")},
		},
		{
			name:     "malformed payload",
			image:    pngImage,
			provider: &stubProvider{payload: []byte(`not json at all`)},
		},
		{
			name:     "empty image",
			image:    nil,
			provider: &stubProvider{},
		},
		{
			name:     "non image upload",
			image:    []byte("%PDF-1.4 something"),
			provider: &stubProvider{},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := NewExtractionService(tt.provider)
			rec, err := svc.ExtractSheet(context.Background(), tt.image, "")
			assert.Nil(t, rec, "no partial record may accompany a failure")
			assert.ErrorIs(t, err, ErrExtractionFailed)
		})
	}
}
