package extract

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	openai "github.com/sashabaranov/go-openai"

	"github.com/ymansouri/claimsort/internal/model"
	"github.com/ymansouri/claimsort/internal/util"
	"github.com/ymansouri/claimsort/internal/worker"
)

// OpenAIExtractor calls an OpenAI-compatible chat endpoint to pull
// structured fields out of OCR text. Groq's endpoint is the usual
// target via BaseURL; the request pins a JSON response format.
type OpenAIExtractor struct {
	client  *openai.Client
	config  model.ExtractionConfig
	limiter *worker.Limiter
	target  string
}

// NewOpenAIExtractor creates an extractor for the configured endpoint.
func NewOpenAIExtractor(cfg model.ExtractionConfig, limiter *worker.Limiter) (*OpenAIExtractor, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("extraction API key is required")
	}

	clientConfig := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		clientConfig.BaseURL = cfg.BaseURL
	}
	if cfg.HTTPProxy != "" || cfg.HTTPSProxy != "" {
		transport, err := util.ProxyTransport(cfg.HTTPProxy, cfg.HTTPSProxy)
		if err != nil {
			return nil, fmt.Errorf("configure extraction proxy: %w", err)
		}
		clientConfig.HTTPClient = &http.Client{Transport: transport}
	}

	return &OpenAIExtractor{
		client:  openai.NewClientWithConfig(clientConfig),
		config:  cfg,
		limiter: limiter,
		target:  clientConfig.BaseURL,
	}, nil
}

// extractionPayload mirrors the JSON object the model is instructed to
// return. Field names match the canonical field map keys.
type extractionPayload struct {
	Category string            `json:"category"`
	Fields   map[string]string `json:"fields"`
	Reason   string            `json:"reason"`
}

// Extract sends one document's OCR text and returns the parsed fields.
func (e *OpenAIExtractor) Extract(ctx context.Context, in FileInput) (model.ExtractedDocument, error) {
	if e.limiter != nil {
		if err := e.limiter.Wait(ctx, e.target); err != nil {
			return model.ExtractedDocument{}, err
		}
	}

	ctx, cancel := context.WithTimeout(ctx, e.config.Timeout)
	defer cancel()

	req := openai.ChatCompletionRequest{
		Model: e.config.Model,
		Messages: []openai.ChatCompletionMessage{
			{
				Role:    openai.ChatMessageRoleSystem,
				Content: "You are an insurance claims auditor. Extract fields from succession dossier documents. Respond with JSON only.",
			},
			{
				Role:    openai.ChatMessageRoleUser,
				Content: buildPrompt(in),
			},
		},
		Temperature:    0,
		ResponseFormat: &openai.ChatCompletionResponseFormat{Type: openai.ChatCompletionResponseFormatTypeJSONObject},
	}

	resp, err := e.client.CreateChatCompletion(ctx, req)
	if err != nil {
		return model.ExtractedDocument{}, fmt.Errorf("extraction API error: %w", err)
	}
	if len(resp.Choices) == 0 {
		return model.ExtractedDocument{}, fmt.Errorf("extraction API returned no choices")
	}

	var payload extractionPayload
	if err := json.Unmarshal([]byte(resp.Choices[0].Message.Content), &payload); err != nil {
		return model.ExtractedDocument{}, fmt.Errorf("malformed extraction response: %w", err)
	}

	return assembleDocument(in, payload), nil
}

// assembleDocument merges the collaborator's answer with locally
// derived fallbacks: keyword category detection and raw-text candidate
// scanning for identifiers the model missed.
func assembleDocument(in FileInput, payload extractionPayload) model.ExtractedDocument {
	category := model.Category(strings.ToUpper(strings.TrimSpace(payload.Category)))
	switch category {
	case model.CategoryID, model.CategoryBank, model.CategoryDeath, model.CategoryLifeContract:
	default:
		category = DetectCategory(in.Text)
	}

	fields := make(map[string]string, len(payload.Fields))
	for k, v := range payload.Fields {
		v = strings.TrimSpace(v)
		if v == "" || strings.EqualFold(v, "N/A") {
			continue
		}
		fields[k] = v
	}
	supplementFields(category, fields, in.Text)

	return model.ExtractedDocument{
		Category: category,
		Fields:   fields,
		Signals:  in.Signals,
		FileName: in.FileName,
		Content:  in.Content,
	}
}

func buildPrompt(in FileInput) string {
	var b strings.Builder
	b.WriteString("Classify the document as one of: ID, BANK, DEATH, LIFE_CONTRACT, UNKNOWN.\n")
	b.WriteString("Extract every visible field into the \"fields\" object using these keys where applicable:\n")
	b.WriteString("  ID: name, id_number, birth_date, expiry_date\n")
	b.WriteString("  BANK: account_holder, rib, iban, bank_code, city_code, account_number, rib_key, bank_name, bic\n")
	b.WriteString("  DEATH: deceased_name, deceased_id, birth_date, death_date, death_place, act_number\n")
	b.WriteString("  LIFE_CONTRACT: policy_number, subscriber_name, insured_name, insured_id, birth_date, beneficiary_name, beneficiary_id, effective_date, end_date, capital\n")
	b.WriteString("Dates as written in the document. Omit fields that are not present.\n")
	b.WriteString("Respond as {\"category\": ..., \"fields\": {...}, \"reason\": \"one line\"}.\n\n")

	fmt.Fprintf(&b, "FILE: %s\n", in.FileName)
	fmt.Fprintf(&b, "TECHNICAL ANALYSIS: tampering=%t editor=%q fonts=%d\n\n", in.Signals.PotentialTampering, in.Signals.EditorDetected, in.Signals.FontCount)

	text := in.Text
	if len(text) > 4000 {
		text = text[:4000]
	}
	b.WriteString("OCR TEXT:\n")
	b.WriteString(text)
	return b.String()
}
