package parser

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"ledgerbot/domain/entities"

	"github.com/google/generative-ai-go/genai"
	"github.com/shopspring/decimal"
	log "github.com/sirupsen/logrus"
	"google.golang.org/api/option"
)

// DefaultModel is used when no model name is configured
const DefaultModel = "gemini-1.5-flash"

const promptTemplate = `你是一位專業的記帳助理。請從提供的內容中提取記帳資訊。
請務必以 JSON 格式回傳。一筆消費回傳一個物件，多筆消費回傳物件陣列，每個物件包含以下欄位：
{
    "category": "類別 (例如：晚餐, 交通, 購物...)",
    "amount": 金額 (數字),
    "note": "備註 (如果沒有則留空)",
    "date": "YYYY-MM-DD HH:MM:SS (當前時間為: %s)",
    "invoice_number": "統一發票號碼的 8 位數字 (沒有則留空)"
}
如果是收據或發票圖片，請抓取總金額與發票號碼。
如果是語音或文字，請從語句中提取。`

// generator is implemented by *genai.GenerativeModel
type generator interface {
	GenerateContent(ctx context.Context, parts ...genai.Part) (*genai.GenerateContentResponse, error)
}

// GeminiParser extracts ledger records from text, receipt images and voice notes
type GeminiParser struct {
	client *genai.Client
	model  generator
	now    func() time.Time
}

// NewGeminiParser creates a parser for modelName using apiKey
func NewGeminiParser(ctx context.Context, apiKey, modelName string, loc *time.Location) (*GeminiParser, error) {
	if apiKey == "" {
		return nil, errors.New("gemini api key is required")
	}
	if modelName == "" {
		modelName = DefaultModel
	}
	if loc == nil {
		loc = time.UTC
	}

	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("failed to create gemini client: %w", err)
	}

	model := client.GenerativeModel(modelName)
	model.SetTemperature(0.1)
	model.ResponseMIMEType = "application/json"

	log.WithField("model", modelName).Info("Gemini content parser ready")

	return &GeminiParser{
		client: client,
		model:  model,
		now:    func() time.Time { return time.Now().In(loc) },
	}, nil
}

// Close releases the underlying client
func (p *GeminiParser) Close() error {
	if p.client == nil {
		return nil
	}
	return p.client.Close()
}

// Parse sends the prompt with the input text and media and decodes the returned records
func (p *GeminiParser) Parse(ctx context.Context, input entities.ParseInput) ([]*entities.ParsedRecord, error) {
	parts := []genai.Part{genai.Text(fmt.Sprintf(promptTemplate, p.now().Format("2006-01-02 15:04:05")))}
	if input.HasMedia() {
		parts = append(parts, genai.Blob{MIMEType: input.MIMEType, Data: input.Data})
	}
	if text := strings.TrimSpace(input.Text); text != "" {
		parts = append(parts, genai.Text(text))
	}
	if len(parts) == 1 {
		return nil, ErrNoRecord
	}

	resp, err := p.model.GenerateContent(ctx, parts...)
	if err != nil {
		return nil, fmt.Errorf("failed to generate content: %w", err)
	}

	records, err := ParseResponseText(responseText(resp))
	if err != nil {
		log.WithFields(log.Fields{
			"mimeType": input.MIMEType,
			"error":    err,
		}).Warn("Gemini response could not be decoded")
		return nil, err
	}
	return records, nil
}

func responseText(resp *genai.GenerateContentResponse) string {
	if resp == nil {
		return ""
	}
	var b strings.Builder
	for _, candidate := range resp.Candidates {
		if candidate == nil || candidate.Content == nil {
			continue
		}
		for _, part := range candidate.Content.Parts {
			if text, ok := part.(genai.Text); ok {
				b.WriteString(string(text))
			}
		}
		if b.Len() > 0 {
			break
		}
	}
	return b.String()
}

// looseString accepts JSON strings, numbers and null
type looseString string

func (s *looseString) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		*s = ""
		return nil
	}
	var str string
	if err := json.Unmarshal(data, &str); err == nil {
		*s = looseString(str)
		return nil
	}
	var num json.Number
	if err := json.Unmarshal(data, &num); err != nil {
		return err
	}
	*s = looseString(num.String())
	return nil
}

type responseRecord struct {
	Date          looseString `json:"date"`
	Category      looseString `json:"category"`
	Amount        looseString `json:"amount"`
	Note          looseString `json:"note"`
	InvoiceNumber looseString `json:"invoice_number"`
}

// ParseResponseText decodes a model reply holding one JSON object or an array of them,
// optionally wrapped in a ```json fence
func ParseResponseText(text string) ([]*entities.ParsedRecord, error) {
	payload := extractJSON(text)
	if payload == "" {
		return nil, ErrNoRecord
	}

	var raw []responseRecord
	if strings.HasPrefix(payload, "[") {
		if err := json.Unmarshal([]byte(payload), &raw); err != nil {
			return nil, fmt.Errorf("failed to decode records: %w", err)
		}
	} else {
		var single responseRecord
		if err := json.Unmarshal([]byte(payload), &single); err != nil {
			return nil, fmt.Errorf("failed to decode record: %w", err)
		}
		raw = append(raw, single)
	}

	records := make([]*entities.ParsedRecord, 0, len(raw))
	for _, r := range raw {
		amount, err := decimal.NewFromString(strings.ReplaceAll(strings.TrimSpace(string(r.Amount)), ",", ""))
		if err != nil || !amount.IsPositive() {
			continue
		}
		records = append(records, &entities.ParsedRecord{
			Date:          strings.TrimSpace(string(r.Date)),
			Category:      strings.TrimSpace(string(r.Category)),
			Amount:        amount,
			Note:          strings.TrimSpace(string(r.Note)),
			InvoiceNumber: strings.TrimSpace(string(r.InvoiceNumber)),
		})
	}
	if len(records) == 0 {
		return nil, ErrNoRecord
	}
	return records, nil
}

func extractJSON(text string) string {
	text = strings.TrimSpace(text)
	if i := strings.Index(text, "```json"); i >= 0 {
		text = text[i+len("```json"):]
		if j := strings.Index(text, "```"); j >= 0 {
			text = text[:j]
		}
	} else if strings.HasPrefix(text, "```") {
		text = strings.Trim(text, "`")
	}
	return strings.TrimSpace(text)
}
