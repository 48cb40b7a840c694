package bot

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"

	"ledgerbot/application"
	"ledgerbot/bot/common"
	"ledgerbot/bot/features/summary"
	"ledgerbot/domain/entities"
	"ledgerbot/domain/interfaces"
	"ledgerbot/infrastructure/parser"

	log "github.com/sirupsen/logrus"
)

// Reply texts
const (
	msgAccountID       = "你的 Discord User ID 是：\n%s\n\n(請將此 ID 提供給管理員以設定家庭共享)"
	msgNoFamily        = "尚未設定家庭成員 ID。請在環境變數中設定 FAMILY_ACCOUNT_IDS。"
	msgNoRecords       = "你目前在 %s 還沒有任何記帳紀錄喔！"
	msgSummaryFailed   = "無法獲取摘要資料，請確認帳本格式。"
	msgUnparseable     = "抱歉，我看不懂這筆帳。請嘗試輸入例如：\n「晚餐 100」\n「150 交通費」"
	msgMediaUnreadable = "抱歉，我無法從這段語音或照片中提取記帳資訊。"
	msgRecordFailed    = "❌ 記錄失敗，請檢查帳本設定。"
	msgMalformed       = "發票號碼必須是 8 位數字，例如：對獎 12345678"
	msgNoNumbers       = "目前無法取得中獎號碼，請稍後再試。"
	msgAdminOnly       = "此指令僅限管理員使用。"
	msgRunInProgress   = "對獎作業正在進行中，請稍後再試。"
	msgRunFailed       = "❌ 對獎失敗：無法取得中獎號碼，請稍後再試。"
)

var checkCommand = regexp.MustCompile(`(?i)^(?:對獎\s*|check(?:\s+|$))(\S*)$`)

// Reconciler runs a reconciliation on demand
type Reconciler interface {
	RunNow(ctx context.Context) (*application.RunReport, error)
}

// CardRenderer turns a summary into an image
type CardRenderer interface {
	Generate(summary *entities.LedgerSummary) ([]byte, error)
}

// Replier answers one incoming message
type Replier interface {
	Text(text string) error
	PNG(caption, filename string, data []byte) error
}

// Media is an attachment downloaded from a message
type Media struct {
	Data     []byte
	MIMEType string
}

// Incoming is a chat message addressed to the bot
type Incoming struct {
	AuthorID string
	Content  string
	Media    *Media
}

// HandlerConfig holds the account lists a handler needs
type HandlerConfig struct {
	FamilyAccountIDs []string
	AdminAccountIDs  []string
	Location         *time.Location
}

// Handler routes chat messages to bookkeeping, prize checks and reconciliation
type Handler struct {
	config     HandlerConfig
	ledger     interfaces.LedgerService
	parser     interfaces.ContentParser
	matcher    interfaces.PrizeMatcher
	reconciler Reconciler
	cards      CardRenderer
	now        func() time.Time
}

// NewHandler creates a message handler. A nil reconciler disables the admin command and a nil
// card renderer falls back to text summaries.
func NewHandler(
	config HandlerConfig,
	ledger interfaces.LedgerService,
	contentParser interfaces.ContentParser,
	matcher interfaces.PrizeMatcher,
	reconciler Reconciler,
	cards CardRenderer,
) *Handler {
	if config.Location == nil {
		config.Location = time.UTC
	}
	return &Handler{
		config:     config,
		ledger:     ledger,
		parser:     contentParser,
		matcher:    matcher,
		reconciler: reconciler,
		cards:      cards,
		now:        time.Now,
	}
}

// Handle answers in, returning the reply error if any
func (h *Handler) Handle(ctx context.Context, in Incoming, r Replier) error {
	text := strings.TrimSpace(in.Content)
	lower := strings.ToLower(text)

	if in.Media == nil {
		switch lower {
		case "my id", "查詢id":
			return r.Text(fmt.Sprintf(msgAccountID, in.AuthorID))
		case "全家", "全家報表", "家庭報表":
			return h.handleFamilySummary(ctx, r)
		case "摘要", "總額", "報表", "本月":
			return h.handleSummary(ctx, []string{in.AuthorID}, false, r)
		case "!reconcile":
			return h.handleReconcile(ctx, in.AuthorID, r)
		}

		if m := checkCommand.FindStringSubmatch(text); m != nil {
			return h.handleCheck(ctx, m[1], r)
		}
	}

	return h.handleRecord(ctx, in, r)
}

func (h *Handler) handleFamilySummary(ctx context.Context, r Replier) error {
	if len(h.config.FamilyAccountIDs) == 0 {
		return r.Text(msgNoFamily)
	}
	return h.handleSummary(ctx, h.config.FamilyAccountIDs, true, r)
}

func (h *Handler) handleSummary(ctx context.Context, accountIDs []string, family bool, r Replier) error {
	month := h.now().In(h.config.Location).Format("2006-01")

	result, err := h.ledger.Summary(ctx, accountIDs, month, family)
	if errors.Is(err, entities.ErrNoRecords) {
		return r.Text(fmt.Sprintf(msgNoRecords, month))
	}
	if err != nil {
		log.WithFields(log.Fields{
			"accounts": len(accountIDs),
			"family":   family,
			"error":    err,
		}).Error("Failed to build summary")
		return r.Text(msgSummaryFailed)
	}

	text := summary.FormatText(result)
	if h.cards == nil {
		return r.Text(text)
	}

	card, err := h.cards.Generate(result)
	if err != nil {
		log.WithError(err).Warn("Failed to render summary card, sending text")
		return r.Text(text)
	}
	return r.PNG(text, fmt.Sprintf("summary-%s.png", month), card)
}

func (h *Handler) handleCheck(ctx context.Context, invoiceNumber string, r Replier) error {
	result, err := h.matcher.Match(ctx, invoiceNumber, nil)
	switch {
	case errors.Is(err, entities.ErrMalformedInvoiceNumber):
		return r.Text(msgMalformed)
	case err != nil:
		log.WithFields(log.Fields{
			"invoiceNumber": invoiceNumber,
			"error":         err,
		}).Warn("Manual prize check failed")
		return r.Text(msgNoNumbers)
	}
	return r.Text(common.FormatMatch(invoiceNumber, result))
}

func (h *Handler) handleReconcile(ctx context.Context, authorID string, r Replier) error {
	if !h.isAdmin(authorID) || h.reconciler == nil {
		return r.Text(msgAdminOnly)
	}

	report, err := h.reconciler.RunNow(ctx)
	switch {
	case errors.Is(err, application.ErrRunInProgress):
		return r.Text(msgRunInProgress)
	case err != nil:
		log.WithFields(log.Fields{
			"accountID": authorID,
			"error":     err,
		}).Error("Manual reconciliation failed")
		return r.Text(msgRunFailed)
	}
	return r.Text(common.FormatSweep(report.Result))
}

func (h *Handler) handleRecord(ctx context.Context, in Incoming, r Replier) error {
	input := entities.ParseInput{Text: in.Content}
	if in.Media != nil {
		input.Data = in.Media.Data
		input.MIMEType = in.Media.MIMEType
	}

	records, err := h.parser.Parse(ctx, input)
	if err != nil || len(records) == 0 {
		if err != nil && !errors.Is(err, parser.ErrNoRecord) {
			log.WithFields(log.Fields{
				"accountID": in.AuthorID,
				"error":     err,
			}).Warn("Failed to parse ledger content")
		}
		if in.Media != nil {
			return r.Text(msgMediaUnreadable)
		}
		return r.Text(msgUnparseable)
	}

	rows, err := h.ledger.Record(ctx, in.AuthorID, records)
	if err != nil {
		log.WithFields(log.Fields{
			"accountID": in.AuthorID,
			"records":   len(records),
			"error":     err,
		}).Error("Failed to record ledger rows")
		return r.Text(msgRecordFailed)
	}
	return r.Text(common.FormatRecorded(rows))
}

func (h *Handler) isAdmin(accountID string) bool {
	for _, id := range h.config.AdminAccountIDs {
		if id == accountID {
			return true
		}
	}
	return false
}
