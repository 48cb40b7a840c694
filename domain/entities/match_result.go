package entities

// MatchStatus separates "definitely lost" from "cannot tell yet"
type MatchStatus string

const (
	MatchStatusMatched  MatchStatus = "matched"
	MatchStatusNoMatch  MatchStatus = "no_match"
	MatchStatusNotDrawn MatchStatus = "not_drawn"
)

const (
	// NoMatchMessage is shown when the invoice did not win in any checked period
	NoMatchMessage = "再接再厲，下一張就會中！💪"
	// NotDrawnMessage is shown when the invoice's period has no cached results
	NotDrawnMessage = "⏳ 該期尚未開獎或不在兌獎期間內"
)

// MatchResult is produced fresh for every match call and never persisted
type MatchResult struct {
	Won         bool        `json:"won"`
	Tier        PrizeTier   `json:"tier"`
	Period      *Period     `json:"period,omitempty"`
	Status      MatchStatus `json:"status"`
	Message     string      `json:"message"`
	PrizeAmount int64       `json:"prize_amount"`
}

// NewWinningResult builds the result for a matched tier
func NewWinningResult(tier PrizeTier, period Period) *MatchResult {
	p := period
	return &MatchResult{
		Won:         true,
		Tier:        tier,
		Period:      &p,
		Status:      MatchStatusMatched,
		Message:     winningMessage(tier),
		PrizeAmount: tier.Amount(),
	}
}

// NewNoMatchResult builds the generic losing result; period may be nil when every cached period was checked
func NewNoMatchResult(period *Period) *MatchResult {
	return &MatchResult{
		Tier:    PrizeTierNone,
		Period:  copyPeriod(period),
		Status:  MatchStatusNoMatch,
		Message: NoMatchMessage,
	}
}

// NewNotDrawnResult builds the result for a period with no published numbers
func NewNotDrawnResult(period Period) *MatchResult {
	p := period
	return &MatchResult{
		Tier:    PrizeTierNone,
		Period:  &p,
		Status:  MatchStatusNotDrawn,
		Message: NotDrawnMessage,
	}
}

// IsNotDrawn reports whether the result could not be decided yet
func (r *MatchResult) IsNotDrawn() bool {
	return r.Status == MatchStatusNotDrawn
}

// ShouldNotify reports whether the result deserves a winner notification
func (r *MatchResult) ShouldNotify() bool {
	return r.Won && !r.IsNotDrawn()
}

func winningMessage(tier PrizeTier) string {
	switch tier {
	case PrizeTierSpecial:
		return "🎉 1000萬 (特別獎)！太強了！"
	case PrizeTierGrand:
		return "🎊 200萬 (特獎)！恭喜！"
	case PrizeTierFirst:
		return "💰 20萬元 (頭獎)！"
	case PrizeTierSecond:
		return "💰 4萬元 (二獎)！"
	case PrizeTierThird:
		return "💰 1萬元 (三獎)！"
	case PrizeTierFourth:
		return "💰 4千元 (四獎)！"
	case PrizeTierFifth:
		return "💰 1千元 (五獎)！"
	case PrizeTierSixth:
		return "🧧 200元 (六獎)！"
	default:
		return NoMatchMessage
	}
}

func copyPeriod(p *Period) *Period {
	if p == nil {
		return nil
	}
	c := *p
	return &c
}
