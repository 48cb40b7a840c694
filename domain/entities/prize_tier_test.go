package entities

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSuffixTier(t *testing.T) {
	t.Parallel()

	tests := []struct {
		ticket string
		first  string
		want   PrizeTier
	}{
		{"11112222", "11112222", PrizeTierFirst},
		{"01112222", "11112222", PrizeTierSecond},
		{"00112222", "11112222", PrizeTierThird},
		{"00012222", "11112222", PrizeTierFourth},
		{"00002222", "11112222", PrizeTierFifth},
		{"00000222", "11112222", PrizeTierSixth},
		{"00000022", "11112222", PrizeTierNone},
		{"222", "11112222", PrizeTierSixth},
		{"", "11112222", PrizeTierNone},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.ticket, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, SuffixTier(tt.ticket, tt.first))
		})
	}
}

func TestPrizeTier_Amounts(t *testing.T) {
	t.Parallel()

	tests := []struct {
		tier   PrizeTier
		amount int64
		name   string
		str    string
	}{
		{PrizeTierSpecial, 10_000_000, "特別獎", "special"},
		{PrizeTierGrand, 2_000_000, "特獎", "grand"},
		{PrizeTierFirst, 200_000, "頭獎", "first"},
		{PrizeTierSecond, 40_000, "二獎", "second"},
		{PrizeTierThird, 10_000, "三獎", "third"},
		{PrizeTierFourth, 4_000, "四獎", "fourth"},
		{PrizeTierFifth, 1_000, "五獎", "fifth"},
		{PrizeTierSixth, 200, "六獎", "sixth"},
		{PrizeTierNone, 0, "未中獎", "none"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.amount, tt.tier.Amount(), tt.str)
		assert.Equal(t, tt.name, tt.tier.DisplayName(), tt.str)
		assert.Equal(t, tt.str, tt.tier.String())
	}
}

func TestMatchResult_Constructors(t *testing.T) {
	t.Parallel()

	p := Period{RepublicYear: 114, StartMonth: 7}

	won := NewWinningResult(PrizeTierGrand, p)
	assert.True(t, won.Won)
	assert.True(t, won.ShouldNotify())
	assert.Equal(t, int64(2_000_000), won.PrizeAmount)
	assert.Equal(t, MatchStatusMatched, won.Status)

	lost := NewNoMatchResult(&p)
	assert.False(t, lost.ShouldNotify())
	assert.Equal(t, NoMatchMessage, lost.Message)
	lost.Period.StartMonth = 9
	assert.Equal(t, 7, p.StartMonth)

	pending := NewNotDrawnResult(p)
	assert.True(t, pending.IsNotDrawn())
	assert.False(t, pending.ShouldNotify())
	assert.Equal(t, NotDrawnMessage, pending.Message)
}

func TestParsePrizeTier(t *testing.T) {
	t.Parallel()

	for tier := PrizeTierNone; tier <= PrizeTierSixth; tier++ {
		assert.Equal(t, tier, ParsePrizeTier(tier.String()))
	}
	assert.Equal(t, PrizeTierNone, ParsePrizeTier("jackpot"))
}
