package entities

// PrizeTier ranks a winning invoice. Special and Grand require an exact match,
// First through Sixth come from suffix matching against a first prize number.
type PrizeTier int

const (
	PrizeTierNone PrizeTier = iota
	PrizeTierSpecial
	PrizeTierGrand
	PrizeTierFirst
	PrizeTierSecond
	PrizeTierThird
	PrizeTierFourth
	PrizeTierFifth
	PrizeTierSixth
)

// suffixTiers lists the first prize derived tiers with the suffix length that earns them
var suffixTiers = []struct {
	length int
	tier   PrizeTier
}{
	{8, PrizeTierFirst},
	{7, PrizeTierSecond},
	{6, PrizeTierThird},
	{5, PrizeTierFourth},
	{4, PrizeTierFifth},
	{3, PrizeTierSixth},
}

// SuffixTier returns the tier for the longest common suffix (3-8 digits)
// between a ticket and a first prize number
func SuffixTier(ticket, firstPrize string) PrizeTier {
	for _, st := range suffixTiers {
		if len(ticket) < st.length || len(firstPrize) < st.length {
			continue
		}
		if ticket[len(ticket)-st.length:] == firstPrize[len(firstPrize)-st.length:] {
			return st.tier
		}
	}
	return PrizeTierNone
}

// Amount returns the prize in NT dollars
func (t PrizeTier) Amount() int64 {
	switch t {
	case PrizeTierSpecial:
		return 10_000_000
	case PrizeTierGrand:
		return 2_000_000
	case PrizeTierFirst:
		return 200_000
	case PrizeTierSecond:
		return 40_000
	case PrizeTierThird:
		return 10_000
	case PrizeTierFourth:
		return 4_000
	case PrizeTierFifth:
		return 1_000
	case PrizeTierSixth:
		return 200
	default:
		return 0
	}
}

// DisplayName returns the name printed on the official announcement
func (t PrizeTier) DisplayName() string {
	switch t {
	case PrizeTierSpecial:
		return "特別獎"
	case PrizeTierGrand:
		return "特獎"
	case PrizeTierFirst:
		return "頭獎"
	case PrizeTierSecond:
		return "二獎"
	case PrizeTierThird:
		return "三獎"
	case PrizeTierFourth:
		return "四獎"
	case PrizeTierFifth:
		return "五獎"
	case PrizeTierSixth:
		return "六獎"
	default:
		return "未中獎"
	}
}

// String implements fmt.Stringer
func (t PrizeTier) String() string {
	switch t {
	case PrizeTierSpecial:
		return "special"
	case PrizeTierGrand:
		return "grand"
	case PrizeTierFirst:
		return "first"
	case PrizeTierSecond:
		return "second"
	case PrizeTierThird:
		return "third"
	case PrizeTierFourth:
		return "fourth"
	case PrizeTierFifth:
		return "fifth"
	case PrizeTierSixth:
		return "sixth"
	default:
		return "none"
	}
}

// ParsePrizeTier is the inverse of String; unknown names map to PrizeTierNone
func ParsePrizeTier(name string) PrizeTier {
	for t := PrizeTierSpecial; t <= PrizeTierSixth; t++ {
		if t.String() == name {
			return t
		}
	}
	return PrizeTierNone
}
