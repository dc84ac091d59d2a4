package record

import (
	"math"
	"math/rand/v2"
	"strconv"
	"strings"
	"time"
)

const (
	tokenLen      = 10
	maxInt        = 100_000_000
	minFloat      = 1.0
	maxFloat      = 20.0
	floatDigits   = 8
	maxFloatChars = 10
	yearsBack     = 5
	dateLayout    = "2006-01-02"
)

var (
	latinAlphabet    = []rune("abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ")
	cyrillicAlphabet = func() []rune {
		out := make([]rune, 64)
		for i := range out {
			out[i] = 'А' + rune(i) // U+0410 .. U+044F
		}
		return out
	}()
)

// Generator produces random Records. It is not safe for concurrent use; the
// pipeline is single-threaded and each stage owns its own Generator.
type Generator struct {
	rng *rand.Rand
	now func() time.Time
}

// Option configures a Generator.
type Option func(*Generator)

// WithSeed makes the generator deterministic for a given seed.
func WithSeed(seed uint64) Option {
	return func(g *Generator) {
		g.rng = rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
	}
}

// WithClock overrides the clock used to anchor the date range.
func WithClock(now func() time.Time) Option {
	return func(g *Generator) { g.now = now }
}

// NewGenerator returns a Generator seeded from the runtime random source
// unless WithSeed is given.
func NewGenerator(opts ...Option) *Generator {
	g := &Generator{
		rng: rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64())),
		now: time.Now,
	}
	for _, o := range opts {
		o(g)
	}
	return g
}

// Generate returns one new Record.
func (g *Generator) Generate() Record {
	return Record{
		Date:     g.date(),
		Latin:    g.token(latinAlphabet),
		Cyrillic: g.token(cyrillicAlphabet),
		Int:      strconv.Itoa(g.rng.IntN(maxInt) + 1),
		Float:    formatFloat(minFloat + g.rng.Float64()*(maxFloat-minFloat)),
	}
}

// date picks a day uniformly from [today-5y, today], both inclusive.
func (g *Generator) date() string {
	now := g.now()
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	start := today.AddDate(-yearsBack, 0, 0)
	days := int(today.Sub(start).Hours() / 24)
	return start.AddDate(0, 0, g.rng.IntN(days+1)).Format(dateLayout)
}

func (g *Generator) token(alphabet []rune) string {
	var sb strings.Builder
	sb.Grow(tokenLen * 2)
	for range tokenLen {
		sb.WriteRune(alphabet[g.rng.IntN(len(alphabet))])
	}
	return sb.String()
}

// formatFloat rounds v to 8 fractional digits, renders the shortest decimal
// that round-trips (keeping at least one fractional digit) and cuts the
// result to 10 characters. The cut is a truncation, not a rounding.
func formatFloat(v float64) string {
	p := math.Pow10(floatDigits)
	v = math.Round(v*p) / p
	s := strconv.FormatFloat(v, 'f', -1, 64)
	if !strings.Contains(s, ".") {
		s += ".0"
	}
	if len(s) > maxFloatChars {
		s = s[:maxFloatChars]
	}
	return s
}
