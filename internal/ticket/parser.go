package ticket

import (
	"fmt"
	"regexp"
	"strings"
	"time"

	"go.uber.org/zap"
)

// Parser normalizes raw message text into a canonical Query. Two shapes are
// recognized: whitespace-delimited tokens led by a ticket-class keyword, and
// free-form text containing a class keyword plus a "from X to Y" phrase.
type Parser struct {
	// Now is injectable so relative dates resolve deterministically in tests.
	Now func() time.Time

	log *zap.Logger
}

func NewParser(log *zap.Logger) *Parser {
	if log == nil {
		log = zap.NewNop()
	}
	return &Parser{Now: time.Now, log: log}
}

var (
	structuredDateRe = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}$`)
	structuredTimeRe = regexp.MustCompile(`^\d{1,2}[:：]\d{2}$`)

	nlDateRe = regexp.MustCompile(`(?i)(day[- ]after[- ]tomorrow|tomorrow|today|\d{4}[-/.年]\s?\d{1,2}[-/.月]\s?\d{1,2}日?)`)
	nlTimeRe = regexp.MustCompile(`(\d{1,2})[:：](\d{2})`)
	fromToRe = regexp.MustCompile(`(?i)\bfrom\s+(.+?)\s+to\s+(.+?)(?:\s+(?:tickets?|trains?|time)\b|\s*$)`)

	dateUnitRe = regexp.MustCompile(`[年月日/.]`)
)

// IsQuery reports whether the text looks like a ticket query in either shape.
// The engine uses it for dispatch; anything else is left to the host.
func (p *Parser) IsQuery(text string) bool {
	if p.isNatural(text) {
		return true
	}
	fields := strings.Fields(text)
	if len(fields) == 0 {
		return false
	}
	_, ok := ClassFromKeyword(fields[0])
	return ok
}

func (p *Parser) isNatural(text string) bool {
	lower := strings.ToLower(text)
	hasClass := strings.Contains(lower, "high-speed") ||
		strings.Contains(lower, "highspeed") ||
		strings.Contains(lower, "bullet") ||
		strings.Contains(lower, "normal")
	return hasClass && fromToRe.MatchString(text)
}

// Parse produces the canonical Query or one of the normalization errors.
func (p *Parser) Parse(text string) (Query, error) {
	text = strings.TrimSpace(text)
	var tokens []string
	if p.isNatural(text) {
		tokens = p.rewriteNatural(text)
	} else {
		tokens = strings.Fields(text)
	}
	return p.parseTokens(tokens)
}

// rewriteNatural turns free-form text into the token shape. Date and time
// phrases are extracted (and removed) first so the destination capture is
// not polluted by a trailing "tomorrow" or "9:30".
func (p *Parser) rewriteNatural(text string) []string {
	class := p.classInText(text)
	work := text

	var dateTok, timeTok string
	if m := nlDateRe.FindString(work); m != "" {
		work = strings.Replace(work, m, " ", 1)
		if d, ok := p.resolveDate(m); ok {
			dateTok = d
		}
	}
	if m := nlTimeRe.FindStringSubmatch(work); m != nil {
		work = strings.Replace(work, m[0], " ", 1)
		timeTok = normalizeClock(m[1] + ":" + m[2])
	}

	tokens := []string{string(class)}
	if m := fromToRe.FindStringSubmatch(work); m != nil {
		tokens = append(tokens, strings.TrimSpace(m[1]), strings.TrimSpace(m[2]))
		if dateTok != "" {
			tokens = append(tokens, dateTok)
		}
		if timeTok != "" {
			tokens = append(tokens, timeTok)
		}
	}
	return tokens
}

func (p *Parser) classInText(text string) Class {
	lower := strings.ToLower(text)
	switch {
	case strings.Contains(lower, "high-speed") || strings.Contains(lower, "highspeed"):
		return ClassHighSpeed
	case strings.Contains(lower, "bullet"):
		return ClassBullet
	default:
		return ClassNormal
	}
}

// resolveDate turns a date phrase into YYYY-MM-DD. A malformed explicit date
// is logged and reported as "no date extracted" rather than failing the
// whole parse.
func (p *Parser) resolveDate(phrase string) (string, bool) {
	now := p.Now()
	lower := strings.ToLower(strings.TrimSpace(phrase))
	switch {
	case lower == "today":
		return now.Format("2006-01-02"), true
	case lower == "tomorrow":
		return now.AddDate(0, 0, 1).Format("2006-01-02"), true
	case strings.Contains(lower, "after"):
		return now.AddDate(0, 0, 2).Format("2006-01-02"), true
	}

	norm := strings.Trim(dateUnitRe.ReplaceAllString(lower, "-"), "- ")
	norm = strings.ReplaceAll(norm, " ", "")
	t, err := time.Parse("2006-1-2", norm)
	if err != nil {
		p.log.Warn("ignoring unparseable date phrase", zap.String("phrase", phrase))
		return "", false
	}
	return t.Format("2006-01-02"), true
}

func (p *Parser) parseTokens(tokens []string) (Query, error) {
	if len(tokens) < 3 || len(tokens) > 5 {
		return Query{}, ErrParameterCount
	}
	class, ok := ClassFromKeyword(tokens[0])
	if !ok {
		return Query{}, fmt.Errorf("unknown ticket class %q", tokens[0])
	}

	q := Query{
		Class:       class,
		Origin:      tokens[1],
		Destination: tokens[2],
		Date:        p.Now().Format("2006-01-02"),
	}

	if len(tokens) >= 4 {
		switch {
		case structuredDateRe.MatchString(tokens[3]):
			q.Date = tokens[3]
		case structuredTimeRe.MatchString(tokens[3]):
			q.TimeOfDay = normalizeClock(tokens[3])
		default:
			return Query{}, ErrDateTimeFormat
		}
	}
	if len(tokens) == 5 {
		if !structuredTimeRe.MatchString(tokens[4]) {
			return Query{}, ErrDateTimeFormat
		}
		q.TimeOfDay = normalizeClock(tokens[4])
	}
	return q, nil
}

// normalizeClock zero-pads H:MM to HH:MM so string comparison of depart
// times stays chronological.
func normalizeClock(s string) string {
	s = strings.ReplaceAll(s, "：", ":")
	if parts := strings.SplitN(s, ":", 2); len(parts) == 2 && len(parts[0]) == 1 {
		return "0" + s
	}
	return s
}
