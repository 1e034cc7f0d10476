package ticket

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func testParser() *Parser {
	p := NewParser(nil)
	p.Now = func() time.Time {
		return time.Date(2024, 6, 4, 12, 0, 0, 0, time.UTC)
	}
	return p
}

func TestParseStructuredThreeTokens(t *testing.T) {
	p := testParser()

	q, err := p.Parse("high-speed Beijing Shanghai")
	require.NoError(t, err)
	require.Equal(t, ClassHighSpeed, q.Class)
	require.Equal(t, "Beijing", q.Origin)
	require.Equal(t, "Shanghai", q.Destination)
	require.Equal(t, "2024-06-04", q.Date) // defaults to today
	require.Empty(t, q.TimeOfDay)
}

func TestParseStructuredFourTokensDate(t *testing.T) {
	p := testParser()

	q, err := p.Parse("bullet Chengdu Shanghai 2024-06-05")
	require.NoError(t, err)
	require.Equal(t, ClassBullet, q.Class)
	require.Equal(t, "2024-06-05", q.Date)
	require.Empty(t, q.TimeOfDay)
}

func TestParseStructuredFourTokensTime(t *testing.T) {
	p := testParser()

	q, err := p.Parse("normal Beijing Tianjin 9:30")
	require.NoError(t, err)
	require.Equal(t, "2024-06-04", q.Date)
	require.Equal(t, "09:30", q.TimeOfDay) // zero-padded
}

func TestParseStructuredFiveTokens(t *testing.T) {
	p := testParser()

	q, err := p.Parse("high-speed Beijing Shanghai 2024-06-05 09:00")
	require.NoError(t, err)
	require.Equal(t, "2024-06-05", q.Date)
	require.Equal(t, "09:00", q.TimeOfDay)
}

func TestParseStructuredBadFourthToken(t *testing.T) {
	p := testParser()

	_, err := p.Parse("high-speed Beijing Shanghai notadate")
	require.ErrorIs(t, err, ErrDateTimeFormat)
}

func TestParseTokenCountErrors(t *testing.T) {
	p := testParser()

	_, err := p.Parse("high-speed Beijing")
	require.ErrorIs(t, err, ErrParameterCount)

	_, err = p.Parse("high-speed a b c d e")
	require.ErrorIs(t, err, ErrParameterCount)
}

func TestParseNaturalLanguageTomorrow(t *testing.T) {
	p := testParser()

	q, err := p.Parse("high-speed train from Beijing to Shanghai tomorrow")
	require.NoError(t, err)
	require.Equal(t, ClassHighSpeed, q.Class)
	require.Equal(t, "Beijing", q.Origin)
	require.Equal(t, "Shanghai", q.Destination)
	require.Equal(t, "2024-06-05", q.Date)
}

func TestParseNaturalLanguageDayAfterTomorrow(t *testing.T) {
	p := testParser()

	q, err := p.Parse("bullet train from Chengdu to Xian day after tomorrow")
	require.NoError(t, err)
	require.Equal(t, ClassBullet, q.Class)
	require.Equal(t, "Chengdu", q.Origin)
	require.Equal(t, "Xian", q.Destination)
	require.Equal(t, "2024-06-06", q.Date)
}

func TestParseNaturalLanguageExplicitDateAndTime(t *testing.T) {
	p := testParser()

	q, err := p.Parse("bullet train from Chengdu to Shanghai 2024/6/5 9:30")
	require.NoError(t, err)
	require.Equal(t, "Chengdu", q.Origin)
	require.Equal(t, "Shanghai", q.Destination)
	require.Equal(t, "2024-06-05", q.Date)
	require.Equal(t, "09:30", q.TimeOfDay)
}

func TestParseNaturalLanguageMalformedDateDegrades(t *testing.T) {
	p := testParser()

	// An impossible explicit date is ignored, not fatal; the query falls
	// back to today's date.
	q, err := p.Parse("high-speed train from Beijing to Shanghai 2024/13/45")
	require.NoError(t, err)
	require.Equal(t, "Beijing", q.Origin)
	require.Equal(t, "Shanghai", q.Destination)
	require.Equal(t, "2024-06-04", q.Date)
}

func TestParseNaturalLanguageDestinationTerminator(t *testing.T) {
	p := testParser()

	q, err := p.Parse("I need high-speed tickets from Beijing to Shanghai tickets today")
	require.NoError(t, err)
	require.Equal(t, "Beijing", q.Origin)
	require.Equal(t, "Shanghai", q.Destination)
	require.Equal(t, "2024-06-04", q.Date)
}

func TestIsQuery(t *testing.T) {
	p := testParser()

	require.True(t, p.IsQuery("high-speed Beijing Shanghai"))
	require.True(t, p.IsQuery("bullet train from A to B"))
	require.False(t, p.IsQuery("hello there"))
	require.False(t, p.IsQuery(""))
	// class keyword but no from/to phrase and not leading: not a query
	require.False(t, p.IsQuery("I like normal conversations"))
}
