package ticket

import (
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func makeRecords(n int) []Record {
	out := make([]Record, 0, n)
	for i := 0; i < n; i++ {
		out = append(out, Record{
			TrainNumber:   fmt.Sprintf("G%d", i+1),
			TrainType:     "high-speed",
			DepartStation: "Beijing",
			ArriveStation: "Shanghai",
			DepartTime:    fmt.Sprintf("%02d:00", 6+i),
			ArriveTime:    fmt.Sprintf("%02d:30", 10+i),
			RunTime:       "4h30m",
			PriceRange:    "¥553-933",
			Seats: []SeatOption{
				{Name: "second class", Price: "553", Inventory: 20},
				{Name: "first class", Price: "933", Inventory: 5},
			},
		})
	}
	return out
}

func TestFormatPageEmpty(t *testing.T) {
	require.Equal(t, "no more ticket information", FormatPage(nil, 1, 1, 1))
}

func TestFormatPageFirstOfTwo(t *testing.T) {
	all := makeRecords(12)
	got := FormatPage(all[:10], 1, 1, 2)

	require.Contains(t, got, "1. 【G1】high-speed")
	require.Contains(t, got, "10. 【G10】high-speed")
	require.NotContains(t, got, "G11")
	require.Contains(t, got, "🚩 Beijing ➔ Shanghai")
	require.Contains(t, got, "⏰ 06:00 - 10:30 (duration 4h30m)")
	require.Contains(t, got, "💺 second class: ¥553 (20 left) | first class: ¥933 (5 left)")
	require.Contains(t, got, "📄 page 1/2")
	require.Contains(t, got, `send "+next page" for more results`)
	require.Contains(t, got, `send "+<condition>" to refine`)
}

func TestFormatPageLastOfTwo(t *testing.T) {
	all := makeRecords(12)
	got := FormatPage(all[10:], 11, 2, 2)

	require.Contains(t, got, "11. 【G11】high-speed")
	require.Contains(t, got, "12. 【G12】high-speed")
	require.Contains(t, got, "📄 page 2/2")
	require.NotContains(t, got, "+next page")
	require.Contains(t, got, `send "+<condition>" to refine`)
}

func TestFormatPageNoSeatInfo(t *testing.T) {
	rec := makeRecords(1)
	rec[0].Seats = nil
	got := FormatPage(rec, 1, 1, 1)
	require.Contains(t, got, "⚠️ no inventory information")
	require.NotContains(t, got, "💺")
}

func TestFormatPageUnknownPrice(t *testing.T) {
	rec := makeRecords(1)
	rec[0].Seats = []SeatOption{{Name: "business", Price: "unknown", Inventory: 2}}
	got := FormatPage(rec, 1, 1, 1)
	require.Contains(t, got, "business: price unknown (2 left)")
	require.False(t, strings.Contains(got, "¥unknown"))
}
