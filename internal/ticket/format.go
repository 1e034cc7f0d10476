package ticket

import (
	"fmt"
	"strings"
)

// FormatPage renders one page of records. startIndex is the 1-based global
// index of the first record so numbering stays continuous across pages.
func FormatPage(records []Record, startIndex, currentPage, totalPages int) string {
	if len(records) == 0 {
		return "no more ticket information"
	}

	var b strings.Builder
	for i, r := range records {
		fmt.Fprintf(&b, "%d. 【%s】%s\n", startIndex+i, r.TrainNumber, r.TrainType)
		fmt.Fprintf(&b, "   🚩 %s ➔ %s\n", r.DepartStation, r.ArriveStation)
		fmt.Fprintf(&b, "   ⏰ %s - %s (duration %s)\n", r.DepartTime, r.ArriveTime, r.RunTime)
		if len(r.Seats) > 0 {
			parts := make([]string, 0, len(r.Seats))
			for _, s := range r.Seats {
				if s.Price == "unknown" {
					parts = append(parts, fmt.Sprintf("%s: price unknown (%d left)", s.Name, s.Inventory))
				} else {
					parts = append(parts, fmt.Sprintf("%s: ¥%s (%d left)", s.Name, s.Price, s.Inventory))
				}
			}
			fmt.Fprintf(&b, "   💺 %s\n", strings.Join(parts, " | "))
		} else {
			b.WriteString("   ⚠️ no inventory information\n")
		}
	}

	fmt.Fprintf(&b, "\n📄 page %d/%d", currentPage, totalPages)
	if currentPage < totalPages {
		b.WriteString("\n🔍 send \"+next page\" for more results")
	}
	b.WriteString("\n🎯 send \"+<condition>\" to refine, e.g. +second class under 500")
	return b.String()
}
