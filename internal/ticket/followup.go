package ticket

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/sllt/railbot/internal/ai"
	"go.uber.org/zap"
)

// Refiner narrows a result set according to a free-form refinement phrase by
// asking an external classifier to pick train numbers. Every failure mode
// fails open: the caller gets the unfiltered set back, never an error.
type Refiner struct {
	Provider ai.Provider

	log *zap.Logger
}

func NewRefiner(p ai.Provider, log *zap.Logger) *Refiner {
	if log == nil {
		log = zap.NewNop()
	}
	return &Refiner{Provider: p, log: log}
}

// Refine returns the records whose train numbers the classifier selected.
// On call or parse failure the original set is returned unchanged.
func (r *Refiner) Refine(ctx context.Context, request string, records []Record) []Record {
	if r.Provider == nil || len(records) == 0 {
		return records
	}

	prompt := buildFilterPrompt(request, records)
	reply, err := r.Provider.Chat(ctx, []ai.Message{{Role: "user", Content: prompt}})
	if err != nil {
		r.log.Warn("classifier call failed, keeping unfiltered results", zap.Error(err))
		return records
	}

	selection, ok := parseSelection(reply)
	if !ok {
		r.log.Warn("classifier reply was not valid JSON, keeping unfiltered results",
			zap.String("reply", reply))
		return records
	}

	selected := make(map[string]struct{}, len(selection))
	for _, id := range selection {
		selected[id] = struct{}{}
	}
	out := make([]Record, 0, len(selection))
	for _, rec := range records {
		if _, ok := selected[rec.TrainNumber]; ok {
			out = append(out, rec)
		}
	}
	return out
}

func buildFilterPrompt(request string, records []Record) string {
	var b strings.Builder
	b.WriteString("Filter the train list below according to the user's request.\n")
	fmt.Fprintf(&b, "User request: %s\n", request)
	b.WriteString("Current trains:\n")
	b.WriteString(serializeForClassifier(records))
	b.WriteString("\nReply with a JSON object listing the matching train numbers, for example:\n")
	b.WriteString(`{"selection": ["G123", "D456"]}`)
	return b.String()
}

// serializeForClassifier renders the tracked set as a compact textual table.
func serializeForClassifier(records []Record) string {
	lines := make([]string, 0, len(records))
	for _, r := range records {
		seats := make([]string, 0, len(r.Seats))
		for _, s := range r.Seats {
			seats = append(seats, fmt.Sprintf("%s(%d)", s.Name, s.Inventory))
		}
		lines = append(lines, fmt.Sprintf("%s | %s | %s→%s | %s-%s | price range: %s | seats: %s",
			r.TrainNumber, r.TrainType,
			r.DepartStation, r.ArriveStation,
			r.DepartTime, r.ArriveTime,
			r.PriceRange, strings.Join(seats, "/")))
	}
	return strings.Join(lines, "\n")
}

type selectionReply struct {
	Selection []string `json:"selection"`
}

// parseSelection tolerates prose around the JSON object; models often wrap
// their answer in explanation or code fences.
func parseSelection(text string) ([]string, bool) {
	text = strings.TrimSpace(text)

	var sr selectionReply
	if err := json.Unmarshal([]byte(text), &sr); err == nil {
		return sr.Selection, true
	}

	start := strings.Index(text, "{")
	end := strings.LastIndex(text, "}")
	if start >= 0 && end > start {
		if err := json.Unmarshal([]byte(text[start:end+1]), &sr); err == nil {
			return sr.Selection, true
		}
	}
	return nil, false
}
