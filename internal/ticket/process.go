package ticket

import (
	"sort"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"
)

// Process turns raw upstream entries into the canonical ordered record list:
// malformed entries dropped, duplicates dropped (first occurrence wins),
// class filtered, optionally time filtered, sorted by departure time.
func Process(raw []RawTicket, class Class, timeOfDay string, log *zap.Logger) []Record {
	if log == nil {
		log = zap.NewNop()
	}

	filterByTime := timeOfDay != ""
	if filterByTime {
		if _, err := time.Parse("15:04", timeOfDay); err != nil {
			// Degrade to an unfiltered listing rather than aborting.
			log.Warn("skipping time filter, unparseable time of day",
				zap.String("time_of_day", timeOfDay))
			filterByTime = false
		}
	}

	seen := make(map[string]struct{}, len(raw))
	out := make([]Record, 0, len(raw))
	for _, item := range raw {
		if item.TrainNumber == "" || item.DepartTime == "" || item.ArriveTime == "" || item.TrainType == "" {
			log.Debug("dropping entry with missing required fields",
				zap.String("train", item.TrainNumber))
			continue
		}

		key := item.TrainNumber + "_" + item.DepartTime + "_" + item.ArriveTime
		if _, dup := seen[key]; dup {
			log.Debug("dropping duplicate entry", zap.String("key", key))
			continue
		}
		seen[key] = struct{}{}

		if !strings.EqualFold(item.TrainType, string(class)) {
			continue
		}

		// HH:MM strings compare chronologically within one day.
		if filterByTime && item.DepartTime < timeOfDay {
			continue
		}

		out = append(out, toRecord(item))
	}

	sort.SliceStable(out, func(i, j int) bool {
		return out[i].DepartTime < out[j].DepartTime
	})
	return out
}

func toRecord(item RawTicket) Record {
	r := Record{
		TrainNumber:   item.TrainNumber,
		TrainType:     item.TrainType,
		DepartStation: item.DepartStation,
		ArriveStation: item.ArriveStation,
		DepartTime:    item.DepartTime,
		ArriveTime:    item.ArriveTime,
		RunTime:       item.RunTime,
		Seats:         make([]SeatOption, 0, len(item.Seats)),
	}
	for _, s := range item.Seats {
		price := strings.TrimSpace(s.SeatPrice)
		if price == "" {
			price = "unknown"
		}
		inv := s.SeatInventory
		if inv < 0 {
			inv = 0
		}
		r.Seats = append(r.Seats, SeatOption{Name: s.SeatName, Price: price, Inventory: inv})
	}
	r.PriceRange = priceRange(r.Seats)
	return r
}

// priceRange summarizes the parseable seat prices, e.g. "¥553-933".
func priceRange(seats []SeatOption) string {
	var lo, hi float64
	found := false
	for _, s := range seats {
		p, err := strconv.ParseFloat(s.Price, 64)
		if err != nil {
			continue
		}
		if !found || p < lo {
			lo = p
		}
		if !found || p > hi {
			hi = p
		}
		found = true
	}
	if !found {
		return "price unknown"
	}
	return "¥" + trimFloat(lo) + "-" + trimFloat(hi)
}

func trimFloat(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}
