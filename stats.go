package physique

import (
	"errors"
	"strings"
	"time"
)

const fullMark = 10

var ErrNoHistory = errors.New("no analyses yet")

type RadarPoint struct {
	Subject  string  `json:"subject"`
	Score    float64 `json:"score"`
	FullMark float64 `json:"fullMark"`
}

type TrendPoint struct {
	ID           string    `json:"id"`
	Date         time.Time `json:"date"`
	OverallScore float64   `json:"overallScore"`
}

// Stats summarizes the analyses of a user
type Stats struct {
	Analyses  int          `json:"analyses"`
	Latest    *HistoryItem `json:"latest"`
	Radar     []RadarPoint `json:"radar"`
	Strongest RadarPoint   `json:"strongest"`
	Weakest   RadarPoint   `json:"weakest"`
	Trend     []TrendPoint `json:"trend"`
}

func title(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}

// NewStats computes stats from a history ordered newest first
func NewStats(history []*HistoryItem) (*Stats, error) {
	if len(history) == 0 {
		return nil, ErrNoHistory
	}
	latest := history[0]
	stats := &Stats{
		Analyses: len(history),
		Latest:   latest,
	}

	// ties keep the first group in display order
	strongest := RadarPoint{Score: -1}
	weakest := RadarPoint{Score: fullMark + 1}
	for _, grp := range latest.Report.MuscleAnalysis.Groups() {
		pt := RadarPoint{Subject: title(grp.Name), Score: grp.Detail.Score, FullMark: fullMark}
		stats.Radar = append(stats.Radar, pt)
		if pt.Score > strongest.Score {
			strongest = pt
		}
		if pt.Score < weakest.Score {
			weakest = pt
		}
	}
	stats.Strongest, stats.Weakest = strongest, weakest

	for i := len(history) - 1; i >= 0; i-- {
		item := history[i]
		stats.Trend = append(stats.Trend, TrendPoint{
			ID:           item.ID,
			Date:         item.Date,
			OverallScore: item.Report.PhysiqueRating.OverallScore,
		})
	}
	return stats, nil
}
