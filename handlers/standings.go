// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"context"
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/jmoiron/sqlx"

	"github.com/danielhkuo/sabc/models"
)

// FirstPlacePoints is awarded to the winner; each place after earns one less
const FirstPlacePoints = 100

// cents compares weights at the precision the scales report
func cents(lbs float64) int64 {
	return int64(math.Round(lbs * 100))
}

func placePoints(place int) int {
	return max(0, FirstPlacePoints-(place-1))
}

// RankResults orders a tournament's results and assigns places and points.
//
// Anglers who weighed fish are ranked by total weight; equal weights share
// a place and the next place is skipped (1, 2, 2, 4). Big bass only breaks
// display order. Anglers with no fish share the place after the last
// weigher and earn one point less than that place would. Disqualified
// anglers come last with no place and no points. In non-points
// tournaments everyone gets zero points.
func RankResults(results []models.Result, pointsCount bool) []models.RankedResult {
	var weighed, blanked, dq []models.Result
	for _, res := range results {
		switch {
		case res.Disqualified:
			dq = append(dq, res)
		case res.NumFish == 0:
			blanked = append(blanked, res)
		default:
			weighed = append(weighed, res)
		}
	}

	sort.SliceStable(weighed, func(i, j int) bool {
		wi, wj := cents(weighed[i].TotalWeight), cents(weighed[j].TotalWeight)
		if wi != wj {
			return wi > wj
		}
		bi, bj := cents(weighed[i].BigBass), cents(weighed[j].BigBass)
		if bi != bj {
			return bi > bj
		}
		return byName(weighed[i], weighed[j])
	})
	sort.SliceStable(blanked, func(i, j int) bool { return byName(blanked[i], blanked[j]) })
	sort.SliceStable(dq, func(i, j int) bool { return byName(dq[i], dq[j]) })

	ranked := make([]models.RankedResult, 0, len(results))
	for i, res := range weighed {
		place := i + 1
		if i > 0 && cents(res.TotalWeight) == cents(weighed[i-1].TotalWeight) {
			place = ranked[i-1].Place
		}
		rr := models.RankedResult{Result: res, Place: place}
		if pointsCount {
			rr.Points = placePoints(place)
		}
		ranked = append(ranked, rr)
	}

	blankPlace := len(weighed) + 1
	for _, res := range blanked {
		rr := models.RankedResult{Result: res, Place: blankPlace}
		if pointsCount {
			rr.Points = max(0, placePoints(blankPlace)-1)
		}
		ranked = append(ranked, rr)
	}

	for _, res := range dq {
		ranked = append(ranked, models.RankedResult{Result: res})
	}

	return ranked
}

func byName(a, b models.Result) bool {
	an, bn := strings.ToLower(a.AnglerName), strings.ToLower(b.AnglerName)
	if an != bn {
		return an < bn
	}
	return a.AnglerID < b.AnglerID
}

// AnnualAwards totals a season's scored rows into angler of the year,
// heavy stringer and big bass. Rows are expected in tournament date order;
// ties for heavy stringer and big bass go to the earlier tournament.
func AnnualAwards(year int, rows []models.AwardRow) models.AnnualAwards {
	awards := models.AnnualAwards{Year: year}

	totals := make(map[string]*models.AnglerOfYear)
	var order []string
	for i := range rows {
		row := &rows[i]

		aoy, ok := totals[row.AnglerID]
		if !ok {
			aoy = &models.AnglerOfYear{AnglerID: row.AnglerID, AnglerName: row.AnglerName}
			totals[row.AnglerID] = aoy
			order = append(order, row.AnglerID)
		}
		aoy.Points += row.Points
		aoy.TotalFish += row.NumFish
		aoy.TotalWeight += row.TotalWeight
		aoy.Events++

		if row.NumFish > 0 && (awards.HeavyStringer == nil || cents(row.TotalWeight) > cents(awards.HeavyStringer.TotalWeight)) {
			awards.HeavyStringer = row
		}
		if row.BigBass >= models.BigBassMinLbs && (awards.BigBass == nil || cents(row.BigBass) > cents(awards.BigBass.BigBass)) {
			awards.BigBass = row
		}
	}

	standings := make([]models.AnglerOfYear, 0, len(order))
	for _, id := range order {
		standings = append(standings, *totals[id])
	}
	sort.SliceStable(standings, func(i, j int) bool {
		a, b := standings[i], standings[j]
		if a.Points != b.Points {
			return a.Points > b.Points
		}
		if cents(a.TotalWeight) != cents(b.TotalWeight) {
			return cents(a.TotalWeight) > cents(b.TotalWeight)
		}
		return strings.ToLower(a.AnglerName) < strings.ToLower(b.AnglerName)
	})
	for i := range standings {
		standings[i].Rank = i + 1
		if i > 0 && standings[i].Points == standings[i-1].Points &&
			cents(standings[i].TotalWeight) == cents(standings[i-1].TotalWeight) {
			standings[i].Rank = standings[i-1].Rank
		}
	}
	awards.AnglerOfYear = standings

	return awards
}

// SeasonStats sums one angler's rows for the profile page
func SeasonStats(year int, anglerID string, rows []models.AwardRow) models.SeasonStats {
	stats := models.SeasonStats{Year: year}
	for _, row := range rows {
		if row.AnglerID != anglerID {
			continue
		}
		stats.Events++
		stats.TotalFish += row.NumFish
		stats.TotalWeight += row.TotalWeight
		stats.Points += row.Points
		stats.BigBass = math.Max(stats.BigBass, row.BigBass)
	}
	return stats
}

type seasonResult struct {
	models.Result
	TournamentName string `db:"tournament_name"`
}

// loadAwardRows scores every completed points tournament of a year.
// Disqualified results are dropped after ranking.
func loadAwardRows(ctx context.Context, db *sqlx.DB, year int) ([]models.AwardRow, error) {
	start, end := yearBounds(year)

	var results []seasonResult
	err := db.SelectContext(ctx, &results, db.Rebind(`
		SELECT r.id, r.tournament_id, r.angler_id, `+anglerNameSQL+` AS angler_name,
			r.num_fish, r.total_weight, r.big_bass, r.disqualified,
			t.name AS tournament_name
		FROM results r
		JOIN tournaments t ON t.id = r.tournament_id
		JOIN users u ON u.id = r.angler_id
		WHERE t.complete = TRUE AND t.points_count = TRUE
			AND t.event_date >= ? AND t.event_date < ?
		ORDER BY t.event_date, t.id
	`), start, end)
	if err != nil {
		return nil, fmt.Errorf("failed to query season results: %w", err)
	}

	var rows []models.AwardRow
	for i := 0; i < len(results); {
		j := i
		for j < len(results) && results[j].TournamentID == results[i].TournamentID {
			j++
		}

		group := make([]models.Result, 0, j-i)
		for _, res := range results[i:j] {
			group = append(group, res.Result)
		}
		name := results[i].TournamentName

		for _, rr := range RankResults(group, true) {
			if rr.Disqualified {
				continue
			}
			rows = append(rows, models.AwardRow{
				AnglerID:     rr.AnglerID,
				AnglerName:   rr.AnglerName,
				TournamentID: rr.TournamentID,
				Tournament:   name,
				NumFish:      rr.NumFish,
				TotalWeight:  rr.TotalWeight,
				BigBass:      rr.BigBass,
				Points:       rr.Points,
			})
		}
		i = j
	}

	return rows, nil
}
