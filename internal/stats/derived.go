package stats

import "math"

// Round3 rounds half away from zero to three decimals.
func Round3(f float64) float64 {
	return math.Round(f*1000) / 1000
}

func ratio(num, den, scale float64) *float64 {
	if den <= 0 {
		return nil
	}
	return floatPtr(Round3(num / den * scale))
}

func clamp(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, v))
}

// CompletionPct is completions per attempt, as a percentage.
func CompletionPct(comp, att float64) *float64 { return ratio(comp, att, 100) }

func PassTDRate(td, att float64) *float64 { return ratio(td, att, 1) }

func InterceptionRate(ints, att float64) *float64 { return ratio(ints, att, 1) }

func YardsPerAttempt(yds, att float64) *float64 { return ratio(yds, att, 1) }

func YardsPerCompletion(yds, comp float64) *float64 { return ratio(yds, comp, 1) }

// AdjustedYardsPerAttempt credits 20 yards per touchdown and charges 45 per interception.
func AdjustedYardsPerAttempt(yds, td, ints, att float64) *float64 {
	return ratio(yds+20*td-45*ints, att, 1)
}

// PasserRating is the NFL formula: four components each clamped to
// [0, 2.375], summed, divided by 6 and scaled to 100.
func PasserRating(comp, att, yds, td, ints float64) *float64 {
	if att <= 0 {
		return nil
	}
	a := clamp((comp/att-0.3)*5, 0, 2.375)
	b := clamp((yds/att-3)*0.25, 0, 2.375)
	c := clamp(td/att*20, 0, 2.375)
	d := clamp(2.375-ints/att*25, 0, 2.375)
	return floatPtr(Round3((a + b + c + d) / 6 * 100))
}

// CollegePasserRating is the NCAA passing efficiency formula.
func CollegePasserRating(comp, att, yds, td, ints float64) *float64 {
	return ratio(8.4*yds+330*td+100*comp-200*ints, att, 1)
}

// Average is yards per carry, catch, punt or return.
func Average(yds, n float64) *float64 { return ratio(yds, n, 1) }

func CatchPct(rec, targets float64) *float64 { return ratio(rec, targets, 100) }

func YardsPerTarget(yds, targets float64) *float64 { return ratio(yds, targets, 1) }

// MakePct is made over attempted for field goals and extra points, as a fraction.
func MakePct(made, att float64) *float64 { return ratio(made, att, 1) }

func PerGame(total float64, games int) *float64 { return ratio(total, float64(games), 1) }
