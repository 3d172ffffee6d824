package tournamentdomain

// ScoringRuleSet holds the point values and bonus thresholds used to build a table.
// It is a value type; copies are independent.
type ScoringRuleSet struct {
	WinPoints            int
	DrawPoints           int
	LossPoints           int
	OffensiveBonusPoints int
	DefensiveBonusPoints int

	// TryBonusThreshold is the number of tries a side needs for the offensive bonus.
	TryBonusThreshold int

	// LosingMarginThreshold is the largest deficit that still earns the defensive bonus.
	LosingMarginThreshold int
}

// DefaultScoringRules returns the standard rugby union bonus-point system:
// 4 for a win, 2 for a draw, 1 bonus for four or more tries, 1 bonus for losing by seven or fewer.
func DefaultScoringRules() ScoringRuleSet {
	return ScoringRuleSet{
		WinPoints:             4,
		DrawPoints:            2,
		LossPoints:            0,
		OffensiveBonusPoints:  1,
		DefensiveBonusPoints:  1,
		TryBonusThreshold:     4,
		LosingMarginThreshold: 7,
	}
}

// Validate rejects rule sets that cannot produce a meaningful table.
func (r ScoringRuleSet) Validate() error {
	switch {
	case r.WinPoints < 0, r.DrawPoints < 0, r.LossPoints < 0:
		return &ConfigurationError{Reason: "outcome points must not be negative"}
	case r.OffensiveBonusPoints < 0, r.DefensiveBonusPoints < 0:
		return &ConfigurationError{Reason: "bonus points must not be negative"}
	case r.TryBonusThreshold < 1:
		return &ConfigurationError{Reason: "try bonus threshold must be at least 1"}
	case r.LosingMarginThreshold < 0:
		return &ConfigurationError{Reason: "losing margin threshold must not be negative"}
	}
	return nil
}

// Bonus reports which bonus points one side earned in a match.
type Bonus struct {
	Offensive bool
	Defensive bool
}

// BonusFor evaluates the bonus rules for one side of a result.
// The offensive bonus ignores the outcome. The defensive bonus needs a loss;
// draws and wins never earn it.
func (r ScoringRuleSet) BonusFor(result MatchResult, p Perspective) Bonus {
	scored, conceded, tries, _ := result.side(p)
	return Bonus{
		Offensive: tries >= r.TryBonusThreshold,
		Defensive: scored < conceded && conceded-scored <= r.LosingMarginThreshold,
	}
}

// TablePoints derives a row's table points from its counters.
func (r ScoringRuleSet) TablePoints(row StandingsRow) int {
	return row.Won*r.WinPoints +
		row.Drawn*r.DrawPoints +
		row.Lost*r.LossPoints +
		row.OffensiveBonuses*r.OffensiveBonusPoints +
		row.DefensiveBonuses*r.DefensiveBonusPoints
}

// MatchPoints is the number of table points one side earns from a single result.
func (r ScoringRuleSet) MatchPoints(result MatchResult, p Perspective) int {
	points := r.LossPoints
	switch result.OutcomeFor(p) {
	case Win:
		points = r.WinPoints
	case Draw:
		points = r.DrawPoints
	}
	bonus := r.BonusFor(result, p)
	if bonus.Offensive {
		points += r.OffensiveBonusPoints
	}
	if bonus.Defensive {
		points += r.DefensiveBonusPoints
	}
	return points
}
