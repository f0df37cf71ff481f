package usecase

import "stock_signals/internal/feature/scoring/domain/entity"

// rankOrder は DetermineTrend で使う並び順です。B-- は最上位として扱われます。
var rankOrder = []entity.Rank{
	entity.RankF, entity.RankD, entity.RankC, entity.RankB,
	entity.RankA, entity.RankAPlus, entity.RankAPlusPlus, entity.RankBMinusMinus,
}

// LongRank grades the sum of all seven timeframe scores.
func LongRank(score int) entity.Rank {
	switch {
	case score == 120:
		return entity.RankAPlusPlus
	case score == -120:
		return entity.RankBMinusMinus
	case score >= 80:
		return entity.RankAPlus
	case score >= 40:
		return entity.RankA
	case score >= 0:
		return entity.RankB
	case score > -40:
		return entity.RankC
	case score > -80:
		return entity.RankD
	default:
		return entity.RankF
	}
}

// ShortRank grades the sum of the intraday timeframe scores.
func ShortRank(score int) entity.Rank {
	switch {
	case score == 60:
		return entity.RankAPlusPlus
	case score == -60:
		return entity.RankBMinusMinus
	case score >= 30:
		return entity.RankAPlus
	case score >= 10:
		return entity.RankA
	case score >= 0:
		return entity.RankB
	case score > -10:
		return entity.RankC
	case score > -30:
		return entity.RankD
	default:
		return entity.RankF
	}
}

func rankIndex(r entity.Rank) int {
	for i, o := range rankOrder {
		if o == r {
			return i
		}
	}
	return -1
}

// DetermineTrend compares the short rank against the long rank.
func DetermineTrend(long, short entity.Rank) entity.Trend {
	li, si := rankIndex(long), rankIndex(short)
	switch {
	case si > li:
		return entity.TrendUp
	case si < li:
		return entity.TrendDown
	default:
		return entity.TrendNone
	}
}

// ChangeFrom compares the current long score with the previous snapshot.
// prev が nil の場合は変化なしです。
func ChangeFrom(prev *entity.TickerScore, longScore int) entity.ScoreChange {
	if prev == nil {
		return entity.ScoreChange{Direction: entity.TrendNone}
	}
	delta := longScore - prev.LongScore
	switch {
	case delta > 0:
		return entity.ScoreChange{Direction: entity.TrendUp, Delta: delta}
	case delta < 0:
		return entity.ScoreChange{Direction: entity.TrendDown, Delta: delta}
	default:
		return entity.ScoreChange{Direction: entity.TrendNone}
	}
}
