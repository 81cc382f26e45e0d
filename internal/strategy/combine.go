package strategy

import (
	"traderBot/internal/domain"
)

// Vote is one enabled strategy's contribution to a combination round.
type Vote struct {
	Strategy string        `json:"strategy"`
	Weight   float64       `json:"weight"`
	Signal   domain.Signal `json:"signal"`
	// Err is set when market data could not be fetched and the vote was degraded to NONE.
	Err string `json:"error,omitempty"`
}

// Combine reconciles the votes of enabled strategies using method.
// Votes are expected in configuration order; the result does not depend on it.
func Combine(method domain.CombinationMethod, votes []Vote) domain.Signal {
	if len(votes) == 0 {
		return domain.SignalNone
	}
	switch method {
	case domain.MethodUnanimous:
		return unanimous(votes)
	case domain.MethodMajority:
		return majority(votes)
	case domain.MethodWeighted:
		return weighted(votes)
	case domain.MethodAny:
		return anySignal(votes)
	default:
		return domain.SignalNone
	}
}

func unanimous(votes []Vote) domain.Signal {
	first := votes[0].Signal
	if !first.IsActionable() {
		return domain.SignalNone
	}
	for _, v := range votes[1:] {
		if v.Signal != first {
			return domain.SignalNone
		}
	}
	return first
}

// majority requires strictly more than half of all votes, NONE votes included.
func majority(votes []Vote) domain.Signal {
	var buys, sells int
	for _, v := range votes {
		switch v.Signal {
		case domain.SignalBuy:
			buys++
		case domain.SignalSell:
			sells++
		}
	}
	total := len(votes)
	switch {
	case buys*2 > total:
		return domain.SignalBuy
	case sells*2 > total:
		return domain.SignalSell
	default:
		return domain.SignalNone
	}
}

func weighted(votes []Vote) domain.Signal {
	var buy, sell float64
	for _, v := range votes {
		switch v.Signal {
		case domain.SignalBuy:
			buy += v.Weight
		case domain.SignalSell:
			sell += v.Weight
		}
	}
	switch {
	case buy > sell:
		return domain.SignalBuy
	case sell > buy:
		return domain.SignalSell
	default:
		return domain.SignalNone
	}
}

// anySignal returns the highest-ranked signal present: BUY over SELL over NONE.
func anySignal(votes []Vote) domain.Signal {
	best := domain.SignalNone
	for _, v := range votes {
		if v.Signal.Rank() > best.Rank() {
			best = v.Signal
		}
	}
	return best
}
