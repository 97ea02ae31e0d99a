package dice

import "go.uber.org/zap"

// Roller wraps a Source with debug logging of every roll. It also satisfies
// Source so it can be handed to any rule that only needs raw integers.
type Roller struct {
	src    Source
	logger *zap.Logger
}

// NewLoggedRoller creates a Roller that draws from src and logs to logger.
//
// Precondition: src must be non-nil. A nil logger is replaced by zap.NewNop().
func NewLoggedRoller(src Source, logger *zap.Logger) *Roller {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Roller{src: src, logger: logger}
}

// Intn delegates to the wrapped Source without logging.
func (r *Roller) Intn(n int) int { return r.src.Intn(n) }

// Roll evaluates expr and logs the result at debug level.
func (r *Roller) Roll(expr Expression) RollResult {
	result := Roll(expr, r.src)
	r.logger.Debug("dice roll",
		zap.String("expression", result.Expression),
		zap.Ints("dice", result.Dice),
		zap.Int("modifier", result.Modifier),
		zap.Int("total", result.Total()),
	)
	return result
}

// RollExpr parses expr and rolls it.
func (r *Roller) RollExpr(expr string) (RollResult, error) {
	e, err := Parse(expr)
	if err != nil {
		return RollResult{}, err
	}
	return r.Roll(e), nil
}

// Percent reports whether a check with the given percent chance succeeds.
// label names the check in the debug log.
//
// Postcondition: percent <= 0 never succeeds; percent >= 100 always succeeds.
func (r *Roller) Percent(label string, percent int) bool {
	ok := Percent(r.src, percent)
	r.logger.Debug("chance roll",
		zap.String("check", label),
		zap.Int("percent", percent),
		zap.Bool("success", ok),
	)
	return ok
}

// Percent reports whether a roll in [0, 100) lands below percent.
//
// Postcondition: percent <= 0 never succeeds; percent >= 100 always succeeds.
func Percent(src Source, percent int) bool {
	if percent <= 0 {
		return false
	}
	if percent >= 100 {
		return true
	}
	return src.Intn(100) < percent
}

// Pick returns a uniformly chosen index in [0, n), or -1 when n <= 0.
func Pick(src Source, n int) int {
	if n <= 0 {
		return -1
	}
	return src.Intn(n)
}
