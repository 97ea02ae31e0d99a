package dice

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// RollResult holds the audit trail for a single dice roll.
//
// Postcondition: Total() == sum(Dice) + Modifier.
type RollResult struct {
	Expression string
	Dice       []int
	Modifier   int
}

// Total returns the sum of all die results plus the modifier.
func (r RollResult) Total() int {
	total := r.Modifier
	for _, d := range r.Dice {
		total += d
	}
	return total
}

// String renders the roll as "1d4+1 → [3] +1 = 4".
//
// Precondition: r.Expression is non-empty.
func (r RollResult) String() string {
	if r.Expression == "" {
		panic("dice: RollResult.String() precondition violated: Expression must be non-empty")
	}
	return fmt.Sprintf("%s → %v %+d = %d", r.Expression, r.Dice, r.Modifier, r.Total())
}

// Expression is a parsed "NdS+M" dice expression.
//
// Invariant: Count >= 1 and Sides >= 1 after a successful Parse.
type Expression struct {
	Raw      string
	Count    int
	Sides    int
	Modifier int
}

var exprPattern = regexp.MustCompile(`^(\d*)d(\d+)([+-]\d+)?$`)

// Parse parses expressions of the form "d3", "1d3", "1d4+1" or "2d6-2".
//
// Postcondition: Returns a valid Expression or a descriptive error.
func Parse(expr string) (Expression, error) {
	s := strings.ToLower(strings.ReplaceAll(expr, " ", ""))
	if s == "" {
		return Expression{}, fmt.Errorf("dice: empty expression")
	}
	m := exprPattern.FindStringSubmatch(s)
	if m == nil {
		return Expression{}, fmt.Errorf("dice: malformed expression %q", expr)
	}
	count := 1
	if m[1] != "" {
		n, err := strconv.Atoi(m[1])
		if err != nil || n < 1 {
			return Expression{}, fmt.Errorf("dice: invalid die count in %q", expr)
		}
		count = n
	}
	sides, err := strconv.Atoi(m[2])
	if err != nil || sides < 1 {
		return Expression{}, fmt.Errorf("dice: invalid die sides in %q", expr)
	}
	mod := 0
	if m[3] != "" {
		mod, err = strconv.Atoi(m[3])
		if err != nil {
			return Expression{}, fmt.Errorf("dice: invalid modifier in %q: %w", expr, err)
		}
	}
	return Expression{Raw: expr, Count: count, Sides: sides, Modifier: mod}, nil
}

// MustParse parses expr and panics on error.
func MustParse(expr string) Expression {
	e, err := Parse(expr)
	if err != nil {
		panic("dice: MustParse failed for expression " + expr + ": " + err.Error())
	}
	return e
}

// Min returns the smallest total the expression can produce.
func (e Expression) Min() int { return e.Count + e.Modifier }

// Max returns the largest total the expression can produce.
func (e Expression) Max() int { return e.Count*e.Sides + e.Modifier }

// Roll evaluates expr against src.
//
// Postcondition: len(result.Dice) == expr.Count and each die is in [1, Sides].
func Roll(expr Expression, src Source) RollResult {
	rolled := make([]int, expr.Count)
	for i := range rolled {
		rolled[i] = src.Intn(expr.Sides) + 1
	}
	return RollResult{Expression: expr.Raw, Dice: rolled, Modifier: expr.Modifier}
}
