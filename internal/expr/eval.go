package expr

import "math"

// Eval walks the tree with x bound at leaf resolution. The variable is
// never substituted into the source text, so the numeric form of x can
// not reintroduce tokens into the grammar.
func (e *Expr) Eval(x float64) (float64, error) {
	return evalNode(e.root, x)
}

// Evaluate is a one-shot convenience for callers that do not reuse the
// parsed tree.
func Evaluate(src string, x float64) (float64, error) {
	parsed, err := Parse(src)
	if err != nil {
		return 0, err
	}
	return parsed.Eval(x)
}

func evalNode(n *node, x float64) (float64, error) {
	switch n.kind {
	case nodeNumber:
		return n.value, nil
	case nodeVariable:
		return x, nil
	case nodeUnary:
		v, err := evalNode(n.left, x)
		if err != nil {
			return 0, err
		}
		return -v, nil
	case nodeCall:
		arg, err := evalNode(n.left, x)
		if err != nil {
			return 0, err
		}
		return functions[n.fn](arg), nil
	case nodeBinary:
		left, err := evalNode(n.left, x)
		if err != nil {
			return 0, err
		}
		right, err := evalNode(n.right, x)
		if err != nil {
			return 0, err
		}
		switch n.op {
		case '+':
			return left + right, nil
		case '-':
			return left - right, nil
		case '*':
			return left * right, nil
		case '/':
			if right == 0 {
				return 0, errAt(ErrDivisionByZero, -1, "division by zero")
			}
			return left / right, nil
		default: // '^'
			return math.Pow(left, right), nil
		}
	}
	// Unreachable for trees built by Parse.
	return 0, errAt(ErrSyntax, -1, "malformed syntax tree")
}
