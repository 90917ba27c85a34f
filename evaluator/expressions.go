package evaluator

import (
	"fmt"
	"math"
	"strings"

	"github.com/navionguy/qbasic/ast"
	"github.com/navionguy/qbasic/berrors"
	"github.com/navionguy/qbasic/gwtypes"
	"github.com/navionguy/qbasic/object"
	"github.com/navionguy/qbasic/token"
	"github.com/shopspring/decimal"
)

const maxString = 32767

// eval returns the object at an expression node
func (ev *evaluator) eval(node ast.Expression) object.Object {
	switch node := node.(type) {
	case *ast.IntegerLiteral:
		return &object.Integer{Value: node.Value}

	case *ast.DblIntegerLiteral:
		return &object.IntDbl{Value: node.Value}

	case *ast.FloatSingleLiteral:
		return &object.FloatSgl{Value: node.Value}

	case *ast.FloatDoubleLiteral:
		return &object.FloatDbl{Value: node.Value}

	case *ast.CurrencyLiteral:
		return &object.Currency{Value: node.Value}

	case *ast.StringLiteral:
		return &object.String{Value: node.Value}

	case *ast.GroupedExpression:
		return ev.eval(node.Exp)

	case *ast.Identifier:
		v := ev.env.Variable(node.Slot)
		if v.Value == nil {
			// only an array that was never dimensioned, or was erased
			return stdError(berrors.SubscriptRange, node)
		}
		return v.Value

	case *ast.IndexExpression, *ast.FieldExpression:
		loc, err := ev.locate(node.(ast.Assignable))
		if err != nil {
			return err
		}
		return loc.load()

	case *ast.PrefixExpression:
		right := ev.eval(node.Right)
		if isError(right) {
			return right
		}
		return evalPrefixExpression(node.Operator, right, node.Token)

	case *ast.InfixExpression:
		left := ev.eval(node.Left)
		if isError(left) {
			return left
		}
		right := ev.eval(node.Right)
		if isError(right) {
			return right
		}
		return evalInfixExpression(node.Operator, left, right, node.Token)

	case *ast.CallExpression:
		if node.Routine == nil {
			return ev.evalBuiltin(node)
		}
		val, sig := ev.callRoutine(node.Routine, node.Arguments)
		if sig != nil {
			ev.pending = sig
			return halted
		}
		return val
	}

	panic(fmt.Sprintf("no evaluation for %T", node))
}

func evalPrefixExpression(operator string, right object.Object, tk token.Token) object.Object {
	switch operator {
	case token.MINUS:
		return evalMinusPrefixOperatorExpression(right, tk)
	case token.NOT:
		return evalNotPrefixOperatorExpression(right, tk)
	}
	panic("unknown prefix operator " + operator)
}

func evalMinusPrefixOperatorExpression(right object.Object, tk token.Token) object.Object {
	switch r := right.(type) {
	case *object.Integer:
		if r.Value == math.MinInt16 {
			return object.StdError(berrors.Overflow).Blame(tk)
		}
		return &object.Integer{Value: -r.Value}
	case *object.IntDbl:
		if r.Value == math.MinInt32 {
			return object.StdError(berrors.Overflow).Blame(tk)
		}
		return &object.IntDbl{Value: -r.Value}
	case *object.FloatSgl:
		return &object.FloatSgl{Value: -r.Value}
	case *object.FloatDbl:
		return &object.FloatDbl{Value: -r.Value}
	case *object.Currency:
		d, ok := object.CheckCurrency(r.Value.Neg())
		if !ok {
			return object.StdError(berrors.Overflow).Blame(tk)
		}
		return &object.Currency{Value: d}
	}
	return object.StdError(berrors.TypeMismatch).Blame(tk)
}

func evalNotPrefixOperatorExpression(right object.Object, tk token.Token) object.Object {
	if i, ok := right.(*object.Integer); ok {
		return &object.Integer{Value: ^i.Value}
	}
	v, err := longOperand(right, tk)
	if err != nil {
		return err
	}
	return &object.IntDbl{Value: ^int32(v)}
}

// evalInfixExpression promotes both operands to a common kind and
// hands them to the arithmetic family of that kind
func evalInfixExpression(operator string, left, right object.Object, tk token.Token) object.Object {
	lk, lok := object.KindOf(left)
	rk, rok := object.KindOf(right)
	if !lok || !rok || lk == gwtypes.Record || rk == gwtypes.Record {
		return object.StdError(berrors.TypeMismatch).Blame(tk)
	}

	if lk == gwtypes.String || rk == gwtypes.String {
		if lk != rk {
			return object.StdError(berrors.TypeMismatch).Blame(tk)
		}
		return evalStringInfixExpression(operator, left.(*object.String).Value, right.(*object.String).Value, tk)
	}

	curr := lk == gwtypes.Currency || rk == gwtypes.Currency
	if curr && (lk.Float() || rk.Float()) {
		return object.StdError(berrors.TypeMismatch).Blame(tk)
	}

	switch operator {
	case token.EQ, token.NOT_EQ, token.LT, token.GT, token.LTE, token.GTE:
		c, err := compareValues(left, right)
		if err != nil {
			return err.Blame(tk)
		}
		return object.Bool(relation(operator, c))

	case token.AND, token.OR, token.XOR, token.EQV, token.IMP:
		return evalLogicalInfixExpression(operator, left, right, lk, rk, tk)

	case token.BSLASH, token.MOD:
		return evalIntDivideExpression(operator, left, right, lk, rk, tk)

	case token.CARET:
		return evalPowerExpression(left, right, lk, rk, tk)
	}

	if curr {
		ld, _ := object.ToDecimal(left)
		rd, _ := object.ToDecimal(right)
		return evalCurrencyInfixExpression(operator, ld, rd, tk)
	}

	if lk.Float() || rk.Float() || operator == token.SLASH {
		lf, _ := object.ToFloat64(left)
		rf, _ := object.ToFloat64(right)
		return evalFloatInfixExpression(operator, lf, rf, floatKind(operator, lk, rk), tk)
	}

	li, _ := object.ToInt64(left)
	ri, _ := object.ToInt64(right)
	kind := gwtypes.Integer
	if lk == gwtypes.Long || rk == gwtypes.Long {
		kind = gwtypes.Long
	}
	return evalIntegerInfixExpression(operator, li, ri, kind, tk)
}

// floatKind is the result kind of float arithmetic
// integer division with / gives Single, Double once a Long is involved
func floatKind(operator string, lk, rk gwtypes.Kind) gwtypes.Kind {
	if lk == gwtypes.Double || rk == gwtypes.Double {
		return gwtypes.Double
	}
	if operator == token.SLASH && !lk.Float() && !rk.Float() && (lk == gwtypes.Long || rk == gwtypes.Long) {
		return gwtypes.Double
	}
	return gwtypes.Single
}

func relation(operator string, c int) bool {
	switch operator {
	case token.EQ:
		return c == 0
	case token.NOT_EQ:
		return c != 0
	case token.LT:
		return c < 0
	case token.GT:
		return c > 0
	case token.LTE:
		return c <= 0
	case token.GTE:
		return c >= 0
	}
	panic("unknown relation " + operator)
}

// compareValues orders two values by the same rules arithmetic
// promotes them, IF, relational operators and CASE all use it
func compareValues(left, right object.Object) (int, *object.Error) {
	ls, lstr := left.(*object.String)
	rs, rstr := right.(*object.String)
	if lstr || rstr {
		if !lstr || !rstr {
			return 0, object.StdError(berrors.TypeMismatch)
		}
		return strings.Compare(ls.Value, rs.Value), nil
	}

	lk, lok := object.KindOf(left)
	rk, rok := object.KindOf(right)
	if !lok || !rok || !lk.Numeric() || !rk.Numeric() {
		return 0, object.StdError(berrors.TypeMismatch)
	}

	switch {
	case lk == gwtypes.Currency || rk == gwtypes.Currency:
		if lk.Float() || rk.Float() {
			return 0, object.StdError(berrors.TypeMismatch)
		}
		ld, _ := object.ToDecimal(left)
		rd, _ := object.ToDecimal(right)
		return ld.Cmp(rd), nil

	case !lk.Float() && !rk.Float():
		li, _ := object.ToInt64(left)
		ri, _ := object.ToInt64(right)
		return compareOrdered(li, ri), nil
	}

	lf, _ := object.ToFloat64(left)
	rf, _ := object.ToFloat64(right)
	return compareOrdered(lf, rf), nil
}

func compareOrdered[T int64 | float64 | int16 | int32 | float32](a, b T) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	}
	return 0
}

func evalStringInfixExpression(operator string, left, right string, tk token.Token) object.Object {
	switch operator {
	case token.PLUS:
		if len(left)+len(right) > maxString {
			return object.StdError(berrors.String2Long).Blame(tk)
		}
		return &object.String{Value: left + right}
	case token.EQ, token.NOT_EQ, token.LT, token.GT, token.LTE, token.GTE:
		return object.Bool(relation(operator, strings.Compare(left, right)))
	}
	return object.StdError(berrors.TypeMismatch).Blame(tk)
}

// evalIntegerInfixExpression works in 64 bits and range checks the result
func evalIntegerInfixExpression(operator string, left, right int64, kind gwtypes.Kind, tk token.Token) object.Object {
	var res int64
	switch operator {
	case token.PLUS:
		res = left + right
	case token.MINUS:
		res = left - right
	case token.ASTERISK:
		res = left * right
	default:
		panic("unknown integer operator " + operator)
	}
	return integerResult(res, kind, tk)
}

func integerResult(res int64, kind gwtypes.Kind, tk token.Token) object.Object {
	if kind == gwtypes.Integer {
		if res < math.MinInt16 || res > math.MaxInt16 {
			return object.StdError(berrors.Overflow).Blame(tk)
		}
		return &object.Integer{Value: int16(res)}
	}
	if res < math.MinInt32 || res > math.MaxInt32 {
		return object.StdError(berrors.Overflow).Blame(tk)
	}
	return &object.IntDbl{Value: int32(res)}
}

// evalFloatInfixExpression, Single results are rounded to float32
func evalFloatInfixExpression(operator string, left, right float64, kind gwtypes.Kind, tk token.Token) object.Object {
	var res float64
	switch operator {
	case token.PLUS:
		res = left + right
	case token.MINUS:
		res = left - right
	case token.ASTERISK:
		res = left * right
	case token.SLASH:
		if right == 0 {
			return object.StdError(berrors.DivByZero).Blame(tk)
		}
		res = left / right
	default:
		panic("unknown float operator " + operator)
	}
	if kind == gwtypes.Single {
		return &object.FloatSgl{Value: float32(res)}
	}
	return &object.FloatDbl{Value: res}
}

// evalCurrencyInfixExpression range checks every result
func evalCurrencyInfixExpression(operator string, left, right decimal.Decimal, tk token.Token) object.Object {
	var res decimal.Decimal
	switch operator {
	case token.PLUS:
		res = left.Add(right)
	case token.MINUS:
		res = left.Sub(right)
	case token.ASTERISK:
		res = left.Mul(right)
	case token.SLASH:
		if right.IsZero() {
			return object.StdError(berrors.DivByZero).Blame(tk)
		}
		res = left.DivRound(right, 6)
	default:
		panic("unknown currency operator " + operator)
	}
	d, ok := object.CheckCurrency(res)
	if !ok {
		return object.StdError(berrors.Overflow).Blame(tk)
	}
	return &object.Currency{Value: d}
}

// longOperand rounds a value for the operators that only work on whole numbers
func longOperand(obj object.Object, tk token.Token) (int64, *object.Error) {
	i, ok := object.ToInt64(obj)
	if _, num := object.ToFloat64(obj); !num {
		return 0, object.StdError(berrors.TypeMismatch).Blame(tk)
	}
	if !ok || i < math.MinInt32 || i > math.MaxInt32 {
		return 0, object.StdError(berrors.Overflow).Blame(tk)
	}
	return i, nil
}

func wholeKind(lk, rk gwtypes.Kind) gwtypes.Kind {
	if lk == gwtypes.Integer && rk == gwtypes.Integer {
		return gwtypes.Integer
	}
	return gwtypes.Long
}

func evalIntDivideExpression(operator string, left, right object.Object, lk, rk gwtypes.Kind, tk token.Token) object.Object {
	l, err := longOperand(left, tk)
	if err != nil {
		return err
	}
	r, err := longOperand(right, tk)
	if err != nil {
		return err
	}
	if r == 0 {
		return object.StdError(berrors.DivByZero).Blame(tk)
	}
	if operator == token.MOD {
		return integerResult(l%r, wholeKind(lk, rk), tk)
	}
	return integerResult(l/r, wholeKind(lk, rk), tk)
}

// evalLogicalInfixExpression, the logical operators are bitwise
func evalLogicalInfixExpression(operator string, left, right object.Object, lk, rk gwtypes.Kind, tk token.Token) object.Object {
	l, err := longOperand(left, tk)
	if err != nil {
		return err
	}
	r, err := longOperand(right, tk)
	if err != nil {
		return err
	}

	var res int64
	switch operator {
	case token.AND:
		res = l & r
	case token.OR:
		res = l | r
	case token.XOR:
		res = l ^ r
	case token.EQV:
		res = ^(l ^ r)
	case token.IMP:
		res = ^l | r
	}
	return integerResult(res, wholeKind(lk, rk), tk)
}

// evalPowerExpression gives Double unless both sides are at most Single
func evalPowerExpression(left, right object.Object, lk, rk gwtypes.Kind, tk token.Token) object.Object {
	x, _ := object.ToFloat64(left)
	y, _ := object.ToFloat64(right)
	if x == 0 && y < 0 {
		return object.StdError(berrors.DivByZero).Blame(tk)
	}
	res := math.Pow(x, y)
	if math.IsNaN(res) {
		return object.StdError(berrors.IllegalFuncCallErr).Blame(tk)
	}
	if lk <= gwtypes.Single && rk <= gwtypes.Single {
		return &object.FloatSgl{Value: float32(res)}
	}
	return &object.FloatDbl{Value: res}
}

// tokenOf finds the source token a fault in node is blamed on
func tokenOf(node ast.Node) token.Token {
	switch n := node.(type) {
	case *ast.Identifier:
		return n.Token
	case *ast.IndexExpression:
		return n.Token
	case *ast.FieldExpression:
		return n.Token
	case *ast.IntegerLiteral:
		return n.Token
	case *ast.DblIntegerLiteral:
		return n.Token
	case *ast.FloatSingleLiteral:
		return n.Token
	case *ast.FloatDoubleLiteral:
		return n.Token
	case *ast.CurrencyLiteral:
		return n.Token
	case *ast.StringLiteral:
		return n.Token
	case *ast.GroupedExpression:
		return n.Token
	case *ast.PrefixExpression:
		return n.Token
	case *ast.InfixExpression:
		return n.Token
	case *ast.CallExpression:
		return n.Token
	}
	return token.Token{Literal: node.TokenLiteral()}
}
