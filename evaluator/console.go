package evaluator

import (
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/navionguy/qbasic/ast"
	"github.com/navionguy/qbasic/berrors"
	"github.com/navionguy/qbasic/gwtypes"
	"github.com/navionguy/qbasic/object"
	"github.com/navionguy/qbasic/token"
)

// PRINT zones are this wide
const zoneWidth = 14

// how often SLEEP looks at the keyboard
const keyPoll = 50 * time.Millisecond

func (ev *evaluator) execPrint(st *ast.PrintStatement) *Signal {
	term := ev.env.Terminal()
	buf := ev.env.Scratch()
	defer func() { ev.env.KeepScratch(buf) }()

	sep := ""
	for i, item := range st.Items {
		sep = ""
		if i < len(st.Separators) {
			sep = st.Separators[i]
		}

		if item != nil {
			val := ev.eval(item)
			if isError(val) {
				return ev.fail(val)
			}
			if _, ok := object.KindOf(val); !ok || val.Type() == object.RECORD_OBJ {
				return ev.raise(stdError(berrors.TypeMismatch, item))
			}
			buf = object.AppendPrint(buf[:0], val)
			term.Print(string(buf))
		}

		if sep == token.COMMA {
			_, col := term.GetCursor()
			term.Print(strings.Repeat(" ", zoneWidth-(col-1)%zoneWidth))
		}
	}

	if len(sep) == 0 {
		term.Println("")
	}
	return nil
}

func (ev *evaluator) execLocate(st *ast.LocateStatement) *Signal {
	row, err := ev.optInt(st.Row, 0)
	if err != nil {
		return ev.fail(err)
	}
	col, err := ev.optInt(st.Col, 0)
	if err != nil {
		return ev.fail(err)
	}
	if (st.Row != nil && (row < 1 || row > 25)) || (st.Col != nil && (col < 1 || col > 80)) {
		return ev.raise(object.StdError(berrors.IllegalFuncCallErr).Blame(st.Token))
	}
	ev.env.Terminal().Locate(row, col)
	return nil
}

func (ev *evaluator) execColor(st *ast.ColorStatement) *Signal {
	colors := []int{object.ColorDefault, object.ColorDefault}
	limits := []int{31, 15}
	for i, exp := range st.Parms {
		if i >= len(colors) || exp == nil {
			continue
		}
		c, err := ev.intArg(exp)
		if err != nil {
			return ev.fail(err)
		}
		if c < 0 || c > limits[i] {
			return ev.raise(stdError(berrors.IllegalFuncCallErr, exp))
		}
		colors[i] = c
	}
	ev.env.Terminal().Color(colors[0], colors[1])
	return nil
}

// inputPrompt, a prompt followed by ; gets a question mark
func inputPrompt(prompt string, question bool) string {
	if len(prompt) == 0 {
		return "? "
	}
	if question {
		return prompt + "? "
	}
	return prompt
}

func (ev *evaluator) execInput(st *ast.InputStatement) *Signal {
	line, err := ev.env.Terminal().ReadLine(inputPrompt(st.Prompt, st.QuestionMark))
	if err != nil {
		return ev.raise(object.StdError(berrors.InputPastEnd).Blame(st.Token))
	}

	fields := splitInput(line)
	if len(fields) != len(st.Vars) {
		return ev.raise(object.StdError(berrors.Syntax).Blame(st.Token))
	}

	for i, v := range st.Vars {
		loc, err := ev.locate(v)
		if err != nil {
			return ev.fail(err)
		}

		var val object.Object = &object.String{Value: fields[i]}
		if loc.spec.Kind != gwtypes.String {
			n, ok := parseNumber(fields[i])
			if !ok {
				return ev.raise(object.StdError(berrors.Syntax).Blame(st.Token))
			}
			val = n
		}
		if err := loc.put(val); err != nil {
			return ev.raise(blame(err, v))
		}
	}
	return nil
}

func (ev *evaluator) execLineInput(st *ast.LineInputStatement) *Signal {
	line, err := ev.env.Terminal().ReadLine(st.Prompt)
	if err != nil {
		return ev.raise(object.StdError(berrors.InputPastEnd).Blame(st.Token))
	}
	return ev.store(st.Var, &object.String{Value: line})
}

// splitInput breaks an INPUT line at commas, quoted items may hold commas
func splitInput(line string) []string {
	fields := []string{}
	var cur strings.Builder
	quoted, wasQuoted := false, false

	flush := func() {
		s := cur.String()
		if !wasQuoted {
			s = strings.TrimSpace(s)
		}
		fields = append(fields, s)
		cur.Reset()
		wasQuoted = false
	}

	for i := 0; i < len(line); i++ {
		c := line[i]
		switch {
		case c == '"':
			quoted = !quoted
			if quoted {
				cur.Reset()
				wasQuoted = true
			}
		case c == ',' && !quoted:
			flush()
		case wasQuoted && !quoted:
			// text after the closing quote is dropped
		default:
			cur.WriteByte(c)
		}
	}
	flush()
	return fields
}

// numericItem checks s is a BASIC number: sign, digits with an
// optional fraction, an E or D exponent and a type suffix
func numericItem(s string) bool {
	isDigit := func(i int) bool { return i < len(s) && s[i] >= '0' && s[i] <= '9' }
	i, digits := 0, 0
	if i < len(s) && (s[i] == '+' || s[i] == '-') {
		i++
	}
	for ; isDigit(i); i++ {
		digits++
	}
	if i < len(s) && s[i] == '.' {
		for i++; isDigit(i); i++ {
			digits++
		}
	}
	if digits == 0 {
		return false
	}
	if i < len(s) && strings.IndexByte("eEdD", s[i]) >= 0 {
		i++
		if i < len(s) && (s[i] == '+' || s[i] == '-') {
			i++
		}
		exp := 0
		for ; isDigit(i); i++ {
			exp++
		}
		if exp == 0 {
			return false
		}
	}
	if i < len(s) && strings.IndexByte("%&!#@", s[i]) >= 0 {
		i++
	}
	return i == len(s)
}

// parseNumber reads a typed number, an empty item is zero
func parseNumber(s string) (object.Object, bool) {
	s = strings.TrimSpace(s)
	if len(s) == 0 {
		return &object.Integer{}, true
	}
	if !numericItem(s) {
		return nil, false
	}
	s = strings.TrimRight(s, "%&!#@")
	s = strings.Map(func(r rune) rune {
		if r == 'd' || r == 'D' {
			return 'E'
		}
		return r
	}, s)

	if i, err := strconv.ParseInt(s, 10, 64); err == nil {
		if i >= math.MinInt16 && i <= math.MaxInt16 {
			return &object.Integer{Value: int16(i)}, true
		}
		if i >= math.MinInt32 && i <= math.MaxInt32 {
			return &object.IntDbl{Value: int32(i)}, true
		}
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsInf(f, 0) || math.IsNaN(f) {
		return nil, false
	}
	return &object.FloatDbl{Value: f}, true
}

// execSleep waits until the time is up or a key arrives. With no
// time it waits for the key alone.
func (ev *evaluator) execSleep(st *ast.SleepStatement) *Signal {
	secs, err := ev.optInt(st.Seconds, 0)
	if err != nil {
		return ev.fail(err)
	}

	term := ev.env.Terminal()
	left := time.Duration(secs) * time.Second
	if secs <= 0 {
		if kl, ok := term.(object.Keyless); ok && kl.Keyless() {
			return nil
		}
		left = -1
	}

	for len(term.ReadKeys(1)) == 0 {
		if term.BreakCheck() {
			return &Signal{Kind: SigEnd, Stop: true}
		}
		if left == 0 {
			return nil
		}
		nap := keyPoll
		if left > 0 && left < nap {
			nap = left
		}
		ev.env.Sleep(nap)
		if left > 0 {
			left -= nap
		}
	}
	return nil
}

// execRandomize reseeds, from the clock when no seed is given
func (ev *evaluator) execRandomize(st *ast.RandomizeStatement) *Signal {
	if st.Seed == nil {
		now := ev.env.Now()
		ev.env.Randomize(int64(now.Hour()*3600+now.Minute()*60+now.Second())*1000 + int64(now.Nanosecond()/1e6))
		return nil
	}
	val := ev.eval(st.Seed)
	if isError(val) {
		return ev.fail(val)
	}
	f, ok := object.ToFloat64(val)
	if !ok {
		return ev.raise(stdError(berrors.TypeMismatch, st.Seed))
	}
	ev.env.Randomize(int64(math.Float64bits(f)))
	return nil
}
