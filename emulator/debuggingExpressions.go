package emulator

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/Joiy908/Nand2Tetris/assembler"
)

// EvaluationResult is the value of a watch expression. Address is the RAM address the value was
// read from, or -1 when it was not read from memory.
type EvaluationResult struct {
	String  string
	Value   uint16
	Address int
}

type evaluationToken struct {
	dataType string // literal, int, operator, open, close
	strValue string
	value    uint16
	address  int
}

type evaluationOperator struct {
	precedence int
	function   func(a, b uint16) uint16
}

var binaryOperators = map[string]evaluationOperator{
	"|": {0, func(a, b uint16) uint16 { return a | b }},
	"&": {1, func(a, b uint16) uint16 { return a & b }},
	"+": {2, func(a, b uint16) uint16 { return a + b }},
	"-": {2, func(a, b uint16) uint16 { return a - b }},
}

var unaryOperators = map[string]func(uint16) uint16{
	"-": func(a uint16) uint16 { return -a },
	"!": func(a uint16) uint16 { return ^a },
}

type expressionEvaluator struct {
	inst    *EmulatorInstance
	symbols *assembler.SymbolTable
	tokens  []evaluationToken
	pos     int
}

// EvaluateExpression evaluates a watch expression against the current machine state. Expressions
// combine A, D, PC, M, integer literals, symbols (which stand for their address) and RAM[expr] with
// the Hack operators + - & | ! and parentheses. symbols may be nil, in which case only predefined
// symbols resolve.
func (inst *EmulatorInstance) EvaluateExpression(str string, symbols *assembler.SymbolTable) (EvaluationResult, error) {
	tokens, err := tokenizeExpression(str)
	if err != nil {
		return EvaluationResult{}, err
	}
	if len(tokens) == 0 {
		return EvaluationResult{}, errors.New("empty expression")
	}

	ev := &expressionEvaluator{inst: inst, symbols: symbols, tokens: tokens}
	res, err := ev.parseBinary(0)
	if err != nil {
		return EvaluationResult{}, err
	}
	if ev.pos != len(ev.tokens) {
		return EvaluationResult{}, fmt.Errorf("unexpected %q", ev.tokens[ev.pos].strValue)
	}

	return EvaluationResult{
		String:  fmt.Sprintf("%d (0x%04X)", int16(res.value), res.value),
		Value:   res.value,
		Address: res.address,
	}, nil
}

func tokenizeExpression(str string) ([]evaluationToken, error) {
	tokens := []evaluationToken{}
	builder := strings.Builder{}

	flush := func() {
		if builder.Len() > 0 {
			tokens = append(tokens, evaluationToken{dataType: "literal", strValue: builder.String()})
			builder.Reset()
		}
	}

	for i := 0; i < len(str); i++ {
		c := str[i]
		switch {
		case c == ' ' || c == '\t':
			flush()
		case c == '(' || c == '[':
			flush()
			tokens = append(tokens, evaluationToken{dataType: "open", strValue: string(c)})
		case c == ')' || c == ']':
			flush()
			tokens = append(tokens, evaluationToken{dataType: "close", strValue: string(c)})
		case strings.IndexByte("+-&|!", c) >= 0:
			flush()
			tokens = append(tokens, evaluationToken{dataType: "operator", strValue: string(c)})
		case c == '_' || c == '.' || c == '$' || c == ':' ||
			(c >= '0' && c <= '9') || (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z'):
			builder.WriteByte(c)
		default:
			return nil, fmt.Errorf("unexpected character %q", c)
		}
	}
	flush()
	return tokens, nil
}

func (ev *expressionEvaluator) peek() (evaluationToken, bool) {
	if ev.pos >= len(ev.tokens) {
		return evaluationToken{}, false
	}
	return ev.tokens[ev.pos], true
}

func (ev *expressionEvaluator) parseBinary(minPrecedence int) (evaluationToken, error) {
	left, err := ev.parseUnary()
	if err != nil {
		return evaluationToken{}, err
	}

	for {
		tok, ok := ev.peek()
		if !ok || tok.dataType != "operator" {
			return left, nil
		}
		op, ok := binaryOperators[tok.strValue]
		if !ok || op.precedence < minPrecedence {
			return left, nil
		}
		ev.pos++

		right, err := ev.parseBinary(op.precedence + 1)
		if err != nil {
			return evaluationToken{}, err
		}
		left = evaluationToken{dataType: "int", value: op.function(left.value, right.value), address: -1}
	}
}

func (ev *expressionEvaluator) parseUnary() (evaluationToken, error) {
	tok, ok := ev.peek()
	if !ok {
		return evaluationToken{}, errors.New("expected operand, got end of expression")
	}

	if tok.dataType == "operator" {
		f, ok := unaryOperators[tok.strValue]
		if !ok {
			return evaluationToken{}, fmt.Errorf("expected operand, got %q", tok.strValue)
		}
		ev.pos++
		operand, err := ev.parseUnary()
		if err != nil {
			return evaluationToken{}, err
		}
		return evaluationToken{dataType: "int", value: f(operand.value), address: -1}, nil
	}

	if tok.dataType == "open" && tok.strValue == "(" {
		ev.pos++
		inner, err := ev.parseBinary(0)
		if err != nil {
			return evaluationToken{}, err
		}
		if err := ev.expectClose(")"); err != nil {
			return evaluationToken{}, err
		}
		return inner, nil
	}

	if tok.dataType != "literal" {
		return evaluationToken{}, fmt.Errorf("expected operand, got %q", tok.strValue)
	}
	ev.pos++

	if tok.strValue == "RAM" {
		if next, ok := ev.peek(); ok && next.dataType == "open" && next.strValue == "[" {
			ev.pos++
			index, err := ev.parseBinary(0)
			if err != nil {
				return evaluationToken{}, err
			}
			if err := ev.expectClose("]"); err != nil {
				return evaluationToken{}, err
			}
			return ev.memory(index.value)
		}
	}
	return ev.getLiteralEvaluationToken(tok.strValue)
}

func (ev *expressionEvaluator) expectClose(closer string) error {
	tok, ok := ev.peek()
	if !ok || tok.dataType != "close" || tok.strValue != closer {
		return fmt.Errorf("expected %q", closer)
	}
	ev.pos++
	return nil
}

func (ev *expressionEvaluator) memory(addr uint16) (evaluationToken, error) {
	if addr > KeyboardAddress {
		return evaluationToken{}, fmt.Errorf("RAM[%d] is out of range", addr)
	}
	return evaluationToken{dataType: "int", value: ev.inst.ReadRAM(addr), address: int(addr)}, nil
}

func (ev *expressionEvaluator) getLiteralEvaluationToken(literal string) (evaluationToken, error) {
	switch literal {
	case "A":
		return evaluationToken{dataType: "int", value: ev.inst.a, address: -1}, nil
	case "D":
		return evaluationToken{dataType: "int", value: ev.inst.d, address: -1}, nil
	case "PC":
		return evaluationToken{dataType: "int", value: ev.inst.pc, address: -1}, nil
	case "M":
		return ev.memory(ev.inst.a)
	}

	// try to parse as hex number
	if hex, ok := strings.CutPrefix(strings.ToLower(literal), "0x"); ok {
		v, err := strconv.ParseUint(hex, 16, 16)
		if err != nil {
			return evaluationToken{}, fmt.Errorf("invalid hex literal %s", literal)
		}
		return evaluationToken{dataType: "int", value: uint16(v), address: -1}, nil
	}

	if literal[0] >= '0' && literal[0] <= '9' {
		v, err := strconv.ParseUint(literal, 10, 16)
		if err != nil {
			return evaluationToken{}, fmt.Errorf("invalid literal %s", literal)
		}
		return evaluationToken{dataType: "int", value: uint16(v), address: -1}, nil
	}

	// try to parse as a symbol
	lookup := assembler.PredefinedAddress
	if ev.symbols != nil {
		lookup = ev.symbols.Lookup
	}
	if addr, ok := lookup(literal); ok {
		return evaluationToken{dataType: "int", value: uint16(addr), address: -1}, nil
	}

	return evaluationToken{}, errors.New("could not parse literal " + literal)
}
