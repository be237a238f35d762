package formula

import (
	"fmt"
	"strconv"
)

// precedence levels, lowest to highest.
const (
	_ int = iota
	precLowest
	precEquality   // == !=
	precComparison // < <= > >=
	precConcat     // &
	precSum        // + -
	precProduct    // * /
	precUnary      // -x
)

var precedences = map[TokenType]int{
	EQ: precEquality, NEQ: precEquality,
	LT: precComparison, LE: precComparison, GT: precComparison, GE: precComparison,
	AMP:      precConcat,
	PLUS:     precSum,
	MINUS:    precSum,
	ASTERISK: precProduct,
	SLASH:    precProduct,
}

// Parser is a small recursive-descent / precedence-climbing parser over
// the formula grammar: literals, cell/range references, function calls,
// and left-to-right binary/unary arithmetic and comparison operators.
type Parser struct {
	l *Lexer

	cur, peek Token
	errors    []string
}

// NewParser creates a Parser over the given Lexer.
func NewParser(l *Lexer) *Parser {
	p := &Parser{l: l}
	p.next()
	p.next()
	return p
}

// Parse parses a complete expression. It returns the parsed Node and any
// parse errors accumulated along the way.
func Parse(src string) (Node, []string) {
	p := NewParser(New(src))
	n := p.parseExpr(precLowest)
	if p.cur.Type != EOF {
		p.errorf("unexpected trailing token %q", p.cur.Literal)
	}
	return n, p.errors
}

func (p *Parser) next() {
	p.cur = p.peek
	p.peek = p.l.NextToken()
}

func (p *Parser) errorf(format string, args ...interface{}) {
	p.errors = append(p.errors, fmt.Sprintf(format, args...))
}

func (p *Parser) parseExpr(minPrec int) Node {
	left := p.parseUnary()
	for {
		prec, ok := precedences[p.cur.Type]
		if !ok || prec < minPrec {
			return left
		}
		op := p.cur.Type
		p.next()
		right := p.parseExpr(prec + 1)
		left = BinaryExpr{Op: op, X: left, Y: right}
	}
}

func (p *Parser) parseUnary() Node {
	if p.cur.Type == MINUS {
		p.next()
		return UnaryExpr{Op: MINUS, X: p.parseExpr(precUnary)}
	}
	return p.parsePrimary()
}

func (p *Parser) parsePrimary() Node {
	switch p.cur.Type {
	case NUMBER:
		v, err := strconv.ParseInt(p.cur.Literal, 10, 64)
		if err != nil {
			p.errorf("invalid integer literal %q", p.cur.Literal)
		}
		p.next()
		return NumberLit{Value: v}
	case STRING:
		lit := p.cur.Literal
		p.next()
		return StringLit{Value: lit}
	case CELLREF:
		name := p.cur.Literal
		p.next()
		return CellRefExpr{Name: name}
	case FUNC:
		name := p.cur.Literal
		p.next()
		return p.parseCall(name)
	case LPAREN:
		p.next()
		n := p.parseExpr(precLowest)
		if p.cur.Type != RPAREN {
			p.errorf("expected ')', got %q", p.cur.Literal)
		} else {
			p.next()
		}
		return n
	default:
		p.errorf("unexpected token %q", p.cur.Literal)
		p.next()
		return NumberLit{}
	}
}

func (p *Parser) parseCall(name string) Node {
	if p.cur.Type != LPAREN {
		p.errorf("expected '(' after function name %s", name)
		return CallExpr{Func: name}
	}
	p.next()
	var args []Node
	if p.cur.Type != RPAREN {
		args = append(args, p.parseExpr(precLowest))
		for p.cur.Type == COMMA {
			p.next()
			args = append(args, p.parseExpr(precLowest))
		}
	}
	if p.cur.Type != RPAREN {
		p.errorf("expected ')' to close call to %s", name)
	} else {
		p.next()
	}
	return CallExpr{Func: name, Args: args}
}
