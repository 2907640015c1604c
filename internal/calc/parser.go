package calc

// Parse turns an infix expression into a tree.
//
//	expr    = term { ("+" | "-") term }
//	term    = unary { ("*" | "/" | "%" | implicit) unary }
//	unary   = ("-" | "+") unary | power
//	power   = postfix [ "^" unary ]
//	postfix = primary { "!" }
//	primary = number | ident [ "(" args ")" ] | "(" expr ")"
//
// Unary minus binds looser than ^, so -2^2 is -4, and ^ is right-associative.
// Juxtaposition multiplies: 2x, 2(x+1), 2pi, (a)(b).
func Parse(src string) (Node, error) {
	toks, err := lex(src)
	if err != nil {
		return nil, err
	}
	p := &parser{toks: toks}
	if p.peek().kind == tokEOF {
		return nil, errAt(KindSyntax, 0, "empty expression")
	}
	n, err := p.expr()
	if err != nil {
		return nil, err
	}
	if t := p.peek(); t.kind != tokEOF {
		return nil, errAt(KindSyntax, t.pos, "unexpected %q", t.text)
	}
	return n, nil
}

type parser struct {
	toks []token
	i    int
}

func (p *parser) peek() token { return p.toks[p.i] }

func (p *parser) next() token {
	t := p.toks[p.i]
	if t.kind != tokEOF {
		p.i++
	}
	return t
}

func (p *parser) isOp(s string) bool {
	t := p.peek()
	return t.kind == tokOp && t.text == s
}

func (p *parser) expr() (Node, error) {
	left, err := p.term()
	if err != nil {
		return nil, err
	}
	for p.isOp("+") || p.isOp("-") {
		op := p.next()
		right, err := p.term()
		if err != nil {
			return nil, err
		}
		left = Binary{Op: op.text, L: left, R: right, Pos: op.pos}
	}
	return left, nil
}

func (p *parser) term() (Node, error) {
	left, err := p.unary()
	if err != nil {
		return nil, err
	}
	for {
		t := p.peek()
		switch {
		case p.isOp("*") || p.isOp("/") || p.isOp("%"):
			p.next()
		case t.kind == tokNum || t.kind == tokIdent || t.kind == tokLParen:
			// implicit multiplication
		default:
			return left, nil
		}
		op := "*"
		if t.kind == tokOp {
			op = t.text
		}
		right, err := p.unary()
		if err != nil {
			return nil, err
		}
		left = Binary{Op: op, L: left, R: right, Pos: t.pos}
	}
}

func (p *parser) unary() (Node, error) {
	if p.isOp("-") {
		p.next()
		x, err := p.unary()
		if err != nil {
			return nil, err
		}
		if n, ok := x.(Num); ok {
			// keep -2^2 as -(2^2) but fold a bare literal
			return Num{Value: -n.Value}, nil
		}
		return Unary{Op: "-", X: x}, nil
	}
	if p.isOp("+") {
		p.next()
		return p.unary()
	}
	return p.power()
}

func (p *parser) power() (Node, error) {
	base, err := p.postfix()
	if err != nil {
		return nil, err
	}
	if p.isOp("^") {
		op := p.next()
		exp, err := p.unary()
		if err != nil {
			return nil, err
		}
		return Binary{Op: "^", L: base, R: exp, Pos: op.pos}, nil
	}
	return base, nil
}

func (p *parser) postfix() (Node, error) {
	x, err := p.primary()
	if err != nil {
		return nil, err
	}
	for p.isOp("!") {
		p.next()
		x = Factorial{X: x}
	}
	return x, nil
}

func (p *parser) primary() (Node, error) {
	t := p.next()
	switch t.kind {
	case tokNum:
		return Num{Value: t.num}, nil
	case tokIdent:
		if p.peek().kind != tokLParen {
			return Var{Name: t.text, Pos: t.pos}, nil
		}
		p.next()
		args, err := p.args()
		if err != nil {
			return nil, err
		}
		return Call{Name: t.text, Args: args, Pos: t.pos}, nil
	case tokLParen:
		x, err := p.expr()
		if err != nil {
			return nil, err
		}
		if c := p.next(); c.kind != tokRParen {
			return nil, errAt(KindSyntax, c.pos, "expected \")\"")
		}
		return x, nil
	case tokEOF:
		return nil, errAt(KindSyntax, t.pos, "unexpected end of expression")
	default:
		return nil, errAt(KindSyntax, t.pos, "unexpected %q", t.text)
	}
}

func (p *parser) args() ([]Node, error) {
	var args []Node
	if p.peek().kind == tokRParen {
		p.next()
		return args, nil
	}
	for {
		a, err := p.expr()
		if err != nil {
			return nil, err
		}
		args = append(args, a)
		switch t := p.next(); t.kind {
		case tokComma:
		case tokRParen:
			return args, nil
		default:
			return nil, errAt(KindSyntax, t.pos, "expected \",\" or \")\"")
		}
	}
}
