package classdef

import (
	"strings"

	"github.com/chazu/objectscript/syntax"
)

// ---------------------------------------------------------------------------
// Members
// ---------------------------------------------------------------------------

func (p *Parser) parseMethod(classLevel bool, doc []string) *Method {
	m := &Method{Doc: doc, ClassLevel: classLevel}
	m.Name = p.parseName("method name")
	if p.bail {
		return m
	}
	m.Args = p.parseArguments()
	if !p.bail && p.curWord("As") {
		p.nextToken()
		m.ReturnType = p.parseTypeName()
	}
	m.Keywords = p.optKeywords()
	if p.bail {
		return m
	}
	switch lang := bodyLanguage(m.Keywords); {
	case externalLanguages[lang]:
		m.Body = p.parseOpaqueBody(lang, `"'`)
	case expressionMode(m.Keywords):
		m.Body = p.parseExprBody()
	default:
		m.Body = p.parseCodeBody()
	}
	return m
}

func (p *Parser) parseProperty(doc []string) *Property {
	m := &Property{Doc: doc}
	m.Name = p.parseName("property name")
	if !p.bail && p.curWord("As") {
		p.nextToken()
		if (p.curWord("list") || p.curWord("array")) && p.peek.Type == TokenIdent && strings.EqualFold(p.peek.Literal, "Of") {
			m.Collection = strings.ToLower(p.cur.Literal)
			p.nextToken()
			p.nextToken()
		}
		m.Type = p.parseTypeName()
	}
	m.Keywords = p.optKeywords()
	p.endDeclaration()
	return m
}

func (p *Parser) parseParameter(doc []string) *Parameter {
	m := &Parameter{Doc: doc}
	m.Name = p.parseName("parameter name")
	if !p.bail && p.curWord("As") {
		p.nextToken()
		m.Type = p.parseTypeName()
	}
	if !p.bail && p.curIs(TokenEquals) {
		p.nextToken()
		m.Default = p.parseValue("", ";[")
	}
	m.Keywords = p.optKeywords()
	p.endDeclaration()
	return m
}

func (p *Parser) parseRelationship(doc []string) *Relationship {
	m := &Relationship{Doc: doc}
	m.Name = p.parseName("relationship name")
	if !p.bail {
		p.expectWord("As")
	}
	if !p.bail {
		m.Type = p.parseTypeName()
	}
	m.Keywords = p.optKeywords()
	p.endDeclaration()
	return m
}

func (p *Parser) parseForeignKey(doc []string) *ForeignKey {
	m := &ForeignKey{Doc: doc}
	m.Name = p.parseName("foreign key name")
	if !p.bail && !p.curIs(TokenLParen) {
		p.errorExpected("'(' before key properties")
	}
	if !p.bail {
		m.Properties = p.parseIdentList("property name")
	}
	if !p.bail {
		p.expectWord("References")
	}
	if !p.bail {
		m.References = p.parseName("referenced class")
	}
	if !p.bail && p.curIs(TokenLParen) {
		p.nextToken()
		m.RefKey = p.parseName("referenced key")
		if !p.bail {
			p.expect(TokenRParen)
		}
	}
	m.Keywords = p.optKeywords()
	p.endDeclaration()
	return m
}

func (p *Parser) parseQuery(doc []string) *Query {
	m := &Query{Doc: doc}
	m.Name = p.parseName("query name")
	if !p.bail {
		m.Args = p.parseArguments()
	}
	if !p.bail {
		p.expectWord("As")
	}
	if !p.bail {
		m.Type = p.parseTypeName()
	}
	m.Keywords = p.optKeywords()
	if !p.bail {
		m.Body = p.parseOpaqueBody("sql", `"'`)
	}
	return m
}

func (p *Parser) parseIndex(doc []string) *Index {
	m := &Index{Doc: doc}
	m.Name = p.parseName("index name")
	if !p.bail && p.curWord("On") {
		p.nextToken()
		if p.curIs(TokenLParen) {
			p.nextToken()
			for !p.bail {
				m.Items = append(m.Items, p.parseIndexItem())
				if !p.curIs(TokenComma) {
					break
				}
				p.nextToken()
			}
			if !p.bail {
				p.expect(TokenRParen)
			}
		} else {
			m.Items = append(m.Items, p.parseIndexItem())
		}
	}
	m.Keywords = p.optKeywords()
	p.endDeclaration()
	return m
}

func (p *Parser) parseIndexItem() *IndexItem {
	start := p.cur.Span.Start
	it := &IndexItem{Property: p.parseName("indexed property")}
	if !p.bail && p.curIs(TokenLParen) {
		p.nextToken()
		switch {
		case p.curWord("ELEMENTS"), p.curWord("KEYS"):
			it.Collection = strings.ToUpper(p.cur.Literal)
			p.nextToken()
			p.expect(TokenRParen)
		default:
			p.errorExpected("ELEMENTS or KEYS")
		}
	}
	if !p.bail && p.curWord("As") {
		p.nextToken()
		it.As = p.parseIdent("collation")
	}
	it.SpanVal = syntax.Span{Start: start, End: p.end}
	return it
}

func (p *Parser) parseTrigger(doc []string) *Trigger {
	m := &Trigger{Doc: doc}
	m.Name = p.parseName("trigger name")
	m.Keywords = p.optKeywords()
	if p.bail {
		return m
	}
	if lang := bodyLanguage(m.Keywords); externalLanguages[lang] {
		m.Body = p.parseOpaqueBody(lang, `"'`)
	} else {
		m.Body = p.parseCodeBody()
	}
	return m
}

func (p *Parser) parseXData(doc []string) *XData {
	m := &XData{Doc: doc}
	m.Name = p.parseName("XData name")
	m.Keywords = p.optKeywords()
	if !p.bail {
		m.Body = p.parseOpaqueBody("", `"`)
	}
	return m
}

func (p *Parser) parseProjection(doc []string) *Projection {
	m := &Projection{Doc: doc}
	m.Name = p.parseName("projection name")
	if !p.bail && p.curWord("As") {
		p.nextToken()
		m.Type = p.parseTypeName()
	}
	m.Keywords = p.optKeywords()
	p.endDeclaration()
	return m
}

func (p *Parser) parseStorage(doc []string) *Storage {
	m := &Storage{Doc: doc}
	m.Name = p.parseName("storage name")
	m.Keywords = p.optKeywords()
	if !p.bail {
		m.Body = p.parseOpaqueBody("", `"`)
	}
	return m
}

// ---------------------------------------------------------------------------
// Arguments and types
// ---------------------------------------------------------------------------

// parseArguments parses (arg, ...). Each argument is
// [ByRef|Output] name[...] [As Type] [= default].
func (p *Parser) parseArguments() []*Argument {
	if !p.curIs(TokenLParen) {
		p.errorExpected("'(' before arguments")
		return nil
	}
	p.nextToken()
	var args []*Argument
	if p.curIs(TokenRParen) {
		p.nextToken()
		return args
	}
	for !p.bail {
		start := p.cur.Span.Start
		a := &Argument{}
		if (p.curWord("ByRef") || p.curWord("Output")) && p.peek.Type == TokenIdent {
			a.Mode = p.cur.Literal
			p.nextToken()
		}
		a.Name = p.parseIdent("argument name")
		if !p.bail && p.curIs(TokenEllipsis) {
			a.Variadic = true
			p.nextToken()
		}
		if !p.bail && p.curWord("As") {
			p.nextToken()
			a.Type = p.parseTypeName()
		}
		if !p.bail && p.curIs(TokenEquals) {
			p.nextToken()
			a.Default = p.parseValue("", ",)")
		}
		a.SpanVal = syntax.Span{Start: start, End: p.end}
		args = append(args, a)
		if !p.curIs(TokenComma) {
			break
		}
		p.nextToken()
	}
	if !p.bail {
		p.expect(TokenRParen)
	}
	return args
}

// parseTypeName parses Name[(Param = value, ...)] [Of Type].
func (p *Parser) parseTypeName() *TypeName {
	start := p.cur.Span.Start
	t := &TypeName{Name: p.parseIdent("type name")}
	if !p.bail && p.curIs(TokenLParen) {
		p.nextToken()
		for !p.bail {
			pstart := p.cur.Span.Start
			tp := &TypeParam{Name: p.parseIdent("type parameter")}
			if !p.bail {
				p.expect(TokenEquals)
			}
			if !p.bail {
				if v := p.parseValue("", ",)"); v != nil {
					tp.Value = v.Raw
				}
			}
			tp.SpanVal = syntax.Span{Start: pstart, End: p.end}
			t.Params = append(t.Params, tp)
			if !p.curIs(TokenComma) {
				break
			}
			p.nextToken()
		}
		if !p.bail {
			p.expect(TokenRParen)
		}
	}
	if !p.bail && p.curWord("Of") {
		p.nextToken()
		t.Of = p.parseTypeName()
	}
	t.SpanVal = syntax.Span{Start: start, End: p.end}
	return t
}

// ---------------------------------------------------------------------------
// Keyword lists and values
// ---------------------------------------------------------------------------

// codeKeywords take a braced statement sequence rather than an expression.
var codeKeywords = map[string]bool{
	"sqlcomputecode": true,
}

// parseKeywords parses [Key, Not Key, Key = value, ...].
func (p *Parser) parseKeywords() *KeywordList {
	start := p.cur.Span.Start
	p.nextToken()
	kl := &KeywordList{}
	for !p.bail && !p.curIs(TokenRBracket) {
		kstart := p.cur.Span.Start
		k := &Keyword{}
		if p.curWord("Not") && p.peek.Type == TokenIdent {
			k.Not = true
			p.nextToken()
		}
		k.Name = p.parseIdent("keyword name")
		if !p.bail && p.curIs(TokenEquals) {
			p.nextToken()
			k.Value = p.parseValue(k.Name, ",]")
		}
		k.SpanVal = syntax.Span{Start: kstart, End: p.end}
		kl.Items = append(kl.Items, k)
		if !p.curIs(TokenComma) {
			break
		}
		p.nextToken()
	}
	if !p.bail {
		p.expect(TokenRBracket)
	}
	kl.SpanVal = syntax.Span{Start: start, End: p.end}
	return kl
}

// parseValue parses a keyword value or default. Braced values are parsed
// with the syntax package; other values run up to a byte of stops or the
// end of the line. key names the keyword, if any.
func (p *Parser) parseValue(key, stops string) *Value {
	start := p.cur.Span.Start
	switch {
	case p.curIs(TokenLBrace):
		return p.parseBracedValue(key)
	case p.curIs(TokenString):
		v := &Value{SpanVal: p.cur.Span, Raw: p.cur.Literal}
		p.nextToken()
		return v
	case p.curIs(TokenLParen) && key != "":
		v := &Value{}
		v.List = p.parseIdentList("list item")
		v.SpanVal = syntax.Span{Start: start, End: p.end}
		v.Raw = p.src[start:p.end]
		return v
	case p.curIs(TokenError) && strings.HasPrefix(p.cur.Literal, `"`):
		p.errorAt(p.cur.Span, syntax.LexError, "unterminated string")
		return nil
	}
	end := scanRawValue(p.src, start, stops)
	raw := strings.TrimRight(p.src[start:end], " \t")
	if raw == "" {
		p.errorExpected("value")
		return nil
	}
	v := &Value{SpanVal: syntax.Span{Start: start, End: start + len(raw)}, Raw: raw}
	p.seek(start + len(raw))
	return v
}

// scanRawValue returns the offset of the first stop byte or line break at
// or after pos, skipping quoted strings.
func scanRawValue(src string, pos int, stops string) int {
	i := pos
	for i < len(src) {
		c := src[i]
		switch {
		case c == '"':
			i = lineString(src, i)
			continue
		case c == '\n' || c == '\r' || strings.IndexByte(stops, c) >= 0:
			return i
		}
		i++
	}
	return i
}

// parseBracedValue parses {expr}, or {statements} for code keywords.
func (p *Parser) parseBracedValue(key string) *Value {
	open := p.cur.Span.Start
	rbrace, ok := scanCodeBody(p.src, open)
	if !ok {
		p.errorAt(syntax.Span{Start: open, End: open + 1}, syntax.UnbalancedBlock, "missing '}' for braced value")
		return nil
	}
	v := &Value{SpanVal: syntax.Span{Start: open, End: rbrace + 1}, Raw: p.src[open : rbrace+1]}
	switch {
	case codeKeywords[strings.ToLower(key)]:
		v.Code = syntax.ParseRegion(p.src, open+1, rbrace, p.mode)
		p.diags = append(p.diags, v.Code.Diagnostics...)
	case strings.TrimSpace(p.src[open+1:rbrace]) != "":
		e, f := syntax.ParseExprRegion(p.src, open+1, rbrace, p.mode)
		v.Expr = e
		p.diags = append(p.diags, f.Diagnostics...)
	}
	p.seek(rbrace + 1)
	return v
}

// ---------------------------------------------------------------------------
// Bodies
// ---------------------------------------------------------------------------

// parseCodeBody parses { statements } with the core parser.
func (p *Parser) parseCodeBody() *Body {
	open, ok := p.bodyOpen()
	if !ok {
		return nil
	}
	rbrace, ok := scanCodeBody(p.src, open)
	b := &Body{SpanVal: syntax.Span{Start: open + 1, End: rbrace}, Kind: BodyCode}
	b.Code = syntax.ParseRegion(p.src, open+1, rbrace, p.mode)
	p.diags = append(p.diags, b.Code.Diagnostics...)
	p.closeBody(open, rbrace, ok)
	return b
}

// parseExprBody parses { expression } for CodeMode = expression.
func (p *Parser) parseExprBody() *Body {
	open, ok := p.bodyOpen()
	if !ok {
		return nil
	}
	rbrace, ok := scanCodeBody(p.src, open)
	b := &Body{SpanVal: syntax.Span{Start: open + 1, End: rbrace}, Kind: BodyExpression}
	e, f := syntax.ParseExprRegion(p.src, open+1, rbrace, p.mode)
	b.Expr = e
	p.diags = append(p.diags, f.Diagnostics...)
	p.closeBody(open, rbrace, ok)
	return b
}

// parseOpaqueBody keeps the body text without parsing it.
func (p *Parser) parseOpaqueBody(lang, quotes string) *Body {
	open, ok := p.bodyOpen()
	if !ok {
		return nil
	}
	rbrace, ok := syntax.ScanBalanced(p.src, open, quotes)
	b := &Body{
		SpanVal:  syntax.Span{Start: open + 1, End: rbrace},
		Kind:     BodyOpaque,
		Language: lang,
		Text:     p.src[open+1 : rbrace],
	}
	p.closeBody(open, rbrace, ok)
	return b
}

func (p *Parser) bodyOpen() (int, bool) {
	if !p.curIs(TokenLBrace) {
		p.errorExpected("'{'")
		return 0, false
	}
	return p.cur.Span.Start, true
}

// closeBody moves past a body, reporting it when its '}' is missing.
func (p *Parser) closeBody(open, rbrace int, ok bool) {
	if !ok {
		p.report(syntax.Span{Start: open, End: open + 1}, syntax.SeverityError, syntax.UnbalancedBlock, "missing '}' for member body")
		p.seek(len(p.src))
		return
	}
	p.seek(rbrace + 1)
}
