package classdef

import (
	"fmt"
	"sort"
	"strings"

	"github.com/chazu/objectscript/syntax"
)

// ---------------------------------------------------------------------------
// Parser: recursive descent over class-definition tokens
// ---------------------------------------------------------------------------

// Parser parses a class definition. Declarations are read from tokens;
// member bodies are located by brace matching and handed to the syntax
// package at their absolute offsets.
type Parser struct {
	src   string
	mode  syntax.Mode
	lexer *Lexer
	cur   Token
	peek  Token
	diags []syntax.Diagnostic
	end   int // end of the last consumed token

	// bail is set by the first error in a member; the member loop
	// resynchronizes at the next member keyword.
	bail bool
}

// NewParser creates a parser for src.
func NewParser(src string, mode syntax.Mode) *Parser {
	p := &Parser{src: src, mode: mode, lexer: NewLexer(src)}
	p.nextToken()
	p.nextToken()
	return p
}

// Parse parses a complete class-definition source unit.
func Parse(src string, mode syntax.Mode) *File {
	return NewParser(src, mode).ParseFile()
}

func (p *Parser) nextToken() {
	if p.cur.Type != TokenEOF {
		p.end = p.cur.Span.End
	}
	p.cur = p.peek
	p.peek = p.lexer.NextToken()
}

// seek repositions the token stream at byte offset pos, just after a
// skipped body.
func (p *Parser) seek(pos int) {
	p.lexer.Seek(pos)
	p.cur = p.lexer.NextToken()
	p.peek = p.lexer.NextToken()
	p.end = pos
}

func (p *Parser) curIs(t TokenType) bool { return p.cur.Type == t }

// curWord reports whether the current token is the identifier w, ignoring
// case.
func (p *Parser) curWord(w string) bool {
	return p.cur.Type == TokenIdent && strings.EqualFold(p.cur.Literal, w)
}

// ---------------------------------------------------------------------------
// Diagnostics
// ---------------------------------------------------------------------------

func (p *Parser) errorAt(sp syntax.Span, code syntax.Code, format string, args ...interface{}) {
	if p.bail {
		return
	}
	p.report(sp, syntax.SeverityError, code, format, args...)
	p.bail = true
}

func (p *Parser) report(sp syntax.Span, sev syntax.Severity, code syntax.Code, format string, args ...interface{}) {
	p.diags = append(p.diags, syntax.Diagnostic{Span: sp, Severity: sev, Code: code, Message: fmt.Sprintf(format, args...)})
}

func (p *Parser) errorExpected(what string) {
	found := p.cur.Literal
	if p.curIs(TokenEOF) {
		found = "end of input"
	} else {
		found = fmt.Sprintf("%q", found)
	}
	p.errorAt(p.cur.Span, syntax.UnexpectedToken, "expected %s, found %s", what, found)
}

// expect consumes a token of type t or reports it missing.
func (p *Parser) expect(t TokenType) bool {
	if p.curIs(t) {
		p.nextToken()
		return true
	}
	p.errorExpected(fmt.Sprintf("%q", t.String()))
	return false
}

// expectWord consumes the keyword w.
func (p *Parser) expectWord(w string) bool {
	if p.curWord(w) {
		p.nextToken()
		return true
	}
	p.errorExpected(w)
	return false
}

// parseIdent consumes an identifier.
func (p *Parser) parseIdent(what string) string {
	if !p.curIs(TokenIdent) {
		p.errorExpected(what)
		return ""
	}
	name := p.cur.Literal
	p.nextToken()
	return name
}

// parseName consumes an identifier or a quoted name.
func (p *Parser) parseName(what string) string {
	if p.curIs(TokenString) {
		name := unquote(p.cur.Literal)
		p.nextToken()
		return name
	}
	return p.parseIdent(what)
}

// parseIdentList parses Name or (Name, Name, ...).
func (p *Parser) parseIdentList(what string) []string {
	if !p.curIs(TokenLParen) {
		return []string{p.parseIdent(what)}
	}
	p.nextToken()
	var names []string
	for !p.bail {
		names = append(names, p.parseName(what))
		if !p.curIs(TokenComma) {
			break
		}
		p.nextToken()
	}
	if !p.bail {
		p.expect(TokenRParen)
	}
	return names
}

// ---------------------------------------------------------------------------
// File and class
// ---------------------------------------------------------------------------

// ParseFile parses Include lines followed by one class definition.
func (p *Parser) ParseFile() *File {
	f := &File{SpanVal: syntax.Span{Start: 0, End: len(p.src)}}
	for p.curWord("Include") || p.curWord("IncludeGenerator") {
		inc := p.parseInclude()
		f.Includes = append(f.Includes, inc)
		if p.bail {
			p.recover()
			p.bail = false
		}
	}
	if p.curWord("Class") {
		f.Class = p.parseClass()
	} else {
		p.errorExpected("Class definition")
	}
	if !p.bail && !p.curIs(TokenEOF) {
		p.errorAt(p.cur.Span, syntax.UnexpectedToken, "unexpected %q after class definition", p.cur.Literal)
	}
	sort.SliceStable(p.diags, func(i, j int) bool { return p.diags[i].Span.Start < p.diags[j].Span.Start })
	f.Diagnostics = p.diags
	return f
}

func (p *Parser) parseInclude() *Include {
	start := p.cur.Span.Start
	inc := &Include{Generator: p.curWord("IncludeGenerator")}
	p.nextToken()
	inc.Names = p.parseIdentList("include file name")
	if p.curIs(TokenSemicolon) {
		p.nextToken()
	}
	inc.SpanVal = syntax.Span{Start: start, End: p.end}
	return inc
}

func (p *Parser) parseClass() *Class {
	start := p.cur.Span.Start
	c := &Class{Doc: p.cur.Doc}
	p.nextToken()
	c.Name = p.parseIdent("class name")
	if !p.bail && p.curWord("Extends") {
		p.nextToken()
		c.Extends = p.parseIdentList("superclass name")
	}
	if !p.bail && p.curIs(TokenLBracket) {
		c.Keywords = p.parseKeywords()
	}
	if !p.bail {
		p.expect(TokenLBrace)
	}
	if p.bail {
		c.SpanVal = syntax.Span{Start: start, End: p.end}
		return c
	}
	for !p.curIs(TokenRBrace) && !p.curIs(TokenEOF) {
		mstart := p.cur.Span.Start
		m := p.parseMember()
		if p.bail {
			p.recover()
			p.bail = false
			if m == nil {
				m = &BadMember{SpanVal: syntax.Span{Start: mstart, End: p.end}}
			}
		}
		if m != nil {
			c.Members = append(c.Members, m)
		}
	}
	if p.curIs(TokenRBrace) {
		p.nextToken()
	} else {
		p.report(syntax.Span{Start: start, End: start + len("Class")}, syntax.SeverityError,
			syntax.UnbalancedBlock, "missing '}' at end of class %s", c.Name)
	}
	c.SpanVal = syntax.Span{Start: start, End: p.end}
	return c
}

// memberKeywords are the words that start a class member.
var memberKeywords = map[string]bool{
	"method": true, "classmethod": true, "property": true, "parameter": true,
	"relationship": true, "foreignkey": true, "query": true, "index": true,
	"trigger": true, "xdata": true, "projection": true, "storage": true,
}

// recover skips to the end of the current member: past a ';' or a braced
// body, or up to the next member keyword at the start of a line.
func (p *Parser) recover() {
	for !p.curIs(TokenEOF) && !p.curIs(TokenRBrace) {
		switch {
		case p.curIs(TokenSemicolon):
			p.nextToken()
			return
		case p.curIs(TokenLBrace):
			end, _ := syntax.ScanBalanced(p.src, p.cur.Span.Start, `"`)
			if end < len(p.src) {
				end++
			}
			p.seek(end)
			return
		case p.cur.Type == TokenIdent && memberKeywords[strings.ToLower(p.cur.Literal)] && startsLine(p.src, p.cur.Span.Start):
			return
		}
		p.nextToken()
	}
}

func startsLine(src string, pos int) bool {
	for i := pos - 1; i >= 0; i-- {
		switch src[i] {
		case '\n', '\r':
			return true
		case ' ', '\t':
		default:
			return false
		}
	}
	return true
}

func (p *Parser) parseMember() Member {
	if p.cur.Type != TokenIdent {
		p.errorExpected("class member")
		return nil
	}
	start, doc := p.cur.Span.Start, p.cur.Doc
	word := strings.ToLower(p.cur.Literal)
	if !memberKeywords[word] {
		p.errorAt(p.cur.Span, syntax.UnexpectedToken, "unknown class member %q", p.cur.Literal)
		return nil
	}
	p.nextToken()
	var m Member
	switch word {
	case "method", "classmethod":
		m = p.parseMethod(word == "classmethod", doc)
	case "property":
		m = p.parseProperty(doc)
	case "parameter":
		m = p.parseParameter(doc)
	case "relationship":
		m = p.parseRelationship(doc)
	case "foreignkey":
		m = p.parseForeignKey(doc)
	case "query":
		m = p.parseQuery(doc)
	case "index":
		m = p.parseIndex(doc)
	case "trigger":
		m = p.parseTrigger(doc)
	case "xdata":
		m = p.parseXData(doc)
	case "projection":
		m = p.parseProjection(doc)
	case "storage":
		m = p.parseStorage(doc)
	}
	setSpan(m, syntax.Span{Start: start, End: p.end})
	return m
}

func setSpan(m Member, sp syntax.Span) {
	switch n := m.(type) {
	case *Method:
		n.SpanVal = sp
	case *Property:
		n.SpanVal = sp
	case *Parameter:
		n.SpanVal = sp
	case *Relationship:
		n.SpanVal = sp
	case *ForeignKey:
		n.SpanVal = sp
	case *Query:
		n.SpanVal = sp
	case *Index:
		n.SpanVal = sp
	case *Trigger:
		n.SpanVal = sp
	case *XData:
		n.SpanVal = sp
	case *Projection:
		n.SpanVal = sp
	case *Storage:
		n.SpanVal = sp
	}
}

// endDeclaration consumes the ';' that ends a bodiless member.
func (p *Parser) endDeclaration() {
	if !p.bail {
		p.expect(TokenSemicolon)
	}
}

// optKeywords parses a keyword list if one follows.
func (p *Parser) optKeywords() *KeywordList {
	if p.bail || !p.curIs(TokenLBracket) {
		return nil
	}
	return p.parseKeywords()
}
