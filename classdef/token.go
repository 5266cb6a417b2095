package classdef

import (
	"fmt"

	"github.com/chazu/objectscript/syntax"
)

// ---------------------------------------------------------------------------
// Token types for the class-definition lexer
// ---------------------------------------------------------------------------

// TokenType represents the type of a token.
type TokenType int

const (
	TokenEOF TokenType = iota
	TokenError

	TokenIdent  // Sample.Person, %String, Name
	TokenNumber // 10, 1.5
	TokenString // "text"

	TokenLParen    // (
	TokenRParen    // )
	TokenLBracket  // [
	TokenRBracket  // ]
	TokenLBrace    // {
	TokenRBrace    // }
	TokenComma     // ,
	TokenSemicolon // ;
	TokenEquals    // =
	TokenMinus     // -
	TokenEllipsis  // ...
)

var tokenNames = map[TokenType]string{
	TokenEOF:       "EOF",
	TokenError:     "ERROR",
	TokenIdent:     "IDENT",
	TokenNumber:    "NUMBER",
	TokenString:    "STRING",
	TokenLParen:    "(",
	TokenRParen:    ")",
	TokenLBracket:  "[",
	TokenRBracket:  "]",
	TokenLBrace:    "{",
	TokenRBrace:    "}",
	TokenComma:     ",",
	TokenSemicolon: ";",
	TokenEquals:    "=",
	TokenMinus:     "-",
	TokenEllipsis:  "...",
}

func (t TokenType) String() string {
	if name, ok := tokenNames[t]; ok {
		return name
	}
	return fmt.Sprintf("Token(%d)", t)
}

// Token is one lexical unit of a class definition. Doc holds the ///
// documentation lines immediately preceding it.
type Token struct {
	Type    TokenType
	Literal string
	Span    syntax.Span
	Doc     []string
}

func (t Token) String() string {
	return fmt.Sprintf("%s(%q)", t.Type, t.Literal)
}
