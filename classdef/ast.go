package classdef

import "github.com/chazu/objectscript/syntax"

// ---------------------------------------------------------------------------
// AST for class definitions
// ---------------------------------------------------------------------------

// Node is implemented by every class-definition node.
type Node interface {
	Span() syntax.Span
}

// Member is a class member declaration.
type Member interface {
	Node
	MemberName() string
	member() // marker method
}

// File is a parsed class-definition source unit.
type File struct {
	SpanVal     syntax.Span
	Includes    []*Include
	Class       *Class
	Diagnostics []syntax.Diagnostic
}

// Include is Include or IncludeGenerator with one name or a list.
type Include struct {
	SpanVal   syntax.Span
	Generator bool
	Names     []string
}

// Class is Class Name [Extends ...] [keywords] { members }.
type Class struct {
	SpanVal  syntax.Span
	Doc      []string
	Name     string
	Extends  []string
	Keywords *KeywordList
	Members  []Member
}

// KeywordList is a bracketed [Key, Not Key, Key = value] list.
type KeywordList struct {
	SpanVal syntax.Span
	Items   []*Keyword
}

// Keyword is one entry of a keyword list.
type Keyword struct {
	SpanVal syntax.Span
	Name    string
	Not     bool
	Value   *Value
}

// Value is a keyword value or a default: an identifier, number, string,
// parenthesized list or braced code. Braced code is parsed as one
// expression, or as statements for code-valued keywords.
type Value struct {
	SpanVal syntax.Span
	Raw     string
	List    []string
	Expr    *syntax.Expression
	Code    *syntax.File
}

// TypeName is Name[(Param = value, ...)] [Of Type].
type TypeName struct {
	SpanVal syntax.Span
	Name    string
	Params  []*TypeParam
	Of      *TypeName
}

// TypeParam is one type parameter.
type TypeParam struct {
	SpanVal syntax.Span
	Name    string
	Value   string
}

// Argument is a formal argument of a method or query.
type Argument struct {
	SpanVal  syntax.Span
	Mode     string // ByRef, Output or empty
	Name     string
	Variadic bool
	Type     *TypeName
	Default  *Value
}

// BodyKind tells how a member body was parsed.
type BodyKind int

const (
	// BodyCode is a statement sequence in the core dialect.
	BodyCode BodyKind = iota
	// BodyExpression is a single expression (CodeMode = expression).
	BodyExpression
	// BodyOpaque is kept as text: other languages, XData, Storage, Query.
	BodyOpaque
)

func (k BodyKind) String() string {
	switch k {
	case BodyExpression:
		return "expression"
	case BodyOpaque:
		return "opaque"
	}
	return "code"
}

// Body is the content between a member's braces. Span covers the content
// only; offsets of nested trees are relative to the whole file.
type Body struct {
	SpanVal  syntax.Span
	Kind     BodyKind
	Language string
	Code     *syntax.File
	Expr     *syntax.Expression
	Text     string
}

// Method is Method or ClassMethod.
type Method struct {
	SpanVal    syntax.Span
	Doc        []string
	ClassLevel bool
	Name       string
	Args       []*Argument
	ReturnType *TypeName
	Keywords   *KeywordList
	Body       *Body
}

// Property is Property Name [As [list|array Of] Type] [keywords];.
type Property struct {
	SpanVal    syntax.Span
	Doc        []string
	Name       string
	Collection string
	Type       *TypeName
	Keywords   *KeywordList
}

// Parameter is Parameter NAME [As Type] [= value] [keywords];.
type Parameter struct {
	SpanVal  syntax.Span
	Doc      []string
	Name     string
	Type     *TypeName
	Default  *Value
	Keywords *KeywordList
}

// Relationship is Relationship Name As Type [keywords];.
type Relationship struct {
	SpanVal  syntax.Span
	Doc      []string
	Name     string
	Type     *TypeName
	Keywords *KeywordList
}

// ForeignKey is ForeignKey Name(props) References Class[(key)] [keywords];.
type ForeignKey struct {
	SpanVal    syntax.Span
	Doc        []string
	Name       string
	Properties []string
	References string
	RefKey     string
	Keywords   *KeywordList
}

// Query is Query Name(args) As Type [keywords] { sql }.
type Query struct {
	SpanVal  syntax.Span
	Doc      []string
	Name     string
	Args     []*Argument
	Type     *TypeName
	Keywords *KeywordList
	Body     *Body
}

// Index is Index Name [On items] [keywords];.
type Index struct {
	SpanVal  syntax.Span
	Doc      []string
	Name     string
	Items    []*IndexItem
	Keywords *KeywordList
}

// IndexItem is Prop[(ELEMENTS|KEYS)] [As collation].
type IndexItem struct {
	SpanVal    syntax.Span
	Property   string
	Collection string
	As         string
}

// Trigger is Trigger Name [keywords] { body }.
type Trigger struct {
	SpanVal  syntax.Span
	Doc      []string
	Name     string
	Keywords *KeywordList
	Body     *Body
}

// XData is XData Name [keywords] { content }.
type XData struct {
	SpanVal  syntax.Span
	Doc      []string
	Name     string
	Keywords *KeywordList
	Body     *Body
}

// Projection is Projection Name [As Type] [keywords];.
type Projection struct {
	SpanVal  syntax.Span
	Doc      []string
	Name     string
	Type     *TypeName
	Keywords *KeywordList
}

// Storage is Storage Name [keywords] { xml }.
type Storage struct {
	SpanVal  syntax.Span
	Doc      []string
	Name     string
	Keywords *KeywordList
	Body     *Body
}

// BadMember stands in for a member that failed to parse.
type BadMember struct {
	SpanVal syntax.Span
}

func (n *File) Span() syntax.Span         { return n.SpanVal }
func (n *Include) Span() syntax.Span      { return n.SpanVal }
func (n *Class) Span() syntax.Span        { return n.SpanVal }
func (n *KeywordList) Span() syntax.Span  { return n.SpanVal }
func (n *Keyword) Span() syntax.Span      { return n.SpanVal }
func (n *Value) Span() syntax.Span        { return n.SpanVal }
func (n *TypeName) Span() syntax.Span     { return n.SpanVal }
func (n *TypeParam) Span() syntax.Span    { return n.SpanVal }
func (n *Argument) Span() syntax.Span     { return n.SpanVal }
func (n *Body) Span() syntax.Span         { return n.SpanVal }
func (n *Method) Span() syntax.Span       { return n.SpanVal }
func (n *Property) Span() syntax.Span     { return n.SpanVal }
func (n *Parameter) Span() syntax.Span    { return n.SpanVal }
func (n *Relationship) Span() syntax.Span { return n.SpanVal }
func (n *ForeignKey) Span() syntax.Span   { return n.SpanVal }
func (n *Query) Span() syntax.Span        { return n.SpanVal }
func (n *Index) Span() syntax.Span        { return n.SpanVal }
func (n *IndexItem) Span() syntax.Span    { return n.SpanVal }
func (n *Trigger) Span() syntax.Span      { return n.SpanVal }
func (n *XData) Span() syntax.Span        { return n.SpanVal }
func (n *Projection) Span() syntax.Span   { return n.SpanVal }
func (n *Storage) Span() syntax.Span      { return n.SpanVal }
func (n *BadMember) Span() syntax.Span    { return n.SpanVal }

func (n *Method) MemberName() string       { return n.Name }
func (n *Property) MemberName() string     { return n.Name }
func (n *Parameter) MemberName() string    { return n.Name }
func (n *Relationship) MemberName() string { return n.Name }
func (n *ForeignKey) MemberName() string   { return n.Name }
func (n *Query) MemberName() string        { return n.Name }
func (n *Index) MemberName() string        { return n.Name }
func (n *Trigger) MemberName() string      { return n.Name }
func (n *XData) MemberName() string        { return n.Name }
func (n *Projection) MemberName() string   { return n.Name }
func (n *Storage) MemberName() string      { return n.Name }
func (n *BadMember) MemberName() string    { return "" }

func (n *Method) member()       {}
func (n *Property) member()     {}
func (n *Parameter) member()    {}
func (n *Relationship) member() {}
func (n *ForeignKey) member()   {}
func (n *Query) member()        {}
func (n *Index) member()        {}
func (n *Trigger) member()      {}
func (n *XData) member()        {}
func (n *Projection) member()   {}
func (n *Storage) member()      {}
func (n *BadMember) member()    {}

// Lookup returns the value of the named keyword, case-insensitively.
func (kl *KeywordList) Lookup(name string) (*Keyword, bool) {
	if kl == nil {
		return nil, false
	}
	for _, k := range kl.Items {
		if equalFold(k.Name, name) {
			return k, true
		}
	}
	return nil, false
}
