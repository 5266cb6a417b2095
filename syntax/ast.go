package syntax

// ---------------------------------------------------------------------------
// AST: syntax tree for routines and method bodies
// ---------------------------------------------------------------------------

// Node is the interface implemented by all AST nodes.
type Node interface {
	Span() Span
	node() // marker method
}

// Expr is the interface for expression nodes.
type Expr interface {
	Node
	expr() // marker method
}

// Stmt is the interface for statement nodes.
type Stmt interface {
	Node
	stmt() // marker method
}

// File is the root of a parsed source unit.
type File struct {
	SpanVal     Span
	Stmts       []Stmt
	Tokens      []Token
	Diagnostics []Diagnostic
}

func (n *File) Span() Span { return n.SpanVal }
func (n *File) node()      {}

// ---------------------------------------------------------------------------
// Expressions
// ---------------------------------------------------------------------------

// Expression is an atom followed by (operator, operand) tails. All binary
// operators share one precedence level, so the tails fold left to right.
type Expression struct {
	SpanVal Span
	Atom    Expr
	Tails   []*Tail
}

// Tail is one binary operator and its right operand.
type Tail struct {
	SpanVal Span
	Op      string
	Right   Expr
}

// ParenExpr is a parenthesized sub-expression.
type ParenExpr struct {
	SpanVal Span
	X       *Expression
}

// UnaryExpr applies + - or ' to an atom.
type UnaryExpr struct {
	SpanVal Span
	Op      string
	X       Expr
}

// Indirection is @name, @(expr) or the subscript form @name@(subs).
type Indirection struct {
	SpanVal    Span
	X          Expr
	Subscripts []Expr
}

// StringLit is a string literal; Raw includes the quotes.
type StringLit struct {
	SpanVal Span
	Raw     string
}

// NumberLit is an integer or decimal literal.
type NumberLit struct {
	SpanVal Span
	Raw     string
}

// PatternLit is the right operand of the ? pattern-match operator.
type PatternLit struct {
	SpanVal Span
	Raw     string
}

// MacroRef is $$$NAME or $$$NAME(args). Expansion is not performed.
type MacroRef struct {
	SpanVal Span
	Name    string
	Call    bool
	Args    []Expr
}

// LocalVar is a local variable with optional subscripts.
type LocalVar struct {
	SpanVal    Span
	Name       string
	Subscripts []Expr
}

// GlobalVar is ^name, ^||name, ^|env|name or the naked ^(subs).
type GlobalVar struct {
	SpanVal        Span
	Env            *Expression
	ProcessPrivate bool
	Naked          bool
	Name           string
	Subscripts     []Expr
}

// SSVN is a structured system variable ^$NAME(subs).
type SSVN struct {
	SpanVal    Span
	Name       string
	Subscripts []Expr
}

// InstanceVar is i%Name, r%Name or m%Name.
type InstanceVar struct {
	SpanVal    Span
	Prefix     string
	Name       string
	Subscripts []Expr
}

// SQLFieldRef is {Name}, {*} or {Name*O} inside trigger and computed code.
type SQLFieldRef struct {
	SpanVal  Span
	Name     string
	Modifier string
}

// SystemVar is a builtin $variable. Name is canonical, Spelling as written.
type SystemVar struct {
	SpanVal  Span
	Name     string
	Spelling string
	Known    bool
}

// SystemFunc is a builtin $function call.
type SystemFunc struct {
	SpanVal  Span
	Name     string
	Spelling string
	Known    bool
	Args     []Expr
}

// SystemCall is $SYSTEM.Package.Class.Method(args).
type SystemCall struct {
	SpanVal Span
	Path    []string
	Args    []Expr
}

// LineRef names a code location: label, label+offset^routine, ^routine or @x.
type LineRef struct {
	SpanVal  Span
	Label    string
	Offset   Expr
	Routine  string
	Indirect Expr
}

// Extrinsic is a $$ user function call.
type Extrinsic struct {
	SpanVal Span
	Ref     *LineRef
	Call    bool
	Args    []Expr
}

// RoutineCall is a DO, JOB or GOTO target with optional arguments.
type RoutineCall struct {
	SpanVal Span
	Ref     *LineRef
	Call    bool
	Args    []Expr
}

// RelativeRef is ..member, a reference to the current object.
type RelativeRef struct {
	SpanVal Span
	Member  *Segment
}

// ClassRef is ##class(Name) followed by a method, a parameter or a cast.
type ClassRef struct {
	SpanVal Span
	Class   string
	Member  *Segment
	Cast    *Expression
}

// SuperCall is ##super(args).
type SuperCall struct {
	SpanVal Span
	Args    []Expr
}

// OrefChain is a base reference followed by dotted member segments.
type OrefChain struct {
	SpanVal  Span
	Base     Expr
	Segments []*Segment
}

// SegmentKind tells how a member segment was resolved.
type SegmentKind int

const (
	SegmentProperty SegmentKind = iota
	SegmentMethod
	SegmentParameter
)

func (k SegmentKind) String() string {
	switch k {
	case SegmentMethod:
		return "method"
	case SegmentParameter:
		return "parameter"
	}
	return "property"
}

// Segment is one member access. Ambiguous is set when a name(args) segment
// was resolved as a method by tie-break; consumers should treat the kind as
// advisory in that case.
type Segment struct {
	SpanVal   Span
	Kind      SegmentKind
	Name      string
	HasArgs   bool
	Args      []Expr
	Ambiguous bool
}

// ByRefArg is a .name argument passed by reference.
type ByRefArg struct {
	SpanVal Span
	Var     Expr
}

// VariadicArg is a name... argument.
type VariadicArg struct {
	SpanVal Span
	Var     *LocalVar
}

// OmittedArg marks an empty position in an argument list.
type OmittedArg struct {
	SpanVal Span
}

// EndRef is the * position of $PIECE, $EXTRACT and $LIST, with an optional
// signed offset.
type EndRef struct {
	SpanVal Span
	Op      string
	Offset  *Expression
}

// CaseArm is match:value inside $CASE or $SELECT. Match is nil for the
// $CASE default.
type CaseArm struct {
	SpanVal Span
	Match   *Expression
	Value   *Expression
}

// JSONObject is a {"key":value,...} literal.
type JSONObject struct {
	SpanVal Span
	Pairs   []*JSONPair
}

// JSONPair is one member of a JSON object literal.
type JSONPair struct {
	SpanVal Span
	Key     string
	Value   Expr
}

// JSONArray is a [value,...] literal.
type JSONArray struct {
	SpanVal Span
	Elems   []Expr
}

// JSONValue is a JSON string, number, true, false or null.
type JSONValue struct {
	SpanVal Span
	Raw     string
}

// BadExpr stands in for an expression that failed to parse.
type BadExpr struct {
	SpanVal Span
}

func (n *Expression) Span() Span  { return n.SpanVal }
func (n *Tail) Span() Span        { return n.SpanVal }
func (n *ParenExpr) Span() Span   { return n.SpanVal }
func (n *UnaryExpr) Span() Span   { return n.SpanVal }
func (n *Indirection) Span() Span { return n.SpanVal }
func (n *StringLit) Span() Span   { return n.SpanVal }
func (n *NumberLit) Span() Span   { return n.SpanVal }
func (n *PatternLit) Span() Span  { return n.SpanVal }
func (n *MacroRef) Span() Span    { return n.SpanVal }
func (n *LocalVar) Span() Span    { return n.SpanVal }
func (n *GlobalVar) Span() Span   { return n.SpanVal }
func (n *SSVN) Span() Span        { return n.SpanVal }
func (n *InstanceVar) Span() Span { return n.SpanVal }
func (n *SQLFieldRef) Span() Span { return n.SpanVal }
func (n *SystemVar) Span() Span   { return n.SpanVal }
func (n *SystemFunc) Span() Span  { return n.SpanVal }
func (n *SystemCall) Span() Span  { return n.SpanVal }
func (n *LineRef) Span() Span     { return n.SpanVal }
func (n *Extrinsic) Span() Span   { return n.SpanVal }
func (n *RoutineCall) Span() Span { return n.SpanVal }
func (n *RelativeRef) Span() Span { return n.SpanVal }
func (n *ClassRef) Span() Span    { return n.SpanVal }
func (n *SuperCall) Span() Span   { return n.SpanVal }
func (n *OrefChain) Span() Span   { return n.SpanVal }
func (n *Segment) Span() Span     { return n.SpanVal }
func (n *ByRefArg) Span() Span    { return n.SpanVal }
func (n *VariadicArg) Span() Span { return n.SpanVal }
func (n *OmittedArg) Span() Span  { return n.SpanVal }
func (n *EndRef) Span() Span      { return n.SpanVal }
func (n *CaseArm) Span() Span     { return n.SpanVal }
func (n *JSONObject) Span() Span  { return n.SpanVal }
func (n *JSONPair) Span() Span    { return n.SpanVal }
func (n *JSONArray) Span() Span   { return n.SpanVal }
func (n *JSONValue) Span() Span   { return n.SpanVal }
func (n *BadExpr) Span() Span     { return n.SpanVal }

func (n *Expression) node()  {}
func (n *Tail) node()        {}
func (n *ParenExpr) node()   {}
func (n *UnaryExpr) node()   {}
func (n *Indirection) node() {}
func (n *StringLit) node()   {}
func (n *NumberLit) node()   {}
func (n *PatternLit) node()  {}
func (n *MacroRef) node()    {}
func (n *LocalVar) node()    {}
func (n *GlobalVar) node()   {}
func (n *SSVN) node()        {}
func (n *InstanceVar) node() {}
func (n *SQLFieldRef) node() {}
func (n *SystemVar) node()   {}
func (n *SystemFunc) node()  {}
func (n *SystemCall) node()  {}
func (n *LineRef) node()     {}
func (n *Extrinsic) node()   {}
func (n *RoutineCall) node() {}
func (n *RelativeRef) node() {}
func (n *ClassRef) node()    {}
func (n *SuperCall) node()   {}
func (n *OrefChain) node()   {}
func (n *Segment) node()     {}
func (n *ByRefArg) node()    {}
func (n *VariadicArg) node() {}
func (n *OmittedArg) node()  {}
func (n *EndRef) node()      {}
func (n *CaseArm) node()     {}
func (n *JSONObject) node()  {}
func (n *JSONPair) node()    {}
func (n *JSONArray) node()   {}
func (n *JSONValue) node()   {}
func (n *BadExpr) node()     {}

func (n *Expression) expr()  {}
func (n *ParenExpr) expr()   {}
func (n *UnaryExpr) expr()   {}
func (n *Indirection) expr() {}
func (n *StringLit) expr()   {}
func (n *NumberLit) expr()   {}
func (n *PatternLit) expr()  {}
func (n *MacroRef) expr()    {}
func (n *LocalVar) expr()    {}
func (n *GlobalVar) expr()   {}
func (n *SSVN) expr()        {}
func (n *InstanceVar) expr() {}
func (n *SQLFieldRef) expr() {}
func (n *SystemVar) expr()   {}
func (n *SystemFunc) expr()  {}
func (n *SystemCall) expr()  {}
func (n *LineRef) expr()     {}
func (n *Extrinsic) expr()   {}
func (n *RoutineCall) expr() {}
func (n *RelativeRef) expr() {}
func (n *ClassRef) expr()    {}
func (n *SuperCall) expr()   {}
func (n *OrefChain) expr()   {}
func (n *ByRefArg) expr()    {}
func (n *VariadicArg) expr() {}
func (n *OmittedArg) expr()  {}
func (n *EndRef) expr()      {}
func (n *CaseArm) expr()     {}
func (n *JSONObject) expr()  {}
func (n *JSONArray) expr()   {}
func (n *JSONValue) expr()   {}
func (n *BadExpr) expr()     {}

// ---------------------------------------------------------------------------
// Command arguments
// ---------------------------------------------------------------------------

// SetArg is target=value or (t1,t2)=value.
type SetArg struct {
	SpanVal Span
	Targets []Expr
	Multi   bool
	Value   *Expression
}

// WriteFormat is a run of ! and # format controls.
type WriteFormat struct {
	SpanVal Span
	Raw     string
}

// WriteTab is ?column.
type WriteTab struct {
	SpanVal Span
	X       *Expression
}

// WriteChar is *code.
type WriteChar struct {
	SpanVal Span
	X       *Expression
}

// Mnemonic is /name(args), a device control mnemonic.
type Mnemonic struct {
	SpanVal Span
	Name    string
	Args    []Expr
}

// DoArg is one DO argument with its optional post-conditional.
type DoArg struct {
	SpanVal  Span
	Target   Expr
	PostCond *Expression
}

// ForParam is var=range,range,...
type ForParam struct {
	SpanVal Span
	Var     Expr
	Ranges  []*ForRange
}

// ForRange is start[:increment[:limit]].
type ForRange struct {
	SpanVal   Span
	Start     *Expression
	Increment *Expression
	Limit     *Expression
}

// VarList is a parenthesized list of variables, as in KILL (a,b) or NEW (a,b).
type VarList struct {
	SpanVal Span
	Vars    []Expr
}

// LockArg is one LOCK argument.
type LockArg struct {
	SpanVal Span
	Op      string
	Grouped bool
	Targets []*LockTarget
	Timeout *Expression
}

// LockTarget is [@]glvn[#"type"].
type LockTarget struct {
	SpanVal  Span
	Indirect bool
	Var      Expr
	LockType string
}

// ReadVar is a READ target: var, *var or var#length, with optional timeout.
type ReadVar struct {
	SpanVal Span
	Var     Expr
	Single  bool
	Length  *Expression
	Timeout *Expression
}

// DeviceArg is an OPEN, USE or CLOSE argument.
type DeviceArg struct {
	SpanVal   Span
	Device    *Expression
	HasParams bool
	Params    []Node
	Timeout   *Expression
	Mnemonic  *Expression
	Options   []*CloseOption
}

// DeviceParam is /KEYWORD[=value] inside a device parameter list.
type DeviceParam struct {
	SpanVal Span
	Keyword string
	Value   *Expression
}

// CloseOption is "D", "K", "R":name or /REN[AME]=name.
type CloseOption struct {
	SpanVal Span
	Raw     string
}

// JobArg is one JOB argument.
type JobArg struct {
	SpanVal     Span
	Target      Expr
	Location    *Expression
	LocationSep string
	HasParams   bool
	Params      []Expr
	Timeout     *Expression
}

// GotoArg is a GOTO target with its optional post-conditional.
type GotoArg struct {
	SpanVal  Span
	Ref      *LineRef
	PostCond *Expression
}

// MergeArg is target=source.
type MergeArg struct {
	SpanVal Span
	Target  Expr
	Source  Expr
}

// ViewArg is block or offset:mode:length:newvalue.
type ViewArg struct {
	SpanVal Span
	Parts   []*Expression
}

// XecuteArg is code[:condition], or a parenthesized list of code strings.
type XecuteArg struct {
	SpanVal  Span
	Code     []*Expression
	PostCond *Expression
}

// ZBreakArg is /id[:action].
type ZBreakArg struct {
	SpanVal Span
	ID      string
	Action  string
}

func (n *SetArg) Span() Span      { return n.SpanVal }
func (n *WriteFormat) Span() Span { return n.SpanVal }
func (n *WriteTab) Span() Span    { return n.SpanVal }
func (n *WriteChar) Span() Span   { return n.SpanVal }
func (n *Mnemonic) Span() Span    { return n.SpanVal }
func (n *DoArg) Span() Span       { return n.SpanVal }
func (n *ForParam) Span() Span    { return n.SpanVal }
func (n *ForRange) Span() Span    { return n.SpanVal }
func (n *VarList) Span() Span     { return n.SpanVal }
func (n *LockArg) Span() Span     { return n.SpanVal }
func (n *LockTarget) Span() Span  { return n.SpanVal }
func (n *ReadVar) Span() Span     { return n.SpanVal }
func (n *DeviceArg) Span() Span   { return n.SpanVal }
func (n *DeviceParam) Span() Span { return n.SpanVal }
func (n *CloseOption) Span() Span { return n.SpanVal }
func (n *JobArg) Span() Span      { return n.SpanVal }
func (n *GotoArg) Span() Span     { return n.SpanVal }
func (n *MergeArg) Span() Span    { return n.SpanVal }
func (n *ViewArg) Span() Span     { return n.SpanVal }
func (n *XecuteArg) Span() Span   { return n.SpanVal }
func (n *ZBreakArg) Span() Span   { return n.SpanVal }

func (n *SetArg) node()      {}
func (n *WriteFormat) node() {}
func (n *WriteTab) node()    {}
func (n *WriteChar) node()   {}
func (n *Mnemonic) node()    {}
func (n *DoArg) node()       {}
func (n *ForParam) node()    {}
func (n *ForRange) node()    {}
func (n *VarList) node()     {}
func (n *LockArg) node()     {}
func (n *LockTarget) node()  {}
func (n *ReadVar) node()     {}
func (n *DeviceArg) node()   {}
func (n *DeviceParam) node() {}
func (n *CloseOption) node() {}
func (n *JobArg) node()      {}
func (n *GotoArg) node()     {}
func (n *MergeArg) node()    {}
func (n *ViewArg) node()     {}
func (n *XecuteArg) node()   {}
func (n *ZBreakArg) node()   {}

// ---------------------------------------------------------------------------
// Statements
// ---------------------------------------------------------------------------

// CommandStmt is a command without a brace block: keyword, optional
// post-conditional, and arguments. Old-style ELSE keeps the rest of its
// line in Body; an argumentless DO keeps the dotted lines it owns.
type CommandStmt struct {
	SpanVal      Span
	Command      Command
	Keyword      string
	PostCond     *Expression
	Argumentless bool
	Args         []Node
	Body         []Stmt
}

// IfStmt is IF in block, old or argumentless style.
type IfStmt struct {
	SpanVal      Span
	Keyword      string
	Conds        []*Expression
	Argumentless bool
	Block        bool
	Body         []Stmt
	ElseIfs      []*ElseIfClause
	Else         *ElseClause
}

// ElseIfClause is ELSEIF cond {...} after a block IF.
type ElseIfClause struct {
	SpanVal Span
	Conds   []*Expression
	Body    []Stmt
}

// ElseClause is ELSE {...} after a block IF.
type ElseClause struct {
	SpanVal Span
	Body    []Stmt
}

// ForStmt is FOR in block or old style, with or without a parameter.
type ForStmt struct {
	SpanVal Span
	Keyword string
	Param   *ForParam
	Block   bool
	Body    []Stmt
}

// WhileStmt is WHILE cond {...}.
type WhileStmt struct {
	SpanVal Span
	Conds   []*Expression
	Body    []Stmt
}

// DoWhileStmt is DO {...} WHILE cond.
type DoWhileStmt struct {
	SpanVal  Span
	PostCond *Expression
	Body     []Stmt
	Cond     []*Expression
}

// TryStmt is TRY {...} CATCH [var] {...}.
type TryStmt struct {
	SpanVal Span
	Body    []Stmt
	Catch   *CatchClause
}

// CatchClause is the CATCH part of a TryStmt.
type CatchClause struct {
	SpanVal Span
	Var     Expr
	Body    []Stmt
}

// TagStmt is a column-zero label, optionally with formal parameters.
type TagStmt struct {
	SpanVal   Span
	Name      string
	HasParams bool
	Params    []*Param
}

// Param is a formal parameter with an optional default.
type Param struct {
	SpanVal Span
	Name    string
	Default *Expression
}

// ProcedureStmt is tag(params) [public] Access { body }.
type ProcedureStmt struct {
	SpanVal    Span
	Name       string
	Params     []*Param
	PublicVars []string
	Access     string
	Body       []Stmt
}

// DottedStmt is a line prefixed with one or more dots.
type DottedStmt struct {
	SpanVal Span
	Level   int
	Body    []Stmt
}

// EmbeddedStmt is an opaque fenced block of SQL, HTML, XML or JS.
type EmbeddedStmt struct {
	SpanVal Span
	Lang    Language
	Marker  string
	Body    Span
	Text    string
}

// MacroStmt is a macro invocation in statement position.
type MacroStmt struct {
	SpanVal Span
	Macro   *MacroRef
}

// MacroDirective is #define or #def1arg.
type MacroDirective struct {
	SpanVal   Span
	Directive string
	Name      string
	HasParams bool
	Params    []string
	Lines     []*MacroLine
}

// MacroLine is one physical line of a macro body. Continued is set when the
// line ends with ##continue.
type MacroLine struct {
	SpanVal   Span
	Text      string
	Continued bool
}

// UndefDirective is #undef NAME.
type UndefDirective struct {
	SpanVal Span
	Name    string
}

// CondDirective is #if, #ifdef or #ifndef with its branches.
type CondDirective struct {
	SpanVal   Span
	Directive string
	Cond      *Expression
	Body      []Stmt
	ElseIfs   []*ElseIfDirective
	Else      *ElseDirective
}

// ElseIfDirective is an #elseif branch.
type ElseIfDirective struct {
	SpanVal Span
	Cond    *Expression
	Body    []Stmt
}

// ElseDirective is an #else branch.
type ElseDirective struct {
	SpanVal Span
	Body    []Stmt
}

// IncludeDirective is #include name or #import a,b.
type IncludeDirective struct {
	SpanVal Span
	Import  bool
	Names   []string
}

// DimDirective is #dim names [As Type] [= value].
type DimDirective struct {
	SpanVal Span
	Names   []string
	Type    string
	Value   *Expression
}

// BadStmt covers source text that failed to parse.
type BadStmt struct {
	SpanVal Span
}

func (n *CommandStmt) Span() Span      { return n.SpanVal }
func (n *IfStmt) Span() Span           { return n.SpanVal }
func (n *ElseIfClause) Span() Span     { return n.SpanVal }
func (n *ElseClause) Span() Span       { return n.SpanVal }
func (n *ForStmt) Span() Span          { return n.SpanVal }
func (n *WhileStmt) Span() Span        { return n.SpanVal }
func (n *DoWhileStmt) Span() Span      { return n.SpanVal }
func (n *TryStmt) Span() Span          { return n.SpanVal }
func (n *CatchClause) Span() Span      { return n.SpanVal }
func (n *TagStmt) Span() Span          { return n.SpanVal }
func (n *Param) Span() Span            { return n.SpanVal }
func (n *ProcedureStmt) Span() Span    { return n.SpanVal }
func (n *DottedStmt) Span() Span       { return n.SpanVal }
func (n *EmbeddedStmt) Span() Span     { return n.SpanVal }
func (n *MacroStmt) Span() Span        { return n.SpanVal }
func (n *MacroDirective) Span() Span   { return n.SpanVal }
func (n *MacroLine) Span() Span        { return n.SpanVal }
func (n *UndefDirective) Span() Span   { return n.SpanVal }
func (n *CondDirective) Span() Span    { return n.SpanVal }
func (n *ElseIfDirective) Span() Span  { return n.SpanVal }
func (n *ElseDirective) Span() Span    { return n.SpanVal }
func (n *IncludeDirective) Span() Span { return n.SpanVal }
func (n *DimDirective) Span() Span     { return n.SpanVal }
func (n *BadStmt) Span() Span          { return n.SpanVal }

func (n *CommandStmt) node()      {}
func (n *IfStmt) node()           {}
func (n *ElseIfClause) node()     {}
func (n *ElseClause) node()       {}
func (n *ForStmt) node()          {}
func (n *WhileStmt) node()        {}
func (n *DoWhileStmt) node()      {}
func (n *TryStmt) node()          {}
func (n *CatchClause) node()      {}
func (n *TagStmt) node()          {}
func (n *Param) node()            {}
func (n *ProcedureStmt) node()    {}
func (n *DottedStmt) node()       {}
func (n *EmbeddedStmt) node()     {}
func (n *MacroStmt) node()        {}
func (n *MacroDirective) node()   {}
func (n *MacroLine) node()        {}
func (n *UndefDirective) node()   {}
func (n *CondDirective) node()    {}
func (n *ElseIfDirective) node()  {}
func (n *ElseDirective) node()    {}
func (n *IncludeDirective) node() {}
func (n *DimDirective) node()     {}
func (n *BadStmt) node()          {}

func (n *CommandStmt) stmt()      {}
func (n *IfStmt) stmt()           {}
func (n *ForStmt) stmt()          {}
func (n *WhileStmt) stmt()        {}
func (n *DoWhileStmt) stmt()      {}
func (n *TryStmt) stmt()          {}
func (n *TagStmt) stmt()          {}
func (n *ProcedureStmt) stmt()    {}
func (n *DottedStmt) stmt()       {}
func (n *EmbeddedStmt) stmt()     {}
func (n *MacroStmt) stmt()        {}
func (n *MacroDirective) stmt()   {}
func (n *UndefDirective) stmt()   {}
func (n *CondDirective) stmt()    {}
func (n *IncludeDirective) stmt() {}
func (n *DimDirective) stmt()     {}
func (n *BadStmt) stmt()          {}
