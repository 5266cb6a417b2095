package syntax

import "strings"

// ---------------------------------------------------------------------------
// Commands
// ---------------------------------------------------------------------------

// Command identifies a command keyword after abbreviation resolution.
type Command int

const (
	CmdInvalid Command = iota
	CmdSet
	CmdWrite
	CmdDo
	CmdFor
	CmdWhile
	CmdIf
	CmdElseIf
	CmdElse
	CmdKill
	CmdLock
	CmdRead
	CmdOpen
	CmdClose
	CmdUse
	CmdNew
	CmdThrow
	CmdTry
	CmdCatch
	CmdJob
	CmdBreak
	CmdMerge
	CmdQuit
	CmdGoto
	CmdReturn
	CmdHang
	CmdHalt
	CmdContinue
	CmdTCommit
	CmdTRollback
	CmdTStart
	CmdView
	CmdXecute
	CmdZBreak
	CmdZKill
	CmdZNSpace
	CmdZSU
	CmdZTrap
	CmdZWrite
	CmdZZ
)

// argForm states which boundary forms a command accepts.
type argForm int

const (
	formBoth argForm = iota
	formArgs
	formArgless
)

type commandSpec struct {
	cmd      Command
	name     string
	abbrevs  []string
	form     argForm
	postCond bool
}

// commandSpecs is the command table in declaration order. When several
// commands share a spelling the earlier entry wins among those whose
// argument form fits, so HANG is listed before HALT.
var commandSpecs = []commandSpec{
	{CmdSet, "SET", []string{"S"}, formArgs, true},
	{CmdWrite, "WRITE", []string{"W"}, formBoth, true},
	{CmdDo, "DO", []string{"D"}, formBoth, true},
	{CmdFor, "FOR", []string{"F"}, formBoth, false},
	{CmdWhile, "WHILE", nil, formBoth, false},
	{CmdIf, "IF", []string{"I"}, formBoth, false},
	{CmdElseIf, "ELSEIF", nil, formArgs, false},
	{CmdElse, "ELSE", []string{"E"}, formArgless, false},
	{CmdKill, "KILL", []string{"K"}, formBoth, true},
	{CmdLock, "LOCK", []string{"L"}, formBoth, true},
	{CmdRead, "READ", []string{"R"}, formArgs, true},
	{CmdOpen, "OPEN", []string{"O"}, formArgs, true},
	{CmdClose, "CLOSE", []string{"C"}, formArgs, true},
	{CmdUse, "USE", []string{"U"}, formArgs, true},
	{CmdNew, "NEW", []string{"N"}, formBoth, true},
	{CmdThrow, "THROW", nil, formBoth, true},
	{CmdTry, "TRY", nil, formBoth, false},
	{CmdCatch, "CATCH", nil, formBoth, false},
	{CmdJob, "JOB", []string{"J"}, formArgs, true},
	{CmdBreak, "BREAK", []string{"B"}, formBoth, true},
	{CmdMerge, "MERGE", []string{"M"}, formArgs, true},
	{CmdQuit, "QUIT", []string{"Q"}, formBoth, true},
	{CmdGoto, "GOTO", []string{"G"}, formBoth, true},
	{CmdReturn, "RETURN", []string{"RET"}, formBoth, true},
	{CmdHang, "HANG", []string{"H"}, formArgs, true},
	{CmdHalt, "HALT", []string{"H"}, formArgless, true},
	{CmdContinue, "CONTINUE", nil, formArgless, true},
	{CmdTCommit, "TCOMMIT", []string{"TC"}, formArgless, true},
	{CmdTRollback, "TROLLBACK", []string{"TRO"}, formBoth, true},
	{CmdTStart, "TSTART", []string{"TS"}, formArgless, true},
	{CmdView, "VIEW", []string{"V"}, formArgs, true},
	{CmdXecute, "XECUTE", []string{"X"}, formArgs, true},
	{CmdZBreak, "ZBREAK", []string{"ZB"}, formBoth, true},
	{CmdZKill, "ZKILL", nil, formArgs, true},
	{CmdZNSpace, "ZNSPACE", []string{"ZN"}, formArgs, true},
	{CmdZSU, "ZSU", nil, formBoth, true},
	{CmdZTrap, "ZTRAP", []string{"ZT"}, formBoth, true},
	{CmdZWrite, "ZWRITE", []string{"ZW"}, formBoth, true},
	{CmdZZ, "ZZ", nil, formArgs, true},
}

// commandWords maps every upper-cased spelling to the indexes of the
// commands it may denote, in table order.
var commandWords = func() map[string][]int {
	m := make(map[string][]int)
	for i, spec := range commandSpecs {
		if spec.cmd == CmdZZ {
			continue
		}
		m[spec.name] = append(m[spec.name], i)
		for _, a := range spec.abbrevs {
			m[a] = append(m[a], i)
		}
	}
	return m
}()

var commandIndex = func() map[Command]int {
	m := make(map[Command]int)
	for i, spec := range commandSpecs {
		m[spec.cmd] = i
	}
	return m
}()

func (c Command) String() string {
	if i, ok := commandIndex[c]; ok {
		return commandSpecs[i].name
	}
	return "INVALID"
}

// AllowsPostConditional reports whether the command accepts :condition.
func (c Command) AllowsPostConditional() bool {
	if i, ok := commandIndex[c]; ok {
		return commandSpecs[i].postCond
	}
	return false
}

// lookupCommand returns the candidate commands spelled by word. User
// commands ZZxxx match by prefix.
func lookupCommand(word string) []commandSpec {
	up := strings.ToUpper(word)
	if len(up) > 2 && strings.HasPrefix(up, "ZZ") {
		return []commandSpec{commandSpecs[commandIndex[CmdZZ]]}
	}
	idx := commandWords[up]
	out := make([]commandSpec, len(idx))
	for i, j := range idx {
		out[i] = commandSpecs[j]
	}
	return out
}

// resolveCommand picks among candidates sharing a spelling using the
// command boundary: argument-requiring commands need BoundaryArgs and
// argumentless ones need BoundaryArgless. When no candidate fits the first
// one is returned so the caller can report the mismatch against it.
func resolveCommand(cands []commandSpec, b Boundary) (commandSpec, bool) {
	if len(cands) == 0 {
		return commandSpec{}, false
	}
	for _, c := range cands {
		switch {
		case c.form == formBoth:
			return c, true
		case c.form == formArgs && b == BoundaryArgs:
			return c, true
		case c.form == formArgless && b != BoundaryArgs:
			return c, true
		}
	}
	return cands[0], false
}

// CommandNames returns the full name of every command in table order.
func CommandNames() []string {
	out := make([]string, 0, len(commandSpecs))
	for _, spec := range commandSpecs {
		if spec.cmd != CmdZZ {
			out = append(out, spec.name)
		}
	}
	return out
}

// CommandName returns the full name of a command spelling. A spelling
// shared by several commands yields their names joined with "/".
func CommandName(spelling string) (string, bool) {
	cands := lookupCommand(spelling)
	if len(cands) == 0 {
		return "", false
	}
	if cands[0].cmd == CmdZZ {
		return strings.ToUpper(spelling), true
	}
	names := make([]string, len(cands))
	for i, c := range cands {
		names[i] = c.name
	}
	return strings.Join(names, "/"), true
}

// ---------------------------------------------------------------------------
// Builtin names. Each entry lists the canonical name then its aliases.
// ---------------------------------------------------------------------------

var systemFunctionSpellings = []string{
	"ASCII A", "BIT", "BITCOUNT", "BITFIND", "BITLOGIC", "CASE", "CHAR C",
	"CLASSMETHOD", "CLASSNAME", "COMPILE", "DATA D", "DECIMAL", "DOUBLE",
	"EXTRACT E", "FACTOR", "FIND F", "FNUMBER FN", "GET G", "INCREMENT I",
	"INUMBER IN", "ISOBJECT", "ISVALIDDOUBLE", "ISVALIDNUM", "ISVECTOR",
	"JUSTIFY J", "LENGTH L", "LIST LI", "LISTBUILD LB", "LISTDATA LD",
	"LISTFIND LF", "LISTFROMSTRING LFS", "LISTGET LG", "LISTLENGTH LL",
	"LISTNEXT", "LISTSAME LS", "LISTTOSTRING LTS", "LISTUPDATE LU",
	"LISTVALID LV", "LOCATE", "MATCH", "METHOD", "NAME NA", "NCONVERT NC",
	"NORMALIZE", "NOW", "NUMBER NUM", "ORDER O", "PARAMETER", "PIECE P",
	"PREFETCHOFF", "PREFETCHON", "PREPROCESS", "PROPERTY", "QLENGTH QL",
	"QSUBSCRIPT QS", "QUERY Q", "RANDOM R", "REPLACE", "REVERSE RE",
	"SCONVERT SC", "SELECT S", "SEQUENCE SEQ", "SORTBEGIN", "SORTEND",
	"STACK ST", "TEXT T", "TRANSLATE TR", "VECTOR VE", "VECTORDEFINED VD",
	"VECTOROP VOP", "VIEW V", "WASCII WA", "WCHAR WC", "WEXTRACT WE",
	"WFIND WF", "WISWIDE", "WLENGTH WL", "WREVERSE WRE", "XECUTE", "ZABS",
	"ZARCCOS", "ZARCSIN", "ZARCTAN", "ZBITAND", "ZBITCOUNT", "ZBITFIND",
	"ZBITGET", "ZBITLEN", "ZBITNOT", "ZBITOR", "ZBITSET", "ZBITSTR",
	"ZBITXOR", "ZBOOLEAN ZB", "ZCONVERT ZCVT", "ZCOS", "ZCOT", "ZCRC",
	"ZCSC", "ZCYC ZC", "ZDASCII ZDA", "ZDATE ZD", "ZDATEH ZDH",
	"ZDATETIME ZDT", "ZDATETIMEH ZDTH", "ZDCHAR ZDC", "ZEXP", "ZF",
	"ZHEX ZH", "ZISWIDE", "ZLASCII ZLA", "ZLCHAR ZLC", "ZLN", "ZLOG",
	"ZNAME", "ZOBJCLASS", "ZOBJCLASSMETHOD", "ZOBJMETHOD", "ZOBJPROPERTY",
	"ZPOSITION", "ZPOWER", "ZQASCII ZQA", "ZQCHAR ZQC", "ZSEARCH ZSE",
	"ZSEC", "ZSEEK", "ZSIN", "ZSQR", "ZSTRIP", "ZTAN", "ZTIME ZT",
	"ZTIMEH ZTH", "ZUTIL ZU", "ZVERSION ZV", "ZWASCII ZWA", "ZWBPACK",
	"ZWBUNPACK", "ZWCHAR ZWC", "ZWIDTH", "ZWPACK", "ZWUNPACK", "ZZENKAKU",
}

var systemVariableSpellings = []string{
	"DEVICE D", "ECODE EC", "ESTACK ES", "ETRAP ET", "HALT", "HOROLOG H",
	"IO I", "JOB J", "KEY K", "NAMESPACE", "PRINCIPAL P", "QUIT Q",
	"ROLES", "STACK ST", "STORAGE S", "SYSTEM SY", "TEST T", "THIS",
	"THROWOBJ", "TLEVEL TL", "USERNAME", "X", "Y", "ZA", "ZB",
	"ZCHILD ZC", "ZEOF", "ZEOS", "ZERROR ZE", "ZHOROLOG ZH", "ZIO ZI",
	"ZJOB ZJ", "ZMODE ZM", "ZNAME ZN", "ZNSPACE", "ZORDER ZO",
	"ZPARENT ZP", "ZPI", "ZPOSITION ZPOS", "ZREFERENCE ZR", "ZSTORAGE ZS",
	"ZTIMESTAMP ZTS", "ZTIMEZONE ZTZ", "ZTRAP ZT", "ZVERSION ZV",
}

func spellingTable(entries []string) map[string]string {
	m := make(map[string]string, len(entries)*2)
	for _, e := range entries {
		names := strings.Fields(e)
		for _, n := range names {
			m[n] = names[0]
		}
	}
	return m
}

var (
	systemFunctions = spellingTable(systemFunctionSpellings)
	systemVariables = spellingTable(systemVariableSpellings)
)

// SystemFunction returns the canonical name of a $function spelling,
// without the leading '$'.
func SystemFunction(spelling string) (string, bool) {
	name, ok := systemFunctions[strings.ToUpper(spelling)]
	return name, ok
}

// SystemVariable returns the canonical name of a $variable spelling,
// without the leading '$'.
func SystemVariable(spelling string) (string, bool) {
	name, ok := systemVariables[strings.ToUpper(spelling)]
	return name, ok
}

// SystemFunctionNames returns the canonical builtin function names.
func SystemFunctionNames() []string { return canonicalNames(systemFunctionSpellings) }

// SystemVariableNames returns the canonical builtin variable names.
func SystemVariableNames() []string { return canonicalNames(systemVariableSpellings) }

func canonicalNames(entries []string) []string {
	out := make([]string, len(entries))
	for i, e := range entries {
		out[i] = strings.Fields(e)[0]
	}
	return out
}

// specialForm names builtin functions with argument shapes of their own.
type specialForm int

const (
	formGeneric specialForm = iota
	formPosition            // $PIECE $EXTRACT $LIST $LISTGET accept * positions
	formCase
	formSelect
	formMethodCall // $CLASSMETHOD $METHOD accept by-reference arguments
	formText       // $TEXT takes a line reference
)

var specialForms = map[string]specialForm{
	"PIECE":           formPosition,
	"EXTRACT":         formPosition,
	"LIST":            formPosition,
	"LISTGET":         formPosition,
	"CASE":            formCase,
	"SELECT":          formSelect,
	"CLASSMETHOD":     formMethodCall,
	"ZOBJCLASSMETHOD": formMethodCall,
	"METHOD":          formMethodCall,
	"ZOBJMETHOD":      formMethodCall,
	"TEXT":            formText,
}

// newableVariables are the system variables NEW accepts.
var newableVariables = map[string]bool{
	"ESTACK":    true,
	"ETRAP":     true,
	"NAMESPACE": true,
	"ROLES":     true,
}
