// osc - command line front end for the ObjectScript parser
package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/tliron/commonlog"

	"github.com/chazu/objectscript"

	_ "github.com/tliron/commonlog/simple"
)

var log = commonlog.GetLogger("objectscript.osc")

// globals carries the flags shared by every subcommand.
type globals struct {
	verbose bool
	dialect objectscript.Dialect
	// dir is where the manifest search starts.
	dir string
}

func main() {
	verbose := flag.Bool("v", false, "Verbose output")
	dialect := flag.String("dialect", "", "Parse every file as this dialect (core or class)")

	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: osc [options] <command> [arguments]\n\n")
		fmt.Fprintf(os.Stderr, "Parses ObjectScript routines (.mac, .int, .inc) and class definitions (.cls).\n\n")
		fmt.Fprintf(os.Stderr, "Options:\n")
		flag.PrintDefaults()
		fmt.Fprintf(os.Stderr, "\nCommands:\n")
		fmt.Fprintf(os.Stderr, "  check [paths...]               Report diagnostics; exits 1 on errors\n")
		fmt.Fprintf(os.Stderr, "  dump [-format json|cbor] file  Export the syntax tree\n")
		fmt.Fprintf(os.Stderr, "  tokens file                    List classified tokens\n")
		fmt.Fprintf(os.Stderr, "  fingerprint file               Print the structural fingerprint\n")
		fmt.Fprintf(os.Stderr, "  index [paths...]               Rebuild the symbol index\n")
		fmt.Fprintf(os.Stderr, "  lsp                            Start the language server on stdio\n")
		fmt.Fprintf(os.Stderr, "\nWithout paths, check and index use the sources listed in objectscript.toml.\n")
	}
	flag.Parse()

	g := globals{verbose: *verbose, dir: "."}
	if *dialect != "" {
		d, err := objectscript.ParseDialect(*dialect)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		g.dialect = d
	}

	if *verbose {
		commonlog.Configure(2, nil)
	} else {
		commonlog.Configure(0, nil)
	}

	args := flag.Args()
	if len(args) == 0 {
		flag.Usage()
		os.Exit(2)
	}

	var err error
	code := 0
	switch cmd, rest := args[0], args[1:]; cmd {
	case "check":
		code, err = handleCheckCommand(os.Stdout, rest, g)
	case "index":
		err = handleIndexCommand(os.Stdout, rest, g)
	case "dump":
		err = handleDumpCommand(os.Stdout, rest, g)
	case "tokens":
		err = handleTokensCommand(os.Stdout, rest, g)
	case "fingerprint":
		err = handleFingerprintCommand(os.Stdout, rest, g)
	case "lsp":
		err = handleLspCommand(rest, g)
	case "help", "-h", "--help":
		flag.Usage()
	default:
		fmt.Fprintf(os.Stderr, "Error: unknown command %q\n\n", cmd)
		flag.Usage()
		os.Exit(2)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	os.Exit(code)
}
