// bindgen generates Go wrappers for native platform functions described by
// metadata descriptor files.
package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/tliron/commonlog"
	_ "github.com/tliron/commonlog/simple"
)

func main() {
	verbose := flag.Int("v", 0, "Log verbosity (0 warnings, 1 info, 2 debug)")

	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: bindgen [options] <command> [arguments]\n\n")
		fmt.Fprintf(os.Stderr, "Generates Go wrappers for native functions from descriptor files.\n\n")
		fmt.Fprintf(os.Stderr, "Commands:\n")
		fmt.Fprintf(os.Stderr, "  generate   write wrappers for every descriptor\n")
		fmt.Fprintf(os.Stderr, "  classify   print the calling convention of every descriptor\n")
		fmt.Fprintf(os.Stderr, "  verify     type-check a generated package\n")
		fmt.Fprintf(os.Stderr, "\nOptions:\n")
		flag.PrintDefaults()
		fmt.Fprintf(os.Stderr, "\nExamples:\n")
		fmt.Fprintf(os.Stderr, "  bindgen generate                          # everything listed in bindgen.toml\n")
		fmt.Fprintf(os.Stderr, "  bindgen generate -pkg example.com/com com.toml\n")
		fmt.Fprintf(os.Stderr, "  bindgen -v 2 classify com.toml\n")
		fmt.Fprintf(os.Stderr, "  bindgen verify ./com\n")
	}
	flag.Parse()

	commonlog.Configure(*verbose, nil)

	args := flag.Args()
	if len(args) == 0 {
		flag.Usage()
		os.Exit(2)
	}

	var err error
	switch args[0] {
	case "generate":
		err = handleGenerateCommand(args[1:])
	case "classify":
		err = handleClassifyCommand(args[1:])
	case "verify":
		err = handleVerifyCommand(args[1:])
	case "help":
		flag.Usage()
		return
	default:
		fmt.Fprintf(os.Stderr, "Unknown command %q\n\n", args[0])
		flag.Usage()
		os.Exit(2)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
