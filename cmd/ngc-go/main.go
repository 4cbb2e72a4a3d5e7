package main

import (
	"fmt"
	"os"

	"ngc-go/packages/compiler/src/config"
)

func usage() {
	fmt.Println(`ngc-go - change detector compiler
Usage: ngc-go <command> [args]

Commands:
  coalesce <records.yaml>                 Print the coalesced records
  codegen <records.yaml> [config.yaml]    Print the generated change detection body
  compile <path> [output] [config.yaml]   Compile every *.records.yaml under path
  help                                    Show help`)
}

func main() {
	if len(os.Args) < 2 {
		usage()
		os.Exit(1)
	}
	cmd := os.Args[1]
	switch cmd {
	case "help":
		usage()
	case "coalesce":
		if len(os.Args) < 3 {
			usage()
			os.Exit(1)
		}
		if err := runCoalesce(os.Args[2], os.Stdout); err != nil {
			fmt.Fprintf(os.Stderr, "coalesce error: %v\n", err)
			os.Exit(1)
		}
	case "codegen":
		if len(os.Args) < 3 {
			usage()
			os.Exit(1)
		}
		cfg, err := loadConfig(argOr(3, ""))
		if err != nil {
			fmt.Fprintf(os.Stderr, "config error: %v\n", err)
			os.Exit(1)
		}
		if err := runCodegen(os.Args[2], cfg, os.Stdout); err != nil {
			fmt.Fprintf(os.Stderr, "codegen error: %v\n", err)
			os.Exit(1)
		}
	case "compile":
		cfg, err := loadConfig(argOr(4, ""))
		if err != nil {
			fmt.Fprintf(os.Stderr, "config error: %v\n", err)
			os.Exit(1)
		}
		if err := CompileProject(argOr(2, "."), argOr(3, ""), cfg); err != nil {
			fmt.Fprintf(os.Stderr, "compile error: %v\n", err)
			os.Exit(1)
		}
	default:
		usage()
		os.Exit(1)
	}
}

func argOr(i int, def string) string {
	if len(os.Args) > i {
		return os.Args[i]
	}
	return def
}

func loadConfig(path string) (*config.ChangeDetectorGenConfig, error) {
	if path == "" {
		return config.NewChangeDetectorGenConfig(), nil
	}
	return config.ParseConfigFile(path)
}
