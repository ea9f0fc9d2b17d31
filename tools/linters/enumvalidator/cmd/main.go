package main

import (
	"golang.org/x/tools/go/analysis/singlechecker"

	"supportlens.app/triage/tools/linters/enumvalidator"
)

func main() {
	singlechecker.Main(enumvalidator.Analyzer)
}
