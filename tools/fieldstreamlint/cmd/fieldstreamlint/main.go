package main

import (
	"golang.org/x/tools/go/analysis/singlechecker"

	"github.com/deepankarm/fieldstream/tools/fieldstreamlint"
)

func main() {
	singlechecker.Main(fieldstreamlint.Analyzer)
}
