package main

import (
	"os"
	"time"

	"github.com/mattn/go-isatty"
)

const timePrecision = time.Millisecond

func stdoutIsTerminal() bool {
	return isatty.IsTerminal(os.Stdout.Fd()) || isatty.IsCygwinTerminal(os.Stdout.Fd())
}
