package main

import (
	"flag"
	"fmt"
	"io"
	"log"
	"os"

	"github.com/chzyer/readline"
	"github.com/jcorbin/rplcore"
	"github.com/jcorbin/rplcore/internal/flushio"
	"github.com/jcorbin/rplcore/internal/runeio"
)

// rplsh is a smoke-test REPL around rplcore, not a calculator product:
// it exists to drive the Runtime's host API interactively while
// building it, the same way gothird's main.go drives the FIRST/THIRD
// VM over stdin/stdout.
func main() {
	var trace bool
	var capacity uint
	var historyFile string
	var scriptFile string
	var transcriptFile string
	flag.BoolVar(&trace, "trace", false, "enable trace logging")
	flag.UintVar(&capacity, "capacity", 0, "bound the arena to this many bytes (0 = unbounded)")
	flag.StringVar(&historyFile, "history", ".rplsh-history", "readline history file")
	flag.StringVar(&scriptFile, "script", "", "run lines from this file non-interactively instead of prompting")
	flag.StringVar(&transcriptFile, "transcript", "", "also copy all output to this file")
	flag.Parse()

	var opts []rplcore.Option
	if trace {
		opts = append(opts, rplcore.WithLogf(log.Printf))
	}
	if capacity != 0 {
		opts = append(opts, rplcore.WithCapacity(capacity))
	}
	rt := rplcore.New(opts...)

	out := flushio.NewWriteFlusher(os.Stdout)
	if transcriptFile != "" {
		f, err := os.Create(transcriptFile)
		if err != nil {
			fmt.Fprintf(os.Stderr, "rplsh: %v\n", err)
			os.Exit(1)
		}
		defer f.Close()
		out = flushio.WriteFlushers(out, flushio.NewWriteFlusher(f))
	}
	defer out.Flush()

	if scriptFile != "" {
		f, err := os.Open(scriptFile)
		if err != nil {
			fmt.Fprintf(os.Stderr, "rplsh: %v\n", err)
			os.Exit(1)
		}
		defer f.Close()
		runScript(rt, out, runeio.NewReader(f))
		return
	}

	l, err := readline.NewEx(&readline.Config{
		Prompt:            "> ",
		HistoryFile:       historyFile,
		InterruptPrompt:   "^C",
		EOFPrompt:         "bye",
		HistorySearchFold: true,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "rplsh: %v\n", err)
		os.Exit(1)
	}
	defer l.Close()
	l.CaptureExitSignal()

	for {
		line, err := l.Readline()
		if err == readline.ErrInterrupt {
			continue
		}
		if err == io.EOF {
			break
		}
		if err != nil {
			fmt.Fprintf(os.Stderr, "rplsh: %v\n", err)
			break
		}
		if line == "" {
			continue
		}
		runLine(rt, out, line)
	}
}

// runScript feeds r one line at a time to runLine, the non-interactive
// counterpart to the readline loop above; it reads by rune rather than
// bufio.Scanner's byte-oriented line splitting since r is a runeio.Reader
// (a plain os.File wrapped by runeio.NewReader has no rune-reading method
// of its own).
func runScript(rt *rplcore.Runtime, out flushio.WriteFlusher, r runeio.Reader) {
	var line []rune
	flushLine := func() {
		if len(line) > 0 {
			runLine(rt, out, string(line))
			line = line[:0]
		}
	}
	for {
		ru, _, err := r.ReadRune()
		if err != nil {
			flushLine()
			if err != io.EOF {
				fmt.Fprintf(os.Stderr, "rplsh: %v\n", err)
			}
			return
		}
		if ru == '\n' {
			flushLine()
			continue
		}
		line = append(line, ru)
	}
}

// runLine pushes and immediately evaluates one line of input, then prints
// the resulting top of stack, mirroring how a physical calculator's
// entry line behaves: type a token, it lands on the stack, ENTER may
// also trigger evaluation if the token is an operator symbol.
func runLine(rt *rplcore.Runtime, out flushio.WriteFlusher, line string) {
	if err := rt.PushText(line); err != nil {
		runeio.WriteANSIString(out, fmt.Sprintf("parse error: %v\n", err))
		return
	}
	if err := rt.Eval(); err != nil {
		runeio.WriteANSIString(out, fmt.Sprintf("error: %v\n", err))
		return
	}
	s, err := rt.RenderTop()
	if err != nil {
		runeio.WriteANSIString(out, fmt.Sprintf("error: %v\n", err))
		return
	}
	runeio.WriteANSIString(out, fmt.Sprintf("%d: %s\n", rt.Depth(), s))
}
