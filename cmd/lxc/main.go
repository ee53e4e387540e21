// Copyright 2024 The ProbeChain Authors
// This file is part of the ProbeChain.

// Command lxc is the scripting runtime's driver: it loads an
// already-compiled bytecode dump (compilation itself — lexing,
// parsing, codegen — is an external collaborator this binary never
// performs, per spec.md §1), optionally obfuscates or envelopes it,
// and runs it under the VM with debugger and traceback support wired
// in.
//
// Usage:
//
//	lxc [flags] <chunk.lxc>
//
// Flags:
//
//	-o <output>     Output file for -dump/-envelope (default: stdout)
//	-emit <stage>   Emit intermediate output: bytecode (default: bytecode)
//	-version        Print version and exit
//	-dump           Disassemble the chunk instead of running it
//	-envelope       Wrap the chunk's bytes in the sleep/wake AES-CTR envelope
//	-obfuscate <l>  Comma-separated passes: flatten,shuffle,bogus,encode
//	-break src:line Set a breakpoint before running (repeatable)
//	-trace          Print a stack traceback if the chunk errors
package main

import (
	"bufio"
	"flag"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/oxenfxc/lxclua/lang/auxbuf"
	"github.com/oxenfxc/lxclua/lang/debugctl"
	"github.com/oxenfxc/lxclua/lang/dump"
	"github.com/oxenfxc/lxclua/lang/proto"
	"github.com/oxenfxc/lxclua/lang/value"
	"github.com/oxenfxc/lxclua/lang/vm"
)

const version = "0.1.0"

type breakFlags []string

func (b *breakFlags) String() string { return strings.Join(*b, ",") }
func (b *breakFlags) Set(s string) error {
	*b = append(*b, s)
	return nil
}

func main() {
	var (
		output    = flag.String("o", "", "Output file (default: stdout)")
		emit      = flag.String("emit", "bytecode", "Emit stage: bytecode")
		ver       = flag.Bool("version", false, "Print version and exit")
		doDump    = flag.Bool("dump", false, "Disassemble the chunk instead of running it")
		envelope  = flag.Bool("envelope", false, "Wrap the chunk in the sleep/wake envelope")
		obfuscate = flag.String("obfuscate", "", "Comma-separated passes: flatten,shuffle,bogus,encode")
		trace     = flag.Bool("trace", false, "Print a stack traceback if the chunk errors")
		breaks    breakFlags
	)
	flag.Var(&breaks, "break", "Set a breakpoint at src:line (repeatable)")
	flag.Parse()

	if *ver {
		fmt.Printf("lxc %s\n", version)
		os.Exit(0)
	}

	if flag.NArg() < 1 {
		fmt.Fprintln(os.Stderr, "usage: lxc [flags] <chunk.lxc>")
		os.Exit(1)
	}

	if *emit != "bytecode" {
		fmt.Fprintf(os.Stderr, "emit stage %q not available: lxc only consumes already-assembled bytecode\n", *emit)
		os.Exit(1)
	}

	filename := flag.Arg(0)
	raw, err := readFileBuffered(filename)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}

	interner := value.NewInterner()

	if payload, ok, decErr := dump.DecodeEnvelope(string(raw)); decErr == nil && ok {
		raw = payload
	}

	p, err := dump.Undump(raw, interner)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}

	if *obfuscate != "" {
		applyObfuscation(p, *obfuscate)
	}

	switch {
	case *doDump:
		writeOutput(*output, []byte(disassembleProto(p)))
	case *envelope:
		body, err := dump.EncodeEnvelope(dump.Dump(p), time.Now().Unix())
		if err != nil {
			fmt.Fprintf(os.Stderr, "error: %v\n", err)
			os.Exit(1)
		}
		writeOutput(*output, []byte(body))
	default:
		run(p, interner, breaks, *trace)
	}
}

// readFileBuffered streams filename through auxbuf's small-buffer-optimized
// accumulator rather than slurping it with os.ReadFile directly, so chunk
// loading shares the same Buffer/Reader plumbing auxbuf.LoadFile uses
// internally. The envelope check below needs the raw bytes before handing
// them to dump.Undump, so this stops short of calling LoadFile itself.
func readFileBuffered(path string) ([]byte, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	r := bufio.NewReader(f)
	read := func() ([]byte, error) {
		chunk := make([]byte, 4096)
		n, err := r.Read(chunk)
		if n == 0 {
			if err == io.EOF {
				return nil, nil
			}
			return nil, err
		}
		if err != nil && err != io.EOF {
			return nil, err
		}
		return chunk[:n], nil
	}
	return auxbuf.ReadAll(read)
}

func disassembleProto(p *proto.Proto) string {
	var b strings.Builder
	fmt.Fprintf(&b, "; %s, %d instructions\n", p.Source, len(p.Code))
	for i, word := range p.Code {
		line := 0
		if i < len(p.LineInfo) {
			line = p.LineInfo[i]
		}
		fmt.Fprintf(&b, "%04d [%d]  %s\n", i, line, vm.Disassemble(vm.Instruction(word)))
	}
	return b.String()
}

func applyObfuscation(p *proto.Proto, spec string) {
	var passes []dump.Pass
	for _, name := range strings.Split(spec, ",") {
		switch strings.TrimSpace(name) {
		case "flatten":
			passes = append(passes, dump.FlattenControlFlow)
		case "shuffle":
			passes = append(passes, dump.ShuffleBasicBlocks)
		case "bogus":
			passes = append(passes, dump.InsertBogusBlocks)
		case "encode":
			passes = append(passes, dump.EncodeConstants)
		case "":
		default:
			fmt.Fprintf(os.Stderr, "unknown obfuscation pass: %s\n", name)
			os.Exit(1)
		}
	}
	dump.Apply(p, passes...)
}

func run(p *proto.Proto, interner *value.Interner, breaks breakFlags, trace bool) {
	v := vm.New()
	ctl := debugctl.Attach(v)
	ctl.SetOutput(func(event, source string, line int) {
		fmt.Fprintf(os.Stderr, "%s at %s:%d\n", event, source, line)
	})

	for _, spec := range breaks {
		src, line, err := parseBreakSpec(spec)
		if err != nil {
			fmt.Fprintf(os.Stderr, "invalid -break %q: %v\n", spec, err)
			os.Exit(1)
		}
		ctl.SetBreakpoint(debugctl.Breakpoint{Source: src, Line: line, Enabled: true})
	}

	cl := proto.NewLuaClosure(p)
	_, err := v.Call(cl, nil, -1)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		if trace {
			fmt.Fprintln(os.Stderr, debugctl.Traceback(v.MainThread(), ""))
		}
		os.Exit(1)
	}
}

func parseBreakSpec(spec string) (string, int, error) {
	idx := strings.LastIndex(spec, ":")
	if idx < 0 {
		return "", 0, fmt.Errorf("expected src:line")
	}
	line, err := strconv.Atoi(spec[idx+1:])
	if err != nil {
		return "", 0, fmt.Errorf("bad line number: %w", err)
	}
	return spec[:idx], line, nil
}

func writeOutput(path string, data []byte) {
	if path == "" {
		os.Stdout.Write(data)
		if len(data) == 0 || data[len(data)-1] != '\n' {
			fmt.Fprintln(os.Stdout)
		}
		return
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}
