package main

import (
	"encoding/hex"
	"flag"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"go.uber.org/zap"
	"golang.org/x/term"

	"github.com/wippyai/bitreg/bank"
	"github.com/wippyai/bitreg/memory"
	"github.com/wippyai/bitreg/regdef"
	"github.com/wippyai/bitreg/register"
	"github.com/wippyai/bitreg/snapshot"
)

// assignments collects repeated -set flags.
type assignments []string

func (a *assignments) String() string { return strings.Join(*a, ",") }

func (a *assignments) Set(v string) error {
	*a = append(*a, v)
	return nil
}

type options struct {
	defFile  string
	regName  string
	data     string
	image    string
	snapshot string
	restore  string
	sets     assignments
	strict   bool
	list     bool
}

func main() {
	var (
		opts        options
		interactive = flag.Bool("i", false, "Interactive mode with TUI")
		verbose     = flag.Bool("v", false, "Debug logging")
	)
	flag.StringVar(&opts.defFile, "def", "", "Path to YAML register definitions")
	flag.StringVar(&opts.regName, "reg", "", "Register to show or edit")
	flag.StringVar(&opts.data, "data", "", "Initial register bytes as hex")
	flag.StringVar(&opts.image, "image", "", "Memory image file the registers are mapped onto (updated in place)")
	flag.Var(&opts.sets, "set", "Field assignment name=value (repeatable)")
	flag.BoolVar(&opts.strict, "strict", false, "Reject values wider than their field instead of truncating")
	flag.BoolVar(&opts.list, "list", false, "List registers and exit")
	flag.StringVar(&opts.snapshot, "snapshot", "", "Write a CBOR snapshot of the result to this file")
	flag.StringVar(&opts.restore, "restore", "", "Start from a CBOR snapshot file")
	flag.Parse()

	if opts.defFile == "" || (opts.regName == "" && !opts.list) {
		fmt.Fprintln(os.Stderr, "Usage: regctl -def <regs.yaml> -list")
		fmt.Fprintln(os.Stderr, "       regctl -def <regs.yaml> -reg name [-data hex | -restore in.cbor | -image mem.bin] [-set f=v ...] [-snapshot out.cbor]")
		fmt.Fprintln(os.Stderr, "       regctl -def <regs.yaml> -reg name -i  (interactive mode)")
		os.Exit(1)
	}

	if *verbose {
		log, err := zap.NewDevelopment()
		if err == nil {
			regdef.SetLogger(log)
			bank.SetLogger(log)
			defer log.Sync()
		}
	}

	if *interactive {
		if !term.IsTerminal(int(os.Stdin.Fd())) || !term.IsTerminal(int(os.Stdout.Fd())) {
			fmt.Fprintln(os.Stderr, "Error: interactive mode needs a terminal")
			os.Exit(1)
		}
		r, err := load(opts)
		if err == nil {
			err = runInteractive(opts.defFile, r)
		}
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		return
	}

	if err := run(os.Stdout, opts); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run(w io.Writer, opts options) error {
	if opts.list {
		return list(w, opts.defFile)
	}

	if opts.image != "" {
		return runImage(w, opts)
	}

	r, err := load(opts)
	if err != nil {
		return err
	}
	for _, s := range opts.sets {
		if err := assign(r, s, opts.strict); err != nil {
			return err
		}
	}
	printRegister(w, r)

	if opts.snapshot != "" {
		return writeSnapshot(opts.snapshot, r)
	}
	return nil
}

func list(w io.Writer, defFile string) error {
	f, err := regdef.Load(defFile)
	if err != nil {
		return err
	}
	for _, def := range f.Registers {
		l, err := def.Layout()
		if err != nil {
			return err
		}
		fmt.Fprintf(w, "%-16s offset=%#06x size=%d fields=%d fingerprint=%016x\n",
			l.Name(), def.Offset, l.Size(), len(l.Fields()), l.Fingerprint())
		for _, o := range l.Overlaps() {
			fmt.Fprintf(w, "  overlap: %s, %s\n", o.A, o.B)
		}
	}
	return nil
}

// load builds the starting register from -restore, -data, or zeros.
func load(opts options) (*register.Register, error) {
	f, err := regdef.Load(opts.defFile)
	if err != nil {
		return nil, err
	}
	layout, err := f.Layout(opts.regName)
	if err != nil {
		return nil, err
	}

	switch {
	case opts.restore != "":
		in, err := os.Open(opts.restore)
		if err != nil {
			return nil, fmt.Errorf("open snapshot: %w", err)
		}
		defer in.Close()
		return snapshot.Read(in, layout)

	case opts.data != "":
		b, err := parseHex(opts.data)
		if err != nil {
			return nil, err
		}
		return layout.FromBytes(b)
	}
	return layout.New(), nil
}

// runImage maps every register onto the image file, applies the assignments
// to the selected one and writes the image back when anything changed.
func runImage(w io.Writer, opts options) error {
	f, err := regdef.Load(opts.defFile)
	if err != nil {
		return err
	}
	data, err := os.ReadFile(opts.image)
	if err != nil {
		return fmt.Errorf("read image: %w", err)
	}

	mem := memory.FromBytes(data)
	b := bank.New(mem)
	if err := f.MapInto(b); err != nil {
		return err
	}

	var result *register.Register
	err = b.Update(opts.regName, func(r *register.Register) error {
		for _, s := range opts.sets {
			if err := assign(r, s, opts.strict); err != nil {
				return err
			}
		}
		result = r
		return nil
	})
	if err != nil {
		return err
	}
	printRegister(w, result)

	if len(opts.sets) > 0 {
		if err := os.WriteFile(opts.image, mem.Bytes(), 0o644); err != nil {
			return fmt.Errorf("write image: %w", err)
		}
	}
	if opts.snapshot != "" {
		return writeSnapshot(opts.snapshot, result)
	}
	return nil
}

func writeSnapshot(path string, r *register.Register) error {
	out, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create snapshot: %w", err)
	}
	if err := snapshot.Write(out, r); err != nil {
		out.Close()
		return err
	}
	return out.Close()
}

// assign applies one name=value pair.
func assign(r *register.Register, s string, strict bool) error {
	name, value, ok := strings.Cut(s, "=")
	if !ok {
		return fmt.Errorf("assignment %q: expected name=value", s)
	}
	return setField(r, strings.TrimSpace(name), strings.TrimSpace(value), strict)
}

// setField parses value for the field type: true/false for bool fields,
// integers with an optional 0x/0o/0b prefix otherwise.
func setField(r *register.Register, name, value string, strict bool) error {
	d, ok := r.Layout().Field(name)
	if !ok {
		_, err := r.Get(name)
		return err
	}
	if d.Type.Kind == register.KindBool {
		v, err := strconv.ParseBool(value)
		if err != nil {
			return fmt.Errorf("field %s: %w", name, err)
		}
		return r.SetBool(name, v)
	}

	v, err := strconv.ParseUint(strings.ReplaceAll(value, "_", ""), 0, 64)
	if err != nil {
		return fmt.Errorf("field %s: %w", name, err)
	}
	if strict {
		return r.SetUintExact(name, v)
	}
	return r.SetUint(name, v)
}

func parseHex(s string) ([]byte, error) {
	s = strings.TrimPrefix(strings.TrimPrefix(s, "0x"), "0X")
	s = strings.NewReplacer(" ", "", ":", "", "_", "").Replace(s)
	b, err := hex.DecodeString(s)
	if err != nil {
		return nil, fmt.Errorf("parse data: %w", err)
	}
	return b, nil
}

func printRegister(w io.Writer, r *register.Register) {
	l := r.Layout()
	fmt.Fprintf(w, "%s (%d bytes): %s\n", l.Name(), l.Size(), hex.EncodeToString(r.Bytes()))
	for _, v := range r.Values() {
		fmt.Fprintf(w, "  %-16s %-10s %-6s %s\n", v.Name, v.Span, v.Type, formatValue(v.Value))
	}
}

func formatValue(v any) string {
	if u, ok := v.(uint64); ok {
		return fmt.Sprintf("%d (%#x)", u, u)
	}
	return fmt.Sprint(v)
}
