package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"
	"sync"

	"github.com/pkg/errors"

	"github.com/srediag/plugin-shmem/api"
	"github.com/srediag/plugin-shmem/plugin"
)

// Script runs message scripts against a Class. Values emitted by objects are
// printed to the output as "NAME out V" and "NAME info V".
type Script struct {
	class  *plugin.Class
	tables *plugin.TableRegistry
	disp   *plugin.Dispatcher

	mu  sync.Mutex
	out io.Writer
}

// NewScript returns a Script writing to out.
func NewScript(class *plugin.Class, tables *plugin.TableRegistry, disp *plugin.Dispatcher, out io.Writer) *Script {
	return &Script{class: class, tables: tables, disp: disp, out: out}
}

func (s *Script) printf(format string, a ...interface{}) {
	s.mu.Lock()
	defer s.mu.Unlock()
	fmt.Fprintf(s.out, format, a...)
}

func (s *Script) outlet(name, kind string) api.Outlet {
	return api.OutletFunc(func(v float32) {
		s.printf("%s %s %s\n", name, kind, formatFloat(v))
	})
}

func formatFloat(v float32) string {
	return strconv.FormatFloat(float64(v), 'g', -1, 32)
}

// Run executes r line by line and waits for every posted message. It stops
// at the first malformed line.
func (s *Script) Run(ctx context.Context, r io.Reader) error {
	sc := bufio.NewScanner(r)
	line := 0
	for sc.Scan() {
		line++
		text := strings.TrimSpace(sc.Text())
		if text == "" || strings.HasPrefix(text, "#") {
			continue
		}
		if err := s.exec(ctx, plugin.ParseAtoms(text)); err != nil {
			s.disp.Wait()
			return errors.Wrapf(err, "line %d", line)
		}
	}
	s.disp.Wait()
	return sc.Err()
}

func (s *Script) exec(ctx context.Context, atoms []plugin.Atom) error {
	head := atoms[0]
	if head.Type != plugin.AtomSymbol {
		return errors.Errorf("expected a command, got %s", head)
	}
	args := atoms[1:]
	switch head.Symbol {
	case "table":
		if len(args) != 2 || args[0].Type != plugin.AtomSymbol || args[1].Type != plugin.AtomFloat {
			return errors.New("usage: table NAME SIZE")
		}
		s.disp.Wait()
		s.tables.Define(args[0].Symbol, int(args[1].Float))
	case "fill":
		if len(args) < 1 || args[0].Type != plugin.AtomSymbol {
			return errors.New("usage: fill NAME V...")
		}
		t, err := s.tables.Lookup(args[0].Symbol)
		if err != nil {
			return err
		}
		s.disp.Wait()
		vec := t.Floats()
		for i, a := range args[1:] {
			if i >= len(vec) {
				break
			}
			vec[i] = float32(a.Float)
		}
	case "print":
		if len(args) != 1 || args[0].Type != plugin.AtomSymbol {
			return errors.New("usage: print NAME")
		}
		t, err := s.tables.Lookup(args[0].Symbol)
		if err != nil {
			return err
		}
		s.disp.Wait()
		parts := make([]string, len(t.Floats()))
		for i, v := range t.Floats() {
			parts[i] = formatFloat(v)
		}
		s.printf("%s %s\n", t.Name(), strings.Join(parts, " "))
	case "obj":
		if len(args) < 1 || args[0].Type != plugin.AtomSymbol {
			return errors.New("usage: obj NAME [ID SIZE]")
		}
		name := args[0].Symbol
		_, err := s.class.New(ctx, name, s.outlet(name, "out"), s.outlet(name, "info"), args[1:])
		return err
	case "free":
		if len(args) != 1 || args[0].Type != plugin.AtomSymbol {
			return errors.New("usage: free NAME")
		}
		o, ok := s.class.Object(args[0].Symbol)
		if !ok {
			return errors.Errorf("%s: no such object", args[0].Symbol)
		}
		s.disp.Wait()
		s.disp.Forget(o)
		o.Free()
	case "wait":
		s.disp.Wait()
	default:
		o, ok := s.class.Object(head.Symbol)
		if !ok {
			return errors.Errorf("%s: no such object", head.Symbol)
		}
		if len(args) == 0 || args[0].Type != plugin.AtomSymbol {
			return errors.Errorf("%s: expected a selector", head.Symbol)
		}
		return s.disp.Post(plugin.Message{Object: o, Selector: args[0].Symbol, Args: args[1:]})
	}
	return nil
}
