// Package adapter provides the ingestion and persistence edges of the
// engine: loading program definitions from disk, lowering restricted Go
// sources into the IR and storing mutation run reports.
package adapter

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"
	m "overdub.dev/pkg/overdub/internal/model"
)

// ProgramStore loads program units from disk. YAML files hold the IR
// directly; Go files are lowered through the Go front end.
type ProgramStore interface {
	Load(ctx context.Context, path m.Path) ([]m.Unit, error)
	Scan(ctx context.Context, paths []m.Path, exclude ...string) ([]m.Unit, error)
}

type localProgramStore struct {
	gofront GoFrontAdapter
}

// NewLocalProgramStore creates a ProgramStore reading the local
// filesystem, delegating .go files to gofront.
func NewLocalProgramStore(gofront GoFrontAdapter) ProgramStore {
	return &localProgramStore{gofront: gofront}
}

// Load reads one program file. A YAML document yields exactly one unit;
// a Go file yields one unit per lowered function.
func (s *localProgramStore) Load(ctx context.Context, path m.Path) ([]m.Unit, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	switch filepath.Ext(string(path)) {
	case ".yaml", ".yml":
		unit, err := s.loadYAML(path)
		if err != nil {
			return nil, err
		}

		return []m.Unit{unit}, nil
	case ".go":
		if s.gofront == nil {
			return nil, fmt.Errorf("%s: no Go front end configured", path)
		}

		return s.gofront.LowerFile(ctx, path)
	}

	return nil, fmt.Errorf("%s: unsupported program file extension", path)
}

// Scan walks the given paths and loads every program file found,
// skipping paths matching any exclude regex. Results are ordered by
// source path for deterministic output.
func (s *localProgramStore) Scan(ctx context.Context, paths []m.Path, exclude ...string) ([]m.Unit, error) {
	patterns, err := compilePatterns(exclude)
	if err != nil {
		return nil, err
	}

	if len(paths) == 0 {
		paths = []m.Path{"."}
	}

	var units []m.Unit

	for _, root := range paths {
		found, err := s.scanPath(ctx, root, patterns)
		if err != nil {
			return nil, err
		}

		units = append(units, found...)
	}

	sort.SliceStable(units, func(i, j int) bool {
		if units[i].Program.Source != units[j].Program.Source {
			return units[i].Program.Source < units[j].Program.Source
		}

		return units[i].Program.Name < units[j].Program.Name
	})

	return units, nil
}

func (s *localProgramStore) scanPath(ctx context.Context, root m.Path, exclude []*regexp.Regexp) ([]m.Unit, error) {
	info, err := os.Stat(string(root))
	if err != nil {
		return nil, fmt.Errorf("scan %s: %w", root, err)
	}

	if !info.IsDir() {
		if excluded(string(root), exclude) {
			return nil, nil
		}

		return s.Load(ctx, root)
	}

	var units []m.Unit

	walkErr := filepath.Walk(string(root), func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}

		if info.IsDir() || !isProgramFile(path) || excluded(path, exclude) {
			return nil
		}

		loaded, err := s.Load(ctx, m.Path(path))
		if err != nil {
			return err
		}

		units = append(units, loaded...)

		return nil
	})
	if walkErr != nil {
		return nil, walkErr
	}

	return units, nil
}

func isProgramFile(path string) bool {
	switch filepath.Ext(path) {
	case ".yaml", ".yml", ".go":
		return !strings.HasSuffix(path, "_test.go")
	}

	return false
}

func excluded(path string, patterns []*regexp.Regexp) bool {
	for _, p := range patterns {
		if p.MatchString(path) {
			return true
		}
	}

	return false
}

func compilePatterns(exclude []string) ([]*regexp.Regexp, error) {
	patterns := make([]*regexp.Regexp, 0, len(exclude))

	for _, raw := range exclude {
		p, err := regexp.Compile(raw)
		if err != nil {
			return nil, fmt.Errorf("invalid exclude pattern %q: %w", raw, err)
		}

		patterns = append(patterns, p)
	}

	return patterns, nil
}

// YAML document shape. Every statement node must set exactly one key.
type programDoc struct {
	Name   string      `yaml:"name"`
	Params []string    `yaml:"params"`
	Blocks [][]stmtDoc `yaml:"blocks"`
	Tests  []testDoc   `yaml:"tests"`
}

type stmtDoc struct {
	Call   *callDoc   `yaml:"call"`
	Assign *assignDoc `yaml:"assign"`
	Branch *branchDoc `yaml:"branch"`
	Jump   *int      `yaml:"jump"`
	Return yaml.Node `yaml:"return"`
}

type callDoc struct {
	Dest   string      `yaml:"dest"`
	Callee string      `yaml:"callee"`
	Args   []yaml.Node `yaml:"args"`
}

type assignDoc struct {
	Dest string    `yaml:"dest"`
	Src  yaml.Node `yaml:"src"`
}

type branchDoc struct {
	Cond yaml.Node `yaml:"cond"`
	Then int       `yaml:"then"`
	Else int       `yaml:"else"`
}

type testDoc struct {
	Args []yaml.Node `yaml:"args"`
	Want yaml.Node   `yaml:"want"`
}

func (s *localProgramStore) loadYAML(path m.Path) (m.Unit, error) {
	raw, err := os.ReadFile(string(path))
	if err != nil {
		return m.Unit{}, fmt.Errorf("read %s: %w", path, err)
	}

	var doc programDoc
	if err := yaml.Unmarshal(raw, &doc); err != nil {
		return m.Unit{}, fmt.Errorf("parse %s: %w", path, err)
	}

	unit, err := buildUnit(doc, path)
	if err != nil {
		return m.Unit{}, fmt.Errorf("%s: %w", path, err)
	}

	return unit, nil
}

func buildUnit(doc programDoc, source m.Path) (m.Unit, error) {
	if doc.Name == "" {
		return m.Unit{}, fmt.Errorf("program has no name")
	}

	program := &m.Program{
		Name:   doc.Name,
		Params: doc.Params,
		Source: source,
	}

	for bi, stmts := range doc.Blocks {
		block := &m.Block{}

		for si, stmt := range stmts {
			built, err := buildStatement(stmt)
			if err != nil {
				return m.Unit{}, fmt.Errorf("block %d statement %d: %w", bi+1, si+1, err)
			}

			block.Stmts = append(block.Stmts, built)
		}

		program.Blocks = append(program.Blocks, block)
	}

	if err := checkTargets(program); err != nil {
		return m.Unit{}, err
	}

	tests, err := buildTests(doc.Tests)
	if err != nil {
		return m.Unit{}, err
	}

	return m.Unit{Program: program, Tests: tests}, nil
}

// checkTargets rejects branch and jump targets outside the program's
// block range, so a malformed file fails at load rather than at run.
func checkTargets(p *m.Program) error {
	n := len(p.Blocks)

	for bi, block := range p.Blocks {
		for _, stmt := range block.Stmts {
			switch s := stmt.(type) {
			case *m.Branch:
				if s.Then < 1 || s.Then > n || s.Else < 1 || s.Else > n {
					return fmt.Errorf("block %d: branch target out of range [1..%d]", bi+1, n)
				}
			case *m.Jump:
				if s.Target < 1 || s.Target > n {
					return fmt.Errorf("block %d: jump target out of range [1..%d]", bi+1, n)
				}
			}
		}
	}

	return nil
}

func buildStatement(doc stmtDoc) (m.Statement, error) {
	set := 0

	for _, present := range []bool{doc.Call != nil, doc.Assign != nil, doc.Branch != nil, doc.Jump != nil, doc.Return.Kind != 0} {
		if present {
			set++
		}
	}

	if set != 1 {
		return nil, fmt.Errorf("statement must set exactly one of call/assign/branch/jump/return, got %d", set)
	}

	switch {
	case doc.Call != nil:
		args, err := decodeOperands(doc.Call.Args)
		if err != nil {
			return nil, err
		}

		return &m.Call{Dest: doc.Call.Dest, Callee: doc.Call.Callee, Args: args}, nil
	case doc.Assign != nil:
		src, err := decodeOperand(&doc.Assign.Src)
		if err != nil {
			return nil, err
		}

		return &m.Assign{Dest: doc.Assign.Dest, Src: src}, nil
	case doc.Branch != nil:
		cond, err := decodeOperand(&doc.Branch.Cond)
		if err != nil {
			return nil, err
		}

		return &m.Branch{Cond: cond, Then: doc.Branch.Then, Else: doc.Branch.Else}, nil
	case doc.Jump != nil:
		return &m.Jump{Target: *doc.Jump}, nil
	default:
		src, err := decodeOperand(&doc.Return)
		if err != nil {
			return nil, err
		}

		return &m.Return{Src: src}, nil
	}
}

func buildTests(docs []testDoc) ([]m.TestCase, error) {
	var tests []m.TestCase

	for i, doc := range docs {
		args := make([]m.Value, 0, len(doc.Args))

		for _, node := range doc.Args {
			node := node

			v, err := decodeValue(&node)
			if err != nil {
				return nil, fmt.Errorf("test %d: %w", i+1, err)
			}

			args = append(args, v)
		}

		want, err := decodeValue(&doc.Want)
		if err != nil {
			return nil, fmt.Errorf("test %d: %w", i+1, err)
		}

		tests = append(tests, m.TestCase{Args: args, Want: want})
	}

	return tests, nil
}

func decodeOperands(nodes []yaml.Node) ([]m.Operand, error) {
	operands := make([]m.Operand, 0, len(nodes))

	for _, node := range nodes {
		node := node

		o, err := decodeOperand(&node)
		if err != nil {
			return nil, err
		}

		operands = append(operands, o)
	}

	return operands, nil
}

// decodeOperand maps a YAML scalar to an operand: ints and bools are
// literals, plain strings are variable references.
func decodeOperand(node *yaml.Node) (m.Operand, error) {
	if node == nil || node.Kind == 0 {
		return m.Operand{}, fmt.Errorf("missing operand")
	}

	if node.Kind != yaml.ScalarNode {
		return m.Operand{}, fmt.Errorf("operand must be a scalar, got %v", node.Kind)
	}

	switch node.Tag {
	case "!!int":
		var n int64
		if err := node.Decode(&n); err != nil {
			return m.Operand{}, err
		}

		return m.Lit(n), nil
	case "!!bool":
		var b bool
		if err := node.Decode(&b); err != nil {
			return m.Operand{}, err
		}

		return m.Lit(b), nil
	case "!!str":
		if node.Value == "" {
			return m.Operand{}, fmt.Errorf("empty variable reference")
		}

		return m.Ref(node.Value), nil
	}

	return m.Operand{}, fmt.Errorf("operand tag %s not supported", node.Tag)
}

// decodeValue maps a YAML scalar to a runtime value (int64 or bool).
func decodeValue(node *yaml.Node) (m.Value, error) {
	if node == nil || node.Kind == 0 {
		return nil, fmt.Errorf("missing value")
	}

	switch node.Tag {
	case "!!int":
		var n int64
		if err := node.Decode(&n); err != nil {
			return nil, err
		}

		return n, nil
	case "!!bool":
		var b bool
		if err := node.Decode(&b); err != nil {
			return nil, err
		}

		return b, nil
	}

	return nil, fmt.Errorf("value tag %s not supported", node.Tag)
}
