// Package sdc is the embedding API of the go-sdc semantic front-end.
// It wraps the semantic pass, the constant folder and the default data
// layout behind an Engine with functional options.
package sdc

import (
	"go.uber.org/multierr"

	"github.com/cwbudde/go-sdc/internal/ast"
	"github.com/cwbudde/go-sdc/internal/evaluator"
	"github.com/cwbudde/go-sdc/internal/layout"
	"github.com/cwbudde/go-sdc/internal/semantic"
)

// Engine drives semantic analysis over a set of source files.
type Engine struct {
	pass *semantic.SemanticPass
}

// Option configures an Engine.
type Option func(*config) error

type config struct {
	includePaths []string
	versions     []string
	parser       semantic.Parser
	mixinParser  semantic.MixinParser
}

// WithIncludePath adds a directory searched for imported modules.
func WithIncludePath(paths ...string) Option {
	return func(c *config) error {
		c.includePaths = append(c.includePaths, paths...)
		return nil
	}
}

// WithVersions enables additional version identifiers.
func WithVersions(versions ...string) Option {
	return func(c *config) error {
		c.versions = append(c.versions, versions...)
		return nil
	}
}

// WithParser registers the parser collaborator used to read source files.
func WithParser(p semantic.Parser) Option {
	return func(c *config) error {
		c.parser = p
		return nil
	}
}

// WithMixinParser registers the parser used to expand string mixins.
func WithMixinParser(p semantic.MixinParser) Option {
	return func(c *config) error {
		c.mixinParser = p
		return nil
	}
}

// WithConfig applies a loaded configuration file.
func WithConfig(cfg *Config) Option {
	return func(c *config) error {
		c.includePaths = append(c.includePaths, cfg.IncludePaths...)
		c.versions = append(c.versions, cfg.Versions...)
		return nil
	}
}

// New creates an engine.
func New(opts ...Option) (*Engine, error) {
	var cfg config
	var errs error
	for _, opt := range opts {
		errs = multierr.Append(errs, opt(&cfg))
	}
	if errs != nil {
		return nil, errs
	}

	pass := semantic.NewPass(
		semantic.NewContext(),
		evaluator.Builder,
		layout.Builder,
		cfg.includePaths,
	)
	for _, v := range cfg.versions {
		pass.Versions[v] = true
	}
	if cfg.parser != nil {
		pass.SetParser(cfg.parser)
	}
	if cfg.mixinParser != nil {
		pass.SetMixinParser(cfg.mixinParser)
	}

	return &Engine{pass: pass}, nil
}

// Pass exposes the underlying semantic pass.
func (e *Engine) Pass() *semantic.SemanticPass {
	return e.pass
}

// Add begins analysis of a source file.
func (e *Engine) Add(filename string, packages []string) (*semantic.Module, error) {
	return e.pass.Add(filename, packages)
}

// AddModule begins analysis of an already parsed module.
func (e *Engine) AddModule(m *ast.Module) (*semantic.Module, error) {
	return e.pass.AddModule(m)
}

// Compile adds every file and drives all of them to completion. Per-file
// registration errors are combined; the first analysis error aborts.
func (e *Engine) Compile(filenames ...string) error {
	var errs error
	for _, f := range filenames {
		if _, err := e.pass.Add(f, nil); err != nil {
			errs = multierr.Append(errs, err)
		}
	}
	if errs != nil {
		return errs
	}
	return e.pass.Terminate()
}

// Terminate drives all scheduled symbols to completion.
func (e *Engine) Terminate() error {
	return e.pass.Terminate()
}

// BuildMain wraps the unique top-level main in the _Dmain bootstrap.
func (e *Engine) BuildMain() (*semantic.Function, error) {
	return e.pass.BuildMain()
}
