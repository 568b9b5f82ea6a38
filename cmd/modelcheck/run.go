package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"gopkg.in/yaml.v3"

	"github.com/dmitrymomot/modelcheck/internal/server"
	"github.com/dmitrymomot/modelcheck/pkg/config"
	"github.com/dmitrymomot/modelcheck/pkg/httpserver"
	"github.com/dmitrymomot/modelcheck/pkg/i18n"
	"github.com/dmitrymomot/modelcheck/pkg/logger"
	"github.com/dmitrymomot/modelcheck/pkg/schema"
	"github.com/dmitrymomot/modelcheck/pkg/schemafile"
)

// Exit codes.
const (
	exitOK      = 0
	exitInvalid = 1
	exitError   = 2
)

const usage = `usage: modelcheck <command> [flags]

commands:
  validate   validate input documents against a schema
  describe   print schema descriptions
  serve      serve the validation API over HTTP
`

var errUsage = errors.New("usage error")

type app struct {
	cfg    Config
	log    *slog.Logger
	stdin  io.Reader
	stdout io.Writer
	stderr io.Writer
}

func run(ctx context.Context, args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	if len(args) == 0 {
		fmt.Fprint(stderr, usage)
		return exitError
	}

	var cfg Config
	if err := config.Load(&cfg); err != nil {
		fmt.Fprintln(stderr, err)
		return exitError
	}
	log, err := newLogger(cfg, stderr)
	if err != nil {
		fmt.Fprintln(stderr, err)
		return exitError
	}
	a := &app{cfg: cfg, log: log, stdin: stdin, stdout: stdout, stderr: stderr}

	var code int
	switch args[0] {
	case "validate":
		code, err = a.validate(args[1:])
	case "describe":
		code, err = a.describe(args[1:])
	case "serve":
		code, err = a.serve(ctx, args[1:])
	case "help", "-h", "--help":
		fmt.Fprint(stdout, usage)
		return exitOK
	default:
		fmt.Fprintf(stderr, "unknown command %q\n\n%s", args[0], usage)
		return exitError
	}
	if err != nil {
		if !errors.Is(err, flag.ErrHelp) {
			fmt.Fprintln(stderr, "modelcheck:", err)
		}
		return exitError
	}
	return code
}

// newLogger builds the process logger. Invalid LOG_LEVEL or LOG_FORMAT
// values make the logger options panic; that is reported as an error.
func newLogger(cfg Config, out io.Writer) (log *slog.Logger, err error) {
	opts := []logger.Option{
		logger.WithEnvironment(cfg.AppEnv, "modelcheck"),
		logger.WithOutput(out),
		logger.WithContextValue("request_id", middleware.RequestIDKey),
	}
	if cfg.LogLevel != "" {
		opts = append(opts, logger.WithLevelName(cfg.LogLevel))
	}
	if cfg.LogFormat != "" {
		opts = append(opts, logger.WithFormat(logger.Format(strings.ToLower(cfg.LogFormat))))
	}

	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("logger config: %v", r)
		}
	}()
	return logger.New(opts...), nil
}

// loadRegistry reads a schema document and registers all of its schemas.
func (a *app) loadRegistry(path string) (*schema.Registry, error) {
	if path == "" {
		return nil, fmt.Errorf("%w: no schema document; set -schemas or MODELCHECK_SCHEMAS", errUsage)
	}
	doc, err := schemafile.LoadFile(path)
	if err != nil {
		return nil, err
	}
	reg := schema.NewRegistry(schema.WithLogger(a.log))
	if _, err := doc.Register(reg); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return reg, nil
}

func (a *app) flags(name string) *flag.FlagSet {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(a.stderr)
	return fs
}

// result is what validate prints for each input document.
type result struct {
	Input  string          `json:"input" yaml:"input"`
	Valid  bool            `json:"valid" yaml:"valid"`
	Model  *schema.Model   `json:"model,omitempty" yaml:"-"`
	Data   map[string]any  `json:"-" yaml:"model,omitempty"`
	Errors []schema.Record `json:"errors,omitempty" yaml:"errors,omitempty"`
}

func (a *app) validate(args []string) (int, error) {
	fs := a.flags("validate")
	schemas := fs.String("schemas", a.cfg.Schemas, "schema document (YAML or JSON)")
	name := fs.String("schema", "", "schema to validate against")
	output := fs.String("o", "json", "output format: json or yaml")
	lang := fs.String("lang", "", "translate messages (e.g. de); empty keeps the built-in text")
	if err := fs.Parse(args); err != nil {
		return exitError, err
	}
	if *name == "" {
		return exitError, fmt.Errorf("%w: -schema is required", errUsage)
	}
	if *output != "json" && *output != "yaml" {
		return exitError, fmt.Errorf("%w: unknown output format %q", errUsage, *output)
	}

	reg, err := a.loadRegistry(*schemas)
	if err != nil {
		return exitError, err
	}
	sc, err := reg.Lookup(*name)
	if err != nil {
		return exitError, err
	}

	inputs := fs.Args()
	if len(inputs) == 0 {
		inputs = []string{"-"}
	}

	var tr *i18n.Translator
	if *lang != "" {
		tr = i18n.Default(i18n.WithLogger(a.log))
	}

	code := exitOK
	results := make([]result, 0, len(inputs))
	for _, in := range inputs {
		raw, err := a.readInput(in)
		if err != nil {
			return exitError, err
		}
		m, err := sc.Validate(raw)
		res := result{Input: in, Valid: err == nil, Model: m}
		if m != nil {
			res.Data = m.ToMap()
		}
		if err != nil {
			errs := schema.ExtractValidationErrors(err)
			if errs == nil {
				return exitError, err
			}
			if tr != nil {
				errs = tr.Localize(tr.Match(*lang), errs)
			}
			res.Errors = errs.Records()
			code = exitInvalid
		}
		results = append(results, res)
	}

	return code, a.print(*output, results)
}

func (a *app) describe(args []string) (int, error) {
	fs := a.flags("describe")
	schemas := fs.String("schemas", a.cfg.Schemas, "schema document (YAML or JSON)")
	output := fs.String("o", "yaml", "output format: json or yaml")
	if err := fs.Parse(args); err != nil {
		return exitError, err
	}

	reg, err := a.loadRegistry(*schemas)
	if err != nil {
		return exitError, err
	}
	names := fs.Args()
	if len(names) == 0 {
		names = reg.Names()
	}

	out := make([]schema.Description, 0, len(names))
	for _, name := range names {
		d, err := reg.Describe(name)
		if err != nil {
			return exitError, err
		}
		out = append(out, d)
	}
	return exitOK, a.print(*output, out)
}

func (a *app) serve(ctx context.Context, args []string) (int, error) {
	fs := a.flags("serve")
	schemas := fs.String("schemas", a.cfg.Schemas, "schema document (YAML or JSON)")
	addr := fs.String("addr", a.cfg.HTTP.Addr, "listen address")
	if err := fs.Parse(args); err != nil {
		return exitError, err
	}

	reg, err := a.loadRegistry(*schemas)
	if err != nil {
		return exitError, err
	}

	opts := []server.Option{
		server.WithLogger(a.log),
		server.WithTranslator(i18n.Default(i18n.WithLogger(a.log))),
	}
	if a.cfg.MaxBodySize > 0 {
		opts = append(opts, server.WithMaxBodyBytes(a.cfg.MaxBodySize))
	}
	if a.cfg.Metrics {
		promReg := prometheus.NewRegistry()
		promReg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
		opts = append(opts, server.WithMetrics(server.NewMetrics(promReg)))
	}
	handler := server.New(reg, opts...).Router()

	httpCfg := a.cfg.HTTP
	httpCfg.Addr = *addr
	srv := httpserver.NewFromConfig(httpCfg, httpserver.WithLogger(a.log))
	a.log.InfoContext(ctx, "serving schemas",
		slog.String("document", *schemas),
		slog.Any("schemas", reg.Names()),
	)
	if err := srv.Run(ctx, handler); err != nil {
		return exitError, err
	}
	return exitOK, nil
}

// readInput decodes one input document; "-" reads stdin. YAML is a superset
// of JSON, but .json files go through encoding/json to keep number precision.
func (a *app) readInput(path string) (map[string]any, error) {
	var (
		data []byte
		err  error
	)
	if path == "-" {
		data, err = io.ReadAll(a.stdin)
	} else {
		data, err = os.ReadFile(path)
	}
	if err != nil {
		return nil, err
	}

	var raw map[string]any
	if strings.EqualFold(filepath.Ext(path), ".json") {
		dec := json.NewDecoder(bytes.NewReader(data))
		dec.UseNumber()
		err = dec.Decode(&raw)
	} else {
		err = yaml.Unmarshal(data, &raw)
	}
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	if raw == nil {
		return nil, fmt.Errorf("%s: input is not an object", path)
	}
	return raw, nil
}

func (a *app) print(format string, v any) error {
	if format == "yaml" {
		enc := yaml.NewEncoder(a.stdout)
		enc.SetIndent(2)
		if err := enc.Encode(v); err != nil {
			return err
		}
		return enc.Close()
	}
	enc := json.NewEncoder(a.stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
