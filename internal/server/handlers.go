package server

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"mime"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"gopkg.in/yaml.v3"

	"github.com/dmitrymomot/modelcheck/pkg/httpserver"
	"github.com/dmitrymomot/modelcheck/pkg/i18n"
	"github.com/dmitrymomot/modelcheck/pkg/logger"
	"github.com/dmitrymomot/modelcheck/pkg/schema"
)

var errNoSchemas = errors.New("no schemas registered")

func healthHandler(log *slog.Logger, checks ...httpserver.Check) http.HandlerFunc {
	return httpserver.HealthHandler(log, checks...)
}

func (s *Server) ready(context.Context) error {
	if len(s.registry.Names()) == 0 {
		return errNoSchemas
	}
	return nil
}

func (s *Server) listSchemas(w http.ResponseWriter, r *http.Request) {
	if err := writeData(w, "schemas", s.registry.Names()); err != nil {
		s.logger.ErrorContext(r.Context(), "write response", logger.Error(err))
	}
}

func (s *Server) describeSchema(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")
	d, err := s.registry.Describe(name)
	if err != nil {
		s.fail(w, r, lookupError(name, err))
		return
	}
	if err := writeData(w, "schema", d); err != nil {
		s.logger.ErrorContext(r.Context(), "write response", logger.Error(err))
	}
}

func (s *Server) validate(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")
	sc, err := s.registry.Lookup(name)
	if err != nil {
		s.fail(w, r, lookupError(name, err))
		return
	}

	raw, err := s.decodeInput(w, r)
	if err != nil {
		s.fail(w, r, err)
		return
	}

	start := time.Now()
	model, err := sc.Validate(raw)
	elapsed := time.Since(start)

	log := s.logger.With(logger.Schema(name))
	switch errs := schema.ExtractValidationErrors(err); {
	case err == nil:
		s.observe(name, OutcomeValid, elapsed, nil)
		log.DebugContext(r.Context(), "record validated", logger.Duration(elapsed))
		if err := writeData(w, "valid", model); err != nil {
			log.ErrorContext(r.Context(), "write response", logger.Error(err))
		}
	case errs != nil:
		s.observe(name, OutcomeInvalid, elapsed, errs)
		log.InfoContext(r.Context(), "record rejected", logger.ErrorCount(len(errs)))
		for _, e := range errs {
			log.DebugContext(r.Context(), "violation",
				logger.Path(e.Path),
				slog.String("kind", string(e.Kind)),
				slog.String("constraint", e.Constraint),
			)
		}
		if s.translator != nil {
			errs = s.translator.Localize(i18n.GetLocale(r.Context()), errs)
		}
		s.fail(w, r, errs)
	default:
		s.observe(name, OutcomeError, elapsed, nil)
		log.ErrorContext(r.Context(), "validation failed", logger.Error(err))
		s.fail(w, r, err)
	}
}

func (s *Server) observe(name, outcome string, d time.Duration, errs schema.ValidationErrors) {
	if s.metrics == nil {
		return
	}
	s.metrics.observeValidation(name, outcome, d)
	for _, e := range errs {
		s.metrics.ViolationsTotal.WithLabelValues(name, string(e.Kind)).Inc()
	}
}

// decodeInput reads one object from the body. JSON numbers are kept as
// json.Number so integers survive without a float round-trip.
func (s *Server) decodeInput(w http.ResponseWriter, r *http.Request) (map[string]any, error) {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, s.maxBodyBytes))
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return nil, ErrRequestTooLarge
		}
		return nil, fmt.Errorf("%w: %w", ErrBadRequest, err)
	}

	mediaType := "application/json"
	if ct := r.Header.Get("Content-Type"); ct != "" {
		mediaType, _, err = mime.ParseMediaType(ct)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrUnsupportedMediaType, err)
		}
	}

	var raw map[string]any
	switch mediaType {
	case "application/json":
		dec := json.NewDecoder(bytes.NewReader(body))
		dec.UseNumber()
		if err := dec.Decode(&raw); err != nil {
			return nil, fmt.Errorf("%w: body must be a JSON object: %w", ErrBadRequest, err)
		}
		if dec.More() {
			return nil, fmt.Errorf("%w: body must contain a single JSON object", ErrBadRequest)
		}
	case "application/yaml", "application/x-yaml", "text/yaml":
		if err := yaml.Unmarshal(body, &raw); err != nil {
			return nil, fmt.Errorf("%w: body must be a YAML mapping: %w", ErrBadRequest, err)
		}
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedMediaType, mediaType)
	}
	if raw == nil {
		return nil, fmt.Errorf("%w: body must be an object", ErrBadRequest)
	}
	return raw, nil
}

func lookupError(name string, err error) error {
	if errors.Is(err, schema.ErrSchemaNotFound) {
		return fmt.Errorf("%w: %q", ErrSchemaNotFound, name)
	}
	return err
}
