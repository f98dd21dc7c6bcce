package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/hyperterse/querygate/core/application/validation"
	"github.com/hyperterse/querygate/core/domain"
	"github.com/hyperterse/querygate/core/domain/interfaces"
	"github.com/hyperterse/querygate/core/infrastructure/logging"
	"github.com/hyperterse/querygate/core/observability"
	sharedctx "github.com/hyperterse/querygate/core/shared/context"
	"github.com/hyperterse/querygate/core/shared/errors"
)

// QueryService implements the batch query pipeline used by all transports
type QueryService struct {
	registry   interfaces.RegistrySource
	executor   interfaces.Executor
	validator  interfaces.SchemaValidator
	production bool
	log        logging.Logger
}

// Option configures a QueryService
type Option func(*QueryService)

// WithProduction withholds failure details from responses
func WithProduction(production bool) Option {
	return func(s *QueryService) {
		s.production = production
	}
}

// WithValidator replaces the schema engine used for query properties
func WithValidator(validator interfaces.SchemaValidator) Option {
	return func(s *QueryService) {
		s.validator = validator
	}
}

// WithLogger replaces the service logger
func WithLogger(log logging.Logger) Option {
	return func(s *QueryService) {
		s.log = log
	}
}

// NewQueryService creates a new QueryService
func NewQueryService(registry interfaces.RegistrySource, executor interfaces.Executor, opts ...Option) *QueryService {
	s := &QueryService{
		registry:  registry,
		executor:  executor,
		validator: validation.NewSchemaValidator(),
		log:       logging.New("query"),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// ExecuteBatch runs every item of payload in order on behalf of caller.
// Each item yields exactly one result; anything failing outside the
// per-item pipeline replaces the response with a single envelope error.
// The executor session is released exactly once on every path.
func (s *QueryService) ExecuteBatch(ctx context.Context, payload []byte, caller *domain.Caller) (resp *domain.BatchResponse) {
	session := s.executor.NewSession()
	defer session.Release()

	ctx, span := observability.Tracer().Start(ctx, "querygate.batch")
	defer span.End()

	log := s.log.With(s.logFields(ctx, caller))

	defer func() {
		if r := recover(); r != nil {
			resp = s.batchFailure(ctx, span, log, fmt.Errorf("panic: %v", r))
		}
	}()

	items, err := decodeBatch(payload)
	if err != nil {
		return s.batchFailure(ctx, span, log, err)
	}
	span.SetAttributes(attribute.Int(observability.AttrBatchSize, len(items)))

	registry, err := s.registry.Load(ctx)
	if err != nil {
		return s.batchFailure(ctx, span, log, fmt.Errorf("load registry: %w", err))
	}

	results := make([]domain.ResultItem, 0, len(items))
	for i, raw := range items {
		results = append(results, s.executeItem(ctx, log, i, raw, registry, session, caller))
	}

	observability.RecordBatch(ctx, len(items), false)
	return &domain.BatchResponse{Queries: results}
}

func (s *QueryService) executeItem(
	ctx context.Context,
	log logging.Logger,
	index int,
	raw any,
	registry interfaces.Registry,
	session interfaces.Session,
	caller *domain.Caller,
) domain.ResultItem {
	start := time.Now()
	name := echoName(raw)
	label := fmt.Sprint(name)

	ctx, span := observability.Tracer().Start(ctx, "querygate.item", trace.WithAttributes(
		attribute.Int(observability.AttrQueryIndex, index),
		attribute.String(observability.AttrQueryName, label),
	))
	defer span.End()

	rows, qerr := s.process(ctx, raw, registry, session, caller)
	elapsed := time.Since(start)

	if qerr != nil {
		span.SetAttributes(attribute.Int(observability.AttrErrno, int(qerr.Errno)))
		span.SetStatus(codes.Error, string(qerr.Code))
		observability.RecordItem(ctx, label, strconv.Itoa(int(qerr.Errno)), elapsed)
		logFailure(log, qerr)("Query %d (%s) failed with %d %s: %v", index, label, qerr.Errno, qerr.Code, qerr.Details)
		return domain.ResultItem{Name: name, Error: s.errorBody(qerr)}
	}

	observability.RecordItem(ctx, label, observability.CodeSuccess, elapsed)
	log.Debugf("Query %d (%s) returned %d rows in %s", index, label, len(rows), elapsed)
	return domain.ResultItem{Name: name, Results: rows}
}

// process runs the per-item checks in order and stops at the first failure
func (s *QueryService) process(
	ctx context.Context,
	raw any,
	registry interfaces.Registry,
	session interfaces.Session,
	caller *domain.Caller,
) ([]domain.Row, *errors.QueryError) {
	req, result, err := validation.ValidateRequest(raw)
	if err != nil {
		return nil, errors.RequestValidation(err.Error())
	}
	if !result.Valid {
		return nil, errors.RequestValidation(result.Errors)
	}

	doc, found := registry.Lookup(req.Name)

	def, result, err := validation.ValidateDefinition(doc, found)
	if err != nil {
		return nil, errors.DefinitionValidation(err.Error())
	}
	if !result.Valid {
		return nil, errors.DefinitionValidation(result.Errors)
	}

	if !found {
		return nil, errors.QueryNotFound()
	}

	var granted []string
	if caller != nil {
		granted = caller.Access
	}
	if !validation.HasAccess(def.Access, granted) {
		return nil, errors.QueryNoAccess()
	}

	return s.execute(ctx, req, def, session, caller)
}

// execute validates properties and runs the expression. A panic in either
// step is an execution failure of this item only.
func (s *QueryService) execute(
	ctx context.Context,
	req domain.QueryRequest,
	def domain.QueryDefinition,
	session interfaces.Session,
	caller *domain.Caller,
) (rows []domain.Row, qerr *errors.QueryError) {
	defer func() {
		if r := recover(); r != nil {
			rows = nil
			qerr = errors.BadQuery(fmt.Errorf("panic: %v", r))
		}
	}()

	properties := validation.MergeProperties(def.Properties, req.Properties)

	result, err := s.validator.Validate(def.Schema, properties)
	if err != nil {
		return nil, errors.BadQuery(err)
	}
	if !result.Valid {
		return nil, errors.PropertiesValidation(result.Errors)
	}

	rows, err = session.Execute(ctx, def.Expression, properties, caller)
	if err != nil {
		return nil, errors.BadQuery(err)
	}
	if rows == nil {
		rows = []domain.Row{}
	}

	// Rows that cannot be encoded fail this item only
	if _, err := json.Marshal(rows); err != nil {
		return nil, errors.BadQuery(fmt.Errorf("encode results: %w", err))
	}
	return rows, nil
}

func (s *QueryService) batchFailure(ctx context.Context, span trace.Span, log logging.Logger, err error) *domain.BatchResponse {
	qerr := errors.BatchFailed(err)
	span.RecordError(err)
	span.SetStatus(codes.Error, string(qerr.Code))
	observability.RecordBatch(ctx, 0, true)
	log.Errorf("Batch failed: %v", err)
	return &domain.BatchResponse{Error: s.errorBody(qerr)}
}

// errorBody renders a failure for the wire. Details never leave the
// process in production.
func (s *QueryService) errorBody(qerr *errors.QueryError) *domain.ErrorBody {
	body := &domain.ErrorBody{
		Errno: int(qerr.Errno),
		Code:  string(qerr.Code),
	}
	if !s.production {
		body.Details = qerr.Details
	}
	return body
}

func (s *QueryService) logFields(ctx context.Context, caller *domain.Caller) map[string]string {
	fields := observability.TraceFields(ctx)
	if id := sharedctx.GetRequestID(ctx); id != "" {
		fields[observability.AttrRequestID] = id
	}
	if caller != nil && caller.Subject != "" {
		fields[observability.AttrCallerSubject] = caller.Subject
	}
	return fields
}

// logFailure picks the log level of an item failure from its error class
func logFailure(log logging.Logger, qerr *errors.QueryError) func(format string, args ...any) {
	switch {
	case errors.IsClientError(qerr):
		return log.Debugf
	case errors.IsConfigError(qerr):
		return log.Errorf
	default:
		return log.Warnf
	}
}

// decodeBatch extracts the raw items of a {"queries": [...]} body. A
// missing or null list is an empty batch. Numbers stay json.Number so
// large integers reach the driver intact.
func decodeBatch(payload []byte) ([]any, error) {
	var body any
	dec := json.NewDecoder(bytes.NewReader(payload))
	dec.UseNumber()
	if err := dec.Decode(&body); err != nil {
		return nil, fmt.Errorf("invalid request body: %w", err)
	}
	if _, err := dec.Token(); err != io.EOF {
		return nil, fmt.Errorf("invalid request body: unexpected data after the top-level value")
	}

	envelope, ok := body.(map[string]any)
	if !ok {
		return nil, fmt.Errorf("request body must be an object")
	}

	switch queries := envelope["queries"].(type) {
	case nil:
		return []any{}, nil
	case []any:
		return queries, nil
	default:
		return nil, fmt.Errorf("queries must be an array")
	}
}

// echoName returns the caller-supplied name of a raw item, whatever its type
func echoName(raw any) any {
	if obj, ok := raw.(map[string]any); ok {
		return obj["name"]
	}
	return nil
}
