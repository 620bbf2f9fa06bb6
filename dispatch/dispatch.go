// Package dispatch implements a single-threaded, line-delimited JSON
// request/response loop over stdio. Diagnostics go to the structured
// logger (stderr); the response stream carries only framed JSON values.
package dispatch

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"math/rand"
	"time"

	"go.opentelemetry.io/otel/trace"

	"github.com/snow-ghost/listroutines/checker"
	"github.com/snow-ghost/listroutines/core"
	"github.com/snow-ghost/listroutines/enumerator"
	"github.com/snow-ghost/listroutines/evaluator"
	"github.com/snow-ghost/listroutines/generator"
	"github.com/snow-ghost/listroutines/pkg/logging"
	"github.com/snow-ghost/listroutines/pkg/metrics"
	"github.com/snow-ghost/listroutines/pkg/tracing"
	"github.com/snow-ghost/listroutines/typelattice"
)

// Dispatcher wires the core components to the framed-JSON stdio protocol.
type Dispatcher struct {
	Registry   core.Registry
	Generator  *generator.Generator
	Enumerator *enumerator.Enumerator
	Logger     *logging.Logger
	Metrics    *metrics.PrometheusMetrics
	Tracer     *tracing.Tracer
	Rand       *rand.Rand

	// DefaultEnumerateBound is used by "enumerate" requests that omit
	// "bound". Falls back to 10 when unset.
	DefaultEnumerateBound int

	lastConsidered int64
	lastDiscarded  int64
}

// wireJSON is the wire encoding of a core.Wire: exactly one of Static/Dyn
// is present.
type wireJSON struct {
	Static *int64 `json:"static,omitempty"`
	Dyn    *int   `json:"dyn,omitempty"`
}

func (w wireJSON) toWire() (core.Wire, error) {
	switch {
	case w.Static != nil:
		return core.StaticWire(*w.Static), nil
	case w.Dyn != nil:
		return core.DynWire(*w.Dyn), nil
	default:
		return core.Wire{}, fmt.Errorf("wire has neither static nor dyn")
	}
}

func encodeWireJSON(w core.Wire) wireJSON {
	if w.Kind == core.WireStatic {
		v := w.Static
		return wireJSON{Static: &v}
	}
	r := w.Ref
	return wireJSON{Dyn: &r}
}

// nodeJSON is the wire encoding of a core.Node.
type nodeJSON struct {
	Name   string     `json:"name"`
	Input  wireJSON   `json:"input"`
	Params []wireJSON `json:"params,omitempty"`
}

func decodeRoutine(nodes []nodeJSON) (core.Routine, error) {
	r := core.Routine{Nodes: make([]core.Node, len(nodes))}
	for i, n := range nodes {
		input, err := n.Input.toWire()
		if err == nil && input.Kind == core.WireDyn && (input.Ref < 0 || input.Ref > i) {
			err = fmt.Errorf("dyn %d does not reference an earlier slot", input.Ref)
		}
		if err != nil {
			return core.Routine{}, fmt.Errorf("node %d: input: %w", i, err)
		}
		params := make([]core.Wire, len(n.Params))
		for pi, pw := range n.Params {
			w, err := pw.toWire()
			if err == nil && w.Kind == core.WireDyn && (w.Ref < 0 || w.Ref > i) {
				err = fmt.Errorf("dyn %d does not reference an earlier slot", w.Ref)
			}
			if err != nil {
				return core.Routine{}, fmt.Errorf("node %d: param %d: %w", i, pi, err)
			}
			params[pi] = w
		}
		r.Nodes[i] = core.Node{Name: n.Name, Input: input, Params: params}
	}
	return r, nil
}

func encodeRoutineJSON(r core.Routine) []nodeJSON {
	out := make([]nodeJSON, len(r.Nodes))
	for i, n := range r.Nodes {
		params := make([]wireJSON, len(n.Params))
		for pi, p := range n.Params {
			params[pi] = encodeWireJSON(p)
		}
		out[i] = nodeJSON{Name: n.Name, Input: encodeWireJSON(n.Input), Params: params}
	}
	return out
}

// request is the decoded shape of one dispatcher line.
type request struct {
	Op      string                 `json:"op"`
	Routine []nodeJSON             `json:"routine"`
	Input   json.RawMessage        `json:"input"`
	Params  map[string]interface{} `json:"params"`
}

func decodeInput(raw json.RawMessage) (core.Value, error) {
	if len(raw) == 0 {
		return core.IntList(nil), nil
	}
	var n int64
	if err := json.Unmarshal(raw, &n); err == nil {
		return core.Int(n), nil
	}
	var list []int64
	if err := json.Unmarshal(raw, &list); err == nil {
		return core.IntList(list), nil
	}
	return core.Value{}, fmt.Errorf("input must be a number or an array of numbers")
}

func encodeValue(v core.Value) interface{} {
	if v.IsList {
		return v.List
	}
	return v.Int
}

// Run reads requests from r and writes responses to w until EOF; the caller
// decides what EOF means for the process, Run itself just returns.
func (d *Dispatcher) Run(ctx context.Context, r io.Reader, w io.Writer) error {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1<<20)
	enc := json.NewEncoder(w)

	for scanner.Scan() {
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}
		resp := d.handleLine(ctx, line)
		if err := enc.Encode(resp); err != nil {
			return err
		}
	}
	return scanner.Err()
}

func (d *Dispatcher) handleLine(ctx context.Context, line []byte) interface{} {
	start := time.Now()

	var req request
	if err := json.Unmarshal(line, &req); err != nil {
		slog.Warn("dispatch: malformed request", "error", err)
		return nil
	}

	routineName := ""
	if len(req.Routine) > 0 {
		routineName = req.Routine[len(req.Routine)-1].Name
	}

	var span trace.Span
	if d.Tracer != nil {
		ctx, span = d.Tracer.StartRequestSpan(ctx, req.Op, routineName)
		defer span.End()
	}

	resp := d.dispatch(req)
	ok := resp != nil

	if d.Metrics != nil {
		status := "ok"
		if !ok {
			status = "null"
		}
		d.Metrics.RecordRequest(req.Op, status)
		d.Metrics.RecordLatency(req.Op, time.Since(start))
	}
	if d.Logger != nil {
		d.Logger.LogRequest(ctx, req.Op, routineName, ok, time.Since(start))
	}
	return resp
}

func (d *Dispatcher) dispatch(req request) interface{} {
	routine, err := decodeRoutine(req.Routine)
	if err != nil {
		slog.Warn("dispatch: invalid routine", "error", err)
		return nil
	}

	switch req.Op {
	case "validate":
		return d.opValidate(routine, req.Input)
	case "evaluate":
		return d.opEvaluate(routine, req.Input)
	case "examples":
		return d.opExamples(routine)
	case "generate":
		return d.opGenerate(routine, req.Params)
	case "enumerate":
		// Exposes the enumerator directly over the wire; "routine" is ignored.
		return d.opEnumerate(req.Params)
	default:
		slog.Warn("dispatch: unknown op", "op", req.Op)
		return nil
	}
}

func (d *Dispatcher) check(routine core.Routine) ([]typelattice.Type, bool) {
	T, err := checker.Check(d.Registry, routine)
	if err != nil {
		if ce, ok := err.(*core.CheckError); ok && d.Metrics != nil {
			d.Metrics.RecordCheckFailure(ce.Stage)
		}
		return nil, false
	}
	return T, true
}

func (d *Dispatcher) opValidate(routine core.Routine, rawInput json.RawMessage) interface{} {
	T, ok := d.check(routine)
	if !ok {
		return false
	}
	input, err := decodeInput(rawInput)
	if err != nil {
		return false
	}
	return typelattice.Inhabits(input, T[0])
}

func (d *Dispatcher) opEvaluate(routine core.Routine, rawInput json.RawMessage) interface{} {
	T, ok := d.check(routine)
	if !ok {
		return nil
	}
	input, err := decodeInput(rawInput)
	if err != nil {
		return nil
	}
	out, err := evaluator.Evaluate(d.Registry, routine, T, input)
	if err != nil {
		return nil
	}
	return encodeValue(out)
}

func (d *Dispatcher) opExamples(routine core.Routine) interface{} {
	T, ok := d.check(routine)
	if !ok {
		return nil
	}
	if len(routine.Nodes) == 1 {
		desc, _, _ := d.Registry.Lookup(routine.Nodes[0].Name)
		if len(desc.Examples) > 0 {
			out := make([]interface{}, len(desc.Examples))
			for i, ex := range desc.Examples {
				out[i] = encodeValue(ex.ToValue())
			}
			return out
		}
	}
	examples, err := d.Generator.Generate(d.Rand, routine, T, core.GenParams{Count: 3})
	if err != nil {
		return nil
	}
	out := make([]interface{}, len(examples))
	for i, ex := range examples {
		out[i] = encodeValue(ex.Input)
	}
	return out
}

func (d *Dispatcher) opGenerate(routine core.Routine, params map[string]interface{}) interface{} {
	T, ok := d.check(routine)
	if !ok {
		return nil
	}
	gp := core.GenParams{Count: 3}
	if c, ok := params["count"]; ok {
		if f, ok := c.(float64); ok {
			gp.Count = int(f)
		}
	}
	examples, err := d.Generator.Generate(d.Rand, routine, T, gp)
	if err != nil {
		if d.Metrics != nil && len(routine.Nodes) > 0 {
			d.Metrics.RecordGeneratorExhausted(routine.Nodes[0].Name)
		}
		return nil
	}
	out := make([][2]interface{}, len(examples))
	for i, ex := range examples {
		out[i] = [2]interface{}{encodeValue(ex.Input), encodeValue(ex.Output)}
	}
	return out
}

func (d *Dispatcher) opEnumerate(params map[string]interface{}) interface{} {
	bound := d.DefaultEnumerateBound
	if bound <= 0 {
		bound = 10
	}
	if c, ok := params["bound"]; ok {
		if f, ok := c.(float64); ok {
			bound = int(f)
		}
	}
	candidates, err := d.Enumerator.Enumerate(bound)
	if err != nil {
		return nil
	}

	if d.Metrics != nil {
		stats := d.Enumerator.Stats
		d.Metrics.RecordEnumeratorStats(stats.Considered-d.lastConsidered, stats.Discarded-d.lastDiscarded, stats.Kept)
		d.lastConsidered, d.lastDiscarded = stats.Considered, stats.Discarded
	}

	out := make([]interface{}, len(candidates))
	for i, c := range candidates {
		out[i] = encodeRoutineJSON(c.Routine)
	}
	return out
}
