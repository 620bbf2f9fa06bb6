package dispatch

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"math/rand"
	"os"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/snow-ghost/listroutines/enumerator"
	"github.com/snow-ghost/listroutines/generator"
	"github.com/snow-ghost/listroutines/registry"
	"github.com/snow-ghost/listroutines/registry/builtins"
)

func testDispatcher(t *testing.T) *Dispatcher {
	t.Helper()
	reg, warnings, err := registry.LoadFS(os.DirFS("../routines"), builtins.Table())
	require.NoError(t, err)
	require.Empty(t, warnings)

	rng := rand.New(rand.NewSource(99))
	return &Dispatcher{
		Registry:   reg,
		Generator:  generator.New(reg, 0),
		Enumerator: enumerator.New(reg, rng),
		Rand:       rng,
	}
}

// runLines feeds each line to the dispatcher and returns the decoded
// responses in order.
func runLines(t *testing.T, d *Dispatcher, lines ...string) []interface{} {
	t.Helper()
	in := strings.NewReader(strings.Join(lines, "\n") + "\n")
	var out bytes.Buffer
	err := d.Run(context.Background(), in, &out)
	require.NoError(t, err)

	scanner := bufio.NewScanner(&out)
	var results []interface{}
	for scanner.Scan() {
		var v interface{}
		require.NoError(t, json.Unmarshal(scanner.Bytes(), &v))
		results = append(results, v)
	}
	return results
}

func routineJSONLine(op string, nodes []nodeJSON, input interface{}, params map[string]interface{}) string {
	req := map[string]interface{}{
		"op":      op,
		"routine": nodes,
	}
	if input != nil {
		req["input"] = input
	}
	if params != nil {
		req["params"] = params
	}
	b, _ := json.Marshal(req)
	return string(b)
}

func multiplyKNodes(k int64) []nodeJSON {
	return []nodeJSON{
		{Name: "multiply-k", Input: wireJSON{Dyn: intPtr(0)}, Params: []wireJSON{{Static: &k}}},
	}
}

func intPtr(i int) *int { return &i }

// multiply-k, round-tripped through the wire protocol.
func TestDispatch_EvaluateMultiplyK(t *testing.T) {
	d := testDispatcher(t)
	line := routineJSONLine("evaluate", multiplyKNodes(3), []int{1, 2, 3}, nil)
	results := runLines(t, d, line)
	require.Len(t, results, 1)

	got, ok := results[0].([]interface{})
	require.True(t, ok)
	assert.Equal(t, []interface{}{float64(3), float64(6), float64(9)}, got)
}

func TestDispatch_Validate(t *testing.T) {
	d := testDispatcher(t)
	okLine := routineJSONLine("validate", multiplyKNodes(3), []int{1, 2, 3}, nil)
	badLine := routineJSONLine("validate", multiplyKNodes(3), 5, nil)

	results := runLines(t, d, okLine, badLine)
	require.Len(t, results, 2)
	assert.Equal(t, true, results[0])
	assert.Equal(t, false, results[1])
}

func TestDispatch_UnknownOpReturnsNull(t *testing.T) {
	d := testDispatcher(t)
	line := routineJSONLine("not-an-op", multiplyKNodes(3), []int{1, 2, 3}, nil)
	results := runLines(t, d, line)
	require.Len(t, results, 1)
	assert.Nil(t, results[0])
}

func TestDispatch_MalformedLineReturnsNullAndContinues(t *testing.T) {
	d := testDispatcher(t)
	results := runLines(t, d, "{not json", routineJSONLine("evaluate", multiplyKNodes(3), []int{1}, nil))
	require.Len(t, results, 2)
	assert.Nil(t, results[0])
	got, ok := results[1].([]interface{})
	require.True(t, ok)
	assert.Equal(t, []interface{}{float64(3)}, got)
}

func TestDispatch_Enumerate(t *testing.T) {
	d := testDispatcher(t)
	line := routineJSONLine("enumerate", nil, nil, map[string]interface{}{"bound": float64(10)})
	results := runLines(t, d, line)
	require.Len(t, results, 1)
	routines, ok := results[0].([]interface{})
	require.True(t, ok)
	assert.GreaterOrEqual(t, len(routines), 10)
}

func TestDispatch_Examples(t *testing.T) {
	d := testDispatcher(t)
	line := routineJSONLine("examples", multiplyKNodes(3), nil, nil)
	results := runLines(t, d, line)
	require.Len(t, results, 1)
	examples, ok := results[0].([]interface{})
	require.True(t, ok)
	assert.NotEmpty(t, examples)
}

func TestDispatch_GenerateHonorsCount(t *testing.T) {
	d := testDispatcher(t)
	line := routineJSONLine("generate", multiplyKNodes(3), nil, map[string]interface{}{"count": float64(2)})
	results := runLines(t, d, line)
	require.Len(t, results, 1)
	pairs, ok := results[0].([]interface{})
	require.True(t, ok)
	assert.Len(t, pairs, 2)
}
