package related

import (
	"fmt"
	"strings"
	"sync"

	"github.com/expr-lang/expr"
	"github.com/expr-lang/expr/vm"

	"tourism-backend/internal/store"
)

// Extractor evaluates field expressions against a record. Compiled programs
// are cached by expression string. Evaluation never fails: an expression that
// errors or yields an unusable value extracts as empty.
type Extractor struct {
	mu    sync.RWMutex
	cache map[string]*vm.Program
}

func NewExtractor() *Extractor {
	return &Extractor{cache: make(map[string]*vm.Program)}
}

var extractFunctions = []expr.Option{
	// firstOf(x) returns the first element of an array column, or x itself
	// when it is a scalar.
	expr.Function("firstOf", func(params ...any) (any, error) {
		if len(params) != 1 {
			return nil, fmt.Errorf("firstOf: want 1 argument, got %d", len(params))
		}
		arr := store.ParseArray(params[0])
		if len(arr) == 0 {
			return nil, nil
		}
		return arr[0], nil
	}),
	// listOf(x) decodes an array column into a list of strings.
	expr.Function("listOf", func(params ...any) (any, error) {
		if len(params) != 1 {
			return nil, fmt.Errorf("listOf: want 1 argument, got %d", len(params))
		}
		return store.ParseArray(params[0]), nil
	}),
}

// Compile compiles and caches expression.
func (e *Extractor) Compile(expression string) (*vm.Program, error) {
	e.mu.RLock()
	prog, ok := e.cache[expression]
	e.mu.RUnlock()
	if ok {
		return prog, nil
	}

	prog, err := expr.Compile(expression, extractFunctions...)
	if err != nil {
		return nil, fmt.Errorf("compile %q: %w", expression, err)
	}

	e.mu.Lock()
	e.cache[expression] = prog
	e.mu.Unlock()
	return prog, nil
}

func (e *Extractor) eval(expression string, rec Record) any {
	if expression == "" || rec == nil {
		return nil
	}
	prog, err := e.Compile(expression)
	if err != nil {
		return nil
	}
	out, err := expr.Run(prog, map[string]any(rec))
	if err != nil {
		return nil
	}
	return out
}

// String evaluates expression to a trimmed string. Non-scalar results are empty.
func (e *Extractor) String(expression string, rec Record) string {
	switch v := e.eval(expression, rec).(type) {
	case string:
		return strings.TrimSpace(v)
	case []byte:
		return strings.TrimSpace(string(v))
	case int, int32, int64, float64:
		return fmt.Sprint(v)
	default:
		return ""
	}
}

// Strings evaluates expression to a list of non-empty strings.
func (e *Extractor) Strings(expression string, rec Record) []string {
	var out []string
	for _, s := range store.ParseArray(e.eval(expression, rec)) {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}
