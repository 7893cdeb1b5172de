// Package macro rewrites trigger body templates. A template goes through two
// passes: positional placeholders (${N}, ${N:}, ${N:M}) are substituted from
// the invocation tokens, then named placeholders (${name}, ${name arg}) are
// resolved through registered resolver functions. Named resolutions may hit
// the network, so all placeholders in one template are resolved together and
// joined before substitution.
package macro

import (
	"context"
	"regexp"
	"strconv"
	"strings"
	"sync"

	"github.com/sourcegraph/conc/pool"
	"go.uber.org/zap"
)

// Func resolves one named placeholder. arg is the free-form text after the
// name, or empty if the placeholder had none.
type Func func(ctx context.Context, arg string) (string, error)

var (
	positionalRe = regexp.MustCompile(`\$\{(\d+)(:(\d*))?\}`)
	namedRe      = regexp.MustCompile(`\$\{([a-zA-Z][0-9a-zA-Z]*)( (.+?))?\}`)
)

type Resolver struct {
	mu     sync.RWMutex
	funcs  map[string]Func
	logger *zap.Logger
}

func NewResolver(logger *zap.Logger) *Resolver {
	return &Resolver{
		funcs:  make(map[string]Func),
		logger: logger,
	}
}

// Register adds a named resolver. Names are matched case-sensitively against
// the placeholder identifier.
func (r *Resolver) Register(name string, fn Func) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.funcs[name] = fn
}

func (r *Resolver) lookup(name string) (Func, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	fn, ok := r.funcs[name]
	return fn, ok
}

// Resolve expands template against args. args[0] is conventionally the
// invocation word. Unknown positional indexes contribute nothing; unknown
// named placeholders pass through verbatim.
func (r *Resolver) Resolve(ctx context.Context, template string, args []string) string {
	out := r.resolvePositional(template, args)
	return r.resolveNamed(ctx, out)
}

func (r *Resolver) resolvePositional(template string, args []string) string {
	return positionalRe.ReplaceAllStringFunc(template, func(match string) string {
		sub := positionalRe.FindStringSubmatch(match)
		start, err := strconv.Atoi(sub[1])
		if err != nil || start < 0 {
			return ""
		}

		if sub[2] == "" {
			if start >= len(args) {
				return ""
			}
			return args[start]
		}

		if start > len(args) {
			start = len(args)
		}

		if sub[3] == "" {
			return strings.Join(args[start:], " ")
		}

		// The end index is the last included token, so bump it before
		// slicing.
		end, err := strconv.Atoi(sub[3])
		if err != nil {
			return ""
		}
		end++
		if end > len(args) {
			end = len(args)
		}
		if end < start {
			return ""
		}
		return strings.Join(args[start:end], " ")
	})
}

type namedSpan struct {
	start, end  int
	name, arg   string
	replacement string
}

func (r *Resolver) resolveNamed(ctx context.Context, input string) string {
	matches := namedRe.FindAllStringSubmatchIndex(input, -1)
	if len(matches) == 0 {
		return input
	}

	spans := make([]*namedSpan, 0, len(matches))
	for _, m := range matches {
		span := &namedSpan{
			start:       m[0],
			end:         m[1],
			name:        input[m[2]:m[3]],
			replacement: input[m[0]:m[1]],
		}
		if m[6] >= 0 {
			span.arg = input[m[6]:m[7]]
		}
		spans = append(spans, span)
	}

	// Resolve every placeholder together and join before substituting.
	p := pool.New()
	var mu sync.Mutex
	for _, span := range spans {
		span := span
		fn, ok := r.lookup(span.name)
		if !ok {
			continue
		}
		p.Go(func() {
			value, err := fn(ctx, span.arg)
			if err != nil {
				r.logger.Warn("macro resolution failed",
					zap.String("macro", span.name),
					zap.Error(err),
				)
				return
			}
			mu.Lock()
			span.replacement = value
			mu.Unlock()
		})
	}
	p.Wait()

	var b strings.Builder
	b.Grow(len(input))
	last := 0
	for _, span := range spans {
		b.WriteString(input[last:span.start])
		b.WriteString(span.replacement)
		last = span.end
	}
	b.WriteString(input[last:])
	return b.String()
}

// Tokens splits a resolved body into whitespace-separated tokens.
func Tokens(s string) []string {
	return strings.Fields(s)
}
