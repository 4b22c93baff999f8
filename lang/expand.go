package lang

import (
	"context"
	"log/slog"
	"strings"

	"github.com/ardnew/haiku/dom"
	"github.com/ardnew/haiku/log"
	"github.com/ardnew/haiku/pkg"
)

var (
	ErrUnknownOperator = pkg.NewError("unrecognized positional operator")
	ErrDescendLeaf     = pkg.NewError("cannot descend into node")
)

// Expander builds node trees from expressions using a [dom.Tree].
// It is safe for concurrent use as long as the tree implementation is;
// each call builds a separate tree.
type Expander[N comparable] struct {
	tree   dom.Tree[N]
	logger log.Logger
	depth  int
	cache  *specCache
}

// Option configures an [Expander].
type Option func(*options)

type options struct {
	logger log.Logger
	depth  int
	cache  int
}

// WithLogger sets the logger that receives malformed-input warnings.
// The default zero logger discards them.
func WithLogger(logger log.Logger) Option {
	return func(o *options) { o.logger = logger }
}

// WithDepth sets the depth limit passed to [Sanitize]. Negative values are
// treated as zero.
func WithDepth(depth int) Option {
	return func(o *options) { o.depth = max(depth, 0) }
}

// WithCache enables or disables memoizing parsed tokens. The cache holds
// [DefaultCacheSize] tokens unless changed with [WithCacheSize].
func WithCache(enable bool) Option {
	return func(o *options) {
		switch {
		case !enable:
			o.cache = 0
		case o.cache == 0:
			o.cache = DefaultCacheSize
		}
	}
}

// WithCacheSize limits the number of memoized tokens. Zero or less
// disables the cache.
func WithCacheSize(n int) Option {
	return func(o *options) { o.cache = max(n, 0) }
}

// New returns an [Expander] creating nodes in tree.
func New[N comparable](tree dom.Tree[N], opts ...Option) *Expander[N] {
	o := options{depth: DefaultDepth, cache: DefaultCacheSize}
	for _, opt := range opts {
		opt(&o)
	}

	e := &Expander[N]{tree: tree, logger: o.logger, depth: o.depth}
	if o.cache > 0 {
		e.cache = newSpecCache(o.cache)
	}

	return e
}

// Tree returns the tree nodes are created in.
func (e *Expander[N]) Tree() dom.Tree[N] { return e.tree }

// Logger returns the logger warnings are written to.
func (e *Expander[N]) Logger() log.Logger { return e.logger }

// ClearCache drops every memoized token.
func (e *Expander[N]) ClearCache() {
	if e.cache != nil {
		e.cache.clear()
	}
}

// Expand fills placeholders in expression from data and builds the result
// under a new fragment, which it returns.
func (e *Expander[N]) Expand(
	ctx context.Context,
	expression string,
	data any,
) (N, error) {
	text := Substitute(expression, Sanitize(data, e.depth), "")

	return e.build(ctx, text)
}

// ExpandString is [Expander.Expand] followed by rendering the fragment.
func (e *Expander[N]) ExpandString(
	ctx context.Context,
	expression string,
	data any,
) (string, error) {
	root, err := e.Expand(ctx, expression, data)
	if err != nil {
		return "", err
	}

	var sb strings.Builder
	if err := e.tree.Render(&sb, root); err != nil {
		return "", err
	}

	return sb.String(), nil
}

// Create returns the first top-level node of the expansion, or the zero
// node when the expansion is empty.
func (e *Expander[N]) Create(
	ctx context.Context,
	expression string,
	data any,
) (N, error) {
	root, err := e.Expand(ctx, expression, data)
	if err != nil {
		var zero N

		return zero, err
	}

	return e.tree.FirstChild(root), nil
}

func (e *Expander[N]) parse(token string) Spec {
	if e.cache == nil {
		return ParseSpec(token)
	}

	spec, _ := e.cache.parse(token)

	return spec
}

// build walks the tokens of an already substituted expression, moving the
// insertion cursor after each one according to the operator that follows.
func (e *Expander[N]) build(ctx context.Context, text string) (N, error) {
	var zero N

	root := e.tree.CreateFragment()
	cursor := root
	tokens, ops := Tokenize(text)

	for i, token := range tokens {
		node, ok, err := Build(e.tree, e.parse(token))
		if err != nil {
			return zero, err
		}

		if ok {
			if err := e.tree.AppendChild(cursor, node); err != nil {
				return zero, err
			}
		} else {
			node = zero
		}

		if i >= len(ops) {
			break
		}

		switch ops[i] {
		case OpDescend:
			if node == zero || e.tree.IsText(node) {
				e.logger.WarnContext(ctx, "ignoring descent",
					slog.Any("error", ErrDescendLeaf.With(
						slog.String("token", strings.TrimSpace(token)),
						slog.Int("index", i),
					)))

				continue
			}

			cursor = node

		case OpAscend:
			if cursor == root {
				continue
			}

			if parent := e.tree.Parent(cursor); parent != zero {
				cursor = parent
			}

		case OpSibling:

		default:
			e.logger.WarnContext(ctx, "ignoring operator",
				slog.Any("error", ErrUnknownOperator.With(
					slog.String("op", string(rune(ops[i]))),
				)))
		}
	}

	e.logger.TraceContext(ctx, "expanded",
		slog.Int("tokens", len(tokens)),
		slog.Int("ops", len(ops)))

	return root, nil
}
