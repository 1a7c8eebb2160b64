// FILE: lixenwraith/config/hocon/reader.go
package hocon

import (
	"fmt"
	"io"
	"log/slog"
	"strings"

	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

// ReaderOption configures a Reader.
type ReaderOption func(*Reader)

// WithLogger sets the logger used to trace include resolution.
func WithLogger(logger *slog.Logger) ReaderOption {
	return func(r *Reader) {
		if logger != nil {
			r.logger = logger
		}
	}
}

// Reader parses configuration text into a Store.
type Reader struct {
	store    Store
	resolver Resolver
	logger   *slog.Logger
}

// NewReader creates a reader writing into store. resolver may be nil, in which
// case every include resolves to empty text.
func NewReader(store Store, resolver Resolver, opts ...ReaderOption) *Reader {
	r := &Reader{
		store:    store,
		resolver: resolver,
		logger:   slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Read resolves name and parses the resulting text. The name counts as already
// included, so a document that includes itself is rejected.
func (r *Reader) Read(name string) error {
	content, err := r.resolve(name)
	if err != nil {
		return err
	}
	p := r.newParse(content)
	p.included[name] = struct{}{}
	return p.run()
}

// ReadString parses content.
func (r *Reader) ReadString(content string) error {
	return r.newParse(content).run()
}

// ReadStream decodes the stream (UTF-8, or UTF-16 when a BOM says so) and
// parses it.
func (r *Reader) ReadStream(in io.Reader) error {
	decoder := unicode.BOMOverride(unicode.UTF8.NewDecoder())
	data, err := io.ReadAll(transform.NewReader(in, decoder))
	if err != nil {
		return fmt.Errorf("failed to read config stream: %w", err)
	}
	return r.ReadString(string(data))
}

func (r *Reader) resolve(name string) (string, error) {
	if r.resolver == nil {
		return "", nil
	}
	content, err := r.resolver.Resolve(name)
	if err != nil {
		return "", fmt.Errorf("failed to resolve source %q: %w", name, err)
	}
	return content, nil
}

func (r *Reader) newParse(content string) *parse {
	return &parse{
		Reader:   r,
		tok:      NewTokenizer(content),
		included: make(map[string]struct{}),
	}
}

// parse holds the state of a single Read call.
type parse struct {
	*Reader
	tok      *Tokenizer
	included map[string]struct{}
}

func (p *parse) run() error {
	if err := p.readKeys(""); err != nil {
		return err
	}
	if !p.tok.AtEnd(memberIgnorable) {
		return p.syntaxError(ExpectProperty)
	}
	return nil
}

func (p *parse) syntaxError(expected Expectation) error {
	return &SyntaxError{
		Expected: expected,
		Found:    p.tok.Peek(),
		Offset:   p.tok.Offset(),
	}
}

// readKeys reads properties and includes under parent until neither follows.
func (p *parse) readKeys(parent string) error {
	for {
		tok, ok := p.tok.Next(keyOrInclude, memberIgnorable)
		if !ok {
			return nil
		}
		p.tok.Consume()

		if tok.Type == TokenInclude {
			if err := p.include(tok.Value); err != nil {
				return err
			}
			continue
		}

		if err := p.readProperty(parent, tok.Value); err != nil {
			return err
		}
	}
}

func (p *parse) include(name string) error {
	if _, seen := p.included[name]; seen {
		return fmt.Errorf("%w: %s", ErrAlreadyIncluded, name)
	}
	p.included[name] = struct{}{}

	content, err := p.resolve(name)
	if err != nil {
		return err
	}
	p.logger.Debug("include resolved", "name", name, "bytes", len(content), "offset", p.tok.Offset())
	p.tok.Include(content)
	return nil
}

func (p *parse) readProperty(parent, key string) error {
	path := key
	if parent != "" {
		path = parent + "." + key
	}

	if err := p.ensureParents(parent, key); err != nil {
		return err
	}
	if err := p.store.WriteNode(path); err != nil {
		return fmt.Errorf("failed to write node %q: %w", path, err)
	}

	tok, ok := p.tok.Next(assignOrScope, ignorable)
	if !ok {
		return p.syntaxError(ExpectAssignOrScope)
	}
	p.tok.Consume()

	if tok.Type == TokenBeginScope {
		return p.readBlock(path)
	}

	tok, ok = p.tok.Next(valueTokens, ignorable)
	if !ok {
		return p.syntaxError(ExpectValue)
	}
	p.tok.Consume()

	switch tok.Type {
	case TokenSubstitution:
		target, found, err := p.store.ReadOne(tok.Value)
		if err != nil {
			return fmt.Errorf("failed to read %q: %w", tok.Value, err)
		}
		if found && IsNode(target) {
			return p.extend(path, tok.Value)
		}
	case TokenBeginArray:
		list, err := p.readArray()
		if err != nil {
			return err
		}
		return p.write(path, list)
	}

	value, present, err := p.value(tok)
	if err != nil {
		return err
	}
	if !present {
		if err := p.store.Remove(path); err != nil {
			return fmt.Errorf("failed to remove %q: %w", path, err)
		}
		return nil
	}
	return p.write(path, value)
}

// ensureParents materializes the intermediate scopes of a dotted key, so the
// parent of every stored path exists.
func (p *parse) ensureParents(parent, key string) error {
	segments := strings.Split(key, ".")
	current := parent
	for _, segment := range segments[:len(segments)-1] {
		if current == "" {
			current = segment
		} else {
			current += "." + segment
		}
		_, found, err := p.store.ReadOne(current)
		if err != nil {
			return fmt.Errorf("failed to read %q: %w", current, err)
		}
		if !found {
			if err := p.store.WriteNode(current); err != nil {
				return fmt.Errorf("failed to write node %q: %w", current, err)
			}
		}
	}
	return nil
}

// extend copies the subtree at source onto path, then applies an optional
// override block.
func (p *parse) extend(path, source string) error {
	entries, err := p.store.ReadPrefix(source)
	if err != nil {
		return fmt.Errorf("failed to read %q: %w", source, err)
	}

	for _, entry := range entries {
		target := path + strings.TrimPrefix(entry.Path, source)
		if err := p.write(target, entry.Value); err != nil {
			return err
		}
	}

	if _, ok := p.tok.Next(Tokens(TokenBeginScope), ignorable); ok {
		p.tok.Consume()
		return p.readBlock(path)
	}
	return nil
}

// readBlock reads the members of a scope opened at path, up to its closing brace.
func (p *parse) readBlock(path string) error {
	for {
		if _, ok := p.tok.Next(keyOrInclude, memberIgnorable); ok {
			if err := p.readKeys(path); err != nil {
				return err
			}
			continue
		}

		if _, ok := p.tok.Next(Tokens(TokenEndScope), memberIgnorable); ok {
			p.tok.Consume()
			return nil
		}

		return p.syntaxError(ExpectEndScopeOrProperty)
	}
}

func (p *parse) readArray() ([]any, error) {
	list := make([]any, 0)
	for {
		tok, ok := p.tok.Next(arrayTokens, ignorable)
		if !ok {
			return nil, p.syntaxError(ExpectArrayElement)
		}
		p.tok.Consume()

		switch tok.Type {
		case TokenEndArray:
			return list, nil
		case TokenArraySeparator:
			continue
		}

		value, present, err := p.value(tok)
		if err != nil {
			return nil, err
		}
		if present {
			list = append(list, value)
		}
	}
}

// value resolves a scalar or substitution token. present is false only for a
// safe substitution without a target.
func (p *parse) value(tok Token) (any, bool, error) {
	switch tok.Type {
	case TokenSubstitution, TokenSafeSubstitution:
		v, found, err := p.store.ReadOne(tok.Value)
		if err != nil {
			return nil, false, fmt.Errorf("failed to read %q: %w", tok.Value, err)
		}
		if !found {
			if tok.Type == TokenSafeSubstitution {
				return nil, false, nil
			}
			return nil, false, fmt.Errorf("%w: '%s'", ErrSubstitutionNotFound, tok.Value)
		}
		return v, true, nil
	default:
		v, err := literal(tok)
		if err != nil {
			return nil, false, err
		}
		return v, true, nil
	}
}

func (p *parse) write(path string, value any) error {
	var err error
	if IsNode(value) {
		err = p.store.WriteNode(path)
	} else {
		err = p.store.WriteValue(path, value)
	}
	if err != nil {
		return fmt.Errorf("failed to write %q: %w", path, err)
	}
	return nil
}
