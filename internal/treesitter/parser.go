package treesitter

import (
	"context"
	"hash/fnv"
	"runtime"
	"sort"
	"strconv"
	"sync"
	"sync/atomic"

	tree_sitter "github.com/tree-sitter/go-tree-sitter"
	tree_sitter_c_sharp "github.com/tree-sitter/tree-sitter-c-sharp/bindings/go"
	tree_sitter_c "github.com/tree-sitter/tree-sitter-c/bindings/go"
	tree_sitter_cpp "github.com/tree-sitter/tree-sitter-cpp/bindings/go"
	tree_sitter_go "github.com/tree-sitter/tree-sitter-go/bindings/go"
	tree_sitter_java "github.com/tree-sitter/tree-sitter-java/bindings/go"
	tree_sitter_javascript "github.com/tree-sitter/tree-sitter-javascript/bindings/go"
	tree_sitter_php "github.com/tree-sitter/tree-sitter-php/bindings/go"
	tree_sitter_python "github.com/tree-sitter/tree-sitter-python/bindings/go"
	tree_sitter_ruby "github.com/tree-sitter/tree-sitter-ruby/bindings/go"
	tree_sitter_rust "github.com/tree-sitter/tree-sitter-rust/bindings/go"
	tree_sitter_typescript "github.com/tree-sitter/tree-sitter-typescript/bindings/go"
)

// languageParser wraps a single tree-sitter parser instance.
type languageParser struct {
	parser    *tree_sitter.Parser
	closeOnce sync.Once
}

func newLanguageParser() *languageParser {
	return &languageParser{parser: tree_sitter.NewParser()}
}

func (lp *languageParser) close() {
	if lp == nil {
		return
	}
	lp.closeOnce.Do(func() {
		lp.parser.Close()
	})
}

// parserPool manages a fixed number of reusable *tree_sitter.Parser
// instances. Parsers are stateless between calls once SetLanguage is
// reapplied, so a single pool serves every language.
type parserPool struct {
	parsers chan *languageParser
	closed  atomic.Bool
	holders sync.WaitGroup
}

func newParserPool(size int) *parserPool {
	if size <= 0 {
		size = defaultPoolSize()
	}
	p := &parserPool{parsers: make(chan *languageParser, size)}
	for range size {
		p.parsers <- newLanguageParser()
	}
	return p
}

func defaultPoolSize() int {
	if n := runtime.NumCPU(); n > 0 {
		return n
	}
	return 1
}

func (p *parserPool) acquire() *languageParser {
	p.holders.Add(1)
	return <-p.parsers
}

func (p *parserPool) release(lp *languageParser) {
	defer p.holders.Done()
	if p.closed.Load() {
		lp.close()
		return
	}
	p.parsers <- lp
}

func (p *parserPool) close() {
	p.closed.Store(true)
	p.holders.Wait()
	for {
		select {
		case lp := <-p.parsers:
			lp.close()
		default:
			return
		}
	}
}

// manager is the default Manager implementation.
type manager struct {
	pool      *parserPool
	languages []string
	langSet   map[string]struct{}
	langs     map[string]*tree_sitter.Language
	cache     *Cache
}

// ManagerConfig configures parser pool and tree-cache sizing.
type ManagerConfig struct {
	// PoolSize bounds concurrent parsers. Zero uses runtime.NumCPU().
	PoolSize int
	// CacheEntries bounds the tree LRU. Zero uses the package default.
	CacheEntries int
	// CacheMaxBytes bounds estimated cache memory. Zero uses the package default.
	CacheMaxBytes int64
}

// NewManager creates a Manager with runtime defaults.
func NewManager() Manager {
	return NewManagerWithConfig(ManagerConfig{})
}

// NewManagerWithConfig creates a Manager with explicit pool/cache sizing.
func NewManagerWithConfig(cfg ManagerConfig) Manager {
	langs := map[string]*tree_sitter.Language{
		"c":          tree_sitter.NewLanguage(tree_sitter_c.Language()),
		"cpp":        tree_sitter.NewLanguage(tree_sitter_cpp.Language()),
		"csharp":     tree_sitter.NewLanguage(tree_sitter_c_sharp.Language()),
		"go":         tree_sitter.NewLanguage(tree_sitter_go.Language()),
		"java":       tree_sitter.NewLanguage(tree_sitter_java.Language()),
		"javascript": tree_sitter.NewLanguage(tree_sitter_javascript.Language()),
		"php":        tree_sitter.NewLanguage(tree_sitter_php.LanguagePHP()),
		"python":     tree_sitter.NewLanguage(tree_sitter_python.Language()),
		"ruby":       tree_sitter.NewLanguage(tree_sitter_ruby.Language()),
		"rust":       tree_sitter.NewLanguage(tree_sitter_rust.Language()),
		"typescript": tree_sitter.NewLanguage(tree_sitter_typescript.LanguageTypescript()),
	}

	names := make([]string, 0, len(langs))
	set := make(map[string]struct{}, len(langs))
	for name := range langs {
		names = append(names, name)
		set[name] = struct{}{}
	}
	sort.Strings(names)

	return &manager{
		pool:      newParserPool(cfg.PoolSize),
		languages: names,
		langSet:   set,
		langs:     langs,
		cache:     NewCache(cfg.CacheEntries, cfg.CacheMaxBytes),
	}
}

func (m *manager) SupportedLanguages() []string {
	out := make([]string, len(m.languages))
	copy(out, m.languages)
	return out
}

func (m *manager) SupportsLanguage(lang string) bool {
	_, ok := m.langSet[lang]
	return ok
}

func (m *manager) Parse(ctx context.Context, lang string, path string, content []byte) (*tree_sitter.Tree, error) {
	tsLang, ok := m.langs[lang]
	if !ok {
		return nil, &ErrUnsupportedLanguage{Lang: lang}
	}

	key := treeCacheKey(lang, path, content)
	if tree, ok := m.cache.Get(key); ok {
		return tree, nil
	}

	lp := m.pool.acquire()
	defer m.pool.release(lp)

	if err := lp.parser.SetLanguage(tsLang); err != nil {
		return nil, err
	}

	_ = ctx
	tree := lp.parser.Parse(content, nil)
	if tree == nil {
		return nil, nil
	}
	m.cache.Put(key, tree, content)
	return tree.Clone(), nil
}

func (m *manager) Close() error {
	m.pool.close()
	return m.cache.Close()
}

func treeCacheKey(lang, path string, content []byte) string {
	h := fnv.New64a()
	_, _ = h.Write(content)
	hash := h.Sum64()

	buf := make([]byte, 0, len(lang)+1+len(path)+1+19+1+16)
	buf = append(buf, lang...)
	buf = append(buf, ':')
	buf = append(buf, path...)
	buf = append(buf, ':')
	buf = strconv.AppendInt(buf, int64(len(content)), 10)
	buf = append(buf, ':')
	buf = strconv.AppendUint(buf, hash, 16)
	return string(buf)
}
