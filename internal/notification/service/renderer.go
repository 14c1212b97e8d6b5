// Package service provides the notification rendering and channel provider
// implementations.
package service

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"path"
	"regexp"
	"sync"

	outboxDomain "github.com/reservehq/reserve-outbox/internal/outbox/domain"
)

// tokenPattern matches well-formed {{token}} placeholders. Anything else,
// including malformed or empty {{}} forms, passes through unchanged.
var tokenPattern = regexp.MustCompile(`\{\{(\w+)\}\}`)

// Renderer loads per-(locale, event) plain-text templates and interpolates
// variables. Missing locale-specific templates fall back to the default
// locale with a logged warning; only a missing default-locale template is an
// error. Loaded templates are cached for the life of the process; templates
// are static deploy-time assets.
type Renderer struct {
	fsys          fs.FS
	defaultLocale string
	logger        *slog.Logger

	mu    sync.RWMutex
	cache map[string]string
}

// NewRenderer creates a Renderer over the given template file system.
// Templates live at <locale>/<name>.txt.
func NewRenderer(fsys fs.FS, defaultLocale string, logger *slog.Logger) *Renderer {
	if defaultLocale == "" {
		defaultLocale = "en"
	}
	return &Renderer{
		fsys:          fsys,
		defaultLocale: defaultLocale,
		logger:        logger,
		cache:         make(map[string]string),
	}
}

// Render loads the template for (language, name) and interpolates variables.
// A present variable is stringified and substituted; an absent variable
// renders as the empty string.
func (r *Renderer) Render(language, name string, variables map[string]any) (string, error) {
	text, err := r.load(language, name)
	if err != nil {
		return "", err
	}

	return Interpolate(text, variables), nil
}

// load resolves the template text with locale fallback, consulting the cache
// first. Only successful loads are cached, one write per key.
func (r *Renderer) load(language, name string) (string, error) {
	key := language + "/" + name

	r.mu.RLock()
	text, ok := r.cache[key]
	r.mu.RUnlock()
	if ok {
		return text, nil
	}

	text, err := r.read(language, name)
	if err != nil {
		if !errors.Is(err, fs.ErrNotExist) {
			return "", err
		}
		if language == r.defaultLocale {
			// Templates are deploy-time assets; a gap in the default locale
			// cannot be fixed by retrying.
			return "", outboxDomain.Permanentf("template %q missing for default locale %q", name, r.defaultLocale)
		}

		r.logger.Warn("template missing for locale, falling back to default",
			slog.String("language", language),
			slog.String("template", name),
			slog.String("default_locale", r.defaultLocale),
		)

		text, err = r.read(r.defaultLocale, name)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return "", outboxDomain.Permanentf("template %q missing for default locale %q", name, r.defaultLocale)
			}
			return "", err
		}
	}

	r.mu.Lock()
	if cached, ok := r.cache[key]; ok {
		text = cached
	} else {
		r.cache[key] = text
	}
	r.mu.Unlock()

	return text, nil
}

// read loads one template file without fallback.
func (r *Renderer) read(language, name string) (string, error) {
	data, err := fs.ReadFile(r.fsys, path.Join(language, name+".txt"))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return "", fmt.Errorf("template %s/%s: %w", language, name, err)
		}
		return "", outboxDomain.Transient(fmt.Errorf("read template %s/%s: %w", language, name, err))
	}
	return string(data), nil
}

// Interpolate substitutes {{token}} placeholders from variables. Absent
// variables render as the empty string; any other text passes through
// unchanged.
func Interpolate(text string, variables map[string]any) string {
	return tokenPattern.ReplaceAllStringFunc(text, func(match string) string {
		token := match[2 : len(match)-2]
		value, ok := variables[token]
		if !ok {
			return ""
		}
		return fmt.Sprintf("%v", value)
	})
}
