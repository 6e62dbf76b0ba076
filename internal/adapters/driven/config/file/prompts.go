package file

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/ehamchunbokulmeonge/pillmate-server/internal/core/ports/driven"
)

var _ driven.PromptStore = (*PromptStore)(nil)

//nolint:lll // prompt text
var defaultPrompts = map[string]string{
	driven.PromptSafetySystem: `You are a pharmacist assistant answering medication safety questions.
Base your answer on the provided drug safety records. If the records do not
cover the question, say so and recommend asking a pharmacist or doctor.
Answer in the language of the question.`,

	driven.PromptSafetyAnswer: "Drug safety records:\n" + driven.PlaceholderRecords +
		"\n\nQuestion: " + driven.PlaceholderQuestion,
}

const promptReadme = "# Pillmate prompts\n\n" +
	"Templates for `pillmate safety ask` and the ask_safety MCP tool.\n\n" +
	"- `safety_system.txt`: system prompt, no placeholders\n" +
	"- `safety_answer.txt`: user turn; `{{records}}` receives the numbered\n" +
	"  safety records and `{{question}}` the question. Both are required,\n" +
	"  otherwise the default template is used\n\n" +
	"Delete a file to get its default back on the next run.\n"

// DefaultPrompt returns the built-in template for name.
func DefaultPrompt(name string) (string, bool) {
	p, ok := defaultPrompts[name]
	return p, ok
}

// PromptStore serves templates from <dir>/<name>.txt. The first Load
// writes any missing default files; until then the directory is untouched.
// A missing, empty or unreadable file yields the built-in default.
type PromptStore struct {
	dir string

	seedOnce sync.Once
	seedErr  error

	mu     sync.RWMutex
	loaded map[string]string
}

// NewPromptStore roots the store at dir, or ~/.pillmate/prompts when dir
// is empty.
func NewPromptStore(dir string) (*PromptStore, error) {
	if dir == "" {
		home, err := DefaultDir()
		if err != nil {
			return nil, err
		}
		dir = filepath.Join(home, "prompts")
	}
	return &PromptStore{dir: dir, loaded: make(map[string]string)}, nil
}

func (s *PromptStore) Load(name string) (string, error) {
	s.seedOnce.Do(func() { s.seedErr = s.seed() })

	s.mu.RLock()
	prompt, ok := s.loaded[name]
	s.mu.RUnlock()
	if ok {
		return prompt, nil
	}

	if s.seedErr == nil {
		if text, err := s.read(name); err == nil && text != "" {
			s.mu.Lock()
			if cached, ok := s.loaded[name]; ok {
				text = cached
			} else {
				s.loaded[name] = text
			}
			s.mu.Unlock()
			return text, nil
		}
	}

	if def, ok := defaultPrompts[name]; ok {
		return def, nil
	}
	if s.seedErr != nil {
		return "", fmt.Errorf("prompt %q: %w", name, s.seedErr)
	}
	return "", fmt.Errorf("prompt %q: no file and no default", name)
}

// Reload forgets loaded templates so edits on disk are picked up.
func (s *PromptStore) Reload() {
	s.mu.Lock()
	s.loaded = make(map[string]string)
	s.mu.Unlock()
}

func (s *PromptStore) Dir() string { return s.dir }

func (s *PromptStore) read(name string) (string, error) {
	data, err := os.ReadFile(filepath.Join(s.dir, name+".txt"))
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(string(data)), nil
}

// seed creates the directory and writes defaults that are not on disk yet.
func (s *PromptStore) seed() error {
	if err := os.MkdirAll(s.dir, 0700); err != nil {
		return fmt.Errorf("create prompt directory: %w", err)
	}
	files := map[string]string{"README.md": promptReadme}
	for name, text := range defaultPrompts {
		files[name+".txt"] = text
	}
	for file, text := range files {
		if err := writeIfMissing(filepath.Join(s.dir, file), text); err != nil {
			return err
		}
	}
	return nil
}

func writeIfMissing(path, text string) error {
	_, err := os.Stat(path)
	if !errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	if err := os.WriteFile(path, []byte(text), 0600); err != nil {
		return fmt.Errorf("write %s: %w", filepath.Base(path), err)
	}
	return nil
}
