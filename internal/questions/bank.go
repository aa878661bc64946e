// Package questions loads the question bank and selects questions by
// language and difficulty.
package questions

import (
	"bytes"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"math/rand/v2"
	"os"
	"slices"
	"strings"
	"sync"

	"github.com/abhisek/quizladder/internal/difficulty"
	"github.com/google/uuid"
	"github.com/santhosh-tekuri/jsonschema/v6"
)

// DefaultLanguage is used when no language has been chosen.
const DefaultLanguage = "en"

// SupportedLanguages are the languages a session may select.
var SupportedLanguages = []string{"en", "fr", "de"}

// ErrNoQuestions is returned when no question matches a filter.
var ErrNoQuestions = errors.New("no questions available")

// idNamespace derives stable question ids from their text and language.
var idNamespace = uuid.MustParse("6f1c2a34-3d1e-4c55-9a0b-8f5f0d5b7e21")

//go:embed bank.schema.json
var bankSchemaJSON []byte

//go:embed default_bank.json
var defaultBankJSON []byte

var compileBankSchema = sync.OnceValues(func() (*jsonschema.Schema, error) {
	doc, err := jsonschema.UnmarshalJSON(bytes.NewReader(bankSchemaJSON))
	if err != nil {
		return nil, fmt.Errorf("parse bank schema: %w", err)
	}
	c := jsonschema.NewCompiler()
	if err := c.AddResource("schema://questions.json", doc); err != nil {
		return nil, fmt.Errorf("add resource: %w", err)
	}
	return c.Compile("schema://questions.json")
})

// Question is one bank entry.
type Question struct {
	ID         string           `json:"id"`
	Question   string           `json:"question"`
	Options    []string         `json:"options,omitempty"`
	Answer     string           `json:"answer"`
	Difficulty difficulty.Level `json:"difficulty"`
	Language   string           `json:"language"`
	Tip        string           `json:"tip,omitempty"`
}

// Bank is an immutable set of questions.
type Bank struct {
	questions []Question
	byID      map[string]int
}

// Load reads and validates a bank file.
func Load(path string) (*Bank, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read question bank: %w", err)
	}
	b, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("question bank %s: %w", path, err)
	}
	return b, nil
}

// Default returns the bank compiled into the binary.
func Default() *Bank {
	b, err := Parse(defaultBankJSON)
	if err != nil {
		panic(fmt.Sprintf("embedded question bank: %v", err))
	}
	return b
}

// Parse validates raw bank JSON against the bank schema.
func Parse(data []byte) (*Bank, error) {
	doc, err := jsonschema.UnmarshalJSON(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("invalid JSON: %w", err)
	}
	schema, err := compileBankSchema()
	if err != nil {
		return nil, err
	}
	if err := schema.Validate(doc); err != nil {
		return nil, fmt.Errorf("schema validation failed: %w", err)
	}

	var qs []Question
	if err := json.Unmarshal(data, &qs); err != nil {
		return nil, fmt.Errorf("decode questions: %w", err)
	}
	return New(qs)
}

// New builds a bank from questions, assigning ids where missing.
func New(qs []Question) (*Bank, error) {
	b := &Bank{
		questions: make([]Question, 0, len(qs)),
		byID:      make(map[string]int, len(qs)),
	}
	for i, q := range qs {
		if !q.Difficulty.Valid() {
			return nil, fmt.Errorf("question %d: unknown difficulty %q", i, q.Difficulty)
		}
		if strings.TrimSpace(q.Question) == "" || strings.TrimSpace(q.Answer) == "" {
			return nil, fmt.Errorf("question %d: question and answer are required", i)
		}
		if q.ID == "" {
			q.ID = uuid.NewSHA1(idNamespace, []byte(q.Language+"\x00"+q.Question)).String()
		}
		if _, dup := b.byID[q.ID]; dup {
			return nil, fmt.Errorf("question %d: duplicate id %s", i, q.ID)
		}
		b.byID[q.ID] = len(b.questions)
		b.questions = append(b.questions, q)
	}
	return b, nil
}

// Len returns the number of questions.
func (b *Bank) Len() int {
	return len(b.questions)
}

// All returns every question in file order.
func (b *Bank) All() []Question {
	return slices.Clone(b.questions)
}

// Get looks a question up by id.
func (b *Bank) Get(id string) (Question, bool) {
	i, ok := b.byID[id]
	if !ok {
		return Question{}, false
	}
	return b.questions[i], true
}

// Filter returns questions in language at level. An empty language or
// level matches everything.
func (b *Bank) Filter(language string, level difficulty.Level) []Question {
	var out []Question
	for _, q := range b.questions {
		if language != "" && q.Language != language {
			continue
		}
		if level != "" && q.Difficulty != level {
			continue
		}
		out = append(out, q)
	}
	return out
}

// Pick returns a random question in language at level. r may be nil.
func (b *Bank) Pick(r *rand.Rand, language string, level difficulty.Level) (Question, error) {
	candidates := b.Filter(language, level)
	if len(candidates) == 0 {
		return Question{}, fmt.Errorf("%w for language %s and difficulty level: %s", ErrNoQuestions, language, level)
	}
	var i int
	if r != nil {
		i = r.IntN(len(candidates))
	} else {
		i = rand.IntN(len(candidates))
	}
	return candidates[i], nil
}

// Languages returns the distinct languages in the bank, sorted.
func (b *Bank) Languages() []string {
	var langs []string
	for _, q := range b.questions {
		if !slices.Contains(langs, q.Language) {
			langs = append(langs, q.Language)
		}
	}
	slices.Sort(langs)
	return langs
}

// SupportedLanguage reports whether lang can be selected.
func SupportedLanguage(lang string) bool {
	return slices.Contains(SupportedLanguages, lang)
}

// CheckAnswer compares answers trimmed and case-insensitively.
func CheckAnswer(q Question, answer string) bool {
	return normalize(answer) == normalize(q.Answer)
}

func normalize(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}
