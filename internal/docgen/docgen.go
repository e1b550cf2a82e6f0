// Package docgen renders cover letters and cold messages from the job and
// the applicant's profile using a localized template catalog.
package docgen

import (
	_ "embed"
	"errors"
	"fmt"
	"math/rand/v2"
	"strings"
	"sync"
	"text/template"
	"time"

	"github.com/jobseeker-app/apiserver/types"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"gopkg.in/yaml.v3"
)

// Model is reported in generation metadata.
const Model = "template-v1"

const (
	minTokens     = 200
	tokenSpread   = 500
	minLatencyMS  = 1000
	latencySpread = 3000
)

var (
	ErrUnsupportedLanguage = errors.New("unsupported language")
	ErrUnsupportedTone     = errors.New("unsupported tone")
	ErrUnsupportedKind     = errors.New("unsupported document kind")
)

//go:embed templates.yaml
var catalogYAML []byte

type catalog struct {
	Languages map[string]languagePack `yaml:"languages"`
}

type languagePack struct {
	DefaultIndustries string                        `yaml:"default_industries"`
	DefaultModality   string                        `yaml:"default_modality"`
	Modalities        map[string]string             `yaml:"modalities"`
	Salary            salaryFormats                 `yaml:"salary"`
	Tones             map[types.Tone]tonePhrases    `yaml:"tones"`
	Documents         map[types.DocumentKind]string `yaml:"documents"`
}

type salaryFormats struct {
	Range string `yaml:"range"`
	From  string `yaml:"from"`
	UpTo  string `yaml:"up_to"`
}

type tonePhrases struct {
	Greeting string `yaml:"greeting"`
	Interest string `yaml:"interest"`
	Closing  string `yaml:"closing"`
	SignOff  string `yaml:"sign_off"`
	Hello    string `yaml:"hello"`
	Ask      string `yaml:"ask"`
}

type renderData struct {
	Tone        tonePhrases
	FullName    string
	JobTitle    string
	CompanyName string
	Location    string
	Years       int
	Industries  string
	Modality    string
	Salary      string
	Context     string
}

type compiledLanguage struct {
	pack      languagePack
	printer   *message.Printer
	templates map[types.DocumentKind]*template.Template
}

// Generator renders documents. It is safe for concurrent use.
type Generator struct {
	languages map[string]compiledLanguage

	mu  sync.Mutex
	rnd *rand.Rand
}

// Option configures a Generator.
type Option func(*Generator)

// WithRand replaces the source used for the mock generation metadata.
func WithRand(rnd *rand.Rand) Option {
	return func(g *Generator) {
		g.rnd = rnd
	}
}

// New parses the embedded catalog.
func New(opts ...Option) (*Generator, error) {
	var c catalog
	if err := yaml.Unmarshal(catalogYAML, &c); err != nil {
		return nil, fmt.Errorf("parse template catalog: %w", err)
	}

	g := &Generator{
		languages: make(map[string]compiledLanguage, len(c.Languages)),
		rnd:       rand.New(rand.NewPCG(uint64(time.Now().UnixNano()), 0x6a6f62)),
	}
	for code, pack := range c.Languages {
		tag, err := language.Parse(code)
		if err != nil {
			return nil, fmt.Errorf("language %q: %w", code, err)
		}
		compiled := compiledLanguage{
			pack:      pack,
			printer:   message.NewPrinter(tag),
			templates: make(map[types.DocumentKind]*template.Template, len(pack.Documents)),
		}
		for kind, body := range pack.Documents {
			tmpl, err := template.New(code + "/" + string(kind)).Option("missingkey=error").Parse(body)
			if err != nil {
				return nil, fmt.Errorf("template %s/%s: %w", code, kind, err)
			}
			compiled.templates[kind] = tmpl
		}
		g.languages[code] = compiled
	}
	for _, opt := range opts {
		opt(g)
	}
	return g, nil
}

// Languages lists the supported language codes.
func (g *Generator) Languages() []string {
	codes := make([]string, 0, len(g.languages))
	for code := range g.languages {
		codes = append(codes, code)
	}
	return codes
}

// Render fills the template for req.Kind in req.Language.
func (g *Generator) Render(job types.Job, profile types.Profile, req types.DocumentRequest) (string, error) {
	lang, ok := g.languages[req.Language]
	if !ok {
		return "", fmt.Errorf("%w: %q", ErrUnsupportedLanguage, req.Language)
	}
	tone, ok := lang.pack.Tones[req.Tone]
	if !ok {
		return "", fmt.Errorf("%w: %q", ErrUnsupportedTone, req.Tone)
	}
	tmpl, ok := lang.templates[req.Kind]
	if !ok {
		return "", fmt.Errorf("%w: %q", ErrUnsupportedKind, req.Kind)
	}

	data := renderData{
		Tone:        tone,
		FullName:    strings.TrimSpace(profile.FullName),
		JobTitle:    strings.TrimSpace(job.Title),
		CompanyName: strings.TrimSpace(job.CompanyName),
		Location:    joinNonEmpty(", ", job.City, job.Country),
		Years:       profile.YearsExperience,
		Industries:  joinNonEmpty(", ", profile.Industries...),
		Modality:    lang.pack.Modalities[string(profile.WorkModalityPreferred)],
		Salary:      lang.salary(job),
		Context:     strings.TrimSpace(req.AdditionalContext),
	}
	if data.Industries == "" {
		data.Industries = lang.pack.DefaultIndustries
	}
	if data.Modality == "" {
		data.Modality = lang.pack.DefaultModality
	}

	var b strings.Builder
	if err := tmpl.Execute(&b, data); err != nil {
		return "", fmt.Errorf("render %s: %w", req.Kind, err)
	}
	return strings.TrimSpace(b.String()), nil
}

// Generate renders the document and attaches generation metadata.
func (g *Generator) Generate(job types.Job, profile types.Profile, req types.DocumentRequest) (types.GeneratedDocument, error) {
	content, err := g.Render(job, profile, req)
	if err != nil {
		return types.GeneratedDocument{}, err
	}

	g.mu.Lock()
	tokens := minTokens + g.rnd.IntN(tokenSpread)
	latency := minLatencyMS + g.rnd.IntN(latencySpread)
	g.mu.Unlock()

	return types.GeneratedDocument{
		Kind:    req.Kind,
		Content: content,
		Metadata: types.GenerationMetadata{
			TokensUsed:       tokens,
			Model:            Model,
			GenerationTimeMS: latency,
			Tone:             req.Tone,
			Language:         req.Language,
		},
	}, nil
}

func (l compiledLanguage) salary(job types.Job) string {
	currency := job.SalaryCurrency
	switch {
	case job.SalaryMin != nil && job.SalaryMax != nil:
		return l.printer.Sprintf(l.pack.Salary.Range, *job.SalaryMin, *job.SalaryMax, currency)
	case job.SalaryMin != nil:
		return l.printer.Sprintf(l.pack.Salary.From, *job.SalaryMin, currency)
	case job.SalaryMax != nil:
		return l.printer.Sprintf(l.pack.Salary.UpTo, *job.SalaryMax, currency)
	}
	return ""
}

func joinNonEmpty(sep string, parts ...string) string {
	kept := make([]string, 0, len(parts))
	for _, part := range parts {
		if part = strings.TrimSpace(part); part != "" {
			kept = append(kept, part)
		}
	}
	return strings.Join(kept, sep)
}
