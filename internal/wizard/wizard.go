// Package wizard collects the answers for a starter chart document and
// writes it as YAML.
package wizard

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/benchcard/benchcard/internal/assets"
	"github.com/benchcard/benchcard/internal/models"
	"github.com/benchcard/benchcard/internal/validation"
	"github.com/charmbracelet/huh"
	"golang.org/x/term"
	"gopkg.in/yaml.v3"
)

// Answers holds all fields collected during the interactive wizard.
type Answers struct {
	Title        string
	Subtitle     string
	ShowRankings bool
	Font         string
	// Models is a comma-separated list of "provider/name=score" pairs where
	// score is a percentage ("74.2") or a fraction ("37/50").
	Models string
}

// DefaultModels seeds the models prompt.
const DefaultModels = "anthropic/claude-sonnet-4=74.2, openai/gpt-5=75/100, google/gemini-2.5-pro=69.9"

// Run collects answers from in. A terminal gets an interactive huh form;
// anything else is read as one answer per line in prompt order, with blank
// lines keeping the defaults.
func Run(in io.Reader, out io.Writer, defaults Answers) (*Answers, error) {
	a := defaults
	if a.Models == "" {
		a.Models = DefaultModels
	}
	if a.Font == "" {
		a.Font = assets.DefaultFont
	}

	if f, ok := in.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		if err := newForm(&a).WithInput(in).WithOutput(out).Run(); err != nil {
			return nil, fmt.Errorf("wizard failed: %w", err)
		}
		return &a, nil
	}

	if err := runPlain(bufio.NewReader(in), out, &a); err != nil {
		return nil, err
	}
	return &a, nil
}

func newForm(a *Answers) *huh.Form {
	fontOpts := make([]huh.Option[string], 0, len(assets.FontKeys()))
	for _, k := range assets.FontKeys() {
		f, _ := assets.LookupFont(k)
		fontOpts = append(fontOpts, huh.NewOption(f.Label, f.Key))
	}

	return huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Chart title").
				Placeholder("Coding Benchmark").
				Value(&a.Title).
				Validate(validateTitle),
			huh.NewInput().
				Title("Subtitle").
				Description("Optional line under the title").
				Value(&a.Subtitle),
			huh.NewConfirm().
				Title("Show rank badges?").
				Value(&a.ShowRankings),
			huh.NewSelect[string]().
				Title("Font").
				Options(fontOpts...).
				Value(&a.Font),
		),
		huh.NewGroup(
			huh.NewText().
				Title("Models").
				Description("Comma-separated provider/name=score; score is a percent or positive/total").
				Value(&a.Models).
				Validate(func(s string) error {
					_, err := ParseModels(s)
					return err
				}),
		),
	)
}

// runPlain reads one answer per line: title, subtitle, show rankings
// (y/n), font and models.
func runPlain(r *bufio.Reader, out io.Writer, a *Answers) error {
	title, err := prompt(r, out, "Chart title", a.Title)
	if err != nil {
		return err
	}
	if err := validateTitle(title); err != nil {
		return err
	}
	a.Title = title

	if a.Subtitle, err = prompt(r, out, "Subtitle", a.Subtitle); err != nil {
		return err
	}

	rank := "n"
	if a.ShowRankings {
		rank = "y"
	}
	rank, err = prompt(r, out, "Show rank badges? (y/n)", rank)
	if err != nil {
		return err
	}
	switch strings.ToLower(rank) {
	case "y", "yes", "true":
		a.ShowRankings = true
	case "n", "no", "false":
		a.ShowRankings = false
	default:
		return fmt.Errorf("invalid answer %q: expected y or n", rank)
	}

	font, err := prompt(r, out, "Font ("+strings.Join(assets.FontKeys(), ", ")+")", a.Font)
	if err != nil {
		return err
	}
	if _, ok := assets.LookupFont(font); !ok {
		return fmt.Errorf("unknown font %q", font)
	}
	a.Font = font

	list, err := prompt(r, out, "Models (provider/name=score, ...)", a.Models)
	if err != nil {
		return err
	}
	if _, err := ParseModels(list); err != nil {
		return err
	}
	a.Models = list
	return nil
}

// prompt writes label and reads one line. An empty line returns def. Input
// that ends before a line is available is an error.
func prompt(r *bufio.Reader, out io.Writer, label, def string) (string, error) {
	if def != "" {
		fmt.Fprintf(out, "%s [%s]: ", label, def) //nolint:errcheck
	} else {
		fmt.Fprintf(out, "%s: ", label) //nolint:errcheck
	}

	line, err := r.ReadString('\n')
	if err != nil && !(errors.Is(err, io.EOF) && line != "") {
		if errors.Is(err, io.EOF) {
			return "", errors.New("unexpected end of input")
		}
		return "", err
	}
	line = strings.TrimSpace(line)
	if line == "" {
		return def, nil
	}
	return line, nil
}

func validateTitle(s string) error {
	if strings.TrimSpace(s) == "" {
		return errors.New("title is required")
	}
	return nil
}

// ParseModels parses "provider/name=score" pairs.
func ParseModels(s string) ([]models.ModelEntry, error) {
	var entries []models.ModelEntry
	for _, part := range strings.Split(s, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		name, score, ok := strings.Cut(part, "=")
		name, score = strings.TrimSpace(name), strings.TrimSpace(score)
		if !ok || name == "" || score == "" {
			return nil, fmt.Errorf("model %q: expected provider/name=score", part)
		}
		if !strings.Contains(name, "/") {
			return nil, fmt.Errorf("model %q: expected provider/name", name)
		}

		entry := models.ModelEntry{Model: name}
		if pos, tot, isFraction := strings.Cut(score, "/"); isFraction {
			p, err1 := strconv.Atoi(strings.TrimSpace(pos))
			t, err2 := strconv.Atoi(strings.TrimSpace(tot))
			if err1 != nil || err2 != nil {
				return nil, fmt.Errorf("model %q: score %q is not positive/total", name, score)
			}
			entry.Positive, entry.Total = &p, &t
		} else {
			v, err := strconv.ParseFloat(score, 64)
			if err != nil {
				return nil, fmt.Errorf("model %q: score %q is not a number", name, score)
			}
			entry.Percent = &v
		}
		entries = append(entries, entry)
	}
	if len(entries) == 0 {
		return nil, errors.New("at least one model is required")
	}
	return entries, nil
}

// GenerateYAML renders the answers as a chart document and checks that the
// result validates.
func GenerateYAML(a *Answers) ([]byte, error) {
	entries, err := ParseModels(a.Models)
	if err != nil {
		return nil, err
	}

	cfg := models.InputConfig{
		Title:        strings.TrimSpace(a.Title),
		Subtitle:     strings.TrimSpace(a.Subtitle),
		ShowRankings: a.ShowRankings,
		Models:       entries,
	}
	if a.Font != assets.DefaultFont {
		cfg.Font = a.Font
	}

	data, err := yaml.Marshal(&cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to render chart: %w", err)
	}
	if _, err := validation.Parse(data, validation.ParseOptions{}); err != nil {
		return nil, fmt.Errorf("generated chart is invalid: %w", err)
	}
	return data, nil
}
