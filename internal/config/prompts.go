package config

import (
	"bytes"
	"fmt"
	"os"
	"strings"
	"text/template"

	"gopkg.in/yaml.v3"
)

// LocalePrompts holds the per-locale search query template, the extraction
// instruction sent to the LLM, and the missing-value sentinel the
// instruction tells the model to use.
type LocalePrompts struct {
	QueryTemplate string `yaml:"query_template"`
	Instruction   string `yaml:"instruction"`
	Sentinel      string `yaml:"sentinel"`
}

// Prompts is the top-level prompt configuration.
type Prompts struct {
	DefaultLocale string                   `yaml:"default_locale"`
	Locales       map[string]LocalePrompts `yaml:"locales"`
}

const instructionTR = `Web sayfasındaki besin değerlerini analiz et ve tek bir JSON objesi olarak döndür.
Yanıt, verilen şemaya (calories, protein, sugar, carbohydrates, fat, serving_size, allergens, vitamin_minerals) tam olarak uymalı.
Eğer bir veri eksikse, o alanı 'Bilinmiyor' olarak doldur.
Sayfada birden fazla besin bilgisi varsa, en belirgin olanı (örneğin, 100g veya ana ürün) seç.
Metrik birimler (kcal, g, mg) kullan, bir boşlukla ayır (örneğin, '47 kcal').
Alerjen yoksa boş liste ([]) döndür, vitamin-mineral içeriğini ekle.`

const instructionEN = `Analyze the nutrition facts on the webpage and return them as a single JSON object.
The response must exactly match the given schema (calories, protein, sugar, carbohydrates, fat, serving_size, allergens, vitamin_minerals).
If any data is missing, fill that field with 'Unknown'.
If there are multiple nutrition facts on the page, choose the most prominent one (e.g., 100g or main product).
Use metric units (kcal, g, mg) with a space (e.g., '47 kcal').
Return an empty list ([]) for allergens if none, and include vitamin-mineral content if available.`

// DefaultPrompts returns the compiled-in prompt set. The instruction text is
// part of the contract with the extraction model and must not drift from the
// sentinel and field names the rest of the pipeline expects.
func DefaultPrompts() *Prompts {
	return &Prompts{
		DefaultLocale: "tr",
		Locales: map[string]LocalePrompts{
			"tr": {
				QueryTemplate: "{{.FoodName}} besin değeri",
				Instruction:   instructionTR,
				Sentinel:      "Bilinmiyor",
			},
			"en": {
				QueryTemplate: "{{.FoodName}} nutrition facts",
				Instruction:   instructionEN,
				Sentinel:      "Unknown",
			},
		},
	}
}

// LoadPrompts reads and parses a YAML prompt configuration file.
func LoadPrompts(path string) (*Prompts, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read prompts file: %w", err)
	}

	var prompts Prompts
	if err := yaml.Unmarshal(data, &prompts); err != nil {
		return nil, fmt.Errorf("failed to parse prompts YAML: %w", err)
	}

	if prompts.DefaultLocale == "" {
		return nil, fmt.Errorf("prompts file %s: default_locale is required", path)
	}
	if _, ok := prompts.Locales[prompts.DefaultLocale]; !ok {
		return nil, fmt.Errorf("prompts file %s: default locale %q has no prompt set", path, prompts.DefaultLocale)
	}

	return &prompts, nil
}

// Locale returns the prompt set for the given language code. Unsupported
// codes fall back to the default locale, so the lookup is total over all
// input strings.
func (p *Prompts) Locale(language string) LocalePrompts {
	if lp, ok := p.Locales[language]; ok {
		return lp
	}
	return p.Locales[p.DefaultLocale]
}

// BuildQuery renders the locale's search query template for a food name.
func (lp LocalePrompts) BuildQuery(foodName string) (string, error) {
	return RenderPrompt(lp.QueryTemplate, map[string]interface{}{
		"FoodName": foodName,
	})
}

// RenderPrompt executes Go template interpolation on a prompt string.
func RenderPrompt(tmpl string, data map[string]interface{}) (string, error) {
	t, err := template.New("prompt").Parse(tmpl)
	if err != nil {
		return "", fmt.Errorf("failed to parse prompt template: %w", err)
	}

	var buf bytes.Buffer
	if err := t.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("failed to render prompt template: %w", err)
	}

	return strings.TrimSpace(buf.String()), nil
}
