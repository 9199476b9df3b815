package models

// Missing-value sentinels the extraction instruction tells the model to use
// in place of data it cannot find on the page.
const (
	SentinelEN = "Unknown"
	SentinelTR = "Bilinmiyor"
)

// NutritionRecord is the structured nutrition data extracted from one page.
// All nutrient fields are strings carrying value plus unit ("47 kcal");
// missing values hold the locale sentinel rather than being absent.
type NutritionRecord struct {
	Calories        string            `json:"calories"`
	Protein         string            `json:"protein"`
	Sugar           string            `json:"sugar"`
	Carbohydrates   string            `json:"carbohydrates"`
	Fat             string            `json:"fat"`
	ServingSize     string            `json:"serving_size"`
	Allergens       []string          `json:"allergens,omitempty"`
	VitaminMinerals map[string]string `json:"vitamin_minerals,omitempty"`
	SourceURL       string            `json:"source_url"`
}

// substantiveFields returns the nutrient fields that count toward
// validation. Allergens, vitamin/mineral content and source metadata are
// deliberately excluded.
func (r *NutritionRecord) substantiveFields() []string {
	return []string{
		r.Calories,
		r.Protein,
		r.Sugar,
		r.Carbohydrates,
		r.Fat,
		r.ServingSize,
	}
}

// HasSubstantiveField reports whether at least one nutrient field holds a
// real value, i.e. one that is neither empty nor the given missing-value
// sentinel. A record where every field is the sentinel is still a usable
// fallback response, just not a validated one.
func (r *NutritionRecord) HasSubstantiveField(sentinel string) bool {
	for _, v := range r.substantiveFields() {
		if v != "" && v != sentinel {
			return true
		}
	}
	return false
}
