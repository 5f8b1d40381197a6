package conversation

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// Reply is a canned assistant answer and the insights attached to it.
type Reply struct {
	Content  string    `yaml:"content" json:"content"`
	Insights []Insight `yaml:"insights,omitempty" json:"insights,omitempty"`
}

func (r Reply) clone() Reply {
	if r.Insights != nil {
		r.Insights = append([]Insight(nil), r.Insights...)
	}
	return r
}

// Catalog is the static table the policies and the transcriber draw from.
type Catalog struct {
	Text        []Reply  `yaml:"text"`
	Transcripts []string `yaml:"transcripts"`
	Voice       []string `yaml:"voice"`
}

// DefaultCatalog returns the built-in catalog: three typed replies, five voice
// transcripts and five spoken replies.
func DefaultCatalog() Catalog {
	return Catalog{
		Text: []Reply{
			{
				Content: "Based on your current portfolio, you're well-diversified with 38% in equity funds and 23% in debt funds. Your SIP performance shows consistent 11% returns.",
				Insights: []Insight{
					{Category: CategoryPositive, Title: "Portfolio Performance", Description: "Above average returns this year", MetricValue: "+11% YTD"},
					{Category: CategoryNeutral, Title: "Diversification Score", Description: "Good mix across asset classes", MetricValue: "8.5/10"},
				},
			},
			{
				Content: "Your emergency fund currently covers 4.2 months of expenses. Financial experts recommend 6-12 months. Consider increasing your liquid savings by ₹50,000.",
				Insights: []Insight{
					{Category: CategoryWarning, Title: "Emergency Fund", Description: "Below recommended 6-month threshold", MetricValue: "4.2 months"},
				},
			},
			{
				Content: "Great question! Your retirement planning is on track. With your current SIP of ₹15,000/month, you're projected to accumulate ₹2.8 crores by age 60.",
				Insights: []Insight{
					{Category: CategoryPositive, Title: "Retirement Corpus", Description: "On track to meet your goals", MetricValue: "₹2.8Cr"},
					{Category: CategoryNeutral, Title: "Monthly SIP", Description: "Consider increasing by 10% annually", MetricValue: "₹15,000"},
				},
			},
		},
		Transcripts: []string{
			"What's my current net worth?",
			"Show me my investment portfolio performance",
			"How much should I save for retirement?",
			"Analyze my spending patterns this month",
			"What's the best SIP amount for my goals?",
		},
		Voice: []string{
			"Your current net worth is ₹12.5 lakhs, up 8% from last month.",
			"Your portfolio is performing well with 12% returns this year.",
			"Based on your age and goals, I recommend saving ₹25,000 monthly.",
			"You've spent ₹45,000 this month, mostly on essentials and investments.",
			"For your goals, a ₹15,000 monthly SIP would be optimal.",
		},
	}
}

// LoadCatalog reads a YAML catalog from path and validates it.
func LoadCatalog(path string) (Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Catalog{}, fmt.Errorf("read catalog: %w", err)
	}
	var c Catalog
	if err := yaml.Unmarshal(data, &c); err != nil {
		return Catalog{}, fmt.Errorf("parse catalog: %w", err)
	}
	if err := c.Validate(); err != nil {
		return Catalog{}, fmt.Errorf("catalog %s: %w", path, err)
	}
	return c, nil
}

// Validate checks that every section has at least one entry and that no
// entry is blank.
func (c Catalog) Validate() error {
	var errs []error
	if len(c.Text) == 0 {
		errs = append(errs, errors.New("text: no replies"))
	}
	for i, r := range c.Text {
		if strings.TrimSpace(r.Content) == "" {
			errs = append(errs, fmt.Errorf("text[%d]: empty content", i))
		}
		for j, in := range r.Insights {
			if !in.Category.Valid() {
				errs = append(errs, fmt.Errorf("text[%d].insights[%d]: unknown category %q", i, j, in.Category))
			}
			if strings.TrimSpace(in.Title) == "" {
				errs = append(errs, fmt.Errorf("text[%d].insights[%d]: empty title", i, j))
			}
		}
	}
	errs = append(errs, checkLines("transcripts", c.Transcripts)...)
	errs = append(errs, checkLines("voice", c.Voice)...)
	return errors.Join(errs...)
}

func checkLines(section string, lines []string) []error {
	if len(lines) == 0 {
		return []error{fmt.Errorf("%s: no entries", section)}
	}
	var errs []error
	for i, l := range lines {
		if strings.TrimSpace(l) == "" {
			errs = append(errs, fmt.Errorf("%s[%d]: empty entry", section, i))
		}
	}
	return errs
}

// Marshal renders the catalog as YAML in the same shape LoadCatalog reads.
func (c Catalog) Marshal() ([]byte, error) {
	return yaml.Marshal(c)
}
