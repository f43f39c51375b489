package wizard

import "reportdesk/internal/common/config"

// Industry groups the report types offered for one industry.
type Industry struct {
	Name        string   `json:"name" yaml:"name"`
	ReportTypes []string `json:"reportTypes" yaml:"reportTypes"`
}

// Catalog holds the choices presented by the first four steps.
type Catalog struct {
	Industries   []Industry `json:"industries" yaml:"industries"`
	Audiences    []string   `json:"audiences" yaml:"audiences"`
	Purposes     []string   `json:"purposes" yaml:"purposes"`
	Tones        []string   `json:"tones" yaml:"tones"`
	Depths       []string   `json:"depths" yaml:"depths"`
	DefaultTone  string     `json:"defaultTone" yaml:"defaultTone"`
	DefaultDepth string     `json:"defaultDepth" yaml:"defaultDepth"`
}

func DefaultCatalog() Catalog {
	return Catalog{
		Industries: []Industry{
			{Name: "Finance", ReportTypes: []string{"Financial Analysis", "Tax Planning", "Investment Strategy", "Retirement Planning"}},
			{Name: "Banking", ReportTypes: []string{"Loan Assessment", "Credit Analysis", "Affordability Report"}},
			{Name: "Insurance", ReportTypes: []string{"Coverage Analysis", "Gap Assessment", "Risk Evaluation"}},
			{Name: "Capital Markets", ReportTypes: []string{"Investment Comparison", "Market Analysis", "Portfolio Review"}},
			{Name: "Corporate Finance", ReportTypes: []string{"Cash Flow Analysis", "Financial Projection"}},
			{Name: "Startups", ReportTypes: []string{"Burn Rate Analysis", "Runway Projection", "Funding Strategy"}},
			{Name: "Real Estate", ReportTypes: []string{"ROI Analysis", "Rent vs Buy", "Property Valuation"}},
		},
		Audiences:    []string{"Self", "Financial Advisor", "Business", "Investor", "Executive", "General"},
		Purposes:     []string{"Planning", "Decision Making", "Compliance", "Investment", "Advisory"},
		Tones:        []string{"Professional", "Casual", "Technical", "Simple"},
		Depths:       []string{"Quick Overview", "Balanced", "Comprehensive", "Detailed Analysis"},
		DefaultTone:  "Professional",
		DefaultDepth: "Comprehensive",
	}
}

// CatalogFrom applies the configured overrides on top of the defaults.
func CatalogFrom(cfg config.WizardConfig) Catalog {
	c := DefaultCatalog()
	if len(cfg.Industries) > 0 {
		c.Industries = make([]Industry, 0, len(cfg.Industries))
		for _, ind := range cfg.Industries {
			c.Industries = append(c.Industries, Industry{Name: ind.Name, ReportTypes: append([]string(nil), ind.ReportTypes...)})
		}
	}
	if len(cfg.Audiences) > 0 {
		c.Audiences = cfg.Audiences
	}
	if len(cfg.Purposes) > 0 {
		c.Purposes = cfg.Purposes
	}
	if len(cfg.Tones) > 0 {
		c.Tones = cfg.Tones
	}
	if len(cfg.Depths) > 0 {
		c.Depths = cfg.Depths
	}
	if cfg.DefaultTone != "" {
		c.DefaultTone = cfg.DefaultTone
	}
	if cfg.DefaultDepth != "" {
		c.DefaultDepth = cfg.DefaultDepth
	}
	return c
}

func (c Catalog) IndustryNames() []string {
	names := make([]string, 0, len(c.Industries))
	for _, ind := range c.Industries {
		names = append(names, ind.Name)
	}
	return names
}

// ReportTypes returns the report types of industry and whether the industry
// is part of the catalog.
func (c Catalog) ReportTypes(industry string) ([]string, bool) {
	for _, ind := range c.Industries {
		if ind.Name == industry {
			return ind.ReportTypes, true
		}
	}
	return nil, false
}

func contains(list []string, v string) bool {
	for _, s := range list {
		if s == v {
			return true
		}
	}
	return false
}
