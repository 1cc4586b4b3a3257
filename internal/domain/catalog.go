package domain

type Garment struct {
	Slug           string
	Label          string
	Description    string
	Position       int
	AllowedRepairs []string
}

type RepairType struct {
	Slug        string
	Label       string
	Description string
	Position    int
}

type SiteSettings struct {
	Title             string
	ContactEmail      string
	OrderTemplateID   string
	ContactTemplateID string
	DefaultLocale     string
	SupportedLocales  []string
}

func RestrictionsFor(garments []Garment) Restrictions {
	r := make(Restrictions)
	for _, g := range garments {
		if len(g.AllowedRepairs) > 0 {
			r[g.Slug] = g.AllowedRepairs
		}
	}
	return r
}
