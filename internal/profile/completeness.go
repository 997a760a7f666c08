package profile

import "fmt"

// Completeness summarizes how much of the mandatory taxonomy a profile
// covers. The agency block always counts; site and service blocks count per
// entry actually discovered.
type Completeness struct {
	// Score is filled mandatory fields over total mandatory fields, 0 to 100.
	Score  float64
	Filled int
	Total  int
	// Missing lists absent mandatory fields as "Section: Field" lines in
	// report order.
	Missing []string
}

// Completeness audits the profile against the mandatory field registry. The
// gaps reported here, not the model's running still-missing list, decide
// review flags and the report's missing section.
func (p Profile) Completeness() Completeness {
	var c Completeness
	c.countBlock(p.Agency, ScopeAgency, "Agency")
	for i, site := range p.Sites {
		c.countBlock(site, ScopeSite, entryLabel("Site", i, site))
	}
	for i, svc := range p.Services {
		c.countBlock(svc, ScopeService, entryLabel("Service", i, svc))
	}
	if c.Total > 0 {
		c.Score = float64(c.Filled) / float64(c.Total) * 100
	}
	return c
}

func (c *Completeness) countBlock(fields FieldMap, scope Scope, section string) {
	for _, label := range MandatoryFields(scope) {
		c.Total++
		if value, ok := fields[label]; ok && !IsPlaceholder(value) {
			c.Filled++
			continue
		}
		c.Missing = append(c.Missing, fmt.Sprintf("%s: %s", section, label))
	}
}

func entryLabel(kind string, idx int, fields FieldMap) string {
	if name := fields[FieldName]; name != "" && !IsPlaceholder(name) {
		return fmt.Sprintf("%s %d (%s)", kind, idx+1, name)
	}
	return fmt.Sprintf("%s %d", kind, idx+1)
}
