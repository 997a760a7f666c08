package profile

import "strings"

// Scope identifies which block of a profile a field belongs to.
type Scope string

const (
	ScopeAgency  Scope = "agency"
	ScopeSite    Scope = "site"
	ScopeService Scope = "service"
)

// Canonical field labels. Values follow the information-and-referral taxonomy
// the extraction prompt asks the model to use, so merged profiles and rendered
// reports share one vocabulary.
const (
	FieldAgencyName     = "Agency Name"
	FieldAKANames       = "AKA Names"
	FieldLegalStatus    = "Legal Status"
	FieldPhoneNumbers   = "Phone Numbers"
	FieldWebsiteURLs    = "Website URLs"
	FieldEmailAddresses = "Email Addresses"
	FieldDirector       = "Name/Title of Director/Manager"
	FieldDescription    = "Description"
	FieldHours          = "Days/Hours of Operation"

	FieldName           = "Name"
	FieldStreetAddress  = "Street/Physical Address"
	FieldMailingAddress = "Mailing Address"

	FieldEligibility    = "Eligibility"
	FieldGeographicArea = "Geographic Area Served"
	FieldDocuments      = "Documents Required"
	FieldIntake         = "Application/Intake Process"
	FieldFees           = "Fees/Payment Options"
	FieldTaxonomyTerms  = "Taxonomy Terms (Services/Targets)"

	FieldFEIN             = "Federal Employer Identification Number"
	FieldLicenses         = "Licenses or Accreditation"
	FieldDisabilityAccess = "Physical/Programmatic Access for People with Disabilities"
	FieldLanguages        = "Languages Consistently Available"
	FieldSocialMedia      = "Social Media Presence"
)

var agencyMandatoryFields = []string{
	FieldAgencyName,
	FieldAKANames,
	FieldLegalStatus,
	FieldPhoneNumbers,
	FieldWebsiteURLs,
	FieldEmailAddresses,
	FieldDirector,
	FieldDescription,
	FieldHours,
}

var siteMandatoryFields = []string{
	FieldName,
	FieldAKANames,
	FieldStreetAddress,
	FieldMailingAddress,
	FieldPhoneNumbers,
}

var serviceMandatoryFields = []string{
	FieldName,
	FieldAKANames,
	FieldPhoneNumbers,
	FieldDescription,
	FieldHours,
	FieldEligibility,
	FieldGeographicArea,
	FieldDocuments,
	FieldIntake,
	FieldFees,
	FieldTaxonomyTerms,
}

var recommendedFields = []string{
	FieldFEIN,
	FieldLicenses,
	FieldDisabilityAccess,
	FieldLanguages,
	FieldSocialMedia,
}

// Aliases the model produces in practice, mapped to canonical labels.
var fieldAliases = map[string][]string{
	FieldAKANames:       {"AKA (Also Known As) Names", "Also Known As", "Alternate Names"},
	FieldPhoneNumbers:   {"Phone", "Phone Number", "Telephone", "Telephone Numbers"},
	FieldWebsiteURLs:    {"Website", "Website URL", "Websites", "Web Site"},
	FieldEmailAddresses: {"Email", "Email Address", "Emails", "E-mail"},
	FieldDirector:       {"Name/Title of Director or Manager", "Director", "Director/Manager", "Name and Title of Director/Manager"},
	FieldHours:          {"Hours", "Hours of Operation", "Days and Hours of Operation", "Operating Hours"},
	FieldStreetAddress:  {"Address", "Physical Address", "Street Address"},
	FieldGeographicArea: {"Geographic Area", "Service Area", "Area Served"},
	FieldDocuments:      {"Documents", "Required Documents"},
	FieldIntake:         {"Application Process", "Intake Process", "How to Apply"},
	FieldFees:           {"Fees", "Payment Options", "Cost"},
	FieldTaxonomyTerms:  {"Taxonomy Terms", "Taxonomy"},
	FieldFEIN:           {"FEIN", "EIN", "Federal EIN"},
	FieldLicenses:       {"Licenses/Accreditation", "Licenses", "Accreditation"},
	FieldDisabilityAccess: {
		"Disability Access",
		"Accessibility",
		"Physical/Programmatic Access for People with Disabilities (Disability Access)",
	},
	FieldLanguages:   {"Languages", "Languages Spoken", "Languages Available"},
	FieldSocialMedia: {"Social Media", "Social Media Links"},
}

// scopeFields maps each scope to the labels it accepts. Recommended fields
// attach to the agency block.
var scopeFields = map[Scope][]string{
	ScopeAgency:  append(append([]string{}, agencyMandatoryFields...), recommendedFields...),
	ScopeSite:    siteMandatoryFields,
	ScopeService: serviceMandatoryFields,
}

var scopeLookup = func() map[Scope]map[string]string {
	lookup := make(map[Scope]map[string]string, len(scopeFields))
	for scope, fields := range scopeFields {
		byKey := make(map[string]string)
		for _, field := range fields {
			byKey[foldLabel(field)] = field
			for _, alias := range fieldAliases[field] {
				byKey[foldLabel(alias)] = field
			}
		}
		lookup[scope] = byKey
	}
	return lookup
}()

// foldLabel reduces a label to a comparison key: lowercase alphanumerics only.
func foldLabel(label string) string {
	var sb strings.Builder
	for _, r := range strings.ToLower(label) {
		if r >= 'a' && r <= 'z' || r >= '0' && r <= '9' {
			sb.WriteRune(r)
		}
	}
	return sb.String()
}

// CanonicalLabel resolves a model-produced label to its canonical form for the
// scope. Unknown labels return ok=false; callers keep them verbatim so
// extracted information is never silently dropped.
func CanonicalLabel(scope Scope, label string) (string, bool) {
	byKey, ok := scopeLookup[scope]
	if !ok {
		return "", false
	}
	canonical, ok := byKey[foldLabel(label)]
	return canonical, ok
}

// MandatoryFields returns the ordered mandatory labels for a scope.
func MandatoryFields(scope Scope) []string {
	var src []string
	switch scope {
	case ScopeAgency:
		src = agencyMandatoryFields
	case ScopeSite:
		src = siteMandatoryFields
	case ScopeService:
		src = serviceMandatoryFields
	default:
		return nil
	}
	cp := make([]string, len(src))
	copy(cp, src)
	return cp
}

// RecommendedFields returns the ordered recommended agency labels.
func RecommendedFields() []string {
	cp := make([]string, len(recommendedFields))
	copy(cp, recommendedFields)
	return cp
}
