package domain

import "encoding/json"

const (
	DocTypeStep         = "orderFlowStep"
	DocTypeStepGroup    = "stepGroup"
	DocTypeGarment      = "garment"
	DocTypeRepairType   = "repairType"
	DocTypePricing      = "pricing"
	DocTypeSiteSettings = "siteSettings"
)

// Singleton document ids.
const (
	PricingDocID      = "pricing"
	SiteSettingsDocID = "siteSettings"
)

// Document is a raw content document as stored by the CMS. Locale is empty
// for documents shared by every language.
type Document struct {
	ID     string
	Type   string
	Locale string
	Body   json.RawMessage
}
