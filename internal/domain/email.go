package domain

const (
	ProviderSendGrid   = "sendgrid"
	ProviderCustomerIO = "customerio"
)

type Recipient struct {
	Name  string
	Email string
}

// FreeformEmail is a plain message composed by the service, such as a
// contact form forwarded to the shop.
type FreeformEmail struct {
	To      Recipient
	ReplyTo *Recipient
	Subject string
	Text    string
	HTML    string
}

// TemplateEmail is rendered by the provider from TemplateID and Data.
type TemplateEmail struct {
	To         Recipient
	TemplateID string
	Data       map[string]interface{}
}
