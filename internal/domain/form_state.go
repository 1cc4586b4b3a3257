package domain

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	apperrors "repairflow/internal/errors"
)

const (
	FieldGarment      = "garment"
	FieldRepairType   = "repairType"
	FieldCategory     = "category"
	FieldButtonCount  = "buttonCount"
	FieldMeasurements = "measurements"
	FieldDescription  = "description"
	FieldDeliveryType = "deliveryType"
	FieldShippingTier = "shippingTier"
	FieldName         = "name"
	FieldEmail        = "email"
	FieldPhone        = "phone"
	FieldAddress      = "address"
	FieldPostalCode   = "postalCode"
	FieldCity         = "city"
	FieldLanguage     = "language"
)

const (
	GarmentOuterWear = "outer-wear"
	GarmentCurtains  = "curtains"

	CategoryStandard = "standard"
	CategoryPremium  = "premium"

	RepairHemming      = "hemming"
	RepairButtons      = "buttons"
	RepairOtherRequest = "other-request"

	DeliveryPosten = "posten"

	DefaultLocale = "nb"

	// MaxUnits bounds per-unit quantities such as buttonCount.
	MaxUnits = 100
)

// FormState holds one wizard session's selections. Every field defaults to
// the empty string, so lookups by name never hit an undefined value.
type FormState struct {
	Garment        string `json:"garment"`
	RepairType     string `json:"repairType"`
	Category       string `json:"category"`
	CategoryPinned bool   `json:"categoryPinned"`
	ButtonCount    string `json:"buttonCount"`
	Measurements   string `json:"measurements"`
	Description    string `json:"description"`
	DeliveryType   string `json:"deliveryType"`
	ShippingTier   string `json:"shippingTier"`
	Name           string `json:"name"`
	Email          string `json:"email"`
	Phone          string `json:"phone"`
	Address        string `json:"address"`
	PostalCode     string `json:"postalCode"`
	City           string `json:"city"`
	Language       string `json:"language"`
}

func NewFormState(language string) FormState {
	if language == "" {
		language = DefaultLocale
	}
	return FormState{Language: language}
}

func IsField(name string) bool {
	var s FormState
	return s.ref(name) != nil
}

func (s FormState) Value(field string) string {
	if p := s.ref(field); p != nil {
		return *p
	}
	return ""
}

// Units parses a numeric field. Empty or malformed values count as zero and
// anything above MaxUnits counts as MaxUnits.
func (s FormState) Units(field string) int64 {
	n, err := strconv.ParseInt(s.Value(field), 10, 64)
	switch {
	case err != nil && !errors.Is(err, strconv.ErrRange):
		return 0
	case n < 0:
		return 0
	case n > MaxUnits:
		return MaxUnits
	}
	return n
}

func (s FormState) Locale() string {
	if s.Language == "" {
		return DefaultLocale
	}
	return s.Language
}

// Set applies a single user edit. Garment changes cascade into category and
// repair type; restrictions decide which repair types a garment can take.
func (s *FormState) Set(field, value string, restrictions Restrictions) error {
	value = strings.TrimSpace(value)
	ref := s.ref(field)
	if ref == nil {
		return apperrors.NewValidationError("unknown field", apperrors.ValidationDetail{
			Field:   field,
			Message: "field is not part of the order form",
		})
	}

	switch field {
	case FieldGarment:
		s.Garment = value
		s.applyGarment(restrictions)

	case FieldCategory:
		if value != "" && value != CategoryStandard && value != CategoryPremium {
			return invalidField(field, "category must be standard or premium")
		}
		if s.Garment == GarmentOuterWear && value != CategoryPremium {
			return invalidField(field, "outer-wear is always premium")
		}
		s.Category = value
		s.CategoryPinned = value != ""

	case FieldRepairType:
		if value != "" && !restrictions.Allows(s.Garment, value) {
			return invalidField(field, "repair type is not offered for the selected garment")
		}
		s.RepairType = value

	case FieldButtonCount:
		if value != "" {
			n, err := strconv.Atoi(value)
			if err != nil || n < 0 || n > MaxUnits {
				return invalidField(field, fmt.Sprintf("buttonCount must be an integer between 0 and %d", MaxUnits))
			}
		}
		s.ButtonCount = value

	case FieldEmail:
		if value != "" && !strings.Contains(value, "@") {
			return invalidField(field, "email must be a valid address")
		}
		s.Email = value

	case FieldDeliveryType:
		if value != s.DeliveryType {
			s.ShippingTier = ""
		}
		s.DeliveryType = value

	default:
		*ref = value
	}

	return nil
}

func (s *FormState) applyGarment(restrictions Restrictions) {
	switch {
	case s.Garment == GarmentOuterWear:
		if s.Category != CategoryPremium {
			s.CategoryPinned = false
		}
		s.Category = CategoryPremium
	case !s.CategoryPinned:
		s.Category = ""
	}

	if s.RepairType != "" && !restrictions.Allows(s.Garment, s.RepairType) {
		s.RepairType = ""
	}
}

func (s *FormState) ref(field string) *string {
	switch field {
	case FieldGarment:
		return &s.Garment
	case FieldRepairType:
		return &s.RepairType
	case FieldCategory:
		return &s.Category
	case FieldButtonCount:
		return &s.ButtonCount
	case FieldMeasurements:
		return &s.Measurements
	case FieldDescription:
		return &s.Description
	case FieldDeliveryType:
		return &s.DeliveryType
	case FieldShippingTier:
		return &s.ShippingTier
	case FieldName:
		return &s.Name
	case FieldEmail:
		return &s.Email
	case FieldPhone:
		return &s.Phone
	case FieldAddress:
		return &s.Address
	case FieldPostalCode:
		return &s.PostalCode
	case FieldCity:
		return &s.City
	case FieldLanguage:
		return &s.Language
	}
	return nil
}

func invalidField(field, message string) error {
	return apperrors.NewValidationError(message, apperrors.ValidationDetail{
		Field:   field,
		Message: message,
	})
}
