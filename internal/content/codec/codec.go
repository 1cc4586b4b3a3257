// Package codec turns raw CMS documents into domain values. Documents are
// read with gjson so Sanity's slug objects, references and localized label
// maps can be handled without mirroring the CMS schema in Go structs.
package codec

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/tidwall/gjson"

	"repairflow/internal/domain"
	"repairflow/internal/pricing"
)

var ErrInvalidDocument = errors.New("invalid content document")

func DecodeStep(doc domain.Document, locale string) (domain.Step, error) {
	r, err := parse(doc)
	if err != nil {
		return domain.Step{}, err
	}

	step := domain.Step{
		Slug:         slugOf(r),
		Label:        Localized(r.Get("label"), locale),
		GroupID:      refOf(r.Get("group")),
		Position:     int(r.Get("position").Int()),
		Section:      r.Get("section").String(),
		Start:        r.Get("isStart").Bool(),
		Confirmation: r.Get("isConfirmation").Bool(),
		Next:         refOf(r.Get("next")),
		Required:     stringList(r.Get("required")),
	}
	r.Get("branches").ForEach(func(_, b gjson.Result) bool {
		step.Branches = append(step.Branches, domain.Branch{
			Field:  b.Get("field").String(),
			Values: stringList(b.Get("values")),
			Target: refOf(b.Get("target")),
		})
		return true
	})

	if step.Slug == "" {
		return domain.Step{}, fmt.Errorf("%w: step %q has no slug", ErrInvalidDocument, doc.ID)
	}
	return step, nil
}

func DecodeStepGroup(doc domain.Document, locale string) (domain.StepGroup, error) {
	r, err := parse(doc)
	if err != nil {
		return domain.StepGroup{}, err
	}

	id := r.Get("id").String()
	if id == "" {
		id = slugOf(r)
	}
	if id == "" {
		return domain.StepGroup{}, fmt.Errorf("%w: group %q has no id", ErrInvalidDocument, doc.ID)
	}

	return domain.StepGroup{
		ID:       id,
		Label:    Localized(r.Get("label"), locale),
		Position: int(r.Get("position").Int()),
		Steps:    stringList(r.Get("steps")),
	}, nil
}

func DecodeGarment(doc domain.Document, locale string) (domain.Garment, error) {
	r, err := parse(doc)
	if err != nil {
		return domain.Garment{}, err
	}

	g := domain.Garment{
		Slug:           slugOf(r),
		Label:          Localized(r.Get("label"), locale),
		Description:    Localized(r.Get("description"), locale),
		Position:       int(r.Get("position").Int()),
		AllowedRepairs: stringList(r.Get("allowedRepairs")),
	}
	if g.Slug == "" {
		return domain.Garment{}, fmt.Errorf("%w: garment %q has no slug", ErrInvalidDocument, doc.ID)
	}
	return g, nil
}

func DecodeRepairType(doc domain.Document, locale string) (domain.RepairType, error) {
	r, err := parse(doc)
	if err != nil {
		return domain.RepairType{}, err
	}

	rt := domain.RepairType{
		Slug:        slugOf(r),
		Label:       Localized(r.Get("label"), locale),
		Description: Localized(r.Get("description"), locale),
		Position:    int(r.Get("position").Int()),
	}
	if rt.Slug == "" {
		return domain.RepairType{}, fmt.Errorf("%w: repair type %q has no slug", ErrInvalidDocument, doc.ID)
	}
	return rt, nil
}

// DecodePricing reads a pricing document. Only the tables present in the
// document are set, so the result is meant to be merged over defaults.
func DecodePricing(doc domain.Document) (pricing.Tables, error) {
	if !gjson.ValidBytes(doc.Body) {
		return pricing.Tables{}, fmt.Errorf("%w: %q is not valid JSON", ErrInvalidDocument, doc.ID)
	}
	var t pricing.Tables
	if err := json.Unmarshal(doc.Body, &t); err != nil {
		return pricing.Tables{}, fmt.Errorf("%w: pricing %q: %v", ErrInvalidDocument, doc.ID, err)
	}
	return t, nil
}

func DecodeSiteSettings(doc domain.Document, locale string) (domain.SiteSettings, error) {
	r, err := parse(doc)
	if err != nil {
		return domain.SiteSettings{}, err
	}

	s := domain.SiteSettings{
		Title:             Localized(r.Get("title"), locale),
		ContactEmail:      r.Get("contactEmail").String(),
		OrderTemplateID:   r.Get("orderTemplateId").String(),
		ContactTemplateID: r.Get("contactTemplateId").String(),
		DefaultLocale:     r.Get("defaultLocale").String(),
		SupportedLocales:  stringList(r.Get("supportedLocales")),
	}
	if s.DefaultLocale == "" {
		s.DefaultLocale = domain.DefaultLocale
	}
	return s, nil
}

// Localized resolves a label that is either a plain string or a map keyed by
// locale. Missing locales fall back to the default locale, then to the first
// non-metadata entry.
func Localized(r gjson.Result, locale string) string {
	if !r.Exists() {
		return ""
	}
	if !r.IsObject() {
		return r.String()
	}
	if v := r.Get(locale); v.String() != "" {
		return v.String()
	}
	if v := r.Get(domain.DefaultLocale); v.String() != "" {
		return v.String()
	}

	var first string
	r.ForEach(func(key, value gjson.Result) bool {
		if strings.HasPrefix(key.String(), "_") {
			return true
		}
		first = value.String()
		return false
	})
	return first
}

func parse(doc domain.Document) (gjson.Result, error) {
	if !gjson.ValidBytes(doc.Body) {
		return gjson.Result{}, fmt.Errorf("%w: %q is not valid JSON", ErrInvalidDocument, doc.ID)
	}
	return gjson.ParseBytes(doc.Body), nil
}

// slugOf accepts both Sanity slug objects ({"current": "..."}) and plain strings.
func slugOf(r gjson.Result) string {
	if s := r.Get("slug.current"); s.Exists() {
		return s.String()
	}
	return r.Get("slug").String()
}

// refOf reads a field that is either a plain slug or a dereferenced document.
func refOf(r gjson.Result) string {
	if r.IsObject() {
		if id := r.Get("id"); id.Exists() {
			return id.String()
		}
		return slugOf(r)
	}
	return r.String()
}

func stringList(r gjson.Result) []string {
	var out []string
	r.ForEach(func(_, v gjson.Result) bool {
		if s := refOf(v); s != "" {
			out = append(out, s)
		}
		return true
	})
	return out
}
