// Package domain defines the recall dataset model: the Recall record as
// published by the CPSC RecallRetrieval web service, its nested entities
// (products, hazards, remedies, companies, images), and the strict decoding
// rules that turn raw feed bytes into validated records.
//
// Identity: a Recall is uniquely identified by its integer RecallID. Two
// recalls with the same id are considered equal for all consumer logic even
// when other fields differ. This mirrors the upstream dataset, where the id
// is the only stable key.
package domain

import (
	"encoding/json"
	"errors"
	"fmt"
)

// ErrDecode is the root cause wrapped by all decoding failures in this
// package. Callers can match it with errors.Is to classify a failed batch.
var ErrDecode = errors.New("recall decode failed")

// Product is a single product covered by a recall. Name is the UI display
// key; Types carries comma-separated category labels used by curation.
type Product struct {
	Name          string `json:"Name"`
	Description   string `json:"Description"`
	Model         string `json:"Model"`
	Types         string `json:"Types"`
	CategoryID    string `json:"CategoryID"`
	NumberOfUnits string `json:"NumberOfUnits"`
}

// Hazard names a danger the recalled product poses (e.g. "Fire", "Choking").
type Hazard struct {
	Name         string `json:"Name"`
	HazardTypeID string `json:"HazardTypeID"`
}

// Remedy describes what consumers should do (refund, repair, replace).
type Remedy struct {
	Name string `json:"Name"`
}

// RemedyOption is one concrete remedy choice offered to consumers.
type RemedyOption struct {
	Option string `json:"Option"`
}

// Image is a hosted photo of the recalled product.
type Image struct {
	URL     string `json:"URL"`
	Caption string `json:"Caption"`
}

// Injury is a free-text incident/injury summary attached to the recall.
type Injury struct {
	Name string `json:"Name"`
}

// Company is a manufacturer, retailer, importer, or distributor entry.
// CompanyID is not unique in the source dataset; Name is the display key.
type Company struct {
	Name      string `json:"Name"`
	CompanyID string `json:"CompanyID"`
}

// ManufacturerCountry records a country of manufacture.
type ManufacturerCountry struct {
	Country string `json:"Country"`
}

// Inconjunction is a related-recall URL published alongside the record.
type Inconjunction struct {
	URL string `json:"URL"`
}

// ProductUPC is a tagged union: the feed emits either a bare string UPC or a
// string-keyed object. Decoding tries the string form first, then the
// mapping, and fails otherwise (numbers, arrays, null are all rejected).
//
// Exactly one of Code/Fields is populated.
type ProductUPC struct {
	Code   string
	Fields map[string]string
}

// UnmarshalJSON implements the ordered trial decode: string before mapping.
func (u *ProductUPC) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err == nil {
		u.Code = s
		u.Fields = nil
		return nil
	}
	var m map[string]string
	if err := json.Unmarshal(b, &m); err == nil {
		u.Code = ""
		u.Fields = m
		return nil
	}
	return fmt.Errorf("%w: ProductUPC is neither string nor string mapping", ErrDecode)
}

// MarshalJSON emits whichever variant is populated, preferring the string.
func (u ProductUPC) MarshalJSON() ([]byte, error) {
	if u.Fields != nil {
		return json.Marshal(u.Fields)
	}
	return json.Marshal(u.Code)
}

// Recall is a validated product-recall record.
//
// Dates stay as the ISO-like strings the feed publishes; parsing to time
// values happens where a component needs it (curation recency checks).
type Recall struct {
	ID              int    `json:"RecallID"`
	Number          string `json:"RecallNumber,omitempty"`
	Date            string `json:"RecallDate,omitempty"`
	Description     string `json:"Description,omitempty"`
	URL             string `json:"URL,omitempty"`
	Title           string `json:"Title,omitempty"`
	ConsumerContact string `json:"ConsumerContact,omitempty"`
	LastPublishDate string `json:"LastPublishDate,omitempty"`
	SoldAtLabel     string `json:"SoldAtLabel,omitempty"`

	Products              []Product             `json:"Products"`
	Inconjunctions        []Inconjunction       `json:"Inconjunctions"`
	Images                []Image               `json:"Images"`
	Injuries              []Injury              `json:"Injuries"`
	Manufacturers         []Company             `json:"Manufacturers"`
	Retailers             []Company             `json:"Retailers"`
	Importers             []Company             `json:"Importers"`
	Distributors          []Company             `json:"Distributors,omitempty"`
	ManufacturerCountries []ManufacturerCountry `json:"ManufacturerCountries"`
	Hazards               []Hazard              `json:"Hazards"`
	Remedies              []Remedy              `json:"Remedies"`
	RemedyOptions         []RemedyOption        `json:"RemedyOptions"`
	ProductUPCs           []ProductUPC          `json:"ProductUPCs,omitempty"`
}

// Equal reports record equality, which is defined solely by id equality.
func (r Recall) Equal(other Recall) bool { return r.ID == other.ID }

// recallWire is the strict intermediate decode target. Required fields are
// pointer-typed so absence is distinguishable from the zero value: a missing
// RecallID or a missing required array fails decoding instead of being
// silently defaulted.
type recallWire struct {
	RecallID        *int    `json:"RecallID"`
	RecallNumber    *string `json:"RecallNumber"`
	RecallDate      *string `json:"RecallDate"`
	Description     *string `json:"Description"`
	URL             *string `json:"URL"`
	Title           *string `json:"Title"`
	ConsumerContact *string `json:"ConsumerContact"`
	LastPublishDate *string `json:"LastPublishDate"`
	SoldAtLabel     *string `json:"SoldAtLabel"`

	Products              *[]Product             `json:"Products"`
	Inconjunctions        *[]Inconjunction       `json:"Inconjunctions"`
	Images                *[]Image               `json:"Images"`
	Injuries              *[]Injury              `json:"Injuries"`
	Manufacturers         *[]Company             `json:"Manufacturers"`
	Retailers             *[]Company             `json:"Retailers"`
	Importers             *[]Company             `json:"Importers"`
	Distributors          []Company              `json:"Distributors"`
	ManufacturerCountries *[]ManufacturerCountry `json:"ManufacturerCountries"`
	Hazards               *[]Hazard              `json:"Hazards"`
	Remedies              *[]Remedy              `json:"Remedies"`
	RemedyOptions         *[]RemedyOption        `json:"RemedyOptions"`
	ProductUPCs           []ProductUPC           `json:"ProductUPCs"`
}

// validate converts the wire form into a Recall, enforcing required fields.
func (w recallWire) validate() (Recall, error) {
	if w.RecallID == nil {
		return Recall{}, fmt.Errorf("%w: missing RecallID", ErrDecode)
	}
	required := map[string]bool{
		"Products":              w.Products != nil,
		"Inconjunctions":        w.Inconjunctions != nil,
		"Images":                w.Images != nil,
		"Injuries":              w.Injuries != nil,
		"Manufacturers":         w.Manufacturers != nil,
		"Retailers":             w.Retailers != nil,
		"Importers":             w.Importers != nil,
		"ManufacturerCountries": w.ManufacturerCountries != nil,
		"Hazards":               w.Hazards != nil,
		"Remedies":              w.Remedies != nil,
		"RemedyOptions":         w.RemedyOptions != nil,
	}
	for name, present := range required {
		if !present {
			return Recall{}, fmt.Errorf("%w: recall %d missing required array %s", ErrDecode, *w.RecallID, name)
		}
	}

	r := Recall{
		ID:                    *w.RecallID,
		Number:                strDeref(w.RecallNumber),
		Date:                  strDeref(w.RecallDate),
		Description:           strDeref(w.Description),
		URL:                   strDeref(w.URL),
		Title:                 strDeref(w.Title),
		ConsumerContact:       strDeref(w.ConsumerContact),
		LastPublishDate:       strDeref(w.LastPublishDate),
		SoldAtLabel:           strDeref(w.SoldAtLabel),
		Products:              *w.Products,
		Inconjunctions:        *w.Inconjunctions,
		Images:                *w.Images,
		Injuries:              *w.Injuries,
		Manufacturers:         *w.Manufacturers,
		Retailers:             *w.Retailers,
		Importers:             *w.Importers,
		Distributors:          w.Distributors,
		ManufacturerCountries: *w.ManufacturerCountries,
		Hazards:               *w.Hazards,
		Remedies:              *w.Remedies,
		RemedyOptions:         *w.RemedyOptions,
	}
	r.ProductUPCs = w.ProductUPCs
	return r, nil
}

// DecodeRecalls decodes a raw feed batch. Decoding is strict and
// all-or-nothing: any record missing RecallID or a required array, or
// carrying an unparsable ProductUPC entry, fails the entire batch.
func DecodeRecalls(data []byte) ([]Recall, error) {
	var wires []recallWire
	if err := json.Unmarshal(data, &wires); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDecode, err)
	}
	out := make([]Recall, 0, len(wires))
	for _, w := range wires {
		r, err := w.validate()
		if err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, nil
}

func strDeref(p *string) string {
	if p == nil {
		return ""
	}
	return *p
}
