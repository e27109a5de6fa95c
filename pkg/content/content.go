package content

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sort"
	"time"
)

// DefaultLocale is the locale used for display names and titles when none is configured.
const DefaultLocale = "en-US"

// Link types recognized inside entry fields.
const (
	LinkTypeEntry = "Entry"
	LinkTypeAsset = "Asset"
)

// Link is the sys payload of an in-field reference to another record.
type Link struct {
	Type     string `json:"type"`
	LinkType string `json:"linkType"`
	ID       string `json:"id"`
}

// LinkRef wraps a [Link] in the {"sys": ...} envelope the platform uses.
type LinkRef struct {
	Sys Link `json:"sys"`
}

// Sys is the platform metadata shared by entries, assets and content types.
type Sys struct {
	ID               string                       `json:"id"`
	Type             string                       `json:"type,omitempty"`
	Version          int                          `json:"version,omitempty"`
	PublishedVersion *int                         `json:"publishedVersion,omitempty"`
	ArchivedAt       *time.Time                   `json:"archivedAt,omitempty"`
	CreatedAt        *time.Time                   `json:"createdAt,omitempty"`
	UpdatedAt        *time.Time                   `json:"updatedAt,omitempty"`
	ContentType      *LinkRef                     `json:"contentType,omitempty"`
	FieldStatus      map[string]map[string]string `json:"fieldStatus,omitempty"`
}

// IsPublished reports whether the record has a published version.
func (s Sys) IsPublished() bool { return s.PublishedVersion != nil }

// Status values shown for entries.
const (
	StatusDraft     = "draft"
	StatusPublished = "published"
	StatusChanged   = "changed"
	StatusArchived  = "archived"
)

// Status derives the publishing status for locale.
// Archived wins; then the platform's own field status; then versions.
func (s Sys) Status(locale string) string {
	if s.ArchivedAt != nil {
		return StatusArchived
	}
	if st := s.FieldStatus["*"][locale]; st != "" {
		return st
	}
	switch {
	case s.PublishedVersion == nil:
		return StatusDraft
	case s.Version == *s.PublishedVersion+1:
		return StatusPublished
	default:
		return StatusChanged
	}
}

// Field is one named entry field. Value is usually a map from locale to the
// decoded JSON value, but is kept as decoded so unexpected shapes survive.
type Field struct {
	Name  string
	Value any
}

// Locales returns the locale-keyed values of the field, or nil when the
// field value is not an object.
func (f Field) Locales() map[string]any {
	m, _ := f.Value.(map[string]any)
	return m
}

// Fields is an ordered list of entry fields. It decodes from a JSON object
// and keeps key order.
type Fields []Field

// Get returns the field named name.
func (fs Fields) Get(name string) (Field, bool) {
	for _, f := range fs {
		if f.Name == name {
			return f, true
		}
	}
	return Field{}, false
}

// UnmarshalJSON decodes a JSON object into fields in document order.
// Anything other than an object decodes to no fields.
func (fs *Fields) UnmarshalJSON(data []byte) error {
	*fs = nil
	dec := json.NewDecoder(bytes.NewReader(data))
	tok, err := dec.Token()
	if err != nil {
		return err
	}
	if d, ok := tok.(json.Delim); !ok || d != '{' {
		return nil
	}
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return err
		}
		name, ok := tok.(string)
		if !ok {
			return fmt.Errorf("fields: unexpected key %v", tok)
		}
		var v any
		if err := dec.Decode(&v); err != nil {
			return fmt.Errorf("fields: decode %q: %w", name, err)
		}
		*fs = append(*fs, Field{Name: name, Value: v})
	}
	return nil
}

// MarshalJSON encodes fields as a JSON object in their stored order.
func (fs Fields) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, f := range fs {
		if i > 0 {
			buf.WriteByte(',')
		}
		k, err := json.Marshal(f.Name)
		if err != nil {
			return nil, err
		}
		v, err := json.Marshal(f.Value)
		if err != nil {
			return nil, err
		}
		buf.Write(k)
		buf.WriteByte(':')
		buf.Write(v)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// Entry is a content record.
type Entry struct {
	Sys    Sys    `json:"sys"`
	Fields Fields `json:"fields"`
}

// ID returns the entry identifier.
func (e *Entry) ID() string { return e.Sys.ID }

// ContentTypeID returns the identifier of the entry's content type, or ""
// when the entry carries no content type link.
func (e *Entry) ContentTypeID() string {
	if e.Sys.ContentType == nil {
		return ""
	}
	return e.Sys.ContentType.Sys.ID
}

// DisplayName returns the first field whose value is a string, either
// directly or in locale, falling back to the entry id.
func (e *Entry) DisplayName(locale string) string {
	for _, f := range e.Fields {
		if s, ok := f.Value.(string); ok {
			return s
		}
		if s, ok := f.Locales()[locale].(string); ok {
			return s
		}
	}
	return e.ID()
}

// Links returns every link found in the entry's fields, in field order.
// Array values contribute each linking element; other shapes are skipped.
func (e *Entry) Links() []FieldLink {
	var out []FieldLink
	for _, f := range e.Fields {
		locales := f.Locales()
		for _, locale := range sortedKeys(locales) {
			switch v := locales[locale].(type) {
			case []any:
				for _, item := range v {
					if l, ok := ParseLink(item); ok {
						out = append(out, FieldLink{Field: f.Name, Locale: locale, Link: l})
					}
				}
			default:
				if l, ok := ParseLink(v); ok {
					out = append(out, FieldLink{Field: f.Name, Locale: locale, Link: l})
				}
			}
		}
	}
	return out
}

// FieldLink is a link together with where it was found.
type FieldLink struct {
	Field  string
	Locale string
	Link
}

// ParseLink reports whether v has the Link shape and returns its payload.
func ParseLink(v any) (Link, bool) {
	m, ok := v.(map[string]any)
	if !ok {
		return Link{}, false
	}
	sys, ok := m["sys"].(map[string]any)
	if !ok {
		return Link{}, false
	}
	if t, _ := sys["type"].(string); t != "Link" {
		return Link{}, false
	}
	linkType, _ := sys["linkType"].(string)
	id, _ := sys["id"].(string)
	if linkType == "" || id == "" {
		return Link{}, false
	}
	return Link{Type: "Link", LinkType: linkType, ID: id}, true
}

// Asset is a media record.
type Asset struct {
	Sys    Sys         `json:"sys"`
	Fields AssetFields `json:"fields"`
}

// AssetFields holds the asset metadata contentaudit displays.
type AssetFields struct {
	Title map[string]string    `json:"title,omitempty"`
	File  map[string]AssetFile `json:"file,omitempty"`
}

// AssetFile describes the uploaded file for one locale.
type AssetFile struct {
	FileName    string `json:"fileName,omitempty"`
	ContentType string `json:"contentType,omitempty"`
	URL         string `json:"url,omitempty"`
}

// ID returns the asset identifier.
func (a *Asset) ID() string { return a.Sys.ID }

// Title returns the title in locale, else the first non-empty title by
// locale order, else the asset id.
func (a *Asset) Title(locale string) string {
	if t := a.Fields.Title[locale]; t != "" {
		return t
	}
	for _, l := range sortedKeys(a.Fields.Title) {
		if t := a.Fields.Title[l]; t != "" {
			return t
		}
	}
	return a.ID()
}

// FileName returns the file name in locale, else any locale's file name.
func (a *Asset) FileName(locale string) string {
	if f, ok := a.Fields.File[locale]; ok && f.FileName != "" {
		return f.FileName
	}
	for _, l := range sortedKeys(a.Fields.File) {
		if f := a.Fields.File[l]; f.FileName != "" {
			return f.FileName
		}
	}
	return ""
}

// ContentType is an entry schema.
type ContentType struct {
	Sys          Sys    `json:"sys"`
	Name         string `json:"name"`
	Description  string `json:"description,omitempty"`
	DisplayField string `json:"displayField,omitempty"`
}

// ID returns the content type identifier.
func (ct *ContentType) ID() string { return ct.Sys.ID }

// Space describes the space a session is scoped to.
type Space struct {
	Sys  Sys    `json:"sys"`
	Name string `json:"name"`
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// NewEntry builds an entry of the given content type. It is mostly useful
// for tests and fixtures.
func NewEntry(id, contentTypeID string, fields ...Field) Entry {
	return Entry{
		Sys: Sys{
			ID:          id,
			Type:        "Entry",
			Version:     1,
			ContentType: &LinkRef{Sys: Link{Type: "Link", LinkType: "ContentType", ID: contentTypeID}},
		},
		Fields: fields,
	}
}

// Localized builds a field holding one value per locale.
func Localized(name string, values map[string]any) Field {
	return Field{Name: name, Value: values}
}

// LinkValue builds the decoded JSON shape of a link to id.
func LinkValue(linkType, id string) map[string]any {
	return map[string]any{
		"sys": map[string]any{"type": "Link", "linkType": linkType, "id": id},
	}
}
