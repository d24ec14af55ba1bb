package documents

import (
	"bytes"
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"strings"
)

const (
	MetaVersion            = "version"
	MetaLastUploadFilename = "last_upload_filename"
	MetaLastUploadMime     = "last_upload_mime"
	MetaFilePath           = "file_path"
	MetaFileSize           = "file_size"
)

// DocumentMetadata is the document attribute bag. Known keys are typed so the version
// invariant can be checked; everything else lives in Extra. It persists as one flat
// JSON object.
type DocumentMetadata struct {
	Version            string
	LastUploadFilename string
	LastUploadMime     string
	FilePath           string
	FileSize           *int64

	Extra map[string]any
}

// Clone returns a shallow copy; Extra is copied one level deep.
func (m DocumentMetadata) Clone() DocumentMetadata {
	out := m
	if m.FileSize != nil {
		v := *m.FileSize
		out.FileSize = &v
	}
	if m.Extra != nil {
		out.Extra = make(map[string]any, len(m.Extra))
		for k, v := range m.Extra {
			out.Extra[k] = v
		}
	}
	return out
}

// Map renders the metadata as the flat mapping stored on the row.
func (m DocumentMetadata) Map() map[string]any {
	out := make(map[string]any, len(m.Extra)+5)
	for k, v := range m.Extra {
		out[k] = v
	}
	if m.Version != "" {
		out[MetaVersion] = m.Version
	}
	if m.LastUploadFilename != "" {
		out[MetaLastUploadFilename] = m.LastUploadFilename
	}
	if m.LastUploadMime != "" {
		out[MetaLastUploadMime] = m.LastUploadMime
	}
	if m.FilePath != "" {
		out[MetaFilePath] = m.FilePath
	}
	if m.FileSize != nil {
		out[MetaFileSize] = *m.FileSize
	}
	return out
}

func (m DocumentMetadata) MarshalJSON() ([]byte, error) {
	return json.Marshal(m.Map())
}

func (m *DocumentMetadata) UnmarshalJSON(data []byte) error {
	*m = DocumentMetadata{}
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return nil
	}
	dec := json.NewDecoder(bytes.NewReader(trimmed))
	dec.UseNumber()
	raw := map[string]any{}
	if err := dec.Decode(&raw); err != nil {
		return fmt.Errorf("decode document metadata: %w", err)
	}
	m.Version = popString(raw, MetaVersion)
	m.LastUploadFilename = popString(raw, MetaLastUploadFilename)
	m.LastUploadMime = popString(raw, MetaLastUploadMime)
	m.FilePath = popString(raw, MetaFilePath)
	if v, ok := raw[MetaFileSize].(json.Number); ok {
		if n, err := v.Int64(); err == nil {
			m.FileSize = &n
			delete(raw, MetaFileSize)
		}
	}
	if len(raw) > 0 {
		m.Extra = raw
	}
	return nil
}

// Value implements driver.Valuer so the struct can back a json/jsonb column.
func (m DocumentMetadata) Value() (driver.Value, error) {
	b, err := m.MarshalJSON()
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

// Scan implements sql.Scanner.
func (m *DocumentMetadata) Scan(src any) error {
	switch v := src.(type) {
	case nil:
		*m = DocumentMetadata{}
		return nil
	case []byte:
		return m.UnmarshalJSON(v)
	case string:
		return m.UnmarshalJSON([]byte(v))
	default:
		return fmt.Errorf("unsupported document metadata source %T", src)
	}
}

// VersionString is Version, or the number stored under "version" when the row carries
// one that is not a JSON string.
func (m DocumentMetadata) VersionString() string {
	if v := strings.TrimSpace(m.Version); v != "" {
		return v
	}
	if n, ok := m.Extra[MetaVersion].(json.Number); ok {
		return n.String()
	}
	return ""
}

// popString moves a JSON string out of raw. Values of any other JSON type stay in Extra
// so they round-trip unchanged.
func popString(raw map[string]any, key string) string {
	s, ok := raw[key].(string)
	if !ok {
		return ""
	}
	delete(raw, key)
	return s
}
