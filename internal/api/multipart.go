package api

import (
	"bytes"
	"mime/multipart"
	"net/textproto"
	"sort"
)

// File is one uploaded file forwarded to the backend.
type File struct {
	Name        string
	ContentType string
	Data        []byte
}

// Multipart is a form-data payload: plain fields plus named file parts. A
// field name may carry several files (e.g. subImages).
type Multipart struct {
	Fields map[string]string
	Files  map[string][]File
}

func (m *Multipart) SetField(name, value string) {
	if m.Fields == nil {
		m.Fields = make(map[string]string)
	}
	m.Fields[name] = value
}

func (m *Multipart) AddFile(field string, f File) {
	if m.Files == nil {
		m.Files = make(map[string][]File)
	}
	m.Files[field] = append(m.Files[field], f)
}

func (m *Multipart) encode() (*bytes.Buffer, string, error) {
	buf := &bytes.Buffer{}
	w := multipart.NewWriter(buf)

	for _, name := range sortedKeys(m.Fields) {
		if err := w.WriteField(name, m.Fields[name]); err != nil {
			return nil, "", err
		}
	}
	for _, field := range sortedKeys(m.Files) {
		for _, f := range m.Files[field] {
			h := make(textproto.MIMEHeader)
			h.Set("Content-Disposition", `form-data; name="`+field+`"; filename="`+f.Name+`"`)
			ct := f.ContentType
			if ct == "" {
				ct = "application/octet-stream"
			}
			h.Set("Content-Type", ct)
			part, err := w.CreatePart(h)
			if err != nil {
				return nil, "", err
			}
			if _, err := part.Write(f.Data); err != nil {
				return nil, "", err
			}
		}
	}
	if err := w.Close(); err != nil {
		return nil, "", err
	}
	return buf, w.FormDataContentType(), nil
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
