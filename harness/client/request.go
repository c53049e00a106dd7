package client

import (
	"bytes"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/textproto"
	"slices"
	"time"

	"github.com/Laisky/errors/v2"
)

// Request describes one check.
type Request struct {
	Name   string
	Method string
	// Path is appended to the API base, e.g. "/agents".
	Path  string
	Query map[string]string
	// Body is JSON-encoded when non-nil. DELETE requests keep their body.
	Body    any
	Headers map[string]string

	// RawBody is sent verbatim when set, for deliberately malformed payloads.
	RawBody     []byte
	ContentType string
	Upload      *Upload

	// ExpectStatus defaults to 200. ExpectAnyOf adds alternative statuses.
	ExpectStatus int
	ExpectAnyOf  []int
	ExpectKeys   []string

	SkipAuth bool
	Timed    bool
	Timeout  time.Duration
}

// Upload is a single-file multipart form.
type Upload struct {
	Field       string
	FileName    string
	ContentType string
	Data        []byte
	Fields      map[string]string
}

// Expected returns the acceptable statuses, primary first.
func (r Request) Expected() []int {
	var out []int
	if r.ExpectStatus != 0 {
		out = append(out, r.ExpectStatus)
	}
	for _, s := range r.ExpectAnyOf {
		if !slices.Contains(out, s) {
			out = append(out, s)
		}
	}
	if len(out) == 0 {
		out = append(out, 200)
	}
	return out
}

// payload renders the request body and its content type.
func (r Request) payload() (io.Reader, string, error) {
	switch {
	case r.Upload != nil:
		return r.Upload.encode()
	case r.RawBody != nil:
		ct := r.ContentType
		if ct == "" {
			ct = "application/json"
		}
		return bytes.NewReader(r.RawBody), ct, nil
	case r.Body != nil:
		raw, err := json.Marshal(r.Body)
		if err != nil {
			return nil, "", errors.Wrap(err, "marshal payload")
		}
		return bytes.NewReader(raw), "application/json", nil
	default:
		return nil, "", nil
	}
}

func (u *Upload) encode() (io.Reader, string, error) {
	buf := &bytes.Buffer{}
	mw := multipart.NewWriter(buf)

	for k, v := range u.Fields {
		if err := mw.WriteField(k, v); err != nil {
			return nil, "", errors.Wrapf(err, "write form field %s", k)
		}
	}

	field := u.Field
	if field == "" {
		field = "audio"
	}
	ct := u.ContentType
	if ct == "" {
		ct = "application/octet-stream"
	}
	h := make(textproto.MIMEHeader)
	h.Set("Content-Disposition", `form-data; name="`+field+`"; filename="`+u.FileName+`"`)
	h.Set("Content-Type", ct)
	part, err := mw.CreatePart(h)
	if err != nil {
		return nil, "", errors.Wrap(err, "create form file")
	}
	if _, err = part.Write(u.Data); err != nil {
		return nil, "", errors.Wrap(err, "write form file")
	}
	if err = mw.Close(); err != nil {
		return nil, "", errors.Wrap(err, "close multipart writer")
	}
	return buf, mw.FormDataContentType(), nil
}
