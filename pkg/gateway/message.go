package gateway

import (
	"bytes"
	"encoding/json"

	"github.com/entrhq/foxconf/pkg/profile"
)

// Kind names a request type.
type Kind string

const (
	KindBackupProfile Kind = "BACKUP_PROFILE"
	KindApplySettings Kind = "APPLY_SETTINGS"
	KindGetProfileDir Kind = "GET_PROFILE_DIR"
)

// Request is one gateway message.
type Request struct {
	Type     Kind            `json:"type"`
	Settings json.RawMessage `json:"settings,omitempty"`
}

// Response is the settled result of a request. Failures carry the error
// message as-is.
type Response struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data,omitempty"`
	Error   string          `json:"error,omitempty"`
	Code    Code            `json:"code,omitempty"`
}

// ApplyResult is the data of a successful APPLY_SETTINGS.
type ApplyResult struct {
	Filename string `json:"filename"`
	Path     string `json:"path,omitempty"`
	Bytes    int    `json:"bytes"`
	Settings int    `json:"settings"`
}

// ProfileDirResult is the data of a successful GET_PROFILE_DIR.
type ProfileDirResult struct {
	Path string `json:"path"`
}

// NewApplyRequest builds an APPLY_SETTINGS request from a flat value mapping.
func NewApplyRequest(settings map[string]any) (Request, error) {
	raw, err := json.Marshal(settings)
	if err != nil {
		return Request{}, err
	}
	return Request{Type: KindApplySettings, Settings: raw}, nil
}

// NewApplyRequestEntries builds an APPLY_SETTINGS request whose settings
// object keeps the order of entries.
func NewApplyRequestEntries(entries []profile.Entry) (Request, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, e := range entries {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(e.ID)
		if err != nil {
			return Request{}, err
		}
		val, err := json.Marshal(e.Value)
		if err != nil {
			return Request{}, err
		}
		buf.Write(key)
		buf.WriteByte(':')
		buf.Write(val)
	}
	buf.WriteByte('}')
	return Request{Type: KindApplySettings, Settings: buf.Bytes()}, nil
}

// Err returns nil for a successful response and an error carrying the
// response message otherwise.
func (r Response) Err() error {
	if r.Success {
		return nil
	}
	return &ResponseError{Code: r.Code, Message: r.Error}
}

// DecodeData unmarshals the response data into v.
func (r Response) DecodeData(v any) error {
	if len(r.Data) == 0 {
		return nil
	}
	return json.Unmarshal(r.Data, v)
}

// ResponseError is a failed response seen from the client side.
type ResponseError struct {
	Code    Code
	Message string
}

func (e *ResponseError) Error() string {
	return e.Message
}

func failure(err error) Response {
	return Response{Success: false, Error: err.Error(), Code: codeOf(err)}
}

func success(data any) (Response, error) {
	if data == nil {
		return Response{Success: true}, nil
	}
	raw, err := json.Marshal(data)
	if err != nil {
		return Response{}, err
	}
	return Response{Success: true, Data: raw}, nil
}
