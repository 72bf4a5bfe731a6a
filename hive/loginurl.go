package hive

import (
	"bytes"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"strings"
)

// login result code of a successful HIVE login
const LoginSuccessCode = "100"

// ErrMissingLoginConfig missing appId, gindex or hive url
var ErrMissingLoginConfig = errors.New("Missing login config. (appId, gindex, hiveUrl)")

// LoginOptions are the fixed parts of the HIVE login request.
type LoginOptions struct {
	Origin         string // where /redirect is served
	DefaultHiveURL string
	Country        string
	Language       string
}

// field order is significant to the login server
type loginParam struct {
	Country  string          `json:"country"`
	Language string          `json:"language"`
	AppID    string          `json:"appid"`
	GIndex   json.RawMessage `json:"gindex"`
	URL      string          `json:"url"`
}

// LoginURL builds the HIVE login url of the game in meta.
func LoginURL(meta *GameMeta, opts *LoginOptions) (string, error) {
	hiveURL := meta.HiveURL
	if hiveURL == "" {
		hiveURL = opts.DefaultHiveURL
	}
	gindex := bytes.TrimSpace(meta.GIndex)
	if meta.AppID == "" || len(gindex) == 0 || string(gindex) == "null" || string(gindex) == `""` || hiveURL == "" {
		return "", ErrMissingLoginConfig
	}
	redirect := strings.TrimRight(opts.Origin, "/") + "/redirect?payload=" + EncodeURIComponent(meta.GameID.String())
	param := &loginParam{
		Country:  opts.Country,
		Language: opts.Language,
		AppID:    meta.AppID,
		GIndex:   gindex,
		URL:      redirect,
	}
	bs, err := marshalNoEscape(param)
	if err != nil {
		return "", err
	}
	return hiveURL + base64.StdEncoding.EncodeToString([]byte(EncodeURIComponent(string(bs)))), nil
}

func marshalNoEscape(v interface{}) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return nil, err
	}
	return bytes.TrimRight(buf.Bytes(), "\n"), nil
}

// EncodeURIComponent escapes s the way browsers escape uri components.
func EncodeURIComponent(s string) string {
	var b strings.Builder
	for i := 0; i < len(s); i++ {
		c := s[i]
		if isUnreserved(c) {
			b.WriteByte(c)
			continue
		}
		fmt.Fprintf(&b, "%%%02X", c)
	}
	return b.String()
}

func isUnreserved(c byte) bool {
	switch {
	case 'a' <= c && c <= 'z', 'A' <= c && c <= 'Z', '0' <= c && c <= '9':
		return true
	}
	return strings.IndexByte("-_.!~*'()", c) >= 0
}

// LoginResult is the decoded `res` parameter of the login redirect.
type LoginResult struct {
	Code  FlexString `json:"code"`
	PID   FlexString `json:"pid"`
	Token FlexString `json:"token"`
}

// OK reports whether the login succeeded.
func (r *LoginResult) OK() bool {
	return r.Code == LoginSuccessCode && r.PID != "" && r.Token != ""
}

// FlexString accepts a json string or number.
type FlexString string

// UnmarshalJSON json unmarshaler
func (s *FlexString) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) > 0 && data[0] == '"' {
		var str string
		if err := json.Unmarshal(data, &str); err != nil {
			return err
		}
		*s = FlexString(str)
		return nil
	}
	if string(data) == "null" {
		*s = ""
		return nil
	}
	var num json.Number
	if err := json.Unmarshal(data, &num); err != nil {
		return err
	}
	*s = FlexString(num)
	return nil
}

// DecodeLoginResult decodes the base64 `res` parameter.
func DecodeLoginResult(res string) (*LoginResult, error) {
	// '+' turns into a space when the query is parsed
	res = strings.ReplaceAll(strings.TrimSpace(res), " ", "+")
	raw, err := base64.StdEncoding.DecodeString(res)
	if err != nil {
		if raw, err = base64.RawStdEncoding.DecodeString(strings.TrimRight(res, "=")); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrBadLoginResult, err)
		}
	}
	text := string(raw)
	if unescaped, err := url.PathUnescape(text); err == nil {
		if result, err := parseLoginResult(unescaped); err == nil {
			return result, nil
		}
	}
	return parseLoginResult(text)
}

func parseLoginResult(text string) (*LoginResult, error) {
	var result LoginResult
	if err := json.Unmarshal([]byte(text), &result); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrBadLoginResult, err)
	}
	return &result, nil
}

// Redirect is the parsed query of the login redirect.
type Redirect struct {
	GameID string
	Res    string
}

// ParseRedirect reads the game id and login result from a redirect query.
// Some login servers append `?res=` to the payload instead of adding a
// separate parameter.
func ParseRedirect(rawQuery string) (*Redirect, error) {
	qs, err := url.ParseQuery(strings.TrimPrefix(rawQuery, "?"))
	if err != nil {
		return nil, err
	}
	payload := qs.Get("payload")
	r := &Redirect{GameID: payload, Res: qs.Get("res")}
	if r.Res == "" {
		if idx := strings.Index(payload, "?res="); idx >= 0 {
			r.GameID = payload[:idx]
			r.Res = payload[idx+len("?res="):]
		}
	}
	return r, nil
}
