// Package client provides the http helpers shared by the backend and LCD clients.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/cookiejar"
	"time"

	"github.com/pkg/errors"
)

const (
	defaultTimeout              = 60 // seconds
	maxReadContentLength  int64 = 1024 * 1024 * 10
	contentTypeJSON             = "application/json"
	defaultUserAgentValue       = "storefront"
)

var (
	httpCtx = context.Background()

	// ErrEmptyResponse empty body
	ErrEmptyResponse = errors.New("empty response body")

	defaultClient = newHTTPClient(nil)
)

func newHTTPClient(jar http.CookieJar) *http.Client {
	return &http.Client{
		Jar: jar,
		Transport: &http.Transport{
			Proxy:               http.ProxyFromEnvironment,
			MaxIdleConnsPerHost: 10,
			IdleConnTimeout:     90 * time.Second,
		},
	}
}

// NewSessionClient returns a client that keeps cookies between calls.
func NewSessionClient() *http.Client {
	jar, _ := cookiejar.New(nil)
	return newHTTPClient(jar)
}

// Response is a fully read http response.
type Response struct {
	StatusCode int
	Body       []byte
}

// OK is true for 2xx status codes.
func (r *Response) OK() bool {
	return r.StatusCode >= 200 && r.StatusCode < 300
}

// Request describes one http call.
type Request struct {
	Method  string
	URL     string
	Body    interface{} // marshaled as json when not nil
	Headers map[string]string
	Timeout int // seconds
	Client  *http.Client
}

// Do sends the request and reads the whole body. Non-2xx statuses are not errors.
func Do(ctx context.Context, req *Request) (*Response, error) {
	timeout := req.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	ctx, cancel := context.WithTimeout(ctx, time.Duration(timeout)*time.Second)
	defer cancel()

	var reader io.Reader
	if req.Body != nil {
		switch body := req.Body.(type) {
		case []byte:
			reader = bytes.NewReader(body)
		case string:
			reader = bytes.NewBufferString(body)
		default:
			bs, err := json.Marshal(body)
			if err != nil {
				return nil, errors.Wrap(err, "marshal request body")
			}
			reader = bytes.NewReader(bs)
		}
	}
	method := req.Method
	if method == "" {
		method = http.MethodGet
	}
	httpReq, err := http.NewRequestWithContext(ctx, method, req.URL, reader)
	if err != nil {
		return nil, errors.Wrap(err, "new request")
	}
	httpReq.Header.Set("Accept", contentTypeJSON)
	httpReq.Header.Set("User-Agent", defaultUserAgentValue)
	if reader != nil {
		httpReq.Header.Set("Content-Type", contentTypeJSON)
	}
	for k, v := range req.Headers {
		httpReq.Header.Set(k, v)
	}

	cli := req.Client
	if cli == nil {
		cli = defaultClient
	}
	resp, err := cli.Do(httpReq)
	if err != nil {
		return nil, errors.Wrapf(err, "%v %v", method, req.URL)
	}
	defer func() {
		_ = resp.Body.Close()
	}()
	body, err := io.ReadAll(io.LimitReader(resp.Body, maxReadContentLength))
	if err != nil {
		return nil, fmt.Errorf("read body error: %w", err)
	}
	return &Response{StatusCode: resp.StatusCode, Body: body}, nil
}

// RPCGet get and unmarshal json result
func RPCGet(result interface{}, url string) error {
	return RPCGetWithContext(httpCtx, result, url)
}

// RPCGetWithContext get with context
func RPCGetWithContext(ctx context.Context, result interface{}, url string) error {
	resp, err := Do(ctx, &Request{Method: http.MethodGet, URL: url})
	if err != nil {
		return err
	}
	return resp.decodeJSON(result)
}

// RPCPostJSONWithContext posts body as json and unmarshals the result
func RPCPostJSONWithContext(ctx context.Context, result interface{}, url string, body interface{}, timeout int) error {
	resp, err := Do(ctx, &Request{Method: http.MethodPost, URL: url, Body: body, Timeout: timeout})
	if err != nil {
		return err
	}
	return resp.decodeJSON(result)
}

func (r *Response) decodeJSON(result interface{}) error {
	if r.StatusCode != http.StatusOK {
		return fmt.Errorf("wrong response status %v. message: %v", r.StatusCode, string(r.Body))
	}
	if len(r.Body) == 0 {
		return ErrEmptyResponse
	}
	if err := json.Unmarshal(r.Body, result); err != nil {
		return fmt.Errorf("unmarshal body error, body is \"%v\" err=\"%w\"", string(r.Body), err)
	}
	return nil
}
