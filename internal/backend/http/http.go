// Package http implements the http interpretation: elevating a string
// value (or a url cell) performs a one-shot GET and exposes the response
// body as this cell's value, stdlib net/http since no repo in the corpus
// uses a dedicated HTTP client library for simple one-shot requests.
// Write-back is undefined for HTTP (Open Question 3): Serial returns a
// KindNone error so write-back treats it as a no-op, and any explicit
// write against an http cell surfaces ReadOnly.
package http

import (
	"io"
	"net/http"
	"time"

	"treenav/internal/cell"
	"treenav/internal/elevreg"
	"treenav/internal/herr"
	"treenav/internal/value"
)

func init() {
	elevreg.Register([]string{"value", "url"}, []string{"http"}, construct)
}

var client = &http.Client{Timeout: 30 * time.Second}

func construct(source cell.Cell, target string, params elevreg.Params) (cell.Cell, error) {
	reader, err := source.Read()
	if err != nil {
		return cell.Cell{}, err
	}
	v, err := reader.Value()
	if err != nil {
		return cell.Cell{}, err
	}
	urlStr, ok := v.AsStr()
	if !ok {
		return cell.Cell{}, herr.UserErr("http elevation requires a string url value")
	}
	resp, err := client.Get(urlStr)
	if err != nil {
		return cell.Cell{}, herr.NetErr("GET "+urlStr+" failed", err)
	}
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return cell.Cell{}, herr.NetErr("failed to read response body from "+urlStr, err)
	}
	b := &backend{status: resp.StatusCode, body: string(body)}
	dom := cell.NewElevatedDomain(cell.ReadOnly, source)
	dom.SetRoot(b)
	return cell.New(b, dom), nil
}

type backend struct {
	status int
	body   string
}

func (b *backend) Interpretation() string { return "http" }

func (b *backend) Read() (cell.Reader, error) { return &reader{b: b}, nil }

func (b *backend) Write() (cell.Writer, error) {
	return nil, herr.ReadOnlyErr("http responses are read-only")
}

func (b *backend) Sub() (cell.Group, error) {
	return nil, herr.NoRes("http responses have no sub children")
}

func (b *backend) Attr() (cell.Group, error) {
	return nil, herr.NoRes("http has no attribute relation")
}

func (b *backend) Head() (cell.Cell, cell.Relation, error) {
	return cell.Cell{}, 0, herr.NoRes("http response is a domain root")
}

type reader struct{ b *backend }

func (r *reader) Type() (string, error)  { return "http", nil }
func (r *reader) Index() (uint64, error) { return uint64(r.b.status), nil }
func (r *reader) Label() (string, error) { return "", herr.NoRes("http responses have no label") }
func (r *reader) Value() (value.Value, error) { return value.Str(r.b.body), nil }

// Serial deliberately returns a KindNone error: HTTP has no natural
// serialized form to write back into, per Open Question 3.
func (r *reader) Serial() (value.Value, error) {
	return value.Value{}, herr.NoRes("http responses do not support write-back")
}
