package runtime

import (
	"encoding/json"
	"fmt"
	"io"
)

// jsonReader adapts encoding/json's streaming tokenizer to the Reader
// contract. A one-token pushback buffer supports PeekNull.
type jsonReader struct {
	dec       *json.Decoder
	peeked    json.Token
	hasPeeked bool
}

// NewJSONReader creates a Reader over a JSON byte stream. Numbers are kept
// as json.Number so integer reads stay exact.
func NewJSONReader(r io.Reader) Reader {
	dec := json.NewDecoder(r)
	dec.UseNumber()
	return &jsonReader{dec: dec}
}

func (r *jsonReader) next() (json.Token, error) {
	if r.hasPeeked {
		r.hasPeeked = false
		return r.peeked, nil
	}
	return r.dec.Token()
}

func (r *jsonReader) peek() (json.Token, error) {
	if !r.hasPeeked {
		tok, err := r.dec.Token()
		if err != nil {
			return nil, err
		}
		r.peeked = tok
		r.hasPeeked = true
	}
	return r.peeked, nil
}

func (r *jsonReader) expectDelim(d json.Delim) error {
	tok, err := r.next()
	if err != nil {
		return err
	}
	if got, ok := tok.(json.Delim); !ok || got != d {
		return fmt.Errorf("expected %q, got %v", d.String(), tok)
	}
	return nil
}

func (r *jsonReader) BeginObject() error { return r.expectDelim('{') }
func (r *jsonReader) EndObject() error   { return r.expectDelim('}') }
func (r *jsonReader) BeginArray() error  { return r.expectDelim('[') }
func (r *jsonReader) EndArray() error    { return r.expectDelim(']') }

func (r *jsonReader) HasNext() (bool, error) {
	if r.hasPeeked {
		if d, ok := r.peeked.(json.Delim); ok && (d == '}' || d == ']') {
			return false, nil
		}
		return true, nil
	}
	return r.dec.More(), nil
}

func (r *jsonReader) SelectName(options *Options) (int, error) {
	tok, err := r.next()
	if err != nil {
		return 0, err
	}
	name, ok := tok.(string)
	if !ok {
		return 0, fmt.Errorf("expected object name, got %v", tok)
	}
	return options.indexOf(name), nil
}

func (r *jsonReader) SkipValue() error {
	depth := 0
	for {
		tok, err := r.next()
		if err != nil {
			return err
		}
		if d, ok := tok.(json.Delim); ok {
			switch d {
			case '{', '[':
				depth++
			case '}', ']':
				depth--
			}
		}
		if depth == 0 {
			return nil
		}
	}
}

func (r *jsonReader) PeekNull() (bool, error) {
	tok, err := r.peek()
	if err != nil {
		return false, err
	}
	return tok == nil, nil
}

func (r *jsonReader) ReadNull() error {
	tok, err := r.next()
	if err != nil {
		return err
	}
	if tok != nil {
		return fmt.Errorf("expected null, got %v", tok)
	}
	return nil
}

func (r *jsonReader) ReadString() (string, error) {
	tok, err := r.next()
	if err != nil {
		return "", err
	}
	s, ok := tok.(string)
	if !ok {
		return "", fmt.Errorf("expected string, got %v", tok)
	}
	return s, nil
}

func (r *jsonReader) ReadInt() (int64, error) {
	tok, err := r.next()
	if err != nil {
		return 0, err
	}
	num, ok := tok.(json.Number)
	if !ok {
		return 0, fmt.Errorf("expected number, got %v", tok)
	}
	return num.Int64()
}

func (r *jsonReader) ReadFloat() (float64, error) {
	tok, err := r.next()
	if err != nil {
		return 0, err
	}
	num, ok := tok.(json.Number)
	if !ok {
		return 0, fmt.Errorf("expected number, got %v", tok)
	}
	return num.Float64()
}

func (r *jsonReader) ReadBool() (bool, error) {
	tok, err := r.next()
	if err != nil {
		return false, err
	}
	b, ok := tok.(bool)
	if !ok {
		return false, fmt.Errorf("expected boolean, got %v", tok)
	}
	return b, nil
}
