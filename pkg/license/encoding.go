package license

import (
	"bytes"
	"strings"

	"github.com/gogs/chardet"
	"github.com/rotisserie/eris"
	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/htmlindex"
	"golang.org/x/text/encoding/ianaindex"
)

// ErrUndetectedEncoding is returned when neither the detected encoding nor any fallback can decode a file without
// losing information
var ErrUndetectedEncoding = eris.New("could not detect a text encoding")

const bom = "\uFEFF"

// Guesser returns the name of the most likely encoding of data. ok is false if the guess is inconclusive.
type Guesser func(data []byte) (name string, ok bool)

// ChardetGuesser guesses encodings with the ICU port in github.com/gogs/chardet
func ChardetGuesser(data []byte) (string, bool) {
	result, err := chardet.NewTextDetector().DetectBest(data)
	if err != nil || result == nil || result.Charset == "" {
		return "", false
	}

	return result.Charset, true
}

// Encoding is a text encoding that successfully round-tripped a file's content
type Encoding struct {
	Name string
	enc  encoding.Encoding
	bom  bool
}

func lookupEncoding(name string) (encoding.Encoding, error) {
	enc, err := htmlindex.Get(name)
	if err == nil {
		return enc, nil
	}

	enc, err = ianaindex.IANA.Encoding(name)
	if err != nil {
		return nil, eris.Wrapf(err, "unknown encoding %s", name)
	}

	if enc == nil {
		return nil, eris.Errorf("encoding %s is not supported", name)
	}

	return enc, nil
}

// tryEncoding decodes data with the named encoding. It fails unless re-encoding the result reproduces data exactly.
func tryEncoding(name string, data []byte) (Encoding, string, error) {
	enc, err := lookupEncoding(name)
	if err != nil {
		return Encoding{}, "", err
	}

	decoded, err := enc.NewDecoder().Bytes(data)
	if err != nil {
		return Encoding{}, "", eris.Wrapf(err, "failed to decode as %s", name)
	}

	roundtrip, err := enc.NewEncoder().Bytes(decoded)
	if err != nil {
		return Encoding{}, "", eris.Wrapf(err, "failed to re-encode as %s", name)
	}

	if !bytes.Equal(roundtrip, data) {
		return Encoding{}, "", eris.Errorf("decoding as %s loses information", name)
	}

	result := Encoding{Name: name, enc: enc}
	text := string(decoded)
	if strings.HasPrefix(text, bom) {
		result.bom = true
		text = text[len(bom):]
	}

	return result, text, nil
}

// DetectEncoding decodes data with the guessed encoding or, if that fails, with the first fallback that works. A
// leading byte order mark is stripped from the returned text and restored by Encode. If no candidate works the
// error is ErrUndetectedEncoding.
func DetectEncoding(data []byte, guess Guesser, fallbacks []string) (Encoding, string, error) {
	candidates := make([]string, 0, len(fallbacks)+1)
	if guess != nil {
		if name, ok := guess(data); ok {
			candidates = append(candidates, name)
		}
	}
	candidates = append(candidates, fallbacks...)

	for _, name := range candidates {
		enc, text, err := tryEncoding(name, data)
		if err == nil {
			return enc, text, nil
		}
	}

	return Encoding{}, "", eris.Wrapf(ErrUndetectedEncoding, "tried %s", strings.Join(candidates, ", "))
}

// Encode converts text back into the encoding it was read with
func (e Encoding) Encode(text string) ([]byte, error) {
	if e.enc == nil {
		return nil, eris.New("encoding has not been detected")
	}

	if e.bom {
		text = bom + text
	}

	data, err := e.enc.NewEncoder().Bytes([]byte(text))
	if err != nil {
		return nil, eris.Wrapf(err, "failed to encode as %s", e.Name)
	}

	return data, nil
}

// String returns the encoding name
func (e Encoding) String() string {
	return e.Name
}
