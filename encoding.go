package lrucache

import (
	"encoding/json"
	"strconv"
)

// Encoding converts keys or values to and from the text stored in a
// snapshot file. Encodings must round-trip: Decode(Encode(v)) == v.
// The encoded text may contain any characters; the file format escapes them.
type Encoding[T any] interface {
	Encode(v T) (string, error)
	Decode(s string) (T, error)
}

// StringEncoding stores strings as-is.
func StringEncoding() Encoding[string] {
	return stringEncoding{}
}

type stringEncoding struct{}

func (stringEncoding) Encode(v string) (string, error) { return v, nil }
func (stringEncoding) Decode(s string) (string, error) { return s, nil }

// IntEncoding stores ints in base 10.
func IntEncoding() Encoding[int] {
	return intEncoding{}
}

type intEncoding struct{}

func (intEncoding) Encode(v int) (string, error) { return strconv.Itoa(v), nil }
func (intEncoding) Decode(s string) (int, error) { return strconv.Atoi(s) }

// JSONEncoding stores values as compact JSON.
func JSONEncoding[T any]() Encoding[T] {
	return jsonEncoding[T]{}
}

type jsonEncoding[T any] struct{}

func (jsonEncoding[T]) Encode(v T) (string, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

func (jsonEncoding[T]) Decode(s string) (T, error) {
	var v T
	err := json.Unmarshal([]byte(s), &v)
	return v, err
}
