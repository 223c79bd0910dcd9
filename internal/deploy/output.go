package deploy

import (
	"errors"
	"fmt"
	"strings"
)

var ErrUnsupportedOutputType = errors.New("unsupported output type")

// OutputType selects the single destination a deploy writes to.
type OutputType string

const (
	OutputLocal OutputType = "local"
	OutputS3    OutputType = "s3"
	OutputPG    OutputType = "pg"
)

var OutputTypes = []OutputType{OutputLocal, OutputS3, OutputPG}

func (o OutputType) String() string {
	return string(o)
}

// ParseOutputType accepts exactly one of the known output types, there is no
// default.
func ParseOutputType(s string) (OutputType, error) {
	for _, o := range OutputTypes {
		if s == string(o) {
			return o, nil
		}
	}
	return "", fmt.Errorf("%w %q, expected one of %s", ErrUnsupportedOutputType, s, choices())
}

func choices() string {
	names := make([]string, len(OutputTypes))
	for i, o := range OutputTypes {
		names[i] = string(o)
	}
	return strings.Join(names, ", ")
}
