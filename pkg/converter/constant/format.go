package constant

import "fmt"

type ConversionFormat int

const (
	JPEG ConversionFormat = iota
)

var formatNames = map[ConversionFormat]string{
	JPEG: "jpeg",
}

var DefaultConversion = JPEG

func (c ConversionFormat) String() string {
	if name, ok := formatNames[c]; ok {
		return name
	}
	return fmt.Sprintf("format(%d)", c)
}
