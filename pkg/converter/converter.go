package converter

import (
	"context"
	"fmt"
	"strings"

	"github.com/belphemur/PlanExtractor/internal/plan"
	"github.com/belphemur/PlanExtractor/pkg/converter/constant"
	"github.com/belphemur/PlanExtractor/pkg/converter/jpeg"
	"github.com/samber/lo"
)

type Converter interface {
	// Format of the converter
	Format() (format constant.ConversionFormat)
	// ConvertSheet normalizes, crops, resizes and encodes the bitmap held by the container.
	//
	// On success the sheet carries the encoded image and its dimensions.
	ConvertSheet(ctx context.Context, container *plan.SheetContainer, options plan.Options) (*plan.SheetContainer, error)
	PrepareConverter() error
}

var converters = map[constant.ConversionFormat]Converter{
	constant.JPEG: jpeg.New(),
}

// Available returns a list of available converters.
func Available() []constant.ConversionFormat {
	return lo.Keys(converters)
}

// Get returns a converter by format.
// If the converter is not available, an error is returned.
var Get = getConverter

func getConverter(name constant.ConversionFormat) (Converter, error) {
	if converter, ok := converters[name]; ok {
		return converter, nil
	}

	return nil, fmt.Errorf("unknown converter \"%s\", available options are %s", name, strings.Join(lo.Map(Available(), func(item constant.ConversionFormat, index int) string {
		return item.String()
	}), ", "))
}
