package plan

// Fixed parameters of the extraction.
const (
	InputPath  = "attached_assets/3-bedroom-technical-plans_1759503916090.pdf"
	OutputPath = "attached_assets/3br-technical-plans"

	MaxPages    = 6
	DPI         = 300
	TargetWidth = 1400
	Quality     = 100
	CropRight   = 300

	Extension = ".jpg"
)

// Labels name the output of each page, in page order.
var Labels = [MaxPages]string{
	"cover-page",
	"floor-plan-main",
	"elevations-front-rear",
	"elevations-left-right",
	"foundation-plan",
	"roof-framing-plan",
}

// FileName returns the output file name of the page at index.
func FileName(index int) string {
	return Labels[index] + Extension
}

// PageCount is the number of pages extracted from a document of docPages pages.
func PageCount(docPages int) int {
	return max(0, min(MaxPages, docPages))
}
