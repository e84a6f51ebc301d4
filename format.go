package unildd

import (
	"github.com/simonhull/unildd/internal/types"
)

// Format identifies an object or container format.
type Format = types.Format

// Format constants.
const (
	FormatUnknown     = types.FormatUnknown
	FormatELF         = types.FormatELF
	FormatMachO       = types.FormatMachO
	FormatFat         = types.FormatFat
	FormatArchive     = types.FormatArchive
	FormatThinArchive = types.FormatThinArchive
	FormatPE          = types.FormatPE
	FormatCOFF        = types.FormatCOFF
	FormatDOS         = types.FormatDOS
	FormatCOFFImport  = types.FormatCOFFImport
	FormatCOFFBigObj  = types.FormatCOFFBigObj
)

// Kind is the shape of a classified buffer: flat, fat, archive or unknown.
type Kind = types.Kind

// Kind constants.
const (
	KindUnknown = types.KindUnknown
	KindFlat    = types.KindFlat
	KindFat     = types.KindFat
	KindArchive = types.KindArchive
)

// Classification is the result of Classify.
type Classification = types.Classification

// Classify inspects the leading bytes of data and reports which kind of
// object it holds. It never fails and never reads past len(data).
func Classify(data []byte) Classification {
	return types.Classify(data)
}

// Object is the normalized metadata record for one binary object.
type Object = types.Object

// Outcome pairs an Object with the error that interrupted it, if any.
type Outcome = types.Outcome

// Collection is the flat, depth-first list of outcomes for one read.
type Collection = types.Collection
