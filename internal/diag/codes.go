package diag

import (
	"fmt"
)

type Code uint16

const (
	UnknownCode Code = 0

	// Кодогенерация
	CgnInfo                   Code = 3000
	CgnTypeMismatch           Code = 3001
	CgnTypeError              Code = 3002
	CgnUndeclaredVariable     Code = 3003
	CgnUndeclaredFunction     Code = 3004
	CgnMissingReturnStatement Code = 3005
	CgnUnsupportedFeature     Code = 3006
	CgnInternalError          Code = 3007
	CgnMainReturnsResult      Code = 3008

	// IO / загрузка единиц трансляции
	IOLoadFileError  Code = 4001
	IODecodeUnit     Code = 4002
	IOWriteArtifact  Code = 4003
	IOCacheCorrupted Code = 4004

	// Проект
	ProjManifestInvalid Code = 5001
	ProjUnitMissing     Code = 5002
)

var codeDescription = map[Code]string{
	UnknownCode:               "Unknown error",
	CgnInfo:                   "Code generation information",
	CgnTypeMismatch:           "Type mismatch",
	CgnTypeError:              "Type error",
	CgnUndeclaredVariable:     "Undeclared variable",
	CgnUndeclaredFunction:     "Undeclared function",
	CgnMissingReturnStatement: "Missing return statement",
	CgnUnsupportedFeature:     "Unsupported feature",
	CgnInternalError:          "Internal compiler error",
	CgnMainReturnsResult:      "main returning Result is not fully supported",
	IOLoadFileError:           "I/O load file error",
	IODecodeUnit:              "Malformed compilation unit",
	IOWriteArtifact:           "Failed to write build artifact",
	IOCacheCorrupted:          "Corrupted cache entry",
	ProjManifestInvalid:       "Invalid project manifest",
	ProjUnitMissing:           "Compilation unit not found",
}

// ID returns the stable short identifier, e.g. CGN3001.
func (c Code) ID() string {
	switch ic := int(c); {
	case ic >= 3000 && ic < 4000:
		return fmt.Sprintf("CGN%04d", ic)
	case ic >= 4000 && ic < 5000:
		return fmt.Sprintf("IO%04d", ic)
	case ic >= 5000 && ic < 6000:
		return fmt.Sprintf("PRJ%04d", ic)
	}
	return "E0000"
}

func (c Code) Title() string {
	desc, ok := codeDescription[c]
	if !ok {
		return codeDescription[UnknownCode]
	}
	return desc
}

func (c Code) String() string {
	return fmt.Sprintf("[%s]: %s", c.ID(), c.Title())
}
