package codegen

import (
	"github.com/okra-platform/apigen/internal/codegen/typescript"
)

// ArtifactKind classifies generated output
type ArtifactKind int

const (
	// KindType is one type declaration module
	KindType ArtifactKind = iota
	// KindTypeIndex is the module re-exporting every type
	KindTypeIndex
	// KindService is one service module per controller group
	KindService
)

func (k ArtifactKind) String() string {
	switch k {
	case KindType:
		return "type"
	case KindTypeIndex:
		return "type-index"
	case KindService:
		return "service"
	default:
		return "unknown"
	}
}

// Artifact is one generated source file. Name is the file name without extension.
type Artifact struct {
	Kind    ArtifactKind
	Name    string
	Content []byte
}

// FileName returns the artifact's file name
func (a Artifact) FileName() string {
	return a.Name + typescript.FileExtension
}
