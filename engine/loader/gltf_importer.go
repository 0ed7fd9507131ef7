package loader

import (
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/Carmen-Shannon/oxy-anim/engine/model"
)

// gltfImporterImpl is the implementation of the gltfImporter interface.
type gltfImporterImpl struct{}

// gltfImporter runs the parser and both extractors to produce a model.Model.
type gltfImporter interface {
	// Import loads a glTF/GLB file.
	//
	// Parameters:
	//   - path: the file path to the glTF or GLB file
	//
	// Returns:
	//   - model.Model: the skeleton and clips of the asset
	//   - error: error if import fails
	Import(path string) (model.Model, error)

	// ImportReader loads a complete glTF JSON or GLB stream.
	//
	// Parameters:
	//   - name: the model name used when the document names no scene
	//   - r: the reader providing glTF/GLB data
	//   - isGLB: true if the reader provides GLB binary data
	//
	// Returns:
	//   - model.Model: the skeleton and clips of the asset
	//   - error: error if import fails
	ImportReader(name string, r io.Reader, isGLB bool) (model.Model, error)
}

var _ gltfImporter = &gltfImporterImpl{}

// newGLTFImporter creates a new glTF importer.
//
// Returns:
//   - gltfImporter: the importer
func newGLTFImporter() gltfImporter {
	return &gltfImporterImpl{}
}

func (imp *gltfImporterImpl) Import(path string) (model.Model, error) {
	parser := newGLTFParser()
	if err := parser.Parse(path); err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", path, err)
	}

	fallback := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	return imp.importFromParser(parser, fallback, path)
}

func (imp *gltfImporterImpl) ImportReader(name string, r io.Reader, isGLB bool) (model.Model, error) {
	parser := newGLTFParser()
	if err := parser.ParseReader(r, isGLB); err != nil {
		return nil, fmt.Errorf("failed to parse from reader: %w", err)
	}

	return imp.importFromParser(parser, name, "")
}

// importFromParser extracts the skeleton first so clips can address nodes by their assigned names.
func (imp *gltfImporterImpl) importFromParser(parser gltfParser, fallbackName, sourcePath string) (model.Model, error) {
	doc := parser.Document()
	if doc == nil {
		return nil, errNoDocument
	}

	skeleton, nodeNames, err := newGLTFSkeletonExtractor(parser).ExtractSkeleton()
	if err != nil {
		return nil, fmt.Errorf("skeleton extraction failed: %w", err)
	}

	clips, err := newGLTFAnimationExtractor(parser).ExtractAnimations(nodeNames)
	if err != nil {
		return nil, fmt.Errorf("animation extraction failed: %w", err)
	}

	return model.NewModel(
		model.WithName(gltfModelName(doc, fallbackName)),
		model.WithSourcePath(sourcePath),
		model.WithSkeleton(skeleton),
		model.WithAnimations(clips...),
	), nil
}

// gltfModelName prefers the default scene's name.
func gltfModelName(doc *gltfDocument, fallback string) string {
	scene := 0
	if doc.Scene != nil {
		scene = *doc.Scene
	}
	if scene >= 0 && scene < len(doc.Scenes) && doc.Scenes[scene].Name != "" {
		return doc.Scenes[scene].Name
	}
	if fallback != "" {
		return fallback
	}
	return "unnamed_model"
}
