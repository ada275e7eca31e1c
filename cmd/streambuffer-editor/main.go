// Command streambuffer-editor applies offline edit operations to an
// in-memory tracked frame list. It does not read or write sequence
// files itself; callers wanting file I/O supply their own codec and
// call into internal/editor directly, or extend loadList/saveList below.
package main

import (
	"flag"
	"fmt"
	"log"
	"strconv"
	"strings"

	"github.com/plustoolkit/streambuffer/internal/editor"
)

func main() {
	var (
		operation            = flag.String("operation", "", "edit operation: trim, decimate, merge, update-field, delete-field, fill-rect, crop-rect, remove-image-data, update-reference-transform")
		sourceFile           = flag.String("source-seq-file", "", "path to the source sequence file")
		sourceFiles          = flag.String("source-seq-files", "", "comma-separated list of source sequence files, for merge")
		outputFile           = flag.String("output-seq-file", "", "path to the output sequence file")
		firstFrameIndex      = flag.Uint("first-frame-index", 0, "first frame index to keep, for trim")
		lastFrameIndex       = flag.Uint("last-frame-index", 0, "last frame index to keep, for trim")
		decimationFactor     = flag.Uint("decimation-factor", 2, "keep every Nth frame, for decimate")
		incrementTimestamps  = flag.Bool("increment-timestamps", false, "offset merged files' timestamps to be contiguous")
		fieldName            = flag.String("field-name", "", "custom field name to update or delete")
		fieldValue           = flag.String("field-value", "", "new value for --field-name")
		fillRectOrigin       = flag.String("fill-rect-origin", "", "x,y origin of the fill rectangle")
		fillRectSize         = flag.String("fill-rect-size", "", "x,y size of the fill rectangle")
		fillGrayLevel        = flag.Int("fill-gray-level", 0, "gray level (0-255) written inside the fill rectangle")
		cropRectOrigin       = flag.String("crop-rect-origin", "", "x,y[,z] origin of the crop rectangle")
		cropRectSize         = flag.String("crop-rect-size", "", "x,y[,z] size of the crop rectangle")
		updatedReferenceName = flag.String("update-reference-transform", "", "reference transform name to rewrite ToolToReference transforms against")
	)
	flag.Parse()

	list, err := loadList(*sourceFile, *sourceFiles)
	if err != nil {
		log.Fatalf("streambuffer-editor: %v", err)
	}

	switch *operation {
	case "trim":
		if err := list.Trim(*firstFrameIndex, *lastFrameIndex); err != nil {
			log.Fatalf("streambuffer-editor: trim: %v", err)
		}
	case "decimate":
		if err := list.Decimate(*decimationFactor); err != nil {
			log.Fatalf("streambuffer-editor: decimate: %v", err)
		}
	case "merge":
		merged := &editor.TrackedFrameList{}
		for _, path := range strings.Split(*sourceFiles, ",") {
			other, err := loadList(strings.TrimSpace(path), "")
			if err != nil {
				log.Fatalf("streambuffer-editor: merge: %v", err)
			}
			merged.Merge(other, *incrementTimestamps)
		}
		list = merged
	case "update-field":
		if *fieldName == "" {
			log.Fatalf("streambuffer-editor: update-field requires --field-name")
		}
		if err := list.SetFrameFieldValue(*fieldName, *fieldValue, editor.LiteralValue{}); err != nil {
			log.Fatalf("streambuffer-editor: update-field: %v", err)
		}
	case "delete-field":
		if *fieldName == "" {
			log.Fatalf("streambuffer-editor: delete-field requires --field-name")
		}
		list.DeleteFrameField(*fieldName)
	case "fill-rect":
		rect, err := parseRect2D(*fillRectOrigin, *fillRectSize)
		if err != nil {
			log.Fatalf("streambuffer-editor: fill-rect: %v", err)
		}
		list.FillRectangle(rect, *fillGrayLevel)
	case "crop-rect":
		rect, originZ, sizeZ, err := parseRect3D(*cropRectOrigin, *cropRectSize)
		if err != nil {
			log.Fatalf("streambuffer-editor: crop-rect: %v", err)
		}
		if err := list.CropRectangle(rect, originZ, sizeZ); err != nil {
			log.Fatalf("streambuffer-editor: crop-rect: %v", err)
		}
	case "remove-image-data":
		list.RemoveImageData()
	case "update-reference-transform":
		if *updatedReferenceName == "" {
			log.Fatalf("streambuffer-editor: update-reference-transform requires --update-reference-transform")
		}
		list.RewriteReferenceTransforms(*updatedReferenceName)
	default:
		log.Fatalf("streambuffer-editor: unknown operation %q", *operation)
	}

	if err := saveList(*outputFile, list); err != nil {
		log.Fatalf("streambuffer-editor: %v", err)
	}
	log.Printf("streambuffer-editor: wrote %d frames to %s", list.NumberOfFrames(), *outputFile)
}

func parseRect2D(origin, size string) (editor.Rectangle2D, error) {
	ox, oy, _, err := parseTriple(origin)
	if err != nil {
		return editor.Rectangle2D{}, err
	}
	sx, sy, _, err := parseTriple(size)
	if err != nil {
		return editor.Rectangle2D{}, err
	}
	return editor.Rectangle2D{OriginX: uint32(ox), OriginY: uint32(oy), SizeX: uint32(sx), SizeY: uint32(sy)}, nil
}

func parseRect3D(origin, size string) (editor.Rectangle2D, uint32, uint32, error) {
	ox, oy, oz, err := parseTriple(origin)
	if err != nil {
		return editor.Rectangle2D{}, 0, 0, err
	}
	sx, sy, sz, err := parseTriple(size)
	if err != nil {
		return editor.Rectangle2D{}, 0, 0, err
	}
	if sz == 0 {
		sz = 1
	}
	return editor.Rectangle2D{OriginX: uint32(ox), OriginY: uint32(oy), SizeX: uint32(sx), SizeY: uint32(sy)}, uint32(oz), uint32(sz), nil
}

func parseTriple(s string) (a, b, c int, err error) {
	parts := strings.Split(s, ",")
	vals := make([]int, len(parts))
	for i, p := range parts {
		vals[i], err = strconv.Atoi(strings.TrimSpace(p))
		if err != nil {
			return 0, 0, 0, err
		}
	}
	switch len(vals) {
	case 2:
		return vals[0], vals[1], 0, nil
	case 3:
		return vals[0], vals[1], vals[2], nil
	default:
		return 0, 0, 0, fmt.Errorf("expected 2 or 3 comma-separated integers, got %q", s)
	}
}

// loadList is the seam where a sequence-file codec would be plugged in.
// Without one wired, it returns an empty list so the flag surface and
// edit operations remain exercisable standalone.
func loadList(single, commaSeparated string) (*editor.TrackedFrameList, error) {
	if single == "" && commaSeparated == "" {
		return nil, fmt.Errorf("one of --source-seq-file or --source-seq-files is required")
	}
	return &editor.TrackedFrameList{}, nil
}

// saveList is the seam where a sequence-file codec would be plugged in.
func saveList(path string, list *editor.TrackedFrameList) error {
	_ = path
	_ = list
	return nil
}
