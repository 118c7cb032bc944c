package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/ghodss/yaml"
	"github.com/onkernel/imgreg/lib/images"
	"github.com/onkernel/imgreg/lib/registry"
	"github.com/onkernel/imgreg/lib/registryapi"
	"github.com/samber/lo"
)

// execute runs one façade operation named by args[0] and writes the result to w.
func execute(ctx context.Context, reg *registry.Registry, args []string, w io.Writer, format string) error {
	cmd, rest := args[0], args[1:]

	switch cmd {
	case "list":
		if len(rest) != 0 {
			return usageError("list takes no arguments")
		}
		summaries, err := reg.GetImagesList(ctx)
		if err != nil {
			return err
		}
		return writeOutput(w, format, registryapi.SummaryList{
			Images: lo.Map(summaries, func(s images.Summary, _ int) registryapi.Summary {
				return registryapi.FromSummary(s)
			}),
		})

	case "detail":
		if len(rest) != 0 {
			return usageError("detail takes no arguments")
		}
		all, err := reg.GetImagesDetail(ctx)
		if err != nil {
			return err
		}
		return writeOutput(w, format, toImageList(lo.ToSlicePtr(all)))

	case "show":
		if len(rest) == 0 {
			return usageError("show needs at least one image id")
		}
		if len(rest) == 1 {
			img, err := reg.GetImageMetadata(ctx, rest[0])
			if err != nil {
				return err
			}
			return writeOutput(w, format, registryapi.ImageEnvelope{Image: registryapi.FromImage(img)})
		}
		found, err := reg.GetImagesMetadata(ctx, rest...)
		if err != nil {
			return err
		}
		return writeOutput(w, format, toImageList(found))

	case "add":
		if len(rest) != 1 {
			return usageError("add needs exactly one FILE")
		}
		img, err := readImageFile(rest[0])
		if err != nil {
			return err
		}
		added, err := reg.AddImageMetadata(ctx, img)
		if err != nil {
			return err
		}
		return writeOutput(w, format, registryapi.ImageEnvelope{Image: registryapi.FromImage(added)})

	case "update":
		if len(rest) != 2 {
			return usageError("update needs ID and FILE")
		}
		upd, err := readUpdateFile(rest[1])
		if err != nil {
			return err
		}
		updated, err := reg.UpdateImageMetadata(ctx, rest[0], upd)
		if err != nil {
			return err
		}
		return writeOutput(w, format, registryapi.ImageEnvelope{Image: registryapi.FromImage(updated)})

	case "delete":
		if len(rest) != 1 {
			return usageError("delete needs exactly one ID")
		}
		return reg.DeleteImageMetadata(ctx, rest[0])

	default:
		return usageError("unknown command %q", cmd)
	}
}

func toImageList(imgs []*images.Image) registryapi.ImageList {
	return registryapi.ImageList{
		Images: lo.Map(imgs, func(img *images.Image, _ int) registryapi.Image {
			return *registryapi.FromImage(img)
		}),
	}
}

// readImageFile loads an image record from a JSON or YAML file. Both the bare
// record and the {"image": ...} envelope are accepted.
func readImageFile(path string) (*images.Image, error) {
	var rec registryapi.Image
	if err := readRecordFile(path, &rec); err != nil {
		return nil, err
	}
	return rec.ToImage(), nil
}

// readUpdateFile loads a partial update. Fields missing from the file are left
// unchanged by the registry.
func readUpdateFile(path string) (*images.Update, error) {
	var upd registryapi.ImageUpdate
	if err := readRecordFile(path, &upd); err != nil {
		return nil, err
	}
	return upd.ToUpdate(), nil
}

// readRecordFile decodes a JSON or YAML file into out, unwrapping an
// {"image": ...} envelope when present.
func readRecordFile(path string, out any) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read image file: %w", err)
	}
	jsonData, err := yaml.YAMLToJSON(data)
	if err != nil {
		return fmt.Errorf("parse image file %s: %w", path, err)
	}

	var env struct {
		Image json.RawMessage `json:"image"`
	}
	if err := json.Unmarshal(jsonData, &env); err == nil && len(env.Image) > 0 && string(env.Image) != "null" {
		jsonData = env.Image
	}
	if err := json.Unmarshal(jsonData, out); err != nil {
		return fmt.Errorf("parse image file %s: %w", path, err)
	}
	return nil
}

func writeOutput(w io.Writer, format string, v any) error {
	var (
		data []byte
		err  error
	)
	switch format {
	case "yaml":
		data, err = yaml.Marshal(v)
	default:
		data, err = json.MarshalIndent(v, "", "  ")
		data = append(data, '\n')
	}
	if err != nil {
		return fmt.Errorf("encode output: %w", err)
	}
	_, err = w.Write(data)
	return err
}
