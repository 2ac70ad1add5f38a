package content

import (
	"slices"

	"portfolio/pkg/types"
)

// View selects the shape of resolved documents.
type View struct {
	Language      string
	Privileged    bool
	MainImageOnly bool
}

// Fold assembles owner rows, their translation rows and image rows into
// documents. Owner rows and image rows may repeat, as they do in joined result
// sets; each owner produces one document in first-seen order.
func Fold(kind *Kind, rows []Row, translations []*types.Translation, images []*types.ProjectImage, view View, languages Languages) []*Document {
	index := NewIndex(kind.Table, translations)
	fields := kind.DocumentFields()
	language := languages.Resolve(view.Language)

	var imagesByOwner map[string][]*types.ProjectImage
	if kind.Images {
		imagesByOwner = make(map[string][]*types.ProjectImage)
		for _, image := range images {
			imagesByOwner[image.ProjectID] = append(imagesByOwner[image.ProjectID], image)
		}
	}

	seen := make(map[string]bool, len(rows))
	docs := make([]*Document, 0, len(rows))
	for _, row := range rows {
		id := row.ID()
		if seen[id] {
			continue
		}
		seen[id] = true

		base := make(map[string]string, len(fields))
		for _, field := range fields {
			base[field] = row.Text(field)
		}

		doc := &Document{
			ID:         id,
			Attributes: make(map[string]any, len(row)),
		}
		for column, value := range row {
			if column == "id" || slices.Contains(fields, column) {
				continue
			}
			doc.Attributes[column] = value
		}

		if view.Privileged {
			doc.Translations = index.All(id, base, fields, languages)
		} else {
			doc.Fields = index.Resolve(id, language, base, fields)
		}

		if kind.Images {
			doc.Images = CollectImages(imagesByOwner[id], view.MainImageOnly)
		}

		docs = append(docs, doc)
	}

	return docs
}

// CollectImages deduplicates images by id keeping first-seen order. At most
// one image is flagged main: the first one flagged wins.
func CollectImages(images []*types.ProjectImage, mainOnly bool) []Image {
	out := make([]Image, 0, len(images))
	seen := make(map[int64]bool, len(images))
	mainTaken := false

	for _, image := range images {
		if image == nil || seen[image.ID] {
			continue
		}
		seen[image.ID] = true

		isMain := image.IsMain && !mainTaken
		if isMain {
			mainTaken = true
		}
		if mainOnly && !isMain {
			continue
		}

		out = append(out, Image{ID: image.ID, URL: image.ImageURL, IsMain: isMain})
	}

	return out
}
