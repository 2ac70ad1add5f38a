package server

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"

	"portfolio/internal/content"
	"portfolio/pkg/types"

	"github.com/goccy/go-json"
)

// projectForm is the multipart payload of project create and update.
// Translations arrive as a JSON encoded string field.
type projectForm struct {
	Translations   string   `form:"translations"`
	CreationDate   *string  `form:"creation_date"`
	Country        *string  `form:"country"`
	CategoryID     *string  `form:"category_id"`
	MainImageIndex *string  `form:"mainImageIndex"`
	MainImageID    *string  `form:"mainImageId"`
	ImagesToDelete []string `form:"imagesToDelete"`
}

func (s *Service) parseProjectForm(w http.ResponseWriter, r *http.Request) (*projectForm, []types.Upload, error) {
	maxBytes := s.config.MaxUploadMB << 20
	r.Body = http.MaxBytesReader(w, r.Body, maxBytes)

	if err := r.ParseMultipartForm(maxBytes); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return nil, nil, &content.ValidationError{Field: "images", Message: "upload is too large"}
		}
		if !errors.Is(err, http.ErrNotMultipart) {
			return nil, nil, &content.ValidationError{Message: "invalid multipart form"}
		}
		if err := r.ParseForm(); err != nil {
			return nil, nil, &content.ValidationError{Message: "invalid form payload"}
		}
	}

	var f projectForm
	if err := decoder.Decode(&f, r.Form); err != nil {
		return nil, nil, &content.ValidationError{Message: "invalid form payload"}
	}

	uploads, err := s.readUploads(r)
	if err != nil {
		return nil, nil, err
	}

	return &f, uploads, nil
}

func (s *Service) readUploads(r *http.Request) ([]types.Upload, error) {
	if r.MultipartForm == nil {
		return nil, nil
	}

	headers := r.MultipartForm.File["images"]
	if len(headers) > s.config.MaxImages {
		return nil, &content.ValidationError{Field: "images", Message: fmt.Sprintf("at most %d images can be uploaded", s.config.MaxImages)}
	}

	uploads := make([]types.Upload, 0, len(headers))
	for _, header := range headers {
		file, err := header.Open()
		if err != nil {
			return nil, fmt.Errorf("failed to open uploaded file: %w", err)
		}

		data, err := io.ReadAll(file)
		_ = file.Close()
		if err != nil {
			return nil, fmt.Errorf("failed to read uploaded file: %w", err)
		}

		uploads = append(uploads, types.Upload{
			Name:        header.Filename,
			ContentType: header.Header.Get("Content-Type"),
			Data:        data,
		})
	}

	return uploads, nil
}

// changeSet converts the form into a change set. Only submitted fields are
// included. An empty creation date clears it.
func (f *projectForm) changeSet(uploads []types.Upload) (content.ChangeSet, error) {
	cs := content.ChangeSet{
		Attributes: make(map[string]any),
		NewImages:  uploads,
	}

	if strings.TrimSpace(f.Translations) != "" {
		if err := json.Unmarshal([]byte(f.Translations), &cs.Translations); err != nil {
			return cs, &content.ValidationError{Field: "translations", Message: "invalid JSON format in translations"}
		}
	}

	if f.CreationDate != nil {
		if date := strings.TrimSpace(*f.CreationDate); date != "" {
			cs.Attributes["creation_date"] = date
		} else {
			cs.Attributes["creation_date"] = nil
		}
	}
	if f.Country != nil {
		cs.Attributes["country"] = strings.TrimSpace(*f.Country)
	}
	if f.CategoryID != nil {
		cs.Attributes["category_id"] = strings.TrimSpace(*f.CategoryID)
	}

	if f.MainImageIndex != nil && strings.TrimSpace(*f.MainImageIndex) != "" {
		idx, err := strconv.Atoi(strings.TrimSpace(*f.MainImageIndex))
		if err != nil || idx < 0 {
			return cs, &content.ValidationError{Field: "mainImageIndex", Message: "must be a non-negative integer"}
		}
		cs.MainImageIndex = &idx
	}

	if f.MainImageID != nil {
		var id int64
		if raw := strings.TrimSpace(*f.MainImageID); raw != "" && raw != "null" {
			parsed, err := strconv.ParseInt(raw, 10, 64)
			if err != nil {
				return cs, &content.ValidationError{Field: "mainImageId", Message: "must be an image id"}
			}
			id = parsed
		}
		cs.MainImageID = &id
	}

	ids, err := parseImageIDs(f.ImagesToDelete)
	if err != nil {
		return cs, err
	}
	cs.DeleteImages = ids

	return cs, nil
}

// parseImageIDs accepts repeated fields or a single JSON array.
func parseImageIDs(values []string) ([]int64, error) {
	if len(values) == 1 && strings.HasPrefix(strings.TrimSpace(values[0]), "[") {
		var ids []int64
		if err := json.Unmarshal([]byte(values[0]), &ids); err != nil {
			return nil, &content.ValidationError{Field: "imagesToDelete", Message: "must be a list of image ids"}
		}
		return ids, nil
	}

	ids := make([]int64, 0, len(values))
	for _, value := range values {
		value = strings.TrimSpace(value)
		if value == "" {
			continue
		}
		id, err := strconv.ParseInt(value, 10, 64)
		if err != nil {
			return nil, &content.ValidationError{Field: "imagesToDelete", Message: "must be a list of image ids"}
		}
		ids = append(ids, id)
	}

	return ids, nil
}
