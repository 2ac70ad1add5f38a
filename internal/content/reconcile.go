package content

import (
	"context"
	"fmt"
	"maps"
	"slices"
	"time"

	"portfolio/internal/metrics"
	"portfolio/internal/utils"
	"portfolio/pkg/types"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
)

const defaultUploadConcurrency = 4

// Reconciler applies change sets to owner rows, their translations, images
// and parent counters. Every call to Apply is one transaction.
type Reconciler struct {
	gateway   Gateway
	media     MediaHost
	cleaner   Cleaner
	languages Languages
	logger    *logrus.Logger

	uploadConcurrency int
	now               func() time.Time
	newID             func() string
}

func NewReconciler(gateway Gateway, media MediaHost, cleaner Cleaner, languages Languages, logger *logrus.Logger) *Reconciler {
	return &Reconciler{
		gateway:           gateway,
		media:             media,
		cleaner:           cleaner,
		languages:         languages,
		logger:            logger,
		uploadConcurrency: defaultUploadConcurrency,
		now:               time.Now,
		newID:             utils.NanoID,
	}
}

func (r *Reconciler) SetUploadConcurrency(n int) {
	if n <= 0 {
		n = defaultUploadConcurrency
	}
	r.uploadConcurrency = n
}

func (r *Reconciler) Create(ctx context.Context, kind *Kind, cs ChangeSet) (string, error) {
	ids, err := r.Apply(ctx, kind, []Change{{Op: OpCreate, Set: cs}})
	if err != nil {
		return "", err
	}
	return ids[0], nil
}

func (r *Reconciler) Update(ctx context.Context, kind *Kind, id string, cs ChangeSet) error {
	_, err := r.Apply(ctx, kind, []Change{{Op: OpUpdate, ID: id, Set: cs}})
	return err
}

func (r *Reconciler) Delete(ctx context.Context, kind *Kind, id string) error {
	_, err := r.Apply(ctx, kind, []Change{{Op: OpDelete, ID: id}})
	return err
}

// Apply validates every change, uploads new images, then writes all changes
// in one transaction. It returns the id of each change in order: a new id for
// creates, the given id otherwise. On failure nothing is written.
func (r *Reconciler) Apply(ctx context.Context, kind *Kind, changes []Change) (ids []string, err error) {
	defer func() {
		for _, change := range changes {
			metrics.ContentWrites.WithLabelValues(kind.Name, change.Op.String(), metrics.Result(err)).Inc()
		}
	}()

	for i := range changes {
		if err := validateChange(kind, r.languages, &changes[i]); err != nil {
			return nil, err
		}
	}

	if err := r.checkParents(ctx, kind, changes); err != nil {
		return nil, err
	}

	uploaded, err := r.uploadAll(ctx, changes)
	if err != nil {
		return nil, err
	}

	ids = make([]string, len(changes))
	var removed []string
	err = r.gateway.InTx(ctx, func(tx Tx) error {
		removed = removed[:0]
		for i := range changes {
			change := &changes[i]
			switch change.Op {
			case OpCreate:
				id, err := r.create(ctx, tx, kind, &change.Set, uploaded[i])
				if err != nil {
					return err
				}
				ids[i] = id
			case OpUpdate:
				urls, err := r.update(ctx, tx, kind, change.ID, &change.Set, uploaded[i])
				if err != nil {
					return err
				}
				ids[i] = change.ID
				removed = append(removed, urls...)
			case OpDelete:
				urls, err := r.delete(ctx, tx, kind, change.ID)
				if err != nil {
					return err
				}
				ids[i] = change.ID
				removed = append(removed, urls...)
			}
		}
		return nil
	})
	if err != nil {
		r.cleanup(slices.Concat(uploaded...))
		return nil, err
	}

	r.cleanup(removed)
	return ids, nil
}

func (r *Reconciler) create(ctx context.Context, tx Tx, kind *Kind, cs *ChangeSet, urls []string) (string, error) {
	id := r.newID()
	now := r.now()

	var parentID string
	if kind.Parent != nil {
		parentID = attributeText(cs.Attributes[kind.Parent.Column])
		if err := r.requireParent(ctx, tx, kind.Parent, parentID); err != nil {
			return "", err
		}
	}

	base := cs.Translations[BaseLanguage]
	values := map[string]any{
		"id":         id,
		"created_at": now,
		"updated_at": now,
	}
	for _, field := range kind.Fields {
		values[field] = base[field]
	}
	maps.Copy(values, cs.Attributes)

	var rows []*types.Translation
	for _, language := range r.overlayLanguages(cs) {
		for _, field := range slices.Sorted(maps.Keys(cs.Translations[language])) {
			if text := cs.Translations[language][field]; text != "" {
				rows = append(rows, r.translation(kind, id, language, field, text))
			}
		}
	}

	if kind.Slug != nil {
		slugs := deriveSlugs(kind, cs)
		if slugs[BaseLanguage] == "" {
			return "", invalid("translations."+BaseLanguage+"."+kind.Slug.Source, "must contain letters or digits")
		}
		if err := r.checkSlugs(ctx, tx, kind, slugs, ""); err != nil {
			return "", err
		}

		values[kind.Slug.Column] = slugs[BaseLanguage]
		for _, language := range r.overlayLanguages(cs) {
			if slug := slugs[language]; slug != "" {
				rows = append(rows, r.translation(kind, id, language, kind.Slug.Column, slug))
			}
		}
	}

	if err := tx.InsertOwner(ctx, kind, values); err != nil {
		return "", err
	}

	if len(rows) > 0 {
		if err := tx.UpsertTranslations(ctx, rows); err != nil {
			return "", err
		}
	}

	if kind.Images && len(urls) > 0 {
		mainIndex := 0
		if cs.MainImageIndex != nil {
			mainIndex = *cs.MainImageIndex
		}
		if err := tx.InsertImages(ctx, r.images(id, urls, 0, &mainIndex)); err != nil {
			return "", err
		}
	}

	if kind.Parent != nil {
		if err := tx.AdjustCounter(ctx, kind.Parent, parentID, 1); err != nil {
			return "", err
		}
	}

	return id, nil
}

func (r *Reconciler) update(ctx context.Context, tx Tx, kind *Kind, id string, cs *ChangeSet, urls []string) ([]string, error) {
	current, err := tx.LockOwner(ctx, kind, id)
	if err != nil {
		return nil, err
	}

	set := make(map[string]any, len(cs.Attributes)+len(kind.Fields)+1)
	maps.Copy(set, cs.Attributes)
	for field, text := range cs.Translations[BaseLanguage] {
		set[field] = text
	}

	if kind.Parent != nil {
		if value, ok := cs.Attributes[kind.Parent.Column]; ok {
			oldParent := current.Text(kind.Parent.Column)
			newParent := attributeText(value)
			if newParent != oldParent {
				if err := r.requireParent(ctx, tx, kind.Parent, newParent); err != nil {
					return nil, err
				}
				if oldParent != "" {
					if err := tx.AdjustCounter(ctx, kind.Parent, oldParent, -1); err != nil {
						return nil, err
					}
				}
				if err := tx.AdjustCounter(ctx, kind.Parent, newParent, 1); err != nil {
					return nil, err
				}
			}
		}
	}

	var upserts []*types.Translation
	type removal struct{ language, field string }
	var removals []removal

	for _, language := range r.overlayLanguages(cs) {
		for _, field := range slices.Sorted(maps.Keys(cs.Translations[language])) {
			if text := cs.Translations[language][field]; text != "" {
				upserts = append(upserts, r.translation(kind, id, language, field, text))
			} else {
				removals = append(removals, removal{language, field})
			}
		}
	}

	if kind.Slug != nil {
		slugs := deriveSlugs(kind, cs)
		if len(slugs) > 0 {
			if slug, ok := slugs[BaseLanguage]; ok {
				if slug == "" {
					return nil, invalid("translations."+BaseLanguage+"."+kind.Slug.Source, "must contain letters or digits")
				}
				set[kind.Slug.Column] = slug
			}
			if err := r.checkSlugs(ctx, tx, kind, slugs, id); err != nil {
				return nil, err
			}
			for _, language := range r.overlayLanguages(cs) {
				slug, ok := slugs[language]
				switch {
				case !ok:
				case slug == "":
					removals = append(removals, removal{language, kind.Slug.Column})
				default:
					upserts = append(upserts, r.translation(kind, id, language, kind.Slug.Column, slug))
				}
			}
		}
	}

	if len(set) > 0 {
		set["updated_at"] = r.now()
		if err := tx.UpdateOwner(ctx, kind, id, set); err != nil {
			return nil, err
		}
	}

	for _, rm := range removals {
		if err := tx.DeleteTranslation(ctx, kind.Table, id, rm.language, rm.field); err != nil {
			return nil, err
		}
	}

	if len(upserts) > 0 {
		if err := tx.UpsertTranslations(ctx, upserts); err != nil {
			return nil, err
		}
	}

	if !kind.Images {
		return nil, nil
	}

	var removed []string
	if len(cs.DeleteImages) > 0 {
		removed, err = tx.DeleteImages(ctx, id, cs.DeleteImages)
		if err != nil {
			return nil, err
		}
	}

	if cs.MainImageID != nil || cs.MainImageIndex != nil {
		if err := tx.ClearMainImage(ctx, id); err != nil {
			return nil, err
		}
	}

	if cs.MainImageID != nil && *cs.MainImageID != 0 {
		ok, err := tx.SetMainImage(ctx, id, *cs.MainImageID)
		if err != nil {
			return nil, err
		}
		if !ok {
			return nil, invalid("mainImageId", "image %d does not belong to %s %s", *cs.MainImageID, kind.Name, id)
		}
	}

	if len(urls) > 0 {
		next, err := tx.NextImageOrder(ctx, id)
		if err != nil {
			return nil, err
		}
		if err := tx.InsertImages(ctx, r.images(id, urls, next, cs.MainImageIndex)); err != nil {
			return nil, err
		}
	}

	return removed, nil
}

func (r *Reconciler) delete(ctx context.Context, tx Tx, kind *Kind, id string) ([]string, error) {
	current, err := tx.LockOwner(ctx, kind, id)
	if err != nil {
		return nil, err
	}

	if kind.Children != nil {
		count, err := tx.CountChildren(ctx, kind.Children, id)
		if err != nil {
			return nil, err
		}
		if count > 0 {
			return nil, &ConflictError{
				Message: fmt.Sprintf("%s %s still has %d %s", kind.Name, id, count, kind.Children.Table),
			}
		}
	}

	if err := tx.DeleteTranslations(ctx, kind.Table, id); err != nil {
		return nil, err
	}

	var removed []string
	if kind.Images {
		removed, err = tx.DeleteImages(ctx, id, nil)
		if err != nil {
			return nil, err
		}
	}

	if err := tx.DeleteOwner(ctx, kind, id); err != nil {
		return nil, err
	}

	if kind.Parent != nil {
		if parentID := current.Text(kind.Parent.Column); parentID != "" {
			if err := tx.AdjustCounter(ctx, kind.Parent, parentID, -1); err != nil {
				return nil, err
			}
		}
	}

	return removed, nil
}

// checkParents rejects creates pointing at a missing parent before any file is
// uploaded. The transaction checks again.
func (r *Reconciler) checkParents(ctx context.Context, kind *Kind, changes []Change) error {
	if kind.Parent == nil {
		return nil
	}

	for i := range changes {
		if changes[i].Op != OpCreate {
			continue
		}
		if err := r.requireParent(ctx, r.gateway, kind.Parent, attributeText(changes[i].Set.Attributes[kind.Parent.Column])); err != nil {
			return err
		}
	}
	return nil
}

type existenceChecker interface {
	Exists(ctx context.Context, table, id string) (bool, error)
}

func (r *Reconciler) requireParent(ctx context.Context, checker existenceChecker, parent *Parent, parentID string) error {
	if parentID == "" {
		return invalid(parent.Column, "is required")
	}

	ok, err := checker.Exists(ctx, parent.Table, parentID)
	if err != nil {
		return fmt.Errorf("failed to check %s %s: %w", parent.Table, parentID, err)
	}
	if !ok {
		return invalid(parent.Column, "invalid %s", parent.Column)
	}
	return nil
}

func (r *Reconciler) checkSlugs(ctx context.Context, tx Tx, kind *Kind, slugs map[string]string, excludeID string) error {
	candidates := make([]string, 0, len(slugs))
	for _, slug := range slugs {
		if slug != "" && !slices.Contains(candidates, slug) {
			candidates = append(candidates, slug)
		}
	}
	if len(candidates) == 0 {
		return nil
	}
	slices.Sort(candidates)

	taken, err := tx.SlugsInUse(ctx, kind, candidates, excludeID)
	if err != nil {
		return err
	}
	if len(taken) > 0 {
		return &ConflictError{Message: "slug already exists", Values: taken}
	}
	return nil
}

// uploadAll uploads every new image concurrently. results[i][j] is the URL of
// changes[i].Set.NewImages[j] regardless of completion order. Any failure
// aborts the whole batch and the successful uploads are handed to the cleaner.
func (r *Reconciler) uploadAll(ctx context.Context, changes []Change) ([][]string, error) {
	results := make([][]string, len(changes))

	total := 0
	for i := range changes {
		results[i] = make([]string, len(changes[i].Set.NewImages))
		total += len(changes[i].Set.NewImages)
	}
	if total == 0 {
		return results, nil
	}
	if r.media == nil {
		return nil, &UploadError{Err: fmt.Errorf("no media host configured")}
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(r.uploadConcurrency)

	for i := range changes {
		for j, file := range changes[i].Set.NewImages {
			g.Go(func() error {
				url, err := r.media.Upload(gctx, file)
				metrics.MediaUploads.WithLabelValues(metrics.Result(err)).Inc()
				if err != nil {
					return &UploadError{Index: j, Name: file.Name, Err: err}
				}
				results[i][j] = url
				return nil
			})
		}
	}

	if err := g.Wait(); err != nil {
		var done []string
		for _, urls := range results {
			for _, url := range urls {
				if url != "" {
					done = append(done, url)
				}
			}
		}
		r.cleanup(done)
		return nil, err
	}

	return results, nil
}

func (r *Reconciler) cleanup(urls []string) {
	var pending []string
	for _, url := range urls {
		if url != "" {
			pending = append(pending, url)
		}
	}
	if len(pending) == 0 {
		return
	}

	if r.cleaner == nil {
		r.logger.WithField("urls", pending).Warn("no media cleaner configured, leaving remote objects in place")
		return
	}
	r.cleaner.Enqueue(pending...)
}

// overlayLanguages returns the submitted non-base languages in a stable order.
func (r *Reconciler) overlayLanguages(cs *ChangeSet) []string {
	languages := make([]string, 0, len(cs.Translations))
	for _, language := range r.languages {
		if language == BaseLanguage {
			continue
		}
		if _, ok := cs.Translations[language]; ok {
			languages = append(languages, language)
		}
	}
	return languages
}

func (r *Reconciler) translation(kind *Kind, ownerID, language, field, text string) *types.Translation {
	return &types.Translation{
		ID:             r.newID(),
		TableName:      kind.Table,
		RowID:          ownerID,
		LanguageCode:   language,
		FieldName:      field,
		TranslatedText: text,
	}
}

// images builds rows for freshly uploaded URLs with display orders starting at
// first. mainIndex, when set, flags that upload as main.
func (r *Reconciler) images(ownerID string, urls []string, first int, mainIndex *int) []*types.ProjectImage {
	now := r.now()
	images := make([]*types.ProjectImage, 0, len(urls))
	for j, url := range urls {
		images = append(images, &types.ProjectImage{
			ProjectID:    ownerID,
			ImageURL:     url,
			IsMain:       mainIndex != nil && *mainIndex == j,
			DisplayOrder: first + j,
			CreatedAt:    now,
		})
	}
	return images
}

// deriveSlugs slugifies the slug source field of every submitted language.
// Languages that did not submit the source field are absent from the result.
func deriveSlugs(kind *Kind, cs *ChangeSet) map[string]string {
	slugs := make(map[string]string)
	for language, fields := range cs.Translations {
		if name, ok := fields[kind.Slug.Source]; ok {
			slugs[language] = Slugify(name)
		}
	}
	return slugs
}

func attributeText(value any) string {
	switch v := value.(type) {
	case string:
		return v
	case *string:
		if v != nil {
			return *v
		}
	case fmt.Stringer:
		return v.String()
	}
	return ""
}
