package content

import (
	"cmp"
	"context"
	"errors"
	"fmt"
	"maps"
	"slices"
	"strings"
	"sync"
	"testing"

	"portfolio/pkg/types"

	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
)

var errInjected = errors.New("injected failure")

// memoryGateway is an in-memory Gateway. Transactions snapshot the whole state
// and restore it when fn fails.
type memoryGateway struct {
	tables       map[string]map[string]Row
	order        map[string][]string
	translations []*types.Translation
	images       []*types.ProjectImage
	nextImageID  int64

	// fail makes the named Tx method return errInjected.
	fail map[string]bool
	txs  int
}

func newMemoryGateway() *memoryGateway {
	return &memoryGateway{
		tables: make(map[string]map[string]Row),
		order:  make(map[string][]string),
		fail:   make(map[string]bool),
	}
}

type memorySnapshot struct {
	tables       map[string]map[string]Row
	order        map[string][]string
	translations []*types.Translation
	images       []*types.ProjectImage
	nextImageID  int64
}

func (g *memoryGateway) snapshot() memorySnapshot {
	s := memorySnapshot{
		tables:      make(map[string]map[string]Row, len(g.tables)),
		order:       make(map[string][]string, len(g.order)),
		nextImageID: g.nextImageID,
	}
	for table, rows := range g.tables {
		copied := make(map[string]Row, len(rows))
		for id, row := range rows {
			copied[id] = maps.Clone(row)
		}
		s.tables[table] = copied
	}
	for table, ids := range g.order {
		s.order[table] = slices.Clone(ids)
	}
	for _, t := range g.translations {
		c := *t
		s.translations = append(s.translations, &c)
	}
	for _, image := range g.images {
		c := *image
		s.images = append(s.images, &c)
	}
	return s
}

func (g *memoryGateway) restore(s memorySnapshot) {
	g.tables = s.tables
	g.order = s.order
	g.translations = s.translations
	g.images = s.images
	g.nextImageID = s.nextImageID
}

func (g *memoryGateway) InTx(ctx context.Context, fn func(tx Tx) error) error {
	g.txs++
	s := g.snapshot()
	if err := fn(&memoryTx{g: g}); err != nil {
		g.restore(s)
		return err
	}
	return nil
}

// put inserts a row directly, bypassing the reconciler.
func (g *memoryGateway) put(table string, row Row) {
	if g.tables[table] == nil {
		g.tables[table] = make(map[string]Row)
	}
	id := row.ID()
	if _, ok := g.tables[table][id]; !ok {
		g.order[table] = append(g.order[table], id)
	}
	g.tables[table][id] = row
}

func (g *memoryGateway) row(table, id string) Row {
	return g.tables[table][id]
}

func (g *memoryGateway) count(table string) int {
	return len(g.tables[table])
}

func (g *memoryGateway) translationsOf(table, ownerID string) map[string]map[string]string {
	out := make(map[string]map[string]string)
	for _, t := range g.translations {
		if t.TableName != table || t.RowID != ownerID {
			continue
		}
		if out[t.LanguageCode] == nil {
			out[t.LanguageCode] = make(map[string]string)
		}
		out[t.LanguageCode][t.FieldName] = t.TranslatedText
	}
	return out
}

// translationRows counts stored rows without folding, so duplicates show.
func (g *memoryGateway) translationRows(table, ownerID, language, field string) int {
	n := 0
	for _, t := range g.translations {
		if t.TableName == table && t.RowID == ownerID && (language == "" || t.LanguageCode == language) && (field == "" || t.FieldName == field) {
			n++
		}
	}
	return n
}

func (g *memoryGateway) imagesOf(ownerID string) []*types.ProjectImage {
	var out []*types.ProjectImage
	for _, image := range g.images {
		if image.ProjectID == ownerID {
			out = append(out, image)
		}
	}
	slices.SortStableFunc(out, func(a, b *types.ProjectImage) int {
		return cmp.Or(cmp.Compare(a.DisplayOrder, b.DisplayOrder), cmp.Compare(a.ID, b.ID))
	})
	return out
}

func (g *memoryGateway) Exists(ctx context.Context, table, id string) (bool, error) {
	_, ok := g.tables[table][id]
	return ok, nil
}

func (g *memoryGateway) Owners(ctx context.Context, kind *Kind, query Query) ([]Row, error) {
	var out []Row
	for _, id := range g.order[kind.Table] {
		row, ok := g.tables[kind.Table][id]
		if !ok || !g.matches(kind, row, query) {
			continue
		}
		out = append(out, maps.Clone(row))
	}

	if query.Offset > 0 {
		if query.Offset >= uint64(len(out)) {
			return nil, nil
		}
		out = out[query.Offset:]
	}
	if query.Limit > 0 && uint64(len(out)) > query.Limit {
		out = out[:query.Limit]
	}
	return out, nil
}

func (g *memoryGateway) matches(kind *Kind, row Row, query Query) bool {
	id := row.ID()
	if query.ID != "" && id != query.ID {
		return false
	}
	if len(query.IDs) > 0 && !slices.Contains(query.IDs, id) {
		return false
	}
	for column, value := range query.Where {
		if row[column] != value {
			return false
		}
	}
	if query.Slug != "" && kind.Slug != nil {
		found := row.Text(kind.Slug.Column) == query.Slug
		for _, t := range g.translations {
			if t.TableName == kind.Table && t.RowID == id && t.FieldName == kind.Slug.Column && t.TranslatedText == query.Slug {
				found = true
			}
		}
		if !found {
			return false
		}
	}
	if query.Search != "" {
		needle := strings.ToLower(query.Search)
		found := false
		for _, field := range kind.Fields {
			if strings.Contains(strings.ToLower(row.Text(field)), needle) {
				found = true
			}
		}
		for _, t := range g.translations {
			if t.TableName == kind.Table && t.RowID == id && strings.Contains(strings.ToLower(t.TranslatedText), needle) {
				found = true
			}
		}
		if !found {
			return false
		}
	}
	return true
}

func (g *memoryGateway) Translations(ctx context.Context, kind *Kind, ownerIDs []string, language string) ([]*types.Translation, error) {
	var out []*types.Translation
	for _, t := range g.translations {
		if t.TableName != kind.Table || !slices.Contains(ownerIDs, t.RowID) {
			continue
		}
		if language != "" && t.LanguageCode != language {
			continue
		}
		c := *t
		out = append(out, &c)
	}
	return out, nil
}

func (g *memoryGateway) Images(ctx context.Context, ownerIDs []string, mainOnly bool) ([]*types.ProjectImage, error) {
	var out []*types.ProjectImage
	for _, id := range ownerIDs {
		for _, image := range g.imagesOf(id) {
			if mainOnly && !image.IsMain {
				continue
			}
			c := *image
			out = append(out, &c)
		}
	}
	return out, nil
}

type memoryTx struct {
	g *memoryGateway
}

func (tx *memoryTx) check(method string) error {
	if tx.g.fail[method] {
		return fmt.Errorf("%s: %w", method, errInjected)
	}
	return nil
}

func (tx *memoryTx) Exists(ctx context.Context, table, id string) (bool, error) {
	if err := tx.check("Exists"); err != nil {
		return false, err
	}
	return tx.g.Exists(ctx, table, id)
}

func (tx *memoryTx) LockOwner(ctx context.Context, kind *Kind, id string) (Row, error) {
	if err := tx.check("LockOwner"); err != nil {
		return nil, err
	}
	row, ok := tx.g.tables[kind.Table][id]
	if !ok {
		return nil, ErrNotFound
	}
	return maps.Clone(row), nil
}

func (tx *memoryTx) InsertOwner(ctx context.Context, kind *Kind, values map[string]any) error {
	if err := tx.check("InsertOwner"); err != nil {
		return err
	}
	row := Row(maps.Clone(values))
	if _, ok := tx.g.tables[kind.Table][row.ID()]; ok {
		return &ConflictError{Message: "duplicate id"}
	}
	if kind.Parent == nil && kind.Children != nil {
		row["project_count"] = 0
	}
	tx.g.put(kind.Table, row)
	return nil
}

func (tx *memoryTx) UpdateOwner(ctx context.Context, kind *Kind, id string, values map[string]any) error {
	if err := tx.check("UpdateOwner"); err != nil {
		return err
	}
	row, ok := tx.g.tables[kind.Table][id]
	if !ok {
		return ErrNotFound
	}
	maps.Copy(row, values)
	return nil
}

func (tx *memoryTx) DeleteOwner(ctx context.Context, kind *Kind, id string) error {
	if err := tx.check("DeleteOwner"); err != nil {
		return err
	}
	delete(tx.g.tables[kind.Table], id)
	tx.g.order[kind.Table] = slices.DeleteFunc(tx.g.order[kind.Table], func(v string) bool { return v == id })
	return nil
}

func (tx *memoryTx) CountChildren(ctx context.Context, children *Children, id string) (int, error) {
	if err := tx.check("CountChildren"); err != nil {
		return 0, err
	}
	count := 0
	for _, row := range tx.g.tables[children.Table] {
		if row.Text(children.Column) == id {
			count++
		}
	}
	return count, nil
}

func (tx *memoryTx) AdjustCounter(ctx context.Context, parent *Parent, parentID string, delta int) error {
	if err := tx.check("AdjustCounter"); err != nil {
		return err
	}
	row, ok := tx.g.tables[parent.Table][parentID]
	if !ok {
		return nil
	}
	current, _ := row[parent.Counter].(int)
	row[parent.Counter] = max(current+delta, 0)
	return nil
}

func (tx *memoryTx) SlugsInUse(ctx context.Context, kind *Kind, slugs []string, excludeID string) ([]string, error) {
	if err := tx.check("SlugsInUse"); err != nil {
		return nil, err
	}
	var taken []string
	for _, slug := range slugs {
		used := false
		for id, row := range tx.g.tables[kind.Table] {
			if id != excludeID && row.Text(kind.Slug.Column) == slug {
				used = true
			}
		}
		for _, t := range tx.g.translations {
			if t.TableName == kind.Table && t.RowID != excludeID && t.FieldName == kind.Slug.Column && t.TranslatedText == slug {
				used = true
			}
		}
		if used {
			taken = append(taken, slug)
		}
	}
	return taken, nil
}

func (tx *memoryTx) UpsertTranslations(ctx context.Context, rows []*types.Translation) error {
	if err := tx.check("UpsertTranslations"); err != nil {
		return err
	}
	for _, row := range rows {
		replaced := false
		for _, t := range tx.g.translations {
			if t.TableName == row.TableName && t.RowID == row.RowID && t.LanguageCode == row.LanguageCode && t.FieldName == row.FieldName {
				t.TranslatedText = row.TranslatedText
				replaced = true
			}
		}
		if !replaced {
			c := *row
			tx.g.translations = append(tx.g.translations, &c)
		}
	}
	return nil
}

func (tx *memoryTx) DeleteTranslation(ctx context.Context, table, ownerID, language, field string) error {
	if err := tx.check("DeleteTranslation"); err != nil {
		return err
	}
	tx.g.translations = slices.DeleteFunc(tx.g.translations, func(t *types.Translation) bool {
		return t.TableName == table && t.RowID == ownerID && t.LanguageCode == language && t.FieldName == field
	})
	return nil
}

func (tx *memoryTx) DeleteTranslations(ctx context.Context, table, ownerID string) error {
	if err := tx.check("DeleteTranslations"); err != nil {
		return err
	}
	tx.g.translations = slices.DeleteFunc(tx.g.translations, func(t *types.Translation) bool {
		return t.TableName == table && t.RowID == ownerID
	})
	return nil
}

func (tx *memoryTx) NextImageOrder(ctx context.Context, ownerID string) (int, error) {
	if err := tx.check("NextImageOrder"); err != nil {
		return 0, err
	}
	next := 0
	for _, image := range tx.g.imagesOf(ownerID) {
		next = max(next, image.DisplayOrder+1)
	}
	return next, nil
}

func (tx *memoryTx) InsertImages(ctx context.Context, images []*types.ProjectImage) error {
	if err := tx.check("InsertImages"); err != nil {
		return err
	}
	for _, image := range images {
		tx.g.nextImageID++
		c := *image
		c.ID = tx.g.nextImageID
		tx.g.images = append(tx.g.images, &c)
	}
	return nil
}

func (tx *memoryTx) ClearMainImage(ctx context.Context, ownerID string) error {
	if err := tx.check("ClearMainImage"); err != nil {
		return err
	}
	for _, image := range tx.g.images {
		if image.ProjectID == ownerID {
			image.IsMain = false
		}
	}
	return nil
}

func (tx *memoryTx) SetMainImage(ctx context.Context, ownerID string, imageID int64) (bool, error) {
	if err := tx.check("SetMainImage"); err != nil {
		return false, err
	}
	for _, image := range tx.g.images {
		if image.ProjectID == ownerID && image.ID == imageID {
			image.IsMain = true
			return true, nil
		}
	}
	return false, nil
}

func (tx *memoryTx) DeleteImages(ctx context.Context, ownerID string, ids []int64) ([]string, error) {
	if err := tx.check("DeleteImages"); err != nil {
		return nil, err
	}
	var removed []string
	tx.g.images = slices.DeleteFunc(tx.g.images, func(image *types.ProjectImage) bool {
		if image.ProjectID != ownerID || (ids != nil && !slices.Contains(ids, image.ID)) {
			return false
		}
		removed = append(removed, image.ImageURL)
		return true
	})
	return removed, nil
}

// fakeMedia hands out sequential URLs and fails uploads by file name.
type fakeMedia struct {
	mu       sync.Mutex
	seq      int
	uploaded []string
	failing  map[string]bool
}

func newFakeMedia(failing ...string) *fakeMedia {
	m := &fakeMedia{failing: make(map[string]bool)}
	for _, name := range failing {
		m.failing[name] = true
	}
	return m
}

func (m *fakeMedia) Upload(ctx context.Context, file types.Upload) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.failing[file.Name] {
		return "", fmt.Errorf("media host rejected %s", file.Name)
	}
	m.seq++
	url := fmt.Sprintf("https://cdn.test/%d-%s", m.seq, file.Name)
	m.uploaded = append(m.uploaded, url)
	return url, nil
}

func (m *fakeMedia) Delete(ctx context.Context, url string) error {
	return nil
}

func (m *fakeMedia) count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.uploaded)
}

type fakeCleaner struct {
	mu   sync.Mutex
	urls []string
}

func (c *fakeCleaner) Enqueue(urls ...string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.urls = append(c.urls, urls...)
}

func (c *fakeCleaner) enqueued() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return slices.Sorted(slices.Values(c.urls))
}

type fixture struct {
	gateway    *memoryGateway
	media      *fakeMedia
	cleaner    *fakeCleaner
	reconciler *Reconciler
	resolver   *Resolver
	logs       *test.Hook
}

func newFixture(t *testing.T, failingUploads ...string) *fixture {
	t.Helper()

	logger, hook := test.NewNullLogger()
	logger.SetLevel(logrus.DebugLevel)

	languages := NewLanguages("en", "ar", "fr")
	f := &fixture{
		gateway: newMemoryGateway(),
		media:   newFakeMedia(failingUploads...),
		cleaner: &fakeCleaner{},
		logs:    hook,
	}
	f.reconciler = NewReconciler(f.gateway, f.media, f.cleaner, languages, logger)
	f.resolver = NewResolver(f.gateway, languages)

	seq := 0
	f.reconciler.newID = func() string {
		seq++
		return fmt.Sprintf("id%03d", seq)
	}
	return f
}

func upload(name string) types.Upload {
	return types.Upload{Name: name, ContentType: "image/png", Data: []byte("png:" + name)}
}

func ptr[T any](v T) *T {
	return &v
}
