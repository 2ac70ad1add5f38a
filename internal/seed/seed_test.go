package seed

import (
	"context"
	"errors"
	"testing"

	"portfolio/internal/content"
	"portfolio/pkg/types"

	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

type fakeContent struct {
	docs    map[*content.Kind][]*content.Document
	created map[*content.Kind][]content.ChangeSet
	updated map[string]content.ChangeSet
}

func newFakeContent() *fakeContent {
	return &fakeContent{
		docs:    make(map[*content.Kind][]*content.Document),
		created: make(map[*content.Kind][]content.ChangeSet),
		updated: make(map[string]content.ChangeSet),
	}
}

func (f *fakeContent) List(ctx context.Context, kind *content.Kind, query content.Query, view content.View) ([]*content.Document, error) {
	return f.docs[kind], nil
}

func (f *fakeContent) Lookup(ctx context.Context, kind *content.Kind, query content.Query, view content.View) (*content.Document, error) {
	for _, doc := range f.docs[kind] {
		if doc.Field("slug") == query.Slug {
			return doc, nil
		}
	}
	return nil, content.ErrNotFound
}

func (f *fakeContent) Create(ctx context.Context, kind *content.Kind, cs content.ChangeSet) (string, error) {
	f.created[kind] = append(f.created[kind], cs)
	return "new", nil
}

func (f *fakeContent) Update(ctx context.Context, kind *content.Kind, id string, cs content.ChangeSet) error {
	f.updated[id] = cs
	return nil
}

func TestSeedCategoriesCreatesMissingAndUpdatesExisting(t *testing.T) {
	logger, _ := test.NewNullLogger()
	fake := newFakeContent()
	fake.docs[content.Categories] = []*content.Document{{
		ID:           "c1",
		Translations: map[string]map[string]string{"en": {"name": "Old", "slug": "bridges-roads"}},
	}}

	require.NoError(t, SeedCategories(context.Background(), logger, fake, fake))

	require.Contains(t, fake.updated, "c1")
	assert.Equal(t, "Bridges & Roads", fake.updated["c1"].Translations["en"]["name"])
	assert.Len(t, fake.created[content.Categories], len(categories)-1)

	for _, cs := range fake.created[content.Categories] {
		assert.NotEmpty(t, cs.Attributes["icon_svg_url"])
	}
}

func TestSeedCategoriesCopiesTranslations(t *testing.T) {
	logger, _ := test.NewNullLogger()
	fake := newFakeContent()

	require.NoError(t, SeedCategories(context.Background(), logger, fake, fake))

	fake.created[content.Categories][0].Translations["en"]["name"] = "changed"
	assert.Equal(t, "Bridges & Roads", categories[0].Translations["en"]["name"])
}

func TestSeedSectionsSkipsExisting(t *testing.T) {
	logger, _ := test.NewNullLogger()
	fake := newFakeContent()
	fake.docs[content.Sections] = []*content.Document{{
		ID:           "s1",
		Translations: map[string]map[string]string{"en": {"section_title": "Email"}},
		Attributes:   map[string]any{"section_key": "contact_info"},
	}}

	require.NoError(t, SeedSections(context.Background(), logger, fake, fake))

	created := fake.created[content.Sections]
	require.Len(t, created, len(sections)-1)
	for _, cs := range created {
		assert.NotEqual(t, "Email", cs.Translations["en"]["section_title"])
		assert.NotEmpty(t, cs.Attributes["section_key"])
	}
}

type fakeUsers struct {
	user *types.User
	err  error
}

func (f *fakeUsers) UpsertUser(ctx context.Context, user *types.User) error {
	f.user = user
	return f.err
}

func TestSeedAdmin(t *testing.T) {
	users := &fakeUsers{}

	user, err := SeedAdmin(context.Background(), users, "admin@example.com", "correct-horse")
	require.NoError(t, err)
	assert.Equal(t, types.UserRoleAdmin, user.Role)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(users.user.Password), []byte("correct-horse")))

	_, err = SeedAdmin(context.Background(), users, "admin@example.com", "short")
	require.Error(t, err)

	users.err = errors.New("db down")
	_, err = SeedAdmin(context.Background(), users, "admin@example.com", "correct-horse")
	require.Error(t, err)
}
