package seed

import (
	"context"
	"errors"
	"fmt"

	"portfolio/internal/content"

	"github.com/sirupsen/logrus"
)

type ContentReader interface {
	List(ctx context.Context, kind *content.Kind, query content.Query, view content.View) ([]*content.Document, error)
	Lookup(ctx context.Context, kind *content.Kind, query content.Query, view content.View) (*content.Document, error)
}

type ContentWriter interface {
	Create(ctx context.Context, kind *content.Kind, cs content.ChangeSet) (string, error)
	Update(ctx context.Context, kind *content.Kind, id string, cs content.ChangeSet) error
}

type category struct {
	Translations map[string]map[string]string
	Icon         string
}

var categories = []category{
	{
		Translations: map[string]map[string]string{
			"en": {"name": "Bridges & Roads", "description": "Highways, interchanges, bridges and road networks"},
			"ar": {"name": "الجسور والطرق", "description": "الطرق السريعة والتقاطعات والجسور وشبكات الطرق"},
			"fr": {"name": "Ponts et routes", "description": "Autoroutes, échangeurs, ponts et réseaux routiers"},
		},
		Icon: "https://res.cloudinary.com/kytgbm/image/upload/icons/bridge.svg",
	},
	{
		Translations: map[string]map[string]string{
			"en": {"name": "Residential Buildings", "description": "Villas, housing complexes and apartment towers"},
			"ar": {"name": "المباني السكنية", "description": "الفلل والمجمعات السكنية والأبراج"},
			"fr": {"name": "Bâtiments résidentiels", "description": "Villas, résidences et tours d'habitation"},
		},
		Icon: "https://res.cloudinary.com/kytgbm/image/upload/icons/house.svg",
	},
	{
		Translations: map[string]map[string]string{
			"en": {"name": "Commercial Buildings", "description": "Offices, malls, hotels and mixed-use developments"},
			"ar": {"name": "المباني التجارية", "description": "المكاتب والمراكز التجارية والفنادق"},
			"fr": {"name": "Bâtiments commerciaux", "description": "Bureaux, centres commerciaux et hôtels"},
		},
		Icon: "https://res.cloudinary.com/kytgbm/image/upload/icons/building.svg",
	},
	{
		Translations: map[string]map[string]string{
			"en": {"name": "Water & Infrastructure", "description": "Dams, drainage, water networks and utilities"},
			"ar": {"name": "المياه والبنية التحتية", "description": "السدود والصرف وشبكات المياه والمرافق"},
			"fr": {"name": "Eau et infrastructures", "description": "Barrages, drainage, réseaux d'eau et services publics"},
		},
		Icon: "https://res.cloudinary.com/kytgbm/image/upload/icons/water.svg",
	},
}

// SeedCategories creates the categories below that do not exist yet and
// refreshes the translations and icon of the ones that do. A category is
// matched by the slug of its English name. Categories created by admins are
// left alone.
//
// To add a category: add it to the list and run `portfolio seed`.
func SeedCategories(ctx context.Context, logger *logrus.Logger, reader ContentReader, writer ContentWriter) error {
	logger.WithField("count", len(categories)).Info("syncing categories")

	created, updated := 0, 0
	for _, c := range categories {
		slug := content.Slugify(c.Translations[content.BaseLanguage]["name"])
		cs := content.ChangeSet{
			Translations: copyTranslations(c.Translations),
			Attributes:   map[string]any{"icon_svg_url": c.Icon},
		}

		existing, err := reader.Lookup(ctx, content.Categories, content.Query{Slug: slug}, content.View{Privileged: true})
		switch {
		case errors.Is(err, content.ErrNotFound):
			id, err := writer.Create(ctx, content.Categories, cs)
			if err != nil {
				return fmt.Errorf("failed to create category %s: %w", slug, err)
			}
			logger.WithFields(logrus.Fields{"slug": slug, "id": id}).Info("created category")
			created++
		case err != nil:
			return fmt.Errorf("failed to look up category %s: %w", slug, err)
		default:
			if err := writer.Update(ctx, content.Categories, existing.ID, cs); err != nil {
				return fmt.Errorf("failed to update category %s: %w", slug, err)
			}
			updated++
		}
	}

	logger.WithFields(logrus.Fields{"created": created, "updated": updated}).Info("category sync complete")
	return nil
}

func copyTranslations(in map[string]map[string]string) map[string]map[string]string {
	out := make(map[string]map[string]string, len(in))
	for language, fields := range in {
		copied := make(map[string]string, len(fields))
		for field, text := range fields {
			copied[field] = text
		}
		out[language] = copied
	}
	return out
}
