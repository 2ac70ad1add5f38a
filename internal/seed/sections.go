package seed

import (
	"context"
	"fmt"

	"portfolio/internal/content"

	"github.com/sirupsen/logrus"
)

type section struct {
	Key          string
	Order        int
	Translations map[string]map[string]string
}

var sections = []section{
	{
		Key:   "about",
		Order: 1,
		Translations: map[string]map[string]string{
			"en": {"section_title": "Who We Are", "content": "A construction and engineering contractor delivering projects since 1998."},
			"ar": {"section_title": "من نحن", "content": "مقاول إنشاءات وهندسة ينفذ المشاريع منذ عام 1998."},
			"fr": {"section_title": "Qui sommes-nous", "content": "Une entreprise de construction et d'ingénierie depuis 1998."},
		},
	},
	{
		Key:   "vision",
		Order: 1,
		Translations: map[string]map[string]string{
			"en": {"section_title": "Our Vision", "content": "To build infrastructure that lasts for generations."},
			"ar": {"section_title": "رؤيتنا", "content": "بناء بنية تحتية تدوم لأجيال."},
		},
	},
	{
		Key:   "contact_info",
		Order: 1,
		Translations: map[string]map[string]string{
			"en": {"section_title": "Phone Numbers", "content": `["+968 2400 0000"]`},
		},
	},
	{
		Key:   "contact_info",
		Order: 2,
		Translations: map[string]map[string]string{
			"en": {"section_title": "Email", "content": "info@kytgbm.com"},
		},
	},
}

// SeedSections creates the about-us sections below that are missing. A
// section is matched by its key and English title; existing sections are
// never overwritten since admins edit them.
func SeedSections(ctx context.Context, logger *logrus.Logger, reader ContentReader, writer ContentWriter) error {
	existing, err := reader.List(ctx, content.Sections, content.Query{}, content.View{Privileged: true})
	if err != nil {
		return fmt.Errorf("failed to list sections: %w", err)
	}

	present := make(map[string]bool, len(existing))
	for _, doc := range existing {
		key, _ := doc.Attributes["section_key"].(string)
		present[key+"/"+doc.Field("section_title")] = true
	}

	created := 0
	for _, s := range sections {
		title := s.Translations[content.BaseLanguage]["section_title"]
		if present[s.Key+"/"+title] {
			continue
		}

		id, err := writer.Create(ctx, content.Sections, content.ChangeSet{
			Translations: copyTranslations(s.Translations),
			Attributes:   map[string]any{"section_key": s.Key, "display_order": s.Order},
		})
		if err != nil {
			return fmt.Errorf("failed to create section %s/%s: %w", s.Key, title, err)
		}
		logger.WithFields(logrus.Fields{"section_key": s.Key, "id": id}).Info("created section")
		created++
	}

	logger.WithField("created", created).Info("section sync complete")
	return nil
}
