// Copyright (c) 2026 Bazinga Comics. All rights reserved.
// Author: dentuss

package sandbox

import (
	"github.com/dentuss/Bazinga-Comics/internal/catalog"
	"github.com/dentuss/Bazinga-Comics/internal/platform/sec"
	"github.com/dentuss/Bazinga-Comics/pkg/pointer"
)

// Staff accounts created by [Seed].
const (
	EditorEmail    = "editor@bazinga.test"
	EditorPassword = "editor-pass"
	AdminEmail     = "admin@bazinga.test"
	AdminPassword  = "admin-pass"
)

type seedComic struct {
	title, author, character, series, category string
	price                                      float64
	comicType                                  catalog.ComicType
	createdAt                                  string
}

var seedCatalog = []seedComic{
	{"Amazing Fantasy #15", "Stan Lee", "Spider-Man", "Amazing Fantasy", "Superhero", 9.99, catalog.TypePhysicalCopy, "2024-01-10T09:00:00"},
	{"The Dark Knight Returns", "Frank Miller", "Batman", "The Dark Knight", "Superhero", 14.99, catalog.TypePhysicalCopy, "2024-01-22T09:00:00"},
	{"Watchmen #1", "Alan Moore", "Rorschach", "Watchmen", "Drama", 12.50, catalog.TypePhysicalCopy, "2024-02-03T09:00:00"},
	{"Saga #1", "Brian K. Vaughan", "Alana", "Saga", "Sci-Fi", 7.99, catalog.TypePhysicalCopy, "2024-02-18T09:00:00"},
	{"Sandman: Preludes", "Neil Gaiman", "Dream", "The Sandman", "Fantasy", 11.25, catalog.TypePhysicalCopy, "2024-03-01T09:00:00"},
	{"Hellboy: Seed of Destruction", "Mike Mignola", "Hellboy", "Hellboy", "Horror", 8.75, catalog.TypePhysicalCopy, "2024-03-14T09:00:00"},
	{"Bazinga Infinite #1", "Ada Quill", "Nova Reyes", "Bazinga Infinite", "Sci-Fi", 4.99, catalog.TypeOnlyDigital, "2024-04-02T09:00:00"},
	{"Bazinga Infinite #2", "Ada Quill", "Nova Reyes", "Bazinga Infinite", "Sci-Fi", 4.99, catalog.TypeOnlyDigital, "2024-04-16T09:00:00"},
	{"Night Shift Tales", "Rowan Pike", "The Warden", "Night Shift", "Horror", 3.99, catalog.TypeOnlyDigital, "2024-04-28T09:00:00"},
	{"Paper Capes", "Mina Sol", "Captain Origami", "Paper Capes", "Comedy", 5.49, catalog.TypeOnlyDigital, "2024-05-09T09:00:00"},
	{"Iron Orchard", "Theo Barrow", "Bramble", "Iron Orchard", "Fantasy", 10.00, catalog.TypePhysicalCopy, "2024-05-21T09:00:00"},
	{"Last Train to Neon", "June Okafor", "Kai Mercer", "Neon", "Drama", 6.99, catalog.TypePhysicalCopy, "2024-06-01T09:00:00"},
}

// seedConditions is the print-grade picker, best first.
var seedConditions = []string{"Mint", "Near Mint", "Very Fine", "Fine", "Good"}

// Seed fills store with the demo catalog, the picker lists and the staff
// accounts. Categories are numbered in order of first appearance.
func Seed(store *Store, hashCost int) error {
	for _, description := range seedConditions {
		store.PutCondition(description)
	}

	for _, entry := range seedCatalog {
		category := store.PutCategory(entry.category)
		store.PutComic(catalog.Comic{
			Title:         entry.title,
			Author:        pointer.To(entry.author),
			MainCharacter: pointer.To(entry.character),
			Series:        pointer.To(entry.series),
			Description:   pointer.To(entry.title + " from the " + entry.series + " line."),
			Price:         pointer.To(entry.price),
			Category:      &category,
			ComicType:     entry.comicType,
			CreatedAt:     pointer.To(entry.createdAt),
		})
	}

	staff := []struct {
		username, email, password string
		role                      sec.UserRole
	}{
		{"editor", EditorEmail, EditorPassword, sec.RoleEditor},
		{"admin", AdminEmail, AdminPassword, sec.RoleAdmin},
	}
	for _, member := range staff {
		hash, err := sec.HashPassword(member.password, hashCost)
		if err != nil {
			return err
		}
		if _, err := store.CreateAccount(member.username, member.email, hash, member.role); err != nil {
			return err
		}
	}
	return nil
}
