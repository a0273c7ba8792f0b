// Copyright (c) 2026 Bazinga Comics. All rights reserved.
// Author: dentuss

package admin

import (
	"strings"
	"time"

	"github.com/dentuss/Bazinga-Comics/internal/catalog"
	"github.com/dentuss/Bazinga-Comics/internal/platform/sec"
	"github.com/dentuss/Bazinga-Comics/internal/platform/validate"
)

const (
	FieldTitle         = "title"
	FieldAuthor        = "author"
	FieldIsbn          = "isbn"
	FieldDescription   = "description"
	FieldPublishedYear = "publishedYear"
	FieldPrice         = "price"
	FieldImage         = "image"
	FieldComicType     = "comicType"

	FieldUsername = "username"
	FieldEmail    = "email"
	FieldPassword = "password"
	FieldRole     = "role"
)

// Column limits of the comics table.
const (
	MaxTitleLength       = 255
	MaxAuthorLength      = 255
	MaxIsbnLength        = 30
	MaxDescriptionLength = 2000
	MaxImageLength       = 500

	// EarliestPublishedYear is the oldest accepted publication year.
	EarliestPublishedYear = 1800
)

// # Comic Drafts

// ComicDraft is the create/update body of a catalog entry. CategoryID and
// ConditionID reference the picker lists served by the backend.
type ComicDraft struct {
	Title         string            `json:"title"`
	Author        *string           `json:"author,omitempty"`
	Isbn          *string           `json:"isbn,omitempty"`
	Description   *string           `json:"description,omitempty"`
	MainCharacter *string           `json:"mainCharacter,omitempty"`
	Series        *string           `json:"series,omitempty"`
	PublishedYear *int              `json:"publishedYear,omitempty"`
	Price         *float64          `json:"price,omitempty"`
	Image         *string           `json:"image,omitempty"`
	ComicType     catalog.ComicType `json:"comicType,omitempty"`
	CategoryID    *int64            `json:"categoryId,omitempty"`
	ConditionID   *int64            `json:"conditionId,omitempty"`
}

// Normalized trims every text field. Blank optional fields become nil and
// the comic type is upper-cased.
func (d ComicDraft) Normalized() ComicDraft {
	d.Title = strings.TrimSpace(d.Title)
	d.Author = trimOptional(d.Author)
	d.Isbn = trimOptional(d.Isbn)
	d.Description = trimOptional(d.Description)
	d.MainCharacter = trimOptional(d.MainCharacter)
	d.Series = trimOptional(d.Series)
	d.Image = trimOptional(d.Image)
	d.ComicType = catalog.ComicType(strings.ToUpper(strings.TrimSpace(string(d.ComicType))))
	return d
}

// Validate checks a normalized draft. now bounds the publication year.
func (d ComicDraft) Validate(now time.Time) error {
	v := &validate.Validator{}
	v.Required(FieldTitle, d.Title).MaxLen(FieldTitle, d.Title, MaxTitleLength)
	optionalMaxLen(v, FieldAuthor, d.Author, MaxAuthorLength)
	optionalMaxLen(v, FieldIsbn, d.Isbn, MaxIsbnLength)
	optionalMaxLen(v, FieldDescription, d.Description, MaxDescriptionLength)
	optionalMaxLen(v, FieldImage, d.Image, MaxImageLength)

	v.Custom(FieldPrice, d.Price == nil, "This field is required")
	if d.Price != nil {
		v.Custom(FieldPrice, *d.Price < 0, "Price cannot be negative")
	}

	if d.PublishedYear != nil {
		year := *d.PublishedYear
		v.Custom(FieldPublishedYear, year < EarliestPublishedYear || year > now.Year()+1,
			"Publication year is out of range")
	}

	if d.ComicType != "" {
		v.OneOf(FieldComicType, string(d.ComicType), string(catalog.TypePhysicalCopy), string(catalog.TypeOnlyDigital))
	}
	return v.Err()
}

// EffectiveComicType defaults an unset type to a print comic.
func (d ComicDraft) EffectiveComicType() catalog.ComicType {
	if d.ComicType == "" {
		return catalog.TypePhysicalCopy
	}
	return d.ComicType
}

// # Users

// User is an account as listed on the admin screen.
type User struct {
	ID          int64        `json:"id"`
	Username    string       `json:"username"`
	Email       string       `json:"email"`
	FirstName   *string      `json:"firstName,omitempty"`
	LastName    *string      `json:"lastName,omitempty"`
	DateOfBirth *string      `json:"dateOfBirth,omitempty"`
	Role        sec.UserRole `json:"role"`
	CreatedAt   *string      `json:"createdAt,omitempty"`
	UpdatedAt   *string      `json:"updatedAt,omitempty"`
}

// UserRequest creates or edits an account. On update, blank strings and nil
// pointers leave the stored value untouched.
type UserRequest struct {
	Username    string  `json:"username,omitempty"`
	Email       string  `json:"email,omitempty"`
	Password    string  `json:"password,omitempty"`
	FirstName   *string `json:"firstName,omitempty"`
	LastName    *string `json:"lastName,omitempty"`
	DateOfBirth *string `json:"dateOfBirth,omitempty"`
	Role        string  `json:"role,omitempty"`
}

// Normalized trims the identity fields. The password is kept verbatim.
func (r UserRequest) Normalized() UserRequest {
	r.Username = strings.TrimSpace(r.Username)
	r.Email = strings.TrimSpace(r.Email)
	r.Role = strings.TrimSpace(r.Role)
	return r
}

// ValidateCreate requires the credentials of a new account.
func (r UserRequest) ValidateCreate() error {
	v := &validate.Validator{}
	v.Required(FieldUsername, r.Username)
	v.Required(FieldEmail, r.Email)
	if !v.Failed(FieldEmail) {
		v.Email(FieldEmail, r.Email)
	}
	v.Required(FieldPassword, r.Password)
	validateRole(v, r.Role)
	return v.Err()
}

// ValidateUpdate checks only the fields that are present.
func (r UserRequest) ValidateUpdate() error {
	v := &validate.Validator{}
	if r.Email != "" {
		v.Email(FieldEmail, r.Email)
	}
	validateRole(v, r.Role)
	return v.Err()
}

// RoleOrDefault resolves the requested role; blank means a shopper.
func (r UserRequest) RoleOrDefault() sec.UserRole {
	if r.Role == "" {
		return sec.RoleUser
	}
	return sec.ParseRole(r.Role)
}

func validateRole(v *validate.Validator, role string) {
	if role != "" {
		v.Custom(FieldRole, sec.ParseRole(role) == "", "Must be one of: USER, EDITOR, ADMIN")
	}
}

func optionalMaxLen(v *validate.Validator, field string, value *string, max int) {
	if value != nil {
		v.MaxLen(field, *value, max)
	}
}

func trimOptional(value *string) *string {
	if value == nil {
		return nil
	}
	trimmed := strings.TrimSpace(*value)
	if trimmed == "" {
		return nil
	}
	return &trimmed
}
