// Copyright (c) 2026 Bazinga Comics. All rights reserved.
// Author: dentuss

package main

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/pflag"

	"github.com/dentuss/Bazinga-Comics/internal/admin"
	"github.com/dentuss/Bazinga-Comics/internal/catalog"
	"github.com/dentuss/Bazinga-Comics/internal/platform/apperr"
	"github.com/dentuss/Bazinga-Comics/internal/pricing"
	"github.com/dentuss/Bazinga-Comics/pkg/convert"
	"github.com/dentuss/Bazinga-Comics/pkg/pointer"
	"github.com/dentuss/Bazinga-Comics/pkg/result"
)

// # Pickers

func categoriesCmd(ctx context.Context, a *app, _ []string) error {
	categories := a.admin.Categories(ctx)
	if err := failed(categories); err != nil {
		return err
	}
	items, _ := result.Data(categories)
	for _, category := range items {
		fmt.Fprintf(a.out, "  %d\t%s\n", category.ID, category.Name)
	}
	return nil
}

func conditionsCmd(ctx context.Context, a *app, _ []string) error {
	conditions := a.admin.Conditions(ctx)
	if err := failed(conditions); err != nil {
		return err
	}
	items, _ := result.Data(conditions)
	for _, condition := range items {
		fmt.Fprintf(a.out, "  %d\t%s\n", condition.ID, condition.Description)
	}
	return nil
}

// resolveCategory accepts a category id or a name, ignoring case.
func (a *app) resolveCategory(ctx context.Context, raw string) (*int64, error) {
	if id, ok := convert.ToInt64OK(raw); ok {
		return &id, nil
	}
	categories := a.admin.Categories(ctx)
	if err := failed(categories); err != nil {
		return nil, err
	}
	items, _ := result.Data(categories)
	for _, category := range items {
		if strings.EqualFold(category.Name, strings.TrimSpace(raw)) {
			return pointer.To(category.ID), nil
		}
	}
	return nil, apperr.NotFound("Category " + raw)
}

// # Catalog Management

// draftFlags binds every comic field to fs. The returned func builds the
// draft once fs is parsed; unset numeric flags stay nil.
func draftFlags(ctx context.Context, a *app, fs *pflag.FlagSet) func() (admin.ComicDraft, error) {
	title := fs.String("title", "", "comic title")
	author := fs.String("author", "", "creator")
	isbn := fs.String("isbn", "", "ISBN")
	description := fs.String("description", "", "blurb")
	character := fs.String("character", "", "main character")
	series := fs.String("series", "", "series")
	image := fs.String("image", "", "cover image path or URL")
	comicType := fs.String("type", "", "PHYSICAL_COPY or ONLY_DIGITAL")
	year := fs.Int("year", 0, "publication year")
	price := fs.Float64("price", 0, "base price")
	category := fs.String("category", "", "category id or name")
	condition := fs.Int64("condition", 0, "condition id")

	return func() (admin.ComicDraft, error) {
		draft := admin.ComicDraft{
			Title:         *title,
			Author:        author,
			Isbn:          isbn,
			Description:   description,
			MainCharacter: character,
			Series:        series,
			Image:         image,
			ComicType:     catalog.ComicType(*comicType),
		}
		if fs.Changed("year") {
			draft.PublishedYear = year
		}
		if fs.Changed("price") {
			draft.Price = price
		}
		if fs.Changed("condition") {
			draft.ConditionID = condition
		}
		if *category != "" {
			id, err := a.resolveCategory(ctx, *category)
			if err != nil {
				return admin.ComicDraft{}, err
			}
			draft.CategoryID = id
		}
		return draft, nil
	}
}

func orDash(value string) string {
	if value == "" {
		return "-"
	}
	return value
}

func printAdminComic(a *app, verb string, comic catalog.Comic) {
	fmt.Fprintf(a.out, "%s %d: %s (%s, %s, %s)\n", verb, comic.ID, comic.Title,
		pricing.Format(comic.BasePrice()), comic.ComicType, orDash(comic.CategoryName()))
}

func publishComicCmd(ctx context.Context, a *app, args []string) error {
	fs := pflag.NewFlagSet("publish-comic", pflag.ContinueOnError)
	build := draftFlags(ctx, a, fs)
	if err := fs.Parse(args); err != nil {
		return err
	}
	if err := a.signIn(ctx, "publish comics"); err != nil {
		return err
	}

	draft, err := build()
	if err != nil {
		return err
	}
	comic, err := a.admin.Publish(ctx, a.store.Session(), draft)
	if err != nil {
		return err
	}
	printAdminComic(a, "Published", comic)
	return nil
}

func editComicCmd(ctx context.Context, a *app, args []string) error {
	fs := pflag.NewFlagSet("edit-comic", pflag.ContinueOnError)
	build := draftFlags(ctx, a, fs)
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() != 1 {
		return errors.New("usage: edit-comic <comicId> --title T --price P [fields]")
	}
	comicID, ok := convert.ToInt64OK(fs.Arg(0))
	if !ok {
		return apperr.ValidationError("Invalid comic id " + fs.Arg(0))
	}
	if err := a.signIn(ctx, "edit comics"); err != nil {
		return err
	}

	draft, err := build()
	if err != nil {
		return err
	}
	comic, err := a.admin.Update(ctx, a.store.Session(), comicID, draft)
	if err != nil {
		return err
	}
	printAdminComic(a, "Updated", comic)
	return nil
}

func adminComicsCmd(ctx context.Context, a *app, _ []string) error {
	if err := a.signIn(ctx, "manage the catalog"); err != nil {
		return err
	}

	comics := a.admin.Comics(ctx, a.store.Session())
	if err := failed(comics); err != nil {
		return err
	}
	items, _ := result.Data(comics)

	w := table(a.out)
	fmt.Fprintln(w, "ID\tTITLE\tCATEGORY\tCONDITION\tSTATE")
	for _, comic := range items {
		state := "live"
		if comic.Redacted {
			state = "redacted"
		}
		var condition string
		if comic.Condition != nil {
			condition = comic.Condition.Description
		}
		fmt.Fprintf(w, "%d\t%s\t%s\t%s\t%s\n", comic.ID, comic.Title, orDash(comic.CategoryName()), orDash(condition), state)
	}
	return w.Flush()
}

func redactCmd(ctx context.Context, a *app, args []string) error {
	fs := pflag.NewFlagSet("redact", pflag.ContinueOnError)
	undo := fs.Bool("undo", false, "restore the comic to the storefront")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() != 1 {
		return errors.New("usage: redact <comicId> [--undo]")
	}
	comicID, ok := convert.ToInt64OK(fs.Arg(0))
	if !ok {
		return apperr.ValidationError("Invalid comic id " + fs.Arg(0))
	}
	if err := a.signIn(ctx, "redact comics"); err != nil {
		return err
	}

	comic, err := a.admin.SetRedacted(ctx, a.store.Session(), comicID, !*undo)
	if err != nil {
		return err
	}
	if comic.Redacted {
		fmt.Fprintf(a.out, "Redacted %d: %s\n", comic.ID, comic.Title)
	} else {
		fmt.Fprintf(a.out, "Restored %d: %s\n", comic.ID, comic.Title)
	}
	return nil
}

func deleteComicCmd(ctx context.Context, a *app, args []string) error {
	if len(args) != 1 {
		return errors.New("usage: delete-comic <comicId>")
	}
	comicID, ok := convert.ToInt64OK(args[0])
	if !ok {
		return apperr.ValidationError("Invalid comic id " + args[0])
	}
	if err := a.signIn(ctx, "delete comics"); err != nil {
		return err
	}

	if err := a.admin.Delete(ctx, a.store.Session(), comicID); err != nil {
		return err
	}
	fmt.Fprintf(a.out, "Deleted %d\n", comicID)
	return nil
}

// # Accounts

func usersCmd(ctx context.Context, a *app, args []string) error {
	fs := pflag.NewFlagSet("users", pflag.ContinueOnError)
	query := fs.String("query", "", "match username, email or name")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if err := a.signIn(ctx, "manage users"); err != nil {
		return err
	}

	users := a.admin.Users(ctx, a.store.Session(), *query)
	if err := failed(users); err != nil {
		return err
	}
	items, _ := result.Data(users)

	w := table(a.out)
	fmt.Fprintln(w, "ID\tUSERNAME\tEMAIL\tROLE")
	for _, user := range items {
		fmt.Fprintf(w, "%d\t%s\t%s\t%s\n", user.ID, user.Username, user.Email, user.Role)
	}
	return w.Flush()
}

func createUserCmd(ctx context.Context, a *app, args []string) error {
	fs := pflag.NewFlagSet("create-user", pflag.ContinueOnError)
	var request admin.UserRequest
	fs.StringVar(&request.Username, "username", "", "username")
	fs.StringVar(&request.Email, "user-email", "", "email of the new account")
	fs.StringVar(&request.Password, "user-password", "", "password of the new account")
	fs.StringVar(&request.Role, "role", "", "USER, EDITOR or ADMIN")
	first := fs.String("first", "", "first name")
	last := fs.String("last", "", "last name")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.Changed("first") {
		request.FirstName = first
	}
	if fs.Changed("last") {
		request.LastName = last
	}
	if err := a.signIn(ctx, "manage users"); err != nil {
		return err
	}

	user, err := a.admin.CreateUser(ctx, a.store.Session(), request)
	if err != nil {
		return err
	}
	fmt.Fprintf(a.out, "Created %d: %s (%s)\n", user.ID, user.Username, user.Role)
	return nil
}

func setRoleCmd(ctx context.Context, a *app, args []string) error {
	if len(args) != 2 {
		return errors.New("usage: set-role <userId> <USER|EDITOR|ADMIN>")
	}
	userID, ok := convert.ToInt64OK(args[0])
	if !ok {
		return apperr.ValidationError("Invalid user id " + args[0])
	}
	if err := a.signIn(ctx, "manage users"); err != nil {
		return err
	}

	user, err := a.admin.UpdateUser(ctx, a.store.Session(), userID, admin.UserRequest{Role: args[1]})
	if err != nil {
		return err
	}
	fmt.Fprintf(a.out, "%s is now %s\n", user.Username, user.Role)
	return nil
}
