// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package catalog

import (
	"context"
	"fmt"
	"log/slog"

	"tripcatalog/internal/models"
	"tripcatalog/internal/normalize"
)

func str(s string) *string { return &s }

func strs(s ...string) *[]string { return &s }

func boolPtr(b bool) *bool { return &b }

func included(titles ...string) *normalize.IncludedList {
	return &normalize.IncludedList{Strings: titles}
}

// samplePackages is the development catalog. Prices and durations spread
// over every filter bucket.
var samplePackages = []normalize.PackageInput{
	{
		Title:       str("Amalfi Coast Escape"),
		Description: str("Cliffside villages, lemon groves and boat days along the Sorrento peninsula."),
		Location:    str("Amalfi, Italy"),
		Image:       str("/media/packages/amalfi.jpg"),
		Category:    str(models.PackageCategoryFeatured),
		Duration:    str("7 Days / 6 Nights"),
		Price:       normalize.Num(1890),
		Rating:      normalize.Num(4.8),
		Reviews:     normalize.Num(214),
		Highlights:  strs("Private boat to Capri", "Path of the Gods hike"),
		Included:    included("Boutique hotel", "Daily breakfast", "Airport transfers"),
		Sights:      strs("Positano", "Ravello", "Capri"),
	},
	{
		Title:         str("Lisbon Long Weekend"),
		Description:   str("Trams, tiles and pastel de nata in Europe's sunniest capital."),
		Location:      str("Lisbon, Portugal"),
		Image:         str("/media/packages/lisbon.jpg"),
		Category:      str(models.PackageCategoryLastMinute),
		Duration:      str("4 Days"),
		Price:         normalize.Num(690),
		OriginalPrice: normalize.Num(840),
		Rating:        normalize.Num(4.5),
		Reviews:       normalize.Num(98),
		Highlights:    strs("Sintra day trip", "Fado evening in Alfama"),
		Included:      included("Central hotel", "Lisboa Card"),
		Sights:        strs("Belém Tower", "São Jorge Castle"),
	},
	{
		Title:       str("Icelandic Ring Road"),
		Description: str("Self-drive loop past waterfalls, glaciers and black sand beaches."),
		Location:    str("Reykjavík, Iceland"),
		Image:       str("/media/packages/iceland.jpg"),
		Category:    str(models.PackageCategorySpecial),
		Difficulty:  str(models.DifficultyModerate),
		Duration:    str("12 Days"),
		Price:       normalize.Num(3450),
		Rating:      normalize.Num(4.9),
		Reviews:     normalize.Num(61),
		Highlights:  strs("Glacier lagoon boat tour", "Northern lights hunt"),
		Included:    included("4x4 rental", "Guesthouses", "Ferry tickets"),
		Sights:      strs("Jökulsárlón", "Dettifoss", "Snæfellsnes"),
		IsSeasonal:  boolPtr(true),
	},
	{
		Title:       str("Kilimanjaro Machame Route"),
		Description: str("Guided summit climb on the most scenic route to the roof of Africa."),
		Location:    str("Moshi, Tanzania"),
		Image:       str("/media/packages/kilimanjaro.jpg"),
		Difficulty:  str(models.DifficultyChallenging),
		Duration:    str("16 Days"),
		Price:       normalize.Num(2450),
		Rating:      normalize.Num(4.7),
		Reviews:     normalize.Num(37),
		Highlights:  strs("Uhuru Peak sunrise", "Serengeti add-on safari"),
		Included:    included("Mountain guides", "Park fees", "Camping gear"),
		Sights:      strs("Shira Plateau", "Barranco Wall"),
	},
	{
		Title:       str("Kyoto Temples & Tea"),
		Description: str("Slow travel through Kyoto's temples, gardens and tea houses."),
		Location:    str("Kyoto, Japan"),
		Image:       str("/media/packages/kyoto.jpg"),
		Category:    str(models.PackageCategoryFeatured),
		Duration:    str("9 Days"),
		Price:       normalize.Num(2890),
		Rating:      normalize.Num(4.8),
		Reviews:     normalize.Num(143),
		Highlights:  strs("Tea ceremony", "Arashiyama at dawn"),
		Included:    included("Ryokan stay", "JR Pass"),
		Sights:      strs("Fushimi Inari", "Kinkaku-ji"),
	},
}

var samplePosts = []normalize.PostInput{
	{
		Title:    str("Packing Light for a Two-Week Trip"),
		Excerpt:  str("Everything you need fits in a carry-on. Here is how."),
		Content:  str("## Start with a list\n\nWrite it down, then remove a third.\n\n> The best luggage is the one you forget you carry.\n"),
		Author:   str("Travel Desk"),
		Image:    str("/media/blog/packing.jpg"),
		Category: str(models.BlogCategoryTravelTips),
		Tags:     strs("packing", "carry-on"),
	},
	{
		Title:    str("Where to Eat in Lisbon"),
		Excerpt:  str("From tascas to market halls, a local's shortlist."),
		Content:  str("## Time Out Market\n\nBusy, but worth it.\n\n## Tasca do Chico\n\nCome for the fado, stay for the chouriço.\n"),
		Author:   str("Travel Desk"),
		Image:    str("/media/blog/lisbon-food.jpg"),
		Category: str(models.BlogCategoryFoodDrink),
		Tags:     strs("lisbon", "food"),
	},
	{
		Title:    str("Acclimatising on Kilimanjaro"),
		Excerpt:  str("Climb high, sleep low, and other rules that get you to the top."),
		Content:  str("Altitude sickness does not care how fit you are.\n\n1. Walk slowly\n2. Drink water\n3. Listen to your guide\n"),
		Author:   str("Travel Desk"),
		Image:    str("/media/blog/kilimanjaro.jpg"),
		Category: str(models.BlogCategoryAdventure),
		Tags:     strs("hiking", "altitude"),
	},
}

// Seed fills empty collections with sample data through the regular admin
// workflow. Collections that already hold entries are left alone.
func Seed(ctx context.Context, a *Admin) error {
	next, err := a.NextPackageOrder(ctx)
	if err != nil {
		return fmt.Errorf("seed check packages: %w", err)
	}
	if next == 1 {
		for _, in := range samplePackages {
			if _, err := a.CreatePackage(ctx, in); err != nil {
				return fmt.Errorf("seed package: %w", err)
			}
		}
		slog.Info("seeded sample packages", "count", len(samplePackages))
	}

	next, err = a.NextPostOrder(ctx)
	if err != nil {
		return fmt.Errorf("seed check posts: %w", err)
	}
	if next == 1 {
		for _, in := range samplePosts {
			if _, err := a.CreatePost(ctx, in); err != nil {
				return fmt.Errorf("seed post: %w", err)
			}
		}
		slog.Info("seeded sample posts", "count", len(samplePosts))
	}
	return nil
}
