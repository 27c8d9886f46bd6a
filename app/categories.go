package app

import (
	"os"
	"strings"

	"github.com/pterm/pterm"
	"github.com/urfave/cli/v2"

	"github.com/ayoisaiah/webfocus/report"
)

func categoriesCommand() *cli.Command {
	return &cli.Command{
		Name:    "categories",
		Aliases: []string{"cat"},
		Usage:   "Manage site categories",
		Subcommands: []*cli.Command{
			{
				Name:   "list",
				Usage:  "List categories with their ratings",
				Action: categoriesListAction,
			},
			{
				Name:      "add",
				Usage:     "Add a category",
				ArgsUsage: "NAME",
				Action:    categoriesAddAction,
			},
			{
				Name:      "rename",
				Usage:     "Rename a category, carrying over its history and rules",
				ArgsUsage: "OLD NEW",
				Action:    categoriesRenameAction,
			},
			{
				Name:      "remove",
				Usage:     "Delete a category and move its domains to Other",
				ArgsUsage: "NAME",
				Flags:     []cli.Flag{yesFlag},
				Action:    categoriesRemoveAction,
			},
			{
				Name:      "rate",
				Usage:     "Rate a category as productive, neutral or unproductive",
				ArgsUsage: "NAME RATING",
				Action:    categoriesRateAction,
			},
		},
		Action: categoriesListAction,
	}
}

// parseRating accepts the rating names or their numeric values.
func parseRating(s string) (int, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "productive", "1", "+1":
		return 1, nil
	case "neutral", "0":
		return 0, nil
	case "unproductive", "-1":
		return -1, nil
	}

	return 0, errInvalidRating.Fmt(s)
}

func categoriesListAction(ctx *cli.Context) error {
	st, cleanup, err := openState(ctx)
	if err != nil {
		return err
	}

	defer cleanup()

	printCategoriesTable(os.Stdout, st.Categories(), st.Ratings(), st.Assignments())

	return nil
}

func categoriesAddAction(ctx *cli.Context) error {
	if ctx.NArg() != 1 {
		return errMissingArgs.Fmt("a category name")
	}

	st, cleanup, err := openState(ctx)
	if err != nil {
		return err
	}

	defer cleanup()

	name := ctx.Args().First()

	if err := st.AddCategory(name); err != nil {
		return err
	}

	report.Success("Added category %s", name)

	return nil
}

func categoriesRenameAction(ctx *cli.Context) error {
	if ctx.NArg() != 2 {
		return errMissingArgs.Fmt("the current and new category names")
	}

	st, cleanup, err := openState(ctx)
	if err != nil {
		return err
	}

	defer cleanup()

	from, to := ctx.Args().Get(0), ctx.Args().Get(1)

	if err := st.RenameCategory(from, to); err != nil {
		return err
	}

	report.Success("Renamed category %s to %s", from, to)

	return nil
}

func categoriesRemoveAction(ctx *cli.Context) error {
	if ctx.NArg() != 1 {
		return errMissingArgs.Fmt("a category name")
	}

	name := ctx.Args().First()

	ok, err := confirm(
		"Delete category "+name+"?",
		"Its domains are reassigned to Other and its rules are removed.",
		ctx.Bool("yes"),
	)
	if err != nil || !ok {
		return err
	}

	st, cleanup, err := openState(ctx)
	if err != nil {
		return err
	}

	defer cleanup()

	if err := st.DeleteCategory(name); err != nil {
		return err
	}

	report.Success("Deleted category %s", name)

	return nil
}

func categoriesRateAction(ctx *cli.Context) error {
	if ctx.NArg() != 2 {
		return errMissingArgs.Fmt("a category name and a rating")
	}

	rating, err := parseRating(ctx.Args().Get(1))
	if err != nil {
		return err
	}

	st, cleanup, err := openState(ctx)
	if err != nil {
		return err
	}

	defer cleanup()

	name := ctx.Args().First()

	if err := st.SetRating(name, rating); err != nil {
		return err
	}

	report.Success("Rated %s as %s", name, ratingNames[rating])

	return nil
}

// assignAction assigns a domain to a category. Without arguments it lists
// the current assignments.
func assignAction(ctx *cli.Context) error {
	if ctx.NArg() != 0 && ctx.NArg() != 2 {
		return errMissingArgs.Fmt("a domain and a category")
	}

	st, cleanup, err := openState(ctx)
	if err != nil {
		return err
	}

	defer cleanup()

	if ctx.NArg() == 0 {
		assignments := st.Assignments()
		if len(assignments) == 0 {
			pterm.Info.Println(noAssignmentsMsg)
			return nil
		}

		printAssignmentsTable(os.Stdout, assignments)

		return nil
	}

	domain, category := ctx.Args().Get(0), ctx.Args().Get(1)

	if err := st.Assign(domain, category); err != nil {
		return err
	}

	report.Success("Assigned %s to %s", domain, category)

	return nil
}

func unassignAction(ctx *cli.Context) error {
	if ctx.NArg() != 1 {
		return errMissingArgs.Fmt("a domain")
	}

	st, cleanup, err := openState(ctx)
	if err != nil {
		return err
	}

	defer cleanup()

	domain := ctx.Args().First()

	if err := st.Unassign(domain); err != nil {
		return err
	}

	report.Success("Unassigned %s", domain)

	return nil
}
