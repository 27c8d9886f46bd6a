package app

import (
	"os"
	"strings"
	"time"

	"github.com/pterm/pterm"
	"github.com/urfave/cli/v2"

	"github.com/ayoisaiah/webfocus/internal/models"
	"github.com/ayoisaiah/webfocus/report"
)

func rulesCommand() *cli.Command {
	return &cli.Command{
		Name:  "rules",
		Usage: "Manage block and daily limit rules",
		Subcommands: []*cli.Command{
			{
				Name:   "list",
				Usage:  "List all rules",
				Action: rulesListAction,
			},
			{
				Name:  "add",
				Usage: "Add a block or limit rule",
				Flags: []cli.Flag{
					ruleTypeFlag,
					ruleValueFlag,
					ruleLimitFlag,
					ruleStartFlag,
					ruleEndFlag,
					ruleDaysFlag,
				},
				Action: rulesAddAction,
			},
			{
				Name:   "remove",
				Usage:  "Remove a rule",
				Flags:  []cli.Flag{ruleTypeFlag, ruleValueFlag},
				Action: rulesRemoveAction,
			},
		},
		Action: rulesListAction,
	}
}

func rulesListAction(ctx *cli.Context) error {
	st, cleanup, err := openState(ctx)
	if err != nil {
		return err
	}

	defer cleanup()

	rules := st.Rules()
	if len(rules) == 0 {
		pterm.Info.Println(noRulesMsg)
		return nil
	}

	printRulesTable(os.Stdout, rules)

	return nil
}

// ruleFromFlags builds a rule from the add command flags. Limits are given
// as durations and stored in seconds.
func ruleFromFlags(ctx *cli.Context) (models.Rule, error) {
	r := models.Rule{
		Type:      models.RuleType(ctx.String("type")),
		Value:     ctx.String("value"),
		StartTime: ctx.String("start"),
		EndTime:   ctx.String("end"),
	}

	if days := ctx.String("days"); days != "" {
		for _, d := range strings.Split(days, ",") {
			if d = strings.TrimSpace(d); d != "" {
				r.Days = append(r.Days, d)
			}
		}
	}

	if limit := ctx.String("limit"); limit != "" {
		d, err := time.ParseDuration(limit)
		if err != nil {
			return r, errInvalidLimit.Fmt(limit)
		}

		r.LimitSeconds = int64(d.Seconds())
	}

	return r, nil
}

func rulesAddAction(ctx *cli.Context) error {
	r, err := ruleFromFlags(ctx)
	if err != nil {
		return err
	}

	st, cleanup, err := openState(ctx)
	if err != nil {
		return err
	}

	defer cleanup()

	if err := st.AddRule(r); err != nil {
		return err
	}

	report.Success("Added %s rule for %s", r.Type, r.Value)

	return nil
}

func rulesRemoveAction(ctx *cli.Context) error {
	st, cleanup, err := openState(ctx)
	if err != nil {
		return err
	}

	defer cleanup()

	ruleType := models.RuleType(ctx.String("type"))
	value := ctx.String("value")

	if err := st.RemoveRule(ruleType, value); err != nil {
		return err
	}

	report.Success("Removed %s rule for %s", ruleType, value)

	return nil
}
