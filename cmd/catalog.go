package main

import (
	"context"
	"fmt"
	"slices"
	"strings"

	"github.com/desertthunder/spotdash/internal/models"
	"github.com/desertthunder/spotdash/internal/palette"
	"github.com/desertthunder/spotdash/internal/shared"
	"github.com/urfave/cli/v3"
)

// Search prints catalog results grouped the same way as the search overlay.
func (r *Runner) Search(ctx context.Context, cmd *cli.Command) error {
	query := strings.TrimSpace(strings.Join(cmd.Args().Slice(), " "))
	if query == "" {
		return fmt.Errorf("%w: search query", shared.ErrMissingArgument)
	}
	if err := r.requireGateway(); err != nil {
		return err
	}

	types, err := parseSearchTypes(cmd.StringSlice("type"))
	if err != nil {
		return err
	}

	r.logger.Info("searching catalog", "query", query, "types", models.JoinSearchTypes(types))
	results, err := r.gateway.Search(ctx, query, types, cmd.Int("limit"))
	if err != nil {
		return err
	}

	if cmd.Bool("json") {
		return r.writeJSON(results, cmd.Bool("pretty"))
	}
	return r.writeGroups(palette.SearchGroups(results), "No results for "+query)
}

// Ask runs both assist stages and prints the catalog matches.
func (r *Runner) Ask(ctx context.Context, cmd *cli.Command) error {
	prompt := strings.TrimSpace(strings.Join(cmd.Args().Slice(), " "))
	if prompt == "" {
		return fmt.Errorf("%w: prompt", shared.ErrMissingArgument)
	}
	if err := r.requireGateway(); err != nil {
		return err
	}

	r.logger.Info("asking assistant", "prompt", prompt)
	resolved, err := palette.NewAssistSource(r.gateway).Fetch(ctx, prompt)
	if err != nil {
		return err
	}

	if cmd.Bool("json") {
		return r.writeJSON(resolved, cmd.Bool("pretty"))
	}
	return r.writeGroups(palette.AssistGroups(resolved), "No suggestions found")
}

func (r *Runner) writeGroups(groups []palette.Group, empty string) error {
	if len(groups) == 0 {
		return r.writePlain("%s\n", empty)
	}
	for i, g := range groups {
		if i > 0 {
			r.writePlain("\n")
		}
		r.writePlain("%s\n", g.Title)
		for _, item := range g.Items {
			r.writePlain("  %s", item.Title)
			if item.Subtitle != "" {
				r.writePlain(" · %s", item.Subtitle)
			}
			r.writePlain("\n    %s\n", item.URI)
		}
	}
	return nil
}

func parseSearchTypes(raw []string) ([]models.SearchType, error) {
	if len(raw) == 0 {
		return models.AllSearchTypes, nil
	}
	var types []models.SearchType
	for _, entry := range raw {
		for _, s := range strings.Split(entry, ",") {
			t := models.SearchType(strings.ToLower(strings.TrimSpace(s)))
			if !slices.Contains(models.AllSearchTypes, t) {
				return nil, fmt.Errorf("%w: unknown search type %q", shared.ErrInvalidArgument, s)
			}
			if !slices.Contains(types, t) {
				types = append(types, t)
			}
		}
	}
	return types, nil
}
