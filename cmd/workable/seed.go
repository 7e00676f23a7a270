package main

import (
	"context"

	"workable/application/commands"
	"workable/infrastructure/di"
)

// seedRegistry builds the hierarchy the inspection commands render: a
// composite pipeline with two atomic steps, a nested report stage, a
// scratch local and a standalone notes root. Everything flows through
// the service so the bus, validator and metrics see the same traffic a
// real caller would produce. Returns the pipeline's id.
func seedRegistry(ctx context.Context, container *di.Container) (string, error) {
	svc := container.UnitService

	pipeline, err := svc.CreateUnit(ctx, commands.CreateUnitCommand{
		Name:        "pipeline",
		Description: "nightly data pipeline",
	})
	if err != nil {
		return "", err
	}

	fetch, err := svc.CreateUnit(ctx, commands.CreateUnitCommand{
		Name:        "fetch",
		Description: "pull the raw records",
		Atomic:      true,
		Content:     "resp = fetch(source)",
	})
	if err != nil {
		return "", err
	}

	parse, err := svc.CreateUnit(ctx, commands.CreateUnitCommand{
		Name:        "parse",
		Description: "normalize the response",
		Atomic:      true,
		Content:     "doc = parse(resp)",
	})
	if err != nil {
		return "", err
	}

	report, err := svc.CreateUnit(ctx, commands.CreateUnitCommand{
		Name:        "report",
		Description: "publish the digest",
	})
	if err != nil {
		return "", err
	}

	render, err := svc.CreateUnit(ctx, commands.CreateUnitCommand{
		Name:        "render",
		Description: "render the digest page",
		Atomic:      true,
		Content:     "html = render(doc)",
	})
	if err != nil {
		return "", err
	}

	for _, childID := range []string{fetch.ID().String(), parse.ID().String(), report.ID().String()} {
		if _, err := svc.AttachChild(ctx, commands.AttachChildCommand{
			ParentID: pipeline.ID().String(),
			ChildID:  childID,
		}); err != nil {
			return "", err
		}
	}

	if _, err := svc.AttachChild(ctx, commands.AttachChildCommand{
		ParentID: report.ID().String(),
		ChildID:  render.ID().String(),
	}); err != nil {
		return "", err
	}

	if _, err := svc.AttachLocal(ctx, commands.AttachLocalCommand{
		OwnerID:     pipeline.ID().String(),
		Name:        "scratch",
		Description: "working buffer for intermediate rows",
		Content:     "tmp = []",
	}); err != nil {
		return "", err
	}

	if _, err := svc.CreateUnit(ctx, commands.CreateUnitCommand{
		Name:        "notes",
		Description: "operator notes",
		Atomic:      true,
		Content:     "review the alert thresholds",
		ContentType: "text",
	}); err != nil {
		return "", err
	}

	return pipeline.ID().String(), nil
}
